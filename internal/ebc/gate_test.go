package ebc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"ebcore/internal/symbols"
	"ebcore/internal/trace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	init   uint64
	dcycle uint64
}

func (c *fakeClock) InitCount() uint64   { return c.init }
func (c *fakeClock) DCycleCount() uint64 { return c.dcycle }

func newTestChunker(t *testing.T, s Settings) (*Chunker, *symbols.Manager, *fakeClock, *bytes.Buffer) {
	t.Helper()
	var sink bytes.Buffer
	tracer := trace.New(&sink, zap.NewNop())
	tracer.SetSettings(trace.Settings{
		ChunkNames:         true,
		JustificationNames: true,
		ChunkWarnings:      true,
	})
	syms := symbols.NewManager(tracer)
	clock := &fakeClock{dcycle: 1}
	return NewChunker(syms, tracer, clock, nil, s), syms, clock, &sink
}

func subgoal(t *testing.T, syms *symbols.Manager, level int32) *symbols.Identifier {
	t.Helper()
	return syms.MakeIdentifier('S', level, 0)
}

func TestGateEligible(t *testing.T) {
	c, syms, _, _ := newTestChunker(t, Settings{LearningOn: true})
	goal := subgoal(t, syms, 2)

	inst := &Instantiation{ProdName: "propose*move", MatchGoal: goal, MatchGoalLevel: 2}
	ok, reason := c.SetLearningForInstantiation(inst)

	assert.True(t, ok)
	assert.Equal(t, GateEligible, reason)
	assert.True(t, inst.OKToVariablize)
}

func TestGateRefusals(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		flag     func(c *Chunker, goal *symbols.Identifier)
		level    int32
		bottomUp bool
		want     GateReason
		wantMsg  string
	}{
		{
			name:     "learning off",
			settings: Settings{},
			level:    2,
			bottomUp: true,
			want:     GateLearningOff,
		},
		{
			name:     "top level match",
			settings: Settings{LearningOn: true},
			level:    TopGoalLevel,
			bottomUp: true,
			want:     GateTopLevel,
		},
		{
			name:     "except mode chunk-free state",
			settings: Settings{LearningOn: true, Except: true},
			flag:     func(c *Chunker, goal *symbols.Identifier) { c.FlagChunkFree(goal) },
			level:    2,
			bottomUp: true,
			want:     GateChunkFreeState,
			wantMsg:  "was flagged to prevent learning",
		},
		{
			name:     "only mode unflagged state",
			settings: Settings{LearningOn: true, Only: true},
			level:    2,
			bottomUp: true,
			want:     GateNotChunkyState,
			wantMsg:  "was not flagged for learning",
		},
		{
			name:     "bottom-only mode above bottom",
			settings: Settings{LearningOn: true, BottomOnly: true},
			level:    2,
			bottomUp: false,
			want:     GateNotBottomState,
			wantMsg:  "is not the bottom state",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, syms, _, sink := newTestChunker(t, tt.settings)
			goal := subgoal(t, syms, tt.level)
			goal.AllowBottomUpChunks = tt.bottomUp
			if tt.flag != nil {
				tt.flag(c, goal)
			}

			inst := &Instantiation{ProdName: "apply*move", MatchGoal: goal, MatchGoalLevel: tt.level}
			ok, reason := c.SetLearningForInstantiation(inst)

			assert.False(t, ok)
			assert.Equal(t, tt.want, reason)
			assert.False(t, inst.OKToVariablize)
			if tt.wantMsg != "" {
				assert.Contains(t, sink.String(), tt.wantMsg)
				assert.Contains(t, sink.String(), "apply*move")
			}
		})
	}
}

func TestGateOnlyModeFlaggedState(t *testing.T) {
	c, syms, _, _ := newTestChunker(t, Settings{LearningOn: true, Only: true})
	goal := subgoal(t, syms, 2)
	c.FlagChunky(goal)

	ok, _ := c.SetLearningForInstantiation(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	require.True(t, ok)

	c.UnflagState(goal)
	ok, reason := c.SetLearningForInstantiation(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	assert.False(t, ok)
	assert.Equal(t, GateNotChunkyState, reason)
}

func TestGateWarningsSilencedByTraceSetting(t *testing.T) {
	c, syms, _, sink := newTestChunker(t, Settings{LearningOn: true, Except: true})
	c.tracer.SetSettings(trace.Settings{})
	goal := subgoal(t, syms, 2)
	c.FlagChunkFree(goal)

	ok, reason := c.SetLearningForInstantiation(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})

	assert.False(t, ok)
	assert.Equal(t, GateChunkFreeState, reason)
	assert.Empty(t, sink.String())
}
