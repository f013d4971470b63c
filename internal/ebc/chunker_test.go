package ebc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebcore/internal/symbols"
)

type recordedRule struct {
	name     string
	kind     RuleType
	parent   string
	impasse  symbols.ImpasseType
	decision uint64
}

type captureRecorder struct {
	rules []recordedRule
}

func (r *captureRecorder) RecordLearnedRule(name string, kind RuleType, parent string, impasse symbols.ImpasseType, decision uint64) error {
	r.rules = append(r.rules, recordedRule{name, kind, parent, impasse, decision})
	return nil
}

func TestCountersMonotonic(t *testing.T) {
	c, _, _, _ := newTestChunker(t, Settings{LearningOn: true})

	assert.Equal(t, uint64(1), c.NextInstantiationID())
	assert.Equal(t, uint64(2), c.NextInstantiationID())
	assert.Equal(t, uint64(1), c.NextProductionID())
	assert.Equal(t, uint64(1), c.NextIdentity())
	assert.Equal(t, uint64(2), c.NextIdentity())
	assert.Equal(t, uint64(1), c.NextInstIdentity())
	assert.Equal(t, uint64(1), c.NextBacktraceNumber())
}

func TestMaxChunksPerCycle(t *testing.T) {
	c, syms, _, sink := newTestChunker(t, Settings{LearningOn: true, MaxChunks: 2})
	goal := subgoal(t, syms, 2)

	for i := 0; i < 2; i++ {
		c.BeginAttempt(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
		_, err := c.SetUpRuleName(RuleChunk)
		require.NoError(t, err)
		c.EndAttempt()
	}

	c.BeginAttempt(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	_, err := c.SetUpRuleName(RuleChunk)
	require.ErrorIs(t, err, ErrMaxChunks)
	assert.Equal(t, FailureMaxChunks, c.FailureType())
	assert.Contains(t, sink.String(), "max-chunks")
	c.EndAttempt()

	// Justifications are not subject to the chunk ceiling.
	c.BeginAttempt(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	_, err = c.SetUpRuleName(RuleJustification)
	assert.NoError(t, err)
	c.EndAttempt()

	// A new cycle clears the ceiling.
	c.ResetDCycleTallies()
	c.BeginAttempt(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	_, err = c.SetUpRuleName(RuleChunk)
	assert.NoError(t, err)
	c.EndAttempt()
}

func TestMaxChunksWarnsOnce(t *testing.T) {
	c, syms, _, sink := newTestChunker(t, Settings{LearningOn: true, MaxChunks: 1})
	goal := subgoal(t, syms, 2)

	c.BeginAttempt(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	_, err := c.SetUpRuleName(RuleChunk)
	require.NoError(t, err)
	c.EndAttempt()

	for i := 0; i < 3; i++ {
		c.BeginAttempt(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
		_, err = c.SetUpRuleName(RuleChunk)
		require.ErrorIs(t, err, ErrMaxChunks)
		c.EndAttempt()
	}
	assert.Equal(t, 1, strings.Count(sink.String(), "max-chunks"))
}

func TestMaxDupesFlagsStateChunkFree(t *testing.T) {
	c, syms, _, sink := newTestChunker(t, Settings{LearningOn: true, Except: true, MaxChunks: 50, MaxDupes: 2})
	goal := subgoal(t, syms, 2)

	c.BeginAttempt(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	require.NoError(t, c.RecordDuplicate())
	require.ErrorIs(t, c.RecordDuplicate(), ErrMaxDupes)
	assert.Equal(t, FailureMaxDupes, c.FailureType())
	assert.Contains(t, sink.String(), "max-dupes")
	c.EndAttempt()

	ok, reason := c.SetLearningForInstantiation(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	assert.False(t, ok)
	assert.Equal(t, GateChunkFreeState, reason)
}

func TestChunkNameTracedAndRecorded(t *testing.T) {
	rec := &captureRecorder{}
	c, syms, clock, sink := newTestChunker(t, Settings{LearningOn: true, MaxChunks: 50})
	c.recorder = rec
	clock.dcycle = 11
	goal := subgoal(t, syms, 2)
	goal.ImpasseType = symbols.ImpasseTie

	c.BeginAttempt(&Instantiation{
		Prod:           &Production{},
		ProdName:       "propose*move",
		MatchGoal:      goal,
		MatchGoalLevel: 2,
	})
	name, err := c.SetUpRuleName(RuleChunk)
	require.NoError(t, err)
	assert.Contains(t, sink.String(), "Learning chunk "+name.Name)

	require.Len(t, rec.rules, 1)
	assert.Equal(t, recordedRule{
		name:     name.Name,
		kind:     RuleChunk,
		parent:   "propose*move",
		impasse:  symbols.ImpasseTie,
		decision: 11,
	}, rec.rules[0])
	c.EndAttempt()
}

func TestBuildProductionCarriesDepth(t *testing.T) {
	c, syms, _, _ := newTestChunker(t, Settings{LearningOn: true, MaxChunks: 50})
	goal := subgoal(t, syms, 2)

	c.BeginAttempt(&Instantiation{
		Prod:           &Production{NamingDepth: 2},
		ProdName:       "p",
		MatchGoal:      goal,
		MatchGoalLevel: 2,
	})
	_, err := c.SetUpRuleName(RuleChunk)
	require.NoError(t, err)
	prod := c.BuildProduction()
	require.NotNil(t, prod)
	assert.Equal(t, uint64(3), prod.NamingDepth)
	assert.Nil(t, c.RuleName())
	syms.Release(prod.Name)
	c.EndAttempt()
}

func TestEndAttemptReleasesUnclaimedName(t *testing.T) {
	c, syms, _, _ := newTestChunker(t, Settings{LearningOn: true, MaxChunks: 50})
	goal := subgoal(t, syms, 2)
	before := syms.LiveCounts()

	c.BeginAttempt(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	_, err := c.SetUpRuleName(RuleChunk)
	require.NoError(t, err)
	c.EndAttempt()

	assert.Equal(t, before, syms.LiveCounts())
}

func TestIdentityUnification(t *testing.T) {
	c, _, _, _ := newTestChunker(t, Settings{LearningOn: true})

	a := c.NextIdentity()
	b := c.NextIdentity()
	d := c.NextIdentity()

	c.UnifyIdentities(a, b)
	c.UnifyIdentities(b, d)

	assert.Equal(t, d, c.JoinedIdentity(a))
	assert.Equal(t, d, c.JoinedIdentity(b))
	assert.Equal(t, d, c.JoinedIdentity(d))

	// Null identity never joins.
	c.UnifyIdentities(0, a)
	assert.Equal(t, uint64(0), c.JoinedIdentity(0))
}

func TestDependencyScratchOps(t *testing.T) {
	c, syms, _, _ := newTestChunker(t, Settings{LearningOn: true})
	id := subgoal(t, syms, 2)

	c.AddConstraint(4, 9)
	c.AddConstraint(4, 12)
	assert.Equal(t, []uint64{9, 12}, c.ConstraintsOn(4))

	c.RecordMerge(7, 3)
	into, ok := c.MergedInto(7)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), into)
	_, ok = c.MergedInto(99)
	assert.False(t, ok)

	assert.False(t, c.IsSingleton(id))
	c.MarkSingleton(id)
	assert.True(t, c.IsSingleton(id))
}

func TestReinitRestartsCountersAndClearsScratch(t *testing.T) {
	c, syms, _, _ := newTestChunker(t, Settings{LearningOn: true, Except: true, MaxChunks: 50})
	goal := subgoal(t, syms, 2)

	c.NextInstantiationID()
	c.NextIdentity()
	c.UnifyIdentities(1, 2)
	c.FlagChunkFree(goal)
	c.BeginAttempt(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	_, err := c.SetUpRuleName(RuleChunk)
	require.NoError(t, err)

	c.Reinit()

	assert.Equal(t, uint64(1), c.NextInstantiationID())
	assert.Equal(t, uint64(1), c.NextIdentity())
	assert.Equal(t, uint64(1), c.JoinedIdentity(1))
	assert.Nil(t, c.RuleName())
	assert.Zero(t, c.ChunksThisDCycle)

	ok, _ := c.SetLearningForInstantiation(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	assert.True(t, ok, "chunk-free flags do not survive reinit")

	c.BeginAttempt(&Instantiation{ProdName: "p", MatchGoal: goal, MatchGoalLevel: 2})
	name, err := c.SetUpRuleName(RuleChunk)
	require.NoError(t, err)
	assert.Equal(t, "chunk1", name.Name, "numbered naming restarts")
	c.EndAttempt()
}

func TestApplySettingsTogglesTimers(t *testing.T) {
	c, _, _, _ := newTestChunker(t, Settings{LearningOn: true})
	assert.False(t, c.Timers().Enabled())

	c.ApplySettings(Settings{LearningOn: true, Timers: true})
	assert.True(t, c.Timers().Enabled())
	assert.True(t, c.Settings().Timers)
}
