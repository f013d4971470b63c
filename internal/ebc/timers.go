package ebc

import (
	"fmt"
	"io"
	"time"
)

// TimerID indexes one phase of the learning pipeline.
type TimerID uint8

const (
	TimerInstantiationCreation TimerID = iota
	TimerChunkInstantiationCreation
	TimerDependencyAnalysis
	TimerIdentityUnification
	TimerIdentityUpdate
	TimerVariablizeLHS
	TimerVariablizeRHS
	TimerMerging
	TimerReorder
	TimerRepair
	TimerReinstantiation
	TimerReteInsertion
	TimerCleanup
	TimerTotal

	timerCount
)

var timerNames = [timerCount]string{
	TimerInstantiationCreation:      "1.00 Instantiation creation",
	TimerChunkInstantiationCreation: "1.01 Chunk instantiation creation",
	TimerDependencyAnalysis:         "2.01 Dependency analysis",
	TimerIdentityUnification:        "2.02 Identity unification",
	TimerIdentityUpdate:             "2.03 Identity transitive update",
	TimerVariablizeLHS:              "2.04 LHS variablization",
	TimerVariablizeRHS:              "2.05 RHS variablization",
	TimerMerging:                    "2.06 Condition merging",
	TimerReorder:                    "2.07 Validation and reordering",
	TimerRepair:                     "2.08 Repair",
	TimerReinstantiation:            "2.09 Reinstantiation",
	TimerReteInsertion:              "2.10 Rete insertion",
	TimerCleanup:                    "2.11 Clean-up",
	TimerTotal:                      "2.13 EBC Total",
}

func (id TimerID) String() string { return timerNames[id] }

// TimerGroup accumulates wall time per learning phase. When disabled,
// Start and Stop return after a single flag check.
type TimerGroup struct {
	enabled bool
	total   [timerCount]time.Duration
	started [timerCount]time.Time
	now     func() time.Time
}

func NewTimerGroup(enabled bool) *TimerGroup {
	return &TimerGroup{enabled: enabled, now: time.Now}
}

func (g *TimerGroup) SetEnabled(on bool) { g.enabled = on }
func (g *TimerGroup) Enabled() bool      { return g.enabled }

func (g *TimerGroup) Start(id TimerID) {
	if !g.enabled {
		return
	}
	g.started[id] = g.now()
}

func (g *TimerGroup) Stop(id TimerID) {
	if !g.enabled {
		return
	}
	if g.started[id].IsZero() {
		return
	}
	g.total[id] += g.now().Sub(g.started[id])
	g.started[id] = time.Time{}
}

func (g *TimerGroup) Elapsed(id TimerID) time.Duration { return g.total[id] }

func (g *TimerGroup) Reset() {
	g.total = [timerCount]time.Duration{}
	g.started = [timerCount]time.Time{}
}

// Report writes one line per timer in taxonomy order.
func (g *TimerGroup) Report(w io.Writer) error {
	for id := TimerID(0); id < timerCount; id++ {
		if _, err := fmt.Fprintf(w, "%-36s %12.6f sec\n", timerNames[id], g.total[id].Seconds()); err != nil {
			return fmt.Errorf("timer report: %w", err)
		}
	}
	return nil
}
