// Package agent wires the symbol manager, the chunker, the explanation
// memory, and the long-term identifier registry into one single-threaded
// cognitive agent and runs its goal stack.
package agent

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ebcore/internal/config"
	"ebcore/internal/ebc"
	"ebcore/internal/explain"
	"ebcore/internal/ltm"
	"ebcore/internal/symbols"
	"ebcore/internal/trace"
)

// Agent owns one interner, one chunker, and one goal stack. All methods
// run on the agent's decision thread; distinct agents share nothing.
type Agent struct {
	ID   uuid.UUID
	Name string

	Syms    *symbols.Manager
	Chunker *ebc.Chunker
	Tracer  *trace.Tracer
	Explain *explain.Memory
	LTM     *ltm.Registry

	cfg config.Config
	log *zap.Logger

	initCount   uint64
	dCycleCount uint64

	TopGoal    *symbols.Identifier
	BottomGoal *symbols.Identifier
}

// Options carries the external collaborators an agent may be given.
// Registry may be nil when semantic memory is off.
type Options struct {
	Tracer   *trace.Tracer
	Logger   *zap.Logger
	Registry *ltm.Registry
}

// New builds an agent from its config, creating the predefined symbol set
// and an empty explanation memory.
func New(cfg config.Config, opts Options) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Discard()
	}
	tracer.SetSettings(traceSettings(cfg.Trace))
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	syms := symbols.NewManager(tracer)
	syms.CreatePredefinedSymbols()
	if opts.Registry != nil {
		syms.SetLTIRegistry(opts.Registry)
	}

	mem, err := explain.New()
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", cfg.Agent.Name, err)
	}

	a := &Agent{
		ID:      uuid.New(),
		Name:    cfg.Agent.Name,
		Syms:    syms,
		Tracer:  tracer,
		Explain: mem,
		LTM:     opts.Registry,
		cfg:     cfg,
		log:     logger.With(zap.String("agent", cfg.Agent.Name)),
	}
	a.Chunker = ebc.NewChunker(syms, tracer, a, mem, ebc.SettingsFromConfig(cfg.Learning))
	a.log.Info("agent created", zap.String("id", a.ID.String()))
	return a, nil
}

func traceSettings(tc config.TraceConfig) trace.Settings {
	return trace.Settings{
		ChunkNames:         tc.ChunkNames,
		Chunks:             tc.Chunks,
		JustificationNames: tc.JustificationNames,
		Justifications:     tc.Justifications,
		ChunkWarnings:      tc.ChunkWarnings,
	}
}

// InitCount reports how many times the agent has been reinitialised.
func (a *Agent) InitCount() uint64 { return a.initCount }

// DCycleCount reports the current decision cycle number.
func (a *Agent) DCycleCount() uint64 { return a.dCycleCount }

// Config returns the settings the agent currently runs with.
func (a *Agent) Config() config.Config { return a.cfg }

// StepDecisionCycle advances the clock and clears the per-cycle learning
// tallies.
func (a *Agent) StepDecisionCycle() {
	a.dCycleCount++
	a.Chunker.ResetDCycleTallies()
}

// ApplySettings installs a new config, typically from the file watcher.
func (a *Agent) ApplySettings(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.Tracer.SetSettings(traceSettings(cfg.Trace))
	a.Chunker.ApplySettings(ebc.SettingsFromConfig(cfg.Learning))
	a.log.Info("settings applied", zap.Bool("learning", cfg.Learning.Enabled))
	return nil
}

// Learn runs one complete learning episode for a matched instantiation:
// gate, ceiling check, naming, and bottom-up bookkeeping. It returns the
// learned production, or nil with a nil error when the gate refused.
func (a *Agent) Learn(inst *ebc.Instantiation) (*ebc.Production, error) {
	a.Chunker.BeginAttempt(inst)
	defer a.Chunker.EndAttempt()

	if inst.Prod != nil && inst.MatchGoal != nil {
		if inst.Prod.DontLearn {
			a.Chunker.FlagChunkFree(inst.MatchGoal)
		}
		if inst.Prod.ForceLearn {
			a.Chunker.FlagChunky(inst.MatchGoal)
		}
	}

	ruleType := ebc.RuleJustification
	ok, reason := a.Chunker.SetLearningForInstantiation(inst)
	switch {
	case ok:
		ruleType = ebc.RuleChunk
	case reason == ebc.GateTopLevel:
		// No subgoal result, so there is nothing to justify either.
		return nil, nil
	}

	if _, err := a.Chunker.SetUpRuleName(ruleType); err != nil {
		a.Explain.RecordFailure(a.Chunker.FailureType())
		return nil, err
	}
	prod := a.Chunker.BuildProduction()
	if ruleType == ebc.RuleChunk {
		a.markChunkLearned(inst.MatchGoal)
	}
	return prod, nil
}

// markChunkLearned clears the bottom-up flag on every goal above the match
// goal, so bottom-only mode refuses them until the stack changes.
func (a *Agent) markChunkLearned(matchGoal *symbols.Identifier) {
	if matchGoal == nil {
		return
	}
	for g := matchGoal.HigherGoal; g != nil && g.AllowBottomUpChunks; g = g.HigherGoal {
		g.AllowBottomUpChunks = false
	}
}

// Reinitialize pops the full goal stack, resets the chunker and the
// identifier counters, and bumps the init count. It fails if identifiers
// leaked outside the goal stack.
func (a *Agent) Reinitialize() error {
	for a.BottomGoal != nil {
		a.PopSubgoal()
	}
	a.Chunker.Reinit()
	a.Syms.ResetTCNumbers()
	a.Syms.ResetVariableGensyms()
	if err := a.Syms.ResetIDCounters(); err != nil {
		return fmt.Errorf("reinitialize agent %s: %w", a.Name, err)
	}
	a.initCount++
	a.dCycleCount = 0
	a.log.Info("agent reinitialized", zap.Uint64("init_count", a.initCount))
	return nil
}

// Teardown releases everything the agent owns, in dependency order: the
// goal stack, the chunker's held names, then the predefined symbols.
func (a *Agent) Teardown() {
	for a.BottomGoal != nil {
		a.PopSubgoal()
	}
	a.Chunker.Teardown()
	a.Syms.ReleasePredefinedSymbols()
	a.log.Info("agent torn down")
}
