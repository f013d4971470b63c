package ebc

import (
	"errors"

	"ebcore/internal/symbols"
	"ebcore/internal/trace"
)

var (
	ErrMaxChunks = errors.New("max chunks reached this decision cycle")
	ErrMaxDupes  = errors.New("max duplicate chunks reached this decision cycle")
)

// FailureType records why a learning attempt did not produce a rule.
type FailureType uint8

const (
	FailureNone FailureType = iota
	FailureMaxChunks
	FailureMaxDupes
	FailureReordering
	FailureUnconnectedConditions
)

func (f FailureType) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureMaxChunks:
		return "max-chunks"
	case FailureMaxDupes:
		return "max-dupes"
	case FailureReordering:
		return "reordering failed"
	case FailureUnconnectedConditions:
		return "unconnected conditions"
	}
	return "unknown"
}

// Clock is the slice of the agent the chunker needs for naming: how many
// times the agent has been reinitialised and which decision cycle it is on.
type Clock interface {
	InitCount() uint64
	DCycleCount() uint64
}

// Recorder receives every named rule for explanation memory.
type Recorder interface {
	RecordLearnedRule(name string, kind RuleType, parent string, impasse symbols.ImpasseType, decision uint64) error
}

// Chunker drives one agent's learning episodes. It owns the id counters,
// the per-cycle tallies, the transient state of the attempt in flight, and
// the timer group. All methods run on the agent's decision thread.
type Chunker struct {
	syms     *symbols.Manager
	tracer   *trace.Tracer
	clock    Clock
	recorder Recorder
	settings Settings
	timers   *TimerGroup

	instIDCounter              uint64
	prodIDCounter              uint64
	identityCounter            uint64
	instIdentityCounter        uint64
	backtraceNumber            uint64
	chunkNamingCounter         uint64
	justificationNamingCounter uint64

	ChunksThisDCycle         uint64
	JustificationsThisDCycle uint64
	dupesThisDCycle          uint64
	maxChunksReached         bool

	chunkFreeStates map[*symbols.Identifier]struct{}
	chunkyStates    map[*symbols.Identifier]struct{}

	// Current attempt.
	inst              *Instantiation
	chunkInst         *Instantiation
	prodName          *symbols.SymConstant
	ruleType          RuleType
	failureType       FailureType
	learningOnForInst bool

	// Dependency-analysis scratch. Contents live across one attempt.
	identityJoins map[uint64]uint64
	constraints   map[uint64][]uint64
	mergeMap      map[uint64]uint64
	singletons    map[*symbols.Identifier]struct{}
}

// NewChunker wires a chunker to its agent. recorder may be nil.
func NewChunker(syms *symbols.Manager, tracer *trace.Tracer, clock Clock, recorder Recorder, settings Settings) *Chunker {
	return &Chunker{
		syms:     syms,
		tracer:   tracer,
		clock:    clock,
		recorder: recorder,
		settings: settings,
		timers:   NewTimerGroup(settings.Timers),

		chunkNamingCounter:         1,
		justificationNamingCounter: 1,

		chunkFreeStates: make(map[*symbols.Identifier]struct{}),
		chunkyStates:    make(map[*symbols.Identifier]struct{}),
		identityJoins:   make(map[uint64]uint64),
		constraints:     make(map[uint64][]uint64),
		mergeMap:        make(map[uint64]uint64),
		singletons:      make(map[*symbols.Identifier]struct{}),
	}
}

func (c *Chunker) Settings() Settings { return c.settings }
func (c *Chunker) Timers() *TimerGroup { return c.timers }

// ApplySettings replaces the parameters, typically after a config reload.
func (c *Chunker) ApplySettings(s Settings) {
	c.settings = s
	c.timers.SetEnabled(s.Timers)
}

/* ------------------------------------------------------------------
   Counters
------------------------------------------------------------------- */

func (c *Chunker) NextInstantiationID() uint64 { c.instIDCounter++; return c.instIDCounter }
func (c *Chunker) NextProductionID() uint64    { c.prodIDCounter++; return c.prodIDCounter }
func (c *Chunker) NextIdentity() uint64        { c.identityCounter++; return c.identityCounter }
func (c *Chunker) NextInstIdentity() uint64    { c.instIdentityCounter++; return c.instIdentityCounter }
func (c *Chunker) NextBacktraceNumber() uint64 { c.backtraceNumber++; return c.backtraceNumber }

// ResetDCycleTallies is called by the decision loop at the top of each
// cycle, never by the chunker itself.
func (c *Chunker) ResetDCycleTallies() {
	c.ChunksThisDCycle = 0
	c.JustificationsThisDCycle = 0
	c.dupesThisDCycle = 0
	c.maxChunksReached = false
}

/* ------------------------------------------------------------------
   Identity bookkeeping
------------------------------------------------------------------- */

// UnifyIdentities joins two identity sets. Zero is the null identity and
// never joins.
func (c *Chunker) UnifyIdentities(from, to uint64) {
	if from == 0 || to == 0 || from == to {
		return
	}
	c.identityJoins[from] = to
}

// JoinedIdentity chases the unification chain to the representative
// identity, compressing the path as it goes.
func (c *Chunker) JoinedIdentity(id uint64) uint64 {
	root := id
	for {
		next, ok := c.identityJoins[root]
		if !ok {
			break
		}
		root = next
	}
	for id != root {
		next := c.identityJoins[id]
		c.identityJoins[id] = root
		id = next
	}
	return root
}

// AddConstraint records a relational constraint between two identities, to
// be re-attached to the learned rule's conditions.
func (c *Chunker) AddConstraint(identity, constraint uint64) {
	c.constraints[identity] = append(c.constraints[identity], constraint)
}

// ConstraintsOn returns the constraints recorded against an identity.
func (c *Chunker) ConstraintsOn(identity uint64) []uint64 {
	return c.constraints[identity]
}

// RecordMerge maps a condition that condition merging collapsed onto the
// condition that absorbed it.
func (c *Chunker) RecordMerge(from, into uint64) {
	c.mergeMap[from] = into
}

// MergedInto reports where a collapsed condition went, if anywhere.
func (c *Chunker) MergedInto(cond uint64) (uint64, bool) {
	into, ok := c.mergeMap[cond]
	return into, ok
}

// MarkSingleton flags an identifier as matching at most one working memory
// element, which lets condition merging collapse duplicate tests on it.
func (c *Chunker) MarkSingleton(id *symbols.Identifier) {
	c.singletons[id] = struct{}{}
}

func (c *Chunker) IsSingleton(id *symbols.Identifier) bool {
	_, ok := c.singletons[id]
	return ok
}

/* ------------------------------------------------------------------
   Attempt lifecycle
------------------------------------------------------------------- */

// BeginAttempt resets the transient state for one learning episode.
func (c *Chunker) BeginAttempt(inst *Instantiation) {
	c.clearAttempt()
	c.inst = inst
	c.chunkInst = nil
	c.ruleType = RuleJustification
	c.failureType = FailureNone
}

// SetUpRuleName names the rule being learned from the current attempt's
// instantiation, honoring the per-cycle chunk ceiling. The returned
// constant is owned by the chunker until the attempt ends.
func (c *Chunker) SetUpRuleName(ruleType RuleType) (*symbols.SymConstant, error) {
	inst := c.inst
	c.ruleType = ruleType

	var seq uint64
	if ruleType == RuleChunk {
		if c.settings.MaxChunks > 0 && c.ChunksThisDCycle >= c.settings.MaxChunks {
			c.failureType = FailureMaxChunks
			if !c.maxChunksReached {
				c.maxChunksReached = true
				c.tracer.Warnf("Warning: reached max-chunks (%d). Skipping opportunity to learn new rule this decision cycle.", c.settings.MaxChunks)
			}
			return nil, ErrMaxChunks
		}
		c.ChunksThisDCycle++
		seq = c.ChunksThisDCycle
	} else {
		c.JustificationsThisDCycle++
		seq = c.JustificationsThisDCycle
	}

	name := c.generateRuleName(inst, ruleType, seq)
	if c.prodName != nil {
		c.syms.Release(c.prodName)
	}
	c.prodName = name

	ts := c.tracer.Settings()
	if ruleType == RuleChunk && ts.ChunkNames {
		c.tracer.Printf("\nLearning chunk %s\n", name.Name)
	} else if ruleType == RuleJustification && ts.JustificationNames {
		c.tracer.Printf("\nLearning justification %s\n", name.Name)
	}
	c.tracer.LearningEvent(name.Name, ruleType.String(), c.clock.DCycleCount())

	if c.recorder != nil {
		parent := ""
		if inst.Prod != nil {
			parent = inst.ProdName
		}
		impasse := symbols.ImpasseNone
		if inst.MatchGoal != nil {
			impasse = inst.MatchGoal.ImpasseType
		}
		if err := c.recorder.RecordLearnedRule(name.Name, ruleType, parent, impasse, c.clock.DCycleCount()); err != nil {
			c.tracer.Warnf("explanation memory: %v", err)
		}
	}
	return name, nil
}

// RecordDuplicate notes that the attempt rebuilt an already known rule.
// When the per-cycle ceiling is hit, the match state is flagged chunk-free
// until the next cycle.
func (c *Chunker) RecordDuplicate() error {
	c.dupesThisDCycle++
	if c.settings.MaxDupes > 0 && c.dupesThisDCycle >= c.settings.MaxDupes {
		c.failureType = FailureMaxDupes
		if c.inst != nil && c.inst.MatchGoal != nil {
			c.FlagChunkFree(c.inst.MatchGoal)
		}
		c.tracer.Warnf("Warning: reached max-dupes (%d). Ignoring state until next decision cycle.", c.settings.MaxDupes)
		return ErrMaxDupes
	}
	return nil
}

// RecordFailure aborts the attempt with a reason.
func (c *Chunker) RecordFailure(f FailureType) {
	c.failureType = f
}

func (c *Chunker) FailureType() FailureType { return c.failureType }
func (c *Chunker) RuleName() *symbols.SymConstant { return c.prodName }

// BuildProduction finalizes the attempt into a production carrying the
// learned rule's provenance depth. The name reference transfers to the
// caller.
func (c *Chunker) BuildProduction() *Production {
	if c.prodName == nil {
		return nil
	}
	var depth uint64
	if c.inst != nil && c.inst.Prod != nil {
		depth = c.inst.Prod.NamingDepth + 1
	}
	p := &Production{Name: c.prodName, NamingDepth: depth}
	c.prodName = nil
	return p
}

// EndAttempt drops all transient attempt state, releasing the rule name if
// it was never handed off.
func (c *Chunker) EndAttempt() {
	c.clearAttempt()
}

func (c *Chunker) clearAttempt() {
	if c.prodName != nil {
		c.syms.Release(c.prodName)
		c.prodName = nil
	}
	c.inst = nil
	c.chunkInst = nil
	c.failureType = FailureNone
	c.learningOnForInst = false
	clear(c.identityJoins)
	clear(c.constraints)
	clear(c.mergeMap)
	clear(c.singletons)
}

/* ------------------------------------------------------------------
   Lifecycle
------------------------------------------------------------------- */

// Reinit clears per-attempt state and restarts every counter. Parameters
// and timers survive; accumulated timer values do not.
func (c *Chunker) Reinit() {
	c.clearAttempt()
	c.instIDCounter = 0
	c.prodIDCounter = 0
	c.identityCounter = 0
	c.instIdentityCounter = 0
	c.backtraceNumber = 0
	c.chunkNamingCounter = 1
	c.justificationNamingCounter = 1
	c.ResetDCycleTallies()
	clear(c.chunkFreeStates)
	clear(c.chunkyStates)
	c.timers.Reset()
}

// Teardown releases everything the chunker owns. Must run before the
// symbol manager is torn down.
func (c *Chunker) Teardown() {
	c.clearAttempt()
	c.chunkFreeStates = nil
	c.chunkyStates = nil
	c.identityJoins = nil
	c.constraints = nil
	c.mergeMap = nil
	c.singletons = nil
}
