package ebc

import "ebcore/internal/symbols"

// GateReason explains why an instantiation was refused by the learning gate.
type GateReason uint8

const (
	GateEligible GateReason = iota
	GateLearningOff
	GateTopLevel
	GateChunkFreeState
	GateNotChunkyState
	GateNotBottomState
)

func (r GateReason) String() string {
	switch r {
	case GateEligible:
		return "eligible"
	case GateLearningOff:
		return "learning off"
	case GateTopLevel:
		return "top-level match"
	case GateChunkFreeState:
		return "state flagged to prevent learning"
	case GateNotChunkyState:
		return "state not flagged for learning"
	case GateNotBottomState:
		return "not the bottom state"
	}
	return "unknown"
}

// FlagChunkFree marks a state so that except mode refuses matches in it.
func (c *Chunker) FlagChunkFree(goal *symbols.Identifier) {
	c.chunkFreeStates[goal] = struct{}{}
}

// FlagChunky marks a state as one only mode will learn in.
func (c *Chunker) FlagChunky(goal *symbols.Identifier) {
	c.chunkyStates[goal] = struct{}{}
}

// UnflagState removes both learning flags from a state. Called when the
// goal is popped.
func (c *Chunker) UnflagState(goal *symbols.Identifier) {
	delete(c.chunkFreeStates, goal)
	delete(c.chunkyStates, goal)
}

func (c *Chunker) gateInstantiation(inst *Instantiation) GateReason {
	if !c.settings.LearningOn {
		return GateLearningOff
	}
	if inst.MatchGoalLevel == TopGoalLevel {
		return GateTopLevel
	}
	if c.settings.Except {
		if _, ok := c.chunkFreeStates[inst.MatchGoal]; ok {
			return GateChunkFreeState
		}
	}
	if c.settings.Only {
		if _, ok := c.chunkyStates[inst.MatchGoal]; !ok {
			return GateNotChunkyState
		}
	}
	// AllowBottomUpChunks is cleared on a goal once a chunk has been
	// learned in a goal below it.
	if c.settings.BottomOnly && inst.MatchGoal != nil && !inst.MatchGoal.AllowBottomUpChunks {
		return GateNotBottomState
	}
	return GateEligible
}

// SetLearningForInstantiation runs the gate for one match and records the
// verdict on both the instantiation and the chunker's current-attempt state.
func (c *Chunker) SetLearningForInstantiation(inst *Instantiation) (bool, GateReason) {
	reason := c.gateInstantiation(inst)
	eligible := reason == GateEligible
	inst.OKToVariablize = eligible
	c.learningOnForInst = eligible

	if !eligible && c.tracer.Settings().ChunkWarnings {
		switch reason {
		case GateChunkFreeState:
			c.tracer.Printf("\nWill not attempt to learn a chunk for match of %s because state %s was flagged to prevent learning\n",
				inst.ProdName, inst.MatchGoal)
		case GateNotChunkyState:
			c.tracer.Printf("\nWill not attempt to learn a chunk for match of %s because state %s was not flagged for learning\n",
				inst.ProdName, inst.MatchGoal)
		case GateNotBottomState:
			c.tracer.Printf("\nWill not attempt to learn a chunk for match of %s because state %s is not the bottom state\n",
				inst.ProdName, inst.MatchGoal)
		}
	}
	return eligible, reason
}
