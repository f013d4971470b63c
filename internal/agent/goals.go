package agent

import "ebcore/internal/symbols"

// CreateTopGoal makes the level-1 state that roots the goal stack. One
// reference is held by the stack until the goal is popped.
func (a *Agent) CreateTopGoal() *symbols.Identifier {
	goal := a.Syms.MakeIdentifier('S', 1, 0)
	goal.IsGoal = true
	a.TopGoal = goal
	a.BottomGoal = goal
	return goal
}

// PushSubgoal creates a new state one level below the current bottom,
// recording the impasse that caused it.
func (a *Agent) PushSubgoal(impasse symbols.ImpasseType) *symbols.Identifier {
	if a.BottomGoal == nil {
		return a.CreateTopGoal()
	}
	goal := a.Syms.MakeIdentifier('S', a.BottomGoal.Level+1, 0)
	goal.IsGoal = true
	goal.ImpasseType = impasse
	goal.HigherGoal = a.BottomGoal
	a.BottomGoal.LowerGoal = goal
	a.BottomGoal = goal
	return goal
}

// PopSubgoal removes the bottom state, dropping its learning flags and the
// stack's reference.
func (a *Agent) PopSubgoal() {
	goal := a.BottomGoal
	if goal == nil {
		return
	}
	a.Chunker.UnflagState(goal)
	if goal.HigherGoal != nil {
		goal.HigherGoal.LowerGoal = nil
		a.BottomGoal = goal.HigherGoal
	} else {
		a.TopGoal = nil
		a.BottomGoal = nil
	}
	goal.HigherGoal = nil
	a.Syms.Release(goal)
}

// StackDepth counts the goals on the stack.
func (a *Agent) StackDepth() int {
	depth := 0
	for g := a.TopGoal; g != nil; g = g.LowerGoal {
		depth++
	}
	return depth
}

// StateStackString renders the goal stack for status output. Stacks of
// four or fewer states are listed in full; deeper stacks show the top two
// and bottom two with the middle elided.
func (a *Agent) StateStackString() (string, int) {
	if a.TopGoal == nil {
		return "", 0
	}
	depth := a.StackDepth()
	var out string
	if depth < 4 {
		for g := a.TopGoal; g != nil; g = g.LowerGoal {
			if g != a.TopGoal {
				out += ", "
			}
			out += g.String()
		}
		return out, depth
	}
	out = a.TopGoal.String() + ", " + a.TopGoal.LowerGoal.String()
	if depth > 4 {
		out += " ... "
	} else {
		out += ", "
	}
	out += a.BottomGoal.HigherGoal.String() + ", " + a.BottomGoal.String()
	return out, depth
}
