package ebc

import "ebcore/internal/symbols"

// RuleType classifies a learned rule.
type RuleType uint8

const (
	RuleChunk RuleType = iota
	RuleJustification
)

func (r RuleType) String() string {
	if r == RuleJustification {
		return "justification"
	}
	return "chunk"
}

// TopGoalLevel is the goal-stack level of the top state.
const TopGoalLevel = 1

// Production is the rule a match fired from. NamingDepth carries how many
// generations of learned rules sit behind results this production produced,
// so descriptive names can record provenance depth.
type Production struct {
	Name *symbols.SymConstant

	// InterruptOnMatch pauses the agent when an instantiation of this
	// production matches.
	InterruptOnMatch bool

	// DontLearn and ForceLearn mark rules whose firings flag the match
	// state chunk-free or chunky when they fire.
	DontLearn  bool
	ForceLearn bool

	NamingDepth uint64
}

// Instantiation is one match of a production against working memory. Only
// the fields the learning gate and namer consult live here.
type Instantiation struct {
	ID uint64

	Prod     *Production
	ProdName string

	MatchGoal      *symbols.Identifier
	MatchGoalLevel int32

	// OKToVariablize records the gate's verdict: learn a chunk from this
	// instantiation's results, or fall back to a justification.
	OKToVariablize bool
}
