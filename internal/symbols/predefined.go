package symbols

// PredefinedSymbols holds the constants and context variables every agent
// pre-interns at creation. Each field carries its own owning reference,
// released only at agent teardown. Downstream code and tests depend on the
// exact names.
type PredefinedSymbols struct {
	ProblemSpace      *SymConstant
	State             *SymConstant
	Operator          *SymConstant
	Superstate        *SymConstant
	IO                *SymConstant
	Object            *SymConstant
	Attribute         *SymConstant
	Impasse           *SymConstant
	Choices           *SymConstant
	None              *SymConstant
	ConstraintFailure *SymConstant
	NoChange          *SymConstant
	Multiple          *SymConstant
	ItemCount         *SymConstant
	NonNumericCount   *SymConstant
	Conflict          *SymConstant
	Tie               *SymConstant
	Item              *SymConstant
	NonNumeric        *SymConstant
	Quiescence        *SymConstant
	T                 *SymConstant
	Nil               *SymConstant
	Type              *SymConstant
	Goal              *SymConstant
	Name              *SymConstant
	InputLink         *SymConstant
	OutputLink        *SymConstant

	TSContext  *Variable
	TOContext  *Variable
	SSSContext *Variable
	SSOContext *Variable
	SSContext  *Variable
	SOContext  *Variable
	SContext   *Variable
	OContext   *Variable
	Wait       *Variable

	RewardLink *SymConstant
	Reward     *SymConstant
	Value      *SymConstant

	Epmem               *SymConstant
	EpmemCmd            *SymConstant
	EpmemResult         *SymConstant
	EpmemRetrieved      *SymConstant
	EpmemStatus         *SymConstant
	EpmemMatchScore     *SymConstant
	EpmemCueSize        *SymConstant
	EpmemNormMatchScore *SymConstant
	EpmemMatchCard      *SymConstant
	EpmemMemoryID       *SymConstant
	EpmemPresentID      *SymConstant
	EpmemNoMemory       *SymConstant
	EpmemGraphMatch     *SymConstant
	EpmemMapping        *SymConstant
	EpmemNode           *SymConstant
	EpmemCue            *SymConstant
	EpmemSuccess        *SymConstant
	EpmemFailure        *SymConstant
	EpmemBadCmd         *SymConstant
	EpmemRetrieve       *SymConstant
	EpmemNext           *SymConstant
	EpmemPrev           *SymConstant
	EpmemQuery          *SymConstant
	EpmemNegQuery       *SymConstant
	EpmemBefore         *SymConstant
	EpmemAfter          *SymConstant
	EpmemProhibit       *SymConstant
	EpmemYes            *SymConstant
	EpmemNo             *SymConstant

	Smem              *SymConstant
	SmemCmd           *SymConstant
	SmemResult        *SymConstant
	SmemRetrieved     *SymConstant
	SmemStatus        *SymConstant
	SmemSuccess       *SymConstant
	SmemFailure       *SymConstant
	SmemBadCmd        *SymConstant
	SmemRetrieve      *SymConstant
	SmemQuery         *SymConstant
	SmemNegQuery      *SymConstant
	SmemProhibit      *SymConstant
	SmemStore         *SymConstant
	SmemMathQuery     *SymConstant
	SmemMathLess      *SymConstant
	SmemMathGreater   *SymConstant
	SmemMathLessEq    *SymConstant
	SmemMathGreaterEq *SymConstant
	SmemMathMax       *SymConstant
	SmemMathMin       *SymConstant

	held []Symbol
}

// CreatePredefinedSymbols interns the full predefined set, taking one
// owning reference per field, and attaches it to the manager.
func (m *Manager) CreatePredefinedSymbols() {
	p := &PredefinedSymbols{}

	sc := func(name string) *SymConstant {
		s := m.InternSymConstant(name)
		p.held = append(p.held, s)
		return s
	}
	v := func(name string) *Variable {
		s := m.InternVariable(name)
		p.held = append(p.held, s)
		return s
	}

	p.ProblemSpace = sc("problem-space")
	p.State = sc("state")
	p.Operator = sc("operator")
	p.Superstate = sc("superstate")
	p.IO = sc("io")
	p.Object = sc("object")
	p.Attribute = sc("attribute")
	p.Impasse = sc("impasse")
	p.Choices = sc("choices")
	p.None = sc("none")
	p.ConstraintFailure = sc("constraint-failure")
	p.NoChange = sc("no-change")
	p.Multiple = sc("multiple")
	p.ItemCount = sc("item-count")
	p.NonNumericCount = sc("non-numeric-count")
	p.Conflict = sc("conflict")
	p.Tie = sc("tie")
	p.Item = sc("item")
	p.NonNumeric = sc("non-numeric")
	p.Quiescence = sc("quiescence")
	p.T = sc("t")
	p.Nil = sc("nil")
	p.Type = sc("type")
	p.Goal = sc("goal")
	p.Name = sc("name")

	p.TSContext = v("<ts>")
	p.TOContext = v("<to>")
	p.SSSContext = v("<sss>")
	p.SSOContext = v("<sso>")
	p.SSContext = v("<ss>")
	p.SOContext = v("<so>")
	p.SContext = v("<s>")
	p.OContext = v("<o>")
	p.Wait = v("wait")

	p.InputLink = sc("input-link")
	p.OutputLink = sc("output-link")

	p.RewardLink = sc("reward-link")
	p.Reward = sc("reward")
	p.Value = sc("value")

	p.Epmem = sc("epmem")
	p.EpmemCmd = sc("command")
	p.EpmemResult = sc("result")
	p.EpmemRetrieved = sc("retrieved")
	p.EpmemStatus = sc("status")
	p.EpmemMatchScore = sc("match-score")
	p.EpmemCueSize = sc("cue-size")
	p.EpmemNormMatchScore = sc("normalized-match-score")
	p.EpmemMatchCard = sc("match-cardinality")
	p.EpmemMemoryID = sc("memory-id")
	p.EpmemPresentID = sc("present-id")
	p.EpmemNoMemory = sc("no-memory")
	p.EpmemGraphMatch = sc("graph-match")
	p.EpmemMapping = sc("mapping")
	p.EpmemNode = sc("node")
	p.EpmemCue = sc("cue")
	p.EpmemSuccess = sc("success")
	p.EpmemFailure = sc("failure")
	p.EpmemBadCmd = sc("bad-cmd")
	p.EpmemRetrieve = sc("retrieve")
	p.EpmemNext = sc("next")
	p.EpmemPrev = sc("previous")
	p.EpmemQuery = sc("query")
	p.EpmemNegQuery = sc("neg-query")
	p.EpmemBefore = sc("before")
	p.EpmemAfter = sc("after")
	p.EpmemProhibit = sc("prohibit")
	p.EpmemYes = sc("yes")
	p.EpmemNo = sc("no")

	p.Smem = sc("smem")
	p.SmemCmd = sc("command")
	p.SmemResult = sc("result")
	p.SmemRetrieved = sc("retrieved")
	p.SmemStatus = sc("status")
	p.SmemSuccess = sc("success")
	p.SmemFailure = sc("failure")
	p.SmemBadCmd = sc("bad-cmd")
	p.SmemRetrieve = sc("retrieve")
	p.SmemQuery = sc("query")
	p.SmemNegQuery = sc("neg-query")
	p.SmemProhibit = sc("prohibit")
	p.SmemStore = sc("store")
	p.SmemMathQuery = sc("math-query")
	p.SmemMathLess = sc("less")
	p.SmemMathGreater = sc("greater")
	p.SmemMathLessEq = sc("less-or-equal")
	p.SmemMathGreaterEq = sc("greater-or-equal")
	p.SmemMathMax = sc("max")
	p.SmemMathMin = sc("min")

	m.Predefined = p
}

// ReleasePredefinedSymbols drops every owning reference taken at creation.
// Must run at agent teardown, before the interner is discarded.
func (m *Manager) ReleasePredefinedSymbols() {
	if m.Predefined == nil {
		return
	}
	for _, s := range m.Predefined.held {
		m.Release(s)
	}
	m.Predefined = nil
}
