// Package explain keeps a queryable record of every rule the agent has
// learned. Rules are stored as datalog facts and provenance questions such
// as "which chunks descend from this production" are answered by a small
// Mangle program evaluated over them.
package explain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"ebcore/internal/ebc"
	"ebcore/internal/symbols"
)

const rulesSource = `
# Base facts, asserted as rules are learned
Decl learned_rule(Name, Kind, Impasse, Decision) bound [/string, /string, /string, /string].
Decl rule_parent(Name, Parent) bound [/string, /string].

Decl chunk(Name) bound [/string].
chunk(Name) :- learned_rule(Name, "chunk", _, _).

Decl justification(Name) bound [/string].
justification(Name) :- learned_rule(Name, "justification", _, _).

# Transitive provenance across generations of learned rules
Decl rule_ancestor(Name, Ancestor) bound [/string, /string].
rule_ancestor(Name, Parent) :- rule_parent(Name, Parent).
rule_ancestor(Name, Anc) :- rule_parent(Name, Parent), rule_ancestor(Parent, Anc).

Decl learned_from_impasse(Name, Impasse) bound [/string, /string].
learned_from_impasse(Name, Impasse) :- learned_rule(Name, _, Impasse, _).
`

// Stats tallies learning outcomes over the life of the memory.
type Stats struct {
	Chunks         uint64
	Justifications uint64
	Duplicates     uint64
	Failures       map[ebc.FailureType]uint64
}

// Memory is the explanation store for one agent. Like the rest of the
// core it runs on the decision thread and needs no locking.
type Memory struct {
	store       factstore.FactStore
	programInfo *analysis.ProgramInfo
	stats       Stats
}

// New builds an empty explanation memory with the provenance rules loaded.
func New() (*Memory, error) {
	unit, err := parse.Unit(strings.NewReader(rulesSource))
	if err != nil {
		return nil, fmt.Errorf("parse provenance rules: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze provenance rules: %w", err)
	}
	store := factstore.NewSimpleInMemoryStore()
	if _, err := engine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, fmt.Errorf("evaluate provenance rules: %w", err)
	}
	return &Memory{
		store:       store,
		programInfo: programInfo,
		stats:       Stats{Failures: make(map[ebc.FailureType]uint64)},
	}, nil
}

// RecordLearnedRule asserts one learned rule and re-derives provenance.
// It satisfies the chunker's Recorder interface.
func (m *Memory) RecordLearnedRule(name string, kind ebc.RuleType, parent string, impasse symbols.ImpasseType, decision uint64) error {
	m.store.Add(ast.NewAtom("learned_rule",
		ast.String(name),
		ast.String(kind.String()),
		ast.String(impasse.String()),
		ast.String(strconv.FormatUint(decision, 10)),
	))
	if parent != "" {
		m.store.Add(ast.NewAtom("rule_parent", ast.String(name), ast.String(parent)))
	}
	if kind == ebc.RuleChunk {
		m.stats.Chunks++
	} else {
		m.stats.Justifications++
	}
	if _, err := engine.EvalProgramWithStats(m.programInfo, m.store); err != nil {
		return fmt.Errorf("re-derive provenance: %w", err)
	}
	return nil
}

// RecordFailure tallies an aborted learning attempt.
func (m *Memory) RecordFailure(f ebc.FailureType) {
	m.stats.Failures[f]++
}

// RecordDuplicate tallies a rebuilt duplicate rule.
func (m *Memory) RecordDuplicate() {
	m.stats.Duplicates++
}

// Stats returns a copy of the outcome tallies.
func (m *Memory) Stats() Stats {
	out := m.stats
	out.Failures = make(map[ebc.FailureType]uint64, len(m.stats.Failures))
	for k, v := range m.stats.Failures {
		out.Failures[k] = v
	}
	return out
}

func (m *Memory) queryStrings(predicate string, arity int, keep func(args []ast.BaseTerm) (string, bool)) ([]string, error) {
	pred := ast.PredicateSym{Symbol: predicate, Arity: arity}
	var out []string
	err := m.store.GetFacts(ast.NewQuery(pred), func(a ast.Atom) error {
		if s, ok := keep(a.Args); ok {
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", predicate, err)
	}
	return out, nil
}

func termString(t ast.BaseTerm) string {
	if c, ok := t.(ast.Constant); ok && c.Type == ast.StringType {
		return c.Symbol
	}
	return t.String()
}

// Chunks lists the names of all learned chunks.
func (m *Memory) Chunks() ([]string, error) {
	return m.queryStrings("chunk", 1, func(args []ast.BaseTerm) (string, bool) {
		return termString(args[0]), true
	})
}

// Justifications lists the names of all learned justifications.
func (m *Memory) Justifications() ([]string, error) {
	return m.queryStrings("justification", 1, func(args []ast.BaseTerm) (string, bool) {
		return termString(args[0]), true
	})
}

// Ancestors lists every production in a learned rule's provenance chain,
// across generations.
func (m *Memory) Ancestors(name string) ([]string, error) {
	return m.queryStrings("rule_ancestor", 2, func(args []ast.BaseTerm) (string, bool) {
		if termString(args[0]) != name {
			return "", false
		}
		return termString(args[1]), true
	})
}

// RulesFromImpasse lists the rules learned while resolving a given kind of
// impasse.
func (m *Memory) RulesFromImpasse(impasse symbols.ImpasseType) ([]string, error) {
	want := impasse.String()
	return m.queryStrings("learned_from_impasse", 2, func(args []ast.BaseTerm) (string, bool) {
		if termString(args[1]) != want {
			return "", false
		}
		return termString(args[0]), true
	})
}
