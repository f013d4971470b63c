package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebcore/internal/trace"
)

func TestPredefinedSymbolNames(t *testing.T) {
	m := NewManager(trace.Discard())
	m.CreatePredefinedSymbols()
	p := m.Predefined
	require.NotNil(t, p)

	assert.Equal(t, "problem-space", p.ProblemSpace.Name)
	assert.Equal(t, "state", p.State.Name)
	assert.Equal(t, "operator", p.Operator.Name)
	assert.Equal(t, "superstate", p.Superstate.Name)
	assert.Equal(t, "constraint-failure", p.ConstraintFailure.Name)
	assert.Equal(t, "no-change", p.NoChange.Name)
	assert.Equal(t, "item-count", p.ItemCount.Name)
	assert.Equal(t, "non-numeric-count", p.NonNumericCount.Name)
	assert.Equal(t, "input-link", p.InputLink.Name)
	assert.Equal(t, "output-link", p.OutputLink.Name)

	assert.Equal(t, "<ts>", p.TSContext.Name)
	assert.Equal(t, "<s>", p.SContext.Name)
	assert.Equal(t, "<o>", p.OContext.Name)
	assert.Equal(t, "wait", p.Wait.Name)

	assert.Equal(t, "reward-link", p.RewardLink.Name)
	assert.Equal(t, "normalized-match-score", p.EpmemNormMatchScore.Name)
	assert.Equal(t, "neg-query", p.EpmemNegQuery.Name)
	assert.Equal(t, "math-query", p.SmemMathQuery.Name)
	assert.Equal(t, "greater-or-equal", p.SmemMathGreaterEq.Name)

	// "command" is shared by the epmem and smem vocabularies: one symbol,
	// two owning references.
	assert.Same(t, p.EpmemCmd, p.SmemCmd)
	assert.Equal(t, uint64(2), p.EpmemCmd.RefCount())
}

func TestReleasePredefinedSymbolsEmptiesTables(t *testing.T) {
	m := NewManager(trace.Discard())
	m.CreatePredefinedSymbols()

	counts := m.LiveCounts()
	assert.Greater(t, counts[2], 0)
	assert.Greater(t, counts[0], 0)

	m.ReleasePredefinedSymbols()
	assert.Nil(t, m.Predefined)
	assert.Equal(t, [5]int{0, 0, 0, 0, 0}, m.LiveCounts())
}
