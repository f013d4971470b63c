package ebc

import (
	"strconv"
	"strings"

	"ebcore/internal/symbols"
)

const (
	chunkNamePrefix         = "chunk"
	justificationNamePrefix = "justify"
)

func impasseSuffix(t symbols.ImpasseType) string {
	switch t {
	case symbols.ImpasseConstraintFailure:
		return "*Failure"
	case symbols.ImpasseConflict:
		return "*Conflict"
	case symbols.ImpasseTie:
		return "*Tie"
	case symbols.ImpasseOpNoChange:
		return "*OpNoChange"
	case symbols.ImpasseStateNoChange:
		return "*StateNoChange"
	}
	return ""
}

// parentBaseName strips an earlier generation's provenance decoration so
// that a chunk learned from a chunk names its ultimate ancestor. A name
// like "chunkx1*mv*Tie*t42-3" reduces to "mv".
func parentBaseName(name, prefix string) string {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return name
	}
	if !strings.HasPrefix(rest, "x") {
		return name
	}
	star := strings.IndexByte(rest, '*')
	if star < 0 {
		return name
	}
	if _, err := strconv.ParseUint(rest[1:star], 10, 64); err != nil {
		return name
	}
	rest = rest[star+1:]
	if end := strings.IndexByte(rest, '*'); end >= 0 {
		return rest[:end]
	}
	return rest
}

// generateRuleName composes and interns a unique name for the rule being
// learned from inst. seq is the per-cycle tally for the rule's kind.
func (c *Chunker) generateRuleName(inst *Instantiation, ruleType RuleType, seq uint64) *symbols.SymConstant {
	prefix := chunkNamePrefix
	counter := &c.chunkNamingCounter
	if ruleType == RuleJustification {
		prefix = justificationNamePrefix
		counter = &c.justificationNamingCounter
	}

	// With learning disabled the descriptive pieces (impasse, dcycle) are
	// not meaningful, so justifications fall back to numbered names.
	if !c.settings.LearningOn || c.settings.NamingStyle == NumberedFormat {
		return c.syms.GenerateUniqueSymConstant(prefix, counter)
	}

	var b strings.Builder
	b.WriteString(prefix)
	if inst.Prod != nil {
		depth := inst.Prod.NamingDepth + 1
		b.WriteString("x")
		b.WriteString(strconv.FormatUint(depth, 10))
		b.WriteString("*")
		b.WriteString(parentBaseName(inst.ProdName, prefix))
	}
	if inst.MatchGoal != nil {
		b.WriteString(impasseSuffix(inst.MatchGoal.ImpasseType))
	}
	b.WriteString("*t")
	if ic := c.clock.InitCount(); ic > 0 {
		b.WriteString(strconv.FormatUint(ic+1, 10))
		b.WriteString("-")
	}
	b.WriteString(strconv.FormatUint(c.clock.DCycleCount(), 10))
	b.WriteString("-")
	b.WriteString(strconv.FormatUint(seq, 10))

	name := b.String()
	if c.syms.FindSymConstant(name) != nil {
		for collision := uint64(2); ; collision++ {
			candidate := name + strconv.FormatUint(collision, 10)
			if c.syms.FindSymConstant(candidate) == nil {
				name = candidate
				break
			}
		}
	}
	return c.syms.InternSymConstant(name)
}
