// Package symbols implements the agent's symbol interner: five refcounted,
// hash-interned symbol kinds backed by slab pools. Every other subsystem
// relies on identity-by-content: at most one live symbol per identity key
// per kind.
package symbols

import (
	"fmt"
	"strconv"

	"ebcore/internal/hashtable"
)

// Kind tags the five symbol variants.
type Kind uint8

const (
	KindVariable Kind = iota
	KindIdentifier
	KindSymConstant
	KindIntConstant
	KindFloatConstant
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindIdentifier:
		return "identifier"
	case KindSymConstant:
		return "sym constant"
	case KindIntConstant:
		return "int constant"
	case KindFloatConstant:
		return "float constant"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ImpasseType annotates goal identifiers with the reason a subgoal was
// created.
type ImpasseType uint8

const (
	ImpasseNone ImpasseType = iota
	ImpasseConstraintFailure
	ImpasseConflict
	ImpasseTie
	ImpasseOpNoChange
	ImpasseStateNoChange
)

func (it ImpasseType) String() string {
	switch it {
	case ImpasseConstraintFailure:
		return "constraint-failure"
	case ImpasseConflict:
		return "conflict"
	case ImpasseTie:
		return "tie"
	case ImpasseOpNoChange:
		return "op-no-change"
	case ImpasseStateNoChange:
		return "state-no-change"
	default:
		return "none"
	}
}

// header is the common prefix of every symbol variant. The weak
// variablization back-references are never refcounted; owning them would
// create unbreakable cycles.
type header struct {
	link     hashtable.Link
	kind     Kind
	refcount uint64
	hashID   uint32
	tcNum    uint64

	Variablized   Symbol
	Unvariablized Symbol
	OriginalVar   Symbol

	// Cache slots owned by the external memories.
	EpmemHash  uint64
	EpmemValid uint64
	SmemHash   uint64
	SmemValid  uint64
}

func (h *header) HashLink() *hashtable.Link { return &h.link }
func (h *header) Kind() Kind                { return h.kind }
func (h *header) RefCount() uint64          { return h.refcount }
func (h *header) HashID() uint32            { return h.hashID }
func (h *header) TC() uint64                { return h.tcNum }
func (h *header) SetTC(tc uint64)           { h.tcNum = tc }
func (h *header) hdr() *header              { return h }

// Symbol is the closed set of symbol variants. Only the five concrete types
// in this package implement it.
type Symbol interface {
	hashtable.Item
	Kind() Kind
	RefCount() uint64
	HashID() uint32
	TC() uint64
	SetTC(uint64)
	String() string

	hdr() *header
}

// Variable is a production variable such as <s>. Interned by name.
type Variable struct {
	header
	Name         string
	GensymNumber uint64

	// ReteBindings is maintained by the Rete; the interner never touches it.
	ReteBindings interface{}
}

func (v *Variable) String() string { return v.Name }

// Identifier is a working-memory identifier such as S1. Identifiers are not
// content-interned: every creation yields a fresh symbol, keyed by
// (letter, number) for lookup only.
type Identifier struct {
	header
	NameLetter byte
	NameNumber uint64

	Level          int32
	PromotionLevel int32
	LinkCount      uint64

	IsGoal     bool
	IsImpasse  bool
	IsOperator uint64

	// Goal-stack fields, owned by the agent's decision procedure.
	HigherGoal          *Identifier
	LowerGoal           *Identifier
	ImpasseType         ImpasseType
	AllowBottomUpChunks bool

	// Slot and preference structures, owned by the decision procedure.
	Slots               interface{}
	OperatorSlot        interface{}
	PreferencesFromGoal interface{}
	InputWMEs           interface{}

	// Per-memory subsystem headers and ids.
	RewardHeader    interface{}
	EpmemHeader     interface{}
	EpmemCmdHeader  interface{}
	EpmemResult     interface{}
	EpmemID         uint64
	EpmemValidEpoch uint64

	SmemHeader    interface{}
	SmemCmdHeader interface{}
	SmemResult    interface{}

	// SmemLTI is nonzero when the semantic memory subsystem holds this
	// identifier as a long-term identifier.
	SmemLTI uint64
}

func (id *Identifier) String() string {
	return string(id.NameLetter) + strconv.FormatUint(id.NameNumber, 10)
}

// IsLongTerm reports whether the identifier is referenced from semantic
// memory and therefore expected to survive a reset.
func (id *Identifier) IsLongTerm() bool { return id.SmemLTI != 0 }

// SymConstant is a symbolic constant such as "state". Interned by name.
type SymConstant struct {
	header
	Name string

	// Production is a weak back-pointer to the production whose identity
	// this name is, set by production memory.
	Production interface{}
}

func (sc *SymConstant) String() string { return sc.Name }

// IntConstant is a signed 64-bit integer constant.
type IntConstant struct {
	header
	Value int64
}

func (ic *IntConstant) String() string { return strconv.FormatInt(ic.Value, 10) }

// FloatConstant is a 64-bit IEEE float constant. NaN payloads are
// canonicalised at interning time.
type FloatConstant struct {
	header
	Value float64
}

func (fc *FloatConstant) String() string { return strconv.FormatFloat(fc.Value, 'g', -1, 64) }
