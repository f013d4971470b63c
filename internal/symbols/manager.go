package symbols

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"ebcore/internal/hashtable"
	"ebcore/internal/mempool"
	"ebcore/internal/trace"
)

// hashIDStep is the prime increment for per-symbol hash nonces, chosen for
// distribution, not secrecy.
const hashIDStep = 137

// DefaultLeakFile is where refused counter resets dump live identifiers.
const DefaultLeakFile = "leaked-ids.txt"

// ErrIdentifierLeak is returned when ResetIDCounters finds live short-term
// identifiers and refuses to reset.
var ErrIdentifierLeak = errors.New("live short-term identifiers remain")

// LTIRegistry is the semantic-memory collaborator the interner notifies
// after a successful identifier-counter reset.
type LTIRegistry interface {
	OnIDCountersReset() error
}

// Manager owns the five symbol tables and pools for one agent. All
// operations run on the agent's decision thread; there is no locking and
// refcounts are plain integers.
type Manager struct {
	variables      *hashtable.Table
	identifiers    *hashtable.Table
	symConstants   *hashtable.Table
	intConstants   *hashtable.Table
	floatConstants *hashtable.Table

	varPool *mempool.Pool[Variable]
	idPool  *mempool.Pool[Identifier]
	scPool  *mempool.Pool[SymConstant]
	icPool  *mempool.Pool[IntConstant]
	fcPool  *mempool.Pool[FloatConstant]

	hashID    uint32
	idCounter [26]uint64

	tracer   *trace.Tracer
	ltm      LTIRegistry
	leakFile string

	Predefined *PredefinedSymbols
}

// NewManager creates an empty interner. The tracer must not be nil; use
// trace.Discard in tests. Predefined symbols are not created until
// CreatePredefinedSymbols is called.
func NewManager(tracer *trace.Tracer) *Manager {
	m := &Manager{
		variables:      hashtable.New(1, func(it hashtable.Item) uint32 { return hashtable.HashString(it.(*Variable).Name) }),
		identifiers:    hashtable.New(1, func(it hashtable.Item) uint32 { id := it.(*Identifier); return hashIdentifierRaw(id.NameLetter, id.NameNumber) }),
		symConstants:   hashtable.New(1, func(it hashtable.Item) uint32 { return hashtable.HashString(it.(*SymConstant).Name) }),
		intConstants:   hashtable.New(1, func(it hashtable.Item) uint32 { return uint32(it.(*IntConstant).Value) }),
		floatConstants: hashtable.New(1, func(it hashtable.Item) uint32 { return hashFloatRaw(it.(*FloatConstant).Value) }),

		varPool: mempool.New[Variable]("variable", 0),
		idPool:  mempool.New[Identifier]("identifier", 0),
		scPool:  mempool.New[SymConstant]("sym constant", 0),
		icPool:  mempool.New[IntConstant]("int constant", 0),
		fcPool:  mempool.New[FloatConstant]("float constant", 0),

		tracer:   tracer,
		leakFile: DefaultLeakFile,
	}
	for i := range m.idCounter {
		m.idCounter[i] = 1
	}
	return m
}

// SetLTIRegistry attaches the semantic-memory registry consulted on resets.
func (m *Manager) SetLTIRegistry(r LTIRegistry) { m.ltm = r }

// SetLeakFile overrides the path of the leak diagnostic file.
func (m *Manager) SetLeakFile(path string) { m.leakFile = path }

func hashIdentifierRaw(letter byte, number uint64) uint32 {
	return uint32(number) ^ (uint32(letter) << 24)
}

// hashFloatRaw truncates the float value to 32 bits. Values outside the
// int64 range and non-finite values fall back to a fold of the raw bits so
// the conversion stays deterministic.
func hashFloatRaw(v float64) uint32 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v <= math.MinInt64 {
		bits := math.Float64bits(v)
		return uint32(bits ^ (bits >> 32))
	}
	return uint32(int64(v))
}

// canonicalFloat maps every NaN payload to the single canonical quiet NaN so
// repeated NaN interning is idempotent.
func canonicalFloat(v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	return v
}

func floatsEqual(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func (m *Manager) nextHashID() uint32 {
	m.hashID += hashIDStep
	return m.hashID
}

/* ------------------------------------------------------------------
   Lookup. Find* never mutates refcounts and returns nil when absent.
------------------------------------------------------------------ */

// FindVariable returns the live variable named name, or nil.
func (m *Manager) FindVariable(name string) *Variable {
	item := m.variables.Lookup(hashtable.HashString(name), func(it hashtable.Item) bool {
		return it.(*Variable).Name == name
	})
	if item == nil {
		return nil
	}
	return item.(*Variable)
}

// FindIdentifier returns the live identifier (letter, number), or nil.
func (m *Manager) FindIdentifier(letter byte, number uint64) *Identifier {
	item := m.identifiers.Lookup(hashIdentifierRaw(letter, number), func(it hashtable.Item) bool {
		id := it.(*Identifier)
		return id.NameLetter == letter && id.NameNumber == number
	})
	if item == nil {
		return nil
	}
	return item.(*Identifier)
}

// FindSymConstant returns the live symbolic constant named name, or nil.
func (m *Manager) FindSymConstant(name string) *SymConstant {
	item := m.symConstants.Lookup(hashtable.HashString(name), func(it hashtable.Item) bool {
		return it.(*SymConstant).Name == name
	})
	if item == nil {
		return nil
	}
	return item.(*SymConstant)
}

// FindIntConstant returns the live integer constant for value, or nil.
func (m *Manager) FindIntConstant(value int64) *IntConstant {
	item := m.intConstants.Lookup(uint32(value), func(it hashtable.Item) bool {
		return it.(*IntConstant).Value == value
	})
	if item == nil {
		return nil
	}
	return item.(*IntConstant)
}

// FindFloatConstant returns the live float constant for value, or nil. NaN
// queries match the canonical NaN symbol.
func (m *Manager) FindFloatConstant(value float64) *FloatConstant {
	value = canonicalFloat(value)
	item := m.floatConstants.Lookup(hashFloatRaw(value), func(it hashtable.Item) bool {
		return floatsEqual(it.(*FloatConstant).Value, value)
	})
	if item == nil {
		return nil
	}
	return item.(*FloatConstant)
}

/* ------------------------------------------------------------------
   Interning. Each Intern* returns the unique live symbol with its
   refcount incremented by one; callers release exactly once per
   returned reference.
------------------------------------------------------------------ */

// InternVariable returns the unique variable named name, creating it if
// absent.
func (m *Manager) InternVariable(name string) *Variable {
	if v := m.FindVariable(name); v != nil {
		m.AddRef(v)
		return v
	}
	v := m.varPool.Allocate()
	*v = Variable{}
	v.kind = KindVariable
	v.hashID = m.nextHashID()
	v.Name = name
	m.AddRef(v)
	m.variables.Insert(v)
	return v
}

// InternSymConstant returns the unique symbolic constant named name,
// creating it if absent.
func (m *Manager) InternSymConstant(name string) *SymConstant {
	if sc := m.FindSymConstant(name); sc != nil {
		m.AddRef(sc)
		return sc
	}
	sc := m.scPool.Allocate()
	*sc = SymConstant{}
	sc.kind = KindSymConstant
	sc.hashID = m.nextHashID()
	sc.Name = name
	m.AddRef(sc)
	m.symConstants.Insert(sc)
	return sc
}

// InternInt returns the unique integer constant for value.
func (m *Manager) InternInt(value int64) *IntConstant {
	if ic := m.FindIntConstant(value); ic != nil {
		m.AddRef(ic)
		return ic
	}
	ic := m.icPool.Allocate()
	*ic = IntConstant{}
	ic.kind = KindIntConstant
	ic.hashID = m.nextHashID()
	ic.Value = value
	m.AddRef(ic)
	m.intConstants.Insert(ic)
	return ic
}

// InternFloat returns the unique float constant for value. NaN is
// canonicalised first, so a second NaN interning returns the same symbol.
func (m *Manager) InternFloat(value float64) *FloatConstant {
	value = canonicalFloat(value)
	if fc := m.FindFloatConstant(value); fc != nil {
		m.AddRef(fc)
		return fc
	}
	fc := m.fcPool.Allocate()
	*fc = FloatConstant{}
	fc.kind = KindFloatConstant
	fc.hashID = m.nextHashID()
	fc.Value = value
	m.AddRef(fc)
	m.floatConstants.Insert(fc)
	return fc
}

// MakeIdentifier creates a fresh identifier. Identifiers are never
// content-interned; every call produces a new symbol. A lowercase letter is
// uppercased; a non-alphabetic letter becomes 'I'. number 0 draws the next
// number from the letter's counter; a nonzero number forces the counter
// forward to max(counter, number+1).
func (m *Manager) MakeIdentifier(letter byte, level int32, number uint64) *Identifier {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	} else if letter < 'A' || letter > 'Z' {
		letter = 'I'
	}

	id := m.idPool.Allocate()
	*id = Identifier{}
	id.kind = KindIdentifier
	id.hashID = m.nextHashID()
	id.NameLetter = letter

	counter := &m.idCounter[letter-'A']
	if number == 0 {
		number = *counter
		*counter = number + 1
	} else if number >= *counter {
		*counter = number + 1
	}
	id.NameNumber = number

	id.Level = level
	id.PromotionLevel = level
	id.AllowBottomUpChunks = true

	m.AddRef(id)
	m.identifiers.Insert(id)
	return id
}

/* ------------------------------------------------------------------
   Refcount maintenance
------------------------------------------------------------------ */

// AddRef takes an owning reference on sym.
func (m *Manager) AddRef(sym Symbol) {
	sym.hdr().refcount++
}

// Release drops an owning reference. When the refcount reaches zero the
// symbol is detached from its table and its record returned to the pool.
func (m *Manager) Release(sym Symbol) {
	h := sym.hdr()
	if h.refcount == 0 {
		panic(fmt.Sprintf("symbols: release of %s %q with zero refcount", h.kind, sym))
	}
	h.refcount--
	if h.refcount == 0 {
		m.deallocate(sym)
	}
}

// deallocate detaches sym from its table and frees the pool record. The
// default arm is unreachable unless a header was corrupted.
func (m *Manager) deallocate(sym Symbol) {
	switch s := sym.(type) {
	case *Variable:
		m.variables.Remove(s)
		s.Name = ""
		m.varPool.Free(s)
	case *Identifier:
		m.identifiers.Remove(s)
		m.idPool.Free(s)
	case *SymConstant:
		m.symConstants.Remove(s)
		s.Name = ""
		m.scPool.Free(s)
	case *IntConstant:
		m.intConstants.Remove(s)
		m.icPool.Free(s)
	case *FloatConstant:
		m.floatConstants.Remove(s)
		m.fcPool.Free(s)
	default:
		panic("Internal error: called deallocate on non-symbol.")
	}
}

/* ------------------------------------------------------------------
   Bulk resets and diagnostics
------------------------------------------------------------------ */

// ResetIDCounters restarts every letter's identifier numbering at 1. It
// refuses if any live identifier is not long-term, writing the leak
// diagnostic and returning ErrIdentifierLeak. On success the attached LTI
// registry is notified.
func (m *Manager) ResetIDCounters() error {
	if m.identifiers.Count() != 0 {
		ltis := 0
		m.identifiers.ForEach(func(it hashtable.Item) bool {
			if it.(*Identifier).IsLongTerm() {
				ltis++
			}
			return false
		})
		if ltis != m.identifiers.Count() {
			m.tracer.Warnf("Internal warning: wanted to reset identifier generator numbers, but\n" +
				"there are still some identifiers allocated. (Probably a memory leak.)\n" +
				"(Leaving identifier numbers alone.)\n")
			m.dumpLeakedIdentifiers()
			return fmt.Errorf("reset id counters: %w", ErrIdentifierLeak)
		}
		// All remaining identifiers are long-term and (hopefully) exist only
		// in production memory.
	}
	for i := range m.idCounter {
		m.idCounter[i] = 1
	}
	if m.ltm != nil {
		if err := m.ltm.OnIDCountersReset(); err != nil {
			return fmt.Errorf("reset id counters: notify lti registry: %w", err)
		}
	}
	return nil
}

// dumpLeakedIdentifiers writes one line per live identifier to the leak
// file and the trace sink: [@]<letter><number> --> <refcount>, with @ marking
// long-term identifiers.
func (m *Manager) dumpLeakedIdentifiers() {
	f, err := os.Create(m.leakFile)
	if err != nil {
		m.tracer.Warnf("could not write %s: %v\n", m.leakFile, err)
	}
	m.identifiers.ForEach(func(it hashtable.Item) bool {
		id := it.(*Identifier)
		if id.refcount == 0 {
			return false
		}
		prefix := ""
		if id.IsLongTerm() {
			prefix = "@"
		}
		line := fmt.Sprintf("%s%c%d --> %d\n", prefix, id.NameLetter, id.NameNumber, id.refcount)
		m.tracer.Printf("\t%s", line)
		if f != nil {
			io.WriteString(f, line)
		}
		return false
	})
	if f != nil {
		f.Close()
	}
}

// IDCounter returns the next identifier number for letter. Letter must be
// in A–Z.
func (m *Manager) IDCounter(letter byte) uint64 {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	return m.idCounter[letter-'A']
}

// ResetTCNumbers clears the transitive-closure mark of every live
// identifier and variable. Idempotent.
func (m *Manager) ResetTCNumbers() {
	clear := func(it hashtable.Item) bool {
		it.(Symbol).SetTC(0)
		return false
	}
	m.identifiers.ForEach(clear)
	m.variables.ForEach(clear)
}

// ResetVariableGensyms clears the gensym number of every live variable.
func (m *Manager) ResetVariableGensyms() {
	m.variables.ForEach(func(it hashtable.Item) bool {
		it.(*Variable).GensymNumber = 0
		return false
	})
}

// GenerateUniqueSymConstant interns prefix+counter, advancing counter past
// any names already present, and returns the fresh constant. The counter is
// left one past the number actually used.
func (m *Manager) GenerateUniqueSymConstant(prefix string, counter *uint64) *SymConstant {
	for {
		name := prefix + strconv.FormatUint(*counter, 10)
		*counter++
		if m.FindSymConstant(name) == nil {
			return m.InternSymConstant(name)
		}
	}
}

/* ------------------------------------------------------------------
   Introspection
------------------------------------------------------------------ */

// LiveCounts returns the number of live symbols per kind, in the order
// variable, identifier, sym constant, int constant, float constant.
func (m *Manager) LiveCounts() [5]int {
	return [5]int{
		m.variables.Count(),
		m.identifiers.Count(),
		m.symConstants.Count(),
		m.intConstants.Count(),
		m.floatConstants.Count(),
	}
}

// DumpSymbols writes every live symbol, one per line, grouped by kind.
func (m *Manager) DumpSymbols(w io.Writer) {
	dump := func(title string, t *hashtable.Table) {
		fmt.Fprintf(w, "\n--- %s: ---\n", title)
		t.ForEach(func(it hashtable.Item) bool {
			fmt.Fprintln(w, it.(Symbol).String())
			return false
		})
	}
	dump("Symbolic Constants", m.symConstants)
	dump("Integer Constants", m.intConstants)
	dump("Floating-Point Constants", m.floatConstants)
	dump("Identifiers", m.identifiers)
	dump("Variables", m.variables)
}
