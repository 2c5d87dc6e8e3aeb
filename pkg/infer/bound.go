package infer

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
	set "github.com/hashicorp/go-set/v2"

	"javasema/pkg/types"
)

// Relation is the relation a bound states between its variable and type.
type Relation uint8

const (
	// Same: α = T
	Same Relation = iota
	// Upper: α <: T
	Upper
	// Lower: T <: α
	Lower
)

func (r Relation) String() string {
	switch r {
	case Same:
		return "="
	case Upper:
		return "<:"
	}
	return ":>"
}

func (r Relation) inverse() Relation {
	switch r {
	case Upper:
		return Lower
	case Lower:
		return Upper
	}
	return Same
}

// TypeBound is one bound of a bound set. A soft bound is evidence, not a
// requirement: incorporation never sees it, so it cannot fail an
// inference, and resolution only reads it to break ties.
type TypeBound struct {
	Var      *types.InferenceVariable
	Relation Relation
	Type     types.Type
	Soft     bool
}

// Hash keys bounds structurally; types are interned so their IDs suffice.
func (b *TypeBound) Hash() uint64 {
	h := fnv.New64a()
	var buf [18]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(b.Var.ID()))
	buf[8] = byte(b.Relation)
	binary.LittleEndian.PutUint64(buf[9:17], uint64(b.Type.ID()))
	if b.Soft {
		buf[17] = 1
	}
	h.Write(buf[:])
	return h.Sum64()
}

func (b *TypeBound) String() string {
	s := b.Var.String() + " " + b.Relation.String() + " " + b.Type.String()
	if b.Soft {
		s += " (soft)"
	}
	return s
}

// BoundSet is the state of one inference attempt. It is never shared
// between attempts: each phase and each candidate starts from its own
// copy, so a failure leaves nothing behind.
type BoundSet struct {
	env   *types.Environment
	vars  []*types.InferenceVariable
	seen  *set.HashSet[*TypeBound, uint64]
	list  []*TypeBound
	byVar map[*types.InferenceVariable][]*TypeBound
	// soft holds the soft bounds of each variable, apart from byVar so
	// incorporation never reads them.
	soft map[*types.InferenceVariable][]*TypeBound
	// params maps each variable to the type parameter it stands for.
	params map[*types.InferenceVariable]*types.TypeVariable

	// pending holds bounds added since the last incorporation round.
	pending []*TypeBound

	unchecked  bool
	iterations int
	// exhausted is set when incorporation gave up at maxRounds.
	exhausted bool
}

// NewBoundSet creates an empty bound set.
func NewBoundSet(env *types.Environment) *BoundSet {
	return &BoundSet{
		env:    env,
		seen:   set.NewHashSet[*TypeBound, uint64](16),
		byVar:  make(map[*types.InferenceVariable][]*TypeBound),
		soft:   make(map[*types.InferenceVariable][]*TypeBound),
		params: make(map[*types.InferenceVariable]*types.TypeVariable),
	}
}

// Copy returns an independent copy.
func (bs *BoundSet) Copy() *BoundSet {
	c := &BoundSet{
		env:        bs.env,
		vars:       append([]*types.InferenceVariable(nil), bs.vars...),
		seen:       set.NewHashSet[*TypeBound, uint64](len(bs.list)),
		list:       append([]*TypeBound(nil), bs.list...),
		byVar:      make(map[*types.InferenceVariable][]*TypeBound, len(bs.byVar)),
		soft:       make(map[*types.InferenceVariable][]*TypeBound, len(bs.soft)),
		params:     make(map[*types.InferenceVariable]*types.TypeVariable, len(bs.params)),
		pending:    append([]*TypeBound(nil), bs.pending...),
		unchecked:  bs.unchecked,
		iterations: bs.iterations,
		exhausted:  bs.exhausted,
	}
	for _, b := range bs.list {
		c.seen.Insert(b)
	}
	for v, bounds := range bs.byVar {
		c.byVar[v] = append([]*TypeBound(nil), bounds...)
	}
	for v, bounds := range bs.soft {
		c.soft[v] = append([]*TypeBound(nil), bounds...)
	}
	for v, p := range bs.params {
		c.params[v] = p
	}
	return c
}

// Variables returns the inference variables of the set in creation order.
func (bs *BoundSet) Variables() []*types.InferenceVariable { return bs.vars }

// Bounds returns every bound, soft ones included, in insertion order.
func (bs *BoundSet) Bounds() []*TypeBound { return bs.list }

// Unchecked reports whether an unchecked conversion was needed.
func (bs *BoundSet) Unchecked() bool { return bs.unchecked }

// Iterations returns the number of incorporation rounds run so far.
func (bs *BoundSet) Iterations() int { return bs.iterations }

// Exhausted reports whether incorporation stopped at its round limit
// rather than at a contradiction.
func (bs *BoundSet) Exhausted() bool { return bs.exhausted }

// addVariable introduces iv, standing for param.
func (bs *BoundSet) addVariable(iv *types.InferenceVariable, param *types.TypeVariable) {
	if _, ok := bs.params[iv]; ok {
		return
	}
	bs.vars = append(bs.vars, iv)
	bs.params[iv] = param
}

// isVariable reports whether t is one of this set's variables.
func (bs *BoundSet) isVariable(t types.Type) (*types.InferenceVariable, bool) {
	iv, ok := t.(*types.InferenceVariable)
	if !ok {
		return nil, false
	}
	_, mine := bs.params[iv]
	return iv, mine
}

// add records a bound. Trivial bounds are dropped; duplicates are ignored.
func (bs *BoundSet) add(v *types.InferenceVariable, rel Relation, t types.Type) {
	if t == types.Type(v) {
		return
	}
	b := &TypeBound{Var: v, Relation: rel, Type: t}
	if !bs.seen.Insert(b) {
		return
	}
	debugPrintf("// [Infer Bound] %s", b)
	bs.list = append(bs.list, b)
	bs.byVar[v] = append(bs.byVar[v], b)
	if w, ok := t.(*types.InferenceVariable); ok {
		bs.byVar[w] = append(bs.byVar[w], b)
	}
	bs.pending = append(bs.pending, b)
}

// addSoft records a soft bound on v.
func (bs *BoundSet) addSoft(v *types.InferenceVariable, rel Relation, t types.Type) {
	b := &TypeBound{Var: v, Relation: rel, Type: t, Soft: true}
	if !bs.seen.Insert(b) {
		return
	}
	debugPrintf("// [Infer Bound] %s", b)
	bs.list = append(bs.list, b)
	bs.soft[v] = append(bs.soft[v], b)
}

// SoftBounds returns the soft bounds of v.
func (bs *BoundSet) SoftBounds(v *types.InferenceVariable) []*TypeBound { return bs.soft[v] }

// Nullable reports whether null flowed into v.
func (bs *BoundSet) Nullable(v *types.InferenceVariable) bool {
	for _, b := range bs.soft[v] {
		if b.Relation == Lower && b.Type.Kind() == types.KindNull {
			return true
		}
	}
	return false
}

// view is a bound seen from one of its two sides.
type view struct {
	rel   Relation
	other types.Type
	bound *TypeBound
}

// viewsOf lists the bounds of v, each oriented so v is on the left.
func (bs *BoundSet) viewsOf(v *types.InferenceVariable) []view {
	bounds := bs.byVar[v]
	out := make([]view, 0, len(bounds))
	for _, b := range bounds {
		if b.Var == v {
			out = append(out, view{b.Relation, b.Type, b})
		} else {
			out = append(out, view{b.Relation.inverse(), b.Var, b})
		}
	}
	return out
}

func (bs *BoundSet) related(v *types.InferenceVariable, rel Relation) []types.Type {
	var out []types.Type
	for _, vw := range bs.viewsOf(v) {
		if vw.rel == rel {
			out = append(out, vw.other)
		}
	}
	return out
}

// Equalities returns the types v must equal.
func (bs *BoundSet) Equalities(v *types.InferenceVariable) []types.Type { return bs.related(v, Same) }

// UpperBounds returns the types v must be a subtype of.
func (bs *BoundSet) UpperBounds(v *types.InferenceVariable) []types.Type {
	return bs.related(v, Upper)
}

// LowerBounds returns the types that must be subtypes of v.
func (bs *BoundSet) LowerBounds(v *types.InferenceVariable) []types.Type {
	return bs.related(v, Lower)
}

// Instantiation returns the proper type v equals, if known.
func (bs *BoundSet) Instantiation(v *types.InferenceVariable) (types.Type, bool) {
	for _, t := range bs.Equalities(v) {
		if types.IsProper(t) {
			return t, true
		}
	}
	return nil, false
}

// Dump renders the bounds for debugging and test failures.
func (bs *BoundSet) Dump() string {
	lines := make([]string, len(bs.list))
	for i, b := range bs.list {
		lines[i] = b.String()
	}
	return spew.Sdump(lines)
}
