package scope

import (
	"fortio.org/safecast"

	"javasema/pkg/errors"
)

// Layout is the outcome of ComputeLocalSlots for one method.
type Layout struct {
	// MaxLocals is the frame size in slots.
	MaxLocals int
	Problems  []*errors.Problem
}

type layouter struct {
	tree     *Tree
	preserve bool
	problems []*errors.Problem
	reported bool
}

// ComputeLocalSlots assigns storage slots to the locals of the method (or
// lambda) scope id. The receiver, synthetic arguments and declared
// parameters come first; block locals follow in declaration order, each
// sub-block starting where its parent stood when it opened, so sibling
// blocks reuse slots. Unused locals get no slot unless the options ask to
// preserve them. long and double take two slots.
func (t *Tree) ComputeLocalSlots(id ID) *Layout {
	ms := t.scopes[id]
	if ms.Kind != MethodScope {
		panic("scope: ComputeLocalSlots on a " + ms.Kind.String() + " scope")
	}
	l := &layouter{tree: t, preserve: t.opts.PreserveUnusedLocals}
	offset := 0
	if !ms.IsStatic() {
		offset = 1
	}
	if ms.IsLambda() {
		for _, a := range ms.lambdaArgs {
			a.Slot = offset
			offset = l.advance(offset, slotSize(a.Type), a.Local.Pos, a.Name)
		}
	} else if ms.Method != nil && ms.Method.IsConstructor() {
		if source := t.EnclosingSourceType(id); source != nil {
			if source.IsEnum() {
				// name and ordinal
				offset += 2
			}
			for _, a := range t.SyntheticArguments(source) {
				a.Slot = offset
				offset = l.advance(offset, slotSize(a.Type), errors.Position{}, a.Name)
			}
		}
	}
	ilocal := 0
	for ilocal < len(ms.Locals) && ms.Locals[ilocal].Argument {
		lv := ms.Locals[ilocal]
		lv.Slot = offset
		offset = l.advance(offset, lv.SlotSize(), lv.Pos, lv.Name)
		ilocal++
	}
	maxOffset := l.block(ms, ilocal, offset)
	debugPrintf("// [Scope Layout] scope %d max locals %d", id, maxOffset)
	return &Layout{MaxLocals: maxOffset, Problems: l.problems}
}

// block lays out s starting at local index ilocal and slot offset, and
// answers the highest offset reached by s or any of its sub-blocks.
func (l *layouter) block(s *Scope, ilocal, offset int) int {
	maxOffset := offset
	var subs []*Scope
	for _, c := range s.Children {
		if child := l.tree.scopes[c]; child.Kind == BlockScope {
			subs = append(subs, child)
		}
	}
	iscope := 0
	for ilocal < len(s.Locals) || iscope < len(subs) {
		if iscope < len(subs) && (ilocal >= len(s.Locals) || subs[iscope].StartIndex <= ilocal) {
			if sub := l.block(subs[iscope], 0, offset); sub > maxOffset {
				maxOffset = sub
			}
			iscope++
			continue
		}
		lv := s.Locals[ilocal]
		ilocal++
		generate := lv.Argument || (lv.Used && !lv.Constant)
		if !generate && l.preserve && !lv.Constant {
			generate = true
		}
		if !generate {
			lv.Slot = -1
			continue
		}
		lv.Slot = offset
		offset = l.advance(offset, lv.SlotSize(), lv.Pos, lv.Name)
	}
	if offset > maxOffset {
		maxOffset = offset
	}
	return maxOffset
}

// advance moves offset past a value of size slots. Frames are limited to
// the u2 range of the class file format.
func (l *layouter) advance(offset, size int, pos errors.Position, name string) int {
	next := offset + size
	if _, err := safecast.Conv[uint16](next - 1); err != nil && !l.reported {
		l.reported = true
		l.problems = append(l.problems, errors.NewProblem(errors.TooManyLocals, pos).WithName(name).CausedBy(err))
	}
	return next
}
