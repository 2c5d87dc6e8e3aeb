package scope

import (
	"javasema/pkg/errors"
	"javasema/pkg/types"
)

// LocalVariable is a local or parameter binding.
type LocalVariable struct {
	Name      string
	Type      types.Type
	Modifiers types.Modifiers
	Pos       errors.Position

	// Declaring is the scope the variable was added to.
	Declaring ID
	// Argument marks method and lambda parameters.
	Argument bool
	// ID is the variable's analysis index, unique within the outermost
	// method.
	ID int
	// Slot is the storage slot assigned by ComputeLocalSlots, or -1.
	Slot int
	// Used is set when the variable is read.
	Used bool
	// Assigned counts assignments after the declaration; a variable
	// assigned again is not effectively final.
	Assigned int
	// Constant marks compile-time constants, which need no slot.
	Constant bool
}

func (lv *LocalVariable) String() string {
	if lv.Type == nil {
		return lv.Name
	}
	return lv.Type.String() + " " + lv.Name
}

// IsFinal reports whether the variable is declared final.
func (lv *LocalVariable) IsFinal() bool { return lv.Modifiers.Has(types.Final) }

// IsEffectivelyFinal reports whether the variable may be captured under
// Java 8 rules.
func (lv *LocalVariable) IsEffectivelyFinal() bool {
	return lv.IsFinal() || lv.Assigned == 0
}

// SlotSize is the number of storage slots the variable's type occupies.
func (lv *LocalVariable) SlotSize() int { return slotSize(lv.Type) }

// slotSize is the storage a value of type t takes in a frame: two slots
// for long and double, one otherwise.
func slotSize(t types.Type) int {
	if p, ok := t.(*types.PrimitiveType); ok && p.Slots > 0 {
		return p.Slots
	}
	return 1
}

// AddLocal declares a local in the method or block scope id. A name
// already declared in the same method body is reported but the variable is
// still added, so later references resolve.
func (t *Tree) AddLocal(id ID, lv *LocalVariable) *errors.Problem {
	s := t.scopes[id]
	if s.Kind != MethodScope && s.Kind != BlockScope {
		panic("scope: AddLocal on a " + s.Kind.String() + " scope")
	}
	var problem *errors.Problem
	if prev := t.duplicateLocal(id, lv.Name); prev != nil {
		problem = errors.NewProblem(errors.NameClash, lv.Pos).WithName(lv.Name).WithBindings(prev, lv)
	}
	lv.Declaring = id
	lv.Slot = -1
	lv.ID = *s.analysisIndex
	*s.analysisIndex++
	s.Locals = append(s.Locals, lv)
	debugPrintf("// [Scope AddLocal] %s in scope %d as #%d", lv.Name, id, lv.ID)
	return problem
}

// duplicateLocal looks for name in id and its enclosing blocks up to the
// method scope. Lambda parameters may not shadow enclosing locals either.
func (t *Tree) duplicateLocal(id ID, name string) *LocalVariable {
	for cur := id; cur != NoScope; cur = t.scopes[cur].Parent {
		s := t.scopes[cur]
		if s.Kind != MethodScope && s.Kind != BlockScope {
			return nil
		}
		for _, lv := range s.Locals {
			if lv.Name == name {
				return lv
			}
		}
		if s.Kind == MethodScope && !s.IsLambda() {
			return nil
		}
	}
	return nil
}

// MarkAssigned records an assignment to lv after its declaration.
func (t *Tree) MarkAssigned(lv *LocalVariable) { lv.Assigned++ }

// LocalsOf returns the locals declared directly in id.
func (t *Tree) LocalsOf(id ID) []*LocalVariable { return t.scopes[id].Locals }
