package types

import "strings"

// Modifiers is the modifier flag set of a type, method or field.
type Modifiers uint32

const (
	Public Modifiers = 1 << iota
	Private
	Protected
	Static
	Final
	Synchronized
	Volatile
	Transient
	Native
	Interface
	Abstract
	Strictfp
	Synthetic
	Annotation
	Enum
	Default
	Bridge
	Varargs
	Record
	Sealed
)

// AccessMask covers the visibility bits.
const AccessMask = Public | Private | Protected

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

// Visibility is ordered from least to most visible.
type Visibility uint8

const (
	VisibilityPrivate Visibility = iota
	VisibilityPackage
	VisibilityProtected
	VisibilityPublic
)

func (m Modifiers) Visibility() Visibility {
	switch {
	case m.Has(Public):
		return VisibilityPublic
	case m.Has(Protected):
		return VisibilityProtected
	case m.Has(Private):
		return VisibilityPrivate
	}
	return VisibilityPackage
}

var modifierNames = []struct {
	flag Modifiers
	name string
}{
	{Public, "public"}, {Protected, "protected"}, {Private, "private"},
	{Abstract, "abstract"}, {Default, "default"}, {Static, "static"},
	{Final, "final"}, {Sealed, "sealed"}, {Synchronized, "synchronized"},
	{Native, "native"}, {Strictfp, "strictfp"}, {Transient, "transient"},
	{Volatile, "volatile"},
}

// String renders the source modifiers in canonical order.
func (m Modifiers) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m.Has(mn.flag) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}

// ModifierByKeyword maps a source keyword to its flag.
func ModifierByKeyword(kw string) (Modifiers, bool) {
	for _, mn := range modifierNames {
		if mn.name == kw {
			return mn.flag, true
		}
	}
	return 0, false
}
