package types

// CanBeSeenBy reports whether a member with mods declared in declaring is
// accessible from code inside from. A nil from is the outside world and
// sees public members only.
func CanBeSeenBy(mods Modifiers, declaring, from *ReferenceBinding) bool {
	if declaring == nil {
		return true
	}
	if from == nil {
		return mods.Has(Public) && declaring.isPubliclyReachable()
	}
	switch mods.Visibility() {
	case VisibilityPublic:
		return true
	case VisibilityPrivate:
		return declaring.Outermost() == from.Outermost()
	case VisibilityProtected:
		if declaring.Package == from.Package {
			return true
		}
		for t := from; t != nil; t = t.Enclosing {
			if declaring.env.FindSuperTypeOriginatingFrom(t, declaring) != nil {
				return true
			}
		}
		return false
	}
	return declaring.Package == from.Package
}

// TypeCanBeSeenBy reports whether the type declaration rb is accessible from
// code inside from.
func TypeCanBeSeenBy(rb, from *ReferenceBinding) bool {
	if rb.IsLocal() {
		return true
	}
	if rb.Enclosing == nil {
		if rb.Modifiers.Has(Public) {
			return true
		}
		return from != nil && rb.Package == from.Package
	}
	return TypeCanBeSeenBy(rb.Enclosing, from) && CanBeSeenBy(rb.Modifiers, rb.Enclosing, from)
}

func (r *ReferenceBinding) isPubliclyReachable() bool {
	for t := r; t != nil; t = t.Enclosing {
		if !t.Modifiers.Has(Public) && !(t.Enclosing != nil && t.Enclosing.IsInterface()) {
			return false
		}
	}
	return true
}
