package errors

// Reason classifies a semantic problem.
type Reason uint8

const (
	NotFound Reason = iota + 1
	NotVisible
	Ambiguous
	TypeMismatch
	BoundMismatch
	NameClash
	UnsafeOverride
	ScopeBoundary

	IncompatibleReturnType
	IncompatibleThrows
	VisibilityConflict
	StaticInstanceConflict
	FinalOverride
	AbstractMethodMustBeImplemented
	DefaultMethodConflict
	DefaultOverridesObjectMethod
	InferenceFailed
	NotApplicable
	CyclicHierarchy
	TooManyLocals
	ComplianceViolation
	UncheckedConversion
	VarargsMismatch
	InferenceLimitExceeded
)

var reasonNames = [...]string{
	NotFound:                        "NotFound",
	NotVisible:                      "NotVisible",
	Ambiguous:                       "Ambiguous",
	TypeMismatch:                    "TypeMismatch",
	BoundMismatch:                   "BoundMismatch",
	NameClash:                       "NameClash",
	UnsafeOverride:                  "UnsafeOverride",
	ScopeBoundary:                   "ScopeBoundary",
	IncompatibleReturnType:          "IncompatibleReturnType",
	IncompatibleThrows:              "IncompatibleThrows",
	VisibilityConflict:              "VisibilityConflict",
	StaticInstanceConflict:          "StaticInstanceConflict",
	FinalOverride:                   "FinalOverride",
	AbstractMethodMustBeImplemented: "AbstractMethodMustBeImplemented",
	DefaultMethodConflict:           "DefaultMethodConflict",
	DefaultOverridesObjectMethod:    "DefaultOverridesObjectMethod",
	InferenceFailed:                 "InferenceFailed",
	NotApplicable:                   "NotApplicable",
	CyclicHierarchy:                 "CyclicHierarchy",
	TooManyLocals:                   "TooManyLocals",
	ComplianceViolation:             "ComplianceViolation",
	UncheckedConversion:             "UncheckedConversion",
	VarargsMismatch:                 "VarargsMismatch",
	InferenceLimitExceeded:          "InferenceLimitExceeded",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) && reasonNames[r] != "" {
		return reasonNames[r]
	}
	return "Problem"
}

func (r Reason) isWarning() bool {
	switch r {
	case UnsafeOverride, UncheckedConversion, VarargsMismatch:
		return true
	}
	return false
}
