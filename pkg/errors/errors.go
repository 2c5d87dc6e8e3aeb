package errors

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Diagnostic is the interface implemented by everything the front end reports.
type Diagnostic interface {
	error
	Pos() Position
	Kind() string // e.g., "Syntax", "NameClash", "BoundMismatch"
	// Message returns the rendered message without position info.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
	IsWarning() bool
}

// Binding is anything a problem can point at: a type, a method, a variable.
// Consumers type-assert to the concrete binding they expect.
type Binding interface {
	String() string
}

// --- Syntax ---

// SyntaxError represents a parse failure reported by the front end.
type SyntaxError struct {
	Position
	Msg   string
	Cause error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) IsWarning() bool { return false }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// --- Semantic problems ---

// Severity of a problem.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Problem is a structured semantic diagnostic. The core fills in the
// structured fields only; text is produced by Message for display.
type Problem struct {
	Position
	Reason   Reason
	Severity Severity
	// Name is the offending simple name or selector.
	Name string
	// Bindings are the offending types/methods, most relevant first.
	Bindings []Binding
	// ArgumentIndex is the offending argument position, or -1.
	ArgumentIndex int
	// Variable is the offending type variable, if any.
	Variable Binding
	Cause    error
}

// NewProblem creates a problem with the default severity of its reason.
func NewProblem(reason Reason, pos Position) *Problem {
	sev := SeverityError
	if reason.isWarning() {
		sev = SeverityWarning
	}
	return &Problem{Position: pos, Reason: reason, Severity: sev, ArgumentIndex: -1}
}

func (p *Problem) WithName(name string) *Problem {
	p.Name = name
	return p
}

func (p *Problem) WithBindings(bindings ...Binding) *Problem {
	p.Bindings = append(p.Bindings, bindings...)
	return p
}

func (p *Problem) AtArgument(index int) *Problem {
	p.ArgumentIndex = index
	return p
}

func (p *Problem) ForVariable(v Binding) *Problem {
	p.Variable = v
	return p
}

func (p *Problem) At(pos Position) *Problem {
	p.Position = pos
	return p
}

func (p *Problem) CausedBy(cause error) *Problem {
	p.Cause = cause
	return p
}

func (p *Problem) Error() string {
	if p.Position.IsValid() {
		return fmt.Sprintf("%s at %d:%d: %s", p.Reason, p.Line, p.Column, p.Message())
	}
	return fmt.Sprintf("%s: %s", p.Reason, p.Message())
}
func (p *Problem) Pos() Position   { return p.Position }
func (p *Problem) Kind() string    { return p.Reason.String() }
func (p *Problem) Unwrap() error   { return p.Cause }
func (p *Problem) IsWarning() bool { return p.Severity == SeverityWarning }

// Binding returns the i-th offending binding or nil.
func (p *Problem) Binding(i int) Binding {
	if i < 0 || i >= len(p.Bindings) {
		return nil
	}
	return p.Bindings[i]
}

// Message renders the problem for humans.
func (p *Problem) Message() string {
	arg := func(i int) string {
		if b := p.Binding(i); b != nil {
			return b.String()
		}
		return "?"
	}
	switch p.Reason {
	case NotFound:
		return fmt.Sprintf("%s cannot be resolved", p.Name)
	case NotVisible:
		return fmt.Sprintf("%s is not visible", p.Name)
	case Ambiguous:
		return fmt.Sprintf("The reference %s is ambiguous", p.Name)
	case TypeMismatch:
		if p.ArgumentIndex >= 0 {
			return fmt.Sprintf("Type mismatch in argument %d of %s: cannot convert from %s to %s", p.ArgumentIndex+1, p.Name, arg(0), arg(1))
		}
		return fmt.Sprintf("Type mismatch: cannot convert from %s to %s", arg(0), arg(1))
	case BoundMismatch:
		v := "?"
		if p.Variable != nil {
			v = p.Variable.String()
		}
		return fmt.Sprintf("Bound mismatch: %s is not a valid substitute for the bounded parameter %s of %s", arg(0), v, p.Name)
	case NameClash:
		return fmt.Sprintf("Name clash: %s and %s have the same erasure, yet neither overrides the other", arg(0), arg(1))
	case UnsafeOverride:
		return fmt.Sprintf("Type safety: the return type of %s needs unchecked conversion to conform to %s", arg(0), arg(1))
	case ScopeBoundary:
		return fmt.Sprintf("Cannot refer to %s across a static boundary", p.Name)
	case IncompatibleReturnType:
		return fmt.Sprintf("The return type is incompatible with %s", arg(1))
	case IncompatibleThrows:
		return fmt.Sprintf("Exception %s is not compatible with throws clause in %s", arg(2), arg(1))
	case VisibilityConflict:
		return fmt.Sprintf("Cannot reduce the visibility of the inherited method from %s", arg(1))
	case StaticInstanceConflict:
		return fmt.Sprintf("%s conflicts with %s: static and instance methods cannot override each other", arg(0), arg(1))
	case FinalOverride:
		return fmt.Sprintf("Cannot override the final method from %s", arg(1))
	case AbstractMethodMustBeImplemented:
		return fmt.Sprintf("The type %s must implement the inherited abstract method %s", p.Name, arg(0))
	case DefaultMethodConflict:
		return fmt.Sprintf("Duplicate default methods named %s are inherited from %s and %s", p.Name, arg(0), arg(1))
	case DefaultOverridesObjectMethod:
		return fmt.Sprintf("A default method cannot override a method from java.lang.Object: %s", arg(0))
	case InferenceFailed:
		return fmt.Sprintf("Cannot infer type arguments for %s", p.Name)
	case NotApplicable:
		return fmt.Sprintf("The method %s is not applicable for the arguments", p.Name)
	case InferenceLimitExceeded:
		return fmt.Sprintf("Cannot infer type arguments for %s: the bounds kept growing past the incorporation limit", p.Name)
	case CyclicHierarchy:
		return fmt.Sprintf("Cycle detected: the type %s cannot extend/implement itself or one of its own member types", p.Name)
	case TooManyLocals:
		return fmt.Sprintf("Too many local variables in %s", p.Name)
	case ComplianceViolation:
		return fmt.Sprintf("%s is not available at this source level", p.Name)
	case UncheckedConversion:
		return fmt.Sprintf("Type safety: %s needs unchecked conversion to conform to %s", arg(0), arg(1))
	case VarargsMismatch:
		return fmt.Sprintf("Varargs methods should only override or be overridden by other varargs methods: %s", arg(0))
	}
	return p.Name
}

// --- Error Reporting ---

// SortDiagnostics orders diagnostics by file, then offset.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		pi, pj := diags[i].Pos(), diags[j].Pos()
		if pi.Source != pj.Source && pi.Source != nil && pj.Source != nil {
			return pi.Source.DisplayPath() < pj.Source.DisplayPath()
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})
}

// DisplayErrors prints diagnostics in a user-friendly format, including the
// source line and a position marker.
func DisplayErrors(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		pos := d.Pos()
		label := "Error"
		if d.IsWarning() {
			label = "Warning"
		}
		if pos.Source == nil || !pos.IsValid() {
			fmt.Fprintf(w, "%s %s: %s\n", d.Kind(), label, d.Message())
			continue
		}
		fmt.Fprintf(w, "%s: %s %s at %d:%d: %s\n", pos.Source.DisplayPath(), d.Kind(), label, pos.Line, pos.Column, d.Message())
		line := strings.TrimRight(pos.Source.Line(pos.Line), "\t ")
		if line == "" {
			continue
		}
		fmt.Fprintf(w, "  %s\n", line)
		col := pos.Column - 1
		if col < 0 {
			col = 0
		}
		marker := strings.Repeat(" ", col) + "^"
		if span := pos.EndPos - pos.StartPos; span > 1 && col+span <= len(line) {
			marker += strings.Repeat("~", span-1)
		}
		fmt.Fprintf(w, "  %s\n\n", marker)
	}
}
