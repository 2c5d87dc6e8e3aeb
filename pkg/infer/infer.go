// Package infer resolves method invocations: it selects the applicable and
// most specific candidate and, for generic methods, infers the type
// arguments from the argument types and the expected result type.
//
// Each call site runs through applicability (strict, then loose, then
// variable arity), invocation type inference and resolution. Inference
// works on a BoundSet over inference variables interned per call site by a
// VariableTable. A failed attempt never mutates the candidate binding.
package infer

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"javasema/pkg/config"
	"javasema/pkg/errors"
	"javasema/pkg/types"
)

const inferDebug = false

func debugPrintf(format string, args ...interface{}) {
	if inferDebug {
		logrus.Debugf(format, args...)
	}
}

// Phase is an applicability phase.
type Phase uint8

const (
	// Strict allows no boxing and no variable arity.
	Strict Phase = iota + 1
	// Loose allows boxing and unboxing.
	Loose
	// Vararg allows boxing and variable arity invocation.
	Vararg
)

func (p Phase) String() string {
	switch p {
	case Strict:
		return "strict"
	case Loose:
		return "loose"
	case Vararg:
		return "vararg"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Policy decides between the parameter driven and the return driven
// solution of a call when both exist and disagree.
type Policy uint8

const (
	// ParameterFirst keeps the solution derived from the arguments alone
	// unless the return driven one is strictly more specific.
	ParameterFirst Policy = iota
	// ReturnFirst keeps the return driven solution whenever it exists.
	ReturnFirst
)

func (p Policy) String() string {
	if p == ReturnFirst {
		return config.PolicyReturnFirst
	}
	return config.PolicyParameterFirst
}

// ParsePolicy maps an options spelling to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", config.PolicyParameterFirst:
		return ParameterFirst, nil
	case config.PolicyReturnFirst:
		return ReturnFirst, nil
	}
	return ParameterFirst, fmt.Errorf("unknown inference policy %q", s)
}

// Call describes one invocation site.
type Call struct {
	Site     types.SiteID
	Selector string
	// Candidates are the member methods visible at the site, already viewed
	// through the receiver type.
	Candidates []*types.MethodBinding
	Arguments  []types.Type
	// Expected is the type the result is assigned to, nil when the call is
	// not in an assignment context.
	Expected types.Type
	// TypeArguments are explicit method type arguments, if any.
	TypeArguments []types.Type
	Pos           errors.Position
}

// Source tells which solution an inferred call used.
type Source uint8

const (
	FromParameters Source = iota
	FromReturn
)

func (s Source) String() string {
	if s == FromReturn {
		return "return"
	}
	return "parameters"
}

// Result is a resolved invocation.
type Result struct {
	// Method is the selected candidate, instantiated for generic methods.
	Method *types.MethodBinding
	// Declaration is the candidate as it was passed in.
	Declaration *types.MethodBinding
	Phase       Phase
	// TypeArguments are the inferred or explicit method type arguments.
	TypeArguments []types.Type
	// Unchecked is set when applicability or a bound check needed an
	// unchecked conversion.
	Unchecked bool
	Source    Source
	// Iterations counts incorporation rounds over every attempt.
	Iterations int
	// Warnings are problems that do not prevent the invocation.
	Warnings []*errors.Problem
}
