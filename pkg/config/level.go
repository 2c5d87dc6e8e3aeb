package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is a Java compliance/source level. The set is closed.
type Level uint8

const (
	JDK1_3 Level = iota + 1
	JDK1_4
	JDK1_5
	JDK1_6
	JDK1_7
	JDK1_8
	JDK9
	JDK10
	JDK11
	JDK17
	JDK21
)

// Latest is the newest level this front end knows.
const Latest = JDK21

var levelNames = map[Level]string{
	JDK1_3: "1.3",
	JDK1_4: "1.4",
	JDK1_5: "1.5",
	JDK1_6: "1.6",
	JDK1_7: "1.7",
	JDK1_8: "1.8",
	JDK9:   "9",
	JDK10:  "10",
	JDK11:  "11",
	JDK17:  "17",
	JDK21:  "21",
}

// Levels returns every level, oldest first.
func Levels() []Level {
	out := make([]Level, 0, len(levelNames))
	for l := JDK1_3; l <= Latest; l++ {
		out = append(out, l)
	}
	return out
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// ParseLevel accepts "1.8" and "8" style spellings.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	norm := s
	switch s {
	case "3", "4", "5", "6", "7", "8":
		norm = "1." + s
	}
	for l, name := range levelNames {
		if name == norm {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown compliance level %q", s)
}

// UnmarshalYAML lets levels be written as scalars ("1.8", 8, "17").
func (l *Level) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: compliance level must be a scalar", node.Line)
	}
	parsed, err := ParseLevel(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*l = parsed
	return nil
}

// MarshalYAML writes the canonical spelling.
func (l Level) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// --- Feature gates ---

// Generics covers parameterized types, inference, boxing, varargs and bridges.
func (l Level) Generics() bool { return l >= JDK1_5 }

// Boxing enables the loose applicability phase.
func (l Level) Boxing() bool { return l >= JDK1_5 }

// Varargs enables the variable-arity applicability phase.
func (l Level) Varargs() bool { return l >= JDK1_5 }

// Bridges enables bridge method synthesis.
func (l Level) Bridges() bool { return l >= JDK1_5 }

// StaticNameClash reports clashes between inherited static and instance methods
// with the same erasure.
func (l Level) StaticNameClash() bool { return l >= JDK1_7 }

// DefaultMethods enables interface default methods and the related verifier rules.
func (l Level) DefaultMethods() bool { return l >= JDK1_8 }

// TargetTyping lets the expected return type participate fully in inference.
// Before 1.8 it only fills variables the arguments left unconstrained.
func (l Level) TargetTyping() bool { return l >= JDK1_8 }

// EffectivelyFinalCapture allows capturing effectively final locals.
func (l Level) EffectivelyFinalCapture() bool { return l >= JDK1_8 }

// StaticLocalMembers allows static members in local and inner classes.
func (l Level) StaticLocalMembers() bool { return l >= JDK17 }
