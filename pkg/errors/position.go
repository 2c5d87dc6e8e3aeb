package errors

import (
	"fmt"

	"javasema/pkg/source"
)

// Position represents a specific location in the source code.
// Line and column are 1-based for human-readability; byte offsets are
// 0-based for tooling.
type Position struct {
	Line     int                // 1-based line number
	Column   int                // 1-based column number
	StartPos int                // 0-based byte offset of the start of the span
	EndPos   int                // 0-based byte offset of the end of the span (exclusive)
	Source   *source.SourceFile // Reference to the source file, nil for synthesized bindings
}

// IsValid reports whether the position points into real source text.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "<unknown>"
	}
	if p.Source != nil {
		return fmt.Sprintf("%s:%d:%d", p.Source.DisplayPath(), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
