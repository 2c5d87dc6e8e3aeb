package source

import (
	"os"
	"path/filepath"
	"strings"
)

// SourceFile is one Java compilation unit as handed to the front end.
type SourceFile struct {
	Name    string // Display name (e.g., "Foo.java", "<stdin>")
	Path    string // Full file path (empty for in-memory sources)
	Content string
	lines   []string // Cached split lines (lazy initialization)
}

// NewSourceFile creates a new source file
func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		Path:    path,
		Content: content,
	}
}

// NewStdinSource creates a source file for stdin input
func NewStdinSource(content string) *SourceFile {
	return &SourceFile{Name: "<stdin>", Content: content}
}

// FromFile creates a SourceFile from a file path and content
func FromFile(filePath, content string) *SourceFile {
	return NewSourceFile(filepath.Base(filePath), filePath, content)
}

// ReadFile loads a compilation unit from disk.
func ReadFile(filePath string) (*SourceFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromFile(filePath, string(data)), nil
}

// Lines returns the source split into lines (cached)
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// Line returns the 1-based line, or "" when out of range.
func (sf *SourceFile) Line(n int) string {
	lines := sf.Lines()
	if n < 1 || n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], "\r")
}

// DisplayPath returns the best path for display (prefers Path, falls back to Name)
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}

// IsFile returns true if this represents an actual file (has a path)
func (sf *SourceFile) IsFile() bool {
	return sf.Path != ""
}

// PrimaryTypeName is the file name without the .java suffix; the public top
// level type of a unit must carry this name.
func (sf *SourceFile) PrimaryTypeName() string {
	return strings.TrimSuffix(filepath.Base(sf.DisplayPath()), ".java")
}
