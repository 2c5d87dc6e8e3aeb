// Package sourcepath finds the compilation units a set of Java sources
// depends on and orders them for binding.
//
// A Resolver maps a qualified type name to the file that declares it, the
// way a source path root maps package p.q to directory p/q. The Loader
// parses the requested files, follows the type names they mention through
// its resolvers, and hands back every unit in dependency order.
package sourcepath

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"javasema/pkg/source"
)

// ErrNotFound is returned by a Resolver that has no unit for a name.
var ErrNotFound = stderrors.New("source not found")

// Resolver finds the compilation unit declaring a type.
type Resolver interface {
	// Name returns a human-readable name for this resolver
	Name() string

	// Priority orders resolvers; lower is tried first.
	Priority() int

	// Resolve returns the unit declaring the top level type that
	// qualifiedName denotes or is nested in. It wraps ErrNotFound when
	// there is none.
	Resolve(qualifiedName string) (*source.SourceFile, error)
}

// sortResolvers orders rs by priority, keeping insertion order on ties.
func sortResolvers(rs []Resolver) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Priority() < rs[j].Priority() })
}

// unitPath tries the paths qualifiedName may live in, longest first:
// p.q.Outer.Inner is looked up as p/q/Outer/Inner.java, then
// p/q/Outer.java, and so on.
func unitPath(qualifiedName string, exists func(string) bool) (string, bool) {
	parts := strings.Split(qualifiedName, ".")
	for n := len(parts); n >= 1; n-- {
		if parts[n-1] == "" {
			return "", false
		}
		p := strings.Join(parts[:n], "/") + ".java"
		if exists(p) {
			return p, true
		}
	}
	return "", false
}

// FileSystemResolver resolves units below the root of a file system.
type FileSystemResolver struct {
	name     string
	fsys     fs.FS
	root     string // prefix for display paths
	priority int
}

// NewFileSystemResolver creates a resolver over fsys. Paths of resolved
// units are reported relative to root.
func NewFileSystemResolver(fsys fs.FS, root string) *FileSystemResolver {
	return &FileSystemResolver{
		name:     "FileSystem",
		fsys:     fsys,
		root:     root,
		priority: 100,
	}
}

// NewOSFileSystemResolver creates a resolver for the source root dir.
func NewOSFileSystemResolver(dir string) *FileSystemResolver {
	r := NewFileSystemResolver(os.DirFS(dir), filepath.Clean(dir))
	r.name = "OSFileSystem"
	return r
}

// Name returns the resolver name
func (r *FileSystemResolver) Name() string { return r.name }

// Priority returns the resolver priority
func (r *FileSystemResolver) Priority() int { return r.priority }

// SetPriority sets the resolver priority
func (r *FileSystemResolver) SetPriority(priority int) { r.priority = priority }

// Resolve implements Resolver.
func (r *FileSystemResolver) Resolve(qualifiedName string) (*source.SourceFile, error) {
	p, ok := unitPath(qualifiedName, r.isFile)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", r.name, ErrNotFound, qualifiedName)
	}
	data, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("%s: reading %s: %w", r.name, p, err)
	}
	display := p
	if r.root != "" {
		display = filepath.Join(r.root, filepath.FromSlash(p))
	}
	return source.NewSourceFile(path.Base(p), display, string(data)), nil
}

// isFile checks if a path exists and is a file (not a directory)
func (r *FileSystemResolver) isFile(p string) bool {
	if !fs.ValidPath(p) {
		return false
	}
	info, err := fs.Stat(r.fsys, p)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// MemoryResolver resolves units from an in-memory store, keyed by slash
// separated path.
type MemoryResolver struct {
	name     string
	mu       sync.RWMutex
	units    map[string]string
	priority int
}

// NewMemoryResolver creates a new memory-based resolver
func NewMemoryResolver(name string) *MemoryResolver {
	if name == "" {
		name = "Memory"
	}
	return &MemoryResolver{
		name:     name,
		units:    make(map[string]string),
		priority: 50, // ahead of the file system
	}
}

// Name returns the resolver name
func (r *MemoryResolver) Name() string { return r.name }

// Priority returns the resolver priority
func (r *MemoryResolver) Priority() int { return r.priority }

// AddSource stores a unit under path, e.g. "p/q/Foo.java".
func (r *MemoryResolver) AddSource(p, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[path.Clean(p)] = content
}

// Paths lists the stored paths in order.
func (r *MemoryResolver) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.units))
	for p := range r.units {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Resolve implements Resolver.
func (r *MemoryResolver) Resolve(qualifiedName string) (*source.SourceFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := unitPath(qualifiedName, func(p string) bool {
		_, ok := r.units[p]
		return ok
	})
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", r.name, ErrNotFound, qualifiedName)
	}
	return source.NewSourceFile(path.Base(p), p, r.units[p]), nil
}

// Collect reads the Java sources named by paths. A directory contributes
// every .java file below it, in lexical order.
func Collect(paths []string) ([]*source.SourceFile, error) {
	var out []*source.SourceFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			f, err := source.ReadFile(p)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
			continue
		}
		err = filepath.WalkDir(p, func(file string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(file, ".java") {
				return nil
			}
			f, err := source.ReadFile(file)
			if err != nil {
				return err
			}
			out = append(out, f)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("collecting %s: %w", p, err)
		}
	}
	return out, nil
}
