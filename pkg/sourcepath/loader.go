package sourcepath

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	set "github.com/hashicorp/go-set/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"javasema/pkg/parser"
	"javasema/pkg/source"
)

// --- Debug Flag ---
const debugLoader = false

func debugPrintf(format string, args ...interface{}) {
	if debugLoader {
		logrus.Debugf(format, args...)
	}
}

// --- End Debug Flag ---

const tracerName = "javasema.sourcepath"

// Loader parses compilation units and the source path units they need.
type Loader struct {
	resolvers []Resolver
	// known reports names that need no source, such as library types.
	known   func(qualifiedName string) bool
	workers int
	log     *logrus.Entry
}

// NewLoader creates a loader that parses with up to workers goroutines
// (at least one). known may be nil.
func NewLoader(workers int, known func(string) bool, resolvers ...Resolver) *Loader {
	if workers < 1 {
		workers = 1
	}
	if known == nil {
		known = func(string) bool { return false }
	}
	l := &Loader{
		resolvers: append([]Resolver(nil), resolvers...),
		known:     known,
		workers:   workers,
		log:       logrus.WithField("component", "sourcepath"),
	}
	sortResolvers(l.resolvers)
	return l
}

// AddResolver adds a resolver to the chain
func (l *Loader) AddResolver(r Resolver) {
	l.resolvers = append(l.resolvers, r)
	sortResolvers(l.resolvers)
}

// Result is the outcome of a load.
type Result struct {
	// Units holds every parsed unit, each after the units it depends on.
	Units []*parser.CompilationUnit
	// Requested is the number of units that came from the files passed to
	// Load; the rest were found on the source path.
	Requested int
	// Graph maps unit paths to the unit paths they depend on.
	Graph *Graph
}

// Load parses files, then every unit the resolvers find for a type name
// that the parsed units mention and nothing declares yet, until no new
// unit turns up.
func (l *Loader) Load(ctx context.Context, files []*source.SourceFile) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "sourcepath.Load")
	defer span.End()

	var units []*parser.CompilationUnit
	declared := make(map[string]*parser.CompilationUnit)
	queued := set.New[string](len(files))
	missed := set.New[string](0)

	var pending []*source.SourceFile
	for _, f := range files {
		if queued.Insert(unitKey(f)) {
			pending = append(pending, f)
		}
	}
	requested := len(pending)

	for round := 1; len(pending) > 0; round++ {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return nil, fmt.Errorf("loading round %d: %w", round, err)
		}

		// 1. Parse the batch
		parsed, err := l.parseAll(ctx, pending)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "parse failed")
			return nil, err
		}
		pending = nil
		for _, cu := range parsed {
			units = append(units, cu)
			for _, td := range cu.Types {
				name := Qualify(cu.Package, td.Name)
				if _, dup := declared[name]; !dup {
					declared[name] = cu
				}
			}
		}

		// 2. Look up what the batch mentions
		for _, cu := range parsed {
			for _, name := range References(cu) {
				if lookupDeclared(declared, name) != nil || missed.Contains(name) || l.known(name) {
					continue
				}
				f, err := l.resolve(name)
				if stderrors.Is(err, ErrNotFound) {
					missed.Insert(name)
					continue
				}
				if err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, "resolve failed")
					return nil, err
				}
				if queued.Insert(unitKey(f)) {
					debugPrintf("// [Loader] %s needs %s (%s)", cu.File.Name, name, f.DisplayPath())
					pending = append(pending, f)
				}
			}
		}
		l.log.WithFields(logrus.Fields{"round": round, "parsed": len(parsed), "queued": len(pending)}).Debug("load round")
	}

	// 3. Order by dependency
	g := NewGraph()
	byKey := make(map[string]*parser.CompilationUnit, len(units))
	for _, cu := range units {
		key := unitKey(cu.File)
		byKey[key] = cu
		g.AddNode(key)
	}
	for _, cu := range units {
		for _, name := range References(cu) {
			if dep := lookupDeclared(declared, name); dep != nil {
				g.AddDependency(unitKey(cu.File), unitKey(dep.File))
			}
		}
	}
	ordered := make([]*parser.CompilationUnit, 0, len(units))
	for _, key := range g.Order() {
		ordered = append(ordered, byKey[key])
	}
	if cycles := g.Cycles(); len(cycles) > 0 {
		l.log.WithField("cycles", cycles).Debug("units depend on each other")
	}

	span.SetAttributes(
		attribute.Int("units", len(ordered)),
		attribute.Int("requested", requested),
	)
	return &Result{Units: ordered, Requested: requested, Graph: g}, nil
}

// parseAll parses files in parallel and returns the units in input order.
func (l *Loader) parseAll(ctx context.Context, files []*source.SourceFile) ([]*parser.CompilationUnit, error) {
	out := make([]*parser.CompilationUnit, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			cu, err := parser.Parse(gctx, f)
			if err != nil {
				return err
			}
			out[i] = cu
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolve asks each resolver in turn.
func (l *Loader) resolve(name string) (*source.SourceFile, error) {
	for _, r := range l.resolvers {
		f, err := r.Resolve(name)
		if err == nil {
			return f, nil
		}
		if !stderrors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// lookupDeclared finds the unit declaring name or the top level type name
// is nested in.
func lookupDeclared(declared map[string]*parser.CompilationUnit, name string) *parser.CompilationUnit {
	for {
		if cu, ok := declared[name]; ok {
			return cu
		}
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			return nil
		}
		name = name[:i]
	}
}

func unitKey(f *source.SourceFile) string {
	return filepath.Clean(f.DisplayPath())
}
