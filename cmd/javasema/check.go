package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"javasema/pkg/driver"
	"javasema/pkg/errors"
	"javasema/pkg/parser"
	"javasema/pkg/sourcepath"
	"javasema/pkg/types"
)

type checkOptions struct {
	listTypes  bool
	warnings   bool
	sourcePath []string
}

func newCheckCommand(ro *rootOptions) *cobra.Command {
	co := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check <file.java|dir>...",
		Short: "Parse, bind and verify Java sources and print the problems found",
		Long: `Parse, bind and verify Java sources and print the problems found.

Directories are searched for .java files. Types the sources mention but do
not declare are looked up on the source path, one root per --sourcepath.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ro.options()
			if err != nil {
				return err
			}
			s, err := driver.NewSession(opts)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), s, args, co, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&co.listTypes, "types", false, "print the declared types and their methods")
	cmd.Flags().BoolVarP(&co.warnings, "warnings", "w", true, "print warnings as well as errors")
	cmd.Flags().StringSliceVarP(&co.sourcePath, "sourcepath", "s", nil, "source root to search for referenced types (repeatable)")
	return cmd
}

// runCheck loads the sources and whatever they need from the source path,
// binds them together, then verifies every unit. It returns errProblems
// when an error was reported.
func runCheck(ctx context.Context, s *driver.Session, paths []string, co *checkOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := s.Logger()

	// 1. Read and parse
	files, err := sourcepath.Collect(paths)
	if err != nil {
		return err
	}
	resolvers := make([]sourcepath.Resolver, 0, len(co.sourcePath))
	for _, root := range co.sourcePath {
		resolvers = append(resolvers, sourcepath.NewOSFileSystemResolver(root))
	}
	env := s.Environment()
	loader := sourcepath.NewLoader(s.Options().EffectiveWorkers(), func(name string) bool {
		return env.LookupType(name) != nil
	}, resolvers...)
	res, err := loader.Load(ctx, files)
	if err != nil {
		return err
	}

	// 2. Bind
	var diags []errors.Diagnostic
	for _, cu := range res.Units {
		for _, e := range cu.Errors {
			diags = append(diags, e)
		}
	}
	units, err := parser.BindAll(ctx, res.Units, s)
	if err != nil {
		return err
	}
	for _, u := range units {
		for _, p := range u.Problems() {
			diags = append(diags, p)
		}
	}

	// 3. Verify
	reports, err := s.VerifyUnits(ctx, units)
	if err != nil {
		return err
	}
	for _, r := range reports {
		for _, p := range r.Problems() {
			diags = append(diags, p)
		}
	}

	if co.listTypes {
		for _, u := range units {
			printTypes(out, u)
		}
	}

	shown := diags[:0]
	failed := false
	for _, d := range diags {
		if !d.IsWarning() {
			failed = true
		} else if !co.warnings {
			continue
		}
		shown = append(shown, d)
	}
	errors.SortDiagnostics(shown)
	errors.DisplayErrors(out, shown)

	log.WithFields(logrus.Fields{
		"files":       len(files),
		"units":       len(units),
		"diagnostics": len(diags),
	}).Info("check finished")
	if failed {
		return errProblems
	}
	return nil
}

func printTypes(w io.Writer, u *driver.Unit) {
	for _, rb := range u.Types() {
		fmt.Fprintf(w, "%s %s", kindWord(rb), rb.QualifiedName())
		if sc := rb.Superclass(); sc != nil {
			fmt.Fprintf(w, " extends %s", sc)
		}
		if len(rb.Interfaces()) > 0 {
			names := make([]string, len(rb.Interfaces()))
			for i, it := range rb.Interfaces() {
				names[i] = it.String()
			}
			fmt.Fprintf(w, " implements %s", strings.Join(names, ", "))
		}
		fmt.Fprintln(w)
		for _, f := range rb.Fields() {
			fmt.Fprintf(w, "  %s\n", f)
		}
		for _, m := range rb.Methods() {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}
}

func kindWord(rb *types.ReferenceBinding) string {
	switch {
	case rb.Modifiers.Has(types.Annotation):
		return "@interface"
	case rb.IsInterface():
		return "interface"
	case rb.IsEnum():
		return "enum"
	case rb.Modifiers.Has(types.Record):
		return "record"
	}
	return "class"
}
