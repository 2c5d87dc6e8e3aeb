package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"javasema/pkg/driver"
	"javasema/pkg/scope"
)

func newResolveCommand(ro *rootOptions) *cobra.Command {
	var erasure bool
	cmd := &cobra.Command{
		Use:   "resolve <type>...",
		Short: "Resolve type references or JVM descriptors against the library types",
		Example: `  javasema resolve 'java.util.Map<String, java.util.List<Integer>>'
  javasema resolve '[Ljava/lang/String;'`,
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
			out := cmd.OutOrStdout()
			failed := false
			for _, text := range args {
				t, p := s.ResolveType(nil, scope.NoScope, text)
				if p != nil {
					fmt.Fprintf(out, "%s: %s: %s\n", text, p.Kind(), p.Message())
					failed = true
					continue
				}
				if erasure {
					fmt.Fprintf(out, "%s => %s (erasure %s)\n", text, t, t.Erasure())
				} else {
					fmt.Fprintf(out, "%s => %s\n", text, t)
				}
			}
			if failed {
				return errProblems
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&erasure, "erasure", false, "also print the erasure")
	return cmd
}
