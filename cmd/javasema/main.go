// Command javasema runs the semantic analysis core over Java sources.
package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"javasema/pkg/config"
)

// errProblems signals that analysis ran but reported errors.
var errProblems = stderrors.New("problems reported")

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	level      string
	workers    int
	verbose    bool
	logJSON    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !stderrors.Is(err, errProblems) {
			fmt.Fprintf(os.Stderr, "javasema: %v\n", err)
			os.Exit(70) // Exit code 70: internal software error
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	ro := &rootOptions{}
	root := &cobra.Command{
		Use:           "javasema",
		Short:         "Name resolution, inference and method verification for Java sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			ro.setupLogging(cmd.ErrOrStderr())
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&ro.configPath, "config", "c", "", "YAML options file")
	pf.StringVarP(&ro.level, "level", "l", "", "compliance level, e.g. 1.7 or 17 (overrides the options file)")
	pf.IntVarP(&ro.workers, "workers", "j", 0, "parallel verification workers (0 = GOMAXPROCS)")
	pf.BoolVarP(&ro.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&ro.logJSON, "log-json", false, "log as JSON")

	root.AddCommand(newCheckCommand(ro), newResolveCommand(ro), newLevelsCommand())
	return root
}

func (ro *rootOptions) setupLogging(w io.Writer) {
	logrus.SetOutput(w)
	if ro.logJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	logrus.SetLevel(logrus.WarnLevel)
	if ro.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// options loads the options file and applies the command line overrides.
func (ro *rootOptions) options() (config.Options, error) {
	opts, err := config.LoadOptions(ro.configPath)
	if err != nil {
		return config.Options{}, err
	}
	if ro.level != "" {
		l, err := config.ParseLevel(ro.level)
		if err != nil {
			return config.Options{}, err
		}
		opts.Compliance = l
	}
	if ro.workers != 0 {
		opts.Workers = ro.workers
	}
	if err := opts.Validate(); err != nil {
		return config.Options{}, err
	}
	logrus.WithFields(logrus.Fields{
		"compliance": opts.Compliance.String(),
		"workers":    opts.EffectiveWorkers(),
	}).Debug("options loaded")
	return opts, nil
}

func newLevelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List the supported compliance levels",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, l := range config.Levels() {
				marker := ""
				if l == config.Latest {
					marker = " (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", l, marker)
			}
		},
	}
}
