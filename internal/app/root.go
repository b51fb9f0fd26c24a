// Package app contains the Cobra command tree for generate_filelist.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
}

const usageText = `Usage: generate_filelist <project_path> <job_path>
  project_path: Path to the project directory containing src/, tb/, etc.
  job_path: Path to the job run directory where filelist.f will be created
`

// errUsage reports a wrong number of positional arguments.
var errUsage = errors.New("expected exactly two arguments")

// MissingProjectError reports a project path that does not exist.
type MissingProjectError struct {
	Path string
}

func (e *MissingProjectError) Error() string {
	return fmt.Sprintf("Project path '%s' does not exist", e.Path)
}

// GenerationError wraps any failure while scanning or writing outputs.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating filelist: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// globalFlags are shared by every command.
type globalFlags struct {
	config    string
	noColor   bool
	json      bool
	verbose   bool
	record    bool

	// history lists recorded runs instead of generating.
	history      bool
	historyLimit int
	historyJob   string
}

// newRootCmd builds the command tree writing reports to stdout and
// diagnostics to stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "generate_filelist <project_path> <job_path>",
		Short: "Generate a simulator filelist for an HDL project",
		Long: `generate_filelist scans a hardware design project (src/, tb/ and include/
subdirectories) and writes three files into the job directory:

  filelist.f              sorted source files followed by sorted testbenches
  compile_options.txt     one +incdir+<dir> line per include directory
  project_metadata.json   a summary of the scan

All paths are written relative to the job directory.

With --history and no arguments, recorded runs are listed instead.`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if flags.history {
				if len(args) != 0 {
					return errUsage
				}
				return nil
			}
			if len(args) != 2 {
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.history {
				return runHistory(flags, stdout)
			}
			return runGenerate(flags, args[0], args[1], stdout, stderr)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	f := root.Flags()
	f.StringVar(&flags.config, "config", "", "Config file path (default: ~/.config/generate_filelist/config.yaml)")
	f.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	f.BoolVar(&flags.json, "json", false, "Output as JSON")
	f.BoolVar(&flags.verbose, "verbose", false, "Enable debug logging on stderr")
	f.BoolVar(&flags.record, "record", false, "Record this run in the history database even if history is disabled in config")
	f.BoolVar(&flags.history, "history", false, "List recorded runs instead of generating (takes no arguments)")
	f.IntVar(&flags.historyLimit, "limit", 20, "With --history, show at most N runs (0 for all)")
	f.StringVar(&flags.historyJob, "job", "", "With --history, only show runs that wrote into this job directory")

	return root
}

// Run executes the command line and returns the process exit status. Every
// failure is reported on stdout.
func Run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var missing *MissingProjectError
	var genErr *GenerationError
	switch {
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprint(stdout, usageText)
	case errors.As(err, &missing):
		_, _ = fmt.Fprintf(stdout, "Error: %v\n", missing)
	case errors.As(err, &genErr):
		_, _ = fmt.Fprintf(stdout, "Error generating filelist: %v\n", genErr.Err)
	default:
		_, _ = fmt.Fprintf(stdout, "Error: %v\n", err)
	}
	return 1
}

// Execute is the entry point called from main.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
