// internal/cli/root.go

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

var (
	flagFile      string
	flagCwd       string
	flagList      bool
	flagDryRun    bool
	flagEnv       []string
	flagEnvFile   string
	flagFormat    string
	flagVersion   bool
)

var cliViper = viper.New()

// rootCmd is stride's single entrypoint; there are no subcommands for the
// task-invocation path itself (`stride build`, `stride test : lint`), only
// flags plus the version subcommand below and init (init.go).
var rootCmd = &cobra.Command{
	Use:   "stride [flags] NAME [args...] [: NAME [args...] ...]",
	Short: "Run declarative tasks from a project manifest",
	Long: `stride reads task definitions from a project manifest (pyproject-style
[tool.stride.tasks], standalone stride.toml, or a compat package.toml
[scripts] table) and runs one or more named tasks in sequence.`,
	Args: cobra.ArbitraryArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		applyEnvOverrides(cmd.Flags())
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagVersion {
			printVersion(cmd.OutOrStdout())
			return nil
		}
		return runInvocation(cmd, args)
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&flagFile, "file", "f", "", "explicit manifest path (bypass discovery)")
	flags.StringVar(&flagCwd, "cwd", "", "change into this directory before discovery/execution")
	flags.BoolVarP(&flagList, "list", "l", false, "print each task name and its help line; exit without running")
	flags.BoolVarP(&flagDryRun, "dry-run", "n", false, "resolve and print the plan; do not spawn processes")
	flags.StringArrayVarP(&flagEnv, "env", "e", nil, "environment override KEY=VALUE, applied to every step (repeatable)")
	flags.StringVar(&flagEnvFile, "env-file", "", "load KEY=VALUE pairs from a file and apply as -e")
	flags.StringVar(&flagFormat, "format", "text", "output format for --dry-run and --list (text|yaml)")
	flags.BoolVarP(&flagVersion, "version", "V", false, "print version information")

	bindEnvOverrides(flags)

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. Called once from cmd/stride/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// ExecuteWithArgs runs the CLI with an explicit argv (excluding argv[0]).
func ExecuteWithArgs(args []string) {
	rootCmd.SetArgs(args)
	Execute()
}

func printVersion(w io.Writer) {
	v := strings.TrimSpace(version)
	if v == "" {
		v = "dev"
	}
	c := strings.TrimSpace(commit)
	if c == "" {
		c = "unknown"
	}
	d := strings.TrimSpace(date)
	if d == "" {
		d = "unknown"
	}
	fmt.Fprintf(w, "stride %s\n", v)
	fmt.Fprintf(w, "commit: %s\n", c)
	fmt.Fprintf(w, "built: %s\n", d)
	fmt.Fprintf(w, "go: %s\n", strings.TrimSpace(runtime.Version()))
}
