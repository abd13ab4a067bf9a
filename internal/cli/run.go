// internal/cli/run.go

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stridecli/stride/internal/exec"
	"github.com/stridecli/stride/internal/manifest"
	"github.com/stridecli/stride/internal/resolve"
)

// runInvocation is the root command's RunE body: load the manifest, then
// either list tasks, print a dry-run plan, or resolve and execute one or
// more task invocations.
func runInvocation(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr())

	fs := afero.NewOsFs()
	if flagCwd != "" {
		if err := os.Chdir(flagCwd); err != nil {
			return err
		}
	}
	startDir, err := os.Getwd()
	if err != nil {
		return err
	}

	m, err := manifest.Load(fs, startDir, flagFile)
	if err != nil {
		logger.Error("manifest load failed", "error", err)
		return err
	}

	if flagList {
		return listTasks(cmd.OutOrStdout(), m, flagFormat)
	}

	overrides, err := buildOverrides(m.Root)
	if err != nil {
		logger.Error("env override failed", "error", err)
		return err
	}

	invocations, err := parseInvocations(args)
	if err != nil {
		logger.Error("invalid invocation", "error", err)
		return err
	}
	if len(invocations) == 0 {
		return cmd.Help()
	}

	plans, err := resolve.ResolveMany(m, invocations)
	if err != nil {
		logger.Error("resolve failed", "error", err)
		return err
	}

	executor := exec.New(exec.Options{
		DryRun:    flagDryRun,
		Format:    flagFormat,
		Overrides: overrides,
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
		Stdin:     cmd.InOrStdin(),
		Logger:    logger,
	})

	code, err := runPlans(cmd.Context(), executor, m, invocations, plans)
	if err != nil {
		logger.Error("execution failed", "error", err)
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

// runPlans runs each resolved plan, fanning out across workspace members
// (§4.5) when the manifest declares any. Member failure semantics follow
// the top-level keep_going of the invoked task(s): any step across any
// invocation marked keep_going keeps the workspace loop going too.
func runPlans(ctx context.Context, executor *exec.Executor, m *manifest.Manifest, invocations []resolve.Invocation, plans []*resolve.ExecutionPlan) (int, error) {
	if len(m.Members) == 0 {
		lastNonZero := 0
		for _, p := range plans {
			code, err := executor.Run(ctx, p)
			if err != nil {
				return code, err
			}
			if code != 0 {
				if !anyKeepGoing(p) {
					return code, nil
				}
				lastNonZero = code
			}
		}
		return lastNonZero, nil
	}

	dirs, err := memberDirs(m)
	if err != nil {
		return 1, err
	}

	keepGoing := false
	for _, p := range plans {
		if anyKeepGoing(p) {
			keepGoing = true
		}
	}

	lastNonZero := 0
	for _, dir := range dirs {
		memberPlans, err := reresolveFor(invocations, dir)
		if err != nil {
			return 1, err
		}
		code, err := executor.RunWorkspace(ctx, memberPlans, keepGoing)
		if err != nil {
			return code, err
		}
		if code != 0 {
			if !keepGoing {
				return code, nil
			}
			lastNonZero = code
		}
	}
	return lastNonZero, nil
}

func anyKeepGoing(p *resolve.ExecutionPlan) bool {
	for _, s := range p.Steps {
		if s.KeepGoing {
			return true
		}
	}
	return false
}

// memberDirs resolves each workspace member entry (a path, possibly a
// glob, relative to the manifest root) to a concrete directory.
func memberDirs(m *manifest.Manifest) ([]string, error) {
	dirs := make([]string, 0, len(m.Members))
	for _, pattern := range m.Members {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(m.Root, pattern)
		}
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("workspace member %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			dirs = append(dirs, full)
			continue
		}
		sort.Strings(matches)
		dirs = append(dirs, matches...)
	}
	return dirs, nil
}

// reresolveFor re-loads the manifest rooted at dir and re-resolves the same
// task invocations against it, so each member's own task table (and cwd
// defaults) governs its run rather than the root manifest's.
func reresolveFor(invocations []resolve.Invocation, dir string) ([]*resolve.ExecutionPlan, error) {
	fs := afero.NewOsFs()
	mm, err := manifest.Load(fs, dir, "")
	if err != nil {
		return nil, err
	}
	return resolve.ResolveMany(mm, invocations)
}

// parseInvocations splits positional args into one or more `NAME [args...]`
// segments separated by a literal ":" token, per §6.
func parseInvocations(args []string) ([]resolve.Invocation, error) {
	var invocations []resolve.Invocation
	var current *resolve.Invocation

	for _, a := range args {
		if a == ":" {
			if current == nil {
				return nil, fmt.Errorf("unexpected ':' with no preceding task name")
			}
			invocations = append(invocations, *current)
			current = nil
			continue
		}
		if current == nil {
			current = &resolve.Invocation{Task: a}
			continue
		}
		current.Args = append(current.Args, a)
	}
	if current != nil {
		invocations = append(invocations, *current)
	} else if len(invocations) == 0 {
		return nil, nil
	}
	return invocations, nil
}

// buildOverrides merges --env-file and repeated -e KEY=VALUE flags into
// the CLI override map, the highest-priority env layer (§6).
func buildOverrides(root string) (map[string]string, error) {
	overrides := map[string]string{}
	if flagEnvFile != "" {
		path := flagEnvFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		fromFile, err := manifest.LoadEnvFile(path)
		if err != nil {
			return nil, fmt.Errorf("--env-file: %w", err)
		}
		overrides = manifest.MergeEnv(overrides, fromFile)
	}
	for _, kv := range flagEnv {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("-e %q: expected KEY=VALUE", kv)
		}
		overrides[k] = v
	}
	return overrides, nil
}

// listTaskEntry is the serializable view of a task used for --format yaml
// output, mirroring plan_format.go's dryRunStep.
type listTaskEntry struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Help string `yaml:"help,omitempty"`
}

// listTasks implements -l/--list: print each task name, its help line, and
// (a small extension over the teacher's raw-command listing) its resolved
// body kind, since a canonical Task always carries one. --format yaml
// switches to the same machine-readable rendering dry-run uses.
func listTasks(w io.Writer, m *manifest.Manifest, format string) error {
	names := make([]string, 0, len(m.Tasks))
	for name := range m.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]listTaskEntry, 0, len(names))
	for _, name := range names {
		t := m.Tasks[name]
		kind := "command"
		if t.Body.Kind == manifest.BodySteps {
			kind = "steps"
		}
		entries = append(entries, listTaskEntry{Name: name, Kind: kind, Help: t.Help})
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(struct {
			Tasks []listTaskEntry `yaml:"tasks"`
		}{Tasks: entries})
	}

	for _, e := range entries {
		help := e.Help
		if help == "" {
			help = "-"
		}
		fmt.Fprintf(w, "%-20s [%s] %s\n", e.Name, e.Kind, help)
	}
	return nil
}

// newLogger builds the ambient structured logger (§7): plain text by
// default, matching the teacher's unstructured stderr style; JSON under
// --format yaml for consistency with dry-run's machine-readable mode.
func newLogger(w io.Writer) *slog.Logger {
	if flagFormat == "yaml" {
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}
