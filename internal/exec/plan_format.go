package exec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/stridecli/stride/internal/resolve"
)

// dryRunStep is the serializable view of a PlanStep used for both text and
// --format yaml dry-run output.
type dryRunStep struct {
	Task    string            `yaml:"task"`
	Command string            `yaml:"command"`
	Cwd     string            `yaml:"cwd"`
	Env     map[string]string `yaml:"env,omitempty"`
}

func toDryRunSteps(plan *resolve.ExecutionPlan, overrides map[string]string) []dryRunStep {
	out := make([]dryRunStep, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		cmd := s.Command
		if len(s.Argv) > 0 {
			cmd = fmt.Sprint(s.Argv)
		}
		out = append(out, dryRunStep{
			Task:    s.SourceTask,
			Command: cmd,
			Cwd:     s.Cwd,
			Env:     envDiff(s.Env, overrides),
		})
	}
	return out
}

// printDryRun renders plan to w, either as plain text ("[i/n] task
// (cwd=...)" followed by "-> command" and any env lines) or, with
// format == "yaml", as a structured document suitable for machine
// consumption.
func printDryRun(w io.Writer, runID string, plan *resolve.ExecutionPlan, overrides map[string]string, format string) error {
	steps := toDryRunSteps(plan, overrides)

	if format == "yaml" {
		doc := struct {
			RunID string       `yaml:"run_id"`
			Steps []dryRunStep `yaml:"steps"`
		}{RunID: runID, Steps: steps}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(doc)
	}

	for i, s := range steps {
		fmt.Fprintf(w, "[%d/%d] %s (cwd=%s)\n", i+1, len(steps), s.Task, s.Cwd)
		fmt.Fprintf(w, "      -> %s\n", s.Command)
		if len(s.Env) > 0 {
			for k, v := range s.Env {
				fmt.Fprintf(w, "      env: %s=%s\n", k, v)
			}
		}
	}
	return nil
}
