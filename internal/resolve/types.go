// Package resolve expands a requested task name and argument vector into a
// flat, ordered ExecutionPlan: composites are expanded, glob/filter steps
// are matched against the task table, caller arguments are forwarded per
// the ArgString rules, and cycles are detected before any step is returned.
package resolve

import "github.com/stridecli/stride/internal/manifest"

// PlanStep is one concrete unit of work the Executor will run.
type PlanStep struct {
	// Command is the shell-form command text (used when AllowShell is
	// true, or as the display form when AllowShell is false and Argv is
	// empty — in which case the Executor tokenizes it itself).
	Command string
	// Argv is populated when the originating task declared its body as an
	// argv sequence (cmd = [...]); when set, it is used as-is instead of
	// tokenizing Command.
	Argv []string

	AllowShell bool
	Cwd        string
	Env        map[string]string
	KeepGoing  bool

	SourceTask string
}

// ExecutionPlan is the ordered, flat sequence of steps a Resolve call
// produces for one top-level task invocation.
type ExecutionPlan struct {
	Steps []PlanStep
}
