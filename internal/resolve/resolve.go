package resolve

import (
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/stridecli/stride/internal/argstring"
	"github.com/stridecli/stride/internal/manifest"
)

// Resolve produces an ExecutionPlan for one top-level task invocation.
// args is forwarded to the requested task only — never transitively into
// composites (§4.4's Design Notes decision, see DESIGN.md).
func Resolve(m *manifest.Manifest, taskName string, args []string) (*ExecutionPlan, error) {
	if _, ok := m.Tasks[taskName]; !ok {
		return nil, &ErrUnknownTask{Name: taskName}
	}
	plan := &ExecutionPlan{}
	names := taskNameSet(m)
	if err := expand(m, taskName, args, nil, "", nil, names, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ResolveMany validates and resolves every task name in a multi-invocation
// command line (`stride a : b : c`) before any of them is allowed to run.
// Unknown-task errors across the whole set are aggregated so the user sees
// every mistake at once, not just the first.
func ResolveMany(m *manifest.Manifest, invocations []Invocation) ([]*ExecutionPlan, error) {
	var errs error
	for _, inv := range invocations {
		if _, ok := m.Tasks[inv.Task]; !ok {
			errs = multierr.Append(errs, &ErrUnknownTask{Name: inv.Task})
		}
	}
	if errs != nil {
		return nil, errs
	}

	plans := make([]*ExecutionPlan, 0, len(invocations))
	for _, inv := range invocations {
		p, err := Resolve(m, inv.Task, inv.Args)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// Invocation is one `NAME [args...]` segment of a multi-task command line.
type Invocation struct {
	Task string
	Args []string
}

func taskNameSet(m *manifest.Manifest) map[string]struct{} {
	names := make(map[string]struct{}, len(m.Tasks))
	for n := range m.Tasks {
		names[n] = struct{}{}
	}
	return names
}

// expand walks task name through the manifest, appending PlanSteps to plan.
// inheritedEnv/inheritedCwd are the effective values computed by the parent
// in the current expansion chain (empty at the top level); args is non-nil
// only for the originally requested top-level task.
func expand(
	m *manifest.Manifest,
	name string,
	args []string,
	inheritedEnv map[string]string,
	inheritedCwd string,
	stack []string,
	names map[string]struct{},
	plan *ExecutionPlan,
) error {
	for _, s := range stack {
		if s == name {
			cycle := append(append([]string{}, stack...), name)
			return &ErrCyclicTask{Cycle: cycle}
		}
	}

	task, ok := m.Tasks[name]
	if !ok {
		return &ErrUnknownTask{Name: name}
	}

	effectiveEnv := manifest.MergeEnv(inheritedEnv, task.Env)
	effectiveCwd := resolveCwd(m.Root, task.Cwd, inheritedCwd)
	newStack := append(append([]string{}, stack...), name)

	switch task.Body.Kind {
	case manifest.BodyCommand:
		step, err := buildCommandStep(task, name, args, effectiveEnv, effectiveCwd)
		if err != nil {
			return err
		}
		plan.Steps = append(plan.Steps, step)
		return nil

	case manifest.BodySteps:
		return expandComposite(m, task, name, effectiveEnv, effectiveCwd, newStack, names, plan)

	default:
		return nil
	}
}

func resolveCwd(root, taskCwd, inherited string) string {
	cwd := taskCwd
	if cwd == "" {
		cwd = inherited
	}
	if cwd == "" {
		return root
	}
	if filepath.IsAbs(cwd) {
		return cwd
	}
	return filepath.Join(root, cwd)
}

// buildCommandStep interpolates a command body's template against args
// (the caller's forwarding rule) and produces a single PlanStep.
func buildCommandStep(task manifest.Task, name string, args []string, env map[string]string, cwd string) (PlanStep, error) {
	step := PlanStep{
		AllowShell: task.AllowShell,
		Cwd:        cwd,
		Env:        env,
		KeepGoing:  task.KeepGoing,
		SourceTask: name,
	}

	if task.Verbatim {
		if len(task.Body.Argv) > 0 {
			step.Argv = append([]string{}, task.Body.Argv...)
		} else {
			step.Command = task.Body.Command
		}
		return step, nil
	}

	if len(task.Body.Argv) > 0 {
		argv := make([]string, 0, len(task.Body.Argv))
		sawAll, consumedAny := false, false
		for _, el := range task.Body.Argv {
			if el == "" {
				argv = append(argv, el)
				continue
			}
			res, err := argstring.Interpolate(el, args)
			if err != nil {
				return PlanStep{}, err
			}
			argv = append(argv, res.Text)
			sawAll = sawAll || res.SawAll
			consumedAny = consumedAny || len(res.Consumed) > 0
		}
		if !sawAll && !consumedAny {
			argv = append(argv, args...)
		}
		step.Argv = argv
		return step, nil
	}

	res, err := argstring.Interpolate(task.Body.Command, args)
	if err != nil {
		return PlanStep{}, err
	}
	text := res.Text
	if !res.SawAll {
		rest := argstring.UnconsumedAppend(args, res.Consumed)
		if len(res.Consumed) == 0 && len(rest) > 0 {
			text = text + " " + strings.Join(rest, " ")
		}
	}
	step.Command = text
	return step, nil
}

// expandComposite resolves a Steps body into the concatenation of its
// (filtered) sub-plans, in first-inclusion order.
func expandComposite(
	m *manifest.Manifest,
	task manifest.Task,
	name string,
	inheritedEnv map[string]string,
	inheritedCwd string,
	stack []string,
	names map[string]struct{},
	plan *ExecutionPlan,
) error {
	acc := newOrderedSet()
	anyIncludeMatched := false
	var lastIncludePattern string

	for _, s := range task.Body.Steps {
		if s.Kind == manifest.StepInline {
			step, err := buildCommandStep(
				manifest.Task{Body: manifest.Body{Kind: manifest.BodyCommand, Command: s.Command}, AllowShell: true, KeepGoing: task.KeepGoing},
				name, nil, inheritedEnv, inheritedCwd,
			)
			if err != nil {
				return err
			}
			// Inline steps execute in the accumulator's position, but
			// they aren't named references so they bypass the ordered
			// set entirely; flush pending reference names first so
			// ordering across inline/reference steps is preserved.
			if err := flushReferences(m, acc, inheritedEnv, inheritedCwd, stack, names, plan); err != nil {
				return err
			}
			plan.Steps = append(plan.Steps, step)
			continue
		}

		matches, err := matchNames(s.Pattern, names)
		if err != nil {
			return err
		}
		if s.Include {
			if len(matches) == 0 {
				lastIncludePattern = s.Pattern
			} else {
				anyIncludeMatched = true
			}
			for _, mn := range matches {
				acc.add(mn)
			}
		} else {
			for _, mn := range matches {
				acc.remove(mn)
			}
		}
	}

	if !anyIncludeMatched && lastIncludePattern != "" && len(acc.names()) == 0 {
		return &ErrPatternMatchedNothing{Pattern: lastIncludePattern}
	}

	return flushReferences(m, acc, inheritedEnv, inheritedCwd, stack, names, plan)
}

// flushReferences expands every name currently in acc (in order) and
// empties it, so interleaved inline steps see a consistent accumulator.
func flushReferences(
	m *manifest.Manifest,
	acc *orderedSet,
	inheritedEnv map[string]string,
	inheritedCwd string,
	stack []string,
	names map[string]struct{},
	plan *ExecutionPlan,
) error {
	pending := acc.names()
	for _, n := range pending {
		acc.remove(n)
		if err := expand(m, n, nil, inheritedEnv, inheritedCwd, stack, names, plan); err != nil {
			return err
		}
	}
	return nil
}
