// Package exec runs a resolved ExecutionPlan: one child process at a time,
// honoring per-step cwd, layered environment, keep-going policy, dry-run,
// and SIGINT/SIGTERM forwarding.
package exec

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	osexec "os/exec"

	"github.com/google/uuid"

	"github.com/stridecli/stride/internal/resolve"
)

// Options configures one Executor run.
type Options struct {
	DryRun    bool
	Format    string // "text" (default) or "yaml", dry-run/list output
	Overrides map[string]string // CLI -e / --env-file, highest env priority

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	Logger *slog.Logger
}

// Executor runs ExecutionPlans.
type Executor struct {
	opts Options
}

// New builds an Executor, filling in stdio/logger defaults.
func New(opts Options) *Executor {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(opts.Stderr, nil))
	}
	return &Executor{opts: opts}
}

// Signal codes surfaced on interrupt, per §6.
const ExitInterrupted = 130

// Run executes plan and returns the aggregate exit code. In dry-run mode,
// nothing is spawned and the returned code is always 0.
func (e *Executor) Run(ctx context.Context, plan *resolve.ExecutionPlan) (int, error) {
	runID := uuid.New().String()

	if e.opts.DryRun {
		return 0, printDryRun(e.opts.Stdout, runID, plan, e.opts.Overrides, e.opts.Format)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lastNonZero := 0
	for _, step := range plan.Steps {
		code, err := e.runStep(ctx, step)
		if err != nil {
			if ctx.Err() != nil {
				e.opts.Logger.Error("interrupted", "run_id", runID, "task", step.SourceTask)
				return ExitInterrupted, nil
			}
			e.opts.Logger.Error("step failed to start", "run_id", runID, "task", step.SourceTask, "error", err)
			return 1, err
		}
		if code != 0 {
			if !step.KeepGoing {
				return code, nil
			}
			e.opts.Logger.Warn("step failed, continuing (keep_going)", "run_id", runID, "task", step.SourceTask, "exit_code", code)
			lastNonZero = code
		}
	}
	return lastNonZero, nil
}

// RunWorkspace runs already-resolved plans in order, stopping at the first
// non-zero exit unless keepGoing is set, in which case it continues and
// returns the last non-zero code. The CLI's workspace fan-out calls it once
// per member directory with the plans resolved against that member's
// manifest; keepGoing carries the top-level keep_going (§4.5).
func (e *Executor) RunWorkspace(ctx context.Context, plans []*resolve.ExecutionPlan, keepGoing bool) (int, error) {
	lastNonZero := 0
	for _, plan := range plans {
		code, err := e.Run(ctx, plan)
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

func (e *Executor) runStep(ctx context.Context, step resolve.PlanStep) (int, error) {
	var cmd *osexec.Cmd

	if step.AllowShell {
		interp, flag := shellInvocation()
		cmd = osexec.CommandContext(ctx, interp, flag, step.Command)
	} else {
		argv := step.Argv
		if len(argv) == 0 {
			var err error
			argv, err = tokenize(step.Command)
			if err != nil {
				return 1, fmt.Errorf("task %q: %w", step.SourceTask, err)
			}
		}
		cmd = osexec.CommandContext(ctx, argv[0], argv[1:]...)
	}

	cmd.Dir = step.Cwd
	cmd.Env = buildEnv(step.Env, e.opts.Overrides)
	cmd.Stdout = e.opts.Stdout
	cmd.Stderr = e.opts.Stderr
	cmd.Stdin = e.opts.Stdin
	prepareProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return 1, err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = interruptChild(cmd)
		<-done
		return ExitInterrupted, ctx.Err()
	case err := <-done:
		if err == nil {
			return 0, nil
		}
		var exitErr *osexec.ExitError
		if ok := asExitError(err, &exitErr); ok {
			return exitErr.ExitCode(), nil
		}
		return 1, err
	}
}

func asExitError(err error, target **osexec.ExitError) bool {
	ee, ok := err.(*osexec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}
