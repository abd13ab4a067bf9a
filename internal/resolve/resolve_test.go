package resolve

import (
	"testing"

	"github.com/stridecli/stride/internal/manifest"
)

func mustManifest(tasks map[string]manifest.Task) *manifest.Manifest {
	return &manifest.Manifest{Path: "/proj/stride.toml", Root: "/proj", Tasks: tasks}
}

func cmdTask(s string) manifest.Task {
	return manifest.Task{Body: manifest.Body{Kind: manifest.BodyCommand, Command: s}, AllowShell: true}
}

func TestResolveSimpleCommandForwardsArgs(t *testing.T) {
	m := mustManifest(map[string]manifest.Task{"greet": cmdTask("echo hi")})
	plan, err := Resolve(m, "greet", []string{"world"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(plan.Steps) != 1 {
		t.Fatalf("steps=%+v", plan.Steps)
	}
	if plan.Steps[0].Command != "echo hi world" {
		t.Fatalf("command=%q", plan.Steps[0].Command)
	}
}

func TestResolveDefaultPlaceholder(t *testing.T) {
	m := mustManifest(map[string]manifest.Task{"greet": cmdTask("echo ${1:-stranger}")})

	plan, err := Resolve(m, "greet", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Steps[0].Command != "echo stranger" {
		t.Fatalf("command=%q", plan.Steps[0].Command)
	}

	plan, err = Resolve(m, "greet", []string{"alice"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Steps[0].Command != "echo alice" {
		t.Fatalf("command=%q", plan.Steps[0].Command)
	}
}

func TestResolveCompositeGlobAndExclude(t *testing.T) {
	tasks := map[string]manifest.Task{
		"ruff-fmt":  cmdTask("ruff format ."),
		"ruff-lint": cmdTask("ruff check ."),
		"ruff-docs": cmdTask("ruff docs ."),
		"lint": {
			Body: manifest.Body{Kind: manifest.BodySteps, Steps: []manifest.Step{
				{Kind: manifest.StepReference, Pattern: "ruff-*", Include: true},
				{Kind: manifest.StepReference, Pattern: "ruff-docs", Include: false},
			}},
		},
	}
	m := mustManifest(tasks)
	plan, err := Resolve(m, "lint", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("steps=%+v", plan.Steps)
	}
	got := []string{plan.Steps[0].SourceTask, plan.Steps[1].SourceTask}
	want := []string{"ruff-fmt", "ruff-lint"}
	if got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func TestResolveCycleDetected(t *testing.T) {
	tasks := map[string]manifest.Task{
		"a": {Body: manifest.Body{Kind: manifest.BodySteps, Steps: []manifest.Step{{Kind: manifest.StepReference, Pattern: "b", Include: true}}}},
		"b": {Body: manifest.Body{Kind: manifest.BodySteps, Steps: []manifest.Step{{Kind: manifest.StepReference, Pattern: "a", Include: true}}}},
	}
	m := mustManifest(tasks)
	_, err := Resolve(m, "a", nil)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if _, ok := err.(*ErrCyclicTask); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestResolveUnknownTask(t *testing.T) {
	m := mustManifest(map[string]manifest.Task{})
	_, err := Resolve(m, "nope", nil)
	if _, ok := err.(*ErrUnknownTask); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestResolvePatternMatchedNothingFatalOnlyIfNoIncludeMatched(t *testing.T) {
	tasks := map[string]manifest.Task{
		"lint": {Body: manifest.Body{Kind: manifest.BodySteps, Steps: []manifest.Step{
			{Kind: manifest.StepReference, Pattern: "nope-*", Include: true},
		}}},
	}
	m := mustManifest(tasks)
	_, err := Resolve(m, "lint", nil)
	if _, ok := err.(*ErrPatternMatchedNothing); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestResolveEnvLayeringAcrossComposite(t *testing.T) {
	tasks := map[string]manifest.Task{
		"sub": {
			Body: manifest.Body{Kind: manifest.BodyCommand, Command: "true"}, AllowShell: true,
			Env: map[string]string{"A": "sub", "B": "sub"},
		},
		"parent": {
			Body: manifest.Body{Kind: manifest.BodySteps, Steps: []manifest.Step{{Kind: manifest.StepReference, Pattern: "sub", Include: true}}},
			Env:  map[string]string{"A": "parent", "C": "parent"},
		},
	}
	m := mustManifest(tasks)
	plan, err := Resolve(m, "parent", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	env := plan.Steps[0].Env
	if env["A"] != "sub" {
		t.Fatalf("A=%q, sub task env should win over parent", env["A"])
	}
	if env["B"] != "sub" || env["C"] != "parent" {
		t.Fatalf("env=%v", env)
	}
}

func TestResolveCwdInheritance(t *testing.T) {
	tasks := map[string]manifest.Task{
		"sub":    {Body: manifest.Body{Kind: manifest.BodyCommand, Command: "true"}, AllowShell: true},
		"parent": {
			Body: manifest.Body{Kind: manifest.BodySteps, Steps: []manifest.Step{{Kind: manifest.StepReference, Pattern: "sub", Include: true}}},
			Cwd:  "services/api",
		},
	}
	m := mustManifest(tasks)
	plan, err := Resolve(m, "parent", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Steps[0].Cwd != "/proj/services/api" {
		t.Fatalf("cwd=%q", plan.Steps[0].Cwd)
	}
}

func TestResolveVerbatimSuppressesForwarding(t *testing.T) {
	tasks := map[string]manifest.Task{
		"raw": {Body: manifest.Body{Kind: manifest.BodyCommand, Command: "echo $1"}, AllowShell: true, Verbatim: true},
	}
	m := mustManifest(tasks)
	plan, err := Resolve(m, "raw", []string{"ignored"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Steps[0].Command != "echo $1" {
		t.Fatalf("command=%q", plan.Steps[0].Command)
	}
}

func TestResolveInlineCompositeStepNotForwarded(t *testing.T) {
	tasks := map[string]manifest.Task{
		"composite": {Body: manifest.Body{Kind: manifest.BodySteps, Steps: []manifest.Step{
			{Kind: manifest.StepInline, Command: "echo $1"},
		}}},
	}
	m := mustManifest(tasks)
	plan, err := Resolve(m, "composite", []string{"should-not-appear"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Steps[0].Command != "echo " {
		t.Fatalf("command=%q, args must not forward into composites", plan.Steps[0].Command)
	}
}
