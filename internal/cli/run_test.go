package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/stridecli/stride/internal/manifest"
	"github.com/stridecli/stride/internal/resolve"
)

func TestParseInvocations_Single(t *testing.T) {
	got, err := parseInvocations([]string{"build", "--race"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []resolve.Invocation{{Task: "build", Args: []string{"--race"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseInvocations_MultipleSeparatedByColon(t *testing.T) {
	got, err := parseInvocations([]string{"lint", ":", "test", "-v", ":", "build"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []resolve.Invocation{
		{Task: "lint"},
		{Task: "test", Args: []string{"-v"}},
		{Task: "build"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseInvocations_Empty(t *testing.T) {
	got, err := parseInvocations(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no invocations, got %+v", got)
	}
}

func TestParseInvocations_LeadingColonIsAnError(t *testing.T) {
	_, err := parseInvocations([]string{":", "build"})
	if err == nil {
		t.Fatal("expected error for leading ':'")
	}
}

func TestBuildOverrides_FromFlags(t *testing.T) {
	flagEnv = []string{"FOO=bar", "BAZ=qux"}
	flagEnvFile = ""
	defer func() { flagEnv = nil }()

	overrides, err := buildOverrides("/proj")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overrides["FOO"] != "bar" || overrides["BAZ"] != "qux" {
		t.Fatalf("overrides=%+v", overrides)
	}
}

func TestBuildOverrides_RejectsMalformedFlag(t *testing.T) {
	flagEnv = []string{"NOEQUALS"}
	flagEnvFile = ""
	defer func() { flagEnv = nil }()

	if _, err := buildOverrides("/proj"); err == nil {
		t.Fatal("expected error for malformed -e flag")
	}
}

func testManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Tasks: map[string]manifest.Task{
			"build": {Body: manifest.Body{Kind: manifest.BodyCommand, Command: "go build ./..."}, Help: "compile"},
			"ci":    {Body: manifest.Body{Kind: manifest.BodySteps}},
		},
	}
}

func TestListTasks_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := listTasks(&buf, testManifest(), "text"); err != nil {
		t.Fatalf("listTasks: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "build") || !strings.Contains(out, "[command]") || !strings.Contains(out, "compile") {
		t.Fatalf("unexpected text output: %q", out)
	}
	if !strings.Contains(out, "ci") || !strings.Contains(out, "[steps]") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestListTasks_YAMLFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := listTasks(&buf, testManifest(), "yaml"); err != nil {
		t.Fatalf("listTasks: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "tasks:") || !strings.Contains(out, "name: build") || !strings.Contains(out, "kind: steps") {
		t.Fatalf("unexpected yaml output: %q", out)
	}
	if strings.Contains(out, "[command]") {
		t.Fatalf("yaml output should not contain text-format markers: %q", out)
	}
}

func TestExitCodeFor_ResolutionErrorsMapToTwo(t *testing.T) {
	cases := []error{
		&resolve.ErrUnknownTask{Name: "foo"},
		&resolve.ErrCyclicTask{Cycle: []string{"a", "b", "a"}},
		&resolve.ErrPatternMatchedNothing{Pattern: "x-*"},
	}
	for _, err := range cases {
		if got := exitCodeFor(err); got != 2 {
			t.Fatalf("exitCodeFor(%T) = %d, want 2", err, got)
		}
	}
}

func TestExitCodeFor_ManifestErrorsMapToTwo(t *testing.T) {
	cases := []error{
		&manifest.ErrManifestNotFound{Start: "/proj"},
		&manifest.ErrManifestParse{Path: "/proj/stride.toml", Detail: "bad toml"},
		&manifest.ErrNoTasks{Path: "/proj/stride.toml"},
	}
	for _, err := range cases {
		if got := exitCodeFor(err); got != 2 {
			t.Fatalf("exitCodeFor(%T) = %d, want 2", err, got)
		}
	}
}

func TestExitCodeFor_OtherErrorsMapToOne(t *testing.T) {
	if got := exitCodeFor(errUnrelated{}); got != 1 {
		t.Fatalf("exitCodeFor(errUnrelated) = %d, want 1", got)
	}
}

type errUnrelated struct{}

func (errUnrelated) Error() string { return "unrelated" }
