package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// recognizedTaskKeys is the closed set TaskNormalizer accepts on a
// structured task record. Anything else is a typo and is rejected.
var recognizedTaskKeys = map[string]struct{}{
	"help": {}, "cwd": {}, "env": {}, "env_file": {}, "keep_going": {},
	"verbatim": {}, "shell": {}, "cmd": {}, "composite": {},
}

// rawTaskRecord is the mapstructure decode target for the structured
// (table) task shape. "keep_going" is the one and only accepted spelling
// of the keep-going key; "allow_fail" is rejected by the key-set check
// before this struct is ever populated.
type rawTaskRecord struct {
	Help      string         `mapstructure:"help"`
	Cwd       string         `mapstructure:"cwd"`
	Env       map[string]any `mapstructure:"env"`
	EnvFile   string         `mapstructure:"env_file"`
	KeepGoing bool           `mapstructure:"keep_going"`
	Verbatim  bool           `mapstructure:"verbatim"`
	Shell     string         `mapstructure:"shell"`
	Cmd       any            `mapstructure:"cmd"`
	Composite []any          `mapstructure:"composite"`
}

// NormalizeTasks folds a dialect's raw tasks table (map[string]any, values
// being string | []any | map[string]any) into canonical Tasks. When
// fromScripts is true (compat mode), every value must be a string and
// becomes a shell Command (allow_shell=true, no other fields).
func NormalizeTasks(raw map[string]any, fromScripts bool) (map[string]Task, error) {
	names := make(map[string]struct{}, len(raw))
	for name := range raw {
		names[name] = struct{}{}
	}

	out := make(map[string]Task, len(raw))
	for name, val := range raw {
		t, err := normalizeOne(name, val, names, fromScripts)
		if err != nil {
			return nil, err
		}
		t.Name = name
		out[name] = t
	}
	return out, nil
}

func normalizeOne(name string, val any, names map[string]struct{}, fromScripts bool) (Task, error) {
	if fromScripts {
		s, ok := val.(string)
		if !ok {
			return Task{}, fmt.Errorf("task %q: compat [scripts] entries must be strings", name)
		}
		return Task{Body: Body{Kind: BodyCommand, Command: s}, AllowShell: true}, nil
	}

	switch v := val.(type) {
	case string:
		return Task{Body: Body{Kind: BodyCommand, Command: v}, AllowShell: true}, nil

	case []any:
		steps, err := classifySteps(v, names)
		if err != nil {
			return Task{}, fmt.Errorf("task %q: %w", name, err)
		}
		return Task{Body: Body{Kind: BodySteps, Steps: steps}}, nil

	case map[string]any:
		return normalizeRecord(name, v, names)

	default:
		return Task{}, fmt.Errorf("task %q: unsupported shape %T", name, val)
	}
}

func normalizeRecord(name string, v map[string]any, names map[string]struct{}) (Task, error) {
	for key := range v {
		if _, ok := recognizedTaskKeys[key]; !ok {
			return Task{}, &ErrUnknownTaskKey{Task: name, Key: key}
		}
	}

	var rec rawTaskRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   &rec,
		Metadata: nil,
	})
	if err != nil {
		return Task{}, fmt.Errorf("task %q: build decoder: %w", name, err)
	}
	if err := dec.Decode(v); err != nil {
		return Task{}, fmt.Errorf("task %q: decode: %w", name, err)
	}

	bodyKeysSet := []string{}
	if _, ok := v["shell"]; ok {
		bodyKeysSet = append(bodyKeysSet, "shell")
	}
	if _, ok := v["cmd"]; ok {
		bodyKeysSet = append(bodyKeysSet, "cmd")
	}
	if _, ok := v["composite"]; ok {
		bodyKeysSet = append(bodyKeysSet, "composite")
	}
	if len(bodyKeysSet) > 1 {
		return Task{}, &ErrAmbiguousTaskBody{Task: name, Keys: bodyKeysSet}
	}
	if len(bodyKeysSet) == 0 {
		return Task{}, &ErrEmptyTaskBody{Task: name}
	}

	t := Task{
		Help:      rec.Help,
		Cwd:       rec.Cwd,
		EnvFile:   rec.EnvFile,
		KeepGoing: rec.KeepGoing,
		Verbatim:  rec.Verbatim,
	}
	if len(rec.Env) > 0 {
		env, err := coerceEnv(rec.Env)
		if err != nil {
			return Task{}, fmt.Errorf("task %q: %w", name, err)
		}
		t.Env = env
	}

	switch bodyKeysSet[0] {
	case "shell":
		t.Body = Body{Kind: BodyCommand, Command: rec.Shell}
		t.AllowShell = true

	case "cmd":
		switch cv := rec.Cmd.(type) {
		case string:
			t.Body = Body{Kind: BodyCommand, Command: cv}
			t.AllowShell = false
		case []any:
			argv, err := toStringSlice(cv)
			if err != nil {
				return Task{}, fmt.Errorf("task %q: cmd: %w", name, err)
			}
			t.Body = Body{Kind: BodyCommand, Command: strings.Join(argv, " "), Argv: argv}
			t.AllowShell = false
		default:
			return Task{}, fmt.Errorf("task %q: cmd must be a string or a list of strings", name)
		}

	case "composite":
		steps, err := classifySteps(rec.Composite, names)
		if err != nil {
			return Task{}, fmt.Errorf("task %q: %w", name, err)
		}
		t.Body = Body{Kind: BodySteps, Steps: steps}
	}

	return t, nil
}

func coerceEnv(raw map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s, err := cast.ToStringE(raw[k])
		if err != nil {
			return nil, fmt.Errorf("env %q: %w", k, err)
		}
		out[k] = s
	}
	return out, nil
}

func toStringSlice(v []any) ([]string, error) {
	out := make([]string, 0, len(v))
	for _, it := range v {
		s, err := cast.ToStringE(it)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// classifySteps folds a composite's raw element list into canonical Steps,
// deciding per element whether it is an inline command or a task reference
// (literal or glob pattern), per the Open Question resolution in DESIGN.md:
// an exact match against the task table always wins.
func classifySteps(raw []any, names map[string]struct{}) ([]Step, error) {
	steps := make([]Step, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("composite elements must be strings, got %T", item)
		}
		steps = append(steps, classifyStep(s, names))
	}
	return steps, nil
}

func classifyStep(raw string, names map[string]struct{}) Step {
	if _, ok := names[raw]; ok {
		return Step{Kind: StepReference, Pattern: raw, Include: true}
	}
	include := true
	prefixLen := 0
	if strings.HasPrefix(raw, "+") {
		include = true
		prefixLen = 1
	} else if strings.HasPrefix(raw, "-") || strings.HasPrefix(raw, "!") {
		include = false
		prefixLen = 1
	}

	rest := raw[prefixLen:]
	if prefixLen > 0 {
		if isReference(rest, names) {
			return Step{Kind: StepReference, Pattern: rest, Include: include}
		}
		// The prefix didn't lead anywhere: treat the whole original text
		// as a literal inline command instead.
		return Step{Kind: StepInline, Command: raw}
	}

	if isReference(raw, names) {
		return Step{Kind: StepReference, Pattern: raw, Include: true}
	}
	return Step{Kind: StepInline, Command: raw}
}

func isReference(s string, names map[string]struct{}) bool {
	if _, ok := names[s]; ok {
		return true
	}
	return looksLikeGlob(s)
}

func looksLikeGlob(s string) bool {
	return strings.ContainsAny(s, "*?[]")
}
