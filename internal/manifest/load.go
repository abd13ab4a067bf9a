package manifest

import (
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/subosito/gotenv"
)

// Load discovers (or, if explicitPath is set, uses) a manifest file under
// fs, parses it with the matching dialect, normalizes its tasks table, and
// folds in any task-level env_file. startDir is where discovery begins
// when explicitPath is empty.
func Load(fs afero.Fs, startDir, explicitPath string) (*Manifest, error) {
	path := explicitPath
	var err error
	if path == "" {
		path, err = Locate(fs, startDir)
		if err != nil {
			return nil, err
		}
	} else if !filepath.IsAbs(path) {
		path, err = filepath.Abs(path)
		if err != nil {
			return nil, err
		}
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &ErrManifestParse{Path: path, Detail: err.Error()}
	}

	tasks, members, err := decodeAny(path, data)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, &ErrNoTasks{Path: path}
	}

	for name, t := range tasks {
		if t.EnvFile == "" {
			continue
		}
		envFilePath := t.EnvFile
		if !filepath.IsAbs(envFilePath) {
			envFilePath = filepath.Join(filepath.Dir(path), envFilePath)
		}
		var fromFile map[string]string
		f, err := fs.Open(envFilePath)
		if err == nil {
			fromFile, err = gotenv.StrictParse(f)
			f.Close()
		}
		if err != nil {
			return nil, &ErrManifestParse{Path: path, Detail: "task " + name + ": env_file: " + err.Error()}
		}
		t.Env = MergeEnv(fromFile, t.Env)
		tasks[name] = t
	}

	return &Manifest{
		Path:    path,
		Root:    filepath.Dir(path),
		Tasks:   tasks,
		Members: members,
	}, nil
}

// decodeAny tries each dialect in §4.2's order against the already-read
// bytes and normalizes the winning one's tasks table. If every dialect
// fails to decode outright, the bytes aren't a merely-empty manifest — they
// are malformed TOML — so the most general dialect's decode error is
// surfaced as ErrManifestParse instead of being misreported as ErrNoTasks.
func decodeAny(path string, data []byte) (map[string]Task, []string, error) {
	proj, projErr := decodeProjectManifest(data)
	if projErr == nil && len(proj.Tool.Stride.Tasks) > 0 {
		tasks, nerr := NormalizeTasks(proj.Tool.Stride.Tasks, false)
		if nerr != nil {
			return nil, nil, &ErrManifestParse{Path: path, Detail: nerr.Error()}
		}
		return tasks, proj.Tool.Stride.Members, nil
	}

	standalone, standaloneErr := decodeStandaloneManifest(data)
	if standaloneErr == nil && len(standalone.Tasks) > 0 {
		tasks, nerr := NormalizeTasks(standalone.Tasks, false)
		if nerr != nil {
			return nil, nil, &ErrManifestParse{Path: path, Detail: nerr.Error()}
		}
		return tasks, standalone.Members, nil
	}

	scripts, scriptsErr := decodeScriptsManifest(data)
	if scriptsErr == nil && len(scripts.Scripts) > 0 {
		raw := make(map[string]any, len(scripts.Scripts))
		for k, v := range scripts.Scripts {
			raw[k] = v
		}
		tasks, nerr := NormalizeTasks(raw, true)
		if nerr != nil {
			return nil, nil, &ErrManifestParse{Path: path, Detail: nerr.Error()}
		}
		return tasks, nil, nil
	}

	if standaloneErr != nil {
		return nil, nil, &ErrManifestParse{Path: path, Detail: standaloneErr.Error()}
	}

	return nil, nil, &ErrNoTasks{Path: path}
}
