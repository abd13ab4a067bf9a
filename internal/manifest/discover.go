package manifest

import (
	"path/filepath"

	"github.com/sagikazarmark/locafero"
	"github.com/spf13/afero"
)

// dialectCandidate names the filename(s) tried for one dialect descriptor,
// in the order §4.2 lists them, at every directory level of the walk.
type dialectCandidate struct {
	dialect dialect
	names   []string
}

var candidates = []dialectCandidate{
	{dialectProjectTasks, []string{"stride.toml"}},  // [tool.stride.tasks] form lives in the same file
	{dialectStandaloneTasks, []string{"stride.toml"}}, // retried only if [tool.stride.tasks] absent
	{dialectCompatScripts, []string{"package.toml"}},
}

// Locate walks upward from start, trying each dialect candidate at every
// directory level, and returns the first match's path. It never
// reads file contents — callers load() and inspect the decoded shape to
// pick between dialectProjectTasks and dialectStandaloneTasks, which share
// a filename.
func Locate(fs afero.Fs, start string) (path string, err error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	seenNames := map[string]struct{}{}
	var names []string
	for _, c := range candidates {
		for _, n := range c.names {
			if _, ok := seenNames[n]; ok {
				continue
			}
			seenNames[n] = struct{}{}
			names = append(names, n)
		}
	}

	for {
		finder := locafero.Finder{
			Paths: []string{dir},
			Names: names,
			Type:  locafero.FileTypeFile,
		}
		found, ferr := finder.Find(fs)
		if ferr == nil && len(found) > 0 {
			return found[0], nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", &ErrManifestNotFound{Start: start}
}
