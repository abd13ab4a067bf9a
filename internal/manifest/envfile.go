package manifest

import (
	"os"

	"github.com/subosito/gotenv"
)

// LoadEnvFile parses a KEY=VALUE dotenv-style file from the OS filesystem
// into a map. It does no merging; callers layer the result with MergeEnv.
func LoadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pairs, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// MergeEnv returns a fresh map with base entries overridden by override
// entries — the generic right-biased merge used throughout env layering.
func MergeEnv(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
