package manifest

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
)

// rawProjectManifest is dialect 1: a structured top-of-tree manifest with
// tasks nested under [tool.stride.tasks], plus an optional workspace
// members list under [tool.stride].
type rawProjectManifest struct {
	Tool struct {
		Stride struct {
			Tasks   map[string]any `toml:"tasks"`
			Members []string       `toml:"members"`
		} `toml:"stride"`
	} `toml:"tool"`
}

// rawStandaloneManifest is dialect 2: a standalone stride.toml with a
// top-level [tasks] table.
type rawStandaloneManifest struct {
	Tasks   map[string]any `toml:"tasks"`
	Members []string       `toml:"members"`
}

func decodeProjectManifest(data []byte) (*rawProjectManifest, error) {
	var m rawProjectManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode [tool.stride.tasks] manifest: %w", err)
	}
	return &m, nil
}

func decodeStandaloneManifest(data []byte) (*rawStandaloneManifest, error) {
	var m rawStandaloneManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode [tasks] manifest: %w", err)
	}
	return &m, nil
}
