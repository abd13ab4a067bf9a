package manifest

import (
	"bytes"
	"fmt"

	burntoml "github.com/BurntSushi/toml"
)

// rawScriptsManifest is dialect 3: the package-manifest compat form. Every
// entry is a flat string; there is no structured-record shape here, so a
// second decoder (BurntSushi/toml, rather than the pelletier/go-toml/v2
// used for dialects 1 and 2) is enough and keeps the two decoders'
// responsibilities visibly distinct.
type rawScriptsManifest struct {
	Scripts map[string]string `toml:"scripts"`
}

func decodeScriptsManifest(data []byte) (*rawScriptsManifest, error) {
	var m rawScriptsManifest
	if _, err := burntoml.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode [scripts] manifest: %w", err)
	}
	return &m, nil
}
