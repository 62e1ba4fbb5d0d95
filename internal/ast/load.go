package ast

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the JSON serialization of a Config from path. This stands in
// for the external parser's output: the grammar a configuration file's
// interfaces/statements text uses is out of scope for this repo, but a
// runnable binary still needs some concrete encoding of "the AST a parser
// handed us" to read from disk, so this repo accepts that AST pre-parsed as
// JSON matching Config's field layout.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("ast: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("ast: parse %s: %w", path, err)
	}
	return cfg, nil
}
