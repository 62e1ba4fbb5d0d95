// Package settings loads the optional supervisor-wide settings file: the
// retry backoff duration and default/per-channel log levels. It is
// deliberately separate from internal/ast's process configuration — this
// file describes how the supervisor behaves, not what it supervises.
package settings

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultRetryTime is used when no settings file sets retry_time and no
// --retry-time flag overrides it.
const DefaultRetryTime = 5 * time.Second

// DefaultLogLevel is used when a settings file omits logging.level.
const DefaultLogLevel = "info"

// Settings is the supervisor-wide behavior this repo allows an operator to
// tune without editing process configuration.
type Settings struct {
	RetryTime time.Duration `koanf:"retry_time"`
	Logging   struct {
		Level    string            `koanf:"level"`
		Channels map[string]string `koanf:"channels"`
	} `koanf:"logging"`
}

// defaults returns a Settings populated with this package's defaults.
func defaults() Settings {
	var s Settings
	s.RetryTime = DefaultRetryTime
	s.Logging.Level = DefaultLogLevel
	return s
}

// Load reads path as YAML and merges it over the package defaults. A
// missing file is not an error — it yields the defaults unchanged, since a
// settings file is optional per the CLI surface's --settings-file flag.
func Load(path string) (Settings, error) {
	s := defaults()
	if path == "" {
		return s, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("settings: stat %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return s, fmt.Errorf("settings: load %s: %w", path, err)
	}
	if err := k.Unmarshal("", &s); err != nil {
		return s, fmt.Errorf("settings: unmarshal %s: %w", path, err)
	}
	return s, nil
}

// DefaultPaths are tried in order by DefaultPath.
var DefaultPaths = []string{"./ncdsv.yaml", "/etc/ncdsv/ncdsv.yaml"}

// DefaultPath returns the first of DefaultPaths that exists, or "" if none
// do — callers pass "" straight to Load, which then returns the defaults.
func DefaultPath() string {
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
