package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load reads options from a file. Keys missing from the file keep the values
// from DefaultOptions.
func Load(path string) (*Options, error) {
	k := koanf.New(".")
	options := DefaultOptions()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".json":
		parser = json.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		parser = yaml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := k.Unmarshal("", options); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if _, ok := ParseLogLevel(options.LogLevel); !ok {
		return nil, fmt.Errorf("config %s: invalid log level %q", path, options.LogLevel)
	}
	return options, nil
}

var configNames = []string{
	"treeshake.yaml",
	"treeshake.yml",
	"treeshake.json",
	"treeshake.toml",
	".treeshake.yaml",
	".treeshake.yml",
	".treeshake.json",
	".treeshake.toml",
}

// LoadOrDefault loads the first config file found in dir, or returns the
// defaults if there is none. A config file that exists but is broken is an
// error.
func LoadOrDefault(dir string) (*Options, string, error) {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			options, err := Load(path)
			return options, path, err
		}
	}
	return DefaultOptions(), "", nil
}
