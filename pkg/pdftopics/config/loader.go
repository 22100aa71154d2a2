package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed stopwords-en.yaml
var builtinStoplist []byte

// Load overlays the YAML file at path on top of base and validates the result.
// An empty path or a missing file returns base unchanged.
func Load(path string, base Config) (*Config, error) {
	cfg := base
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseStoplist(data)
}

// Stopwords resolves the tokenizer stoplist setting to a list of terms.
func (c *Config) Stopwords() ([]string, error) {
	switch c.Tokenizer.Stoplist {
	case "":
		return nil, nil
	case BuiltinStoplist:
		sl, err := parseStoplist(builtinStoplist)
		if err != nil {
			return nil, fmt.Errorf("builtin stoplist: %w", err)
		}
		return sl.Terms, nil
	default:
		sl, err := LoadStoplist(c.Tokenizer.Stoplist)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		return sl.Terms, nil
	}
}

func parseStoplist(data []byte) (*Stoplist, error) {
	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}
