// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/italia/publiccode-issueopener/internal/domain"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables overriding the configuration file.
const (
	EnvAPIBaseURL  = "API_BASEURL"
	EnvBotUsername = "GITHUB_USERNAME"
	EnvBotToken    = "BOT_GITHUB_TOKEN"
)

// Loader loads configuration from a TOML file and the environment.
type Loader struct {
	getenv   func(string) string
	path     string
	explicit bool // a missing explicit file is an error
}

// NewLoader creates a new Loader reading path. An empty path selects the
// default location, which may be absent.
func NewLoader(path string) *Loader {
	return NewLoaderWithEnv(path, os.Getenv)
}

// NewLoaderWithEnv creates a new Loader with a custom environment lookup.
// This is useful for testing.
func NewLoaderWithEnv(path string, getenv func(string) string) *Loader {
	explicit := path != ""
	if !explicit {
		path = domain.DefaultConfigPath()
	}
	return &Loader{
		getenv:   getenv,
		path:     path,
		explicit: explicit,
	}
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Load returns the defaults, overridden by the file, overridden by the
// environment.
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	if err := l.loadFile(cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg, l.getenv)

	return cfg, nil
}

// loadFile decodes the configuration file over cfg.
func (l *Loader) loadFile(cfg *domain.Config) error {
	if l.path == "" {
		return nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !l.explicit {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", l.path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", l.path, err)
	}
	cfg.Warnings = unknownKeys(raw)

	return nil
}

func applyEnv(cfg *domain.Config, getenv func(string) string) {
	if v := getenv(EnvAPIBaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := getenv(EnvBotUsername); v != "" {
		cfg.GitHub.Username = v
	}
	if v := getenv(EnvBotToken); v != "" {
		cfg.GitHub.Token = v
	}
}

// unknownKeys returns a warning for every section or key of raw that
// domain.Config does not declare.
func unknownKeys(raw map[string]any) []string {
	known := knownKeys()

	var warnings []string
	for section, value := range raw {
		keys, ok := known[section]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s must be a section", section))
			continue
		}
		for k := range m {
			if !keys[k] {
				warnings = append(warnings, fmt.Sprintf("unknown key in [%s]: %s", section, k))
			}
		}
	}

	sort.Strings(warnings)
	return warnings
}

// knownKeys maps every section of domain.Config to its keys, read from the
// toml struct tags.
func knownKeys() map[string]map[string]bool {
	known := make(map[string]map[string]bool)

	cfgType := reflect.TypeOf(domain.Config{})
	for i := 0; i < cfgType.NumField(); i++ {
		section := tagName(cfgType.Field(i))
		if section == "" || cfgType.Field(i).Type.Kind() != reflect.Struct {
			continue
		}

		keys := make(map[string]bool)
		sectionType := cfgType.Field(i).Type
		for j := 0; j < sectionType.NumField(); j++ {
			if key := tagName(sectionType.Field(j)); key != "" {
				keys[key] = true
			}
		}
		known[section] = keys
	}
	return known
}

func tagName(f reflect.StructField) string {
	tag := f.Tag.Get("toml")
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
