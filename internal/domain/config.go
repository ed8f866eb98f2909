package domain

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed config_template.toml
var configTemplateContent string

// ConfigTemplate returns the commented default configuration file.
func ConfigTemplate() string {
	return configTemplateContent
}

// ConfigFileName is the configuration file name.
const ConfigFileName = "config.toml"

// AppName names the application directory under XDG_CONFIG_HOME.
const AppName = "publiccode-issueopener"

// Defaults.
const (
	DefaultAPIBaseURL          = "https://api.developers.italia.it/v1"
	DefaultBotUsername         = "publiccode-validator-bot"
	DefaultSinceDays           = 1
	DefaultMaxRateLimitRetries = 3
	DefaultRateLimitMargin     = 10 // seconds added to the rate limit reset time
	DefaultLogLevel            = "info"
)

// Lang is the language issues are written in.
type Lang string

const (
	LangEN Lang = "en"
	LangIT Lang = "it"
)

// AllLangs returns the supported languages.
func AllLangs() []Lang {
	return []Lang{LangEN, LangIT}
}

// IsValid reports whether the language is supported.
func (l Lang) IsValid() bool {
	for _, v := range AllLangs() {
		if l == v {
			return true
		}
	}
	return false
}

// ParseLang validates a language code.
func ParseLang(s string) (Lang, error) {
	l := Lang(s)
	if !l.IsValid() {
		return "", fmt.Errorf("%w: %q (choose from %v)", ErrUnsupportedLang, s, AllLangs())
	}
	return l, nil
}

// Change detector names.
const (
	DetectorGitHub = "github" // commits API
	DetectorGit    = "git"    // in-memory clone
	DetectorNone   = "none"
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string     `toml:"-"`
	API      APIConfig    `toml:"api"`
	GitHub   GitHubConfig `toml:"github"`
	Check    CheckConfig  `toml:"check"`
	Log      LogConfig    `toml:"log"`
}

// APIConfig holds the catalog API settings from the [api] section.
type APIConfig struct {
	BaseURL           string  `toml:"base_url" validate:"required,url"`
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gte=0"` // 0 disables throttling
	TimeoutSeconds    int     `toml:"timeout_seconds" validate:"gte=0"`
}

// GitHubConfig holds the issue tracker settings from the [github] section.
type GitHubConfig struct {
	Username string `toml:"username" validate:"required"`
	Token    string `toml:"token,omitempty"`
	BaseURL  string `toml:"base_url,omitempty" validate:"omitempty,url"` // REST endpoint override (GitHub Enterprise)
	CloneURL string `toml:"clone_url,omitempty" validate:"omitempty"`    // used by the "git" change detector
}

// CheckConfig holds the reconciler settings from the [check] section.
type CheckConfig struct {
	Lang                Lang     `toml:"lang" validate:"required,oneof=en it"`
	ChangeDetector      string   `toml:"change_detector" validate:"required,oneof=github git none"`
	TransientPatterns   []string `toml:"transient_patterns"`
	SinceDays           int      `toml:"since_days" validate:"gte=0"`
	MaxRateLimitRetries int      `toml:"max_rate_limit_retries" validate:"gte=0"`
	RateLimitMargin     int      `toml:"rate_limit_margin" validate:"gte=0"`
	DryRun              bool     `toml:"dry_run"`
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// NewDefaultConfig returns the configuration used when no file is present.
func NewDefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        DefaultAPIBaseURL,
			TimeoutSeconds: 60,
		},
		GitHub: GitHubConfig{
			Username: DefaultBotUsername,
			CloneURL: "https://github.com",
		},
		Check: CheckConfig{
			Lang:                LangEN,
			ChangeDetector:      DetectorGitHub,
			TransientPatterns:   []string{"codiceIPA is "},
			SinceDays:           DefaultSinceDays,
			MaxRateLimitRetries: DefaultMaxRateLimitRetries,
			RateLimitMargin:     DefaultRateLimitMargin,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/publiccode-issueopener/config.toml,
// or "" if no config home can be determined.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName, ConfigFileName)
}
