package config

import (
	"testing"

	"github.com/italia/publiccode-issueopener/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr string
	}{
		{"defaults", func(*domain.Config) {}, ""},
		{"bad lang", func(c *domain.Config) { c.Check.Lang = "fr" }, `Check.Lang must be one of [en it], got "fr"`},
		{"missing username", func(c *domain.Config) { c.GitHub.Username = "" }, "GitHub.Username is required"},
		{"bad api url", func(c *domain.Config) { c.API.BaseURL = "not a url" }, "API.BaseURL must be a URL"},
		{"negative days", func(c *domain.Config) { c.Check.SinceDays = -1 }, "Check.SinceDays must be >= 0"},
		{"bad detector", func(c *domain.Config) { c.Check.ChangeDetector = "svn" }, "Check.ChangeDetector must be one of"},
		{"bad log level", func(c *domain.Config) { c.Log.Level = "trace" }, "Log.Level must be one of"},
		{"empty log level", func(c *domain.Config) { c.Log.Level = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.NewDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
