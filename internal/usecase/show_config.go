package usecase

import (
	"context"
	"fmt"

	"github.com/italia/publiccode-issueopener/internal/domain"
	"github.com/pelletier/go-toml/v2"
)

// redacted replaces secrets in printed configurations.
const redacted = "********"

// ShowConfigInput contains the input for the ShowConfig use case.
type ShowConfigInput struct {
	Template bool // Return the commented default template instead
}

// ShowConfigOutput contains the output of the ShowConfig use case.
type ShowConfigOutput struct {
	Path    string // Configuration file path, may not exist
	Content string // TOML
}

// ShowConfig renders the effective configuration.
type ShowConfig struct {
	cfg  *domain.Config
	path string
}

// NewShowConfig creates a new ShowConfig use case.
func NewShowConfig(cfg *domain.Config, path string) *ShowConfig {
	return &ShowConfig{
		cfg:  cfg,
		path: path,
	}
}

// Execute returns the effective configuration as TOML, token redacted.
func (uc *ShowConfig) Execute(_ context.Context, in ShowConfigInput) (*ShowConfigOutput, error) {
	if in.Template {
		return &ShowConfigOutput{Path: uc.path, Content: domain.ConfigTemplate()}, nil
	}
	if uc.cfg == nil {
		return nil, fmt.Errorf("%w: no configuration loaded", domain.ErrInvalidConfig)
	}

	cfg := *uc.cfg
	if cfg.GitHub.Token != "" {
		cfg.GitHub.Token = redacted
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return &ShowConfigOutput{Path: uc.path, Content: string(data)}, nil
}
