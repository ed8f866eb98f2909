// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/italia/publiccode-issueopener/internal/domain"
	"github.com/italia/publiccode-issueopener/internal/infra/catalog"
	"github.com/italia/publiccode-issueopener/internal/infra/github"
	"github.com/italia/publiccode-issueopener/internal/infra/gitremote"
	"github.com/italia/publiccode-issueopener/internal/infra/issuetmpl"
	"github.com/italia/publiccode-issueopener/internal/infra/logging"
	"github.com/italia/publiccode-issueopener/internal/usecase"
)

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Catalog  domain.Catalog
	Issues   domain.IssueTracker
	Changes  domain.ChangeDetector // nil when change detection is disabled
	Renderer domain.IssueRenderer
	Clock    domain.Clock

	// Pointer fields
	Logger *slog.Logger
	Config *domain.Config

	// ConfigPath is the file Config was loaded from, which may not exist.
	ConfigPath string
}

// New creates a new Container from a loaded and validated configuration.
// Diagnostics are logged to stderr.
func New(ctx context.Context, cfg *domain.Config, configPath string, stderr io.Writer) (*Container, error) {
	c := &Container{}
	if err := c.Configure(ctx, cfg, configPath, stderr); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure binds the ports of c to the adapters selected by cfg.
func (c *Container) Configure(ctx context.Context, cfg *domain.Config, configPath string, stderr io.Writer) error {
	if cfg.API.BaseURL == "" {
		return domain.ErrMissingAPIBaseURL
	}

	logger := logging.New(stderr, logging.ParseLevel(cfg.Log.Level))

	catalogClient := catalog.NewClient(cfg.API.BaseURL, catalog.Options{
		HTTPClient:        &http.Client{Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second},
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})

	githubClient, err := github.NewClient(ctx, cfg.GitHub.Token, cfg.GitHub.BaseURL)
	if err != nil {
		return err
	}
	if cfg.GitHub.Token == "" {
		logger.Warn("no GitHub token set, requests are unauthenticated", "env", "BOT_GITHUB_TOKEN")
	}

	changes, err := newChangeDetector(cfg, githubClient)
	if err != nil {
		return err
	}

	renderer, err := issuetmpl.New()
	if err != nil {
		return err
	}

	c.Catalog = catalogClient
	c.Issues = githubClient
	c.Changes = changes
	c.Renderer = renderer
	c.Clock = domain.RealClock{}
	c.Logger = logger
	c.Config = cfg
	c.ConfigPath = configPath
	return nil
}

// Ready reports whether the ports are bound.
func (c *Container) Ready() bool {
	return c.Catalog != nil
}

// newChangeDetector selects the change detector named in the configuration.
func newChangeDetector(cfg *domain.Config, githubClient *github.Client) (domain.ChangeDetector, error) {
	switch cfg.Check.ChangeDetector {
	case domain.DetectorGitHub:
		return githubClient, nil
	case domain.DetectorGit:
		return gitremote.New(cfg.GitHub.CloneURL, gitremote.DefaultDepth), nil
	case domain.DetectorNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDetector, cfg.Check.ChangeDetector)
	}
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(
	cfg *domain.Config,
	catalog domain.Catalog,
	issues domain.IssueTracker,
	changes domain.ChangeDetector,
	renderer domain.IssueRenderer,
	clock domain.Clock,
	logger *slog.Logger,
) *Container {
	return &Container{
		Catalog:  catalog,
		Issues:   issues,
		Changes:  changes,
		Renderer: renderer,
		Clock:    clock,
		Logger:   logger,
		Config:   cfg,
	}
}

// UseCase factory methods

// CollectLogsUseCase returns a new CollectLogs use case.
func (c *Container) CollectLogsUseCase() *usecase.CollectLogs {
	return usecase.NewCollectLogs(c.Catalog, c.Clock, c.Logger)
}

// RunCheckUseCase returns a new RunCheck use case printing progress to stdout.
func (c *Container) RunCheckUseCase(stdout io.Writer) *usecase.RunCheck {
	return usecase.NewRunCheck(
		c.CollectLogsUseCase(),
		c.Issues,
		c.Changes,
		c.Renderer,
		c.Clock,
		c.Logger,
		stdout,
		usecase.RunCheckOptions{
			BotUsername:         c.Config.GitHub.Username,
			TransientPatterns:   c.Config.Check.TransientPatterns,
			MaxRateLimitRetries: c.Config.Check.MaxRateLimitRetries,
			RateLimitMargin:     time.Duration(c.Config.Check.RateLimitMargin) * time.Second,
		},
	)
}

// ShowStatusUseCase returns a new ShowStatus use case.
func (c *Container) ShowStatusUseCase() *usecase.ShowStatus {
	return usecase.NewShowStatus(c.Issues, c.Config.GitHub.Username)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.Config, c.ConfigPath)
}
