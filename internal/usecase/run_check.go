package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/italia/publiccode-issueopener/internal/domain"
)

// RunCheckInput contains the parameters of a run.
type RunCheckInput struct {
	Lang   domain.Lang // Language of created/updated issues
	Days   int         // Days of logs to analyze
	DryRun bool        // Don't create or update issues, just print
}

// RunCheckOptions holds the settings that do not change between runs.
type RunCheckOptions struct {
	BotUsername         string
	TransientPatterns   []string
	MaxRateLimitRetries int
	RateLimitMargin     time.Duration
}

// RunCheck is the use case reconciling BAD publiccode.yml logs with the
// issues opened by the bot.
type RunCheck struct {
	collect  *CollectLogs
	tracker  domain.IssueTracker
	detector domain.ChangeDetector // nil disables change detection
	renderer domain.IssueRenderer
	clock    domain.Clock
	logger   *slog.Logger
	stdout   io.Writer
	opts     RunCheckOptions
}

// NewRunCheck creates a new RunCheck use case.
func NewRunCheck(
	collect *CollectLogs,
	tracker domain.IssueTracker,
	detector domain.ChangeDetector,
	renderer domain.IssueRenderer,
	clock domain.Clock,
	logger *slog.Logger,
	stdout io.Writer,
	opts RunCheckOptions,
) *RunCheck {
	return &RunCheck{
		collect:  collect,
		tracker:  tracker,
		detector: detector,
		renderer: renderer,
		clock:    clock,
		logger:   logger,
		stdout:   stdout,
		opts:     opts,
	}
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomeUntouched
	outcomeSkipped
)

// Execute runs the check and returns what it did. The summary is returned
// alongside a fatal error too, counting the repositories handled so far.
func (uc *RunCheck) Execute(ctx context.Context, in RunCheckInput) (*domain.Summary, error) {
	if !in.Lang.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLang, in.Lang)
	}

	logs, err := uc.collect.Execute(ctx, CollectLogsInput{Days: in.Days})
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{}
	for _, log := range logs {
		if err := uc.process(ctx, log, in, summary); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// process handles one repository. Only cancellation and rendering failures
// are returned; tracker errors are counted as failures.
func (uc *RunCheck) process(ctx context.Context, log domain.SoftwareLog, in RunCheckInput, summary *domain.Summary) error {
	var url string
	if log.Software != nil {
		url = strings.ToLower(log.Software.URL)
	}

	repo, err := domain.CheckEligibility(log, uc.opts.TransientPatterns)
	switch {
	case errors.Is(err, domain.ErrNotGitHub), errors.Is(err, domain.ErrInvalidRepoURL):
		uc.printf("🚫 %s is not a GitHub repo. Only GitHub is supported for now.\n", url)
		summary.Skipped++
		return nil
	case errors.Is(err, domain.ErrTransientError):
		uc.printf("skipping %s (%v)\n", url, err)
		summary.Skipped++
		return nil
	case err != nil:
		return err
	}

	sha1sum := domain.Checksum(log.FormattedErrorOutput)
	body, err := uc.renderer.Render(in.Lang, domain.IssueData{
		HiddenFields:         domain.HiddenFields{domain.ChecksumField: sha1sum},
		FormattedErrorOutput: log.FormattedErrorOutput,
		Debug:                repo.Path(),
		APILogURL:            log.LogURL,
		SoftwareName:         log.Software.Name,
	})
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		out, err := uc.reconcile(ctx, repo, url, log, sha1sum, body, in.DryRun)
		if err == nil {
			count(summary, out)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		var rateErr *domain.RateLimitError
		if errors.As(err, &rateErr) && attempt < uc.opts.MaxRateLimitRetries {
			if err := uc.waitForReset(ctx, rateErr); err != nil {
				return err
			}
			continue
		}

		uc.logger.Error("GitHub request failed", "repo", url, "error", err)
		uc.printf("Error in the GitHub request, repo=%s: %v\n", url, err)
		summary.Failed++
		return nil
	}
}

// reconcile creates, updates or leaves alone the issue of repo.
func (uc *RunCheck) reconcile(
	ctx context.Context,
	repo domain.Repository,
	url string,
	log domain.SoftwareLog,
	sha1sum, body string,
	dryRun bool,
) (outcome, error) {
	if uc.detector != nil {
		changed, err := uc.detector.ChangedSince(ctx, repo, domain.PubliccodeFile, log.Timestamp)
		var rateErr *domain.RateLimitError
		switch {
		case errors.As(err, &rateErr):
			return 0, err
		case err != nil:
			uc.logger.Warn("can't tell whether publiccode.yml changed, assuming it did not",
				"repo", url, "error", err)
		case changed:
			uc.printf("⏭️  %s changed in %s after the log, skipping\n", domain.PubliccodeFile, url)
			return outcomeSkipped, nil
		}
	}

	issues, err := uc.tracker.FindOpenIssues(ctx, repo, uc.opts.BotUsername)
	if err != nil {
		return 0, err
	}

	var existing *domain.Issue
	if len(issues) > 0 {
		existing = issues[0]
	}

	action, err := domain.Decide(existing, sha1sum)
	if err != nil {
		uc.logger.Warn("not updating issue", "error", err)
	}

	switch action {
	case domain.ActionCreate:
		uc.printf("➕ Creating issue for %s...\n", url)
		if !dryRun {
			if _, err := uc.tracker.CreateIssue(ctx, repo, domain.IssueTitle, body); err != nil {
				return 0, err
			}
		}
		return outcomeCreated, nil
	case domain.ActionUpdate:
		uc.printf("🔄 Updating issue for %s...\n", url)
		if !dryRun {
			if err := uc.tracker.UpdateIssueBody(ctx, existing, body); err != nil {
				return 0, err
			}
		}
		return outcomeUpdated, nil
	default:
		uc.printf("== Issue is open and unchanged, doing nothing (%s)\n", url)
		return outcomeUntouched, nil
	}
}

// waitForReset sleeps until the rate limit resets, plus the margin.
func (uc *RunCheck) waitForReset(ctx context.Context, rateErr *domain.RateLimitError) error {
	wait := rateErr.Reset.Sub(uc.clock.Now()) + uc.opts.RateLimitMargin
	if wait < 0 {
		wait = 0
	}

	uc.printf("Rate limit exceeded. Sleeping for %d seconds...", int(wait.Round(time.Second).Seconds()))
	if err := uc.clock.Sleep(ctx, wait); err != nil {
		uc.printf("\n")
		return err
	}
	uc.printf("done\n")
	return nil
}

func count(s *domain.Summary, out outcome) {
	switch out {
	case outcomeCreated:
		s.Created++
	case outcomeUpdated:
		s.Updated++
	case outcomeUntouched:
		s.Untouched++
	case outcomeSkipped:
		s.Skipped++
	}
}

func (uc *RunCheck) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(uc.stdout, format, args...)
}
