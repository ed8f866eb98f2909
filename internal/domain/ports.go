package domain

import (
	"context"
	"time"
)

// Catalog reads the software catalog API.
type Catalog interface {
	// ListLogs returns every log entry created at or after since.
	ListLogs(ctx context.Context, since time.Time) ([]LogEntry, error)

	// GetSoftware fetches the software record referenced by a log entity.
	GetSoftware(ctx context.Context, entity string) (*Software, error)

	// LogURL returns the public API URL of a log entry.
	LogURL(id string) string
}

// IssueTracker manages bot issues on the code hosting platform.
type IssueTracker interface {
	// FindOpenIssues returns the open publiccode.yml issues authored by author
	// in repo, most recently updated first.
	FindOpenIssues(ctx context.Context, repo Repository, author string) ([]*Issue, error)

	// CreateIssue opens a new issue.
	CreateIssue(ctx context.Context, repo Repository, title, body string) (*Issue, error)

	// UpdateIssueBody replaces the body of an existing issue.
	UpdateIssueBody(ctx context.Context, issue *Issue, body string) error

	// ListAuthoredIssues returns every issue authored by author, most recently
	// updated first.
	ListAuthoredIssues(ctx context.Context, author string) ([]*Issue, error)
}

// ChangeDetector tells whether a file changed upstream.
type ChangeDetector interface {
	// ChangedSince reports whether path was modified in repo after since.
	ChangedSince(ctx context.Context, repo Repository, path string, since time.Time) (bool, error)
}

// IssueRenderer renders issue bodies.
type IssueRenderer interface {
	Render(lang Lang, data IssueData) (string, error)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d or until ctx is done.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
