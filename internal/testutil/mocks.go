// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/italia/publiccode-issueopener/internal/domain"
)

// MockClock is a test double for domain.Clock.
// Sleep records the duration and advances NowTime instead of blocking.
type MockClock struct {
	NowTime  time.Time
	SleepErr error
	Sleeps   []time.Duration
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Sleep records d and advances the clock.
func (m *MockClock) Sleep(_ context.Context, d time.Duration) error {
	if m.SleepErr != nil {
		return m.SleepErr
	}
	m.Sleeps = append(m.Sleeps, d)
	m.NowTime = m.NowTime.Add(d)
	return nil
}

// MockCatalog is a test double for domain.Catalog.
// Fields are ordered to minimize memory padding.
type MockCatalog struct {
	Software       map[string]*domain.Software // keyed by entity
	ListErr        error
	GetErr         error
	Logs           []domain.LogEntry
	SoftwareCalls  []string
	ListLogsSince  time.Time
	ListLogsCalled bool
}

// NewMockCatalog creates a new MockCatalog with initialized maps.
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Software: make(map[string]*domain.Software),
	}
}

// ListLogs returns the configured logs.
func (m *MockCatalog) ListLogs(_ context.Context, since time.Time) ([]domain.LogEntry, error) {
	m.ListLogsCalled = true
	m.ListLogsSince = since
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Logs, nil
}

// GetSoftware returns the software registered for entity.
func (m *MockCatalog) GetSoftware(_ context.Context, entity string) (*domain.Software, error) {
	m.SoftwareCalls = append(m.SoftwareCalls, entity)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	sw, ok := m.Software[entity]
	if !ok {
		return nil, fmt.Errorf("software %s: not found", entity)
	}
	return sw, nil
}

// LogURL returns a fake log URL.
func (m *MockCatalog) LogURL(id string) string {
	return "https://api.example.org/v1/logs/" + id
}

// CreatedIssue records a CreateIssue call.
type CreatedIssue struct {
	Repo  domain.Repository
	Title string
	Body  string
}

// UpdatedIssue records an UpdateIssueBody call.
type UpdatedIssue struct {
	Issue *domain.Issue
	Body  string
}

// MockIssueTracker is a test double for domain.IssueTracker.
// FindErrs are returned by successive FindOpenIssues calls before falling
// back to Issues.
type MockIssueTracker struct {
	Issues      map[string][]*domain.Issue // keyed by repository full name
	FindErrs    []error
	CreateErr   error
	UpdateErr   error
	ListErr     error
	Authored    []*domain.Issue
	Created     []CreatedIssue
	Updated     []UpdatedIssue
	FindCalls   []domain.Repository
	FindAuthors []string
}

// NewMockIssueTracker creates a new MockIssueTracker with initialized maps.
func NewMockIssueTracker() *MockIssueTracker {
	return &MockIssueTracker{
		Issues: make(map[string][]*domain.Issue),
	}
}

// FindOpenIssues returns the issues registered for repo.
func (m *MockIssueTracker) FindOpenIssues(_ context.Context, repo domain.Repository, author string) ([]*domain.Issue, error) {
	m.FindCalls = append(m.FindCalls, repo)
	m.FindAuthors = append(m.FindAuthors, author)
	if len(m.FindErrs) > 0 {
		err := m.FindErrs[0]
		m.FindErrs = m.FindErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return m.Issues[repo.FullName()], nil
}

// CreateIssue records the call.
func (m *MockIssueTracker) CreateIssue(_ context.Context, repo domain.Repository, title, body string) (*domain.Issue, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.Created = append(m.Created, CreatedIssue{Repo: repo, Title: title, Body: body})
	return &domain.Issue{Repo: repo, Title: title, Body: body, State: domain.IssueOpen, Number: len(m.Created)}, nil
}

// UpdateIssueBody records the call.
func (m *MockIssueTracker) UpdateIssueBody(_ context.Context, issue *domain.Issue, body string) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Updated = append(m.Updated, UpdatedIssue{Issue: issue, Body: body})
	return nil
}

// ListAuthoredIssues returns Authored.
func (m *MockIssueTracker) ListAuthoredIssues(_ context.Context, _ string) ([]*domain.Issue, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Authored, nil
}

// MockChangeDetector is a test double for domain.ChangeDetector.
type MockChangeDetector struct {
	Changed map[string]bool // keyed by repository full name
	Err     error
	Calls   []time.Time
}

// ChangedSince returns Changed[repo].
func (m *MockChangeDetector) ChangedSince(_ context.Context, repo domain.Repository, _ string, since time.Time) (bool, error) {
	m.Calls = append(m.Calls, since)
	if m.Err != nil {
		return false, m.Err
	}
	return m.Changed[repo.FullName()], nil
}

// MockRenderer is a test double for domain.IssueRenderer.
// It renders the hidden comment followed by the error table.
type MockRenderer struct {
	Err   error
	Langs []domain.Lang
}

// Render returns a minimal body.
func (m *MockRenderer) Render(lang domain.Lang, data domain.IssueData) (string, error) {
	m.Langs = append(m.Langs, lang)
	if m.Err != nil {
		return "", m.Err
	}
	return data.HiddenFields.Comment() + "\n\n" + data.FormattedErrorOutput, nil
}
