package usecase

import (
	"context"
	"fmt"

	"github.com/italia/publiccode-issueopener/internal/domain"
)

// ShowStatusInput contains the input for the ShowStatus use case.
type ShowStatusInput struct {
	OnlyOpen bool // Drop closed issues
}

// ShowStatusOutput contains the output of the ShowStatus use case.
type ShowStatusOutput struct {
	Issues []*domain.Issue // Most recently updated first
	Open   int
	Closed int
}

// ShowStatus lists the issues opened by the bot.
type ShowStatus struct {
	tracker     domain.IssueTracker
	botUsername string
}

// NewShowStatus creates a new ShowStatus use case.
func NewShowStatus(tracker domain.IssueTracker, botUsername string) *ShowStatus {
	return &ShowStatus{
		tracker:     tracker,
		botUsername: botUsername,
	}
}

// Execute lists every issue authored by the bot.
func (uc *ShowStatus) Execute(ctx context.Context, in ShowStatusInput) (*ShowStatusOutput, error) {
	issues, err := uc.tracker.ListAuthoredIssues(ctx, uc.botUsername)
	if err != nil {
		return nil, fmt.Errorf("list issues by %s: %w", uc.botUsername, err)
	}

	out := &ShowStatusOutput{Issues: make([]*domain.Issue, 0, len(issues))}
	for _, issue := range issues {
		if issue.IsOpen() {
			out.Open++
		} else {
			out.Closed++
			if in.OnlyOpen {
				continue
			}
		}
		out.Issues = append(out.Issues, issue)
	}
	return out, nil
}
