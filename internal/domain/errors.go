package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors.
var (
	ErrNotGitHub         = errors.New("not a GitHub repository")
	ErrInvalidRepoURL    = errors.New("invalid repository URL")
	ErrTransientError    = errors.New("validation failed for a transient reason")
	ErrNoHiddenFields    = errors.New("can't find hidden fields")
	ErrUnsupportedLang   = errors.New("unsupported language")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrPaginationLoop    = errors.New("pagination cursor did not advance")
	ErrUnknownDetector   = errors.New("unknown change detector")
	ErrMissingAPIBaseURL = errors.New("catalog API base URL is not set")
)

// RateLimitError is returned by an IssueTracker when the provider refuses
// requests until Reset.
type RateLimitError struct {
	Reset time.Time
	Err   error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded until %s: %v", e.Reset.Format(time.RFC3339), e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}
