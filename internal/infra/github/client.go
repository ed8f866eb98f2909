// Package github implements the issue tracker and change detector on top of
// the GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"
	"github.com/italia/publiccode-issueopener/internal/domain"
	"golang.org/x/oauth2"
)

// Ensure Client implements the domain ports.
var (
	_ domain.IssueTracker   = (*Client)(nil)
	_ domain.ChangeDetector = (*Client)(nil)
)

const perPage = 100

// Client wraps the GitHub client for issue and commit operations.
type Client struct {
	gh  *github.Client
	now func() time.Time
}

// NewClient creates a Client authenticated with token. An empty token makes
// unauthenticated requests. baseURL overrides the REST endpoint and may be
// empty.
func NewClient(ctx context.Context, token, baseURL string) (*Client, error) {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		hc = oauth2.NewClient(ctx, ts)
	}

	gh := github.NewClient(hc)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
		}
		gh.BaseURL = u
	}

	return &Client{gh: gh, now: time.Now}, nil
}

// FindOpenIssues returns the open publiccode.yml issues authored by author
// in repo, most recently updated first.
func (c *Client) FindOpenIssues(ctx context.Context, repo domain.Repository, author string) ([]*domain.Issue, error) {
	query := fmt.Sprintf("%s in:title state:open is:issue repo:%s author:%s",
		domain.PubliccodeFile, repo.FullName(), author)

	result, _, err := c.gh.Search.Issues(ctx, query, &github.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	})
	if err != nil {
		return nil, c.mapError(fmt.Errorf("search issues in %s: %w", repo, err))
	}

	issues := make([]*domain.Issue, 0, len(result.Issues))
	for _, i := range result.Issues {
		issues = append(issues, toDomainIssue(i, repo))
	}
	return issues, nil
}

// CreateIssue opens a new issue.
func (c *Client) CreateIssue(ctx context.Context, repo domain.Repository, title, body string) (*domain.Issue, error) {
	created, _, err := c.gh.Issues.Create(ctx, repo.Owner, repo.Name, &github.IssueRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
	})
	if err != nil {
		return nil, c.mapError(fmt.Errorf("create issue in %s: %w", repo, err))
	}
	return toDomainIssue(created, repo), nil
}

// UpdateIssueBody replaces the body of an existing issue.
func (c *Client) UpdateIssueBody(ctx context.Context, issue *domain.Issue, body string) error {
	_, _, err := c.gh.Issues.Edit(ctx, issue.Repo.Owner, issue.Repo.Name, issue.Number, &github.IssueRequest{
		Body: github.Ptr(body),
	})
	if err != nil {
		return c.mapError(fmt.Errorf("edit issue %s#%d: %w", issue.Repo, issue.Number, err))
	}
	return nil
}

// ListAuthoredIssues returns every issue authored by author, most recently
// updated first.
func (c *Client) ListAuthoredIssues(ctx context.Context, author string) ([]*domain.Issue, error) {
	query := fmt.Sprintf("author:%s type:issue", author)
	opts := &github.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var issues []*domain.Issue
	for {
		result, resp, err := c.gh.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, c.mapError(fmt.Errorf("search issues by %s: %w", author, err))
		}
		for _, i := range result.Issues {
			issues = append(issues, toDomainIssue(i, repoFromAPIURL(i.GetRepositoryURL())))
		}
		if resp.NextPage == 0 {
			return issues, nil
		}
		opts.Page = resp.NextPage
	}
}

// ChangedSince reports whether any commit after since touched path in repo.
func (c *Client) ChangedSince(ctx context.Context, repo domain.Repository, path string, since time.Time) (bool, error) {
	commits, _, err := c.gh.Repositories.ListCommits(ctx, repo.Owner, repo.Name, &github.CommitsListOptions{
		Path:        path,
		Since:       since,
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return false, c.mapError(fmt.Errorf("list commits of %s in %s: %w", path, repo, err))
	}
	return len(commits) > 0, nil
}

// mapError turns GitHub rate limit errors into *domain.RateLimitError.
func (c *Client) mapError(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &domain.RateLimitError{Reset: rateErr.Rate.Reset.Time, Err: err}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &domain.RateLimitError{Reset: c.now().Add(abuseErr.GetRetryAfter()), Err: err}
	}

	return err
}

func toDomainIssue(i *github.Issue, repo domain.Repository) *domain.Issue {
	return &domain.Issue{
		UpdatedAt: i.GetUpdatedAt().Time,
		Repo:      repo,
		Title:     i.GetTitle(),
		Body:      i.GetBody(),
		HTMLURL:   i.GetHTMLURL(),
		State:     domain.IssueState(i.GetState()),
		Number:    i.GetNumber(),
	}
}

// repoFromAPIURL parses "https://api.github.com/repos/<owner>/<name>".
func repoFromAPIURL(apiURL string) domain.Repository {
	_, rest, ok := strings.Cut(apiURL, "/repos/")
	if !ok {
		return domain.Repository{}
	}
	owner, name, _ := strings.Cut(rest, "/")
	return domain.Repository{Owner: owner, Name: name}
}
