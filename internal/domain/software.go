package domain

import (
	"fmt"
	"strings"
	"time"
)

// GitHubURLPrefix is the only code hosting prefix issues can be opened for.
const GitHubURLPrefix = "https://github.com/"

// PubliccodeFile is the manifest path tracked in every repository.
const PubliccodeFile = "publiccode.yml"

// LogEntry is a raw entry of the catalog /logs collection.
// Fields are ordered to minimize memory padding.
type LogEntry struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Entity    string    `json:"entity,omitempty"`
}

// Software is a catalog software record.
// Name is not part of the API payload: it is read from PubliccodeYml.
type Software struct {
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	PubliccodeYml string    `json:"publiccodeYml"`
	Name          string    `json:"-"`
	Aliases       []string  `json:"aliases,omitempty"`
	Active        bool      `json:"active"`
}

// SoftwareLog is a BAD publiccode.yml log entry joined with its software
// record and the validator output already rendered as markdown.
type SoftwareLog struct {
	Timestamp            time.Time
	Software             *Software
	LogURL               string
	Entity               string
	FormattedErrorOutput string
}

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string
	Name  string
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// Path returns the URL path of the repository, "/owner/name".
func (r Repository) Path() string {
	return "/" + r.FullName()
}

// String implements fmt.Stringer.
func (r Repository) String() string {
	return r.FullName()
}

// RepoFromURL extracts the GitHub repository from a software URL.
// The URL is compared case-insensitively and a trailing ".git" is dropped.
// Returns ErrNotGitHub for any other host.
func RepoFromURL(rawURL string) (Repository, error) {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	if !strings.HasPrefix(u, GitHubURLPrefix) {
		return Repository{}, fmt.Errorf("%w: %s", ErrNotGitHub, rawURL)
	}

	path := strings.TrimPrefix(u, GitHubURLPrefix)
	path = strings.TrimSuffix(path, "/")
	path = strings.TrimSuffix(path, ".git")

	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("%w: %s", ErrInvalidRepoURL, rawURL)
	}
	return Repository{Owner: parts[0], Name: parts[1]}, nil
}
