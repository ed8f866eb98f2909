package domain

import (
	"crypto/sha1" //nolint:gosec // SHA-1 is a change token here, not a security primitive
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// IssueTitle is the title of every issue opened by the bot.
const IssueTitle = "Errors in publiccode.yml file"

// ChecksumField is the hidden field carrying the checksum of the error table.
const ChecksumField = "sha1sum"

// IssueState represents the state of a GitHub issue.
type IssueState string

const (
	IssueOpen   IssueState = "open"
	IssueClosed IssueState = "closed"
)

// Issue represents a GitHub issue.
// Fields are ordered to minimize memory padding.
type Issue struct {
	UpdatedAt time.Time
	Repo      Repository
	Title     string
	Body      string
	HTMLURL   string
	State     IssueState
	Number    int
}

// IsOpen reports whether the issue is open.
func (i *Issue) IsOpen() bool {
	return i.State == IssueOpen
}

// IssueData is the data available to issue body templates.
type IssueData struct {
	HiddenFields         HiddenFields
	FormattedErrorOutput string
	Debug                string
	APILogURL            string
	SoftwareName         string
}

// HiddenFields are key/value pairs stored in an HTML comment on the first
// line of the issue body.
type HiddenFields map[string]string

// String renders the fields as "k1=v1,k2=v2" with keys sorted.
func (h HiddenFields) String() string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+h[k])
	}
	return strings.Join(pairs, ",")
}

// Comment renders the fields as the HTML comment placed in issue bodies.
func (h HiddenFields) Comment() string {
	return "<!-- " + h.String() + " -->"
}

var (
	hiddenFieldsRe    = regexp.MustCompile(`^<!-- (.*?) -->`)
	hiddenFieldsSepRe = regexp.MustCompile(`[,=]`)
)

// ParseHiddenFields reads the hidden fields from the first non-empty line of
// an issue body. Returns ErrNoHiddenFields if the line is not a hidden comment.
func ParseHiddenFields(body string) (HiddenFields, error) {
	var first string
	for _, line := range splitLines(body) {
		if line != "" {
			first = line
			break
		}
	}

	m := hiddenFieldsRe.FindStringSubmatch(first)
	if m == nil {
		return nil, ErrNoHiddenFields
	}

	tokens := hiddenFieldsSepRe.Split(m[1], -1)
	fields := make(HiddenFields, len(tokens)/2)
	for i := 0; i+1 < len(tokens); i += 2 {
		fields[tokens[i]] = tokens[i+1]
	}
	return fields, nil
}

// Checksum returns the hex SHA-1 of the formatted error output.
func Checksum(formattedErrorOutput string) string {
	sum := sha1.Sum([]byte(formattedErrorOutput)) //nolint:gosec // change token only
	return hex.EncodeToString(sum[:])
}

// ShouldUpdate reports whether an open issue carries a checksum different
// from sha1sum. Closed issues are never updated.
// A body without hidden fields yields ErrNoHiddenFields and false.
func ShouldUpdate(sha1sum string, issue *Issue) (bool, error) {
	fields, err := ParseHiddenFields(issue.Body)
	if err != nil {
		return false, err
	}
	return issue.IsOpen() && fields[ChecksumField] != sha1sum, nil
}

// Action is what the reconciler does with an issue.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionNone   Action = "none"
)

// Decide picks the action for a repository given its most recent open bot
// issue (nil if none) and the checksum of the current error output.
// The returned error is non-nil only alongside ActionNone.
func Decide(existing *Issue, sha1sum string) (Action, error) {
	if existing == nil {
		return ActionCreate, nil
	}

	update, err := ShouldUpdate(sha1sum, existing)
	if err != nil {
		return ActionNone, fmt.Errorf("issue %s: %w", existing.HTMLURL, err)
	}
	if update {
		return ActionUpdate, nil
	}
	return ActionNone, nil
}

// CheckEligibility returns the target repository of a log, or
// ErrNotGitHub / ErrTransientError when no issue must be opened for it.
// transientPatterns are substrings of validator output caused by remote
// services being unreachable rather than by the manifest itself.
func CheckEligibility(log SoftwareLog, transientPatterns []string) (Repository, error) {
	var url string
	if log.Software != nil {
		url = log.Software.URL
	}

	repo, err := RepoFromURL(url)
	if err != nil {
		return Repository{}, err
	}

	for _, p := range transientPatterns {
		if p != "" && strings.Contains(log.FormattedErrorOutput, p) {
			return Repository{}, fmt.Errorf("%w: %q", ErrTransientError, p)
		}
	}
	return repo, nil
}
