// Package gitremote detects upstream changes by cloning repositories into
// memory with go-git.
package gitremote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/italia/publiccode-issueopener/internal/domain"
)

// Ensure Detector implements domain.ChangeDetector.
var _ domain.ChangeDetector = (*Detector)(nil)

// DefaultDepth bounds the history fetched per repository.
const DefaultDepth = 50

// Detector implements domain.ChangeDetector with an in-memory clone.
type Detector struct {
	baseURL string
	depth   int
}

// New creates a Detector cloning from baseURL/<owner>/<name>.
// depth 0 fetches the full history.
func New(baseURL string, depth int) *Detector {
	return &Detector{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		depth:   depth,
	}
}

// ChangedSince reports whether a commit after since touched path on the
// default branch.
func (d *Detector) ChangedSince(ctx context.Context, repo domain.Repository, path string, since time.Time) (bool, error) {
	url := fmt.Sprintf("%s/%s/%s", d.baseURL, repo.Owner, repo.Name)

	r, err := git.CloneContext(ctx, memory.NewStorage(), nil, &git.CloneOptions{
		URL:          url,
		Depth:        d.depth,
		SingleBranch: true,
		NoCheckout:   true,
		Tags:         git.NoTags,
	})
	if err != nil {
		return false, fmt.Errorf("clone %s: %w", url, err)
	}

	return changedSince(r, path, since)
}

func changedSince(r *git.Repository, path string, since time.Time) (bool, error) {
	iter, err := r.Log(&git.LogOptions{
		FileName: &path,
		Since:    &since,
	})
	if err != nil {
		return false, fmt.Errorf("log %s: %w", path, err)
	}
	defer iter.Close()

	_, err = iter.Next()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, io.EOF):
		return false, nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		// History is cut at the shallow boundary.
		return false, nil
	default:
		return false, fmt.Errorf("walk history of %s: %w", path, err)
	}
}
