// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/italia/publiccode-issueopener/internal/domain"
)

// CollectLogsInput contains the parameters for collecting logs.
type CollectLogsInput struct {
	Days int // Days to go back from now
}

// CollectLogs is the use case turning catalog logs into SoftwareLogs.
type CollectLogs struct {
	catalog domain.Catalog
	clock   domain.Clock
	logger  *slog.Logger
}

// NewCollectLogs creates a new CollectLogs use case.
func NewCollectLogs(catalog domain.Catalog, clock domain.Clock, logger *slog.Logger) *CollectLogs {
	return &CollectLogs{
		catalog: catalog,
		clock:   clock,
		logger:  logger,
	}
}

// badLog is a BAD publiccode.yml entry waiting for its software record.
type badLog struct {
	entry  domain.LogEntry
	output string
}

// Execute lists the logs of the last in.Days days and returns one
// SoftwareLog per entity, built from its most recent BAD publiccode.yml
// entry. Any catalog error aborts.
func (uc *CollectLogs) Execute(ctx context.Context, in CollectLogsInput) ([]domain.SoftwareLog, error) {
	since := uc.clock.Now().UTC().Add(-time.Duration(in.Days) * 24 * time.Hour)

	entries, err := uc.catalog.ListLogs(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	uc.logger.Debug("fetched logs", "count", len(entries), "since", since)

	// Keep the newest entry per entity, in order of first appearance.
	var order []string
	latest := make(map[string]badLog)
	for _, e := range entries {
		_, output, ok := domain.ParseLogMessage(e.Message)
		if !ok {
			continue
		}
		if !domain.IsResolvableEntity(e.Entity) {
			uc.logger.Debug("skipping log without entity", "id", e.ID)
			continue
		}

		prev, seen := latest[e.Entity]
		if !seen {
			order = append(order, e.Entity)
		} else if !e.CreatedAt.After(prev.entry.CreatedAt) {
			continue
		}
		latest[e.Entity] = badLog{entry: e, output: output}
	}

	logs := make([]domain.SoftwareLog, 0, len(order))
	for _, entity := range order {
		bad := latest[entity]

		sw, err := uc.catalog.GetSoftware(ctx, entity)
		if err != nil {
			return nil, fmt.Errorf("get software for log %s: %w", bad.entry.ID, err)
		}

		logs = append(logs, domain.SoftwareLog{
			Timestamp:            bad.entry.CreatedAt,
			Software:             sw,
			LogURL:               uc.catalog.LogURL(bad.entry.ID),
			Entity:               entity,
			FormattedErrorOutput: domain.ToMarkdown(bad.output, sw.URL),
		})
	}

	return logs, nil
}
