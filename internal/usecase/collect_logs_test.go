package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/italia/publiccode-issueopener/internal/domain"
	"github.com/italia/publiccode-issueopener/internal/testutil"
	"github.com/italia/publiccode-issueopener/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func badEntry(id, entity string, createdAt time.Time, output string) domain.LogEntry {
	return domain.LogEntry{
		CreatedAt: createdAt,
		ID:        id,
		Message:   "[https://github.com/foo/bar] BAD publiccode.yml: " + output,
		Entity:    entity,
	}
}

func TestCollectLogs_Execute(t *testing.T) {
	t.Run("computes since from days", func(t *testing.T) {
		catalog := testutil.NewMockCatalog()
		clock := &testutil.MockClock{NowTime: testNow}

		uc := usecase.NewCollectLogs(catalog, clock, discardLogger())
		logs, err := uc.Execute(context.Background(), usecase.CollectLogsInput{Days: 3})

		require.NoError(t, err)
		assert.Empty(t, logs)
		assert.True(t, catalog.ListLogsCalled)
		assert.Equal(t, testNow.Add(-72*time.Hour), catalog.ListLogsSince)
	})

	t.Run("joins bad logs with their software", func(t *testing.T) {
		catalog := testutil.NewMockCatalog()
		catalog.Software["/software/1"] = &domain.Software{
			ID:   "1",
			URL:  "https://github.com/foo/bar.git",
			Name: "Bar",
		}
		catalog.Logs = []domain.LogEntry{
			badEntry("l1", "/software/1", testNow.Add(-time.Hour), "publiccode.yml:3:1: error: bad name"),
		}
		clock := &testutil.MockClock{NowTime: testNow}

		uc := usecase.NewCollectLogs(catalog, clock, discardLogger())
		logs, err := uc.Execute(context.Background(), usecase.CollectLogsInput{Days: 1})

		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "/software/1", logs[0].Entity)
		assert.Equal(t, "Bar", logs[0].Software.Name)
		assert.Equal(t, "https://api.example.org/v1/logs/l1", logs[0].LogURL)
		assert.Equal(t, testNow.Add(-time.Hour), logs[0].Timestamp)
		assert.Contains(t, logs[0].FormattedErrorOutput,
			"(https://github.com/foo/bar/blob/HEAD/publiccode.yml#L3)")
	})

	t.Run("keeps the newest log per entity", func(t *testing.T) {
		catalog := testutil.NewMockCatalog()
		catalog.Software["/software/1"] = &domain.Software{URL: "https://github.com/foo/bar"}
		catalog.Software["/software/2"] = &domain.Software{URL: "https://github.com/foo/baz"}
		catalog.Logs = []domain.LogEntry{
			badEntry("old", "/software/1", testNow.Add(-3*time.Hour), "old error"),
			badEntry("other", "/software/2", testNow.Add(-2*time.Hour), "other error"),
			badEntry("new", "/software/1", testNow.Add(-time.Hour), "new error"),
			badEntry("older", "/software/1", testNow.Add(-5*time.Hour), "older error"),
		}
		clock := &testutil.MockClock{NowTime: testNow}

		uc := usecase.NewCollectLogs(catalog, clock, discardLogger())
		logs, err := uc.Execute(context.Background(), usecase.CollectLogsInput{Days: 1})

		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, "/software/1", logs[0].Entity)
		assert.Contains(t, logs[0].FormattedErrorOutput, "new error")
		assert.Equal(t, "/software/2", logs[1].Entity)
		assert.Equal(t, []string{"/software/1", "/software/2"}, catalog.SoftwareCalls)
	})

	t.Run("skips unrelated and unresolvable logs", func(t *testing.T) {
		catalog := testutil.NewMockCatalog()
		catalog.Logs = []domain.LogEntry{
			{ID: "a", Message: "GOOD publiccode.yml", Entity: "/software/1"},
			badEntry("b", "//", testNow, "error"),
			badEntry("c", "", testNow, "error"),
		}
		clock := &testutil.MockClock{NowTime: testNow}

		uc := usecase.NewCollectLogs(catalog, clock, discardLogger())
		logs, err := uc.Execute(context.Background(), usecase.CollectLogsInput{Days: 1})

		require.NoError(t, err)
		assert.Empty(t, logs)
		assert.Empty(t, catalog.SoftwareCalls)
	})

	t.Run("list error aborts", func(t *testing.T) {
		catalog := testutil.NewMockCatalog()
		catalog.ListErr = errors.New("boom")
		clock := &testutil.MockClock{NowTime: testNow}

		uc := usecase.NewCollectLogs(catalog, clock, discardLogger())
		_, err := uc.Execute(context.Background(), usecase.CollectLogsInput{Days: 1})

		require.Error(t, err)
		assert.ErrorIs(t, err, catalog.ListErr)
	})

	t.Run("software error aborts", func(t *testing.T) {
		catalog := testutil.NewMockCatalog()
		catalog.Logs = []domain.LogEntry{badEntry("l1", "/software/404", testNow, "error")}
		clock := &testutil.MockClock{NowTime: testNow}

		uc := usecase.NewCollectLogs(catalog, clock, discardLogger())
		_, err := uc.Execute(context.Background(), usecase.CollectLogsInput{Days: 1})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "l1")
	})
}
