package cli

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/italia/publiccode-issueopener/internal/app"
	"github.com/italia/publiccode-issueopener/internal/domain"
	"github.com/italia/publiccode-issueopener/internal/infra/config"
	"github.com/italia/publiccode-issueopener/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type testDeps struct {
	catalog *testutil.MockCatalog
	tracker *testutil.MockIssueTracker
	cfg     *domain.Config
}

func newTestContainer() (*app.Container, *testDeps) {
	deps := &testDeps{
		catalog: testutil.NewMockCatalog(),
		tracker: testutil.NewMockIssueTracker(),
		cfg:     domain.NewDefaultConfig(),
	}
	c := app.NewWithDeps(
		deps.cfg,
		deps.catalog,
		deps.tracker,
		nil,
		&testutil.MockRenderer{},
		&testutil.MockClock{NowTime: testNow},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return c, deps
}

func (d *testDeps) addBadLog(id, url string) {
	entity := "/software/" + id
	d.catalog.Software[entity] = &domain.Software{ID: id, URL: url}
	d.catalog.Logs = append(d.catalog.Logs, domain.LogEntry{
		CreatedAt: testNow.Add(-time.Hour),
		ID:        "log-" + id,
		Message:   "[" + url + "] BAD publiccode.yml: publiccode.yml:1:1: error: broken",
		Entity:    entity,
	})
}

func execute(t *testing.T, c *app.Container, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand(c, "test-version")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand_RunsCheck(t *testing.T) {
	c, deps := newTestContainer()
	deps.addBadLog("1", "https://github.com/foo/bar")
	deps.addBadLog("2", "https://gitlab.com/foo/baz")

	stdout, _, err := execute(t, c)

	require.NoError(t, err)
	require.Len(t, deps.tracker.Created, 1)
	assert.Equal(t, "bar", deps.tracker.Created[0].Repo.Name)
	assert.Equal(t, testNow.Add(-24*time.Hour), deps.catalog.ListLogsSince)
	assert.Contains(t, stdout, "==== Summary ====")
	assert.Contains(t, stdout, "➕ Created issues:\t1")
	assert.Contains(t, stdout, "🔄 Updated issues:\t0")
	assert.Contains(t, stdout, "== Untouched issues:\t0")
	assert.Contains(t, stdout, "🚫 Skipped repos:\t1")
	assert.NotContains(t, stdout, "Failed")
}

func TestRootCommand_Flags(t *testing.T) {
	c, deps := newTestContainer()
	deps.addBadLog("1", "https://github.com/foo/bar")

	stdout, _, err := execute(t, c, "--since", "7", "-n", "--lang", "it")

	require.NoError(t, err)
	assert.Empty(t, deps.tracker.Created)
	assert.Equal(t, testNow.Add(-7*24*time.Hour), deps.catalog.ListLogsSince)
	assert.Contains(t, stdout, "Dry run")
	assert.Contains(t, stdout, "➕ Created issues:\t1")
}

func TestRootCommand_InvalidLang(t *testing.T) {
	c, deps := newTestContainer()

	_, _, err := execute(t, c, "--lang", "fr")

	assert.ErrorIs(t, err, domain.ErrUnsupportedLang)
	assert.False(t, deps.catalog.ListLogsCalled)
}

func TestRootCommand_NegativeSince(t *testing.T) {
	c, _ := newTestContainer()

	_, _, err := execute(t, c, "--since", "-1")

	assert.Error(t, err)
}

func TestRootCommand_PrintsSummaryOnFatalError(t *testing.T) {
	c, deps := newTestContainer()
	deps.addBadLog("1", "https://github.com/foo/bar")
	c.Renderer = &testutil.MockRenderer{Err: assert.AnError}

	stdout, _, err := execute(t, c)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, stdout, "==== Summary ====")
}

func TestRootCommand_Version(t *testing.T) {
	c, _ := newTestContainer()

	stdout, _, err := execute(t, c, "--version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "test-version")
}

func useLoaderEnv(t *testing.T, env map[string]string) {
	t.Helper()

	original := newLoaderFunc
	t.Cleanup(func() { newLoaderFunc = original })
	newLoaderFunc = func(path string) *config.Loader {
		return config.NewLoaderWithEnv(path, func(k string) string { return env[k] })
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootCommand_LoadsConfig(t *testing.T) {
	useLoaderEnv(t, map[string]string{config.EnvBotToken: "ghp_secret"})
	path := writeConfig(t, "[github]\nusername = \"my-bot\"\n\n[check]\nlang = \"it\"\nfoo = 1\n")

	c := &app.Container{}
	stdout, stderr, err := execute(t, c, "--config", path, "--log-level", "debug", "config", "show")

	require.NoError(t, err)
	require.True(t, c.Ready())
	assert.Equal(t, "my-bot", c.Config.GitHub.Username)
	assert.Equal(t, domain.LangIT, c.Config.Check.Lang)
	assert.Equal(t, "debug", c.Config.Log.Level)
	assert.Equal(t, path, c.ConfigPath)
	assert.Contains(t, stderr, "Warning: unknown key in [check]: foo")
	assert.Contains(t, stdout, "# Loaded from "+path)
	assert.Contains(t, stdout, "my-bot")
	assert.NotContains(t, stdout, "ghp_secret")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	useLoaderEnv(t, nil)
	path := writeConfig(t, "[check]\nchange_detector = \"svn\"\n")

	c := &app.Container{}
	_, _, err := execute(t, c, "--config", path, "config", "show")

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.False(t, c.Ready())
}

func TestRootCommand_MissingExplicitConfig(t *testing.T) {
	useLoaderEnv(t, nil)

	c := &app.Container{}
	_, _, err := execute(t, c, "--config", filepath.Join(t.TempDir(), "missing.toml"), "status")

	assert.Error(t, err)
}

func TestConfigTemplate_SkipsLoading(t *testing.T) {
	useLoaderEnv(t, nil)
	path := writeConfig(t, "not toml at all [")

	c := &app.Container{}
	stdout, _, err := execute(t, c, "--config", path, "config", "template")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfigTemplate(), stdout)
	assert.False(t, c.Ready())
}
