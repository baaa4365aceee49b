package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/0xmhha/study-tracker/pkg/config"
	"github.com/0xmhha/study-tracker/pkg/ingest"
	"github.com/0xmhha/study-tracker/pkg/record"
	"github.com/0xmhha/study-tracker/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv isolates the CLI from the user's configuration and points it at
// a bolt database in a temp directory.
func setupEnv(t *testing.T, backend string) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvBackend, backend)
	t.Setenv(config.EnvDB, filepath.Join(dir, "study.db"))
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvTimezone, "UTC")

	return dir
}

// run executes the root command with args and returns its output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func runJSON(t *testing.T, v any, args ...string) {
	t.Helper()

	out, err := run(t, "", append([]string{"--format", "json"}, args...)...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "study-tracker dev")
}

func TestSessionCommands(t *testing.T) {
	for _, backend := range []string{config.BackendBolt, config.BackendSQLite} {
		backend := backend
		t.Run(backend, func(t *testing.T) {
			setupEnv(t, backend)

			var created record.Session
			runJSON(t, &created, "session", "add",
				"--subject", "Math", "--duration", "90",
				"--date", "2024-03-13 18:00", "--notes", "chapter 4")

			require.NotEmpty(t, created.ID)
			assert.Equal(t, "Math", created.Subject)
			assert.Equal(t, 90, created.Duration)
			assert.Equal(t, "2024-03-13T18:00:00Z", created.Date.UTC().Format("2006-01-02T15:04:05Z07:00"))

			var listed []record.Session
			runJSON(t, &listed, "session", "list")
			require.Len(t, listed, 1)
			assert.Equal(t, created.ID, listed[0].ID)

			var shown record.Session
			runJSON(t, &shown, "session", "show", created.ID)
			assert.Equal(t, "chapter 4", shown.Notes)

			out, err := run(t, "", "session", "show", "missing")
			require.Error(t, err, out)
			assert.Contains(t, err.Error(), "session not found")
		})
	}
}

func TestSessionAdd_Validation(t *testing.T) {
	setupEnv(t, config.BackendBolt)

	_, err := run(t, "", "session", "add", "--duration", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--subject")
	assert.Contains(t, err.Error(), "--duration")

	_, err = run(t, "", "session", "add", "--subject", "Math", "--duration", "30", "--date", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --date")
}

func TestSessionRecent(t *testing.T) {
	setupEnv(t, config.BackendBolt)

	for _, d := range []string{"2024-03-11", "2024-03-12", "2024-03-13"} {
		_, err := run(t, "", "session", "add", "--subject", "Math", "--duration", "30", "--date", d)
		require.NoError(t, err)
	}

	var recent []record.Session
	runJSON(t, &recent, "session", "recent", "--limit", "2")
	require.Len(t, recent, 2)
	assert.Equal(t, 13, recent[0].Date.Day())
	assert.Equal(t, 12, recent[1].Date.Day())
}

func TestGoalAdd_DefaultWindow(t *testing.T) {
	setupEnv(t, config.BackendBolt)

	var goals []record.Goal
	runJSON(t, &goals, "goal", "add", "--type", "weekly", "--target", "10", "--title", "Finals")

	require.Len(t, goals, 1)
	g := goals[0]
	assert.Equal(t, record.GoalWeekly, g.Type)
	assert.Equal(t, 10, g.TargetHours)
	assert.Equal(t, 7*24.0, g.EndDate.Sub(g.StartDate).Hours())

	var active []record.Goal
	runJSON(t, &active, "goal", "active")
	require.Len(t, active, 1)
	assert.Equal(t, g.ID, active[0].ID)

	var shown []record.Goal
	runJSON(t, &shown, "goal", "show", g.ID)
	require.Len(t, shown, 1)
	assert.Equal(t, "Finals", shown[0].Title)
}

func TestGoalAdd_ExplicitWindow(t *testing.T) {
	setupEnv(t, config.BackendBolt)

	_, err := run(t, "", "goal", "add", "--target", "5", "--title", "Half", "--start", "2024-03-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--start and --end")

	var goals []record.Goal
	runJSON(t, &goals, "goal", "add", "--type", "monthly", "--target", "40",
		"--title", "Thesis", "--start", "2024-03-01", "--end", "2024-03-31")
	require.Len(t, goals, 1)
	assert.Equal(t, 1, goals[0].StartDate.Day())
	assert.Equal(t, 31, goals[0].EndDate.Day())

	_, err = run(t, "", "goal", "add", "--type", "yearly", "--target", "1", "--title", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--type")
}

func TestGoalProgress(t *testing.T) {
	setupEnv(t, config.BackendBolt)

	_, err := run(t, "", "goal", "add", "--target", "2", "--title", "Week",
		"--start", "2024-03-11", "--end", "2024-03-17")
	require.NoError(t, err)
	_, err = run(t, "", "session", "add", "--subject", "Math", "--duration", "60", "--date", "2024-03-13 10:00")
	require.NoError(t, err)

	var progress []stats.GoalProgress
	runJSON(t, &progress, "goal", "progress")
	require.Len(t, progress, 1)
	assert.Equal(t, "Week", progress[0].Title)

	out, err := run(t, "", "goal", "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Goal Progress")
	assert.Contains(t, out, "Week")
}

func TestStats(t *testing.T) {
	setupEnv(t, config.BackendBolt)

	_, err := run(t, "", "session", "add", "--subject", "Math", "--duration", "90", "--date", "2024-03-13 10:00")
	require.NoError(t, err)

	var s stats.StudyStats
	runJSON(t, &s, "stats")
	assert.Equal(t, 1.5, s.TotalHours)

	out, err := run(t, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Study Statistics")

	out, err = run(t, "", "--format", "simple", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 1.5h")
}

func TestReportCommands(t *testing.T) {
	setupEnv(t, config.BackendBolt)

	_, err := run(t, "", "session", "add", "--subject", "Math", "--duration", "45")
	require.NoError(t, err)

	for _, args := range [][]string{{"insights"}, {"trends"}, {"dashboard"}} {
		out, err := run(t, "", args...)
		require.NoError(t, err, args)
		assert.NotEmpty(t, out, args)
	}
}

func TestInvalidFormat(t *testing.T) {
	setupEnv(t, config.BackendBolt)

	_, err := run(t, "", "--format", "xml", "stats")
	require.Error(t, err)
}

func TestImport(t *testing.T) {
	home := setupEnv(t, config.BackendBolt)

	dir := filepath.Join(home, "logs")
	require.NoError(t, os.MkdirAll(dir, 0750))
	content := `{"kind":"session","subject":"Math","duration":60,"date":"2024-03-13T10:00:00Z"}` + "\n" +
		`{"kind":"goal","type":"weekly","targetHours":5,"title":"Week","startDate":"2024-03-11","endDate":"2024-03-17"}` + "\n" +
		"not json\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log.jsonl"), []byte(content), 0600))

	var res ingest.Result
	runJSON(t, &res, "import", dir)
	assert.Equal(t, ingest.Result{Files: 1, Sessions: 1, Goals: 1, Skipped: 1}, res)

	// Offsets persist, so nothing is imported twice.
	runJSON(t, &res, "import", dir)
	assert.Equal(t, 0, res.Imported())

	var sessions []record.Session
	runJSON(t, &sessions, "session", "list")
	assert.Len(t, sessions, 1)
}

func TestImport_NoDirs(t *testing.T) {
	setupEnv(t, config.BackendBolt)

	_, err := run(t, "", "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import.dirs")
}

func TestConfigInitAndShow(t *testing.T) {
	home := setupEnv(t, config.BackendBolt)
	path := filepath.Join(home, "conf", "study.yaml")

	out, err := run(t, "", "config", "init", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	require.FileExists(t, path)

	out, err = run(t, "n\n", "config", "init", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Init cancelled.")

	out, err = run(t, "", "config", "init", "--output", path, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "written")

	out, err = run(t, "", "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Source: "+path)
	assert.Contains(t, out, "recent_limit: 5")

	out, err = run(t, "", "--config", path, "--format", "json", "config", "show")
	require.NoError(t, err)
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tree), out)
	assert.Contains(t, tree, "storage")
	assert.Contains(t, tree, "engine")

	out, err = run(t, "", "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, path+" [found]")
	assert.Contains(t, out, "Active configuration: "+path)
}

func TestConfigShow_MissingExplicitFile(t *testing.T) {
	home := setupEnv(t, config.BackendBolt)

	_, err := run(t, "", "--config", filepath.Join(home, "nope.yaml"), "config", "show")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
}
