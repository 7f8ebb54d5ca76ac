package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upside-down-research.com/oss/goap/internal/config"
	"upside-down-research.com/oss/goap/internal/journal"
)

const woodcutterYAML = `
goal:
  - name: GetWood
    is_valid: {HasWood: false}
    desired_state: {HasWood: true}
action:
  - name: GetAxe
    cost: 2
    post: {HasAxe: true}
  - name: ChopTree
    pre: {HasAxe: true}
    cost: 1
    post: {HasWood: true}
  - name: CollectBranches
    cost: 8
    post: {HasWood: true}
`

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	cat := writeTemp(t, dir, "woodcutter.yaml", woodcutterYAML)

	t.Run("json result", func(t *testing.T) {
		out := captureStdout(t)
		cmd := &PlanCommand{Catalog: []string{cat}, JSON: true}
		require.NoError(t, cmd.Run(context.Background()))

		var result PlanResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.True(t, result.Found)
		assert.Equal(t, "GetWood", result.Goal)
		assert.Equal(t, []string{"GetAxe", "ChopTree"}, result.Actions)
		assert.Equal(t, int64(3), result.Cost)
		assert.NotEmpty(t, result.RunID)
	})

	t.Run("ineligible goal gives no plan", func(t *testing.T) {
		out := captureStdout(t)
		cmd := &PlanCommand{
			StateFlags: StateFlags{Set: []string{"HasWood"}},
			Catalog:    []string{cat},
			Goal:       "GetWood",
			JSON:       true,
		}
		require.NoError(t, cmd.Run(context.Background()))

		var result PlanResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.False(t, result.Found)
		assert.Equal(t, "ineligible", result.Outcome)
		assert.Empty(t, result.Actions)
	})

	t.Run("unknown goal", func(t *testing.T) {
		captureStdout(t)
		cmd := &PlanCommand{Catalog: []string{cat}, Goal: "Fly"}
		require.Error(t, cmd.Run(context.Background()))
	})

	t.Run("record then show", func(t *testing.T) {
		journalDir := filepath.Join(dir, "journal")
		out := captureStdout(t)
		cmd := &PlanCommand{
			RuntimeFlags: RuntimeFlags{Journal: journalDir},
			Catalog:      []string{cat},
			Record:       true,
		}
		require.NoError(t, cmd.Run(context.Background()))
		assert.Contains(t, out.String(), "ChopTree")

		records, err := journal.New(journalDir).List()
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, journal.KindPlan, records[0].Kind)

		out.Reset()
		show := &HistoryShowCommand{JournalFlags: JournalFlags{Journal: journalDir}, RunID: records[0].ID}
		require.NoError(t, show.Run())
		assert.Contains(t, out.String(), "GetAxe → ChopTree")
		assert.Contains(t, out.String(), "Total cost: 3")
	})
}

func TestSimulateCommand(t *testing.T) {
	dir := t.TempDir()
	cat := writeTemp(t, dir, "woodcutter.yaml", woodcutterYAML)
	journalDir := filepath.Join(dir, "journal")

	out := captureStdout(t)
	cmd := &SimulateCommand{
		RuntimeFlags: RuntimeFlags{Journal: journalDir},
		Catalog:      []string{cat},
		Strict:       true,
		Record:       true,
	}
	require.NoError(t, cmd.Run(context.Background()))
	assert.Contains(t, out.String(), "+ HasWood")
	assert.Contains(t, out.String(), "stopped: idle")

	records, err := journal.New(journalDir).List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, journal.KindSimulate, records[0].Kind)
	assert.Equal(t, "idle", records[0].Stop)
	require.Len(t, records[0].Steps, 1)
	assert.Equal(t, map[string]bool{"HasAxe": true, "HasWood": true}, records[0].Steps[0].After)

	out.Reset()
	list := &HistoryListCommand{JournalFlags: JournalFlags{Journal: journalDir}}
	require.NoError(t, list.Run())
	assert.Contains(t, out.String(), records[0].ID)
	assert.Contains(t, out.String(), "simulate")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	cat := writeTemp(t, dir, "woodcutter.yaml", woodcutterYAML)
	armed := writeTemp(t, dir, "armed.yaml", "HasAxe: true\n")
	done := writeTemp(t, dir, "done.json", `{"HasWood": true}`)

	out := captureStdout(t)
	cmd := &BatchCommand{
		Catalog:     []string{cat},
		States:      []string{armed, done},
		Concurrency: 2,
		JSON:        true,
	}
	require.NoError(t, cmd.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first, second PlanResult
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, armed, first.Source)
	assert.Equal(t, []string{"ChopTree"}, first.Actions)
	assert.Equal(t, int64(1), first.Cost)
	assert.Equal(t, done, second.Source)
	assert.False(t, second.Found)

	t.Run("missing state file fails the batch", func(t *testing.T) {
		captureStdout(t)
		cmd := &BatchCommand{Catalog: []string{cat}, States: []string{filepath.Join(dir, "nope.yaml")}}
		require.Error(t, cmd.Run(context.Background()))
	})
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	cat := writeTemp(t, dir, "woodcutter.yaml", woodcutterYAML)

	out := captureStdout(t)
	require.NoError(t, (&ValidateCommand{Catalog: []string{cat}}).Run())
	assert.Contains(t, out.String(), "Loaded 1 goals and 3 actions")

	extra := writeTemp(t, dir, "extra.yaml", "action:\n  - name: Whistle\n    post: {Whistling: true}\n")
	err := (&ValidateCommand{Catalog: []string{cat, extra}, Strict: true}).Run()
	require.Error(t, err)
	assert.Contains(t, out.String(), "action.Whistle")

	require.Error(t, (&ValidateCommand{Catalog: []string{filepath.Join(dir, "missing.yaml")}}).Run())
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goap.yaml")
	captureStdout(t)

	require.NoError(t, (&ConfigInitCommand{Output: path}).Run())
	assert.FileExists(t, path)

	require.Error(t, (&ConfigInitCommand{Output: path}).Run())
	require.NoError(t, (&ConfigInitCommand{Output: path, Force: true}).Run())

	out := captureStdout(t)
	require.NoError(t, (&DoctorCommand{Config: path}).Run(context.Background()))
	assert.Contains(t, out.String(), "All systems ready")
}

func TestHistoryEmpty(t *testing.T) {
	out := captureStdout(t)
	cmd := &HistoryListCommand{JournalFlags: JournalFlags{Journal: filepath.Join(t.TempDir(), "none")}}
	require.NoError(t, cmd.Run())
	assert.Contains(t, out.String(), "No runs recorded")

	show := &HistoryShowCommand{JournalFlags: JournalFlags{Journal: t.TempDir()}, RunID: "missing"}
	require.ErrorIs(t, show.Run(), journal.ErrRunNotFound)

	show.RunID = "../../run"
	require.ErrorIs(t, show.Run(), journal.ErrInvalidRunID)
}

func TestSessionPushesAfterCancel(t *testing.T) {
	pushes := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushes <- r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Pushgateway = server.URL
	cfg.Metrics.Job = "goap_test"

	sess, err := newSession(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sess.close(ctx)

	select {
	case path := <-pushes:
		assert.Equal(t, "/metrics/job/goap_test", path)
	default:
		t.Fatal("metrics were not pushed after the context was cancelled")
	}
}
