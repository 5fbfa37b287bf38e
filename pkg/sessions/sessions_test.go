package sessions

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tules/tules/pkg/provider"
)

// stubProfile serves session files from a fixed directory so tests control
// exactly what discovery sees. Unused Profile methods stay nil.
type stubProfile struct {
	provider.Profile
	name   string
	dir    string
	format provider.FileFormat
	glob   string
}

func (s *stubProfile) Name() string                           { return s.name }
func (s *stubProfile) SessionsDir(workingDir string) string   { return s.dir }
func (s *stubProfile) SessionFileFormat() provider.FileFormat { return s.format }
func (s *stubProfile) SessionFileGlob() string                { return s.glob }

func jsonlProfile(dir string) *stubProfile {
	return &stubProfile{name: "claude", dir: dir, format: provider.FormatJSONL, glob: "*.jsonl"}
}

func jsonProfile(dir string) *stubProfile {
	return &stubProfile{name: "gemini", dir: dir, format: provider.FormatJSON, glob: "session-*.json"}
}

func writeJSONLSession(t *testing.T, dir, name, summary string, stamps ...string) string {
	t.Helper()
	content := fmt.Sprintf(`{"type":"summary","summary":%q,"cwd":"/work","gitBranch":"main"}`+"\n", summary)
	for i, ts := range stamps {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		content += fmt.Sprintf(`{"type":%q,"timestamp":%q,"message":{"role":%q,"content":"msg %d"}}`+"\n",
			role, ts, role, i)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDiscoverOrdersNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writeJSONLSession(t, dir, "aaa.jsonl", "oldest work", "2026-01-01T10:00:00Z")
	writeJSONLSession(t, dir, "bbb.jsonl", "newest work", "2026-01-03T10:00:00Z")
	writeJSONLSession(t, dir, "ccc.jsonl", "middle work", "2026-01-02T10:00:00Z")

	records, skipped := Discover(jsonlProfile(dir), "/work")
	require.Empty(t, skipped)
	require.Len(t, records, 3)
	assert.Equal(t, "newest work", records[0].Summary)
	assert.Equal(t, "middle work", records[1].Summary)
	assert.Equal(t, "oldest work", records[2].Summary)
	assert.Equal(t, "/work", records[0].WorkingDir)
	assert.Equal(t, "main", records[0].GitBranch)
}

func TestDiscoverClassifiesAgentSessions(t *testing.T) {
	dir := t.TempDir()
	writeJSONLSession(t, dir, "abc123.jsonl", "interactive", "2026-01-01T10:00:00Z")
	writeJSONLSession(t, dir, "agent-def456.jsonl", "background", "2026-01-02T10:00:00Z")

	records, skipped := Discover(jsonlProfile(dir), "/work")
	require.Empty(t, skipped)
	require.Len(t, records, 2)
	assert.Equal(t, KindAgent, records[0].Kind)
	assert.Equal(t, "def456", records[0].SessionID)
	assert.Equal(t, KindMain, records[1].Kind)
	assert.Equal(t, "abc123", records[1].SessionID)
}

func TestDiscoverSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeJSONLSession(t, dir, "good.jsonl", "fine", "2026-01-01T10:00:00Z")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.jsonl"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.jsonl"), []byte("not json\n"), 0644))

	records, skipped := Discover(jsonlProfile(dir), "/work")
	require.Len(t, records, 1)
	assert.Equal(t, "fine", records[0].Summary)
	assert.Len(t, skipped, 2)
}

func TestDiscoverMissingDirectoryIsEmpty(t *testing.T) {
	p := jsonlProfile(filepath.Join(t.TempDir(), "does-not-exist"))
	records, skipped := Discover(p, "/work")
	assert.Empty(t, records)
	assert.Empty(t, skipped)
}

func TestDiscoverSingleDocumentFormat(t *testing.T) {
	dir := t.TempDir()
	doc := `{
		"sessionId": "9f8e7d6c-1234-5678-9abc-def012345678",
		"startTime": "2026-02-01T08:00:00Z",
		"lastUpdated": "2026-02-01T09:30:00Z",
		"messages": [
			{"type": "user", "content": "summarize this repo", "timestamp": "2026-02-01T08:00:00Z"},
			{"type": "gemini", "content": "It is a CLI tool.", "timestamp": "2026-02-01T08:00:05Z"}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session-1.json"), []byte(doc), 0644))

	records, skipped := Discover(jsonProfile(dir), "/work")
	require.Empty(t, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, "9f8e7d6c-1234-5678-9abc-def012345678", records[0].SessionID)
	assert.Equal(t, "summarize this repo", records[0].Summary)
	assert.Equal(t, time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC), records[0].LastTimestamp.UTC())
	assert.Equal(t, KindMain, records[0].Kind)
}

func TestLoadDetailJSONL(t *testing.T) {
	dir := t.TempDir()
	content := `{"type":"summary","summary":"parts test"}
{"type":"user","timestamp":"2026-01-01T10:00:00Z","message":{"role":"user","content":"plain string"}}
{"type":"assistant","timestamp":"2026-01-01T10:00:05Z","message":{"role":"assistant","content":[{"type":"text","text":"first part"},{"type":"tool_use","text":""},{"type":"text","text":"second part"}]}}
{"type":"progress","message":{"role":"system","content":"ignored"}}
`
	path := filepath.Join(dir, "s.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	records, skipped := Discover(jsonlProfile(dir), "/work")
	require.Empty(t, skipped)
	require.Len(t, records, 1)

	messages, err := LoadDetail(jsonlProfile(dir), records[0])
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "plain string", messages[0].Text)
	assert.Equal(t, "assistant", messages[1].Role)
	assert.Equal(t, "first part\nsecond part", messages[1].Text)
}

func TestLoadDetailSingleDocument(t *testing.T) {
	dir := t.TempDir()
	doc := `{"sessionId":"x","startTime":"2026-02-01T08:00:00Z","messages":[
		{"type":"user","content":"hello"},
		{"type":"gemini","content":"hi there"}
	]}`
	path := filepath.Join(dir, "session-2.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	records, _ := Discover(jsonProfile(dir), "/work")
	require.Len(t, records, 1)

	messages, err := LoadDetail(jsonProfile(dir), records[0])
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "gemini", messages[1].Role)
}

func TestDiscoverAllGroupsByDecodedDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	claude := provider.Get("claude")
	for _, wd := range []string{"/work/alpha", "/work/beta"} {
		dir := claude.SessionsDir(wd)
		require.NoError(t, os.MkdirAll(dir, 0755))
		writeJSONLSession(t, dir, "s1.jsonl", "in "+wd, "2026-01-01T10:00:00Z")
	}

	grouped, skipped, err := DiscoverAll(claude)
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Len(t, grouped, 2)
	require.Len(t, grouped["/work/alpha"], 1)
	assert.Equal(t, "in /work/alpha", grouped["/work/alpha"][0].Summary)
}

func TestDiscoverAllRejectsHashEncoding(t *testing.T) {
	_, _, err := DiscoverAll(provider.Get("gemini"))
	require.Error(t, err)
}

func TestFilter(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC) }
	records := []*Record{
		{SessionID: "a", Kind: KindMain, Summary: "fix the parser", LastTimestamp: day(3)},
		{SessionID: "b", Kind: KindAgent, Summary: "refactor storage", LastTimestamp: day(2)},
		{SessionID: "c", Kind: KindMain, Summary: "", LastTimestamp: day(1)},
	}

	t.Run("zero filter matches all in order", func(t *testing.T) {
		out := Filter{}.Apply(records)
		require.Len(t, out, 3)
		assert.Equal(t, "a", out[0].SessionID)
		assert.Equal(t, "c", out[2].SessionID)
	})

	t.Run("since and until bound the window", func(t *testing.T) {
		out := Filter{Since: day(2), Until: day(2)}.Apply(records)
		require.Len(t, out, 1)
		assert.Equal(t, "b", out[0].SessionID)
	})

	t.Run("kind filter", func(t *testing.T) {
		out := Filter{Kind: KindAgent}.Apply(records)
		require.Len(t, out, 1)
		assert.Equal(t, "b", out[0].SessionID)
	})

	t.Run("search matches summary only", func(t *testing.T) {
		out := Filter{Search: regexp.MustCompile(`(?i)parser`)}.Apply(records)
		require.Len(t, out, 1)
		assert.Equal(t, "a", out[0].SessionID)
	})

	t.Run("record without summary never matches a search", func(t *testing.T) {
		out := Filter{Search: regexp.MustCompile(`.*`)}.Apply(records)
		require.Len(t, out, 2)
		for _, rec := range out {
			assert.NotEqual(t, "c", rec.SessionID)
		}
	})

	t.Run("input is not mutated", func(t *testing.T) {
		Filter{Kind: KindAgent}.Apply(records)
		assert.Equal(t, "a", records[0].SessionID)
		assert.Len(t, records, 3)
	})
}
