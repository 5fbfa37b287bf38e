package sessions

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tules/tules/errors"
	"github.com/tules/tules/logging"
	"github.com/tules/tules/pkg/provider"
)

// tailChunk bounds how far back from EOF the last-line probe reads.
const tailChunk = 64 * 1024

var logger = logging.NewLogger("sessions")

// Discover scans the provider's session directory for workingDir and returns
// records newest-first. Discovery is cheap on purpose: line-delimited files
// cost two line reads each, never a full parse. Malformed files are skipped
// and reported in the second return value; only the scan itself can fail.
func Discover(p provider.Profile, workingDir string) ([]*Record, []error) {
	dir := p.SessionsDir(workingDir)
	if dir == "" {
		return nil, nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, p.SessionFileGlob()))
	if err != nil || len(paths) == 0 {
		return nil, nil
	}

	var records []*Record
	var skipped []error
	for _, path := range paths {
		rec, err := parseHeader(p, path)
		if err != nil {
			logger.WithError(err).WithField("file", filepath.Base(path)).Warn("Skipping session file")
			skipped = append(skipped, err)
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].LastTimestamp.After(records[j].LastTimestamp)
	})
	return records, skipped
}

// DiscoverAll scans every working directory the provider has sessions for,
// grouped by decoded directory. Only providers with a reversible directory
// encoding support this; hash-encoded providers get ErrCodeNotReversible and
// callers should fall back to a single-directory scan.
//
// The scan assumes the encoded segment is the final element of the sessions
// path, which holds for substitution-encoded layouts.
func DiscoverAll(p provider.Profile) (map[string][]*Record, []error, error) {
	if _, err := p.DecodeWorkingDir("probe"); err != nil {
		return nil, nil, err
	}

	root := filepath.Dir(p.SessionsDir("/probe"))
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	grouped := make(map[string][]*Record)
	var allSkipped []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		workingDir, err := p.DecodeWorkingDir(entry.Name())
		if err != nil {
			continue
		}
		records, skipped := Discover(p, workingDir)
		allSkipped = append(allSkipped, skipped...)
		if len(records) > 0 {
			grouped[workingDir] = records
		}
	}
	return grouped, allSkipped, nil
}

// parseHeader builds a Record from the minimum the file format allows:
// first and last line for JSONL, the whole document for single-doc JSON.
func parseHeader(p provider.Profile, path string) (*Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.ParseSkipped(path, err)
	}

	rec := &Record{
		SessionID:     sessionIDFromPath(path),
		Provider:      p.Name(),
		Kind:          kindFromPath(path),
		LastTimestamp: info.ModTime(),
		Path:          path,
	}

	switch p.SessionFileFormat() {
	case provider.FormatJSONL:
		if err := fillFromJSONL(rec, path); err != nil {
			return nil, err
		}
	case provider.FormatJSON:
		if err := fillFromJSON(rec, path); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// jsonlHead is the shape of a line-delimited session's first record when the
// provider wrote a summary entry.
type jsonlHead struct {
	Type      string `json:"type"`
	Summary   string `json:"summary"`
	Cwd       string `json:"cwd"`
	GitBranch string `json:"gitBranch"`
}

type jsonlTail struct {
	Timestamp string `json:"timestamp"`
}

func fillFromJSONL(rec *Record, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.ParseSkipped(path, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	first, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return errors.ParseSkipped(path, err)
	}
	first = bytes.TrimSpace(first)
	if len(first) == 0 {
		return errors.ParseSkipped(path, io.ErrUnexpectedEOF)
	}

	var head jsonlHead
	if err := json.Unmarshal(first, &head); err != nil {
		return errors.ParseSkipped(path, err)
	}
	// The first line is a summary record only when it says so; otherwise it
	// is an ordinary message and the session simply has no synopsis.
	if head.Type == "summary" || head.Summary != "" {
		rec.Summary = head.Summary
	}
	rec.WorkingDir = head.Cwd
	rec.GitBranch = head.GitBranch

	last, err := lastLine(f)
	if err != nil {
		return errors.ParseSkipped(path, err)
	}
	var tail jsonlTail
	if json.Unmarshal(last, &tail) == nil && tail.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, tail.Timestamp); err == nil {
			rec.LastTimestamp = ts
		}
	}
	return nil
}

// geminiDoc is the single-document session layout.
type geminiDoc struct {
	SessionID   string       `json:"sessionId"`
	StartTime   string       `json:"startTime"`
	LastUpdated string       `json:"lastUpdated"`
	Messages    []geminiTurn `json:"messages"`
}

type geminiTurn struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func fillFromJSON(rec *Record, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ParseSkipped(path, err)
	}

	var doc geminiDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.ParseSkipped(path, err)
	}

	if doc.SessionID != "" {
		rec.SessionID = doc.SessionID
	}
	for _, stamp := range []string{doc.LastUpdated, doc.StartTime} {
		if stamp == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, stamp); err == nil {
			rec.LastTimestamp = ts
			break
		}
	}

	// No summary entries in this format; synthesize one from the first user
	// turn so listings stay useful.
	for _, turn := range doc.Messages {
		if turn.Type == "user" && turn.Content != "" {
			rec.Summary = truncate(turn.Content, 100)
			break
		}
	}
	return nil
}

// lastLine returns the final non-empty line of f without reading the whole
// file: it seeks back at most tailChunk bytes from EOF.
func lastLine(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	offset := size - tailChunk
	if offset < 0 {
		offset = 0
	}

	buf := make([]byte, size-offset)
	if _, err := f.ReadAt(buf, offset); err != nil && err != io.EOF {
		return nil, err
	}

	lines := bytes.Split(buf, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if line := bytes.TrimSpace(lines[i]); len(line) > 0 {
			return line, nil
		}
	}
	return nil, io.ErrUnexpectedEOF
}

func sessionIDFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimPrefix(base, "agent-")
}

func kindFromPath(path string) Kind {
	if strings.HasPrefix(filepath.Base(path), "agent-") {
		return KindAgent
	}
	return KindMain
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
