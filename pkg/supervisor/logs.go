package supervisor

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/hpcloud/tail"
)

// TailLogs writes the last n lines of a job's log to w, then, when follow
// is set, streams new lines until the context is cancelled or the job's end
// sentinel arrives. Lookup accepts a unique ID prefix like the rest of the
// store surface.
func (s *Supervisor) TailLogs(ctx context.Context, idOrPrefix string, n int, follow bool, w io.Writer) error {
	rec, err := s.store.Get(idOrPrefix)
	if err != nil {
		return err
	}

	lines, offset, err := lastLines(rec.LogPath, n)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(w, "(no log output yet for job %s)\n", rec.ShortID())
			if !follow {
				return nil
			}
		} else {
			return fmt.Errorf("read log %s: %w", rec.LogPath, err)
		}
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}

	if !follow {
		return nil
	}
	if containsSentinel(lines) {
		return nil
	}

	// Attach where the snapshot ended, not at EOF: lines appended in between
	// must not be dropped.
	config := tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: offset, Whence: io.SeekStart},
		Logger:   stdlog.New(io.Discard, "", 0),
	}
	t, err := tail.TailFile(rec.LogPath, config)
	if err != nil {
		return fmt.Errorf("follow log %s: %w", rec.LogPath, err)
	}
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				return line.Err
			}
			fmt.Fprintln(w, line.Text)
			if line.Text == EndSentinel {
				return nil
			}
		}
	}
}

// lastLines reads the final n lines of a file and reports the byte offset
// the read covered up to. Job logs are bounded by the provider's own output
// so reading the whole file is fine.
func lastLines(path string, n int) ([]string, int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	offset := int64(len(data))
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, offset, nil
	}
	lines := strings.Split(text, "\n")
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, offset, nil
}

func containsSentinel(lines []string) bool {
	for _, line := range lines {
		if line == EndSentinel {
			return true
		}
	}
	return false
}
