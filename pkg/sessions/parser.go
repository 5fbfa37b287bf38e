package sessions

import (
	"bufio"
	"encoding/json"
	"os"
	"time"

	"github.com/tules/tules/errors"
	"github.com/tules/tules/pkg/provider"
)

// claudeLine is one JSONL record of a full transcript. Content is either a
// plain string or a list of typed parts; only text parts carry prose.
type claudeLine struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Message   struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

type claudePart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// LoadDetail parses the full transcript behind a discovered record. This is
// the expensive path discovery avoids; call it only when a detail view needs
// message bodies.
func LoadDetail(p provider.Profile, rec *Record) ([]Message, error) {
	switch p.SessionFileFormat() {
	case provider.FormatJSONL:
		return loadJSONLDetail(rec)
	default:
		return loadJSONDetail(rec)
	}
}

func loadJSONLDetail(rec *Record) ([]Message, error) {
	f, err := os.Open(rec.Path)
	if err != nil {
		return nil, errors.ParseSkipped(rec.Path, err)
	}
	defer f.Close()

	var messages []Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry claudeLine
		if err := json.Unmarshal(line, &entry); err != nil {
			// Individual bad lines are tolerated the same way bad files are.
			continue
		}
		if entry.Type != "user" && entry.Type != "assistant" {
			continue
		}
		text := flattenContent(entry.Message.Content)
		if text == "" {
			continue
		}
		messages = append(messages, Message{
			Role:      entry.Message.Role,
			Text:      text,
			Timestamp: parseStamp(entry.Timestamp, rec.LastTimestamp),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.ParseSkipped(rec.Path, err)
	}
	return messages, nil
}

func loadJSONDetail(rec *Record) ([]Message, error) {
	data, err := os.ReadFile(rec.Path)
	if err != nil {
		return nil, errors.ParseSkipped(rec.Path, err)
	}
	var doc geminiDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.ParseSkipped(rec.Path, err)
	}

	messages := make([]Message, 0, len(doc.Messages))
	for _, turn := range doc.Messages {
		if turn.Content == "" {
			continue
		}
		messages = append(messages, Message{
			Role:      turn.Type,
			Text:      turn.Content,
			Timestamp: parseStamp(turn.Timestamp, rec.LastTimestamp),
		})
	}
	return messages, nil
}

// flattenContent joins the text parts of a message body, which arrives
// either as a bare string or as a typed part list.
func flattenContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if json.Unmarshal(raw, &plain) == nil {
		return plain
	}

	var parts []claudePart
	if json.Unmarshal(raw, &parts) != nil {
		return ""
	}
	text := ""
	for _, part := range parts {
		if part.Type != "text" || part.Text == "" {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += part.Text
	}
	return text
}

func parseStamp(stamp string, fallback time.Time) time.Time {
	if stamp != "" {
		if ts, err := time.Parse(time.RFC3339, stamp); err == nil {
			return ts
		}
	}
	return fallback
}
