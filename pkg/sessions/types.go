// Package sessions discovers and parses provider-native conversation files
// for a working directory. The provider owns these files; this package only
// ever reads them.
package sessions

import "time"

// Kind classifies how a session originated.
type Kind string

const (
	// KindMain is an ordinary interactive session.
	KindMain Kind = "main"
	// KindAgent is a session produced by a background job, recognized by
	// the provider's agent- filename prefix.
	KindAgent Kind = "agent"
)

// Record is the discovery-time view of one session file. Message bodies are
// deliberately absent: discovery reads at most two lines per file, and the
// full transcript is loaded lazily through LoadDetail.
type Record struct {
	SessionID     string
	Provider      string
	Kind          Kind
	Summary       string // empty unless the provider wrote a summary entry
	LastTimestamp time.Time
	Path          string
	WorkingDir    string // claude records carry their cwd; empty otherwise
	GitBranch     string
}

// ShortID returns the first 8 characters of the session ID.
func (r *Record) ShortID() string {
	if len(r.SessionID) > 8 {
		return r.SessionID[:8]
	}
	return r.SessionID
}

// Message is one turn of a fully parsed transcript.
type Message struct {
	Role      string
	Text      string
	Timestamp time.Time
}
