package store

import "time"

// Status is a job's lifecycle state. Running is the only non-terminal
// status; terminal states are final.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusKilled    Status = "killed"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusKilled
}

// JobRecord is the durable metadata for one background invocation.
// Only Status and PID mutate after creation; everything else is written
// once at launch.
type JobRecord struct {
	ID               string    `json:"id"`
	Prompt           string    `json:"prompt"`
	Status           Status    `json:"status"`
	PID              int       `json:"pid"`
	StartedAt        time.Time `json:"started_at"`
	WorkingDirectory string    `json:"working_directory"`
	Provider         string    `json:"provider"`
	LogPath          string    `json:"log_path"`
	Sandboxed        bool      `json:"sandboxed"`

	// Branch isolation, populated only when the launch directory is a git
	// repository and isolation is enabled.
	Branch         string `json:"branch,omitempty"`
	OriginalBranch string `json:"original_branch,omitempty"`
}

// ShortID returns the display form of the job id.
func (r *JobRecord) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}
