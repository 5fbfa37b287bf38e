// Package paths resolves the directories tules reads and writes.
//
// Resolution order for tules' own directories:
// 1. TULES_HOME (portable root) → $TULES_HOME/{config,state}
// 2. XDG env vars → $XDG_*_HOME/tules
// 3. Platform defaults → ~/.config/tules, ~/.local/state/tules
//
// Job records and logs live under each provider's agents directory
// (e.g. ~/.claude/bg-agents), not here; see AgentsStoreFile and JobLogsDir.
package paths

import (
	"os"
	"path/filepath"
)

// ConfigDir returns the tules configuration directory (config.yml).
func ConfigDir() string {
	if tulesHome := os.Getenv("TULES_HOME"); tulesHome != "" {
		return filepath.Join(tulesHome, "config")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tules")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "tules")
	}
	return ""
}

// StateDir returns the tules state directory, used for diagnostic logs.
func StateDir() string {
	if tulesHome := os.Getenv("TULES_HOME"); tulesHome != "" {
		return filepath.Join(tulesHome, "state")
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "tules")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "tules")
	}
	return ""
}

// ConfigFile returns the path to the tules config file.
func ConfigFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yml")
}

// AgentsStoreFile returns the job record store file inside a provider's
// agents directory.
func AgentsStoreFile(agentsDir string) string {
	return filepath.Join(agentsDir, "jobs.json")
}

// JobLogsDir returns the directory holding per-job log files inside a
// provider's agents directory.
func JobLogsDir(agentsDir string) string {
	return filepath.Join(agentsDir, "logs")
}

// JobLogFile returns the log file path for a job id.
func JobLogFile(agentsDir, jobID string) string {
	return filepath.Join(JobLogsDir(agentsDir), jobID+".log")
}

// EnsureAgentsDirs creates the agents directory tree if missing.
func EnsureAgentsDirs(agentsDir string) error {
	return os.MkdirAll(JobLogsDir(agentsDir), 0755)
}
