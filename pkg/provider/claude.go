package provider

import (
	"fmt"
	"strings"
)

// Claude is the full-featured profile: resumable, forkable, custom session
// ids, line-delimited session files under a reversible directory encoding.
type Claude struct{}

func (c *Claude) Name() string { return "claude" }

func (c *Claude) BinaryPath() string {
	home := homeDir()
	return findBinary("claude", []string{
		join(home, ".local", "bin", "claude"),
		"/usr/local/bin/claude",
		"/usr/bin/claude",
	})
}

func (c *Claude) Available() bool { return c.BinaryPath() != "" }

func (c *Claude) ConfigDir() string { return join(homeDir(), ".claude") }

// ConfigFile is a sibling of ConfigDir, not inside it, so the sandbox must
// mount it explicitly.
func (c *Claude) ConfigFile() string { return join(homeDir(), ".claude.json") }

func (c *Claude) AgentsDir() string { return join(c.ConfigDir(), "bg-agents") }

func (c *Claude) SessionsDir(workingDir string) string {
	return join(c.ConfigDir(), "projects", c.EncodeWorkingDir(workingDir))
}

func (c *Claude) SessionFileFormat() FileFormat { return FormatJSONL }

func (c *Claude) SessionFileGlob() string { return "*.jsonl" }

func (c *Claude) SupportsCustomSessionID() bool { return true }

func (c *Claude) SupportsFork() bool { return true }

func (c *Claude) RunCommand(prompt, sessionID, outputFormat string) []string {
	return []string{
		"claude", "-p", prompt,
		"--dangerously-skip-permissions",
		"--session-id", sessionID,
		"--output-format", outputFormat,
	}
}

func (c *Claude) ResumeCommand(sessionID string, fork bool) ([]string, error) {
	cmd := []string{"claude", "--resume", sessionID}
	if fork {
		cmd = append(cmd, "--fork-session")
	}
	return cmd, nil
}

func (c *Claude) IdentityViaEntrypoint() bool { return false }

func (c *Claude) SandboxMounts(cwd, home, binaryPath string) []string {
	return []string{
		"-v", fmt.Sprintf("%s:/workspace", cwd),
		"-v", fmt.Sprintf("%s/.claude:%s/.claude", home, home),
		"-v", fmt.Sprintf("%s/.claude.json:%s/.claude.json", home, home),
		"-v", fmt.Sprintf("%s:/usr/local/bin/claude:ro", binaryPath),
		"-v", fmt.Sprintf("%s/.local/share/claude:%s/.local/share/claude:ro", home, home),
	}
}

// EncodeWorkingDir substitutes path separators with dashes. The scheme is
// reversible only for paths that contain no dash of their own.
func (c *Claude) EncodeWorkingDir(path string) string {
	return strings.ReplaceAll(path, "/", "-")
}

func (c *Claude) DecodeWorkingDir(encoded string) (string, error) {
	return strings.ReplaceAll(encoded, "-", "/"), nil
}
