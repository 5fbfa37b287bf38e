package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tules/tules/errors"
)

func TestClaudeEncodeRoundTrip(t *testing.T) {
	c := &Claude{}

	tests := []struct {
		name string
		path string
	}{
		{"simple", "/home/user/project"},
		{"nested", "/home/user/code/deep/tree"},
		{"root", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := c.EncodeWorkingDir(tt.path)
			assert.NotContains(t, encoded, "/")

			decoded, err := c.DecodeWorkingDir(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.path, decoded)
		})
	}
}

func TestGeminiEncodeIsOneWay(t *testing.T) {
	g := &Gemini{}

	encoded := g.EncodeWorkingDir("/home/user/project")
	assert.Len(t, encoded, 64) // sha256 hex

	// Deterministic
	assert.Equal(t, encoded, g.EncodeWorkingDir("/home/user/project"))
	assert.NotEqual(t, encoded, g.EncodeWorkingDir("/home/user/other"))

	_, err := g.DecodeWorkingDir(encoded)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotReversible))
}

func TestRunCommandFlags(t *testing.T) {
	c := &Claude{}
	cmd := c.RunCommand("do the thing", "abc-123", "text")
	joined := strings.Join(cmd, " ")
	assert.Contains(t, joined, "--dangerously-skip-permissions")
	assert.Contains(t, joined, "--session-id abc-123")
	assert.Contains(t, joined, "--output-format text")

	g := &Gemini{}
	cmd = g.RunCommand("do the thing", "abc-123", "text")
	joined = strings.Join(cmd, " ")
	assert.Contains(t, joined, "-y")
	// Gemini cannot pin a session id.
	assert.NotContains(t, joined, "abc-123")
}

func TestResumeCommand(t *testing.T) {
	c := &Claude{}
	cmd, err := c.ResumeCommand("abc-123", true)
	require.NoError(t, err)
	assert.Contains(t, cmd, "--fork-session")

	g := &Gemini{}
	_, err = g.ResumeCommand("abc-123", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeForkUnsupported))

	cmd, err = g.ResumeCommand("abc-123", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini", "-r", "abc-123"}, cmd)
}

func TestGetAndAll(t *testing.T) {
	assert.NotNil(t, Get("claude"))
	assert.NotNil(t, Get("gemini"))
	assert.Nil(t, Get("copilot"))

	all := All()
	require.Len(t, all, 2)
	assert.Equal(t, "claude", all[0].Name())
	assert.Equal(t, "gemini", all[1].Name())
}

func TestSandboxMountsCoverConfigFile(t *testing.T) {
	c := &Claude{}
	mounts := strings.Join(c.SandboxMounts("/work", "/home/u", "/home/u/.local/bin/claude"), " ")

	// The main config file is a sibling of the config dir and needs its
	// own mount.
	assert.Contains(t, mounts, "/home/u/.claude:/home/u/.claude")
	assert.Contains(t, mounts, "/home/u/.claude.json:/home/u/.claude.json")
	assert.Contains(t, mounts, ":ro")
	assert.Contains(t, mounts, "/work:/workspace")
}
