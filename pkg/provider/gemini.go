package provider

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/tules/tules/errors"
)

// Gemini is the limited profile: no fork, no custom session ids,
// single-document session files under a one-way hashed directory name.
type Gemini struct{}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) BinaryPath() string {
	home := homeDir()
	candidates := []string{
		join(home, ".npm-global", "bin", "gemini"),
		"/usr/local/bin/gemini",
		"/usr/bin/gemini",
	}
	// npm installs under nvm bury the binary one version dir deep.
	if matches, err := filepath.Glob(join(home, ".nvm", "versions", "node", "*", "bin", "gemini")); err == nil {
		candidates = append(matches, candidates...)
	}
	return findBinary("gemini", candidates)
}

func (g *Gemini) Available() bool { return g.BinaryPath() != "" }

func (g *Gemini) ConfigDir() string { return join(homeDir(), ".gemini") }

func (g *Gemini) ConfigFile() string { return "" }

func (g *Gemini) AgentsDir() string { return join(g.ConfigDir(), "bg-agents") }

func (g *Gemini) SessionsDir(workingDir string) string {
	return join(g.ConfigDir(), "tmp", g.EncodeWorkingDir(workingDir), "chats")
}

func (g *Gemini) SessionFileFormat() FileFormat { return FormatJSON }

func (g *Gemini) SessionFileGlob() string { return "session-*.json" }

func (g *Gemini) SupportsCustomSessionID() bool { return false }

func (g *Gemini) SupportsFork() bool { return false }

// RunCommand ignores sessionID: gemini assigns its own session identifiers.
// The parameter is kept so the supervisor can treat profiles uniformly.
func (g *Gemini) RunCommand(prompt, sessionID, outputFormat string) []string {
	return []string{
		"gemini", "-p", prompt,
		"-y", // auto-accept; gemini's permission-bypass flag
		"-o", outputFormat,
	}
}

func (g *Gemini) ResumeCommand(sessionID string, fork bool) ([]string, error) {
	if fork {
		return nil, errors.ForkUnsupported(g.Name())
	}
	return []string{"gemini", "-r", sessionID}, nil
}

// IdentityViaEntrypoint is true because node refuses to run without a passwd
// entry, so the image's entrypoint creates one from USER_ID/GROUP_ID.
func (g *Gemini) IdentityViaEntrypoint() bool { return true }

func (g *Gemini) SandboxMounts(cwd, home, binaryPath string) []string {
	return []string{
		"-v", fmt.Sprintf("%s:/workspace", cwd),
		"-v", fmt.Sprintf("%s/.gemini:%s/.gemini", home, home),
		"-v", fmt.Sprintf("%s:/usr/local/bin/gemini:ro", binaryPath),
	}
}

// EncodeWorkingDir hashes the path; there is no way back.
func (g *Gemini) EncodeWorkingDir(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])
}

func (g *Gemini) DecodeWorkingDir(encoded string) (string, error) {
	return "", errors.NotReversible(g.Name())
}
