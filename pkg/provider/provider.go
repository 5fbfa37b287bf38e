// Package provider describes the backend AI CLI profiles tules can drive.
//
// The set of providers is closed: each one implements Profile with its own
// capability flags, command syntax, and on-disk session conventions. Call
// sites dispatch through the interface rather than branching on names.
package provider

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tules/tules/errors"
)

// FileFormat is the record layout of a provider's native session files.
type FileFormat string

const (
	// FormatJSONL is one JSON record per line, appended over time.
	FormatJSONL FileFormat = "jsonl"
	// FormatJSON is a single JSON document holding the whole conversation.
	FormatJSON FileFormat = "json"
)

// Profile is the capability surface of one backend CLI.
type Profile interface {
	// Name is the provider's short name ("claude", "gemini").
	Name() string

	// BinaryPath returns the resolved CLI binary path, or "" when absent.
	BinaryPath() string

	// Available reports whether the binary is installed and executable.
	Available() bool

	// ConfigDir is the provider's own configuration directory.
	ConfigDir() string

	// ConfigFile is a standalone config file that must be mounted separately
	// from ConfigDir (mounting the parent directory does not cover a sibling
	// file). Empty when the provider has none.
	ConfigFile() string

	// AgentsDir is where tules keeps job records and logs for this provider.
	AgentsDir() string

	// SessionsDir returns the provider-owned directory holding native session
	// files for a working directory. The directory may not exist.
	SessionsDir(workingDir string) string

	// SessionFileFormat is the record layout inside session files.
	SessionFileFormat() FileFormat

	// SessionFileGlob matches session file names inside SessionsDir.
	SessionFileGlob() string

	// SupportsCustomSessionID reports whether RunCommand can pin a session id.
	SupportsCustomSessionID() bool

	// SupportsFork reports whether ResumeCommand can branch a new session.
	SupportsFork() bool

	// RunCommand builds the non-interactive, permission-bypassing invocation.
	RunCommand(prompt, sessionID, outputFormat string) []string

	// ResumeCommand builds the foreground resume (or fork) invocation.
	// Returns ErrCodeForkUnsupported when fork is requested but unsupported.
	ResumeCommand(sessionID string, fork bool) ([]string, error)

	// SandboxMounts returns the docker -v arguments needed inside the sandbox:
	// workspace read-write, config paths, binary read-only.
	SandboxMounts(cwd, home, binaryPath string) []string

	// IdentityViaEntrypoint reports whether the sandbox image maps the host
	// user identity through its entrypoint (USER_ID/GROUP_ID env) instead of
	// docker's --user flag.
	IdentityViaEntrypoint() bool

	// EncodeWorkingDir maps a working directory to its on-disk segment name.
	EncodeWorkingDir(path string) string

	// DecodeWorkingDir reverses EncodeWorkingDir where the scheme permits;
	// hash-based schemes return ErrCodeNotReversible.
	DecodeWorkingDir(encoded string) (string, error)
}

// Get returns the profile for a provider name, or nil for unknown names.
func Get(name string) Profile {
	switch name {
	case "claude":
		return &Claude{}
	case "gemini":
		return &Gemini{}
	}
	return nil
}

// All returns every known profile, available or not, in preference order.
func All() []Profile {
	return []Profile{&Claude{}, &Gemini{}}
}

// Available returns the profiles whose binaries are installed.
func Available() []Profile {
	var out []Profile
	for _, p := range All() {
		if p.Available() {
			out = append(out, p)
		}
	}
	return out
}

// Detect auto-selects a provider, preferring claude. Absence of all
// providers is a hard failure with an actionable message.
func Detect() (Profile, error) {
	for _, p := range All() {
		if p.Available() {
			return p, nil
		}
	}
	return nil, errors.ProviderUnavailable("")
}

// Resolve picks a provider by name, or auto-detects when name is empty
// or "auto".
func Resolve(name string) (Profile, error) {
	if name == "" || name == "auto" {
		return Detect()
	}
	p := Get(name)
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown provider: "+name).
			WithDetail("provider", name)
	}
	if !p.Available() {
		return nil, errors.ProviderUnavailable(name)
	}
	return p, nil
}

// findBinary resolves a CLI binary by checking well-known install
// locations before falling back to PATH lookup.
func findBinary(name string, candidates []string) string {
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() && info.Mode()&0111 != 0 {
			return c
		}
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return ""
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func join(elem ...string) string {
	return filepath.Join(elem...)
}
