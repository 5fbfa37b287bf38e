package errors

import (
	"fmt"
	"strings"
)

// JobNotFound creates an error for an id or prefix that resolves to nothing.
func JobNotFound(idOrPrefix string) *TulesError {
	return New(ErrCodeJobNotFound, fmt.Sprintf("no job matches '%s'", idOrPrefix)).
		WithDetail("id", idOrPrefix)
}

// JobAmbiguous creates an error for a prefix matching more than one job.
func JobAmbiguous(prefix string, matches []string) *TulesError {
	return New(ErrCodeJobAmbiguous,
		fmt.Sprintf("ambiguous job id '%s' matches: %s", prefix, strings.Join(matches, ", "))).
		WithDetail("prefix", prefix).
		WithDetail("matches", matches)
}

// AlreadyTerminal creates an error for an action invalid in the job's current status.
func AlreadyTerminal(id, status string) *TulesError {
	return New(ErrCodeAlreadyTerminal,
		fmt.Sprintf("job %s is already %s", shortID(id), status)).
		WithDetail("id", id).
		WithDetail("status", status)
}

// ProviderUnavailable creates an error for a missing backend binary.
func ProviderUnavailable(name string) *TulesError {
	if name == "" {
		return New(ErrCodeProviderUnavailable,
			"no AI provider available: install the claude or gemini CLI")
	}
	return New(ErrCodeProviderUnavailable,
		fmt.Sprintf("provider '%s' is not available on this system", name)).
		WithDetail("provider", name)
}

// SandboxUnavailable creates an error for a missing or broken container runtime.
func SandboxUnavailable(reason string, err error) *TulesError {
	return Wrap(err, ErrCodeSandboxUnavailable, fmt.Sprintf("sandbox unavailable: %s", reason))
}

// StoreCorrupt creates an error for an unreadable record store file.
func StoreCorrupt(path string, err error) *TulesError {
	return Wrap(err, ErrCodeStoreCorrupt,
		fmt.Sprintf("job store %s is unreadable, treating as empty", path)).
		WithDetail("path", path)
}

// ParseSkipped creates an error for a single malformed session file.
func ParseSkipped(path string, err error) *TulesError {
	return Wrap(err, ErrCodeParseSkipped, fmt.Sprintf("skipped unparseable session file %s", path)).
		WithDetail("path", path)
}

// ForkUnsupported creates an error for a provider without session forking.
func ForkUnsupported(provider string) *TulesError {
	return New(ErrCodeForkUnsupported,
		fmt.Sprintf("session forking is not supported by %s", provider)).
		WithDetail("provider", provider)
}

// NotReversible creates an error for decoding a hash-encoded directory name.
func NotReversible(provider string) *TulesError {
	return New(ErrCodeNotReversible,
		fmt.Sprintf("%s encodes directories with a one-way hash; the source path cannot be recovered", provider)).
		WithDetail("provider", provider)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
