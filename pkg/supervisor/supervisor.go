// Package supervisor launches AI-assistant invocations as detached
// background jobs and tracks their lifecycle through the record store.
//
// Each launch spawns two OS processes that outlive the supervisor: the
// sandboxed provider invocation, and an independent log copier that streams
// the sandbox's output into the job's log file. The copier's PID, not the
// sandbox's, is what gets persisted: it is the process whose lifetime spans
// the whole job, and it writes EndSentinel when the stream closes so PID
// reuse can be disambiguated.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tules/tules/errors"
	"github.com/tules/tules/logging"
	"github.com/tules/tules/pkg/paths"
	"github.com/tules/tules/pkg/process"
	"github.com/tules/tules/pkg/provider"
	"github.com/tules/tules/pkg/store"
)

// EndSentinel is appended to a job's log by the copier when the output
// stream closes. Its presence confirms the job really ended, independent
// of the advisory PID probe.
const EndSentinel = "=== tules: end of job output ==="

// startupGrace is how long the container gets to register with the runtime
// before the log copier attaches.
const startupGrace = 500 * time.Millisecond

// Options configures a launch.
type Options struct {
	Prompt          string
	WorkingDir      string
	Sandbox         bool
	SandboxImage    string // override; default tules-<provider>:latest
	BranchIsolation bool
}

// Supervisor launches and tracks background jobs for one provider.
type Supervisor struct {
	provider provider.Profile
	store    *store.Store
	executor Executor
	logger   *logrus.Entry
}

// New creates a supervisor over the provider's record store.
func New(p provider.Profile, st *store.Store) *Supervisor {
	return &Supervisor{
		provider: p,
		store:    st,
		executor: &RealExecutor{},
		logger:   logging.NewLogger("supervisor"),
	}
}

// NewWithExecutor creates a supervisor with an injected command executor.
func NewWithExecutor(p provider.Profile, st *store.Store, exec Executor) *Supervisor {
	s := New(p, st)
	s.executor = exec
	return s
}

// Store returns the supervisor's record store.
func (s *Supervisor) Store() *store.Store { return s.store }

// Provider returns the supervisor's provider profile.
func (s *Supervisor) Provider() provider.Profile { return s.provider }

// Launch starts a background job and returns its record immediately.
// Sandbox or image failures are reported here, before the job is marked
// running; nothing is persisted on failure.
func (s *Supervisor) Launch(ctx context.Context, opts Options) (*store.JobRecord, error) {
	if !s.provider.Available() {
		return nil, errors.ProviderUnavailable(s.provider.Name())
	}

	id := uuid.NewString()
	agentsDir := s.provider.AgentsDir()
	if err := paths.EnsureAgentsDirs(agentsDir); err != nil {
		return nil, fmt.Errorf("prepare agents directory: %w", err)
	}
	logPath := paths.JobLogFile(agentsDir, id)

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	rec := &store.JobRecord{
		ID:               id,
		Prompt:           truncatePrompt(opts.Prompt),
		Status:           store.StatusRunning,
		StartedAt:        time.Now(),
		WorkingDirectory: opts.WorkingDir,
		Provider:         s.provider.Name(),
		LogPath:          logPath,
		Sandboxed:        opts.Sandbox,
	}

	if opts.BranchIsolation {
		s.isolateBranch(rec, opts)
	}

	var pid int
	if opts.Sandbox {
		pid, err = s.launchSandboxed(ctx, id, logPath, opts, home)
	} else {
		pid, err = s.launchDirect(id, logPath, opts)
	}
	if err != nil {
		return nil, err
	}
	rec.PID = pid

	if err := s.store.Create(rec); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"job":       rec.ShortID(),
		"provider":  rec.Provider,
		"pid":       pid,
		"sandboxed": opts.Sandbox,
	}).Info("Background job started")

	return rec, nil
}

// isolateBranch creates a per-job git branch when the working directory is
// a repository. Failure downgrades to a warning; the launch proceeds.
func (s *Supervisor) isolateBranch(rec *store.JobRecord, opts Options) {
	if !s.isGitRepo(opts.WorkingDir) {
		s.logger.Warn("Not a git repository, running without branch isolation")
		return
	}
	rec.OriginalBranch = s.currentBranch(opts.WorkingDir)
	name := branchName(opts.Prompt, rec.ID, s.provider.Name())
	if err := s.createBranch(opts.WorkingDir, name); err != nil {
		s.logger.WithError(err).Warn("Failed to create branch, continuing without isolation")
		rec.OriginalBranch = ""
		return
	}
	rec.Branch = name
}

// launchSandboxed starts the container detached and then an independent
// log copier attached to the container's output stream. The copier is what
// keeps log capture alive across sandbox restarts, and its PID is the
// liveness probe for the job.
func (s *Supervisor) launchSandboxed(ctx context.Context, id, logPath string, opts Options, home string) (int, error) {
	if !s.DockerAvailable(ctx) {
		return 0, errors.SandboxUnavailable("docker is not installed or not running", nil)
	}

	image := opts.SandboxImage
	if image == "" {
		image = fmt.Sprintf("tules-%s:latest", s.provider.Name())
	}
	if err := s.ensureImage(ctx, image); err != nil {
		return 0, err
	}

	plan := s.buildSandboxPlan(id, opts.WorkingDir, home, image)
	argv := append(plan.Args, s.provider.RunCommand(opts.Prompt, id, "text")...)

	run := s.executor.Command("docker", argv...)
	run.Stdin = nil
	run.Stdout = nil
	run.Stderr = nil
	run.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := run.Start(); err != nil {
		return 0, errors.SandboxUnavailable("failed to start sandbox container", err)
	}

	// Give the container a moment to register before attaching the copier.
	time.Sleep(startupGrace)

	script := fmt.Sprintf("docker logs -f %s >> %s 2>&1; echo %s >> %s",
		shellQuote(plan.ContainerName), shellQuote(logPath),
		shellQuote(EndSentinel), shellQuote(logPath))
	copier := s.executor.Command("sh", "-c", script)
	copier.Stdin = nil
	copier.Stdout = nil
	copier.Stderr = nil
	copier.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := copier.Start(); err != nil {
		return 0, fmt.Errorf("start log copier: %w", err)
	}

	return copier.Process.Pid, nil
}

// launchDirect runs the provider command without a sandbox, detached, with
// output appended straight to the log file followed by the end sentinel.
func (s *Supervisor) launchDirect(id, logPath string, opts Options) (int, error) {
	runCmd := s.provider.RunCommand(opts.Prompt, id, "text")

	// "$0" "$@" keeps the prompt out of shell parsing entirely.
	script := fmt.Sprintf(`"$0" "$@" >> %s 2>&1; echo %s >> %s`,
		shellQuote(logPath), shellQuote(EndSentinel), shellQuote(logPath))
	args := append([]string{"-c", script}, runCmd...)
	cmd := s.executor.Command("sh", args...)
	cmd.Dir = opts.WorkingDir
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start provider command: %w", err)
	}
	return cmd.Process.Pid, nil
}

// Poll re-derives a job's status from its PID probe paired with the log's
// end sentinel: the PID alone is advisory (it may have been reused), so a
// live PID counts as running only while the sentinel is absent. Process exit
// surfaces as completed (best effort: success and failure are
// indistinguishable from exit alone); killed is set only through Kill.
func (s *Supervisor) Poll(rec *store.JobRecord) (store.Status, error) {
	if rec.Status.Terminal() {
		return rec.Status, nil
	}
	if process.IsProcessAlive(rec.PID) && !s.jobEnded(rec) {
		return store.StatusRunning, nil
	}

	updated, err := s.store.Update(rec.ID, func(r *store.JobRecord) {
		if r.Status == store.StatusRunning {
			r.Status = store.StatusCompleted
		}
	})
	if err != nil {
		return rec.Status, err
	}
	rec.Status = updated.Status
	return updated.Status, nil
}

// jobEnded reports whether the job's log carries the end sentinel. The
// copier writes it as the final line, so a short tail window is enough.
func (s *Supervisor) jobEnded(rec *store.JobRecord) bool {
	lines, _, err := lastLines(rec.LogPath, 5)
	if err != nil {
		return false
	}
	return containsSentinel(lines)
}

// PollAll lists records with statuses refreshed from their PID probes.
func (s *Supervisor) PollAll(includeCompleted bool) ([]*store.JobRecord, error) {
	// A corrupt store already degraded to empty inside List; surface it as
	// a warning, not a failure.
	records, err := s.store.List(true)
	if err != nil {
		s.logger.WithError(err).Warn("Job store degraded")
	}

	out := make([]*store.JobRecord, 0, len(records))
	for _, rec := range records {
		if _, pollErr := s.Poll(rec); pollErr != nil {
			s.logger.WithError(pollErr).WithField("job", rec.ShortID()).Warn("Poll failed")
		}
		if !includeCompleted && rec.Status != store.StatusRunning {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Kill terminates a running job and marks it killed. A job already in a
// terminal state is an AlreadyTerminal error, not a success.
func (s *Supervisor) Kill(idOrPrefix string) (*store.JobRecord, error) {
	rec, err := s.store.Get(idOrPrefix)
	if err != nil {
		return nil, err
	}
	if rec.Status.Terminal() {
		return nil, errors.AlreadyTerminal(rec.ID, string(rec.Status))
	}

	if err := (process.PIDHandle(rec.PID)).Terminate(); err != nil && err != syscall.ESRCH {
		s.logger.WithError(err).WithField("pid", rec.PID).Warn("Termination signal failed")
	}

	// The copier's process group does not include the container itself.
	if rec.Sandboxed {
		name := fmt.Sprintf("tules-%s-%s", rec.Provider, rec.ShortID())
		if err := s.executor.Command("docker", "kill", name).Run(); err != nil {
			s.logger.WithField("container", name).Debug("Container already gone")
		}
	}

	return s.store.Update(rec.ID, func(r *store.JobRecord) {
		r.Status = store.StatusKilled
	})
}

func truncatePrompt(prompt string) string {
	if len(prompt) > 100 {
		return prompt[:100]
	}
	return prompt
}

// shellQuote single-quotes a string for POSIX sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
