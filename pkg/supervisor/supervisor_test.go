package supervisor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tules/tules/errors"
	"github.com/tules/tules/pkg/provider"
	"github.com/tules/tules/pkg/store"
	"github.com/tules/tules/testutil"
)

func newTestSupervisor(t *testing.T, providerName string) *Supervisor {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "jobs.json"))
	return New(provider.Get(providerName), st)
}

func TestBranchName(t *testing.T) {
	id := "abcdef12-3456-7890-abcd-ef1234567890"

	name := branchName("Fix the flaky auth test!", id, "claude")
	assert.Equal(t, "tules-claude/fix-the-flaky-auth-test-abcdef12", name)

	// Long prompts truncate before slugging.
	long := strings.Repeat("refactor ", 20)
	name = branchName(long, id, "gemini")
	assert.True(t, strings.HasPrefix(name, "tules-gemini/refactor-"))
	assert.LessOrEqual(t, len(name), len("tules-gemini/")+40+1+8)

	// Punctuation-only prompts still produce a usable name.
	name = branchName("!!! ???", id, "claude")
	assert.Equal(t, "tules-claude/task-abcdef12", name)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "'plain'", shellQuote("plain"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
	assert.Equal(t, "'a b $HOME'", shellQuote("a b $HOME"))
}

func TestBuildSandboxPlanClaude(t *testing.T) {
	s := newTestSupervisor(t, "claude")
	plan := s.buildSandboxPlan("abcdef12-3456-7890-abcd-ef1234567890", "/work", "/home/u", "tules-claude:latest")

	assert.Equal(t, "tules-claude-abcdef12", plan.ContainerName)
	joined := strings.Join(plan.Args, " ")
	assert.Contains(t, joined, "--name tules-claude-abcdef12")
	assert.Contains(t, joined, "--rm")
	assert.Contains(t, joined, "--user")
	assert.Contains(t, joined, "-w /workspace")
	assert.Contains(t, joined, "SESSION_ID=abcdef12-3456-7890-abcd-ef1234567890")
	assert.Contains(t, joined, "HOME=/home/u")
	assert.Contains(t, joined, "/work:/workspace")
	// Image is the last argument so the provider command can be appended.
	assert.Equal(t, "tules-claude:latest", plan.Args[len(plan.Args)-1])
}

func TestBuildSandboxPlanGeminiUsesEntrypointIdentity(t *testing.T) {
	s := newTestSupervisor(t, "gemini")
	plan := s.buildSandboxPlan("abcdef12-3456-7890-abcd-ef1234567890", "/work", "/home/u", "tules-gemini:latest")

	joined := strings.Join(plan.Args, " ")
	assert.Contains(t, joined, "USER_ID=")
	assert.Contains(t, joined, "GROUP_ID=")
	assert.NotContains(t, joined, "--user")
}

func TestPollMarksExitedJobCompleted(t *testing.T) {
	s := newTestSupervisor(t, "claude")

	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid
	require.NoError(t, cmd.Wait())

	rec := &store.JobRecord{
		ID:        "11111111-aaaa-bbbb-cccc-dddddddddddd",
		Prompt:    "do something",
		Status:    store.StatusRunning,
		PID:       pid,
		StartedAt: time.Now(),
		Provider:  "claude",
	}
	require.NoError(t, s.store.Create(rec))

	status, err := s.Poll(rec)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, status)

	// Terminal statuses short-circuit; re-polling is a no-op.
	status, err = s.Poll(rec)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, status)

	stored, err := s.store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, stored.Status)
}

func TestPollRunningJobStaysRunning(t *testing.T) {
	s := newTestSupervisor(t, "claude")

	cmd := exec.Command("sleep", "30")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	rec := &store.JobRecord{
		ID:        "22222222-aaaa-bbbb-cccc-dddddddddddd",
		Status:    store.StatusRunning,
		PID:       cmd.Process.Pid,
		StartedAt: time.Now(),
		Provider:  "claude",
	}
	require.NoError(t, s.store.Create(rec))

	status, err := s.Poll(rec)
	require.NoError(t, err)
	assert.Equal(t, store.StatusRunning, status)
}

func TestPollSentinelOverridesLivePID(t *testing.T) {
	s := newTestSupervisor(t, "claude")

	// A live process under the recorded PID is not proof the job is still
	// running: the id may have been reused after the copier exited. The end
	// sentinel in the log settles it.
	cmd := exec.Command("sleep", "30")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	logPath := filepath.Join(t.TempDir(), "job.log")
	require.NoError(t, os.WriteFile(logPath, []byte("output\n"+EndSentinel+"\n"), 0644))

	rec := &store.JobRecord{
		ID:        "99999999-aaaa-bbbb-cccc-dddddddddddd",
		Status:    store.StatusRunning,
		PID:       cmd.Process.Pid,
		StartedAt: time.Now(),
		Provider:  "claude",
		LogPath:   logPath,
	}
	require.NoError(t, s.store.Create(rec))

	status, err := s.Poll(rec)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, status)
}

func TestKillRunningJob(t *testing.T) {
	s := newTestSupervisor(t, "claude")

	// Own session so the group SIGTERM cannot reach the test runner.
	cmd := exec.Command("sleep", "30")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	require.NoError(t, cmd.Start())
	defer func() { _ = cmd.Wait() }()

	rec := &store.JobRecord{
		ID:        "33333333-aaaa-bbbb-cccc-dddddddddddd",
		Status:    store.StatusRunning,
		PID:       cmd.Process.Pid,
		StartedAt: time.Now(),
		Provider:  "claude",
	}
	require.NoError(t, s.store.Create(rec))

	killed, err := s.Kill(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusKilled, killed.Status)
}

func TestKillTerminalJobFails(t *testing.T) {
	s := newTestSupervisor(t, "claude")

	rec := &store.JobRecord{
		ID:        "44444444-aaaa-bbbb-cccc-dddddddddddd",
		Status:    store.StatusCompleted,
		StartedAt: time.Now(),
		Provider:  "claude",
	}
	require.NoError(t, s.store.Create(rec))

	_, err := s.Kill(rec.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAlreadyTerminal, errors.GetCode(err))

	stored, getErr := s.store.Get(rec.ID)
	require.NoError(t, getErr)
	assert.Equal(t, store.StatusCompleted, stored.Status, "terminal status must not change")
}

func TestKillUnknownJob(t *testing.T) {
	s := newTestSupervisor(t, "claude")
	_, err := s.Kill("deadbeef")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeJobNotFound, errors.GetCode(err))
}

func TestPollAllFiltersCompleted(t *testing.T) {
	s := newTestSupervisor(t, "claude")

	running := exec.Command("sleep", "30")
	running.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	require.NoError(t, running.Start())
	defer func() {
		_ = running.Process.Kill()
		_ = running.Wait()
	}()

	require.NoError(t, s.store.Create(&store.JobRecord{
		ID: "55555555-aaaa-bbbb-cccc-dddddddddddd", Status: store.StatusRunning,
		PID: running.Process.Pid, StartedAt: time.Now(), Provider: "claude",
	}))
	require.NoError(t, s.store.Create(&store.JobRecord{
		ID: "66666666-aaaa-bbbb-cccc-dddddddddddd", Status: store.StatusCompleted,
		StartedAt: time.Now().Add(-time.Hour), Provider: "claude",
	}))

	active, err := s.PollAll(false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "55555555-aaaa-bbbb-cccc-dddddddddddd", active[0].ID)

	all, err := s.PollAll(true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGitBranchHelpers(t *testing.T) {
	testutil.RequireGit(t)
	s := newTestSupervisor(t, "claude")

	dir := t.TempDir()
	assert.False(t, s.isGitRepo(dir))

	testutil.InitGitRepo(t, dir)
	assert.True(t, s.isGitRepo(dir))
	assert.Equal(t, "main", s.currentBranch(dir))

	name := branchName("add tests", "abcdef12-3456-7890-abcd-ef1234567890", "claude")
	require.NoError(t, s.createBranch(dir, name))
	assert.Equal(t, name, s.currentBranch(dir))
}

func TestLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.log")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0644))

	lines, offset, err := lastLines(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four"}, lines)
	// The offset covers the whole snapshot so a follower can resume exactly
	// where the snapshot ended.
	assert.Equal(t, int64(len("one\ntwo\nthree\nfour\n")), offset)

	lines, _, err = lastLines(path, 0)
	require.NoError(t, err)
	assert.Len(t, lines, 4)

	_, _, err = lastLines(filepath.Join(t.TempDir(), "missing.log"), 2)
	assert.True(t, os.IsNotExist(err))
}

func TestTailLogsWithoutFollow(t *testing.T) {
	s := newTestSupervisor(t, "claude")

	logPath := filepath.Join(t.TempDir(), "job.log")
	require.NoError(t, os.WriteFile(logPath, []byte("alpha\nbeta\ngamma\n"), 0644))

	rec := &store.JobRecord{
		ID: "77777777-aaaa-bbbb-cccc-dddddddddddd", Status: store.StatusCompleted,
		StartedAt: time.Now(), Provider: "claude", LogPath: logPath,
	}
	require.NoError(t, s.store.Create(rec))

	var buf bytes.Buffer
	require.NoError(t, s.TailLogs(context.Background(), "7777", 2, false, &buf))
	assert.Equal(t, "beta\ngamma\n", buf.String())
}

func TestTailLogsFollowStopsAtSentinel(t *testing.T) {
	s := newTestSupervisor(t, "claude")

	logPath := filepath.Join(t.TempDir(), "job.log")
	require.NoError(t, os.WriteFile(logPath, []byte("output\n"+EndSentinel+"\n"), 0644))

	rec := &store.JobRecord{
		ID: "88888888-aaaa-bbbb-cccc-dddddddddddd", Status: store.StatusCompleted,
		StartedAt: time.Now(), Provider: "claude", LogPath: logPath,
	}
	require.NoError(t, s.store.Create(rec))

	// Sentinel already present in the tail window: follow returns without
	// blocking.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var buf bytes.Buffer
	require.NoError(t, s.TailLogs(ctx, rec.ID, 10, true, &buf))
	assert.Contains(t, buf.String(), EndSentinel)
}

func TestTailLogsFollowDeliversAppendedLines(t *testing.T) {
	s := newTestSupervisor(t, "claude")

	logPath := filepath.Join(t.TempDir(), "job.log")
	require.NoError(t, os.WriteFile(logPath, []byte("one\n"), 0644))

	rec := &store.JobRecord{
		ID: "aaaaaaaa-1111-bbbb-cccc-dddddddddddd", Status: store.StatusRunning,
		StartedAt: time.Now(), Provider: "claude", LogPath: logPath,
	}
	require.NoError(t, s.store.Create(rec))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- s.TailLogs(ctx, rec.ID, 10, true, &buf) }()

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("two\n" + EndSentinel + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, <-done)
	assert.Contains(t, buf.String(), "one")
	assert.Contains(t, buf.String(), "two")
}
