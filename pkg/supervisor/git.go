package supervisor

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

var (
	branchStripRe    = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	branchCollapseRe = regexp.MustCompile(`\s+`)
)

// isGitRepo reports whether dir is inside a git work tree.
func (s *Supervisor) isGitRepo(dir string) bool {
	cmd := s.executor.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// currentBranch returns the checked-out branch name, or "" when detached
// or not a repository.
func (s *Supervisor) currentBranch(dir string) string {
	cmd := s.executor.Command("git", "branch", "--show-current")
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(out.String())
}

// createBranch creates and checks out a new branch in dir.
func (s *Supervisor) createBranch(dir, name string) error {
	cmd := s.executor.Command("git", "checkout", "-b", name)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("create branch %s: %s", name, strings.TrimSpace(out.String()))
	}
	return nil
}

// branchName derives an isolation branch name from the prompt:
// tules-<provider>/<kebab-slug>-<short-id>.
func branchName(prompt, jobID, providerName string) string {
	slug := prompt
	if len(slug) > 40 {
		slug = slug[:40]
	}
	slug = branchStripRe.ReplaceAllString(slug, "")
	slug = branchCollapseRe.ReplaceAllString(slug, "-")
	slug = strings.ToLower(strings.Trim(slug, "-"))
	if slug == "" {
		slug = "task"
	}
	return fmt.Sprintf("tules-%s/%s-%s", providerName, slug, shortID(jobID))
}
