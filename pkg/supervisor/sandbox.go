package supervisor

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tules/tules/errors"
)

//go:embed dockerfiles
var dockerfiles embed.FS

// sandboxPlan is the resolved container invocation for one job.
type sandboxPlan struct {
	ContainerName string
	Image         string
	Args          []string // full docker run argv, command name excluded
}

// DockerAvailable reports whether the container runtime responds.
func (s *Supervisor) DockerAvailable(ctx context.Context) bool {
	cmd := s.executor.CommandContext(ctx, "docker", "info")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// ensureImage builds the provider image if it is not present locally.
// Build failures are launch-time failures: the job never starts.
func (s *Supervisor) ensureImage(ctx context.Context, image string) error {
	check := s.executor.CommandContext(ctx, "docker", "images", "-q", image)
	var out bytes.Buffer
	check.Stdout = &out
	if err := check.Run(); err != nil {
		return errors.SandboxUnavailable("cannot query docker images", err)
	}
	if strings.TrimSpace(out.String()) != "" {
		return nil
	}

	s.logger.WithField("image", image).Info("Building sandbox image (first time only)")

	name := fmt.Sprintf("Dockerfile.%s", s.provider.Name())
	content, err := dockerfiles.ReadFile("dockerfiles/" + name)
	if err != nil {
		return errors.SandboxUnavailable("no sandbox image definition for provider "+s.provider.Name(), err)
	}

	buildDir, err := os.MkdirTemp("", "tules-build-")
	if err != nil {
		return errors.SandboxUnavailable("cannot stage image build context", err)
	}
	defer os.RemoveAll(buildDir)

	dockerfile := filepath.Join(buildDir, name)
	if err := os.WriteFile(dockerfile, content, 0644); err != nil {
		return errors.SandboxUnavailable("cannot stage image build context", err)
	}

	build := s.executor.CommandContext(ctx, "docker", "build", "-f", dockerfile, "-t", image, buildDir)
	var buildOut bytes.Buffer
	build.Stdout = &buildOut
	build.Stderr = &buildOut
	if err := build.Run(); err != nil {
		s.logger.WithField("output", buildOut.String()).Error("Sandbox image build failed")
		return errors.SandboxUnavailable("image build failed for "+image, err)
	}
	return nil
}

// buildSandboxPlan assembles the docker run invocation: workspace mounted
// read-write, provider config paths mounted (the standalone config file gets
// its own mount), binary read-only, process identity set to the invoking
// user, and HOME pointing at that identity's real home so the provider
// binary resolves its own paths correctly inside the container.
func (s *Supervisor) buildSandboxPlan(jobID, cwd, home, image string) *sandboxPlan {
	uid := os.Getuid()
	gid := os.Getgid()
	containerName := fmt.Sprintf("tules-%s-%s", s.provider.Name(), shortID(jobID))

	args := []string{
		"run",
		"--name", containerName,
		"--rm",
	}

	// The permission-bypass flag is rejected when running as root, so the
	// container runs as the invoking user's numeric identity. Some images
	// map the identity through their entrypoint instead of --user.
	if s.provider.IdentityViaEntrypoint() {
		args = append(args,
			"-e", fmt.Sprintf("USER_ID=%d", uid),
			"-e", fmt.Sprintf("GROUP_ID=%d", gid),
		)
	} else {
		args = append(args, "--user", fmt.Sprintf("%d:%d", uid, gid))
	}

	args = append(args, s.provider.SandboxMounts(cwd, home, s.provider.BinaryPath())...)
	args = append(args,
		"-w", "/workspace",
		"-e", "SESSION_ID="+jobID,
		"-e", "HOME="+home,
		image,
	)

	return &sandboxPlan{
		ContainerName: containerName,
		Image:         image,
		Args:          args,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
