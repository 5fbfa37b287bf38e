package cmd

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tules/tules/errors"
)

// NewAskCmd creates the `ask` command: a one-shot foreground invocation
// without the background job machinery. Nothing is recorded in the job
// store; the provider's output goes straight to stdout.
func NewAskCmd() *cobra.Command {
	var (
		useStdin bool
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Get a one-shot response in the foreground",
		Long: `Runs the provider once, waits for it, and prints the response. For quick
questions that do not warrant a background job. The prompt comes from the
argument, or from stdin with --stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := resolveProvider(cmd, cfg)
			if err != nil {
				return err
			}

			prompt, err := readPrompt(args, useStdin, cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			fmt.Fprintf(cmd.ErrOrStderr(), "Using %s...\n", p.Name())

			argv := p.RunCommand(prompt, uuid.NewString(), "text")
			run := exec.CommandContext(ctx, p.BinaryPath(), argv[1:]...)
			run.Stdin = nil
			run.Stdout = cmd.OutOrStdout()
			run.Stderr = cmd.ErrOrStderr()
			if err := run.Run(); err != nil {
				if ctx.Err() == context.DeadlineExceeded {
					return errors.New(errors.ErrCodeInternal,
						fmt.Sprintf("%s timed out after %s", p.Name(), timeout))
				}
				return fmt.Errorf("%s failed: %w", p.Name(), err)
			}
			return nil
		},
	}

	addProviderFlag(cmd)
	cmd.Flags().BoolVar(&useStdin, "stdin", false, "Read the prompt from stdin")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Give up after this long")
	return cmd
}

// readPrompt assembles the prompt from the argument or stdin.
func readPrompt(args []string, useStdin bool, stdin io.Reader) (string, error) {
	if useStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read prompt from stdin: %w", err)
		}
		if prompt := strings.TrimSpace(string(data)); prompt != "" {
			return prompt, nil
		}
		return "", errors.New(errors.ErrCodeInvalidInput, "--stdin given but stdin is empty")
	}
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "prompt required (argument or --stdin)")
}
