package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tules/tules/errors"
	"github.com/tules/tules/pkg/paths"
	"github.com/tules/tules/pkg/provider"
	"github.com/tules/tules/pkg/sessions"
	"github.com/tules/tules/pkg/store"
	"github.com/tules/tules/tui/browser"
	"github.com/tules/tules/tui/theme"
)

// NewSessionsCmd creates the `sessions` command.
func NewSessionsCmd() *cobra.Command {
	var (
		showAll        bool
		since          string
		until          string
		search         string
		kind           string
		nonInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "sessions [directory]",
		Short: "Browse AI sessions for a directory",
		Long: `Discovers provider-native session files for a working directory and opens
an interactive browser: view transcripts, tail job logs, resume or fork a
session in the foreground.

Search matches session summaries only, not full transcripts; sessions without
a summary never match a search.

Examples:
  tules sessions                       # sessions for the current directory
  tules sessions ~/my-project
  tules sessions --since 2026-01-01 --search auth
  tules sessions --all                 # every directory (reversible encodings only)`,
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

			filter, err := buildFilter(since, until, search, kind)
			if err != nil {
				return err
			}

			fmt.Println(theme.MutedStyle.Render("Using provider: " + p.Name()))

			if showAll {
				return listAllDirectories(p, filter)
			}

			dir, err := targetDirectory(args)
			if err != nil {
				return err
			}

			records, skipped := sessions.Discover(p, dir)
			for _, skip := range skipped {
				fmt.Fprintln(os.Stderr, theme.WarningStyle.Render(skip.Error()))
			}
			records = filter.Apply(records)

			interactive := !nonInteractive &&
				isatty.IsTerminal(os.Stdin.Fd()) &&
				isatty.IsTerminal(os.Stdout.Fd())
			if !interactive {
				fmt.Print(browser.RenderListing(p.Name(), records))
				return nil
			}

			jobs, _ := store.New(paths.AgentsStoreFile(p.AgentsDir())).List(true)
			action, err := browser.Run(p, records, jobs)
			if err != nil {
				return err
			}

			switch action.Type {
			case browser.ActionResume:
				return execResume(p, action.Record, false)
			case browser.ActionFork:
				return execResume(p, action.Record, true)
			}
			return nil
		},
	}

	addProviderFlag(cmd)
	cmd.Flags().BoolVar(&showAll, "all", false, "Show sessions from all directories")
	cmd.Flags().StringVar(&since, "since", "", "Only sessions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Only sessions on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&search, "search", "", "Filter by summary (regex)")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind: main or agent")
	cmd.Flags().BoolVar(&nonInteractive, "no-interactive", false, "Print a one-shot listing instead of the browser")
	return cmd
}

func buildFilter(since, until, search, kind string) (sessions.Filter, error) {
	var f sessions.Filter

	if since != "" {
		t, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid --since date %q: %w", since, err)
		}
		f.Since = t
	}
	if until != "" {
		t, err := time.ParseInLocation("2006-01-02", until, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid --until date %q: %w", until, err)
		}
		// Inclusive of the named day.
		f.Until = t.Add(24 * time.Hour)
	}
	if search != "" {
		re, err := regexp.Compile(search)
		if err != nil {
			return f, fmt.Errorf("invalid --search pattern: %w", err)
		}
		f.Search = re
	}
	switch kind {
	case "":
	case "main":
		f.Kind = sessions.KindMain
	case "agent":
		f.Kind = sessions.KindAgent
	default:
		return f, fmt.Errorf("invalid --kind %q: must be main or agent", kind)
	}
	return f, nil
}

func targetDirectory(args []string) (string, error) {
	if len(args) == 1 {
		return filepath.Abs(args[0])
	}
	return os.Getwd()
}

// listAllDirectories prints grouped listings for every directory the
// provider has sessions for. Always non-interactive.
func listAllDirectories(p provider.Profile, filter sessions.Filter) error {
	grouped, skipped, err := sessions.DiscoverAll(p)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotReversible) {
			fmt.Fprintln(os.Stderr, theme.WarningStyle.Render(
				p.Name()+" encodes session directories with a one-way hash; --all cannot enumerate them"))
			return nil
		}
		return err
	}
	for _, skip := range skipped {
		fmt.Fprintln(os.Stderr, theme.WarningStyle.Render(skip.Error()))
	}

	if len(grouped) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	dirs := make([]string, 0, len(grouped))
	for dir := range grouped {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		records := filter.Apply(grouped[dir])
		if len(records) == 0 {
			continue
		}
		fmt.Println(theme.TitleStyle.Render(dir))
		fmt.Print(browser.RenderListing(p.Name(), records))
		fmt.Println()
	}
	return nil
}

// execResume replaces this process with the provider's resume invocation.
// The browser has already exited and restored the terminal at this point.
func execResume(p provider.Profile, rec *sessions.Record, fork bool) error {
	argv, err := p.ResumeCommand(rec.SessionID, fork)
	if err != nil {
		return err
	}
	binary := p.BinaryPath()
	if binary == "" {
		return errors.ProviderUnavailable(p.Name())
	}

	// Resume from the session's original directory so the provider finds it.
	if rec.WorkingDir != "" {
		if info, statErr := os.Stat(rec.WorkingDir); statErr == nil && info.IsDir() {
			if err := os.Chdir(rec.WorkingDir); err != nil {
				return err
			}
		}
	}

	verb := "Resuming"
	if fork {
		verb = "Forking"
	}
	fmt.Printf("%s session %s...\n", verb, rec.ShortID())

	return syscall.Exec(binary, argv, os.Environ())
}
