// Package cmd implements the tules subcommands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tules/tules/cli"
	"github.com/tules/tules/config"
	"github.com/tules/tules/pkg/paths"
	"github.com/tules/tules/pkg/provider"
	"github.com/tules/tules/pkg/store"
	"github.com/tules/tules/pkg/supervisor"
)

// addProviderFlag registers the shared --provider flag.
func addProviderFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("provider", "p", "", "AI provider to use: claude, gemini, or auto (default auto-detect)")
}

// loadConfig reads config from the --config flag path or the default location.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := cli.GetOptions(cmd)
	if opts.ConfigFile != "" {
		return config.LoadFrom(opts.ConfigFile)
	}
	return config.Load()
}

// resolveProvider picks the provider from flag, then config, then detection.
func resolveProvider(cmd *cobra.Command, cfg *config.Config) (provider.Profile, error) {
	name, _ := cmd.Flags().GetString("provider")
	if name == "" {
		name = cfg.Provider
	}
	return provider.Resolve(name)
}

// buildSupervisor wires the full chain for job commands: config, provider,
// store, supervisor.
func buildSupervisor(cmd *cobra.Command) (*supervisor.Supervisor, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	p, err := resolveProvider(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(paths.AgentsStoreFile(p.AgentsDir()))
	return supervisor.New(p, st), cfg, nil
}
