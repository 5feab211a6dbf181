package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urbanforge/buildsim/internal/config"
)

var configPath string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "buildsim",
		Short: "Building construction and demolition simulation",
		Long: `buildsim advances buildings under construction, swaps finished ones
into their final prefab and runs demolition cascades with collapse rubble.

Examples:
  buildsim run --scenario data/scenarios/corner.yaml
  buildsim run --scenario data/scenarios/corner.yaml --ticks 500 --fast-spawn
  buildsim migrate up
  buildsim catalog check data/catalog.yaml`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default $"+config.EnvPath+", then built-in defaults)")

	root.AddCommand(newRunCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newCatalogCommand())
	return root
}

// loadConfig resolves --config / $BUILDSIM_CONFIG and falls back to the
// built-in defaults when neither is set.
func loadConfig() (*config.Config, error) {
	path := config.ResolvePath(configPath)
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
