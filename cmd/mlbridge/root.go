package main

import (
	"sync"

	"github.com/danmuck/mlbridge/internal/config"
	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/scenario"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand that starts the runtime.
type globalFlags struct {
	configPath string
	stress     bool
	checkStale bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "mlbridge",
		Short:         "Embed and drive a garbage-collected foreign runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (defaults are used when empty)")
	root.PersistentFlags().BoolVar(&flags.stress, "stress", false, "collect before every allocation")
	root.PersistentFlags().BoolVar(&flags.checkStale, "check-stale", false, "panic on stale or escaped handles")

	root.AddCommand(newDemoCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	root.AddCommand(newServeCmd(flags))
	return root
}

func (g *globalFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("stress") {
		cfg.Heap.Stress = g.stress
	}
	if cmd.Flags().Changed("check-stale") {
		cfg.CheckStale = g.checkStale
	}
	return cfg, nil
}

var installOnce sync.Once

// startRuntime starts the process runtime and installs the scenario
// functions. The runtime is shut down by main.
func (g *globalFlags) startRuntime(cmd *cobra.Command) (*interop.Runtime, error) {
	cfg, err := g.load(cmd)
	if err != nil {
		return nil, err
	}
	cr, err := interop.Init(cfg)
	if err != nil {
		return nil, err
	}
	installOnce.Do(func() {
		err = scenario.Install(cr)
	})
	return cr, err
}
