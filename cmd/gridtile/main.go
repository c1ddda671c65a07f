package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/1broseidon/gridtile/internal/config"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalOpts holds the persistent flags shared by every command.
type globalOpts struct {
	configPath string
	verbose    bool
}

// loadConfig reads --config, or the standard location when it is unset.
func (g *globalOpts) loadConfig() (*config.LoadResult, error) {
	if g.configPath == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(g.configPath)
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	g := &globalOpts{}

	root := &cobra.Command{
		Use:           "gridtile",
		Short:         "gridtile lays out dashboard widgets on a gravity grid",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if g.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(logOut, level)))
		},
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file path (default: ~/.config/gridtile/config.yaml)")

	root.AddCommand(newDaemonCmd(g))
	root.AddCommand(newStatusCmd())
	root.AddCommand(newBoardCmd(g))
	root.AddCommand(newResolveCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newRenderCmd(g))
	root.AddCommand(newTUICmd(g))
	root.AddCommand(newMCPCmd(g))
	root.AddCommand(newConfigCmd(g))

	return root
}
