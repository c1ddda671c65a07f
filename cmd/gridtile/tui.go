package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/1broseidon/gridtile/internal/daemon"
	"github.com/1broseidon/gridtile/internal/ipc"
	"github.com/1broseidon/gridtile/internal/tui"
)

func newTUICmd(g *globalOpts) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit a board interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			// The editor owns the board while it runs; a daemon would hold a
			// second, diverging copy.
			if ipc.NewClient().Available() {
				return errors.New("a gridtile daemon is running; stop it before editing in the TUI")
			}

			res, err := g.loadConfig()
			if err != nil {
				return err
			}
			cfg := res.Config
			if name == "" {
				name = cfg.DefaultBoard
			}

			env, err := daemon.OpenEnv(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer env.Close()

			sf, err := env.Registry.Open(ctx, name)
			if err != nil {
				return err
			}
			if err := tui.Run(sf); err != nil {
				return err
			}
			if sf.Dirty() {
				logger.Warn("board has unsaved changes", "board", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "board", "b", "", "board name (default: default_board from config)")
	return cmd
}
