package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/gridtile/internal/daemon"
	"github.com/1broseidon/gridtile/internal/mcp"
)

func newMCPCmd(g *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}

	var noAutoSave bool
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve board tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			res, err := g.loadConfig()
			if err != nil {
				return err
			}
			cfg := res.Config

			env, err := daemon.OpenEnv(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer env.Close()

			server := mcp.NewServer(env.Registry, mcp.Options{
				DefaultBoard: cfg.DefaultBoard,
				AutoSave:     !noAutoSave,
				Logger:       logger,
			})
			defer server.Close()

			logger.Debug("mcp server starting", "board", cfg.DefaultBoard)
			return server.Run(ctx)
		},
	}
	serve.Flags().BoolVar(&noAutoSave, "no-autosave", false, "keep edits in memory until save_board is called")

	cmd.AddCommand(serve)
	return cmd
}
