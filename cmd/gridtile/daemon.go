package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/gridtile/internal/daemon"
	"github.com/1broseidon/gridtile/internal/ipc"
	"github.com/1broseidon/gridtile/internal/runtimepath"
)

func newDaemonCmd(g *globalOpts) *cobra.Command {
	var (
		httpAddr     string
		saveInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Serve boards over the local socket (and optionally HTTP)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			res, err := g.loadConfig()
			if err != nil {
				return err
			}
			cfg := res.Config
			applyConfigLevel(logger, cfg.LogLevel, g.verbose)
			logger.Debug("configuration loaded", "files", res.Files, "storage", cfg.Storage.Backend)

			if httpAddr == "" {
				httpAddr = cfg.HTTP.Listen
			}

			env, err := daemon.OpenEnv(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer env.Close()

			return daemon.Run(ctx, env, daemon.Options{
				HTTPAddr:     httpAddr,
				SaveInterval: saveInterval,
			}, logger)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "also serve the HTTP API on this address (default: http.listen)")
	cmd.Flags().DurationVar(&saveInterval, "save-interval", 30*time.Second, "how often dirty boards are saved")

	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			client := ipc.NewClient()
			if !client.Available() {
				fmt.Fprintln(out, "daemon_running: false")
				if path, err := runtimepath.PIDPath(); err == nil {
					if pid, err := daemon.ReadPID(path); err == nil {
						fmt.Fprintf(out, "stale_pid:      %d (%s)\n", pid, path)
					}
				}
				return nil
			}

			status, err := client.GetStatus()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "daemon_running: %v\n", status.DaemonRunning)
			fmt.Fprintf(out, "pid:            %d\n", status.PID)
			fmt.Fprintf(out, "boards:         %s\n", strings.Join(status.Boards, ", "))
			fmt.Fprintf(out, "uptime_seconds: %d\n", status.UptimeSeconds)
			return nil
		},
	}
}
