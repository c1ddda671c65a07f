package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/export"
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
)

type resolveInput struct {
	Layout    grid.Layout         `json:"layout"`
	ChangedID string              `json:"changed_id,omitempty"`
	Grid      geometry.GridConfig `json:"grid"`
}

type resolveOutput struct {
	Layout grid.Layout `json:"layout"`
	Rows   int         `json:"rows"`
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [file]",
		Short: "Resolve a layout read as JSON from a file or stdin",
		Long: `Reads {"layout": [...], "changed_id": "...", "grid": {...}} and prints the
resolved layout. Without changed_id the whole layout is settled instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in resolveInput
			if err := readJSON(cmd, args, &in); err != nil {
				return err
			}

			var (
				out grid.Layout
				err error
			)
			if in.ChangedID == "" {
				out, err = grid.Settle(in.Layout, in.Grid)
			} else {
				out, err = grid.Resolve(in.Layout, in.ChangedID, in.Grid)
			}
			if err != nil {
				return err
			}
			if out == nil {
				out = grid.Layout{}
			}
			loggerFromContext(cmd.Context()).Debug("resolved", "widgets", len(out), "rows", out.Bottom())
			return writeJSON(cmd.OutOrStdout(), resolveOutput{Layout: out, Rows: out.Bottom()})
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Verify that a board file holds a settled layout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var b board.Board
			if err := readJSON(cmd, args, &b); err != nil {
				return err
			}
			err := grid.CheckSettled(b.Widgets, b.Grid)
			var settled *grid.SettledError
			if errors.As(err, &settled) {
				out := cmd.OutOrStdout()
				for _, v := range settled.Violations {
					fmt.Fprintln(out, v)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d widgets settled in %d rows\n", len(b.Widgets), b.Rows())
			return nil
		},
	}
}

func newRenderCmd(g *globalOpts) *cobra.Command {
	var (
		name   string
		input  string
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a board to SVG, PNG or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := pickFormat(format, output)
			if err != nil {
				return err
			}

			var b board.Board
			if input != "" {
				if err := readJSON(cmd, []string{input}, &b); err != nil {
					return err
				}
			} else {
				v, err := fetchBoard(cmd, g, name)
				if err != nil {
					return err
				}
				b = v.Board
			}

			var buf bytes.Buffer
			if err := export.Write(&buf, b, f); err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("rendered", "board", b.Name, "format", f, "file", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "board", "b", "", "board name (default: default_board from config)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "render a board JSON file instead of a stored board")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "svg, png or pdf (default: from --output extension, else svg)")
	return cmd
}

func pickFormat(format, output string) (export.Format, error) {
	switch {
	case format != "":
		return export.ParseFormat(format)
	case output != "" && output != "-":
		return export.FormatFromPath(output)
	default:
		return export.FormatSVG, nil
	}
}

// fetchBoard reads a board through the daemon or the store.
func fetchBoard(cmd *cobra.Command, g *globalOpts, name string) (*board.View, error) {
	ctx := cmd.Context()
	res, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = res.Config.DefaultBoard
	}
	c, closeFn, err := connect(ctx, res.Config, loggerFromContext(ctx))
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return c.GetBoard(name)
}

// readJSON decodes args[0], "-" or no argument meaning stdin.
func readJSON(cmd *cobra.Command, args []string, v any) error {
	var (
		r    io.Reader = cmd.InOrStdin()
		name           = "stdin"
	)
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r, name = f, args[0]
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}
