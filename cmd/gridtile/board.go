package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/config"
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/session"
)

type boardOpts struct {
	g      *globalOpts
	name   string
	asJSON bool
}

func newBoardCmd(g *globalOpts) *cobra.Command {
	o := &boardOpts{g: g}

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Inspect and edit boards",
	}
	cmd.PersistentFlags().StringVarP(&o.name, "board", "b", "", "board name (default: default_board from config)")
	cmd.PersistentFlags().BoolVar(&o.asJSON, "json", false, "print the board as JSON")

	cmd.AddCommand(
		o.listCmd(),
		o.showCmd(),
		o.initCmd(),
		o.addCmd(),
		o.removeCmd(),
		o.moveCmd(),
		o.resizeCmd(),
		o.keyCmd(),
		o.gridCmd(),
		o.saveCmd(),
		o.deleteCmd(),
	)
	return cmd
}

// run resolves config, board name and client, then prints whatever view fn
// returns.
func (o *boardOpts) run(cmd *cobra.Command, fn func(c boardClient, cfg *config.Config, name string) (*board.View, error)) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	res, err := o.g.loadConfig()
	if err != nil {
		return err
	}
	cfg := res.Config
	applyConfigLevel(logger, cfg.LogLevel, o.g.verbose)

	name := o.name
	if name == "" {
		name = cfg.DefaultBoard
	}

	c, closeFn, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	v, err := fn(c, cfg, name)
	if err != nil || v == nil {
		return err
	}
	return printView(cmd.OutOrStdout(), v, o.asJSON)
}

func (o *boardOpts) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(c boardClient, _ *config.Config, _ string) (*board.View, error) {
				names, err := c.ListBoards()
				if err != nil {
					return nil, err
				}
				out := cmd.OutOrStdout()
				if o.asJSON {
					return nil, writeJSON(out, names)
				}
				for _, n := range names {
					fmt.Fprintln(out, n)
				}
				return nil, nil
			})
		},
	}
}

func (o *boardOpts) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show a board and its widgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(c boardClient, _ *config.Config, name string) (*board.View, error) {
				return c.GetBoard(name)
			})
		},
	}
}

// gridFlags are shared by `board init` and `board grid`.
type gridFlags struct {
	columns   int
	rowHeight int
	gap       int
	width     int
}

func (f *gridFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.columns, "columns", 0, "number of columns")
	cmd.Flags().IntVar(&f.rowHeight, "row-height", 0, "row height in pixels")
	cmd.Flags().IntVar(&f.gap, "gap", 0, "gap between cells in pixels")
	cmd.Flags().IntVar(&f.width, "width", 0, "container width in pixels")
}

// fill takes every flag the user did not set from base.
func (f *gridFlags) fill(cmd *cobra.Command, base geometry.GridConfig, baseWidth int) {
	if !cmd.Flags().Changed("columns") {
		f.columns = base.Columns
	}
	if !cmd.Flags().Changed("row-height") {
		f.rowHeight = base.RowHeightPx
	}
	if !cmd.Flags().Changed("gap") {
		f.gap = base.GapPx
	}
	if !cmd.Flags().Changed("width") {
		f.width = baseWidth
	}
}

func (f *gridFlags) grid() geometry.GridConfig {
	return geometry.GridConfig{Columns: f.columns, RowHeightPx: f.rowHeight, GapPx: f.gap}
}

func (o *boardOpts) initCmd() *cobra.Command {
	var (
		f     gridFlags
		noTTY bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a board, prompting for its grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(c boardClient, cfg *config.Config, name string) (*board.View, error) {
				if _, err := c.GetBoard(name); err == nil {
					return nil, fmt.Errorf("board %q already exists", name)
				} else if !errors.Is(err, board.ErrNotFound) {
					return nil, err
				}

				f.fill(cmd, cfg.Grid, cfg.ContainerWidthPx)
				if !noTTY && term.IsTerminal(int(os.Stdin.Fd())) {
					if err := promptGrid(&f); err != nil {
						return nil, err
					}
				}
				return c.SetGrid(name, f.grid(), f.width)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&noTTY, "no-prompt", false, "use flags and config without prompting")
	return cmd
}

// promptGrid asks for the grid settings, starting from the values in f.
func promptGrid(f *gridFlags) error {
	fields := []struct {
		title string
		desc  string
		dst   *int
		min   int
	}{
		{"Columns", "Number of grid columns", &f.columns, 1},
		{"Row height", "Row height in pixels", &f.rowHeight, 1},
		{"Gap", "Pixels between cells", &f.gap, 0},
		{"Container width", "Board width in pixels", &f.width, 1},
	}

	values := make([]string, len(fields))
	inputs := make([]huh.Field, len(fields))
	for i, fd := range fields {
		values[i] = strconv.Itoa(*fd.dst)
		minimum := fd.min
		inputs[i] = huh.NewInput().
			Title(fd.title).
			Description(fd.desc).
			Value(&values[i]).
			Validate(func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil {
					return errors.New("must be a whole number")
				}
				if n < minimum {
					return fmt.Errorf("must be at least %d", minimum)
				}
				return nil
			})
	}

	if err := huh.NewForm(huh.NewGroup(inputs...)).WithShowHelp(true).Run(); err != nil {
		return err
	}
	for i, fd := range fields {
		*fd.dst, _ = strconv.Atoi(values[i])
	}
	return nil
}

func (o *boardOpts) addCmd() *cobra.Command {
	var spec board.WidgetSpec
	cmd := &cobra.Command{
		Use:   "add [id]",
		Short: "Add a widget; it settles at the nearest free spot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				spec.ID = args[0]
			}
			return o.run(cmd, func(c boardClient, _ *config.Config, name string) (*board.View, error) {
				return c.AddWidget(name, spec)
			})
		},
	}
	cmd.Flags().IntVar(&spec.X, "x", 0, "column")
	cmd.Flags().IntVar(&spec.Y, "y", 0, "row")
	cmd.Flags().IntVar(&spec.W, "w", 0, "width in columns (default: default_widget.w)")
	cmd.Flags().IntVar(&spec.H, "h", 0, "height in rows (default: default_widget.h)")
	return cmd
}

func (o *boardOpts) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a widget and compact the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(c boardClient, _ *config.Config, name string) (*board.View, error) {
				return c.RemoveWidget(name, args[0])
			})
		},
	}
}

func (o *boardOpts) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <x> <y>",
		Short: "Move a widget to a cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := intPair(args[1], args[2])
			if err != nil {
				return err
			}
			return o.run(cmd, func(c boardClient, _ *config.Config, name string) (*board.View, error) {
				return c.MoveWidget(name, args[0], x, y)
			})
		},
	}
}

func (o *boardOpts) resizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resize <id> <w> <h>",
		Short: "Resize a widget",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, err := intPair(args[1], args[2])
			if err != nil {
				return err
			}
			return o.run(cmd, func(c boardClient, _ *config.Config, name string) (*board.View, error) {
				return c.ResizeWidget(name, args[0], w, h)
			})
		},
	}
}

func (o *boardOpts) keyCmd() *cobra.Command {
	var resize bool
	cmd := &cobra.Command{
		Use:   "key <id> <up|down|left|right>",
		Short: "Nudge a widget one cell, or grow/shrink it with --resize",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := session.ParseDirection(args[1])
			if err != nil {
				return err
			}
			return o.run(cmd, func(c boardClient, _ *config.Config, name string) (*board.View, error) {
				return c.KeyCommand(name, args[0], dir, resize)
			})
		},
	}
	cmd.Flags().BoolVarP(&resize, "resize", "r", false, "change size instead of position")
	return cmd
}

func (o *boardOpts) gridCmd() *cobra.Command {
	var f gridFlags
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Change a board's grid; widgets are re-settled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(c boardClient, _ *config.Config, name string) (*board.View, error) {
				cur, err := c.GetBoard(name)
				if err != nil {
					return nil, err
				}
				f.fill(cmd, cur.Board.Grid, cur.Board.ContainerWidthPx)
				return c.SetGrid(name, f.grid(), f.width)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func (o *boardOpts) saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save a board held by the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(c boardClient, _ *config.Config, name string) (*board.View, error) {
				return c.SaveBoard(name)
			})
		},
	}
}

func (o *boardOpts) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(c boardClient, _ *config.Config, name string) (*board.View, error) {
				if err := c.DeleteBoard(name); err != nil {
					return nil, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
				return nil, nil
			})
		},
	}
}

func intPair(a, b string) (int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", a)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", b)
	}
	return x, y, nil
}

func printView(w io.Writer, v *board.View, asJSON bool) error {
	if asJSON {
		return writeJSON(w, v)
	}
	b := v.Board
	fmt.Fprintf(w, "board:   %s\n", b.Name)
	fmt.Fprintf(w, "grid:    %d columns, row %dpx, gap %dpx, width %dpx\n",
		b.Grid.Columns, b.Grid.RowHeightPx, b.Grid.GapPx, b.ContainerWidthPx)
	fmt.Fprintf(w, "rows:    %d (%dpx)\n", v.Rows, v.HeightPx)
	if v.Dirty {
		fmt.Fprintln(w, "unsaved: true")
	}
	if len(b.Widgets) == 0 {
		fmt.Fprintln(w, "widgets: none")
		return nil
	}
	fmt.Fprintln(w, "widgets:")
	for _, p := range b.Widgets {
		fmt.Fprintf(w, "  %-12s x=%-3d y=%-3d w=%-3d h=%d\n", p.ID, p.X, p.Y, p.W, p.H)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
