package cli

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/layout"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// addCommand creates the add command for placing a new widget.
func (c *CLI) addCommand() *cobra.Command {
	var title, size string

	cmd := &cobra.Command{
		Use:   "add [kind]",
		Short: "Add a widget at the first free position",
		Long: `Add a widget of the given kind (kpi, chart, gauge, network, table, custom).

The widget is placed at the first free position of the selected breakpoint,
scanning rows top to bottom. It is added to every other breakpoint as well.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := widget.ParseKind(args[0])
			if err != nil {
				return err
			}
			d := layout.Draft{Kind: kind, Title: title}
			if size != "" {
				w, h, err := parsePair(size, "x")
				if err != nil {
					return err
				}
				d.Size = grid.Size{W: w, H: h}
			}

			ctx := cmd.Context()
			ed, err := c.session(ctx)
			if err != nil {
				return err
			}
			added, err := ed.Add("", d)
			if err != nil {
				return err
			}
			if err := c.commit(ctx, ed); err != nil {
				return err
			}
			printSuccess("Added %s %s at %s", added.Kind, StyleHighlight.Render(added.ID), added.Rect)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "widget title (default from the widget library)")
	cmd.Flags().StringVar(&size, "size", "", "size as WxH in cells (default from the widget library)")
	return cmd
}

// moveCommand creates the move command.
func (c *CLI) moveCommand() *cobra.Command {
	var to, by, px string

	cmd := &cobra.Command{
		Use:   "move [id]",
		Short: "Move a widget on the selected breakpoint",
		Long: `Move a widget to a cell (--to X,Y), by whole cells (--by DX,DY) or by a
pointer drag in pixels (--px DX,DY).

The target is clamped into the grid. A move onto another widget is rejected
and the widget stays where it was.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeWidgetIDs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := exactlyOne(map[string]string{"--to": to, "--by": by, "--px": px}); err != nil {
				return err
			}

			ctx := cmd.Context()
			ed, err := c.session(ctx)
			if err != nil {
				return err
			}

			var (
				moved   widget.Widget
				outcome layout.Outcome
			)
			switch {
			case to != "":
				x, y, perr := parsePair(to, ",")
				if perr != nil {
					return perr
				}
				moved, outcome, err = ed.MoveTo("", id, grid.Point{X: x, Y: y})
			case by != "":
				dx, dy, perr := parsePair(by, ",")
				if perr != nil {
					return perr
				}
				moved, outcome, err = ed.MoveBy("", id, dx, dy)
			default:
				delta, perr := parsePixels(px)
				if perr != nil {
					return perr
				}
				moved, outcome, err = ed.Move("", id, delta)
			}
			if err != nil {
				return err
			}
			if err := c.commit(ctx, ed); err != nil {
				return err
			}
			printOutcome("Moved", moved, outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "target cell as X,Y")
	cmd.Flags().StringVar(&by, "by", "", "cell offset as DX,DY")
	cmd.Flags().StringVar(&px, "px", "", "pointer offset in pixels as DX,DY")
	return cmd
}

// resizeCommand creates the resize command.
func (c *CLI) resizeCommand() *cobra.Command {
	var to, by, px string

	cmd := &cobra.Command{
		Use:   "resize [id]",
		Short: "Resize a widget on the selected breakpoint",
		Long: `Resize a widget to a span (--to WxH), by whole cells (--by DW,DH) or by a
drag of its resize handle in pixels (--px DX,DY).

The top-left corner stays put. The span never drops below the widget kind's
minimum and never runs past the right edge. A resize onto another widget is
rejected.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeWidgetIDs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := exactlyOne(map[string]string{"--to": to, "--by": by, "--px": px}); err != nil {
				return err
			}

			ctx := cmd.Context()
			ed, err := c.session(ctx)
			if err != nil {
				return err
			}

			var (
				resized widget.Widget
				outcome layout.Outcome
			)
			switch {
			case to != "":
				w, h, perr := parsePair(to, "x")
				if perr != nil {
					return perr
				}
				resized, outcome, err = ed.ResizeTo("", id, grid.Size{W: w, H: h})
			case by != "":
				dw, dh, perr := parsePair(by, ",")
				if perr != nil {
					return perr
				}
				l, lerr := ed.Layout("")
				if lerr != nil {
					return lerr
				}
				cur, ok := l.Get(id)
				if !ok {
					return usageError("widget %q not found", id)
				}
				resized, outcome, err = ed.ResizeTo("", id, grid.Size{W: cur.Rect.W + dw, H: cur.Rect.H + dh})
			default:
				delta, perr := parsePixels(px)
				if perr != nil {
					return perr
				}
				resized, outcome, err = ed.Resize("", id, delta)
			}
			if err != nil {
				return err
			}
			if err := c.commit(ctx, ed); err != nil {
				return err
			}
			printOutcome("Resized", resized, outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "target span as WxH")
	cmd.Flags().StringVar(&by, "by", "", "span change as DW,DH")
	cmd.Flags().StringVar(&px, "px", "", "handle drag in pixels as DX,DY")
	return cmd
}

// updateCommand creates the update command for titles and widget config.
func (c *CLI) updateCommand() *cobra.Command {
	var (
		title string
		set   map[string]string
	)

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change a widget's title or config",
		Long: `Change a widget's title (--title) or config values (--set key=value).

Config values are merged into the widget's current config. Numbers and
booleans are stored as such, everything else as text. The change applies to
every breakpoint; the widget's position is kept.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeWidgetIDs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			titleSet := cmd.Flags().Changed("title")
			if !titleSet && len(set) == 0 {
				return usageError("nothing to update: give --title or --set")
			}

			ctx := cmd.Context()
			ed, err := c.session(ctx)
			if err != nil {
				return err
			}

			var cfg widget.Config
			if len(set) > 0 {
				l, err := ed.Layout("")
				if err != nil {
					return err
				}
				cur, ok := l.Get(id)
				if !ok {
					return usageError("widget %q not found", id)
				}
				cfg = cur.Config.Clone()
				if cfg == nil {
					cfg = widget.Config{}
				}
				for k, v := range set {
					cfg[k] = parseValue(v)
				}
			}
			var newTitle *string
			if titleSet {
				newTitle = &title
			}

			updated, err := ed.Update("", id, newTitle, cfg)
			if err != nil {
				return err
			}
			if err := c.commit(ctx, ed); err != nil {
				return err
			}
			printSuccess("Updated %s %q", StyleHighlight.Render(updated.ID), updated.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new widget title")
	cmd.Flags().StringToStringVar(&set, "set", nil, "config values as key=value")
	return cmd
}

// deleteCommand creates the delete command.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id...]",
		Aliases: []string{"rm"},
		Short:   "Remove widgets from every breakpoint",
		Long: `Remove widgets from every breakpoint. The remaining widgets keep their
positions; gaps are not closed.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeWidgetIDs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ed, err := c.session(ctx)
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := ed.Delete("", id); err != nil {
					return err
				}
			}
			if err := c.commit(ctx, ed); err != nil {
				return err
			}
			printSuccess("Deleted %d widget(s)", len(args))
			return nil
		},
	}
}

// reorderCommand creates the reorder command.
func (c *CLI) reorderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder [active-id] [over-id]",
		Short: "Move a widget to another widget's place in the list order",
		Long: `Move the first widget to the list position of the second, as when one
widget card is dropped on another. Positions on the grid are unchanged.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeWidgetIDs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ed, err := c.session(ctx)
			if err != nil {
				return err
			}
			l, err := ed.Reorder("", args[0], args[1])
			if err != nil {
				return err
			}
			if err := c.commit(ctx, ed); err != nil {
				return err
			}
			printSuccess("Reordered: %s", strings.Join(l.IDs(), ", "))
			return nil
		},
	}
}

// reflowCommand creates the reflow command.
func (c *CLI) reflowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reflow",
		Short: "Rebuild every other breakpoint from the selected one",
		Long: `Rebuild the layouts of all other breakpoints from the selected breakpoint.
Widget spans are scaled to each breakpoint's column count and placed in list
order. Positions set on the other breakpoints are discarded.`,
		Args:              cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ed, err := c.session(ctx)
			if err != nil {
				return err
			}
			source := ed.Active().Name
			if err := ed.Reflow(""); err != nil {
				return err
			}
			if err := c.commit(ctx, ed); err != nil {
				return err
			}
			printSuccess("Reflowed all breakpoints from %s", StyleHighlight.Render(source))
			return nil
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

func printOutcome(verb string, w widget.Widget, outcome layout.Outcome) {
	switch outcome {
	case layout.Applied:
		printSuccess("%s %s to %s", verb, StyleHighlight.Render(w.ID), w.Rect)
	case layout.Rejected:
		printWarning("Rejected: the target overlaps another widget")
		printDetail("%s stays at %s", w.ID, w.Rect)
	default:
		printInfo("%s is already at %s", w.ID, w.Rect)
	}
}

func kindNames() []string {
	names := make([]string, len(widget.Kinds))
	for i, k := range widget.Kinds {
		names[i] = string(k)
	}
	return names
}

// exactlyOne checks that exactly one of the named flag values is set.
func exactlyOne(flags map[string]string) error {
	var set []string
	for name, v := range flags {
		if v != "" {
			set = append(set, name)
		}
	}
	if len(set) != 1 {
		return usageError("give exactly one of %s", strings.Join(slices.Sorted(maps.Keys(flags)), ", "))
	}
	return nil
}

// parsePair parses two integers joined by sep, such as "4x3" or "2,-1".
func parsePair(s, sep string) (int, int, error) {
	a, b, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), sep)
	if !ok {
		return 0, 0, usageError("%q: want two numbers separated by %q", s, sep)
	}
	x, err1 := strconv.Atoi(strings.TrimSpace(a))
	y, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil {
		return 0, 0, usageError("%q: want two whole numbers separated by %q", s, sep)
	}
	return x, y, nil
}

// parsePixels parses a pixel displacement "DX,DY".
func parsePixels(s string) (grid.PixelDelta, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return grid.PixelDelta{}, usageError("%q: want DX,DY in pixels", s)
	}
	dx, err1 := strconv.ParseFloat(strings.TrimSpace(a), 64)
	dy, err2 := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err1 != nil || err2 != nil {
		return grid.PixelDelta{}, usageError("%q: want DX,DY in pixels", s)
	}
	return grid.PixelDelta{DX: dx, DY: dy}, nil
}

// parseValue turns a --set value into a bool, a number or a string.
func parseValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
