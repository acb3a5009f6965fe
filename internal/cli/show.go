package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/editor"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// showCommand creates the show command for printing the stored layout.
func (c *CLI) showCommand() *cobra.Command {
	var all, asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the layout of a breakpoint",
		Long: `Print the layout of the selected breakpoint as a grid preview and a
widget table. Use --all to print every breakpoint, or --json for the layout
document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return ed.Export(cmd.OutOrStdout())
			}

			names := []string{ed.Active().Name}
			if all {
				names = ed.Set().Names()
			}
			for i, name := range names {
				if i > 0 {
					printNewline()
				}
				if err := showBreakpoint(ed, name); err != nil {
					return err
				}
			}
			if at := ed.SavedAt(); !at.IsZero() {
				printNewline()
				printKeyValue("Saved", at.Local().Format(time.DateTime))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "print every breakpoint")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout document as JSON")
	return cmd
}

func showBreakpoint(ed *editor.Editor, name string) error {
	l, err := ed.Layout(name)
	if err != nil {
		return err
	}
	bp, _ := ed.Set().Lookup(name)

	fmt.Println(StyleTitle.Render(bp.Name) + " " + StyleDim.Render(fmt.Sprintf("%d columns, from %dpx", bp.Columns, bp.MinWidth)))
	printStats(l.Len(), l.Rows(), ed.Dirty())
	fmt.Println(renderGrid(l, ""))
	if l.Len() > 0 {
		fmt.Println(renderWidgetTable(l, ""))
	}
	return nil
}

// widgetsCommand creates the widgets command listing the widget library.
func (c *CLI) widgetsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "widgets",
		Short: "List the available widget kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates := widget.DefaultCatalog().Templates()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(templates)
			}

			rows := make([][]string, len(templates))
			for i, t := range templates {
				rows[i] = []string{
					string(t.Kind),
					t.Label,
					fmt.Sprintf("%dx%d", t.DefaultSize.W, t.DefaultSize.H),
					fmt.Sprintf("%dx%d", t.MinSize.W, t.MinSize.H),
					t.Description,
				}
			}
			tbl := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Kind", "Name", "Size", "Min", "Description").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					switch {
					case row == -1:
						return styleHeader
					case col == 0:
						return StyleHighlight
					case col == 4:
						return StyleDim
					default:
						return StyleValue
					}
				})
			fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the widget library as JSON")
	return cmd
}
