package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/layout"
)

// cellWidth is the number of terminal columns drawn per grid column.
const cellWidth = 4

// widgetPalette colors widgets by list position.
var widgetPalette = []lipgloss.Color{"30", "29", "67", "136", "131", "97", "66", "101"}

var (
	styleEmptyCell = lipgloss.NewStyle().Foreground(colorDim)
	styleGridFrame = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader    = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

func widgetStyle(i int, selected bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Background(widgetPalette[i%len(widgetPalette)]).
		Foreground(colorWhite)
	if selected {
		s = s.Bold(true).Underline(true)
	}
	return s
}

// renderGrid draws l one terminal line per grid row. Each widget is a block
// of colored cells labelled with its list number at the top-left cell. The
// widget whose id is selected is drawn bold.
func renderGrid(l layout.Layout, selected string) string {
	cols := max(l.Columns, 1)
	rows := max(l.Rows(), 1)

	owner := make([][]int, rows)
	for y := range owner {
		owner[y] = make([]int, cols)
		for x := range owner[y] {
			owner[y][x] = -1
		}
	}
	for i, w := range l.Widgets {
		for y := w.Rect.Y; y < w.Rect.Bottom() && y < rows; y++ {
			for x := w.Rect.X; x < w.Rect.Right() && x < cols; x++ {
				owner[y][x] = i
			}
		}
	}

	var b strings.Builder
	b.WriteString(styleGridFrame.Render("┌" + strings.Repeat("─", cols*cellWidth) + "┐"))
	b.WriteString("\n")
	for y := range rows {
		b.WriteString(styleGridFrame.Render("│"))
		for x := range cols {
			i := owner[y][x]
			if i < 0 {
				b.WriteString(styleEmptyCell.Render(fmt.Sprintf("%-*s", cellWidth, " ·")))
				continue
			}
			w := l.Widgets[i]
			label := ""
			if x == w.Rect.X && y == w.Rect.Y {
				label = fmt.Sprint(i + 1)
			}
			b.WriteString(widgetStyle(i, w.ID == selected).Render(fmt.Sprintf("%-*s", cellWidth, label)))
		}
		b.WriteString(styleGridFrame.Render("│"))
		b.WriteString("\n")
	}
	b.WriteString(styleGridFrame.Render("└" + strings.Repeat("─", cols*cellWidth) + "┘"))
	return b.String()
}

// renderWidgetTable lists l's widgets in list order, numbered as in
// renderGrid.
func renderWidgetTable(l layout.Layout, selected string) string {
	rows := make([][]string, 0, len(l.Widgets))
	for i, w := range l.Widgets {
		cursor := "  "
		if w.ID == selected {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor + fmt.Sprint(i+1),
			w.ID,
			string(w.Kind),
			w.Title,
			fmt.Sprintf("%d,%d", w.Rect.X, w.Rect.Y),
			fmt.Sprintf("%dx%d", w.Rect.W, w.Rect.H),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "ID", "Kind", "Title", "Cell", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row >= 0 && row < len(l.Widgets) && l.Widgets[row].ID == selected {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}
