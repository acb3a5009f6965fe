package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/editor"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/layout"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// editCommand creates the edit command running the terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the layout interactively",
		Long: `Edit the layout in the terminal.

  tab / shift+tab   select the next / previous widget
  arrows            move the selected widget one cell
  shift+arrows      resize the selected widget by one cell
  [ / ]             switch to the previous / next breakpoint
  a                 add a widget
  x                 delete the selected widget
  r                 rebuild the other breakpoints from this one
  s                 save
  q                 quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ed, err := c.session(ctx)
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(NewEditorModel(ctx, ed), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(EditorModel); ok && m.ed.Dirty() {
				printWarning("Quit with unsaved changes")
			}
			return nil
		},
	}
}

// =============================================================================
// EditorModel - Interactive layout editor
// =============================================================================

// EditorModel is the bubbletea model for the layout editor. Each key press
// is one drag step: moves and resizes go through the same pixel conversion
// as pointer drags, one cell pitch at a time.
type EditorModel struct {
	ctx      context.Context
	ed       *editor.Editor
	Selected int
	Status   string

	picking    bool
	kindCursor int
	confirmed  bool
}

// NewEditorModel creates a new editor model over ed.
func NewEditorModel(ctx context.Context, ed *editor.Editor) EditorModel {
	return EditorModel{ctx: ctx, ed: ed}
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.picking {
		return m.updatePicker(key)
	}

	s := key.String()
	if s != "q" {
		m.confirmed = false
	}
	switch s {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		if m.ed.Dirty() && !m.confirmed {
			m.confirmed = true
			m.Status = "Unsaved changes: press q again to quit, s to save"
			return m, nil
		}
		return m, tea.Quit
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "left":
		m.move(-1, 0)
	case "right":
		m.move(1, 0)
	case "up":
		m.move(0, -1)
	case "down":
		m.move(0, 1)
	case "shift+left":
		m.resize(-1, 0)
	case "shift+right":
		m.resize(1, 0)
	case "shift+up":
		m.resize(0, -1)
	case "shift+down":
		m.resize(0, 1)
	case "[":
		m.switchBreakpoint(-1)
	case "]":
		m.switchBreakpoint(1)
	case "a":
		m.picking = true
		m.kindCursor = 0
		m.Status = ""
	case "x", "delete":
		m.deleteSelected()
	case "r":
		m.setResult(m.ed.Reflow(""), "Rebuilt other breakpoints from "+m.ed.Active().Name)
	case "s":
		_, err := m.ed.Save(m.ctx)
		m.setResult(err, "Saved")
	}
	return m, nil
}

func (m EditorModel) updatePicker(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		m.picking = false
	case "up", "k":
		if m.kindCursor > 0 {
			m.kindCursor--
		}
	case "down", "j":
		if m.kindCursor < len(widget.Kinds)-1 {
			m.kindCursor++
		}
	case "enter":
		m.picking = false
		added, err := m.ed.Add("", layout.Draft{Kind: widget.Kinds[m.kindCursor]})
		if m.setResult(err, fmt.Sprintf("Added %s at %s", added.Kind, added.Rect)) {
			m.Selected = m.layout().Len() - 1
		}
	}
	return m, nil
}

// setResult shows err or the success message and reports whether the
// operation succeeded.
func (m *EditorModel) setResult(err error, ok string) bool {
	if err != nil {
		m.Status = "Error: " + apperr.UserMessage(err)
		return false
	}
	m.Status = ok
	return true
}

func (m EditorModel) layout() layout.Layout {
	l, _ := m.ed.Layout("")
	return l
}

func (m EditorModel) selectedID() string {
	l := m.layout()
	if m.Selected < 0 || m.Selected >= l.Len() {
		return ""
	}
	return l.Widgets[m.Selected].ID
}

func (m *EditorModel) cycle(step int) {
	n := m.layout().Len()
	if n == 0 {
		return
	}
	m.Selected = ((m.Selected+step)%n + n) % n
}

func (m *EditorModel) move(dCols, dRows int) {
	id := m.selectedID()
	if id == "" {
		return
	}
	w, outcome, err := m.ed.Move("", id, m.ed.Spec("").PixelDeltaFor(dCols, dRows))
	m.report("Moved", w, outcome, err)
}

func (m *EditorModel) resize(dCols, dRows int) {
	id := m.selectedID()
	if id == "" {
		return
	}
	w, outcome, err := m.ed.Resize("", id, m.ed.Spec("").PixelDeltaFor(dCols, dRows))
	m.report("Resized", w, outcome, err)
}

func (m *EditorModel) report(verb string, w widget.Widget, outcome layout.Outcome, err error) {
	switch {
	case err != nil:
		m.setResult(err, "")
	case outcome == layout.Rejected:
		m.Status = "Blocked by another widget"
	case outcome == layout.Applied:
		m.Status = fmt.Sprintf("%s %s to %s", verb, w.ID, w.Rect)
	default:
		m.Status = ""
	}
}

func (m *EditorModel) deleteSelected() {
	id := m.selectedID()
	if id == "" {
		return
	}
	if m.setResult(m.ed.Delete("", id), "Deleted "+id) {
		if n := m.layout().Len(); m.Selected >= n {
			m.Selected = max(n-1, 0)
		}
	}
}

func (m *EditorModel) switchBreakpoint(step int) {
	names := m.ed.Set().Names()
	cur := 0
	for i, name := range names {
		if name == m.ed.Active().Name {
			cur = i
		}
	}
	next := names[((cur+step)%len(names)+len(names))%len(names)]
	if m.setResult(m.ed.SetActive(next), "Editing "+next) {
		m.Selected = 0
	}
}

func (m EditorModel) View() string {
	var b strings.Builder

	bp := m.ed.Active()
	title := StyleTitle.Render("Layout " + bp.Name)
	meta := fmt.Sprintf("  %d columns", bp.Columns)
	if m.ed.Dirty() {
		meta += " · unsaved"
	}
	b.WriteString(title + listDimStyle.Render(meta))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab select  arrows move  shift+arrows resize  [ ] breakpoint  a add  x delete  s save  q quit"))
	b.WriteString("\n\n")

	if m.picking {
		b.WriteString(m.pickerView())
		return b.String()
	}

	l := m.layout()
	id := m.selectedID()
	b.WriteString(renderGrid(l, id))
	b.WriteString("\n")
	if l.Len() > 0 {
		b.WriteString(renderWidgetTable(l, id))
		b.WriteString("\n")
	} else {
		b.WriteString(listDimStyle.Render("No widgets yet. Press a to add one."))
		b.WriteString("\n")
	}
	if m.Status != "" {
		b.WriteString("\n")
		b.WriteString(listNormalStyle.Render(m.Status))
	}
	return b.String()
}

func (m EditorModel) pickerView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Add Widget"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: add  esc: cancel"))
	b.WriteString("\n\n")

	catalog := widget.DefaultCatalog()
	for i, kind := range widget.Kinds {
		t, _ := catalog.Lookup(kind)
		cursor := "  "
		if i == m.kindCursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-8s %-16s %s", cursor, kind, t.Label, listDimStyle.Render(t.Description))
		if i == m.kindCursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
