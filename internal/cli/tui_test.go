package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/breakpoint"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/editor"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/layout"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/storage"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("w%d", n)
	}
}

func newTestEditor(t *testing.T) (*editor.Editor, *storage.MemoryStore) {
	t.Helper()
	mem := storage.NewMemoryStore()
	gw := storage.NewGateway(storage.Shared(mem), nil)
	gw.Now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	ed := editor.New(breakpoint.DefaultSet(), editor.Options{Gateway: gw, IDGenerator: sequentialIDs()})
	return ed, mem
}

func press(t *testing.T, m EditorModel, keys ...tea.KeyMsg) EditorModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(EditorModel)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "shift+right":
		return tea.KeyMsg{Type: tea.KeyShiftRight}
	case "shift+down":
		return tea.KeyMsg{Type: tea.KeyShiftDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func rectOf(t *testing.T, ed *editor.Editor, id string) grid.Rect {
	t.Helper()
	l, err := ed.Layout("")
	if err != nil {
		t.Fatal(err)
	}
	w, ok := l.Get(id)
	if !ok {
		t.Fatalf("widget %s not in layout", id)
	}
	return w.Rect
}

func TestEditorModelAddFromPicker(t *testing.T) {
	ed, _ := newTestEditor(t)
	m := NewEditorModel(context.Background(), ed)

	// kpi is first in the picker, chart second
	m = press(t, m, key("a"), key("down"), key("enter"))

	l, _ := ed.Layout("")
	if l.Len() != 1 || l.Widgets[0].Kind != widget.KindChart {
		t.Fatalf("layout after add = %+v", l.Widgets)
	}
	if m.picking {
		t.Error("picker still open after enter")
	}
	if m.Selected != 0 {
		t.Errorf("Selected = %d, want 0", m.Selected)
	}
	if !strings.Contains(m.Status, "Added chart") {
		t.Errorf("Status = %q", m.Status)
	}
}

func TestEditorModelPickerCancel(t *testing.T) {
	ed, _ := newTestEditor(t)
	m := NewEditorModel(context.Background(), ed)

	m = press(t, m, key("a"))
	if !strings.Contains(m.View(), "Add Widget") {
		t.Error("picker view missing title")
	}
	m = press(t, m, key("esc"))
	if m.picking {
		t.Error("picker still open after esc")
	}
	if l, _ := ed.Layout(""); l.Len() != 0 {
		t.Errorf("cancelled picker added %d widgets", l.Len())
	}
}

func TestEditorModelMoveAndResize(t *testing.T) {
	ed, _ := newTestEditor(t)
	if _, err := ed.Add("", layout.Draft{Kind: widget.KindChart}); err != nil {
		t.Fatal(err)
	}
	m := NewEditorModel(context.Background(), ed)

	tests := []struct {
		key  string
		want grid.Rect
	}{
		{"right", grid.Rect{X: 1, Y: 0, W: 4, H: 3}},
		{"down", grid.Rect{X: 1, Y: 1, W: 4, H: 3}},
		{"left", grid.Rect{X: 0, Y: 1, W: 4, H: 3}},
		{"up", grid.Rect{X: 0, Y: 0, W: 4, H: 3}},
		{"shift+right", grid.Rect{X: 0, Y: 0, W: 5, H: 3}},
		{"shift+down", grid.Rect{X: 0, Y: 0, W: 5, H: 4}},
	}
	for _, tt := range tests {
		m = press(t, m, key(tt.key))
		if got := rectOf(t, ed, "w1"); got != tt.want {
			t.Errorf("after %s rect = %v, want %v", tt.key, got, tt.want)
		}
	}
	if !ed.Dirty() {
		t.Error("editor not dirty after moves")
	}
}

func TestEditorModelBlockedMove(t *testing.T) {
	ed, _ := newTestEditor(t)
	for _, k := range []widget.Kind{widget.KindChart, widget.KindChart} {
		if _, err := ed.Add("", layout.Draft{Kind: k}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := ed.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	m := NewEditorModel(context.Background(), ed)

	m = press(t, m, key("right"))
	if got := rectOf(t, ed, "w1"); got != (grid.Rect{X: 0, Y: 0, W: 4, H: 3}) {
		t.Errorf("blocked move changed rect to %v", got)
	}
	if m.Status != "Blocked by another widget" {
		t.Errorf("Status = %q", m.Status)
	}
	if ed.Dirty() {
		t.Error("rejected move marked the editor dirty")
	}
}

func TestEditorModelSelectionCycles(t *testing.T) {
	ed, _ := newTestEditor(t)
	for range 3 {
		if _, err := ed.Add("", layout.Draft{Kind: widget.KindKPI}); err != nil {
			t.Fatal(err)
		}
	}
	m := NewEditorModel(context.Background(), ed)

	m = press(t, m, key("tab"), key("tab"))
	if m.selectedID() != "w3" {
		t.Errorf("after two tabs selected %q, want w3", m.selectedID())
	}
	m = press(t, m, key("tab"))
	if m.selectedID() != "w1" {
		t.Errorf("tab did not wrap, selected %q", m.selectedID())
	}
	m = press(t, m, key("shift+tab"))
	if m.selectedID() != "w3" {
		t.Errorf("shift+tab did not wrap, selected %q", m.selectedID())
	}
}

func TestEditorModelDeleteAndSave(t *testing.T) {
	ed, mem := newTestEditor(t)
	for range 2 {
		if _, err := ed.Add("", layout.Draft{Kind: widget.KindGauge}); err != nil {
			t.Fatal(err)
		}
	}
	m := NewEditorModel(context.Background(), ed)

	m = press(t, m, key("tab"), key("x"))
	if l, _ := ed.Layout(""); l.Len() != 1 || l.Widgets[0].ID != "w1" {
		t.Fatalf("layout after delete = %v", l.IDs())
	}
	if m.Selected != 0 {
		t.Errorf("Selected = %d after deleting the last widget, want 0", m.Selected)
	}

	m = press(t, m, key("s"))
	if m.Status != "Saved" {
		t.Errorf("Status = %q", m.Status)
	}
	if ed.Dirty() {
		t.Error("editor dirty after save")
	}
	if _, err := mem.Get(context.Background(), storage.DefaultKey); err != nil {
		t.Errorf("nothing stored after save: %v", err)
	}
}

func TestEditorModelSwitchBreakpoint(t *testing.T) {
	ed, _ := newTestEditor(t)
	m := NewEditorModel(context.Background(), ed)

	m = press(t, m, key("]"))
	if ed.Active().Name != "md" {
		t.Errorf("after ] active = %s, want md", ed.Active().Name)
	}
	m = press(t, m, key("["), key("["))
	if ed.Active().Name != "xxs" {
		t.Errorf("[ did not wrap, active = %s", ed.Active().Name)
	}
	if !strings.Contains(m.View(), "Layout xxs") {
		t.Error("view does not show the active breakpoint")
	}
}

func TestEditorModelQuitWarnsWhenDirty(t *testing.T) {
	ed, _ := newTestEditor(t)
	if _, err := ed.Add("", layout.Draft{Kind: widget.KindKPI}); err != nil {
		t.Fatal(err)
	}
	m := NewEditorModel(context.Background(), ed)

	next, cmd := m.Update(key("q"))
	m = next.(EditorModel)
	if cmd != nil {
		t.Fatal("first q on a dirty session quit")
	}
	if !strings.Contains(m.Status, "Unsaved changes") {
		t.Errorf("Status = %q", m.Status)
	}
	if _, cmd = m.Update(key("q")); cmd == nil {
		t.Fatal("second q did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("second q did not return tea.Quit")
	}
}

func TestEditorModelQuitClean(t *testing.T) {
	ed, _ := newTestEditor(t)
	m := NewEditorModel(context.Background(), ed)

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q on a clean session did not quit")
	}
}

func TestEditorModelEmptyView(t *testing.T) {
	ed, _ := newTestEditor(t)
	m := NewEditorModel(context.Background(), ed)

	view := m.View()
	if !strings.Contains(view, "No widgets yet") {
		t.Errorf("empty view missing hint:\n%s", view)
	}
	// moves with nothing selected are ignored
	m = press(t, m, key("right"), key("x"))
	if ed.Dirty() {
		t.Error("keys on an empty layout changed the session")
	}
}
