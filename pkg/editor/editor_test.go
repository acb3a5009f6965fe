package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/breakpoint"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/document"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
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

func newEditor(t *testing.T) (*Editor, *storage.MemoryStore) {
	t.Helper()
	mem := storage.NewMemoryStore()
	gw := &storage.Gateway{
		Open: storage.Shared(mem),
		Now:  func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) },
	}
	e := New(breakpoint.DefaultSet(), Options{Gateway: gw, IDGenerator: sequentialIDs()})
	return e, mem
}

func mustAdd(t *testing.T, e *Editor, kind widget.Kind) widget.Widget {
	t.Helper()
	w, err := e.Add("", layout.Draft{Kind: kind})
	if err != nil {
		t.Fatalf("Add(%s) error = %v", kind, err)
	}
	return w
}

func TestAddPropagates(t *testing.T) {
	e, _ := newEditor(t)
	w := mustAdd(t, e, widget.KindChart)

	if w.ID != "w1" || w.Rect != (grid.Rect{X: 0, Y: 0, W: 4, H: 3}) || w.Title != "New Chart Widget" {
		t.Errorf("Add() = %+v", w)
	}
	set := e.Set()
	for _, name := range set.Names() {
		if diff := cmp.Diff([]string{"w1"}, set.Layouts[name].IDs()); diff != "" {
			t.Errorf("%s ids mismatch (-want +got):\n%s", name, diff)
		}
	}
	if err := breakpoint.Validate(set, widget.DefaultCatalog()); err != nil {
		t.Errorf("set invalid after Add(): %v", err)
	}
	if !e.Dirty() {
		t.Error("Dirty() = false after Add()")
	}
}

func TestAddUnknownKind(t *testing.T) {
	e, _ := newEditor(t)
	if _, err := e.Add("", layout.Draft{Kind: "sparkline"}); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("Add() error = %v, want INVALID_INPUT", err)
	}
	if e.Dirty() {
		t.Error("failed Add() marked the session dirty")
	}
}

func TestMoveIsPerBreakpoint(t *testing.T) {
	e, _ := newEditor(t)
	mustAdd(t, e, widget.KindKPI)
	before, _ := e.Layout("md")

	w, outcome, err := e.MoveBy("lg", "w1", 5, 2)
	if err != nil {
		t.Fatalf("MoveBy() error = %v", err)
	}
	if outcome != layout.Applied || w.Rect.Origin() != (grid.Point{X: 5, Y: 2}) {
		t.Errorf("MoveBy() = %v, %v", w.Rect, outcome)
	}
	after, _ := e.Layout("md")
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("move leaked into md (-want +got):\n%s", diff)
	}
}

func TestMoveRejectedKeepsLayout(t *testing.T) {
	e, _ := newEditor(t)
	mustAdd(t, e, widget.KindKPI)   // (0,0,3,2)
	mustAdd(t, e, widget.KindGauge) // (3,0,3,3)
	if _, err := e.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := e.Set()

	w, outcome, err := e.MoveTo("", "w2", grid.Point{X: 1, Y: 0})
	if err != nil {
		t.Fatalf("MoveTo() error = %v", err)
	}
	if outcome != layout.Rejected {
		t.Errorf("MoveTo() outcome = %v, want rejected", outcome)
	}
	if w.Rect != (grid.Rect{X: 3, Y: 0, W: 3, H: 3}) {
		t.Errorf("MoveTo() returned %v, want the unchanged rect", w.Rect)
	}
	if diff := cmp.Diff(before, e.Set()); diff != "" {
		t.Errorf("rejected move changed the set (-want +got):\n%s", diff)
	}
	if e.Dirty() {
		t.Error("rejected move marked the session dirty")
	}
}

func TestMovePixelDelta(t *testing.T) {
	e, _ := newEditor(t)
	mustAdd(t, e, widget.KindKPI)
	delta := e.Spec("").PixelDeltaFor(2, 1)

	w, outcome, err := e.Move("", "w1", delta)
	if err != nil || outcome != layout.Applied {
		t.Fatalf("Move() = %v, %v", outcome, err)
	}
	if w.Rect.Origin() != (grid.Point{X: 2, Y: 1}) {
		t.Errorf("Move() rect = %v", w.Rect)
	}
}

func TestResize(t *testing.T) {
	e, _ := newEditor(t)
	mustAdd(t, e, widget.KindKPI)

	w, outcome, err := e.ResizeTo("", "w1", grid.Size{W: 6, H: 4})
	if err != nil || outcome != layout.Applied {
		t.Fatalf("ResizeTo() = %v, %v", outcome, err)
	}
	if w.Rect != (grid.Rect{X: 0, Y: 0, W: 6, H: 4}) {
		t.Errorf("ResizeTo() rect = %v", w.Rect)
	}

	delta := e.Spec("").PixelDeltaFor(-10, -10)
	w, _, err = e.Resize("", "w1", delta)
	if err != nil {
		t.Fatal(err)
	}
	if w.Rect.Size() != (grid.Size{W: 2, H: 2}) {
		t.Errorf("Resize() below minimum = %v, want the kpi minimum", w.Rect)
	}
}

func TestDeletePropagatesWithoutRepack(t *testing.T) {
	e, _ := newEditor(t)
	mustAdd(t, e, widget.KindKPI)
	mustAdd(t, e, widget.KindKPI)
	mustAdd(t, e, widget.KindKPI)
	before, _ := e.Layout("sm")

	if err := e.Delete("", "w1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	set := e.Set()
	for _, name := range set.Names() {
		if diff := cmp.Diff([]string{"w2", "w3"}, set.Layouts[name].IDs()); diff != "" {
			t.Errorf("%s ids mismatch (-want +got):\n%s", name, diff)
		}
	}
	after, _ := e.Layout("sm")
	if diff := cmp.Diff(before.Rects()[1:], after.Rects()); diff != "" {
		t.Errorf("Delete() moved survivors (-want +got):\n%s", diff)
	}

	if err := e.Delete("", "w1"); !errors.Is(err, layout.ErrWidgetNotFound) {
		t.Errorf("second Delete() error = %v, want ErrWidgetNotFound", err)
	}
}

func TestReorder(t *testing.T) {
	e, _ := newEditor(t)
	mustAdd(t, e, widget.KindKPI)
	mustAdd(t, e, widget.KindKPI)
	mustAdd(t, e, widget.KindKPI)

	got, err := e.Reorder("", "w3", "w1")
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	if diff := cmp.Diff([]string{"w3", "w1", "w2"}, got.IDs()); diff != "" {
		t.Errorf("Reorder() ids mismatch (-want +got):\n%s", diff)
	}
	md, _ := e.Layout("md")
	if diff := cmp.Diff([]string{"w1", "w2", "w3"}, md.IDs()); diff != "" {
		t.Errorf("reorder leaked into md (-want +got):\n%s", diff)
	}
}

func TestUpdatePropagates(t *testing.T) {
	e, _ := newEditor(t)
	mustAdd(t, e, widget.KindGauge)

	title := "Chlorine residual"
	cfg := widget.Config{"dataSource": "chlorine", "max": 4.0}
	if _, err := e.Update("", "w1", &title, cfg); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	for _, name := range e.Set().Names() {
		l, _ := e.Layout(name)
		w, _ := l.Get("w1")
		if w.Title != title {
			t.Errorf("%s title = %q", name, w.Title)
		}
		if diff := cmp.Diff(cfg, w.Config); diff != "" {
			t.Errorf("%s config mismatch (-want +got):\n%s", name, diff)
		}
	}

	long := string(bytes.Repeat([]byte("x"), apperr.MaxTitleLength+1))
	if _, err := e.Update("", "w1", &long, nil); !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("Update() long title error = %v", err)
	}
}

func TestReflow(t *testing.T) {
	e, _ := newEditor(t)
	mustAdd(t, e, widget.KindChart)
	mustAdd(t, e, widget.KindChart)
	if _, _, err := e.MoveTo("sm", "w2", grid.Point{X: 0, Y: 10}); err != nil {
		t.Fatal(err)
	}

	if err := e.Reflow("lg"); err != nil {
		t.Fatalf("Reflow() error = %v", err)
	}
	lg, _ := e.Layout("lg")
	want, _ := breakpoint.Derive(lg, 6, widget.DefaultCatalog())
	got, _ := e.Layout("sm")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reflow() sm mismatch (-want +got):\n%s", diff)
	}
}

func TestActiveBreakpoint(t *testing.T) {
	e, _ := newEditor(t)
	if e.Active().Name != "lg" {
		t.Errorf("Active() = %q, want lg", e.Active().Name)
	}
	if bp := e.ResolveWidth(800); bp.Name != "sm" || e.Active().Name != "sm" {
		t.Errorf("ResolveWidth(800) = %q, active %q", bp.Name, e.Active().Name)
	}
	if e.Spec("").Columns != 6 || e.Spec("").ContainerWidth != 800 {
		t.Errorf("Spec() = %+v", e.Spec(""))
	}
	if err := e.SetActive("huge"); !apperr.Is(err, apperr.ErrCodeNotFound) {
		t.Errorf("SetActive() error = %v, want NOT_FOUND", err)
	}
	if _, err := e.Layout("huge"); !errors.Is(err, breakpoint.ErrUnknownBreakpoint) {
		t.Errorf("Layout() error = %v", err)
	}
}

func TestSaveAndOpen(t *testing.T) {
	e, mem := newEditor(t)
	mustAdd(t, e, widget.KindNetwork)
	mustAdd(t, e, widget.KindTable)

	savedAt, err := e.Save(context.Background())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if e.Dirty() || !e.SavedAt().Equal(savedAt) {
		t.Errorf("after Save() Dirty=%v SavedAt=%v", e.Dirty(), e.SavedAt())
	}

	reopened, report, err := Open(context.Background(), Options{Gateway: &storage.Gateway{Open: storage.Shared(mem)}})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("Open() warnings = %v", report.Warnings)
	}
	if diff := cmp.Diff(e.Set(), reopened.Set()); diff != "" {
		t.Errorf("Open() mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenEmptyStore(t *testing.T) {
	gw := &storage.Gateway{Open: storage.Shared(storage.NewMemoryStore())}
	e, _, err := Open(context.Background(), Options{Gateway: gw})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if diff := cmp.Diff(breakpoint.DefaultSet(), e.Set()); diff != "" {
		t.Errorf("Open() mismatch (-want +got):\n%s", diff)
	}
}

func TestReloadDiscardsChanges(t *testing.T) {
	e, _ := newEditor(t)
	mustAdd(t, e, widget.KindKPI)
	if _, err := e.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	saved := e.Set()
	mustAdd(t, e, widget.KindKPI)

	if _, err := e.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if diff := cmp.Diff(saved, e.Set()); diff != "" {
		t.Errorf("Reload() mismatch (-want +got):\n%s", diff)
	}
}

func TestExportImport(t *testing.T) {
	e, _ := newEditor(t)
	mustAdd(t, e, widget.KindChart)
	var buf bytes.Buffer
	if err := e.Export(&buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	other, _ := newEditor(t)
	if _, err := other.Import(&buf); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if diff := cmp.Diff(e.Set(), other.Set()); diff != "" {
		t.Errorf("Import() mismatch (-want +got):\n%s", diff)
	}

	before := other.Set()
	_, err := other.Import(bytes.NewBufferString(`{"breakpoints": []}`))
	var le *document.LoadError
	if !errors.As(err, &le) {
		t.Errorf("Import() error = %v, want LoadError", err)
	}
	if diff := cmp.Diff(before, other.Set()); diff != "" {
		t.Errorf("rejected import replaced the set (-want +got):\n%s", diff)
	}
}

func TestSaveWithoutGateway(t *testing.T) {
	e := New(breakpoint.DefaultSet(), Options{})
	if _, err := e.Save(context.Background()); !apperr.Is(err, apperr.ErrCodeInvalidConfig) {
		t.Errorf("Save() error = %v, want INVALID_CONFIG", err)
	}
}
