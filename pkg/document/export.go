package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/breakpoint"
)

// Document is the persisted form of a breakpoint set.
type Document struct {
	Breakpoints map[string]Breakpoint `json:"breakpoints"`
	SavedAt     time.Time             `json:"savedAt"`
}

// Breakpoint is the persisted form of one breakpoint and its layout. Order
// is the breakpoint's position in the set; it breaks MinWidth ties on load.
type Breakpoint struct {
	Columns  int      `json:"columns"`
	MinWidth int      `json:"minWidth"`
	Order    int      `json:"order"`
	Widgets  []Widget `json:"widgets"`
}

// Widget is the persisted form of a placed widget.
type Widget struct {
	ID     string         `json:"id"`
	Kind   string         `json:"kind"`
	Title  string         `json:"title"`
	X      int            `json:"x"`
	Y      int            `json:"y"`
	W      int            `json:"w"`
	H      int            `json:"h"`
	Config map[string]any `json:"config,omitempty"`
}

// Save converts s into a document stamped with now. It does no I/O.
func Save(s breakpoint.Set, now time.Time) Document {
	doc := Document{
		Breakpoints: make(map[string]Breakpoint, len(s.Breakpoints)),
		SavedAt:     now.UTC(),
	}
	for order, bp := range s.Breakpoints {
		l := s.Layouts[bp.Name]
		out := Breakpoint{
			Columns:  bp.Columns,
			MinWidth: bp.MinWidth,
			Order:    order,
			Widgets:  make([]Widget, len(l.Widgets)),
		}
		for i, w := range l.Widgets {
			out.Widgets[i] = Widget{
				ID:     w.ID,
				Kind:   string(w.Kind),
				Title:  w.Title,
				X:      w.Rect.X,
				Y:      w.Rect.Y,
				W:      w.Rect.W,
				H:      w.Rect.H,
				Config: w.Config.Clone(),
			}
		}
		doc.Breakpoints[bp.Name] = out
	}
	return doc
}

// Marshal encodes s as a compact document.
func Marshal(s breakpoint.Set, now time.Time) ([]byte, error) {
	data, err := json.Marshal(Save(s, now))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Export writes s to w as an indented document.
func Export(w io.Writer, s breakpoint.Set, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Save(s, now)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportFileName returns the conventional export file name for a document
// saved at now, e.g. dashboard-config-2024-05-01.json.
func ExportFileName(now time.Time) string {
	return "dashboard-config-" + now.Format("2006-01-02") + ".json"
}

// ExportFile writes s to path. If path is a directory the file is created
// inside it under [ExportFileName]. It returns the path written.
func ExportFile(path string, s breakpoint.Set, now time.Time) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ExportFileName(now))
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := Export(f, s, now); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
