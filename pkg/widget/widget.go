// Package widget defines the widget descriptor placed on a dashboard grid
// and the registry that supplies per-kind size metadata.
//
// The engine treats [Widget.Config] as opaque. It is carried through every
// operation and persisted verbatim but never inspected.
package widget

import (
	"fmt"
	"maps"
	"strings"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
)

// Kind is the widget type. The set is closed; changing the kind of a placed
// widget means deleting it and adding a new one.
type Kind string

const (
	KindKPI     Kind = "kpi"
	KindChart   Kind = "chart"
	KindGauge   Kind = "gauge"
	KindTable   Kind = "table"
	KindNetwork Kind = "network"
	KindCustom  Kind = "custom"
)

// Kinds lists every widget kind in catalog order.
var Kinds = []Kind{KindKPI, KindChart, KindGauge, KindNetwork, KindTable, KindCustom}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts user input into a Kind. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown widget kind %q", s)
	}
	return k, nil
}

// Config is the renderer-owned payload of a widget (data source, display
// mode, chart type, styling).
type Config map[string]any

// Clone returns a shallow copy of c. Nil stays nil.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	return maps.Clone(c)
}

// Widget is one item placed on the canvas.
type Widget struct {
	ID     string    `json:"id"`
	Kind   Kind      `json:"kind"`
	Title  string    `json:"title"`
	Rect   grid.Rect `json:"rect"`
	Config Config    `json:"config,omitempty"`
}

// Clone returns a copy of w that shares no mutable state with it.
func (w Widget) Clone() Widget {
	w.Config = w.Config.Clone()
	return w
}

func (w Widget) String() string {
	return fmt.Sprintf("%s[%s %q %s]", w.ID, w.Kind, w.Title, w.Rect)
}
