package widget

import "github.com/shaikhimroz/new-nfm-sub000/pkg/grid"

// Registry supplies size metadata for widget kinds. Implementations are
// called synchronously from layout operations and must not block.
type Registry interface {
	DefaultSize(kind Kind) grid.Size
	MinSize(kind Kind) grid.Size
}

// Template describes one entry of the widget library shown to users.
type Template struct {
	Kind          Kind      `json:"kind"`
	Label         string    `json:"label"`
	Description   string    `json:"description"`
	DefaultTitle  string    `json:"defaultTitle"`
	DefaultSize   grid.Size `json:"defaultSize"`
	MinSize       grid.Size `json:"minSize"`
	DefaultConfig Config    `json:"defaultConfig"`
}

// fallbackMin applies to kinds missing from a catalog.
var fallbackMin = grid.Size{W: 2, H: 2}

// Catalog is the built-in [Registry], keyed by kind.
type Catalog struct {
	templates map[Kind]Template
}

var _ Registry = (*Catalog)(nil)

// DefaultCatalog returns the standard widget library.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Template{
			Kind:          KindKPI,
			Label:         "KPI Widget",
			Description:   "Display key performance indicators with sparklines",
			DefaultTitle:  "New KPI Widget",
			DefaultSize:   grid.Size{W: 3, H: 2},
			MinSize:       grid.Size{W: 2, H: 2},
			DefaultConfig: Config{"displayMode": "single", "dataSource": "database_values"},
		},
		Template{
			Kind:          KindChart,
			Label:         "Chart Widget",
			Description:   "Interactive charts for data visualization",
			DefaultTitle:  "New Chart Widget",
			DefaultSize:   grid.Size{W: 4, H: 3},
			MinSize:       grid.Size{W: 2, H: 2},
			DefaultConfig: Config{"displayMode": "single", "dataSource": "database_values"},
		},
		Template{
			Kind:          KindGauge,
			Label:         "Gauge Widget",
			Description:   "Circular progress indicators and meters",
			DefaultTitle:  "New Gauge Widget",
			DefaultSize:   grid.Size{W: 3, H: 3},
			MinSize:       grid.Size{W: 2, H: 2},
			DefaultConfig: Config{"displayMode": "single", "dataSource": "database_values"},
		},
		Template{
			Kind:          KindNetwork,
			Label:         "Network Widget",
			Description:   "Network topology and connection monitoring",
			DefaultTitle:  "New Network Widget",
			DefaultSize:   grid.Size{W: 6, H: 4},
			MinSize:       grid.Size{W: 4, H: 3},
			DefaultConfig: Config{"displayMode": "multiple", "dataSource": "facilities"},
		},
		Template{
			Kind:          KindTable,
			Label:         "Data Table",
			Description:   "Tabular data display with sorting and filtering",
			DefaultTitle:  "New Table Widget",
			DefaultSize:   grid.Size{W: 6, H: 4},
			MinSize:       grid.Size{W: 3, H: 2},
			DefaultConfig: Config{"displayMode": "multiple", "dataSource": "database_values"},
		},
		Template{
			Kind:          KindCustom,
			Label:         "Custom Widget",
			Description:   "Build your own custom visualization",
			DefaultTitle:  "New Custom Widget",
			DefaultSize:   grid.Size{W: 4, H: 3},
			MinSize:       grid.Size{W: 2, H: 2},
			DefaultConfig: Config{"displayMode": "single", "dataSource": "database_values"},
		},
	)
}

// NewCatalog builds a catalog from templates. A later template for the same
// kind replaces an earlier one.
func NewCatalog(templates ...Template) *Catalog {
	c := &Catalog{templates: make(map[Kind]Template, len(templates))}
	for _, t := range templates {
		c.templates[t.Kind] = t
	}
	return c
}

// Lookup returns the template for kind.
func (c *Catalog) Lookup(kind Kind) (Template, bool) {
	t, ok := c.templates[kind]
	return t, ok
}

// Templates returns every template in [Kinds] order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, 0, len(c.templates))
	for _, k := range Kinds {
		if t, ok := c.templates[k]; ok {
			out = append(out, t)
		}
	}
	return out
}

// DefaultSize returns the size a new widget of kind starts with. It is never
// smaller than MinSize.
func (c *Catalog) DefaultSize(kind Kind) grid.Size {
	t, ok := c.templates[kind]
	if !ok || t.DefaultSize.IsZero() {
		return c.MinSize(kind)
	}
	return t.DefaultSize.AtLeast(c.MinSize(kind))
}

// MinSize returns the smallest span a widget of kind may be resized to.
func (c *Catalog) MinSize(kind Kind) grid.Size {
	t, ok := c.templates[kind]
	if !ok || t.MinSize.IsZero() {
		return fallbackMin
	}
	return t.MinSize.AtLeast(grid.Size{W: 1, H: 1})
}

// DefaultTitle returns the title given to a freshly added widget of kind.
func (c *Catalog) DefaultTitle(kind Kind) string {
	if t, ok := c.templates[kind]; ok && t.DefaultTitle != "" {
		return t.DefaultTitle
	}
	return "New Widget"
}

// DefaultConfig returns a fresh copy of the default payload for kind.
func (c *Catalog) DefaultConfig(kind Kind) Config {
	if t, ok := c.templates[kind]; ok {
		return t.DefaultConfig.Clone()
	}
	return nil
}
