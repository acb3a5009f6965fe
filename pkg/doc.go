// Package pkg provides the core libraries of dashgrid, the widget layout
// engine behind the plant dashboard.
//
// # Overview
//
// A dashboard is a set of widgets arranged on a column grid. Each responsive
// breakpoint keeps its own arrangement of the same widgets, and no two
// widgets on one breakpoint may overlap. The pkg directory is organized
// bottom-up:
//
//  1. [grid] - Cell coordinates, rectangles and pixel-to-cell conversion
//  2. [collision] - Overlap tests against the widgets already placed
//  3. [placement] - First-free-slot search for new widgets
//  4. [widget] - Widget descriptors and the per-kind registry
//  5. [layout] - One breakpoint's widgets and the Mutator that edits them
//  6. [breakpoint] - The set of per-breakpoint layouts and reflow between them
//  7. [document] - The persisted JSON document, strict to parse and lenient to repair
//  8. [storage] - Key/value backends and the gateway that saves and loads sets
//  9. [editor] - A single editing session tying the above together
//
// # Architecture
//
// The typical flow of a change:
//
//	pointer drag / CLI flag / HTTP request
//	         ↓
//	    [editor] package (resolve breakpoint, apply, mark dirty)
//	         ↓
//	    [layout] Mutator (clamp, collision check, accept or revert)
//	         ↓
//	    [breakpoint] Set (adds and deletes reach every breakpoint)
//	         ↓
//	    [document] + [storage] (encode and persist on save)
//
// # Quick Start
//
// Open a session over the stored layout and add a widget:
//
//	gw := storage.NewGateway(storage.Shared(storage.NewMemoryStore()), logger)
//	ed, report, err := editor.Open(ctx, editor.Options{Gateway: gw})
//	if err != nil {
//	    return err
//	}
//
//	w, err := ed.Add("", layout.Draft{Kind: widget.KindChart})
//	_, outcome, err := ed.Move("", w.ID, grid.PixelDelta{DX: 120, DY: 0})
//	if outcome == layout.Rejected {
//	    // the target overlapped another widget; nothing changed
//	}
//	savedAt, err := ed.Save(ctx)
//
// # Supporting Packages
//
// [config] - TOML configuration with validated defaults.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hook registry for placement, storage and request
// metrics. The metrics subpackage backs it with Prometheus.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./...                 # All tests
//	go test ./pkg/layout/...      # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [grid]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/grid
// [collision]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/collision
// [placement]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/placement
// [widget]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/widget
// [layout]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/layout
// [breakpoint]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/breakpoint
// [document]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/document
// [storage]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/storage
// [editor]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/editor
// [config]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/config
// [errors]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/errors
// [observability]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/shaikhimroz/new-nfm-sub000/pkg/buildinfo
package pkg
