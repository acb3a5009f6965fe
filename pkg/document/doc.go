// Package document converts a breakpoint set to and from its persisted JSON
// form.
//
// # JSON Format
//
// A document holds one entry per breakpoint and the time it was saved:
//
//	{
//	  "breakpoints": {
//	    "lg": {
//	      "columns": 12,
//	      "minWidth": 1200,
//	      "widgets": [
//	        {"id": "0b8f…", "kind": "chart", "title": "Flow", "x": 0, "y": 0, "w": 4, "h": 3,
//	         "config": {"dataSource": "database_values"}}
//	      ]
//	    }
//	  },
//	  "savedAt": "2024-05-01T09:30:00Z"
//	}
//
// Widgets are listed in layout order. config is owned by the renderer and
// is carried through untouched.
//
// # Loading
//
// [Load] is strict about structure and lenient about placement:
//
//   - Invalid JSON, missing required fields, non-integer or out-of-bounds
//     rect values, unknown widget kinds and invalid column counts make the
//     whole document unusable. Load returns a [*LoadError] listing every
//     problem together with an empty default set, so callers always have a
//     usable layout.
//   - A widget overlapping an earlier widget, or repeating an earlier id, is
//     dropped. Earlier widgets win. Each drop is reported as a [Warning].
//   - A widget smaller than its kind's minimum is grown, with a warning.
//   - Breakpoints that disagree on the widget id set are repaired from the
//     widest breakpoint, again with a warning per added or removed widget.
//
// # Export and Import
//
// [Export] and [Import] use the same format for file-based transfer, and
// Import runs the same validation as Load. [ExportFileName] gives the
// conventional download name.
package document
