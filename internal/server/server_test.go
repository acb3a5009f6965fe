package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/breakpoint"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/document"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/editor"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/observability"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/storage"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

type fixture struct {
	handler http.Handler
	mem     *storage.MemoryStore
}

func newFixture(t *testing.T, autoSave bool) fixture {
	t.Helper()
	mem := storage.NewMemoryStore()
	gw := &storage.Gateway{
		Open: storage.Shared(mem),
		Now:  func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) },
	}
	n := 0
	ed := editor.New(breakpoint.DefaultSet(), editor.Options{
		Gateway: gw,
		IDGenerator: func() string {
			n++
			return "w" + string(rune('0'+n))
		},
	})
	srv := New(ed, Options{AutoSave: autoSave})
	return fixture{handler: srv.Handler(), mem: mem}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func (f fixture) add(t *testing.T, kind string) widget.Widget {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/api/layouts/lg/widgets", `{"kind":"`+kind+`"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add %s: status = %d, body = %s", kind, rr.Code, rr.Body)
	}
	return decodeBody[widget.Widget](t, rr)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)
	rr := f.do(t, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("GET /healthz = %d %s", rr.Code, rr.Body)
	}
}

func TestWidgetTypes(t *testing.T) {
	f := newFixture(t, false)
	rr := f.do(t, http.MethodGet, "/api/widget-types", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decodeBody[[]widget.Template](t, rr)
	if len(got) != len(widget.Kinds) {
		t.Fatalf("got %d templates, want %d", len(got), len(widget.Kinds))
	}
	if got[0].Kind != widget.KindKPI || got[0].MinSize != (grid.Size{W: 2, H: 2}) {
		t.Errorf("first template = %+v", got[0])
	}
}

func TestAddAndList(t *testing.T) {
	f := newFixture(t, false)
	w := f.add(t, "chart")
	if w.ID != "w1" || w.Rect != (grid.Rect{X: 0, Y: 0, W: 4, H: 3}) {
		t.Errorf("added = %+v", w)
	}

	rr := f.do(t, http.MethodGet, "/api/layouts", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	session := decodeBody[SessionResponse](t, rr)
	if session.Active != "lg" || !session.Dirty || session.SavedAt != nil {
		t.Errorf("session = %+v", session)
	}
	if len(session.Breakpoints) != 5 {
		t.Fatalf("got %d breakpoints, want 5", len(session.Breakpoints))
	}
	for _, l := range session.Breakpoints {
		if len(l.Widgets) != 1 || l.Widgets[0].ID != "w1" {
			t.Errorf("%s widgets = %+v", l.Breakpoint.Name, l.Widgets)
		}
	}

	rr = f.do(t, http.MethodGet, "/api/layouts/xxs", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET xxs status = %d", rr.Code)
	}
	xxs := decodeBody[LayoutResponse](t, rr)
	if xxs.Breakpoint.Columns != 2 || !xxs.Widgets[0].Rect.InBounds(2) {
		t.Errorf("xxs = %+v", xxs)
	}
}

func TestAddRejected(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"missing kind", "/api/layouts/lg/widgets", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown kind", "/api/layouts/lg/widgets", `{"kind":"pie"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", "/api/layouts/lg/widgets", `{"kind":"kpi","colour":"red"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed json", "/api/layouts/lg/widgets", `{"kind":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"long title", "/api/layouts/lg/widgets", `{"kind":"kpi","title":"` + strings.Repeat("x", 121) + `"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown breakpoint", "/api/layouts/huge/widgets", `{"kind":"kpi"}`, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			rr := f.do(t, http.MethodPost, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.status, rr.Body)
			}
			if got := decodeBody[ErrorResponse](t, rr); got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
		})
	}
}

func TestMoveOutcomes(t *testing.T) {
	f := newFixture(t, false)
	chart := f.add(t, "chart")
	kpi := f.add(t, "kpi")

	tests := []struct {
		name    string
		body    string
		outcome string
		rect    grid.Rect
	}{
		{"collision snaps back", `{"x":0,"y":0}`, "rejected", kpi.Rect},
		{"free cell", `{"x":8,"y":0}`, "applied", grid.Rect{X: 8, Y: 0, W: 3, H: 2}},
		{"sub-cell drag", `{"dx":5,"dy":5}`, "unchanged", grid.Rect{X: 8, Y: 0, W: 3, H: 2}},
		{"past the right edge", `{"x":20,"y":0}`, "applied", grid.Rect{X: 9, Y: 0, W: 3, H: 2}},
		{"drag far below the grid", `{"dx":0,"dy":1e300}`, "rejected", grid.Rect{X: 9, Y: 0, W: 3, H: 2}},
		{"huge drag right", `{"dx":1e300,"dy":0}`, "unchanged", grid.Rect{X: 9, Y: 0, W: 3, H: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/api/layouts/lg/widgets/"+kpi.ID+"/move", tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
			}
			got := decodeBody[MutationResponse](t, rr)
			if got.Outcome != tt.outcome || got.Widget.Rect != tt.rect {
				t.Errorf("move = %s %s, want %s %s", got.Outcome, got.Widget.Rect, tt.outcome, tt.rect)
			}
		})
	}

	rr := f.do(t, http.MethodGet, "/api/layouts/lg", "")
	l := decodeBody[LayoutResponse](t, rr)
	if l.Widgets[0].ID != chart.ID || l.Widgets[0].Rect != chart.Rect {
		t.Errorf("chart moved: %+v", l.Widgets[0])
	}
}

func TestMoveBadRequests(t *testing.T) {
	f := newFixture(t, false)
	w := f.add(t, "kpi")

	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"both forms", w.ID, `{"dx":10,"x":1,"y":1}`, http.StatusBadRequest},
		{"neither form", w.ID, `{}`, http.StatusBadRequest},
		{"x without y", w.ID, `{"x":1}`, http.StatusBadRequest},
		{"negative cell", w.ID, `{"x":-1,"y":0}`, http.StatusBadRequest},
		{"row past the grid", w.ID, `{"x":0,"y":3000000000}`, http.StatusBadRequest},
		{"unknown widget", "nope", `{"x":1,"y":0}`, http.StatusNotFound},
		{"bad id", "bad%20id", `{"x":1,"y":0}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/api/layouts/lg/widgets/"+tt.id+"/move", tt.body)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.status, rr.Body)
			}
		})
	}
}

func TestResize(t *testing.T) {
	f := newFixture(t, false)
	w := f.add(t, "chart")

	rr := f.do(t, http.MethodPost, "/api/layouts/lg/widgets/"+w.ID+"/resize", `{"w":6,"h":4}`)
	got := decodeBody[MutationResponse](t, rr)
	if got.Outcome != "applied" || got.Widget.Rect != (grid.Rect{X: 0, Y: 0, W: 6, H: 4}) {
		t.Errorf("resize = %+v", got)
	}

	rr = f.do(t, http.MethodPost, "/api/layouts/lg/widgets/"+w.ID+"/resize", `{"w":1,"h":1}`)
	got = decodeBody[MutationResponse](t, rr)
	if got.Widget.Rect.Size() != (grid.Size{W: 2, H: 2}) {
		t.Errorf("resize below minimum = %+v, want clamped to 2x2", got.Widget.Rect)
	}

	rr = f.do(t, http.MethodPost, "/api/layouts/lg/widgets/"+w.ID+"/resize", `{"w":0,"h":3}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("zero width status = %d, want 400", rr.Code)
	}

	rr = f.do(t, http.MethodPost, "/api/layouts/lg/widgets/"+w.ID+"/resize", `{"w":2,"h":20000}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("taller than the grid status = %d, want 400", rr.Code)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t, false)
	w := f.add(t, "gauge")
	path := "/api/layouts/lg/widgets/" + w.ID

	rr := f.do(t, http.MethodPut, path, `{"title":"Tank 3 level","config":{"unit":"m"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rr.Code, rr.Body)
	}
	updated := decodeBody[widget.Widget](t, rr)
	if updated.Title != "Tank 3 level" || updated.Config["unit"] != "m" || updated.Rect != w.Rect {
		t.Errorf("update = %+v", updated)
	}

	rr = f.do(t, http.MethodGet, "/api/layouts/sm", "")
	if sm := decodeBody[LayoutResponse](t, rr); sm.Widgets[0].Title != "Tank 3 level" {
		t.Errorf("title not propagated to sm: %+v", sm.Widgets[0])
	}

	if rr := f.do(t, http.MethodPut, path, `{}`); rr.Code != http.StatusBadRequest {
		t.Errorf("empty update status = %d, want 400", rr.Code)
	}
	if rr := f.do(t, http.MethodDelete, path, ""); rr.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rr.Code)
	}
	if rr := f.do(t, http.MethodDelete, path, ""); rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

func TestReorderRoute(t *testing.T) {
	f := newFixture(t, false)
	first := f.add(t, "kpi")
	second := f.add(t, "kpi")

	rr := f.do(t, http.MethodPut, "/api/layouts/lg/widgets/reorder",
		`{"activeId":"`+second.ID+`","overId":"`+first.ID+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	l := decodeBody[LayoutResponse](t, rr)
	ids := []string{l.Widgets[0].ID, l.Widgets[1].ID}
	if diff := cmp.Diff([]string{second.ID, first.ID}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	rr = f.do(t, http.MethodGet, "/api/layouts/md", "")
	md := decodeBody[LayoutResponse](t, rr)
	if md.Widgets[0].ID != first.ID {
		t.Errorf("reorder leaked into md: %+v", md.Widgets)
	}

	if rr := f.do(t, http.MethodPut, "/api/layouts/lg/widgets/reorder", `{"activeId":"w1"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("missing overId status = %d, want 400", rr.Code)
	}
}

func TestSaveLoadExportImport(t *testing.T) {
	f := newFixture(t, false)
	f.add(t, "chart")

	if rr := f.do(t, http.MethodPost, "/api/load", ""); rr.Code != http.StatusNotFound {
		t.Errorf("load before save status = %d, want 404", rr.Code)
	}

	rr := f.do(t, http.MethodPost, "/api/save", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", rr.Code, rr.Body)
	}
	if _, err := f.mem.Get(context.Background(), storage.DefaultKey); err != nil {
		t.Fatalf("nothing stored: %v", err)
	}

	f.add(t, "kpi")
	rr = f.do(t, http.MethodPost, "/api/load", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("load status = %d, body = %s", rr.Code, rr.Body)
	}
	rr = f.do(t, http.MethodGet, "/api/layouts/lg", "")
	if l := decodeBody[LayoutResponse](t, rr); len(l.Widgets) != 1 {
		t.Errorf("after load got %d widgets, want 1", len(l.Widgets))
	}

	rr = f.do(t, http.MethodGet, "/api/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "dashboard-config-") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	exported := rr.Body.String()

	rr = f.do(t, http.MethodPost, "/api/import", exported)
	if rr.Code != http.StatusOK {
		t.Errorf("import status = %d, body = %s", rr.Code, rr.Body)
	}

	rr = f.do(t, http.MethodPost, "/api/import", `{"breakpoints":{"lg":{"columns":12,"widgets":[{"id":"a"}]}}}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad import status = %d, want 422", rr.Code)
	}
	if got := decodeBody[ErrorResponse](t, rr); got.Code != "LOAD_ERROR" || len(got.Problems) == 0 {
		t.Errorf("bad import body = %+v", got)
	}
	rr = f.do(t, http.MethodGet, "/api/layouts/lg", "")
	if l := decodeBody[LayoutResponse](t, rr); len(l.Widgets) != 1 {
		t.Errorf("rejected import changed the session: %+v", l.Widgets)
	}
}

func TestAutoSave(t *testing.T) {
	f := newFixture(t, true)
	f.add(t, "table")

	data, err := f.mem.Get(context.Background(), storage.DefaultKey)
	if err != nil {
		t.Fatalf("auto-save did not store: %v", err)
	}
	set, _, err := document.Loader{}.Load(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"w1"}, set.Layouts["lg"].IDs()); diff != "" {
		t.Errorf("stored ids mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve(t *testing.T) {
	f := newFixture(t, false)
	tests := []struct {
		query  string
		status int
		name   string
	}{
		{"width=1920", http.StatusOK, "lg"},
		{"width=800", http.StatusOK, "sm"},
		{"width=100", http.StatusOK, "xxs"},
		{"width=wide", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := f.do(t, http.MethodGet, "/api/resolve?"+tt.query, "")
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			if got := decodeBody[breakpoint.Breakpoint](t, rr); got.Name != tt.name {
				t.Errorf("resolved %q, want %q", got.Name, tt.name)
			}
		})
	}

	rr := f.do(t, http.MethodGet, "/api/layouts", "")
	if s := decodeBody[SessionResponse](t, rr); s.Active != "xxs" {
		t.Errorf("active = %q, want last resolved xxs", s.Active)
	}
}

type httpRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (h *httpRecorder) OnRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route+" "+http.StatusText(status))
}

func TestRequestHooksUseRoutePattern(t *testing.T) {
	rec := &httpRecorder{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	f := newFixture(t, false)
	w := f.add(t, "kpi")
	f.do(t, http.MethodDelete, "/api/layouts/lg/widgets/"+w.ID, "")

	want := []string{
		"POST /api/layouts/{bp}/widgets Created",
		"DELETE /api/layouts/{bp}/widgets/{id} No Content",
	}
	if diff := cmp.Diff(want, rec.routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
}
