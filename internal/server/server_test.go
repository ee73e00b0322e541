package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wbsgen/pkg/cache"
	"github.com/matzehuels/wbsgen/pkg/pipeline"
	"github.com/matzehuels/wbsgen/pkg/store"
)

const testOutline = "Plan\n1 Project\n1.1 Scope\n1.2 Build\n1.2.1 Code\n"

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	logger := log.New(io.Discard)
	st := store.NewMemoryStore()
	runner := pipeline.NewRunner(cache.NewMemoryCache(64), nil, logger)
	t.Cleanup(func() { runner.Close() })
	return New(runner, st, logger, Options{}), st
}

func do(t *testing.T, srv http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["status"] != "ok" || body["version"] == "" {
		t.Errorf("body = %v, want status ok and a version", body)
	}
}

func TestLayout(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := `{"name":"plan","lines":["Plan","1 Project","1.2 Build","1.1 Scope","1.3.1 Lost"]}`
	rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/layout", strings.NewReader(payload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	resp := decode[layoutResponse](t, rec)
	var codes []string
	for _, g := range resp.Geometry {
		codes = append(codes, g.Code)
	}
	if got, want := strings.Join(codes, ","), "1,1.1,1.2"; got != want {
		t.Errorf("geometry codes = %s, want %s", got, want)
	}
	if len(resp.Report.Orphans) != 1 || !resp.Report.Orphans[0].Dropped {
		t.Errorf("report = %+v, want one dropped orphan", resp.Report)
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("warnings = %v, want one", resp.Warnings)
	}
}

func TestLayoutErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name    string
		payload string
		status  int
		code    string
	}{
		{"bad json", `{"lines":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"no items", `{"lines":["nothing"]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed", `{"lines":["1 A","1..2 B"]}`, http.StatusBadRequest, "MALFORMED_CODE"},
		{"strict orphan", `{"lines":["1 A","1.2.1 B"],"orphans":"strict"}`, http.StatusBadRequest, "ORPHAN_NODE"},
		{"bad policy", `{"lines":["1 A"],"orphans":"keep"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"config out of range", `{"lines":["1 A"],"config":"[block]\nwidth = -1.0\n"}`, http.StatusBadRequest, "CONFIG_OUT_OF_RANGE"},
		{"bad name", `{"name":"a/b","lines":["1 A"]}`, http.StatusBadRequest, "INVALID_NAME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/layout", strings.NewReader(tt.payload)))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if body := decode[errorBody](t, rec); body.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", body.Code, tt.code, body.Error)
			}
		})
	}
}

func TestUploadLifecycle(t *testing.T) {
	srv, st := newTestServer(t)

	rec := do(t, srv, uploadRequest(t, "roadmap.txt", testOutline, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	doc := decode[store.Document](t, rec)
	if doc.ID == "" || doc.Name != "roadmap" || doc.Source != "roadmap.txt" {
		t.Errorf("doc = %+v, want id, name roadmap, source roadmap.txt", doc)
	}
	if len(doc.Geometry) != 4 {
		t.Errorf("geometry = %d boxes, want 4", len(doc.Geometry))
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/layouts", nil))
	summaries := decode[[]store.Summary](t, rec)
	if len(summaries) != 1 || summaries[0].ID != doc.ID || summaries[0].Items != 4 {
		t.Errorf("list = %+v, want the uploaded document", summaries)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/layouts/"+doc.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	if got := decode[store.Document](t, rec); got.Name != "roadmap" {
		t.Errorf("get name = %q, want roadmap", got.Name)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/layouts/"+doc.ID+"/render/svg?guide", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("render status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != "inline; filename=roadmap.svg" {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("render body is not svg")
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/layouts/"+doc.ID+"/render/json", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"units"`) {
		t.Errorf("json render = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/layouts/"+doc.ID+"/render/gif", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("gif render status = %d, want 400", rec.Code)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/layouts/"+doc.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if _, err := st.Get(t.Context(), doc.ID); err == nil {
		t.Error("document still stored after delete")
	}
	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/layouts/"+doc.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestUploadWithConfig(t *testing.T) {
	srv, _ := newTestServer(t)

	fields := map[string]string{
		"name":    "custom",
		"config":  "[block]\nwidth = 20.0\n",
		"orphans": "adopt",
	}
	rec := do(t, srv, uploadRequest(t, "plan.md", "- 1 Project\n- 1.1 Scope\n- 1.1.2.1 Deep\n", fields))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	doc := decode[store.Document](t, rec)
	if doc.Name != "custom" {
		t.Errorf("Name = %q, want custom", doc.Name)
	}
	if doc.Config.WBSWidth != 20.0 {
		t.Errorf("WBSWidth = %v, want 20", doc.Config.WBSWidth)
	}
	if doc.Orphans != "adopt" || len(doc.Geometry) != 3 {
		t.Errorf("Orphans = %q with %d boxes, want adopt with 3", doc.Orphans, len(doc.Geometry))
	}
}

func TestUploadErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, uploadRequest(t, "plan.exe", testOutline, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported file status = %d, want 400", rec.Code)
	}
	if body := decode[errorBody](t, rec); body.Code != "UNSUPPORTED_FORMAT" {
		t.Errorf("code = %q, want UNSUPPORTED_FORMAT", body.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	if rec := do(t, srv, req); rec.Code != http.StatusBadRequest {
		t.Errorf("non-multipart status = %d, want 400", rec.Code)
	}
}

func TestUploadTooLarge(t *testing.T) {
	logger := log.New(io.Discard)
	srv := New(pipeline.NewRunner(nil, nil, logger), store.NewMemoryStore(), logger, Options{MaxUploadBytes: 64})

	rec := do(t, srv, uploadRequest(t, "plan.txt", strings.Repeat("1 Project\n", 50), nil))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413: %s", rec.Code, rec.Body.String())
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{
		"/api/layouts/6f1c2d9e-4b7a-4e0b-9a55-0c7d3f1e2a10",
		"/api/layouts/not-a-uuid",
		"/api/layouts/6f1c2d9e-4b7a-4e0b-9a55-0c7d3f1e2a10/render/svg",
	} {
		rec := do(t, srv, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
}
