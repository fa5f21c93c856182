package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/threadline/pkg/feed"
	"github.com/matzehuels/threadline/pkg/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	quiet := log.NewWithOptions(io.Discard, log.Options{})
	return NewServer(pipeline.NewRunner(nil, nil, quiet), quiet)
}

func writeFeedFile(t *testing.T, f *feed.Feed) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.json")
	if err := feed.WriteFile(f, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func testFeed() *feed.Feed {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &feed.Feed{
		Version: feed.FormatVersion,
		Title:   "standup",
		Records: []feed.Record{
			{ID: "c1", Author: "ada", Body: "shipping friday?", Created: base, Score: 1},
			{ID: "c2", Parent: "c1", Author: "bob", Body: "yes", Created: base.Add(time.Minute)},
			{ID: "c3", Author: "eve", Body: "release notes drafted", Created: base.Add(2 * time.Minute), Score: 5},
		},
	}
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
	if body["version"] == "" {
		t.Error("version field should be set")
	}
}

func TestThreadEndpoint(t *testing.T) {
	s := newTestServer(t)
	path := writeFeedFile(t, testFeed())

	rec := post(t, s, "/v1/thread", `{"source": `+quoteJSON(path)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp threadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Order != "oldest" {
		t.Errorf("order = %q, want oldest", resp.Order)
	}
	if resp.Title != "standup" {
		t.Errorf("title = %q, want standup", resp.Title)
	}
	if resp.FeedHash == "" {
		t.Error("feed_hash should be set")
	}
	if resp.Stats.RecordCount != 3 || resp.Stats.EntryCount != 3 {
		t.Errorf("stats = %+v", resp.Stats)
	}

	if len(resp.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(resp.Entries))
	}
	wantIDs := []string{"c1", "c2", "c3"}
	wantDepths := []int{1, 2, 1}
	for i, e := range resp.Entries {
		if e.Record.ID != wantIDs[i] || e.Depth != wantDepths[i] {
			t.Errorf("entry %d = (%s, %d), want (%s, %d)", i, e.Record.ID, e.Depth, wantIDs[i], wantDepths[i])
		}
	}

	if len(resp.Report.Dangling) != 0 || len(resp.Report.Unrooted) != 0 {
		t.Errorf("report should be empty: %+v", resp.Report)
	}
}

func TestThreadEndpointOrderTop(t *testing.T) {
	s := newTestServer(t)
	path := writeFeedFile(t, testFeed())

	rec := post(t, s, "/v1/thread", `{"source": `+quoteJSON(path)+`, "order": "top"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp threadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Entries) == 0 || resp.Entries[0].Record.ID != "c3" {
		t.Errorf("top ordering should lead with c3: %+v", resp.Entries)
	}
}

func TestThreadEndpointReportsDangling(t *testing.T) {
	s := newTestServer(t)
	f := testFeed()
	f.Records = append(f.Records, feed.Record{
		ID: "c4", Parent: "ghost", Author: "mia", Body: "??",
		Created: time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC),
	})
	path := writeFeedFile(t, f)

	rec := post(t, s, "/v1/thread", `{"source": `+quoteJSON(path)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp threadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Entries) != 3 {
		t.Errorf("entries = %d, want 3", len(resp.Entries))
	}
	if len(resp.Report.Dangling) != 1 || resp.Report.Dangling[0] != "c4" {
		t.Errorf("dangling = %v, want [c4]", resp.Report.Dangling)
	}
}

func TestThreadEndpointInvalidOrder(t *testing.T) {
	s := newTestServer(t)
	path := writeFeedFile(t, testFeed())

	rec := post(t, s, "/v1/thread", `{"source": `+quoteJSON(path)+`, "order": "bogus"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != "INVALID_ORDER" {
		t.Errorf("code = %q, want INVALID_ORDER", resp.Code)
	}
}

func TestThreadEndpointBadBody(t *testing.T) {
	s := newTestServer(t)

	if rec := post(t, s, "/v1/thread", `{not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rec.Code)
	}
	if rec := post(t, s, "/v1/thread", `{"sauce": "feed.json"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field: status = %d, want 400", rec.Code)
	}
}

func TestRenderEndpointDefaultText(t *testing.T) {
	s := newTestServer(t)
	path := writeFeedFile(t, testFeed())

	rec := post(t, s, "/v1/render", `{"source": `+quoteJSON(path)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q, want text/plain", ct)
	}
	if rec.Header().Get("X-Feed-Hash") == "" {
		t.Error("X-Feed-Hash should be set")
	}
	if !strings.Contains(rec.Body.String(), "  bob: yes") {
		t.Errorf("body missing indented reply:\n%s", rec.Body)
	}
}

func TestRenderEndpointJSON(t *testing.T) {
	s := newTestServer(t)
	path := writeFeedFile(t, testFeed())

	rec := post(t, s, "/v1/render", `{"source": `+quoteJSON(path)+`, "formats": ["json"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q, want application/json", ct)
	}

	var doc struct {
		Entries []struct {
			Depth int `json:"depth"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Entries) != 3 {
		t.Errorf("entries = %d, want 3", len(doc.Entries))
	}
}

func TestRenderEndpointRejectsMultipleFormats(t *testing.T) {
	s := newTestServer(t)
	path := writeFeedFile(t, testFeed())

	rec := post(t, s, "/v1/render", `{"source": `+quoteJSON(path)+`, "formats": ["text", "json"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRenderEndpointUnknownFormat(t *testing.T) {
	s := newTestServer(t)
	path := writeFeedFile(t, testFeed())

	rec := post(t, s, "/v1/render", `{"source": `+quoteJSON(path)+`, "formats": ["tiff"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != "INVALID_FORMAT" {
		t.Errorf("code = %q, want INVALID_FORMAT", resp.Code)
	}
}

func TestLintEndpoint(t *testing.T) {
	s := newTestServer(t)
	f := testFeed()
	f.Records = append(f.Records, feed.Record{
		ID: "c4", Parent: "ghost", Author: "mia", Body: "??",
		Created: time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC),
	})
	path := writeFeedFile(t, f)

	rec := post(t, s, "/v1/lint", `{"source": `+quoteJSON(path)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp lintResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Clean {
		t.Error("feed with dangling ref should not be clean")
	}
	if resp.Findings != 1 {
		t.Errorf("findings = %d, want 1", resp.Findings)
	}
	if len(resp.Report.Dangling) != 1 || resp.Report.Dangling[0].RecordID != "c4" {
		t.Errorf("dangling = %+v, want c4", resp.Report.Dangling)
	}
}

func TestMissingSourceReturns404(t *testing.T) {
	s := newTestServer(t)
	missing := filepath.Join(t.TempDir(), "missing.json")

	rec := post(t, s, "/v1/render", `{"source": `+quoteJSON(missing)+`}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// quoteJSON quotes a path for embedding in a JSON body.
func quoteJSON(path string) string {
	data, _ := json.Marshal(path)
	return string(data)
}
