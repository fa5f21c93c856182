package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/matzehuels/threadline/pkg/buildinfo"
	"github.com/matzehuels/threadline/pkg/cache"
	apperrors "github.com/matzehuels/threadline/pkg/errors"
	"github.com/matzehuels/threadline/pkg/feed"
	"github.com/matzehuels/threadline/pkg/pipeline"
)

// threadEntry pairs a record with its 1-based nesting depth.
type threadEntry struct {
	Record feed.Record `json:"record"`
	Depth  int         `json:"depth"`
}

// threadReport mirrors thread.Report with lower-case keys.
type threadReport struct {
	Dangling []string `json:"dangling,omitempty"`
	Unrooted []string `json:"unrooted,omitempty"`
}

type threadStats struct {
	RecordCount int   `json:"record_count"`
	EntryCount  int   `json:"entry_count"`
	LoadMS      int64 `json:"load_ms"`
	ThreadMS    int64 `json:"thread_ms"`
}

type threadCache struct {
	LoadHit   bool `json:"load_hit"`
	ThreadHit bool `json:"thread_hit"`
}

type threadResponse struct {
	FeedHash string        `json:"feed_hash"`
	Title    string        `json:"title,omitempty"`
	Order    string        `json:"order"`
	Entries  []threadEntry `json:"entries"`
	Report   threadReport  `json:"report"`
	Stats    threadStats   `json:"stats"`
	Cache    threadCache   `json:"cache"`
}

type lintResponse struct {
	Clean    bool        `json:"clean"`
	Findings int         `json:"findings"`
	Report   feed.Report `json:"report"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// decodeOptions reads a pipeline.Options request body. Unknown fields are
// rejected so option typos fail loudly instead of silently doing nothing.
func decodeOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return opts, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return opts, nil
}

// handleThread loads and threads a source without rendering it.
func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	opts, err := decodeOptions(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	// Reject bad options before touching the source.
	if err := opts.ValidateForLoad(); err != nil {
		writeError(w, err)
		return
	}
	if err := opts.ValidateForThread(); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	loadStart := time.Now()
	f, loadHit, err := s.runner.LoadWithCacheInfo(ctx, opts)
	loadTime := time.Since(loadStart)
	if err != nil {
		writeError(w, err)
		return
	}

	threadStart := time.Now()
	res, threadHit, err := s.runner.ThreadWithCacheInfo(ctx, f, opts)
	threadTime := time.Since(threadStart)
	if err != nil {
		writeError(w, err)
		return
	}

	var feedHash string
	if data, err := feed.Marshal(f); err == nil {
		feedHash = cache.Hash(data)
	}

	entries := make([]threadEntry, len(res.Entries))
	for i, e := range res.Entries {
		entries[i] = threadEntry{Record: e.Item, Depth: e.Depth}
	}

	writeJSON(w, http.StatusOK, threadResponse{
		FeedHash: feedHash,
		Title:    f.Title,
		Order:    opts.Order,
		Entries:  entries,
		Report:   threadReport{Dangling: res.Report.Dangling, Unrooted: res.Report.Unrooted},
		Stats: threadStats{
			RecordCount: f.Len(),
			EntryCount:  len(res.Entries),
			LoadMS:      loadTime.Milliseconds(),
			ThreadMS:    threadTime.Milliseconds(),
		},
		Cache: threadCache{LoadHit: loadHit, ThreadHit: threadHit},
	})
}

// handleRender runs the full pipeline and returns the artifact raw, with a
// Content-Type matching the format. One format per request; clients wanting
// several formats issue several requests and let the cache do the work.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := decodeOptions(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(opts.Formats) > 1 {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput,
			"render accepts one format per request, got %d", len(opts.Formats)))
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	format := pipeline.DefaultFormat
	if len(opts.Formats) == 1 {
		format = opts.Formats[0]
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	w.Header().Set("X-Feed-Hash", result.FeedHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// handleLint loads a source and reports structural problems without
// threading or rendering it.
func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	opts, err := decodeOptions(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	f, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	report := feed.Lint(f)
	writeJSON(w, http.StatusOK, lintResponse{
		Clean:    report.Clean(),
		Findings: report.Total(),
		Report:   report,
	})
}

// contentTypeFor maps formats onto response content types.
func contentTypeFor(format string) string {
	switch format {
	case feed.FormatJSON:
		return "application/json; charset=utf-8"
	case feed.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case feed.FormatSVG:
		return "image/svg+xml"
	case feed.FormatPNG:
		return "image/png"
	}
	return "text/plain; charset=utf-8"
}
