// Package pipeline provides the core threading pipeline for Threadline.
//
// This package implements the complete load → thread → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Fetch records from a source (file, HTTP endpoint, or database)
//  2. Thread: Arrange records into hierarchical display order
//  3. Render: Generate output in various formats (text, JSON, DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  "feed.json",
//	    Order:   "top",
//	    Formats: []string{"text"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	text := result.Artifacts["text"]
//
// Run individual stages:
//
//	// Load only
//	f, err := runner.Load(ctx, opts)
//
//	// Thread an existing feed
//	res, err := runner.Thread(ctx, f, opts)
//
//	// Render with existing entries
//	artifacts, err := runner.Render(ctx, res, f, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/threadline/pkg/cache"
	apperrors "github.com/matzehuels/threadline/pkg/errors"
	"github.com/matzehuels/threadline/pkg/feed"
	"github.com/matzehuels/threadline/pkg/render"
	"github.com/matzehuels/threadline/pkg/thread"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultMaxRecords is the maximum number of records to load from a source.
// Feeds larger than this are truncated to keep threading and rendering
// responsive. API users can override this by setting MaxRecords explicitly.
const DefaultMaxRecords = 5000

// DefaultOrder is the default sibling ordering.
const DefaultOrder = string(feed.OrderOldest)

// DefaultStyle is the default text style.
const DefaultStyle = render.StylePlain

// DefaultFormat is the default output format.
const DefaultFormat = feed.FormatText

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	feed.FormatText: true,
	feed.FormatJSON: true,
	feed.FormatDOT:  true,
	feed.FormatSVG:  true,
	feed.FormatPNG:  true,
}

// ValidStyles is the set of supported text styles.
var ValidStyles = render.ValidStyles

// ValidOrders is the set of supported sibling orderings.
var ValidOrders = func() map[string]bool {
	m := make(map[string]bool, 3)
	for _, o := range feed.Orders() {
		m[string(o)] = true
	}
	return m
}()

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the threading pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source     string `json:"source"`
	Collection string `json:"collection,omitempty"`  // Table or collection for database sources
	MaxRecords int    `json:"max_records,omitempty"` // Zero applies DefaultMaxRecords, negative disables the cap
	Refresh    bool   `json:"refresh,omitempty"`
	Title      string `json:"title,omitempty"`       // Overrides the feed title after load

	// Thread options
	Order string `json:"order,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Style    string   `json:"style,omitempty"`
	MaxDepth int      `json:"max_depth,omitempty"` // Display depth cap, zero means uncapped
	Width    int      `json:"width,omitempty"`     // Text line width in cells, zero means no truncation

	// Runtime options (not serialized)
	Logger  *log.Logger       `json:"-"`
	Headers map[string]string `json:"-"` // Extra HTTP headers for http sources

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Feed is the loaded record collection.
	Feed *feed.Feed

	// FeedHash is the content hash of the feed.
	FeedHash string

	// Entries is the threaded display order.
	Entries []feed.Entry

	// Report names the records threading dropped.
	Report thread.Report[string]

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// ThreadResult is the output of the threading stage. It serializes as JSON
// so cached threads round-trip with their reports intact.
type ThreadResult struct {
	Entries []feed.Entry          `json:"entries"`
	Report  thread.Report[string] `json:"report"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RecordCount int
	EntryCount  int
	LoadTime    time.Duration
	ThreadTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the feed came from cache
	ThreadHit bool // Whether the threaded entries came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: text, json, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"invalid style: %q (must be one of: plain, color)", style)
	}
	return nil
}

// ValidateOrder checks that an ordering is valid.
func ValidateOrder(order string) error {
	if !ValidOrders[order] {
		return apperrors.New(apperrors.ErrCodeInvalidOrder,
			"invalid order: %q (must be one of: oldest, newest, top)", order)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetThreadDefaults()
	o.SetRenderDefaults()
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading.
func (o *Options) ValidateForLoad() error {
	if o.Source == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "source is required")
	}

	// Load defaults
	if o.MaxRecords == 0 {
		o.MaxRecords = DefaultMaxRecords
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetThreadDefaults sets default values for threading.
func (o *Options) SetThreadDefaults() {
	if o.Order == "" {
		o.Order = DefaultOrder
	}
	// Order is matched exactly downstream; fold config and API input to
	// the canonical lowercase names.
	if ord, err := feed.ParseOrder(o.Order); err == nil {
		o.Order = string(ord)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForThread validates and sets defaults for threading.
func (o *Options) ValidateForThread() error {
	o.SetThreadDefaults()
	return ValidateOrder(o.Order)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// FeedKeyOpts returns cache key options for feed loading.
func (o *Options) FeedKeyOpts() cache.FeedKeyOpts {
	return cache.FeedKeyOpts{
		MaxRecords: o.MaxRecords,
		Title:      o.Title,
	}
}

// ThreadKeyOpts returns cache key options for threading.
func (o *Options) ThreadKeyOpts() cache.ThreadKeyOpts {
	return cache.ThreadKeyOpts{
		Order: o.Order,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Style:    o.Style,
		MaxDepth: o.MaxDepth,
		Width:    o.Width,
	}
}
