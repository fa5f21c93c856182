package render

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/threadline/pkg/feed"
)

// jsonEntry pairs a record with its display depth.
type jsonEntry struct {
	Record feed.Record `json:"record"`
	Depth  int         `json:"depth"`
}

// jsonDoc is the JSON artifact envelope.
type jsonDoc struct {
	Version int         `json:"version"`
	Title   string      `json:"title,omitempty"`
	Entries []jsonEntry `json:"entries"`
}

// JSON renders the thread as a JSON document: records in display order,
// each with its nesting depth. Consumers can rebuild the indentation from
// the depth alone, in input order, without re-threading.
func JSON(f *feed.Feed, entries []feed.Entry) ([]byte, error) {
	doc := jsonDoc{
		Version: feed.FormatVersion,
		Entries: make([]jsonEntry, 0, len(entries)),
	}
	if f != nil {
		doc.Title = f.Title
	}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, jsonEntry{Record: e.Item, Depth: e.Depth})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal thread: %w", err)
	}
	return append(data, '\n'), nil
}
