package source

import (
	"context"

	apperrors "github.com/matzehuels/threadline/pkg/errors"
	"github.com/matzehuels/threadline/pkg/feed"
)

// FileSource reads a feed from a local JSON or YAML file.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the given file path.
func NewFileSource(path string) (*FileSource, error) {
	if err := apperrors.ValidatePath(path); err != nil {
		return nil, err
	}
	return &FileSource{path: path}, nil
}

// Fetch reads and decodes the file. The format is chosen by extension;
// anything that is not .yaml/.yml is read as JSON.
func (s *FileSource) Fetch(ctx context.Context) (*feed.Feed, error) {
	return observeFetch(ctx, "file", s.path, func() (*feed.Feed, error) {
		return feed.ReadFile(s.path)
	})
}

// Close does nothing for file sources.
func (s *FileSource) Close() error {
	return nil
}

// Ensure FileSource implements Source.
var _ Source = (*FileSource)(nil)
