package nut

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Compile-time interface check.
var _ Source = (*FileSource)(nil)

// FileSource reads a captured upsc listing from disk instead of talking to
// a live NUT server. Used for development and testing against recorded
// samples.
type FileSource struct {
	path string
	log  zerolog.Logger
}

// NewFileSource returns a FileSource reading from path on every fetch.
func NewFileSource(path string, log zerolog.Logger) *FileSource {
	return &FileSource{path: path, log: log}
}

// Fetch re-reads the sample file so edits show up on the next poll cycle.
func (s *FileSource) Fetch(_ context.Context) (map[string]string, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("nut: read sample file: %w", err)
	}
	s.log.Debug().Str("path", s.path).Int("bytes", len(content)).Msg("read sample file")

	vars := Parse(string(content))
	if len(vars) == 0 {
		return nil, ErrNoData
	}
	return vars, nil
}
