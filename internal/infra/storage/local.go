package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalSink writes downloaded files into a directory on the user's
// filesystem. Implements download.Sink.
type LocalSink struct {
	Dir string
}

func (s *LocalSink) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	// Base strips any path the server smuggled into the suggested name.
	dest := filepath.Join(s.Dir, filepath.Base(filename))

	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dest)
		return "", err
	}
	return dest, nil
}
