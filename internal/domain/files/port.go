package files

import (
	"context"
	"io"
)

// Gateway port (authenticated file operations against the remote API)
type Gateway interface {
	// Analyze uploads the file bytes together with the analysis prompt and
	// returns the server-created record, analysis included.
	Analyze(ctx context.Context, filename string, content io.Reader, prompt string) (*UploadedFile, error)
	// History returns the caller's uploads, most recent first.
	History(ctx context.Context) ([]*UploadedFile, error)
	// Delete destroys an uploaded file and its analysis.
	Delete(ctx context.Context, id FileID) error
	// Download streams the binary body for the given target and format and
	// reports the response content type. The caller closes the body.
	Download(ctx context.Context, id int64, format Format) (io.ReadCloser, string, error)
}
