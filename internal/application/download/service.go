package download

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bryanwahyu/insight-cli/internal/domain/files"
)

// Sink receives a downloaded binary and stores it under the given name.
// The local-filesystem sink is the default; an object-storage sink exists
// for headless use.
type Sink interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// Service retrieves rendered analyses (pdf/txt) or original uploads and
// hands the bytes to the configured sink. One attempt per invocation, no
// retry.
type Service struct {
	API  files.Gateway
	Sink Sink
}

// Download fetches the target in the given format. For pdf/txt the id is a
// ResultID, for original a FileID; sourceName is the uploaded file's name
// and drives the stored filename. Returns the sink's stored location.
func (s *Service) Download(ctx context.Context, id int64, format files.Format, sourceName string) (string, error) {
	if !format.Valid() {
		return "", fmt.Errorf("unsupported download format: %s", format)
	}
	body, contentType, err := s.API.Download(ctx, id, format)
	if err != nil {
		return "", err
	}
	defer body.Close()

	return s.Sink.Save(ctx, SuggestedFilename(format, sourceName), contentType, body)
}

// SuggestedFilename follows the service's naming convention: rendered
// analyses are saved as ai_analysis_<base>.<format>, originals keep their
// own name. The base is everything before the first dot.
func SuggestedFilename(format files.Format, sourceName string) string {
	if format == files.FormatOriginal {
		return sourceName
	}
	base, _, _ := strings.Cut(sourceName, ".")
	return fmt.Sprintf("ai_analysis_%s.%s", base, format)
}
