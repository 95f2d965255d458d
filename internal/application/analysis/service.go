package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bryanwahyu/insight-cli/internal/application"
	"github.com/bryanwahyu/insight-cli/internal/domain/apierrors"
	domain "github.com/bryanwahyu/insight-cli/internal/domain/analysis"
	"github.com/bryanwahyu/insight-cli/internal/domain/files"
)

// ErrJobRunning rejects an analyze call while another one is in flight.
// Jobs are rejected, never queued.
var ErrJobRunning = errors.New("an analysis is already running")

// Service implements the upload-and-analyze use-case and is the single place
// enforcing "at most one in-flight analysis".
type Service struct {
	API   files.Gateway
	Clock application.Clock

	// OnAnalyzed fires after a successful analysis; wired to the history
	// refresh.
	OnAnalyzed func(ctx context.Context)

	mu  sync.Mutex
	job domain.Job
}

// Validate rejects a candidate file whose extension is missing or outside
// the accepted set. No request is made for rejected files.
func (s *Service) Validate(fileName string) error {
	if filepath.Ext(fileName) == "" || !domain.Allowed(fileName) {
		return &apierrors.ValidationError{
			FileName: fileName,
			Reason: fmt.Sprintf("%q is not supported. Please use: %s",
				fileName, strings.Join(domain.Extensions(), ", ")),
		}
	}
	return nil
}

// Analyze validates the file, builds the category prompt, and runs the
// single analyze request. The running guard is released on every outcome.
func (s *Service) Analyze(ctx context.Context, fileName string, content io.Reader) (*files.UploadedFile, error) {
	if err := s.Validate(fileName); err != nil {
		return nil, err
	}
	category := domain.Classify(fileName)
	if !s.begin(fileName, category) {
		return nil, ErrJobRunning
	}

	uploaded, err := s.API.Analyze(ctx, fileName, content, domain.Prompt(category, fileName))
	if err != nil {
		s.finish(domain.StatusFailed, nil, err)
		return nil, err
	}
	s.finish(domain.StatusSucceeded, uploaded, nil)

	if s.OnAnalyzed != nil {
		s.OnAnalyzed(ctx)
	}
	return uploaded, nil
}

// Job returns a snapshot of the current job for rendering.
func (s *Service) Job() domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job
}

// Reset returns the job state to idle. Used when leaving the logged-in
// state; a running job keeps its guard until it finishes.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job.Status != domain.StatusRunning {
		s.job = domain.Job{Status: domain.StatusIdle}
	}
}

func (s *Service) begin(fileName string, category domain.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job.Status == domain.StatusRunning {
		return false
	}
	s.job = domain.Job{
		FileName:  fileName,
		Category:  category,
		Status:    domain.StatusRunning,
		StartedAt: s.Clock.Now(),
	}
	return true
}

func (s *Service) finish(status domain.JobStatus, uploaded *files.UploadedFile, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job.Status = status
	if uploaded != nil {
		s.job.FileID = uploaded.ID
		s.job.Result = uploaded.AIResponse
	}
	if err != nil {
		s.job.Err = err.Error()
	}
}
