package history

import (
	"context"
	"errors"
	"sync"

	"github.com/bryanwahyu/insight-cli/internal/domain/files"
	"github.com/bryanwahyu/insight-cli/internal/domain/session"
)

// ErrNotLoggedIn reports a history operation attempted without a session.
// No request is made in that case.
var ErrNotLoggedIn = errors.New("please log in to view file history")

// ErrDeleteInFlight rejects a second delete of an entry whose first delete
// has not come back yet.
var ErrDeleteInFlight = errors.New("delete already in progress for this file")

// Service holds the client's view of the per-user upload history. The list
// is always a wholesale snapshot of server truth at fetch time; there is no
// incremental patching besides the optimistic removal on delete.
type Service struct {
	API      files.Gateway
	Sessions session.Store

	mu       sync.Mutex
	entries  []*files.UploadedFile
	deleting map[files.FileID]bool
}

// Refresh refetches the full history. On any failure the prior list is
// treated as untrustworthy and dropped.
func (s *Service) Refresh(ctx context.Context) ([]*files.UploadedFile, error) {
	if _, ok, err := s.Sessions.Load(); err != nil || !ok {
		s.replace(nil)
		if err != nil {
			return nil, err
		}
		return nil, ErrNotLoggedIn
	}

	list, err := s.API.History(ctx)
	if err != nil {
		s.replace(nil)
		return nil, err
	}
	s.replace(list)
	return list, nil
}

// Delete destroys an uploaded file and its analysis after the confirm gate
// passes. On success the entry is removed locally without a refetch; a
// declined confirmation is a no-op.
func (s *Service) Delete(ctx context.Context, id files.FileID, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}
	if !s.beginDelete(id) {
		return ErrDeleteInFlight
	}
	defer s.endDelete(id)

	if err := s.API.Delete(ctx, id); err != nil {
		return err
	}
	s.remove(id)
	return nil
}

// Entries returns a snapshot of the current list for rendering.
func (s *Service) Entries() []*files.UploadedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*files.UploadedFile, len(s.entries))
	copy(out, s.entries)
	return out
}

// Reset drops the list. Used when leaving the logged-in state.
func (s *Service) Reset() { s.replace(nil) }

func (s *Service) replace(list []*files.UploadedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = list
}

func (s *Service) remove(id files.FileID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.entries {
		if f.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *Service) beginDelete(id files.FileID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleting[id] {
		return false
	}
	if s.deleting == nil {
		s.deleting = make(map[files.FileID]bool)
	}
	s.deleting[id] = true
	return true
}

func (s *Service) endDelete(id files.FileID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deleting, id)
}
