package dashclient

import (
	"context"
	"sync"

	"github.com/AngelCh415/zenite-dash/internal/models"
)

// DataFetcher is satisfied by *Client.
type DataFetcher interface {
	Data(ctx context.Context) (*models.DashData, error)
}

// Session keeps the last dashboard payload a consumer has seen. A failed refresh records
// the error text and keeps the previous payload. Nothing retries on its own; Reconnect is
// the manual retry.
type Session struct {
	src DataFetcher

	mu      sync.RWMutex
	data    *models.DashData
	loading bool
	err     string
}

func NewSession(src DataFetcher) *Session { return &Session{src: src} }

func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	d, err := s.src.Data(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.data, s.err = d, ""
	return nil
}

// Reconnect clears the recorded error and refreshes.
func (s *Session) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Data returns the last good payload, or nil before the first success.
func (s *Session) Data() *models.DashData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err is the text of the last failed refresh, empty after a success.
func (s *Session) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
