// Package api serves the daemon's status over HTTP: the most recent window,
// the window being accumulated, recent classifier results and metrics.
package api

import (
	"sync"

	"Go2NetWindow/internal/model"
)

// DefaultMaxResults bounds the results kept by a Store created with a
// non-positive size.
const DefaultMaxResults = 100

// Store keeps the latest window and the most recent results. It is both a
// model.Writer and a model.ResultObserver.
type Store struct {
	mu         sync.RWMutex
	latest     *model.Window
	results    []model.Result
	maxResults int
}

func NewStore(maxResults int) *Store {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Store{maxResults: maxResults}
}

func (s *Store) Name() string {
	return "api"
}

// Write records w as the latest window.
func (s *Store) Write(w *model.Window) error {
	cp := *w
	s.mu.Lock()
	s.latest = &cp
	s.mu.Unlock()
	return nil
}

// OnResult appends r, evicting the oldest result once full.
func (s *Store) OnResult(r model.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == s.maxResults {
		copy(s.results, s.results[1:])
		s.results = s.results[:len(s.results)-1]
	}
	s.results = append(s.results, r)
}

// Latest returns the most recently written window.
func (s *Store) Latest() (model.Window, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return model.Window{}, false
	}
	return *s.latest, true
}

// Results returns up to limit of the newest results, oldest first. A
// non-positive limit returns all of them.
func (s *Store) Results(limit int) []model.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(s.results) {
		start = len(s.results) - limit
	}
	return append([]model.Result(nil), s.results[start:]...)
}
