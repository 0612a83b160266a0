package expectation

import (
	"sync"

	"github.com/google/uuid"

	"github.com/imposter-project/imposter-expect/internal/exchange"
	"github.com/imposter-project/imposter-expect/internal/matcher"
	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// Expectation is a registered expectation together with its live budget
type Expectation struct {
	ID       string
	Request  *model.HttpRequest
	Response *model.HttpResponse
	Forward  *model.HttpForward
	Times    *Times
}

// Snapshot returns the wire form, with the budget as it stands now.
func (e *Expectation) Snapshot() *model.Expectation {
	return &model.Expectation{
		ID:           e.ID,
		HttpRequest:  e.Request,
		HttpResponse: e.Response,
		HttpForward:  e.Forward,
		Times:        e.Times.Snapshot(),
	}
}

// Store holds expectations in registration order. Lookups run under a read
// lock and consume budget atomically; structural changes take the write lock,
// so a clear or reset is never observed half applied.
type Store struct {
	mu           sync.RWMutex
	expectations []*Expectation
}

func NewStore() *Store {
	return &Store{}
}

// Register validates e and appends it, returning its id. An expectation that
// carries the id of an existing one replaces it in place.
func (s *Store) Register(e *model.Expectation) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}
	entry := &Expectation{
		ID:       id,
		Request:  e.HttpRequest,
		Response: e.HttpResponse,
		Forward:  e.HttpForward,
		Times:    NewTimes(e.Times),
	}
	if entry.Request == nil {
		entry.Request = model.Request()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.expectations {
		if existing.ID == id {
			s.expectations[i] = entry
			logger.Debugf("updated expectation %s", id)
			return id, nil
		}
	}
	s.expectations = append(s.expectations, entry)
	logger.Debugf("registered expectation %s for %s %s, times: %s", id, entry.Request.Method, entry.Request.Path, entry.Times.Snapshot())
	return id, nil
}

// FindMatch returns the first registered, non-exhausted expectation matching
// req and consumes one use of its budget. It returns nil if none match.
func (s *Store) FindMatch(req *exchange.Request) *Expectation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.expectations {
		if !e.Times.Active() {
			continue
		}
		if !matcher.MatchRequest(e.Request, req) {
			continue
		}
		if e.Times.TryConsume() {
			logger.Tracef("request %s %s matched expectation %s", req.Method, req.Path, e.ID)
			return e
		}
	}
	return nil
}

// Clear removes every expectation selected by criteria and returns how many
// were removed. Nil or empty criteria remove everything.
func (s *Store) Clear(criteria *model.HttpRequest) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.expectations[:0]
	removed := 0
	for _, e := range s.expectations {
		if matcher.Selects(criteria, e.Request) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(s.expectations); i++ {
		s.expectations[i] = nil
	}
	s.expectations = kept
	logger.Debugf("cleared %d expectation(s)", removed)
	return removed
}

// Reset removes all expectations.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expectations = nil
}

// List returns snapshots of all expectations, exhausted ones included, in
// registration order. A non-nil criteria restricts the result to the
// expectations it selects.
func (s *Store) List(criteria *model.HttpRequest) []*model.Expectation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Expectation, 0, len(s.expectations))
	for _, e := range s.expectations {
		if matcher.Selects(criteria, e.Request) {
			result = append(result, e.Snapshot())
		}
	}
	return result
}

// Get returns the expectation with the given id.
func (s *Store) Get(id string) (*Expectation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.expectations {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Len returns the number of registered expectations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expectations)
}
