package requestlog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/imposter-project/imposter-expect/internal/exchange"
	"github.com/imposter-project/imposter-expect/internal/matcher"
	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/imposter-project/imposter-expect/internal/store"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

const journalStoreName = "request-journal"

// VerificationError reports that the recorded history did not satisfy a
// verification. It is distinct from errors reading the journal.
type VerificationError struct {
	Request  *model.HttpRequest
	Times    *model.VerificationTimes
	Actual   int
	Recorded int
}

func (e *VerificationError) Error() string {
	matcherJSON, _ := json.Marshal(e.Request)
	return fmt.Sprintf("request not found %s, expected: %s but found %d matching of %d recorded request(s)",
		e.Times, matcherJSON, e.Actual, e.Recorded)
}

// Log is the append-only record of received requests. Entries are persisted
// through a store provider, keyed so that key order is arrival order.
type Log struct {
	journal    *store.Store
	instanceID string
	seq        atomic.Uint64

	// appends and reads share the lock; Clear takes it exclusively
	mu sync.RWMutex
}

func New(provider store.StoreProvider, instanceID string) *Log {
	return &Log{
		journal:    store.Open(journalStoreName, provider),
		instanceID: instanceID,
	}
}

// Append records req. Entries are never modified once appended.
func (l *Log) Append(ctx context.Context, req *exchange.Request) error {
	value, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	key := fmt.Sprintf("%019d.%06d.%s", req.ReceivedAt.UnixNano(), l.seq.Add(1)%1000000, l.instanceID)
	if err := l.journal.StoreValue(ctx, key, value); err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

// Entries returns every recorded request in arrival order.
func (l *Log) Entries(ctx context.Context) ([]*exchange.Request, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entries(ctx)
}

func (l *Log) entries(ctx context.Context) ([]*exchange.Request, error) {
	items, err := l.journal.GetAllValues(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to read request journal: %w", err)
	}
	requests := make([]*exchange.Request, 0, len(items))
	for _, item := range items {
		var req exchange.Request
		if err := json.Unmarshal(item.Value, &req); err != nil {
			logger.Warnf("skipping unreadable journal entry %s: %v", item.Key, err)
			continue
		}
		requests = append(requests, &req)
	}
	return requests, nil
}

// Retrieve returns the recorded requests selected by criteria, in arrival
// order. A nil criteria returns everything.
func (l *Log) Retrieve(ctx context.Context, criteria *model.HttpRequest) ([]*exchange.Request, error) {
	requests, err := l.Entries(ctx)
	if err != nil {
		return nil, err
	}
	if criteria.IsEmpty() {
		return requests, nil
	}
	matched := make([]*exchange.Request, 0, len(requests))
	for _, req := range requests {
		if matcher.MatchRequest(criteria, req) {
			matched = append(matched, req)
		}
	}
	return matched, nil
}

// Verify counts recorded requests matching v.HttpRequest and checks the count
// against v.Times, which defaults to at least once. An unsatisfied count is
// reported as a *VerificationError.
func (l *Log) Verify(ctx context.Context, v *model.Verification) error {
	times := v.Times
	if times == nil {
		times = model.VerifyAtLeast(1)
	}

	l.mu.RLock()
	requests, err := l.entries(ctx)
	l.mu.RUnlock()
	if err != nil {
		return err
	}

	actual := 0
	for _, req := range requests {
		if matcher.MatchRequest(v.HttpRequest, req) {
			actual++
		}
	}
	if !times.Satisfied(actual) {
		return &VerificationError{
			Request:  v.HttpRequest,
			Times:    times,
			Actual:   actual,
			Recorded: len(requests),
		}
	}
	logger.Debugf("verified %s: found %d matching request(s)", times, actual)
	return nil
}

// Clear removes every recorded request.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.journal.DeleteStore(ctx); err != nil {
		return fmt.Errorf("failed to clear request journal: %w", err)
	}
	return nil
}
