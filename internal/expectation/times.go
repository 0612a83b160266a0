package expectation

import (
	"sync/atomic"

	"github.com/imposter-project/imposter-expect/internal/model"
)

const unlimited = int64(-1)

// Times is the live match budget of a registered expectation. It is
// decremented with compare-and-swap so that concurrent dispatches never
// consume more than the budget allows.
type Times struct {
	remaining atomic.Int64
}

// NewTimes converts the wire form. A nil value means unlimited.
func NewTimes(t *model.Times) *Times {
	times := &Times{}
	if t == nil || t.Unlimited {
		times.remaining.Store(unlimited)
	} else {
		times.remaining.Store(int64(t.RemainingTimes))
	}
	return times
}

// TryConsume takes one use from the budget, reporting false if none is left.
func (t *Times) TryConsume() bool {
	for {
		current := t.remaining.Load()
		if current == unlimited {
			return true
		}
		if current <= 0 {
			return false
		}
		if t.remaining.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

// Active reports whether at least one use remains.
func (t *Times) Active() bool {
	current := t.remaining.Load()
	return current == unlimited || current > 0
}

// Snapshot returns the current budget in wire form.
func (t *Times) Snapshot() *model.Times {
	current := t.remaining.Load()
	if current == unlimited {
		return model.Unlimited()
	}
	return model.Exactly(int(current))
}
