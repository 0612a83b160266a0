package matcher

import (
	"net/http"

	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// Mismatch describes the first key that failed a multi-value match
type Mismatch struct {
	Key      string
	Expected []string
	Observed []string
}

// MatchMultiValue reports whether observed satisfies spec. For every key in
// spec the same key must exist in observed, and every value pattern for that
// key must match at least one observed value. Extra observed keys are ignored
// and an empty spec matches anything.
func MatchMultiValue(spec model.KeyToMultiValues, observed map[string][]string) bool {
	mismatch := FindMismatch(spec.ToMap(), observed)
	if mismatch != nil {
		logger.Tracef("failed to match key %q: expected %v, observed %v", mismatch.Key, mismatch.Expected, mismatch.Observed)
		return false
	}
	return true
}

// MatchHeaders is MatchMultiValue with header names compared in canonical form.
func MatchHeaders(spec model.KeyToMultiValues, observed map[string][]string) bool {
	if len(spec) == 0 {
		return true
	}
	canonical := make(model.KeyToMultiValues, len(spec))
	for i, kv := range spec {
		canonical[i] = model.KeyToMultiValue{Name: http.CanonicalHeaderKey(kv.Name), Values: kv.Values}
	}
	return MatchMultiValue(canonical, canonicalHeaders(observed))
}

// FindMismatch is the side-effect free comparison behind MatchMultiValue. It
// returns nil when expected is satisfied.
func FindMismatch(expected, observed map[string][]string) *Mismatch {
	for key, patterns := range expected {
		values, present := observed[key]
		if !present {
			return &Mismatch{Key: key, Expected: patterns}
		}
		for _, pattern := range patterns {
			if !anyMatches(pattern, values) {
				return &Mismatch{Key: key, Expected: patterns, Observed: values}
			}
		}
	}
	return nil
}

func anyMatches(pattern string, values []string) bool {
	for _, v := range values {
		if MatchPattern(pattern, v) {
			return true
		}
	}
	return false
}

func canonicalHeaders(h map[string][]string) map[string][]string {
	if len(h) == 0 {
		return h
	}
	result := make(map[string][]string, len(h))
	for k, v := range h {
		key := http.CanonicalHeaderKey(k)
		result[key] = append(result[key], v...)
	}
	return result
}
