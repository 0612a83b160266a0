package matcher

import (
	"reflect"

	"github.com/imposter-project/imposter-expect/internal/exchange"
	"github.com/imposter-project/imposter-expect/internal/model"
)

// Concretize builds the request an expectation's matcher literally describes,
// so that clear criteria can be evaluated with the dispatch predicate. Pattern
// fields are taken verbatim.
func Concretize(m *model.HttpRequest) *exchange.Request {
	req := &exchange.Request{}
	if m == nil {
		return req
	}
	req.Method = m.Method
	req.Path = m.Path
	req.URL = m.URL
	req.Query = m.QueryStringParameters.ToMap()
	req.Headers = m.Headers.ToMap()
	req.Cookies = m.Cookies.ToMap()
	if m.Body != nil {
		req.Body = m.Body.RawBytes()
	}
	return req
}

// Selects reports whether clear criteria select an expectation with the given
// matcher. Empty criteria select everything.
func Selects(criteria, expectation *model.HttpRequest) bool {
	if criteria == nil || criteria.IsEmpty() {
		return true
	}
	if reflect.DeepEqual(criteria, expectation) {
		return true
	}
	return MatchRequest(criteria, Concretize(expectation))
}
