package exchange

import (
	"net/http"
)

// ResponseState is the outcome of dispatching a request, written to the
// client once the action has finished.
type ResponseState struct {
	StatusCode    int
	Headers       http.Header
	Body          []byte
	Handled       bool   // a matching expectation was found
	ExpectationID string // the expectation that handled the request
}

// NewResponseState creates a ResponseState with default values
func NewResponseState() *ResponseState {
	return &ResponseState{
		StatusCode: http.StatusOK,
		Headers:    make(http.Header),
	}
}

// HandledBy marks the response as handled by the given expectation
func (rs *ResponseState) HandledBy(expectationID string) {
	rs.Handled = true
	rs.ExpectationID = expectationID
}

// WriteToResponseWriter writes the final state to the http.ResponseWriter
func (rs *ResponseState) WriteToResponseWriter(w http.ResponseWriter) {
	for key, values := range rs.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(rs.StatusCode)
	if len(rs.Body) > 0 {
		w.Write(rs.Body)
	}
}
