package dispatch

import (
	"context"
	"errors"
	"net/http"

	"github.com/imposter-project/imposter-expect/internal/exchange"
	"github.com/imposter-project/imposter-expect/internal/expectation"
	"github.com/imposter-project/imposter-expect/internal/forward"
	"github.com/imposter-project/imposter-expect/internal/requestlog"
	"github.com/imposter-project/imposter-expect/internal/response"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// Dispatcher records each inbound request, selects the first matching
// expectation and executes its action.
type Dispatcher struct {
	expectations *expectation.Store
	requestLog   *requestlog.Log
	forwarder    *forward.Forwarder
}

func New(expectations *expectation.Store, requestLog *requestlog.Log, forwarder *forward.Forwarder) *Dispatcher {
	return &Dispatcher{
		expectations: expectations,
		requestLog:   requestLog,
		forwarder:    forwarder,
	}
}

// Dispatch handles req and returns the response to send. A request that
// matches no expectation yields 404.
func (d *Dispatcher) Dispatch(ctx context.Context, req *exchange.Request) *exchange.ResponseState {
	rs := exchange.NewResponseState()

	if err := d.requestLog.Append(ctx, req); err != nil {
		logger.Errorf("failed to record request %s %s: %v", req.Method, req.Path, err)
	}

	match := d.expectations.FindMatch(req)
	if match == nil {
		logger.Tracef("no expectation matched %s %s", req.Method, req.Path)
		rs.StatusCode = http.StatusNotFound
		return rs
	}
	rs.HandledBy(match.ID)

	switch {
	case match.Response != nil:
		if err := response.ProcessResponse(ctx, match.Response, req, rs); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Debugf("client went away during response delay - method:%s, path:%s", req.Method, req.Path)
			} else {
				logger.Errorf("failed to process response for expectation %s: %v", match.ID, err)
			}
			rs.StatusCode = http.StatusInternalServerError
		}
	case match.Forward != nil:
		if err := d.forwarder.Forward(ctx, match.Forward, req, rs); err != nil {
			logger.Warnf("%v", err)
			rs.StatusCode = http.StatusBadGateway
			var forwardErr *forward.Error
			if errors.As(err, &forwardErr) {
				rs.StatusCode = forwardErr.Status
			}
			rs.Body = []byte(err.Error())
		}
	}

	logger.Infof("handled request - method:%s, path:%s, status:%d, length:%d, expectation:%s",
		req.Method, req.Path, rs.StatusCode, len(rs.Body), match.ID)
	return rs
}
