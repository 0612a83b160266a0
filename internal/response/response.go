package response

import (
	"context"
	"net/http"
	"time"

	"github.com/imposter-project/imposter-expect/internal/exchange"
	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// SimulateDelay waits for the configured delay, returning early with the
// context's error if the client goes away first.
func SimulateDelay(ctx context.Context, delay *model.Delay, req *exchange.Request) error {
	duration, err := delay.Duration()
	if err != nil {
		return err
	}
	if duration <= 0 {
		return nil
	}

	logger.Infof("delaying request (exact: %s) - method:%s, path:%s", duration, req.Method, req.Path)
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessResponse applies a canned response to rs, after any delay.
func ProcessResponse(ctx context.Context, resp *model.HttpResponse, req *exchange.Request, rs *exchange.ResponseState) error {
	if err := SimulateDelay(ctx, resp.Delay, req); err != nil {
		return err
	}

	rs.StatusCode = http.StatusOK
	if resp.StatusCode > 0 {
		rs.StatusCode = resp.StatusCode
	}

	CopyResponseHeaders(resp.Headers, rs)
	SetCookies(resp.Cookies, rs)

	if resp.Body != nil {
		rs.Body = resp.Body.RawBytes()
	}
	SetContentTypeHeader(rs, resp.Body)

	if logger.IsTraceEnabled() {
		logger.Tracef("response headers: %v", rs.Headers)
		logger.Tracef("response body: %s", rs.Body)
	}
	logger.Debugf("updated response state - method:%s, path:%s, status:%d, length:%d",
		req.Method, req.Path, rs.StatusCode, len(rs.Body))
	return nil
}

// CopyResponseHeaders adds every header value to rs, keeping repeated values
// in order.
func CopyResponseHeaders(src model.KeyToMultiValues, rs *exchange.ResponseState) {
	for _, header := range src {
		for _, value := range header.Values {
			rs.Headers.Add(header.Name, value)
		}
	}
}

// SetCookies emits one Set-Cookie header per cookie value.
func SetCookies(cookies model.KeyToMultiValues, rs *exchange.ResponseState) {
	for _, cookie := range cookies {
		for _, value := range cookie.Values {
			c := &http.Cookie{Name: cookie.Name, Value: value}
			if err := c.Valid(); err != nil {
				logger.Warnf("skipping invalid response cookie %s: %v", cookie.Name, err)
				continue
			}
			rs.Headers.Add("Set-Cookie", c.String())
		}
	}
}

// SetContentTypeHeader sets the Content-Type header from the body kind when the
// response does not declare one. String bodies are left for the server to
// sniff.
func SetContentTypeHeader(rs *exchange.ResponseState, body *model.Body) {
	if body == nil || rs.Headers.Get("Content-Type") != "" {
		return
	}
	var contentType string
	switch body.Type {
	case model.BodyJSON:
		contentType = "application/json"
	case model.BodyBinary:
		contentType = "application/octet-stream"
	case model.BodyParameters:
		contentType = "application/x-www-form-urlencoded"
	default:
		return
	}
	rs.Headers.Set("Content-Type", contentType)
	logger.Tracef("inferred Content-Type %s from %s body", contentType, body.Type)
}
