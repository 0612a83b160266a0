package forward

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/imposter-project/imposter-expect/internal/exchange"
	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// headers that apply to a single connection and are never relayed
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Error is returned when the upstream could not be reached or did not answer
// in time. Status is the response status reported to the client.
type Error struct {
	Status int
	URL    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to forward to %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Forwarder proxies captured requests to an upstream. It performs no retries.
type Forwarder struct {
	client *http.Client
}

// New creates a Forwarder. A zero timeout disables the upstream deadline.
func New(timeout time.Duration, insecureTLS bool) *Forwarder {
	return &Forwarder{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
				MaxIdleConns:        1024,
				IdleConnTimeout:     60 * time.Second,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: insecureTLS,
				},
			},
			// upstream redirects are relayed to the client as-is
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// TargetURL builds the upstream URL: the forward's scheme, host and port with
// the original escaped path and query. An unset scheme keeps the inbound request's
// and port 0 means the scheme's default port.
func TargetURL(target *model.HttpForward, req *exchange.Request) string {
	scheme := strings.ToLower(string(target.Scheme))
	if scheme == "" {
		scheme = req.Scheme
	}
	if scheme == "" {
		scheme = "http"
	}

	host := target.Host
	if target.Port > 0 {
		host = net.JoinHostPort(target.Host, strconv.Itoa(target.Port))
	} else if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}

	// the escaped form keeps encoded reserved characters such as %2F and %3F
	uri := req.RawPath
	if uri == "" {
		uri = (&url.URL{Path: req.Path}).EscapedPath()
	}
	if uri == "" {
		uri = "/"
	}
	if req.RawQuery != "" {
		uri += "?" + req.RawQuery
	}
	return scheme + "://" + host + uri
}

// Forward sends req upstream and copies the upstream status, headers and body
// into rs verbatim. On failure rs is left untouched and an *Error is returned.
func (f *Forwarder) Forward(ctx context.Context, target *model.HttpForward, req *exchange.Request, rs *exchange.ResponseState) error {
	targetURL := TargetURL(target, req)

	outbound, err := http.NewRequestWithContext(ctx, req.Method, targetURL, bytes.NewReader(req.Body))
	if err != nil {
		return &Error{Status: http.StatusBadGateway, URL: targetURL, Err: err}
	}
	outbound.Header = http.Header(req.Headers).Clone()
	if outbound.Header == nil {
		outbound.Header = make(http.Header)
	}
	removeHopHeaders(outbound.Header)
	outbound.Header.Del("Content-Length")
	outbound.ContentLength = int64(len(req.Body))
	if len(req.Body) == 0 {
		outbound.Body = http.NoBody
	}

	logger.Debugf("forwarding %s %s to %s", req.Method, req.Path, targetURL)
	start := time.Now()
	resp, err := f.client.Do(outbound)
	if err != nil {
		return &Error{Status: failureStatus(err), URL: targetURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: failureStatus(err), URL: targetURL, Err: fmt.Errorf("failed to read upstream response: %w", err)}
	}

	headers := resp.Header.Clone()
	removeHopHeaders(headers)

	rs.StatusCode = resp.StatusCode
	rs.Headers = headers
	rs.Body = body
	logger.Debugf("upstream %s responded with status %d in %s", targetURL, resp.StatusCode, time.Since(start))
	return nil
}

func removeHopHeaders(h http.Header) {
	// headers named by Connection are hop-by-hop too
	for _, value := range h["Connection"] {
		for _, token := range strings.Split(value, ",") {
			if token = strings.TrimSpace(token); httpguts.ValidHeaderFieldName(token) {
				h.Del(token)
			}
		}
	}
	keepTrailers := httpguts.HeaderValuesContainsToken(h["Te"], "trailers")
	for _, name := range hopHeaders {
		h.Del(name)
	}
	if keepTrailers {
		h.Set("Te", "trailers")
	}
}

func failureStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
