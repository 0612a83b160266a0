package dispatch

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/imposter-project/imposter-expect/internal/exchange"
	"github.com/imposter-project/imposter-expect/internal/expectation"
	"github.com/imposter-project/imposter-expect/internal/forward"
	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/imposter-project/imposter-expect/internal/requestlog"
	"github.com/imposter-project/imposter-expect/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	expectations *expectation.Store
	requestLog   *requestlog.Log
	dispatcher   *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	provider, err := store.NewStoreProvider(context.Background(), store.Options{})
	require.NoError(t, err)
	f := &fixture{
		expectations: expectation.NewStore(),
		requestLog:   requestlog.New(provider, "test"),
	}
	f.dispatcher = New(f.expectations, f.requestLog, forward.New(2*time.Second, true))
	return f
}

func (f *fixture) send(t *testing.T, method, target, body string) *exchange.ResponseState {
	t.Helper()
	req, err := exchange.NewRequest(httptest.NewRequest(method, target, strings.NewReader(body)))
	require.NoError(t, err)
	return f.dispatcher.Dispatch(context.Background(), req)
}

func (f *fixture) register(t *testing.T, e *model.Expectation) string {
	t.Helper()
	id, err := f.expectations.Register(e)
	require.NoError(t, err)
	return id
}

func TestDispatch_NoMatch(t *testing.T) {
	f := newFixture(t)

	rs := f.send(t, http.MethodGet, "/unknown", "")
	assert.Equal(t, http.StatusNotFound, rs.StatusCode)
	assert.False(t, rs.Handled)

	// unmatched requests are still recorded
	err := f.requestLog.Verify(context.Background(), &model.Verification{
		HttpRequest: model.Request().WithPath("/unknown"),
		Times:       model.VerifyExactly(1),
	})
	assert.NoError(t, err)
}

func TestDispatch_RespondExactlyTwice(t *testing.T) {
	f := newFixture(t)
	id := f.register(t, &model.Expectation{
		HttpRequest:  model.Request().WithPath("/some_path"),
		HttpResponse: model.Response().WithStatusCode(http.StatusOK).WithBody(model.Exact("some_body")),
		Times:        model.Exactly(2),
	})

	for i := 0; i < 2; i++ {
		rs := f.send(t, http.MethodGet, "/some_path", "")
		assert.Equal(t, http.StatusOK, rs.StatusCode)
		assert.Equal(t, "some_body", string(rs.Body))
		assert.Equal(t, id, rs.ExpectationID)
	}
	assert.Equal(t, http.StatusNotFound, f.send(t, http.MethodGet, "/some_path", "").StatusCode)

	ctx := context.Background()
	assert.NoError(t, f.requestLog.Verify(ctx, &model.Verification{
		HttpRequest: model.Request().WithPath("/some_path"),
		Times:       model.VerifyExactly(3),
	}))
	var verificationErr *requestlog.VerificationError
	assert.ErrorAs(t, f.requestLog.Verify(ctx, &model.Verification{
		HttpRequest: model.Request().WithPath("/some_path"),
		Times:       model.VerifyExactly(4),
	}), &verificationErr)
}

func TestDispatch_ForwardThenRespondThenNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream", "true")
		_, _ = w.Write([]byte("from upstream"))
	}))
	defer upstream.Close()
	u, err := url.Parse(upstream.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	f := newFixture(t)
	f.register(t, &model.Expectation{
		HttpRequest: model.Request().WithPath("/test_headers_and_body"),
		HttpForward: model.Forward("127.0.0.1", port).WithScheme(model.SchemeHTTP),
		Times:       model.Once(),
	})
	f.register(t, &model.Expectation{
		HttpRequest:  model.Request().WithPath("/test_headers_and_body"),
		HttpResponse: model.Response().WithBody(model.Exact("some_body")),
		Times:        model.Once(),
	})

	rs := f.send(t, http.MethodGet, "/test_headers_and_body", "")
	assert.Equal(t, "from upstream", string(rs.Body))
	assert.Equal(t, "true", rs.Headers.Get("X-Upstream"))

	rs = f.send(t, http.MethodGet, "/test_headers_and_body", "")
	assert.Equal(t, "some_body", string(rs.Body))

	rs = f.send(t, http.MethodGet, "/test_headers_and_body", "")
	assert.Equal(t, http.StatusNotFound, rs.StatusCode)
}

func TestDispatch_ForwardFailureConsumesTimes(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	f := newFixture(t)
	f.register(t, &model.Expectation{
		HttpRequest: model.Request().WithPath("/down"),
		HttpForward: model.Forward("127.0.0.1", port),
		Times:       model.Once(),
	})

	rs := f.send(t, http.MethodGet, "/down", "")
	assert.Equal(t, http.StatusBadGateway, rs.StatusCode)
	assert.True(t, rs.Handled)

	assert.Equal(t, http.StatusNotFound, f.send(t, http.MethodGet, "/down", "").StatusCode)
}

func TestDispatch_ClearAndReset(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/some_path1", "/some_path2"} {
		f.register(t, &model.Expectation{
			HttpRequest:  model.Request().WithPath(path),
			HttpResponse: model.Response().WithBody(model.Exact(path)),
		})
	}

	f.expectations.Clear(model.Request().WithPath("/some_path1"))
	assert.Equal(t, http.StatusNotFound, f.send(t, http.MethodGet, "/some_path1", "").StatusCode)
	assert.Equal(t, "/some_path2", string(f.send(t, http.MethodGet, "/some_path2", "").Body))

	f.expectations.Reset()
	require.NoError(t, f.requestLog.Clear(context.Background()))
	assert.Equal(t, http.StatusNotFound, f.send(t, http.MethodGet, "/some_path2", "").StatusCode)
}
