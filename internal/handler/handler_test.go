package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/imposter-project/imposter-expect/internal/config"
	"github.com/imposter-project/imposter-expect/internal/dispatch"
	"github.com/imposter-project/imposter-expect/internal/expectation"
	"github.com/imposter-project/imposter-expect/internal/forward"
	"github.com/imposter-project/imposter-expect/internal/requestlog"
	"github.com/imposter-project/imposter-expect/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	provider, err := store.NewStoreProvider(context.Background(), store.Options{})
	require.NoError(t, err)

	expectations := expectation.NewStore()
	requestLog := requestlog.New(provider, "test")
	dispatcher := dispatch.New(expectations, requestLog, forward.New(2*time.Second, true))
	imposterConfig := &config.ImposterConfig{ServerPort: "8080"}

	server := httptest.NewServer(NewHandler(expectations, requestLog, dispatcher, imposterConfig))
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, method, target, body string, headers ...string) (int, string, http.Header) {
	t.Helper()
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Add(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(respBody), resp.Header
}

func put(t *testing.T, server *httptest.Server, path, body string) (int, string) {
	t.Helper()
	status, respBody, _ := do(t, http.MethodPut, server.URL+path, body)
	return status, respBody
}

func TestHandler_RespondExactlyTwiceThenVerify(t *testing.T) {
	server := newTestServer(t)

	status, body := put(t, server, "/expectation", `{
		"httpRequest": {"path": "/some_path"},
		"httpResponse": {"statusCode": 200, "body": "some_body"},
		"times": {"remainingTimes": 2}
	}`)
	require.Equal(t, http.StatusCreated, status)
	var registered registerResponse
	require.NoError(t, json.Unmarshal([]byte(body), &registered))
	assert.Len(t, registered.IDs, 1)

	for i := 0; i < 2; i++ {
		status, body, _ := do(t, http.MethodGet, server.URL+"/some_path", "")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "some_body", body)
	}
	status, _, _ = do(t, http.MethodGet, server.URL+"/some_path", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = put(t, server, "/verify", `{"httpRequest": {"path": "/some_path"}, "times": {"count": 3, "exact": true}}`)
	assert.Equal(t, http.StatusAccepted, status)

	status, body = put(t, server, "/verify", `{"httpRequest": {"path": "/some_path"}, "times": {"count": 4, "exact": true}}`)
	assert.Equal(t, http.StatusNotAcceptable, status)
	assert.Contains(t, body, "request not found")
}

func TestHandler_ForwardThenRespondThenNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Echo", r.Header.Get("X-Test"))
		_, _ = w.Write([]byte("upstream:" + string(body)))
	}))
	defer upstream.Close()
	u, err := url.Parse(upstream.URL)
	require.NoError(t, err)

	server := newTestServer(t)
	status, _ := put(t, server, "/expectation", fmt.Sprintf(`[
		{
			"httpRequest": {"path": "/test_headers_and_body"},
			"httpForward": {"host": "127.0.0.1", "port": %s, "scheme": "HTTP"},
			"times": {"remainingTimes": 1}
		},
		{
			"httpRequest": {"path": "/test_headers_and_body"},
			"httpResponse": {"body": "some_body"},
			"times": {"remainingTimes": 1}
		}
	]`, u.Port()))
	require.Equal(t, http.StatusCreated, status)

	status, body, headers := do(t, http.MethodPost, server.URL+"/test_headers_and_body", "an_example_body", "X-Test", "test_headers_and_body")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "upstream:an_example_body", body)
	assert.Equal(t, "test_headers_and_body", headers.Get("X-Echo"))

	_, body, _ = do(t, http.MethodPost, server.URL+"/test_headers_and_body", "")
	assert.Equal(t, "some_body", body)

	status, _, _ = do(t, http.MethodPost, server.URL+"/test_headers_and_body", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHandler_ClearByPath(t *testing.T) {
	server := newTestServer(t)
	for _, path := range []string{"/some_path1", "/some_path2"} {
		status, _ := put(t, server, "/expectation", fmt.Sprintf(`{"httpRequest": {"path": %q}, "httpResponse": {"body": %q}}`, path, path))
		require.Equal(t, http.StatusCreated, status)
	}

	status, _ := put(t, server, "/clear", `{"httpRequest": {"path": "/some_path1"}}`)
	assert.Equal(t, http.StatusAccepted, status)

	status, _, _ = do(t, http.MethodGet, server.URL+"/some_path1", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, body, _ := do(t, http.MethodGet, server.URL+"/some_path2", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/some_path2", body)
}

func TestHandler_Reset(t *testing.T) {
	server := newTestServer(t)
	status, _ := put(t, server, "/expectation", `{"httpRequest": {"path": "/a"}, "httpResponse": {"body": "a"}}`)
	require.Equal(t, http.StatusCreated, status)
	do(t, http.MethodGet, server.URL+"/a", "")

	status, _ = put(t, server, "/reset", "")
	assert.Equal(t, http.StatusAccepted, status)

	status, _ = put(t, server, "/verify", `{"httpRequest": {"path": "/a"}}`)
	assert.Equal(t, http.StatusNotAcceptable, status, "log is empty after reset")

	status, _, _ = do(t, http.MethodGet, server.URL+"/a", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHandler_MatchingDialects(t *testing.T) {
	server := newTestServer(t)
	status, _ := put(t, server, "/expectation", `[
		{
			"httpRequest": {"path": "/cookie", "cookies": [{"name": "session", "values": ["abc"]}]},
			"httpResponse": {"body": "cookie matched"}
		},
		{
			"httpRequest": {"path": "/xml", "body": {"type": "XPATH", "xpath": "/bookstore/book[price>35]/price"}},
			"httpResponse": {"body": "xpath matched"}
		},
		{
			"httpRequest": {"path": "/json", "body": {"type": "JSON", "json": {"a": 1, "b": 2}}},
			"httpResponse": {"body": "json matched", "headers": [{"name": "X-Multi", "values": ["1", "2"]}], "cookies": [{"name": "c", "values": ["v"]}]}
		},
		{
			"httpRequest": {"path": "/form", "method": "POST", "body": {"type": "PARAMETERS", "parameters": [{"name": "user", "values": ["grace"]}]}},
			"httpResponse": {"statusCode": 202}
		}
	]`)
	require.Equal(t, http.StatusCreated, status)

	status, body, _ := do(t, http.MethodGet, server.URL+"/cookie", "", "Cookie", "theme=dark; session=abc")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cookie matched", body)
	status, _, _ = do(t, http.MethodGet, server.URL+"/cookie", "", "Cookie", "session=def")
	assert.Equal(t, http.StatusNotFound, status)

	status, body, _ = do(t, http.MethodPost, server.URL+"/xml", `<bookstore><book><price>39.95</price></book></bookstore>`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "xpath matched", body)
	status, _, _ = do(t, http.MethodPost, server.URL+"/xml", `<bookstore><book><price>30.00</price></book></bookstore>`)
	assert.Equal(t, http.StatusNotFound, status)

	status, body, headers := do(t, http.MethodPost, server.URL+"/json", `{"b": 2, "a": 1}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "json matched", body)
	assert.Equal(t, []string{"1", "2"}, headers.Values("X-Multi"))
	assert.Equal(t, []string{"c=v"}, headers.Values("Set-Cookie"))

	status, _, _ = do(t, http.MethodPost, server.URL+"/form", "user=grace&other=1", "Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusAccepted, status)
}

func TestHandler_InvalidExpectation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"httpRequest":`},
		{"no action", `{"httpRequest": {"path": "/a"}}`},
		{"both actions", `{"httpResponse": {}, "httpForward": {"host": "localhost"}}`},
		{"negative times", `{"httpResponse": {}, "times": {"remainingTimes": -1}}`},
		{"bad base64", `{"httpRequest": {"body": {"type": "BINARY", "base64Bytes": "!!"}}, "httpResponse": {}}`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := put(t, server, "/expectation", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}

	status, body := put(t, server, "/retrieve?type=expectations", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, body, "nothing was registered")
}

func TestHandler_AdminRoutesRequirePut(t *testing.T) {
	server := newTestServer(t)

	// a GET to an admin path is ordinary traffic
	status, _, _ := do(t, http.MethodGet, server.URL+"/expectation", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = put(t, server, "/verify", `{"httpRequest": {"path": "/expectation", "method": "GET"}, "times": {"count": 1, "exact": true}}`)
	assert.Equal(t, http.StatusAccepted, status)

	// admin calls themselves are not recorded
	status, _ = put(t, server, "/verify", `{"httpRequest": {"path": "/verify"}, "times": {"count": 0, "exact": true}}`)
	assert.Equal(t, http.StatusAccepted, status)
}

func TestHandler_Status(t *testing.T) {
	server := newTestServer(t)

	status, body := put(t, server, "/status", "")
	assert.Equal(t, http.StatusOK, status)

	var resp statusResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "8080", resp.Port)
	assert.Equal(t, 0, resp.Expectations)
}
