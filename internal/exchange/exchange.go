package exchange

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"
)

// Request is an immutable snapshot of an inbound request. Matching, the
// request log and forwarding all work from this snapshot rather than the
// live *http.Request, whose body can only be read once.
type Request struct {
	Method     string              `json:"method"`
	Scheme     string              `json:"scheme"`
	Host       string              `json:"host"`
	URL        string              `json:"url"`
	Path       string              `json:"path"`
	RawPath    string              `json:"rawPath,omitempty"`
	RawQuery   string              `json:"rawQuery,omitempty"`
	Query      map[string][]string `json:"queryStringParameters,omitempty"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Cookies    map[string][]string `json:"cookies,omitempty"`
	Body       []byte              `json:"body,omitempty"`
	ReceivedAt time.Time           `json:"timestamp"`
}

// NewRequest captures r, reading its body and restoring it so the caller may
// read it again.
func NewRequest(r *http.Request) (*Request, error) {
	body, err := GetRequestBody(r)
	if err != nil {
		return nil, err
	}

	scheme := schemeOf(r)
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}

	return &Request{
		Method:     r.Method,
		Scheme:     scheme,
		Host:       host,
		URL:        scheme + "://" + host + r.URL.RequestURI(),
		Path:       r.URL.Path,
		RawPath:    r.URL.EscapedPath(),
		RawQuery:   r.URL.RawQuery,
		Query:      ParseQuery(r.URL.RawQuery),
		Headers:    cloneHeader(r.Header),
		Cookies:    ParseCookies(r),
		Body:       body,
		ReceivedAt: time.Now(),
	}, nil
}

// GetRequestBody reads and resets the request body
func GetRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte{}, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// ParseQuery decodes a raw query string into name to values. Values keep their
// order of appearance. Undecodable pairs are skipped.
func ParseQuery(rawQuery string) map[string][]string {
	if rawQuery == "" {
		return nil
	}
	values, _ := url.ParseQuery(rawQuery)
	if len(values) == 0 {
		return nil
	}
	return values
}

// ParseCookies normalises every Cookie header of r into name to values, in
// the order they were sent.
func ParseCookies(r *http.Request) map[string][]string {
	cookies := r.Cookies()
	if len(cookies) == 0 {
		return nil
	}
	result := make(map[string][]string, len(cookies))
	for _, c := range cookies {
		result[c.Name] = append(result[c.Name], c.Value)
	}
	return result
}

// ContentType returns the media type of the request without parameters
func (r *Request) ContentType() string {
	mediaType, _ := r.contentType()
	return mediaType
}

// Charset returns the charset parameter of the Content-Type header, if any
func (r *Request) Charset() string {
	_, params := r.contentType()
	return params["charset"]
}

func (r *Request) contentType() (string, map[string]string) {
	values := r.Headers["Content-Type"]
	if len(values) == 0 {
		return "", nil
	}
	mediaType, params, err := mime.ParseMediaType(values[0])
	if err != nil {
		return "", nil
	}
	return mediaType, params
}

func schemeOf(r *http.Request) string {
	if r.URL.Scheme != "" {
		return r.URL.Scheme
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func cloneHeader(h http.Header) map[string][]string {
	if len(h) == 0 {
		return nil
	}
	return h.Clone()
}
