package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// HttpResponse is the canned response returned by a Respond action
type HttpResponse struct {
	StatusCode int              `json:"statusCode,omitempty"`
	Headers    KeyToMultiValues `json:"headers,omitempty"`
	Cookies    KeyToMultiValues `json:"cookies,omitempty"`
	Body       *Body            `json:"body,omitempty"`
	Delay      *Delay           `json:"delay,omitempty"`
}

// Response returns a 200 response with no body.
func Response() *HttpResponse {
	return &HttpResponse{}
}

func (r *HttpResponse) WithStatusCode(statusCode int) *HttpResponse {
	r.StatusCode = statusCode
	return r
}

func (r *HttpResponse) WithHeader(name string, values ...string) *HttpResponse {
	r.Headers = append(r.Headers, NewKeyToMultiValue(name, values...))
	return r
}

func (r *HttpResponse) WithCookie(name string, values ...string) *HttpResponse {
	r.Cookies = append(r.Cookies, NewKeyToMultiValue(name, values...))
	return r
}

func (r *HttpResponse) WithBody(body *Body) *HttpResponse {
	r.Body = body
	return r
}

func (r *HttpResponse) WithDelay(delay *Delay) *HttpResponse {
	r.Delay = delay
	return r
}

// Delay holds the time to wait before a response is written
type Delay struct {
	TimeUnit string `json:"timeUnit"`
	Value    int64  `json:"value"`
}

// Milliseconds is shorthand for a delay in milliseconds
func Milliseconds(value int64) *Delay {
	return &Delay{TimeUnit: "MILLISECONDS", Value: value}
}

// Duration converts the delay to a time.Duration. An unknown unit or a value
// that does not fit in a time.Duration yields an error.
func (d *Delay) Duration() (time.Duration, error) {
	if d == nil {
		return 0, nil
	}
	var unit time.Duration
	switch strings.ToUpper(d.TimeUnit) {
	case "NANOSECONDS":
		unit = time.Nanosecond
	case "MICROSECONDS":
		unit = time.Microsecond
	case "MILLISECONDS", "":
		unit = time.Millisecond
	case "SECONDS":
		unit = time.Second
	case "MINUTES":
		unit = time.Minute
	case "HOURS":
		unit = time.Hour
	case "DAYS":
		unit = 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown time unit: %s", d.TimeUnit)
	}
	if d.Value > math.MaxInt64/int64(unit) || d.Value < math.MinInt64/int64(unit) {
		return 0, fmt.Errorf("delay of %d %s is out of range", d.Value, d.TimeUnit)
	}
	return time.Duration(d.Value) * unit, nil
}

// Scheme is the protocol used when forwarding
type Scheme string

const (
	SchemeHTTP  Scheme = "HTTP"
	SchemeHTTPS Scheme = "HTTPS"
)

// HttpForward names the upstream a matched request is proxied to
type HttpForward struct {
	Host   string `json:"host"`
	Port   int    `json:"port,omitempty"`
	Scheme Scheme `json:"scheme,omitempty"`
}

// Forward creates a forward action. Scheme defaults to the inbound request's.
func Forward(host string, port int) *HttpForward {
	return &HttpForward{Host: host, Port: port}
}

func (f *HttpForward) WithScheme(scheme Scheme) *HttpForward {
	f.Scheme = scheme
	return f
}
