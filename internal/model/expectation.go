package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Expectation is the registration payload: a matcher, exactly one action and
// an optional budget (unlimited when omitted).
type Expectation struct {
	ID           string        `json:"id,omitempty"`
	HttpRequest  *HttpRequest  `json:"httpRequest,omitempty"`
	HttpResponse *HttpResponse `json:"httpResponse,omitempty"`
	HttpForward  *HttpForward  `json:"httpForward,omitempty"`
	Times        *Times        `json:"times,omitempty"`
}

// Validate rejects payloads the core must never see.
func (e *Expectation) Validate() error {
	if e.HttpResponse == nil && e.HttpForward == nil {
		return &ValidationError{Field: "httpResponse", Reason: "one of httpResponse or httpForward is required"}
	}
	if e.HttpResponse != nil && e.HttpForward != nil {
		return &ValidationError{Field: "httpForward", Reason: "httpResponse and httpForward are mutually exclusive"}
	}
	if e.Times != nil && !e.Times.Unlimited && e.Times.RemainingTimes < 0 {
		return &ValidationError{Field: "times.remainingTimes", Reason: "must not be negative"}
	}
	if err := validateRequest(e.HttpRequest); err != nil {
		return err
	}
	if r := e.HttpResponse; r != nil {
		if r.StatusCode != 0 && (r.StatusCode < 100 || r.StatusCode > 999) {
			return &ValidationError{Field: "httpResponse.statusCode", Reason: fmt.Sprintf("invalid status code %d", r.StatusCode)}
		}
		if _, err := r.Delay.Duration(); err != nil {
			return &ValidationError{Field: "httpResponse.delay", Reason: err.Error()}
		}
		if r.Delay != nil && r.Delay.Value < 0 {
			return &ValidationError{Field: "httpResponse.delay", Reason: "must not be negative"}
		}
	}
	if f := e.HttpForward; f != nil {
		if f.Host == "" {
			return &ValidationError{Field: "httpForward.host", Reason: "is required"}
		}
		if f.Port < 0 || f.Port > 65535 {
			return &ValidationError{Field: "httpForward.port", Reason: fmt.Sprintf("invalid port %d", f.Port)}
		}
		switch Scheme(strings.ToUpper(string(f.Scheme))) {
		case "", SchemeHTTP, SchemeHTTPS:
		default:
			return &ValidationError{Field: "httpForward.scheme", Reason: fmt.Sprintf("unsupported scheme %q", f.Scheme)}
		}
	}
	return nil
}

func validateRequest(r *HttpRequest) error {
	if r == nil {
		return nil
	}
	for _, group := range []struct {
		field  string
		values KeyToMultiValues
	}{
		{"httpRequest.queryStringParameters", r.QueryStringParameters},
		{"httpRequest.headers", r.Headers},
		{"httpRequest.cookies", r.Cookies},
	} {
		for _, kv := range group.values {
			if kv.Name == "" {
				return &ValidationError{Field: group.field, Reason: "name is required"}
			}
		}
	}
	return nil
}

// Verification is the payload of a verify call
type Verification struct {
	HttpRequest *HttpRequest       `json:"httpRequest,omitempty"`
	Times       *VerificationTimes `json:"times,omitempty"`
}

// Validate rejects negative counts.
func (v *Verification) Validate() error {
	if v.Times != nil && v.Times.Count < 0 {
		return &ValidationError{Field: "times.count", Reason: "must not be negative"}
	}
	return validateRequest(v.HttpRequest)
}

// DecodeExpectations accepts a single expectation object or an array of them.
func DecodeExpectations(data []byte) ([]*Expectation, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ValidationError{Field: "body", Reason: "expectation payload is empty"}
	}

	var expectations []*Expectation
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &expectations); err != nil {
			return nil, &ValidationError{Field: "body", Reason: err.Error()}
		}
	} else {
		var single Expectation
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, &ValidationError{Field: "body", Reason: err.Error()}
		}
		expectations = append(expectations, &single)
	}

	for i, e := range expectations {
		if e == nil {
			return nil, &ValidationError{Field: fmt.Sprintf("[%d]", i), Reason: "expectation is null"}
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}
	return expectations, nil
}
