package model

// HttpRequest describes which requests an expectation, verification or clear
// applies to. Every field is optional; an absent field matches anything.
type HttpRequest struct {
	Method string `json:"method,omitempty"`

	// Path is a regular expression tested against the decoded request path
	Path string `json:"path,omitempty"`

	// URL is a regular expression tested against the absolute request URL
	URL string `json:"url,omitempty"`

	QueryStringParameters KeyToMultiValues `json:"queryStringParameters,omitempty"`
	Headers               KeyToMultiValues `json:"headers,omitempty"`
	Cookies               KeyToMultiValues `json:"cookies,omitempty"`
	Body                  *Body            `json:"body,omitempty"`
}

// Request returns an empty matcher, which matches every request.
func Request() *HttpRequest {
	return &HttpRequest{}
}

func (r *HttpRequest) WithMethod(method string) *HttpRequest {
	r.Method = method
	return r
}

func (r *HttpRequest) WithPath(path string) *HttpRequest {
	r.Path = path
	return r
}

func (r *HttpRequest) WithURL(url string) *HttpRequest {
	r.URL = url
	return r
}

func (r *HttpRequest) WithQueryStringParameter(name string, values ...string) *HttpRequest {
	r.QueryStringParameters = append(r.QueryStringParameters, NewKeyToMultiValue(name, values...))
	return r
}

func (r *HttpRequest) WithHeader(name string, values ...string) *HttpRequest {
	r.Headers = append(r.Headers, NewKeyToMultiValue(name, values...))
	return r
}

func (r *HttpRequest) WithCookie(name string, values ...string) *HttpRequest {
	r.Cookies = append(r.Cookies, NewKeyToMultiValue(name, values...))
	return r
}

func (r *HttpRequest) WithBody(body *Body) *HttpRequest {
	r.Body = body
	return r
}

// IsEmpty reports whether no dimension is constrained.
func (r *HttpRequest) IsEmpty() bool {
	return r == nil || (r.Method == "" && r.Path == "" && r.URL == "" &&
		len(r.QueryStringParameters) == 0 && len(r.Headers) == 0 &&
		len(r.Cookies) == 0 && r.Body == nil)
}
