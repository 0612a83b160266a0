package awslambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/imposter-project/imposter-expect/internal/adapter"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// LambdaAdapter represents the AWS Lambda runtime adapter
type LambdaAdapter struct {
	handler http.Handler
}

// NewAdapter creates a new Lambda adapter instance
func NewAdapter(h http.Handler) adapter.Adapter {
	return &LambdaAdapter{handler: h}
}

// Start hands control to the Lambda runtime. It returns only if the
// runtime exits.
func (a *LambdaAdapter) Start() error {
	lambda.Start(a.HandleLambdaRequest)
	return nil
}

// HandleLambdaRequest handles incoming Lambda requests and routes them to the appropriate handler.
func (a *LambdaAdapter) HandleLambdaRequest(ctx context.Context, req json.RawMessage) (interface{}, error) {
	var apiGatewayReq events.APIGatewayProxyRequest
	var lambdaFunctionURLReq events.LambdaFunctionURLRequest

	if err := json.Unmarshal(req, &apiGatewayReq); err == nil && apiGatewayReq.HTTPMethod != "" {
		return a.handleAPIGatewayProxyRequest(ctx, apiGatewayReq), nil
	} else if err := json.Unmarshal(req, &lambdaFunctionURLReq); err == nil && lambdaFunctionURLReq.RequestContext.HTTP.Method != "" {
		return a.handleLambdaFunctionURLRequest(ctx, lambdaFunctionURLReq), nil
	}
	return events.LambdaFunctionURLResponse{StatusCode: http.StatusBadRequest, Body: "Unsupported request type"}, nil
}

// handleAPIGatewayProxyRequest processes API Gateway Proxy requests.
func (a *LambdaAdapter) handleAPIGatewayProxyRequest(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	headers := mergeHeaders(req.Headers, req.MultiValueHeaders)
	query := mergeQuery(req.QueryStringParameters, req.MultiValueQueryStringParameters)

	httpReq, err := newHTTPRequest(ctx, req.HTTPMethod, req.Path, query, headers, req.Body, req.IsBase64Encoded)
	if err != nil {
		logger.Errorf("failed to convert API Gateway request: %v", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest, Body: "Failed to convert request"}
	}

	recorder := a.serve(httpReq)
	body, isBase64 := encodeBody(recorder.Body.Bytes())
	return events.APIGatewayProxyResponse{
		StatusCode:        recorder.StatusCode,
		MultiValueHeaders: recorder.Headers,
		Body:              body,
		IsBase64Encoded:   isBase64,
	}
}

// handleLambdaFunctionURLRequest processes Lambda Function URL requests.
func (a *LambdaAdapter) handleLambdaFunctionURLRequest(ctx context.Context, req events.LambdaFunctionURLRequest) events.LambdaFunctionURLResponse {
	headers := mergeHeaders(req.Headers, nil)
	// function URLs move cookies out of the header map; keep any that remain
	if len(req.Cookies) > 0 {
		headers.Add("Cookie", strings.Join(req.Cookies, "; "))
	}

	httpReq, err := newHTTPRequest(ctx, req.RequestContext.HTTP.Method, req.RawPath, req.RawQueryString, headers, req.Body, req.IsBase64Encoded)
	if err != nil {
		logger.Errorf("failed to convert function URL request: %v", err)
		return events.LambdaFunctionURLResponse{StatusCode: http.StatusBadRequest, Body: "Failed to convert request"}
	}

	recorder := a.serve(httpReq)
	cookies := recorder.Headers.Values("Set-Cookie")
	recorder.Headers.Del("Set-Cookie")

	body, isBase64 := encodeBody(recorder.Body.Bytes())
	return events.LambdaFunctionURLResponse{
		StatusCode:      recorder.StatusCode,
		Headers:         flattenHeaders(recorder.Headers),
		Body:            body,
		IsBase64Encoded: isBase64,
		Cookies:         cookies,
	}
}

func (a *LambdaAdapter) serve(httpReq *http.Request) *responseRecorder {
	logger.Tracef("request: %s %s", httpReq.Method, httpReq.URL.String())

	recorder := newResponseRecorder()
	a.handler.ServeHTTP(recorder, httpReq)
	if !recorder.writtenStatus {
		recorder.StatusCode = http.StatusOK
	}

	logger.Tracef("response: %d %s", recorder.StatusCode, &recorder.Body)
	return recorder
}

// newHTTPRequest converts the parts of a Lambda event to an http.Request.
func newHTTPRequest(ctx context.Context, method, path, rawQuery string, headers http.Header, body string, isBase64 bool) (*http.Request, error) {
	payload := []byte(body)
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, err
		}
		payload = decoded
	}

	target := path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header = headers
	if host := headers.Get("Host"); host != "" {
		httpReq.Host = host
	}
	return httpReq, nil
}

// mergeHeaders prefers the multi-value form, adding single values only for
// names it does not carry.
func mergeHeaders(single map[string]string, multi map[string][]string) http.Header {
	headers := make(http.Header)
	for key, values := range multi {
		for _, value := range values {
			headers.Add(key, value)
		}
	}
	for key, value := range single {
		if _, exists := headers[http.CanonicalHeaderKey(key)]; !exists {
			headers.Set(key, value)
		}
	}
	return headers
}

func mergeQuery(single map[string]string, multi map[string][]string) string {
	query := url.Values{}
	for key, values := range multi {
		query[key] = append(query[key], values...)
	}
	for key, value := range single {
		if _, exists := query[key]; !exists {
			query.Set(key, value)
		}
	}
	return query.Encode()
}
