package matcher

import (
	"strings"

	"github.com/imposter-project/imposter-expect/internal/exchange"
	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// MatchRequest reports whether req satisfies every dimension constrained by
// spec. A nil or empty spec matches every request.
func MatchRequest(spec *model.HttpRequest, req *exchange.Request) bool {
	if spec == nil {
		return true
	}

	if spec.Method != "" && !strings.EqualFold(spec.Method, req.Method) {
		logger.Tracef("method %s does not match expected %s", req.Method, spec.Method)
		return false
	}
	if spec.Path != "" && !MatchPattern(spec.Path, req.Path) {
		logger.Tracef("path %s does not match expected %s", req.Path, spec.Path)
		return false
	}
	if spec.URL != "" && !MatchPattern(spec.URL, req.URL) {
		logger.Tracef("url %s does not match expected %s", req.URL, spec.URL)
		return false
	}
	if !MatchMultiValue(spec.QueryStringParameters, req.Query) {
		return false
	}
	if !MatchHeaders(spec.Headers, req.Headers) {
		return false
	}
	if !MatchMultiValue(spec.Cookies, req.Cookies) {
		return false
	}
	if !MatchBody(spec.Body, req) {
		logger.Tracef("body does not match expected %s body", spec.Body.Type)
		return false
	}
	return true
}
