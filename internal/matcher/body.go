package matcher

import (
	"bytes"

	"github.com/imposter-project/imposter-expect/internal/exchange"
	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/imposter-project/imposter-expect/internal/query"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// MatchBody checks the request body against a body specification. A nil
// specification matches any body, including an empty one.
func MatchBody(spec *model.Body, req *exchange.Request) bool {
	if spec == nil {
		return true
	}

	switch spec.Type {
	case model.BodyExact:
		return decodeBody(req.Body, req.Charset()) == spec.Value
	case model.BodyRegex:
		return MatchRegex(spec.Value, decodeBody(req.Body, req.Charset()))
	case model.BodyXPath:
		return query.XPathMatches(req.Body, spec.Value, spec.Namespaces)
	case model.BodyJSON:
		return JSONEqual(spec.Value, req.Body)
	case model.BodyJSONPath:
		return query.JsonPathMatches(req.Body, spec.Value)
	case model.BodyJSONSchema:
		return query.JsonSchemaMatches(req.Body, spec.Value)
	case model.BodyParameters:
		return MatchMultiValue(spec.Parameters, exchange.ParseQuery(string(req.Body)))
	case model.BodyBinary:
		return bytes.Equal(spec.Bytes, req.Body)
	default:
		logger.Warnf("unsupported body type: %s", spec.Type)
		return false
	}
}
