package query

import (
	"encoding/json"

	"github.com/PaesslerAG/jsonpath"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// JsonPathQuery extracts a value from the JSON document using a JSONPath expression.
func JsonPathQuery(doc []byte, jsonPathExpr string) (result interface{}, success bool) {
	var jsonData interface{}
	if err := json.Unmarshal(doc, &jsonData); err != nil {
		logger.Tracef("failed to unmarshal JSON data: %v", err)
		return nil, false
	}
	result, err := jsonpath.Get(jsonPathExpr, jsonData)
	if err != nil {
		logger.Tracef("failed to extract JSON path: %v", err)
		return nil, false
	}
	return result, true
}

// JsonPathMatches reports whether the expression selects anything in doc.
// A filter that selects no elements is a non-match.
func JsonPathMatches(doc []byte, jsonPathExpr string) bool {
	result, success := JsonPathQuery(doc, jsonPathExpr)
	if !success {
		return false
	}
	switch v := result.(type) {
	case nil:
		return false
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}
