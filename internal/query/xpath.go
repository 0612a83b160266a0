package query

import (
	"bytes"
	"math"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// XPathMatches evaluates an XPath expression against an XML document and
// reports whether the result is truthy: a non-empty node set, a non-empty
// string, a non-zero number or true. Unparseable XML or an invalid expression
// is a non-match.
func XPathMatches(body []byte, xPath string, namespaces map[string]string) (matched bool) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		logger.Tracef("failed to parse XML data: %v", err)
		return false
	}

	if namespaces == nil {
		namespaces = make(map[string]string)
	}
	expr, err := xpath.CompileWithNS(xPath, namespaces)
	if err != nil {
		logger.Warnf("failed to compile XPath expression %q: %v", xPath, err)
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("failed to evaluate XPath expression %q: %v", xPath, r)
			matched = false
		}
	}()
	return truthy(expr.Evaluate(xmlquery.CreateXPathNavigator(doc)))
}

func truthy(result interface{}) bool {
	switch v := result.(type) {
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	case *xpath.NodeIterator:
		return v.MoveNext()
	case nil:
		return false
	default:
		return true
	}
}
