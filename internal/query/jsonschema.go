package query

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/imposter-project/imposter-expect/pkg/logger"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaResource = "expectation-schema.json"

// maxCachedSchemas bounds the compiled schema cache
const maxCachedSchemas = 256

// compiled schemas keyed by their source text; a nil entry records a schema
// that failed to compile
var (
	schemaCache   = lru.New(maxCachedSchemas)
	schemaCacheMu sync.Mutex
)

// JsonSchemaMatches reports whether doc is valid JSON that satisfies schema.
func JsonSchemaMatches(doc []byte, schema string) bool {
	compiled := compileSchema(schema)
	if compiled == nil {
		return false
	}

	decoder := json.NewDecoder(bytes.NewReader(doc))
	decoder.UseNumber()
	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		logger.Tracef("failed to unmarshal JSON data: %v", err)
		return false
	}
	if _, err := decoder.Token(); err != io.EOF {
		logger.Tracef("trailing data after JSON document")
		return false
	}

	if err := compiled.Validate(value); err != nil {
		logger.Tracef("JSON schema validation failed: %v", err)
		return false
	}
	return true
}

func compileSchema(schema string) *jsonschema.Schema {
	schemaCacheMu.Lock()
	cached, ok := schemaCache.Get(schema)
	schemaCacheMu.Unlock()
	if ok {
		return cached.(*jsonschema.Schema)
	}

	compiler := jsonschema.NewCompiler()
	var compiled *jsonschema.Schema
	if err := compiler.AddResource(schemaResource, strings.NewReader(schema)); err != nil {
		logger.Warnf("failed to load JSON schema: %v", err)
	} else if compiled, err = compiler.Compile(schemaResource); err != nil {
		logger.Warnf("failed to compile JSON schema: %v", err)
		compiled = nil
	}

	schemaCacheMu.Lock()
	schemaCache.Add(schema, compiled)
	schemaCacheMu.Unlock()
	return compiled
}
