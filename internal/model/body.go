package model

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
)

// BodyType identifies the matching dialect of a body specification
type BodyType string

const (
	BodyExact      BodyType = "EXACT"
	BodyRegex      BodyType = "REGEX"
	BodyXPath      BodyType = "XPATH"
	BodyJSON       BodyType = "JSON"
	BodyJSONPath   BodyType = "JSON_PATH"
	BodyJSONSchema BodyType = "JSON_SCHEMA"
	BodyParameters BodyType = "PARAMETERS"
	BodyBinary     BodyType = "BINARY"
)

// Body is a tagged body specification. Which payload field is populated
// depends on Type: Value for the textual kinds (EXACT, REGEX, XPATH, JSON,
// JSON_PATH, JSON_SCHEMA), Parameters for PARAMETERS and Bytes for BINARY.
type Body struct {
	Type       BodyType
	Value      string
	Parameters KeyToMultiValues
	Bytes      []byte

	// Namespaces maps XML prefixes to namespace URIs for XPATH bodies
	Namespaces map[string]string
}

func Exact(value string) *Body {
	return &Body{Type: BodyExact, Value: value}
}

func Regex(pattern string) *Body {
	return &Body{Type: BodyRegex, Value: pattern}
}

func XPath(expression string) *Body {
	return &Body{Type: BodyXPath, Value: expression}
}

func JSON(document string) *Body {
	return &Body{Type: BodyJSON, Value: document}
}

func JSONPath(expression string) *Body {
	return &Body{Type: BodyJSONPath, Value: expression}
}

func JSONSchema(schema string) *Body {
	return &Body{Type: BodyJSONSchema, Value: schema}
}

func Params(parameters ...KeyToMultiValue) *Body {
	return &Body{Type: BodyParameters, Parameters: parameters}
}

func Binary(data []byte) *Body {
	return &Body{Type: BodyBinary, Bytes: data}
}

// RawBytes returns the body as it would be sent on the wire when used in a
// response, or as the concrete representation of a matcher body.
func (b *Body) RawBytes() []byte {
	if b == nil {
		return nil
	}
	switch b.Type {
	case BodyBinary:
		return b.Bytes
	case BodyParameters:
		values := url.Values{}
		for _, p := range b.Parameters {
			for _, v := range p.Values {
				values.Add(p.Name, v)
			}
		}
		return []byte(values.Encode())
	default:
		return []byte(b.Value)
	}
}

type bodyWire struct {
	Type        BodyType          `json:"type"`
	Value       *string           `json:"value,omitempty"`
	String      *string           `json:"string,omitempty"`
	XPath       *string           `json:"xpath,omitempty"`
	JSONPath    *string           `json:"jsonPath,omitempty"`
	JSON        json.RawMessage   `json:"json,omitempty"`
	JSONSchema  json.RawMessage   `json:"jsonSchema,omitempty"`
	Parameters  KeyToMultiValues  `json:"parameters,omitempty"`
	Base64Bytes *string           `json:"base64Bytes,omitempty"`
	Namespaces  map[string]string `json:"namespaces,omitempty"`
}

// MarshalJSON writes the canonical wire form for the body kind.
func (b Body) MarshalJSON() ([]byte, error) {
	w := bodyWire{Type: b.Type}
	switch b.Type {
	case BodyExact, BodyRegex:
		w.Value = &b.Value
	case BodyXPath:
		w.XPath = &b.Value
		w.Namespaces = b.Namespaces
	case BodyJSONPath:
		w.JSONPath = &b.Value
	case BodyJSON:
		w.JSON = embedJSON(b.Value)
	case BodyJSONSchema:
		w.JSONSchema = embedJSON(b.Value)
	case BodyParameters:
		w.Parameters = b.Parameters
	case BodyBinary:
		encoded := base64.StdEncoding.EncodeToString(b.Bytes)
		w.Base64Bytes = &encoded
	default:
		return nil, fmt.Errorf("unsupported body type: %q", b.Type)
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts either a bare string (shorthand for EXACT) or a typed
// body object.
func (b *Body) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*b = Body{Type: BodyExact, Value: s}
		return nil
	}

	var w bodyWire
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return err
	}
	if w.Type == "" {
		w.Type = inferBodyType(w)
	}

	result := Body{Type: w.Type}
	switch w.Type {
	case BodyExact, "STRING":
		result.Type = BodyExact
		result.Value = firstString(w.Value, w.String)
	case BodyRegex:
		result.Value = firstString(w.Value, w.String)
	case BodyXPath:
		result.Value = firstString(w.XPath, w.Value)
		result.Namespaces = w.Namespaces
	case BodyJSONPath:
		result.Value = firstString(w.JSONPath, w.Value)
	case BodyJSON:
		doc, err := extractJSON(w.JSON, w.Value)
		if err != nil {
			return err
		}
		result.Value = doc
	case BodyJSONSchema:
		doc, err := extractJSON(w.JSONSchema, w.Value)
		if err != nil {
			return err
		}
		result.Value = doc
	case BodyParameters:
		result.Parameters = w.Parameters
	case BodyBinary:
		encoded := firstString(w.Base64Bytes, w.Value)
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return &ValidationError{Field: "body.base64Bytes", Reason: err.Error()}
		}
		result.Bytes = decoded
	default:
		return &ValidationError{Field: "body.type", Reason: fmt.Sprintf("unsupported body type %q", w.Type)}
	}

	*b = result
	return nil
}

func inferBodyType(w bodyWire) BodyType {
	switch {
	case w.XPath != nil:
		return BodyXPath
	case w.JSONPath != nil:
		return BodyJSONPath
	case len(w.JSON) > 0:
		return BodyJSON
	case len(w.JSONSchema) > 0:
		return BodyJSONSchema
	case w.Parameters != nil:
		return BodyParameters
	case w.Base64Bytes != nil:
		return BodyBinary
	default:
		return BodyExact
	}
}

// extractJSON returns the textual document from an embedded JSON value. A JSON
// string is taken to contain the document itself.
func extractJSON(raw json.RawMessage, fallback *string) (string, error) {
	if len(raw) == 0 {
		return firstString(fallback), nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(trimmed), nil
}

func embedJSON(doc string) json.RawMessage {
	if json.Valid([]byte(doc)) {
		return json.RawMessage(doc)
	}
	quoted, _ := json.Marshal(doc)
	return quoted
}

func firstString(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return ""
}
