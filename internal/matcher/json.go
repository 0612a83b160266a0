package matcher

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
)

// JSONEqual reports whether observed is structurally equal to the expected
// document: objects have the same key set with equal values regardless of
// key order, arrays are equal element by element in order, and numbers compare
// by value. Either side failing to parse is a non-match.
func JSONEqual(expected string, observed []byte) bool {
	want, ok := decodeJSON([]byte(expected))
	if !ok {
		return false
	}
	got, ok := decodeJSON(observed)
	if !ok {
		return false
	}
	return jsonValuesEqual(want, got)
}

func decodeJSON(data []byte) (interface{}, bool) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, false
	}
	// anything after the first value, including a stray closing delimiter, is invalid
	if _, err := decoder.Token(); err != io.EOF {
		return nil, false
	}
	return value, true
}

func jsonValuesEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, present := bv[k]
			if !present || !jsonValuesEqual(v, other) {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case json.Number:
		bv, ok := b.(json.Number)
		return ok && numbersEqual(av, bv)
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}

func numbersEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	ar, ok := new(big.Rat).SetString(string(a))
	if !ok {
		return false
	}
	br, ok := new(big.Rat).SetString(string(b))
	if !ok {
		return false
	}
	return ar.Cmp(br) == 0
}
