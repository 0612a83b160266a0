package model

// KeyToMultiValue binds a name to an ordered list of values. It is used for
// query string parameters, headers, cookies and form parameters alike.
type KeyToMultiValue struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// KeyToMultiValues is an ordered list of KeyToMultiValue entries. The same name
// may appear more than once.
type KeyToMultiValues []KeyToMultiValue

// NewKeyToMultiValue creates an entry with the given values.
func NewKeyToMultiValue(name string, values ...string) KeyToMultiValue {
	return KeyToMultiValue{Name: name, Values: values}
}

// ToMap folds the entries into a name to values mapping. Entries sharing a name
// accumulate their values in order rather than replacing each other.
func (k KeyToMultiValues) ToMap() map[string][]string {
	if len(k) == 0 {
		return nil
	}
	result := make(map[string][]string, len(k))
	for _, entry := range k {
		result[entry.Name] = append(result[entry.Name], entry.Values...)
	}
	return result
}

// FromMap builds entries from a mapping, one entry per name. Callers that care
// about ordering should sort the result.
func FromMap(m map[string][]string) KeyToMultiValues {
	if len(m) == 0 {
		return nil
	}
	result := make(KeyToMultiValues, 0, len(m))
	for name, values := range m {
		result = append(result, KeyToMultiValue{Name: name, Values: append([]string(nil), values...)})
	}
	return result
}
