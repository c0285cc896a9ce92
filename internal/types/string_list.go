package types

import (
	"encoding/json"
)

// StringList is a slice of strings that can be unmarshaled from either a
// bare JSON string or a JSON array. Topping lists arrive both ways from
// old clients; the remote schema only accepts an array.
type StringList []string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (l *StringList) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*l = StringList{}
		return nil
	}

	// If it starts with '[', treat it as a normal array
	if data[0] == '[' {
		var slice []string
		if err := json.Unmarshal(data, &slice); err != nil {
			return err
		}
		*l = StringList(slice)
		return nil
	}

	// Otherwise, unmarshal a single string and wrap it in a slice
	var item string
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	if item == "" {
		*l = StringList{}
		return nil
	}
	*l = StringList{item}
	return nil
}

// MarshalJSON always emits an array, never null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Slice converts StringList back to []string, never nil.
func (l StringList) Slice() []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}
