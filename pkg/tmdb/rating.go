package tmdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// wrapperKeys are the object keys a wrapped rating may use, in lookup order.
var wrapperKeys = []string{"value", "$numberDouble", "$numberDecimal", "$numberInt", "$numberLong"}

// NormalizeRating reduces the encodings seen for vote_average to a float64:
// a plain number, a numeric string, an object wrapping either, or an array
// whose first element is any of those. Missing, null and empty arrays give 0.
func NormalizeRating(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return 0, fmt.Errorf("%w: rating array: %v", ErrMalformed, err)
		}
		if len(items) == 0 {
			return 0, nil
		}
		return NormalizeRating(items[0])

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return 0, fmt.Errorf("%w: rating object: %v", ErrMalformed, err)
		}
		for _, key := range wrapperKeys {
			if v, ok := obj[key]; ok {
				return NormalizeRating(v)
			}
		}
		return 0, fmt.Errorf("%w: rating object has no numeric field", ErrMalformed)

	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("%w: rating string: %v", ErrMalformed, err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: rating %q is not numeric", ErrMalformed, s)
		}
		return f, nil

	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, fmt.Errorf("%w: rating %s: %v", ErrMalformed, raw, err)
		}
		return f, nil
	}
}
