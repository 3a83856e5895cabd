package item

import (
	"encoding/json"
	"slices"
	"strings"
)

// Tags is a normalized, sorted set of category labels.
//
// Source documents store categories either as a single string or as a list;
// Tags accepts both when decoding JSON so nothing past the store boundary
// has to care which form was used.
type Tags []string

// NewTags builds a Tags set: trimmed, deduplicated, sorted, empties dropped.
func NewTags(values ...string) Tags {
	out := make(Tags, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Has reports whether tag is in the set.
func (t Tags) Has(tag string) bool {
	_, found := slices.BinarySearch(t, tag)
	return found
}

// UnmarshalJSON accepts null, a string, or an array of strings.
func (t *Tags) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = NewTags(single)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = NewTags(list...)
	return nil
}

// String joins tags with ", " for display.
func (t Tags) String() string {
	return strings.Join(t, ", ")
}
