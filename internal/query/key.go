package query

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Key identifies a cached query: the resource name followed by the
// parameters that select a variant of it, e.g. Key{"products", "맥북", ""}.
type Key []any

// Hash returns the canonical string form used for storage and dedup
func (k Key) Hash() string {
	data, err := json.Marshal([]any(k))
	if err != nil {
		return fmt.Sprint([]any(k))
	}
	return string(data)
}

// Resource returns the first element of the key
func (k Key) Resource() string {
	if len(k) == 0 {
		return ""
	}
	if s, ok := k[0].(string); ok {
		return s
	}
	return fmt.Sprint(k[0])
}

// HasPrefix reports whether k starts with every element of prefix.
// Elements compare by their JSON form, so int and int64 ids match.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		a, errA := json.Marshal(k[i])
		b, errB := json.Marshal(prefix[i])
		if errA != nil || errB != nil || !bytes.Equal(a, b) {
			return false
		}
	}
	return true
}
