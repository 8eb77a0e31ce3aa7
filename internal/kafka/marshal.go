package kafka

import (
	"encoding/json"
	"fmt"
)

// Decode unmarshals a message value or an envelope payload into T.
func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		return t, fmt.Errorf("decode %T: %w", t, err)
	}
	return t, nil
}
