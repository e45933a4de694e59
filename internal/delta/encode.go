package delta

import (
	"encoding/json"

	"github.com/ekm507/chroni/internal/errors"
)

// Encode serializes a delta for storage as a version record payload.
// The encoding is implementation-private and deterministic.
func Encode(d Delta) (string, error) {
	data, err := json.Marshal(d.Hunks)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return string(data), nil
}

// Decode parses a stored delta payload.
func Decode(payload string) (Delta, error) {
	var hunks []Hunk
	if err := json.Unmarshal([]byte(payload), &hunks); err != nil {
		return Delta{}, errors.NewMalformedDelta("unparseable delta payload: " + err.Error())
	}
	return Delta{Hunks: hunks}, nil
}
