package cache

import (
	"encoding/json"
	"time"
)

// Entry is the envelope stored for every memoized result.
type Entry struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

// NewEntry encodes v into an envelope stamped with now.
func NewEntry(v any, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Entry{StoredAt: now, Payload: payload})
}

// DecodeEntry unpacks an envelope into v. It reports false when the entry is
// older than ttl, even if the backend still had it.
func DecodeEntry(data []byte, v any, ttl time.Duration, now time.Time) (bool, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false, err
	}
	if ttl > 0 && now.Sub(e.StoredAt) > ttl {
		return false, nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return false, err
	}
	return true, nil
}
