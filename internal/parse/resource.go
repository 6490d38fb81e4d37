package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const keySeparator = "_"

var (
	// ErrMissingSeparator is returned for keys without a "_".
	ErrMissingSeparator = errors.New("missing separator")
	// ErrEmptyPart is returned when the room or the place is blank.
	ErrEmptyPart = errors.New("empty key part")
)

// ResourceKey identifies a single workplace inside a room.
type ResourceKey struct {
	Room  string
	Place string
}

// String joins the key back into its "<room>_<place>" form.
func (k ResourceKey) String() string {
	return k.Room + keySeparator + k.Place
}

// ParseResourceKey splits a composite "<room>_<place>" key on its last "_".
// Room numbers may themselves contain underscores, places never do.
func ParseResourceKey(raw string) (ResourceKey, error) {
	s := strings.TrimSpace(raw)
	i := strings.LastIndex(s, keySeparator)
	if i < 0 {
		return ResourceKey{}, fmt.Errorf("unable to parse resource key %q: %w", raw, ErrMissingSeparator)
	}

	k := ResourceKey{
		Room:  strings.TrimSpace(s[:i]),
		Place: strings.TrimSpace(s[i+1:]),
	}
	if k.Room == "" || k.Place == "" {
		return ResourceKey{}, fmt.Errorf("unable to parse resource key %q: %w", raw, ErrEmptyPart)
	}
	return k, nil
}

// RoomOf returns the room of a composite key, or id itself when it is a
// plain room number.
func RoomOf(id string) string {
	k, err := ParseResourceKey(id)
	if err != nil {
		return strings.TrimSpace(id)
	}
	return k.Room
}

// WorkplaceKeys expands a room into one key per place, numbered from 1.
func WorkplaceKeys(room string, capacity int) []string {
	if capacity <= 0 {
		return nil
	}
	keys := make([]string, 0, capacity)
	for i := 1; i <= capacity; i++ {
		keys = append(keys, ResourceKey{Room: room, Place: strconv.Itoa(i)}.String())
	}
	return keys
}
