package notification

import (
	"fmt"
	"strings"

	"room-booking-backend/internal/parse"
)

// Message is the JSON payload the service worker receives.
type Message struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	ResourceID string `json:"resource_id"`
}

// NewMessage builds the payload announcing that resourceID is free again.
func NewMessage(resourceID string) Message {
	return Message{
		Title:      "Free again",
		Body:       describe(resourceID) + " is free again!",
		ResourceID: resourceID,
	}
}

func describe(resourceID string) string {
	key, err := parse.ParseResourceKey(resourceID)
	switch {
	case err != nil:
		return "Room " + resourceID
	case key.Room == "zoom":
		return "Zoom room " + key.Place
	default:
		return fmt.Sprintf("Workplace %s in room %s", key.Place, key.Room)
	}
}

// topic derives the push topic of a resource. Push services replace an
// undelivered message with a newer one on the same topic, so a device that
// was offline only sees the latest "free again" per resource. Topics are
// limited to 32 URL-safe characters.
func topic(resourceID string) string {
	var b strings.Builder
	for _, r := range resourceID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
		if b.Len() == 32 {
			break
		}
	}
	return b.String()
}
