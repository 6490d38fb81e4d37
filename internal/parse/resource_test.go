package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResourceKey(t *testing.T) {
	testCases := []struct {
		name        string
		raw         string
		expected    ResourceKey
		expectedErr error
	}{
		{
			name:     "Standard Case",
			raw:      "113_2",
			expected: ResourceKey{Room: "113", Place: "2"},
		},
		{
			name:     "Surrounding whitespace",
			raw:      "  117_4 ",
			expected: ResourceKey{Room: "117", Place: "4"},
		},
		{
			name:     "Underscore in room number",
			raw:      "UG_012_3",
			expected: ResourceKey{Room: "UG_012", Place: "3"},
		},
		{
			name:     "Non numeric place",
			raw:      "115_window",
			expected: ResourceKey{Room: "115", Place: "window"},
		},
		{
			name:        "Plain room number",
			raw:         "113",
			expectedErr: ErrMissingSeparator,
		},
		{
			name:        "Missing place",
			raw:         "113_",
			expectedErr: ErrEmptyPart,
		},
		{
			name:        "Missing room",
			raw:         "_2",
			expectedErr: ErrEmptyPart,
		},
		{
			name:        "Empty",
			raw:         "",
			expectedErr: ErrMissingSeparator,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseResourceKey(tc.raw)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, parsed)
			}
		})
	}
}

func TestResourceKeyRoundTrip(t *testing.T) {
	for _, raw := range []string{"113_1", "UG_012_3", "zoom_7"} {
		k, err := ParseResourceKey(raw)
		assert.NoError(t, err)
		assert.Equal(t, raw, k.String())
	}
}

func TestRoomOf(t *testing.T) {
	assert.Equal(t, "113", RoomOf("113_2"))
	assert.Equal(t, "113", RoomOf("113"))
	assert.Equal(t, "113_", RoomOf("113_"))
}

func TestWorkplaceKeys(t *testing.T) {
	assert.Equal(t, []string{"113_1", "113_2", "113_3"}, WorkplaceKeys("113", 3))
	assert.Nil(t, WorkplaceKeys("113", 0))
}
