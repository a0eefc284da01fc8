package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veriflow/veriflow/internal/auth/constants"
)

func TestIsDevelopmentClientID(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		expected bool
	}{
		{
			name:     "prefixed id",
			clientID: "4398792-abc123",
			expected: true,
		},
		{
			name:     "prefix alone",
			clientID: "4398792-",
			expected: true,
		},
		{
			name:     "shared google demo id",
			clientID: constants.DevOAuthClientIDs[0],
			expected: true,
		},
		{
			name:     "shared github demo id",
			clientID: constants.DevOAuthClientIDs[1],
			expected: true,
		},
		{
			name:     "production id",
			clientID: "abc123",
			expected: false,
		},
		{
			name:     "prefix not at the start",
			clientID: "abc-4398792-xyz",
			expected: false,
		},
		{
			name:     "empty",
			clientID: "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDevelopmentClientID(tt.clientID))
		})
	}
}

func TestStripDevPrefix(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		expected string
	}{
		{
			name:     "prefixed id",
			clientID: "4398792-abc123",
			expected: "abc123",
		},
		{
			name:     "already stripped",
			clientID: "abc123",
			expected: "abc123",
		},
		{
			name:     "only the first occurrence is stripped",
			clientID: "4398792-4398792-abc",
			expected: "4398792-abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripDevPrefix(tt.clientID))
		})
	}
}

func TestStripDevPrefixIdempotent(t *testing.T) {
	once := StripDevPrefix("4398792-abc123")
	assert.Equal(t, once, StripDevPrefix(once))
}
