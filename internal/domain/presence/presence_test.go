package presence

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_RoundTrip(t *testing.T) {
	emails := []string{
		"alice@example.com",
		"first.last+tag@sub.domain.io",
		"UPPER@CASE.COM",
	}
	for _, email := range emails {
		key := Key(email)
		assert.False(t, strings.ContainsAny(key, "@/+="), "key must be safe in channel names: %s", key)

		back, err := EmailFromKey(key)
		require.NoError(t, err)
		assert.Equal(t, email, back)
	}
}

func TestEmailFromKey_Invalid(t *testing.T) {
	_, err := EmailFromKey("not%valid!base64")
	assert.Error(t, err)
}

func TestFresh(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	window := time.Minute

	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"online and recent", Status{Online: true, LastSeen: now.Add(-10 * time.Second)}, true},
		{"exactly at window", Status{Online: true, LastSeen: now.Add(-window)}, true},
		{"just past window", Status{Online: true, LastSeen: now.Add(-window - time.Nanosecond)}, false},
		{"offline flag wins", Status{Online: false, LastSeen: now}, false},
		{"zero document", Status{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Fresh(now, window))
		})
	}
}
