package presence

import (
	"encoding/base64"
	"time"
)

// Status is the presence document for one user, stored in redis keyed by
// Key(email). Online is only meaningful jointly with a fresh LastSeen:
// observers must derive liveness via Fresh, never trust the flag alone.
type Status struct {
	Email        string    `json:"email"`
	Online       bool      `json:"online"`
	LastSeen     time.Time `json:"last_seen"`
	ActiveInRoom string    `json:"active_in_room,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
}

// Fresh reports whether the status counts as online at the given instant.
// A stored online=true older than the staleness window is treated as
// offline, since the heartbeat that should have refreshed it has stopped.
func (s Status) Fresh(now time.Time, staleness time.Duration) bool {
	return s.Online && now.Sub(s.LastSeen) <= staleness
}

// Key derives the stable, reversible presence key for an email. Case
// normalization is the caller's responsibility.
func Key(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(email))
}

// EmailFromKey reverses Key.
func EmailFromKey(key string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
