package auth

import (
	"sync"

	"github.com/google/uuid"
)

// SessionLicenses records license acceptance for anonymous sessions. It is
// only consulted when authentication is disabled: without a durable account
// there is nowhere else to attribute an acceptance to, so it lives for the
// session only. With authentication enabled, acceptance is written to the
// license log table instead.
type SessionLicenses struct {
	mu       sync.Mutex
	accepted map[string]map[int64]bool
}

func NewSessionLicenses() *SessionLicenses {
	return &SessionLicenses{accepted: make(map[string]map[int64]bool)}
}

// NewSessionID issues a fresh anonymous session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Accept records that the session accepted the given license.
func (s *SessionLicenses) Accept(sessionID string, licenseID int64) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.accepted[sessionID]
	if set == nil {
		set = make(map[int64]bool)
		s.accepted[sessionID] = set
	}
	set[licenseID] = true
}

// Accepted returns a copy of the license ids the session has accepted.
func (s *SessionLicenses) Accepted(sessionID string) map[int64]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]bool, len(s.accepted[sessionID]))
	for id := range s.accepted[sessionID] {
		out[id] = true
	}
	return out
}
