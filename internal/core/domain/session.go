package domain

import "time"

// AdminSession is an operator session. ID is the token's jti.
type AdminSession struct {
	ID        string    `json:"id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session is past its expiry at now.
func (s *AdminSession) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// TTL returns the remaining lifetime, or 0 if already expired.
func (s *AdminSession) TTL(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
