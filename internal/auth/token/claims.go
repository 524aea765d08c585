package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of access-token claims the client displays. The
// client never verifies signatures; the server is the authority and the
// token is opaque for every purpose except expiry-aware UX.
type Claims struct {
	Subject   string
	SessionID string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

type rawClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid,omitempty"`
	JTI       string `json:"jti,omitempty"`
}

// Peek decodes the access token without verification. Opaque (non-JWT)
// tokens return ok=false; that is not an error.
func Peek(accessToken string) (Claims, bool) {
	var raw rawClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, &raw); err != nil {
		return Claims{}, false
	}

	c := Claims{Subject: raw.Subject, SessionID: raw.SessionID}
	if c.SessionID == "" {
		c.SessionID = raw.JTI
	}
	if raw.ExpiresAt != nil {
		c.ExpiresAt = raw.ExpiresAt.Time
	}
	if raw.IssuedAt != nil {
		c.IssuedAt = raw.IssuedAt.Time
	}
	return c, true
}

// ExpiresWithin reports whether the held token expires inside d. Opaque
// tokens and empty slots report false; the server rejects them if stale.
func (h *Holder) ExpiresWithin(d time.Duration) bool {
	claims, ok := Peek(h.AccessToken())
	if !ok || claims.ExpiresAt.IsZero() {
		return false
	}
	return time.Until(claims.ExpiresAt) < d
}
