package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Claims is the payload of a session token. Tokens are base64 JSON with no
// signature; anyone holding one can read or forge it.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Exp    int64  `json:"exp"` // epoch milliseconds
}

var ErrMalformedToken = errors.New("malformed session token")

func (c Claims) ExpiresAt() time.Time { return time.UnixMilli(c.Exp) }

// Expired reports whether the token is no longer valid at now.
func (c Claims) Expired(now time.Time) bool {
	return c.Exp <= now.UnixMilli()
}

func IssueToken(u User, now time.Time, ttl time.Duration) string {
	b, _ := json.Marshal(Claims{UserID: u.ID, Email: u.Email, Exp: now.Add(ttl).UnixMilli()})
	return base64.StdEncoding.EncodeToString(b)
}

func ParseToken(token string) (Claims, error) {
	b, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	var c Claims
	if err := json.Unmarshal(b, &c); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return c, nil
}
