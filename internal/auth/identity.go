package auth

import (
	"math"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Claim names carried by access tokens
const (
	ClaimUserID = "user_id"
	ClaimEmail  = "email"
)

// Identity is the authenticated caller. A zero UserID means no identity.
type Identity struct {
	UserID uint
	Email  string
}

// IsAuthenticated reports whether the identity names a real user
func (i Identity) IsAuthenticated() bool {
	return i.UserID != 0
}

// Extract reads the user id and email claims. A missing or unparseable
// user id yields UserID 0, which callers must reject.
func Extract(claims jwt.MapClaims) Identity {
	identity := Identity{
		UserID: parseUserID(claims[ClaimUserID]),
	}

	if email, ok := claims[ClaimEmail].(string); ok {
		identity.Email = email
	}

	return identity
}

func parseUserID(raw any) uint {
	switch v := raw.(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 0)
		if err != nil {
			return 0
		}
		return uint(id)
	case float64:
		// Numeric claims decode as float64
		if v <= 0 || v != math.Trunc(v) || v > math.MaxUint32 {
			return 0
		}
		return uint(v)
	default:
		return 0
	}
}
