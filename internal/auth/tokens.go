package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/notesapp/notes-api/internal/config"
)

// TokenService issues and validates signed access tokens.
//
// Tokens are stateless: there is no server-side session and no revocation.
// Refreshing means validating a token and issuing a new one with the same
// claims; the old token stays usable until it expires.
type TokenService interface {
	Issue(userID uint, email string) (string, error)
	Validate(tokenString string) (Identity, error)
	TTL() time.Duration
}

type jwtTokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenService creates an HS256 token service
func NewTokenService(secret, issuer, audience string, ttl time.Duration) TokenService {
	return NewTokenServiceWithClock(secret, issuer, audience, ttl, time.Now)
}

// NewTokenServiceWithClock creates a token service that reads the current time from now
func NewTokenServiceWithClock(secret, issuer, audience string, ttl time.Duration, now func() time.Time) TokenService {
	return &jwtTokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      now,
	}
}

// NewTokenServiceFromConfig creates a token service from the JWT_* settings
func NewTokenServiceFromConfig(cfg *config.Config) TokenService {
	return NewTokenService(
		cfg.JWTSecret,
		cfg.JWTIssuer,
		cfg.JWTAudience,
		time.Duration(cfg.JWTExpirationMinutes)*time.Minute,
	)
}

func (s *jwtTokenService) Issue(userID uint, email string) (string, error) {
	now := s.now()

	claims := jwt.MapClaims{
		ClaimUserID: strconv.FormatUint(uint64(userID), 10),
		ClaimEmail:  email,
		"iss":       s.issuer,
		"aud":       s.audience,
		"iat":       now.Unix(),
		"exp":       now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *jwtTokenService) Validate(tokenString string) (Identity, error) {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}

	return Extract(claims), nil
}

func (s *jwtTokenService) TTL() time.Duration {
	return s.ttl
}

// Auth errors
var (
	ErrInvalidToken = errors.New("invalid or expired token")
)
