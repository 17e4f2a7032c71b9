package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notesapp/notes-api/internal/auth"
)

const (
	testSecret   = "test-secret-key-for-hmac-signing"
	testIssuer   = "notes-api"
	testAudience = "notes-api-clients"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestService(clock *fakeClock) auth.TokenService {
	return auth.NewTokenServiceWithClock(testSecret, testIssuer, testAudience, 30*time.Minute, clock.Now)
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	svc := newTestService(clock)

	tests := []struct {
		name   string
		userID uint
		email  string
	}{
		{"simple", 1, "a@x.com"},
		{"large id", 4294967295, "big@example.com"},
		{"unicode email", 42, "üser@exämple.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Issue(tt.userID, tt.email)
			require.NoError(t, err)
			assert.Len(t, strings.Split(token, "."), 3)

			identity, err := svc.Validate(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, identity.UserID)
			assert.Equal(t, tt.email, identity.Email)
			assert.True(t, identity.IsAuthenticated())
		})
	}
}

func TestTokenService_Claims(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	svc := newTestService(clock)

	token, err := svc.Issue(7, "claims@example.com")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	assert.Equal(t, "7", claims[auth.ClaimUserID])
	assert.Equal(t, "claims@example.com", claims[auth.ClaimEmail])
	assert.Equal(t, testIssuer, claims["iss"])
	assert.Equal(t, testAudience, claims["aud"])
	assert.Equal(t, float64(clock.now.Add(30*time.Minute).Unix()), claims["exp"])
}

func TestTokenService_Expiration(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	svc := newTestService(clock)

	token, err := svc.Issue(1, "a@x.com")
	require.NoError(t, err)

	t.Run("valid just before expiry", func(t *testing.T) {
		clock.now = clock.now.Add(29 * time.Minute)
		_, err := svc.Validate(token)
		assert.NoError(t, err)
	})

	t.Run("invalid one second past expiry", func(t *testing.T) {
		clock.now = time.Date(2026, 1, 2, 3, 34, 6, 0, time.UTC)
		_, err := svc.Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("invalid long after expiry", func(t *testing.T) {
		clock.now = clock.now.Add(24 * time.Hour)
		_, err := svc.Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestTokenService_Rejections(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	svc := newTestService(clock)

	otherSecret := auth.NewTokenServiceWithClock("another-secret-entirely", testIssuer, testAudience, 30*time.Minute, clock.Now)
	otherIssuer := auth.NewTokenServiceWithClock(testSecret, "someone-else", testAudience, 30*time.Minute, clock.Now)
	otherAudience := auth.NewTokenServiceWithClock(testSecret, testIssuer, "other-clients", 30*time.Minute, clock.Now)

	issue := func(s auth.TokenService) string {
		token, err := s.Issue(1, "a@x.com")
		require.NoError(t, err)
		return token
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		auth.ClaimUserID: "1",
		"iss":            testIssuer,
		"aud":            testAudience,
		"exp":            clock.now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512Token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		auth.ClaimUserID: "1",
		"iss":            testIssuer,
		"aud":            testAudience,
		"exp":            clock.now.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		auth.ClaimUserID: "1",
		"iss":            testIssuer,
		"aud":            testAudience,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	valid := issue(svc)
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"different secret", issue(otherSecret)},
		{"wrong issuer", issue(otherIssuer)},
		{"wrong audience", issue(otherAudience)},
		{"none algorithm", noneToken},
		{"unexpected algorithm", hs512Token},
		{"missing expiration", noExpToken},
		{"tampered payload", tampered},
		{"malformed", "not-a-token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
			assert.False(t, identity.IsAuthenticated())
		})
	}
}

func TestTokenService_RefreshKeepsOldTokenValid(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(clock)

	oldToken, err := svc.Issue(3, "r@x.com")
	require.NoError(t, err)

	clock.now = clock.now.Add(10 * time.Minute)
	identity, err := svc.Validate(oldToken)
	require.NoError(t, err)

	newToken, err := svc.Issue(identity.UserID, identity.Email)
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, newToken)

	_, err = svc.Validate(oldToken)
	assert.NoError(t, err)
}

func TestNewTokenService_TTL(t *testing.T) {
	svc := auth.NewTokenService(testSecret, testIssuer, testAudience, 45*time.Minute)
	assert.Equal(t, 45*time.Minute, svc.TTL())
}
