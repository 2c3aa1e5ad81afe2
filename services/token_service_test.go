package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789abcdef0123456789"

func newTestTokenService(t *testing.T, secret string) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{
		Secret:   secret,
		Issuer:   "homehelp-identity",
		Audience: "homehelp-api",
		TTL:      time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService(TokenConfig{Issuer: "homehelp-identity", Audience: "homehelp-api"})
	assert.Error(t, err)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestTokenService(t, testSecret)

	token, err := svc.Issue(models.Identity{ID: 42, Name: "Plumber Pro", Email: "b@example.com", Role: models.RoleHelper})
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3, "token should be a compact JWS")

	caller, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.VerifiedCaller{ID: 42, Email: "b@example.com", Name: "Plumber Pro", Role: models.RoleHelper}, caller)
}

func TestTokenService_VerifyRejects(t *testing.T) {
	svc := newTestTokenService(t, testSecret)
	identity := models.Identity{ID: 1, Name: "A", Email: "a@example.com", Role: models.RoleUser}

	expiredIssuer := newTestTokenService(t, testSecret)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue(identity)
	require.NoError(t, err)

	foreign, err := newTestTokenService(t, "another-secret-0123456789abcdef01234").Issue(identity)
	require.NoError(t, err)

	otherAudience, err := NewTokenService(TokenConfig{Secret: testSecret, Issuer: "homehelp-identity", Audience: "someone-else", TTL: time.Hour})
	require.NoError(t, err)
	wrongAudience, err := otherAudience.Issue(identity)
	require.NoError(t, err)

	badRole, err := svc.Issue(models.Identity{ID: 1, Email: "a@example.com", Role: "admin"})
	require.NoError(t, err)

	valid, err := svc.Issue(identity)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
	}{
		{"expired token", expired},
		{"signed with another secret", foreign},
		{"wrong audience", wrongAudience},
		{"unknown role claim", badRole},
		{"tampered signature", tampered},
		{"garbage", "not-a-token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(context.Background(), tt.token)
			require.Error(t, err)
			assert.Equal(t, apperror.Unauthenticated, apperror.KindOf(err))
		})
	}
}

func TestTokenService_DecodeUnverified(t *testing.T) {
	svc := newTestTokenService(t, testSecret)

	foreign, err := newTestTokenService(t, "another-secret-0123456789abcdef01234").
		Issue(models.Identity{ID: 9, Name: "Someone", Email: "someone@example.com", Role: models.RoleUser})
	require.NoError(t, err)

	hint, err := svc.DecodeUnverified(foreign)
	require.NoError(t, err)
	assert.Equal(t, models.UnverifiedCaller{Subject: "9", Email: "someone@example.com", Name: "Someone"}, hint)
	assert.False(t, hint.Authoritative())

	_, err = svc.DecodeUnverified("not-a-token")
	assert.Error(t, err)
}
