package services_test

import (
	"strings"
	"testing"

	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/models"
	"github.com/homehelp/homehelp-api/services"
	"github.com/homehelp/homehelp-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentityService(t *testing.T) (*services.IdentityService, *services.TokenService) {
	t.Helper()
	testutil.RequireTestEnvironment(t)

	tokens := testutil.NewTokenService(t)
	return testutil.NewIdentityService(t, testutil.NewTestDB(t), tokens), tokens
}

func TestRegister(t *testing.T) {
	identities, tokens := newIdentityService(t)

	user, token, err := identities.Register(t.Context(), services.RegisterInput{
		Name:     " Alice ",
		Email:    " Alice@Example.COM ",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email, "email is trimmed and lowercased")
	assert.Equal(t, models.RoleUser, user.Role, "role defaults to user")
	assert.NotEqual(t, "secret1", user.PasswordHash)

	caller, err := tokens.Verify(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, caller.ID)
	assert.Equal(t, "alice@example.com", caller.Email)
	assert.Equal(t, models.RoleUser, caller.Role)
}

func TestRegister_Helper(t *testing.T) {
	identities, tokens := newIdentityService(t)

	_, token, err := identities.Register(t.Context(), services.RegisterInput{
		Name: "Plumber Pro", Email: "b@example.com", Password: "secret1", Role: models.RoleHelper,
	})
	require.NoError(t, err)

	caller, err := tokens.Verify(t.Context(), token)
	require.NoError(t, err)
	assert.True(t, caller.CanProvideServices())
}

func TestRegister_Rejects(t *testing.T) {
	identities, _ := newIdentityService(t)
	_, _, err := identities.Register(t.Context(), services.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input services.RegisterInput
		kind  apperror.Kind
	}{
		{"missing name", services.RegisterInput{Email: "x@example.com", Password: "secret1"}, apperror.MissingFields},
		{"missing password", services.RegisterInput{Name: "X", Email: "x@example.com"}, apperror.MissingFields},
		{"bad email", services.RegisterInput{Name: "X", Email: "not-an-email", Password: "secret1"}, apperror.InvalidInput},
		{"short password", services.RegisterInput{Name: "X", Email: "x@example.com", Password: "12345"}, apperror.InvalidInput},
		{"password over 72 bytes", services.RegisterInput{Name: "X", Email: "x@example.com", Password: strings.Repeat("p", 80)}, apperror.InvalidInput},
		{"unknown role", services.RegisterInput{Name: "X", Email: "x@example.com", Password: "secret1", Role: "admin"}, apperror.InvalidInput},
		{"duplicate email", services.RegisterInput{Name: "Other", Email: "ALICE@example.com", Password: "secret1"}, apperror.Conflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := identities.Register(t.Context(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestLogin(t *testing.T) {
	identities, tokens := newIdentityService(t)
	registered, _, err := identities.Register(t.Context(), services.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, token, err := identities.Login(t.Context(), "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	caller, err := tokens.Verify(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, caller.ID)

	_, _, err = identities.Login(t.Context(), "alice@example.com", "wrong-password")
	assert.Equal(t, apperror.Unauthenticated, apperror.KindOf(err))

	_, _, err = identities.Login(t.Context(), "nobody@example.com", "secret1")
	assert.Equal(t, apperror.Unauthenticated, apperror.KindOf(err))
	assert.EqualError(t, err, "Invalid credentials", "unknown email and wrong password look the same")

	_, _, err = identities.Login(t.Context(), "", "")
	assert.Equal(t, apperror.MissingFields, apperror.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	identities, _ := newIdentityService(t)
	alice, _, err := identities.Register(t.Context(), services.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, _, err = identities.Register(t.Context(), services.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	caller := models.VerifiedCaller{ID: alice.ID, Email: alice.Email, Role: alice.Role}

	updated, err := identities.UpdateProfile(t.Context(), caller, services.ProfileInput{Name: "Alice Smith"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)

	updated, err = identities.UpdateProfile(t.Context(), caller, services.ProfileInput{Email: "Alice.Smith@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice.smith@example.com", updated.Email)

	_, err = identities.UpdateProfile(t.Context(), caller, services.ProfileInput{Email: "bob@example.com"})
	assert.Equal(t, apperror.Conflict, apperror.KindOf(err))

	_, err = identities.UpdateProfile(t.Context(), caller, services.ProfileInput{Email: "nope"})
	assert.Equal(t, apperror.InvalidInput, apperror.KindOf(err))

	_, err = identities.Get(t.Context(), models.VerifiedCaller{ID: 9999})
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
}
