package services

import (
	"testing"

	chat_errors "storefront-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService("test-secret", 60, "admin@example.com", string(hash))
}

func TestCustomerToken_RoundTrip(t *testing.T) {
	svc := newAuthFixture(t)

	token, err := svc.IssueCustomerToken("alice@x.com", "Alice")
	require.NoError(t, err)

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", id.Email)
	assert.Equal(t, "Alice", id.Name)
	assert.False(t, id.IsAdmin)
}

func TestCustomerToken_EmptyEmailRejected(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.IssueCustomerToken("", "Alice")
	assert.ErrorIs(t, err, chat_errors.ErrInvalidInput)
}

func TestAdminLogin_GrantsAdminRole(t *testing.T) {
	svc := newAuthFixture(t)

	token, err := svc.AdminLogin("admin@example.com", "hunter2")
	require.NoError(t, err)

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin)
	assert.Equal(t, "admin@example.com", id.Email)
}

func TestAdminLogin_Rejections(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.AdminLogin("admin@example.com", "wrong")
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)

	_, err = svc.AdminLogin("someone@else.com", "hunter2")
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)
}

func TestAdminLogin_NoHashConfigured(t *testing.T) {
	svc := NewAuthService("test-secret", 60, "admin@example.com", "")

	_, err := svc.AdminLogin("admin@example.com", "anything")
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := newAuthFixture(t)
	verifier := NewAuthService("other-secret", 60, "", "")

	token, err := issuer.IssueCustomerToken("alice@x.com", "Alice")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)
}

func TestParseToken_Garbage(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.ParseToken("not.a.jwt")
	assert.ErrorIs(t, err, chat_errors.ErrUnauthorized)
}
