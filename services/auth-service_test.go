package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HKazz/project-3-back-end/models"
)

func TestAuthScenario(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)

	alice, err := env.auth.Register(ctx, "Alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.Username)
	assert.NotEqual(t, "pw1", alice.PasswordHash)

	_, err = env.auth.Register(ctx, "alice", "anything")
	assert.ErrorIs(t, err, models.ErrConflict)

	_, _, err = env.auth.Login(ctx, "Alice", "wrongpw")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	token, user, err := env.auth.Login(ctx, "Alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	identity, err := env.auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, alice.ID, identity.ID)
}

func TestLoginUnknownUserMatchesWrongPassword(t *testing.T) {
	ctx := context.Background()
	env := defaultEnv(t)
	env.register(t, "bob")

	_, _, unknown := env.auth.Login(ctx, "nobody", "pw")
	_, _, wrong := env.auth.Login(ctx, "bob", "pw")
	require.ErrorIs(t, unknown, models.ErrUnauthorized)
	require.ErrorIs(t, wrong, models.ErrUnauthorized)
	assert.Equal(t, unknown.Error(), wrong.Error())
}

func TestRegisterRequiresCredentials(t *testing.T) {
	env := defaultEnv(t)
	_, err := env.auth.Register(context.Background(), "   ", "pw")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = env.auth.Register(context.Background(), "carol", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = env.auth.Register(context.Background(), "bob", strings.Repeat("a", 80))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = env.store.Users().FindByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = env.auth.Register(context.Background(), "bob", strings.Repeat("a", 72))
	assert.NoError(t, err)
}

func TestTokenValidUntilExpiry(t *testing.T) {
	issued := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := NewJWTService("test-secret", time.Hour)
	svc.now = func() time.Time { return issued }
	identity := models.Identity{ID: primitive.NewObjectID(), Username: "alice"}

	token, err := svc.GenerateToken(identity)
	require.NoError(t, err)

	got, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity, got)

	svc.now = func() time.Time { return issued.Add(time.Hour + time.Second) }
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestParseTokenRejectsForeignTokens(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	identity := models.Identity{ID: primitive.NewObjectID(), Username: "alice"}

	other, err := NewJWTService("other-secret", time.Hour).GenerateToken(identity)
	require.NoError(t, err)
	_, err = svc.ParseToken(other)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:   identity.ID.Hex(),
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ParseToken(unsigned)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:   identity.ID.Hex(),
		Username: identity.Username,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(noExpiry)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
