package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func TestNewService(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	assert.NotNil(t, service)
	assert.Equal(t, testSecret, service.secret)
	assert.Equal(t, time.Hour, service.tokenExpiry)
}

func TestGenerateToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	userID := uuid.New()

	token, err := service.GenerateToken(userID, "USER")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "axevisa-backend", claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateToken_InvalidToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	_, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	other := NewService("a-different-secret-entirely", time.Hour)

	token, err := service.GenerateToken(uuid.New(), "ADMIN")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	service := NewService(testSecret, -time.Minute)

	token, err := service.GenerateToken(uuid.New(), "USER")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
	assert.True(t, service.IsTokenExpired(token))
}

func TestValidateToken_WrongSigningMethod(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	// Tokens signed with none must be rejected
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: uuid.New(), Role: "USER"})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestIsTokenExpired_ValidToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	token, err := service.GenerateToken(uuid.New(), "EXPERT")
	require.NoError(t, err)

	assert.False(t, service.IsTokenExpired(token))
}

func TestIsTokenExpired_ExpiredToken(t *testing.T) {
	service := NewService(testSecret, -time.Minute)

	token, err := service.GenerateToken(uuid.New(), "USER")
	require.NoError(t, err)

	assert.True(t, service.IsTokenExpired(token))
}

// A token that cannot be parsed is invalid, not expired. Reporting it as
// expired would make the middleware answer TOKEN_EXPIRED for garbage.
func TestIsTokenExpired_Garbage(t *testing.T) {
	service := NewService(testSecret, time.Hour)
	assert.False(t, service.IsTokenExpired("garbage"))
	assert.False(t, service.IsTokenExpired("not.a.token"))
}

func TestExtractClaims_AfterExpiry(t *testing.T) {
	service := NewService(testSecret, -time.Minute)

	userID := uuid.New()
	token, err := service.GenerateToken(userID, "USER")
	require.NoError(t, err)

	claims, err := service.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}
