package identity

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-signing-secret"

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTVerifierRoundTrip(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	raw := mintToken(t, testSecret, jwt.MapClaims{
		"sub":     "user-42",
		"email":   "alice@example.com",
		"name":    "Alice",
		"picture": "https://cdn.example.com/alice.png",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	id, err := v.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", id.Subject)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, "Alice", id.Name)
	assert.Equal(t, "https://cdn.example.com/alice.png", id.AvatarURL)
}

func TestJWTVerifierRejectsBadTokens(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	t.Run("wrong secret", func(t *testing.T) {
		raw := mintToken(t, "some-other-secret", jwt.MapClaims{"sub": "user-42"})
		_, err := v.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		raw := mintToken(t, testSecret, jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(-time.Minute).Unix(),
		})
		_, err := v.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		raw := mintToken(t, testSecret, jwt.MapClaims{"email": "alice@example.com"})
		_, err := v.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestFromHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("X-User-Id", "user-42")
	h.Set("X-User-Email", "alice@example.com")
	h.Set("X-User-Name", "Alice")
	h.Set("X-User-Avatar", "https://cdn.example.com/alice.png")

	id, ok := FromHeaders(h)
	require.True(t, ok)
	assert.Equal(t, "user-42", id.Subject)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, "Alice", id.Name)
	assert.Equal(t, "https://cdn.example.com/alice.png", id.AvatarURL)
}

func TestFromHeadersRequiresSubject(t *testing.T) {
	h := http.Header{}
	h.Set("X-User-Email", "alice@example.com")

	_, ok := FromHeaders(h)
	assert.False(t, ok)
}
