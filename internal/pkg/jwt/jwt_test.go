package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := LoadAndBuild(Config{Secret: testSecret, Issuer: "laptoppro", Audience: "laptoppro-api", TTL: ttl})
	require.NoError(t, err)
	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager(t, time.Hour)

	token, jti, err := m.Generator.GenerateAccessToken(7, "amin", "admin")
	require.NoError(t, err)
	assert.Len(t, jti, 26)

	claims, err := m.Verifier.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.StaffID)
	assert.Equal(t, "amin", claims.Username)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, jti, claims.ID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := testManager(t, time.Hour)
	m.Generator.Ttl = -time.Minute

	token, _, err := m.Generator.GenerateAccessToken(1, "siti", "staff")
	require.NoError(t, err)

	_, err = m.Verifier.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	m := testManager(t, time.Hour)
	token, _, err := m.Generator.GenerateAccessToken(1, "siti", "staff")
	require.NoError(t, err)

	other := NewVerifier([]byte("ffffffffffffffffffffffffffffffff"), "laptoppro", "laptoppro-api")
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	m := testManager(t, time.Hour)
	token, _, err := m.Generator.GenerateAccessToken(1, "siti", "staff")
	require.NoError(t, err)

	other := NewVerifier([]byte(testSecret), "someone-else", "laptoppro-api")
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestLoadAndBuildRejectsShortSecret(t *testing.T) {
	_, err := LoadAndBuild(Config{Secret: "short", TTL: time.Hour})
	assert.Error(t, err)
}
