package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("activation-secret", "session-secret", time.Hour, 24*time.Hour)
}

func TestActivationTokenRoundTrip(t *testing.T) {
	m := newTestManager()
	tok, exp, err := m.GenerateActivationToken("user-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.ParseActivationToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	m := newTestManager()
	tok, _, err := m.GenerateSessionToken("user-2")
	require.NoError(t, err)

	claims, err := m.ParseSessionToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID)
}

func TestTokenKindsDoNotCrossVerify(t *testing.T) {
	m := newTestManager()

	act, _, err := m.GenerateActivationToken("user-1")
	require.NoError(t, err)
	_, err = m.ParseSessionToken(act)
	assert.Error(t, err, "activation token must not pass as a session token")

	sess, _, err := m.GenerateSessionToken("user-1")
	require.NoError(t, err)
	_, err = m.ParseActivationToken(sess)
	assert.Error(t, err, "session token must not pass as an activation token")
}

func TestExpiredTokenIsRejected(t *testing.T) {
	m := NewJWTManager("activation-secret", "session-secret", -time.Minute, -time.Minute)
	tok, _, err := m.GenerateActivationToken("user-1")
	require.NoError(t, err)
	_, err = m.ParseActivationToken(tok)
	assert.Error(t, err)
}

func TestTamperedTokenIsRejected(t *testing.T) {
	m := newTestManager()
	tok, _, err := m.GenerateSessionToken("user-1")
	require.NoError(t, err)

	tampered := tok[:len(tok)-2] + "xx"
	_, err = m.ParseSessionToken(tampered)
	assert.Error(t, err)

	_, err = m.ParseSessionToken("garbage")
	assert.Error(t, err)
}
