package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(now time.Time) *SessionTokenIssuer {
	return &SessionTokenIssuer{
		Secret: []byte("test-signing-key"),
		Issuer: "mfaportal-test",
		Now:    func() time.Time { return now },
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer(time.Now())

	token, expiresAt, err := issuer.Issue("a@x.com", PurposeFull, 30*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 2*time.Second)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, PurposeFull, claims.Purpose)
}

func TestSessionTokenZeroTTLExpires(t *testing.T) {
	start := time.Now()
	issuer := newTestIssuer(start)

	token, _, err := issuer.Issue("a@x.com", PurposeFull, 0)
	require.NoError(t, err)

	issuer.Now = func() time.Time { return start.Add(time.Second) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionTokenExpiryIsLazy(t *testing.T) {
	start := time.Now()
	issuer := newTestIssuer(start)

	token, _, err := issuer.Issue("a@x.com", PurposeMFAPending, 15*time.Minute)
	require.NoError(t, err)

	issuer.Now = func() time.Time { return start.Add(14 * time.Minute) }
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	issuer.Now = func() time.Time { return start.Add(16 * time.Minute) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionTokenTamperedSignature(t *testing.T) {
	issuer := newTestIssuer(time.Now())

	token, _, err := issuer.Issue("a@x.com", PurposeFull, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenTampered)
}

func TestSessionTokenTamperedPayload(t *testing.T) {
	issuer := newTestIssuer(time.Now())

	token, _, err := issuer.Issue("a@x.com", PurposeMFAPending, time.Hour)
	require.NoError(t, err)

	// Re-sign the payload with a different key: structure is fine, the
	// signature no longer matches the server key.
	other := newTestIssuer(time.Now())
	other.Secret = []byte("some-other-key")
	forged, _, err := other.Issue("a@x.com", PurposeFull, time.Hour)
	require.NoError(t, err)

	_, err = issuer.Verify(forged)
	assert.ErrorIs(t, err, ErrTokenTampered)

	_, err = issuer.Verify(token)
	require.NoError(t, err)
}

func TestSessionTokenMalformed(t *testing.T) {
	issuer := newTestIssuer(time.Now())

	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := issuer.Verify(token)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", token)
	}
}

func TestSessionTokenRejectsNonHMACAlgorithm(t *testing.T) {
	issuer := newTestIssuer(time.Now())

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "a@x.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestSessionTokenPurposeCarried(t *testing.T) {
	issuer := newTestIssuer(time.Now())

	token, _, err := issuer.Issue("a@x.com", PurposeMFAPending, time.Hour)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, PurposeMFAPending, claims.Purpose)
	assert.NotEqual(t, PurposeFull, claims.Purpose)
}
