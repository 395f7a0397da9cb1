package service

import (
	"bytes"
	"encoding/base32"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestGenerateSecretEntropy(t *testing.T) {
	provider := NewTOTPProvider("MFA Portal")

	secret, err := provider.GenerateSecret()
	require.NoError(t, err)

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(raw)*8, 160, "secret must carry at least 160 bits")

	second, err := provider.GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, second)
}

func TestProvisioningURI(t *testing.T) {
	provider := NewTOTPProvider("MFA Portal")

	uri := provider.ProvisioningURI("a@x.com", "MFA Portal", "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP")

	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/"), uri)
	assert.Contains(t, uri, "secret=JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP")
	assert.Contains(t, uri, "issuer=MFA+Portal")
	assert.Contains(t, uri, "digits=6")
	assert.Contains(t, uri, "period=30")

	// Deterministic given the same inputs.
	assert.Equal(t, uri, provider.ProvisioningURI("a@x.com", "MFA Portal", "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"))
}

func TestEnrollmentImageIsPNG(t *testing.T) {
	provider := NewTOTPProvider("MFA Portal")

	secret, err := provider.GenerateSecret()
	require.NoError(t, err)
	uri := provider.ProvisioningURI("a@x.com", "MFA Portal", secret)

	image, err := provider.EnrollmentImage(uri)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(image, pngMagic))
}

func TestEnrollmentImageRejectsBadURI(t *testing.T) {
	provider := NewTOTPProvider("MFA Portal")

	_, err := provider.EnrollmentImage("http://not-otpauth")
	assert.Error(t, err)
}

func TestValidateCodeWindow(t *testing.T) {
	provider := NewTOTPProvider("MFA Portal")
	secret, err := provider.GenerateSecret()
	require.NoError(t, err)

	issued := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	code, err := totp.GenerateCode(secret, issued)
	require.NoError(t, err)

	provider.Now = func() time.Time { return issued }
	assert.True(t, provider.ValidateCode(secret, code), "current window")

	provider.Now = func() time.Time { return issued.Add(30 * time.Second) }
	assert.True(t, provider.ValidateCode(secret, code), "one step of skew")

	provider.Now = func() time.Time { return issued.Add(2 * time.Minute) }
	assert.False(t, provider.ValidateCode(secret, code), "beyond the skew window")
}

func TestValidateCodeMalformedInput(t *testing.T) {
	provider := NewTOTPProvider("MFA Portal")
	secret, err := provider.GenerateSecret()
	require.NoError(t, err)

	for _, code := range []string{"", "12345", "1234567", "abcdef", "12 456"} {
		assert.False(t, provider.ValidateCode(secret, code), "code %q", code)
	}
}

func TestValidateCodeWrongSecret(t *testing.T) {
	provider := NewTOTPProvider("MFA Portal")

	first, err := provider.GenerateSecret()
	require.NoError(t, err)
	second, err := provider.GenerateSecret()
	require.NoError(t, err)

	now := time.Now()
	code, err := totp.GenerateCode(first, now)
	require.NoError(t, err)

	provider.Now = func() time.Time { return now }
	assert.False(t, provider.ValidateCode(second, code))
}
