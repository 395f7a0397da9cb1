package service

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	// TokenTTL is the default lifetime for issued tokens, used for the
	// short-lived mfa-pending token.
	TokenTTL time.Duration
	// SessionTTL is the lifetime of a full session token.
	SessionTTL time.Duration
	MFAIssuer  string
	BcryptCost int
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type SessionTokens interface {
	Issue(subject string, purpose TokenPurpose, ttl time.Duration) (string, time.Time, error)
	Verify(token string) (*TokenClaims, error)
}

type MFAProvider interface {
	GenerateSecret() (string, error)
	ProvisioningURI(account string, issuer string, secret string) string
	EnrollmentImage(uri string) ([]byte, error)
	ValidateCode(secret string, code string) bool
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify returns false for malformed hashes as well as mismatches; bcrypt
// surfaces both as errors.
func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
