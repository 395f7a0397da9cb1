package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenPurpose string

const (
	// PurposeFull marks a fully authenticated session token.
	PurposeFull TokenPurpose = "full"
	// PurposeMFAPending marks the intermediate token issued after a password
	// check while the TOTP code is still outstanding. It must never be
	// accepted where PurposeFull is required.
	PurposeMFAPending TokenPurpose = "mfa-pending"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenTampered  = errors.New("token signature mismatch")
	ErrTokenMalformed = errors.New("token malformed")
)

type TokenClaims struct {
	Subject string
	Purpose TokenPurpose
}

type sessionClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// SessionTokenIssuer signs and verifies the stateless session tokens. The
// signing key is fixed for the process lifetime; rotating it invalidates all
// outstanding tokens.
type SessionTokenIssuer struct {
	Secret []byte
	Issuer string
	Now    func() time.Time
}

// Issue applies ttl verbatim: a zero or negative ttl produces a token that is
// already expired. Callers pick their defaults via AuthConfig.
func (s *SessionTokenIssuer) Issue(subject string, purpose TokenPurpose, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims := sessionClaims{
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *SessionTokenIssuer) Verify(token string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenTampered
		default:
			return nil, ErrTokenMalformed
		}
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return &TokenClaims{
		Subject: claims.Subject,
		Purpose: TokenPurpose(claims.Purpose),
	}, nil
}

func (s *SessionTokenIssuer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
