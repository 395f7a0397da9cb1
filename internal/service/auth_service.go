package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"mfaportal/internal/entity"
	"mfaportal/internal/repository"
	"mfaportal/internal/utils"
)

// dummyPasswordHash keeps the bcrypt cost of a login against an unknown email
// in line with a real verification, so response timing does not reveal
// whether the account exists.
const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

type AuthService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens SessionTokens
	mfa    MFAProvider
	config AuthConfig
}

type LoginResult struct {
	MFARequired bool
	Token       string
	ExpiresAt   time.Time
}

type EnrollmentSetup struct {
	Secret string
	URI    string
	Image  []byte
}

func NewAuthService(
	users repository.UserRepository,
	hasher PasswordHasher,
	tokens SessionTokens,
	mfa MFAProvider,
	config AuthConfig,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		mfa:    mfa,
		config: config,
	}
}

func (s *AuthService) Signup(ctx context.Context, email, name, password string) (*entity.User, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidInput
	}

	email = utils.NormalizeEmail(email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		MFAEnabled:   false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A racing signup for the same email loses at the unique index.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login verifies the password and either opens a full session or, when MFA is
// enabled, hands back a short-lived mfa-pending token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidInput
	}

	email = utils.NormalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.hasher.Verify(dummyPasswordHash, password)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if user.MFAEnabled {
		token, expiresAt, err := s.tokens.Issue(user.Email, PurposeMFAPending, s.pendingTokenTTL())
		if err != nil {
			return nil, err
		}
		return &LoginResult{MFARequired: true, Token: token, ExpiresAt: expiresAt}, nil
	}

	return s.openSession(user)
}

// CompleteMFALogin exchanges a pending token plus a valid TOTP code for a
// full session token.
func (s *AuthService) CompleteMFALogin(ctx context.Context, pendingToken, code string) (*LoginResult, error) {
	claims, err := s.tokens.Verify(pendingToken)
	if err != nil || claims.Purpose != PurposeMFAPending {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.MFAEnabled || user.MFASecret == nil {
		return nil, ErrMFANotEnabled
	}
	if !s.mfa.ValidateCode(*user.MFASecret, code) {
		return nil, ErrInvalidMFACode
	}

	return s.openSession(user)
}

// BeginMFAEnrollment hands out a fresh secret with its provisioning URI and
// QR image. Nothing is persisted until ConfirmMFAEnrollment succeeds; an
// abandoned enrollment leaves no trace.
func (s *AuthService) BeginMFAEnrollment(ctx context.Context, fullToken string) (*EnrollmentSetup, error) {
	user, err := s.CurrentUser(ctx, fullToken)
	if err != nil {
		return nil, err
	}
	if user.MFAEnabled {
		return nil, ErrMFAAlreadyEnabled
	}

	secret, err := s.mfa.GenerateSecret()
	if err != nil {
		return nil, err
	}
	uri := s.mfa.ProvisioningURI(user.Email, s.config.MFAIssuer, secret)
	image, err := s.mfa.EnrollmentImage(uri)
	if err != nil {
		return nil, err
	}
	return &EnrollmentSetup{Secret: secret, URI: uri, Image: image}, nil
}

// ConfirmMFAEnrollment checks the submitted code against the candidate secret
// and only then persists it, flipping secret and flag together.
func (s *AuthService) ConfirmMFAEnrollment(ctx context.Context, fullToken, secret, code string) error {
	user, err := s.CurrentUser(ctx, fullToken)
	if err != nil {
		return err
	}
	if strings.TrimSpace(secret) == "" {
		return ErrInvalidInput
	}
	if !s.mfa.ValidateCode(secret, code) {
		return ErrInvalidMFACode
	}

	if err := s.users.EnableMFA(ctx, user.ID, secret); err != nil {
		switch {
		case errors.Is(err, repository.ErrMFAAlreadyEnabled):
			return ErrMFAAlreadyEnabled
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		default:
			return err
		}
	}
	return nil
}

// DisableMFA clears the secret after the submitted code verifies against it.
// The store write is keyed on the observed secret, so a concurrent
// re-enrollment fails the update instead of being silently overwritten.
func (s *AuthService) DisableMFA(ctx context.Context, fullToken, code string) error {
	user, err := s.CurrentUser(ctx, fullToken)
	if err != nil {
		return err
	}
	if !user.MFAEnabled || user.MFASecret == nil {
		return ErrMFANotEnabled
	}
	if !s.mfa.ValidateCode(*user.MFASecret, code) {
		return ErrInvalidMFACode
	}

	if err := s.users.DisableMFA(ctx, user.ID, *user.MFASecret); err != nil {
		switch {
		case errors.Is(err, repository.ErrMFANotEnabled):
			return ErrMFANotEnabled
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		default:
			return err
		}
	}
	return nil
}

// CurrentUser resolves a full session token to its user record.
func (s *AuthService) CurrentUser(ctx context.Context, fullToken string) (*entity.User, error) {
	claims, err := s.tokens.Verify(fullToken)
	if err != nil || claims.Purpose != PurposeFull {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) openSession(user *entity.User) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.Email, PurposeFull, s.sessionTTL())
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.config.SessionTTL > 0 {
		return s.config.SessionTTL
	}
	return 30 * time.Minute
}

func (s *AuthService) pendingTokenTTL() time.Duration {
	if s.config.TokenTTL > 0 {
		return s.config.TokenTTL
	}
	return 15 * time.Minute
}
