package repository

import (
	"context"
	"errors"

	"mfaportal/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrMFAAlreadyEnabled = errors.New("mfa already enabled")
	ErrMFANotEnabled     = errors.New("mfa not enabled")
	// ErrConflict means the record changed under a guarded update, e.g. the
	// stored secret no longer matches the one the caller verified against.
	ErrConflict = errors.New("concurrent modification")
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	EnableMFA(ctx context.Context, userID uuid.UUID, secret string) error
	DisableMFA(ctx context.Context, userID uuid.UUID, secret string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EnableMFA sets the secret and the enabled flag in one guarded update so two
// concurrent confirmations cannot both win.
func (r *userRepository) EnableMFA(ctx context.Context, userID uuid.UUID, secret string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ? AND mfa_enabled = false", userID).
		Updates(map[string]any{"mfa_secret": secret, "mfa_enabled": true})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.classifyEnable(ctx, userID)
	}
	return nil
}

// DisableMFA clears the secret and the flag, keyed on the secret the caller
// verified the code against. A mismatch means the record was re-enrolled
// concurrently and the caller's code check no longer applies.
func (r *userRepository) DisableMFA(ctx context.Context, userID uuid.UUID, secret string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ? AND mfa_enabled = true AND mfa_secret = ?", userID, secret).
		Updates(map[string]any{"mfa_secret": nil, "mfa_enabled": false})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.classifyDisable(ctx, userID)
	}
	return nil
}

func (r *userRepository) classifyEnable(ctx context.Context, userID uuid.UUID) error {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return ErrMFAAlreadyEnabled
}

func (r *userRepository) classifyDisable(ctx context.Context, userID uuid.UUID) error {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !user.MFAEnabled {
		return ErrMFANotEnabled
	}
	return ErrConflict
}
