package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the single identity record. MFASecret is set together with
// MFAEnabled: enabled implies a non-empty secret, disabled implies nil.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`

	MFASecret  *string `gorm:"type:text" json:"-"`
	MFAEnabled bool    `gorm:"default:false;not null" json:"mfa_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
