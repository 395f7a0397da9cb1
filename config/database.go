package config

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mfaportal/internal/entity"
)

// Connect opens the postgres connection and migrates the users table.
// TranslateError lets unique-index violations surface as
// gorm.ErrDuplicatedKey instead of driver-specific errors.
func Connect(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseURL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&entity.User{}); err != nil {
		return nil, err
	}
	return db, nil
}
