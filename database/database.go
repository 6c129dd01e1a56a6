package database

import (
	"fmt"

	"github.com/MetaQop/tag-referalochka/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection and returns it to the caller.
// TranslateError is on so unique-constraint violations come back as
// gorm.ErrDuplicatedKey regardless of the driver; the credit path relies
// on that to arbitrate concurrent inserts.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Referral{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
