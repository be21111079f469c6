package models

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the journal database. Callers own migration of their own
// record types.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
