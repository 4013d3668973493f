package testutil

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SqliteDialector returns a dialector for a private in-memory sqlite
// database. Open it with a single connection so every query sees the
// same database.
func SqliteDialector() gorm.Dialector {
	return sqlite.Open(":memory:")
}
