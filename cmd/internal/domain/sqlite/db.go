package sqlite

import (
	"fmt"
	"notekeeper/cmd/internal/domain/entity"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InMemory is the path that opens a private, process-local database.
const InMemory = ":memory:"

// Init opens the SQLite database at path, enables foreign keys and migrates
// the schema. The returned handle is meant to be passed down explicitly.
func Init(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn(path)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	err = db.AutoMigrate(&entity.User{}, &entity.Note{})
	if err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SQLite only tolerates a single writer, and ":memory:" databases are per connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if path != InMemory {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}
