package database

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/counselflow/counselflow-api/internal/models"
	pkgLogger "github.com/counselflow/counselflow-api/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// Connect opens the database named by databaseURL. A "sqlite:" or "file:" URL selects the
// embedded SQLite driver; anything else is treated as a PostgreSQL connection string.
func Connect(databaseURL string) (*gorm.DB, error) {
	// Configure GORM logger
	logLevel := logger.Silent
	if os.Getenv("ENVIRONMENT") != "production" {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(
		logLevel,
		200*time.Millisecond,
	)

	embedded := IsSQLite(databaseURL)
	dialector := Dialector(databaseURL)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            !embedded,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	if embedded {
		// SQLite serializes writers; one connection also keeps in-memory databases alive
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// IsSQLite reports whether databaseURL names an embedded SQLite database
func IsSQLite(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, sqlitePrefix) || strings.HasPrefix(databaseURL, "file:")
}

// Dialector picks the GORM driver for databaseURL
func Dialector(databaseURL string) gorm.Dialector {
	if !IsSQLite(databaseURL) {
		return postgres.Open(databaseURL)
	}
	dsn := strings.TrimPrefix(databaseURL, sqlitePrefix)
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}
	return sqlite.Open(dsn)
}

// Models lists every table owned by this service, in dependency order
func Models() []any {
	return []any{
		&models.User{},
		&models.Client{},
		&models.Contract{},
		&models.Document{},
		&models.ContractAnalysis{},
		&models.AuditLog{},
	}
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}
