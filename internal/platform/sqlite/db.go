package sqlite

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// userRecord is the users table row.
type userRecord struct {
	ID                string `gorm:"primaryKey;size:36"`
	Email             string `gorm:"size:320;not null;uniqueIndex"`
	HashedPassword    string `gorm:"not null"`
	FailedLoginCount  int    `gorm:"not null;default:0"`
	LastFailedLoginAt *time.Time
	LockoutUntil      *time.Time
	LoginStateVersion int64 `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (userRecord) TableName() string { return "users" }

// taskRecord is the tasks table row.
type taskRecord struct {
	ID          int64       `gorm:"primaryKey;autoIncrement"`
	OwnerID     string      `gorm:"size:36;not null;index"`
	Owner       *userRecord `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE"`
	Title       string      `gorm:"size:200;not null"`
	Description *string     `gorm:"size:2000"`
	IsComplete  bool        `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DueDateTime *time.Time
	Priority    *string `gorm:"size:50"`
	Category    *string `gorm:"size:100"`
}

func (taskRecord) TableName() string { return "tasks" }

// Options configures Open.
type Options struct {
	// AutoMigrate creates or updates the schema on open.
	AutoMigrate bool
	// Debug logs every SQL statement through gorm's logger.
	Debug bool
}

// Open opens the SQLite database at path (":memory:" for a private in-memory
// database). Foreign keys are enforced and the pool is limited to a single
// connection, which SQLite needs for in-memory databases and for serialized
// writes.
func Open(path string, opts Options) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if opts.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(sqlite.Open(dsn(path)), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if opts.AutoMigrate {
		if err := Migrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userRecord{}, &taskRecord{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// mapError translates gorm errors into store errors. Constraint failures the
// dialector did not translate are recognised by SQLite's message text.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"), strings.Contains(msg, "CHECK constraint failed"):
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	default:
		return err
	}
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt id %q in database: %w", s, err)
	}
	return id, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
