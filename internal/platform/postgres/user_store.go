package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/platform/logger"
	"github.com/phrazzld/tasklist-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// DB returns the underlying database connection.
func (s *PostgresUserStore) DB() store.DBTX {
	return s.db
}

const userColumns = `id, email, hashed_password, failed_login_count, last_failed_login_at,
	lockout_until, login_state_version, created_at, updated_at`

// Create implements store.UserStore.Create
// Returns store.ErrEmailExists if the email is already taken.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return fmt.Errorf("%w: user has no hashed password", store.ErrInvalidEntity)
	}
	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	user.Email = domain.NormalizeEmail(user.Email)

	query := `
		INSERT INTO users (id, email, hashed_password, failed_login_count, last_failed_login_at,
			lockout_until, login_state_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.HashedPassword,
		user.FailedLoginCount,
		user.LastFailedLoginAt,
		user.LockoutUntil,
		user.LoginStateVersion,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already registered", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "create", "insert failed", MapError(err))
	}

	// Plaintext is no longer needed once the row exists.
	user.Password = ""

	log.Info("user created successfully", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.getOne(ctx, "get_by_id", query, id)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = $1`
	return s.getOne(ctx, "get_by_email", query, domain.NormalizeEmail(email))
}

func (s *PostgresUserStore) getOne(ctx context.Context, op, query string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("operation", op))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", op, "query failed", MapError(err))
	}
	return user, nil
}

// UpdateLoginState implements store.UserStore.UpdateLoginState
// The version check and the write happen in one statement, so two concurrent
// logins can never both apply a state computed from the same snapshot.
func (s *PostgresUserStore) UpdateLoginState(
	ctx context.Context,
	user *domain.User,
	expectedVersion int64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET failed_login_count = $1,
			last_failed_login_at = $2,
			lockout_until = $3,
			login_state_version = login_state_version + 1,
			updated_at = $4
		WHERE id = $5 AND login_state_version = $6
		RETURNING login_state_version
	`
	var newVersion int64
	err := s.db.QueryRowContext(
		ctx,
		query,
		user.FailedLoginCount,
		user.LastFailedLoginAt,
		user.LockoutUntil,
		time.Now().UTC(),
		user.ID,
		expectedVersion,
	).Scan(&newVersion)
	if err == nil {
		user.LoginStateVersion = newVersion
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to update login state",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "update_login_state", "update failed", MapError(err))
	}

	// Nothing matched: either the user is gone or the version moved on.
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, user.ID).Scan(&exists); err != nil {
		return store.NewStoreError("user", "update_login_state", "existence check failed", MapError(err))
	}
	if !exists {
		return store.ErrUserNotFound
	}

	log.Debug("login state changed concurrently",
		slog.String("user_id", user.ID.String()),
		slog.Int64("expected_version", expectedVersion))
	return store.ErrLoginStateConflict
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var lastFailed, lockoutUntil sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.FailedLoginCount,
		&lastFailed,
		&lockoutUntil,
		&user.LoginStateVersion,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.LastFailedLoginAt = nullTimePtr(lastFailed)
	user.LockoutUntil = nullTimePtr(lockoutUntil)
	return &user, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
