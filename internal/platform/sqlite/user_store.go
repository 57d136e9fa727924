package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/platform/logger"
	"github.com/phrazzld/tasklist-api/internal/store"
	"gorm.io/gorm"
)

// UserStore implements store.UserStore with gorm.
type UserStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserStore creates a gorm-backed user store.
func NewUserStore(db *gorm.DB, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return fmt.Errorf("%w: user has no hashed password", store.ErrInvalidEntity)
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	user.Email = domain.NormalizeEmail(user.Email)
	rec := toUserRecord(user)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(mapError(err), store.ErrDuplicate) {
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "create", "insert failed", mapError(err))
	}

	user.Password = ""
	log.Info("user created successfully", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.first(ctx, "get_by_id", "id = ?", id.String())
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.first(ctx, "get_by_email", "email = ?", domain.NormalizeEmail(email))
}

func (s *UserStore) first(ctx context.Context, op, cond string, arg any) (*domain.User, error) {
	var rec userRecord
	if err := s.db.WithContext(ctx).Where(cond, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", op, "query failed", mapError(err))
	}
	return fromUserRecord(rec)
}

// UpdateLoginState implements store.UserStore.UpdateLoginState
func (s *UserStore) UpdateLoginState(ctx context.Context, user *domain.User, expectedVersion int64) error {
	db := s.db.WithContext(ctx)

	// A map, not a struct: zero counts and nil timestamps must be written too.
	result := db.Model(&userRecord{}).
		Where("id = ? AND login_state_version = ?", user.ID.String(), expectedVersion).
		Updates(map[string]any{
			"failed_login_count":   user.FailedLoginCount,
			"last_failed_login_at": utcPtr(user.LastFailedLoginAt),
			"lockout_until":        utcPtr(user.LockoutUntil),
			"login_state_version":  gorm.Expr("login_state_version + 1"),
			"updated_at":           time.Now().UTC(),
		})
	if err := result.Error; err != nil {
		return store.NewStoreError("user", "update_login_state", "update failed", mapError(err))
	}
	if result.RowsAffected == 1 {
		user.LoginStateVersion = expectedVersion + 1
		return nil
	}

	var count int64
	if err := db.Model(&userRecord{}).Where("id = ?", user.ID.String()).Count(&count).Error; err != nil {
		return store.NewStoreError("user", "update_login_state", "existence check failed", mapError(err))
	}
	if count == 0 {
		return store.ErrUserNotFound
	}
	return store.ErrLoginStateConflict
}

func toUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:                u.ID.String(),
		Email:             u.Email,
		HashedPassword:    u.HashedPassword,
		FailedLoginCount:  u.FailedLoginCount,
		LastFailedLoginAt: utcPtr(u.LastFailedLoginAt),
		LockoutUntil:      utcPtr(u.LockoutUntil),
		LoginStateVersion: u.LoginStateVersion,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func fromUserRecord(r userRecord) (*domain.User, error) {
	id, err := parseUUID(r.ID)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:                id,
		Email:             r.Email,
		HashedPassword:    r.HashedPassword,
		FailedLoginCount:  r.FailedLoginCount,
		LastFailedLoginAt: utcPtr(r.LastFailedLoginAt),
		LockoutUntil:      utcPtr(r.LockoutUntil),
		LoginStateVersion: r.LoginStateVersion,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}, nil
}
