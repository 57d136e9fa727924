package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/platform/logger"
	"github.com/phrazzld/tasklist-api/internal/service/auth"
	"github.com/phrazzld/tasklist-api/internal/store"
)

// maxLoginStateAttempts bounds how often a login re-reads the account after
// losing a race on the lockout state.
const maxLoginStateAttempts = 5

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}

// AccountService registers users and authenticates them.
type AccountService interface {
	// Register creates an account. It returns a validation error for a bad
	// email, a weak password or a mismatched confirmation, and
	// store.ErrEmailExists when the email is taken.
	Register(ctx context.Context, email, password, confirmPassword string) error

	// Login verifies the credentials and issues an access token.
	// It returns ErrInvalidCredentials or ErrAccountLocked on refusal.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// AccountOption customizes an account service.
type AccountOption func(*accountServiceImpl)

// WithPasswordPolicy sets the password rules applied at registration.
func WithPasswordPolicy(p domain.PasswordPolicy) AccountOption {
	return func(s *accountServiceImpl) { s.passwordPolicy = p }
}

// WithLockoutPolicy sets the failed-login lockout rules.
func WithLockoutPolicy(p domain.LockoutPolicy) AccountOption {
	return func(s *accountServiceImpl) { s.lockoutPolicy = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AccountOption {
	return func(s *accountServiceImpl) { s.now = now }
}

type accountServiceImpl struct {
	users          store.UserStore
	hasher         auth.PasswordHasher
	tokens         auth.JWTService
	passwordPolicy domain.PasswordPolicy
	lockoutPolicy  domain.LockoutPolicy
	now            func() time.Time
	logger         *slog.Logger
}

var _ AccountService = (*accountServiceImpl)(nil)

// NewAccountService creates an AccountService.
func NewAccountService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	logger *slog.Logger,
	opts ...AccountOption,
) (AccountService, error) {
	if users == nil {
		return nil, NewServiceError("account", "create_service", "user store cannot be nil", nil)
	}
	if hasher == nil {
		return nil, NewServiceError("account", "create_service", "password hasher cannot be nil", nil)
	}
	if tokens == nil {
		return nil, NewServiceError("account", "create_service", "jwt service cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &accountServiceImpl{
		users:          users,
		hasher:         hasher,
		tokens:         tokens,
		passwordPolicy: domain.DefaultPasswordPolicy(),
		lockoutPolicy:  domain.DefaultLockoutPolicy(),
		now:            time.Now,
		logger:         logger.With(slog.String("component", "account_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register implements AccountService.
func (s *accountServiceImpl) Register(
	ctx context.Context,
	email, password, confirmPassword string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password, confirmPassword, s.passwordPolicy)
	if err != nil {
		log.Debug("registration rejected", slog.String("error", err.Error()))
		return err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return NewServiceError("account", "register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email")
			return fmt.Errorf("failed to register user: %w", err)
		}
		log.Error("failed to save user", slog.String("error", err.Error()))
		return NewServiceError("account", "register", "failed to save user", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return nil
}

// Login implements AccountService.
//
// The lockout state is read, recomputed and written back with a
// compare-and-swap on the user's LoginStateVersion. When another login for the
// same account wins the race the whole decision is made again on fresh state.
func (s *accountServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// The hash never changes between attempts, so bcrypt runs at most once.
	var checkedHash string
	var compareErr error

	for attempt := 1; attempt <= maxLoginStateAttempts; attempt++ {
		user, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				s.hasher.CompareDummy(password)
				log.Debug("login for unknown email")
				return nil, ErrInvalidCredentials
			}
			log.Error("failed to load user for login", slog.String("error", err.Error()))
			return nil, NewServiceError("account", "login", "failed to load user", err)
		}

		now := s.now().UTC()
		if user.IsLocked(now) {
			log.Info("login refused for locked account", slog.String("user_id", user.ID.String()))
			return nil, ErrAccountLocked
		}

		if checkedHash != user.HashedPassword {
			checkedHash = user.HashedPassword
			compareErr = s.hasher.Compare(user.HashedPassword, password)
		}
		if compareErr != nil && !errors.Is(compareErr, auth.ErrWrongPassword) {
			log.Error("stored password hash is unusable",
				slog.String("user_id", user.ID.String()),
				slog.String("error", compareErr.Error()))
			return nil, NewServiceError("account", "login", "failed to verify password", compareErr)
		}

		expected := user.LoginStateVersion
		if compareErr != nil {
			locked := user.RecordFailedLogin(now, s.lockoutPolicy)
			err = s.users.UpdateLoginState(ctx, user, expected)
			if err == nil {
				log.Info("failed login recorded",
					slog.String("user_id", user.ID.String()),
					slog.Int("failed_count", user.FailedLoginCount),
					slog.Bool("locked", locked))
				return nil, ErrInvalidCredentials
			}
		} else {
			if user.ResetLoginFailures(now) {
				err = s.users.UpdateLoginState(ctx, user, expected)
			}
			if err == nil {
				return s.issueToken(ctx, user)
			}
		}

		if !errors.Is(err, store.ErrLoginStateConflict) {
			log.Error("failed to update login state",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
			return nil, NewServiceError("account", "login", "failed to update login state", err)
		}
		log.Debug("login state conflict, retrying",
			slog.String("user_id", user.ID.String()),
			slog.Int("attempt", attempt))
	}

	return nil, NewServiceError("account", "login", "login state kept changing", store.ErrLoginStateConflict)
}

func (s *accountServiceImpl) issueToken(ctx context.Context, user *domain.User) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(ctx, user)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to generate token",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("account", "login", "failed to generate token", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user logged in",
		slog.String("user_id", user.ID.String()))
	return &LoginResult{Token: token, Email: user.Email, ExpiresAt: expiresAt}, nil
}
