package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes long")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyPassword    = errors.New("password cannot be empty")
)

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

var emailValidator = validator.New()

// User represents a registered account.
// Login-lockout bookkeeping lives on the user row so that every server
// instance sees the same state.
type User struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	Password          string     `json:"-"` // Plaintext, only held between registration and hashing
	HashedPassword    string     `json:"-"`
	FailedLoginCount  int        `json:"-"`
	LastFailedLoginAt *time.Time `json:"-"`
	LockoutUntil      *time.Time `json:"-"`
	// LoginStateVersion is bumped on every lockout write and used as a
	// compare-and-swap guard by the stores.
	LoginStateVersion int64     `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DisplayName is the name placed in issued tokens. Accounts have no separate
// user name, so the email doubles as one.
func (u *User) DisplayName() string {
	return u.Email
}

// NormalizeEmail trims and lower-cases an email so uniqueness and lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the email format. Surrounding whitespace is ignored.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return NewValidationError("email", "email is required", ErrEmptyEmail)
	}
	if err := emailValidator.Var(email, "email"); err != nil {
		return NewValidationError("email", "email is not a valid address", ErrInvalidEmail)
	}
	return nil
}

// PasswordPolicy describes the rules a new password must satisfy.
type PasswordPolicy struct {
	MinLength     int
	RequireDigit  bool
	RequireLower  bool
	RequireUpper  bool
	RequireSymbol bool
}

// DefaultPasswordPolicy mirrors the account rules the client was built against:
// six characters, no character-class requirements.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 6}
}

// Validate returns every rule the password breaks.
func (p PasswordPolicy) Validate(password string) ValidationErrors {
	var errs ValidationErrors
	if password == "" {
		return append(errs, NewValidationError("password", "password is required", ErrEmptyPassword))
	}
	if len([]rune(password)) < p.MinLength {
		errs = append(errs, NewValidationError("password",
			fmt.Sprintf("password must be at least %d characters long", p.MinLength),
			ErrPasswordTooShort))
	}
	if len(password) > maxPasswordBytes {
		errs = append(errs, NewValidationError("password",
			"password must be at most 72 bytes long", ErrPasswordTooLong))
	}

	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	if p.RequireDigit && !hasDigit {
		errs = append(errs, NewValidationError("password",
			"password must contain a digit", ErrInvalidPassword))
	}
	if p.RequireLower && !hasLower {
		errs = append(errs, NewValidationError("password",
			"password must contain a lowercase letter", ErrInvalidPassword))
	}
	if p.RequireUpper && !hasUpper {
		errs = append(errs, NewValidationError("password",
			"password must contain an uppercase letter", ErrInvalidPassword))
	}
	if p.RequireSymbol && !hasSymbol {
		errs = append(errs, NewValidationError("password",
			"password must contain a non-alphanumeric character", ErrInvalidPassword))
	}
	return errs
}

// NewUser creates a new User with the given email and password.
// It generates a new UUID for the user ID and sets the creation/update timestamps.
// All registration rules are checked at once so the caller can report every
// problem in a single response.
//
// The caller is responsible for hashing the password before storing the user.
func NewUser(email, password, confirmPassword string, policy PasswordPolicy) (*User, error) {
	var errs ValidationErrors

	if err := ValidateEmail(email); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			errs = append(errs, ve)
		}
	}
	errs = append(errs, policy.Validate(password)...)
	if password != confirmPassword {
		errs = append(errs, NewValidationError("confirmPassword",
			"passwords do not match", ErrPasswordMismatch))
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate checks if the User has valid persisted data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if u.Password == "" && u.HashedPassword == "" {
		return ErrEmptyPassword
	}
	return nil
}

// LockoutPolicy controls how failed logins escalate into a temporary lock.
type LockoutPolicy struct {
	// Threshold is the number of consecutive failures that locks the account.
	Threshold int
	// Duration is how long a lock lasts.
	Duration time.Duration
	// Window is the maximum gap between two failures for them to count as
	// consecutive. A failure after a longer gap starts a new streak.
	Window time.Duration
}

// DefaultLockoutPolicy locks for 5 minutes after 5 failures.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		Threshold: 5,
		Duration:  5 * time.Minute,
		Window:    15 * time.Minute,
	}
}

// IsLocked reports whether the account is locked at the given instant.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}

// RecordFailedLogin applies one failed attempt to the lockout state and
// reports whether the account is now locked.
//
// Reaching the threshold sets LockoutUntil and resets the streak, so the
// account returns to Active with a clean counter once the lock expires.
func (u *User) RecordFailedLogin(now time.Time, policy LockoutPolicy) bool {
	if u.LockoutUntil != nil && !now.Before(*u.LockoutUntil) {
		u.LockoutUntil = nil
	}

	if u.LastFailedLoginAt == nil || (policy.Window > 0 && now.Sub(*u.LastFailedLoginAt) > policy.Window) {
		u.FailedLoginCount = 0
	}
	u.FailedLoginCount++
	failedAt := now
	u.LastFailedLoginAt = &failedAt

	if policy.Threshold > 0 && u.FailedLoginCount >= policy.Threshold {
		until := now.Add(policy.Duration)
		u.LockoutUntil = &until
		u.FailedLoginCount = 0
		u.LastFailedLoginAt = nil
	}
	u.UpdatedAt = now
	return u.IsLocked(now)
}

// ResetLoginFailures clears the lockout state after a successful login.
// It reports whether anything changed, so callers can skip a needless write.
func (u *User) ResetLoginFailures(now time.Time) bool {
	if u.FailedLoginCount == 0 && u.LastFailedLoginAt == nil && u.LockoutUntil == nil {
		return false
	}
	u.FailedLoginCount = 0
	u.LastFailedLoginAt = nil
	u.LockoutUntil = nil
	u.UpdatedAt = now
	return true
}
