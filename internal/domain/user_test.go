package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  Alice@Example.COM ", "secret1", "secret1", DefaultPasswordPolicy())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "secret1", user.Password)
	assert.Empty(t, user.HashedPassword)
	assert.Zero(t, user.FailedLoginCount)
	assert.Nil(t, user.LockoutUntil)
	assert.False(t, user.CreatedAt.IsZero())
	assert.False(t, user.UpdatedAt.IsZero())
}

func TestNewUser_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		password string
		confirm  string
		wantErr  error
		fields   []string
	}{
		{
			name:     "empty email",
			email:    "",
			password: "secret1",
			confirm:  "secret1",
			wantErr:  ErrEmptyEmail,
			fields:   []string{"email"},
		},
		{
			name:     "malformed email",
			email:    "not-an-email",
			password: "secret1",
			confirm:  "secret1",
			wantErr:  ErrInvalidEmail,
			fields:   []string{"email"},
		},
		{
			name:     "short password",
			email:    "a@b.com",
			password: "abc",
			confirm:  "abc",
			wantErr:  ErrPasswordTooShort,
			fields:   []string{"password"},
		},
		{
			name:     "password over bcrypt limit",
			email:    "a@b.com",
			password: strings.Repeat("x", 73),
			confirm:  strings.Repeat("x", 73),
			wantErr:  ErrPasswordTooLong,
			fields:   []string{"password"},
		},
		{
			name:     "confirmation mismatch",
			email:    "a@b.com",
			password: "secret1",
			confirm:  "secret2",
			wantErr:  ErrPasswordMismatch,
			fields:   []string{"confirmPassword"},
		},
		{
			name:     "several problems at once",
			email:    "bad",
			password: "abc",
			confirm:  "abd",
			wantErr:  ErrPasswordMismatch,
			fields:   []string{"email", "password", "confirmPassword"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			user, err := NewUser(tc.email, tc.password, tc.confirm, DefaultPasswordPolicy())
			require.Error(t, err)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorIs(t, err, tc.wantErr)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			var fields []string
			for _, ve := range verrs {
				fields = append(fields, ve.Field)
			}
			assert.Equal(t, tc.fields, fields)
		})
	}
}

func TestPasswordPolicy_CharacterClasses(t *testing.T) {
	t.Parallel()

	strict := PasswordPolicy{
		MinLength:     8,
		RequireDigit:  true,
		RequireLower:  true,
		RequireUpper:  true,
		RequireSymbol: true,
	}

	assert.Empty(t, strict.Validate("Abcdef1!"))
	assert.Len(t, strict.Validate("abcdefgh"), 3)
	assert.Len(t, strict.Validate("ABCDEFG1"), 2)

	// The default policy only checks length.
	assert.Empty(t, DefaultPasswordPolicy().Validate("aaaaaa"))
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	valid := User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}
	assert.NoError(t, valid.Validate())

	noID := valid
	noID.ID = uuid.Nil
	assert.ErrorIs(t, noID.Validate(), ErrEmptyUserID)

	badEmail := valid
	badEmail.Email = "nope"
	assert.ErrorIs(t, badEmail.Validate(), ErrInvalidEmail)

	noPassword := valid
	noPassword.HashedPassword = ""
	assert.ErrorIs(t, noPassword.Validate(), ErrEmptyPassword)
}

func TestRecordFailedLogin_LocksAtThreshold(t *testing.T) {
	t.Parallel()

	policy := DefaultLockoutPolicy()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &User{ID: uuid.New(), Email: "a@b.com"}

	for i := 1; i < policy.Threshold; i++ {
		locked := user.RecordFailedLogin(now.Add(time.Duration(i)*time.Second), policy)
		assert.False(t, locked, "attempt %d should not lock", i)
		assert.Equal(t, i, user.FailedLoginCount)
	}

	at := now.Add(time.Minute)
	locked := user.RecordFailedLogin(at, policy)
	assert.True(t, locked)
	require.NotNil(t, user.LockoutUntil)
	assert.Equal(t, at.Add(policy.Duration), *user.LockoutUntil)
	assert.Zero(t, user.FailedLoginCount, "counter resets when the lock is set")

	assert.True(t, user.IsLocked(at.Add(policy.Duration-time.Second)))
	assert.False(t, user.IsLocked(at.Add(policy.Duration)))
}

func TestRecordFailedLogin_WindowRestartsStreak(t *testing.T) {
	t.Parallel()

	policy := DefaultLockoutPolicy()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &User{ID: uuid.New(), Email: "a@b.com"}

	user.RecordFailedLogin(now, policy)
	user.RecordFailedLogin(now.Add(time.Minute), policy)
	require.Equal(t, 2, user.FailedLoginCount)

	user.RecordFailedLogin(now.Add(time.Minute+policy.Window+time.Second), policy)
	assert.Equal(t, 1, user.FailedLoginCount)
}

func TestRecordFailedLogin_AfterExpiredLock(t *testing.T) {
	t.Parallel()

	policy := DefaultLockoutPolicy()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Second)
	user := &User{ID: uuid.New(), Email: "a@b.com", LockoutUntil: &expired}

	locked := user.RecordFailedLogin(now, policy)
	assert.False(t, locked)
	assert.Nil(t, user.LockoutUntil)
	assert.Equal(t, 1, user.FailedLoginCount)
}

func TestResetLoginFailures(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	user := &User{ID: uuid.New(), Email: "a@b.com"}
	assert.False(t, user.ResetLoginFailures(now), "clean state needs no write")

	user.RecordFailedLogin(now, DefaultLockoutPolicy())
	assert.True(t, user.ResetLoginFailures(now))
	assert.Zero(t, user.FailedLoginCount)
	assert.Nil(t, user.LastFailedLoginAt)
	assert.Nil(t, user.LockoutUntil)
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	user := &User{Email: "a@b.com"}
	assert.Equal(t, "a@b.com", user.DisplayName())
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{name: "plain", email: "a@b.com"},
		{name: "surrounding whitespace", email: "  Carol@Example.com\t"},
		{name: "blank", email: "   ", wantErr: ErrEmptyEmail},
		{name: "malformed", email: " not-an-email ", wantErr: ErrInvalidEmail},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateEmail(tc.email)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
