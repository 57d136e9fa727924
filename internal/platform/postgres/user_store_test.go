//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/platform/postgres"
	"github.com/phrazzld/tasklist-api/internal/store"
	"github.com/phrazzld/tasklist-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, "password1", "password1", domain.DefaultPasswordPolicy())
	require.NoError(t, err)
	user.HashedPassword = "$2a$04$notarealhashbutlongenoughforthecolumn"
	return user
}

func insertTestUser(ctx context.Context, t *testing.T, db *sql.Tx, email string) *domain.User {
	t.Helper()
	user := newTestUser(t, email)
	require.NoError(t, postgres.NewPostgresUserStore(db, nil).Create(ctx, user))
	return user
}

func TestPostgresUserStore_CreateAndGet(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		userStore := postgres.NewPostgresUserStore(tx, nil)
		assert.Same(t, tx, userStore.DB())

		user := newTestUser(t, "Create-"+uuid.NewString()+"@Example.com")
		require.NoError(t, userStore.Create(ctx, user))
		assert.Empty(t, user.Password, "plaintext is dropped after insert")

		byID, err := userStore.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)
		assert.Equal(t, user.HashedPassword, byID.HashedPassword)
		assert.Zero(t, byID.FailedLoginCount)
		assert.Nil(t, byID.LockoutUntil)

		byEmail, err := userStore.GetByEmail(ctx, "  "+byID.Email+" ")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
	})
}

func TestPostgresUserStore_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		local := "dup-" + uuid.NewString()
		insertTestUser(ctx, t, tx, local+"@example.com")

		again := newTestUser(t, local+"@EXAMPLE.com")
		err := postgres.NewPostgresUserStore(tx, nil).Create(ctx, again)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestPostgresUserStore_NotFound(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		userStore := postgres.NewPostgresUserStore(tx, nil)

		_, err := userStore.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		_, err = userStore.GetByEmail(context.Background(), "nobody-"+uuid.NewString()+"@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestPostgresUserStore_UpdateLoginState(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		userStore := postgres.NewPostgresUserStore(tx, nil)
		user := insertTestUser(ctx, t, tx, "lock-"+uuid.NewString()+"@example.com")

		now := time.Now().UTC().Truncate(time.Microsecond)
		stale := user.LoginStateVersion
		user.RecordFailedLogin(now, domain.DefaultLockoutPolicy())
		require.NoError(t, userStore.UpdateLoginState(ctx, user, stale))
		assert.Equal(t, stale+1, user.LoginStateVersion)

		stored, err := userStore.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.FailedLoginCount)
		require.NotNil(t, stored.LastFailedLoginAt)
		assert.True(t, now.Equal(*stored.LastFailedLoginAt))

		// A writer holding the old version loses.
		err = userStore.UpdateLoginState(ctx, user, stale)
		assert.ErrorIs(t, err, store.ErrLoginStateConflict)

		ghost := &domain.User{ID: uuid.New()}
		err = userStore.UpdateLoginState(ctx, ghost, 0)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}
