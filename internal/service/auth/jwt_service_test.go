package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/config"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            testSecret,
		Issuer:               "tasklist-api",
		Audience:             "tasklist-client",
		TokenLifetimeMinutes: 120,
	}
}

func newTestService(t *testing.T, cfg config.AuthConfig, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(cfg, func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func testUser() *domain.User {
	return &domain.User{ID: uuid.New(), Email: "alice@example.com"}
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	cfg := testAuthConfig()
	cfg.JWTSecret = "short"
	_, err := NewJWTService(cfg)
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, testAuthConfig(), fixedTime)
	user := testUser()

	token, expiresAt, err := svc.GenerateToken(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, fixedTime.Add(2*time.Hour), expiresAt)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "alice@example.com", claims.Name)
	assert.Equal(t, "tasklist-api", claims.Issuer)
	assert.Equal(t, []string{"tasklist-client"}, claims.Audience)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateToken_UniqueTokenIDs(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, testAuthConfig(), time.Now())
	user := testUser()

	first, _, err := svc.GenerateToken(context.Background(), user)
	require.NoError(t, err)
	second, _, err := svc.GenerateToken(context.Background(), user)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestGenerateToken_RequiresUser(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, testAuthConfig(), time.Now())
	_, _, err := svc.GenerateToken(context.Background(), nil)
	assert.Error(t, err)
	_, _, err = svc.GenerateToken(context.Background(), &domain.User{})
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestService(t, testAuthConfig(), issued)
	validToken, _, err := issuer.GenerateToken(context.Background(), testUser())
	require.NoError(t, err)

	otherAudience := testAuthConfig()
	otherAudience.Audience = "someone-else"
	otherIssuer := testAuthConfig()
	otherIssuer.Issuer = "impostor"
	otherSecret := testAuthConfig()
	otherSecret.JWTSecret = "wrong-secret-that-is-long-enough-for-testing"

	tests := []struct {
		name     string
		cfg      config.AuthConfig
		now      time.Time
		token    string
		expected error
	}{
		{
			name:  "valid token",
			cfg:   testAuthConfig(),
			now:   issued.Add(time.Hour),
			token: validToken,
		},
		{
			name:  "within clock skew after expiry",
			cfg:   testAuthConfig(),
			now:   issued.Add(2*time.Hour + 10*time.Second),
			token: validToken,
		},
		{
			name:     "expired token",
			cfg:      testAuthConfig(),
			now:      issued.Add(3 * time.Hour),
			token:    validToken,
			expected: ErrExpiredToken,
		},
		{
			name:     "issued in the future",
			cfg:      testAuthConfig(),
			now:      issued.Add(-time.Hour),
			token:    validToken,
			expected: ErrTokenNotYetValid,
		},
		{
			name:     "missing token",
			cfg:      testAuthConfig(),
			now:      issued,
			token:    "",
			expected: ErrMissingToken,
		},
		{
			name:     "malformed token",
			cfg:      testAuthConfig(),
			now:      issued,
			token:    "not-a-jwt",
			expected: ErrInvalidToken,
		},
		{
			name:     "wrong secret",
			cfg:      otherSecret,
			now:      issued,
			token:    validToken,
			expected: ErrInvalidToken,
		},
		{
			name:     "wrong audience",
			cfg:      otherAudience,
			now:      issued,
			token:    validToken,
			expected: ErrInvalidToken,
		},
		{
			name:     "wrong issuer",
			cfg:      otherIssuer,
			now:      issued,
			token:    validToken,
			expected: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t, tt.cfg, tt.now)
			claims, err := svc.ValidateToken(context.Background(), tt.token)
			if tt.expected == nil {
				require.NoError(t, err)
				assert.NotNil(t, claims)
				return
			}
			assert.ErrorIs(t, err, tt.expected)
			assert.Nil(t, claims)
		})
	}
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	now := time.Now()
	userID := uuid.New()
	claims := jwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "tasklist-api",
			Audience:  jwt.ClaimStrings{"tasklist-client"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	svc := newTestService(t, testAuthConfig(), now)
	for _, token := range []string{hs512, none} {
		_, err := svc.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestValidateToken_SubjectMustMatchUserID(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := jwtCustomClaims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			Issuer:    "tasklist-api",
			Audience:  jwt.ClaimStrings{"tasklist-client"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	svc := newTestService(t, testAuthConfig(), now)
	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
