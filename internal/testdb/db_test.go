package testdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTestDatabaseURL(t *testing.T) {
	t.Setenv(EnvDatabaseURL, "")
	t.Setenv(EnvTasklistTestURL, "")
	assert.Empty(t, GetTestDatabaseURL())
	assert.False(t, IsIntegrationTestEnvironment())

	t.Setenv(EnvTasklistTestURL, "postgres://fallback")
	assert.Equal(t, "postgres://fallback", GetTestDatabaseURL())

	t.Setenv(EnvDatabaseURL, "postgres://primary")
	assert.Equal(t, "postgres://primary", GetTestDatabaseURL())
	assert.True(t, IsIntegrationTestEnvironment())
}

func TestGetTestDBWithT_SkipsWithoutDatabase(t *testing.T) {
	t.Setenv(EnvDatabaseURL, "")
	t.Setenv(EnvTasklistTestURL, "")

	skipped := true
	t.Run("inner", func(t *testing.T) {
		GetTestDBWithT(t)
		skipped = false
	})
	assert.True(t, skipped)
}
