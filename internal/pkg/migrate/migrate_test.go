package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Validation(t *testing.T) {
	t.Run("empty dsn", func(t *testing.T) {
		assert.ErrorIs(t, Run("", DirectionUp), ErrEmptyDSN)
	})

	for _, dir := range []string{"", "UP", "sideways"} {
		t.Run("direction "+dir, func(t *testing.T) {
			assert.ErrorIs(t, Run("postgres://localhost/storefront", dir), ErrInvalidDirection)
		})
	}
}

func TestMigrationFS_Pairs(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	assert.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestMigrationFS_SeedsSettings(t *testing.T) {
	b, err := fs.ReadFile(migrationFS, "migrations/000001_accounts.up.sql")
	require.NoError(t, err)

	assert.Contains(t, string(b), "INSERT INTO accounts_otp_settings (id) VALUES (1)")
}
