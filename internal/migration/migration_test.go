package migration

import (
	"context"
	"io/fs"
	"testing"

	"github.com/glebarez/sqlite"
	csdomain "github.com/smallbiznis/orderdesk/internal/clientstate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestAutoMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	// Idempotent.
	require.NoError(t, AutoMigrate(db))

	assert.True(t, db.WithContext(context.Background()).Migrator().HasTable(&csdomain.Entry{}))
	assert.True(t, db.Migrator().HasIndex(&csdomain.Entry{}, "ux_client_state_key"))
}
