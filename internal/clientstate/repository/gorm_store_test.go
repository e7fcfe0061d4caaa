package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/orderdesk/internal/clientstate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormStoreRoundTrip(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Migrator().DropTable(&domain.Entry{}))
	require.NoError(t, conn.AutoMigrate(&domain.Entry{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store := NewGormStore(conn, node)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "c1", domain.KeyUserType)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "c1", domain.KeyUserType, "distributor"))
	require.NoError(t, store.Set(ctx, "c1", domain.KeyUserType, "corporate"))
	require.NoError(t, store.Set(ctx, "c1", domain.KeyUserData, `{"username":"acme"}`))

	value, ok, err := store.Get(ctx, "c1", domain.KeyUserType)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "corporate", value)

	var count int64
	require.NoError(t, conn.Model(&domain.Entry{}).Where("client_id = ?", "c1").Count(&count).Error)
	assert.Equal(t, int64(2), count)

	require.NoError(t, store.Delete(ctx, "c1", domain.KeyUserType, domain.KeyUserData))
	_, ok, err = store.Get(ctx, "c1", domain.KeyUserData)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLockerSerializes(t *testing.T) {
	locker := NewMemoryLocker()
	unlock, err := locker.Lock(context.Background(), "c1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrLockTimeout)

	other, err := locker.Lock(context.Background(), "c2")
	require.NoError(t, err)
	other()

	unlock()
	again, err := locker.Lock(context.Background(), "c1")
	require.NoError(t, err)
	again()
}

func TestCredentialHistoryKey(t *testing.T) {
	assert.Equal(t, "credentials_history_distributor", domain.CredentialHistoryKey(" Distributor "))
}
