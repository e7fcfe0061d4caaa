package authorization

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	sessiondomain "github.com/smallbiznis/orderdesk/internal/session/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func newTestService(t *testing.T) Service {
	t.Helper()
	db := openDB(t)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestRouteTable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		role    sessiondomain.Role
		object  string
		action  string
		allowed bool
	}{
		{sessiondomain.RoleAdmin, ObjectAdminDashboard, ActionView, true},
		{sessiondomain.RoleDistributor, ObjectAdminDashboard, ActionView, false},
		{sessiondomain.RoleDirect, ObjectAdminDashboard, ActionView, false},

		{sessiondomain.RoleAdmin, ObjectDistributorDashboard, ActionView, true},
		{sessiondomain.RoleDistributor, ObjectDistributorDashboard, ActionView, true},
		{sessiondomain.RoleDirect, ObjectDistributorDashboard, ActionView, false},

		{sessiondomain.RoleAdmin, ObjectCorporateDashboard, ActionView, true},
		{sessiondomain.RoleDirect, ObjectCorporateDashboard, ActionView, true},
		{sessiondomain.RoleDistributor, ObjectCorporateDashboard, ActionView, false},

		{sessiondomain.RoleDistributor, ObjectMasterData, ActionUpdate, true},
		{sessiondomain.RoleDirect, ObjectOrder, ActionSubmit, true},
		{sessiondomain.RoleDirect, ObjectReport, ActionView, true},
		{sessiondomain.RoleDirect, ObjectReport, ActionCreate, false},

		{sessiondomain.RoleUnknown, ObjectOrder, ActionView, false},
		{"", ObjectOrder, ActionView, false},
	}
	for _, tt := range tests {
		err := svc.Authorize(ctx, tt.role, tt.object, tt.action)
		if tt.allowed {
			assert.NoError(t, err, "%s %s %s", tt.role, tt.object, tt.action)
		} else {
			assert.ErrorIs(t, err, ErrForbidden, "%s %s %s", tt.role, tt.object, tt.action)
		}
	}
}

func TestAuthorizeValidatesInput(t *testing.T) {
	svc := newTestService(t)
	assert.ErrorIs(t, svc.Authorize(context.Background(), sessiondomain.RoleAdmin, " ", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(context.Background(), sessiondomain.RoleAdmin, ObjectOrder, ""), ErrInvalidAction)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openDB(t)

	first, err := NewEnforcer(db)
	require.NoError(t, err)
	before, err := first.GetPolicy()
	require.NoError(t, err)

	second, err := NewEnforcer(db)
	require.NoError(t, err)
	after, err := second.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}
