package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	sessiondomain "github.com/smallbiznis/orderdesk/internal/session/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectAdminDashboard       = "dashboard.admin"
	ObjectDistributorDashboard = "dashboard.distributor"
	ObjectCorporateDashboard   = "dashboard.corporate"
	ObjectMasterData           = "masterdata"
	ObjectReport               = "report"
	ObjectOrder                = "order"
	ObjectAccount              = "account"
)

const (
	ActionView      = "view"
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionSubmit    = "submit"
	ActionProvision = "provision"
)

type Service interface {
	Authorize(ctx context.Context, role sessiondomain.Role, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads policies from the database and seeds the route table.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

// Authorize reports ErrForbidden unless role may perform action on object.
// The unknown role is never granted anything.
func (s *ServiceImpl) Authorize(ctx context.Context, role sessiondomain.Role, object, action string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}
	if role == "" || role == sessiondomain.RoleUnknown {
		return ErrForbidden
	}

	allowed, err := s.enforcer.Enforce(subject(role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("role", string(role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func subject(role sessiondomain.Role) string {
	return "role:" + string(role)
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	admin := subject(sessiondomain.RoleAdmin)
	distributor := subject(sessiondomain.RoleDistributor)
	direct := subject(sessiondomain.RoleDirect)

	policies := [][]string{
		// Dashboards
		{admin, ObjectAdminDashboard, ActionView},
		{admin, ObjectDistributorDashboard, ActionView},
		{distributor, ObjectDistributorDashboard, ActionView},
		{admin, ObjectCorporateDashboard, ActionView},
		{direct, ObjectCorporateDashboard, ActionView},

		// Master data
		{admin, ObjectMasterData, "*"},
		{distributor, ObjectMasterData, "*"},
		{direct, ObjectMasterData, "*"},

		// Reports
		{admin, ObjectReport, ActionView},
		{distributor, ObjectReport, ActionView},
		{direct, ObjectReport, ActionView},

		// Orders
		{admin, ObjectOrder, "*"},
		{distributor, ObjectOrder, "*"},
		{direct, ObjectOrder, "*"},

		// Logins for distributor and corporate records are created from
		// the master forms.
		{admin, ObjectAccount, ActionProvision},
		{distributor, ObjectAccount, ActionProvision},
		{direct, ObjectAccount, ActionProvision},
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
