package service

import (
	"context"

	"github.com/smallbiznis/orderdesk/internal/backend"
	"github.com/smallbiznis/orderdesk/internal/observability/metrics"
	"github.com/smallbiznis/orderdesk/internal/session/domain"
	"go.uber.org/zap"
)

// Resolver turns an identity token into a role by probing profile endpoints.
type Resolver struct {
	backend domain.Backend
	metrics *metrics.SessionMetrics
	log     *zap.Logger
}

func NewResolver(b domain.Backend, m *metrics.SessionMetrics, log *zap.Logger) *Resolver {
	return &Resolver{backend: b, metrics: m, log: log.Named("session.resolver")}
}

// Resolve tries the hinted endpoint first, then every endpoint in ProbeOrder,
// sequentially, stopping at the first non-empty profile. A failed hint is not
// skipped by the full probe. Endpoint failures count as "try next"; the
// result is RoleUnknown when nothing matched.
func (r *Resolver) Resolve(ctx context.Context, token string, hint domain.RoleType) domain.Resolution {
	calls := 0

	if _, ok := domain.ParseRoleType(string(hint)); ok {
		calls++
		if res, found := r.probe(ctx, token, hint); found {
			res.Hinted = true
			res.Calls = calls
			r.metrics.RecordResolution(string(res.Role), true)
			return res
		}
		r.log.Info("hinted profile endpoint yielded nothing, probing all", zap.String("role_type", string(hint)))
	}

	for _, roleType := range domain.ProbeOrder {
		calls++
		if res, found := r.probe(ctx, token, roleType); found {
			res.Calls = calls
			r.metrics.RecordResolution(string(res.Role), false)
			return res
		}
	}

	r.metrics.RecordResolution(string(domain.RoleUnknown), false)
	return domain.Resolution{Role: domain.RoleUnknown, Calls: calls}
}

// ResolveScoped asks exactly one endpoint, with no fallback.
func (r *Resolver) ResolveScoped(ctx context.Context, token string, roleType domain.RoleType) domain.Resolution {
	if res, found := r.probe(ctx, token, roleType); found {
		res.Calls = 1
		r.metrics.RecordResolution(string(res.Role), true)
		return res
	}
	return domain.Resolution{Role: domain.RoleUnknown, Calls: 1}
}

func (r *Resolver) probe(ctx context.Context, token string, roleType domain.RoleType) (domain.Resolution, bool) {
	records, err := r.backend.Me(ctx, token, string(roleType))
	if err != nil {
		r.log.Debug("profile endpoint failed", zap.String("role_type", string(roleType)), zap.Error(err))
		r.metrics.RecordProbe(string(roleType), false)
		return domain.Resolution{}, false
	}

	rec, ok := backend.First(records)
	r.metrics.RecordProbe(string(roleType), ok)
	if !ok {
		return domain.Resolution{}, false
	}

	role, ok := domain.ParseRole(rec.String("role"))
	if !ok || role == domain.RoleUnknown {
		role = roleType.DefaultRole()
	}
	return domain.Resolution{
		Role:     role,
		RoleType: roleType,
		Profile:  domain.Profile(rec),
	}, true
}
