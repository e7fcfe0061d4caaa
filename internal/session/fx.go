package session

import (
	"github.com/smallbiznis/orderdesk/internal/backend"
	"github.com/smallbiznis/orderdesk/internal/session/cookie"
	"github.com/smallbiznis/orderdesk/internal/session/domain"
	"github.com/smallbiznis/orderdesk/internal/session/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("session",
	fx.Provide(func(c *backend.Client) domain.Backend { return c }),
	fx.Provide(service.NewRegistry),
	fx.Provide(service.New),
	fx.Provide(func(s domain.Service) domain.Reader { return s }),
	fx.Provide(cookie.NewManager),
	fx.Invoke(logTransitions),
)

func logTransitions(r *service.Registry, log *zap.Logger) {
	log = log.Named("session.registry")
	r.Subscribe(func(s domain.Session) {
		log.Debug("session published",
			zap.String("client_id", s.ClientID),
			zap.String("state", string(s.State)),
			zap.String("role", string(s.Role)),
		)
	})
}
