package masterdata

import (
	"github.com/smallbiznis/orderdesk/internal/backend"
	"github.com/smallbiznis/orderdesk/internal/masterdata/domain"
	"github.com/smallbiznis/orderdesk/internal/masterdata/service"
	sessiondomain "github.com/smallbiznis/orderdesk/internal/session/domain"
	sessionservice "github.com/smallbiznis/orderdesk/internal/session/service"
	"go.uber.org/fx"
)

var Module = fx.Module("masterdata.service",
	fx.Provide(func(c *backend.Client) domain.Backend { return c }),
	fx.Provide(service.New),
	fx.Invoke(forgetOnSignOut),
)

type forgetter interface {
	Forget(clientID string)
}

// forgetOnSignOut drops a client's cached lists as soon as its session
// leaves RESOLVED.
func forgetOnSignOut(r *sessionservice.Registry, svc domain.Service) {
	f, ok := svc.(forgetter)
	if !ok {
		return
	}
	r.Subscribe(func(s sessiondomain.Session) {
		if s.State != sessiondomain.StateResolved {
			f.Forget(s.ClientID)
		}
	})
}
