package order

import (
	"github.com/smallbiznis/orderdesk/internal/backend"
	"github.com/smallbiznis/orderdesk/internal/order/domain"
	"github.com/smallbiznis/orderdesk/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(func(c *backend.Client) domain.Backend { return c }),
	fx.Provide(service.New),
)
