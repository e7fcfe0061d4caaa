package clientstate

import (
	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/orderdesk/internal/clientstate/domain"
	"github.com/smallbiznis/orderdesk/internal/clientstate/repository"
	"github.com/smallbiznis/orderdesk/internal/clientstate/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("clientstate",
	fx.Provide(provideStore),
	fx.Provide(provideLocker),
	fx.Provide(service.New),
)

type storeParams struct {
	fx.In

	DB    *gorm.DB
	GenID *snowflake.Node
	Redis *redis.Client `optional:"true"`
}

// Redis wins when a client is configured; otherwise state lives in the database.
func provideStore(p storeParams) domain.Store {
	if p.Redis != nil {
		return repository.NewRedisStore(p.Redis)
	}
	return repository.NewGormStore(p.DB, p.GenID)
}

func provideLocker(p storeParams) domain.Locker {
	if p.Redis != nil {
		return repository.NewRedisLocker(p.Redis)
	}
	return repository.NewMemoryLocker()
}
