package service

import (
	"context"

	"github.com/IPampurin/LinkKeeper/pkg/cache"
	"github.com/IPampurin/LinkKeeper/pkg/configuration"
	"github.com/IPampurin/LinkKeeper/pkg/db"
)

type Service struct {
	link  db.LinkMethods
	stats db.StatsMethods
	cache cache.CacheMethods
	cfg   configuration.ConfLifecycle
}

func InitService(ctx context.Context, storage *db.DataBase, cache *cache.Cache, cfg *configuration.ConfLifecycle) *Service {

	svc := &Service{
		link:  storage, // *db.DataBase реализует LinkMethods
		stats: storage, // *db.DataBase реализует StatsMethods
		cfg:   *cfg,
	}

	// *cache.Cache кладём через явную проверку, чтобы не получить непустой интерфейс с nil внутри
	if cache != nil {
		svc.cache = cache
	}

	return svc
}
