package dolt

import (
	"context"

	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/storage/factory"
)

func init() {
	factory.RegisterBackend("dolt", func(ctx context.Context, path string, opts factory.Options) (storage.Store, error) {
		return Open(ctx, Config{
			Path:        path,
			Database:    opts.Database,
			ServerMode:  opts.ServerMode,
			ServerHost:  opts.ServerHost,
			ServerPort:  opts.ServerPort,
			ServerUser:  opts.ServerUser,
			ReadOnly:    opts.ReadOnly,
			OpenTimeout: opts.OpenTimeout,
		})
	})
}
