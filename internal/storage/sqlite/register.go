package sqlite

import (
	"context"

	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/storage/factory"
)

func init() {
	factory.RegisterBackend("sqlite", func(ctx context.Context, path string, opts factory.Options) (storage.Store, error) {
		return Open(path)
	})
}
