package memory

import (
	"context"

	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/storage/factory"
)

func init() {
	factory.RegisterBackend("memory", func(ctx context.Context, path string, opts factory.Options) (storage.Store, error) {
		return New(), nil
	})
}
