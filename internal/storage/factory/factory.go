// Package factory selects and constructs a storage.Store backend by
// name, mirroring the teacher's internal/storage/factory package: a
// name-keyed registry that each backend populates from its own init(),
// so the factory package itself never imports a concrete backend and
// callers choose one at runtime via configuration.
package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/commonplaces/placecore/internal/storage"
)

// BackendFactory constructs a storage.Store for path/dsn under opts.
type BackendFactory func(ctx context.Context, path string, opts Options) (storage.Store, error)

var backendRegistry = make(map[string]BackendFactory)

// RegisterBackend registers factory under name. Called from a backend
// package's init(), e.g. sqlite, memory, dolt.
func RegisterBackend(name string, factory BackendFactory) {
	backendRegistry[name] = factory
}

// Options configures how a backend opens its store.
type Options struct {
	ReadOnly    bool
	OpenTimeout time.Duration

	// Dolt-only: connect to a dolt sql-server instead of the embedded
	// engine.
	ServerMode bool
	ServerHost string
	ServerPort int
	ServerUser string
	Database   string
}

// New creates a backend with default options.
func New(ctx context.Context, backend, path string) (storage.Store, error) {
	return NewWithOptions(ctx, backend, path, Options{})
}

// NewWithOptions creates a backend with explicit options.
func NewWithOptions(ctx context.Context, backend, path string, opts Options) (storage.Store, error) {
	f, ok := backendRegistry[backend]
	if !ok {
		return nil, fmt.Errorf("unknown storage backend %q (registered: %v)", backend, registeredNames())
	}
	return f(ctx, path, opts)
}

func registeredNames() []string {
	names := make([]string, 0, len(backendRegistry))
	for name := range backendRegistry {
		names = append(names, name)
	}
	return names
}
