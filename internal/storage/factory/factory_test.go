package factory_test

import (
	"context"
	"testing"

	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/storage/factory"
	"github.com/commonplaces/placecore/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_KnownBackendConstructsStore(t *testing.T) {
	store, err := factory.New(context.Background(), "memory", "")
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestNew_UnknownBackendNamesItInError(t *testing.T) {
	_, err := factory.New(context.Background(), "postgres", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestNewWithOptions_PassesOptionsThrough(t *testing.T) {
	var got factory.Options
	factory.RegisterBackend("capture-options", func(_ context.Context, _ string, opts factory.Options) (storage.Store, error) {
		got = opts
		return memory.New(), nil
	})
	store, err := factory.NewWithOptions(context.Background(), "capture-options", "", factory.Options{ReadOnly: true})
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.True(t, got.ReadOnly)
}
