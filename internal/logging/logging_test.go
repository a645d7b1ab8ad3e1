package logging_test

import (
	"context"
	"testing"

	"github.com/commonplaces/placecore/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestSetEnabled_TogglesEnabled(t *testing.T) {
	original := logging.Enabled()
	defer logging.SetEnabled(original)

	logging.SetEnabled(true)
	assert.True(t, logging.Enabled())

	logging.SetEnabled(false)
	assert.False(t, logging.Enabled())
}

func TestLogFunctions_DoNotPanic(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		logging.Debugf(ctx, "debug message", "k", "v")
		logging.Infof(ctx, "info message", "k", "v")
		logging.Warnf(ctx, "warn message", "k", "v")
		logging.Errorf(ctx, "error message", "k", "v")
	})
}

func TestWith_ReturnsUsableLogger(t *testing.T) {
	logger := logging.With("request_id", "abc123")
	assert.NotNil(t, logger)
}
