package workflow_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/commonplaces/placecore/internal/workflow"
	"github.com/stretchr/testify/assert"
)

func TestTicker_RunsImmediatelyAndRepeats(t *testing.T) {
	var count int32
	ticker := &workflow.Ticker{Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()

	ticker.Run(ctx, "test", func(ctx context.Context) error {
		atomic.AddInt32(&count, 1)
		return nil
	})

	assert.GreaterOrEqual(t, int(atomic.LoadInt32(&count)), 2)
}

func TestTicker_ErrorDoesNotStopTheLoop(t *testing.T) {
	var count int32
	ticker := &workflow.Ticker{Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	ticker.Run(ctx, "test", func(ctx context.Context) error {
		atomic.AddInt32(&count, 1)
		return assert.AnError
	})

	assert.GreaterOrEqual(t, int(atomic.LoadInt32(&count)), 2)
}
