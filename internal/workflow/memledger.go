package workflow

import (
	"context"
	"sync"

	"github.com/commonplaces/placecore/internal/types"
)

// MemoryReminderLedger is an in-process ReminderLedger keyed on
// (place, recipient). It is the default wiring for
// cmd/placecore-maintain: a single long-running process restarted
// rarely enough that losing the ledger on restart just means one
// extra reminder round, never a duplicate within a run.
type MemoryReminderLedger struct {
	mu   sync.Mutex
	sent map[reminderKey]int64
}

type reminderKey struct {
	placeID   types.ID
	recipient string
}

// NewMemoryReminderLedger builds an empty ledger.
func NewMemoryReminderLedger() *MemoryReminderLedger {
	return &MemoryReminderLedger{sent: make(map[reminderKey]int64)}
}

func (l *MemoryReminderLedger) LastSent(ctx context.Context, placeID types.ID, recipient string) (int64, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts, ok := l.sent[reminderKey{placeID, recipient}]
	return ts, ok, nil
}

func (l *MemoryReminderLedger) RecordSent(ctx context.Context, placeID types.ID, recipient string, sentAt int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent[reminderKey{placeID, recipient}] = sentAt
	return nil
}
