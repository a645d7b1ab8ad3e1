package workflow

import (
	"context"
	"fmt"

	"github.com/commonplaces/placecore/internal/types"
)

// ReminderLedger tracks when a (place, recipient) pair last received an
// update reminder, so SendUpdateReminders can de-duplicate against the
// resend period instead of re-notifying on every scan. An external
// collaborator (spec.md §1 Non-goals: reminder dispatch is peripheral),
// grounded on the teacher's narrow-interface-per-concern style.
type ReminderLedger interface {
	// LastSent returns the unix-millisecond timestamp a reminder was last
	// recorded for (placeID, recipient), and false if none was ever
	// sent.
	LastSent(ctx context.Context, placeID types.ID, recipient string) (int64, bool, error)

	// RecordSent marks (placeID, recipient) as notified at sentAt.
	RecordSent(ctx context.Context, placeID types.ID, recipient string, sentAt int64) error
}

// ReminderPolicy bounds one reminder scan: places whose current
// revision has not changed since now-NotUpdatedFor are candidates, and
// a recipient already notified within the last ResendPeriod is skipped.
// NotUpdatedFor and ResendPeriod are in milliseconds, matching
// PlaceRevision.Created.At (spec.md §6: "Timestamps are 64-bit
// milliseconds since Unix epoch").
// Grounded on config.Reminders / SendReminderParams in
// _examples/original_source/src/recurring_reminder.rs and
// ofdb-core/src/usecases/send_update_reminders.rs, narrowed to the
// owner-contact recipient path (bbox-subscribed scouts are out of
// scope: spec.md §1 Non-goals excludes subscriptions).
type ReminderPolicy struct {
	NotUpdatedFor int64
	ResendPeriod  int64
	PageSize      int
}

// SendUpdateReminders implements the peripheral "Reminder task" of
// spec.md §5: scan find_places_not_updated_since, resolve each stale
// place's owner-contact recipient, de-duplicate against ledger by
// (place, recipient, last_sent+resend_period), and hand the surviving
// set off to the NotificationGateway as a single batch. Returns the
// number of intents sent.
func (e *Engine) SendUpdateReminders(ctx context.Context, ledger ReminderLedger, policy ReminderPolicy, now int64) (int, error) {
	if e.notifier == nil || ledger == nil {
		return 0, nil
	}

	notUpdatedSince := now - policy.NotUpdatedFor
	page := types.Pagination{Limit: policy.PageSize}
	if page.Limit <= 0 {
		page.Limit = 100
	}

	var intents []NotificationIntent
	for {
		views, err := e.store.FindPlacesNotUpdatedSince(ctx, notUpdatedSince, page)
		if err != nil {
			return 0, fmt.Errorf("find places not updated since: %w", err)
		}
		if len(views) == 0 {
			break
		}

		for _, v := range views {
			recipient := ""
			if v.Revision.Contact != nil {
				recipient = v.Revision.Contact.Email
			}
			if recipient == "" {
				continue
			}

			lastSent, ok, err := ledger.LastSent(ctx, v.Place.ID, recipient)
			if err != nil {
				return 0, fmt.Errorf("load last sent reminder: %w", err)
			}
			if ok && lastSent+policy.ResendPeriod > now {
				continue
			}

			intents = append(intents, NotificationIntent{
				PlaceID:   v.Place.ID,
				Recipient: recipient,
				Reason:    "update_reminder",
				CreatedAt: now,
			})
		}

		if len(views) < page.Limit {
			break
		}
		page.Offset += page.Limit
	}

	if len(intents) == 0 {
		return 0, nil
	}
	if err := e.notifier.Notify(ctx, intents); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	for _, in := range intents {
		if err := ledger.RecordSent(ctx, in.PlaceID, in.Recipient, now); err != nil {
			return 0, fmt.Errorf("record sent reminder: %w", err)
		}
	}
	return len(intents), nil
}
