// Package workflow implements the create/update/review orchestration
// of spec.md §4.6 (C7): validate, persist through internal/storage,
// consult internal/clearance for moderated-tag policy, keep
// internal/search consistent within the same logical operation, and
// hand off post-commit notification intents without blocking the
// transaction (spec.md §5's suspension-point rule).
//
// Grounded on the teacher's top-level command-orchestration style
// (cmd/bd's Cobra command bodies call straight into the storage/doctor
// packages with no extra service layer in between) generalized to an
// explicit Engine type here since this domain's workflows are reused
// by more than one entrypoint (an HTTP façade and the maintenance
// binary, both external collaborators per spec.md §1).
package workflow

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/commonplaces/placecore/internal/clearance"
	"github.com/commonplaces/placecore/internal/geo"
	"github.com/commonplaces/placecore/internal/review"
	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/types"
)

var tracer = otel.Tracer("github.com/commonplaces/placecore/internal/workflow")

// Indexer is the narrow slice of internal/search.Index a workflow
// needs: re-derive and store one place's document after a mutation.
type Indexer interface {
	Reindex(ctx context.Context, placeID types.ID) error
}

// Geocoder resolves a structured address to a point when a caller
// submits a place without coordinates (spec.md §4.6). It is an
// external collaborator (spec.md §1 Non-goals: "geocoding addresses")
// — this package only defines the seam a workflow calls through.
type Geocoder interface {
	Geocode(ctx context.Context, addr types.Address) (geo.Point, bool, error)
}

// CaptchaVerifier enforces the captcha policy create_place mentions.
// Like Geocoder, captcha generation/verification itself is an
// external collaborator (spec.md §1 Non-goals).
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// NotificationIntent is one unit of post-commit notification work a
// workflow hands off to a NotificationGateway: who to notify, about
// which place, and why. The gateway itself (mail/HTTP transport) is an
// external collaborator (spec.md §1 Non-goals: "sending mail").
type NotificationIntent struct {
	PlaceID   types.ID
	Recipient string
	Reason    string
	CreatedAt int64
}

// NotificationGateway delivers NotificationIntents. A failure during
// CreatePlace/UpdatePlace is recorded on the notify span and never
// fails that workflow (spec.md §7's propagation rule);
// SendUpdateReminders returns it, so the reminder ledger is not marked
// sent.
type NotificationGateway interface {
	Notify(ctx context.Context, intents []NotificationIntent) error
}

// Engine wires the repository, clearance and review engines, the
// search index, and the external collaborators together behind the
// create/update/review operations.
type Engine struct {
	store     storage.Store
	clearance *clearance.Engine
	review    *review.Engine
	index     Indexer
	geocoder  Geocoder
	captcha   CaptchaVerifier
	notifier  NotificationGateway
}

// New builds an Engine. geocoder, captcha and notifier may all be nil
// (address resolution/captcha enforcement/notification dispatch are
// then skipped), which lets tests exercise the core persistence and
// policy logic without wiring every external collaborator.
func New(store storage.Store, clearanceEngine *clearance.Engine, reviewEngine *review.Engine, index Indexer, geocoder Geocoder, captcha CaptchaVerifier, notifier NotificationGateway) *Engine {
	return &Engine{
		store:     store,
		clearance: clearanceEngine,
		review:    reviewEngine,
		index:     index,
		geocoder:  geocoder,
		captcha:   captcha,
		notifier:  notifier,
	}
}

func (e *Engine) notify(ctx context.Context, intents []NotificationIntent) {
	if e.notifier == nil || len(intents) == 0 {
		return
	}
	ctx, span := tracer.Start(ctx, "workflow.notify")
	defer span.End()

	// Best-effort, after the transaction has already committed: a
	// failure here must not roll anything back (spec.md §7), so a
	// transient gateway error gets a few quick retries rather than
	// silently dropping the notification on the first hiccup.
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(func() error { return e.notifier.Notify(ctx, intents) }, bo); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func (e *Engine) reindex(ctx context.Context, placeID types.ID) error {
	if e.index == nil {
		return nil
	}
	ctx, span := tracer.Start(ctx, "workflow.reindex")
	defer span.End()
	if err := e.index.Reindex(ctx, placeID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// clearanceIntents turns the orgs RequireClearance flagged on a
// create/update into one NotificationIntent per org, so the
// organization whose moderated tag is pending approval hears about it
// without the caller having to poll ListPendingClearancesForPlaces.
func clearanceIntents(placeID types.ID, orgIDs []types.ID, now int64) []NotificationIntent {
	if len(orgIDs) == 0 {
		return nil
	}
	intents := make([]NotificationIntent, len(orgIDs))
	for i, orgID := range orgIDs {
		intents[i] = NotificationIntent{PlaceID: placeID, Recipient: string(orgID), Reason: "clearance_pending", CreatedAt: now}
	}
	return intents
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
