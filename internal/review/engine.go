// Package review implements the per-revision review-status state
// machine of spec.md §4.3 (C5): transitions between Created,
// Confirmed, Rejected and Archived, the archive cascade onto a
// place's ratings and comments, and review-nonce consumption for
// out-of-band (emailed) review links.
//
// Grounded on the teacher's status-column-plus-timestamp shape
// (internal/storage/sqlite/issues.go) generalized from a single
// mutable status column to the denormalized-status-plus-append-only-log
// pair spec.md's invariant I2 requires, and on the nonce-token usecase
// naming in _examples/original_source/ofdb-core/src/usecases/*.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/types"
	"github.com/google/uuid"
)

// Reindexer is the narrow slice of the search index a review
// transition needs to keep consistent: re-derive and store the
// document for one place after its status or ratings change. Kept as
// a small local interface so this package never imports the search
// package directly (avoids a dependency cycle now that search also
// reads the store for ranking inputs).
type Reindexer interface {
	Reindex(ctx context.Context, placeID types.ID) error
}

// Engine drives review-status transitions against a Store, cascading
// to ratings/comments and the search index as spec.md §4.3 requires.
type Engine struct {
	store     storage.Store
	reindexer Reindexer
}

// New builds an Engine. reindexer may be nil, in which case reindexing
// is skipped (useful in tests that exercise the state machine without
// standing up a search index).
func New(store storage.Store, reindexer Reindexer) *Engine {
	return &Engine{store: store, reindexer: reindexer}
}

func needsArchiveCascade(status types.ReviewStatus) bool {
	return status == types.Archived || status == types.Rejected
}

// ReviewPlaces applies status to every place in ids whose current
// revision's status differs, appends a log entry for each, cascades
// to ratings/comments when status is Archived or Rejected, and
// reindexes every place named in ids (not just the ones that actually
// changed status, since a rating/comment archival under an unchanged
// status would otherwise leave a stale combined-rating score in the
// index). Returns the number of revisions whose status actually
// changed (spec.md P4).
func (e *Engine) ReviewPlaces(ctx context.Context, ids []types.ID, status types.ReviewStatus, reviewer *types.ID, reviewContext string, now int64) (int, error) {
	if !status.Valid() {
		return 0, apperr.New(apperr.Validation, "ReviewPlaces", "invalid review status")
	}

	changed, err := e.store.ReviewPlaces(ctx, ids, status, storage.ReviewLogEntry{
		Reviewer:  reviewer,
		Context:   reviewContext,
		CreatedAt: now,
	})
	if err != nil {
		return 0, fmt.Errorf("review places: %w", err)
	}

	if needsArchiveCascade(status) {
		for _, id := range ids {
			if _, err := e.store.ArchiveRatingsForPlace(ctx, id, now); err != nil {
				return changed, fmt.Errorf("archive ratings for %s: %w", id, err)
			}
			ratings, err := e.store.ListRatings(ctx, id, true)
			if err != nil {
				return changed, fmt.Errorf("list ratings for %s: %w", id, err)
			}
			ratingIDs := make([]types.ID, len(ratings))
			for i, r := range ratings {
				ratingIDs[i] = r.ID
			}
			if _, err := e.store.ArchiveCommentsForRatings(ctx, ratingIDs, now); err != nil {
				return changed, fmt.Errorf("archive comments for %s: %w", id, err)
			}
		}
	}

	if e.reindexer != nil {
		for _, id := range ids {
			if err := e.reindexer.Reindex(ctx, id); err != nil {
				return changed, fmt.Errorf("reindex %s: %w", id, err)
			}
		}
	}
	return changed, nil
}

// defaultNonceTTL is how long an emailed review link remains valid.
const defaultNonceTTL = 14 * 24 * time.Hour

// IssueNonce mints a single-use review token authorizing newStatus on
// placeID's revision rev, valid until now+ttl (ttl<=0 uses
// defaultNonceTTL).
func (e *Engine) IssueNonce(ctx context.Context, placeID types.ID, rev types.Revision, newStatus types.ReviewStatus, now int64, ttl time.Duration) (types.ReviewNonce, error) {
	if ttl <= 0 {
		ttl = defaultNonceTTL
	}
	nonce := types.ReviewNonce{
		PlaceID:       placeID,
		PlaceRevision: rev,
		Nonce:         uuid.NewString(),
		NewStatus:     newStatus,
		ExpiresAt:     now + ttl.Milliseconds(),
	}
	if err := e.store.SaveReviewNonce(ctx, nonce); err != nil {
		return types.ReviewNonce{}, fmt.Errorf("save review nonce: %w", err)
	}
	return nonce, nil
}

// ReviewPlaceWithToken consumes nonceStr and, if it is unexpired and
// its guarded place revision is still current, applies its NewStatus
// exactly as ReviewPlaces would for that single place. Fails
// apperr.Expired if the token has expired, or apperr.InvalidVersion if
// the place has moved to a newer revision since the token was issued.
func (e *Engine) ReviewPlaceWithToken(ctx context.Context, nonceStr string, now int64) (int, error) {
	nonce, err := e.store.ConsumeReviewNonce(ctx, nonceStr, now)
	if err != nil {
		return 0, fmt.Errorf("consume review nonce: %w", err)
	}

	place, err := e.store.GetPlace(ctx, nonce.PlaceID)
	if err != nil {
		return 0, fmt.Errorf("load place for token review: %w", err)
	}
	if place.Revision.Rev != nonce.PlaceRevision {
		return 0, apperr.New(apperr.InvalidVersion, "ReviewPlaceWithToken", "place has a newer revision than the token authorizes")
	}

	return e.ReviewPlaces(ctx, []types.ID{nonce.PlaceID}, nonce.NewStatus, nil, "token review", now)
}
