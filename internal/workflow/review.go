package workflow

import (
	"context"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/types"
)

// ReviewPlaces implements review_places (spec.md §4.6): only Scouts
// and Admins may drive a review transition (spec.md §6 role rule).
// Delegates to internal/review.Engine for persistence, archive
// cascade and reindexing.
func (e *Engine) ReviewPlaces(ctx context.Context, caller types.Role, ids []types.ID, status types.ReviewStatus, reviewer *types.ID, reviewContext string, now int64) (int, error) {
	if !caller.AtLeast(types.RoleScout) {
		return 0, apperr.New(apperr.Forbidden, "ReviewPlaces", "caller must be a Scout or Admin")
	}
	return e.review.ReviewPlaces(ctx, ids, status, reviewer, reviewContext, now)
}

// ReviewPlaceWithToken implements review_place_with_token (spec.md
// §4.6): consuming the token itself stands in for the Scout/Admin
// check (issuing the nonce already required that authorization), so
// this path has no caller-role gate.
func (e *Engine) ReviewPlaceWithToken(ctx context.Context, nonce string, now int64) (int, error) {
	return e.review.ReviewPlaceWithToken(ctx, nonce, now)
}

// IssueReviewNonce mints a single-use out-of-band review token; only
// Scouts and Admins may issue one.
func (e *Engine) IssueReviewNonce(ctx context.Context, caller types.Role, placeID types.ID, rev types.Revision, newStatus types.ReviewStatus, now int64) (types.ReviewNonce, error) {
	if !caller.AtLeast(types.RoleScout) {
		return types.ReviewNonce{}, apperr.New(apperr.Forbidden, "IssueReviewNonce", "caller must be a Scout or Admin")
	}
	return e.review.IssueNonce(ctx, placeID, rev, newStatus, now, 0)
}
