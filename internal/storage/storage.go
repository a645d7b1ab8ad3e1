// Package storage defines the persistence contract for places,
// revisions, review logs, clearances, ratings and comments (spec.md
// §4.2, C3), mirroring the teacher's storage.Storage interface shape
// (internal/storage/provider.go) generalized from issues to places.
package storage

import (
	"context"

	"github.com/commonplaces/placecore/internal/types"
)

// HistoryEntry is one revision plus its full review-status log,
// returned by GetPlaceHistory.
type HistoryEntry struct {
	Revision types.PlaceRevision
	Reviews  []types.ReviewStatusLogEntry
}

// PlaceView pairs a Place with its current revision (including that
// revision's ReviewStatus), the shape GetPlace/GetPlaces/AllPlaces
// return.
type PlaceView struct {
	Place    types.Place
	Revision types.PlaceRevision
}

// ReviewLogEntry is the caller-supplied payload for review_places: a
// status plus optional reviewer/context and its CreatedAt timestamp;
// the log entry's SubRev is assigned by the store.
type ReviewLogEntry struct {
	Status    types.ReviewStatus
	Reviewer  *types.ID
	Context   string
	CreatedAt int64
}

// Store is the full repository surface (spec.md §4.2). All mutating
// methods run inside a serializable, all-or-nothing transaction; all
// reading methods may use a shared/read-only session.
type Store interface {
	// Places

	// CreateOrUpdatePlace inserts revision 0 for a brand-new place
	// (rev.IsInitial()) or appends rev, which must be the stored
	// current revision + 1, after an optimistic-concurrency check that
	// the caller-supplied expectedVersion equals that same number.
	// Returns apperr.InvalidVersion on a mismatch.
	CreateOrUpdatePlace(ctx context.Context, place types.Place, rev types.PlaceRevision, expectedVersion *types.Revision) error

	// ReviewPlaces applies status to every id whose current revision's
	// status differs from it, appending one new log entry each time.
	// Returns the number of revisions actually changed (spec.md P4).
	ReviewPlaces(ctx context.Context, ids []types.ID, status types.ReviewStatus, entry ReviewLogEntry) (int, error)

	GetPlace(ctx context.Context, id types.ID) (*PlaceView, error)
	GetPlaces(ctx context.Context, ids []types.ID) ([]*PlaceView, error)
	AllPlaces(ctx context.Context) ([]*PlaceView, error)

	RecentlyChangedPlaces(ctx context.Context, params types.RecentlyChangedParams, page types.Pagination) ([]*PlaceView, error)
	FindPlacesNotUpdatedSince(ctx context.Context, ts int64, page types.Pagination) ([]*PlaceView, error)
	MostPopularPlaceRevisionTags(ctx context.Context, params types.PopularTagsParams, page types.Pagination) ([]types.TagCount, error)

	GetPlaceHistory(ctx context.Context, id types.ID, rev *types.Revision) ([]HistoryEntry, error)
	LoadPlaceRevision(ctx context.Context, id types.ID, rev types.Revision) (*types.PlaceRevision, error)

	// Clearance

	AddPendingClearancesForPlace(ctx context.Context, orgIDs []types.ID, pending types.PendingClearance) error
	CountPendingClearancesForPlaces(ctx context.Context, orgID types.ID) (int, error)
	ListPendingClearancesForPlaces(ctx context.Context, orgID types.ID, page types.Pagination) ([]types.PendingClearance, error)
	LoadPendingClearanceForPlace(ctx context.Context, orgID, placeID types.ID) (*types.PendingClearance, error)
	UpdatePendingClearancesForPlaces(ctx context.Context, orgID types.ID, updates []types.ClearanceUpdate) error
	CleanupPendingClearancesForPlaces(ctx context.Context, orgID types.ID) (int, error)

	// Organizations

	CreateOrganization(ctx context.Context, org types.Organization) error
	GetOrganization(ctx context.Context, id types.ID) (*types.Organization, error)
	GetOrganizationByToken(ctx context.Context, token string) (*types.Organization, error)
	RegisterModeratedTag(ctx context.Context, orgID types.ID, tag types.ModeratedTag) error
	FindModeratedTagOwner(ctx context.Context, label string) (*types.Organization, *types.ModeratedTag, error)

	// Ratings / comments

	AddRating(ctx context.Context, rating types.Rating) error
	ListRatings(ctx context.Context, placeID types.ID, includeArchived bool) ([]*types.Rating, error)
	ArchiveRatingsForPlace(ctx context.Context, placeID types.ID, at int64) (int, error)
	AddComment(ctx context.Context, comment types.Comment) error
	ListComments(ctx context.Context, ratingID types.ID, includeArchived bool) ([]*types.Comment, error)
	ArchiveCommentsForRatings(ctx context.Context, ratingIDs []types.ID, at int64) (int, error)

	// Review tokens

	SaveReviewNonce(ctx context.Context, nonce types.ReviewNonce) error
	ConsumeReviewNonce(ctx context.Context, nonce string, now int64) (*types.ReviewNonce, error)

	Close() error
}
