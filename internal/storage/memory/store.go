// Package memory implements storage.Store entirely in process memory,
// for fast unit tests of the clearance/review/workflow engines without
// standing up a real database. Mirrors the teacher's
// internal/storage/ephemeral package: a single mutex-guarded struct
// holding plain Go slices/maps instead of a SQL schema, offered as a
// backend alongside the real ones rather than a test-only double.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/types"
)

type placeRecord struct {
	place     types.Place
	revisions map[types.Revision]*types.PlaceRevision
	reviews   map[types.Revision][]types.ReviewStatusLogEntry
}

type orgRecord struct {
	org types.Organization
}

// Store is an in-memory storage.Store.
type Store struct {
	mu sync.Mutex

	places map[types.ID]*placeRecord
	orgs   map[types.ID]*orgRecord
	tagOwner map[string]types.ID // moderated tag label -> owning org id

	clearances map[types.ID]map[types.ID]*types.PendingClearance // org -> place -> pending

	ratings  map[types.ID]*types.Rating
	comments map[types.ID]*types.Comment

	nonces map[string]*types.ReviewNonce
}

// New builds an empty in-memory Store.
func New() *Store {
	return &Store{
		places:     make(map[types.ID]*placeRecord),
		orgs:       make(map[types.ID]*orgRecord),
		tagOwner:   make(map[string]types.ID),
		clearances: make(map[types.ID]map[types.ID]*types.PendingClearance),
		ratings:    make(map[types.ID]*types.Rating),
		comments:   make(map[types.ID]*types.Comment),
		nonces:     make(map[string]*types.ReviewNonce),
	}
}

// Close is a no-op for the in-memory backend.
func (s *Store) Close() error { return nil }

var _ storage.Store = (*Store)(nil)

func cloneRevision(rev *types.PlaceRevision) *types.PlaceRevision {
	cp := *rev
	cp.Tags = append([]string(nil), rev.Tags...)
	cp.Links.CustomLinks = append([]types.CustomLink(nil), rev.Links.CustomLinks...)
	if rev.Address != nil {
		addr := *rev.Address
		cp.Address = &addr
	}
	if rev.Contact != nil {
		c := *rev.Contact
		cp.Contact = &c
	}
	if rev.FoundedOn != nil {
		v := *rev.FoundedOn
		cp.FoundedOn = &v
	}
	return &cp
}

// CreateOrUpdatePlace implements storage.Store.
func (s *Store) CreateOrUpdatePlace(ctx context.Context, place types.Place, rev types.PlaceRevision, expectedVersion *types.Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.places[place.ID]
	if rev.Rev.IsInitial() {
		if exists {
			return apperr.New(apperr.AlreadyExists, "CreateOrUpdatePlace", "place already exists")
		}
		rec = &placeRecord{
			place:     place,
			revisions: make(map[types.Revision]*types.PlaceRevision),
			reviews:   make(map[types.Revision][]types.ReviewStatusLogEntry),
		}
		s.places[place.ID] = rec
	} else {
		if !exists {
			return apperr.New(apperr.NotFound, "CreateOrUpdatePlace", "unknown place")
		}
		if expectedVersion == nil || *expectedVersion != rec.place.CurrentRev+1 || rev.Rev != rec.place.CurrentRev+1 {
			return apperr.New(apperr.InvalidVersion, "CreateOrUpdatePlace", "version mismatch")
		}
		rec.place.CurrentRev = rev.Rev
	}

	rec.revisions[rev.Rev] = cloneRevision(&rev)
	rec.reviews[rev.Rev] = []types.ReviewStatusLogEntry{{
		SubRev:    0,
		CreatedAt: rev.Created.At,
		Reviewer:  rev.Created.By,
		Status:    types.Created,
	}}
	return nil
}

// ReviewPlaces implements storage.Store.
func (s *Store) ReviewPlaces(ctx context.Context, ids []types.ID, status types.ReviewStatus, entry storage.ReviewLogEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, id := range ids {
		rec, ok := s.places[id]
		if !ok {
			continue
		}
		rev := rec.place.CurrentRev
		revision := rec.revisions[rev]
		if revision.CurrentStatus == status {
			continue
		}
		log := rec.reviews[rev]
		log = append(log, types.ReviewStatusLogEntry{
			SubRev:    types.SubRevision(len(log)),
			CreatedAt: entry.CreatedAt,
			Reviewer:  entry.Reviewer,
			Status:    status,
			Context:   entry.Context,
		})
		rec.reviews[rev] = log
		revision.CurrentStatus = status
		changed++
	}
	return changed, nil
}

func toPlaceView(rec *placeRecord) *storage.PlaceView {
	rev := rec.revisions[rec.place.CurrentRev]
	return &storage.PlaceView{Place: rec.place, Revision: *cloneRevision(rev)}
}

// GetPlace implements storage.Store.
func (s *Store) GetPlace(ctx context.Context, id types.ID) (*storage.PlaceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.places[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "GetPlace", "unknown place")
	}
	return toPlaceView(rec), nil
}

// GetPlaces implements storage.Store.
func (s *Store) GetPlaces(ctx context.Context, ids []types.ID) ([]*storage.PlaceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*storage.PlaceView, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.places[id]; ok {
			out = append(out, toPlaceView(rec))
		}
	}
	return out, nil
}

// AllPlaces implements storage.Store.
func (s *Store) AllPlaces(ctx context.Context) ([]*storage.PlaceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*storage.PlaceView, 0, len(s.places))
	for _, rec := range s.places {
		out = append(out, toPlaceView(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Place.ID < out[j].Place.ID })
	return out, nil
}

func paginate[T any](items []T, page types.Pagination) []T {
	if page.Offset > 0 {
		if page.Offset >= len(items) {
			return nil
		}
		items = items[page.Offset:]
	}
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

// RecentlyChangedPlaces implements storage.Store.
func (s *Store) RecentlyChangedPlaces(ctx context.Context, params types.RecentlyChangedParams, page types.Pagination) ([]*storage.PlaceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*storage.PlaceView
	for _, rec := range s.places {
		rev := rec.revisions[rec.place.CurrentRev]
		log := rec.reviews[rec.place.CurrentRev]
		createdAt := log[len(log)-1].CreatedAt
		if params.Since != nil && createdAt < *params.Since {
			continue
		}
		if params.Until != nil && createdAt >= *params.Until {
			continue
		}
		_ = rev
		out = append(out, toPlaceView(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		li := s.lastReviewTime(out[i].Place.ID)
		lj := s.lastReviewTime(out[j].Place.ID)
		return li > lj
	})
	return paginate(out, page), nil
}

func (s *Store) lastReviewTime(id types.ID) int64 {
	rec := s.places[id]
	log := rec.reviews[rec.place.CurrentRev]
	return log[len(log)-1].CreatedAt
}

// FindPlacesNotUpdatedSince implements storage.Store.
func (s *Store) FindPlacesNotUpdatedSince(ctx context.Context, ts int64, page types.Pagination) ([]*storage.PlaceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*storage.PlaceView
	for _, rec := range s.places {
		rev := rec.revisions[rec.place.CurrentRev]
		if rev.Created.At >= ts {
			continue
		}
		if rev.CurrentStatus == types.Archived || rev.CurrentStatus == types.Rejected {
			continue
		}
		out = append(out, toPlaceView(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		ri := s.places[out[i].Place.ID].revisions[out[i].Place.CurrentRev]
		rj := s.places[out[j].Place.ID].revisions[out[j].Place.CurrentRev]
		return ri.Created.At < rj.Created.At
	})
	return paginate(out, page), nil
}

// MostPopularPlaceRevisionTags implements storage.Store.
func (s *Store) MostPopularPlaceRevisionTags(ctx context.Context, params types.PopularTagsParams, page types.Pagination) ([]types.TagCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, rec := range s.places {
		rev := rec.revisions[rec.place.CurrentRev]
		if rev.CurrentStatus == types.Archived || rev.CurrentStatus == types.Rejected {
			continue
		}
		for _, t := range rev.Tags {
			counts[t]++
		}
	}

	var out []types.TagCount
	for tag, count := range counts {
		if params.Min != nil && count < *params.Min {
			continue
		}
		if params.Max != nil && count > *params.Max {
			continue
		}
		out = append(out, types.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return paginate(out, page), nil
}

// LoadPlaceRevision implements storage.Store.
func (s *Store) LoadPlaceRevision(ctx context.Context, id types.ID, rev types.Revision) (*types.PlaceRevision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.places[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "LoadPlaceRevision", "unknown place")
	}
	revision, ok := rec.revisions[rev]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "LoadPlaceRevision", "unknown revision")
	}
	return cloneRevision(revision), nil
}

// GetPlaceHistory implements storage.Store.
func (s *Store) GetPlaceHistory(ctx context.Context, id types.ID, rev *types.Revision) ([]storage.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.places[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "GetPlaceHistory", "unknown place")
	}

	var revs []types.Revision
	if rev != nil {
		if _, ok := rec.revisions[*rev]; !ok {
			return nil, apperr.New(apperr.NotFound, "GetPlaceHistory", "unknown revision")
		}
		revs = []types.Revision{*rev}
	} else {
		for r := range rec.revisions {
			revs = append(revs, r)
		}
		sort.Slice(revs, func(i, j int) bool { return revs[i] > revs[j] })
	}

	out := make([]storage.HistoryEntry, 0, len(revs))
	for _, r := range revs {
		out = append(out, storage.HistoryEntry{
			Revision: *cloneRevision(rec.revisions[r]),
			Reviews:  append([]types.ReviewStatusLogEntry(nil), rec.reviews[r]...),
		})
	}
	return out, nil
}
