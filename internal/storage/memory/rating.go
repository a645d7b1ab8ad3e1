package memory

import (
	"context"
	"sort"

	"github.com/commonplaces/placecore/internal/types"
)

// AddRating implements storage.Store.
func (s *Store) AddRating(ctx context.Context, rating types.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := rating
	s.ratings[rating.ID] = &cp
	return nil
}

// ListRatings implements storage.Store.
func (s *Store) ListRatings(ctx context.Context, placeID types.ID, includeArchived bool) ([]*types.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Rating
	for _, r := range s.ratings {
		if r.PlaceID != placeID {
			continue
		}
		if !includeArchived && r.Archived() {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// ArchiveRatingsForPlace implements storage.Store.
func (s *Store) ArchiveRatingsForPlace(ctx context.Context, placeID types.ID, at int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.ratings {
		if r.PlaceID != placeID || r.Archived() {
			continue
		}
		ts := at
		r.ArchivedAt = &ts
		n++
	}
	return n, nil
}

// AddComment implements storage.Store.
func (s *Store) AddComment(ctx context.Context, comment types.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := comment
	s.comments[comment.ID] = &cp
	return nil
}

// ListComments implements storage.Store.
func (s *Store) ListComments(ctx context.Context, ratingID types.ID, includeArchived bool) ([]*types.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Comment
	for _, c := range s.comments {
		if c.RatingID != ratingID {
			continue
		}
		if !includeArchived && c.Archived() {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// ArchiveCommentsForRatings implements storage.Store.
func (s *Store) ArchiveCommentsForRatings(ctx context.Context, ratingIDs []types.ID, at int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[types.ID]struct{}, len(ratingIDs))
	for _, id := range ratingIDs {
		set[id] = struct{}{}
	}
	n := 0
	for _, c := range s.comments {
		if _, ok := set[c.RatingID]; !ok || c.Archived() {
			continue
		}
		ts := at
		c.ArchivedAt = &ts
		n++
	}
	return n, nil
}
