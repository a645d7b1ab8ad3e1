package memory

import (
	"context"

	"github.com/commonplaces/placecore/internal/types"
)

// AddPendingClearancesForPlace implements storage.Store.
func (s *Store) AddPendingClearancesForPlace(ctx context.Context, orgIDs []types.ID, pending types.PendingClearance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, orgID := range orgIDs {
		byPlace, ok := s.clearances[orgID]
		if !ok {
			byPlace = make(map[types.ID]*types.PendingClearance)
			s.clearances[orgID] = byPlace
		}
		if existing, ok := byPlace[pending.PlaceID]; ok {
			existing.CreatedAt = pending.CreatedAt
			continue
		}
		cp := pending
		cp.OrgID = orgID
		byPlace[pending.PlaceID] = &cp
	}
	return nil
}

// CountPendingClearancesForPlaces implements storage.Store.
func (s *Store) CountPendingClearancesForPlaces(ctx context.Context, orgID types.ID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clearances[orgID]), nil
}

// ListPendingClearancesForPlaces implements storage.Store.
func (s *Store) ListPendingClearancesForPlaces(ctx context.Context, orgID types.ID, page types.Pagination) ([]types.PendingClearance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.PendingClearance, 0, len(s.clearances[orgID]))
	for _, pc := range s.clearances[orgID] {
		out = append(out, *pc)
	}
	return paginate(out, page), nil
}

// LoadPendingClearanceForPlace implements storage.Store.
func (s *Store) LoadPendingClearanceForPlace(ctx context.Context, orgID, placeID types.ID) (*types.PendingClearance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byPlace, ok := s.clearances[orgID]
	if !ok {
		return nil, nil
	}
	pc, ok := byPlace[placeID]
	if !ok {
		return nil, nil
	}
	cp := *pc
	return &cp, nil
}

// UpdatePendingClearancesForPlaces implements storage.Store.
func (s *Store) UpdatePendingClearancesForPlaces(ctx context.Context, orgID types.ID, updates []types.ClearanceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byPlace := s.clearances[orgID]
	for _, u := range updates {
		rev := u.ClearedRevision
		if rev == nil {
			if rec, ok := s.places[u.PlaceID]; ok {
				r := rec.place.CurrentRev
				rev = &r
			}
		}
		if byPlace != nil {
			if pc, ok := byPlace[u.PlaceID]; ok {
				pc.LastClearedRevision = rev
			}
		}
	}
	return nil
}

// CleanupPendingClearancesForPlaces implements storage.Store.
func (s *Store) CleanupPendingClearancesForPlaces(ctx context.Context, orgID types.ID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byPlace, ok := s.clearances[orgID]
	if !ok {
		return 0, nil
	}
	removed := 0
	for placeID, pc := range byPlace {
		rec, ok := s.places[placeID]
		if !ok {
			continue
		}
		if pc.LastClearedRevision != nil && *pc.LastClearedRevision == rec.place.CurrentRev {
			delete(byPlace, placeID)
			removed++
		}
	}
	return removed, nil
}
