package memory

import (
	"context"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/types"
)

// CreateOrganization implements storage.Store.
func (s *Store) CreateOrganization(ctx context.Context, org types.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[org.ID]; ok {
		return apperr.New(apperr.AlreadyExists, "CreateOrganization", "organization already exists")
	}
	cp := org
	cp.ModeratedTag = append([]types.ModeratedTag(nil), org.ModeratedTag...)
	s.orgs[org.ID] = &orgRecord{org: cp}
	for _, mt := range cp.ModeratedTag {
		s.tagOwner[mt.Label] = org.ID
	}
	return nil
}

func cloneOrg(rec *orgRecord) *types.Organization {
	cp := rec.org
	cp.ModeratedTag = append([]types.ModeratedTag(nil), rec.org.ModeratedTag...)
	return &cp
}

// GetOrganization implements storage.Store.
func (s *Store) GetOrganization(ctx context.Context, id types.ID) (*types.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orgs[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "GetOrganization", "unknown organization")
	}
	return cloneOrg(rec), nil
}

// GetOrganizationByToken implements storage.Store.
func (s *Store) GetOrganizationByToken(ctx context.Context, token string) (*types.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.orgs {
		if rec.org.APIToken == token {
			return cloneOrg(rec), nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "GetOrganizationByToken", "unknown api token")
}

// RegisterModeratedTag implements storage.Store.
func (s *Store) RegisterModeratedTag(ctx context.Context, orgID types.ID, tag types.ModeratedTag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orgs[orgID]
	if !ok {
		return apperr.New(apperr.NotFound, "RegisterModeratedTag", "unknown organization")
	}
	replaced := false
	for i, mt := range rec.org.ModeratedTag {
		if mt.Label == tag.Label {
			rec.org.ModeratedTag[i] = tag
			replaced = true
			break
		}
	}
	if !replaced {
		rec.org.ModeratedTag = append(rec.org.ModeratedTag, tag)
	}
	s.tagOwner[tag.Label] = orgID
	return nil
}

// FindModeratedTagOwner implements storage.Store.
func (s *Store) FindModeratedTagOwner(ctx context.Context, label string) (*types.Organization, *types.ModeratedTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orgID, ok := s.tagOwner[label]
	if !ok {
		return nil, nil, nil
	}
	rec, ok := s.orgs[orgID]
	if !ok {
		return nil, nil, nil
	}
	org := cloneOrg(rec)
	mt, ok := org.FindModeratedTag(label)
	if !ok {
		return org, nil, nil
	}
	return org, &mt, nil
}
