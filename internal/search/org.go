package search

import (
	"context"
	"fmt"

	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/types"
)

// ClearedViewer resolves the place revision an organization is
// entitled to see (spec.md §4.4's "clearance view"), or nil if the
// place has never been cleared at any revision for that organization.
// Satisfied by *clearance.Engine; declared locally so this package
// doesn't need to import clearance just for this one method's
// signature.
type ClearedViewer interface {
	ClearedView(ctx context.Context, orgID types.ID, current *storage.PlaceView) (*types.PlaceRevision, error)
}

// SearchAsOrg evaluates q as organization orgID's cleared view: every
// candidate document is rebuilt from viewer's cleared revision (rather
// than the index's current-revision Document) before matching, and
// documents whose cleared revision carries none of orgID's moderated
// tags are excluded, per spec.md §4.4's org_tag contract.
func (ix *Index) SearchAsOrg(ctx context.Context, q Query, orgID types.ID, viewer ClearedViewer, owned types.TagSet) ([]*Document, error) {
	q.OrgTag = &orgID

	ix.mu.RLock()
	candidates := ix.candidateSetLocked(q)
	current := make(map[types.ID]*Document, len(candidates))
	for id := range candidates {
		if d := ix.docs[id]; d != nil {
			current[id] = d
		}
	}
	ix.mu.RUnlock()

	var results []scored
	for id, doc := range current {
		place, err := ix.store.GetPlace(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load place %s for cleared view: %w", id, err)
		}
		clearedRev, err := viewer.ClearedView(ctx, orgID, place)
		if err != nil {
			return nil, fmt.Errorf("resolve cleared view for %s: %w", id, err)
		}
		if clearedRev == nil {
			// Never cleared at any revision for this org: invisible to
			// its cleared view (spec.md §3), not a fallback to current.
			continue
		}

		clearedDoc := &Document{
			PlaceID:     id,
			Title:       clearedRev.Title,
			Description: clearedRev.Description,
			Tags:        clearedRev.Tags,
			Location:    clearedRev.Location,
			Status:      clearedRev.CurrentStatus,
			Avg:         doc.Avg,
		}

		if !hasAnyOwnedTag(clearedDoc.Tags, owned) {
			continue
		}
		ok, score := ix.matchLocked(clearedDoc, q)
		if !ok {
			continue
		}
		results = append(results, scored{doc: clearedDoc, score: score})
	}

	return rankAndLimit(results, q.Limit), nil
}

func hasAnyOwnedTag(tags []string, owned types.TagSet) bool {
	if len(owned) == 0 {
		return false
	}
	for _, t := range tags {
		if owned.Has(t) {
			return true
		}
	}
	return false
}
