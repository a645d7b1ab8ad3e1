// Package clearance implements the moderated-tag authorization and
// pending-clearance bookkeeping of spec.md §4.4 (C4): an organization
// can claim "ownership" of a tag label, and depending on that claim's
// flags, adding or removing the label on a place either is refused
// outright, is allowed freely, or is allowed but leaves a pending
// clearance behind for the organization to later approve.
//
// Grounded on the field/behavior set of
// _examples/original_source/ofdb-entities/src/clearance.rs, expressed
// in the teacher's plain-function, no-framework style rather than as
// a trait object.
package clearance

import (
	"context"
	"fmt"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/types"
)

// Engine authorizes moderated-tag changes and tracks the resulting
// pending clearances against a Store.
type Engine struct {
	store storage.Store
}

// New builds an Engine backed by store.
func New(store storage.Store) *Engine {
	return &Engine{store: store}
}

// Caller identifies who is requesting a moderated-tag change: either
// authenticated as a specific organization via its API token (the
// org_token path spec.md §4.4 names), or carrying a platform Role that
// may act on any organization's tags (Scout or above).
type Caller struct {
	OrgToken string
	Role     types.Role
}

// ownsOrg reports whether caller is authorized to act on org's
// moderated tags: either by presenting org's own API token, or by
// holding at least a Scout role (spec.md §4.4).
func (c Caller) ownsOrg(org *types.Organization) bool {
	if c.Role.AtLeast(types.RoleScout) {
		return true
	}
	return c.OrgToken != "" && org.APIToken != "" && c.OrgToken == org.APIToken
}

// Authorize checks the tag diff between oldTags and newTags against
// every organization that owns one of the affected labels. It returns
// the set of organization IDs that must be notified of a pending
// clearance for this change (owners whose rule has RequireClearance
// set), or an apperr.ModeratedTagAuthorization error if the change is
// not permitted.
//
// A tag claimed by an organization requires both the rule's
// AllowAdd/AllowRemove flag and caller identity: caller must either be
// authenticated as the owning organization (caller.OrgToken matches
// its APIToken) or hold a Scout/Admin role. An otherwise-permitted
// change from an unauthenticated, non-elevated caller still fails
// ModeratedTagAuthorization (spec.md §4.4 scenario S3).
//
// Authorize never returns ModeratedTagConflict: each label is checked
// against the single owner the store reports for it. A second
// organization claiming an owned label is refused earlier, by
// RegisterModeratedTag.
func (e *Engine) Authorize(ctx context.Context, oldTags, newTags []string, caller Caller) ([]types.ID, error) {
	added, removed := types.NewTagSet(newTags...).Diff(types.NewTagSet(oldTags...))

	var needClearance []types.ID

	check := func(label string, adding bool) error {
		org, mt, err := e.store.FindModeratedTagOwner(ctx, label)
		if err != nil {
			return fmt.Errorf("find moderated tag owner for %q: %w", label, err)
		}
		if org == nil || mt == nil {
			return nil
		}
		allowed := mt.AllowAdd
		if !adding {
			allowed = mt.AllowRemove
		}
		if !allowed || !caller.ownsOrg(org) {
			return apperr.New(apperr.ModeratedTagAuthorization, "Authorize",
				fmt.Sprintf("organization %s does not permit this change to tag %q", org.ID, label))
		}
		if mt.RequireClearance {
			needClearance = append(needClearance, org.ID)
		}
		return nil
	}

	for _, label := range added {
		if err := check(label, true); err != nil {
			return nil, err
		}
	}
	for _, label := range removed {
		if err := check(label, false); err != nil {
			return nil, err
		}
	}
	return dedupIDs(needClearance), nil
}

// RegisterModeratedTag claims label for orgID. If another organization
// already owns label, registration is refused with
// apperr.ModeratedTagConflict (spec.md §9 Open Question: a label may
// be owned-with-clearance by at most one organization at a time) —
// the existing owner must release the label before a new one can
// claim it.
func (e *Engine) RegisterModeratedTag(ctx context.Context, orgID types.ID, tag types.ModeratedTag) error {
	owner, _, err := e.store.FindModeratedTagOwner(ctx, tag.Label)
	if err != nil {
		return fmt.Errorf("find moderated tag owner for %q: %w", tag.Label, err)
	}
	if owner != nil && owner.ID != orgID {
		return apperr.New(apperr.ModeratedTagConflict, "RegisterModeratedTag",
			fmt.Sprintf("tag %q is already owned by organization %s", tag.Label, owner.ID))
	}
	return e.store.RegisterModeratedTag(ctx, orgID, tag)
}

func dedupIDs(ids []types.ID) []types.ID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[types.ID]struct{}, len(ids))
	out := make([]types.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// RecordPending stores a pending clearance for placeID against every
// organization in orgIDs, timestamped at createdAt (milliseconds since
// epoch). Called after a place revision that required clearance has
// been persisted.
//
// previousRev is the place's current_rev immediately before this
// mutation, or nil for the place's initial creation (spec.md §4.4 step
// 1). It only matters the first time a pending clearance is opened for
// (org, place): the store's upsert reuses whatever LastClearedRevision
// an existing row already carries rather than overwriting it.
func (e *Engine) RecordPending(ctx context.Context, orgIDs []types.ID, placeID types.ID, previousRev *types.Revision, createdAt int64) error {
	if len(orgIDs) == 0 {
		return nil
	}
	return e.store.AddPendingClearancesForPlace(ctx, orgIDs, types.PendingClearance{
		PlaceID:             placeID,
		CreatedAt:           createdAt,
		LastClearedRevision: previousRev,
	})
}

// Clear approves every pending clearance for orgID in placeIDs up to
// each place's current revision, and removes the now-satisfied pending
// rows. Returns the number of rows removed.
func (e *Engine) Clear(ctx context.Context, orgID types.ID, placeIDs []types.ID) (int, error) {
	updates := make([]types.ClearanceUpdate, 0, len(placeIDs))
	for _, id := range placeIDs {
		updates = append(updates, types.ClearanceUpdate{PlaceID: id})
	}
	if err := e.store.UpdatePendingClearancesForPlaces(ctx, orgID, updates); err != nil {
		return 0, fmt.Errorf("update pending clearances: %w", err)
	}
	return e.store.CleanupPendingClearancesForPlaces(ctx, orgID)
}

// Pending returns orgID's outstanding pending clearances.
func (e *Engine) Pending(ctx context.Context, orgID types.ID, page types.Pagination) ([]types.PendingClearance, error) {
	return e.store.ListPendingClearancesForPlaces(ctx, orgID, page)
}

// ClearedView returns the revision of place that orgID is entitled to
// see: its own cleared revision if a pending clearance names one and
// it differs from the current revision, the current revision
// unmodified if nothing is pending, or nil if a clearance is pending
// but has never been cleared at any revision. spec.md §3 defines a nil
// LastClearedRevision as "the place has never been approved and is
// invisible to that organization's cleared view" — it is not a
// fallback to the unapproved current revision.
func (e *Engine) ClearedView(ctx context.Context, orgID types.ID, current *storage.PlaceView) (*types.PlaceRevision, error) {
	pending, err := e.store.LoadPendingClearanceForPlace(ctx, orgID, current.Place.ID)
	if err != nil {
		return nil, fmt.Errorf("load pending clearance: %w", err)
	}
	if pending == nil {
		return &current.Revision, nil
	}
	if pending.LastClearedRevision == nil {
		return nil, nil
	}
	if *pending.LastClearedRevision == current.Revision.Rev {
		return &current.Revision, nil
	}
	rev, err := e.store.LoadPlaceRevision(ctx, current.Place.ID, *pending.LastClearedRevision)
	if err != nil {
		return nil, fmt.Errorf("load cleared revision: %w", err)
	}
	return rev, nil
}
