package workflow

import (
	"context"
	"fmt"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/clearance"
	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/types"
	"github.com/commonplaces/placecore/internal/validate"
)

// UpdatePlace implements update_place (spec.md §4.6): same
// validation/auto-correct/geocode steps as CreatePlace, an optimistic
// version check (update.Version must equal current_rev+1), moderated-
// tag authorization against the diff between the current and new tag
// sets (caller must own the affected tags' organizations or be
// Scout/Admin, §4.4), persistence, clearance bookkeeping, and
// reindexing.
func (e *Engine) UpdatePlace(ctx context.Context, id types.ID, input types.UpdatePlaceInput, caller clearance.Caller, now int64) (*storage.PlaceView, error) {
	current, err := e.store.GetPlace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load current place: %w", err)
	}
	if input.Version != current.Place.CurrentRev.Next() {
		return nil, apperr.New(apperr.InvalidVersion, "UpdatePlace", "version must equal current_rev+1")
	}

	validate.UpdatePlaceInput(&input)

	if !input.Location.IsValid() && input.Address != nil && e.geocoder != nil {
		pt, ok, err := e.geocoder.Geocode(ctx, *input.Address)
		if err != nil {
			return nil, fmt.Errorf("geocode address: %w", err)
		}
		if ok {
			input.Location = pt
		}
	} else if !input.Location.IsValid() {
		input.Location = current.Revision.Location
	}

	newTags := types.SplitAndNormalizeTags(input.Tags...)
	needClearance, err := e.clearance.Authorize(ctx, current.Revision.Tags, newTags, caller)
	if err != nil {
		return nil, err
	}
	previousRev := current.Place.CurrentRev

	rev := types.PlaceRevision{
		PlaceID:       id,
		Rev:           input.Version,
		Title:         input.Title,
		Description:   input.Description,
		Location:      input.Location,
		Address:       input.Address,
		Contact:       input.Contact,
		OpeningHours:  input.OpeningHours,
		FoundedOn:     input.FoundedOn,
		Links:         input.Links,
		Tags:          newTags,
		Created:       types.Authorship{At: now, By: input.UpdatedBy},
		CurrentStatus: types.Created,
	}
	if err := validate.PlaceRevision(&rev); err != nil {
		return nil, err
	}

	expected := input.Version
	if err := e.store.CreateOrUpdatePlace(ctx, current.Place, rev, &expected); err != nil {
		return nil, fmt.Errorf("update place: %w", err)
	}

	if err := e.clearance.RecordPending(ctx, needClearance, id, &previousRev, now); err != nil {
		return nil, fmt.Errorf("record pending clearances: %w", err)
	}

	if err := e.reindex(ctx, id); err != nil {
		return nil, fmt.Errorf("reindex updated place: %w", err)
	}

	e.notify(ctx, clearanceIntents(id, needClearance, now))

	return e.store.GetPlace(ctx, id)
}
