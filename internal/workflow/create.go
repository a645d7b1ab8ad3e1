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

// CreatePlace implements create_place (spec.md §4.6): validates the
// license against acceptedLicenses, auto-corrects empty-string fields,
// resolves missing coordinates via the geocoder, enforces the
// caller-supplied captcha token, checks moderated-tag authorization
// for caller against the tags' owning organizations (§4.4), persists
// revision 0, records pending clearances, and reindexes. Returns the
// persisted PlaceView.
func (e *Engine) CreatePlace(ctx context.Context, input types.NewPlaceInput, captchaToken string, acceptedLicenses []string, caller clearance.Caller, now int64) (*storage.PlaceView, error) {
	if !contains(acceptedLicenses, input.License) {
		return nil, apperr.New(apperr.LicenseNotAccepted, "CreatePlace", fmt.Sprintf("license %q is not accepted", input.License))
	}

	validate.NewPlaceInput(&input)

	if e.captcha != nil {
		ok, err := e.captcha.Verify(ctx, captchaToken)
		if err != nil {
			return nil, fmt.Errorf("verify captcha: %w", err)
		}
		if !ok {
			return nil, apperr.New(apperr.Validation, "CreatePlace", "captcha verification failed")
		}
	}

	if !input.Location.IsValid() && input.Address != nil && e.geocoder != nil {
		pt, ok, err := e.geocoder.Geocode(ctx, *input.Address)
		if err != nil {
			return nil, fmt.Errorf("geocode address: %w", err)
		}
		if ok {
			input.Location = pt
		}
	}

	tags := types.SplitAndNormalizeTags(input.Tags...)
	needClearance, err := e.clearance.Authorize(ctx, nil, tags, caller)
	if err != nil {
		return nil, err
	}

	placeID := types.NewID()
	place := types.Place{ID: placeID, License: input.License, CurrentRev: 0}
	rev := types.PlaceRevision{
		PlaceID:       placeID,
		Rev:           0,
		Title:         input.Title,
		Description:   input.Description,
		Location:      input.Location,
		Address:       input.Address,
		Contact:       input.Contact,
		OpeningHours:  input.OpeningHours,
		FoundedOn:     input.FoundedOn,
		Links:         input.Links,
		Tags:          tags,
		Created:       types.Authorship{At: now, By: input.CreatedBy},
		CurrentStatus: types.Created,
	}
	if err := validate.PlaceRevision(&rev); err != nil {
		return nil, err
	}

	if err := e.store.CreateOrUpdatePlace(ctx, place, rev, nil); err != nil {
		return nil, fmt.Errorf("create place: %w", err)
	}

	if err := e.clearance.RecordPending(ctx, needClearance, placeID, nil, now); err != nil {
		return nil, fmt.Errorf("record pending clearances: %w", err)
	}

	if err := e.reindex(ctx, placeID); err != nil {
		return nil, fmt.Errorf("reindex new place: %w", err)
	}

	e.notify(ctx, clearanceIntents(placeID, needClearance, now))

	return e.store.GetPlace(ctx, placeID)
}
