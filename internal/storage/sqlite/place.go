package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/geo"
	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/types"
)

// CreateOrUpdatePlace implements storage.Store. Mirrors the
// teacher's insertIssue (internal/storage/sqlite/issues.go) for the
// raw-SQL insert shape, generalized to the optimistic-concurrency
// check spec.md §4.2 requires.
func (s *Store) CreateOrUpdatePlace(ctx context.Context, place types.Place, rev types.PlaceRevision, expectedVersion *types.Revision) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if rev.Rev.IsInitial() {
			var exists int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM place WHERE id = ?`, string(place.ID)).Scan(&exists); err != nil {
				return fmt.Errorf("check existing place: %w", err)
			}
			if exists > 0 {
				return apperr.New(apperr.AlreadyExists, "CreateOrUpdatePlace", "place already exists")
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO place (id, license, current_rev) VALUES (?, ?, 0)`,
				string(place.ID), place.License); err != nil {
				return fmt.Errorf("insert place: %w", err)
			}
		} else {
			var currentRev int64
			if err := tx.QueryRowContext(ctx, `SELECT current_rev FROM place WHERE id = ?`, string(place.ID)).Scan(&currentRev); err != nil {
				if err == sql.ErrNoRows {
					return apperr.New(apperr.NotFound, "CreateOrUpdatePlace", "unknown place")
				}
				return fmt.Errorf("load current_rev: %w", err)
			}
			if expectedVersion == nil || uint64(*expectedVersion) != uint64(currentRev)+1 {
				return apperr.New(apperr.InvalidVersion, "CreateOrUpdatePlace", "version mismatch")
			}
			if uint64(rev.Rev) != uint64(currentRev)+1 {
				return apperr.New(apperr.InvalidVersion, "CreateOrUpdatePlace", "revision is not current_rev+1")
			}
			if _, err := tx.ExecContext(ctx, `UPDATE place SET current_rev = ? WHERE id = ?`,
				int64(rev.Rev), string(place.ID)); err != nil {
				return fmt.Errorf("advance current_rev: %w", err)
			}
		}

		if err := insertRevision(ctx, tx, &rev); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO place_revision_review (place_id, rev, sub_rev, created_at, reviewer, status, context)
			VALUES (?, ?, 0, ?, ?, ?, '')`,
			string(place.ID), int64(rev.Rev), rev.Created.At, nullableID(rev.Created.By), string(types.Created)); err != nil {
			return fmt.Errorf("insert initial review log: %w", err)
		}
		return nil
	})
}

func insertRevision(ctx context.Context, tx *sql.Tx, rev *types.PlaceRevision) error {
	var street, zip, city, country, state *string
	if rev.Address != nil {
		street, zip, city, country, state = &rev.Address.Street, &rev.Address.Zip, &rev.Address.City, &rev.Address.Country, &rev.Address.State
	}
	var contactName, contactEmail, contactPhone *string
	if rev.Contact != nil {
		contactName, contactEmail, contactPhone = &rev.Contact.Name, &rev.Contact.Email, &rev.Contact.Phone
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO place_revision (
			place_id, rev, title, description, lat, lng,
			street, zip, city, country, state,
			contact_name, contact_email, contact_phone,
			opening_hours, founded_on, homepage, image, image_link,
			created_at, created_by, current_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rev.PlaceID), int64(rev.Rev), rev.Title, rev.Description,
		int64(rev.Location.Lat.Raw()), int64(rev.Location.Lng.Raw()),
		street, zip, city, country, state,
		contactName, contactEmail, contactPhone,
		rev.OpeningHours, rev.FoundedOn, nullStr(rev.Links.Homepage), nullStr(rev.Links.Image), nullStr(rev.Links.ImageLink),
		rev.Created.At, nullableID(rev.Created.By), string(rev.CurrentStatus),
	)
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}

	for _, tag := range rev.Tags {
		if _, err := tx.ExecContext(ctx, `INSERT INTO place_revision_tag (place_id, rev, tag) VALUES (?, ?, ?)`,
			string(rev.PlaceID), int64(rev.Rev), tag); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	for _, l := range rev.Links.CustomLinks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO place_revision_custom_link (place_id, rev, url, title, description) VALUES (?, ?, ?, ?, ?)`,
			string(rev.PlaceID), int64(rev.Rev), l.URL, l.Title, l.Description); err != nil {
			return fmt.Errorf("insert custom link: %w", err)
		}
	}
	return nil
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableID(id *types.ID) *string {
	if id == nil {
		return nil
	}
	s := string(*id)
	return &s
}

// ReviewPlaces implements storage.Store.
func (s *Store) ReviewPlaces(ctx context.Context, ids []types.ID, status types.ReviewStatus, entry storage.ReviewLogEntry) (int, error) {
	changed := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			var currentRev int64
			var currentStatus string
			err := tx.QueryRowContext(ctx, `
				SELECT pr.rev, pr.current_status FROM place p
				JOIN place_revision pr ON pr.place_id = p.id AND pr.rev = p.current_rev
				WHERE p.id = ?`, string(id)).Scan(&currentRev, &currentStatus)
			if err == sql.ErrNoRows {
				continue
			}
			if err != nil {
				return fmt.Errorf("load current revision for review: %w", err)
			}
			if currentStatus == string(status) {
				continue
			}
			var maxSub int64
			if err := tx.QueryRowContext(ctx, `
				SELECT COALESCE(MAX(sub_rev), -1) FROM place_revision_review WHERE place_id = ? AND rev = ?`,
				string(id), currentRev).Scan(&maxSub); err != nil {
				return fmt.Errorf("load max sub_rev: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO place_revision_review (place_id, rev, sub_rev, created_at, reviewer, status, context)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				string(id), currentRev, maxSub+1, entry.CreatedAt, nullableID(entry.Reviewer), string(status), entry.Context); err != nil {
				return fmt.Errorf("insert review log entry: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE place_revision SET current_status = ? WHERE place_id = ? AND rev = ?`,
				string(status), string(id), currentRev); err != nil {
				return fmt.Errorf("update current_status: %w", err)
			}
			changed++
		}
		return nil
	})
	return changed, err
}

const placeViewSelectCols = `
	p.id, p.license, p.current_rev,
	pr.rev, pr.title, pr.description, pr.lat, pr.lng,
	pr.street, pr.zip, pr.city, pr.country, pr.state,
	pr.contact_name, pr.contact_email, pr.contact_phone,
	pr.opening_hours, pr.founded_on, pr.homepage, pr.image, pr.image_link,
	pr.created_at, pr.created_by, pr.current_status`

func scanPlaceView(row interface{ Scan(...any) error }) (*storage.PlaceView, error) {
	var (
		id, license                                         string
		currentRev, rev                                     int64
		title, description                                  string
		lat, lng                                            int64
		street, zip, city, country, state                   sql.NullString
		contactName, contactEmail, contactPhone             sql.NullString
		openingHours                                        string
		foundedOn, homepage, image, imageLink                sql.NullString
		createdAt                                            int64
		createdBy                                            sql.NullString
		currentStatus                                        string
	)
	if err := row.Scan(&id, &license, &currentRev, &rev, &title, &description, &lat, &lng,
		&street, &zip, &city, &country, &state,
		&contactName, &contactEmail, &contactPhone,
		&openingHours, &foundedOn, &homepage, &image, &imageLink,
		&createdAt, &createdBy, &currentStatus); err != nil {
		return nil, err
	}

	pv := &storage.PlaceView{
		Place: types.Place{ID: types.ID(id), License: license, CurrentRev: types.Revision(currentRev)},
		Revision: types.PlaceRevision{
			PlaceID:       types.ID(id),
			Rev:           types.Revision(rev),
			Title:         title,
			Description:   description,
			Location:      geo.NewPoint(geo.LatFromRaw(int32(lat)), geo.LngFromRaw(int32(lng))),
			OpeningHours:  openingHours,
			CurrentStatus: types.ReviewStatus(currentStatus),
			Created:       types.Authorship{At: createdAt},
		},
	}
	if street.Valid || zip.Valid || city.Valid || country.Valid || state.Valid {
		pv.Revision.Address = &types.Address{Street: street.String, Zip: zip.String, City: city.String, Country: country.String, State: state.String}
	}
	if contactName.Valid || contactEmail.Valid || contactPhone.Valid {
		pv.Revision.Contact = &types.Contact{Name: contactName.String, Email: contactEmail.String, Phone: contactPhone.String}
	}
	if foundedOn.Valid {
		v := foundedOn.String
		pv.Revision.FoundedOn = &v
	}
	pv.Revision.Links = types.Links{Homepage: homepage.String, Image: image.String, ImageLink: imageLink.String}
	if createdBy.Valid {
		id := types.ID(createdBy.String)
		pv.Revision.Created.By = &id
	}
	return pv, nil
}

func (s *Store) loadTags(ctx context.Context, placeID types.ID, rev types.Revision) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag FROM place_revision_tag WHERE place_id = ? AND rev = ? ORDER BY tag`, string(placeID), int64(rev))
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetPlace implements storage.Store.
func (s *Store) GetPlace(ctx context.Context, id types.ID) (*storage.PlaceView, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+placeViewSelectCols+`
		FROM place p JOIN place_revision pr ON pr.place_id = p.id AND pr.rev = p.current_rev
		WHERE p.id = ?`, string(id))
	pv, err := scanPlaceView(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "GetPlace", "unknown place")
	}
	if err != nil {
		return nil, fmt.Errorf("get place: %w", err)
	}
	tags, err := s.loadTags(ctx, pv.Place.ID, pv.Revision.Rev)
	if err != nil {
		return nil, err
	}
	pv.Revision.Tags = tags
	return pv, nil
}

// GetPlaces implements storage.Store.
func (s *Store) GetPlaces(ctx context.Context, ids []types.ID) ([]*storage.PlaceView, error) {
	out := make([]*storage.PlaceView, 0, len(ids))
	for _, id := range ids {
		pv, err := s.GetPlace(ctx, id)
		if apperr.Is(err, apperr.NotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, pv)
	}
	return out, nil
}

// AllPlaces implements storage.Store.
func (s *Store) AllPlaces(ctx context.Context) ([]*storage.PlaceView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+placeViewSelectCols+`
		FROM place p JOIN place_revision pr ON pr.place_id = p.id AND pr.rev = p.current_rev`)
	if err != nil {
		return nil, fmt.Errorf("all places: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*storage.PlaceView
	for rows.Next() {
		pv, err := scanPlaceView(rows)
		if err != nil {
			return nil, err
		}
		tags, err := s.loadTags(ctx, pv.Place.ID, pv.Revision.Rev)
		if err != nil {
			return nil, err
		}
		pv.Revision.Tags = tags
		out = append(out, pv)
	}
	return out, rows.Err()
}

func applyPagination(query string, page types.Pagination) (string, []any) {
	limit := page.Limit
	if limit <= 0 {
		if page.Offset > 0 {
			limit = 1 << 30 // no native "offset without limit": use a very large limit
		} else {
			return query, nil
		}
	}
	return query + ` LIMIT ? OFFSET ?`, []any{limit, page.Offset}
}

// RecentlyChangedPlaces implements storage.Store.
func (s *Store) RecentlyChangedPlaces(ctx context.Context, params types.RecentlyChangedParams, page types.Pagination) ([]*storage.PlaceView, error) {
	query := `
		SELECT ` + placeViewSelectCols + `
		FROM place p
		JOIN place_revision pr ON pr.place_id = p.id AND pr.rev = p.current_rev
		JOIN place_revision_review rv ON rv.place_id = pr.place_id AND rv.rev = pr.rev
			AND rv.sub_rev = (SELECT MAX(sub_rev) FROM place_revision_review WHERE place_id = pr.place_id AND rev = pr.rev)
		WHERE 1=1`
	var args []any
	if params.Since != nil {
		query += ` AND rv.created_at >= ?`
		args = append(args, *params.Since)
	}
	if params.Until != nil {
		query += ` AND rv.created_at < ?`
		args = append(args, *params.Until)
	}
	query += ` ORDER BY rv.created_at DESC, rv.sub_rev DESC`
	query, pageArgs := applyPagination(query, page)
	args = append(args, pageArgs...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recently changed places: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*storage.PlaceView
	for rows.Next() {
		pv, err := scanPlaceView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pv)
	}
	return out, rows.Err()
}

// FindPlacesNotUpdatedSince implements storage.Store.
func (s *Store) FindPlacesNotUpdatedSince(ctx context.Context, ts int64, page types.Pagination) ([]*storage.PlaceView, error) {
	query := `
		SELECT ` + placeViewSelectCols + `
		FROM place p JOIN place_revision pr ON pr.place_id = p.id AND pr.rev = p.current_rev
		WHERE pr.created_at < ? AND pr.current_status NOT IN (?, ?)
		ORDER BY pr.created_at ASC`
	args := []any{ts, string(types.Archived), string(types.Rejected)}
	query, pageArgs := applyPagination(query, page)
	args = append(args, pageArgs...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find places not updated since: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*storage.PlaceView
	for rows.Next() {
		pv, err := scanPlaceView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pv)
	}
	return out, rows.Err()
}

// MostPopularPlaceRevisionTags implements storage.Store.
func (s *Store) MostPopularPlaceRevisionTags(ctx context.Context, params types.PopularTagsParams, page types.Pagination) ([]types.TagCount, error) {
	query := `
		SELECT t.tag, COUNT(*) as cnt
		FROM place p
		JOIN place_revision pr ON pr.place_id = p.id AND pr.rev = p.current_rev
		JOIN place_revision_tag t ON t.place_id = pr.place_id AND t.rev = pr.rev
		WHERE pr.current_status NOT IN (?, ?)
		GROUP BY t.tag`
	args := []any{string(types.Archived), string(types.Rejected)}
	if params.Min != nil {
		query += ` HAVING cnt >= ?`
		args = append(args, *params.Min)
		if params.Max != nil {
			query += ` AND cnt <= ?`
			args = append(args, *params.Max)
		}
	} else if params.Max != nil {
		query += ` HAVING cnt <= ?`
		args = append(args, *params.Max)
	}
	query += ` ORDER BY cnt DESC, t.tag ASC`
	query, pageArgs := applyPagination(query, page)
	args = append(args, pageArgs...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("most popular tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.TagCount
	for rows.Next() {
		var tc types.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// LoadPlaceRevision implements storage.Store.
func (s *Store) LoadPlaceRevision(ctx context.Context, id types.ID, rev types.Revision) (*types.PlaceRevision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+placeViewSelectCols+`
		FROM place p JOIN place_revision pr ON pr.place_id = p.id
		WHERE p.id = ? AND pr.rev = ?`, string(id), int64(rev))
	pv, err := scanPlaceView(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "LoadPlaceRevision", "unknown revision")
	}
	if err != nil {
		return nil, fmt.Errorf("load place revision: %w", err)
	}
	tags, err := s.loadTags(ctx, id, rev)
	if err != nil {
		return nil, err
	}
	pv.Revision.Tags = tags
	return &pv.Revision, nil
}

// GetPlaceHistory implements storage.Store.
func (s *Store) GetPlaceHistory(ctx context.Context, id types.ID, rev *types.Revision) ([]storage.HistoryEntry, error) {
	query := `
		SELECT ` + placeViewSelectCols + `
		FROM place p JOIN place_revision pr ON pr.place_id = p.id
		WHERE p.id = ?`
	args := []any{string(id)}
	if rev != nil {
		query += ` AND pr.rev = ?`
		args = append(args, int64(*rev))
	}
	query += ` ORDER BY pr.rev DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get place history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []storage.HistoryEntry
	for rows.Next() {
		pv, err := scanPlaceView(rows)
		if err != nil {
			return nil, err
		}
		tags, err := s.loadTags(ctx, pv.Place.ID, pv.Revision.Rev)
		if err != nil {
			return nil, err
		}
		pv.Revision.Tags = tags

		reviews, err := s.loadReviewLog(ctx, id, pv.Revision.Rev)
		if err != nil {
			return nil, err
		}
		out = append(out, storage.HistoryEntry{Revision: pv.Revision, Reviews: reviews})
	}
	if len(out) == 0 {
		return nil, apperr.New(apperr.NotFound, "GetPlaceHistory", "unknown place")
	}
	return out, rows.Err()
}

func (s *Store) loadReviewLog(ctx context.Context, id types.ID, rev types.Revision) ([]types.ReviewStatusLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sub_rev, created_at, reviewer, status, context
		FROM place_revision_review WHERE place_id = ? AND rev = ? ORDER BY sub_rev ASC`,
		string(id), int64(rev))
	if err != nil {
		return nil, fmt.Errorf("load review log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.ReviewStatusLogEntry
	for rows.Next() {
		var e types.ReviewStatusLogEntry
		var subRev int64
		var reviewer sql.NullString
		var status string
		if err := rows.Scan(&subRev, &e.CreatedAt, &reviewer, &status, &e.Context); err != nil {
			return nil, err
		}
		e.SubRev = types.SubRevision(subRev)
		e.Status = types.ReviewStatus(status)
		if reviewer.Valid {
			id := types.ID(reviewer.String)
			e.Reviewer = &id
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
