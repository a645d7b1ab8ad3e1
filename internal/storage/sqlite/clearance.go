package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/commonplaces/placecore/internal/types"
)

// AddPendingClearancesForPlace implements storage.Store. Upserts one
// row per orgID: an org can have at most one pending clearance per
// place (invariant I4/P7), so a second call before resolution just
// refreshes CreatedAt rather than creating a duplicate.
func (s *Store) AddPendingClearancesForPlace(ctx context.Context, orgIDs []types.ID, pending types.PendingClearance) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, orgID := range orgIDs {
			var exists int
			if err := tx.QueryRowContext(ctx, `
				SELECT COUNT(*) FROM organization_place_clearance WHERE org_id = ? AND place_id = ?`,
				string(orgID), string(pending.PlaceID)).Scan(&exists); err != nil {
				return fmt.Errorf("check existing pending clearance: %w", err)
			}
			if exists > 0 {
				if _, err := tx.ExecContext(ctx, `
					UPDATE organization_place_clearance SET created_at = ? WHERE org_id = ? AND place_id = ?`,
					pending.CreatedAt, string(orgID), string(pending.PlaceID)); err != nil {
					return fmt.Errorf("refresh pending clearance: %w", err)
				}
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO organization_place_clearance (org_id, place_id, created_at, last_cleared_revision)
				VALUES (?, ?, ?, ?)`,
				string(orgID), string(pending.PlaceID), pending.CreatedAt, nullableRevision(pending.LastClearedRevision)); err != nil {
				return fmt.Errorf("insert pending clearance: %w", err)
			}
		}
		return nil
	})
}

func nullableRevision(rev *types.Revision) any {
	if rev == nil {
		return nil
	}
	return int64(*rev)
}

func scanPendingClearance(row interface{ Scan(...any) error }) (*types.PendingClearance, error) {
	var pc types.PendingClearance
	var orgID, placeID string
	var lastCleared sql.NullInt64
	if err := row.Scan(&orgID, &placeID, &pc.CreatedAt, &lastCleared); err != nil {
		return nil, err
	}
	pc.OrgID, pc.PlaceID = types.ID(orgID), types.ID(placeID)
	if lastCleared.Valid {
		rev := types.Revision(lastCleared.Int64)
		pc.LastClearedRevision = &rev
	}
	return &pc, nil
}

// CountPendingClearancesForPlaces implements storage.Store.
func (s *Store) CountPendingClearancesForPlaces(ctx context.Context, orgID types.ID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM organization_place_clearance WHERE org_id = ?`, string(orgID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending clearances: %w", err)
	}
	return count, nil
}

// ListPendingClearancesForPlaces implements storage.Store.
func (s *Store) ListPendingClearancesForPlaces(ctx context.Context, orgID types.ID, page types.Pagination) ([]types.PendingClearance, error) {
	query := `
		SELECT org_id, place_id, created_at, last_cleared_revision
		FROM organization_place_clearance WHERE org_id = ? ORDER BY created_at ASC`
	args := []any{string(orgID)}
	query, pageArgs := applyPagination(query, page)
	args = append(args, pageArgs...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending clearances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.PendingClearance
	for rows.Next() {
		pc, err := scanPendingClearance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pc)
	}
	return out, rows.Err()
}

// LoadPendingClearanceForPlace implements storage.Store.
func (s *Store) LoadPendingClearanceForPlace(ctx context.Context, orgID, placeID types.ID) (*types.PendingClearance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT org_id, place_id, created_at, last_cleared_revision
		FROM organization_place_clearance WHERE org_id = ? AND place_id = ?`, string(orgID), string(placeID))
	pc, err := scanPendingClearance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pending clearance: %w", err)
	}
	return pc, nil
}

// UpdatePendingClearancesForPlaces implements storage.Store. Setting
// ClearedRevision marks the place cleared up to that revision without
// removing the pending row; CleanupPendingClearancesForPlaces is what
// actually deletes rows once nothing newer is pending.
func (s *Store) UpdatePendingClearancesForPlaces(ctx context.Context, orgID types.ID, updates []types.ClearanceUpdate) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, u := range updates {
			clearedRev := u.ClearedRevision
			if clearedRev == nil {
				var currentRev int64
				err := tx.QueryRowContext(ctx, `SELECT current_rev FROM place WHERE id = ?`, string(u.PlaceID)).Scan(&currentRev)
				if err != nil {
					return fmt.Errorf("load current_rev for clearance update: %w", err)
				}
				rev := types.Revision(currentRev)
				clearedRev = &rev
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE organization_place_clearance SET last_cleared_revision = ?
				WHERE org_id = ? AND place_id = ?`,
				int64(*clearedRev), string(orgID), string(u.PlaceID)); err != nil {
				return fmt.Errorf("update pending clearance: %w", err)
			}
		}
		return nil
	})
}

// CleanupPendingClearancesForPlaces implements storage.Store: deletes
// every pending-clearance row for orgID whose last_cleared_revision
// matches the place's current revision, meaning nothing newer is
// awaiting approval.
func (s *Store) CleanupPendingClearancesForPlaces(ctx context.Context, orgID types.ID) (int, error) {
	var removed int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM organization_place_clearance
			WHERE org_id = ? AND last_cleared_revision IS NOT NULL
			AND last_cleared_revision = (SELECT current_rev FROM place WHERE place.id = organization_place_clearance.place_id)`,
			string(orgID))
		if err != nil {
			return fmt.Errorf("cleanup pending clearances: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		removed = int(n)
		return nil
	})
	return removed, err
}
