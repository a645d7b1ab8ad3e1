package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/commonplaces/placecore/internal/types"
)

// AddRating implements storage.Store.
func (s *Store) AddRating(ctx context.Context, rating types.Rating) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO place_rating (id, place_id, context, value, title, source, created_at, archived_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			string(rating.ID), string(rating.PlaceID), string(rating.Context), rating.Value, rating.Title,
			rating.Source, rating.CreatedAt, rating.ArchivedAt)
		if err != nil {
			return fmt.Errorf("insert rating: %w", err)
		}
		return nil
	})
}

func scanRating(row interface{ Scan(...any) error }) (*types.Rating, error) {
	var r types.Rating
	var id, placeID, ctxLabel string
	var source sql.NullString
	var archivedAt sql.NullInt64
	if err := row.Scan(&id, &placeID, &ctxLabel, &r.Value, &r.Title, &source, &r.CreatedAt, &archivedAt); err != nil {
		return nil, err
	}
	r.ID, r.PlaceID, r.Context = types.ID(id), types.ID(placeID), types.RatingContext(ctxLabel)
	if source.Valid {
		r.Source = &source.String
	}
	if archivedAt.Valid {
		r.ArchivedAt = &archivedAt.Int64
	}
	return &r, nil
}

// ListRatings implements storage.Store.
func (s *Store) ListRatings(ctx context.Context, placeID types.ID, includeArchived bool) ([]*types.Rating, error) {
	query := `SELECT id, place_id, context, value, title, source, created_at, archived_at FROM place_rating WHERE place_id = ?`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, string(placeID))
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Rating
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ArchiveRatingsForPlace implements storage.Store.
func (s *Store) ArchiveRatingsForPlace(ctx context.Context, placeID types.ID, at int64) (int, error) {
	var n int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE place_rating SET archived_at = ? WHERE place_id = ? AND archived_at IS NULL`, at, string(placeID))
		if err != nil {
			return fmt.Errorf("archive ratings: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		n = int(affected)
		return nil
	})
	return n, err
}

// AddComment implements storage.Store.
func (s *Store) AddComment(ctx context.Context, comment types.Comment) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO place_rating_comment (id, rating_id, text, created_at, archived_at)
			VALUES (?, ?, ?, ?, ?)`,
			string(comment.ID), string(comment.RatingID), comment.Text, comment.CreatedAt, comment.ArchivedAt)
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return nil
	})
}

// ListComments implements storage.Store.
func (s *Store) ListComments(ctx context.Context, ratingID types.ID, includeArchived bool) ([]*types.Comment, error) {
	query := `SELECT id, rating_id, text, created_at, archived_at FROM place_rating_comment WHERE rating_id = ?`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, string(ratingID))
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Comment
	for rows.Next() {
		var c types.Comment
		var id, ratingID string
		var archivedAt sql.NullInt64
		if err := rows.Scan(&id, &ratingID, &c.Text, &c.CreatedAt, &archivedAt); err != nil {
			return nil, err
		}
		c.ID, c.RatingID = types.ID(id), types.ID(ratingID)
		if archivedAt.Valid {
			c.ArchivedAt = &archivedAt.Int64
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// ArchiveCommentsForRatings implements storage.Store.
func (s *Store) ArchiveCommentsForRatings(ctx context.Context, ratingIDs []types.ID, at int64) (int, error) {
	var n int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, ratingID := range ratingIDs {
			res, err := tx.ExecContext(ctx, `
				UPDATE place_rating_comment SET archived_at = ? WHERE rating_id = ? AND archived_at IS NULL`,
				at, string(ratingID))
			if err != nil {
				return fmt.Errorf("archive comments: %w", err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			n += int(affected)
		}
		return nil
	})
	return n, err
}
