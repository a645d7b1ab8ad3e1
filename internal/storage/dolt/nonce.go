package dolt

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/types"
)

// SaveReviewNonce implements storage.Store.
func (s *Store) SaveReviewNonce(ctx context.Context, nonce types.ReviewNonce) error {
	return s.withTx(ctx, "SaveReviewNonce", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO review_nonce (nonce, place_id, place_revision, new_status, expires_at, consumed_at)
			VALUES (?, ?, ?, ?, ?, NULL)`,
			nonce.Nonce, string(nonce.PlaceID), int64(nonce.PlaceRevision), string(nonce.NewStatus), nonce.ExpiresAt)
		if err != nil {
			return fmt.Errorf("insert review nonce: %w", err)
		}
		return nil
	})
}

// ConsumeReviewNonce implements storage.Store: atomically marks the
// nonce consumed and returns the token it guarded, or apperr.NotFound
// if the nonce is unknown or was already consumed, or apperr.Expired
// if now is past ExpiresAt.
func (s *Store) ConsumeReviewNonce(ctx context.Context, nonceStr string, now int64) (*types.ReviewNonce, error) {
	var out types.ReviewNonce
	err := s.withTx(ctx, "ConsumeReviewNonce", func(tx *sql.Tx) error {
		var placeID, newStatus string
		var placeRev, expiresAt int64
		var consumedAt sql.NullInt64
		err := tx.QueryRowContext(ctx, `
			SELECT place_id, place_revision, new_status, expires_at, consumed_at
			FROM review_nonce WHERE nonce = ?`, nonceStr).
			Scan(&placeID, &placeRev, &newStatus, &expiresAt, &consumedAt)
		if err == sql.ErrNoRows {
			return apperr.New(apperr.NotFound, "ConsumeReviewNonce", "unknown review nonce")
		}
		if err != nil {
			return fmt.Errorf("load review nonce: %w", err)
		}
		if consumedAt.Valid {
			return apperr.New(apperr.NotFound, "ConsumeReviewNonce", "review nonce already consumed")
		}
		if now > expiresAt {
			return apperr.New(apperr.Expired, "ConsumeReviewNonce", "review nonce expired")
		}
		if _, err := tx.ExecContext(ctx, `UPDATE review_nonce SET consumed_at = ? WHERE nonce = ?`, now, nonceStr); err != nil {
			return fmt.Errorf("mark review nonce consumed: %w", err)
		}
		out = types.ReviewNonce{
			PlaceID:       types.ID(placeID),
			PlaceRevision: types.Revision(placeRev),
			Nonce:         nonceStr,
			NewStatus:     types.ReviewStatus(newStatus),
			ExpiresAt:     expiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
