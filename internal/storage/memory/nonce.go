package memory

import (
	"context"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/types"
)

// SaveReviewNonce implements storage.Store.
func (s *Store) SaveReviewNonce(ctx context.Context, nonce types.ReviewNonce) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := nonce
	s.nonces[nonce.Nonce] = &cp
	return nil
}

// ConsumeReviewNonce implements storage.Store.
func (s *Store) ConsumeReviewNonce(ctx context.Context, nonce string, now int64) (*types.ReviewNonce, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nonces[nonce]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "ConsumeReviewNonce", "unknown review nonce")
	}
	if now > n.ExpiresAt {
		return nil, apperr.New(apperr.Expired, "ConsumeReviewNonce", "review nonce expired")
	}
	delete(s.nonces, nonce)
	cp := *n
	return &cp, nil
}
