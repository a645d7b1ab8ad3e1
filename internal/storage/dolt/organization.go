package dolt

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/types"
)

// CreateOrganization implements storage.Store.
func (s *Store) CreateOrganization(ctx context.Context, org types.Organization) error {
	return s.withTx(ctx, "CreateOrganization", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO organization (id, name, api_token) VALUES (?, ?, ?)`,
			string(org.ID), org.Name, org.APIToken); err != nil {
			return fmt.Errorf("insert organization: %w", err)
		}
		for _, mt := range org.ModeratedTag {
			if err := insertModeratedTag(ctx, tx, org.ID, mt); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertModeratedTag(ctx context.Context, tx *sql.Tx, orgID types.ID, mt types.ModeratedTag) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO organization_tag (org_id, label, allow_add, allow_remove, require_clearance)
		VALUES (?, ?, ?, ?, ?)`,
		string(orgID), mt.Label, boolToInt(mt.AllowAdd), boolToInt(mt.AllowRemove), boolToInt(mt.RequireClearance))
	if err != nil {
		return fmt.Errorf("insert moderated tag: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) loadModeratedTags(ctx context.Context, orgID types.ID) ([]types.ModeratedTag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label, allow_add, allow_remove, require_clearance FROM organization_tag WHERE org_id = ? ORDER BY label`,
		string(orgID))
	if err != nil {
		return nil, fmt.Errorf("load moderated tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.ModeratedTag
	for rows.Next() {
		var mt types.ModeratedTag
		var allowAdd, allowRemove, requireClearance int
		if err := rows.Scan(&mt.Label, &allowAdd, &allowRemove, &requireClearance); err != nil {
			return nil, err
		}
		mt.AllowAdd, mt.AllowRemove, mt.RequireClearance = allowAdd != 0, allowRemove != 0, requireClearance != 0
		out = append(out, mt)
	}
	return out, rows.Err()
}

func (s *Store) scanOrganizationRow(ctx context.Context, row interface{ Scan(...any) error }) (*types.Organization, error) {
	var org types.Organization
	var id, name, token string
	if err := row.Scan(&id, &name, &token); err != nil {
		return nil, err
	}
	org.ID, org.Name, org.APIToken = types.ID(id), name, token
	tags, err := s.loadModeratedTags(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	org.ModeratedTag = tags
	return &org, nil
}

// GetOrganization implements storage.Store.
func (s *Store) GetOrganization(ctx context.Context, id types.ID) (*types.Organization, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, api_token FROM organization WHERE id = ?`, string(id))
	org, err := s.scanOrganizationRow(ctx, row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "GetOrganization", "unknown organization")
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

// GetOrganizationByToken implements storage.Store.
func (s *Store) GetOrganizationByToken(ctx context.Context, token string) (*types.Organization, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, api_token FROM organization WHERE api_token = ?`, token)
	org, err := s.scanOrganizationRow(ctx, row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "GetOrganizationByToken", "unknown api token")
	}
	if err != nil {
		return nil, fmt.Errorf("get organization by token: %w", err)
	}
	return org, nil
}

// RegisterModeratedTag implements storage.Store.
func (s *Store) RegisterModeratedTag(ctx context.Context, orgID types.ID, tag types.ModeratedTag) error {
	return s.withTx(ctx, "RegisterModeratedTag", func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM organization WHERE id = ?`, string(orgID)).Scan(&exists); err != nil {
			return fmt.Errorf("check organization exists: %w", err)
		}
		if exists == 0 {
			return apperr.New(apperr.NotFound, "RegisterModeratedTag", "unknown organization")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM organization_tag WHERE org_id = ? AND label = ?`,
			string(orgID), tag.Label); err != nil {
			return fmt.Errorf("clear existing moderated tag: %w", err)
		}
		return insertModeratedTag(ctx, tx, orgID, tag)
	})
}

// FindModeratedTagOwner implements storage.Store.
func (s *Store) FindModeratedTagOwner(ctx context.Context, label string) (*types.Organization, *types.ModeratedTag, error) {
	var orgID string
	err := s.db.QueryRowContext(ctx, `SELECT org_id FROM organization_tag WHERE label = ? LIMIT 1`, label).Scan(&orgID)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find moderated tag owner: %w", err)
	}
	org, err := s.GetOrganization(ctx, types.ID(orgID))
	if err != nil {
		return nil, nil, err
	}
	mt, ok := org.FindModeratedTag(label)
	if !ok {
		return org, nil, nil
	}
	return org, &mt, nil
}
