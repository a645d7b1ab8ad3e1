package dolt

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// schema is the same logical relational model as the sqlite backend's
// (spec.md §4.2), re-expressed in MySQL-dialect DDL for Dolt's wire
// protocol: TEXT primary/foreign key columns become VARCHAR(64) since
// neither MySQL nor Dolt permit an unbounded TEXT column in a key.
const schema = `
CREATE TABLE IF NOT EXISTS place (
	id VARCHAR(64) PRIMARY KEY,
	license TEXT NOT NULL,
	current_rev BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS place_revision (
	place_id VARCHAR(64) NOT NULL,
	rev BIGINT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	lat BIGINT NOT NULL,
	lng BIGINT NOT NULL,
	street TEXT, zip TEXT, city TEXT, country TEXT, state TEXT,
	contact_name TEXT, contact_email TEXT, contact_phone TEXT,
	opening_hours TEXT,
	founded_on VARCHAR(10),
	homepage TEXT, image TEXT, image_link TEXT,
	created_at BIGINT NOT NULL,
	created_by VARCHAR(64),
	current_status VARCHAR(16) NOT NULL,
	PRIMARY KEY (place_id, rev)
);

CREATE TABLE IF NOT EXISTS place_revision_custom_link (
	place_id VARCHAR(64) NOT NULL,
	rev BIGINT NOT NULL,
	url TEXT NOT NULL,
	title TEXT,
	description TEXT
);

CREATE TABLE IF NOT EXISTS place_revision_tag (
	place_id VARCHAR(64) NOT NULL,
	rev BIGINT NOT NULL,
	tag VARCHAR(255) NOT NULL
);
CREATE INDEX idx_place_revision_tag_tag ON place_revision_tag(tag);

CREATE TABLE IF NOT EXISTS place_revision_review (
	place_id VARCHAR(64) NOT NULL,
	rev BIGINT NOT NULL,
	sub_rev BIGINT NOT NULL,
	created_at BIGINT NOT NULL,
	reviewer VARCHAR(64),
	status VARCHAR(16) NOT NULL,
	context TEXT,
	PRIMARY KEY (place_id, rev, sub_rev)
);

CREATE TABLE IF NOT EXISTS organization (
	id VARCHAR(64) PRIMARY KEY,
	name TEXT NOT NULL,
	api_token VARCHAR(255) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS organization_tag (
	org_id VARCHAR(64) NOT NULL,
	label VARCHAR(255) NOT NULL,
	allow_add TINYINT NOT NULL,
	allow_remove TINYINT NOT NULL,
	require_clearance TINYINT NOT NULL,
	PRIMARY KEY (org_id, label)
);

CREATE TABLE IF NOT EXISTS organization_place_clearance (
	org_id VARCHAR(64) NOT NULL,
	place_id VARCHAR(64) NOT NULL,
	created_at BIGINT NOT NULL,
	last_cleared_revision BIGINT,
	PRIMARY KEY (org_id, place_id)
);

CREATE TABLE IF NOT EXISTS place_rating (
	id VARCHAR(64) PRIMARY KEY,
	place_id VARCHAR(64) NOT NULL,
	context VARCHAR(32) NOT NULL,
	value INT NOT NULL,
	title TEXT,
	source TEXT,
	created_at BIGINT NOT NULL,
	archived_at BIGINT
);
CREATE INDEX idx_place_rating_place ON place_rating(place_id);

CREATE TABLE IF NOT EXISTS place_rating_comment (
	id VARCHAR(64) PRIMARY KEY,
	rating_id VARCHAR(64) NOT NULL,
	text TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	archived_at BIGINT
);
CREATE INDEX idx_place_rating_comment_rating ON place_rating_comment(rating_id);

CREATE TABLE IF NOT EXISTS review_nonce (
	nonce VARCHAR(64) PRIMARY KEY,
	place_id VARCHAR(64) NOT NULL,
	place_revision BIGINT NOT NULL,
	new_status VARCHAR(16) NOT NULL,
	expires_at BIGINT NOT NULL,
	consumed_at BIGINT
);
`

// initSchema executes the bootstrap DDL statement by statement; Dolt's
// embedded/server engine does not support multi-statement DDL inside
// one prepared statement the way sqlite3's driver does, so unlike the
// sqlite backend this runs outside a single transaction (DDL in Dolt
// auto-commits per statement regardless).
func initSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		// CREATE INDEX has no IF NOT EXISTS support across Dolt
		// versions uniformly; tolerate "already exists" on retries.
		if _, err := db.ExecContext(ctx, stmt); err != nil && !strings.Contains(strings.ToLower(err.Error()), "already exist") {
			return fmt.Errorf("exec schema statement: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}
