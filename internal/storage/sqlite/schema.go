package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
)

// schema is the logical relational model from spec.md §4.2, expressed
// as SQLite DDL. Mirrors the teacher's migrations/NNN_*.go convention
// of plain CREATE TABLE IF NOT EXISTS blocks executed inside a single
// bootstrap transaction (internal/storage/ephemeral/store.go's
// initSchema), rather than a migration-runner library.
const schema = `
CREATE TABLE IF NOT EXISTS place (
	id TEXT PRIMARY KEY,
	license TEXT NOT NULL,
	current_rev INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS place_revision (
	place_id TEXT NOT NULL REFERENCES place(id),
	rev INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	lat INTEGER NOT NULL,
	lng INTEGER NOT NULL,
	street TEXT, zip TEXT, city TEXT, country TEXT, state TEXT,
	contact_name TEXT, contact_email TEXT, contact_phone TEXT,
	opening_hours TEXT NOT NULL DEFAULT '',
	founded_on TEXT,
	homepage TEXT, image TEXT, image_link TEXT,
	created_at INTEGER NOT NULL,
	created_by TEXT,
	current_status TEXT NOT NULL,
	PRIMARY KEY (place_id, rev)
);

CREATE TABLE IF NOT EXISTS place_revision_custom_link (
	place_id TEXT NOT NULL,
	rev INTEGER NOT NULL,
	url TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	FOREIGN KEY (place_id, rev) REFERENCES place_revision(place_id, rev)
);

CREATE TABLE IF NOT EXISTS place_revision_tag (
	place_id TEXT NOT NULL,
	rev INTEGER NOT NULL,
	tag TEXT NOT NULL,
	FOREIGN KEY (place_id, rev) REFERENCES place_revision(place_id, rev)
);
CREATE INDEX IF NOT EXISTS idx_place_revision_tag_tag ON place_revision_tag(tag);

CREATE TABLE IF NOT EXISTS place_revision_review (
	place_id TEXT NOT NULL,
	rev INTEGER NOT NULL,
	sub_rev INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	reviewer TEXT,
	status TEXT NOT NULL,
	context TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (place_id, rev, sub_rev)
);

CREATE TABLE IF NOT EXISTS organization (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	api_token TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS organization_tag (
	org_id TEXT NOT NULL REFERENCES organization(id),
	label TEXT NOT NULL,
	allow_add INTEGER NOT NULL,
	allow_remove INTEGER NOT NULL,
	require_clearance INTEGER NOT NULL,
	PRIMARY KEY (org_id, label)
);

CREATE TABLE IF NOT EXISTS organization_place_clearance (
	org_id TEXT NOT NULL REFERENCES organization(id),
	place_id TEXT NOT NULL REFERENCES place(id),
	created_at INTEGER NOT NULL,
	last_cleared_revision INTEGER,
	PRIMARY KEY (org_id, place_id)
);

CREATE TABLE IF NOT EXISTS place_rating (
	id TEXT PRIMARY KEY,
	place_id TEXT NOT NULL REFERENCES place(id),
	context TEXT NOT NULL,
	value INTEGER NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	source TEXT,
	created_at INTEGER NOT NULL,
	archived_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_place_rating_place ON place_rating(place_id);

CREATE TABLE IF NOT EXISTS place_rating_comment (
	id TEXT PRIMARY KEY,
	rating_id TEXT NOT NULL REFERENCES place_rating(id),
	text TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	archived_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_place_rating_comment_rating ON place_rating_comment(rating_id);

CREATE TABLE IF NOT EXISTS review_nonce (
	nonce TEXT PRIMARY KEY,
	place_id TEXT NOT NULL,
	place_revision INTEGER NOT NULL,
	new_status TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	consumed_at INTEGER
);
`

// initSchema executes the bootstrap DDL inside a single transaction,
// mirroring internal/storage/ephemeral/store.go's initSchema.
func initSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w\nSQL: %s", err, stmt)
		}
	}
	return tx.Commit()
}
