package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/roach88/coursetree/internal/canonical"
	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/schema"
	"github.com/roach88/coursetree/internal/tree"
)

// Catalog is the full track lifecycle. Store and MemoryStore implement it.
type Catalog interface {
	CreateTrack(ctx context.Context, t tree.Track) (tree.Snapshot, error)
	LoadTrack(ctx context.Context, id string) (tree.Snapshot, error)
	SaveTrack(ctx context.Context, snap tree.Snapshot) (tree.Snapshot, error)
	ListTracks(ctx context.Context) ([]tree.Summary, error)
	DeleteTrack(ctx context.Context, id string) error
}

var (
	_ Catalog = (*Store)(nil)
	_ Catalog = (*MemoryStore)(nil)
)

// Revision is one accepted write of a track.
type Revision struct {
	Version int64  `json:"version"`
	ETag    string `json:"etag"`
}

// encoded is a track ready to be written.
type encoded struct {
	doc  string
	etag string

	groups, stages, questions int
}

func encode(t tree.Track) (encoded, error) {
	if strings.TrimSpace(t.ID) == "" {
		return encoded{}, fault.Validation("track id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return encoded{}, fault.Validation("track name is required")
	}
	data, err := tree.Encode(t)
	if err != nil {
		return encoded{}, fault.Integrity("encode track %s: %v", t.ID, err)
	}
	e := encoded{doc: string(data), etag: canonical.Hash(canonical.DomainTrack, data)}
	e.groups, e.stages, e.questions = t.Counts()
	return e, nil
}

// decode turns a stored document back into a snapshot. Structural schema
// violations are fatal; reconcilable drift comes back as issues.
func decode(id, doc string, version int64, etag string) (tree.Snapshot, error) {
	if err := schema.ValidateDocument(id, []byte(doc)); err != nil {
		return tree.Snapshot{}, err
	}
	t, issues, err := tree.Decode([]byte(doc))
	if err != nil {
		return tree.Snapshot{}, err
	}
	return tree.Snapshot{Track: t, Version: version, ETag: etag, Issues: issues}, nil
}

// CreateTrack inserts t at version 1. An existing id fails validation.
func (s *Store) CreateTrack(ctx context.Context, t tree.Track) (tree.Snapshot, error) {
	t.ID = canonical.ID(t.ID)
	e, err := encode(t)
	if err != nil {
		return tree.Snapshot{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return tree.Snapshot{}, fault.Transport("create track", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks WHERE id = ?`, t.ID).Scan(&exists)
	if err != nil {
		return tree.Snapshot{}, fault.Transport("create track", err)
	}
	if exists > 0 {
		return tree.Snapshot{}, fault.Validation("track id %q is already in use", t.ID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tracks
		(id, seq, name, group_count, stage_count, question_count, document, version, etag)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM tracks), ?, ?, ?, ?, ?, 1, ?)
	`, t.ID, t.Name, e.groups, e.stages, e.questions, e.doc, e.etag)
	if err != nil {
		return tree.Snapshot{}, fault.Transport("create track", err)
	}
	if err := insertRevision(ctx, tx, t.ID, 1, e); err != nil {
		return tree.Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return tree.Snapshot{}, fault.Transport("create track", err)
	}
	return tree.Snapshot{Track: t, Version: 1, ETag: e.etag}, nil
}

// LoadTrack reads the whole document for id.
func (s *Store) LoadTrack(ctx context.Context, id string) (tree.Snapshot, error) {
	id = canonical.ID(id)
	var (
		doc     string
		version int64
		etag    string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT document, version, etag FROM tracks WHERE id = ?
	`, id).Scan(&doc, &version, &etag)
	if errors.Is(err, sql.ErrNoRows) {
		return tree.Snapshot{}, fault.NotFound("track", id)
	}
	if err != nil {
		return tree.Snapshot{}, fault.Transport("load track", err)
	}
	return decode(id, doc, version, etag)
}

// SaveTrack replaces the stored document with snap.Track. snap.Version is
// the version the tree was derived from; if the stored row has moved on
// the write is rejected with a PersistenceConflict. The returned snapshot
// carries the new version.
func (s *Store) SaveTrack(ctx context.Context, snap tree.Snapshot) (tree.Snapshot, error) {
	snap.Track.ID = canonical.ID(snap.Track.ID)
	e, err := encode(snap.Track)
	if err != nil {
		return tree.Snapshot{}, err
	}
	id := snap.Track.ID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return tree.Snapshot{}, fault.Transport("save track", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE tracks
		SET name = ?, group_count = ?, stage_count = ?, question_count = ?,
		    document = ?, etag = ?, version = version + 1
		WHERE id = ? AND version = ?
	`, snap.Track.Name, e.groups, e.stages, e.questions, e.doc, e.etag, id, snap.Version)
	if err != nil {
		return tree.Snapshot{}, fault.Transport("save track", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return tree.Snapshot{}, fault.Transport("save track", err)
	}
	if n == 0 {
		var actual int64
		err := tx.QueryRowContext(ctx, `SELECT version FROM tracks WHERE id = ?`, id).Scan(&actual)
		if errors.Is(err, sql.ErrNoRows) {
			return tree.Snapshot{}, fault.NotFound("track", id)
		}
		if err != nil {
			return tree.Snapshot{}, fault.Transport("save track", err)
		}
		return tree.Snapshot{}, fault.Conflict(id, snap.Version, actual)
	}

	next := snap.Version + 1
	if err := insertRevision(ctx, tx, id, next, e); err != nil {
		return tree.Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return tree.Snapshot{}, fault.Transport("save track", err)
	}
	return tree.Snapshot{Track: snap.Track, Version: next, ETag: e.etag}, nil
}

func insertRevision(ctx context.Context, tx *sql.Tx, id string, version int64, e encoded) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO track_revisions (track_id, version, etag, document)
		VALUES (?, ?, ?, ?)
	`, id, version, e.etag, e.doc)
	if err != nil {
		return fault.Transport("write revision", err)
	}
	return nil
}

// ListTracks returns a summary per track in creation order.
//
// Returns an empty slice (not nil) if there are no tracks.
func (s *Store) ListTracks(ctx context.Context) ([]tree.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, group_count, stage_count, question_count, version, etag
		FROM tracks
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fault.Transport("list tracks", err)
	}
	defer rows.Close()

	summaries := []tree.Summary{}
	for rows.Next() {
		var sum tree.Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Groups, &sum.Stages, &sum.Questions, &sum.Version, &sum.ETag); err != nil {
			return nil, fault.Transport("list tracks", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Transport("list tracks", err)
	}
	return summaries, nil
}

// DeleteTrack removes a track and its history. The last remaining track
// cannot be deleted.
func (s *Store) DeleteTrack(ctx context.Context, id string) error {
	id = canonical.ID(id)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fault.Transport("delete track", err)
	}
	defer tx.Rollback()

	var total, found int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(id = ?), 0) FROM tracks
	`, id).Scan(&total, &found)
	if err != nil {
		return fault.Transport("delete track", err)
	}
	if found == 0 {
		return fault.NotFound("track", id)
	}
	if total == 1 {
		return fault.Validation("cannot delete the only remaining track")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id); err != nil {
		return fault.Transport("delete track", err)
	}
	if err := tx.Commit(); err != nil {
		return fault.Transport("delete track", err)
	}
	return nil
}

// Revisions lists the accepted writes of a track, newest first.
func (s *Store) Revisions(ctx context.Context, id string) ([]Revision, error) {
	id = canonical.ID(id)
	rows, err := s.db.QueryContext(ctx, `
		SELECT version, etag FROM track_revisions
		WHERE track_id = ?
		ORDER BY version DESC
	`, id)
	if err != nil {
		return nil, fault.Transport("list revisions", err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.Version, &r.ETag); err != nil {
			return nil, fault.Transport("list revisions", err)
		}
		revs = append(revs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Transport("list revisions", err)
	}
	if len(revs) == 0 {
		return nil, fault.NotFound("track", id)
	}
	return revs, nil
}

// LoadRevision reads an earlier accepted write of a track.
func (s *Store) LoadRevision(ctx context.Context, id string, version int64) (tree.Snapshot, error) {
	id = canonical.ID(id)
	var doc, etag string
	err := s.db.QueryRowContext(ctx, `
		SELECT document, etag FROM track_revisions WHERE track_id = ? AND version = ?
	`, id, version).Scan(&doc, &etag)
	if errors.Is(err, sql.ErrNoRows) {
		return tree.Snapshot{}, fault.NotFound("revision", id)
	}
	if err != nil {
		return tree.Snapshot{}, fault.Transport("load revision", err)
	}
	return decode(id, doc, version, etag)
}

// ImportDocument inserts or overwrites a track from raw document bytes,
// bypassing the version check. Used by the CLI to seed and restore.
func (s *Store) ImportDocument(ctx context.Context, data []byte) (tree.Snapshot, error) {
	if err := schema.ValidateDocument("import", data); err != nil {
		return tree.Snapshot{}, err
	}
	t, issues, err := tree.Decode(data)
	if err != nil {
		return tree.Snapshot{}, err
	}

	var snap tree.Snapshot
	version, err := s.version(ctx, t.ID)
	switch {
	case fault.IsNotFound(err):
		snap, err = s.CreateTrack(ctx, t)
	case err != nil:
		return tree.Snapshot{}, err
	default:
		snap, err = s.SaveTrack(ctx, tree.Snapshot{Track: t, Version: version})
	}
	if err != nil {
		return tree.Snapshot{}, err
	}
	snap.Issues = issues
	return snap, nil
}

func (s *Store) version(ctx context.Context, id string) (int64, error) {
	id = canonical.ID(id)
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM tracks WHERE id = ?`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fault.NotFound("track", id)
	}
	if err != nil {
		return 0, fault.Transport("read version", err)
	}
	return version, nil
}
