package store

import (
	"context"
	"sort"
	"sync"

	"github.com/roach88/coursetree/internal/canonical"
	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/tree"
)

// MemoryStore is an in-process Catalog with the same whole-document and
// version semantics as Store. Documents are kept encoded so loads go
// through the same schema check and reconciliation as the database.
type MemoryStore struct {
	mu       sync.Mutex
	seq      int64
	rows     map[string]memRow
	failNext error
}

type memRow struct {
	seq     int64
	name    string
	doc     string
	version int64
	etag    string
	counts  [3]int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]memRow)}
}

// Seed stores a raw document at version 1 without checking it, the way a
// legacy record would sit in the database.
func (m *MemoryStore) Seed(id string, doc []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.rows[canonical.ID(id)] = memRow{seq: m.seq, name: id, doc: string(doc), version: 1}
}

// FailNextSave makes the next SaveTrack return a TransportError wrapping
// err without writing anything.
func (m *MemoryStore) FailNextSave(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

func (m *MemoryStore) CreateTrack(ctx context.Context, t tree.Track) (tree.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return tree.Snapshot{}, fault.Transport("create track", err)
	}
	t.ID = canonical.ID(t.ID)
	e, err := encode(t)
	if err != nil {
		return tree.Snapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[t.ID]; ok {
		return tree.Snapshot{}, fault.Validation("track id %q is already in use", t.ID)
	}
	m.seq++
	m.rows[t.ID] = memRow{
		seq:     m.seq,
		name:    t.Name,
		doc:     e.doc,
		version: 1,
		etag:    e.etag,
		counts:  [3]int{e.groups, e.stages, e.questions},
	}
	return tree.Snapshot{Track: t, Version: 1, ETag: e.etag}, nil
}

func (m *MemoryStore) LoadTrack(ctx context.Context, id string) (tree.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return tree.Snapshot{}, fault.Transport("load track", err)
	}
	id = canonical.ID(id)
	m.mu.Lock()
	row, ok := m.rows[id]
	m.mu.Unlock()
	if !ok {
		return tree.Snapshot{}, fault.NotFound("track", id)
	}
	return decode(id, row.doc, row.version, row.etag)
}

func (m *MemoryStore) SaveTrack(ctx context.Context, snap tree.Snapshot) (tree.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return tree.Snapshot{}, fault.Transport("save track", err)
	}
	snap.Track.ID = canonical.ID(snap.Track.ID)
	e, err := encode(snap.Track)
	if err != nil {
		return tree.Snapshot{}, err
	}
	id := snap.Track.ID

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return tree.Snapshot{}, fault.Transport("save track", err)
	}
	row, ok := m.rows[id]
	if !ok {
		return tree.Snapshot{}, fault.NotFound("track", id)
	}
	if row.version != snap.Version {
		return tree.Snapshot{}, fault.Conflict(id, snap.Version, row.version)
	}
	row.name = snap.Track.Name
	row.doc = e.doc
	row.etag = e.etag
	row.version++
	row.counts = [3]int{e.groups, e.stages, e.questions}
	m.rows[id] = row
	return tree.Snapshot{Track: snap.Track, Version: row.version, ETag: e.etag}, nil
}

func (m *MemoryStore) ListTracks(ctx context.Context) ([]tree.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, fault.Transport("list tracks", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	type entry struct {
		seq int64
		sum tree.Summary
	}
	entries := make([]entry, 0, len(m.rows))
	for id, row := range m.rows {
		entries = append(entries, entry{row.seq, tree.Summary{
			ID:        id,
			Name:      row.name,
			Groups:    row.counts[0],
			Stages:    row.counts[1],
			Questions: row.counts[2],
			Version:   row.version,
			ETag:      row.etag,
		}})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]tree.Summary, len(entries))
	for i, e := range entries {
		out[i] = e.sum
	}
	return out, nil
}

func (m *MemoryStore) DeleteTrack(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fault.Transport("delete track", err)
	}
	id = canonical.ID(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return fault.NotFound("track", id)
	}
	if len(m.rows) == 1 {
		return fault.Validation("cannot delete the only remaining track")
	}
	delete(m.rows, id)
	return nil
}
