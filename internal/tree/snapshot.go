package tree

import (
	"github.com/google/uuid"

	"github.com/roach88/coursetree/internal/fault"
)

// Snapshot is a track as acknowledged by the store.
type Snapshot struct {
	Track Track

	// Version increases by one on every accepted save. A save carrying a
	// stale version is a conflict.
	Version int64

	ETag string

	// Issues found when the stored document was loaded.
	Issues []fault.Issue
}

// Summary is the listing entry for one track.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Groups    int    `json:"groups"`
	Stages    int    `json:"stages"`
	Questions int    `json:"questions"`
	Version   int64  `json:"version"`
	ETag      string `json:"etag"`
}

// Summarize builds the listing entry for s.
func Summarize(s Snapshot) Summary {
	groups, stages, questions := s.Track.Counts()
	return Summary{
		ID:        s.Track.ID,
		Name:      s.Track.Name,
		Groups:    groups,
		Stages:    stages,
		Questions: questions,
		Version:   s.Version,
		ETag:      s.ETag,
	}
}

// UUIDv7Generator generates time-sortable node ids.
type UUIDv7Generator struct{}

// Generate panics only if the system random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
