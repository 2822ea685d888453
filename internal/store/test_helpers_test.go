package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/coursetree/internal/question"
	"github.com/roach88/coursetree/internal/tree"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestTrack builds a small track with one select question.
func createTestTrack(t *testing.T, id string) tree.Track {
	t.Helper()
	tr := tree.NewTrack(id, "Track "+id, "")
	ops := []tree.Mutation{
		tree.AddStageGroup{ID: id + "-g1", Title: "Basics", Icon: "star"},
		tree.AddStage{GroupRef: tree.GroupRef{GroupID: id + "-g1"}, ID: id + "-s1", Title: "Intro"},
		tree.AddQuestion{StageRef: tree.StageRef{GroupID: id + "-g1", StageID: id + "-s1"}, ID: id + "-q1", Kind: question.KindSelect, Prompt: "Pick"},
	}
	for _, m := range ops {
		var err error
		tr, err = tree.Plan(tr, m)
		if err != nil {
			t.Fatalf("Plan(%s) failed: %v", m.Op(), err)
		}
	}
	return tr
}
