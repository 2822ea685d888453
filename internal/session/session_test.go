package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/question"
	"github.com/roach88/coursetree/internal/store"
	"github.com/roach88/coursetree/internal/testutil"
	"github.com/roach88/coursetree/internal/tree"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var selectRef = tree.QuestionRef{GroupID: "g1", StageID: "s1", QuestionID: "q-select"}

func addOption(text string) tree.Mutation {
	return tree.AddChoice{QuestionRef: selectRef, Collection: question.Options, Text: text}
}

func setupSession(t *testing.T, opts ...Option) (*Session, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	_, err := mem.CreateTrack(context.Background(), testutil.SampleTrack("t1"))
	require.NoError(t, err)

	opts = append([]Option{WithLogger(DiscardLogger()), WithIDGenerator(testutil.NewSequenceGenerator("n"))}, opts...)
	s, err := Open(context.Background(), mem, "t1", opts...)
	require.NoError(t, err)
	return s, mem
}

func optionTexts(t *testing.T, tr tree.Track) []string {
	t.Helper()
	q, err := tr.Question(selectRef)
	require.NoError(t, err)
	sel, ok := q.Body.(question.Select)
	require.True(t, ok, "q-select is %s", q.Kind())
	out := make([]string, len(sel.Options))
	for i, o := range sel.Options {
		out[i] = o.Text
	}
	return out
}

// gatedBoundary holds every save until the test releases it or the save's
// context is cancelled.
type gatedBoundary struct {
	*store.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func newGatedBoundary(mem *store.MemoryStore) *gatedBoundary {
	return &gatedBoundary{
		MemoryStore: mem,
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
}

func (b *gatedBoundary) SaveTrack(ctx context.Context, snap tree.Snapshot) (tree.Snapshot, error) {
	b.entered <- struct{}{}
	select {
	case <-b.release:
		return b.MemoryStore.SaveTrack(context.Background(), snap)
	case <-ctx.Done():
		return tree.Snapshot{}, fault.Transport("save track", ctx.Err())
	}
}

func TestOpen_LoadsAcknowledgedSnapshot(t *testing.T) {
	s, _ := setupSession(t)

	assert.Equal(t, "t1", s.TrackID())
	assert.Equal(t, int64(1), s.Acknowledged().Version)
	assert.Empty(t, cmp.Diff(s.Acknowledged().Track, s.Current()))
}

func TestOpen_MissingTrack(t *testing.T) {
	_, err := Open(context.Background(), store.NewMemoryStore(), "nope", WithLogger(DiscardLogger()))
	assert.True(t, fault.IsNotFound(err))
}

func TestOpen_NilBoundary(t *testing.T) {
	_, err := Open(context.Background(), nil, "t1")
	assert.Error(t, err)
}

func TestApply_CommitsAndAdvancesVersion(t *testing.T) {
	s, mem := setupSession(t)
	ctx := context.Background()

	snap, err := s.Apply(ctx, addOption("choice 4"))
	require.NoError(t, err)

	assert.Equal(t, int64(2), snap.Version)
	assert.Equal(t, snap, s.Acknowledged())
	assert.Equal(t, []string{"choice 1", "choice 2", "choice 3", "choice 4"}, optionTexts(t, s.Current()))

	stored, err := mem.LoadTrack(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
	assert.Equal(t, snap.ETag, stored.ETag)
}

func TestApply_CreatorGetsGeneratedID(t *testing.T) {
	s, _ := setupSession(t)

	_, err := s.Apply(context.Background(), tree.AddStageGroup{Title: "New group", Icon: "star"})
	require.NoError(t, err)

	g, err := s.Current().Group("n-1")
	require.NoError(t, err)
	assert.Equal(t, "New group", g.Title)
}

func TestApply_LocalFailureLeavesStateUntouched(t *testing.T) {
	s, mem := setupSession(t)
	ctx := context.Background()
	before := s.Acknowledged()

	tests := []struct {
		name string
		m    tree.Mutation
		is   func(error) bool
	}{
		{"missing question", tree.DeleteQuestion{QuestionRef: tree.QuestionRef{GroupID: "g1", StageID: "s1", QuestionID: "gone"}}, fault.IsNotFound},
		{"empty text", addOption(""), fault.IsValidation},
		{"nil mutation", nil, fault.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := s.Apply(ctx, tt.m)
			require.Error(t, err)
			assert.True(t, tt.is(err), "unexpected error: %v", err)
			assert.Equal(t, before, snap)
			assert.Equal(t, before, s.Acknowledged())
			assert.Empty(t, cmp.Diff(before.Track, s.Current()))
		})
	}

	stored, err := mem.LoadTrack(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestApply_SaveFailureRollsBack(t *testing.T) {
	s, mem := setupSession(t)
	ctx := context.Background()
	before := s.Current()

	mem.FailNextSave(errors.New("disk full"))
	_, err := s.Apply(ctx, addOption("lost"))
	require.Error(t, err)
	assert.True(t, fault.IsTransport(err))
	assert.Empty(t, cmp.Diff(before, s.Current()))
	assert.Equal(t, int64(1), s.Acknowledged().Version)

	// The next mutation derives from the acknowledged tree, not the lost one.
	snap, err := s.Apply(ctx, addOption("kept"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Version)
	assert.Equal(t, []string{"choice 1", "choice 2", "choice 3", "kept"}, optionTexts(t, s.Current()))
}

func TestApply_OptimisticViewWhileSaving(t *testing.T) {
	mem := store.NewMemoryStore()
	_, err := mem.CreateTrack(context.Background(), testutil.SampleTrack("t1"))
	require.NoError(t, err)
	gate := newGatedBoundary(mem)
	s, err := Open(context.Background(), gate, "t1", WithLogger(DiscardLogger()))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Apply(context.Background(), addOption("pending"))
		done <- err
	}()

	<-gate.entered
	assert.Contains(t, optionTexts(t, s.Current()), "pending")
	assert.NotContains(t, optionTexts(t, s.Acknowledged().Track), "pending")

	close(gate.release)
	require.NoError(t, <-done)
	assert.Contains(t, optionTexts(t, s.Acknowledged().Track), "pending")
}

func TestApply_AbandonedCommitRollsBack(t *testing.T) {
	mem := store.NewMemoryStore()
	_, err := mem.CreateTrack(context.Background(), testutil.SampleTrack("t1"))
	require.NoError(t, err)
	gate := newGatedBoundary(mem)
	s, err := Open(context.Background(), gate, "t1", WithLogger(DiscardLogger()))
	require.NoError(t, err)
	before := s.Current()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Apply(ctx, addOption("abandoned"))
		done <- err
	}()

	<-gate.entered
	cancel()
	err = <-done
	require.Error(t, err)
	assert.True(t, fault.IsTransport(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, cmp.Diff(before, s.Current()))

	close(gate.release)
	snap, err := s.Apply(context.Background(), addOption("after"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Version)
	assert.NotContains(t, optionTexts(t, snap.Track), "abandoned")
}

func TestApply_ConflictThenReload(t *testing.T) {
	s, mem := setupSession(t)
	ctx := context.Background()

	// Another editor writes first.
	other, err := mem.LoadTrack(ctx, "t1")
	require.NoError(t, err)
	other.Track.Name = "Renamed elsewhere"
	_, err = mem.SaveTrack(ctx, other)
	require.NoError(t, err)

	_, err = s.Apply(ctx, addOption("mine"))
	require.Error(t, err)
	assert.True(t, fault.IsConflict(err))
	assert.Equal(t, int64(1), s.Acknowledged().Version)
	assert.NotContains(t, optionTexts(t, s.Current()), "mine")

	snap, err := s.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Version)
	assert.Equal(t, "Renamed elsewhere", s.Current().Name)

	snap, err = s.Apply(ctx, addOption("mine"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.Version)
	assert.Equal(t, "Renamed elsewhere", snap.Track.Name)
	assert.Contains(t, optionTexts(t, snap.Track), "mine")
}

func TestReload_DeletedTrack(t *testing.T) {
	s, mem := setupSession(t)
	ctx := context.Background()
	_, err := mem.CreateTrack(ctx, tree.NewTrack("t2", "Other", ""))
	require.NoError(t, err)
	require.NoError(t, mem.DeleteTrack(ctx, "t1"))

	before := s.Acknowledged()
	snap, err := s.Reload(ctx)
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, before, snap)
}

func TestRun_AppliesInSubmissionOrder(t *testing.T) {
	s, _ := setupSession(t)

	var results []<-chan Result
	for _, text := range []string{"a", "b", "c"} {
		ch, err := s.Submit(addOption(text))
		require.NoError(t, err)
		results = append(results, ch)
	}
	assert.Equal(t, 3, s.Pending())

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(context.Background()) }()

	for i, ch := range results {
		res := <-ch
		require.NoError(t, res.Err)
		assert.Equal(t, int64(i+2), res.Snapshot.Version)
	}
	s.Stop()
	require.NoError(t, <-runErr)

	assert.Equal(t, []string{"choice 1", "choice 2", "choice 3", "a", "b", "c"}, optionTexts(t, s.Current()))
}

func TestRun_FailureDoesNotStopLoop(t *testing.T) {
	s, _ := setupSession(t)

	bad, err := s.Submit(addOption(""))
	require.NoError(t, err)
	good, err := s.Submit(addOption("ok"))
	require.NoError(t, err)

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(context.Background()) }()

	assert.True(t, fault.IsValidation((<-bad).Err))
	res := <-good
	require.NoError(t, res.Err)
	assert.Equal(t, int64(2), res.Snapshot.Version)

	s.Stop()
	require.NoError(t, <-runErr)
}

func TestRun_StopDrainsQueued(t *testing.T) {
	s, _ := setupSession(t)

	ch, err := s.Submit(addOption("queued"))
	require.NoError(t, err)
	s.Stop()

	_, err = s.Submit(addOption("late"))
	assert.ErrorIs(t, err, ErrClosed)

	require.NoError(t, s.Run(context.Background()))
	res := <-ch
	require.NoError(t, res.Err)
	assert.Contains(t, optionTexts(t, res.Snapshot.Track), "queued")
}

func TestRun_CancelAbandonsQueued(t *testing.T) {
	s, mem := setupSession(t)

	ch, err := s.Submit(addOption("never"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	res := <-ch
	assert.True(t, fault.IsTransport(res.Err))
	assert.Equal(t, int64(1), res.Snapshot.Version)

	stored, err := mem.LoadTrack(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)

	_, err = s.Submit(addOption("closed"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRun_CancelWhileIdle(t *testing.T) {
	s, _ := setupSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-runErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSubmit_QueueDepth(t *testing.T) {
	s, _ := setupSession(t, WithQueueDepth(1))

	_, err := s.Submit(addOption("one"))
	require.NoError(t, err)
	_, err = s.Submit(addOption("two"))
	assert.ErrorIs(t, err, ErrQueueFull)

	s.Stop()
	require.NoError(t, s.Run(context.Background()))
}

func TestCommit_StaleVersionConflicts(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	_, err := mem.CreateTrack(ctx, testutil.SampleTrack("t1"))
	require.NoError(t, err)

	current, err := mem.LoadTrack(ctx, "t1")
	require.NoError(t, err)

	saved, err := Commit(ctx, mem, current, addOption("first"), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Version)

	// A client still holding version 1.
	stale, err := Commit(ctx, mem, current, addOption("second"), nil)
	assert.True(t, fault.IsConflict(err))
	assert.Equal(t, current, stale)
}

func TestCommit_LocalFailureSkipsSave(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	_, err := mem.CreateTrack(ctx, testutil.SampleTrack("t1"))
	require.NoError(t, err)
	current, err := mem.LoadTrack(ctx, "t1")
	require.NoError(t, err)

	_, err = Commit(ctx, mem, current, tree.MoveStage{StageRef: tree.StageRef{GroupID: "g9", StageID: "s1"}}, testutil.FixedGenerator("x"))
	assert.True(t, fault.IsNotFound(err))

	stored, err := mem.LoadTrack(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestOutcomeLabels(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "persistence_conflict", outcome(fault.Conflict("t", 1, 2)))
	assert.Equal(t, "unknown", outcome(errors.New("plain")))
}
