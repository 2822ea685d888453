// Package session runs the edit loop for one track.
//
// A Session holds two values: the snapshot the store last acknowledged and
// the optimistic view shown to the author. Every mutation is planned against
// the acknowledged tree, published to the view, then committed. When the
// commit fails or is abandoned the view falls back to the acknowledged tree,
// so nothing the store never confirmed can leak into a later write.
//
// Mutations are applied one at a time. Apply serializes direct callers;
// Submit and Run provide the same single-writer guarantee for UI events
// that must not block the caller.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/tree"
)

// Boundary is the synchronization boundary a session commits through.
type Boundary interface {
	LoadTrack(ctx context.Context, id string) (tree.Snapshot, error)
	SaveTrack(ctx context.Context, snap tree.Snapshot) (tree.Snapshot, error)
}

// Session is the single-writer editor for one track.
type Session struct {
	boundary Boundary
	trackID  string
	ids      tree.IDGenerator
	logger   *slog.Logger
	queue    *requestQueue

	// writeMu serializes plan+commit. mu guards acked and view.
	writeMu sync.Mutex
	mu      sync.RWMutex
	acked   tree.Snapshot
	view    tree.Track
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	ids        tree.IDGenerator
	logger     *slog.Logger
	queueDepth int
}

// WithLogger sets the session logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *sessionConfig) {
		c.logger = l
	}
}

// WithIDGenerator sets the generator used to fill in ids of new nodes.
// Default: tree.UUIDv7Generator.
func WithIDGenerator(g tree.IDGenerator) Option {
	return func(c *sessionConfig) {
		c.ids = g
	}
}

// WithQueueDepth bounds the number of submitted but unprocessed mutations.
// Zero means unbounded.
func WithQueueDepth(n int) Option {
	return func(c *sessionConfig) {
		c.queueDepth = n
	}
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open loads trackID through b and returns a session positioned on it.
// Issues found while loading are logged and kept on Acknowledged().Issues.
func Open(ctx context.Context, b Boundary, trackID string, opts ...Option) (*Session, error) {
	if b == nil {
		return nil, errors.New("session: nil boundary")
	}
	cfg := sessionConfig{
		ids:    tree.UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	snap, err := b.LoadTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		boundary: b,
		trackID:  trackID,
		ids:      cfg.ids,
		logger:   cfg.logger.With("track", trackID),
		queue:    newRequestQueue(cfg.queueDepth),
		acked:    snap,
		view:     snap.Track,
	}
	s.logIssues(snap)
	return s, nil
}

// TrackID returns the id of the track being edited.
func (s *Session) TrackID() string {
	return s.trackID
}

// Current returns the optimistic view. While a commit is in flight it
// already contains the pending change.
func (s *Session) Current() tree.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Acknowledged returns the last snapshot the store confirmed.
func (s *Session) Acknowledged() tree.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.acked
}

// Apply plans m against the acknowledged tree and commits the result.
//
// On success the new snapshot becomes both the acknowledged state and the
// view. A local failure (NotFound, ValidationFailed, DataIntegrity) leaves
// both untouched. A commit failure, including ctx cancellation, rolls the
// view back to the acknowledged tree.
func (s *Session) Apply(ctx context.Context, m tree.Mutation) (tree.Snapshot, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.apply(ctx, m)
}

func (s *Session) apply(ctx context.Context, m tree.Mutation) (tree.Snapshot, error) {
	op := opName(m)
	start := time.Now()

	base := s.Acknowledged()
	next, err := tree.Plan(base.Track, tree.AssignID(m, s.ids))
	if err != nil {
		mutationsTotal.WithLabelValues(op, outcome(err)).Inc()
		s.logger.Debug("mutation rejected", "op", op, "error", err)
		return base, err
	}

	s.publish(next)

	saved, err := s.boundary.SaveTrack(ctx, tree.Snapshot{
		Track:   next,
		Version: base.Version,
		ETag:    base.ETag,
	})
	commitDuration.WithLabelValues(outcome(err)).Observe(time.Since(start).Seconds())
	mutationsTotal.WithLabelValues(op, outcome(err)).Inc()
	if err != nil {
		s.rollback(base, err)
		if ctxErr := ctx.Err(); ctxErr != nil && !fault.IsTransport(err) {
			err = fault.Transport("save track", errors.Join(ctxErr, err))
		}
		return base, err
	}

	s.mu.Lock()
	s.acked = saved
	s.view = saved.Track
	s.mu.Unlock()

	s.logger.Debug("mutation committed", "op", op, "version", saved.Version)
	return saved, nil
}

func (s *Session) publish(t tree.Track) {
	s.mu.Lock()
	s.view = t
	s.mu.Unlock()
}

func (s *Session) rollback(base tree.Snapshot, cause error) {
	s.publish(base.Track)

	reason := outcome(cause)
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		reason = "abandoned"
	}
	rollbacksTotal.WithLabelValues(reason).Inc()

	if fault.IsConflict(cause) {
		s.logger.Warn("commit conflict; reload required", "version", base.Version, "error", cause)
		return
	}
	s.logger.Warn("commit failed; view rolled back", "version", base.Version, "error", cause)
}

// Reload replaces the acknowledged snapshot and the view with the store's
// current copy. Used after NotFound or PersistenceConflict.
func (s *Session) Reload(ctx context.Context) (tree.Snapshot, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap, err := s.boundary.LoadTrack(ctx, s.trackID)
	if err != nil {
		return s.Acknowledged(), err
	}

	s.mu.Lock()
	s.acked = snap
	s.view = snap.Track
	s.mu.Unlock()

	s.logIssues(snap)
	s.logger.Info("track reloaded", "version", snap.Version)
	return snap, nil
}

// Submit queues m for the Run loop. The returned channel receives exactly
// one Result.
func (s *Session) Submit(m tree.Mutation) (<-chan Result, error) {
	done := make(chan Result, 1)
	if err := s.queue.Enqueue(request{mutation: m, done: done}); err != nil {
		return nil, err
	}
	return done, nil
}

// Pending returns the number of submitted mutations not yet applied.
func (s *Session) Pending() int {
	return s.queue.Len()
}

// Run applies submitted mutations in submission order until ctx is done or
// Stop is called. After Stop, mutations already queued are still applied
// before Run returns nil. On cancellation the remaining ones are answered
// with a TransportError and Run returns ctx.Err().
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session starting")

	for {
		if err := ctx.Err(); err != nil {
			return s.shutdown(err)
		}
		if req, ok := s.queue.TryDequeue(); ok {
			snap, err := s.Apply(ctx, req.mutation)
			req.done <- Result{Snapshot: snap, Err: err}
			continue
		}

		select {
		case <-ctx.Done():
			return s.shutdown(ctx.Err())

		case <-s.queue.Wait():
			if s.queue.Finished() {
				s.logger.Info("session stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run drains what is already queued and returns.
func (s *Session) Stop() {
	s.queue.Close()
}

func (s *Session) shutdown(cause error) error {
	s.logger.Info("session stopping: context cancelled")
	s.queue.Close()
	s.abandon(cause)
	return cause
}

func (s *Session) abandon(cause error) {
	pending := s.queue.Drain()
	if len(pending) == 0 {
		return
	}
	s.logger.Warn("abandoning queued mutations", "count", len(pending))
	base := s.Acknowledged()
	for _, req := range pending {
		req.done <- Result{Snapshot: base, Err: fault.Transport("apply "+opName(req.mutation), cause)}
	}
}

func (s *Session) logIssues(snap tree.Snapshot) {
	for _, issue := range snap.Issues {
		s.logger.Warn("track loaded with issue", "code", issue.Code, "path", issue.Path, "message", issue.Message)
	}
}

// Commit is the stateless form of Apply: plan m against snap.Track and save
// the result expecting snap.Version. HTTP handlers use it with the version
// the client last saw, so a stale client gets PersistenceConflict.
func Commit(ctx context.Context, b Boundary, snap tree.Snapshot, m tree.Mutation, ids tree.IDGenerator) (tree.Snapshot, error) {
	op := opName(m)
	if ids == nil {
		ids = tree.UUIDv7Generator{}
	}
	start := time.Now()

	next, err := tree.Plan(snap.Track, tree.AssignID(m, ids))
	if err != nil {
		mutationsTotal.WithLabelValues(op, outcome(err)).Inc()
		return snap, err
	}

	saved, err := b.SaveTrack(ctx, tree.Snapshot{Track: next, Version: snap.Version, ETag: snap.ETag})
	commitDuration.WithLabelValues(outcome(err)).Observe(time.Since(start).Seconds())
	mutationsTotal.WithLabelValues(op, outcome(err)).Inc()
	if err != nil {
		return snap, err
	}
	return saved, nil
}

func opName(m tree.Mutation) string {
	if m == nil {
		return "unknown"
	}
	return m.Op()
}
