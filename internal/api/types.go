package api

import (
	"encoding/json"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/tree"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the human readable message.
	Error string `json:"error"`

	// Code is the fault code, or INVALID_REQUEST for malformed bodies.
	Code string `json:"code"`

	Entity  string            `json:"entity,omitempty"`
	ID      string            `json:"id,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// CreateTrackRequest is the body of POST /v1/tracks.
type CreateTrackRequest struct {
	// ID is optional; a time-sortable id is generated when empty.
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=4000"`
}

// MutationRequest is the body of POST /v1/tracks/:id/mutations.
type MutationRequest struct {
	// Version is the track version the client last saw. A stale version is
	// rejected with 409.
	Version int64           `json:"version" binding:"required,min=1"`
	Op      string          `json:"op" binding:"required"`
	Args    json.RawMessage `json:"args"`
}

// ReconcileRequest is the body of POST /v1/tracks/:id/reconcile.
type ReconcileRequest struct {
	Version int64 `json:"version" binding:"required,min=1"`
}

// TrackResponse is a track document plus its synchronization state.
type TrackResponse struct {
	Version  int64         `json:"version"`
	ETag     string        `json:"etag"`
	Issues   []fault.Issue `json:"issues,omitempty"`
	Document tree.Document `json:"document"`
}

// ReconcileResponse reports what an explicit reconcile wrote back.
type ReconcileResponse struct {
	// Saved is false when nothing could be repaired.
	Saved  bool          `json:"saved"`
	Issues []fault.Issue `json:"issues"`
	// Open lists the issues left in place for review.
	Open  []fault.Issue `json:"open"`
	Track TrackResponse `json:"track"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Tracks int    `json:"tracks"`
}
