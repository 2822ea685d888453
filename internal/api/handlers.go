// Package api serves tracks to the console UI over HTTP.
//
// Every write goes through session.Commit with the version the client last
// saw, so two browsers editing the same track get a 409 instead of silently
// overwriting each other.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/coursetree/internal/fault"
	"github.com/roach88/coursetree/internal/session"
	"github.com/roach88/coursetree/internal/store"
	"github.com/roach88/coursetree/internal/tree"
)

// Handlers holds the dependencies of every route.
type Handlers struct {
	catalog   store.Catalog
	ids       tree.IDGenerator
	assetBase string
	logger    *slog.Logger
}

// Option configures Handlers.
type Option func(*Handlers)

// WithIDGenerator sets the generator for new tracks and nodes.
func WithIDGenerator(g tree.IDGenerator) Option {
	return func(h *Handlers) { h.ids = g }
}

// WithAssetBase sets the base URL used when ?assets=resolve is requested.
func WithAssetBase(base string) Option {
	return func(h *Handlers) { h.assetBase = base }
}

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handlers) { h.logger = l }
}

// NewHandlers creates handlers over catalog.
func NewHandlers(catalog store.Catalog, opts ...Option) *Handlers {
	h := &Handlers{
		catalog: catalog,
		ids:     tree.UUIDv7Generator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the track API on rg.
//
//	GET    /tracks
//	POST   /tracks
//	GET    /tracks/:id
//	DELETE /tracks/:id
//	POST   /tracks/:id/mutations
//	POST   /tracks/:id/reconcile
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	tracks := rg.Group("/tracks")
	{
		tracks.GET("", h.HandleListTracks)
		tracks.POST("", h.HandleCreateTrack)
		tracks.GET("/:id", h.HandleGetTrack)
		tracks.DELETE("/:id", h.HandleDeleteTrack)
		tracks.POST("/:id/mutations", h.HandleMutation)
		tracks.POST("/:id/reconcile", h.HandleReconcile)
	}
}

// NewRouter builds the full engine: /v1 routes, /healthz and /metrics.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	RegisterRoutes(router.Group("/v1"), h)
	router.GET("/healthz", h.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

func (h *Handlers) trackResponse(c *gin.Context, snap tree.Snapshot) TrackResponse {
	doc := tree.ToDocument(snap.Track)
	if c.Query("assets") == "resolve" {
		doc = resolveAssets(doc, h.assetBase)
	}
	return TrackResponse{
		Version:  snap.Version,
		ETag:     snap.ETag,
		Issues:   snap.Issues,
		Document: doc,
	}
}

// HandleListTracks returns every track summary in creation order.
func (h *Handlers) HandleListTracks(c *gin.Context) {
	summaries, err := h.catalog.ListTracks(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// HandleCreateTrack creates an empty track.
//
// Response:
//
//	201 Created: TrackResponse
//	400 Bad Request: malformed body
//	422 Unprocessable Entity: id already in use
func (h *Handlers) HandleCreateTrack(c *gin.Context) {
	var req CreateTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	id := req.ID
	if id == "" {
		id = h.ids.Generate()
	}

	snap, err := h.catalog.CreateTrack(c.Request.Context(), tree.NewTrack(id, req.Name, req.Description))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Info("track created", "track", id)
	c.Header("ETag", snap.ETag)
	c.JSON(http.StatusCreated, h.trackResponse(c, snap))
}

// HandleGetTrack returns the track document. Issues found while loading are
// reported but not written back.
func (h *Handlers) HandleGetTrack(c *gin.Context) {
	snap, err := h.catalog.LoadTrack(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("ETag", snap.ETag)
	c.JSON(http.StatusOK, h.trackResponse(c, snap))
}

// HandleDeleteTrack deletes a track. The last remaining track cannot be
// deleted (422).
func (h *Handlers) HandleDeleteTrack(c *gin.Context) {
	id := c.Param("id")
	if err := h.catalog.DeleteTrack(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Info("track deleted", "track", id)
	c.Status(http.StatusNoContent)
}

// HandleMutation applies one mutation.
//
// Response:
//
//	200 OK: TrackResponse at the new version
//	400 Bad Request: malformed body
//	404 Not Found: track or target node missing
//	409 Conflict: version is stale
//	422 Unprocessable Entity: author-facing rule violated
//	502 Bad Gateway: storage failed
func (h *Handlers) HandleMutation(c *gin.Context) {
	var req MutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	m, err := tree.DecodeMutation(req.Op, req.Args)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	current, err := h.catalog.LoadTrack(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	// Stale clients are rejected before planning.
	if current.Version != req.Version {
		h.writeError(c, fault.Conflict(id, req.Version, current.Version))
		return
	}

	saved, err := session.Commit(ctx, h.catalog, current, m, h.ids)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Debug("mutation applied", "track", id, "op", req.Op, "version", saved.Version)
	c.Header("ETag", saved.ETag)
	c.JSON(http.StatusOK, h.trackResponse(c, saved))
}

// HandleReconcile writes the repaired form of a drifted document back to
// the store. Nothing is written unless at least one issue was repaired;
// issues kept for review are returned as open either way.
func (h *Handlers) HandleReconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	current, err := h.catalog.LoadTrack(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if current.Version != req.Version {
		h.writeError(c, fault.Conflict(id, req.Version, current.Version))
		return
	}

	issues := current.Issues
	if issues == nil {
		issues = []fault.Issue{}
	}
	repaired, kept := fault.Split(current.Issues)
	if kept == nil {
		kept = []fault.Issue{}
	}
	if len(repaired) == 0 {
		c.JSON(http.StatusOK, ReconcileResponse{Issues: issues, Open: kept, Track: h.trackResponse(c, current)})
		return
	}

	saved, err := h.catalog.SaveTrack(ctx, current)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Info("track reconciled", "track", id, "repaired", len(repaired), "open", len(kept), "version", saved.Version)
	c.Header("ETag", saved.ETag)
	c.JSON(http.StatusOK, ReconcileResponse{Saved: true, Issues: issues, Open: kept, Track: h.trackResponse(c, saved)})
}

// HandleHealth reports whether the store answers.
func (h *Handlers) HandleHealth(c *gin.Context) {
	summaries, err := h.catalog.ListTracks(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Tracks: len(summaries)})
}
