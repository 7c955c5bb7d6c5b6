// Package chi exposes solrsync over HTTP with a chi router.
package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrsync/internal/domain"
	"github.com/kailas-cloud/solrsync/internal/domain/object"
	logpkg "github.com/kailas-cloud/solrsync/internal/logger"
	healthuc "github.com/kailas-cloud/solrsync/internal/usecase/health"
)

// Server serves the hook, sync, search and maintenance API.
type Server struct {
	hook   ChangeHook
	sync   Syncer
	search Searcher
	dirty  DirtyReader
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	hook ChangeHook,
	sync Syncer,
	search Searcher,
	dirty DirtyReader,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		hook:   hook,
		sync:   sync,
		search: search,
		dirty:  dirty,
		health: health,
		logger: logger,
	}
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/indexes/{index}/search", s.Search)
		r.Get("/dirty", s.ListDirty)
		r.Get("/dirty/{class}/{type}", s.GetDirty)
		r.Get("/maintenance", s.GetMaintenance)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Post("/hooks/{event}", s.HandleHook)
			r.Post("/sync", s.SyncItems)
			r.Post("/indexes/{index}/sync", s.SyncItems)
			r.Put("/maintenance", s.SetMaintenance)
		})
	})
}

// HandleHook handles POST /v1/hooks/{event}.
func (s *Server) HandleHook(w http.ResponseWriter, r *http.Request) {
	var handle func(context.Context, object.Object) error
	switch event := chi.URLParam(r, "event"); event {
	case "create":
		handle = s.hook.OnCreate
	case "update":
		handle = s.hook.OnUpdate
	case "publish":
		handle = s.hook.OnPublish
	case "delete":
		handle = s.hook.OnDelete
	case "reindex":
		handle = s.hook.Reindex
	default:
		writeError(w, http.StatusNotFound, CodeBadRequest, "unknown event "+event)
		return
	}

	var req ObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	obj, err := objectFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	if err := handle(r.Context(), obj); err != nil {
		handleDomainError(w, s.log(r), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SyncItems handles POST /v1/sync and POST /v1/indexes/{index}/sync.
func (s *Server) SyncItems(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	items := make([]object.Object, 0, len(req.Items))
	for _, it := range req.Items {
		obj, err := objectFromRequest(it)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
			return
		}
		items = append(items, obj)
	}

	res, err := s.sync.Sync(r.Context(), items, domain.Operation(req.Type), chi.URLParam(r, "index"), object.Live)
	if err != nil {
		handleDomainError(w, s.log(r), err)
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{Status: res.Status, QTime: res.QTime})
}

// Search handles POST /v1/indexes/{index}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := queryFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidQuery, err.Error())
		return
	}

	set, err := s.search.Search(r.Context(), chi.URLParam(r, "index"), q)
	if err != nil {
		handleDomainError(w, s.log(r), err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponseFromSet(set))
}

// GetDirty handles GET /v1/dirty/{class}/{type}.
func (s *Server) GetDirty(w http.ResponseWriter, r *http.Request) {
	className := chi.URLParam(r, "class")
	op := domain.Operation(chi.URLParam(r, "type"))
	if !op.Tracked() {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "type must be create, update or delete")
		return
	}

	rec, err := s.dirty.Get(r.Context(), className, op)
	if err != nil {
		handleDomainError(w, s.log(r), err)
		return
	}
	writeJSON(w, http.StatusOK, dirtyResponse(rec))
}

// ListDirty handles GET /v1/dirty.
func (s *Server) ListDirty(w http.ResponseWriter, r *http.Request) {
	recs, err := s.dirty.List(r.Context())
	if err != nil {
		handleDomainError(w, s.log(r), err)
		return
	}
	resp := DirtyListResponse{Records: make([]DirtyResponse, 0, len(recs))}
	for _, rec := range recs {
		resp.Records = append(resp.Records, dirtyResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetMaintenance handles GET /v1/maintenance.
func (s *Server) GetMaintenance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MaintenanceResponse{Suppressed: !s.hook.ShouldPush()})
}

// SetMaintenance handles PUT /v1/maintenance.
func (s *Server) SetMaintenance(w http.ResponseWriter, r *http.Request) {
	var req MaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.hook.SetSuppressed(req.Suppress)
	writeJSON(w, http.StatusOK, MaintenanceResponse{Suppressed: !s.hook.ShouldPush()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:      string(report.Status),
		Checks:      checks,
		SolrVersion: report.SolrVersion,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) log(r *http.Request) *zap.Logger {
	return logpkg.FromContext(r.Context(), s.logger)
}
