// Package server exposes the claims service over HTTP.
//
// The API is thin glue: decode, delegate to the claims service, encode.
// Workflow failures map to status codes here; the workflow core itself
// never sees HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/claims"
	"github.com/clemhq/clem/internal/notify"
	"github.com/clemhq/clem/internal/schema"
	"github.com/clemhq/clem/internal/store"
	"github.com/clemhq/clem/internal/workflow"
)

// Server handles the claims HTTP API.
type Server struct {
	svc *claims.Service
	hub *notify.Hub
	log *slog.Logger
	mux *http.ServeMux
}

// New wires the routes. The hub is optional; without one the /ws route
// responds 404.
func New(svc *claims.Service, hub *notify.Hub, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{svc: svc, hub: hub, log: log, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /api/claims", s.handleSubmit)
	s.mux.HandleFunc("GET /api/claims", s.handleList)
	s.mux.HandleFunc("GET /api/claims/{id}", s.handleGet)
	s.mux.HandleFunc("PATCH /api/claims/{id}/status", s.handleStatus)
	if hub != nil {
		s.mux.Handle("GET /ws", hub)
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "request body is not a JSON object"})
		return
	}

	in, err := claim.ValidateInput(raw)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rec, err := s.svc.Process(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "request body is not valid JSON"})
		return
	}

	rec, err := s.svc.SetStatus(r.Context(), r.PathValue("id"), body.Status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// writeError maps domain failures to HTTP responses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Details: verr})
	case workflow.IsInputValidation(err), errors.Is(err, store.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, store.ErrNotPending):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case workflow.IsReasonerFailure(err):
		s.log.Error("reasoner failure", "error", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "claim assessment is temporarily unavailable"})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "claim not found"})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
