package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"mob-ledger/internal/codec"
	"mob-ledger/internal/constants"
	"mob-ledger/internal/domain"
	"mob-ledger/internal/metrics"
	"mob-ledger/internal/middleware"
	"mob-ledger/internal/service"

	"github.com/rs/zerolog"
)

const (
	defaultArtifactLimit = 20
	maxArtifactLimit     = 200
)

type LedgerServer struct {
	ledger  *service.LedgerService
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewLedgerServer(ledger *service.LedgerService, m *metrics.Metrics, logger zerolog.Logger) *LedgerServer {
	return &LedgerServer{ledger: ledger, metrics: m, logger: logger}
}

func (s *LedgerServer) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/events/spawned", s.Spawned)
	mux.HandleFunc("POST /v1/events/terminated", s.Terminated)
	mux.HandleFunc("POST /v1/events/interacted", s.Interacted)
	mux.HandleFunc("POST /v1/artifacts/inspect", s.Inspect)
	mux.HandleFunc("GET /v1/artifacts", s.ListArtifacts)
	mux.HandleFunc("GET /v1/records", s.ListRecords)
	mux.HandleFunc("GET /v1/records/{id}", s.GetRecord)
	mux.HandleFunc("GET /healthz", s.Health)
	mux.Handle("GET /metrics", s.metrics.Handler())
}

type SpawnedResponse struct {
	Created bool `json:"created"`
}

type TerminatedResponse struct {
	Artifact *domain.Artifact `json:"artifact,omitempty"`
}

type InteractedResponse struct {
	Result string `json:"result"`
}

type InspectResponse struct {
	Recognized bool   `json:"recognized"`
	Text       string `json:"text,omitempty"`
}

type RecordResponse struct {
	Record  *domain.Record `json:"record"`
	Summary string         `json:"summary"`
}

type RecordsResponse struct {
	Records []*domain.Record `json:"records"`
}

type ArtifactsResponse struct {
	Artifacts []domain.IssuedArtifact `json:"artifacts"`
}

func (s *LedgerServer) Spawned(w http.ResponseWriter, r *http.Request) {
	var ev domain.SpawnEvent
	if !s.decode(w, r, &ev) {
		return
	}
	created := s.ledger.Spawned(r.Context(), ev)
	s.write(w, r, http.StatusOK, SpawnedResponse{Created: created})
}

func (s *LedgerServer) Terminated(w http.ResponseWriter, r *http.Request) {
	var ev domain.TerminateEvent
	if !s.decode(w, r, &ev) {
		return
	}
	artifact := s.ledger.Terminated(r.Context(), ev)
	s.write(w, r, http.StatusOK, TerminatedResponse{Artifact: artifact})
}

func (s *LedgerServer) Interacted(w http.ResponseWriter, r *http.Request) {
	var ev domain.InteractEvent
	if !s.decode(w, r, &ev) {
		return
	}
	result := s.ledger.Interacted(r.Context(), ev)
	s.write(w, r, http.StatusOK, InteractedResponse{Result: result.String()})
}

func (s *LedgerServer) Inspect(w http.ResponseWriter, r *http.Request) {
	var ev domain.InspectEvent
	if !s.decode(w, r, &ev) {
		return
	}
	text, ok := s.ledger.Inspected(r.Context(), ev)
	s.write(w, r, http.StatusOK, InspectResponse{Recognized: ok, Text: text})
}

func (s *LedgerServer) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, ok := s.ledger.Record(id)
	if !ok {
		s.fail(w, r, http.StatusNotFound, fmt.Errorf("record %s not found", id))
		return
	}
	s.write(w, r, http.StatusOK, RecordResponse{Record: rec, Summary: codec.RenderSummary(rec)})
}

func (s *LedgerServer) ListRecords(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, RecordsResponse{Records: s.ledger.Records()})
}

func (s *LedgerServer) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	limit := defaultArtifactLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = min(n, maxArtifactLimit)
	}

	artifacts, err := s.ledger.ArtifactHistory(r.Context(), r.URL.Query().Get("subject"), limit)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if artifacts == nil {
		artifacts = []domain.IssuedArtifact{}
	}
	s.write(w, r, http.StatusOK, ArtifactsResponse{Artifacts: artifacts})
}

func (s *LedgerServer) Health(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *LedgerServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, err)
			return false
		}
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *LedgerServer) write(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to write response")
	}
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *LedgerServer) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")
	s.write(w, r, status, ErrorResponse{Error: err.Error(), RequestID: middleware.GetRequestID(r.Context())})
}
