// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/psychometrician/internal/adapters/repository"
	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/internal/domain/adaptive"
	"github.com/okian/psychometrician/internal/domain/generator"
	"github.com/okian/psychometrician/internal/domain/model"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// SessionDependencies drive the single questionnaire session.
type SessionDependencies interface {
	StartSession(ctx context.Context) (service.Progress, error)
	Session(ctx context.Context) (service.Progress, error)
	Next(ctx context.Context) (adaptive.Selection, error)
	Respond(ctx context.Context, ticketID string, response model.Response) (service.Outcome, error)
	Report(ctx context.Context) (service.Result, error)
}

// ItemDependencies expose the item bank and the generation pipeline.
type ItemDependencies interface {
	Items(ctx context.Context) ([]model.Item, error)
	BankSummary(ctx context.Context) (repository.Summary, error)
	RequestGeneration(ctx context.Context, req generator.Request) (service.GenerationStatus, error)
	GenerationStatus(ctx context.Context, id string) (service.GenerationStatus, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	ItemDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	sessionHandler *SessionHandler
	itemsHandler   *ItemsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		sessionHandler: NewSessionHandler(deps),
		itemsHandler:   NewItemsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/session", MetricsMiddleware(s.sessionHandler.HandleSession, "session"))
	mux.HandleFunc("/session/next", MetricsMiddleware(s.sessionHandler.HandleNext, "session_next"))
	mux.HandleFunc("/session/responses", MetricsMiddleware(s.sessionHandler.HandleRespond, "session_responses"))
	mux.HandleFunc("/session/report", MetricsMiddleware(s.sessionHandler.HandleReport, "session_report"))
	mux.HandleFunc("/items", MetricsMiddleware(s.itemsHandler.HandleList, "items"))
	mux.HandleFunc("/items/generate", MetricsMiddleware(s.itemsHandler.HandleGenerate, "items_generate"))
	mux.HandleFunc("/items/generate/", MetricsMiddleware(s.itemsHandler.HandleGenerationStatus, "items_generate_status"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a single JSON object from r into v. An empty body leaves
// v untouched when allowEmpty is set.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
