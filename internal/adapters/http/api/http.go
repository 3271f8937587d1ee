// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	MarketDependencies
	MatchDependencies
	PhotoDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	sessionHandler *SessionHandler
	marketHandler  *MarketHandler
	matchHandler   *MatchHandler
	photoHandler   *PhotoHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		sessionHandler: NewSessionHandler(deps),
		marketHandler:  NewMarketHandler(deps),
		matchHandler:   NewMatchHandler(deps),
		photoHandler:   NewPhotoHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	r.HandleFunc("/sessions", MetricsMiddleware(s.sessionHandler.HandleCreate, "sessions")).Methods(http.MethodPost)

	r.HandleFunc("/sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleGet, "session")).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleQuit, "session")).Methods(http.MethodDelete)

	sr := r.PathPrefix("/sessions/{id}").Subrouter()
	sr.HandleFunc("/view", MetricsMiddleware(s.sessionHandler.HandleView, "view")).Methods(http.MethodPut)
	sr.HandleFunc("/tactic", MetricsMiddleware(s.sessionHandler.HandleTactic, "tactic")).Methods(http.MethodPut)

	sr.HandleFunc("/market/refresh", MetricsMiddleware(s.marketHandler.HandleRefresh, "market_refresh")).Methods(http.MethodPost)
	sr.HandleFunc("/market/{player}/buy", MetricsMiddleware(s.marketHandler.HandleBuy, "buy")).Methods(http.MethodPost)
	sr.HandleFunc("/squad/{player}/sell", MetricsMiddleware(s.marketHandler.HandleSell, "sell")).Methods(http.MethodPost)

	sr.HandleFunc("/advance", MetricsMiddleware(s.matchHandler.HandleAdvance, "advance")).Methods(http.MethodPost)
	sr.HandleFunc("/match/live", MetricsMiddleware(s.matchHandler.HandleLive, "match_live")).Methods(http.MethodGet)
	sr.HandleFunc("/match/finish", MetricsMiddleware(s.matchHandler.HandleFinish, "match_finish")).Methods(http.MethodPost)
	sr.HandleFunc("/advice", MetricsMiddleware(s.matchHandler.HandleAdvice, "advice")).Methods(http.MethodPost)

	sr.HandleFunc("/players/{player}/photo", MetricsMiddleware(s.photoHandler.HandlePut, "photo")).Methods(http.MethodPut)
	sr.HandleFunc("/players/{player}/photo", MetricsMiddleware(s.photoHandler.HandleGet, "photo")).Methods(http.MethodGet)
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

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching error response.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		err = fmt.Errorf("%s: %w", op, err)
	}
	writeError(w, status, code, err)
}

// decodeBody reads a JSON request body into v.
func decodeBody(r *http.Request, op string, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// pathVars returns the session id and, when present, the player id.
func pathVars(r *http.Request) (id, player string) {
	vars := mux.Vars(r)
	return vars["id"], vars["player"]
}
