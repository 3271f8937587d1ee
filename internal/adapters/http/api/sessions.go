package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/game"
)

// SessionDependencies defines the career lifecycle operations.
type SessionDependencies interface {
	NewSession(ctx context.Context, teamName string) (repository.Session, error)
	Session(ctx context.Context, id string) (repository.Session, error)
	Quit(ctx context.Context, id string) (game.State, error)
	SetView(ctx context.Context, id string, view game.View) (game.State, error)
	ChangeTactic(ctx context.Context, id, tactic string) (game.State, error)
}

// SessionHandler handles session requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type createSessionRequest struct {
	TeamName string `json:"team_name"`
}

type viewRequest struct {
	View string `json:"view"`
}

type tacticRequest struct {
	Tactic string `json:"tactic"`
}

// HandleCreate handles POST /sessions requests.
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req createSessionRequest
	if err := decodeBody(r, op, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.TeamName) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing team_name")))
		return
	}
	sess, err := h.deps.NewSession(r.Context(), req.TeamName)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// HandleGet handles GET /sessions/{id} requests.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, _ := pathVars(r)
	sess, err := h.deps.Session(r.Context(), id)
	if err != nil {
		writeFailure(w, "api.get_session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleQuit handles DELETE /sessions/{id} requests.
func (h *SessionHandler) HandleQuit(w http.ResponseWriter, r *http.Request) {
	id, _ := pathVars(r)
	st, err := h.deps.Quit(r.Context(), id)
	if err != nil {
		writeFailure(w, "api.quit", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleView handles PUT /sessions/{id}/view requests.
func (h *SessionHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_view"
	id, _ := pathVars(r)
	var req viewRequest
	if err := decodeBody(r, op, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	st, err := h.deps.SetView(r.Context(), id, game.View(strings.ToUpper(strings.TrimSpace(req.View))))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleTactic handles PUT /sessions/{id}/tactic requests.
func (h *SessionHandler) HandleTactic(w http.ResponseWriter, r *http.Request) {
	const op = "api.change_tactic"
	id, _ := pathVars(r)
	var req tacticRequest
	if err := decodeBody(r, op, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	st, err := h.deps.ChangeTactic(r.Context(), id, strings.TrimSpace(req.Tactic))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
