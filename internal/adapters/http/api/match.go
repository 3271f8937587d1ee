package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/kickoff/internal/domain/game"
	"github.com/okian/kickoff/internal/domain/sequencer"
)

// MatchDependencies defines the matchday operations.
type MatchDependencies interface {
	// Advance queues the next match. Returns the job id.
	Advance(ctx context.Context, id string) (string, error)
	Finish(ctx context.Context, id string) (game.State, error)
	Advice(ctx context.Context, id string) (string, error)
	// Playback streams the stored match until it ends or ctx is done.
	Playback(ctx context.Context, id string, emit func(sequencer.Update) error) error
}

// MatchHandler handles matchday requests.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

type advanceResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

type adviceResponse struct {
	Advice string `json:"advice"`
}

// HandleAdvance handles POST /sessions/{id}/advance requests.
func (h *MatchHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	id, _ := pathVars(r)
	jobID, err := h.deps.Advance(r.Context(), id)
	if err != nil {
		writeFailure(w, "api.advance", err)
		return
	}
	writeJSON(w, http.StatusAccepted, advanceResponse{Status: "queued", JobID: jobID})
}

// HandleFinish handles POST /sessions/{id}/match/finish requests.
func (h *MatchHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	id, _ := pathVars(r)
	st, err := h.deps.Finish(r.Context(), id)
	if err != nil {
		writeFailure(w, "api.finish", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleAdvice handles POST /sessions/{id}/advice requests.
func (h *MatchHandler) HandleAdvice(w http.ResponseWriter, r *http.Request) {
	id, _ := pathVars(r)
	text, err := h.deps.Advice(r.Context(), id)
	if err != nil {
		writeFailure(w, "api.advice", err)
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Advice: text})
}

// HandleLive handles GET /sessions/{id}/match/live requests. Each playback
// update is sent as a server-sent event named after its kind. The stream
// closes after the "end" event.
func (h *MatchHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	const op = "api.live"
	id, _ := pathVars(r)
	rc := http.NewResponseController(w)

	streaming := false
	err := h.deps.Playback(r.Context(), id, func(u sequencer.Update) error {
		if !streaming {
			// the stream outlives the server write timeout
			_ = rc.SetWriteDeadline(time.Time{})
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			streaming = true
		}
		payload, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("failed to encode update: %w", err)
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", u.Kind, payload); err != nil {
			return err
		}
		if err := rc.Flush(); err != nil {
			return WrapKind(op, ErrStreaming, err)
		}
		return nil
	})
	if err != nil && !streaming {
		writeFailure(w, op, err)
	}
}
