package api

import (
	"context"
	"io"
	"net/http"

	"github.com/okian/kickoff/internal/adapters/photostore"
)

// PhotoDependencies defines the player photo cache.
type PhotoDependencies interface {
	PutPhoto(ctx context.Context, id, playerID string, upload []byte) error
	// Photo returns the cached blob, or a URL to use when nothing is cached.
	Photo(ctx context.Context, id, playerID string) (blob []byte, fallback string, err error)
}

// PhotoHandler handles player photo requests.
type PhotoHandler struct {
	deps PhotoDependencies
}

// NewPhotoHandler creates a new photo handler.
func NewPhotoHandler(deps PhotoDependencies) *PhotoHandler {
	return &PhotoHandler{deps: deps}
}

// HandlePut handles PUT /sessions/{id}/players/{player}/photo requests. The
// body is the raw image.
func (h *PhotoHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_photo"
	id, player := pathVars(r)
	upload, err := io.ReadAll(io.LimitReader(r.Body, photostore.MaxUploadLen+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.PutPhoto(r.Context(), id, player, upload); err != nil {
		writeFailure(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet handles GET /sessions/{id}/players/{player}/photo requests.
// Uncached players are redirected to their fallback image.
func (h *PhotoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, player := pathVars(r)
	blob, fallback, err := h.deps.Photo(r.Context(), id, player)
	if err != nil {
		writeFailure(w, "api.get_photo", err)
		return
	}
	if blob == nil {
		http.Redirect(w, r, fallback, http.StatusTemporaryRedirect)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}
