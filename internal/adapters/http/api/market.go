package api

import (
	"context"
	"net/http"

	"github.com/okian/kickoff/internal/domain/game"
)

// MarketDependencies defines the transfer operations.
type MarketDependencies interface {
	RefreshMarket(ctx context.Context, id string) (game.State, error)
	Buy(ctx context.Context, id, playerID string) (game.State, error)
	Sell(ctx context.Context, id, playerID string) (game.State, error)
}

// MarketHandler handles transfer requests.
type MarketHandler struct {
	deps MarketDependencies
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(deps MarketDependencies) *MarketHandler {
	return &MarketHandler{deps: deps}
}

// HandleRefresh handles POST /sessions/{id}/market/refresh requests.
func (h *MarketHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	id, _ := pathVars(r)
	st, err := h.deps.RefreshMarket(r.Context(), id)
	if err != nil {
		writeFailure(w, "api.refresh_market", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleBuy handles POST /sessions/{id}/market/{player}/buy requests.
func (h *MarketHandler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	id, player := pathVars(r)
	st, err := h.deps.Buy(r.Context(), id, player)
	if err != nil {
		writeFailure(w, "api.buy", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleSell handles POST /sessions/{id}/squad/{player}/sell requests.
func (h *MarketHandler) HandleSell(w http.ResponseWriter, r *http.Request) {
	id, player := pathVars(r)
	st, err := h.deps.Sell(r.Context(), id, player)
	if err != nil {
		writeFailure(w, "api.sell", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
