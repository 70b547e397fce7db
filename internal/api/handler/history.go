package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tetranet/tetranet/internal/api/apierr"
	"github.com/tetranet/tetranet/internal/api/response"
	"github.com/tetranet/tetranet/internal/model"
	"github.com/tetranet/tetranet/internal/services/lobby"
)

// HistoryHandler serves persisted match summaries.
type HistoryHandler struct {
	lobby *lobby.Controller
}

func NewHistoryHandler(ctrl *lobby.Controller) *HistoryHandler {
	return &HistoryHandler{lobby: ctrl}
}

// Get returns the match records for a seed, most recent first.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	seed := model.Seed(mux.Vars(r)["seed"])
	if seed == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("seed is required"))
		return
	}

	records, err := h.lobby.History(r.Context(), seed)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, HistoryResponse{
		Seed:    seed,
		Records: records,
	})
}

// HistoryResponse is the body of a successful history lookup.
type HistoryResponse struct {
	Seed    model.Seed          `json:"seed"`
	Records []model.MatchRecord `json:"records"`
}
