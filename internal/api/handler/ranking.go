package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/roomrank/internal/api/response"
	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/services/ranking"
)

// RankingHandler handles leaderboard endpoints
type RankingHandler struct {
	ranking *ranking.Service
	logger  *slog.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(ranking *ranking.Service, logger *slog.Logger) *RankingHandler {
	return &RankingHandler{
		ranking: ranking,
		logger:  logger,
	}
}

// Leaderboard handles GET /leaderboard/{roomId}
func (h *RankingHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := roomIDVar(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	rows, err := h.ranking.Leaderboard(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StandingsFromModel(rows))
}

// HallOfFame handles GET /hall-of-fame and GET /hall-of-fame/{roomId}
func (h *RankingHandler) HallOfFame(w http.ResponseWriter, r *http.Request) {
	var roomID *model.RoomID
	if _, ok := mux.Vars(r)["roomId"]; ok {
		id, err := roomIDVar(r)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		roomID = &id
	}

	rows, err := h.ranking.HallOfFame(r.Context(), roomID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StandingsFromModel(rows))
}
