package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/roomrank/internal/api/request"
	"github.com/mcoot/roomrank/internal/api/response"
	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/services/scores"
)

// ScoreHandler handles score and player endpoints
type ScoreHandler struct {
	scores *scores.Service
	logger *slog.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scores *scores.Service, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{
		scores: scores,
		logger: logger,
	}
}

// SubmitScore handles POST /submit-score
func (h *ScoreHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScoreRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.scores.SubmitScore(r.Context(), scores.Submission{
		Address:      model.Address(req.UserAddress),
		Score:        req.Score,
		TokenBalance: req.TokenBalance,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SubmitScoreFromModel(result))
}

// GetPlayerScore handles POST /get-player-score
func (h *ScoreHandler) GetPlayerScore(w http.ResponseWriter, r *http.Request) {
	var req request.AddressRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	standing, err := h.scores.PlayerScore(r.Context(), model.Address(req.UserAddress))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StandingFromModel(standing))
}

// PlayerStats handles GET /player-stats/{userAddress}
func (h *ScoreHandler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	player, err := h.scores.PlayerStats(r.Context(), addressVar(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerStatsFromModel(player))
}

// CheckUser handles POST /check-user
func (h *ScoreHandler) CheckUser(w http.ResponseWriter, r *http.Request) {
	var req request.AddressRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	isNew, err := h.scores.CheckUser(r.Context(), model.Address(req.UserAddress))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CheckUser{IsNewUser: isNew})
}
