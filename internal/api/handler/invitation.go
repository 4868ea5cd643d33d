package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/roomrank/internal/api/request"
	"github.com/mcoot/roomrank/internal/api/response"
	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/services/invitation"
)

// InvitationHandler handles invitation and referral bonus endpoints
type InvitationHandler struct {
	invitations *invitation.Service
	logger      *slog.Logger
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitations *invitation.Service, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		logger:      logger,
	}
}

// SubmitInvite handles POST /submit-invite
func (h *InvitationHandler) SubmitInvite(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitInviteRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.invitations.RecordInvitation(r.Context(), req.Code); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Message{Message: "Invitation recorded"})
}

// ApplyBonus handles POST /apply-bonus
func (h *InvitationHandler) ApplyBonus(w http.ResponseWriter, r *http.Request) {
	var req request.ApplyBonusRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	award, err := h.invitations.ApplyBonus(r.Context(), model.Address(req.InviteeAddress), req.Score)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ApplyBonusFromModel(award))
}

// InvitesCount handles GET /invites-count/{userAddress}
func (h *InvitationHandler) InvitesCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.invitations.InviteCount(r.Context(), addressVar(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.InviteCount{InviteCount: count})
}
