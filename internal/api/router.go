package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/roomrank/internal/api/apierr"
	"github.com/mcoot/roomrank/internal/api/handler"
	apimiddleware "github.com/mcoot/roomrank/internal/api/middleware"
	"github.com/mcoot/roomrank/internal/api/response"
	"github.com/mcoot/roomrank/internal/middleware"
	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/services/invitation"
	"github.com/mcoot/roomrank/internal/services/ranking"
	"github.com/mcoot/roomrank/internal/services/rooms"
	"github.com/mcoot/roomrank/internal/services/scores"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Rooms          *rooms.Service
	Scores         *scores.Service
	Invitations    *invitation.Service
	Ranking        *ranking.Service
	RequestTimeout time.Duration
}

// NewRouter creates the API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Rooms, cfg.Logger)
	scoreHandler := handler.NewScoreHandler(cfg.Scores, cfg.Logger)
	inviteHandler := handler.NewInvitationHandler(cfg.Invitations, cfg.Logger)
	rankingHandler := handler.NewRankingHandler(cfg.Ranking, cfg.Logger)

	r.Use(apimiddleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Tracing())

	// Rooms
	r.HandleFunc("/assign-room", roomHandler.AssignRoom).Methods(http.MethodPost)
	r.HandleFunc("/get-room-id", roomHandler.GetRoomID).Methods(http.MethodPost)
	r.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{roomId}", roomHandler.Get).Methods(http.MethodGet)

	// Scores
	r.HandleFunc("/submit-score", scoreHandler.SubmitScore).Methods(http.MethodPost)
	r.HandleFunc("/get-player-score", scoreHandler.GetPlayerScore).Methods(http.MethodPost)
	r.HandleFunc("/player-stats/{userAddress}", scoreHandler.PlayerStats).Methods(http.MethodGet)
	r.HandleFunc("/check-user", scoreHandler.CheckUser).Methods(http.MethodPost)

	// Invitations
	r.HandleFunc("/submit-invite", inviteHandler.SubmitInvite).Methods(http.MethodPost)
	r.HandleFunc("/apply-bonus", inviteHandler.ApplyBonus).Methods(http.MethodPost)
	r.HandleFunc("/invites-count/{userAddress}", inviteHandler.InvitesCount).Methods(http.MethodGet)

	// Rankings
	r.HandleFunc("/leaderboard/{roomId}", rankingHandler.Leaderboard).Methods(http.MethodGet)
	r.HandleFunc("/hall-of-fame", rankingHandler.HallOfFame).Methods(http.MethodGet)
	r.HandleFunc("/hall-of-fame/{roomId}", rankingHandler.HallOfFame).Methods(http.MethodGet)

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, model.ErrNotFound)
}

func methodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusMethodNotAllowed, apierr.ErrorResponse{
		Error: apierr.APIError{Code: apierr.CodeInvalidRequest, Message: "method not allowed"},
	})
}
