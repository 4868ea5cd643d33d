package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/roomrank/internal/api/request"
	"github.com/mcoot/roomrank/internal/api/response"
	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/services/rooms"
)

// RoomHandler handles room assignment endpoints
type RoomHandler struct {
	rooms  *rooms.Service
	logger *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms *rooms.Service, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		rooms:  rooms,
		logger: logger,
	}
}

// AssignRoom handles POST /assign-room
func (h *RoomHandler) AssignRoom(w http.ResponseWriter, r *http.Request) {
	var req request.AddressRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	assignment, err := h.rooms.AssignRoom(r.Context(), model.Address(req.UserAddress))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomID{RoomID: int64(assignment.RoomID)})
}

// GetRoomID handles POST /get-room-id
func (h *RoomHandler) GetRoomID(w http.ResponseWriter, r *http.Request) {
	var req request.AddressRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	id, err := h.rooms.GetRoomID(r.Context(), model.Address(req.UserAddress))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomID{RoomID: int64(id)})
}

// List handles GET /rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomsFromModel(list))
}

// Get handles GET /rooms/{roomId}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := roomIDVar(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	room, err := h.rooms.GetRoom(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}
