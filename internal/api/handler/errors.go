package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/roomrank/internal/api/apierr"
	"github.com/mcoot/roomrank/internal/model"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// writeError writes err as a JSON error response. Internal errors are logged
// here since the client only sees an opaque message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	apierr.WriteError(w, err)
}

// decode reads a JSON request body into dst
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return nil
}

// roomIDVar parses the {roomId} path variable
func roomIDVar(r *http.Request) (model.RoomID, error) {
	raw, ok := mux.Vars(r)["roomId"]
	if !ok {
		return 0, model.ErrRoomRequired
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, model.ErrInvalidRoomID
	}
	return model.RoomID(id), nil
}

// addressVar reads the {userAddress} path variable
func addressVar(r *http.Request) model.Address {
	return model.Address(mux.Vars(r)["userAddress"])
}
