package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/BrandonDHaskell/timekeep/internal/attendance/service"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store"
	"github.com/BrandonDHaskell/timekeep/internal/logging"
	"github.com/BrandonDHaskell/timekeep/internal/validation"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

// respond writes v as protobuf when the client accepts it, else JSON.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, v any) {
	if !wantsProtobuf(r) {
		writeJSON(w, http.StatusOK, v)
		return
	}
	msg, err := toStruct(v)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("component", "httpapi").Msg("protobuf conversion")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	writeProto(w, http.StatusOK, msg)
}

func writeValidation(w http.ResponseWriter, verr *validation.RequestValidationError) {
	api := verr.ToAPIError()
	writeError(w, http.StatusBadRequest, api.Code, api.Message)
}

// handleServiceError maps service errors to HTTP statuses.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case service.IsValidationError(err):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, store.ErrVendorUnavailable):
		writeError(w, http.StatusServiceUnavailable, "vendor_unavailable", "vendor database is temporarily unavailable")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("component", "httpapi").Str("op", op).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}
