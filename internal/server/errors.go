package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	Problems []codec.Problem `json:"problems,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

var errorHandlers = []errorHandler{
	validationHandler,
	sentinelHandler(store.ErrFieldNotFound, http.StatusNotFound, "field_not_found"),
	sentinelHandler(store.ErrDuplicateName, http.StatusConflict, "duplicate_name"),
	sentinelHandler(store.ErrDuplicateID, http.StatusUnprocessableEntity, "duplicate_id"),
	sentinelHandler(store.ErrUnknownFieldType, http.StatusUnprocessableEntity, "unknown_field_type"),
	sentinelHandler(codec.ErrUnsupportedFormat, http.StatusBadRequest, "unsupported_format"),
	sentinelHandler(openapi.ErrOperationNotFound, http.StatusUnprocessableEntity, "operation_not_found"),
	sentinelHandler(preview.ErrInvalidValue, http.StatusUnprocessableEntity, "invalid_value"),
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	for _, h := range errorHandlers {
		if h(w, err) {
			s.logger.Debug("request rejected", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

// validationHandler reports every problem of a rejected document.
func validationHandler(w http.ResponseWriter, err error) bool {
	var verr *codec.ValidationError
	if !errors.As(err, &verr) {
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return true
		}
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Code:     "validation_failed",
		Message:  err.Error(),
		Problems: verr.Problems,
	})
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeRaw(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
