package util

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"school-backend/errs"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, errorMessage string) {
	WriteSuccessResponse(w, r, statusCode, ErrorResponse{Error: errorMessage})
}

func WriteSuccessResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", statusCode).Msg("WriteSuccessResponse: failed to encode body")
	}
}

func WriteMessage(w http.ResponseWriter, r *http.Request, message string) {
	WriteSuccessResponse(w, r, http.StatusOK, MessageResponse{Message: message})
}

// WriteError maps err to its status code and writes it as {"error": ...}.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.Status(err)
	logger := zerolog.Ctx(r.Context())
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")
	WriteErrorResponse(w, r, status, errs.Message(err))
}

// DecodeJSON reads the request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.Invalidf("invalid JSON body: %v", err)
	}
	return nil
}

// DecodeOptionalJSON is DecodeJSON for requests whose body may be empty.
func DecodeOptionalJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || err == io.EOF {
		return nil
	}
	return errs.Invalidf("invalid JSON body: %v", err)
}
