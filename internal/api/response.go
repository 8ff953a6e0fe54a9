package api

import (
	"encoding/json"
	"errors"
	"net/http"

	memerr "github.com/amterp/memmap/internal/errors"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// StatusResponse is the body of write acknowledgements and errors.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Success writes a 200 {"status":"success"} acknowledgement.
func Success(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, StatusResponse{Status: statusSuccess, Message: message})
}

// Error writes an error response, mapping domain errors to HTTP status codes.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var notFound *memerr.NotFoundError
	var notInit *memerr.NotInitializedError
	var validation *memerr.ValidationError

	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &notInit):
		status = http.StatusServiceUnavailable
		message = "memmap data directory is not initialized"
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	}

	JSON(w, status, StatusResponse{Status: statusError, Message: message})
}

// BadRequest writes a 400 error with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, StatusResponse{Status: statusError, Message: message})
}
