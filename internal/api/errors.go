package api

import (
	"encoding/json"
	"net/http"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/errors"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// SuccessResponse is the envelope for successful API responses.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Cached  bool        `json:"cached"`
}

// ErrorResponse is the envelope for failed API responses.
type ErrorResponse struct {
	Success bool               `json:"success"`
	Error   types.ServiceError `json:"error"`
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondSuccess wraps data in the success envelope. The cached flag tells
// the client whether it received a warm copy.
func respondSuccess(w http.ResponseWriter, statusCode int, data interface{}, cached bool) {
	respondJSON(w, statusCode, SuccessResponse{
		Success: true,
		Data:    data,
		Cached:  cached,
	})
}

// respondError maps an error to its HTTP status and sends the error
// envelope. Uncategorized errors surface as 500 without leaking internals.
func respondError(w http.ResponseWriter, err error) {
	categorized := errors.Categorize(err)
	respondJSON(w, categorized.StatusCode, ErrorResponse{
		Success: false,
		Error:   *categorized.ToServiceError(),
	})
}

// respondErrorWith sends the error envelope with an explicit status and code.
func respondErrorWith(w http.ResponseWriter, statusCode int, code, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error: types.ServiceError{
			Code:    code,
			Message: message,
		},
	})
}
