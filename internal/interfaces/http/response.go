package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"banklink/internal/domain/linking"
	"banklink/internal/infrastructure/plaid"
)

type errorResponse struct {
	Error     string `json:"error"`
	ErrorType string `json:"errorType,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeLinkingError maps service errors onto HTTP statuses. Provider failures
// surface as 502 with the provider's own error taxonomy so clients can react
// to specific Plaid error codes.
func writeLinkingError(w http.ResponseWriter, err error) {
	var apiErr *plaid.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:     apiErr.ErrorMessage,
			ErrorType: apiErr.ErrorType,
			ErrorCode: apiErr.ErrorCode,
			RequestID: apiErr.RequestID,
		})
		return
	}

	switch {
	case errors.Is(err, linking.ErrInvalidUser), errors.Is(err, linking.ErrMissingPublicToken):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, linking.ErrDuplicateItem):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, linking.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, linking.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
