package http

import (
	"encoding/json"
	"net/http"

	"banklink/internal/domain/linking"
	"banklink/internal/shared/middleware"
)

// LinkHandler exposes the bank-linking flow: link-token creation, public-token
// exchange, and listing of connected banks. All routes require an
// authenticated user on the request context.
type LinkHandler struct {
	linkingService *linking.Service
}

func NewLinkHandler(linkingService *linking.Service) *LinkHandler {
	return &LinkHandler{linkingService: linkingService}
}

type ExchangeRequest struct {
	PublicToken string `json:"publicToken"`
}

// HandleCreateLinkToken issues a short-lived link token for the caller.
func (h *LinkHandler) HandleCreateLinkToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	resp, err := h.linkingService.CreateLinkToken(r.Context(), userID)
	if err != nil {
		writeLinkingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleExchange trades a public token for a durable access token and records
// the linked bank for the caller.
func (h *LinkHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.linkingService.ExchangePublicToken(r.Context(), userID, req.PublicToken)
	if err != nil {
		writeLinkingError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleBanks lists the caller's connected banks (item identifiers only).
func (h *LinkHandler) HandleBanks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	banks, err := h.linkingService.ListConnectedBanks(r.Context(), userID)
	if err != nil {
		writeLinkingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, banks)
}

// HandleBankByID returns provider metadata for one linked bank.
func (h *LinkHandler) HandleBankByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itemID := r.PathValue("id")
	if itemID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "item ID is required"})
		return
	}

	details, err := h.linkingService.GetItemDetails(r.Context(), userID, itemID)
	if err != nil {
		writeLinkingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}
