package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"banklink/internal/infrastructure/plaid"
)

// EnvironmentHandler exposes the active Plaid environment for inspection and
// switching. Switching is atomic: requests in flight keep the configuration
// they started with.
type EnvironmentHandler struct {
	client *plaid.Client
}

func NewEnvironmentHandler(client *plaid.Client) *EnvironmentHandler {
	return &EnvironmentHandler{client: client}
}

type EnvironmentResponse struct {
	Environment string `json:"environment"`
}

type SetEnvironmentRequest struct {
	Environment string `json:"environment"`
}

func (h *EnvironmentHandler) HandleEnvironment(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPut:
		h.handleSet(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *EnvironmentHandler) handleGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, EnvironmentResponse{
		Environment: string(h.client.CurrentEnvironment()),
	})
}

func (h *EnvironmentHandler) handleSet(w http.ResponseWriter, r *http.Request) {
	var req SetEnvironmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	env, err := plaid.ParseEnvironment(req.Environment)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	active, err := h.client.SetEnvironment(env)
	if err != nil {
		// The previous environment stays active; tell the caller which one.
		status := http.StatusInternalServerError
		if errors.Is(err, plaid.ErrMissingCredentials) {
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	log.Printf("Plaid environment switched to %s", active)
	writeJSON(w, http.StatusOK, EnvironmentResponse{Environment: string(active)})
}
