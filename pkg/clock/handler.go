package clock

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/internal/rest"
)

// Handler exposes the developer clock control surface. Its routes are only
// registered when the dev clock is enabled in configuration; production
// deployments never see them.
type Handler struct {
	provider *Provider
}

func NewHandler(provider *Provider) *Handler {
	return &Handler{provider: provider}
}

type StateDTO struct {
	Now          string `json:"now"`
	Today        string `json:"today"`
	CurrentMonth string `json:"currentMonth"`
	DevMode      bool   `json:"devMode"`
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeState(w)
}

func (h *Handler) Enable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		StartDate string `json:"startDate"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := h.provider.EnableDevMode(req.StartDate); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.encodeError(w, "Invalid start date", err)
		return
	}
	h.writeState(w)
}

func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.provider.DisableDevMode()
	h.writeState(w)
}

func (h *Handler) SetDate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.provider.SetDate(req.Date); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.encodeError(w, "Invalid date", err)
		return
	}
	h.writeState(w)
}

func (h *Handler) AdvanceDays(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		Days int `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.provider.AdvanceDays(req.Days)
	h.writeState(w)
}

func (h *Handler) AdvanceToNextMonth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.provider.AdvanceToNextMonth()
	h.writeState(w)
}

func (h *Handler) writeState(w http.ResponseWriter) {
	state := StateDTO{
		Now:          h.provider.Now().Format(time.RFC3339),
		Today:        h.provider.Today(),
		CurrentMonth: h.provider.CurrentMonth().String(),
		DevMode:      h.provider.IsDevMode(),
	}
	if err := json.NewEncoder(w).Encode(state); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) encodeError(w http.ResponseWriter, msg string, err error) {
	if encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   msg,
		Details: err.Error(),
	}); encodeErr != nil {
		log.Errorf("failed to encode error response: %v", encodeErr)
	}
}
