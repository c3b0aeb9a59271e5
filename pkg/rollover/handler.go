package rollover

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type ResultDTO struct {
	Applied   bool   `json:"applied"`
	FromMonth string `json:"fromMonth,omitempty"`
	Amount    string `json:"amount,omitempty"`
	EntryID   string `json:"entryId,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Check triggers the monthly rollover check and reports whether an entry
// was created.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	log.Debug("Running rollover check")
	w.Header().Set("Content-Type", "application/json")

	result, err := h.service.Check(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dto := ResultDTO{Applied: result.Applied}
	if result.Applied {
		dto.FromMonth = result.FromMonth.String()
		dto.Amount = result.Amount.String()
		dto.EntryID = result.EntryID
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Reset clears the rollover bookkeeping and re-runs the check, reporting
// what the fresh check did. The route is only registered when the dev
// clock is enabled.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	log.Debug("Resetting rollover bookkeeping")
	w.Header().Set("Content-Type", "application/json")

	result, err := h.service.Reset(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dto := ResultDTO{Applied: result.Applied}
	if result.Applied {
		dto.FromMonth = result.FromMonth.String()
		dto.Amount = result.Amount.String()
		dto.EntryID = result.EntryID
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
