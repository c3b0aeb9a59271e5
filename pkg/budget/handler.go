package budget

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/internal/rest"
	"github.com/bachat/bachat/pkg/clock"
)

type BudgetDTO struct {
	Month  string `json:"month"`
	Amount string `json:"amount"`
}

type Handler struct {
	service Service
	clock   *clock.Provider
}

func NewHandler(service Service, clock *clock.Provider) *Handler {
	return &Handler{service: service, clock: clock}
}

// Get returns the budget for the requested month, defaulting to the current
// month when no month query parameter is given.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	month := h.clock.CurrentMonth()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := clock.ParseMonthKey(raw)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			encodeError(w, "Invalid month", "month must be formatted YYYY-MM")
			return
		}
		month = parsed
	}

	amount, err := h.service.Get(r.Context(), month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dto := BudgetDTO{Month: month.String(), Amount: amount.String()}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Set stores a budget for a month. Non-numeric and non-positive amounts are
// rejected here, at the input boundary.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	log.Debug("Setting monthly budget")
	w.Header().Set("Content-Type", "application/json")

	var dto BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	month := h.clock.CurrentMonth()
	if dto.Month != "" {
		parsed, err := clock.ParseMonthKey(dto.Month)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			encodeError(w, "Invalid month", "month must be formatted YYYY-MM")
			return
		}
		month = parsed
	}

	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeError(w, "Invalid amount", "amount must be a number")
		return
	}
	if !amount.IsPositive() {
		w.WriteHeader(http.StatusBadRequest)
		encodeError(w, "Invalid amount", "amount must be greater than zero")
		return
	}

	if err := h.service.Set(r.Context(), month, amount); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(BudgetDTO{Month: month.String(), Amount: amount.String()}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func encodeError(w http.ResponseWriter, msg, details string) {
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: msg, Details: details}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}
