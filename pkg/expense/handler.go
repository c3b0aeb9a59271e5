package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/internal/rest"
	"github.com/bachat/bachat/pkg/clock"
)

type ExpenseDTO struct {
	ID          string `json:"id,omitempty"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	Recurring   bool   `json:"recurring,omitempty"`
}

type MonthSummaryDTO struct {
	Month      string            `json:"month"`
	Total      string            `json:"total"`
	Budget     string            `json:"budget"`
	Remaining  string            `json:"remaining"`
	ByCategory map[string]string `json:"byCategory"`
	Count      int               `json:"count"`
}

type Handler struct {
	service  Service
	renderer CsvRenderer
	clock    *clock.Provider
}

func NewHandler(service Service, renderer CsvRenderer, clockProvider *clock.Provider) *Handler {
	return &Handler{service: service, renderer: renderer, clock: clockProvider}
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	log.Debug("Adding new expense")
	w.Header().Set("Content-Type", "application/json")

	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
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
	if dto.Category == "" {
		w.WriteHeader(http.StatusBadRequest)
		encodeError(w, "Invalid category", "category must not be empty")
		return
	}
	if dto.Date != "" {
		if _, err := time.Parse(clock.DateLayout, dto.Date); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			encodeError(w, "Invalid date", "date must be formatted YYYY-MM-DD")
			return
		}
	}

	stored, err := h.service.Add(r.Context(), Expense{
		Amount:      amount,
		Category:    dto.Category,
		Description: dto.Description,
		Date:        dto.Date,
		Recurring:   dto.Recurring,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toDTO(stored)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	month, ok := h.monthParam(w, r)
	if !ok {
		return
	}
	category := r.URL.Query().Get("category")

	expenses, err := h.service.ListForMonth(r.Context(), month, category)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, expense := range expenses {
		dtos = append(dtos, toDTO(expense))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log.Debugf("Deleting expense: %s", id)

	err := h.service.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		encodeError(w, "Expense not found", "no expense with id "+id)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	month, ok := h.monthParam(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	byCategory := make(map[string]string, len(summary.ByCategory))
	for category, total := range summary.ByCategory {
		byCategory[category] = total.String()
	}
	dto := MonthSummaryDTO{
		Month:      summary.Month,
		Total:      summary.Total.String(),
		Budget:     summary.Budget.String(),
		Remaining:  summary.Remaining.String(),
		ByCategory: byCategory,
		Count:      summary.Count,
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	month, ok := h.monthParam(w, r)
	if !ok {
		return
	}

	expenses, err := h.service.ListForMonth(r.Context(), month, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	summary, err := h.service.Summary(r.Context(), month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	csv, err := h.renderer.Render(expenses, summary)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=expenses-"+month.String()+".csv")
	if _, err := w.Write([]byte(csv)); err != nil {
		log.Errorf("failed to write csv response: %v", err)
	}
}

// monthParam reads the month query parameter, defaulting to the current
// month. On a malformed value it writes the 400 itself and returns false.
func (h *Handler) monthParam(w http.ResponseWriter, r *http.Request) (clock.MonthKey, bool) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return h.clock.CurrentMonth(), true
	}
	month, err := clock.ParseMonthKey(raw)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		encodeError(w, "Invalid month", "month must be formatted YYYY-MM")
		return "", false
	}
	return month, true
}

func toDTO(expense Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          expense.ID,
		Amount:      expense.Amount.String(),
		Category:    expense.Category,
		Description: expense.Description,
		Date:        expense.Date,
		Recurring:   expense.Recurring,
	}
}

func encodeError(w http.ResponseWriter, msg, details string) {
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: msg, Details: details}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}
