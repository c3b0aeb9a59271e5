package savings

import (
	"context"
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

// RolloverChecker is the month-end rollover trigger. Listing savings runs
// it first so an overdue rollover materializes before the list is read.
type RolloverChecker interface {
	CheckMonthlyRollover(ctx context.Context) error
}

type EntryDTO struct {
	ID             string `json:"id,omitempty"`
	Amount         string `json:"amount"`
	Description    string `json:"description,omitempty"`
	Date           string `json:"date,omitempty"`
	IsAutoRollover bool   `json:"isAutoRollover,omitempty"`
	FromMonth      string `json:"fromMonth,omitempty"`
}

type GoalDTO struct {
	Amount string `json:"amount"`
}

type SummaryDTO struct {
	Total          string `json:"total"`
	ManualTotal    string `json:"manualTotal"`
	RolloverTotal  string `json:"rolloverTotal"`
	MonthlyAverage string `json:"monthlyAverage"`
	EntryCount     int    `json:"entryCount"`
	MonthTotal     string `json:"monthTotal,omitempty"`
	Goal           string `json:"goal,omitempty"`
	GoalProgress   string `json:"goalProgress,omitempty"`
}

type Handler struct {
	service  Service
	rollover RolloverChecker
}

func NewHandler(service Service, rollover RolloverChecker) *Handler {
	return &Handler{service: service, rollover: rollover}
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	log.Debug("Adding new savings entry")
	w.Header().Set("Content-Type", "application/json")

	var dto EntryDTO
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
	if dto.Date != "" {
		if _, err := time.Parse(clock.DateLayout, dto.Date); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			encodeError(w, "Invalid date", "date must be formatted YYYY-MM-DD")
			return
		}
	}

	stored, err := h.service.Add(r.Context(), Entry{
		Amount:      amount,
		Description: dto.Description,
		Date:        dto.Date,
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

// List returns savings entries, optionally narrowed by type (auto|manual)
// and month. An overdue monthly rollover is applied first, best effort: a
// failed check logs and the list proceeds.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var filter Filter
	switch kind := r.URL.Query().Get("type"); kind {
	case "", string(KindAuto), string(KindManual):
		filter.Kind = Kind(kind)
	default:
		w.WriteHeader(http.StatusBadRequest)
		encodeError(w, "Invalid type", "type must be auto or manual")
		return
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		month, err := clock.ParseMonthKey(raw)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			encodeError(w, "Invalid month", "month must be formatted YYYY-MM")
			return
		}
		filter.Month = month
	}

	if err := h.rollover.CheckMonthlyRollover(r.Context()); err != nil {
		log.Warnf("rollover check failed before listing savings: %v", err)
	}

	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, toDTO(entry))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log.Debugf("Deleting savings entry: %s", id)

	err := h.service.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		encodeError(w, "Savings entry not found", "no savings entry with id "+id)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetGoal(w http.ResponseWriter, r *http.Request) {
	log.Debug("Setting savings goal")
	w.Header().Set("Content-Type", "application/json")

	var dto GoalDTO
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

	if err := h.service.SetGoal(r.Context(), amount); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(GoalDTO{Amount: amount.String()}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	summary, err := h.service.Summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dto := SummaryDTO{
		Total:          summary.Total.String(),
		ManualTotal:    summary.ManualTotal.String(),
		RolloverTotal:  summary.RolloverTotal.String(),
		MonthlyAverage: summary.MonthlyAverage.String(),
		EntryCount:     summary.EntryCount,
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		month, err := clock.ParseMonthKey(raw)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			encodeError(w, "Invalid month", "month must be formatted YYYY-MM")
			return
		}
		total, err := h.service.TotalForMonth(r.Context(), month)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		dto.MonthTotal = total.String()
	}
	if summary.GoalSet {
		dto.Goal = summary.Goal.String()
		dto.GoalProgress = summary.GoalProgress.String()
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toDTO(entry Entry) EntryDTO {
	return EntryDTO{
		ID:             entry.ID,
		Amount:         entry.Amount.String(),
		Description:    entry.Description,
		Date:           entry.Date,
		IsAutoRollover: entry.IsAutoRollover,
		FromMonth:      entry.FromMonth.String(),
	}
}

func encodeError(w http.ResponseWriter, msg, details string) {
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: msg, Details: details}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}
