package app

import (
	"github.com/gorilla/mux"

	"github.com/bachat/bachat/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Expenses
	r.HandleFunc("/api/expense", deps.ExpenseHandler.Add).Methods("POST")
	r.HandleFunc("/api/expense", deps.ExpenseHandler.List).Methods("GET")
	r.HandleFunc("/api/expense/summary", deps.ExpenseHandler.Summary).Methods("GET")
	r.HandleFunc("/api/expense/export", deps.ExpenseHandler.Export).Methods("GET")
	r.HandleFunc("/api/expense/{id}", deps.ExpenseHandler.Delete).Methods("DELETE")

	// Savings
	r.HandleFunc("/api/savings", deps.SavingsHandler.Add).Methods("POST")
	r.HandleFunc("/api/savings", deps.SavingsHandler.List).Methods("GET")
	r.HandleFunc("/api/savings/summary", deps.SavingsHandler.Summary).Methods("GET")
	r.HandleFunc("/api/savings/goal", deps.SavingsHandler.SetGoal).Methods("PUT")
	r.HandleFunc("/api/savings/{id}", deps.SavingsHandler.Delete).Methods("DELETE")

	// Budget
	r.HandleFunc("/api/budget", deps.BudgetHandler.Get).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.Set).Methods("PUT")

	// Rollover
	r.HandleFunc("/api/rollover/check", deps.RolloverHandler.Check).Methods("POST")

	// Notifications
	r.HandleFunc("/api/notification", deps.NotificationHandler.List).Methods("GET")
	r.HandleFunc("/api/notification", deps.NotificationHandler.Clear).Methods("DELETE")

	// Dev tooling, only exposed when the dev clock is enabled
	if cfg.DevClock.Enabled {
		r.HandleFunc("/api/rollover/reset", deps.RolloverHandler.Reset).Methods("POST")
		r.HandleFunc("/api/dev/clock", deps.ClockHandler.GetState).Methods("GET")
		r.HandleFunc("/api/dev/clock/enable", deps.ClockHandler.Enable).Methods("POST")
		r.HandleFunc("/api/dev/clock/disable", deps.ClockHandler.Disable).Methods("POST")
		r.HandleFunc("/api/dev/clock/date", deps.ClockHandler.SetDate).Methods("PUT")
		r.HandleFunc("/api/dev/clock/advance", deps.ClockHandler.AdvanceDays).Methods("POST")
		r.HandleFunc("/api/dev/clock/next-month", deps.ClockHandler.AdvanceToNextMonth).Methods("POST")
	}
}
