package app

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/bachat/bachat/internal/config"
	"github.com/bachat/bachat/internal/database"
	"github.com/bachat/bachat/internal/event_bus"
	"github.com/bachat/bachat/internal/utils"
	"github.com/bachat/bachat/pkg/budget"
	"github.com/bachat/bachat/pkg/clock"
	"github.com/bachat/bachat/pkg/expense"
	"github.com/bachat/bachat/pkg/notification"
	"github.com/bachat/bachat/pkg/remote/firestore"
	"github.com/bachat/bachat/pkg/remote/postgres"
	"github.com/bachat/bachat/pkg/rollover"
	"github.com/bachat/bachat/pkg/savings"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	Clock        *clock.Provider
	ClockHandler *clock.Handler

	BudgetRepo    budget.Repo
	BudgetService *budget.ServiceImpl
	BudgetHandler *budget.Handler

	ExpenseRepo     expense.Repo
	ExpenseService  *expense.ServiceImpl
	CsvRenderer     *expense.CsvRendererImpl
	ExpenseHandler  *expense.Handler
	SavingsRepo     savings.Repo
	SavingsGoalRepo savings.GoalRepo
	SavingsService  *savings.ServiceImpl
	SavingsHandler  *savings.Handler

	MarkerRepo      rollover.MarkerRepo
	RolloverService *rollover.ServiceImpl
	RolloverHandler *rollover.Handler

	NotificationService *notification.ServiceImpl
	NotificationHandler *notification.Handler
}

// BuildDependencies initializes and wires all application services and
// handlers. The configured store backend decides whether expenses and
// savings go through a remote repository with local fallback, or straight
// to the local database. Budgets, the savings goal, and the rollover
// bookkeeping always stay local.
func BuildDependencies(ctx context.Context, db *sql.DB, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.NotificationService = notification.NewService(deps.EventBus)
	deps.NotificationHandler = notification.NewHandler(deps.NotificationService)
	deps.Clock = clock.NewProvider(&utils.SystemClock{}, deps.EventBus)
	if cfg.DevClock.Enabled {
		log.Warn("dev clock enabled, simulated time endpoints are exposed")
	}
	deps.ClockHandler = clock.NewHandler(deps.Clock)

	localExpenses := expense.NewSQLiteRepo(db)
	localSavings := savings.NewSQLiteRepo(db)
	expenseRepo, savingsRepo, err := selectBackend(ctx, cfg, localExpenses, localSavings)
	if err != nil {
		return nil, err
	}
	deps.ExpenseRepo = expenseRepo
	deps.SavingsRepo = savingsRepo

	deps.BudgetRepo = budget.NewSQLiteRepo(db)
	deps.BudgetService = budget.NewService(deps.BudgetRepo)
	deps.BudgetHandler = budget.NewHandler(deps.BudgetService, deps.Clock)

	deps.ExpenseService = expense.NewService(deps.ExpenseRepo, deps.BudgetService, deps.Clock)
	deps.CsvRenderer = expense.NewCsvRenderer()
	deps.ExpenseHandler = expense.NewHandler(deps.ExpenseService, deps.CsvRenderer, deps.Clock)

	deps.SavingsGoalRepo = savings.NewSQLiteGoalRepo(db)
	deps.SavingsService = savings.NewService(deps.SavingsRepo, deps.SavingsGoalRepo, deps.Clock)

	deps.MarkerRepo = rollover.NewSQLiteMarkerRepo(db)
	deps.RolloverService = rollover.NewService(deps.MarkerRepo, deps.BudgetService,
		deps.ExpenseService, deps.SavingsService, deps.Clock, deps.EventBus)
	deps.RolloverHandler = rollover.NewHandler(deps.RolloverService)

	deps.SavingsHandler = savings.NewHandler(deps.SavingsService, deps.RolloverService)

	return deps, nil
}

// selectBackend picks the expense and savings repositories for the
// configured backend. Remote backends are wrapped so reads and creates
// degrade to the local store when the remote is down. A backend name
// outside the known set is a configuration error, not a silent default.
func selectBackend(ctx context.Context, cfg config.Application, localExpenses expense.Repo, localSavings savings.Repo) (expense.Repo, savings.Repo, error) {
	if !cfg.Store.ValidBackend() {
		return nil, nil, fmt.Errorf("unknown store backend %q, expected %q, %q or %q",
			cfg.Store.Backend, config.BackendLocal, config.BackendFirestore, config.BackendPostgres)
	}

	switch cfg.Store.Backend {
	case config.BackendFirestore:
		client, err := firestore.NewClient(ctx, cfg.Store.Firestore)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("using firestore backend, project %s", cfg.Store.Firestore.ProjectID)
		return expense.NewFallbackRepo(firestore.NewExpenseRepo(client), localExpenses),
			savings.NewFallbackRepo(firestore.NewSavingsRepo(client), localSavings), nil

	case config.BackendPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.Store.Postgres)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewStore(pool)
		if err := store.Provision(ctx); err != nil {
			return nil, nil, err
		}
		log.Infof("using postgres backend at %s", cfg.Store.Postgres.Host)
		return expense.NewFallbackRepo(postgres.NewExpenseRepo(store), localExpenses),
			savings.NewFallbackRepo(postgres.NewSavingsRepo(store), localSavings), nil
	}

	return localExpenses, localSavings, nil
}
