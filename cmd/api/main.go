package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/splitpot/docs"
	"github.com/fkhayef/splitpot/internal/balance"
	"github.com/fkhayef/splitpot/internal/config"
	"github.com/fkhayef/splitpot/internal/currency"
	"github.com/fkhayef/splitpot/internal/database"
	"github.com/fkhayef/splitpot/internal/event"
	"github.com/fkhayef/splitpot/internal/expense"
	expensesplit "github.com/fkhayef/splitpot/internal/expense/split"
	"github.com/fkhayef/splitpot/internal/group"
	"github.com/fkhayef/splitpot/internal/user"
	"github.com/fkhayef/splitpot/pkg/logger"
	mw "github.com/fkhayef/splitpot/pkg/middleware"
)

// @title           Splitpot API
// @version         1.0
// @description     Group expense splitting with currency conversion, equal and percentage splits, and on-demand balances.
// @BasePath        /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("No .env file found, using environment variables")
	}

	logger.Init()

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		logger.Log.WithError(err).Fatal("Failed to run migrations")
	}

	logger.Log.Info("Connected to database successfully")

	// Exchange rate resolver; without a provider URL it degrades to rate 1.0
	var provider currency.Provider
	if cfg.ExchangeRateURL != "" {
		provider = currency.NewHTTPProvider(cfg.ExchangeRateURL)
	}
	resolver := currency.NewResolver(provider, cfg.ExchangeRateBase, cfg.ExchangeRateTTL)

	// Split Strategy Factory (Factory Pattern)
	splitFactory := expensesplit.NewFactory()

	// Domain events are logged; a broker or socket hub plugs in here
	publisher := event.LogPublisher{}

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Group feature; its repository doubles as the roster directory the
	// expense and balance features read from
	groupRepo := group.NewRepository(db)

	// Expense feature (with split factory and rate resolver injected)
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(db, expenseRepo, groupRepo, resolver, splitFactory)
	expenseHandler := expense.NewHandler(expenseService, publisher)

	reconciler := expense.NewReconciler(expenseRepo)
	groupService := group.NewService(db, groupRepo, userService, reconciler)
	groupHandler := group.NewHandler(groupService, publisher)

	// Balance feature
	balanceRepo := balance.NewRepository(db)
	balanceService := balance.NewService(balanceRepo, groupRepo)
	balanceHandler := balance.NewHandler(balanceService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Without a JWT secret the server runs in dev mode and trusts the
	// X-Test-User-ID header
	if cfg.JWTSecret != "" {
		r.Use(mw.Auth(cfg.JWTSecret))
	} else {
		logger.Log.Warn("JWT_SECRET not set, running with test authentication")
		r.Use(mw.TestUserMiddleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Mount feature routers
		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/balances", balanceHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.Log.WithField("port", port).Info("Server starting")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Log.WithError(err).Fatal("Server failed to start")
	}
}
