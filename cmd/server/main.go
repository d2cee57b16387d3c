package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jazanyumba/chama-vault/internal/auth"
	"github.com/jazanyumba/chama-vault/internal/cache"
	"github.com/jazanyumba/chama-vault/internal/config"
	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/handler"
	"github.com/jazanyumba/chama-vault/internal/notify"
	"github.com/jazanyumba/chama-vault/internal/repository"
	"github.com/jazanyumba/chama-vault/internal/service"
	"github.com/jazanyumba/chama-vault/pkg/response"
)

type handlers struct {
	directory *handler.DirectoryHandler
	cycles    *handler.CycleHandler
	loans     *handler.LoanHandler
	savings   *handler.SavingsHandler
	analytics *handler.AnalyticsHandler
	health    *handler.HealthHandler
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the leaderboard is recomputed on every read
	var leaderboard service.LeaderboardCache
	redisClient, err := cache.OpenRedis(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("[cache] warning: redis unavailable, leaderboard cache disabled: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		leaderboard = cache.NewStore(redisClient, cfg.Business.LeaderboardTTL)
	}

	// Initialize repositories
	repos := repository.NewRepos(db)
	uow := repository.NewUnitOfWork(db)

	notifier := initNotifier(cfg, repos)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	thresholds := domain.PerformanceThresholds{
		Excellent: cfg.Business.ExcellentThreshold,
		Good:      cfg.Business.GoodThreshold,
	}

	// Initialize services
	directoryService := service.NewDirectoryService(repos, uow, tokens, notifier, leaderboard, cfg)
	cycleService := service.NewCycleService(repos, uow, notifier)
	contributionService := service.NewContributionService(repos, uow, notifier, leaderboard)
	loanService := service.NewLoanService(repos, uow, notifier)
	savingsService := service.NewSavingsService(repos, uow, notifier, leaderboard)
	analyticsService := service.NewAnalyticsService(repos, leaderboard, thresholds)

	h := handlers{
		directory: handler.NewDirectoryHandler(directoryService),
		cycles:    handler.NewCycleHandler(cycleService, contributionService),
		loans:     handler.NewLoanHandler(loanService),
		savings:   handler.NewSavingsHandler(savingsService),
		analytics: handler.NewAnalyticsHandler(analyticsService),
		health:    handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout),
	}

	// Setup routes
	router := setupRoutes(h, auth.NewSessionAuthenticator(tokens, repos.Members))

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      response.CORSMiddleware(response.LoggingMiddleware(router)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s (env=%s)", server.Addr, cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initNotifier(cfg *config.Config, repos repository.Repos) notify.Sender {
	var transport notify.Transport = notify.LogSender{}
	if cfg.Notification.Enabled {
		transport = notify.NewSMSSender(cfg.Notification)
	}
	return notify.NewGatedSender(repos.Members, repos.Groups, transport)
}

func setupRoutes(h handlers, authenticator handler.Authenticator) *mux.Router {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", h.health.Health).Methods("GET")
	router.HandleFunc("/health/ready", h.health.Ready).Methods("GET")

	// Public auth routes
	public := router.PathPrefix("/api/v1/auth").Subrouter()
	public.HandleFunc("/register-group", h.directory.RegisterGroup).Methods("POST")
	public.HandleFunc("/register", h.directory.RegisterMember).Methods("POST")
	public.HandleFunc("/login", h.directory.Login).Methods("POST")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(handler.RequireAuth(authenticator))

	api.HandleFunc("/me", h.directory.Me).Methods("GET")
	api.HandleFunc("/members", h.directory.ListMembers).Methods("GET")
	api.HandleFunc("/members/{memberId}", h.directory.GetMember).Methods("GET")
	api.HandleFunc("/members/{memberId}", h.directory.RemoveMember).Methods("DELETE")
	api.HandleFunc("/members/{memberId}/approve", h.directory.ApproveMember).Methods("POST")
	api.HandleFunc("/members/{memberId}/contributions", h.cycles.MemberContributions).Methods("GET")

	api.HandleFunc("/cycles", h.cycles.StartCycle).Methods("POST")
	api.HandleFunc("/cycles", h.cycles.ListCycles).Methods("GET")
	api.HandleFunc("/cycles/active", h.cycles.GetActiveCycle).Methods("GET")
	api.HandleFunc("/cycles/{cycleId}", h.cycles.GetCycle).Methods("GET")
	api.HandleFunc("/cycles/{cycleId}/progress", h.cycles.ProgressCycle).Methods("POST")
	api.HandleFunc("/cycles/{cycleId}/contributions", h.cycles.ListContributions).Methods("GET")
	api.HandleFunc("/cycles/{cycleId}/contributions", h.cycles.RecordContribution).Methods("POST")
	api.HandleFunc("/contributions/{contributionId}/rating", h.cycles.RateContribution).Methods("PUT")

	api.HandleFunc("/loans", h.loans.ListLoans).Methods("GET")
	api.HandleFunc("/loans", h.loans.CreateLoan).Methods("POST")
	api.HandleFunc("/loans/request", h.loans.RequestLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}", h.loans.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}/offer", h.loans.OfferLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}/decision", h.loans.RespondToOffer).Methods("POST")
	api.HandleFunc("/loans/{loanId}/repayments", h.loans.ListRepayments).Methods("GET")
	api.HandleFunc("/loans/{loanId}/repayments", h.loans.SubmitRepayment).Methods("POST")
	api.HandleFunc("/repayments/{repaymentId}/approve", h.loans.ApproveRepayment).Methods("POST")
	api.HandleFunc("/repayments/{repaymentId}/reject", h.loans.RejectRepayment).Methods("POST")
	api.HandleFunc("/repayments/{repaymentId}/rating", h.loans.RateRepayment).Methods("PUT")

	api.HandleFunc("/savings/deposits", h.savings.RecordDeposit).Methods("POST")
	api.HandleFunc("/savings/balance", h.savings.GetBalance).Methods("GET")
	api.HandleFunc("/savings/entries", h.savings.ListEntries).Methods("GET")
	api.HandleFunc("/savings/members/{memberId}/balance", h.savings.GetBalance).Methods("GET")
	api.HandleFunc("/savings/members/{memberId}/entries", h.savings.ListEntries).Methods("GET")
	api.HandleFunc("/withdrawals", h.savings.RequestWithdrawal).Methods("POST")
	api.HandleFunc("/withdrawals", h.savings.ListWithdrawals).Methods("GET")
	api.HandleFunc("/withdrawals/{withdrawalId}/approve", h.savings.ApproveWithdrawal).Methods("POST")
	api.HandleFunc("/withdrawals/{withdrawalId}/reject", h.savings.RejectWithdrawal).Methods("POST")

	api.HandleFunc("/analytics/leaderboard", h.analytics.Leaderboard).Methods("GET")
	api.HandleFunc("/analytics/dashboard", h.analytics.Dashboard).Methods("GET")
	api.HandleFunc("/analytics/timing", h.analytics.Timing).Methods("GET")
	api.HandleFunc("/analytics/members/{memberId}", h.analytics.MemberReport).Methods("GET")

	return router
}
