package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/jazanyumba/chama-vault/internal/cache"
	"github.com/jazanyumba/chama-vault/internal/config"
	"github.com/jazanyumba/chama-vault/internal/notify"
	"github.com/jazanyumba/chama-vault/internal/repository"
	"github.com/jazanyumba/chama-vault/internal/service"
)

const jobTimeout = 5 * time.Minute

func main() {
	log.Println("Starting reminder scheduler...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// without redis, reminders are not de-duplicated across runs on the same day
	var ledger service.ReminderLedger
	redisClient, err := cache.OpenRedis(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("[scheduler] warning: redis unavailable, reminder de-dupe disabled: %v", err)
	} else {
		defer redisClient.Close()
		ledger = cache.NewStore(redisClient, cfg.Business.LeaderboardTTL)
	}

	repos := repository.NewRepos(db)
	var transport notify.Transport = notify.LogSender{}
	if cfg.Notification.Enabled {
		transport = notify.NewSMSSender(cfg.Notification)
	}
	notifier := notify.NewGatedSender(repos.Members, repos.Groups, transport)
	reminders := service.NewReminderService(repos, notifier, ledger, cfg.Scheduler.ReminderLeadDays)

	// Initialize cron scheduler
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	// Schedule tasks
	if err := setupCronJobs(c, cfg, reminders, loc); err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, reminders *service.ReminderService, loc *time.Location) error {
	_, err := c.AddFunc(cfg.Scheduler.ContributionReminderSpec, func() {
		log.Println("[scheduler] running contribution reminder job...")
		runJob("contribution reminders", loc, reminders.SendContributionReminders)
	})
	if err != nil {
		return err
	}

	_, err = c.AddFunc(cfg.Scheduler.LoanReminderSpec, func() {
		log.Println("[scheduler] running loan reminder job...")
		runJob("loan reminders", loc, reminders.SendLoanReminders)
	})
	if err != nil {
		return err
	}

	log.Println("Cron jobs scheduled successfully")
	return nil
}

func runJob(name string, loc *time.Location, job func(ctx context.Context, now time.Time) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	started := time.Now()
	sent, err := job(ctx, started.In(loc))
	if err != nil {
		log.Printf("[scheduler] error: %s failed: %v", name, err)
		return
	}
	log.Printf("[scheduler] %s done: %d sent in %s", name, sent, time.Since(started).Round(time.Millisecond))
}
