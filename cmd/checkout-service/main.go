package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/app"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/config"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/db"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/events"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/notify"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/order"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/sequence"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/session"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[checkout-service] ", log.LstdFlags|log.Lmicroseconds)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		logger.Printf("WARNING: JWT_SECRET is empty, bearer tokens are not verified (ALLOW_UNVERIFIED_JWT=true)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB (ledger, event sequences, postgres sessions)
	var database *sql.DB
	if cfg.DatabaseDSN != "" {
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				logger.Fatalf("migrations: %v", err)
			}
		}
		var err error
		database, err = db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf("open db: %v", err)
		}
		defer database.Close()
	}

	var ledger order.Ledger = order.NewMemoryLedger()
	if database != nil {
		ledger = order.NewPostgresLedger(database, cfg.LedgerStaleAfter)
	} else {
		logger.Printf("no database configured, order ledger is in-process only")
	}

	sessions, purge, closeSessions := openSessions(ctx, cfg, logger)
	defer closeSessions()

	// Events
	var publisher order.EventPublisher = events.NewLogPublisher(logger)
	if cfg.EventsEnabled {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatalf("connect to RabbitMQ: %v", err)
		}
		defer conn.Close()

		var seq sequence.Repository = sequence.NewCounter()
		if database != nil {
			seq = sequence.NewRepository(database)
		}
		pub, err := events.NewPublisher(conn, seq, "")
		if err != nil {
			logger.Fatalf("events publisher: %v", err)
		}
		defer pub.Close()
		publisher = pub
	}

	router := app.NewRouter(cfg, app.Infra{
		Sessions: sessions,
		Ledger:   ledger,
		Events:   publisher,
		Notifier: notify.NewMailer(cfg.SendGridKey, cfg.MailFrom, logger),
	}, logger)

	if purge != nil {
		go purgeSessions(ctx, purge, cfg.SessionPurgeInterval, logger)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	logger.Printf("shutdown complete")
}

type purgeFunc func(ctx context.Context) (int64, error)

// openSessions picks the session store. Only the postgres store needs purging;
// redis and memory entries expire on their own.
func openSessions(ctx context.Context, cfg config.Config, logger *log.Logger) (session.Store, purgeFunc, func()) {
	switch cfg.SessionBackend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf("session pool: %v", err)
		}
		store := session.NewPostgresStore(pool, cfg.SessionTTL)
		return store, store.Purge, pool.Close
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatalf("redis ping: %v", err)
		}
		return session.NewRedisStore(rdb, cfg.SessionTTL), nil, func() { _ = rdb.Close() }
	case "memory":
		logger.Printf("sessions are in-process only")
		return session.NewMemoryStore(cfg.SessionTTL), nil, func() {}
	default:
		logger.Fatalf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
		return nil, nil, nil
	}
}

func purgeSessions(ctx context.Context, purge purgeFunc, every time.Duration, logger *log.Logger) {
	if every <= 0 {
		logger.Printf("session purge disabled (interval %s)", every)
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purge(ctx)
			if err != nil {
				logger.Printf("session purge: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("purged %d expired sessions", n)
			}
		}
	}
}
