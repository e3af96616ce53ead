package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"onboardflow/auth"
	"onboardflow/config"
	"onboardflow/db"
	"onboardflow/dispute"
	"onboardflow/employee"
	"onboardflow/event"
	"onboardflow/httpapi"
	"onboardflow/identity"
	"onboardflow/offer"
	"onboardflow/onboarding"
	"onboardflow/ratelimit"
	"onboardflow/resolution"
	"onboardflow/signing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("bootstrap config: %v", err)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("bootstrap database pool: %v", err)
	}
	defer pool.Close()

	timeline := event.NewTimelineWriter()
	outbox := event.NewOutboxWriter()

	employees := employee.NewRepository(pool)
	offers := offer.NewRepository(pool)
	disputes := dispute.NewRepository(pool)
	sessions := resolution.NewRepository(pool)
	packages := signing.NewRepository(pool)

	gate := identity.NewGate(identity.NewPGStore(pool))
	generator := signing.NewStandardGenerator(employees)

	lifecycle := onboarding.NewService(pool, gate, employees, offers, disputes, sessions, packages, generator, timeline, outbox)
	conversation := resolution.NewService(pool, sessions, disputes, resolution.NewKeywordClassifier(), timeline, outbox)
	authSvc := auth.NewService(auth.NewRepository(pool), cfg.JWTSigningKey)

	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.RedisAddr != "" {
		limiter = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.VerifyAttemptsPerMinute, time.Minute)
	}

	handler := httpapi.NewHandler(lifecycle, conversation, authSvc, limiter, log.Default())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Printf("api listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := event.NewKafkaPublisher(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("bootstrap kafka publisher: %v", err)
		}
		defer publisher.Close()

		dispatcher := event.NewDispatcher(pool, publisher, cfg.DispatchInterval, log.Default())
		group.Go(func() error {
			if err := dispatcher.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		log.Printf("outbox dispatcher running every %s", cfg.DispatchInterval)
	} else {
		log.Printf("KAFKA_BROKERS not set, outbox dispatch disabled")
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("shutdown: %v", err)
	}
	log.Printf("api stopped")
}
