package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	bookingv1 "appointment-booking-api/api/booking/v1"
	"appointment-booking-api/internal/auth"
	"appointment-booking-api/internal/booking"
	"appointment-booking-api/internal/config"
	"appointment-booking-api/internal/grpcweb"
	"appointment-booking-api/internal/handler"
	"appointment-booking-api/internal/logger"
	"appointment-booking-api/internal/mail"
	"appointment-booking-api/internal/metrics"
	"appointment-booking-api/internal/middleware"
	"appointment-booking-api/internal/queue"
	"appointment-booking-api/internal/store"
	"appointment-booking-api/internal/store/memstore"
)

// backend is what both store implementations provide.
type backend interface {
	booking.Repository
	handler.Accounts
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New(os.Stderr, "json", "info")
		l.Fatal().Err(err).Msg("config")
	}
	log := logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// storage
	var (
		st   backend
		ping grpcweb.Pinger
	)
	switch cfg.Store {
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on exit")
		st = memstore.New()
	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		pg := store.New(pool)
		if err := pg.Ping(ctx); err != nil {
			return err
		}
		log.Info().Msg("connected to postgres")
		if err := store.Migrate(ctx, pool); err != nil {
			return err
		}
		st, ping = pg, pg.Ping
	}

	// job queue
	var broker queue.Broker
	if cfg.RedisURL != "" {
		rb, err := queue.NewRedisBroker(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rb.Close()
		log.Info().Msg("job queue on redis")
		broker = rb
	} else {
		log.Warn().Msg("REDIS_URL not set; queued mail is lost on exit")
		broker = queue.NewMemoryBroker(1024)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector(reg)

	sched := booking.NewScheduler(st, booking.SystemClock{}, log, m)
	canc := booking.NewCanceler(st, queue.New(broker), booking.SystemClock{}, log, m)
	tokens := auth.NewTokens(cfg.JWTSecret)
	h := handler.New(st, sched, canc, tokens,
		handler.WithLogger(log),
		handler.WithVerboseErrors(cfg.VerboseErrors),
	)

	var wg sync.WaitGroup

	// mail worker
	sender := mail.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	worker := queue.NewWorker(broker, cfg.MailMaxAttempts, log, queue.WithObserver(m))
	worker.Handle(booking.JobCancellationMail, mail.CancellationHandler(sender, log))
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx, cfg.MailWorkers)
	}()

	// grpc server
	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rl.Cleanup(ctx)
	srv := grpc.NewServer(
		grpc.ForceServerCodec(bookingv1.Codec{}),
		grpc.ChainUnaryInterceptor(
			middleware.Logging(log),
			middleware.RateLimit(rl),
			middleware.Auth(tokens),
		),
	)
	bookingv1.RegisterBookingServiceServer(srv, h)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}
	errc := make(chan error, 2)
	go func() {
		log.Info().Str("port", cfg.GRPCPort).Msg("grpc listening")
		if err := srv.Serve(lis); err != nil {
			errc <- err
		}
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := grpcweb.Dial("localhost:"+cfg.GRPCPort, log)
	if err != nil {
		return err
	}
	defer bridge.Close()

	httpSrv := &http.Server{
		Addr:    ":" + cfg.WebPort,
		Handler: grpcweb.NewRouter(bridge, reg, ping),
	}
	go func() {
		log.Info().Str("port", cfg.WebPort).Msg("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		stop()
		log.Error().Err(err).Msg("listener failed")
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	srv.GracefulStop()
	wg.Wait()
	return nil
}
