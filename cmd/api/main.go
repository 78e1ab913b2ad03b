package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/vogiaan1904/ticketbottle-museum/config"
	"github.com/vogiaan1904/ticketbottle-museum/internal/booking"
	httpDelivery "github.com/vogiaan1904/ticketbottle-museum/internal/delivery/http"
	"github.com/vogiaan1904/ticketbottle-museum/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/ticketbottle-museum/internal/infra/redis"
	"github.com/vogiaan1904/ticketbottle-museum/internal/repository"
	"github.com/vogiaan1904/ticketbottle-museum/internal/repository/memory"
	redisStore "github.com/vogiaan1904/ticketbottle-museum/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-museum/internal/service"
	pkgGrpc "github.com/vogiaan1904/ticketbottle-museum/pkg/grpc"
	pkgKafka "github.com/vogiaan1904/ticketbottle-museum/pkg/kafka"
	pkgLog "github.com/vogiaan1904/ticketbottle-museum/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	// Session store
	var store repository.SessionStore
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		redisCli, err := redis.Connect(ctx, cfg.Redis, l)
		if err != nil {
			l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
		}
		defer redis.Disconnect(context.Background(), redisCli, l)
		store = redisStore.NewSessionStore(redisCli, cfg.Redis.KeyPrefix, l)
	default:
		l.Warn(ctx, "Using in-memory session store; sessions do not survive restarts")
		store = memory.NewSessionStore()
	}

	// Kafka producer
	prod := producer.NewNopProducer()
	if cfg.Kafka.Enabled {
		kSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			RetryMax:     cfg.Kafka.ProducerRetryMax,
			RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
			ClientID:     "museum-booking",
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
		}
		l.Infof(ctx, "Kafka producer connected to brokers: %v", cfg.Kafka.Brokers)
		prod = producer.NewProducer(kSyncProd, l)
	}
	defer func() {
		if err := prod.Close(); err != nil {
			l.Errorf(context.Background(), "Failed to close Kafka producer: %v", err)
		}
	}()

	// Services
	ssSvc := service.NewSessionService(store, cfg.JWT, cfg.Session.TTL, l)
	bkSvc := service.NewBookingService(service.BookingServiceDeps{
		Store:             store,
		Assigner:          booking.NewSimulatedAssigner(cfg.Assignment.Delay),
		Payment:           booking.NewSimulatedPayment(cfg.Payment.Delay),
		Producer:          prod,
		Museum:            cfg.Museum,
		AssignmentTimeout: cfg.Assignment.Timeout,
		PaymentTimeout:    cfg.Payment.Timeout,
	}, l)
	defer bkSvc.Close()

	// gRPC health
	lnr, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRpcPort))
	if err != nil {
		l.Fatalf(ctx, "gRPC server failed to listen: %v", err)
	}
	healthSrv := pkgGrpc.NewHealthServer("museum.booking")

	// HTTP
	h := httpDelivery.NewHTTPHandler(bkSvc, ssSvc, l)
	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      h.NewRouter(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Infof(ctx, "gRPC health server is listening on port: %d", cfg.Server.GRpcPort)
		return healthSrv.Serve(lnr)
	})

	g.Go(func() error {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		l.Info(context.Background(), "Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		healthSrv.Shutdown()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Errorf(context.Background(), "Server stopped with error: %v", err)
	}

	l.Info(context.Background(), "Server exited")
}
