// Command order-service serves the food-truck checkout API.
//
//	@title			Food Truck Orders API
//	@version		1.0
//	@description	Cart validation, pricing, checkout and order tracking for food trucks.
//	@BasePath		/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	_ "github.com/MikeMC777/foodtruck-orders/cmd/order-service/docs"
	"github.com/MikeMC777/foodtruck-orders/internal/config"
	"github.com/MikeMC777/foodtruck-orders/internal/database"
	"github.com/MikeMC777/foodtruck-orders/internal/httpx"
	"github.com/MikeMC777/foodtruck-orders/internal/menu"
	"github.com/MikeMC777/foodtruck-orders/internal/notify"
	"github.com/MikeMC777/foodtruck-orders/internal/order"
	"github.com/MikeMC777/foodtruck-orders/internal/payment"
	"github.com/MikeMC777/foodtruck-orders/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.ErrorContext(ctx, "order-service stopped", slog.Any("err", err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, otelShutdown, err := telemetry.Setup(ctx, cfg.App, cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		err = errors.Join(err, otelShutdown(shutdownCtx))
	}()

	pool, err := database.Connect(ctx, database.PoolConfig{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MinConns:        cfg.Postgres.MinConns,
		ConnectAttempts: cfg.Postgres.ConnectAttempts,
	}, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	if cfg.Postgres.Migrate {
		if err := database.Migrate(ctx, pool, log); err != nil {
			return err
		}
	}

	sender, senderChecks, closeSender, err := newSender(cfg.Notifier, log)
	if err != nil {
		return err
	}
	defer closeSender()
	dispatcher := notify.NewDispatcher(sender, log, cfg.Notifier.Timeout)
	defer dispatcher.Wait()

	payments := payment.NewOrchestrator(newGateway(cfg.Payment, log), log, cfg.Payment.FeePercent, cfg.Payment.Timeout)

	svc, err := order.NewService(order.NewPGRepo(pool), menu.NewPGRepo(pool), payments, dispatcher, log, order.Options{
		Currency:  cfg.Payment.Currency,
		ReturnURL: cfg.Payment.UIURL,
	})
	if err != nil {
		return err
	}

	checks := append([]healthgo.Config{{
		Name:    "postgres",
		Timeout: 2 * time.Second,
		Check:   func(ctx context.Context) error { return pool.Ping(ctx) },
	}}, senderChecks...)
	hc, err := healthgo.New(
		healthgo.WithComponent(healthgo.Component{Name: cfg.App.Name, Version: cfg.App.Version}),
		healthgo.WithChecks(checks...),
	)
	if err != nil {
		return fmt.Errorf("health checker: %w", err)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log))
	registerRoutes(r, svc, hc, log)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	grpcServer, grpcHealth := newGRPCServer(cfg.GRPC)
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		log.InfoContext(ctx, "order-service listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		log.InfoContext(ctx, "grpc health listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go watchHealth(ctx, hc, grpcHealth, 10*time.Second)

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.InfoContext(ctx, "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	grpcHealth.Shutdown()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		err = errors.Join(err, shutdownErr)
	}
	grpcServer.GracefulStop()
	return err
}

func newGateway(cfg config.PaymentConfig, log *slog.Logger) payment.Gateway {
	if cfg.Provider == "stripe" {
		return payment.NewStripeGateway(cfg.StripeSecretKey)
	}
	log.Warn("using mock payment gateway")
	return payment.NewMockGateway()
}

// newSender connects the configured notifier transport and returns its
// health checks and a close func.
func newSender(cfg config.NotifierConfig, log *slog.Logger) (notify.Sender, []healthgo.Config, func(), error) {
	switch cfg.Driver {
	case "nats":
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("order-service"))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("nats connect: %w", err)
		}
		check := healthgo.Config{
			Name: "nats",
			Check: func(context.Context) error {
				if !nc.IsConnected() {
					return errors.New("nats connection is not active")
				}
				return nil
			},
		}
		return notify.NewNATSSender(nc, cfg.NATSSubject), []healthgo.Config{check}, func() { _ = nc.Drain() }, nil

	case "amqp":
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("amqp dial: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, nil, fmt.Errorf("amqp channel: %w", err)
		}
		sender, err := notify.NewAMQPSender(ch, cfg.AMQPQueue)
		if err != nil {
			_ = conn.Close()
			return nil, nil, nil, err
		}
		check := healthgo.Config{
			Name: "amqp",
			Check: func(context.Context) error {
				if conn.IsClosed() {
					return errors.New("amqp connection is closed")
				}
				return nil
			},
		}
		closeFn := func() {
			_ = ch.Close()
			_ = conn.Close()
		}
		return sender, []healthgo.Config{check}, closeFn, nil
	}
	return notify.LogSender{Log: log}, nil, func() {}, nil
}

func newGRPCServer(cfg config.GRPCConfig) (*grpc.Server, *health.Server) {
	server := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	if cfg.EnableReflection {
		reflection.Register(server)
	}
	return server, hs
}

// watchHealth mirrors the HTTP health checks onto the gRPC health service.
func watchHealth(ctx context.Context, hc *healthgo.Health, hs *health.Server, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		status := healthpb.HealthCheckResponse_SERVING
		if hc.Measure(ctx).Status != healthgo.StatusOK {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", status)

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
