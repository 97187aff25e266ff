package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/mubark555/pastry-opus-biz/internal/app"
	"github.com/mubark555/pastry-opus-biz/internal/handler"
	"github.com/mubark555/pastry-opus-biz/internal/middleware"
	"github.com/mubark555/pastry-opus-biz/pkg/config"
	"github.com/mubark555/pastry-opus-biz/pkg/jwtutil"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/mubark555/pastry-opus-biz/pkg/metrics"
	appmetrics "github.com/mubark555/pastry-opus-biz/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const serviceName = "sweets-ops"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting "+serviceName, cfg.LogConfig()...)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics := appmetrics.NewMetrics(cfg.Metrics.Prefix, registry)
	httpMetrics := metrics.NewHTTPMetrics(cfg.ServiceName, registry)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", cfg.Metrics.Prefix))

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg, domainMetrics)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	log.Info("Store ready", zap.String("driver", cfg.Store.Driver))

	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})

	e := echo.New()
	e.HideBanner = true

	// order matters: the request id sets the logger the later middleware use
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))
	h := handler.New(app.Services(cfg, store, domainMetrics))
	h.Register(e, middleware.JWTAuthMiddleware(jwtUtil, domainMetrics), domainMetrics)

	go func() {
		port := cfg.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	log.Info("Shutting down server")
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down server", zap.Error(err))
	}
}
