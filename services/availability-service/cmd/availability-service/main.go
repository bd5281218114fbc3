package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/scheduleops/freebusy/libs/auth"
	"github.com/scheduleops/freebusy/libs/config"
	"github.com/scheduleops/freebusy/libs/httpx"
	otelx "github.com/scheduleops/freebusy/libs/otel"
	"github.com/scheduleops/freebusy/libs/runtime"
	"github.com/scheduleops/freebusy/services/availability-service/internal/handlers"
	"github.com/scheduleops/freebusy/services/availability-service/internal/tz"
)

func main() {
	service := config.String("SERVICE_NAME", "availability-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	offsets := tz.Database{}
	httpHandler := handlers.New(offsets, logger)

	checks := []runtime.ReadyCheck{
		{Name: "tzdata", Check: func(context.Context) error { return tz.Validate("UTC") }},
	}

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		checks = append(checks, runtime.ReadyCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	secret := config.String("AUTH_JWT_SECRET", "")
	mux := runtime.NewBaseMuxWithReady(checks...)
	mux.Handle("/api/v1/availability/expand", requireAuth(http.HandlerFunc(httpHandler.ExpandAvailability), secret))
	mux.Handle("/api/v1/availability/free", requireAuth(http.HandlerFunc(httpHandler.FreeWindows), secret))
	mux.Handle("/api/v1/intervals/subtract", requireAuth(http.HandlerFunc(httpHandler.SubtractIntervals), secret))
	mux.Handle("/api/v1/timezones/validate", requireAuth(http.HandlerFunc(httpHandler.ValidateTimezone), secret))

	rateLimit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	var rateLimitMW httpx.Middleware
	if rdb != nil {
		rateLimitMW = httpx.NewRedisRateLimiter(rdb, rateLimit, time.Minute, service).
			Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
	} else {
		rateLimitMW = httpx.NewRateLimiter(rateLimit, time.Minute).Middleware()
	}

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
		rateLimitMW,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitCSV(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
	)
	handler = otelhttp.NewHandler(handler, "availability")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	if err := startGrpcServer(ctx, logger, offsets); err != nil {
		logger.Error("grpc server failed to start", "err", err)
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// requireAuth verifies a Bearer token when a secret is configured. With no
// secret the service runs open, which keeps local development unauthenticated
// while health endpoints stay outside the wrapper either way.
func requireAuth(next http.Handler, secret string) http.Handler {
	if secret == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := auth.VerifyHS256(strings.TrimSpace(token), secret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		r.Header.Set("X-User-Id", claims.Sub)
		next.ServeHTTP(w, r)
	})
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
