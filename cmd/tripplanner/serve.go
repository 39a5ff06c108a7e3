package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	intconfig "tripplanner/internal/config"
	"tripplanner/internal/db"
	router "tripplanner/internal/http"
	"tripplanner/internal/http/handlers"
	"tripplanner/internal/metrics"
	"tripplanner/internal/repositories"
	"tripplanner/internal/sources"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the itinerary HTTP API.

Persistence is enabled when DB_DSN is set, and the candidate cache uses Redis
when REDIS_ADDR is set (in-memory otherwise).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", a.env.AppAddr, "Listen address")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string) error {
	if a.env.GinMode != "" {
		gin.SetMode(a.env.GinMode)
	}

	m := metrics.New()
	api := &handlers.API{
		Config:    a.cfg,
		Metrics:   m,
		Logger:    a.logger,
		JWTSecret: a.jwtSecret(),
	}

	if a.env.DBDSN != "" {
		conn, err := intconfig.ConnectDB(a.env.DBDSN)
		if err != nil {
			return err
		}
		defer intconfig.CloseDB()

		mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = db.Migrate(mctx, conn)
		cancel()
		if err != nil {
			return err
		}
		api.Itineraries = repositories.ItineraryRepository{DB: conn}
		api.Users = repositories.UserRepository{DB: conn}
	} else {
		a.logger.Warn().Msg("DB_DSN not set, itineraries will not be saved")
	}

	var cache sources.Cache = sources.NewMemoryCache()
	if a.env.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: a.env.RedisAddr})
		defer client.Close()

		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pctx).Err()
		cancel()
		if err != nil {
			a.logger.Warn().Err(err).Str("addr", a.env.RedisAddr).Msg("redis unreachable, using in-memory cache")
		} else {
			cache = sources.NewRedisCache(client, "tripplanner:")
			a.logger.Info().Str("addr", a.env.RedisAddr).Msg("using redis candidate cache")
		}
	}
	api.Gatherer = a.newGatherer(cache, m)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router.NewRouter(a.env, api),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	a.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info().Msg("server stopped")
	return nil
}

// jwtSecret falls back to a per-process random key, so tokens do not survive
// a restart.
func (a *app) jwtSecret() []byte {
	if a.env.JWTSecret != "" {
		return []byte(a.env.JWTSecret)
	}
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	a.logger.Warn().Msg("JWT_SECRET not set, using a random per-process secret")
	return []byte(hex.EncodeToString(buf))
}
