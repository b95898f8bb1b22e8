package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/movie-show-catalog/internal/config"
	"github.com/iliyamo/movie-show-catalog/internal/middleware"
	"github.com/iliyamo/movie-show-catalog/internal/repository"
	"github.com/iliyamo/movie-show-catalog/internal/router"
	"github.com/iliyamo/movie-show-catalog/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log := cur.cfg, cur.log

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		rl := config.LoadRateLimitConfig(cfg.Env)
		cc := config.LoadCacheConfig()

		// Redis backs the shared rate limiter and the response cache.  Without
		// it each instance counts on its own and nothing is cached.
		var limiter middleware.Limiter
		rdb := config.NewRedisClient()
		if rdb != nil {
			defer rdb.Close()
			limiter = middleware.NewRedisLimiter(rdb)
			log.Info().Msg("redis connected; shared rate limiting and response cache enabled")
		} else {
			limiter = middleware.NewMemoryLimiter(time.Minute)
			log.Warn().Msg("redis not configured or unreachable; using in-process rate limiting")
		}
		cache := middleware.NewResponseCache(cc, rdb)

		catalog := service.NewCatalogService(repository.NewEntryRepo(db), service.MetricsListener)
		if cache != nil {
			catalog.AddListener(cache)
		}
		if cfg.RabbitMQURL != "" {
			pub := service.NewEventPublisher(cfg.RabbitMQURL)
			defer pub.Close()
			catalog.AddListener(pub)
		}

		e := router.New(router.Deps{
			Config:    cfg,
			RateLimit: rl,
			Limiter:   limiter,
			Cache:     cache,
			Catalog:   catalog,
			Logger:    log,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := ":" + cfg.Port
		errc := make(chan error, 1)
		go func() {
			log.Info().Str("addr", addr).Str("env", cfg.Env).Str("db", cfg.DBDriver).Msg("listening")
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
			close(errc)
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	},
}
