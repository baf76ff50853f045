package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"menu-admin-go/auth"
	"menu-admin-go/backend"
	"menu-admin-go/config"
	"menu-admin-go/db"
	"menu-admin-go/frontend"
	"menu-admin-go/handlers"
	"menu-admin-go/logger"
	"menu-admin-go/metric"
	"menu-admin-go/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API and the admin pages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.SeedData {
		if _, err := db.SeedIfEmpty(ctx, store); err != nil {
			logger.GetLogger().Warnw("could not seed menu items", "error", err)
		}
	}

	users, err := auth.NewUsersFromConfig(cfg.Auth)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := newRouter(cfg, store, users, reg)

	logger.GetLogger().Infow("starting server", "port", cfg.Port, "store", cfg.Store, "backend", cfg.BackendURL)
	srv := server.New(router,
		server.WithPort(cfg.Port),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
		server.WithWriteTimeout(writeTimeout(cfg)),
	)
	return srv.Serve(ctx)
}

// pageRenderSlack is what a page needs beyond its backend round trip.
const pageRenderSlack = 5 * time.Second

// writeTimeout keeps the server's write deadline above the pages' backend
// timeout, so a slow API answer still reaches the browser.
func writeTimeout(cfg *config.Config) time.Duration {
	if d := cfg.BackendTimeout + pageRenderSlack; d > server.DefaultWriteTimeout {
		return d
	}
	return server.DefaultWriteTimeout
}

// newRouter wires the API, the pages and the operational endpoints onto
// one engine. The pages reach the API over HTTP at cfg.BackendURL.
func newRouter(cfg *config.Config, store db.MenuItemStore, users *auth.Users, reg *prometheus.Registry) *gin.Engine {
	metrics := metric.NewSet(reg)
	sessions := auth.NewSessions(cfg.Auth.SessionSecret)

	router := gin.New()
	router.Use(logger.GinMiddleware(), gin.Recovery())

	router.GET("/healthz", handlers.HealthHandler)
	router.GET("/readyz", handlers.ReadyHandler(store))
	router.GET("/metrics", gin.WrapH(metric.GetHandlerForRegistry(reg)))
	router.GET("/api/currentUser", sessions.CurrentUserHandler)

	handlers.NewAPIHandler(store, metrics).Register(router, sessions)

	client := backend.NewClient(cfg.BackendURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithCache(backend.NewQueryCache(cfg.QueryStaleAfter)),
		backend.WithMetrics(metrics),
	)
	client.Subscribe(func(ev backend.InvalidationEvent) {
		logger.GetLogger().Debugw("queries invalidated", "kind", ev.Kind, "keys", ev.AffectedKeys)
	})
	frontend.NewPages(client, sessions, users).Register(router)

	return router
}
