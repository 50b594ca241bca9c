package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/med-delivery-golang/internal/auth"
	"github.com/01moynul/med-delivery-golang/internal/cart"
	"github.com/01moynul/med-delivery-golang/internal/catalog"
	"github.com/01moynul/med-delivery-golang/internal/config"
	"github.com/01moynul/med-delivery-golang/internal/database"
	"github.com/01moynul/med-delivery-golang/internal/events"
	"github.com/01moynul/med-delivery-golang/internal/handlers"
	"github.com/01moynul/med-delivery-golang/internal/logger"
	"github.com/01moynul/med-delivery-golang/internal/metrics"
	"github.com/01moynul/med-delivery-golang/internal/order"
	"github.com/01moynul/med-delivery-golang/internal/routes"
	"github.com/01moynul/med-delivery-golang/internal/store"
	"github.com/01moynul/med-delivery-golang/internal/store/memory"
	"github.com/01moynul/med-delivery-golang/internal/store/mysql"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("med-delivery: %v", err)
	}
}

func run() error {
	// 0. --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 1. --- Logging ---
	lg, err := logger.New(logger.Options{
		Service: "med-delivery",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  cfg.LogOutput,
		File:    cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. --- Storage ---
	st, err := openStore(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer st.Close()

	// 3. --- Services ---
	pub := events.New(cfg.KafkaBrokers)
	defer pub.Close()
	m := metrics.New("meds")

	medicines := catalog.NewService(st, lg)
	if cfg.SeedCatalog {
		n, err := medicines.Seed(ctx, catalog.DefaultMedicines())
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		lg.Info("catalog seeded", "added", n)
	}

	app := &handlers.Handlers{
		Carts:   cart.NewCoordinator(st, pub, m, lg),
		Orders:  order.NewService(st, pub, m, lg),
		Catalog: medicines,
		Shops:   catalog.NewShopService(st, lg),
		Log:     lg,
	}

	// 4. --- Router ---
	gin.SetMode(gin.ReleaseMode)
	router := routes.SetupRouter(app, routes.Options{
		Tokens:     auth.NewManager(cfg.JWTSecret, 0),
		Metrics:    m,
		Log:        lg,
		CORSOrigin: cfg.CORSOrigin,
		StaticDir:  cfg.StaticDir,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 5. --- Run until a signal arrives ---
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("starting med-delivery API server", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		lg.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.AuditInterval > 0 {
		g.Go(func() error {
			return app.Carts.RunAudit(gctx, cfg.AuditInterval)
		})
	}
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config, lg *slog.Logger) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		lg.Warn("using in-memory store; data is lost on restart")
		return memory.New(), nil
	}

	db, err := database.OpenDBWithDSN(ctx, cfg.DSN, database.PoolOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, lg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return mysql.New(db), nil
}
