package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"github.com/venezia/venezia-pos/api/posv1"
	"github.com/venezia/venezia-pos/internal/auth"
	"github.com/venezia/venezia-pos/internal/httpx"

	catalogapp "github.com/venezia/venezia-pos/internal/catalog/app"
	cgrpc "github.com/venezia/venezia-pos/internal/catalog/grpc"
	cpg "github.com/venezia/venezia-pos/internal/catalog/infra/postgres"
	crest "github.com/venezia/venezia-pos/internal/catalog/rest"

	discountapp "github.com/venezia/venezia-pos/internal/discount/app"
	dgrpc "github.com/venezia/venezia-pos/internal/discount/grpc"
	dpg "github.com/venezia/venezia-pos/internal/discount/infra/postgres"
	drest "github.com/venezia/venezia-pos/internal/discount/rest"

	salesapp "github.com/venezia/venezia-pos/internal/sales/app"
	sgrpc "github.com/venezia/venezia-pos/internal/sales/grpc"
	salesadapter "github.com/venezia/venezia-pos/internal/sales/infra/adapter"
	spg "github.com/venezia/venezia-pos/internal/sales/infra/postgres"
	"github.com/venezia/venezia-pos/internal/sales/notify"
	srest "github.com/venezia/venezia-pos/internal/sales/rest"

	"github.com/venezia/venezia-pos/pkg/config"
	"github.com/venezia/venezia-pos/pkg/logger"
	"github.com/venezia/venezia-pos/pkg/postgres"
	"github.com/venezia/venezia-pos/pkg/shutdown"
)

const stopBudget = 10 * time.Second

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST and gRPC servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log := logger.New(logger.Options{Service: "posd", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})
			return serve(cmd.Context(), cfg, log, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "create or update tables on start")
	return cmd
}

func serve(parent context.Context, cfg config.Config, log *slog.Logger, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := shutdown.WithSignals(parent, log)
	defer cancel()

	db, err := postgres.Open(postgres.Config{
		DSN:          cfg.PostgresDSN(),
		MaxOpenConns: 20,
		MaxIdleConns: 5,
		MaxLifetime:  30 * time.Minute,
		LogSQL:       cfg.LogLevel == "debug",
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("db close error", slog.Any("err", err))
		}
	}()

	if migrate {
		if err := migrateAll(db); err != nil {
			return err
		}
	}

	guard, err := newGuard(cfg, log)
	if err != nil {
		return err
	}

	// Catalog
	catalogSvc := catalogapp.NewService(cpg.NewProductRepo(db))

	// Discount codes
	discountSvc := discountapp.NewService(dpg.NewCodeRepo(db))

	// Sales (adapters over the other contexts)
	hub := notify.NewHub(log)
	defer hub.Close()
	salesSvc := salesapp.NewService(
		spg.NewSaleRepo(db),
		salesadapter.NewCatalogServiceReader(catalogSvc),
		log,
		salesapp.WithCodeRedeemer(salesadapter.NewDiscountCodeRedeemer(discountSvc)),
		salesapp.WithNotifier(hub),
	)

	admin := guard.Chain(auth.RoleAdmin)
	staff := guard.Chain(auth.RoleAdmin, auth.RoleManager, auth.RoleCashier)

	router := newRouter(log)
	api := router.Group("/api")
	crest.NewHandler(catalogSvc).Register(api, admin...)
	drest.NewHandler(discountSvc).Register(api, admin, staff)
	srest.NewHandler(salesSvc, hub).Register(api, admin, staff)

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", grpcAddr, err)
	}

	grpcServer := grpc.NewServer()
	posv1.RegisterCatalogServiceServer(grpcServer, cgrpc.NewServer(catalogSvc))
	posv1.RegisterDiscountServiceServer(grpcServer, dgrpc.NewServer(discountSvc))
	posv1.RegisterSalesServiceServer(grpcServer, sgrpc.NewServer(salesSvc))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", httpAddr), slog.Bool("auth", guard.Enabled()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc server starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		stopServers(log, httpServer, grpcServer)
		return nil
	})

	err = g.Wait()
	log.Info("bye")
	return err
}

func migrateAll(db *gorm.DB) error {
	steps := []struct {
		name string
		run  func(*gorm.DB) error
	}{
		{"catalog", cpg.Migrate},
		{"discount", dpg.Migrate},
		{"sales", spg.Migrate},
	}
	for _, s := range steps {
		if err := s.run(db); err != nil {
			return fmt.Errorf("migrate %s: %w", s.name, err)
		}
	}
	return nil
}

func newGuard(cfg config.Config, log *slog.Logger) (*auth.Guard, error) {
	if !cfg.EnableAuth {
		log.Warn("auth disabled, every request runs as admin")
		return auth.NewGuard(nil, false), nil
	}
	issuer, err := auth.NewIssuer(cfg.JWTSecret, 0)
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "change-me" {
		log.Warn("JWT_SECRET is the default value")
	}
	return auth.NewGuard(issuer, true), nil
}

func newRouter(log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestLog(log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/readyz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func stopServers(log *slog.Logger, httpServer *http.Server, grpcServer *grpc.Server) {
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopBudget)
	defer stopCancel()

	if err := httpServer.Shutdown(stopCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopCtx.Done():
		log.Warn("graceful stop timeout, forcing stop")
		grpcServer.Stop()
	case <-stopped:
	}
}
