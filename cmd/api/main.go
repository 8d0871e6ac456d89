package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/pawfinderz-backend/api/routes"
	"github.com/angelmondragon/pawfinderz-backend/internal/admin"
	"github.com/angelmondragon/pawfinderz-backend/internal/auth"
	"github.com/angelmondragon/pawfinderz-backend/internal/groupposts"
	"github.com/angelmondragon/pawfinderz-backend/internal/groups"
	"github.com/angelmondragon/pawfinderz-backend/internal/pets"
	"github.com/angelmondragon/pawfinderz-backend/internal/uploads"
	"github.com/angelmondragon/pawfinderz-backend/internal/users"
	"github.com/angelmondragon/pawfinderz-backend/pkg/auth/session"
	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
	"github.com/angelmondragon/pawfinderz-backend/pkg/db"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
	"github.com/angelmondragon/pawfinderz-backend/pkg/metrics"
	"github.com/angelmondragon/pawfinderz-backend/pkg/migrate"
	"github.com/angelmondragon/pawfinderz-backend/pkg/redis"
	"github.com/angelmondragon/pawfinderz-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	domainMetrics := metrics.NewDomainMetrics(reg)

	svcs, err := buildServices(ctx, cfg, logg, dbClient, redisClient, sessionManager, domainMetrics)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, reg, metrics.NewHTTPMetrics(reg), svcs),
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr}), "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
	domainMetrics *metrics.DomainMetrics,
) (routes.Services, error) {
	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	petRepo := pets.NewRepository(conn)
	groupRepo := groups.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Services{}, err
	}
	userService, err := users.NewService(userRepo)
	if err != nil {
		return routes.Services{}, err
	}
	petService, err := pets.NewService(pets.ServiceParams{
		Repo:       petRepo,
		Tx:         dbClient,
		Views:      redisClient,
		ViewWindow: cfg.Pets.ViewDebounceWindow,
		Metrics:    domainMetrics,
		Logger:     logg,
	})
	if err != nil {
		return routes.Services{}, err
	}
	groupService, err := groups.NewService(groups.ServiceParams{
		Repo:    groupRepo,
		Tx:      dbClient,
		Metrics: domainMetrics,
		Logger:  logg,
	})
	if err != nil {
		return routes.Services{}, err
	}
	postService, err := groupposts.NewService(groupposts.ServiceParams{
		Repo:    groupposts.NewRepository(conn),
		Groups:  groupRepo,
		Tx:      dbClient,
		Metrics: domainMetrics,
		Logger:  logg,
	})
	if err != nil {
		return routes.Services{}, err
	}
	adminService, err := admin.NewService(admin.ServiceParams{
		Repo:       admin.NewRepository(conn),
		Users:      userRepo,
		Pets:       petRepo,
		PetService: petService,
		Tx:         dbClient,
		Logger:     logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	uploadParams := uploads.ServiceParams{
		MaxBytes: cfg.Upload.MaxBytes(),
		Metrics:  domainMetrics,
		Logger:   logg,
	}
	if cfg.FeatureFlags.Uploads && cfg.GCS.BucketName != "" {
		store, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return routes.Services{}, err
		}
		uploadParams.Store = store
	} else {
		logg.Warn(ctx, "uploads disabled: no bucket configured")
	}

	return routes.Services{
		Auth:    authService,
		Users:   userService,
		Pets:    petService,
		Groups:  groupService,
		Posts:   postService,
		Uploads: uploads.NewService(uploadParams),
		Admin:   adminService,
	}, nil
}
