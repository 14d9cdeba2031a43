// internal/app/server.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"galaxy-airline/internal/config"
	"galaxy-airline/internal/db"
	domain "galaxy-airline/internal/domain/auth"
	authHandler "galaxy-airline/internal/handlers/auth"
	"galaxy-airline/internal/middleware"
	"galaxy-airline/internal/obs"
	"galaxy-airline/internal/pkg/jwt"
	"galaxy-airline/internal/pkg/session"
	"galaxy-airline/internal/repository/memory"
	"galaxy-airline/internal/repository/postgres"
	authUsecase "galaxy-airline/internal/service/auth"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	cfg         config.AppConfig
	engine      *gin.Engine
	logger      *zap.Logger
	metrics     *obs.Metrics
	authService *authUsecase.AuthService

	pg    *sql.DB
	redis *redis.Client
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	return &Server{
		cfg:     cfg,
		engine:  gin.New(),
		logger:  logger,
		metrics: obs.NewMetrics(),
	}
}

// Init connects storage, seeds accounts and builds the router.
func (s *Server) Init(ctx context.Context) error {
	// ----- Accounts -----
	var accounts domain.AccountRepository
	if s.cfg.DatabaseURL != "" {
		pg, err := db.ConnectPostgres(ctx, db.PostgresConfig{DSN: s.cfg.DatabaseURL, MaxOpenConns: 10, MaxIdleConns: 5})
		if err != nil {
			return err
		}
		s.pg = pg
		if err := postgres.EnsureSchema(ctx, pg); err != nil {
			return err
		}
		accounts = postgres.NewAccountRepository(pg)
		s.logger.Info("accounts stored in postgres")
	} else {
		accounts = memory.NewAccountRepository()
		s.logger.Warn("DATABASE_URL not set, accounts are kept in memory")
	}

	// ----- Redis -----
	var (
		sessions authUsecase.SessionStore
		limiter  authUsecase.LoginLimiter
	)
	if s.cfg.RedisAddr != "" {
		client, err := db.NewRedisClient(ctx, db.RedisConfig{Addr: s.cfg.RedisAddr, Password: s.cfg.RedisPass, PoolSize: 10})
		if err != nil {
			return err
		}
		s.redis = client
		sessions = session.NewManager(client, s.logger)
		limiter = session.NewRateLimiter(client)
		s.logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))
	} else {
		s.logger.Warn("REDIS_ADDR not set, tokens cannot be revoked and logins are not throttled")
	}

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}
	if s.cfg.JWT.Ephemeral() {
		s.logger.Warn("JWT key paths not set, using an ephemeral signing key")
	}

	// ----- Services -----
	s.authService = authUsecase.NewAuthService(
		accounts,
		jwtManager,
		sessions,
		limiter,
		s.metrics,
		authUsecase.Options{PrivilegedEmails: s.cfg.PrivilegedEmails, BcryptCost: s.cfg.BcryptCost},
		s.logger,
	)

	if s.cfg.SeedAccounts {
		if err := s.seedAccounts(ctx); err != nil {
			s.logger.Error("failed to seed accounts", zap.Error(err))
		}
	}

	// ----- Router -----
	s.engine.Use(
		middleware.RequestID(),
		middleware.RecoveryMiddleware(s.logger),
		middleware.AccessLog(s.logger),
		middleware.CORS(s.cfg.CORSOrigins),
		s.metrics.Instrument(),
	)
	SetupRouter(s.engine, &Handlers{
		AuthHandler:    authHandler.NewAuthHandler(s.authService, s.logger),
		AuthMiddleware: middleware.NewAuthMiddleware(s.authService),
		Metrics:        s.metrics.Handler(),
	})
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("identity service listening", zap.String("addr", s.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down identity service")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases storage connections.
func (s *Server) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.pg != nil {
		errs = append(errs, s.pg.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) seedAccounts(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.authService.EnsureSeedAccounts(ctx, []authUsecase.SeedAccount{
		{Email: s.cfg.AdminEmail, Password: s.cfg.AdminPassword, Name: s.cfg.AdminName, Admin: true},
		{Email: s.cfg.DemoEmail, Password: s.cfg.DemoPassword, Name: s.cfg.DemoName},
	})
}
