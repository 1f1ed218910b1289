// Package app provides the dependency injection container assembling the
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	authHTTP "github.com/icarushq/icarus/internal/auth/http"
	authService "github.com/icarushq/icarus/internal/auth/service"
	authUsecase "github.com/icarushq/icarus/internal/auth/usecase"
	"github.com/icarushq/icarus/internal/config"
	"github.com/icarushq/icarus/internal/database"
	"github.com/icarushq/icarus/internal/event"
	"github.com/icarushq/icarus/internal/http"
	"github.com/icarushq/icarus/internal/metrics"
	permissionHTTP "github.com/icarushq/icarus/internal/permission/http"
	permissionUsecase "github.com/icarushq/icarus/internal/permission/usecase"
	userHTTP "github.com/icarushq/icarus/internal/user/http"
	userUsecase "github.com/icarushq/icarus/internal/user/usecase"

	"github.com/gin-gonic/gin"
)

// Container holds all application dependencies and provides methods to
// access them. Components are created lazily on first access.
//
// Repositories are deliberately absent from the container: they are scoped
// to one unit of work, so the use case accessors return adapters that build
// a fresh repository set per operation (see scoped_usecases.go).
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	dispatcher      *event.Registry
	passwordService authService.PasswordService
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Use cases
	authenticationUseCase authUsecase.AuthenticationUseCase
	tokenUseCase          authUsecase.TokenUseCase
	userUseCase           userUsecase.UseCase
	permissionUseCase     permissionUsecase.PermissionUseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	dispatcherInit      sync.Once
	passwordServiceInit sync.Once
	metricsInit         sync.Once
	authUseCaseInit     sync.Once
	tokenUseCaseInit    sync.Once
	userUseCaseInit     sync.Once
	permUseCaseInit     sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the
// provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// Dispatcher returns the event registry used for domain event dispatch.
func (c *Container) Dispatcher() *event.Registry {
	c.dispatcherInit.Do(func() {
		c.dispatcher = c.initDispatcher()
	})
	return c.dispatcher
}

// PasswordService returns the argon2id password service.
func (c *Container) PasswordService() authService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = authService.NewPasswordService()
	})
	return c.passwordService
}

// MetricsProvider returns the metrics provider, or nil when metrics are
// disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	if err := c.ensureMetrics(); err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder
// is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	if err := c.ensureMetrics(); err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

func (c *Container) ensureMetrics() error {
	c.metricsInit.Do(func() {
		if !c.config.MetricsEnabled {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}

		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metrics"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}

		business, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}

		c.metricsProvider = provider
		c.businessMetrics = business
	})
	if storedErr, exists := c.initErrors["metrics"]; exists {
		return storedErr
	}
	return nil
}

// AuthenticationUseCase returns the credential authentication use case,
// instrumented with business metrics.
func (c *Container) AuthenticationUseCase() (authUsecase.AuthenticationUseCase, error) {
	c.authUseCaseInit.Do(func() {
		business, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["authenticationUseCase"] = err
			return
		}
		c.authenticationUseCase = authUsecase.NewAuthenticationUseCaseWithMetrics(
			&scopedAuthenticationUseCase{container: c},
			business,
		)
	})
	if storedErr, exists := c.initErrors["authenticationUseCase"]; exists {
		return nil, storedErr
	}
	return c.authenticationUseCase, nil
}

// TokenUseCase returns the bearer token use case, instrumented with
// business metrics.
func (c *Container) TokenUseCase() (authUsecase.TokenUseCase, error) {
	c.tokenUseCaseInit.Do(func() {
		business, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}
		c.tokenUseCase = authUsecase.NewTokenUseCaseWithMetrics(
			&scopedTokenUseCase{container: c},
			business,
		)
	})
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// UserUseCase returns the user registration and lookup use case.
func (c *Container) UserUseCase() (userUsecase.UseCase, error) {
	c.userUseCaseInit.Do(func() {
		c.userUseCase = &scopedUserUseCase{container: c}
	})
	return c.userUseCase, nil
}

// PermissionUseCase returns the role management and permission check use
// case, instrumented with business metrics.
func (c *Container) PermissionUseCase() (permissionUsecase.PermissionUseCase, error) {
	c.permUseCaseInit.Do(func() {
		business, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["permissionUseCase"] = err
			return
		}
		c.permissionUseCase = permissionUsecase.NewPermissionUseCaseWithMetrics(
			&scopedPermissionUseCase{container: c},
			business,
		)
	})
	if storedErr, exists := c.initErrors["permissionUseCase"]; exists {
		return nil, storedErr
	}
	return c.permissionUseCase, nil
}

// HTTPServer returns the main API server with all routes registered.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the standalone metrics server, or nil when metrics
// are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates a structured logger based on the configured log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initDispatcher creates the event registry with the default listeners:
// a structured log line per domain event.
func (c *Container) initDispatcher() *event.Registry {
	logger := c.Logger()
	registry := event.NewRegistry(logger)

	registry.RegisterFunc(func(ctx context.Context, domainEvent any) {
		logger.Debug("domain event dispatched",
			slog.String("event", fmt.Sprintf("%T", domainEvent)),
		)
	})

	return registry
}

// initHTTPServer creates the API server with its middleware stack and route
// registrars.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	authenticationUseCase, err := c.AuthenticationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get authentication use case for http server: %w", err)
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}

	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for http server: %w", err)
	}

	permissionUseCase, err := c.PermissionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission use case for http server: %w", err)
	}

	guard := authHTTP.AuthenticationMiddleware(tokenUseCase, logger)

	var loginRateLimit gin.HandlerFunc
	if c.config.RateLimitTokenEnabled {
		loginRateLimit = authHTTP.LoginRateLimitMiddleware(
			c.config.RateLimitTokenRequestsPerSec,
			c.config.RateLimitTokenBurst,
			logger,
		)
	}

	var authedRateLimit gin.HandlerFunc
	if c.config.RateLimitEnabled {
		authedRateLimit = authHTTP.RateLimitMiddleware(
			c.config.RateLimitRequestsPerSec,
			c.config.RateLimitBurst,
			logger,
		)
	}

	tokenHandler := authHTTP.NewTokenHandler(
		authenticationUseCase,
		tokenUseCase,
		guard,
		loginRateLimit,
		authedRateLimit,
		logger,
	)
	userHandler := userHTTP.NewUserHandler(userUseCase, guard, authedRateLimit, logger)
	roleHandler := permissionHTTP.NewRoleHandler(permissionUseCase, guard, authedRateLimit, logger)

	routerConfig := http.RouterConfig{
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
		MetricsNamespace: c.config.MetricsNamespace,
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider != nil {
		routerConfig.MeterProvider = provider.MeterProvider()
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(routerConfig, tokenHandler, userHandler, roleHandler)

	return server, nil
}
