package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/misedainspect/itpnotify/internal/auth/http"
	"github.com/misedainspect/itpnotify/internal/auth/notify"
	"github.com/misedainspect/itpnotify/internal/auth/oauth"
	"github.com/misedainspect/itpnotify/internal/auth/service"
	"github.com/misedainspect/itpnotify/internal/auth/store"
	"github.com/misedainspect/itpnotify/internal/auth/store/drivers/sqlite"
	"github.com/misedainspect/itpnotify/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the auth service together: store, services, HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	tokenService  *service.TokenService
	authService   *service.AuthService
	githubService *service.GithubService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "itpnotify-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the HTTP server and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Secret: []byte(app.cfg.JWTSecret),
		Issuer: app.cfg.Issuer,
		TTL:    service.DefaultSessionTTL,
	}

	app.authService = &service.AuthService{
		Store:  app.db,
		Tokens: app.tokenService,
		Email: notify.NewSMTPSender(notify.SMTPConfig{
			Host:      app.cfg.SMTPHost,
			Port:      app.cfg.SMTPPort,
			Username:  app.cfg.SMTPUsername,
			Password:  app.cfg.SMTPPassword,
			From:      app.cfg.SMTPFrom,
			ClientURL: app.cfg.ClientURL,
		}),
		SMS: notify.NewSMSAdvertSender(app.cfg.SMSAPIToken),
	}

	app.githubService = &service.GithubService{
		Store:  app.db,
		Tokens: app.tokenService,
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.cfg.ClientURL, app.cfg.SecureCookies(), app.cfg.Env != "prod", app.logger)
	router.AuthService = app.authService
	router.TokenService = app.tokenService
	router.GithubService = app.githubService

	if app.cfg.GithubEnabled() {
		router.GithubClient = oauth.NewGithubClient(oauth.GithubConfig{
			ClientID:     app.cfg.GithubClientID,
			ClientSecret: app.cfg.GithubClientSecret,
			RedirectURL:  app.cfg.GithubRedirectURL,
		})
	} else {
		app.logger.Warn("github oauth disabled: client credentials not configured")
	}

	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
