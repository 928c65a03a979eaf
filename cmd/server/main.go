// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "drawer-service/docs"
	"drawer-service/internal/config"
	"drawer-service/internal/database"
	"drawer-service/internal/drawer"
	"drawer-service/internal/events"
	"drawer-service/internal/handler"
	"drawer-service/internal/metrics"
	"drawer-service/internal/repository"
	"drawer-service/internal/routes"
	"drawer-service/internal/service"
	"drawer-service/internal/updater"
	"drawer-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB

	bus           *events.Bus
	manager       *drawer.Manager
	operationRepo repository.OperationRepository
	drawerService *service.DrawerService
	updater       *updater.Updater
	wsHandler     *handler.WebSocketHandler

	ctx    context.Context
	cancel context.CancelFunc

	restartOnce sync.Once
	restart     chan struct{}
}

// @title Cash Drawer Service API
// @version 1.0.0
// @description Local service that drives a receipt-printer cash drawer over a serial port

// @contact.name Drawer Service Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8085
// @BasePath /api/v1
func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// The logger is closed once Start returns
	if err := app.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Application exited with error: %v\n", err)
		os.Exit(1)
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "drawer-service")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		config:  cfg,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		restart: make(chan struct{}),
	}

	if err := app.initializeStorage(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.initializeDrawer()
	app.initializeUpdater()

	if err := app.initializeServer(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeStorage picks the audit log backend. Postgres is used only when
// enabled; otherwise operations are kept in a bounded in-memory ring.
func (app *Application) initializeStorage() error {
	if !app.config.Database.Enabled {
		app.operationRepo = repository.NewMemoryOperationRepository(app.config.Database.MemoryCapacity)
		app.logger.Info("Using in-memory operation log",
			zap.Int("capacity", app.config.Database.MemoryCapacity),
		)
		return nil
	}

	db, err := database.NewConnection(app.config, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	app.database = db

	if err := database.NewMigrator(db, app.logger).Up(); err != nil {
		db.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	app.operationRepo = repository.NewOperationRepository(db.DB, app.logger)
	app.logger.Info("Database initialized successfully")
	return nil
}

func (app *Application) initializeDrawer() {
	app.bus = events.NewBus(app.logger)
	go app.bus.Start()

	app.manager = drawer.NewManager(
		drawer.NewSerialOpener(app.config.Drawer.ReadTimeout, app.logger),
		drawer.NewSerialEnumerator(app.logger),
		app.bus,
		app.logger,
	)

	// Validated at config load
	defaultCommand, _ := drawer.ParseCommand(app.config.Drawer.DefaultCommand)
	app.drawerService = service.NewDrawerService(app.manager, app.operationRepo, defaultCommand, app.logger)

	app.wsHandler = handler.NewWebSocketHandler(app.drawerService, app.bus, app.config.Security.AllowedOrigins, app.logger)
	app.wsHandler.Start(app.ctx)

	go app.trackConnection(app.bus.Subscribe(events.AllEvents))
}

// trackConnection keeps the connected gauge in step with unsolicited
// disconnects that happen outside any API call
func (app *Application) trackConnection(sub <-chan events.Event) {
	for {
		select {
		case <-app.ctx.Done():
			return
		case event := <-sub:
			switch event.Type {
			case events.DrawerConnected:
				metrics.SetConnected(true)
			case events.DrawerDisconnected:
				metrics.SetConnected(false)
			}
		}
	}
}

func (app *Application) initializeUpdater() {
	if !app.config.Update.Enabled {
		return
	}
	app.updater = updater.New(updater.Options{
		FeedURL:        app.config.Update.FeedURL,
		CurrentVersion: app.config.Update.CurrentVersion,
		DownloadDir:    app.config.Update.DownloadDir,
		HTTPClient:     &http.Client{Timeout: app.config.Update.HTTPTimeout},
		Restart:        app.requestRestart,
	}, app.bus, app.logger)
}

func (app *Application) initializeServer() error {
	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		app.database,
		app.drawerService,
		app.updater,
		app.wsHandler,
	)

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      routerManager.SetupRouter(),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)
	return nil
}

// connectOnStartup opens the configured port, or the first enumerated one
// when auto-connect is enabled. Failures are logged; the API stays usable.
func (app *Application) connectOnStartup() {
	ctx := service.WithRequestID(app.ctx, "startup")

	switch {
	case app.config.Drawer.Port != "":
		if _, err := app.drawerService.Connect(ctx, app.config.Drawer.Port, app.config.Drawer.DefaultBaudRate); err != nil {
			app.logger.Warn("Startup connect failed", zap.Error(err))
		}
	case app.config.Drawer.AutoConnect:
		if _, err := app.drawerService.AutoConnect(ctx); err != nil {
			app.logger.Warn("Startup auto-connect failed", zap.Error(err))
		}
	}
}

func (app *Application) startBackgroundServices() {
	go app.connectOnStartup()
	go app.startCleanupService()

	if app.updater != nil {
		go app.updater.Run(app.ctx, app.config.Update.CheckInterval, app.config.Update.AutoDownload)
	}

	app.logger.Info("Background services started")
}

// startCleanupService trims the operation log to the retention window
func (app *Application) startCleanupService() {
	interval := app.config.Database.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(app.ctx, 5*time.Minute)
			deleted, err := app.drawerService.CleanupOperations(ctx, app.config.Database.Retention)
			cancel()
			if err != nil {
				app.logger.Error("Failed to cleanup old operations", zap.Error(err))
			} else if deleted > 0 {
				app.logger.Info("Cleaned up old operations", zap.Int64("deleted", deleted))
			}
		}
	}
}

// requestRestart is the updater's restart hook. It returns at once so the
// install request can be answered before the server goes down.
func (app *Application) requestRestart() error {
	app.restartOnce.Do(func() {
		utils.NewAuditLogger(app.logger).LogUpdateInstalled(
			app.updater.CurrentVersion(),
			app.updater.Status().AvailableVersion,
		)
		close(app.restart)
	})
	return nil
}

func (app *Application) waitForShutdown() (restart bool) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		app.shutdown("shutdown signal received")
		return false
	case <-app.restart:
		// Let the install response reach the client
		time.Sleep(500 * time.Millisecond)
		app.shutdown("restarting after update")
		return true
	}
}

// shutdown stops the HTTP server, closes the serial port and storage
func (app *Application) shutdown(reason string) {
	utils.NewServiceLogger(app.logger, "drawer-service").LogServiceStop(reason)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	app.cancel()
	app.manager.Close()
	app.bus.Close()

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	app.logger.Info("Application shutdown completed")
}

// finish relaunches the updated executable when restart is set, then flushes
// the logger. A relaunch failure is logged before the logger is closed.
func (app *Application) finish(restart bool, relaunch func() error) error {
	var err error
	if restart {
		if err = relaunch(); err != nil {
			err = fmt.Errorf("failed to relaunch after update: %w", err)
			app.logger.Error("Relaunch failed", zap.Error(err))
		} else {
			app.logger.Info("Relaunched updated executable")
		}
	}

	if closeErr := utils.CloseLogger(app.logger); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Logger close error: %v\n", closeErr)
	}
	return err
}

// relaunch starts the freshly installed executable with the same arguments
func relaunch() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	return cmd.Start()
}

// Start runs the server until a shutdown signal or an update restart
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server", zap.String("address", app.server.Addr))

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.startBackgroundServices()

	return app.finish(app.waitForShutdown(), relaunch)
}
