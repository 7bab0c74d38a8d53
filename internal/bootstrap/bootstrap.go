package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"worktrack/internal/app"
	ledgerinadapter "worktrack/internal/modules/ledger/adapter/in"
	ledgeroutadapter "worktrack/internal/modules/ledger/adapter/out"
	ledgerservice "worktrack/internal/modules/ledger/service"
	ledgerusecase "worktrack/internal/modules/ledger/usecase"
	presenceinadapter "worktrack/internal/modules/presence/adapter/in"
	presenceoutadapter "worktrack/internal/modules/presence/adapter/out"
	presenceservice "worktrack/internal/modules/presence/service"
	presenceusecase "worktrack/internal/modules/presence/usecase"
	reminderoutadapter "worktrack/internal/modules/reminder/adapter/out"
	reminderservice "worktrack/internal/modules/reminder/service"
	settingsoutadapter "worktrack/internal/modules/settings/adapter/out"
	settingsservice "worktrack/internal/modules/settings/service"
	signalinadapter "worktrack/internal/modules/signal/adapter/in"
	signaloutadapter "worktrack/internal/modules/signal/adapter/out"
	signalservice "worktrack/internal/modules/signal/service"
	signalusecase "worktrack/internal/modules/signal/usecase"
	trackinginadapter "worktrack/internal/modules/tracking/adapter/in"
	trackingoutadapter "worktrack/internal/modules/tracking/adapter/out"
	trackingservice "worktrack/internal/modules/tracking/service"
	trackingusecase "worktrack/internal/modules/tracking/usecase"
	"worktrack/internal/platform/clock"
	"worktrack/internal/platform/config"
	"worktrack/internal/platform/id"
	"worktrack/internal/platform/sqlite"
	"worktrack/internal/platform/tx"
	"worktrack/internal/platform/ws"
)

// Daemon is the fully wired worktrack process.
type Daemon struct {
	App *app.App
	db  *sql.DB
}

func (d *Daemon) Close() error {
	return d.db.Close()
}

// NewDaemon opens the database, loads the settings and wires every module.
// Settings that fail to load or validate abort startup.
func NewDaemon(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Daemon, error) {
	clk := clock.SystemClock{}
	loc := cfg.Location()

	db, err := sqlite.Open(ctx, cfg.DBPath())
	if err != nil {
		return nil, err
	}
	daemon, err := wire(ctx, cfg, db, clk, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("daemon wired",
		zap.String("db", cfg.DBPath()),
		zap.String("settings", cfg.SettingsPath()),
		zap.String("zone", loc.String()))
	return daemon, nil
}

func wire(ctx context.Context, cfg config.Config, db *sql.DB, clk clock.Clock, logger *zap.Logger) (*Daemon, error) {
	loc := cfg.Location()
	txm := tx.NewSQLManager(db)
	hub := ws.NewHub(logger)

	settingsSvc := settingsservice.NewSettingsService(
		settingsoutadapter.NewYAMLFileStore(cfg.SettingsPath()),
		settingsoutadapter.NewFileWatcher(cfg.SettingsPath(), settingsoutadapter.DefaultDebounce, logger),
		logger,
	)
	if err := settingsSvc.Reload(ctx); err != nil {
		return nil, err
	}

	ledgerStore, err := ledgeroutadapter.NewSQLiteLedgerStore(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("new ledger store: %w", err)
	}
	ledgerUC := ledgerusecase.NewInteractor(
		ledgerservice.NewLedgerService(clk, id.UUID{}, ledgerStore, ledgerStore),
		ledgeroutadapter.NewMarkdownNoteStore(cfg.NotesDir(), clk),
	)

	stateStore, err := trackingoutadapter.NewSQLiteStateStore(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("new state store: %w", err)
	}
	trackingUC := trackingusecase.NewInteractor(trackingservice.NewOrchestrator(
		trackingoutadapter.NewLedgerBridge(ledgerUC),
		trackingservice.NewStatePersistence(stateStore, logger),
		trackingservice.NewCommutePhaseTracker(),
		trackingoutadapter.NewSettingsPolicySource(settingsSvc, loc),
		txm,
		clk,
		logger,
	))

	presenceConfig := presenceoutadapter.NewSettingsConfigSource(settingsSvc, loc)
	presenceUC := presenceusecase.NewInteractor(presenceservice.NewDebouncer(
		clk,
		presenceConfig,
		presenceservice.NewHomeOfficeGate(presenceoutadapter.NewTrackingBridge(trackingUC), presenceConfig, logger),
		logger,
	))

	scheduler := reminderservice.NewScheduler(
		clk,
		reminderoutadapter.NewLedgerBridge(ledgerUC),
		reminderoutadapter.NewSettingsConfigSource(settingsSvc, loc),
		reminderoutadapter.NewBroadcastNotifier(hub, logger),
		logger,
	)

	signalUC := signalusecase.NewInteractor(signalservice.NewSignalService(
		signaloutadapter.NewFileManifestStore(cfg.SignalManifestPath()),
		signaloutadapter.NewGRPCHost(logger),
		signaloutadapter.NewRouter(trackingUC, presenceUC, clk),
		clk,
		logger,
	))

	workers := []app.Worker{
		{Name: "settings-watcher", Run: settingsSvc.Watch},
		{Name: "reminders", Run: scheduler.Run},
	}
	if cfg.SignalManifestPath() != "" {
		workers = append(workers, app.Worker{Name: "signals", Run: signalUC.Run})
	}

	return &Daemon{
		App: app.New(app.Options{
			Logger:   logger,
			Bind:     cfg.Server.Bind,
			Clock:    clk,
			Hub:      hub,
			Tracking: trackingUC,
			Settings: settingsSvc,
			Presence: presenceUC,
			Handlers: []app.Registrar{
				trackinginadapter.NewHTTPHandler(trackingUC, logger),
				ledgerinadapter.NewHTTPHandler(ledgerUC, loc, logger),
				presenceinadapter.NewHTTPHandler(presenceUC, logger),
				signalinadapter.NewHTTPHandler(signalUC, logger),
			},
			Workers: workers,
		}),
		db: db,
	}, nil
}
