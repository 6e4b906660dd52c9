package bootstrap

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	importerinadapter "pokerlog/internal/modules/importer/adapter/in"
	importeroutadapter "pokerlog/internal/modules/importer/adapter/out"
	importerservice "pokerlog/internal/modules/importer/service"
	importerusecase "pokerlog/internal/modules/importer/usecase"
	sessioninadapter "pokerlog/internal/modules/session/adapter/in"
	sessionoutadapter "pokerlog/internal/modules/session/adapter/out"
	"pokerlog/internal/modules/session/domain"
	sessionservice "pokerlog/internal/modules/session/service"
	sessionusecase "pokerlog/internal/modules/session/usecase"
	"pokerlog/internal/platform/clock"
	"pokerlog/internal/platform/config"
	"pokerlog/internal/platform/id"
	"pokerlog/internal/platform/logging"
	uiapp "pokerlog/internal/ui/app"
)

type App struct {
	SessionCLI sessioninadapter.CLIHandler
	ImportCLI  importerinadapter.CLIHandler
	Logger     *zap.Logger

	store *sessionoutadapter.SQLiteSessionStore
}

func New(cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}
	clk := clock.SystemClock{}
	ids := id.UUID{}

	registry := domain.NewGameTypeRegistry(cfg.Session.CustomGameTypes)
	store, err := sessionoutadapter.NewSQLiteSessionStore(cfg.DBPath, registry)
	if err != nil {
		return nil, fmt.Errorf("new session store: %w", err)
	}

	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewLifecycleManager(clk, ids, store, cfg.Session.SeatsPerTable),
		sessionusecase.Deps{
			Repo:        store,
			Finder:      store,
			ActiveStore: sessionoutadapter.NewFileActiveSlotStore(cfg.DataDir),
			Structures:  sessionoutadapter.NewYAMLStructureStore(cfg.StructuresPath),
			Recaps:      sessionoutadapter.NewVaultRecapWriter(cfg.RecapDir),
			Settings:    cfg.Session,
			Logger:      logger,
		},
	)
	importUC := importerusecase.NewInteractor(
		importerservice.NewImportService(clk, ids, store),
		importeroutadapter.NewFileSource(),
		logger,
	)

	logger.Debug("app ready", zap.String("data_dir", cfg.DataDir), zap.String("db", cfg.DBPath))
	return &App{
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		ImportCLI:  importerinadapter.NewCLIHandler(importUC),
		Logger:     logger,
		store:      store,
	}, nil
}

func (a *App) Close() error {
	_ = a.Logger.Sync()
	return a.store.Close()
}

func RunHUD(app *App) error {
	program := tea.NewProgram(uiapp.NewModel(app.SessionCLI), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
