package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cschleiden/go-workflows/backend"
	wfsqlite "github.com/cschleiden/go-workflows/backend/sqlite"
	"github.com/cschleiden/go-workflows/client"
	"github.com/cschleiden/go-workflows/worker"
	"github.com/dbos-inc/dbos-transact-golang/dbos"
	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/fleetshift/imagemgmt/internal/application"
	"github.com/fleetshift/imagemgmt/internal/config"
	"github.com/fleetshift/imagemgmt/internal/domain"
	"github.com/fleetshift/imagemgmt/internal/infrastructure/dbosworkflows"
	"github.com/fleetshift/imagemgmt/internal/infrastructure/goworkflows"
	"github.com/fleetshift/imagemgmt/internal/infrastructure/sqlite"
	"github.com/fleetshift/imagemgmt/internal/infrastructure/syncworkflow"
)

// app wires the store and the application services for one command
// invocation.
type app struct {
	cfg *config.Config
	db  *sql.DB

	types    *sqlite.ImageTypeRepo
	versions *sqlite.ImageVersionRepo
	plans    *sqlite.RampupPlanRepo
	records  *sqlite.DispatchRecordRepo
	resolver *domain.VersionResolver

	images     *application.ImageService
	rampup     *application.RampupPlanService
	resolution *application.ResolutionService

	closers []func()
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		db:       db,
		types:    &sqlite.ImageTypeRepo{DB: db},
		versions: &sqlite.ImageVersionRepo{DB: db},
		plans:    &sqlite.RampupPlanRepo{DB: db},
		records:  &sqlite.DispatchRecordRepo{DB: db},
	}
	a.closers = append(a.closers, func() { db.Close() })

	a.resolver = &domain.VersionResolver{
		Plans:    a.plans,
		Versions: a.versions,
		Draws:    domain.DefaultDrawSourceFactory{},
	}
	a.images = &application.ImageService{Types: a.types, Versions: a.versions}
	a.rampup = &application.RampupPlanService{Types: a.types, Versions: a.versions, Plans: a.plans}
	a.resolution = &application.ResolutionService{
		Resolver:    a.resolver,
		Types:       a.types,
		Concurrency: cfg.Dispatch.Concurrency,
	}
	return a, nil
}

// Close releases everything opened by the app in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// dispatchService starts the configured workflow engine and returns a
// dispatch service running on it.
func (a *app) dispatchService(ctx context.Context) (*application.DispatchService, error) {
	wf := &domain.DispatchWorkflow{
		Resolver:           a.resolver,
		Records:            a.records,
		PrefetchProxyUsers: a.cfg.Dispatch.PrefetchMapping(),
	}

	runner, err := a.dispatchRunner(ctx, wf)
	if err != nil {
		return nil, err
	}
	return &application.DispatchService{
		Workflow:      runner,
		Records:       a.records,
		Deterministic: a.cfg.Dispatch.DeterministicRampup,
	}, nil
}

func (a *app) dispatchRunner(ctx context.Context, wf *domain.DispatchWorkflow) (domain.DispatchRunner, error) {
	logger := slogcontext.FromCtx(ctx)
	wcfg := a.cfg.Workflow
	logger.Debug("starting workflow engine", slog.String("engine", wcfg.Engine))

	switch wcfg.Engine {
	case config.EngineSync:
		return (&syncworkflow.Engine{}).DispatchRunner(wf)

	case config.EngineGoWorkflows:
		var b backend.Backend
		if wcfg.BackendPath != "" {
			b = wfsqlite.NewSqliteBackend(wcfg.BackendPath)
		} else {
			b = wfsqlite.NewInMemoryBackend()
		}
		w := worker.New(b, nil)
		engine := &goworkflows.Engine{Worker: w, Client: client.New(b), Timeout: wcfg.Timeout}
		runner, err := engine.DispatchRunner(wf)
		if err != nil {
			return nil, err
		}
		wctx, cancel := context.WithCancel(ctx)
		if err := w.Start(wctx); err != nil {
			cancel()
			return nil, fmt.Errorf("start go-workflows worker: %w", err)
		}
		a.closers = append(a.closers, func() {
			cancel()
			_ = w.WaitForCompletion()
		})
		return runner, nil

	case config.EngineDBOS:
		dbosCtx, err := dbos.NewDBOSContext(ctx, dbos.Config{
			AppName:     wcfg.AppName,
			DatabaseURL: wcfg.DatabaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create DBOS context: %w", err)
		}
		runner, err := (&dbosworkflows.Engine{DBOSCtx: dbosCtx}).DispatchRunner(wf)
		if err != nil {
			return nil, err
		}
		if err := dbos.Launch(dbosCtx); err != nil {
			return nil, fmt.Errorf("launch DBOS: %w", err)
		}
		a.closers = append(a.closers, func() { dbos.Shutdown(dbosCtx, 5*time.Second) })
		return runner, nil
	}
	return nil, fmt.Errorf("unknown workflow engine %q", wcfg.Engine)
}
