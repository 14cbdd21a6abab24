package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/query-router/internal/config"
	"github.com/kirillkom/query-router/internal/core/ports"
	"github.com/kirillkom/query-router/internal/core/usecase"
	"github.com/kirillkom/query-router/internal/infrastructure/queue/nats"
	"github.com/kirillkom/query-router/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/query-router/internal/infrastructure/resilience"
)

// Options carries per-binary observers. Both are optional.
type Options struct {
	RouteObserver   ports.RouteObserver
	BreakerObserver resilience.StateObserver
}

type App struct {
	Config config.Config

	Bus        *nats.Bus
	Repo       *postgres.DocumentRepository
	Classifier *usecase.QueryClassifier
	RouteUC    *usecase.RouteQueryUseCase

	closeFn func()
}

// NewClassifier builds the classifier from ROUTING_RULES_PATH, or the
// built-in tables when it is unset.
func NewClassifier(cfg config.Config) (*usecase.QueryClassifier, error) {
	rules, err := usecase.LoadClassifierRules(cfg.RoutingRulesPath)
	if err != nil {
		return nil, fmt.Errorf("load classifier rules: %w", err)
	}
	classifier, err := usecase.NewQueryClassifier(rules)
	if err != nil {
		return nil, fmt.Errorf("compile classifier rules: %w", err)
	}
	return classifier, nil
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	classifier, err := NewClassifier(cfg)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(cfg.Resilience)
	if opts.BreakerObserver != nil {
		executor = executor.WithStateObserver(opts.BreakerObserver)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db).WithExecutor(executor)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	bus, err := nats.New(cfg.NATSURL, nats.Options{
		DecisionSubject:    cfg.NATSDecisionSubject,
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message bus: %w", err)
	}

	routeUC := usecase.NewRouteQueryUseCase(classifier, repo, bus, opts.RouteObserver)

	return &App{
		Config:     cfg,
		Bus:        bus,
		Repo:       repo,
		Classifier: classifier,
		RouteUC:    routeUC,

		closeFn: func() {
			bus.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
