package main

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/4thel00z/wander/internal"
	"github.com/charmbracelet/fang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx := context.Background()

	app := newApp(internal.NewScopeResolver(), os.Stderr)
	rootCmd := NewRootCmd(version, app)
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

// app wires services lazily so persistent flags such as --log-level are
// parsed before the logger is built.
type app struct {
	resolver *internal.ScopeResolver
	logOut   io.Writer
	logLevel string

	once         sync.Once
	logger       zerolog.Logger
	registry     *prometheus.Registry
	metrics      *internal.Metrics
	catalogSvc   *internal.CatalogService
	recommendSvc *internal.RecommendService
	profileSvc   *internal.ProfileService
	historySvc   *internal.HistoryService
	explainSvc   *internal.ExplainService
	providerSvc  *internal.ProviderService
}

func newApp(resolver *internal.ScopeResolver, logOut io.Writer) *app {
	return &app{resolver: resolver, logOut: logOut}
}

func (a *app) setup() {
	a.once.Do(func() {
		logCfg := internal.DefaultConfig().Log
		if cfg, err := internal.LoadConfig(a.resolver.Resolve("")); err == nil {
			logCfg = cfg.Log
		}
		if a.logLevel != "" {
			logCfg.Level = a.logLevel
		}
		a.logger = internal.NewLogger(logCfg, a.logOut)

		a.registry = prometheus.NewRegistry()
		a.metrics = internal.NewMetrics(a.registry)

		profilesFor := func(scope internal.Scope) (internal.ProfileRepository, error) {
			repo, err := internal.NewGitProfileRepository(scope)
			if err != nil {
				return nil, err
			}
			return repo, nil
		}
		historyFor := func(scope internal.Scope) (internal.HistoryRepository, error) {
			repo, err := internal.NewGitProfileRepository(scope)
			if err != nil {
				return nil, err
			}
			return repo, nil
		}

		a.catalogSvc = internal.NewCatalogService(a.resolver, nil, a.metrics, a.logger)
		a.recommendSvc = internal.NewRecommendService(a.resolver, a.catalogSvc, profilesFor, a.metrics, a.logger)
		a.profileSvc = internal.NewProfileService(a.resolver, profilesFor, a.catalogSvc)
		a.historySvc = internal.NewHistoryService(a.resolver, historyFor)
		a.providerSvc = internal.NewProviderService(a.resolver)
		a.explainSvc = internal.NewExplainService(a.recommendSvc, a.providerSvc.Open)
	})
}

func (a *app) catalogs() *internal.CatalogService     { a.setup(); return a.catalogSvc }
func (a *app) recommender() *internal.RecommendService { a.setup(); return a.recommendSvc }
func (a *app) profiles() *internal.ProfileService      { a.setup(); return a.profileSvc }
func (a *app) history() *internal.HistoryService       { a.setup(); return a.historySvc }
func (a *app) explainer() *internal.ExplainService     { a.setup(); return a.explainSvc }
func (a *app) providers() *internal.ProviderService    { a.setup(); return a.providerSvc }

func (a *app) serverDeps() serverDeps {
	a.setup()
	return serverDeps{
		recommend: a.recommendSvc,
		catalogs:  a.catalogSvc,
		gatherer:  a.registry,
		logger:    a.logger,
	}
}
