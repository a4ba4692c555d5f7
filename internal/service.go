package internal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// CatalogService owns the active catalog snapshot of every scope it has seen.
// Snapshots are replaced wholesale on reload and never mutated.
type CatalogService struct {
	resolver  *ScopeResolver
	configFor func(Scope) (*Config, error)
	metrics   *Metrics
	logger    zerolog.Logger

	mu        sync.Mutex
	snapshots map[string]*atomic.Pointer[Recommender]
}

func NewCatalogService(
	resolver *ScopeResolver,
	configFor func(Scope) (*Config, error),
	metrics *Metrics,
	logger zerolog.Logger,
) *CatalogService {
	if configFor == nil {
		configFor = LoadConfig
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &CatalogService{
		resolver:  resolver,
		configFor: configFor,
		metrics:   metrics,
		logger:    logger,
		snapshots: make(map[string]*atomic.Pointer[Recommender]),
	}
}

func (s *CatalogService) Config(scopeHint string) (*Config, error) {
	return s.configFor(s.resolver.Resolve(scopeHint))
}

// Path returns the catalog file used by the scope, or "" for the embedded catalog.
func (s *CatalogService) Path(scopeHint string) (string, error) {
	scope := s.resolver.Resolve(scopeHint)
	cfg, err := s.configFor(scope)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return CatalogPath(scope, cfg), nil
}

// Recommender returns the scope's snapshot, building it on first use.
func (s *CatalogService) Recommender(scopeHint string) (*Recommender, error) {
	scope := s.resolver.Resolve(scopeHint)
	slot := s.slot(scope)

	if r := slot.Load(); r != nil {
		return r, nil
	}

	r, _, err := s.build(scope)
	if err != nil {
		return nil, err
	}
	if slot.CompareAndSwap(nil, r) {
		return r, nil
	}
	return slot.Load(), nil
}

// Reload rebuilds the scope's snapshot from disk. On failure the previous
// snapshot stays active.
func (s *CatalogService) Reload(scopeHint string) (*Recommender, error) {
	scope := s.resolver.Resolve(scopeHint)

	r, source, err := s.build(scope)
	if err != nil {
		s.metrics.Reloads.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("scope", string(scope.Type)).Msg("catalog reload failed, keeping previous snapshot")
		return nil, err
	}

	s.slot(scope).Store(r)
	s.metrics.Reloads.WithLabelValues("ok").Inc()
	s.logger.Info().Str("source", source).Int("destinations", r.Len()).Msg("catalog reloaded")
	return r, nil
}

func (s *CatalogService) build(scope Scope) (*Recommender, string, error) {
	cfg, err := s.configFor(scope)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}

	items, source, err := ResolveCatalog(scope, cfg)
	if err != nil {
		return nil, source, fmt.Errorf("load catalog: %w", err)
	}

	r, err := NewRecommender(items)
	if err != nil {
		return nil, source, fmt.Errorf("build recommender: %w", err)
	}

	s.metrics.CatalogSize.Set(float64(r.Len()))
	s.logger.Debug().
		Str("source", source).
		Int("destinations", r.Len()).
		Int("dimensions", r.Space().Len()).
		Msg("catalog encoded")
	return r, source, nil
}

func (s *CatalogService) slot(scope Scope) *atomic.Pointer[Recommender] {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.snapshots[scope.StatePath]
	if !ok {
		slot = &atomic.Pointer[Recommender]{}
		s.snapshots[scope.StatePath] = slot
	}
	return slot
}

// RecommendService answers preference queries against the scope's catalog.
type RecommendService struct {
	resolver *ScopeResolver
	catalogs *CatalogService
	repoFor  func(Scope) (ProfileRepository, error)
	metrics  *Metrics
	logger   zerolog.Logger
}

func NewRecommendService(
	resolver *ScopeResolver,
	catalogs *CatalogService,
	repoFor func(Scope) (ProfileRepository, error),
	metrics *Metrics,
	logger zerolog.Logger,
) *RecommendService {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &RecommendService{
		resolver: resolver,
		catalogs: catalogs,
		repoFor:  repoFor,
		metrics:  metrics,
		logger:   logger,
	}
}

type RecommendInput struct {
	Preference Preference
	Profile    string // when set, replaces Preference
	Limit      int    // <= 0 uses the configured top_k
	Scope      string
}

func (s *RecommendService) Recommend(ctx context.Context, input RecommendInput) ([]Recommendation, error) {
	start := time.Now()
	reqID := RequestIDFromContext(ctx)
	log := s.logger.With().Str("request_id", reqID).Logger()

	results, err := s.recommend(ctx, input)

	s.metrics.Requests.WithLabelValues(outcomeLabel(err)).Inc()
	s.metrics.Duration.Observe(time.Since(start).Seconds())

	if err != nil {
		log.Debug().Err(err).Msg("recommendation rejected")
		return nil, err
	}

	log.Debug().
		Int("results", len(results)).
		Dur("took", time.Since(start)).
		Msg("recommendation served")
	return results, nil
}

func (s *RecommendService) recommend(ctx context.Context, input RecommendInput) ([]Recommendation, error) {
	pref := input.Preference
	if input.Profile != "" {
		p, err := s.loadProfile(ctx, input.Profile, input.Scope)
		if err != nil {
			return nil, err
		}
		pref = p.Preference
	}

	limit := input.Limit
	if limit <= 0 {
		cfg, err := s.catalogs.Config(input.Scope)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		limit = cfg.Recommend.TopK
	}

	r, err := s.catalogs.Recommender(input.Scope)
	if err != nil {
		return nil, err
	}

	return r.Recommend(pref, limit)
}

func (s *RecommendService) loadProfile(ctx context.Context, nameStr, scopeHint string) (*Profile, error) {
	name, err := NewProfileName(nameStr)
	if err != nil {
		return nil, err
	}

	scopes := s.resolver.Cascade()
	if scopeHint != "" {
		scopes = []Scope{s.resolver.Resolve(scopeHint)}
	}

	for _, scope := range scopes {
		repo, err := s.repoFor(scope)
		if err != nil {
			continue
		}
		p, err := repo.Get(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get profile %s: %w", name, err)
		}
		return p, nil
	}

	return nil, fmt.Errorf("profile %s: %w", nameStr, ErrNotFound)
}

// ProfileService handles saved preference profiles.
type ProfileService struct {
	resolver *ScopeResolver
	repoFor  func(Scope) (ProfileRepository, error)
	catalogs *CatalogService
}

func NewProfileService(
	resolver *ScopeResolver,
	repoFor func(Scope) (ProfileRepository, error),
	catalogs *CatalogService,
) *ProfileService {
	return &ProfileService{
		resolver: resolver,
		repoFor:  repoFor,
		catalogs: catalogs,
	}
}

// Set stores a profile after checking it against the scope's catalog, so a
// saved profile can always be ranked.
func (s *ProfileService) Set(ctx context.Context, nameStr string, pref Preference, scopeHint string) error {
	name, err := NewProfileName(nameStr)
	if err != nil {
		return err
	}

	if s.catalogs != nil {
		r, err := s.catalogs.Recommender(scopeHint)
		if err != nil {
			return err
		}
		if _, err := EncodeQuery(pref, r.Space()); err != nil {
			return err
		}
	}

	repo, err := s.repoFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return fmt.Errorf("get repository: %w", err)
	}

	if err := repo.Save(ctx, NewProfile(name, pref)); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *ProfileService) Get(ctx context.Context, nameStr, scopeHint string) (*Profile, error) {
	name, err := NewProfileName(nameStr)
	if err != nil {
		return nil, err
	}

	scopes := s.resolver.Cascade()
	if scopeHint != "" {
		scopes = []Scope{s.resolver.Resolve(scopeHint)}
	}

	for _, scope := range scopes {
		repo, err := s.repoFor(scope)
		if err != nil {
			continue
		}
		p, err := repo.Get(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get profile %s: %w", name, err)
		}
		return p, nil
	}

	return nil, ErrNotFound
}

func (s *ProfileService) Delete(ctx context.Context, nameStr, scopeHint string) error {
	name, err := NewProfileName(nameStr)
	if err != nil {
		return err
	}

	repo, err := s.repoFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return fmt.Errorf("get repository: %w", err)
	}

	if err := repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func (s *ProfileService) List(ctx context.Context, prefix, scopeHint string) ([]*Profile, error) {
	repo, err := s.repoFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get repository: %w", err)
	}

	return repo.List(ctx, prefix)
}

// HistoryService handles git history of profiles.
type HistoryService struct {
	resolver *ScopeResolver
	repoFor  func(Scope) (HistoryRepository, error)
}

func NewHistoryService(
	resolver *ScopeResolver,
	repoFor func(Scope) (HistoryRepository, error),
) *HistoryService {
	return &HistoryService{
		resolver: resolver,
		repoFor:  repoFor,
	}
}

func (s *HistoryService) Commit(ctx context.Context, message, scopeHint string) (*Commit, error) {
	repo, err := s.repoFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get repository: %w", err)
	}

	return repo.Commit(ctx, message)
}

func (s *HistoryService) Log(ctx context.Context, limit int, scopeHint string) ([]*Commit, error) {
	repo, err := s.repoFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, fmt.Errorf("get repository: %w", err)
	}

	return repo.Log(ctx, limit)
}

func (s *HistoryService) Diff(ctx context.Context, ref, scopeHint string) (string, error) {
	repo, err := s.repoFor(s.resolver.Resolve(scopeHint))
	if err != nil {
		return "", fmt.Errorf("get repository: %w", err)
	}

	return repo.Diff(ctx, ref)
}

// ExplainService asks an LLM to describe a ranked list.
type ExplainService struct {
	recommend   *RecommendService
	providerFor func(ctx context.Context, name, scopeHint string) (Provider, error)
}

func NewExplainService(
	recommend *RecommendService,
	providerFor func(ctx context.Context, name, scopeHint string) (Provider, error),
) *ExplainService {
	return &ExplainService{
		recommend:   recommend,
		providerFor: providerFor,
	}
}

type ExplainInput struct {
	RecommendInput
	Provider string
}

func (s *ExplainService) Explain(ctx context.Context, input ExplainInput) (*TripPlan, []Recommendation, error) {
	provider, results, err := s.prepare(ctx, &input)
	if err != nil {
		return nil, nil, err
	}

	var plan TripPlan
	if err := provider.GenerateObject(ctx, explainPrompt(input.Preference, results), &plan); err != nil {
		return nil, results, fmt.Errorf("generate plan: %w", err)
	}
	return &plan, results, nil
}

func (s *ExplainService) Stream(ctx context.Context, input ExplainInput) (<-chan string, []Recommendation, error) {
	provider, results, err := s.prepare(ctx, &input)
	if err != nil {
		return nil, nil, err
	}

	ch, err := provider.Stream(ctx, explainPrompt(input.Preference, results))
	if err != nil {
		return nil, results, fmt.Errorf("stream plan: %w", err)
	}
	return ch, results, nil
}

func (s *ExplainService) prepare(ctx context.Context, input *ExplainInput) (Provider, []Recommendation, error) {
	if s.providerFor == nil {
		return nil, nil, ErrNoProvider
	}

	if input.Profile != "" {
		p, err := s.recommend.loadProfile(ctx, input.Profile, input.Scope)
		if err != nil {
			return nil, nil, err
		}
		input.Preference = p.Preference
		input.Profile = ""
	}

	results, err := s.recommend.Recommend(ctx, input.RecommendInput)
	if err != nil {
		return nil, nil, err
	}

	provider, err := s.providerFor(ctx, input.Provider, input.Scope)
	if err != nil {
		return nil, nil, err
	}
	return provider, results, nil
}

func explainPrompt(pref Preference, results []Recommendation) string {
	var sb strings.Builder
	sb.WriteString("A traveller is planning a trip to Northern Pakistan with these preferences:\n")
	fmt.Fprintf(&sb, "- type: %s\n- season: %s\n- budget: %s\n", pref.Type, pref.Season, pref.Budget)
	fmt.Fprintf(&sb, "- travelling with family: %t\n- wants girls-travel-friendly places: %t\n\n", pref.FamilyFriendly, pref.GirlsFriendly)
	sb.WriteString("These destinations were ranked for them, best match first:\n")
	for i, r := range results {
		d := r.Destination
		fmt.Fprintf(&sb, "%d. %s (%s, best in %s, %s budget, match %.2f)\n", i+1, d.Name, d.Type, d.Season, d.Budget, r.Score)
	}
	sb.WriteString("\nWrite a short trip plan explaining why the top destinations fit and give practical tips.")
	return sb.String()
}

// ProviderService manages LLM provider configuration.
type ProviderService struct {
	resolver *ScopeResolver
}

func NewProviderService(resolver *ScopeResolver) *ProviderService {
	return &ProviderService{resolver: resolver}
}

// ProviderInfo describes a configured provider without its credentials.
type ProviderInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Default bool   `json:"default"`
}

// List returns the configured providers sorted by name.
func (s *ProviderService) List(scopeHint string) ([]ProviderInfo, error) {
	cfg, err := LoadConfig(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, err
	}

	infos := make([]ProviderInfo, 0, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		kind := pc.Kind
		if kind == "" {
			kind = name
		}
		infos = append(infos, ProviderInfo{
			Name:    name,
			Kind:    kind,
			Model:   pc.Model,
			BaseURL: pc.BaseURL,
			Default: name == cfg.DefaultProvider,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// ErrProviderNotFound is returned for provider names missing from config.yaml.
var ErrProviderNotFound = errors.New("provider not found")

// editConfig loads the scope config, applies edit and saves the result.
func (s *ProviderService) editConfig(scopeHint string, edit func(*Config) error) error {
	scope := s.resolver.Resolve(scopeHint)
	cfg, err := LoadConfig(scope)
	if err != nil {
		return err
	}
	if err := edit(cfg); err != nil {
		return err
	}
	return SaveConfig(scope, cfg)
}

func requireProvider(cfg *Config, name string) error {
	if _, ok := cfg.Providers[name]; !ok {
		return fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return nil
}

// Add stores a provider, replacing one with the same name.
func (s *ProviderService) Add(name string, pc ProviderConfig, scopeHint string) error {
	kind := pc.Kind
	if kind == "" {
		kind = name
	}
	if !slices.Contains(SupportedProviderKinds, kind) {
		return fmt.Errorf("unsupported provider kind %q (supported: %s)", kind, strings.Join(SupportedProviderKinds, ", "))
	}

	return s.editConfig(scopeHint, func(cfg *Config) error {
		cfg.Providers[name] = pc
		return cfg.Validate()
	})
}

// Remove deletes a provider and clears the default if it pointed there.
func (s *ProviderService) Remove(name, scopeHint string) error {
	return s.editConfig(scopeHint, func(cfg *Config) error {
		if err := requireProvider(cfg, name); err != nil {
			return err
		}
		delete(cfg.Providers, name)
		if cfg.DefaultProvider == name {
			cfg.DefaultProvider = ""
		}
		return nil
	})
}

func (s *ProviderService) SetDefault(name, scopeHint string) error {
	return s.editConfig(scopeHint, func(cfg *Config) error {
		if err := requireProvider(cfg, name); err != nil {
			return err
		}
		cfg.DefaultProvider = name
		return nil
	})
}

// Open connects to the named provider, or the default one when name is empty.
func (s *ProviderService) Open(ctx context.Context, name, scopeHint string) (Provider, error) {
	cfg, err := LoadConfig(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = cfg.DefaultProvider
	}
	if name == "" {
		return nil, ErrNoProvider
	}

	if err := requireProvider(cfg, name); err != nil {
		return nil, err
	}

	provider, err := NewFantasyProvider(ctx, name, cfg.Providers[name])
	if err != nil {
		return nil, err
	}
	return provider, nil
}

func (s *ProviderService) Test(ctx context.Context, name, scopeHint string) error {
	provider, err := s.Open(ctx, name, scopeHint)
	if err != nil {
		return err
	}

	if _, err := provider.Complete(ctx, "Reply with the single word: ready"); err != nil {
		return fmt.Errorf("ping %s: %w", name, err)
	}
	return nil
}

// IsUserError reports errors caused by bad input rather than a broken system.
func IsUserError(err error) bool {
	return errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrProviderNotFound)
}
