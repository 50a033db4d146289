package di

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"marketcolor/internal/adapter/benzinga"
	"marketcolor/internal/adapter/console"
	"marketcolor/internal/adapter/historystore"
	"marketcolor/internal/adapter/reasoning"
	"marketcolor/internal/adapter/rssfeed"
	"marketcolor/internal/adapter/tavily"
	"marketcolor/internal/adapter/telegram"
	"marketcolor/internal/adapter/yahoo"
	"marketcolor/internal/domain"
	"marketcolor/internal/infra/config"
	"marketcolor/internal/usecase"
)

// Options are the per-invocation switches that do not come from the environment.
type Options struct {
	// DryRun prints the briefing to Stdout instead of sending it.
	DryRun bool
	// SaveHistory lets a successful synthesis overwrite the history memo.
	SaveHistory bool
	Stdout      io.Writer
}

// ApplicationComponents holds all wired dependencies for one run.
type ApplicationComponents struct {
	Config   *config.Config
	Policy   *domain.Policy
	Location *time.Location

	// Adapters
	LLM       domain.LLMClient
	Searcher  domain.StorySearcher
	Feeds     []domain.StoryFeed
	History   domain.HistoryStore
	Quotes    domain.QuoteSource
	Deliverer domain.Deliverer

	// Usecases
	Pipeline *usecase.BriefingPipeline

	closers []func() error
}

// NewApplicationComponents wires every adapter and usecase from config and
// policy. It performs no network calls.
func NewApplicationComponents(cfg *config.Config, policy *domain.Policy, opts Options, log *slog.Logger) (*ApplicationComponents, error) {
	c := &ApplicationComponents{
		Config:   cfg,
		Policy:   policy,
		Location: LoadLocation(cfg.Pipeline.Timezone, log),
	}

	llm, err := reasoning.NewClient(reasoning.Settings{
		Provider:         cfg.Reasoning.Provider,
		AnthropicBaseURL: cfg.Reasoning.AnthropicBaseURL,
		AnthropicAPIKey:  cfg.Reasoning.AnthropicAPIKey,
		AnthropicModel:   cfg.Reasoning.AnthropicModel,
		OllamaURL:        cfg.Reasoning.OllamaURL,
		OllamaModel:      cfg.Reasoning.OllamaModel,
		Timeout:          cfg.Reasoning.Timeout,
	})
	if err != nil {
		return nil, err
	}
	c.LLM = llm

	searchClient := tavily.NewClient(cfg.Search.BaseURL, cfg.Search.APIKey, cfg.Search.Timeout)
	searchClient.DefaultDepth = cfg.Search.DefaultDepth
	var limiter *rate.Limiter
	if cfg.Search.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Search.RatePerSec), max(cfg.Search.Burst, 1))
	}
	searcher, err := tavily.NewAdapter(searchClient, limiter, cfg.Search.MemoSize, log)
	if err != nil {
		return nil, err
	}
	c.Searcher = searcher

	c.Feeds = buildFeeds(cfg, policy, log)

	history, closeHistory, err := NewHistoryStore(cfg.History, log)
	if err != nil {
		return nil, err
	}
	c.History = history
	if closeHistory != nil {
		c.closers = append(c.closers, closeHistory)
	}

	if cfg.Quotes.Enabled {
		c.Quotes = yahoo.NewQuoteClient(cfg.Quotes.BaseURL, cfg.Quotes.Timeout, log)
	}

	if opts.DryRun {
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		c.Deliverer = console.NewDeliverer(out)
	} else {
		c.Deliverer = telegram.NewClient(cfg.Telegram.BaseURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID,
			cfg.Telegram.MaxMessage, cfg.Telegram.Timeout, log)
	}

	concurrency := cfg.Pipeline.SearchConcurrency
	c.Pipeline = usecase.NewBriefingPipeline(usecase.PipelineDeps{
		Planner:     usecase.NewQueryPlanner(llm, policy.Planner, c.Location, cfg.Reasoning.PlannerMaxTokens, log),
		Retriever:   usecase.NewCandidateRetriever(searcher, c.Feeds, policy.Roster, concurrency, log),
		Curator:     usecase.NewStoryCurator(llm, policy.Curation, c.Location, cfg.Reasoning.CuratorMaxTokens, log),
		Verifier:    usecase.NewClaimVerifier(searcher, policy.Verification, concurrency, log),
		Synthesizer: usecase.NewBriefingSynthesizer(llm, policy.Synthesis, c.Location, log),
		History:     c.History,
		Quotes:      c.Quotes,
		Symbols:     policy.MarketSnapshot,
		Deliverer:   c.Deliverer,
		SaveHistory: opts.SaveHistory,
	}, log)

	log.Info("components_wired",
		slog.String("policy_version", policy.Version),
		slog.String("reasoning_provider", cfg.Reasoning.Provider),
		slog.String("history_backend", cfg.History.Backend),
		slog.Int("roster", len(policy.Roster)),
		slog.Int("feeds", len(c.Feeds)),
		slog.Bool("quotes", c.Quotes != nil),
		slog.Bool("dry_run", opts.DryRun))
	return c, nil
}

// Close releases connections held by the adapters.
func (c *ApplicationComponents) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// NewHistoryStore returns the configured store and, for network backends, a
// function releasing its connection.
func NewHistoryStore(cfg config.HistoryConfig, log *slog.Logger) (domain.HistoryStore, func() error, error) {
	switch cfg.Backend {
	case config.HistoryBackendFile, "":
		return historystore.NewFileStore(cfg.Path, log), nil, nil
	case config.HistoryBackendRedis:
		store := historystore.NewRedisStore(historystore.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.RedisKey, log)
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

// LoadLocation resolves the briefing time zone, falling back to UTC.
func LoadLocation(name string, log *slog.Logger) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("timezone_fallback_utc", slog.String("timezone", name), slog.String("error", err.Error()))
		return time.UTC
	}
	return loc
}

func buildFeeds(cfg *config.Config, policy *domain.Policy, log *slog.Logger) []domain.StoryFeed {
	var feeds []domain.StoryFeed
	if cfg.Feed.BenzingaAPIKey != "" {
		feeds = append(feeds, benzinga.NewFeed(cfg.Feed.BenzingaBaseURL, cfg.Feed.BenzingaAPIKey,
			policy.ProfessionalFeed.PageSize, benzinga.NewDenylist(policy.ProfessionalFeed.Denylist),
			cfg.Feed.Timeout, log))
	} else {
		log.Info("professional_feed_disabled", slog.String("reason", "BENZINGA_API_KEY not set"))
	}
	if cfg.Feed.RSSEnabled {
		for _, f := range policy.RSSFeeds {
			feeds = append(feeds, rssfeed.NewFeed(f.Name, f.URL, f.MaxItems, cfg.Feed.Timeout, log))
		}
	}
	return feeds
}
