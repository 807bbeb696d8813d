package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/scriptishrx/concierge/internal/concierge"
	"github.com/scriptishrx/concierge/internal/config"
	"github.com/scriptishrx/concierge/internal/llm"
	"github.com/scriptishrx/concierge/internal/llm/gemini"
	"github.com/scriptishrx/concierge/internal/llm/openai"
	"github.com/scriptishrx/concierge/internal/observability"
	"github.com/scriptishrx/concierge/internal/rag"
	"github.com/scriptishrx/concierge/internal/server"
	"github.com/scriptishrx/concierge/internal/tenant"
	"github.com/scriptishrx/concierge/internal/vector"
	qdrantrepo "github.com/scriptishrx/concierge/internal/vector/qdrant"
)

func main() {
	var (
		configPath string
		tenantID   string
	)

	rootCmd := &cobra.Command{
		Use:   "concierge",
		Short: "Multi-tenant AI FAQ concierge service",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/concierge.yaml", "Config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the concierge HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}

	askCmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask the concierge a single question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ask(configPath, tenantID, args[0])
		},
	}
	askCmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant identifier")

	searchCmd := &cobra.Command{
		Use:   "search [message]",
		Short: "Show the ranked retrieval results for a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return search(configPath, tenantID, args[0])
		},
	}
	searchCmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant identifier")

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Embed a tenant's FAQs into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return index(configPath, tenantID)
		},
	}
	indexCmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant identifier (empty = default FAQ set)")

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "List available LLM providers",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available LLM providers:")
			fmt.Println()
			for name, url := range llm.KnownProviders {
				fmt.Printf("  %-8s %s\n", name, url)
			}
			fmt.Println("  none     (run without LLM: keyword search and canned answers only)")
			fmt.Println()
			fmt.Println("Configure in concierge.yaml or via environment:")
			fmt.Println("  CONCIERGE_LLM_PROVIDER=openai")
			fmt.Println("  CONCIERGE_LLM_API_KEY=sk-...")
			fmt.Println("  CONCIERGE_LLM_MODEL=gpt-4o-mini")
		},
	}

	rootCmd.AddCommand(serveCmd, askCmd, searchCmd, indexCmd, providersCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the wired service graph.
type app struct {
	cfg      *config.Config
	provider llm.Provider
	tenants  *tenant.Accessor
	engine   *rag.Engine
	svc      *concierge.Service
	index    vector.Repository
	redis    *redis.Client
}

func buildApp(ctx context.Context, configPath string) (*app, error) {
	// .env is optional; real deployments inject environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.Log)

	factory := llm.NewFactory()
	factory.Register("openai", func(pc llm.ProviderConfig) (llm.Provider, error) {
		return openai.New(pc.APIKey, pc.Model, pc.BaseURL, pc.EmbedModel), nil
	})
	factory.Register("gemini", func(pc llm.ProviderConfig) (llm.Provider, error) {
		return gemini.New(ctx, pc.APIKey, pc.Model, pc.EmbedModel)
	})

	provider, err := factory.Create(llm.ProviderConfig{
		Provider:   cfg.LLM.Provider,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		BaseURL:    cfg.LLM.BaseURL,
		EmbedModel: cfg.LLM.EmbedModel,
	})
	if err != nil {
		return nil, err
	}

	var store tenant.Store
	if cfg.Tenants.File != "" {
		store, err = tenant.LoadFileStore(cfg.Tenants.File)
		if err != nil {
			return nil, err
		}
	}
	accessor := tenant.NewAccessor(store)

	a := &app{cfg: cfg, provider: provider, tenants: accessor}

	var cache rag.EmbeddingCache
	if cfg.Cache.Backend == "redis" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		cache = rag.NewRedisCache(a.redis, provider, cfg.Cache.TTL)
	} else {
		cache = rag.NewMemoryCache(provider, cfg.Cache.TTL)
	}

	if cfg.Vector.Host != "" {
		repo, err := qdrantrepo.New(ctx, cfg.Vector.Host, cfg.Vector.Port, cfg.Vector.Collection)
		if err != nil {
			return nil, err
		}
		a.index = repo
	}

	a.engine = rag.NewEngine(provider, accessor, cache, a.index)
	a.svc = concierge.New(provider, a.engine, accessor)
	return a, nil
}

func (a *app) close() {
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			slog.Warn("closing vector index", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("closing redis client", "error", err)
		}
	}
}

func serve(configPath string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    "concierge",
		ServiceVersion: version,
		OTLPEndpoint:   a.cfg.Trace.OTLPEndpoint,
		SampleRate:     a.cfg.Trace.SampleRate,
	})
	if err != nil {
		return err
	}

	api := server.NewAPI(server.Config{Addr: a.cfg.Server.Addr, Version: version}, a.svc, a.engine)
	api.Health().RegisterCheck("llm-provider", func(ctx context.Context) server.HealthCheck {
		if a.provider.Available() {
			return server.HealthCheck{Status: server.HealthStatusHealthy, Message: a.provider.Name()}
		}
		return server.HealthCheck{Status: server.HealthStatusDegraded, Message: "no provider configured"}
	})
	if a.redis != nil {
		api.Health().RegisterCheck("redis", func(ctx context.Context) server.HealthCheck {
			if err := a.redis.Ping(ctx).Err(); err != nil {
				return server.HealthCheck{Status: server.HealthStatusUnhealthy, Message: err.Error()}
			}
			return server.HealthCheck{Status: server.HealthStatusHealthy}
		})
	}

	sh := server.NewShutdownHandler(nil)
	sh.RegisterHook("http", 10, api.Stop)
	sh.RegisterHook("tracer", 20, tp.Shutdown)
	sh.Start()

	go func() {
		if err := api.Start(); err != nil {
			slog.Error("api server failed", "error", err)
			sh.Shutdown()
		}
	}()

	sh.Wait()
	return nil
}

func ask(configPath, tenantID, message string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	answer := a.svc.Query(ctx, message, tenantID)
	if answer == "" {
		return fmt.Errorf("empty message")
	}
	fmt.Println(answer)
	return nil
}

func search(configPath, tenantID, message string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	results, name, source := a.engine.Retrieve(ctx, message, tenantID)
	fmt.Printf("Business: %s\n", name)
	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	fmt.Printf("Source: %s\n\n", source)
	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s\n   %s\n", i+1, r.Score, r.FAQ.Question, r.FAQ.Answer)
	}
	return nil
}

func index(configPath, tenantID string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if a.index == nil {
		return fmt.Errorf("no vector index configured (set vector.host)")
	}

	faqs, name := a.tenants.TenantFAQs(ctx, tenantID)
	ix := vector.NewIndexer(a.provider, a.index)
	if err := ix.IndexFAQs(ctx, rag.CacheKey(tenantID), faqs); err != nil {
		return fmt.Errorf("indexing FAQs for %s: %w", name, err)
	}
	fmt.Printf("Indexed %d FAQs for %s\n", len(faqs), name)
	return nil
}

func setupLogging(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
