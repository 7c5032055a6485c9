package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scoutline/scoutline/internal/config"
	"github.com/scoutline/scoutline/internal/db"
	"github.com/scoutline/scoutline/internal/embeddings"
	"github.com/scoutline/scoutline/internal/llm"
	"github.com/scoutline/scoutline/internal/pipeline"
	"github.com/scoutline/scoutline/internal/resultcache"
	"github.com/scoutline/scoutline/internal/talent"
	"github.com/scoutline/scoutline/internal/trail"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `scoutline init` to create a config file", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates the provider-backed embedder, or nil when
// no credential is configured. A nil embedder is not an error: the embedding
// gateway degrades to fallback vectors.
func createEmbedderFromConfig(cfg *config.Config) embeddings.Embedder {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(provider).EmbeddingModel
	}

	switch provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, "")
	default:
		// Anthropic has no embeddings API; OpenAI serves both cases.
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			fmt.Fprintln(os.Stderr, "Warning: OPENAI_API_KEY not set; embeddings degrade to fallback vectors")
			return nil
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model))
	}
}

// createLLMProviderFromConfig creates the LLM provider, or nil when no
// credential is configured. A nil provider switches the analyst to keyword
// extraction and disables match explanations.
func createLLMProviderFromConfig(cfg *config.Config) llm.Provider {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; matching runs without LLM assistance\n", err)
		return nil
	}
	return provider
}

// app bundles the wired service components shared by the serve, mcp, and
// query commands.
type app struct {
	cfg     *config.Config
	db      *db.DB
	store   *talent.Store
	index   *talent.Index
	gateway *embeddings.Gateway
	trail   *trail.Store
	cache   *resultcache.Store
	orch    *pipeline.Orchestrator
}

// buildApp opens the database, wires every store and pipeline stage, and
// provisions the vector index from the candidate store. Index provisioning
// happens here, at startup, never lazily on the first query.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "scoutline.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	gateway := embeddings.NewGateway(createEmbedderFromConfig(cfg), database)
	store := talent.NewStore(database)
	index, err := talent.NewIndex(gateway)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating vector index: %w", err)
	}
	indexed, err := index.BuildFrom(ctx, store)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("provisioning vector index: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "indexed %d candidates\n", indexed)
	}

	trailStore := trail.NewStore(database)
	cache := resultcache.NewStore(database)
	provider := createLLMProviderFromConfig(cfg)

	orch := pipeline.NewOrchestrator(pipeline.Deps{
		Analyst:    pipeline.NewAnalyst(provider, cfg.Model, trailStore),
		Retriever:  pipeline.NewRetriever(store, index, gateway, trailStore, cfg.Match.RetrievalLimit, cfg.Match.RetrievalPool),
		Verifier:   pipeline.NewVerifier(trailStore),
		Ranker:     pipeline.NewRanker(provider, cfg.Model, trailStore, cfg.Match.RankLimit),
		Trail:      trailStore,
		Cache:      cache,
		Candidates: store,
		CacheTTL:   cfg.Match.CacheTTL(),
	})

	return &app{
		cfg:     cfg,
		db:      database,
		store:   store,
		index:   index,
		gateway: gateway,
		trail:   trailStore,
		cache:   cache,
		orch:    orch,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
