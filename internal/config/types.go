package config

import "time"

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
)

// Config is the top-level scoutline configuration, corresponding to .scoutline.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	DataDir           string       `yaml:"data_dir" koanf:"data_dir"`
	Server            ServerConfig `yaml:"server" koanf:"server"`
	Match             MatchConfig  `yaml:"match" koanf:"match"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// MatchConfig tunes the matching pipeline.
type MatchConfig struct {
	// RetrievalLimit is the maximum number of candidates returned by retrieval.
	RetrievalLimit int `yaml:"retrieval_limit" koanf:"retrieval_limit"`
	// RetrievalPool is the candidate pool requested from the vector index,
	// wider than the final limit so similarity ranking has room to work.
	RetrievalPool int `yaml:"retrieval_pool" koanf:"retrieval_pool"`
	// RankLimit is the number of candidates scored and explained.
	RankLimit int `yaml:"rank_limit" koanf:"rank_limit"`
	// CacheTTLMinutes is how long a computed result stays servable from cache.
	CacheTTLMinutes int `yaml:"cache_ttl_minutes" koanf:"cache_ttl_minutes"`
}

// CacheTTL returns the result cache TTL as a duration.
func (m MatchConfig) CacheTTL() time.Duration {
	return time.Duration(m.CacheTTLMinutes) * time.Minute
}
