package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pharmasage/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port"`

	// RequestTimeout bounds every request, including deep research calls.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`

	// CORSOrigins lists the origins allowed to call the API from a browser.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" mapstructure:"cors_origins"`
}

// ResearchProvider identifies the LLM service used for deep research.
type ResearchProvider string

const (
	ProviderPerplexity ResearchProvider = "perplexity"
	ProviderGemini     ResearchProvider = "gemini"
	ProviderMock       ResearchProvider = "mock"
)

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "sonar-deep-research").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts on rate limiting (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ResearchConfig holds settings for the deep research feature.
type ResearchConfig struct {
	AIConfig   `yaml:",inline" mapstructure:",squash"`
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the research backend: perplexity, gemini, or mock.
	Provider ResearchProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// MaxTokens caps the response length. Zero leaves it to the provider.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// UseMock forces the mock backend regardless of Provider.
	UseMock bool `json:"use_mock" yaml:"use_mock" mapstructure:"use_mock"`
}

// CacheBackend selects the research response cache implementation.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
	CacheNone   CacheBackend = "none"
)

// CacheConfig holds settings for the research response cache.
type CacheConfig struct {
	Backend CacheBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// TTL is how long a cached response stays valid (default 24h).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`

	RedisAddr     string `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`

	// Prefix namespaces cache keys in a shared Redis.
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
}

// CatalogConfig holds settings for the SQLite catalog store.
type CatalogConfig struct {
	// DataDir contains pharmasage.db.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// MaxResults is the default result limit for searches (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// Seed loads the built-in sample catalog when the database is empty.
	Seed bool `json:"seed" yaml:"seed" mapstructure:"seed"`
}

// ExportConfig holds settings for file exports.
type ExportConfig struct {
	// Dir is where export files are written.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Development switches to human-readable console output.
	Development bool `json:"development" yaml:"development" mapstructure:"development"`

	// OutputPaths lists log sinks (default stderr).
	OutputPaths []string `json:"output_paths" yaml:"output_paths" mapstructure:"output_paths"`
}

// Config groups all component configurations.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Research ResearchConfig `json:"research" yaml:"research" mapstructure:"research"`
	Cache    CacheConfig    `json:"cache" yaml:"cache" mapstructure:"cache"`
	Catalog  CatalogConfig  `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Export   ExportConfig   `json:"export" yaml:"export" mapstructure:"export"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}
