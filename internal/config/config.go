package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config carries every knob the pipeline needs. It is constructed once at
// process start and passed by reference; core logic never reads the
// environment itself.
type Config struct {
	// OpenAI-compatible endpoint for query generation and answer synthesis.
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Tavily search provider.
	TavilyBaseURL string
	TavilyAPIKey  string

	// SearchFile, when set, switches to the offline file-based provider.
	SearchFile string

	// Recognized fetch options; there are deliberately no others.
	UserAgent      string
	TimeoutSeconds int

	// NumQueries is the default number of generated queries per request.
	NumQueries int
	// ResultsPerQuery caps results requested from the provider per query.
	ResultsPerQuery int
	// TopK is how many ranked candidates are offered to extraction.
	TopK int
	// TopResults caps search_results in the success envelope.
	TopResults int
	// ExtractWorkers bounds concurrent extractions. Zero means TopK.
	ExtractWorkers int
	// PerPageChars caps per-page content fed to the synthesizer.
	PerPageChars int

	Verbose   bool
	OutputPDF string
}

// Default returns a Config with the pipeline defaults filled in.
func Default() Config {
	return Config{
		TavilyBaseURL:   "https://api.tavily.com",
		UserAgent:       "askweb/1.0 (+https://github.com/askweb/askweb)",
		TimeoutSeconds:  30,
		NumQueries:      3,
		ResultsPerQuery: 5,
		TopK:            5,
		TopResults:      10,
		PerPageChars:    12_000,
	}
}

// ApplyEnv populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY", "OPENAI_API_KEY")
	setString(&cfg.TavilyAPIKey, "TAVILY_API_KEY")
	setString(&cfg.SearchFile, "SEARCH_FILE")
	setString(&cfg.UserAgent, "FETCH_USER_AGENT")
	setInt(&cfg.TimeoutSeconds, "FETCH_TIMEOUT_SECONDS")
	setInt(&cfg.NumQueries, "NUM_QUERIES")
	setInt(&cfg.TopK, "TOP_K")
	setBool(&cfg.Verbose, "VERBOSE")
}

// Validate reports configuration the pipeline cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.LLMModel) == "" {
		return errors.New("config: LLM model is required")
	}
	if strings.TrimSpace(c.SearchFile) == "" && strings.TrimSpace(c.TavilyAPIKey) == "" {
		return errors.New("config: a Tavily API key or an offline search file is required")
	}
	if c.TimeoutSeconds <= 0 {
		return errors.New("config: fetch timeout must be positive")
	}
	return nil
}

// Workers resolves the extraction worker bound: ExtractWorkers when set,
// otherwise TopK.
func (c Config) Workers() int {
	if c.ExtractWorkers > 0 {
		return c.ExtractWorkers
	}
	if c.TopK > 0 {
		return c.TopK
	}
	return 5
}

func setString(dst *string, keys ...string) {
	if *dst != "" {
		return
	}
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			*dst = v
			return
		}
	}
}

func setInt(dst *int, key string) {
	if *dst != 0 {
		return
	}
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if *dst {
		return
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		*dst = true
	}
}
