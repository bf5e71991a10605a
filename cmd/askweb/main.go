package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/askweb/askweb/internal/answer"
	"github.com/askweb/askweb/internal/config"
	"github.com/askweb/askweb/internal/fetch"
	"github.com/askweb/askweb/internal/llm"
	"github.com/askweb/askweb/internal/pipeline"
	"github.com/askweb/askweb/internal/queries"
	"github.com/askweb/askweb/internal/report"
	"github.com/askweb/askweb/internal/scrape"
	"github.com/askweb/askweb/internal/search"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		instruction string
		question    string
		numQueries  int
		jsonStdin   bool
		configPath  string
		envPath     string
		llmBaseURL  string
		llmModel    string
		llmKey      string
		tavilyKey   string
		searchFile  string
		userAgent   string
		timeoutSecs int
		topK        int
		outputPDF   string
		verbose     bool
	)

	flag.StringVar(&instruction, "instruction", "", "Instruction or question to research")
	flag.StringVar(&question, "question", "", "Question to answer (defaults to the instruction)")
	flag.IntVar(&numQueries, "queries", 0, "Number of search queries to generate (default 3)")
	flag.BoolVar(&jsonStdin, "json", false, "Read a JSON request object from stdin instead of flags")
	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&envPath, "env", ".env", "Path to dotenv file")
	flag.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", "", "Model name")
	flag.StringVar(&llmKey, "llm.key", "", "API key for the OpenAI-compatible server")
	flag.StringVar(&tavilyKey, "tavily.key", "", "Tavily API key")
	flag.StringVar(&searchFile, "search.file", "", "Path to JSON file for offline file-based search provider")
	flag.StringVar(&userAgent, "fetch.ua", "", "User-Agent for page fetches")
	flag.IntVar(&timeoutSecs, "fetch.timeout", 0, "Per-page fetch timeout in seconds (default 30)")
	flag.IntVar(&topK, "topk", 0, "Number of top-ranked pages to extract (default 5)")
	flag.StringVar(&outputPDF, "pdf", "", "Also write the answer to this PDF path")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := config.LoadEnvFiles(envPath); err != nil {
		log.Error().Err(err).Msg("load env files")
		os.Exit(1)
	}

	cfg := config.Config{
		LLMBaseURL:     llmBaseURL,
		LLMModel:       llmModel,
		LLMAPIKey:      llmKey,
		TavilyAPIKey:   tavilyKey,
		SearchFile:     searchFile,
		UserAgent:      userAgent,
		TimeoutSeconds: timeoutSecs,
		TopK:           topK,
		OutputPDF:      outputPDF,
		Verbose:        verbose,
	}
	config.ApplyEnv(&cfg)
	if configPath != "" {
		if err := config.LoadFile(configPath, &cfg); err != nil {
			log.Error().Err(err).Msg("load config file")
			os.Exit(1)
		}
	}
	fillDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	req, err := buildRequest(jsonStdin, instruction, question, numQueries)
	if err != nil {
		log.Error().Err(err).Msg("invalid request")
		os.Exit(1)
	}

	out := newPipeline(&cfg).Run(context.Background(), req)

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		log.Error().Err(err).Msg("encode outcome")
		os.Exit(1)
	}

	if success, ok := out.(*pipeline.Success); ok {
		if cfg.OutputPDF != "" {
			if err := report.WritePDF(success, cfg.OutputPDF); err != nil {
				log.Error().Err(err).Str("path", cfg.OutputPDF).Msg("write pdf")
			} else {
				log.Info().Str("path", cfg.OutputPDF).Msg("wrote answer pdf")
			}
		}
		return
	}
	os.Exit(1)
}

func buildRequest(jsonStdin bool, instruction, question string, numQueries int) (pipeline.Request, error) {
	if jsonStdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return pipeline.Request{}, fmt.Errorf("read stdin: %w", err)
		}
		return pipeline.ParseRequest(data)
	}
	if strings.TrimSpace(instruction) == "" && flag.NArg() > 0 {
		instruction = strings.Join(flag.Args(), " ")
	}
	if strings.TrimSpace(instruction) == "" {
		return pipeline.Request{}, fmt.Errorf("an instruction is required (flag, arguments, or -json)")
	}
	return pipeline.Request{Instruction: instruction, Question: question, NumQueries: numQueries}, nil
}

func newPipeline(cfg *config.Config) *pipeline.Pipeline {
	client := llm.NewOpenAIProvider(cfg.LLMAPIKey, cfg.LLMBaseURL)

	var provider search.Provider
	if cfg.SearchFile != "" {
		provider = &search.FileProvider{Path: cfg.SearchFile}
	} else {
		provider = &search.Tavily{
			BaseURL:       cfg.TavilyBaseURL,
			APIKey:        cfg.TavilyAPIKey,
			HTTPClient:    &http.Client{Timeout: 20 * time.Second},
			UserAgent:     cfg.UserAgent,
			IncludeAnswer: true,
		}
	}

	fetcher := &fetch.Client{
		UserAgent:     cfg.UserAgent,
		Timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxConcurrent: cfg.Workers(),
	}

	return &pipeline.Pipeline{
		Queries: &queries.LLMGenerator{Client: client, Model: cfg.LLMModel, Verbose: cfg.Verbose},
		Search:  provider,
		Engine:  &scrape.Engine{Fetcher: fetcher},
		Answer:  &answer.LLMSynthesizer{Client: client, Model: cfg.LLMModel, Verbose: cfg.Verbose, PerPageChars: cfg.PerPageChars},
		Config:  cfg,
	}
}

// fillDefaults applies the built-in defaults to any field still unset after
// flags, env and config file were merged.
func fillDefaults(cfg *config.Config) {
	def := config.Default()
	if cfg.TavilyBaseURL == "" {
		cfg.TavilyBaseURL = def.TavilyBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = def.TimeoutSeconds
	}
	if cfg.NumQueries == 0 {
		cfg.NumQueries = def.NumQueries
	}
	if cfg.ResultsPerQuery == 0 {
		cfg.ResultsPerQuery = def.ResultsPerQuery
	}
	if cfg.TopK == 0 {
		cfg.TopK = def.TopK
	}
	if cfg.TopResults == 0 {
		cfg.TopResults = def.TopResults
	}
	if cfg.PerPageChars == 0 {
		cfg.PerPageChars = def.PerPageChars
	}
}
