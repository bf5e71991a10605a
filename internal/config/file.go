package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the YAML configuration schema. Nested sections map naturally
// to flags and environment variables.
type FileConfig struct {
	LLM struct {
		BaseURL string `yaml:"base"`
		Model   string `yaml:"model"`
		APIKey  string `yaml:"key"`
	} `yaml:"llm"`

	Tavily struct {
		BaseURL string `yaml:"base"`
		APIKey  string `yaml:"key"`
	} `yaml:"tavily"`

	Search struct {
		File string `yaml:"file"`
	} `yaml:"search"`

	Fetch struct {
		UserAgent      string `yaml:"userAgent"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"fetch"`

	Pipeline struct {
		NumQueries      int `yaml:"numQueries"`
		ResultsPerQuery int `yaml:"resultsPerQuery"`
		TopK            int `yaml:"topK"`
		TopResults      int `yaml:"topResults"`
		ExtractWorkers  int `yaml:"extractWorkers"`
		PerPageChars    int `yaml:"perPageChars"`
	} `yaml:"pipeline"`

	Verbose   bool   `yaml:"verbose"`
	OutputPDF string `yaml:"outputPDF"`
}

// LoadFile reads a YAML config file and fills unset fields of cfg with its
// values. Flags and env applied before this call keep precedence.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	fc.mergeInto(cfg)
	return nil
}

func (fc *FileConfig) mergeInto(cfg *Config) {
	mergeStr := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
		}
	}
	mergeInt := func(dst *int, v int) {
		if *dst == 0 && v > 0 {
			*dst = v
		}
	}
	mergeStr(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	mergeStr(&cfg.LLMModel, fc.LLM.Model)
	mergeStr(&cfg.LLMAPIKey, fc.LLM.APIKey)
	mergeStr(&cfg.TavilyBaseURL, fc.Tavily.BaseURL)
	mergeStr(&cfg.TavilyAPIKey, fc.Tavily.APIKey)
	mergeStr(&cfg.SearchFile, fc.Search.File)
	mergeStr(&cfg.UserAgent, fc.Fetch.UserAgent)
	mergeInt(&cfg.TimeoutSeconds, fc.Fetch.TimeoutSeconds)
	mergeInt(&cfg.NumQueries, fc.Pipeline.NumQueries)
	mergeInt(&cfg.ResultsPerQuery, fc.Pipeline.ResultsPerQuery)
	mergeInt(&cfg.TopK, fc.Pipeline.TopK)
	mergeInt(&cfg.TopResults, fc.Pipeline.TopResults)
	mergeInt(&cfg.ExtractWorkers, fc.Pipeline.ExtractWorkers)
	mergeInt(&cfg.PerPageChars, fc.Pipeline.PerPageChars)
	mergeStr(&cfg.OutputPDF, fc.OutputPDF)
	if fc.Verbose {
		cfg.Verbose = true
	}
}
