package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTavilyBaseURL is the hosted Tavily API endpoint.
const DefaultTavilyBaseURL = "https://api.tavily.com"

// Tavily implements Provider against the Tavily /search endpoint.
type Tavily struct {
	BaseURL    string // defaults to DefaultTavilyBaseURL
	APIKey     string
	HTTPClient *http.Client
	UserAgent  string // optional custom UA
	// IncludeAnswer asks Tavily to compute its own short answer; it is
	// ignored by this provider's results but kept for API parity.
	IncludeAnswer bool
}

func (t *Tavily) Name() string { return "tavily" }

func (t *Tavily) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, fmt.Errorf("missing tavily api key")
	}
	if limit <= 0 {
		limit = 5
	}
	base := t.BaseURL
	if base == "" {
		base = DefaultTavilyBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(u.Path, "/search") {
		u.Path = strings.TrimRight(u.Path, "/") + "/search"
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:        t.APIKey,
		Query:         query,
		MaxResults:    limit,
		IncludeAnswer: t.IncludeAnswer,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}
	hc := t.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("tavily status: %d", resp.StatusCode)
	}
	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(tr.Results))
	for _, r := range tr.Results {
		if r.URL == "" || r.Title == "" {
			continue
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(r.Title),
			URL:     strings.TrimSpace(r.URL),
			Snippet: strings.TrimSpace(r.Content),
			Score:   r.Score,
			Source:  t.Name(),
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}
