package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTavily_Search_ParsesScoredResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["api_key"] != "key-123" {
			t.Errorf("expected api key in body, got %v", req["api_key"])
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Doc", "url": "https://example.com", "content": "snippet", "score": 0.91},
				{"title": "Bad", "url": "", "content": "no url", "score": 0.5},
			},
		})
	}))
	defer srv.Close()

	p := &Tavily{BaseURL: srv.URL, APIKey: "key-123", HTTPClient: srv.Client()}
	got, err := p.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 valid result, got %d", len(got))
	}
	if got[0].URL != "https://example.com" {
		t.Fatalf("unexpected url: %q", got[0].URL)
	}
	if got[0].Score != 0.91 {
		t.Fatalf("unexpected score: %v", got[0].Score)
	}
	if got[0].Source != "tavily" {
		t.Fatalf("unexpected source: %q", got[0].Source)
	}
}

func TestTavily_Search_RequiresAPIKey(t *testing.T) {
	p := &Tavily{}
	if _, err := p.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestTavily_Search_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := &Tavily{BaseURL: srv.URL, APIKey: "k", HTTPClient: srv.Client()}
	if _, err := p.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}
