package search

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// FileProvider loads search results from a local JSON file for offline and
// testing use. The file format is an array of objects:
// {"title": "...", "url": "...", "snippet": "...", "score": 0.87}.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) Search(_ context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var raw []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Snippet string  `json:"snippet"`
		Score   float64 `json:"score"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Result, 0, len(raw))
	for _, r := range raw {
		if r.URL == "" || r.Title == "" {
			continue
		}
		if q == "" || strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Snippet), q) {
			out = append(out, Result{
				Title:   r.Title,
				URL:     r.URL,
				Snippet: r.Snippet,
				Score:   r.Score,
				Source:  f.Name(),
			})
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
