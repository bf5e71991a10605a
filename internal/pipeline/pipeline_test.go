package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/askweb/askweb/internal/answer"
	"github.com/askweb/askweb/internal/config"
	"github.com/askweb/askweb/internal/scrape"
	"github.com/askweb/askweb/internal/search"
)

type fakeGenerator struct {
	queries []string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, n int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queries) >= n {
		return f.queries[:n], nil
	}
	return f.queries, nil
}

type fakeProvider struct {
	results []search.Result
	err     error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, _ string, _ int) ([]search.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// fakeExtractor fails for URLs in fail and optionally delays per URL to
// simulate adversarial completion order.
type fakeExtractor struct {
	fail   map[string]bool
	delays map[string]time.Duration
}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (scrape.Page, error) {
	if d, ok := f.delays[url]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return scrape.Page{}, &scrape.Error{URL: url, Stage: scrape.StageFetch, Err: ctx.Err()}
		}
	}
	if f.fail[url] {
		return scrape.Page{}, &scrape.Error{URL: url, Stage: scrape.StageFetch, Err: errors.New("boom")}
	}
	return scrape.Page{
		URL:      url,
		Content:  "# Page\n\nContent of " + url + "\n",
		Metadata: scrape.Metadata{Title: "Page", Domain: "example.com"},
	}, nil
}

type fakeSynthesizer struct {
	err       error
	lastPages []scrape.Page
}

func (f *fakeSynthesizer) Answer(_ context.Context, _ string, pages []scrape.Page) (answer.Result, error) {
	f.lastPages = pages
	if f.err != nil {
		return answer.Result{}, f.err
	}
	return answer.Result{Answer: "synthesized", References: []string{}, Followups: []string{}}, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	return &cfg
}

func scoredResults(n int) []search.Result {
	out := make([]search.Result, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, search.Result{
			Title: fmt.Sprintf("Result %d", i),
			URL:   fmt.Sprintf("https://example.com/%d", i),
			Score: 1.0 - float64(i)*0.01,
		})
	}
	return out
}

func newPipeline(gen *fakeGenerator, prov *fakeProvider, ext *fakeExtractor, syn *fakeSynthesizer) *Pipeline {
	return &Pipeline{Queries: gen, Search: prov, Engine: ext, Answer: syn, Config: testConfig()}
}

func TestRun_SingleFailureIsIsolated(t *testing.T) {
	p := newPipeline(
		&fakeGenerator{queries: []string{"q1", "q2", "q3"}},
		&fakeProvider{results: scoredResults(5)},
		&fakeExtractor{fail: map[string]bool{"https://example.com/2": true}},
		&fakeSynthesizer{},
	)

	out := p.Run(context.Background(), Request{Instruction: "why"})
	success, ok := out.(*Success)
	if !ok {
		t.Fatalf("expected success envelope, got %T", out)
	}
	if len(success.ExtractedPages) != 4 {
		t.Fatalf("expected 4 of 5 pages, got %d", len(success.ExtractedPages))
	}
	for _, page := range success.ExtractedPages {
		if page.URL == "https://example.com/2" {
			t.Fatal("failed candidate must not appear in extracted pages")
		}
	}
	if success.Answer != "synthesized" {
		t.Fatalf("unexpected answer: %q", success.Answer)
	}
}

func TestRun_TotalExtractionFailureStillCompletes(t *testing.T) {
	fail := map[string]bool{}
	for i := 0; i < 5; i++ {
		fail[fmt.Sprintf("https://example.com/%d", i)] = true
	}
	syn := &fakeSynthesizer{}
	p := newPipeline(
		&fakeGenerator{queries: []string{"q1", "q2", "q3"}},
		&fakeProvider{results: scoredResults(5)},
		&fakeExtractor{fail: fail},
		syn,
	)

	out := p.Run(context.Background(), Request{Instruction: "why"})
	success, ok := out.(*Success)
	if !ok {
		t.Fatalf("all-candidates-failed must still complete, got %T", out)
	}
	if len(success.ExtractedPages) != 0 {
		t.Fatalf("expected zero pages, got %d", len(success.ExtractedPages))
	}
	if len(syn.lastPages) != 0 {
		t.Fatal("synthesizer should have been invoked with no context")
	}
	if success.Answer == "" {
		t.Fatal("expected a synthesized answer despite zero pages")
	}
}

func TestRun_SearchFailureIsFatal(t *testing.T) {
	p := newPipeline(
		&fakeGenerator{queries: []string{"q1", "q2", "q3"}},
		&fakeProvider{err: errors.New("provider down")},
		&fakeExtractor{},
		&fakeSynthesizer{},
	)

	out := p.Run(context.Background(), Request{Instruction: "why"})
	failure, ok := out.(*Failure)
	if !ok {
		t.Fatalf("expected failure envelope, got %T", out)
	}
	if failure.Stage != StageSearch {
		t.Fatalf("expected stage %q, got %q", StageSearch, failure.Stage)
	}

	b, err := json.Marshal(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"answer", "queries_generated", "search_results", "extracted_pages"} {
		if strings.Contains(string(b), `"`+key+`"`) {
			t.Fatalf("failure envelope must not contain success field %q: %s", key, b)
		}
	}
}

func TestRun_QueryGenerationFailureIsFatal(t *testing.T) {
	p := newPipeline(
		&fakeGenerator{err: errors.New("llm unreachable")},
		&fakeProvider{results: scoredResults(3)},
		&fakeExtractor{},
		&fakeSynthesizer{},
	)

	out := p.Run(context.Background(), Request{Instruction: "why"})
	failure, ok := out.(*Failure)
	if !ok {
		t.Fatalf("expected failure envelope, got %T", out)
	}
	if failure.Stage != StageQueries {
		t.Fatalf("expected stage %q, got %q", StageQueries, failure.Stage)
	}
}

func TestRun_SynthesisFailureIsFatal(t *testing.T) {
	p := newPipeline(
		&fakeGenerator{queries: []string{"q1", "q2", "q3"}},
		&fakeProvider{results: scoredResults(3)},
		&fakeExtractor{},
		&fakeSynthesizer{err: errors.New("model refused")},
	)

	out := p.Run(context.Background(), Request{Instruction: "why"})
	failure, ok := out.(*Failure)
	if !ok {
		t.Fatalf("expected failure envelope, got %T", out)
	}
	if failure.Stage != StageAnswer {
		t.Fatalf("expected stage %q, got %q", StageAnswer, failure.Stage)
	}
}

func TestRun_PreservesRankOrderUnderAdversarialTiming(t *testing.T) {
	// Highest-ranked candidates finish last.
	delays := map[string]time.Duration{
		"https://example.com/0": 60 * time.Millisecond,
		"https://example.com/1": 40 * time.Millisecond,
		"https://example.com/2": 20 * time.Millisecond,
		"https://example.com/3": 10 * time.Millisecond,
		"https://example.com/4": 1 * time.Millisecond,
	}
	p := newPipeline(
		&fakeGenerator{queries: []string{"q1", "q2", "q3"}},
		&fakeProvider{results: scoredResults(5)},
		&fakeExtractor{delays: delays},
		&fakeSynthesizer{},
	)

	out := p.Run(context.Background(), Request{Instruction: "why"})
	success, ok := out.(*Success)
	if !ok {
		t.Fatalf("expected success envelope, got %T", out)
	}
	for i, page := range success.ExtractedPages {
		want := fmt.Sprintf("https://example.com/%d", i)
		if page.URL != want {
			t.Fatalf("rank order broken at %d: got %q, want %q", i, page.URL, want)
		}
	}
}

func TestRun_CapsEnvelopeResultsAtTen(t *testing.T) {
	p := newPipeline(
		&fakeGenerator{queries: []string{"q1", "q2", "q3"}},
		&fakeProvider{results: scoredResults(15)},
		&fakeExtractor{},
		&fakeSynthesizer{},
	)

	out := p.Run(context.Background(), Request{Instruction: "why"})
	success, ok := out.(*Success)
	if !ok {
		t.Fatalf("expected success envelope, got %T", out)
	}
	if len(success.SearchResults) != 10 {
		t.Fatalf("expected 10 search results in envelope, got %d", len(success.SearchResults))
	}
	if len(success.ExtractedPages) != 5 {
		t.Fatalf("expected top 5 candidates extracted, got %d", len(success.ExtractedPages))
	}
	// Envelope results are in descending score order.
	for i := 1; i < len(success.SearchResults); i++ {
		if success.SearchResults[i].Score > success.SearchResults[i-1].Score {
			t.Fatal("search results not in descending score order")
		}
	}
}

func TestRun_QuestionDefaultsToInstruction(t *testing.T) {
	p := newPipeline(
		&fakeGenerator{queries: []string{"q1", "q2", "q3"}},
		&fakeProvider{results: scoredResults(2)},
		&fakeExtractor{},
		&fakeSynthesizer{},
	)

	out := p.Run(context.Background(), Request{Instruction: "explain raft consensus"})
	success, ok := out.(*Success)
	if !ok {
		t.Fatalf("expected success envelope, got %T", out)
	}
	if success.Question != "explain raft consensus" {
		t.Fatalf("question should default to instruction, got %q", success.Question)
	}
}

func TestRun_SuccessEnvelopeHasNoErrorKey(t *testing.T) {
	p := newPipeline(
		&fakeGenerator{queries: []string{"q1", "q2", "q3"}},
		&fakeProvider{results: scoredResults(2)},
		&fakeExtractor{},
		&fakeSynthesizer{},
	)

	out := p.Run(context.Background(), Request{Instruction: "why"})
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, present := decoded["error"]; present {
		t.Fatalf("success envelope must not carry an error key: %s", b)
	}
	// Optional sequences serialize as arrays, never null.
	if decoded["references"] == nil || decoded["followup_questions"] == nil {
		t.Fatalf("references/followups must be empty arrays, not null: %s", b)
	}
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"instruction": "explain", "num_queries": 4}`))
	if err != nil {
		t.Fatal(err)
	}
	if req.Instruction != "explain" || req.NumQueries != 4 {
		t.Fatalf("unexpected request: %+v", req)
	}

	if _, err := ParseRequest([]byte(`{"question": "only"}`)); err == nil {
		t.Fatal("expected error without instruction")
	}
	if _, err := ParseRequest([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}
