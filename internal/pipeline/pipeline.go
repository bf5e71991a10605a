package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/askweb/askweb/internal/answer"
	"github.com/askweb/askweb/internal/config"
	"github.com/askweb/askweb/internal/queries"
	"github.com/askweb/askweb/internal/rank"
	"github.com/askweb/askweb/internal/scrape"
	"github.com/askweb/askweb/internal/search"
)

// Extractor is the page→document transform the pipeline drives once per
// candidate; *scrape.Engine satisfies it.
type Extractor interface {
	Extract(ctx context.Context, url string) (scrape.Page, error)
}

// Pipeline drives one request end to end: generate queries, search, rank,
// extract the top candidates (tolerating per-page failure), and synthesize
// an answer.
type Pipeline struct {
	Queries queries.Generator
	Search  search.Provider
	Engine  Extractor
	Answer  answer.Synthesizer
	Config  *config.Config
}

// Run executes req and always returns exactly one envelope. Failures in
// query generation, search, or answer synthesis are fatal; extraction
// failures only drop their own candidate.
func (p *Pipeline) Run(ctx context.Context, req Request) Outcome {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		question = req.Instruction
		log.Debug().Msg("no question provided; using instruction as question")
	}
	numQueries := req.NumQueries
	if numQueries <= 0 {
		numQueries = p.Config.NumQueries
	}

	logger := log.With().Str("request_id", uuid.NewString()).Logger()
	logger.Info().Str("question", question).Int("num_queries", numQueries).Msg("pipeline started")

	// Received -> QueriesGenerated
	generated, err := p.Queries.Generate(ctx, req.Instruction, numQueries)
	if err != nil {
		logger.Error().Err(err).Msg("query generation failed")
		return &Failure{Error: err.Error(), Question: question, Stage: StageQueries}
	}
	logger.Info().Strs("queries", generated).Msg("queries generated")

	// QueriesGenerated -> Searched
	groups := make([][]search.Result, 0, len(generated))
	for _, q := range generated {
		results, err := p.Search.Search(ctx, q, p.Config.ResultsPerQuery)
		if err != nil {
			logger.Error().Err(err).Str("query", q).Msg("search failed")
			return &Failure{Error: err.Error(), Question: question, Stage: StageSearch}
		}
		groups = append(groups, results)
	}

	// Searched -> Ranked
	ranked := rank.TopK(rank.Merge(groups), 0)
	logger.Info().Int("results", len(ranked)).Msg("results ranked")

	// Ranked -> Extracting
	candidates := ranked
	if len(candidates) > p.Config.TopK {
		candidates = candidates[:p.Config.TopK]
	}
	pages := p.extractAll(ctx, logger, candidates)
	logger.Info().Int("candidates", len(candidates)).Int("extracted", len(pages)).Msg("extraction finished")

	// Extracting -> Answering. This transition always happens, even with
	// zero extracted pages: that is a degraded state, not an error.
	result, err := p.Answer.Answer(ctx, question, pages)
	if err != nil {
		logger.Error().Err(err).Msg("answer synthesis failed")
		return &Failure{Error: err.Error(), Question: question, Stage: StageAnswer}
	}

	// Answering -> Completed
	logger.Info().Msg("pipeline completed")
	return &Success{
		Question:         question,
		QueriesGenerated: generated,
		SearchResults:    envelopeResults(ranked, p.Config.TopResults),
		ExtractedPages:   pages,
		Answer:           result.Answer,
		References:       result.References,
		Followups:        result.Followups,
	}
}

// extractAll runs the engine once per candidate with a bounded worker pool.
// Results land in index-addressed slots and are compacted afterwards, so the
// returned pages preserve rank order no matter the completion order. A
// failed candidate only vacates its own slot.
func (p *Pipeline) extractAll(ctx context.Context, logger zerolog.Logger, candidates []search.Result) []scrape.Page {
	type slot struct {
		page scrape.Page
		ok   bool
	}
	slots := make([]slot, len(candidates))
	sem := make(chan struct{}, p.Config.Workers())
	var wg sync.WaitGroup

	for i, c := range candidates {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			if ctx.Err() != nil {
				return
			}
			page, err := p.Engine.Extract(ctx, url)
			if err != nil {
				var xe *scrape.Error
				if errors.As(err, &xe) {
					logger.Warn().Err(err).Str("url", url).Str("stage", string(xe.Stage)).Msg("extraction failed; candidate dropped")
				} else {
					logger.Error().Err(err).Str("url", url).Msg("unexpected extraction error; candidate dropped")
				}
				return
			}
			slots[i] = slot{page: page, ok: true}
		}(i, c.URL)
	}
	wg.Wait()

	pages := make([]scrape.Page, 0, len(candidates))
	for _, s := range slots {
		if s.ok {
			pages = append(pages, s.page)
		}
	}
	return pages
}

func envelopeResults(ranked []search.Result, max int) []SearchResult {
	if max <= 0 {
		max = 10
	}
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	out := make([]SearchResult, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, SearchResult{Title: r.Title, URL: r.URL, Score: r.Score})
	}
	return out
}
