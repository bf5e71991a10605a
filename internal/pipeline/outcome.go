package pipeline

import (
	"github.com/askweb/askweb/internal/scrape"
)

// Stage names an orchestrator phase whose failure is fatal. Extraction never
// appears here: its failures are isolated per candidate by contract.
type Stage string

const (
	StageQueries Stage = "queries"
	StageSearch  Stage = "search"
	StageAnswer  Stage = "answer"
)

// Outcome is the single JSON envelope a request produces: either *Success or
// *Failure, never a mix. Callers distinguish the serialized shapes by the
// presence of the "error" key.
type Outcome interface {
	outcome()
}

// SearchResult is the envelope view of one ranked hit.
type SearchResult struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// Success is the envelope for a completed request, including degraded
// completions with fewer (or zero) extracted pages than requested.
type Success struct {
	Question         string         `json:"question"`
	QueriesGenerated []string       `json:"queries_generated"`
	SearchResults    []SearchResult `json:"search_results"`
	ExtractedPages   []scrape.Page  `json:"extracted_pages"`
	Answer           string         `json:"answer"`
	References       []string       `json:"references"`
	Followups        []string       `json:"followup_questions"`
}

func (*Success) outcome() {}

// Failure is the envelope for a fatally failed request.
type Failure struct {
	Error    string `json:"error"`
	Question string `json:"question"`
	Stage    Stage  `json:"stage"`
}

func (*Failure) outcome() {}
