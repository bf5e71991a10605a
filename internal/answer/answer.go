package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/askweb/askweb/internal/llm"
	"github.com/askweb/askweb/internal/scrape"
)

// Result is the synthesized answer plus optional source references and
// follow-up questions. References and Followups are never nil.
type Result struct {
	Answer     string
	References []string
	Followups  []string
}

// Synthesizer produces a sourced answer from extracted pages. An empty pages
// slice is a valid degraded input, not an error.
type Synthesizer interface {
	Answer(ctx context.Context, question string, pages []scrape.Page) (Result, error)
}

// LLMSynthesizer calls an OpenAI-compatible endpoint with a strict JSON
// contract over the extracted page context.
type LLMSynthesizer struct {
	Client  llm.Client
	Model   string
	Verbose bool
	// PerPageChars caps how much of each page's markdown is sent to the
	// model. Zero means the default of 12000.
	PerPageChars int
}

const systemMessage = "You are an expert research assistant providing accurate, well-sourced answers. Base the answer on the provided web sources and cite them by number. If no sources are provided, answer from general knowledge and state that sources were unavailable. If sources conflict, acknowledge the discrepancy. Respond with strict JSON only, no narration. The JSON schema is {\"answer\": string, \"references\": string[], \"followup_questions\": string[]}. References are source URLs actually used; followup_questions are up to three natural next questions."

// ErrEmptyAnswer indicates the model produced no usable answer text.
var ErrEmptyAnswer = errors.New("empty answer")

func (s *LLMSynthesizer) Answer(ctx context.Context, question string, pages []scrape.Page) (Result, error) {
	if s.Client == nil || s.Model == "" {
		return Result{}, errors.New("answer synthesizer not configured")
	}

	user := buildUserMessage(question, pages, s.perPageChars())
	if s.Verbose {
		log.Debug().Str("stage", "answer").Str("model", s.Model).Int("sources", len(pages)).Int("user_len", len(user)).Msg("answer prompt")
	}

	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return Result{}, fmt.Errorf("answer synthesis call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, ErrEmptyAnswer
	}

	var payload struct {
		Answer     string   `json:"answer"`
		References []string `json:"references"`
		Followups  []string `json:"followup_questions"`
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Result{}, fmt.Errorf("parse answer json: %w", err)
	}
	if strings.TrimSpace(payload.Answer) == "" {
		return Result{}, ErrEmptyAnswer
	}

	out := Result{
		Answer:     strings.TrimSpace(payload.Answer),
		References: payload.References,
		Followups:  payload.Followups,
	}
	// Optional fields default to empty sequences, never nil.
	if out.References == nil {
		out.References = []string{}
	}
	if out.Followups == nil {
		out.Followups = []string{}
	}
	return out, nil
}

func (s *LLMSynthesizer) perPageChars() int {
	if s.PerPageChars > 0 {
		return s.PerPageChars
	}
	return 12_000
}

func buildUserMessage(question string, pages []scrape.Page, capChars int) string {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	if len(pages) == 0 {
		sb.WriteString("\n\nNo web sources could be retrieved for this question.")
		return sb.String()
	}
	sb.WriteString("\n\nSources:\n")
	for i, p := range pages {
		sb.WriteString(fmt.Sprintf("\n%d. %s (%s)\n%s\n", i+1, p.Metadata.Title, p.URL, truncate(p.Content, capChars)))
	}
	return sb.String()
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
