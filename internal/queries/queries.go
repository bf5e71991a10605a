package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/askweb/askweb/internal/llm"
)

// Generator produces search engine queries for an instruction. On success
// the returned slice has exactly the requested length.
type Generator interface {
	Generate(ctx context.Context, instruction string, numQueries int) ([]string, error)
}

// LLMGenerator calls an OpenAI-compatible endpoint and enforces a JSON-only
// contract.
type LLMGenerator struct {
	Client  llm.Client
	Model   string
	Verbose bool
}

const systemMessage = "You are an expert search engine query generator. Respond with strict JSON only, no narration. The JSON schema is {\"queries\": string[]}. Produce exactly the requested number of queries. Each query must be phrased like a search engine query (keywords, not a question), be concise, and cover a different angle of the instruction."

// Generate implements Generator using the chat completions API. If the model
// returns non-JSON, an unparsable payload, or fewer queries than requested,
// an error is returned; query generation has no useful partial output.
func (g *LLMGenerator) Generate(ctx context.Context, instruction string, numQueries int) ([]string, error) {
	if g.Client == nil || g.Model == "" {
		return nil, errors.New("query generator not configured")
	}
	if numQueries <= 0 {
		numQueries = 3
	}

	user := buildUserPrompt(instruction, numQueries)
	if g.Verbose {
		// Log prompt sizes only; instructions may contain sensitive text.
		log.Debug().Str("stage", "queries").Str("model", g.Model).Int("system_len", len(systemMessage)).Int("user_len", len(user)).Msg("query prompt")
	}

	resp, err := g.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return nil, fmt.Errorf("query generation call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices")
	}

	var payload struct {
		Queries []string `json:"queries"`
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parse queries json: %w", err)
	}

	out := sanitize(payload.Queries)
	if len(out) < numQueries {
		return nil, fmt.Errorf("insufficient queries: wanted %d, got %d", numQueries, len(out))
	}
	return out[:numQueries], nil
}

func buildUserPrompt(instruction string, numQueries int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generate %d search queries for the following instruction.\n\nInstruction: ", numQueries))
	sb.WriteString(instruction)
	return sb.String()
}

// sanitize trims whitespace, drops empties and duplicates, and removes
// trailing punctuation that weakens search queries.
func sanitize(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, q := range in {
		s := strings.TrimSpace(q)
		s = strings.TrimSuffix(s, ".")
		s = strings.TrimSuffix(s, "?")
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
