package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

// openai-stub is a local OpenAI-compatible endpoint answering the query
// generation and answer synthesis contracts with canned JSON, so the full
// pipeline can run offline together with the file-based search provider.

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		sys := ""
		if len(req.Messages) > 0 {
			sys = strings.TrimSpace(req.Messages[0].Content)
		}
		var content string
		switch {
		case strings.Contains(sys, "query generator"):
			payload := map[string]any{
				"queries": []string{
					"stub topic overview",
					"stub topic documentation",
					"stub topic examples",
					"stub topic limitations",
					"stub topic best practices",
				},
			}
			b, _ := json.Marshal(payload)
			content = string(b)
		case strings.Contains(sys, "research assistant"):
			payload := map[string]any{
				"answer":             "This is a canned answer citing [1].",
				"references":         []string{"https://example.com/stub"},
				"followup_questions": []string{"What else should I ask?"},
			}
			b, _ := json.Marshal(payload)
			content = string(b)
		default:
			http.Error(w, "unexpected system", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})

	log.Printf("openai-stub listening on %s (model=%s)", addr, model)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
