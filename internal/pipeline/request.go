package pipeline

import (
	"encoding/json"
	"errors"
	"strings"
)

// Request is the tool invocation surface of the pipeline.
type Request struct {
	Instruction string `json:"instruction"`
	// Question defaults to Instruction when absent. The two can diverge;
	// when the default is applied the run logs it at debug level.
	Question string `json:"question,omitempty"`
	// NumQueries defaults to the configured value (3 unless overridden).
	NumQueries int `json:"num_queries,omitempty"`
}

// ParseRequest decodes a JSON request body.
func ParseRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, err
	}
	if strings.TrimSpace(req.Instruction) == "" {
		return Request{}, errors.New("request: instruction is required")
	}
	return req, nil
}
