package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/askweb/askweb/internal/pipeline"
)

func TestWritePDF_ProducesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "answer.pdf")
	res := &pipeline.Success{
		Question:   "How do goroutines work?",
		Answer:     "# Goroutines\n\nThey are multiplexed onto OS threads [1].\n",
		References: []string{"https://example.com/goroutines"},
		Followups:  []string{"What is GOMAXPROCS?"},
	}

	if err := WritePDF(res, out); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("pdf file is empty")
	}
}
