package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/askweb/askweb/internal/search"
)

func main() {
	apiKey := os.Getenv("TAVILY_API_KEY")
	base := os.Getenv("TAVILY_BASE_URL")
	q := "What is love?"
	if len(os.Args) > 1 {
		q = os.Args[1]
	}
	client := &http.Client{Timeout: 20 * time.Second}
	prov := &search.Tavily{BaseURL: base, APIKey: apiKey, HTTPClient: client, UserAgent: "debugsearch/1.0"}
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	res, err := prov.Search(ctx, q, 5)
	fmt.Println("err:", err)
	for i, r := range res {
		fmt.Printf("%d. [%.3f] %s — %s\n", i+1, r.Score, r.Title, r.URL)
	}
}
