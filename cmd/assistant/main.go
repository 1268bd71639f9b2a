package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/flipsage/product-assistant/internal/agent"
	"github.com/flipsage/product-assistant/internal/ingestion"
	"github.com/flipsage/product-assistant/internal/llm"
	"github.com/flipsage/product-assistant/internal/processing"
	"github.com/flipsage/product-assistant/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	ingestCmd := flag.NewFlagSet("ingest", flag.ExitOnError)
	ingestPath := ingestCmd.String("file", "data/product_reviews.csv", "path to scraped reviews CSV")

	askCmd := flag.NewFlagSet("ask", flag.ExitOnError)
	askQuery := askCmd.String("q", "", "query text")

	if len(os.Args) < 2 {
		fmt.Println("Usage: assistant <ingest|ask> [flags]")
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "ingest":
		ingestCmd.Parse(os.Args[2:])
		runIngest(ctx, *ingestPath)

	case "ask":
		askCmd.Parse(os.Args[2:])
		if *askQuery == "" {
			fmt.Println("Please provide -q \"your query\"")
			os.Exit(1)
		}
		runAsk(ctx, *askQuery)

	default:
		fmt.Println("expected 'ingest' or 'ask' subcommands")
		os.Exit(1)
	}
}

func runIngest(ctx context.Context, path string) {
	if err := storage.InitDB(ctx); err != nil {
		log.Fatal("DB init:", err)
	}
	defer storage.CloseDB()
	if err := storage.InitCatalog(); err != nil {
		log.Fatal("catalog init:", err)
	}
	defer storage.CloseCatalog()

	products, err := ingestion.LoadCSV(path)
	if err != nil {
		log.Fatal("load csv:", err)
	}
	log.Printf("Loaded %d products from %s", len(products), path)

	embedder := processing.NewEmbedder(getEnv("OLLAMA_URL", "http://localhost:11434"), os.Getenv("EMBED_MODEL"))

	indexed := 0
	for _, p := range products {
		log.Println("Indexing:", p.Title)

		if err := storage.UpsertProduct(storage.Product{
			ProductID:    p.ProductID,
			Title:        p.Title,
			Price:        p.Price,
			Rating:       p.Rating,
			TotalReviews: p.TotalReviews,
		}); err != nil {
			log.Println("catalog upsert error:", err)
			continue
		}

		chunks := processing.SplitReviews(p.TopReviews)
		if len(chunks) == 0 {
			log.Println("no reviews for:", p.Title)
			continue
		}
		embs, err := embedder.EmbedChunks(ctx, chunks)
		if err != nil {
			log.Println("embed error:", err)
			continue
		}
		for i := range chunks {
			review := storage.Review{
				ProductTitle: p.Title,
				Price:        p.Price,
				Rating:       p.Rating,
				Content:      chunks[i],
			}
			if err := storage.InsertReview(ctx, review, embs[i]); err != nil {
				log.Println("db insert error:", err)
			}
		}
		indexed++
	}
	fmt.Printf("Indexing complete: %d/%d products.\n", indexed, len(products))
}

func runAsk(ctx context.Context, query string) {
	workflow := agent.New(loadAgentConfig(), newCompletionClient(), openRetriever)

	answer, err := workflow.Run(ctx, query)
	if err != nil {
		if agent.IsCycleLimit(err) {
			fmt.Println("Answer:", fallbackAnswer)
			return
		}
		log.Fatal(err)
	}
	fmt.Println("Answer:", answer)
}

// fallbackAnswer is shown when the rewrite budget runs out without a
// grounded answer.
const fallbackAnswer = "I couldn't find a confident answer in the indexed reviews. Try rephrasing the question or indexing more products."

func newCompletionClient() *llm.Client {
	return llm.NewClient(getEnv("OLLAMA_URL", "http://localhost:11434"), os.Getenv("OLLAMA_MODEL"))
}

// openRetriever connects lazily: a direct-answer run never touches the
// database.
func openRetriever(ctx context.Context) (agent.Retriever, error) {
	if err := storage.InitDB(ctx); err != nil {
		return nil, err
	}
	embedder := processing.NewEmbedder(getEnv("OLLAMA_URL", "http://localhost:11434"), os.Getenv("EMBED_MODEL"))
	return storage.NewVectorRetriever(embedder), nil
}

func loadAgentConfig() agent.Config {
	cfg := agent.DefaultConfig()
	if v, err := strconv.Atoi(getEnv("TOP_K", "")); err == nil && v > 0 {
		cfg.TopK = v
	}
	if v, err := strconv.Atoi(getEnv("MAX_REWRITES", "")); err == nil && v > 0 {
		cfg.MaxRewrites = v
	}
	if v, err := strconv.Atoi(getEnv("CALL_TIMEOUT_SECONDS", "")); err == nil && v > 0 {
		cfg.CallTimeout = time.Duration(v) * time.Second
	}
	if kw := getEnv("TRIGGER_KEYWORDS", ""); kw != "" {
		var keywords []string
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) > 0 {
			cfg.TriggerKeywords = keywords
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
