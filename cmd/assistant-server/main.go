package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flipsage/product-assistant/internal/agent"
	"github.com/flipsage/product-assistant/internal/llm"
	"github.com/flipsage/product-assistant/internal/processing"
	"github.com/flipsage/product-assistant/internal/storage"
)

// QueryRequest is the /query payload.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse carries the assistant's answer. Grounded is false when
// the answer is the low-confidence fallback.
type QueryResponse struct {
	Query    string `json:"query"`
	Answer   string `json:"answer"`
	Grounded bool   `json:"grounded"`
	Cached   bool   `json:"cached"`
}

const fallbackAnswer = "I couldn't find a confident answer in the indexed reviews. Try rephrasing the question or indexing more products."

var (
	workflow    *agent.Workflow
	redisClient *redis.Client
	cacheTTL    time.Duration
)

// Prometheus metrics
var (
	queryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_query_requests_total",
			Help: "Total number of query requests",
		},
		[]string{"status"},
	)
	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_query_duration_seconds",
			Help: "Duration of query requests",
		},
		[]string{"cached"},
	)
	cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_cache_requests_total",
			Help: "Answer cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(queryRequestsTotal)
	prometheus.MustRegister(queryDuration)
	prometheus.MustRegister(cacheHitsTotal)
}

func main() {
	godotenv.Load()

	ctx := context.Background()
	if err := storage.InitDB(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer storage.CloseDB()
	if err := storage.InitCatalog(); err != nil {
		log.Fatalf("Failed to initialize catalog: %v", err)
	}
	defer storage.CloseCatalog()

	initRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	// One workflow instance serves all requests: the retriever handle is
	// memoized once and the pgx pool behind it is concurrency-safe.
	ollamaURL := getEnv("OLLAMA_URL", "http://localhost:11434")
	embedder := processing.NewEmbedder(ollamaURL, os.Getenv("EMBED_MODEL"))
	workflow = agent.NewWithRetriever(
		loadAgentConfig(),
		llm.NewClient(ollamaURL, os.Getenv("OLLAMA_MODEL")),
		storage.NewVectorRetriever(embedder),
	)

	router := mux.NewRouter()
	router.HandleFunc("/query", handleQuery).Methods("POST")
	router.HandleFunc("/products", handleProducts).Methods("GET")
	router.HandleFunc("/health", handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())

	port := getEnv("PORT", "8084")
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Assistant server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

func initRedis() {
	addr := getEnv("REDIS_URL", "")
	if addr == "" {
		log.Println("REDIS_URL not set, answer cache disabled")
		return
	}
	redisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis unreachable (%v), answer cache disabled", err)
		redisClient = nil
		return
	}

	ttlMinutes := 60
	if v, err := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "")); err == nil && v > 0 {
		ttlMinutes = v
	}
	cacheTTL = time.Duration(ttlMinutes) * time.Minute
	log.Printf("Answer cache enabled (ttl %s)", cacheTTL)
}

func handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		queryRequestsTotal.WithLabelValues("bad_request").Inc()
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		queryRequestsTotal.WithLabelValues("bad_request").Inc()
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	key := cacheKey(req.Query)
	if cached, ok := cacheGet(r.Context(), key); ok {
		cached.Cached = true
		cacheHitsTotal.WithLabelValues("hit").Inc()
		queryRequestsTotal.WithLabelValues("ok").Inc()
		queryDuration.WithLabelValues("true").Observe(time.Since(start).Seconds())
		writeJSON(w, http.StatusOK, cached)
		return
	}
	cacheHitsTotal.WithLabelValues("miss").Inc()

	answer, err := workflow.Run(r.Context(), req.Query)
	resp := QueryResponse{Query: req.Query, Answer: answer, Grounded: true}
	switch {
	case err == nil:
		cacheSet(r.Context(), key, resp)
	case agent.IsCycleLimit(err):
		// A quality failure, not an outage: answer with the fallback.
		resp.Answer = fallbackAnswer
		resp.Grounded = false
	case errors.Is(err, agent.ErrRateLimited):
		queryRequestsTotal.WithLabelValues("rate_limited").Inc()
		http.Error(w, "backend rate limited, retry later", http.StatusTooManyRequests)
		return
	default:
		log.Printf("query failed: %v", err)
		queryRequestsTotal.WithLabelValues("error").Inc()
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}

	queryRequestsTotal.WithLabelValues("ok").Inc()
	queryDuration.WithLabelValues("false").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, resp)
}

func handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := storage.ListProducts()
	if err != nil {
		log.Printf("list products failed: %v", err)
		http.Error(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(products),
		"products": products,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "assistant-server",
	})
}

func cacheKey(query string) string {
	return "answer:" + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func cacheGet(ctx context.Context, key string) (QueryResponse, bool) {
	if redisClient == nil {
		return QueryResponse{}, false
	}
	raw, err := redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return QueryResponse{}, false
	}
	if err != nil {
		log.Printf("cache get failed: %v", err)
		return QueryResponse{}, false
	}
	var resp QueryResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return QueryResponse{}, false
	}
	return resp, true
}

func cacheSet(ctx context.Context, key string, resp QueryResponse) {
	if redisClient == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := redisClient.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		log.Printf("cache set failed: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
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
