package main

// @title           RAGLab Core API
// @version         1.0
// @description     RAG comparison engine API. RAGLab Core ingests a document corpus once and answers each query through several retrieval architectures side by side, so their behavior can be compared on the same data.

// @contact.name   RAGLab OSS
// @contact.url    https://github.com/custodia-labs/raglab-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/custodia-labs/raglab-core/docs"
	"github.com/custodia-labs/raglab-core/internal/adapters/driven/ai"
	"github.com/custodia-labs/raglab-core/internal/adapters/driven/fs"
	"github.com/custodia-labs/raglab-core/internal/adapters/driven/memory"
	"github.com/custodia-labs/raglab-core/internal/adapters/driven/postgres"
	"github.com/custodia-labs/raglab-core/internal/adapters/driven/qdrant"
	memoryqueue "github.com/custodia-labs/raglab-core/internal/adapters/driven/queue/memory"
	redisqueue "github.com/custodia-labs/raglab-core/internal/adapters/driven/queue/redis"
	redisadapter "github.com/custodia-labs/raglab-core/internal/adapters/driven/redis"
	"github.com/custodia-labs/raglab-core/internal/adapters/driving/http"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driving"
	"github.com/custodia-labs/raglab-core/internal/core/services"
	"github.com/custodia-labs/raglab-core/internal/extractors"
	"github.com/custodia-labs/raglab-core/internal/runtime"
	"github.com/custodia-labs/raglab-core/internal/worker"
)

var version = "dev"

func main() {
	// Get run mode from environment (RUN_MODE) or command line arg
	mode := getEnv("RUN_MODE", "all")
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	log.Printf("raglab-core %s starting in %s mode", version, mode)

	// Configuration from environment. Every backend is optional: with no
	// URLs set the engine runs fully in-process, which is the development
	// and evaluation default.
	port := getEnvInt("PORT", 8080)
	databaseURL := getEnv("DATABASE_URL", "")
	redisURL := getEnv("REDIS_URL", "")
	qdrantURL := getEnv("QDRANT_URL", "")
	allowedOrigins := strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ",")

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== AI providers =====
	factory := ai.NewFactory()

	embedder, err := factory.CreateEmbeddingProvider(driven.EmbeddingConfig{
		Provider: getEnv("EMBEDDING_PROVIDER", "mock"),
		Model:    getEnv("EMBEDDING_MODEL", ""),
		APIKey:   getEnv("EMBEDDING_API_KEY", getEnv("JINA_API_KEY", "")),
		BaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
	})
	if err != nil {
		log.Fatalf("Failed to create embedding provider: %v", err)
	}

	llm, err := factory.CreateLLMProvider(driven.LLMConfig{
		Provider:    getEnv("LLM_PROVIDER", "mock"),
		Model:       getEnv("LLM_MODEL", ""),
		APIKey:      getEnv("LLM_API_KEY", getEnv("GEMINI_API_KEY", "")),
		BaseURL:     getEnv("LLM_BASE_URL", ""),
		Temperature: getEnvFloat("LLM_TEMPERATURE", 0),
	})
	if err != nil {
		log.Fatalf("Failed to create LLM provider: %v", err)
	}

	reranker, err := factory.CreateRerankProvider(driven.RerankConfig{
		Provider: getEnv("RERANK_PROVIDER", "semantic"),
		Model:    getEnv("RERANK_MODEL", ""),
		APIKey:   getEnv("RERANK_API_KEY", getEnv("JINA_API_KEY", "")),
		BaseURL:  getEnv("RERANK_BASE_URL", ""),
	}, embedder)
	if err != nil {
		log.Fatalf("Failed to create rerank provider: %v", err)
	}

	providers := runtime.NewProviders()
	if err := providers.ValidateAndSetEmbedding(ctx, embedder); err != nil {
		log.Fatalf("Embedding provider unavailable: %v", err)
	}
	if err := providers.ValidateAndSetLLM(ctx, llm); err != nil {
		log.Fatalf("LLM provider unavailable: %v", err)
	}
	providers.SetRerank(reranker)
	defer providers.Close()

	caps := providers.Capabilities()
	log.Printf("Providers ready: embedding=%s llm=%s rerank=%t",
		caps.EmbeddingModel, caps.LLMModel, caps.Rerank)

	// ===== Document store (PostgreSQL if configured, otherwise in-memory) =====
	var documentStore driven.DocumentStore
	var storeProbe http.Pinger
	var ingestLock driven.IngestLock

	if databaseURL != "" {
		log.Println("Connecting to PostgreSQL...")
		dbConfig := postgres.Config{
			URL:             databaseURL,
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300)) * time.Second,
			ConnMaxIdleTime: time.Duration(getEnvInt("DB_CONN_MAX_IDLE_SEC", 60)) * time.Second,
		}
		db, err := postgres.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Initialize schema (idempotent)
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		log.Println("PostgreSQL connected and schema initialized")

		documentStore = postgres.NewDocumentStore(db)
		storeProbe = http.PingerFunc(db.Ping)
		ingestLock = postgres.NewAdvisoryLock(db)
	} else {
		documentStore = memory.NewDocumentStore()
		log.Println("Using in-memory document store")
	}

	// ===== Redis (optional) =====
	var redisClient *redis.Client
	if redisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Vector index (Qdrant if configured, otherwise in-memory HNSW) =====
	var vectorIndex driven.VectorIndex
	var indexProbe http.Pinger

	if qdrantURL != "" {
		log.Println("Connecting to Qdrant...")
		qdrantConfig := qdrant.DefaultConfig(qdrantURL)
		qdrantConfig.Collection = getEnv("QDRANT_COLLECTION", qdrantConfig.Collection)
		qdrantConfig.APIKey = getEnv("QDRANT_API_KEY", "")
		qdrantConfig.VectorSize = embedder.Dimensions()

		qdrantIndex := qdrant.NewVectorIndex(qdrantConfig)
		if err := qdrantIndex.HealthCheck(ctx); err != nil {
			log.Printf("Warning: Qdrant health check failed: %v (queries may not work)", err)
		} else if err := qdrantIndex.EnsureCollection(ctx); err != nil {
			log.Printf("Warning: failed to ensure Qdrant collection: %v (index writes may fail)", err)
		} else {
			log.Println("Qdrant connected")
		}

		vectorIndex = qdrantIndex
		indexProbe = http.PingerFunc(qdrantIndex.HealthCheck)
	} else {
		memoryIndex := memory.NewVectorIndex(memory.VectorIndexConfig{})
		vectorIndex = memoryIndex
		indexProbe = http.PingerFunc(memoryIndex.HealthCheck)
		log.Println("Using in-memory vector index")
	}

	// ===== Ingest lock (Redis if available, otherwise PostgreSQL advisory locks) =====
	if redisClient != nil {
		ingestLock = redisadapter.NewIngestLock(redisClient)
		log.Println("Using Redis ingest lock")
	} else if ingestLock != nil {
		log.Println("Using PostgreSQL advisory ingest lock")
	} else {
		ingestLock = memory.NewIngestLock()
		log.Println("Using in-memory ingest lock")
	}

	// ===== Result cache (Redis if available, otherwise in-memory LRU) =====
	var resultCache driven.ResultCache
	var cacheProbe http.Pinger
	if redisClient != nil {
		resultCache = redisadapter.NewResultCache(redisClient)
		cacheProbe = http.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		log.Println("Using Redis result cache")
	} else {
		resultCache = memory.NewResultCache(0)
		log.Println("Using in-memory result cache")
	}

	// ===== Ingest queue (Redis if available, otherwise in-process) =====
	var ingestQueue driven.IngestQueue
	queueCapacity := getEnvInt("INGEST_QUEUE_CAPACITY", 16)
	if redisClient != nil {
		ingestQueue, err = redisqueue.NewQueue(redisqueue.QueueConfig{
			Client:   redisClient,
			Capacity: queueCapacity,
		})
		if err != nil {
			log.Fatalf("Failed to create ingest queue: %v", err)
		}
		log.Println("Using Redis ingest queue")
	} else {
		ingestQueue = memoryqueue.NewQueue(queueCapacity)
		log.Println("Using in-process ingest queue")
	}

	// ===== Core services =====
	statusTracker := services.NewStatusTracker()

	indexer := services.NewIndexer(services.IndexerConfig{
		Index:          vectorIndex,
		Documents:      documentStore,
		Lock:           ingestLock,
		Queue:          ingestQueue,
		Cache:          resultCache,
		Providers:      providers,
		Status:         statusTracker,
		Logger:         slog.Default(),
		LockTTL:        time.Duration(getEnvInt("INGEST_LOCK_TTL_SEC", 0)) * time.Second,
		EmbedBatchSize: getEnvInt("EMBED_BATCH_SIZE", 0),
	})

	// Seed status from persisted storage so a restart over a non-empty
	// index comes up READY instead of EMPTY.
	if err := indexer.Bootstrap(ctx); err != nil {
		log.Printf("Warning: failed to seed index status: %v", err)
	}

	registry := services.NewArchitectureRegistry()
	pipelines := []services.RAGPipeline{
		services.NewSimplePipeline(vectorIndex, providers),
		services.NewRerankPipeline(vectorIndex, providers, getEnvInt("RERANK_POOL_MULTIPLIER", 0)),
		services.NewHydePipeline(vectorIndex, providers),
	}
	for _, pipeline := range pipelines {
		if err := registry.Register(pipeline); err != nil {
			log.Fatalf("Failed to register architecture: %v", err)
		}
	}

	orchestrator := services.NewQueryOrchestrator(services.QueryOrchestratorConfig{
		Registry:            registry,
		Status:              statusTracker,
		Cache:               resultCache,
		Logger:              slog.Default(),
		ArchitectureTimeout: time.Duration(getEnvInt("ARCHITECTURE_TIMEOUT_SEC", 0)) * time.Second,
		CacheTTL:            time.Duration(getEnvInt("CACHE_TTL_SEC", 0)) * time.Second,
	})

	extractorRegistry := extractors.DefaultRegistry()

	// Optional corpus seed: ingest a directory synchronously before the
	// engine takes traffic.
	if dir := getEnv("INGEST_DIR", ""); dir != "" {
		log.Printf("Ingesting documents from %s...", dir)
		state, err := indexer.IngestSource(ctx, fs.NewSource(dir, extractorRegistry, nil))
		if err != nil {
			log.Printf("Warning: directory ingest failed: %v", err)
		} else {
			log.Printf("Ingested %d documents (%d chunks)", state.DocumentCount, state.ChunkCount)
		}
	}

	switch mode {
	case "api":
		// API-only mode: HTTP server, no worker. Background uploads need a
		// separate worker process draining the same Redis queue.
		runAPI(port, allowedOrigins, indexer, orchestrator, extractorRegistry, indexProbe, storeProbe, cacheProbe)

	case "worker":
		// Worker-only mode: drains the ingest queue, no HTTP server
		runWorkerMode(ctx, ingestQueue, indexer)

	case "all":
		// Combined mode: Run both API and Worker
		go runWorkerMode(ctx, ingestQueue, indexer)
		runAPI(port, allowedOrigins, indexer, orchestrator, extractorRegistry, indexProbe, storeProbe, cacheProbe)

	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, or all)", mode)
	}
}

func runAPI(
	port int,
	allowedOrigins []string,
	ingestService driving.IngestService,
	queryService driving.QueryService,
	extractorRegistry *extractors.Registry,
	indexProbe http.Pinger,
	storeProbe http.Pinger,
	cacheProbe http.Pinger,
) {
	cfg := http.Config{
		Host:           "0.0.0.0",
		Port:           port,
		Version:        version,
		AllowedOrigins: allowedOrigins,
		Logger:         slog.Default(),
	}

	server := http.NewServer(
		cfg,
		ingestService,
		queryService,
		extractorRegistry,
		indexProbe,
		storeProbe,
		cacheProbe,
	)

	log.Printf("API server starting on :%d", port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorkerMode starts the ingest worker. It drains the queue and runs
// each accepted batch through the indexer.
func runWorkerMode(ctx context.Context, queue driven.IngestQueue, indexer *services.Indexer) {
	log.Println("Starting worker mode...")

	w := worker.NewWorker(worker.WorkerConfig{
		Queue:   queue,
		Indexer: indexer,
		Logger:  slog.Default(),
		Backoff: time.Duration(getEnvInt("WORKER_BACKOFF_SEC", 0)) * time.Second,
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker started, processing ingest jobs...")

	// Wait for context cancellation
	<-ctx.Done()

	// Graceful shutdown
	log.Println("Stopping worker...")
	w.Stop()
	log.Println("Worker stopped")
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
