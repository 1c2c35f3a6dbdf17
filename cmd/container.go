package main

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/gapflow/internal/ai/embeddings"
	"github.com/Abraxas-365/gapflow/internal/ai/llmrouter"
	"github.com/Abraxas-365/gapflow/internal/cache"
	"github.com/Abraxas-365/gapflow/internal/config"
	"github.com/Abraxas-365/gapflow/interview/answerflow/answerflowapi"
	"github.com/Abraxas-365/gapflow/interview/answerflow/answerflowinfra"
	"github.com/Abraxas-365/gapflow/interview/answerflow/answerflowsrv"
	"github.com/Abraxas-365/gapflow/interview/question/questionapi"
	"github.com/Abraxas-365/gapflow/interview/question/questionsrv"
	"github.com/Abraxas-365/gapflow/interview/resource"
	"github.com/Abraxas-365/gapflow/interview/resource/resourceapi"
	"github.com/Abraxas-365/gapflow/interview/resource/resourceinfra"
	"github.com/Abraxas-365/gapflow/interview/resource/resourcesrv"
	"github.com/Abraxas-365/gapflow/pkg/logx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	Settings *config.Settings

	// Infrastructure
	DB    *sqlx.DB      // nil without DATABASE_URL; catalog matching is skipped
	Redis *redis.Client // nil without REDIS_ADDR; L1-only cache, file snapshots

	// AI plumbing
	Cache       *cache.TwoTier
	Router      *llmrouter.Router
	EmbedRouter *embeddings.Router

	// Domain services
	QuestionService *questionsrv.Service
	ResourceService *resourcesrv.Service
	Engine          *answerflowsrv.Engine
	Janitor         *answerflowinfra.Janitor

	// API handlers
	QuestionHandlers   *questionapi.Handlers
	ResourceHandlers   *resourceapi.Handlers
	AnswerFlowHandlers *answerflowapi.Handlers
}

// NewContainer initializes the dependency injection container
func NewContainer(ctx context.Context, settings *config.Settings) *Container {
	c := &Container{Settings: settings}
	c.initInfrastructure(ctx)
	c.initServices(ctx)
	return c
}

func (c *Container) initInfrastructure(ctx context.Context) {
	// 1. Database connection, optional. Without it the curated resource
	// catalog is disabled and searches go straight to the web.
	if c.Settings.DatabaseURL != "" {
		db, err := sqlx.Connect("postgres", c.Settings.DatabaseURL)
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		c.DB = db
	} else {
		logx.Warn("DATABASE_URL is not set, resource catalog disabled")
	}

	// 2. Redis connection, optional. Without it the cache runs L1-only
	// and snapshots fall back to local files.
	if c.Settings.RedisAddr != "" {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Settings.RedisAddr,
			Password: c.Settings.RedisPassword,
			DB:       0,
		})
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			logx.Warnf("Failed to connect to Redis: %v", err)
		}
	} else {
		logx.Warn("REDIS_ADDR is not set, running with in-process cache only")
	}

	// 3. Two-tier cache
	var shared cache.SharedStore
	if c.Redis != nil {
		shared = cache.NewRedisStore(c.Redis)
	}
	c.Cache = cache.New(c.Settings.L1CacheSize, shared)
}

func (c *Container) initServices(ctx context.Context) {
	s := c.Settings

	// --- LLM routing ---
	gemini, err := llmrouter.NewGeminiProvider(ctx, s.GeminiAPIKey, s.AnalysisModel)
	if err != nil {
		logx.Fatalf("Failed to create Gemini provider: %v", err)
	}
	openAI, err := llmrouter.NewOpenAIProvider(s.OpenAIAPIKey, s.FallbackModel)
	if err != nil {
		logx.Fatalf("Failed to create OpenAI fallback provider: %v", err)
	}

	policy := llmrouter.RetryPolicy{
		Attempts:  s.MaxRetries,
		MinWait:   s.RetryMinWaitDuration(),
		MaxWait:   s.RetryMaxWaitDuration(),
		Retryable: llmrouter.IsTransient,
	}
	breakers := llmrouter.NewBreakerRegistry(llmrouter.BreakerConfig{
		FailureThreshold: s.CircuitBreakerFailureThreshold,
		RecoveryTimeout:  s.BreakerRecoveryTimeoutDuration(),
		HalfOpenRequests: s.CircuitBreakerHalfOpenRequests,
	}, s.EnableCircuitBreaker)

	c.Router = llmrouter.New(llmrouter.Config{
		Primary:     gemini,
		Secondary:   openAI,
		Policy:      policy,
		CallTimeout: s.LLMTimeoutDuration(),
		Admission:   llmrouter.NewSemaphore(s.MaxConcurrentLLMCalls, s.LLMQueueTimeoutDuration()),
		Breakers:    breakers,
		PromptCache: llmrouter.NewPromptCache(s.EnablePromptCache),
	})

	// Register the stable system prompts so the first request of each
	// kind already counts as a prefix reuse upstream
	warm := map[string]string{}
	for name, prompt := range questionsrv.SystemPrompts() {
		warm[name] = prompt
	}
	for name, prompt := range answerflowsrv.SystemPrompts() {
		warm[name] = prompt
	}
	c.Router.WarmPromptCache(warm)

	// --- Embeddings ---
	var embedSecondary embeddings.Provider
	if s.OpenAIAPIKey != "" {
		if e, err := embeddings.NewOpenAIEmbedder(s.OpenAIAPIKey); err == nil {
			embedSecondary = e
		}
	}
	c.EmbedRouter = embeddings.New(embeddings.Config{
		Primary:     embeddings.NewGeminiEmbedder(gemini, s.EmbeddingModel),
		Secondary:   embedSecondary,
		Policy:      policy,
		CallTimeout: s.EmbeddingTimeoutDuration(),
		Cache:       c.Cache,
		CacheTTL:    s.EmbeddingCacheTTLDuration(),
	})

	// --- Snapshots ---
	snapshots, err := answerflowinfra.NewSnapshotStore(c.Redis, s.SnapshotDir)
	if err != nil {
		logx.Fatalf("Failed to create snapshot store: %v", err)
	}
	c.Janitor = answerflowinfra.NewJanitor(snapshots, time.Hour, s.SnapshotMaxAge())

	// --- Resource search ---
	var catalog resource.Catalog
	if c.DB != nil {
		catalog = resourceinfra.NewPostgresCatalog(c.DB)
	}
	c.ResourceService = resourcesrv.NewService(
		catalog,
		resourceinfra.NewSearXNGClient(s.SearxngURL),
		resourceinfra.NewPerplexicaClient(s.PerplexicaURL, s.AnalysisModel, s.EmbeddingModel),
		c.EmbedRouter,
	)

	// --- Question generation ---
	c.QuestionService = questionsrv.NewService(c.Router, s.AnalysisModel, s.GenerationTemperature, s.MaxConcurrentLLMCalls)

	// --- Answer workflow ---
	c.Engine = answerflowsrv.NewEngine(answerflowsrv.Config{
		DeepDive:    answerflowsrv.NewDeepDiveGenerator(c.Router, s.AnalysisModel, s.GenerationTemperature),
		Generator:   answerflowsrv.NewAnswerGenerator(c.Router, s.AnalysisModel, s.GenerationTemperature),
		Evaluator:   answerflowsrv.NewEvaluator(c.Router, s.AnalysisModel, s.AnalysisTemperature),
		Refiner:     answerflowsrv.NewRefiner(c.Router, s.AnalysisModel, s.GenerationTemperature),
		Snapshots:   snapshots,
		Resources:   c.ResourceService,
		SnapshotTTL: s.SnapshotMaxAge(),
	})

	// --- Handlers ---
	c.QuestionHandlers = questionapi.NewHandlers(c.QuestionService)
	c.ResourceHandlers = resourceapi.NewHandlers(c.ResourceService)
	c.AnswerFlowHandlers = answerflowapi.NewHandlers(c.Engine, snapshots, c.Cache, c.Router)
}

// Close releases the container's long-lived connections
func (c *Container) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
	if c.Redis != nil {
		c.Redis.Close()
	}
}

// logLevelFor maps the LOG_LEVEL setting onto the logx scale
func logLevelFor(raw string) logx.Level {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "DEBUG":
		return logx.LevelDebug
	case "WARN", "WARNING":
		return logx.LevelWarn
	case "ERROR":
		return logx.LevelError
	default:
		return logx.LevelInfo
	}
}
