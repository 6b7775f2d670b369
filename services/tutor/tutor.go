// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tutor provides the Korean-tutor backend service.
//
// This package contains the main service type that coordinates all
// components: HTTP routing, the agent loop, retrieval, conversation
// persistence, transcription, the interaction log, and observability
// infrastructure.
//
// # Usage
//
//	cfg := tutor.Config{Port: 12310, APISecret: secret}
//	svc, err := tutor.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/hangeul/services/llm"
	"github.com/AleutianAI/hangeul/services/tutor/agent"
	"github.com/AleutianAI/hangeul/services/tutor/chatlog"
	"github.com/AleutianAI/hangeul/services/tutor/conversation"
	"github.com/AleutianAI/hangeul/services/tutor/datatypes"
	"github.com/AleutianAI/hangeul/services/tutor/observability"
	"github.com/AleutianAI/hangeul/services/tutor/retrieval"
	"github.com/AleutianAI/hangeul/services/tutor/routes"
	"github.com/AleutianAI/hangeul/services/tutor/transcribe"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the tutor service.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Run() blocks and should
// only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing.
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds tutor service configuration options.
//
// # Description
//
// Config centralizes all configuration for the tutor service. Values can
// be populated from environment variables, config files, or
// programmatically for testing. APISecret and OpenAIKey are the only
// fields without defaults.
type Config struct {
	// Port is the HTTP server port. Default: 12310
	Port int

	// APISecret is the shared secret checked by the access_token
	// middleware. Required.
	APISecret string

	// OpenAIKey authenticates chat, embedding, and transcription calls.
	// Required.
	OpenAIKey string

	// WeaviateURL is the Weaviate vector database URL.
	// If empty, conversations are kept in memory and retrieval is
	// disabled. Example: "http://localhost:8080"
	WeaviateURL string

	// ChatModel is the chat completion model. Default: "gpt-4o-mini"
	ChatModel string

	// EmbeddingModel embeds retrieval queries.
	// Default: "text-embedding-3-small"
	EmbeddingModel string

	// WhisperModel transcribes voice notes. Default: "whisper-1"
	WhisperModel string

	// ChatLogPath is the SQLite file for the interaction log.
	// Default: "./logs/chat_logs.db"
	ChatLogPath string

	// ChatLogQueueSize bounds the async interaction log queue.
	// Default: 256
	ChatLogQueueSize int

	// KeepMessages is the trimmer window. Default: 10
	KeepMessages int

	// MaxToolRounds caps retrieval rounds per turn. Default: 5
	MaxToolRounds int

	// RetrievalTopK is the number of lesson chunks per retrieval.
	// Default: 4
	RetrievalTopK int

	// RetrievalAlpha balances dense and sparse search. Default: 0.5
	RetrievalAlpha float32

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "aleutian-otel-collector:4317"
	OTelEndpoint string

	// GinMode sets the Gin framework mode.
	// Valid values: "debug", "release", "test"
	GinMode string

	// EnableMetrics exposes the Prometheus metrics endpoint.
	// Default: true
	EnableMetrics bool
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
//
// # Thread Safety
//
// Thread-safe after construction. All fields are read-only after New()
// returns.
type service struct {
	config         Config
	router         *gin.Engine
	agent          *agent.Agent
	weaviateClient *weaviate.Client
	chatLogStore   *chatlog.Store
	chatLogWriter  *chatlog.Writer
	tracerCleanup  func(context.Context)
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a new tutor Service with the given configuration.
//
// # Description
//
// New initializes all components:
//  1. Applies default configuration for missing values
//  2. Initializes OpenTelemetry tracing and Prometheus metrics
//  3. Connects to Weaviate and ensures the schema (optional)
//  4. Creates the OpenAI chat, embedding, and transcription clients
//  5. Opens the SQLite interaction log and starts the async writer
//  6. Assembles the agent and registers HTTP routes
//
// # Inputs
//
//   - cfg: Service configuration. APISecret and OpenAIKey are required.
//
// # Outputs
//
//   - Service: Ready-to-run tutor service
//   - error: Non-nil if initialization fails
//
// # Limitations
//
//   - Without Weaviate the service runs with in-memory conversations
//     and no lesson retrieval.
//
// # Assumptions
//
//   - Network is available for external service connections
func New(cfg Config) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	if s.config.APISecret == "" {
		return nil, fmt.Errorf("API secret is not set")
	}
	if s.config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}

	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	if s.config.EnableMetrics {
		observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics")
	}

	if err := s.initWeaviate(); err != nil {
		slog.Warn("Weaviate initialization failed, running in lightweight mode",
			"error", err)
		s.weaviateClient = nil
	}

	llmClient, err := llm.NewOpenAIClient(s.config.OpenAIKey, s.config.ChatModel)
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	transcriber, err := transcribe.NewWhisperTranscriber(s.config.OpenAIKey, s.config.WhisperModel)
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize transcriber: %w", err)
	}

	retriever, store, err := s.initRetrievalAndStore()
	if err != nil {
		s.cleanup()
		return nil, err
	}

	if err := s.initChatLog(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize interaction log: %w", err)
	}

	s.agent = agent.New(llmClient, retriever, store, agent.Config{
		KeepMessages:  s.config.KeepMessages,
		MaxToolRounds: s.config.MaxToolRounds,
	}, observability.DefaultMetrics)

	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("tutor-service"))
	routes.Register(s.router, routes.Dependencies{
		Runner:        s.agent,
		Transcriber:   transcriber,
		Logs:          s.chatLogWriter,
		Metrics:       observability.DefaultMetrics,
		APISecret:     s.config.APISecret,
		EnableMetrics: s.config.EnableMetrics,
	})

	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting tutor server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 12310
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = llm.DefaultChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = retrieval.DefaultEmbeddingModel
	}
	if cfg.WhisperModel == "" {
		cfg.WhisperModel = transcribe.DefaultModel
	}
	if cfg.ChatLogPath == "" {
		cfg.ChatLogPath = "./logs/chat_logs.db"
	}
	if cfg.ChatLogQueueSize == 0 {
		cfg.ChatLogQueueSize = chatlog.DefaultQueueSize
	}
	if cfg.KeepMessages == 0 {
		cfg.KeepMessages = agent.DefaultKeepMessages
	}
	if cfg.MaxToolRounds == 0 {
		cfg.MaxToolRounds = agent.DefaultMaxToolRounds
	}
	retrievalDefaults := retrieval.DefaultConfig()
	if cfg.RetrievalTopK == 0 {
		cfg.RetrievalTopK = retrievalDefaults.TopK
	}
	if cfg.RetrievalAlpha == 0 {
		cfg.RetrievalAlpha = retrievalDefaults.Alpha
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "aleutian-otel-collector:4317"
	}
	cfg.EnableMetrics = true

	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// Uses an insecure gRPC connection, appropriate for internal networks.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("tutor-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initWeaviate initializes the Weaviate vector database client.
//
// Returns nil error if WeaviateURL is empty; Weaviate is optional.
func (s *service) initWeaviate() error {
	weaviateURL := strings.Trim(s.config.WeaviateURL, "\"' ")

	if weaviateURL == "" || !strings.Contains(weaviateURL, "http") {
		slog.Info("Weaviate URL not configured, running in lightweight mode")
		return nil
	}

	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("invalid Weaviate URL: %s", weaviateURL)
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	})
	if err != nil {
		return fmt.Errorf("failed to create Weaviate client: %w", err)
	}

	if err := datatypes.EnsureWeaviateSchema(context.Background(), client); err != nil {
		return fmt.Errorf("failed to ensure Weaviate schema: %w", err)
	}

	s.weaviateClient = client
	slog.Info("Weaviate client initialized", "url", weaviateURL)

	return nil
}

// initRetrievalAndStore builds the retriever and conversation store.
//
// With Weaviate both are backed by it; without, conversations live in
// memory and the agent answers from the model alone.
func (s *service) initRetrievalAndStore() (agent.DocumentRetriever, conversation.Store, error) {
	if s.weaviateClient == nil {
		slog.Warn("Running without Weaviate: in-memory conversations, no lesson retrieval")
		return nil, conversation.NewMemoryStore(), nil
	}

	embedder, err := retrieval.NewOpenAIEmbedder(s.config.OpenAIKey, s.config.EmbeddingModel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	retriever := retrieval.NewRetriever(s.weaviateClient, embedder, retrieval.Config{
		TopK:  s.config.RetrievalTopK,
		Alpha: s.config.RetrievalAlpha,
	})

	return retriever, conversation.NewWeaviateStore(s.weaviateClient), nil
}

// initChatLog opens the SQLite store and starts the async writer.
func (s *service) initChatLog() error {
	store, err := chatlog.OpenStore(s.config.ChatLogPath)
	if err != nil {
		return err
	}
	s.chatLogStore = store

	writer := chatlog.NewWriter(store, s.config.ChatLogQueueSize, observability.DefaultMetrics)
	if err := writer.Start(context.Background()); err != nil {
		return err
	}
	s.chatLogWriter = writer

	slog.Info("Interaction log started",
		"path", s.config.ChatLogPath,
		"queue_size", s.config.ChatLogQueueSize)

	return nil
}

// cleanup releases all resources held by the service.
func (s *service) cleanup() {
	if s.chatLogWriter != nil {
		if err := s.chatLogWriter.Stop(); err != nil {
			slog.Warn("Interaction log writer stop error", "error", err)
		}
	}

	if s.chatLogStore != nil {
		if err := s.chatLogStore.Close(); err != nil {
			slog.Warn("Interaction log close error", "error", err)
		}
	}

	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
