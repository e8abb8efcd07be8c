package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"clipseek/features/ingest"
	"clipseek/features/library"
	"clipseek/features/search"
	"clipseek/internal/adapter/gemini"
	wstore "clipseek/internal/adapter/weaviate"
	"clipseek/internal/config"
	"clipseek/internal/logger"
	"clipseek/internal/middleware"
	"clipseek/internal/vector"
	"clipseek/internal/youtube"
)

func main() {
	// Initialize structured logger
	slogger := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(slogger)

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if !cfg.HasAPIKey() {
		slog.Warn("no GEMINI_API_KEY configured; search requires a key via X-API-Key and ingestion is disabled")
	}

	// 2. Weaviate Connection & Schema
	wCfg := weaviate.Config{
		Host:   cfg.WeaviateHost,
		Scheme: cfg.WeaviateScheme,
	}
	wClient, err := weaviate.NewClient(wCfg)
	if err != nil {
		slog.Error("failed to create weaviate client", "error", err)
		os.Exit(1)
	}

	wAdapter := vector.NewWeaviateClientAdapter(wClient)

	// Retry Weaviate Schema Ensure
	for i := 0; i < cfg.BootstrapRetryAttempts; i++ {
		if err := vector.EnsureSchema(context.Background(), wAdapter); err == nil {
			slog.Info("weaviate schema ensured")
			break
		}
		slog.Warn("failed to ensure weaviate schema, retrying...", "attempt", i+1, "error", err)
		time.Sleep(time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second)
	}

	if err := vector.EnsureSchema(context.Background(), wAdapter); err != nil {
		slog.Error("failed to ensure weaviate schema after retries", "error", err)
		os.Exit(1)
	}

	// 3. Adapters
	clipStore := wstore.NewStore(wClient)
	embedder := gemini.NewDynamicEmbedder(cfg.GeminiAPIKey)
	scraper := youtube.NewScraper()
	captions := youtube.NewCaptionClient()
	oembed := youtube.NewOEmbedClient()

	// NSQ Producer (optional; outcome events only)
	var publisher ingest.EventPublisher
	if cfg.NSQDHost != "" {
		producer, err := nsq.NewProducer(cfg.NSQDHost, nsq.NewConfig())
		if err != nil {
			slog.Error("failed to create NSQ producer", "error", err)
			os.Exit(1)
		}
		publisher = producer

		// NSQ creates topics lazily on publish, but consumers querying
		// lookupd 404 until the topic exists, so pre-create it over the
		// nsqd HTTP api.
		host, _, _ := net.SplitHostPort(cfg.NSQDHost)
		if host == "" {
			host = cfg.NSQDHost
		}
		topicURL := fmt.Sprintf("http://%s:4151/topic/create?topic=%s", host, config.TopicIndexResult)
		go func() {
			// Wait for nsqd to be ready
			time.Sleep(2 * time.Second)
			resp, err := http.Post(topicURL, "application/json", nil)
			if err != nil {
				slog.Warn("failed to pre-create result topic", "error", err, "url", topicURL)
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode == 200 {
				slog.Info("result topic pre-created successfully")
			}
		}()
	}

	// 4. Features
	ingestService := ingest.NewService(scraper, captions, oembed, clipStore, embedder, publisher, ingest.Options{
		ChunkSeconds: cfg.ChunkSizeSeconds,
		UnitDelay:    time.Duration(cfg.IngestUnitDelayMs) * time.Millisecond,
	})
	ingestHandler := ingest.NewHandler(ingestService, time.Duration(cfg.SSERenderDelayMs)*time.Millisecond, cfg.HasAPIKey)

	libraryService := library.NewService(clipStore)
	libraryHandler := library.NewHandler(libraryService)

	queryLogger, err := search.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = search.NewQueryLogger(os.Stdout)
	}

	searchService := search.NewService(clipStore, embedder, search.Options{
		Oversample:       cfg.SearchOversample,
		SkipIntroSeconds: cfg.SkipIntroSeconds,
	})
	searchHandler := search.NewHandler(searchService, queryLogger)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	http.Handle("POST /api/ingest", middleware.CorrelationID(enableCORS(ingestHandler.Ingest)))
	http.Handle("POST /api/search", middleware.CorrelationID(enableCORS(searchHandler.Search)))

	http.Handle("GET /api/library", middleware.CorrelationID(enableCORS(libraryHandler.Library)))
	http.Handle("POST /api/channel/rename", middleware.CorrelationID(enableCORS(libraryHandler.RenameChannel)))
	http.Handle("DELETE /api/video/{video_id}", middleware.CorrelationID(enableCORS(libraryHandler.DeleteVideo)))
	http.Handle("GET /api/transcript/{video_id}", middleware.CorrelationID(enableCORS(libraryHandler.Transcript)))

	// Frontend polls this to show backend status and whether a server-side
	// key is configured.
	http.Handle("GET /{$}", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","message":"ClipSeek Backend is running","hasApiKey":%t}`, cfg.HasAPIKey())
	}))

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// 5. Start Server
	slog.Info("server starting", "port", cfg.ServerPort)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.ServerPort), nil); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
