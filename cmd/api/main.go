package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/malawibank/analyzer/internal/analytics"
	"github.com/malawibank/analyzer/internal/analyzer"
	"github.com/malawibank/analyzer/internal/api/handlers"
	"github.com/malawibank/analyzer/internal/api/middleware"
	"github.com/malawibank/analyzer/internal/archive"
	"github.com/malawibank/analyzer/internal/auth"
	"github.com/malawibank/analyzer/internal/config"
	"github.com/malawibank/analyzer/internal/insights"
	"github.com/malawibank/analyzer/internal/logger"
	"github.com/malawibank/analyzer/internal/pipeline"
	"github.com/malawibank/analyzer/internal/store"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// Persistence: one file-backed KV shared by users, session and history.
	kv, err := store.NewFileKV(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Failed to open data store")
	}
	userRepo := store.NewUserRepo(kv)
	sessionRepo := store.NewSessionRepo(kv)
	historyRepo := store.NewHistoryRepo(kv)

	authService := auth.New(userRepo, sessionRepo, cfg.StoreLatency)

	analyzerService, err := analyzer.New(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create analyzer")
	}

	insightsService, err := insights.New(ctx, cfg.GeminiModel, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create insights service")
	}

	// Optional out-of-band integrations.
	var archiver pipeline.Archiver
	if cfg.GCSBucket != "" {
		gcs, err := archive.NewGCSArchiver(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create archiver")
		}
		defer gcs.Close()
		archiver = gcs
	} else {
		log.Warn().Msg("No GCS bucket configured - statement archival disabled")
	}

	var sink pipeline.Sink
	if cfg.BQProject != "" {
		bq, err := analytics.NewBigQuerySink(ctx, cfg.BQProject, cfg.BQDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create analytics sink")
		}
		defer bq.Close()
		sink = bq
	} else {
		log.Warn().Msg("No BigQuery project configured - analytics disabled")
	}

	orchestrator := pipeline.New(analyzerService, insightsService, historyRepo, archiver, sink, log)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	analysisHandler := handlers.NewAnalysisHandler(orchestrator, log)
	historyHandler := handlers.NewHistoryHandler(historyRepo, log)
	billingHandler := handlers.NewBillingHandler(authService, log)

	requireSession := middleware.RequireSession(authService, log)

	// Create router
	mux := http.NewServeMux()

	// Auth endpoints
	mux.HandleFunc("/api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.SignUp(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.SignIn(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/auth/signout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.SignOut(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/auth/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.ResetPassword(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/auth/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			authHandler.Session(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Analysis endpoints
	mux.Handle("/api/analyze", requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			analysisHandler.Analyze(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	mux.Handle("/api/analyze/state", requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			analysisHandler.State(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	mux.Handle("/api/analyze/reset", requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			analysisHandler.Reset(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	// History endpoints
	mux.Handle("/api/history", requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			historyHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	mux.Handle("/api/history/", requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/history/")
		if rest == "" {
			middleware.WriteError(w, http.StatusBadRequest, "History item ID is required")
			return
		}

		if itemID, ok := strings.CutSuffix(rest, "/export"); ok {
			if r.Method == http.MethodGet {
				historyHandler.Export(w, r, itemID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}

		if r.Method == http.MethodDelete {
			historyHandler.Delete(w, r, rest)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	// Billing endpoints
	mux.Handle("/api/billing/upgrade", requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			billingHandler.Upgrade(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
