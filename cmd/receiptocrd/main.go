package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/triunai/receipt-ocr/internal/common"
	"github.com/triunai/receipt-ocr/internal/export"
	"github.com/triunai/receipt-ocr/internal/llm"
	"github.com/triunai/receipt-ocr/internal/mistral"
	"github.com/triunai/receipt-ocr/internal/ocr"
	"github.com/triunai/receipt-ocr/internal/pipeline"
	"github.com/triunai/receipt-ocr/internal/repository"
	"github.com/triunai/receipt-ocr/internal/server"
)

func main() {
	_ = godotenv.Load()

	zlog, _ := zap.NewProduction()
	defer zlog.Sync()
	log := zlog.Sugar()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(slogger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Engine client (shared, read-only after construction)
	engine := mistral.NewClient(mistral.Config{
		BaseURL:     cfg.Engine.BaseURL,
		APIKey:      cfg.Engine.APIKey,
		OCRModel:    cfg.Engine.OCRModel,
		ChatModel:   cfg.Engine.ChatModel,
		Temperature: cfg.Parser.Temperature,
		MaxTokens:   cfg.Parser.MaxTokens,
		Timeout:     cfg.Engine.Timeout,
	}, nil, slogger)

	extractor := ocr.NewExtractor(engine, slogger)
	structurer := llm.NewStructurer(engine, llm.Config{
		MaxRetries:  cfg.Parser.MaxRetries,
		BackoffUnit: cfg.Parser.BackoffUnit,
	}, slogger)
	pipe := pipeline.New(extractor, structurer, slogger)

	// Optional persistence
	var repo *repository.DocumentRepository
	var exporter *export.Service
	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, slogger)
		if err != nil {
			log.Fatalf("creating DB pool: %v", err)
		}
		defer repository.Close(pool, slogger)

		if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout); err != nil {
			log.Fatalf("DB health failed: %v", err)
		}
		log.Infow("DB health OK")

		repo = repository.NewDocumentRepository(pool, slogger)
		if err := repo.Migrate(ctx); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		exporter = export.NewService(repo, slogger)
	} else {
		log.Infow("no DB_URL set; running parse-only")
	}

	svc := server.NewService(pipe, repo, exporter, zlog)
	router := gin.Default()
	svc.Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.Infof("http serving on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown: %v", err)
	}
	log.Info("stopped.")
}
