// runparse parses one local document through the full pipeline and prints the
// structured result as JSON. Useful for smoke-testing credentials and prompts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/triunai/receipt-ocr/constants"
	"github.com/triunai/receipt-ocr/internal/common"
	"github.com/triunai/receipt-ocr/internal/llm"
	"github.com/triunai/receipt-ocr/internal/mistral"
	"github.com/triunai/receipt-ocr/internal/ocr"
	"github.com/triunai/receipt-ocr/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: runparse <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(2)
	}

	mediaType := constants.MediaTypeForExt(filepath.Ext(path))
	if mediaType == "" {
		logger.Error("unsupported file extension", "path", path)
		os.Exit(2)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	engine := mistral.NewClient(mistral.Config{
		BaseURL:     cfg.Engine.BaseURL,
		APIKey:      cfg.Engine.APIKey,
		OCRModel:    cfg.Engine.OCRModel,
		ChatModel:   cfg.Engine.ChatModel,
		Temperature: cfg.Parser.Temperature,
		MaxTokens:   cfg.Parser.MaxTokens,
		Timeout:     cfg.Engine.Timeout,
	}, nil, logger)

	pipe := pipeline.New(
		ocr.NewExtractor(engine, logger),
		llm.NewStructurer(engine, llm.Config{
			MaxRetries:  cfg.Parser.MaxRetries,
			BackoffUnit: cfg.Parser.BackoffUnit,
		}, logger),
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	doc, err := pipe.Process(ctx, data, mediaType)
	if err != nil {
		logger.Error("process failed", "path", path, "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		logger.Error("marshal result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
