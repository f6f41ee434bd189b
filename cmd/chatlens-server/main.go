// Package main provides the entry point for the chatlens HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/raphaelgruber/chatlens/internal/analyzer"
	"github.com/raphaelgruber/chatlens/internal/config"
	"github.com/raphaelgruber/chatlens/internal/llm"
	"github.com/raphaelgruber/chatlens/internal/metrics"
	"github.com/raphaelgruber/chatlens/internal/parser"
	"github.com/raphaelgruber/chatlens/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	client, err := llm.NewModel(cfg)
	if err != nil {
		return fmt.Errorf("init llm: %w", err)
	}

	var vision parser.VisionExtractor
	if v, err := llm.NewVisionModel(cfg); err != nil {
		logger.Warn("vision model unavailable, screenshots fall back to OCR", "error", err)
	} else {
		vision = v
	}

	collector := metrics.NewCollector()
	a := analyzer.New(client, vision, cfg.MaxChunkChars, logger, collector)

	return server.New(cfg.ListenAddr, a, client, cfg.LLMModel, logger).Start()
}
