// Package main is the entry point for the vmap assembler.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/vmap-assembler/internal/assembler"
	"github.com/Faultbox/vmap-assembler/internal/config"
	"github.com/Faultbox/vmap-assembler/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== VMap Assembler ===",
		zap.String("source", cfg.Assembler.SourceDir),
		zap.String("dest", cfg.Assembler.DestDir))

	ta := assembler.New(cfg.Assembler.SourceDir, cfg.Assembler.DestDir, cfg.Assembler.RawMagic, logger.Log)
	if err := ta.ConvertWorld(); err != nil {
		logger.Error("world conversion failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("world conversion completed")
}
