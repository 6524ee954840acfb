package main

import (
	"fmt"
	"os"

	"schemaforge/internal/api"
	"schemaforge/internal/config"
	"schemaforge/internal/logger"
	"schemaforge/internal/state"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.JSON)
	handler := api.NewHandler(cfg, state.New(), log)

	log.Info("starting schemaforge",
		"threshold", cfg.Mapping.Threshold,
		"max_level", cfg.Mapping.MaxLevel,
	)
	if err := handler.Serve(); err != nil {
		log.Fatal("server stopped", "err", err)
	}
}
