package main

import (
	"log"

	"committee-notifier/cmd"
	"committee-notifier/internal/config"
	"committee-notifier/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use default logger config if main config fails
		if setupErr := logger.Setup(logger.DefaultConfig()); setupErr != nil {
			log.Fatalf("Failed to initialize logger: %v", setupErr)
		}
	} else if setupErr := logger.Setup(cfg.GetLoggerConfig()); setupErr != nil {
		log.Fatalf("Failed to initialize logger: %v", setupErr)
	}

	cmd.Execute(cfg, err)
}
