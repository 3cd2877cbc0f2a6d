package main

import (
	"context"
	"fmt"

	"github.com/glideapp/glide-sync/internal/app"
	"github.com/glideapp/glide-sync/internal/config"
	"github.com/glideapp/glide-sync/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("glide-syncd")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log = logger.NewDaemonLogger("glide-syncd", cfg.Log.File, cfg.Log.Level)
	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()
	daemon, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init daemon error")
	}

	if err = daemon.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("daemon run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
