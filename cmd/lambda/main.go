package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/nguyentantai21042004/soap-flow/internal/analyzer"
	"github.com/nguyentantai21042004/soap-flow/internal/apigw"
	"github.com/nguyentantai21042004/soap-flow/internal/config"
	"github.com/nguyentantai21042004/soap-flow/internal/generator"
	"github.com/nguyentantai21042004/soap-flow/internal/logger"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	paramPrefix := mustEnv("PARAM_PREFIX")

	cfg, err := config.Open(ctx, config.KindParamStore, paramPrefix)
	if err != nil {
		slog.Error("failed to load config", "err", err, "help", config.Help(config.KindParamStore, paramPrefix, err))
		os.Exit(1)
	}

	log := logger.NewWithWriter(os.Stdout, cfg.Logging.Level, "json")

	// ---- Clients ----
	gen, err := generator.New(ctx, cfg, log)
	if err != nil {
		slog.Error("failed to create generator", "err", err)
		os.Exit(1)
	}

	an, err := analyzer.New(cfg, gen, log)
	if err != nil {
		slog.Error("failed to create analyzer", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := apigw.NewHandler(cfg, an, log)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}
