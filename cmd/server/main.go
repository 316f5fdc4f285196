package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vanshika/creditshop/internal/config"
	"github.com/vanshika/creditshop/internal/generator"
	"github.com/vanshika/creditshop/internal/labels"
	"github.com/vanshika/creditshop/internal/logging"
	"github.com/vanshika/creditshop/internal/processor"
	"github.com/vanshika/creditshop/internal/server"
	"github.com/vanshika/creditshop/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	client, err := buildProcessorClient(logger, cfg.Processor)
	if err != nil {
		logger.Error("failed to create processor client", "error", err)
		os.Exit(1)
	}

	catalog := cfg.Store.Catalog()
	if catalog.Len() == 0 {
		logger.Warn("no credit packages have a price configured; checkout will reject every cart")
	}

	billing := service.NewBillingService(client, service.Options{
		Catalog: catalog,
		Pricing: service.Pricing{
			BaseCost:  cfg.Billing.BaseCost,
			Surcharge: cfg.Billing.Surcharge,
			Currency:  cfg.Billing.Currency,
		},
		BaseURL:          cfg.Store.BaseURL,
		UsageDescription: cfg.Billing.UsageDescription,
		Logger:           logger,
	})

	labeler, err := labels.New(cfg.Labels.Language)
	if err != nil {
		logger.Error("failed to load labels", "error", err)
		os.Exit(1)
	}

	apiHandlers := server.NewAPIHandlers(logger, billing, server.HandlerOptions{
		Labels:         labeler,
		PublishableKey: cfg.Processor.PublishableKey,
	})

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.ProcessorHealthService{Client: client},
		API:              apiHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
		RateLimit: server.RateLimitConfig{
			RPS:   cfg.HTTP.RateLimitRPS,
			Burst: cfg.HTTP.RateLimitBurst,
		},
	})

	srv := server.New(logger, cfg.HTTP, router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func buildProcessorClient(logger *slog.Logger, cfg config.ProcessorConfig) (processor.Client, error) {
	if cfg.Mode == config.ProcessorModeMemory {
		logger.Warn("using in-memory processor; no real charges will be made")
	}
	client, err := processor.New(cfg.Mode, processor.Options{
		SecretKey:   cfg.SecretKey,
		SearchLimit: cfg.SearchLimit,
	})
	if err != nil {
		return nil, err
	}

	if mem, ok := client.(*processor.MemoryClient); ok && cfg.SeedFile != "" {
		sum, err := generator.SeedFile(mem, cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("seed in-memory processor: %w", err)
		}
		logger.Info("seeded in-memory processor",
			"file", cfg.SeedFile,
			"customers", sum.Customers,
			"payment_methods", sum.PaymentMethods,
			"payment_intents", sum.PaymentIntents,
		)
	}
	return client, nil
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
