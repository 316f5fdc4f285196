package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vanshika/creditshop/internal/config"
	"github.com/vanshika/creditshop/internal/generator"
	"github.com/vanshika/creditshop/internal/labels"
	"github.com/vanshika/creditshop/internal/logging"
	"github.com/vanshika/creditshop/internal/processor"
	"github.com/vanshika/creditshop/internal/service"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type app struct {
	billing *service.BillingService
	labels  *labels.Labeler
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewWithWriter(cfg.Logging, os.Stderr)

	client, err := processor.New(cfg.Processor.Mode, processor.Options{
		SecretKey:   cfg.Processor.SecretKey,
		SearchLimit: cfg.Processor.SearchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("create processor client: %w", err)
	}
	if mem, ok := client.(*processor.MemoryClient); ok && cfg.Processor.SeedFile != "" {
		if _, err := generator.SeedFile(mem, cfg.Processor.SeedFile); err != nil {
			return nil, fmt.Errorf("seed in-memory processor: %w", err)
		}
	}

	lbl, err := labels.New(cfg.Labels.Language)
	if err != nil {
		return nil, err
	}

	billing := service.NewBillingService(client, service.Options{
		Catalog: cfg.Store.Catalog(),
		Pricing: service.Pricing{
			BaseCost:  cfg.Billing.BaseCost,
			Surcharge: cfg.Billing.Surcharge,
			Currency:  cfg.Billing.Currency,
		},
		BaseURL:          cfg.Store.BaseURL,
		UsageDescription: cfg.Billing.UsageDescription,
		Logger:           logger,
	})
	return &app{billing: billing, labels: lbl}, nil
}

// render writes v as indented JSON or as YAML. YAML output goes through the
// JSON encoding first so both formats share field names.
func render(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		buf, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(buf, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
