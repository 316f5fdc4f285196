package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanshika/creditshop/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		customers      = flag.Int("customers", cfg.NumCustomers, "number of customers to generate")
		maxCards       = flag.Int("max-cards", cfg.MaxCardsPerCustomer, "maximum stored cards per customer")
		maxPayments    = flag.Int("max-payments", cfg.MaxPaymentsPerCustomer, "maximum payment intents per customer")
		untaggedChance = flag.Float64("untagged-chance", cfg.UntaggedChance, "probability that a card or payment carries no payment-type tag")
		defaultChance  = flag.Float64("default-card-chance", cfg.DefaultCardChance, "probability that a customer with cards has a default")
		packages       = flag.String("packages", strings.Join(cfg.PackageSizes, ","), "comma separated credit package sizes")
		usage          = flag.String("usage-description", cfg.UsageDescription, "description recorded on post-paid charges")
		asOf           = flag.String("as-of", cfg.ReferenceTime.Format(time.RFC3339), "RFC3339 end of the generated history window")
		seed           = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		output         = flag.String("output", "data/processor-seed.json", "file to write the dataset to")
		writeStdout    = flag.Bool("stdout", false, "write dataset to stdout instead of a file")
	)
	flag.Parse()

	reference, err := time.Parse(time.RFC3339, *asOf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --as-of: %v\n", err)
		os.Exit(1)
	}

	genCfg := generator.Config{
		NumCustomers:           *customers,
		MaxCardsPerCustomer:    *maxCards,
		MaxPaymentsPerCustomer: *maxPayments,
		UntaggedChance:         clampProbability(*untaggedChance),
		DefaultCardChance:      clampProbability(*defaultChance),
		PackageSizes:           splitCSV(*packages),
		UsageDescription:       *usage,
		ReferenceTime:          reference,
		Seed:                   *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d customers into %s (set PROCESSOR_MODE=memory PROCESSOR_SEED_FILE=%s to serve it)\n",
		len(dataset.Customers), *output, *output)
}

func splitCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
