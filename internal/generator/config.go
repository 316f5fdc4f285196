package generator

import "time"

// DefaultReferenceTime anchors generated timestamps so a seed reproduces a dataset.
var DefaultReferenceTime = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Config drives the synthetic billing fixture generator.
type Config struct {
	NumCustomers           int
	MaxCardsPerCustomer    int
	MaxPaymentsPerCustomer int
	// UntaggedChance is the probability that a card or payment was created
	// outside the storefront and carries no payment-type tag.
	UntaggedChance float64
	// DefaultCardChance is the probability that a customer with cards has a default.
	DefaultCardChance float64
	PackageSizes      []string
	// UsageDescription is recorded on generated post-paid charges.
	UsageDescription string
	// ReferenceTime is the end of the generated history window.
	ReferenceTime time.Time
	Seed          int64
}

// DefaultConfig returns settings suited to a local development processor.
func DefaultConfig() Config {
	return Config{
		NumCustomers:           25,
		MaxCardsPerCustomer:    3,
		MaxPaymentsPerCustomer: 12,
		UntaggedChance:         0.15,
		DefaultCardChance:      0.8,
		PackageSizes:           []string{"100", "1000", "10000"},
		UsageDescription:       "AWS usage charges",
		ReferenceTime:          DefaultReferenceTime,
		Seed:                   42,
	}
}
