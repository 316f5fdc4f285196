package service

import (
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vanshika/creditshop/internal/domain"
	"github.com/vanshika/creditshop/internal/processor"
)

const (
	// HistoryPageSize caps the number of payment intents returned by PaymentHistory.
	HistoryPageSize = 20

	defaultCurrency         = "usd"
	defaultUsageDescription = "AWS usage charges"
)

// customerNamespace scopes the idempotency keys derived from customer emails.
var customerNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:creditshop:customer"))

// Options configures a BillingService.
type Options struct {
	Catalog domain.Catalog
	Pricing Pricing
	// BaseURL is the storefront origin used to build checkout redirects.
	BaseURL          string
	UsageDescription string
	Logger           *slog.Logger
}

// BillingService orchestrates the storefront and post-paid billing workflows
// on top of a payment processor. It holds no per-request state.
type BillingService struct {
	client           processor.Client
	catalog          domain.Catalog
	pricing          Pricing
	baseURL          string
	usageDescription string
	logger           *slog.Logger
	validate         *validator.Validate
	idempotencyKey   func(email string) string
}

// NewBillingService constructs a BillingService with defaults applied to
// zero-valued options.
func NewBillingService(client processor.Client, opts Options) *BillingService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pricing := opts.Pricing
	if pricing.BaseCost == 0 && pricing.Surcharge == 0 {
		pricing = DefaultPricing()
	}
	if pricing.Currency == "" {
		pricing.Currency = defaultCurrency
	}
	usage := sanitizeString(opts.UsageDescription)
	if usage == "" {
		usage = defaultUsageDescription
	}

	return &BillingService{
		client:           client,
		catalog:          opts.Catalog,
		pricing:          pricing,
		baseURL:          strings.TrimRight(opts.BaseURL, "/"),
		usageDescription: usage,
		logger:           logger,
		validate:         validator.New(),
		idempotencyKey:   customerIdempotencyKey,
	}
}

// Catalog returns the packages the service can sell.
func (s *BillingService) Catalog() domain.Catalog {
	return s.catalog
}

// Pricing returns the post-paid charge formula in use.
func (s *BillingService) Pricing() Pricing {
	return s.pricing
}

func customerIdempotencyKey(email string) string {
	return "customer-" + uuid.NewSHA1(customerNamespace, []byte(email)).String()
}
