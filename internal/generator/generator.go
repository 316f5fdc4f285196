package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/vanshika/creditshop/internal/domain"
)

// Dataset is a set of processor fixtures: customers with their cards and
// payment history.
type Dataset struct {
	Customers []CustomerFixture `json:"customers"`
}

// CustomerFixture describes one customer. DefaultCard indexes Cards, or is -1.
type CustomerFixture struct {
	Email       string           `json:"email"`
	Cards       []CardFixture    `json:"cards"`
	DefaultCard int              `json:"defaultCard"`
	Payments    []PaymentFixture `json:"payments"`
}

// CardFixture is a stored card. Untagged cards were registered outside the storefront.
type CardFixture struct {
	Card   domain.Card `json:"card"`
	Tagged bool        `json:"tagged"`
}

// PaymentFixture is a historical payment intent, oldest first within a customer.
type PaymentFixture struct {
	Amount      int64              `json:"amount"`
	Currency    string             `json:"currency"`
	Status      string             `json:"status"`
	PaymentType domain.PaymentType `json:"paymentType,omitempty"`
	Items       []domain.CartItem  `json:"items,omitempty"`
	// AdditionalInfo is the usage description of a post-paid charge.
	AdditionalInfo string    `json:"additionalInfo,omitempty"`
	Created        time.Time `json:"created"`
}

var (
	cardBrands = []string{"visa", "mastercard", "amex", "discover"}
	statuses   = []string{
		domain.PaymentStatusSucceeded,
		domain.PaymentStatusSucceeded,
		domain.PaymentStatusSucceeded,
		domain.PaymentStatusRequiresAction,
		domain.PaymentStatusRequiresPaymentMethod,
	}
)

// Generator produces synthetic billing fixtures.
type Generator struct {
	cfg   Config
	faker *gofakeit.Faker
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumCustomers <= 0 {
		cfg.NumCustomers = def.NumCustomers
	}
	if cfg.MaxCardsPerCustomer <= 0 {
		cfg.MaxCardsPerCustomer = def.MaxCardsPerCustomer
	}
	if cfg.MaxPaymentsPerCustomer <= 0 {
		cfg.MaxPaymentsPerCustomer = def.MaxPaymentsPerCustomer
	}
	if cfg.UntaggedChance < 0 {
		cfg.UntaggedChance = 0
	}
	if cfg.DefaultCardChance < 0 {
		cfg.DefaultCardChance = 0
	}
	if len(cfg.PackageSizes) == 0 {
		cfg.PackageSizes = def.PackageSizes
	}
	if cfg.UsageDescription == "" {
		cfg.UsageDescription = def.UsageDescription
	}
	if cfg.ReferenceTime.IsZero() {
		cfg.ReferenceTime = def.ReferenceTime
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:   cfg,
		faker: gofakeit.New(cfg.Seed),
	}
}

// Generate synthesises the dataset. The same Config yields the same dataset.
// It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	now := g.cfg.ReferenceTime.UTC()
	seen := make(map[string]struct{}, g.cfg.NumCustomers)
	customers := make([]CustomerFixture, 0, g.cfg.NumCustomers)

	for len(customers) < g.cfg.NumCustomers {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		email := g.faker.Email()
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}

		cust := CustomerFixture{Email: email, DefaultCard: -1}

		numCards := g.faker.Number(0, g.cfg.MaxCardsPerCustomer)
		for i := 0; i < numCards; i++ {
			cust.Cards = append(cust.Cards, CardFixture{
				Card:   g.randomCard(now),
				Tagged: !g.chance(g.cfg.UntaggedChance),
			})
		}
		if numCards > 0 && g.chance(g.cfg.DefaultCardChance) {
			cust.DefaultCard = g.faker.Number(0, numCards-1)
		}

		numPayments := g.faker.Number(0, g.cfg.MaxPaymentsPerCustomer)
		created := now.Add(-time.Duration(g.faker.Number(365, 730)) * 24 * time.Hour)
		for i := 0; i < numPayments; i++ {
			created = created.Add(time.Duration(g.faker.Number(1, 72)) * time.Hour)
			cust.Payments = append(cust.Payments, g.randomPayment(created))
		}

		customers = append(customers, cust)
	}

	return Dataset{Customers: customers}, nil
}

func (g *Generator) randomCard(now time.Time) domain.Card {
	return domain.Card{
		Brand:    g.faker.RandomString(cardBrands),
		Last4:    fmt.Sprintf("%04d", g.faker.Number(0, 9999)),
		ExpMonth: int64(g.faker.Number(1, 12)),
		ExpYear:  int64(now.Year() + g.faker.Number(0, 6)),
	}
}

func (g *Generator) randomPayment(created time.Time) PaymentFixture {
	p := PaymentFixture{
		Currency: "usd",
		Status:   g.faker.RandomString(statuses),
		Created:  created,
	}

	switch {
	case g.chance(g.cfg.UntaggedChance):
		p.Amount = int64(g.faker.Number(100, 50000))
	case g.faker.Bool():
		p.PaymentType = domain.PaymentTypeCredit
		n := g.faker.Number(1, len(g.cfg.PackageSizes))
		for i := 0; i < n; i++ {
			p.Items = append(p.Items, domain.CartItem{
				Package:  domain.PackageSize(g.cfg.PackageSizes[i]),
				Quantity: int64(g.faker.Number(1, 5)),
			})
		}
		p.Amount = int64(g.faker.Number(1000, 100000))
	default:
		p.PaymentType = domain.PaymentTypePostpaid
		p.AdditionalInfo = g.cfg.UsageDescription
		p.Amount = 16500
	}
	return p
}

func (g *Generator) chance(p float64) bool {
	return g.faker.Float64Range(0, 1) < p
}
