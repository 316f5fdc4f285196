package generator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/creditshop/internal/domain"
	"github.com/vanshika/creditshop/internal/processor"
)

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumCustomers = 10

	first, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	second, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	require.Len(t, first.Customers, 10)
	assert.Equal(t, first, second)
}

func TestGenerateAnchorsHistoryAtReferenceTime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumCustomers = 15
	cfg.UsageDescription = "GPU usage"
	cfg.ReferenceTime = mustTime(t, "2024-06-30T00:00:00Z")

	ds, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	postpaid := 0
	for _, c := range ds.Customers {
		for _, p := range c.Payments {
			assert.True(t, p.Created.Before(cfg.ReferenceTime), "payment at %s", p.Created)
			if p.PaymentType == domain.PaymentTypePostpaid {
				postpaid++
				assert.Equal(t, "GPU usage", p.AdditionalInfo)
			}
		}
	}
	assert.Positive(t, postpaid)
}

func TestGenerateRespectsLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumCustomers = 30
	cfg.MaxCardsPerCustomer = 2
	cfg.MaxPaymentsPerCustomer = 4

	ds, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	emails := map[string]bool{}
	for _, c := range ds.Customers {
		assert.False(t, emails[c.Email], "duplicate email %s", c.Email)
		emails[c.Email] = true

		assert.LessOrEqual(t, len(c.Cards), 2)
		assert.LessOrEqual(t, len(c.Payments), 4)
		assert.Less(t, c.DefaultCard, len(c.Cards))
		assert.GreaterOrEqual(t, c.DefaultCard, -1)

		for i := 1; i < len(c.Payments); i++ {
			assert.True(t, c.Payments[i].Created.After(c.Payments[i-1].Created))
		}
		for _, p := range c.Payments {
			if p.PaymentType == domain.PaymentTypeCredit {
				assert.NotEmpty(t, p.Items)
			}
		}
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultConfig()).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeedFileRoundTrip(t *testing.T) {
	created := mustTime(t, "2025-03-01T10:00:00Z")
	ds := Dataset{Customers: []CustomerFixture{
		{
			Email: "a@x.com",
			Cards: []CardFixture{
				{Card: domain.Card{Brand: "visa", Last4: "4242"}, Tagged: false},
				{Card: domain.Card{Brand: "amex", Last4: "0005"}, Tagged: true},
			},
			DefaultCard: 1,
			Payments: []PaymentFixture{
				{Amount: 16500, Currency: "usd", Status: domain.PaymentStatusSucceeded, PaymentType: domain.PaymentTypePostpaid,
					AdditionalInfo: "GPU usage", Created: created},
				{Amount: 5000, Currency: "usd", Status: domain.PaymentStatusSucceeded, PaymentType: domain.PaymentTypeCredit,
					Items: []domain.CartItem{{Package: "100", Quantity: 2}}, Created: created},
				{Amount: 700, Currency: "usd", Status: domain.PaymentStatusCanceled, Created: created},
			},
		},
		{Email: "b@x.com", DefaultCard: -1},
	}}

	path := filepath.Join(t.TempDir(), "nested", "seed.json")
	require.NoError(t, WriteDataset(ds, path))

	mem := processor.NewMemoryClient()
	sum, err := SeedFile(mem, path)
	require.NoError(t, err)
	assert.Equal(t, Summary{Customers: 2, PaymentMethods: 2, PaymentIntents: 3}, sum)

	ctx := context.Background()
	customers, err := mem.SearchCustomersByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	cust := customers[0]

	methods, err := mem.ListCardPaymentMethods(ctx, cust.ID)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, methods[1].ID, cust.DefaultPaymentMethodID)
	assert.Empty(t, methods[0].Metadata[domain.MetadataKeyPaymentType])
	assert.Equal(t, "postpaid", methods[1].Metadata[domain.MetadataKeyPaymentType])

	intents, err := mem.ListPaymentIntents(ctx, cust.ID, 20)
	require.NoError(t, err)
	require.Len(t, intents, 3)
	tags := map[string]int{}
	for _, pi := range intents {
		assert.Equal(t, created.Unix(), pi.Created)
		tags[pi.Metadata[domain.MetadataKeyPaymentType]]++
		if pi.Metadata[domain.MetadataKeyPaymentType] == "postpaid" {
			assert.Equal(t, "GPU usage", pi.Metadata[domain.MetadataKeyAdditionalInfo])
		}
	}
	assert.Equal(t, map[string]int{"postpaid": 1, "credit": 1, "": 1}, tags)
}

func TestSeedFileMissing(t *testing.T) {
	_, err := SeedFile(processor.NewMemoryClient(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}
