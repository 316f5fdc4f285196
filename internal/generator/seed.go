package generator

import (
	"fmt"

	"github.com/vanshika/creditshop/internal/domain"
	"github.com/vanshika/creditshop/internal/processor"
)

// Summary counts the records written by Seed.
type Summary struct {
	Customers      int
	PaymentMethods int
	PaymentIntents int
}

// Seed loads the dataset into an in-memory processor.
func Seed(mem *processor.MemoryClient, ds Dataset) (Summary, error) {
	var sum Summary
	for _, c := range ds.Customers {
		cust := mem.AddCustomer(c.Email)
		sum.Customers++

		for i, card := range c.Cards {
			var md map[string]string
			if card.Tagged {
				md = map[string]string{domain.MetadataKeyPaymentType: string(domain.PaymentTypePostpaid)}
			}
			pm := mem.AddPaymentMethod(cust.ID, card.Card, md)
			sum.PaymentMethods++
			if i == c.DefaultCard {
				mem.SetDefault(cust.ID, pm.ID)
			}
		}

		for _, p := range c.Payments {
			md, err := paymentMetadata(p)
			if err != nil {
				return sum, fmt.Errorf("customer %s: %w", c.Email, err)
			}
			mem.AddPaymentIntent(domain.PaymentIntent{
				Amount:     p.Amount,
				Currency:   p.Currency,
				Status:     p.Status,
				Created:    p.Created.Unix(),
				Metadata:   md,
				CustomerID: cust.ID,
			})
			sum.PaymentIntents++
		}
	}
	return sum, nil
}

// SeedFile loads the dataset at path into mem.
func SeedFile(mem *processor.MemoryClient, path string) (Summary, error) {
	ds, err := LoadDataset(path)
	if err != nil {
		return Summary{}, err
	}
	return Seed(mem, ds)
}

func paymentMetadata(p PaymentFixture) (map[string]string, error) {
	switch p.PaymentType {
	case "":
		return nil, nil
	case domain.PaymentTypeCredit:
		return domain.CreditMetadata(p.Items)
	case domain.PaymentTypePostpaid:
		return domain.PostpaidMetadata(p.AdditionalInfo), nil
	default:
		return map[string]string{domain.MetadataKeyPaymentType: string(p.PaymentType)}, nil
	}
}
