package service

import (
	"context"
	"math"

	"github.com/vanshika/creditshop/internal/domain"
	"github.com/vanshika/creditshop/internal/processor"
)

// Pricing is the post-paid charge formula: BaseCost currency units times the
// Surcharge factor.
type Pricing struct {
	BaseCost  float64
	Surcharge float64
	Currency  string
}

// DefaultPricing returns 150 × 1.10 in usd.
func DefaultPricing() Pricing {
	return Pricing{BaseCost: 150, Surcharge: 1.10, Currency: defaultCurrency}
}

// AmountMinor returns the charge amount in minor currency units, rounded half
// away from zero.
func (p Pricing) AmountMinor() int64 {
	return int64(math.Round(p.BaseCost * p.Surcharge * 100))
}

// ChargeDefaultPaymentMethod charges the default payment method of the
// customer registered under email, off-session and auto-confirmed. The
// processor's payment intent is returned whatever its status.
func (s *BillingService) ChargeDefaultPaymentMethod(ctx context.Context, email string) (domain.PaymentIntent, error) {
	found, err := s.LookupCustomer(ctx, email)
	if err != nil {
		return domain.PaymentIntent{}, err
	}

	// Search results can lag behind the customer record.
	cust, err := s.client.GetCustomer(ctx, found.ID)
	if err != nil {
		return domain.PaymentIntent{}, upstream("retrieve customer", err)
	}
	if !cust.HasDefaultPaymentMethod() {
		return domain.PaymentIntent{}, ErrNoDefaultPaymentMethod
	}

	pi, err := s.client.CreatePaymentIntent(ctx, processor.PaymentIntentParams{
		Amount:          s.pricing.AmountMinor(),
		Currency:        s.pricing.Currency,
		CustomerID:      cust.ID,
		PaymentMethodID: cust.DefaultPaymentMethodID,
		Metadata:        domain.PostpaidMetadata(s.usageDescription),
	})
	if err != nil {
		return domain.PaymentIntent{}, upstream("create payment intent", err)
	}

	if pi.Status != domain.PaymentStatusSucceeded {
		s.logger.Warn("off-session charge did not succeed", "paymentIntentId", pi.ID, "status", pi.Status)
	} else {
		s.logger.Info("charged default payment method", "paymentIntentId", pi.ID, "amount", pi.Amount, "currency", pi.Currency)
	}
	return pi, nil
}
