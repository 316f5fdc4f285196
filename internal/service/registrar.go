package service

import (
	"context"

	"github.com/vanshika/creditshop/internal/domain"
)

// PromotionResult reports the outcome of PromoteDefaultPaymentMethod.
// Updated is false when the customer already had a default, in which case
// Customer is the unchanged record.
type PromotionResult struct {
	Updated  bool
	Customer domain.Customer
}

// BeginCardSetup starts card registration for email: the customer is resolved
// or created and a setup intent for off-session reuse is returned.
func (s *BillingService) BeginCardSetup(ctx context.Context, email string) (domain.SetupIntent, error) {
	cust, err := s.ResolveOrCreateCustomer(ctx, email)
	if err != nil {
		return domain.SetupIntent{}, err
	}

	si, err := s.client.CreateSetupIntent(ctx, cust.ID)
	if err != nil {
		return domain.SetupIntent{}, upstream("create setup intent", err)
	}
	if si.CustomerID == "" {
		si.CustomerID = cust.ID
	}
	return si, nil
}

// PromoteDefaultPaymentMethod makes a freshly confirmed payment method the
// customer's default only if no default is set yet. When a default exists
// nothing is written. Repeated calls are safe.
func (s *BillingService) PromoteDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (PromotionResult, error) {
	customerID = normalizeID(customerID)
	paymentMethodID = normalizeID(paymentMethodID)
	if customerID == "" || paymentMethodID == "" {
		return PromotionResult{}, validationError(MsgPromotionIDsRequired)
	}

	cust, err := s.client.GetCustomer(ctx, customerID)
	if err != nil {
		return PromotionResult{}, upstream("retrieve customer", err)
	}

	if cust.HasDefaultPaymentMethod() {
		s.logger.Debug("default payment method already set",
			"customerId", customerID,
			"defaultPaymentMethod", cust.DefaultPaymentMethodID,
		)
		return PromotionResult{Updated: false, Customer: cust}, nil
	}

	tag := map[string]string{domain.MetadataKeyPaymentType: string(domain.PaymentTypePostpaid)}
	if _, err := s.client.UpdatePaymentMethodMetadata(ctx, paymentMethodID, tag); err != nil {
		return PromotionResult{}, upstream("tag payment method", err)
	}

	updated, err := s.client.SetDefaultPaymentMethod(ctx, customerID, paymentMethodID)
	if err != nil {
		return PromotionResult{}, upstream("update customer", err)
	}
	s.logger.Info("promoted default payment method", "customerId", customerID, "paymentMethodId", paymentMethodID)
	return PromotionResult{Updated: true, Customer: updated}, nil
}
