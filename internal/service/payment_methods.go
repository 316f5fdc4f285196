package service

import (
	"context"
	"fmt"

	"github.com/vanshika/creditshop/internal/domain"
)

// RemovalError reports a bulk removal that stopped partway. Detached lists the
// ids removed before the failure and NotAttempted the ids never tried.
type RemovalError struct {
	FailedID     string
	Detached     []string
	NotAttempted []string
	Err          error
}

func (e *RemovalError) Error() string {
	return fmt.Sprintf("remove payment method %s: %v", e.FailedID, e.Err)
}

func (e *RemovalError) Unwrap() error {
	return e.Err
}

// ListPaymentMethods returns the tagged card payment methods of the customer
// registered under email. Cards registered outside this service are hidden.
func (s *BillingService) ListPaymentMethods(ctx context.Context, email string) ([]domain.PaymentMethod, error) {
	cust, err := s.lookupCustomer(ctx, email, MsgEmailNotProvided, MsgNoCustomerForEmail)
	if err != nil {
		return nil, err
	}

	methods, err := s.client.ListCardPaymentMethods(ctx, cust.ID)
	if err != nil {
		return nil, upstream("list payment methods", err)
	}

	tagged := make([]domain.PaymentMethod, 0, len(methods))
	for _, pm := range methods {
		if pm.Tagged() {
			tagged = append(tagged, pm)
		}
	}
	return tagged, nil
}

// RemovePaymentMethod detaches a payment method from its customer. The
// customer's default is not checked.
func (s *BillingService) RemovePaymentMethod(ctx context.Context, paymentMethodID string) (domain.PaymentMethod, error) {
	paymentMethodID = normalizeID(paymentMethodID)
	if paymentMethodID == "" {
		return domain.PaymentMethod{}, validationError(MsgPaymentMethodIDRequired)
	}

	detached, err := s.client.DetachPaymentMethod(ctx, paymentMethodID)
	if err != nil {
		return domain.PaymentMethod{}, upstream("detach payment method", err)
	}
	s.logger.Info("detached payment method", "paymentMethodId", paymentMethodID)
	return detached, nil
}

// RemovePaymentMethods detaches ids one at a time, stopping at the first
// failure. Earlier detachments stay committed; a *RemovalError describes the
// split.
func (s *BillingService) RemovePaymentMethods(ctx context.Context, ids []string) ([]domain.PaymentMethod, error) {
	if len(ids) == 0 {
		return nil, validationError(MsgPaymentMethodIDRequired)
	}

	detached := make([]domain.PaymentMethod, 0, len(ids))
	for i, id := range ids {
		pm, err := s.RemovePaymentMethod(ctx, id)
		if err != nil {
			done := make([]string, 0, len(detached))
			for _, d := range detached {
				done = append(done, d.ID)
			}
			return detached, &RemovalError{
				FailedID:     id,
				Detached:     done,
				NotAttempted: append([]string(nil), ids[i+1:]...),
				Err:          err,
			}
		}
		detached = append(detached, pm)
	}
	return detached, nil
}
