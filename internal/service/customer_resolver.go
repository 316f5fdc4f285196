package service

import (
	"context"

	"github.com/vanshika/creditshop/internal/domain"
	"github.com/vanshika/creditshop/internal/processor"
)

// LookupCustomer returns the customer registered under email without creating
// one. It fails with *NotFoundError when no customer matches.
func (s *BillingService) LookupCustomer(ctx context.Context, email string) (domain.Customer, error) {
	return s.lookupCustomer(ctx, email, MsgEmailRequired, MsgCustomerNotFound)
}

func (s *BillingService) lookupCustomer(ctx context.Context, email, missingMsg, notFoundMsg string) (domain.Customer, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.Customer{}, validationError(missingMsg)
	}

	cust, found, err := s.findCustomer(ctx, email)
	if err != nil {
		return domain.Customer{}, err
	}
	if !found {
		return domain.Customer{}, &NotFoundError{Email: email, Message: notFoundMsg}
	}
	return cust, nil
}

// ResolveOrCreateCustomer returns the customer registered under email,
// creating it when absent. Creation uses an idempotency key derived from the
// email, so concurrent first-time calls collapse into one record while the
// processor remembers the key.
func (s *BillingService) ResolveOrCreateCustomer(ctx context.Context, email string) (domain.Customer, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.Customer{}, validationError(MsgEmailRequired)
	}

	cust, found, err := s.findCustomer(ctx, email)
	if err != nil {
		return domain.Customer{}, err
	}
	if found {
		return cust, nil
	}

	created, err := s.client.CreateCustomer(ctx, processor.CustomerParams{
		Email:          email,
		IdempotencyKey: s.idempotencyKey(email),
	})
	if err != nil {
		return domain.Customer{}, upstream("create customer", err)
	}
	s.logger.Info("created customer", "customerId", created.ID)
	return created, nil
}

func (s *BillingService) findCustomer(ctx context.Context, email string) (domain.Customer, bool, error) {
	customers, err := s.client.SearchCustomersByEmail(ctx, email)
	if err != nil {
		return domain.Customer{}, false, upstream("search customers", err)
	}
	if len(customers) == 0 {
		return domain.Customer{}, false, nil
	}
	if len(customers) > 1 {
		s.logger.Warn("multiple customers share an email, using the first match",
			"matches", len(customers),
			"customerId", customers[0].ID,
		)
	}
	return customers[0], true, nil
}
