package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/vanshika/creditshop/internal/domain"
	"github.com/vanshika/creditshop/internal/processor"
)

const (
	successPathTemplate = "%s/charge?email=%s&session_id={CHECKOUT_SESSION_ID}"
	cancelPathTemplate  = "%s/cancel"
)

// CheckoutRequest is a credit purchase: an email and a non-empty cart.
type CheckoutRequest struct {
	Email string            `json:"email" validate:"required"`
	Items []domain.CartItem `json:"items" validate:"required,min=1,dive"`

	rawItems json.RawMessage
}

// UnmarshalJSON keeps the client's encoding of items for the purchase record.
func (r *CheckoutRequest) UnmarshalJSON(data []byte) error {
	var aux struct {
		Email string          `json:"email"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Email = aux.Email
	r.Items = nil
	r.rawItems = nil
	if len(aux.Items) == 0 || string(aux.Items) == "null" {
		return nil
	}
	if err := json.Unmarshal(aux.Items, &r.Items); err != nil {
		return err
	}
	r.rawItems = aux.Items
	return nil
}

// CreateCheckoutSession resolves every cart entry against the catalog, then
// resolves or creates the customer and opens a hosted checkout session for the
// whole cart. Nothing is sent to the processor when any entry is unknown.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (domain.CheckoutSession, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			s.logger.Debug("checkout request rejected", "error", verrs.Error())
		}
		return domain.CheckoutSession{}, validationError(MsgCheckoutInputRequired)
	}

	lineItems, err := s.resolveLineItems(req.Items)
	if err != nil {
		return domain.CheckoutSession{}, err
	}

	metadata, err := s.creditMetadata(req)
	if err != nil {
		return domain.CheckoutSession{}, validationError(MsgCheckoutInputRequired)
	}

	cust, err := s.ResolveOrCreateCustomer(ctx, req.Email)
	if err != nil {
		return domain.CheckoutSession{}, err
	}

	sess, err := s.client.CreateCheckoutSession(ctx, processor.CheckoutSessionParams{
		CustomerID: cust.ID,
		LineItems:  lineItems,
		SuccessURL: s.successURL(req.Email),
		CancelURL:  s.cancelURL(),
		Metadata:   metadata,
	})
	if err != nil {
		return domain.CheckoutSession{}, upstream("create checkout session", err)
	}
	s.logger.Info("created checkout session",
		"sessionId", sess.ID,
		"customerId", cust.ID,
		"lineItems", len(lineItems),
	)
	return sess, nil
}

func (s *BillingService) creditMetadata(req CheckoutRequest) (map[string]string, error) {
	if len(req.rawItems) > 0 {
		return domain.CreditMetadataJSON(req.rawItems)
	}
	return domain.CreditMetadata(req.Items)
}

func (s *BillingService) resolveLineItems(items []domain.CartItem) ([]processor.LineItem, error) {
	lineItems := make([]processor.LineItem, 0, len(items))
	for _, item := range items {
		pkg, ok := s.catalog.Lookup(item.Package)
		if !ok {
			return nil, &InvalidPackageError{Package: string(item.Package)}
		}
		lineItems = append(lineItems, processor.LineItem{
			PriceID:  pkg.PriceID,
			Quantity: item.Quantity,
		})
	}
	return lineItems, nil
}

func (s *BillingService) successURL(email string) string {
	return fmt.Sprintf(successPathTemplate, s.baseURL, url.QueryEscape(email))
}

func (s *BillingService) cancelURL() string {
	return fmt.Sprintf(cancelPathTemplate, s.baseURL)
}
