package service

import (
	"context"

	"github.com/vanshika/creditshop/internal/domain"
)

// Group names produced by GroupHistory.
const (
	GroupCredit   = "credit"
	GroupPostpaid = "postpaid"
	GroupOther    = "other"
)

// HistoryEntry is the projection of a payment intent shown in payment history.
type HistoryEntry struct {
	ID          string             `json:"id"`
	Amount      int64              `json:"amount"`
	Currency    string             `json:"currency"`
	Status      string             `json:"status"`
	Created     int64              `json:"created"`
	ReceiptURL  *string            `json:"receipt_url"`
	PaymentType domain.PaymentType `json:"paymentType"`
	Metadata    map[string]string  `json:"metadata"`
	Items       []domain.CartItem  `json:"items,omitempty"`
}

// HistoryGroup is a run of history entries sharing a payment type.
type HistoryGroup struct {
	Key     string         `json:"key"`
	Entries []HistoryEntry `json:"entries"`
}

// PaymentHistory returns up to HistoryPageSize of the most recent tagged
// payment intents for the customer registered under email, in processor order.
func (s *BillingService) PaymentHistory(ctx context.Context, email string) ([]HistoryEntry, error) {
	cust, err := s.LookupCustomer(ctx, email)
	if err != nil {
		return nil, err
	}

	intents, err := s.client.ListPaymentIntents(ctx, cust.ID, HistoryPageSize)
	if err != nil {
		return nil, upstream("list payment intents", err)
	}

	entries := make([]HistoryEntry, 0, len(intents))
	for _, pi := range intents {
		entry, ok := s.projectIntent(pi)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	s.logger.Debug("projected payment history",
		"customerId", cust.ID,
		"fetched", len(intents),
		"returned", len(entries),
	)
	return entries, nil
}

func (s *BillingService) projectIntent(pi domain.PaymentIntent) (HistoryEntry, bool) {
	paymentType, ok := domain.PaymentTypeOf(pi.Metadata)
	if !ok {
		return HistoryEntry{}, false
	}

	entry := HistoryEntry{
		ID:          pi.ID,
		Amount:      pi.Amount,
		Currency:    pi.Currency,
		Status:      pi.Status,
		Created:     pi.Created,
		PaymentType: paymentType,
		Metadata:    pi.Metadata,
	}
	if pi.ReceiptURL != "" {
		receipt := pi.ReceiptURL
		entry.ReceiptURL = &receipt
	}

	if paymentType == domain.PaymentTypeCredit {
		if raw, present := pi.Metadata[domain.MetadataKeyItems]; present {
			items, err := domain.DecodeCartItems(raw)
			if err != nil {
				s.logger.Warn("quarantined malformed items metadata", "paymentIntentId", pi.ID, "error", err)
			} else {
				entry.Items = items
			}
		}
	}
	return entry, true
}

// GroupHistory buckets entries by payment type: credit, postpaid, then other
// for unrecognised tags. Empty buckets are omitted and entry order is kept.
func GroupHistory(entries []HistoryEntry) []HistoryGroup {
	order := []string{GroupCredit, GroupPostpaid, GroupOther}
	buckets := make(map[string][]HistoryEntry, len(order))
	for _, entry := range entries {
		key := GroupOther
		if entry.PaymentType.Known() {
			key = string(entry.PaymentType)
		}
		buckets[key] = append(buckets[key], entry)
	}

	groups := make([]HistoryGroup, 0, len(buckets))
	for _, key := range order {
		if len(buckets[key]) == 0 {
			continue
		}
		groups = append(groups, HistoryGroup{Key: key, Entries: buckets[key]})
	}
	return groups
}
