package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanshika/creditshop/internal/domain"
	"github.com/vanshika/creditshop/internal/labels"
	"github.com/vanshika/creditshop/internal/service"
)

type globalOptions struct {
	email  string
	output string
	newApp func() (*app, error)
}

func (o *globalOptions) app() (*app, error) {
	return o.newApp()
}

func customerCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "customer",
		Short: "Look up the customer id registered for an email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			cust, err := a.billing.LookupCustomer(cmd.Context(), opts.email)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, map[string]string{"customerId": cust.ID})
		},
	}
}

func chargeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "charge",
		Short: "Charge the customer's default payment method for usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			pi, err := a.billing.ChargeDefaultPaymentMethod(cmd.Context(), opts.email)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, map[string]any{"paymentIntent": pi})
		},
	}
}

func historyCmd(opts *globalOptions) *cobra.Command {
	var group bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent tagged payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			entries, err := a.billing.PaymentHistory(cmd.Context(), opts.email)
			if err != nil {
				return err
			}
			if !group {
				return render(cmd.OutOrStdout(), opts.output, map[string]any{"paymentIntents": entries})
			}
			return render(cmd.OutOrStdout(), opts.output, map[string]any{"groups": labelGroups(a.labels, service.GroupHistory(entries))})
		},
	}

	cmd.Flags().BoolVarP(&group, "group", "g", false, "Group payments by payment type")
	return cmd
}

type labeledGroup struct {
	Key     string                 `json:"key"`
	Label   string                 `json:"label"`
	Entries []service.HistoryEntry `json:"entries"`
}

func labelGroups(l *labels.Labeler, groups []service.HistoryGroup) []labeledGroup {
	out := make([]labeledGroup, 0, len(groups))
	for _, g := range groups {
		label := g.Key
		if l != nil {
			label = l.PaymentType(g.Key)
		}
		out = append(out, labeledGroup{Key: g.Key, Label: label, Entries: g.Entries})
	}
	return out
}

func cardsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage stored cards",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cards registered through the storefront",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			methods, err := a.billing.ListPaymentMethods(cmd.Context(), opts.email)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, map[string]any{"paymentMethods": methods})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove ID...",
		Short: "Detach one or more cards, in order, stopping at the first failure",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			detached, err := a.billing.RemovePaymentMethods(cmd.Context(), args)
			if renderErr := render(cmd.OutOrStdout(), opts.output, map[string]any{"detached": detached}); renderErr != nil {
				return renderErr
			}
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "promote CUSTOMER_ID PAYMENT_METHOD_ID",
		Short: "Make a card the default unless the customer already has one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			res, err := a.billing.PromoteDefaultPaymentMethod(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !res.Updated {
				return render(cmd.OutOrStdout(), opts.output, map[string]string{"message": service.MsgDefaultAlreadySet})
			}
			return render(cmd.OutOrStdout(), opts.output, map[string]any{"updatedCustomer": res.Customer})
		},
	})

	return cmd
}

func checkoutCmd(opts *globalOptions) *cobra.Command {
	var items []string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Open a hosted checkout session for credit packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, err := parseItems(items)
			if err != nil {
				return err
			}
			a, err := opts.app()
			if err != nil {
				return err
			}
			sess, err := a.billing.CreateCheckoutSession(cmd.Context(), service.CheckoutRequest{
				Email: opts.email,
				Items: cart,
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, map[string]string{"sessionId": sess.ID, "url": sess.URL})
		},
	}

	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, "Cart entry as SIZE=QTY (repeatable)")
	return cmd
}

func setupCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create a setup intent for registering a card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app()
			if err != nil {
				return err
			}
			si, err := a.billing.BeginCardSetup(cmd.Context(), opts.email)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, si)
		},
	}
}

// parseItems turns SIZE=QTY pairs into cart entries. A bare SIZE means one unit.
func parseItems(raw []string) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0, len(raw))
	for _, entry := range raw {
		size, qty, found := strings.Cut(entry, "=")
		size = strings.TrimSpace(size)
		if size == "" {
			return nil, fmt.Errorf("invalid item %q: missing package size", entry)
		}
		quantity := int64(1)
		if found {
			n, err := strconv.ParseInt(strings.TrimSpace(qty), 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid item %q: quantity must be a non-negative integer", entry)
			}
			quantity = n
		}
		items = append(items, domain.CartItem{Package: domain.PackageSize(size), Quantity: quantity})
	}
	return items, nil
}
