package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vanshika/creditshop/internal/domain"
	"github.com/vanshika/creditshop/internal/labels"
	"github.com/vanshika/creditshop/internal/service"
)

const groupByPaymentType = "paymentType"

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger         *slog.Logger
	service        *service.BillingService
	labels         *labels.Labeler
	publishableKey string
}

// HandlerOptions carries the optional collaborators of APIHandlers.
type HandlerOptions struct {
	Labels         *labels.Labeler
	PublishableKey string
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.BillingService, opts HandlerOptions) *APIHandlers {
	return &APIHandlers{
		logger:         logger,
		service:        svc,
		labels:         opts.Labels,
		publishableKey: opts.PublishableKey,
	}
}

// Routes mounts the API endpoints on r.
func (h *APIHandlers) Routes(r chi.Router) {
	r.Post("/create-charge", h.createCharge)
	r.Post("/create-checkout-session", h.createCheckoutSession)
	r.Post("/create-setup-intent", h.createSetupIntent)
	r.Post("/update-default-payment-method", h.updateDefaultPaymentMethod)
	r.Get("/get-customer", h.getCustomer)
	r.Get("/get-payment-history", h.getPaymentHistory)
	r.Get("/list-payment-methods", h.listPaymentMethods)
	r.Delete("/remove-payment-method", h.removePaymentMethod)
	r.Get("/client-config", h.clientConfig)
}

type emailRequest struct {
	Email string `json:"email"`
}

type promoteRequest struct {
	CustomerID      string `json:"customerId"`
	PaymentMethodID string `json:"paymentMethodId"`
}

type historyGroupResponse struct {
	Key     string                 `json:"key"`
	Label   string                 `json:"label"`
	Entries []service.HistoryEntry `json:"entries"`
}

type packageResponse struct {
	Package      domain.PackageSize `json:"package"`
	Credits      int64              `json:"credits"`
	BonusRate    float64            `json:"bonusRate"`
	BonusCredits int64              `json:"bonusCredits"`
}

func (h *APIHandlers) createCharge(w http.ResponseWriter, r *http.Request) {
	var payload emailRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pi, err := h.service.ChargeDefaultPaymentMethod(r.Context(), payload.Email)
	if err != nil {
		h.fail(w, r, "charge creation failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"paymentIntent": verbatim(pi.Raw, pi),
	})
}

func (h *APIHandlers) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var payload service.CheckoutRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.logger.Debug("checkout payload rejected", "error", err)
		writeError(w, http.StatusBadRequest, service.MsgCheckoutInputRequired)
		return
	}

	sess, err := h.service.CreateCheckoutSession(r.Context(), payload)
	if err != nil {
		h.fail(w, r, "checkout session creation failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"sessionId": sess.ID,
	})
}

func (h *APIHandlers) createSetupIntent(w http.ResponseWriter, r *http.Request) {
	var payload emailRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	si, err := h.service.BeginCardSetup(r.Context(), payload.Email)
	if err != nil {
		h.fail(w, r, "setup intent creation failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"clientSecret": si.ClientSecret,
		"customerId":   si.CustomerID,
	})
}

func (h *APIHandlers) updateDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var payload promoteRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.PromoteDefaultPaymentMethod(r.Context(), payload.CustomerID, payload.PaymentMethodID)
	if err != nil {
		h.fail(w, r, "default payment method update failed", err)
		return
	}
	if !res.Updated {
		respondJSON(w, http.StatusOK, map[string]string{
			"message": service.MsgDefaultAlreadySet,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"updatedCustomer": verbatim(res.Customer.Raw, res.Customer),
	})
}

func (h *APIHandlers) getCustomer(w http.ResponseWriter, r *http.Request) {
	cust, err := h.service.LookupCustomer(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.fail(w, r, "customer lookup failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"customerId": cust.ID,
	})
}

func (h *APIHandlers) getPaymentHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	entries, err := h.service.PaymentHistory(r.Context(), query.Get("email"))
	if err != nil {
		h.fail(w, r, "payment history lookup failed", err)
		return
	}

	response := map[string]any{
		"paymentIntents": entries,
	}
	if strings.EqualFold(query.Get("groupBy"), groupByPaymentType) {
		groups := service.GroupHistory(entries)
		out := make([]historyGroupResponse, 0, len(groups))
		for _, g := range groups {
			out = append(out, historyGroupResponse{
				Key:     g.Key,
				Label:   h.label(g.Key),
				Entries: g.Entries,
			})
		}
		response["groups"] = out
	}

	respondJSON(w, http.StatusOK, response)
}

func (h *APIHandlers) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ListPaymentMethods(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.fail(w, r, "payment method listing failed", err)
		return
	}

	out := make([]any, 0, len(methods))
	for _, pm := range methods {
		out = append(out, verbatim(pm.Raw, pm))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"paymentMethods": out,
	})
}

func (h *APIHandlers) removePaymentMethod(w http.ResponseWriter, r *http.Request) {
	pm, err := h.service.RemovePaymentMethod(r.Context(), r.URL.Query().Get("paymentMethodId"))
	if err != nil {
		h.fail(w, r, "payment method removal failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":               service.MsgPaymentMethodRemoved,
		"detachedPaymentMethod": verbatim(pm.Raw, pm),
	})
}

func (h *APIHandlers) clientConfig(w http.ResponseWriter, r *http.Request) {
	pkgs := h.service.Catalog().Packages()
	out := make([]packageResponse, 0, len(pkgs))
	for _, pkg := range pkgs {
		out = append(out, packageResponse{
			Package:      pkg.Size,
			Credits:      pkg.Credits,
			BonusRate:    pkg.BonusRate,
			BonusCredits: pkg.BonusCredits(),
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"publishableKey": h.publishableKey,
		"packages":       out,
	})
}

func (h *APIHandlers) label(key string) string {
	if h.labels == nil {
		return key
	}
	return h.labels.PaymentType(key)
}

// fail maps a service error to its HTTP status and writes the error body.
func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	attrs := []any{"error", err, "path", r.URL.Path, "status", status}
	if perr, ok := service.ProcessorError(err); ok {
		attrs = append(attrs, "processorOp", perr.Op, "processorCode", perr.Code)
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, attrs...)
	} else {
		h.logger.Warn(msg, attrs...)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoDefaultPaymentMethod):
		return http.StatusBadRequest
	default:
		// Unknown cart packages land here with processor failures.
		return http.StatusInternalServerError
	}
}

// verbatim prefers the processor's own JSON body over the local projection.
func verbatim(raw json.RawMessage, fallback any) any {
	if len(raw) > 0 && json.Valid(raw) {
		return raw
	}
	return fallback
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
