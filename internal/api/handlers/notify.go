package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/landsalelk/payments-backend/internal/api/httpx"
	"github.com/landsalelk/payments-backend/internal/api/validate"
	"github.com/landsalelk/payments-backend/internal/metrics"
	"github.com/landsalelk/payments-backend/internal/models"
	"github.com/landsalelk/payments-backend/internal/payhere"
	"github.com/landsalelk/payments-backend/internal/services"
)

type Reconciler interface {
	Process(ctx context.Context, n models.Notification) (services.Outcome, error)
}

type NotifyHandler struct {
	Svc            Reconciler
	MerchantID     string
	MerchantSecret string
}

func NewNotifyHandler(svc Reconciler, merchantID, merchantSecret string) *NotifyHandler {
	return &NotifyHandler{Svc: svc, MerchantID: merchantID, MerchantSecret: merchantSecret}
}

// Ack is the gateway-facing response envelope. Anything 2xx stops PayHere
// from redelivering.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (h *NotifyHandler) Notify(w http.ResponseWriter, r *http.Request) {
	n, err := parseNotification(r)
	if err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, Ack{Success: false, Message: err.Error()})
		return
	}

	if !payhere.Verify(n, h.MerchantID, h.MerchantSecret) {
		metrics.SignatureFailures.Inc()
		slog.Error("invalid payment signature", "order_id", n.OrderID, "payment_id", n.PaymentID)
		httpx.WriteJSON(w, http.StatusBadRequest, Ack{Success: false, Message: "invalid signature"})
		return
	}

	out, err := h.Svc.Process(r.Context(), n)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			httpx.WriteJSON(w, http.StatusBadRequest, Ack{Success: false, Message: "invalid amount"})
			return
		}
		slog.Error("payment processing failed", "order_id", n.OrderID, "payment_id", n.PaymentID, "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, Ack{Success: false, Message: err.Error()})
		return
	}

	switch out.State {
	case services.OutcomeDuplicate:
		httpx.WriteJSON(w, http.StatusOK, Ack{Success: true, Message: "Already processed"})
	case services.OutcomeIgnored:
		httpx.WriteJSON(w, http.StatusOK, Ack{Success: true, Message: "Ignored non-success status"})
	default:
		httpx.WriteJSON(w, http.StatusOK, Ack{Success: true, Message: "Transaction recorded"})
	}
}

// parseNotification reads either form-urlencoded (PayHere's default) or
// JSON bodies.
func parseNotification(r *http.Request) (models.Notification, error) {
	var n models.Notification

	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			return models.Notification{}, errors.New("malformed body")
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return models.Notification{}, errors.New("malformed body")
		}
		n = models.Notification{
			MerchantID: r.PostFormValue("merchant_id"),
			OrderID:    r.PostFormValue("order_id"),
			PaymentID:  r.PostFormValue("payment_id"),
			Amount:     r.PostFormValue("payhere_amount"),
			Currency:   r.PostFormValue("payhere_currency"),
			StatusCode: r.PostFormValue("status_code"),
			Signature:  r.PostFormValue("md5sig"),
			UserID:     r.PostFormValue("custom_1"),
			ContextID:  r.PostFormValue("custom_2"),
		}
	}

	var errs validate.Errs
	for _, check := range []struct{ field, value string }{
		{"order_id", n.OrderID},
		{"payment_id", n.PaymentID},
	} {
		if e := validate.Required(check.field, check.value); e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		return models.Notification{}, errs
	}
	return n, nil
}
