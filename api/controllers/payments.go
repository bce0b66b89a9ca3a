package controllers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/localpop/localpop-backend/api/responses"
	"github.com/localpop/localpop-backend/api/validators"
	"github.com/localpop/localpop-backend/internal/payfast"
	"github.com/localpop/localpop-backend/internal/purchases"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
	"github.com/localpop/localpop-backend/pkg/logger"
)

// PaymentGateway is the payfast surface the controllers depend on.
type PaymentGateway interface {
	BuildRedirect(ctx context.Context, input payfast.BuildRedirectInput) (*payfast.RedirectForm, error)
	HandleNotification(ctx context.Context, form url.Values) error
}

// PayRequest starts checkout for one product.
type PayRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// PayResponse carries everything the client needs to render and auto-submit
// the gateway form.
type PayResponse struct {
	PurchaseID uuid.UUID             `json:"purchase_id"`
	Redirect   *payfast.RedirectForm `json:"redirect"`
}

// PaymentsPay creates a pending purchase and returns the signed PayFast
// redirect form for it.
func PaymentsPay(purchaseService purchases.Service, gateway PaymentGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req PayRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := purchaseService.Create(r.Context(), purchases.CreateInput{
			ProductID: req.ProductID,
			BuyerID:   buyerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		redirect, err := gateway.BuildRedirect(r.Context(), payfast.BuildRedirectInput{
			PurchaseID: purchase.ID,
			BuyerID:    buyerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, PayResponse{
			PurchaseID: purchase.ID,
			Redirect:   redirect,
		})
	}
}

// PaymentsNotify terminates the gateway's server-to-server callback. The
// body is application/x-www-form-urlencoded and the response body is the
// bare "OK" the gateway expects, not the JSON envelope.
func PaymentsNotify(gateway PaymentGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed form body"))
			return
		}

		if err := gateway.HandleNotification(r.Context(), r.PostForm); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
