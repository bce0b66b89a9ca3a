package controllers

import (
	"net/http"

	"github.com/localpop/localpop-backend/api/responses"
	"github.com/localpop/localpop-backend/internal/purchases"
	"github.com/localpop/localpop-backend/pkg/logger"
)

// PurchasesBuyerHistory lists the authenticated buyer's purchases.
func PurchasesBuyerHistory(purchaseService purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := purchaseService.ListForBuyer(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchases.FromModels(rows))
	}
}

// PurchasesSellerHistory lists settled and pending sales for the seller.
func PurchasesSellerHistory(purchaseService purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := purchaseService.ListForSeller(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchases.FromModels(rows))
	}
}
