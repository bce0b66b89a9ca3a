package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/localpop/localpop-backend/api/responses"
	"github.com/localpop/localpop-backend/api/validators"
	"github.com/localpop/localpop-backend/internal/products"
	"github.com/localpop/localpop-backend/internal/users"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
	"github.com/localpop/localpop-backend/pkg/logger"
)

// AdminUsersList returns every account for the moderation dashboard.
func AdminUsersList(userRepo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := userRepo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users"))
			return
		}

		out := make([]*users.UserDTO, 0, len(rows))
		for i := range rows {
			out = append(out, users.FromModel(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminUserStatusRequest toggles whether an account can log in.
type AdminUserStatusRequest struct {
	Active bool `json:"active"`
}

func AdminUserSetStatus(userRepo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req AdminUserStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := userRepo.FindByID(r.Context(), userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user"))
			return
		}

		if err := userRepo.SetActive(r.Context(), userID, req.Active); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user status"))
			return
		}
		responses.WriteSuccess(w, map[string]bool{"active": req.Active})
	}
}

func AdminProductsList(productService products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := productService.AdminList(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminProductFlagRequest carries the moderation verdict.
type AdminProductFlagRequest struct {
	Flagged bool   `json:"flagged"`
	Reason  string `json:"reason,omitempty"`
}

func AdminProductSetFlag(productService products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req AdminProductFlagRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if req.Flagged {
			err = productService.Flag(r.Context(), productID, req.Reason)
		} else {
			err = productService.Unflag(r.Context(), productID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"flagged": req.Flagged})
	}
}

func AdminProductDelete(productService products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := productService.AdminDelete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
