package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/localpop/localpop-backend/internal/products"
	"github.com/localpop/localpop-backend/pkg/db/models"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
)

type repository interface {
	AddItem(ctx context.Context, buyerID, productID uuid.UUID) error
	RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) error
	ListItems(ctx context.Context, buyerID uuid.UUID) ([]wishlistRow, error)
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes wishlist management for buyers.
type Service interface {
	Add(ctx context.Context, buyerID, productID uuid.UUID) error
	Remove(ctx context.Context, buyerID, productID uuid.UUID) error
	List(ctx context.Context, buyerID uuid.UUID) ([]ItemDTO, error)
}

// ServiceParams carry the service dependencies.
type ServiceParams struct {
	Repo     repository
	Products productFinder
}

type service struct {
	repo     repository
	products productFinder
}

// NewService builds a wishlist service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product finder is required")
	}
	return &service{repo: params.Repo, products: params.Products}, nil
}

// Add ensures the product exists and saves it. Re-adding is a no-op.
func (s *service) Add(ctx context.Context, buyerID, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if err := s.repo.AddItem(ctx, buyerID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save wishlist item")
	}
	return nil
}

// Remove drops the entry regardless of prior state.
func (s *service) Remove(ctx context.Context, buyerID, productID uuid.UUID) error {
	if err := s.repo.RemoveItem(ctx, buyerID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove wishlist item")
	}
	return nil
}

// List returns the buyer's saved products with flagged listings hidden.
func (s *service) List(ctx context.Context, buyerID uuid.UUID) ([]ItemDTO, error) {
	rows, err := s.repo.ListItems(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist")
	}

	out := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		if row.Flagged {
			continue
		}
		out = append(out, ItemDTO{
			Product: products.ProductDTO{
				ID:          row.ProductID,
				SellerID:    row.SellerID,
				Name:        row.Name,
				Description: row.Description,
				Category:    row.Category,
				Price:       row.Price,
				ImageURL:    row.ImageURL,
				CreatedAt:   row.CreatedAt,
				UpdatedAt:   row.UpdatedAt,
			},
			SavedAt: row.SavedAt,
		})
	}
	return out, nil
}
