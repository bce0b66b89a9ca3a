package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/localpop/localpop-backend/pkg/db"
	"github.com/localpop/localpop-backend/pkg/db/models"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
)

type repository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	FindByProductAndBuyer(ctx context.Context, productID, buyerID uuid.UUID) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error)
	SetReply(ctx context.Context, id uuid.UUID, reply string) error
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// RatingSummary aggregates a product's reviews for the detail page.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Service owns review creation, listing, and seller replies. Each buyer may
// review a product once; only the product's seller may reply.
type Service interface {
	Create(ctx context.Context, buyerID, productID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error)
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	Summary(ctx context.Context, productID uuid.UUID) (*RatingSummary, error)
	Reply(ctx context.Context, sellerID, reviewID uuid.UUID, input ReplyInput) (*ReviewDTO, error)
}

type service struct {
	repo     repository
	products productFinder
}

// ServiceParams carry the service dependencies.
type ServiceParams struct {
	Repo     repository
	Products productFinder
}

// NewService builds a reviews service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{repo: params.Repo, products: params.Products}, nil
}

func (s *service) Create(ctx context.Context, buyerID, productID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sellers cannot review their own listing")
	}

	if _, err := s.repo.FindByProductAndBuyer(ctx, productID, buyerID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "you have already reviewed this product")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing review")
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: productID,
		BuyerID:   buyerID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if db.IsUniqueViolation(err, "idx_reviews_product_buyer") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "you have already reviewed this product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}

	dto := fromModel(review)
	return &dto, nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	return fromModels(rows), nil
}

func (s *service) Summary(ctx context.Context, productID uuid.UUID) (*RatingSummary, error) {
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	summary := &RatingSummary{Count: len(rows)}
	if len(rows) == 0 {
		return summary, nil
	}

	total := 0
	for _, row := range rows {
		total += row.Rating
	}
	summary.Average = float64(total) / float64(len(rows))
	return summary, nil
}

func (s *service) Reply(ctx context.Context, sellerID, reviewID uuid.UUID, input ReplyInput) (*ReviewDTO, error) {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find review")
	}

	product, err := s.findProduct(ctx, review.ProductID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "review belongs to another seller's listing")
	}

	if err := s.repo.SetReply(ctx, reviewID, input.Reply); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reply to review")
	}

	review.Reply = &input.Reply
	dto := fromModel(review)
	return &dto, nil
}

func (s *service) findProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find product")
	}
	return product, nil
}
