package stats

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/enums"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
	"github.com/localpop/localpop-backend/pkg/logger"
)

type productSource interface {
	Count(ctx context.Context) (int64, error)
	CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
	CountFlaggedBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
	ListAll(ctx context.Context) ([]models.Product, error)
}

type purchaseSource interface {
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Purchase, error)
	ListAll(ctx context.Context) ([]models.Purchase, error)
	Count(ctx context.Context) (int64, error)
}

type userSource interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]models.User, error)
}

type wishlistCounter interface {
	CountForSeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

// Service aggregates counts and revenue for the seller dashboard and the
// admin console.
type Service interface {
	SellerStats(ctx context.Context, sellerID uuid.UUID) (*SellerStats, error)
	SellerAnalytics(ctx context.Context, sellerID uuid.UUID) (*SellerAnalytics, error)
	AdminStats(ctx context.Context) (*AdminStats, error)
	AdminOverview(ctx context.Context) (*AdminOverview, error)
}

// ServiceParams carry the aggregation sources.
type ServiceParams struct {
	Products  productSource
	Purchases purchaseSource
	Users     userSource
	Wishlist  wishlistCounter
	Logger    *logger.Logger
}

type service struct {
	products  productSource
	purchases purchaseSource
	users     userSource
	wishlist  wishlistCounter
	logg      *logger.Logger
}

// NewService builds a stats service.
func NewService(params ServiceParams) (Service, error) {
	if params.Products == nil {
		return nil, fmt.Errorf("product source required")
	}
	if params.Purchases == nil {
		return nil, fmt.Errorf("purchase source required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user source required")
	}
	if params.Wishlist == nil {
		return nil, fmt.Errorf("wishlist counter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		products:  params.Products,
		purchases: params.Purchases,
		users:     params.Users,
		wishlist:  params.Wishlist,
		logg:      params.Logger,
	}, nil
}

// SellerStats counts the seller's listings and settled sales. Revenue only
// counts Paid purchases; Pending and Cancelled rows never contribute.
func (s *service) SellerStats(ctx context.Context, sellerID uuid.UUID) (*SellerStats, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	productCount, err := s.products.CountBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}

	rows, err := s.purchases.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	stats := &SellerStats{
		ProductCount: productCount,
		TotalRevenue: decimal.Zero,
	}
	for _, row := range rows {
		if row.Status != enums.PurchaseStatusPaid {
			continue
		}
		stats.SaleCount++
		stats.TotalRevenue = stats.TotalRevenue.Add(row.Amount)
	}
	return stats, nil
}

// SellerAnalytics extends the stats with moderation and wishlist-interest
// counts. A wishlist count failure degrades to zero instead of failing the
// dashboard.
func (s *service) SellerAnalytics(ctx context.Context, sellerID uuid.UUID) (*SellerAnalytics, error) {
	base, err := s.SellerStats(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	flagged, err := s.products.CountFlaggedBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count flagged products")
	}

	analytics := &SellerAnalytics{
		SellerStats:  *base,
		FlaggedCount: flagged,
	}
	wishlistCount, err := s.wishlist.CountForSeller(ctx, sellerID)
	if err != nil {
		s.logg.Warn(ctx, "wishlist interest count unavailable")
	} else {
		analytics.WishlistCount = wishlistCount
	}
	return analytics, nil
}

// AdminStats returns platform-wide counters.
func (s *service) AdminStats(ctx context.Context) (*AdminStats, error) {
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	purchaseCount, err := s.purchases.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count purchases")
	}
	return &AdminStats{
		UserCount:     userCount,
		ProductCount:  productCount,
		PurchaseCount: purchaseCount,
	}, nil
}

// AdminOverview is the moderation snapshot: every account, listing, and
// purchase in projected form.
func (s *service) AdminOverview(ctx context.Context) (*AdminOverview, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	purchases, err := s.purchases.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}

	overview := &AdminOverview{
		Users:     make([]OverviewUser, 0, len(users)),
		Products:  make([]OverviewProduct, 0, len(products)),
		Purchases: make([]OverviewPurchase, 0, len(purchases)),
	}
	for _, u := range users {
		overview.Users = append(overview.Users, OverviewUser{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Role:  u.Role,
		})
	}
	for _, p := range products {
		overview.Products = append(overview.Products, OverviewProduct{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			SellerID: p.SellerID,
			Flagged:  p.Flagged,
		})
	}
	for _, p := range purchases {
		overview.Purchases = append(overview.Purchases, OverviewPurchase{
			ID:        p.ID,
			ProductID: p.ProductID,
			BuyerID:   p.BuyerID,
			SellerID:  p.SellerID,
			Status:    p.Status,
		})
	}
	return overview, nil
}
