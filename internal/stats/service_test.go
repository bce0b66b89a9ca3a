package stats

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/enums"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
	"github.com/localpop/localpop-backend/pkg/logger"
)

type stubProducts struct {
	rows []models.Product
}

func (s *stubProducts) Count(ctx context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

func (s *stubProducts) CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var n int64
	for _, row := range s.rows {
		if row.SellerID == sellerID {
			n++
		}
	}
	return n, nil
}

func (s *stubProducts) CountFlaggedBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var n int64
	for _, row := range s.rows {
		if row.SellerID == sellerID && row.Flagged {
			n++
		}
	}
	return n, nil
}

func (s *stubProducts) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.rows, nil
}

type stubPurchases struct {
	rows []models.Purchase
}

func (s *stubPurchases) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Purchase, error) {
	var out []models.Purchase
	for _, row := range s.rows {
		if row.SellerID == sellerID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubPurchases) ListAll(ctx context.Context) ([]models.Purchase, error) {
	return s.rows, nil
}

func (s *stubPurchases) Count(ctx context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

type stubUsers struct {
	rows []models.User
}

func (s *stubUsers) Count(ctx context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

func (s *stubUsers) List(ctx context.Context) ([]models.User, error) {
	return s.rows, nil
}

type stubWishlist struct {
	count int64
	err   error
}

func (s *stubWishlist) CountForSeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	return s.count, s.err
}

type fixture struct {
	svc       Service
	products  *stubProducts
	purchases *stubPurchases
	users     *stubUsers
	wishlist  *stubWishlist
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := &stubProducts{}
	purchases := &stubPurchases{}
	users := &stubUsers{}
	wishlist := &stubWishlist{}
	logg := logger.New(logger.Options{ServiceName: "stats-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Products:  products,
		Purchases: purchases,
		Users:     users,
		Wishlist:  wishlist,
		Logger:    logg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &fixture{svc: svc, products: products, purchases: purchases, users: users, wishlist: wishlist}
}

func purchaseRow(sellerID uuid.UUID, status enums.PurchaseStatus, amount string) models.Purchase {
	productID := uuid.New()
	return models.Purchase{
		ID:        uuid.New(),
		ProductID: &productID,
		BuyerID:   uuid.New(),
		SellerID:  sellerID,
		Amount:    decimal.RequireFromString(amount),
		Status:    status,
	}
}

func TestSellerStatsCountsOnlyPaidRevenue(t *testing.T) {
	f := newFixture(t)
	seller := uuid.New()
	f.products.rows = []models.Product{
		{ID: uuid.New(), SellerID: seller},
		{ID: uuid.New(), SellerID: seller, Flagged: true},
		{ID: uuid.New(), SellerID: uuid.New()},
	}
	f.purchases.rows = []models.Purchase{
		purchaseRow(seller, enums.PurchaseStatusPaid, "150.00"),
		purchaseRow(seller, enums.PurchaseStatusPaid, "80.50"),
		purchaseRow(seller, enums.PurchaseStatusPending, "999.00"),
		purchaseRow(seller, enums.PurchaseStatusCancelled, "40.00"),
		purchaseRow(uuid.New(), enums.PurchaseStatusPaid, "500.00"),
	}

	stats, err := f.svc.SellerStats(context.Background(), seller)
	if err != nil {
		t.Fatalf("seller stats: %v", err)
	}
	if stats.ProductCount != 2 {
		t.Fatalf("expected 2 products, got %d", stats.ProductCount)
	}
	if stats.SaleCount != 2 {
		t.Fatalf("expected 2 settled sales, got %d", stats.SaleCount)
	}
	if want := decimal.RequireFromString("230.50"); !stats.TotalRevenue.Equal(want) {
		t.Fatalf("expected revenue %s, got %s", want, stats.TotalRevenue)
	}
}

func TestSellerStatsRequiresIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SellerStats(context.Background(), uuid.Nil)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSellerAnalyticsIncludesInterestAndFlags(t *testing.T) {
	f := newFixture(t)
	seller := uuid.New()
	f.products.rows = []models.Product{
		{ID: uuid.New(), SellerID: seller, Flagged: true},
		{ID: uuid.New(), SellerID: seller},
	}
	f.wishlist.count = 7

	analytics, err := f.svc.SellerAnalytics(context.Background(), seller)
	if err != nil {
		t.Fatalf("seller analytics: %v", err)
	}
	if analytics.WishlistCount != 7 {
		t.Fatalf("expected wishlist count 7, got %d", analytics.WishlistCount)
	}
	if analytics.FlaggedCount != 1 {
		t.Fatalf("expected 1 flagged listing, got %d", analytics.FlaggedCount)
	}
}

func TestSellerAnalyticsToleratesWishlistFailure(t *testing.T) {
	f := newFixture(t)
	seller := uuid.New()
	f.wishlist.err = errors.New("join timed out")

	analytics, err := f.svc.SellerAnalytics(context.Background(), seller)
	if err != nil {
		t.Fatalf("wishlist failure must not fail the dashboard: %v", err)
	}
	if analytics.WishlistCount != 0 {
		t.Fatalf("expected degraded count 0, got %d", analytics.WishlistCount)
	}
}

func TestAdminStatsCountsEverything(t *testing.T) {
	f := newFixture(t)
	f.users.rows = make([]models.User, 3)
	f.products.rows = make([]models.Product, 2)
	f.purchases.rows = []models.Purchase{purchaseRow(uuid.New(), enums.PurchaseStatusPending, "10.00")}

	stats, err := f.svc.AdminStats(context.Background())
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}
	if stats.UserCount != 3 || stats.ProductCount != 2 || stats.PurchaseCount != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
}

func TestAdminOverviewProjectsWithoutCredentials(t *testing.T) {
	f := newFixture(t)
	seller := uuid.New()
	f.users.rows = []models.User{{
		ID:           uuid.New(),
		Name:         "Thandi",
		Email:        "thandi@example.com",
		PasswordHash: "argon2id$hash",
		Role:         enums.UserRoleSeller,
	}}
	f.products.rows = []models.Product{{
		ID:       uuid.New(),
		SellerID: seller,
		Name:     "Beaded bracelet",
		Price:    decimal.RequireFromString("80.50"),
	}}
	f.purchases.rows = []models.Purchase{purchaseRow(seller, enums.PurchaseStatusPaid, "80.50")}

	overview, err := f.svc.AdminOverview(context.Background())
	if err != nil {
		t.Fatalf("admin overview: %v", err)
	}
	if len(overview.Users) != 1 || len(overview.Products) != 1 || len(overview.Purchases) != 1 {
		t.Fatalf("unexpected overview sizes %+v", overview)
	}
	if overview.Users[0].Email != "thandi@example.com" {
		t.Fatalf("user projection lost the email")
	}
	if overview.Purchases[0].Status != enums.PurchaseStatusPaid {
		t.Fatalf("purchase projection lost the status")
	}
}
