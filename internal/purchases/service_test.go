package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/localpop/localpop-backend/internal/mail"
	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/enums"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
)

type memPurchaseRepo struct {
	rows map[uuid.UUID]*models.Purchase
}

func newMemPurchaseRepo() *memPurchaseRepo {
	return &memPurchaseRepo{rows: make(map[uuid.UUID]*models.Purchase)}
}

func (m *memPurchaseRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memPurchaseRepo) Create(ctx context.Context, purchase *models.Purchase) error {
	m.rows[purchase.ID] = purchase
	return nil
}

func (m *memPurchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *memPurchaseRepo) FindByPaymentToken(ctx context.Context, token string) (*models.Purchase, error) {
	for _, row := range m.rows {
		if row.PaymentToken == token {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memPurchaseRepo) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	row, ok := m.rows[id]
	if !ok || row.Status != enums.PurchaseStatusPending {
		return false, nil
	}
	row.Status = enums.PurchaseStatusPaid
	row.PaidAt = &at
	return true, nil
}

func (m *memPurchaseRepo) MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	row, ok := m.rows[id]
	if !ok || row.Status != enums.PurchaseStatusPending {
		return false, nil
	}
	row.Status = enums.PurchaseStatusCancelled
	row.CancelledAt = &at
	return true, nil
}

func (m *memPurchaseRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Purchase, error) {
	var out []models.Purchase
	for _, row := range m.rows {
		if row.BuyerID == buyerID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memPurchaseRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Purchase, error) {
	var out []models.Purchase
	for _, row := range m.rows {
		if row.SellerID == sellerID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memPurchaseRepo) ListAll(ctx context.Context) ([]models.Purchase, error) {
	var out []models.Purchase
	for _, row := range m.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (m *memPurchaseRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.rows)), nil
}

type memMailRepo struct {
	enqueued []mail.Message
}

func (m *memMailRepo) WithTx(tx *gorm.DB) mail.Repository { return m }

func (m *memMailRepo) Enqueue(ctx context.Context, msg mail.Message) (*models.EmailOutbox, error) {
	m.enqueued = append(m.enqueued, msg)
	return &models.EmailOutbox{ID: uuid.New()}, nil
}

func (m *memMailRepo) FindDue(ctx context.Context, now time.Time, limit int) ([]models.EmailOutbox, error) {
	return nil, nil
}

func (m *memMailRepo) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error { return nil }

func (m *memMailRepo) MarkRetry(ctx context.Context, id uuid.UUID, attempts int, sendErr string, next time.Time) error {
	return nil
}

func (m *memMailRepo) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, sendErr string) error {
	return nil
}

func (m *memMailRepo) CountByStatus(ctx context.Context, status enums.EmailStatus) (int64, error) {
	return int64(len(m.enqueued)), nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type memProductFinder struct {
	rows map[uuid.UUID]*models.Product
}

func (m *memProductFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

type memUserFinder struct {
	rows map[uuid.UUID]*models.User
}

func (m *memUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

type serviceFixture struct {
	svc      Service
	repo     *memPurchaseRepo
	mailRepo *memMailRepo
	products *memProductFinder
	users    *memUserFinder
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	repo := newMemPurchaseRepo()
	mailRepo := &memMailRepo{}
	products := &memProductFinder{rows: make(map[uuid.UUID]*models.Product)}
	users := &memUserFinder{rows: make(map[uuid.UUID]*models.User)}
	svc, err := NewService(ServiceParams{
		Repo:              repo,
		MailRepo:          mailRepo,
		Products:          products,
		Users:             users,
		TransactionRunner: passthroughTx{},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &serviceFixture{svc: svc, repo: repo, mailRepo: mailRepo, products: products, users: users}
}

func (f *serviceFixture) seedPendingPurchase() *models.Purchase {
	productID := uuid.New()
	seller := &models.User{ID: uuid.New(), Email: "seller@example.com", Name: "Pete"}
	f.users.rows[seller.ID] = seller
	purchase := &models.Purchase{
		ID:           uuid.New(),
		ProductID:    &productID,
		BuyerID:      uuid.New(),
		SellerID:     seller.ID,
		ItemName:     "Sourdough loaf",
		BuyerEmail:   "buyer@example.com",
		Amount:       decimal.RequireFromString("150.00"),
		Status:       enums.PurchaseStatusPending,
		PaymentToken: "tok-" + uuid.NewString(),
	}
	f.repo.rows[purchase.ID] = purchase
	return purchase
}

func TestCreateSnapshotsProductAndBuyer(t *testing.T) {
	f := newServiceFixture(t)
	seller := uuid.New()
	product := &models.Product{
		ID:       uuid.New(),
		SellerID: seller,
		Name:     "Beaded bracelet",
		Price:    decimal.RequireFromString("80.50"),
	}
	buyer := &models.User{ID: uuid.New(), Email: "buyer@example.com", Name: "Thandi"}
	f.products.rows[product.ID] = product
	f.users.rows[buyer.ID] = buyer

	purchase, err := f.svc.Create(context.Background(), CreateInput{ProductID: product.ID, BuyerID: buyer.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if purchase.Status != enums.PurchaseStatusPending {
		t.Fatalf("expected Pending, got %s", purchase.Status)
	}
	if purchase.ItemName != "Beaded bracelet" || !purchase.Amount.Equal(product.Price) {
		t.Fatalf("snapshot fields not copied")
	}
	if purchase.SellerID != seller {
		t.Fatalf("seller not taken from product")
	}
	if purchase.PaymentToken == "" || purchase.PaymentToken == purchase.ID.String() {
		t.Fatalf("payment token must be generated separately from the purchase id")
	}
}

func TestCreateRejectsOwnProduct(t *testing.T) {
	f := newServiceFixture(t)
	seller := &models.User{ID: uuid.New(), Email: "seller@example.com"}
	product := &models.Product{ID: uuid.New(), SellerID: seller.ID, Name: "x", Price: decimal.NewFromInt(10)}
	f.products.rows[product.ID] = product
	f.users.rows[seller.ID] = seller

	_, err := f.svc.Create(context.Background(), CreateInput{ProductID: product.ID, BuyerID: seller.ID})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestMarkPaidTransitionsOnceAndNotifiesBothParties(t *testing.T) {
	f := newServiceFixture(t)
	purchase := f.seedPendingPurchase()

	transitioned, err := f.svc.MarkPaid(context.Background(), purchase.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !transitioned {
		t.Fatalf("expected transition on first call")
	}

	// duplicate delivery: no error, no extra emails
	transitioned, err = f.svc.MarkPaid(context.Background(), purchase.ID)
	if err != nil {
		t.Fatalf("duplicate mark paid: %v", err)
	}
	if transitioned {
		t.Fatalf("duplicate call must not transition again")
	}

	if len(f.mailRepo.enqueued) != 2 {
		t.Fatalf("expected buyer confirmation and seller notice, got %d emails", len(f.mailRepo.enqueued))
	}
	recipients := map[string]bool{}
	for _, msg := range f.mailRepo.enqueued {
		recipients[msg.To] = true
		if msg.PurchaseID == nil || *msg.PurchaseID != purchase.ID {
			t.Fatalf("email to %q not linked to purchase", msg.To)
		}
	}
	if !recipients["buyer@example.com"] || !recipients["seller@example.com"] {
		t.Fatalf("unexpected recipients %v", recipients)
	}
}

func TestMarkPaidRejectsCancelledPurchase(t *testing.T) {
	f := newServiceFixture(t)
	purchase := f.seedPendingPurchase()

	if _, err := f.svc.MarkCancelled(context.Background(), purchase.ID); err != nil {
		t.Fatalf("mark cancelled: %v", err)
	}

	_, err := f.svc.MarkPaid(context.Background(), purchase.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	if len(f.mailRepo.enqueued) != 0 {
		t.Fatalf("no email may be sent on a rejected transition")
	}
}

func TestMarkCancelledIsIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	purchase := f.seedPendingPurchase()

	for i := 0; i < 2; i++ {
		if _, err := f.svc.MarkCancelled(context.Background(), purchase.ID); err != nil {
			t.Fatalf("mark cancelled attempt %d: %v", i+1, err)
		}
	}
	if f.repo.rows[purchase.ID].Status != enums.PurchaseStatusCancelled {
		t.Fatalf("expected Cancelled")
	}
}

func TestMarkPaidUnknownPurchase(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.MarkPaid(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if coded.Code() != want {
		t.Fatalf("expected code %s, got %s", want, coded.Code())
	}
}
