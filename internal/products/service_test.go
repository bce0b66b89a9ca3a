package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/enums"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
	"github.com/localpop/localpop-backend/pkg/pagination"
)

type memProductRepo struct {
	rows map[uuid.UUID]*models.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{rows: make(map[uuid.UUID]*models.Product)}
}

func (m *memProductRepo) Create(_ context.Context, product *models.Product) error {
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	copied := *product
	m.rows[product.ID] = &copied
	return nil
}

func (m *memProductRepo) Update(_ context.Context, product *models.Product) error {
	copied := *product
	m.rows[product.ID] = &copied
	return nil
}

func (m *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

func (m *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *memProductRepo) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, row := range m.rows {
		if row.SellerID == sellerID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memProductRepo) ListPublic(_ context.Context, filters ListFilters, _ *pagination.Cursor, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, row := range m.rows {
		if row.Flagged {
			continue
		}
		if filters.Category != nil && row.Category != *filters.Category {
			continue
		}
		out = append(out, *row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memProductRepo) ListRelated(_ context.Context, category enums.ProductCategory, excludeID uuid.UUID, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, row := range m.rows {
		if row.Flagged || row.ID == excludeID || row.Category != category {
			continue
		}
		out = append(out, *row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memProductRepo) ListAll(_ context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, row := range m.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (m *memProductRepo) SetFlag(_ context.Context, id uuid.UUID, flagged bool, reason *string) error {
	row, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Flagged = flagged
	row.FlagReason = reason
	return nil
}

func newTestService(t *testing.T) (Service, *memProductRepo) {
	t.Helper()
	repo := newMemProductRepo()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func assertProductCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if coded.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, coded.Code(), err)
	}
}

func validCreateInput() CreateProductInput {
	return CreateProductInput{
		Name:        "Hand-thrown ceramic mug",
		Description: "Wheel-thrown and glazed in my garage studio",
		Category:    enums.ProductCategoryCrafts,
		Price:       decimal.RequireFromString("150.00"),
	}
}

func TestCreateValidatesCategoryAndPrice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seller := uuid.New()

	input := validCreateInput()
	input.Category = "weapons"
	_, err := svc.Create(ctx, seller, input)
	assertProductCode(t, err, pkgerrors.CodeValidation)

	input = validCreateInput()
	input.Price = decimal.Zero
	_, err = svc.Create(ctx, seller, input)
	assertProductCode(t, err, pkgerrors.CodeValidation)

	created, err := svc.Create(ctx, seller, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated product id")
	}
	if created.SellerID != seller {
		t.Fatalf("expected seller %s, got %s", seller, created.SellerID)
	}
}

func TestUpdateRejectsForeignProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Renamed"
	_, err = svc.Update(ctx, uuid.New(), created.ID, UpdateProductInput{Name: &name})
	assertProductCode(t, err, pkgerrors.CodeForbidden)

	updated, err := svc.Update(ctx, owner, created.ID, UpdateProductInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("expected renamed product, got %q", updated.Name)
	}
	if !updated.Price.Equal(created.Price) {
		t.Fatal("expected untouched fields to survive a partial update")
	}
}

func TestDeleteRequiresOwnership(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Delete(ctx, uuid.New(), created.ID)
	assertProductCode(t, err, pkgerrors.CodeForbidden)
	if _, ok := repo.rows[created.ID]; !ok {
		t.Fatal("foreign delete must not remove the listing")
	}

	if err := svc.Delete(ctx, owner, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.rows[created.ID]; ok {
		t.Fatal("expected listing removed")
	}
}

func TestGetHidesFlaggedListing(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("get: %v", err)
	}

	if err := svc.Flag(ctx, created.ID, "counterfeit goods"); err != nil {
		t.Fatalf("flag: %v", err)
	}
	_, err = svc.Get(ctx, created.ID)
	assertProductCode(t, err, pkgerrors.CodeNotFound)

	// The listing row itself still exists for the seller and admin views.
	if _, ok := repo.rows[created.ID]; !ok {
		t.Fatal("flagging must not delete the listing")
	}

	if err := svc.Unflag(ctx, created.ID); err != nil {
		t.Fatalf("unflag: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("get after unflag: %v", err)
	}
}

func TestGetUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	assertProductCode(t, err, pkgerrors.CodeNotFound)
}

func TestListRejectsBadCursorAndCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, ListInput{Pagination: pagination.Params{Cursor: "not-base64!"}})
	assertProductCode(t, err, pkgerrors.CodeValidation)

	bad := enums.ProductCategory("weapons")
	_, err = svc.List(ctx, ListInput{Filters: ListFilters{Category: &bad}})
	assertProductCode(t, err, pkgerrors.CodeValidation)
}

func TestRelatedExcludesSelf(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seller := uuid.New()

	mug, err := svc.Create(ctx, seller, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	bowlInput := validCreateInput()
	bowlInput.Name = "Ceramic bowl"
	bowl, err := svc.Create(ctx, seller, bowlInput)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	related, err := svc.Related(ctx, mug.ID)
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if len(related) != 1 || related[0].ID != bowl.ID {
		t.Fatalf("expected only the sibling listing, got %d rows", len(related))
	}
}
