package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/localpop/localpop-backend/internal/mail"
	"github.com/localpop/localpop-backend/pkg/db/models"
	"github.com/localpop/localpop-backend/pkg/enums"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service owns the purchase lifecycle. MarkPaid and MarkCancelled are the
// only mutations after creation; both are idempotent under duplicate
// delivery and reject conflicting terminal states.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Purchase, error)
	MarkPaid(ctx context.Context, purchaseID uuid.UUID) (bool, error)
	MarkCancelled(ctx context.Context, purchaseID uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	FindByPaymentToken(ctx context.Context, token string) (*models.Purchase, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Purchase, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]models.Purchase, error)
}

// CreateInput captures a buyer initiating checkout for one product.
type CreateInput struct {
	ProductID uuid.UUID
	BuyerID   uuid.UUID
}

type service struct {
	repo     Repository
	mailRepo mail.Repository
	products productFinder
	users    userFinder
	tx       txRunner
}

// ServiceParams carry the service dependencies.
type ServiceParams struct {
	Repo              Repository
	MailRepo          mail.Repository
	Products          productFinder
	Users             userFinder
	TransactionRunner txRunner
}

// NewService builds a purchases service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if params.MailRepo == nil {
		return nil, fmt.Errorf("mail repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     params.Repo,
		mailRepo: params.MailRepo,
		products: params.Products,
		users:    params.Users,
		tx:       params.TransactionRunner,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Purchase, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Flagged {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is not available for purchase")
	}
	if product.SellerID == input.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot purchase your own product")
	}

	buyer, err := s.users.FindByID(ctx, input.BuyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
	}

	token, err := newPaymentToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate payment token")
	}

	// ItemName and Amount are snapshots; later product edits must not
	// change what the buyer agreed to pay.
	purchase := &models.Purchase{
		ID:           uuid.New(),
		ProductID:    &product.ID,
		BuyerID:      buyer.ID,
		SellerID:     product.SellerID,
		ItemName:     product.Name,
		BuyerEmail:   buyer.Email,
		Amount:       product.Price,
		Status:       enums.PurchaseStatusPending,
		PaymentToken: token,
	}
	if err := s.repo.Create(ctx, purchase); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase")
	}
	return purchase, nil
}

// MarkPaid applies Pending -> Paid. The returned bool reports whether this
// call performed the transition; a duplicate callback on an already Paid
// purchase returns (false, nil). The buyer confirmation and the seller sale
// notice are enqueued in the same transaction as the status flip so all
// three commit or fail together.
func (s *service) MarkPaid(ctx context.Context, purchaseID uuid.UUID) (bool, error) {
	if purchaseID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}

	transitioned := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		purchase, err := repo.FindByID(ctx, purchaseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
		}

		switch purchase.Status {
		case enums.PurchaseStatusPaid:
			return nil
		case enums.PurchaseStatusCancelled:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase already cancelled")
		}

		changed, err := repo.MarkPaid(ctx, purchaseID, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark purchase paid")
		}
		if !changed {
			// lost the race to a concurrent callback; re-read for the verdict
			current, err := repo.FindByID(ctx, purchaseID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase")
			}
			if current.Status == enums.PurchaseStatusPaid {
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase already cancelled")
		}

		transitioned = true
		mailRepo := s.mailRepo.WithTx(tx)
		if _, err := mailRepo.Enqueue(ctx, confirmationMessage(purchase)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enqueue confirmation email")
		}
		seller, err := s.users.FindByID(ctx, purchase.SellerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
		}
		if _, err := mailRepo.Enqueue(ctx, saleNoticeMessage(purchase, seller.Email)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "enqueue sale notice")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return transitioned, nil
}

// MarkCancelled applies Pending -> Cancelled. Idempotent when already
// Cancelled, state conflict when already Paid. No email is sent; the buyer
// sees the cancel redirect.
func (s *service) MarkCancelled(ctx context.Context, purchaseID uuid.UUID) (bool, error) {
	if purchaseID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}

	transitioned := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		purchase, err := repo.FindByID(ctx, purchaseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
		}

		switch purchase.Status {
		case enums.PurchaseStatusCancelled:
			return nil
		case enums.PurchaseStatusPaid:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase already paid")
		}

		changed, err := repo.MarkCancelled(ctx, purchaseID, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark purchase cancelled")
		}
		if !changed {
			current, err := repo.FindByID(ctx, purchaseID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase")
			}
			if current.Status == enums.PurchaseStatusCancelled {
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase already paid")
		}

		transitioned = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return transitioned, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}
	return purchase, nil
}

func (s *service) FindByPaymentToken(ctx context.Context, token string) (*models.Purchase, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment token required")
	}
	purchase, err := s.repo.FindByPaymentToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase by token")
	}
	return purchase, nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Purchase, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases for buyer")
	}
	return rows, nil
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]models.Purchase, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases for seller")
	}
	return rows, nil
}

func confirmationMessage(purchase *models.Purchase) mail.Message {
	id := purchase.ID
	return mail.Message{
		PurchaseID: &id,
		To:         purchase.BuyerEmail,
		Subject:    "LocalPop Payment Confirmation",
		HTML:       true,
		Body: fmt.Sprintf(
			"<h2>Thank you for your purchase!</h2>"+
				"<p>Your payment for <strong>%s</strong> has been received.</p>"+
				"<p>Amount: <strong>R%s</strong></p>"+
				"<p>We'll notify the seller and begin processing your order.</p>",
			purchase.ItemName, purchase.Amount.StringFixed(2)),
	}
}

func saleNoticeMessage(purchase *models.Purchase, sellerEmail string) mail.Message {
	id := purchase.ID
	return mail.Message{
		PurchaseID: &id,
		To:         sellerEmail,
		Subject:    "LocalPop Sale Notification",
		HTML:       true,
		Body: fmt.Sprintf(
			"<h2>You made a sale!</h2>"+
				"<p><strong>%s</strong> has been paid for.</p>"+
				"<p>Amount: <strong>R%s</strong></p>"+
				"<p>Please arrange delivery or collection with your buyer.</p>",
			purchase.ItemName, purchase.Amount.StringFixed(2)),
	}
}
