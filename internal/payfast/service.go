package payfast

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localpop/localpop-backend/internal/purchases"
	"github.com/localpop/localpop-backend/pkg/config"
	"github.com/localpop/localpop-backend/pkg/enums"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
	"github.com/localpop/localpop-backend/pkg/logger"
	"github.com/localpop/localpop-backend/pkg/metrics"
)

const replayGuardTTL = 48 * time.Hour

// ReplayGuard pre-filters duplicate notifications by gateway payment id.
// It is an optimization; the purchase state machine stays authoritative
// when Redis is unavailable or the guard is absent. Delete releases a mark
// when processing fails, so the gateway's retry gets a fresh attempt.
type ReplayGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// RedirectField is one hidden input of the auto-submitting form. Order is
// preserved so the rendered form is stable.
type RedirectField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RedirectForm is everything a client needs to send the buyer to the
// gateway: the process URL and the signed form fields.
type RedirectForm struct {
	ProcessURL string          `json:"process_url"`
	Fields     []RedirectField `json:"fields"`
}

// BuildRedirectInput identifies the purchase being paid and the buyer
// asking to pay it.
type BuildRedirectInput struct {
	PurchaseID uuid.UUID
	BuyerID    uuid.UUID
}

// Service bridges purchases and the gateway's redirect/callback protocol.
type Service struct {
	purchases purchases.Service
	codec     *Codec
	cfg       config.PayFastConfig
	guard     ReplayGuard
	metrics   *metrics.PaymentMetrics
	logg      *logger.Logger
}

// ServiceParams carry the adapter dependencies. Guard and Metrics are
// optional.
type ServiceParams struct {
	Purchases purchases.Service
	Codec     *Codec
	Config    config.PayFastConfig
	Guard     ReplayGuard
	Metrics   *metrics.PaymentMetrics
	Logger    *logger.Logger
}

// NewService builds the gateway adapter.
func NewService(params ServiceParams) (*Service, error) {
	if params.Purchases == nil {
		return nil, fmt.Errorf("purchases service required")
	}
	if params.Codec == nil {
		return nil, fmt.Errorf("codec required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		purchases: params.Purchases,
		codec:     params.Codec,
		cfg:       params.Config,
		guard:     params.Guard,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

// BuildRedirect assembles the signed form payload for a Pending purchase.
// The adapter never talks to the gateway itself; the caller renders the
// fields as an auto-submitting form.
func (s *Service) BuildRedirect(ctx context.Context, input BuildRedirectInput) (*RedirectForm, error) {
	if input.PurchaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	purchase, err := s.purchases.FindByID(ctx, input.PurchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.BuyerID != input.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "purchase does not belong to buyer")
	}
	if purchase.Status != enums.PurchaseStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase is not awaiting payment")
	}

	fields := []RedirectField{
		{FieldMerchantID, s.cfg.MerchantID},
		{FieldMerchantKey, s.cfg.MerchantKey},
		{FieldReturnURL, s.cfg.ReturnURL},
		{FieldCancelURL, s.cfg.CancelURL},
		{FieldNotifyURL, s.cfg.NotifyURL},
		{FieldAmount, purchase.Amount.StringFixed(2)},
		{FieldItemName, purchase.ItemName},
		{FieldEmailAddress, purchase.BuyerEmail},
		{FieldMPaymentID, purchase.PaymentToken},
	}

	payload := make(Payload, len(fields))
	for _, field := range fields {
		payload[field.Name] = field.Value
	}
	fields = append(fields, RedirectField{FieldSignature, s.codec.Sign(payload)})

	return &RedirectForm{
		ProcessURL: s.cfg.ProcessURL,
		Fields:     fields,
	}, nil
}

// HandleNotification consumes one inbound ITN callback. A nil return means
// the notification was acknowledged (including idempotent no-ops); coded
// errors map to the rejection statuses the gateway expects.
func (s *Service) HandleNotification(ctx context.Context, form url.Values) error {
	start := time.Now()

	payload, err := FromForm(form)
	if err != nil {
		s.metrics.IncNotification(metrics.NotificationInvalidSignature)
		return err
	}

	// verification happens before anything else touches the payload
	if !s.codec.Verify(payload) {
		s.metrics.IncNotification(metrics.NotificationInvalidSignature)
		s.logg.Warn(ctx, "payment notification rejected: invalid signature")
		return pkgerrors.New(pkgerrors.CodeSignature, "invalid signature")
	}

	token := payload.CorrelationToken()
	if token == "" {
		s.metrics.IncNotification(metrics.NotificationUnknownToken)
		return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
	}
	ctx = s.logg.WithField(ctx, "payment_token", token)

	pfID := payload[FieldPFPaymentID]
	marked := false
	if pfID != "" && s.guard != nil {
		seen, err := s.guard.CheckAndMark(ctx, pfID)
		if err != nil {
			// guard outage degrades to state-machine idempotency
			s.logg.Warn(s.logg.WithField(ctx, "pf_payment_id", pfID), "replay guard unavailable")
		} else if seen {
			s.metrics.IncNotification(metrics.NotificationDuplicate)
			s.logg.Info(ctx, "duplicate payment notification acknowledged")
			return nil
		} else {
			marked = true
		}
	}
	// a mark placed by this delivery must not survive a failed attempt:
	// the gateway retries error responses, and the retry has to reach the
	// state machine instead of short-circuiting as a duplicate
	releaseMark := func() {
		if !marked {
			return
		}
		if err := s.guard.Delete(ctx, pfID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "pf_payment_id", pfID), "replay mark release failed")
		}
	}

	purchase, err := s.purchases.FindByPaymentToken(ctx, token)
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeNotFound {
			s.metrics.IncNotification(metrics.NotificationUnknownToken)
			s.logg.Warn(ctx, "payment notification for unknown token")
		} else {
			s.metrics.IncNotification(metrics.NotificationError)
		}
		releaseMark()
		return err
	}
	ctx = s.logg.WithPurchaseID(ctx, purchase.ID.String())

	// the gateway echoes the amount; a signed notification carrying a
	// different figure than the purchase snapshot never reaches the
	// state machine
	if raw := payload[FieldAmount]; raw != "" {
		notified, perr := decimal.NewFromString(raw)
		if perr != nil || !notified.Equal(purchase.Amount) {
			s.metrics.IncNotification(metrics.NotificationAmountMismatch)
			s.logg.Warn(s.logg.WithField(ctx, "notified_amount", raw), "payment notification rejected: amount mismatch")
			releaseMark()
			return pkgerrors.New(pkgerrors.CodeValidation, "amount mismatch")
		}
	}

	outcome := enums.PaymentOutcome(payload[FieldPaymentStatus])
	switch {
	case outcome == enums.PaymentOutcomeComplete:
		err = s.applyPaid(ctx, purchase.ID)
	case outcome.IsNegative():
		err = s.applyCancelled(ctx, purchase.ID)
	default:
		// unknown or future statuses are acknowledged without mutation
		s.logg.Info(s.logg.WithField(ctx, "payment_status", string(outcome)), "payment notification ignored")
	}
	if err != nil {
		releaseMark()
		return err
	}

	s.metrics.ObserveHandling(time.Since(start))
	return nil
}

func (s *Service) applyPaid(ctx context.Context, purchaseID uuid.UUID) error {
	transitioned, err := s.purchases.MarkPaid(ctx, purchaseID)
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeStateConflict {
			// gateway anomaly or forged replay; acknowledge so the
			// gateway stops retrying, but make it visible
			s.metrics.IncNotification(metrics.NotificationConflict)
			s.logg.Error(ctx, "COMPLETE notification for a cancelled purchase", err)
			return nil
		}
		s.metrics.IncNotification(metrics.NotificationError)
		return err
	}
	if transitioned {
		s.metrics.IncNotification(metrics.NotificationAccepted)
		s.logg.Info(ctx, "purchase marked paid")
	} else {
		s.metrics.IncNotification(metrics.NotificationDuplicate)
		s.logg.Info(ctx, "duplicate COMPLETE notification acknowledged")
	}
	return nil
}

func (s *Service) applyCancelled(ctx context.Context, purchaseID uuid.UUID) error {
	transitioned, err := s.purchases.MarkCancelled(ctx, purchaseID)
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeStateConflict {
			s.metrics.IncNotification(metrics.NotificationConflict)
			s.logg.Error(ctx, "negative notification for a paid purchase", err)
			return nil
		}
		s.metrics.IncNotification(metrics.NotificationError)
		return err
	}
	if transitioned {
		s.metrics.IncNotification(metrics.NotificationAccepted)
		s.logg.Info(ctx, "purchase marked cancelled")
	} else {
		s.metrics.IncNotification(metrics.NotificationDuplicate)
	}
	return nil
}

// NewReplayGuardTTL exposes the guard TTL so wiring code configures the
// Redis keys consistently.
func NewReplayGuardTTL() time.Duration {
	return replayGuardTTL
}
