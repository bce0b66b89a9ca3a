package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/localpop/localpop-backend/internal/payfast"
	pkgerrors "github.com/localpop/localpop-backend/pkg/errors"
)

type stubGateway struct {
	notifyErr error
	forms     []url.Values
}

func (s *stubGateway) BuildRedirect(_ context.Context, _ payfast.BuildRedirectInput) (*payfast.RedirectForm, error) {
	return &payfast.RedirectForm{}, nil
}

func (s *stubGateway) HandleNotification(_ context.Context, form url.Values) error {
	s.forms = append(s.forms, form)
	return s.notifyErr
}

func postNotify(t *testing.T, gateway PaymentGateway, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	PaymentsNotify(gateway, nil)(rec, req)
	return rec
}

func TestPaymentsNotifyAcksWithPlainOK(t *testing.T) {
	gateway := &stubGateway{}
	rec := postNotify(t, gateway, "m_payment_id=tok&payment_status=COMPLETE&signature=abc")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "OK" {
		t.Fatalf("expected bare OK body, got %q", body)
	}
	if len(gateway.forms) != 1 {
		t.Fatalf("expected 1 forwarded form, got %d", len(gateway.forms))
	}
	if got := gateway.forms[0].Get("payment_status"); got != "COMPLETE" {
		t.Fatalf("form not forwarded, payment_status=%q", got)
	}
}

func TestPaymentsNotifyMapsSignatureFailureTo400(t *testing.T) {
	gateway := &stubGateway{notifyErr: pkgerrors.New(pkgerrors.CodeSignature, "signature mismatch")}
	rec := postNotify(t, gateway, "m_payment_id=tok&signature=bad")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPaymentsNotifyMapsUnknownTokenTo404(t *testing.T) {
	gateway := &stubGateway{notifyErr: pkgerrors.New(pkgerrors.CodeNotFound, "unknown payment token")}
	rec := postNotify(t, gateway, "m_payment_id=missing&signature=abc")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPaymentsNotifyMapsInternalTo500(t *testing.T) {
	gateway := &stubGateway{notifyErr: pkgerrors.New(pkgerrors.CodeInternal, "db down")}
	rec := postNotify(t, gateway, "m_payment_id=tok&signature=abc")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
