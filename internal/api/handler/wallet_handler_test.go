package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/optixtrade/trading-platform/internal/api/metrics"
	"github.com/optixtrade/trading-platform/internal/core/domain"
)

type stubWalletService struct {
	withdrawErr error
}

func (s *stubWalletService) Balances(context.Context, string) ([]domain.Wallet, error) {
	return nil, nil
}

func (s *stubWalletService) Deposit(_ context.Context, _, _ string, cents int64, _ string) (int64, error) {
	return cents, nil
}

func (s *stubWalletService) Withdraw(_ context.Context, _, _ string, cents int64, _ string) (int64, error) {
	if s.withdrawErr != nil {
		return 0, s.withdrawErr
	}
	return cents, nil
}

func (s *stubWalletService) Transactions(context.Context, string, string) ([]domain.Transaction, error) {
	return nil, nil
}

func doWithdraw(t *testing.T, h *WalletHandler, body string) error {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(http.MethodPost, "/wallets/withdraw", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	c.Set("role", string(domain.RoleTrader))
	return h.Withdraw(c)
}

func TestWalletHandler_Withdraw_CountsInsufficientFundsRejection(t *testing.T) {
	h := NewWalletHandler(&stubWalletService{withdrawErr: domain.ErrInsufficientFunds})

	counter := metrics.LedgerRejectionsTotal.WithLabelValues("insufficient_funds")
	before := testutil.ToFloat64(counter)

	err := doWithdraw(t, h, `{"asset":"USD","amount":"50.00"}`)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected 1 insufficient_funds rejection recorded, got %v", got)
	}
}

func TestWalletHandler_Withdraw_CountsInvalidAmountRejection(t *testing.T) {
	h := NewWalletHandler(&stubWalletService{withdrawErr: domain.ErrInvalidAmount})

	counter := metrics.LedgerRejectionsTotal.WithLabelValues("invalid_amount")
	before := testutil.ToFloat64(counter)

	err := doWithdraw(t, h, `{"asset":"USD","amount":"-5.00"}`)
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected 1 invalid_amount rejection recorded, got %v", got)
	}
}
