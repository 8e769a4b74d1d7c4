package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civicworks/parkledger/internal/config"
	ledgerdomain "github.com/civicworks/parkledger/internal/ledger/domain"
	paymentdomain "github.com/civicworks/parkledger/internal/payment/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubLedgerSvc struct {
	entry ledgerdomain.IncomeEntry
	err   error
}

func (s *stubLedgerSvc) ProcessPayment(ctx context.Context, paymentID int64) (ledgerdomain.IncomeEntry, error) {
	return s.entry, s.err
}

func (s *stubLedgerSvc) UpdateIncomeForPayment(ctx context.Context, paymentID int64) (ledgerdomain.IncomeEntry, error) {
	return s.entry, s.err
}

func (s *stubLedgerSvc) RemoveIncomeForPayment(ctx context.Context, paymentID int64) ([]ledgerdomain.IncomeEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []ledgerdomain.IncomeEntry{s.entry}, nil
}

func (s *stubLedgerSvc) SyncExistingPayments(ctx context.Context) (ledgerdomain.SyncReport, error) {
	return ledgerdomain.SyncReport{Scanned: 3, Created: 2, Failures: []ledgerdomain.SyncFailure{{PaymentID: 9, Error: "boom"}}}, s.err
}

func newTestRouter(svc ledgerdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{AppName: "parkledger", AppVersion: "test"}
	engine := NewEngine(cfg)
	srv := NewServer(ServerParams{Cfg: cfg, Log: zap.NewNop(), LedgerSvc: svc})
	srv.RegisterRoutes(engine)
	return engine
}

func TestProcessPaymentRoute(t *testing.T) {
	router := newTestRouter(&stubLedgerSvc{entry: ledgerdomain.IncomeEntry{ReferenceNumber: "CONC-42-20250301"}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/v1/payments/42/ledger", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data ledgerdomain.IncomeEntry `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.ReferenceNumber != "CONC-42-20250301" {
		t.Fatalf("unexpected reference %s", body.Data.ReferenceNumber)
	}
}

func TestProcessPaymentRouteNotFound(t *testing.T) {
	router := newTestRouter(&stubLedgerSvc{err: paymentdomain.ErrPaymentNotFound})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/v1/payments/404/ledger", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProcessPaymentRouteRejectsBadID(t *testing.T) {
	router := newTestRouter(&stubLedgerSvc{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/v1/payments/abc/ledger", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSyncRouteReturnsReport(t *testing.T) {
	router := newTestRouter(&stubLedgerSvc{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/v1/ledger/sync", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Data ledgerdomain.SyncReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.Scanned != 3 || body.Data.Created != 2 || len(body.Data.Failures) != 1 {
		t.Fatalf("unexpected report %+v", body.Data)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubLedgerSvc{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
