package purchase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel"

	appcredit "aisle-server/internal/application/credit"
	"aisle-server/internal/domain/purchase"
	otelinfra "aisle-server/internal/infrastructure/observability/otel"
)

// MockPurchaseRepository PurchaseRepositoryのモック
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Save(ctx context.Context, p *purchase.Purchase) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPurchaseRepository) FindByPurchaseID(ctx context.Context, purchaseID string) (*purchase.Purchase, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) Update(ctx context.Context, p *purchase.Purchase) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockCreditAdder CreditAdderのモック
type MockCreditAdder struct {
	mock.Mock
}

func (m *MockCreditAdder) Add(ctx context.Context, req *appcredit.AddRequest) (*appcredit.AddResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcredit.AddResponse), args.Error(1)
}

func newTestService(purchaseRepo *MockPurchaseRepository, creditSvc *MockCreditAdder) *PurchaseApplicationService {
	metrics, err := otelinfra.NewMetrics("test")
	if err != nil {
		panic(err)
	}
	return NewPurchaseApplicationService(purchaseRepo, creditSvc, otelinfra.NewLogger(otel.Tracer("test")), metrics)
}

func TestPurchaseApplicationService_ProcessPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 購入が処理されボーナスが付与される", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRepository)
		creditSvc := new(MockCreditAdder)
		svc := newTestService(purchaseRepo, creditSvc)

		purchaseRepo.On("FindByPurchaseID", mock.Anything, "pay_abc123").Return(nil, purchase.ErrPurchaseNotFound)
		purchaseRepo.On("Save", mock.Anything, mock.AnythingOfType("*purchase.Purchase")).Return(nil)
		creditSvc.On("Add", mock.Anything, mock.MatchedBy(func(req *appcredit.AddRequest) bool {
			return req.UserID == "user123" && req.Amount == 100 && req.Type == "purchased" &&
				req.Metadata["purchase_id"] == "pay_abc123"
		})).Return(&appcredit.AddResponse{TransactionID: "txn_1", Added: 100, BalanceAfter: 115}, nil)
		purchaseRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *purchase.Purchase) bool {
			return p.IsCompleted() && p.TransactionID() == "txn_1"
		})).Return(nil)

		resp, err := svc.ProcessPurchase(ctx, &ProcessPurchaseRequest{
			PurchaseID: "pay_abc123",
			UserID:     "user123",
			UserType:   "couple",
			Tier:       "free",
			Credits:    100,
			Amount:     999,
			Currency:   "USD",
		})

		assert.NoError(t, err)
		assert.Equal(t, "completed", resp.Status)
		assert.Equal(t, "txn_1", resp.TransactionID)
		assert.Equal(t, int64(100), resp.CreditsAdded)
		assert.Equal(t, int64(115), resp.BalanceAfter)
		purchaseRepo.AssertExpectations(t)
		creditSvc.AssertExpectations(t)
	})

	t.Run("正常系: 処理済みの購入は既存の結果を返す（冪等）", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRepository)
		creditSvc := new(MockCreditAdder)
		svc := newTestService(purchaseRepo, creditSvc)

		existing := purchase.MustNewPurchase("pay_abc123", "user123", 100, 999, "USD")
		existing.Complete("txn_1")
		purchaseRepo.On("FindByPurchaseID", mock.Anything, "pay_abc123").Return(existing, nil)

		resp, err := svc.ProcessPurchase(ctx, &ProcessPurchaseRequest{
			PurchaseID: "pay_abc123",
			UserID:     "user123",
			UserType:   "couple",
			Tier:       "free",
			Credits:    100,
			Amount:     999,
			Currency:   "USD",
		})

		assert.NoError(t, err)
		assert.Equal(t, "completed", resp.Status)
		assert.Equal(t, "txn_1", resp.TransactionID)
		creditSvc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
		purchaseRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("正常系: pendingの購入は再実行できる", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRepository)
		creditSvc := new(MockCreditAdder)
		svc := newTestService(purchaseRepo, creditSvc)

		existing := purchase.MustNewPurchase("pay_abc123", "user123", 100, 999, "USD")
		purchaseRepo.On("FindByPurchaseID", mock.Anything, "pay_abc123").Return(existing, nil)
		creditSvc.On("Add", mock.Anything, mock.AnythingOfType("*credit.AddRequest")).
			Return(&appcredit.AddResponse{TransactionID: "txn_2", Added: 100, BalanceAfter: 115}, nil)
		purchaseRepo.On("Update", mock.Anything, mock.AnythingOfType("*purchase.Purchase")).Return(nil)

		resp, err := svc.ProcessPurchase(ctx, &ProcessPurchaseRequest{
			PurchaseID: "pay_abc123",
			UserID:     "user123",
			UserType:   "couple",
			Tier:       "free",
			Credits:    100,
			Amount:     999,
			Currency:   "USD",
		})

		assert.NoError(t, err)
		assert.Equal(t, "txn_2", resp.TransactionID)
		purchaseRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("異常系: 付与に失敗した場合は購入が失敗状態になる", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRepository)
		creditSvc := new(MockCreditAdder)
		svc := newTestService(purchaseRepo, creditSvc)

		purchaseRepo.On("FindByPurchaseID", mock.Anything, "pay_abc123").Return(nil, purchase.ErrPurchaseNotFound)
		purchaseRepo.On("Save", mock.Anything, mock.AnythingOfType("*purchase.Purchase")).Return(nil)
		creditSvc.On("Add", mock.Anything, mock.AnythingOfType("*credit.AddRequest")).Return(nil, assert.AnError)
		purchaseRepo.On("Update", mock.Anything, mock.MatchedBy(func(p *purchase.Purchase) bool {
			return p.Status() == purchase.PurchaseStatusFailed
		})).Return(nil)

		_, err := svc.ProcessPurchase(ctx, &ProcessPurchaseRequest{
			PurchaseID: "pay_abc123",
			UserID:     "user123",
			UserType:   "couple",
			Tier:       "free",
			Credits:    100,
			Amount:     999,
			Currency:   "USD",
		})

		assert.Error(t, err)
		purchaseRepo.AssertExpectations(t)
	})

	t.Run("異常系: クレジット数が不正", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRepository)
		creditSvc := new(MockCreditAdder)
		svc := newTestService(purchaseRepo, creditSvc)

		_, err := svc.ProcessPurchase(ctx, &ProcessPurchaseRequest{
			PurchaseID: "pay_abc123",
			UserID:     "user123",
			Credits:    0,
		})

		assert.Error(t, err)
		purchaseRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
