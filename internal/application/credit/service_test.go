package credit

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel"

	"aisle-server/internal/domain/credit"
	"aisle-server/internal/domain/service"
	"aisle-server/internal/domain/transaction"
	"aisle-server/internal/infrastructure/cache"
	"aisle-server/internal/infrastructure/config"
	otelinfra "aisle-server/internal/infrastructure/observability/otel"
)

// MockLedgerRepository LedgerRepositoryのモック
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindByUserID(ctx context.Context, userID string) (*credit.Ledger, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credit.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) Save(ctx context.Context, ledger *credit.Ledger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockLedgerRepository) Create(ctx context.Context, ledger *credit.Ledger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

// MockTransactionRepository TransactionRepositoryのモック
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Save(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByUserID(ctx context.Context, userID string, filter transaction.Filter, limit, offset int) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, userID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

// MockTransactionManager TransactionManagerのモック（関数をそのまま実行する）
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	m.Called(ctx)
	return fn(nil)
}

func newTestService(ledgerRepo *MockLedgerRepository, txRepo *MockTransactionRepository, txManager *MockTransactionManager) *CreditApplicationService {
	metrics, err := otelinfra.NewMetrics("test")
	if err != nil {
		panic(err)
	}
	return NewCreditApplicationService(
		ledgerRepo,
		txRepo,
		txManager,
		service.NewCreditService(ledgerRepo),
		cache.NewLedgerCache(&config.CacheConfig{Enabled: false, TTL: time.Minute, CleanupInterval: time.Minute}),
		otelinfra.NewLogger(otel.Tracer("test")),
		metrics,
	)
}

func TestCreditApplicationService_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 台帳が存在しない場合は作成される", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(nil, credit.ErrLedgerNotFound)
		ledgerRepo.On("Create", mock.Anything, mock.AnythingOfType("*credit.Ledger")).Return(nil)

		resp, err := svc.Initialize(ctx, &InitializeRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "free",
		})

		assert.NoError(t, err)
		assert.Equal(t, "user123", resp.UserID)
		assert.Equal(t, "couple", resp.UserType)
		assert.Equal(t, "free", resp.Tier)
		assert.Equal(t, int64(15), resp.Allotment)
		assert.Equal(t, int64(0), resp.Bonus)
		assert.Equal(t, int64(15), resp.Total)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("正常系: 既に存在する場合は何もしない", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		existing := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierPremium, 100, 20, 50, time.Now(), 3)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(existing, nil)

		resp, err := svc.Initialize(ctx, &InitializeRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "premium",
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(120), resp.Total)
		ledgerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("異常系: 無効な利用者タイプ", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(nil, credit.ErrLedgerNotFound)

		_, err := svc.Initialize(ctx, &InitializeRequest{
			UserID:   "user123",
			UserType: "vendor",
			Tier:     "free",
		})

		assert.ErrorIs(t, err, credit.ErrInvalidUserType)
	})
}

func TestCreditApplicationService_GetCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 残高と利用可能機能を返す", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierFree, 10, 5, 3, time.Now(), 2)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)

		resp, err := svc.GetCredits(ctx, &GetCreditsRequest{UserID: "user123", UserType: "couple", Tier: "free"})

		assert.NoError(t, err)
		assert.Equal(t, int64(10), resp.Allotment)
		assert.Equal(t, int64(5), resp.Bonus)
		assert.Equal(t, int64(15), resp.Total)
		assert.Equal(t, int64(3), resp.TotalUsed)
		assert.NotEmpty(t, resp.Features)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("正常系: リフレッシュ期限到来でallotmentがリセットされる", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		// coupleのfreeは日次リフレッシュ
		stale := time.Now().Add(-25 * time.Hour)
		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierFree, 2, 5, 13, stale, 4)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)
		ledgerRepo.On("Save", mock.Anything, ledger).Return(nil)

		resp, err := svc.GetCredits(ctx, &GetCreditsRequest{UserID: "user123", UserType: "couple", Tier: "free"})

		assert.NoError(t, err)
		assert.Equal(t, int64(15), resp.Allotment)
		assert.Equal(t, int64(5), resp.Bonus)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("正常系: 台帳が存在しない場合は自動で初期化される", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledgerRepo.On("FindByUserID", mock.Anything, "planner1").Return(nil, credit.ErrLedgerNotFound)
		ledgerRepo.On("Create", mock.Anything, mock.AnythingOfType("*credit.Ledger")).Return(nil)

		resp, err := svc.GetCredits(ctx, &GetCreditsRequest{UserID: "planner1", UserType: "planner", Tier: "starter"})

		assert.NoError(t, err)
		assert.Equal(t, int64(200), resp.Allotment)
		ledgerRepo.AssertExpectations(t)
	})
}

func TestCreditApplicationService_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 利用可能かつ残高十分", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierPremium, 10, 0, 0, time.Now(), 1)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)

		resp, err := svc.Validate(ctx, &ValidateRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "premium",
			Feature:  "vendor_suggestions",
		})

		assert.NoError(t, err)
		assert.True(t, resp.Allowed)
		assert.True(t, resp.Sufficient)
		assert.Equal(t, int64(2), resp.RequiredCredits)
		assert.Equal(t, int64(10), resp.CurrentCredits)
		assert.Equal(t, int64(8), resp.RemainingCredits)
	})

	t.Run("正常系: 残高不足", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierPremium, 1, 0, 149, time.Now(), 5)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)

		resp, err := svc.Validate(ctx, &ValidateRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "premium",
			Feature:  "budget_insights",
		})

		assert.NoError(t, err)
		assert.True(t, resp.Allowed)
		assert.False(t, resp.Sufficient)
		assert.Equal(t, int64(2), resp.RequiredCredits)
		assert.Equal(t, int64(1), resp.CurrentCredits)
		// remainingは負にならない
		assert.Equal(t, int64(0), resp.RemainingCredits)
	})

	t.Run("正常系: 残高ゼロでもremainingは0", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierFree, 0, 0, 15, time.Now(), 3)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)

		resp, err := svc.Validate(ctx, &ValidateRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "free",
			Feature:  "draft_messaging",
		})

		assert.NoError(t, err)
		assert.True(t, resp.Allowed)
		assert.False(t, resp.Sufficient)
		assert.Equal(t, int64(1), resp.RequiredCredits)
		assert.Equal(t, int64(0), resp.CurrentCredits)
		assert.Equal(t, int64(0), resp.RemainingCredits)
	})

	t.Run("正常系: ティア外機能はAllowed=false", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		// coupleにclient_reportはどのティアでも提供されない
		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierTop, 500, 0, 0, time.Now(), 1)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)

		resp, err := svc.Validate(ctx, &ValidateRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "top",
			Feature:  "client_report",
		})

		assert.NoError(t, err)
		assert.False(t, resp.Allowed)
		assert.False(t, resp.Sufficient)
	})

	t.Run("異常系: 未知の機能", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		_, err := svc.Validate(ctx, &ValidateRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "free",
			Feature:  "teleportation",
		})

		assert.Error(t, err)
	})
}

func TestCreditApplicationService_Deduct(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: allotmentから消費される", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierPremium, 10, 5, 0, time.Now(), 1)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)
		ledgerRepo.On("Save", mock.Anything, ledger).Return(nil)
		txRepo.On("Save", mock.Anything, mock.AnythingOfType("*transaction.Transaction")).Return(nil)
		txManager.On("WithTransaction", mock.Anything).Return(nil)

		resp, err := svc.Deduct(ctx, &DeductRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "premium",
			Feature:  "vendor_suggestions",
		})

		assert.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.TransactionID)
		assert.Equal(t, int64(2), resp.Deducted)
		assert.Equal(t, int64(2), resp.FromAllotment)
		assert.Equal(t, int64(0), resp.FromBonus)
		assert.Equal(t, int64(13), resp.BalanceAfter)
		ledgerRepo.AssertExpectations(t)
		txRepo.AssertExpectations(t)
	})

	t.Run("正常系: allotment不足分はbonusから消費される", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierTop, 3, 10, 12, time.Now(), 6)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)
		ledgerRepo.On("Save", mock.Anything, ledger).Return(nil)
		txRepo.On("Save", mock.Anything, mock.MatchedBy(func(txn *transaction.Transaction) bool {
			return txn.FromAllotment() == 3 && txn.FromBonus() == 2 && txn.BalanceAfter() == 8
		})).Return(nil)
		txManager.On("WithTransaction", mock.Anything).Return(nil)

		resp, err := svc.Deduct(ctx, &DeductRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "top",
			Feature:  "seating_planner",
		})

		assert.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(3), resp.FromAllotment)
		assert.Equal(t, int64(2), resp.FromBonus)
		assert.Equal(t, int64(8), resp.BalanceAfter)
		txRepo.AssertExpectations(t)
	})

	t.Run("正常系: 残高不足はSuccess=falseで返る", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierPremium, 1, 0, 149, time.Now(), 5)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)
		txManager.On("WithTransaction", mock.Anything).Return(nil)

		resp, err := svc.Deduct(ctx, &DeductRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "premium",
			Feature:  "budget_insights",
		})

		assert.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, int64(2), resp.Required)
		assert.Equal(t, int64(1), resp.Current)
		// 残高は変更されず、保存も履歴記録も行われない
		assert.Equal(t, int64(1), ledger.Available())
		ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		txRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("異常系: ティア外機能はエラー", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierFree, 10, 0, 0, time.Now(), 1)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)
		txManager.On("WithTransaction", mock.Anything).Return(nil)

		_, err := svc.Deduct(ctx, &DeductRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "free",
			Feature:  "client_report",
		})

		assert.ErrorIs(t, err, credit.ErrFeatureNotAvailable)
		ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("正常系: 楽観的ロック失敗時はリトライされる", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		first := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierFree, 10, 0, 0, time.Now(), 1)
		second := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierFree, 8, 0, 2, time.Now(), 2)
		lockErr := errors.New("optimistic lock failed: version mismatch or ledger not found")

		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(first, nil).Once()
		ledgerRepo.On("Save", mock.Anything, first).Return(lockErr).Once()
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(second, nil).Once()
		ledgerRepo.On("Save", mock.Anything, second).Return(nil).Once()
		txRepo.On("Save", mock.Anything, mock.AnythingOfType("*transaction.Transaction")).Return(nil)
		txManager.On("WithTransaction", mock.Anything).Return(nil)

		resp, err := svc.Deduct(ctx, &DeductRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "free",
			Feature:  "todo_generation",
		})

		assert.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(7), resp.BalanceAfter)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("異常系: リトライ上限超過でエラー", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		lockErr := errors.New("optimistic lock failed: version mismatch or ledger not found")
		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierFree, 10, 0, 0, time.Now(), 1)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)
		ledgerRepo.On("Save", mock.Anything, mock.AnythingOfType("*credit.Ledger")).Return(lockErr)
		txManager.On("WithTransaction", mock.Anything).Return(nil)

		_, err := svc.Deduct(ctx, &DeductRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "free",
			Feature:  "todo_generation",
		})

		assert.Error(t, err)
		txRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCreditApplicationService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: ボーナスバケットに追加される", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierFree, 10, 5, 0, time.Now(), 1)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)
		ledgerRepo.On("Save", mock.Anything, ledger).Return(nil)
		txRepo.On("Save", mock.Anything, mock.MatchedBy(func(txn *transaction.Transaction) bool {
			return txn.TransactionType() == transaction.TransactionTypePurchased && txn.Amount() == 50
		})).Return(nil)
		txManager.On("WithTransaction", mock.Anything).Return(nil)

		resp, err := svc.Add(ctx, &AddRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "free",
			Amount:   50,
			Type:     "purchased",
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(50), resp.Added)
		assert.Equal(t, int64(65), resp.BalanceAfter)
		assert.Equal(t, int64(10), ledger.Allotment())
		assert.Equal(t, int64(55), ledger.Bonus())
		ledgerRepo.AssertExpectations(t)
		txRepo.AssertExpectations(t)
	})

	t.Run("異常系: spentタイプでは追加できない", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		_, err := svc.Add(ctx, &AddRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "free",
			Amount:   50,
			Type:     "spent",
		})

		assert.Error(t, err)
		ledgerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("異常系: 無効な追加量", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierFree, 10, 5, 0, time.Now(), 1)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)
		txManager.On("WithTransaction", mock.Anything).Return(nil)

		_, err := svc.Add(ctx, &AddRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "free",
			Amount:   0,
			Type:     "bonus",
		})

		assert.ErrorIs(t, err, credit.ErrInvalidAmount)
	})
}

func TestCreditApplicationService_HasFeatureAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 利用可能な機能はコスト付きで返る", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("user123", credit.UserTypeCouple, credit.TierPremium, 10, 0, 0, time.Now(), 1)
		ledgerRepo.On("FindByUserID", mock.Anything, "user123").Return(ledger, nil)

		resp, err := svc.HasFeatureAccess(ctx, &FeatureAccessRequest{
			UserID:   "user123",
			UserType: "couple",
			Tier:     "premium",
			Feature:  "budget_insights",
		})

		assert.NoError(t, err)
		assert.True(t, resp.Allowed)
		assert.Equal(t, int64(2), resp.Cost)
	})

	t.Run("正常系: ティア外機能はAllowed=false", func(t *testing.T) {
		ledgerRepo := new(MockLedgerRepository)
		txRepo := new(MockTransactionRepository)
		txManager := new(MockTransactionManager)
		svc := newTestService(ledgerRepo, txRepo, txManager)

		ledger := credit.MustNewLedger("planner1", credit.UserTypePlanner, credit.TierStarter, 200, 0, 0, time.Now(), 1)
		ledgerRepo.On("FindByUserID", mock.Anything, "planner1").Return(ledger, nil)

		resp, err := svc.HasFeatureAccess(ctx, &FeatureAccessRequest{
			UserID:   "planner1",
			UserType: "planner",
			Tier:     "starter",
			Feature:  "seating_planner",
		})

		assert.NoError(t, err)
		assert.False(t, resp.Allowed)
		assert.Equal(t, int64(0), resp.Cost)
	})
}
