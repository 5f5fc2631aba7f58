package credit

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aisle-server/internal/domain/credit"
	"aisle-server/internal/domain/policy"
	"aisle-server/internal/domain/service"
	"aisle-server/internal/domain/transaction"
	"aisle-server/internal/infrastructure/cache"
	otelinfra "aisle-server/internal/infrastructure/observability/otel"
)

// TransactionManager トランザクション管理インターフェース
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error
}

// CreditApplicationService クレジットアプリケーションサービス
//
// 台帳は最初のアクセス時に遅延作成され、リフレッシュ期限の判定も
// アクセス時に行う（バックグラウンドジョブは持たない）。
type CreditApplicationService struct {
	ledgerRepo    credit.LedgerRepository
	txRepo        transaction.TransactionRepository
	txManager     TransactionManager
	creditService *service.CreditService
	ledgerCache   *cache.LedgerCache
	logger        *otelinfra.Logger
	metrics       *otelinfra.Metrics
	tracer        trace.Tracer
	maxRetries    int
}

// NewCreditApplicationService 新しいCreditApplicationServiceを作成
func NewCreditApplicationService(
	ledgerRepo credit.LedgerRepository,
	txRepo transaction.TransactionRepository,
	txManager TransactionManager,
	creditService *service.CreditService,
	ledgerCache *cache.LedgerCache,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *CreditApplicationService {
	return &CreditApplicationService{
		ledgerRepo:    ledgerRepo,
		txRepo:        txRepo,
		txManager:     txManager,
		creditService: creditService,
		ledgerCache:   ledgerCache,
		logger:        logger,
		metrics:       metrics,
		tracer:        otel.Tracer("credit-service"),
		maxRetries:    3,
	}
}

// Initialize ユーザーの台帳を初期化
//
// 既に存在する場合は何もしない（冪等）。
func (s *CreditApplicationService) Initialize(ctx context.Context, req *InitializeRequest) (*GetCreditsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CreditApplicationService.Initialize")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("user_type", req.UserType),
		attribute.String("tier", req.Tier),
	)

	s.logger.Info(ctx, "Initializing credit ledger", map[string]interface{}{
		"user_id":   req.UserID,
		"user_type": req.UserType,
		"tier":      req.Tier,
	})

	ledger, err := s.loadOrCreateLedger(ctx, req.UserID, req.UserType, req.Tier)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "initialize_failed")
		return nil, err
	}

	return s.toCreditsResponse(ledger), nil
}

// GetCredits 残高を取得
//
// 台帳が存在しない場合は初期化する。リフレッシュ期限が到来していれば
// 先にallotmentをリセットしてから返す。
func (s *CreditApplicationService) GetCredits(ctx context.Context, req *GetCreditsRequest) (*GetCreditsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CreditApplicationService.GetCredits")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", req.UserID))

	// 読み取りキャッシュ（リフレッシュ期限が到来していない場合のみ有効）
	if ledger, ok := s.ledgerCache.Get(req.UserID); ok {
		if refreshed, err := s.refreshDue(ledger); err == nil && !refreshed {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return s.toCreditsResponse(ledger), nil
		}
		s.ledgerCache.Invalidate(req.UserID)
	}

	ledger, err := s.loadOrCreateLedger(ctx, req.UserID, req.UserType, req.Tier)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "get_credits_failed")
		return nil, err
	}

	s.ledgerCache.Set(req.UserID, ledger)
	s.metrics.RecordCreditBalance(ctx, ledger.UserType().String(), ledger.Tier().String(), ledger.Available())

	return s.toCreditsResponse(ledger), nil
}

// Validate 消費せずに消費可否をチェック
//
// 機能アクセスの判定が残高の判定より先に行われる。
func (s *CreditApplicationService) Validate(ctx context.Context, req *ValidateRequest) (*ValidateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CreditApplicationService.Validate")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("feature", req.Feature),
	)

	feature, err := credit.NewFeature(req.Feature)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	ledger, err := s.loadOrCreateLedger(ctx, req.UserID, req.UserType, req.Tier)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	cost, err := s.creditService.Quote(ledger.UserType(), ledger.Tier(), feature)
	if err == credit.ErrFeatureNotAvailable {
		return &ValidateResponse{
			Allowed:        false,
			CurrentCredits: ledger.Available(),
		}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	available := ledger.Available()
	// 残高不足時もremainingは負にならない（0が下限）
	remaining := available - cost
	if remaining < 0 {
		remaining = 0
	}
	return &ValidateResponse{
		Allowed:          true,
		Sufficient:       available >= cost,
		RequiredCredits:  cost,
		CurrentCredits:   available,
		RemainingCredits: remaining,
	}, nil
}

// Deduct クレジットを消費
//
// ティアで機能が利用できない場合はErrFeatureNotAvailableを返す。
// 残高不足はエラーではなくSuccess=falseのレスポンスで表す
// （ゲートが402の本文を組み立てるための通常の結果）。
func (s *CreditApplicationService) Deduct(ctx context.Context, req *DeductRequest) (*DeductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CreditApplicationService.Deduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("feature", req.Feature),
	)

	s.logger.Info(ctx, "Deducting credits", map[string]interface{}{
		"user_id": req.UserID,
		"feature": req.Feature,
	})

	feature, err := credit.NewFeature(req.Feature)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	transactionID := s.generateTransactionID()

	var result *DeductResponse
	err = s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
		// 楽観的ロックのリトライロジック
		var retryErr error
		for attempt := 0; attempt < s.maxRetries; attempt++ {
			if attempt > 0 {
				// 指数バックオフ
				backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 10 * time.Millisecond
				time.Sleep(backoff)
			}

			ledger, err := s.loadOrCreateLedger(ctx, req.UserID, req.UserType, req.Tier)
			if err != nil {
				return err
			}

			// 機能アクセスの判定は残高の判定より先
			cost, err := s.creditService.Quote(ledger.UserType(), ledger.Tier(), feature)
			if err != nil {
				if err == credit.ErrFeatureNotAvailable {
					s.metrics.RecordFeatureDenied(ctx, ledger.UserType().String(), ledger.Tier().String(), feature.String())
				}
				return err
			}

			breakdown, err := ledger.Deduct(cost)
			if err == credit.ErrInsufficientCredits {
				s.metrics.RecordInsufficientCredits(ctx, ledger.UserType().String(), feature.String())
				result = &DeductResponse{
					Success:  false,
					Required: cost,
					Current:  ledger.Available(),
				}
				return nil
			}
			if err != nil {
				return err
			}

			// 保存（楽観的ロック）
			if err := s.ledgerRepo.Save(ctx, ledger); err != nil {
				if attempt < s.maxRetries-1 {
					retryErr = err
					continue
				}
				return fmt.Errorf("failed to save ledger after retries: %w", err)
			}

			// トランザクション履歴を記録
			txn, err := transaction.NewTransaction(
				transactionID,
				req.UserID,
				transaction.TransactionTypeSpent,
				feature,
				cost,
				breakdown.FromAllotment,
				breakdown.FromBonus,
				ledger.Available(),
				req.Description,
				req.Metadata,
			)
			if err != nil {
				return fmt.Errorf("failed to build transaction: %w", err)
			}
			if err := s.txRepo.Save(ctx, txn); err != nil {
				return fmt.Errorf("failed to save transaction: %w", err)
			}

			s.ledgerCache.Invalidate(req.UserID)
			s.metrics.RecordDeduction(ctx, ledger.UserType().String(), feature.String(), cost)
			s.metrics.RecordCreditBalance(ctx, ledger.UserType().String(), ledger.Tier().String(), ledger.Available())

			result = &DeductResponse{
				Success:       true,
				TransactionID: transactionID,
				Deducted:      cost,
				FromAllotment: breakdown.FromAllotment,
				FromBonus:     breakdown.FromBonus,
				BalanceAfter:  ledger.Available(),
			}

			return nil
		}

		return retryErr
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to deduct credits", err, map[string]interface{}{
			"user_id": req.UserID,
			"feature": req.Feature,
		})
		s.metrics.RecordError(ctx, "deduct_failed")
		return nil, err
	}

	if result.Success {
		s.logger.Info(ctx, "Credits deducted successfully", map[string]interface{}{
			"user_id":        req.UserID,
			"transaction_id": transactionID,
			"balance_after":  result.BalanceAfter,
		})
	} else {
		s.logger.Info(ctx, "Deduction rejected: insufficient credits", map[string]interface{}{
			"user_id":  req.UserID,
			"feature":  req.Feature,
			"required": result.Required,
			"current":  result.Current,
		})
	}

	return result, nil
}

// Add クレジットを追加（ボーナスバケットへ）
//
// 台帳が存在しない場合は初期化してから追加する。
func (s *CreditApplicationService) Add(ctx context.Context, req *AddRequest) (*AddResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CreditApplicationService.Add")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("type", req.Type),
		attribute.Int64("amount", req.Amount),
	)

	s.logger.Info(ctx, "Adding credits", map[string]interface{}{
		"user_id": req.UserID,
		"type":    req.Type,
		"amount":  req.Amount,
	})

	txnType, err := transaction.NewTransactionType(req.Type)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	if txnType.IsSpend() {
		err := transaction.ErrInvalidTransaction
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	transactionID := s.generateTransactionID()

	var result *AddResponse
	err = s.txManager.WithTransaction(ctx, func(tx *sql.Tx) error {
		// 楽観的ロックのリトライロジック
		var retryErr error
		for attempt := 0; attempt < s.maxRetries; attempt++ {
			if attempt > 0 {
				backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 10 * time.Millisecond
				time.Sleep(backoff)
			}

			ledger, err := s.loadOrCreateLedger(ctx, req.UserID, req.UserType, req.Tier)
			if err != nil {
				return err
			}

			if err := ledger.AddBonus(req.Amount); err != nil {
				return err
			}

			// 保存（楽観的ロック）
			if err := s.ledgerRepo.Save(ctx, ledger); err != nil {
				if attempt < s.maxRetries-1 {
					retryErr = err
					continue
				}
				return fmt.Errorf("failed to save ledger after retries: %w", err)
			}

			// トランザクション履歴を記録
			txn, err := transaction.NewTransaction(
				transactionID,
				req.UserID,
				txnType,
				credit.FeatureBonus,
				req.Amount,
				0,
				0,
				ledger.Available(),
				req.Description,
				req.Metadata,
			)
			if err != nil {
				return fmt.Errorf("failed to build transaction: %w", err)
			}
			if err := s.txRepo.Save(ctx, txn); err != nil {
				return fmt.Errorf("failed to save transaction: %w", err)
			}

			s.ledgerCache.Invalidate(req.UserID)
			s.metrics.RecordCreditBalance(ctx, ledger.UserType().String(), ledger.Tier().String(), ledger.Available())

			result = &AddResponse{
				TransactionID: transactionID,
				Added:         req.Amount,
				BalanceAfter:  ledger.Available(),
			}

			return nil
		}

		return retryErr
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to add credits", err, map[string]interface{}{
			"user_id": req.UserID,
			"amount":  req.Amount,
		})
		s.metrics.RecordError(ctx, "add_failed")
		return nil, err
	}

	s.logger.Info(ctx, "Credits added successfully", map[string]interface{}{
		"user_id":        req.UserID,
		"transaction_id": transactionID,
		"balance_after":  result.BalanceAfter,
	})

	return result, nil
}

// HasFeatureAccess 機能がティアで利用できるかをチェック（残高は見ない）
func (s *CreditApplicationService) HasFeatureAccess(ctx context.Context, req *FeatureAccessRequest) (*FeatureAccessResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CreditApplicationService.HasFeatureAccess")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("feature", req.Feature),
	)

	feature, err := credit.NewFeature(req.Feature)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	ledger, err := s.loadOrCreateLedger(ctx, req.UserID, req.UserType, req.Tier)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	allowed := policy.Allows(ledger.UserType(), ledger.Tier(), feature)
	resp := &FeatureAccessResponse{
		Feature: feature.String(),
		Allowed: allowed,
	}
	if allowed {
		resp.Cost = policy.Cost(ledger.UserType(), feature)
	}
	return resp, nil
}

// loadOrCreateLedger 台帳を取得し、存在しない場合はプランに従って作成する
//
// 取得後にリフレッシュ期限が到来していればallotmentをリセットして保存する。
// 既存の台帳の利用者タイプとティアが正であり、リクエスト側の値は
// 新規作成時にのみ使われる。
func (s *CreditApplicationService) loadOrCreateLedger(ctx context.Context, userID, userType, tier string) (*credit.Ledger, error) {
	ledger, err := s.ledgerRepo.FindByUserID(ctx, userID)
	if err == credit.ErrLedgerNotFound {
		ut, err := credit.NewUserType(userType)
		if err != nil {
			return nil, err
		}
		t, err := credit.NewTier(ut, tier)
		if err != nil {
			return nil, err
		}
		plan, err := policy.PlanFor(ut, t)
		if err != nil {
			return nil, err
		}

		ledger, err = credit.NewLedger(userID, ut, t, plan.MonthlyCredits, 0, 0, time.Now(), 1)
		if err != nil {
			return nil, err
		}
		if err := s.ledgerRepo.Create(ctx, ledger); err != nil {
			return nil, fmt.Errorf("failed to create ledger: %w", err)
		}
		return ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger: %w", err)
	}

	refreshed, err := s.creditService.RefreshIfDue(ledger, time.Now())
	if err != nil {
		return nil, err
	}
	if refreshed {
		if err := s.ledgerRepo.Save(ctx, ledger); err != nil {
			return nil, fmt.Errorf("failed to save refreshed ledger: %w", err)
		}
		s.ledgerCache.Invalidate(userID)
	}

	return ledger, nil
}

// refreshDue キャッシュ済み台帳のリフレッシュ期限だけを判定する（保存はしない）
func (s *CreditApplicationService) refreshDue(ledger *credit.Ledger) (bool, error) {
	plan, err := policy.PlanFor(ledger.UserType(), ledger.Tier())
	if err != nil {
		return false, err
	}
	return plan.Refresh.Due(ledger.LastRefresh(), time.Now()), nil
}

// toCreditsResponse 台帳からレスポンスDTOを組み立てる
func (s *CreditApplicationService) toCreditsResponse(ledger *credit.Ledger) *GetCreditsResponse {
	var features []string
	if plan, err := policy.PlanFor(ledger.UserType(), ledger.Tier()); err == nil {
		for _, f := range plan.Features {
			features = append(features, f.String())
		}
	}

	return &GetCreditsResponse{
		UserID:      ledger.UserID(),
		UserType:    ledger.UserType().String(),
		Tier:        ledger.Tier().String(),
		Allotment:   ledger.Allotment(),
		Bonus:       ledger.Bonus(),
		Total:       ledger.Available(),
		TotalUsed:   ledger.TotalUsed(),
		LastRefresh: ledger.LastRefresh(),
		Features:    features,
	}
}

// generateTransactionID トランザクションIDを生成
func (s *CreditApplicationService) generateTransactionID() string {
	return fmt.Sprintf("txn_%d_%s", time.Now().UnixNano(), uuid.NewString()[:8])
}
