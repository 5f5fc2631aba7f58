package purchase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appcredit "aisle-server/internal/application/credit"
	"aisle-server/internal/domain/purchase"
	otelinfra "aisle-server/internal/infrastructure/observability/otel"
)

// CreditAdder クレジット追加操作のインターフェース
type CreditAdder interface {
	Add(ctx context.Context, req *appcredit.AddRequest) (*appcredit.AddResponse, error)
}

// PurchaseApplicationService クレジットパック購入アプリケーションサービス
type PurchaseApplicationService struct {
	purchaseRepo purchase.PurchaseRepository
	creditSvc    CreditAdder
	logger       *otelinfra.Logger
	metrics      *otelinfra.Metrics
	tracer       trace.Tracer
}

// NewPurchaseApplicationService 新しいPurchaseApplicationServiceを作成
func NewPurchaseApplicationService(
	purchaseRepo purchase.PurchaseRepository,
	creditSvc CreditAdder,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *PurchaseApplicationService {
	return &PurchaseApplicationService{
		purchaseRepo: purchaseRepo,
		creditSvc:    creditSvc,
		logger:       logger,
		metrics:      metrics,
		tracer:       otel.Tracer("purchase-service"),
	}
}

// ProcessPurchase クレジットパック購入を処理
//
// 同じPurchaseIDでの再実行は既存の結果をそのまま返す（冪等）。
// クレジットはボーナスバケットに追加され、失効しない。
func (s *PurchaseApplicationService) ProcessPurchase(ctx context.Context, req *ProcessPurchaseRequest) (*ProcessPurchaseResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PurchaseApplicationService.ProcessPurchase")
	defer span.End()

	span.SetAttributes(
		attribute.String("purchase_id", req.PurchaseID),
		attribute.String("user_id", req.UserID),
		attribute.Int64("credits", req.Credits),
	)

	s.logger.Info(ctx, "Processing credit purchase", map[string]interface{}{
		"purchase_id": req.PurchaseID,
		"user_id":     req.UserID,
		"credits":     req.Credits,
		"amount":      req.Amount,
	})

	// バリデーション
	if req.Credits <= 0 {
		err := fmt.Errorf("invalid credits: %d", req.Credits)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// 既存のPurchaseを確認（冪等性保証）
	existing, err := s.purchaseRepo.FindByPurchaseID(ctx, req.PurchaseID)
	if err != nil && err != purchase.ErrPurchaseNotFound {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}

	// 既に処理済みの場合は、既存の結果を返す
	if existing != nil && existing.IsCompleted() {
		s.logger.Info(ctx, "Purchase already completed, returning existing result", map[string]interface{}{
			"purchase_id":    req.PurchaseID,
			"transaction_id": existing.TransactionID(),
		})
		return &ProcessPurchaseResponse{
			PurchaseID:    req.PurchaseID,
			TransactionID: existing.TransactionID(),
			CreditsAdded:  existing.Credits(),
			Status:        "completed",
		}, nil
	}

	// Purchaseレコードを作成（再試行の場合は既存のpendingを使う）
	pr := existing
	if pr == nil {
		pr, err = purchase.NewPurchase(req.PurchaseID, req.UserID, req.Credits, req.Amount, req.Currency)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, err
		}
		if err := s.purchaseRepo.Save(ctx, pr); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, fmt.Errorf("failed to save purchase: %w", err)
		}
	}

	// クレジットを付与
	addResp, err := s.creditSvc.Add(ctx, &appcredit.AddRequest{
		UserID:      req.UserID,
		UserType:    req.UserType,
		Tier:        req.Tier,
		Amount:      req.Credits,
		Type:        "purchased",
		Description: req.Description,
		Metadata:    map[string]string{"purchase_id": req.PurchaseID},
	})
	if err != nil {
		pr.Fail()
		if updateErr := s.purchaseRepo.Update(ctx, pr); updateErr != nil {
			s.logger.Error(ctx, "Failed to mark purchase as failed", updateErr, map[string]interface{}{
				"purchase_id": req.PurchaseID,
			})
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "purchase_failed")
		return nil, fmt.Errorf("failed to add purchased credits: %w", err)
	}

	// 付与済みトランザクションと紐付けて完了にする
	pr.Complete(addResp.TransactionID)
	if err := s.purchaseRepo.Update(ctx, pr); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to update purchase: %w", err)
	}

	s.logger.Info(ctx, "Purchase completed", map[string]interface{}{
		"purchase_id":    req.PurchaseID,
		"transaction_id": addResp.TransactionID,
		"balance_after":  addResp.BalanceAfter,
	})

	return &ProcessPurchaseResponse{
		PurchaseID:    req.PurchaseID,
		TransactionID: addResp.TransactionID,
		CreditsAdded:  req.Credits,
		BalanceAfter:  addResp.BalanceAfter,
		Status:        "completed",
	}, nil
}
