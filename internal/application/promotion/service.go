package promotion

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appcredit "aisle-server/internal/application/credit"
	"aisle-server/internal/domain/promocode"
	otelinfra "aisle-server/internal/infrastructure/observability/otel"
)

// CreditAdder クレジット追加操作のインターフェース
type CreditAdder interface {
	Add(ctx context.Context, req *appcredit.AddRequest) (*appcredit.AddResponse, error)
}

// PromotionApplicationService プロモーションコードアプリケーションサービス
type PromotionApplicationService struct {
	promoCodeRepo promocode.PromoCodeRepository
	creditSvc     CreditAdder
	logger        *otelinfra.Logger
	metrics       *otelinfra.Metrics
	tracer        trace.Tracer
}

// NewPromotionApplicationService 新しいPromotionApplicationServiceを作成
func NewPromotionApplicationService(
	promoCodeRepo promocode.PromoCodeRepository,
	creditSvc CreditAdder,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *PromotionApplicationService {
	return &PromotionApplicationService{
		promoCodeRepo: promoCodeRepo,
		creditSvc:     creditSvc,
		logger:        logger,
		metrics:       metrics,
		tracer:        otel.Tracer("promotion-service"),
	}
}

// RedeemCode プロモーションコードを引き換え
//
// 同じユーザーが同じコードを引き換えられるのは1回まで。
// 付与されるクレジットはボーナスバケットに入り、失効しない。
func (s *PromotionApplicationService) RedeemCode(ctx context.Context, req *RedeemCodeRequest) (*RedeemCodeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PromotionApplicationService.RedeemCode")
	defer span.End()

	span.SetAttributes(
		attribute.String("code", req.Code),
		attribute.String("user_id", req.UserID),
	)

	s.logger.Info(ctx, "Redeeming promo code", map[string]interface{}{
		"code":    req.Code,
		"user_id": req.UserID,
	})

	// コードを取得
	code, err := s.promoCodeRepo.FindByCode(ctx, req.Code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// 有効性をチェック
	if !code.IsValid() {
		err := promocode.ErrCodeNotRedeemable
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// 引き換え済みかチェック
	redeemed, err := s.promoCodeRepo.HasUserRedeemed(ctx, req.Code, req.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to check redemption: %w", err)
	}
	if redeemed {
		err := promocode.ErrCodeAlreadyRedeemed
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// 使用回数をインクリメント
	if err := code.Redeem(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	if err := s.promoCodeRepo.Update(ctx, code); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to update promo code: %w", err)
	}

	// ボーナスクレジットを付与
	addResp, err := s.creditSvc.Add(ctx, &appcredit.AddRequest{
		UserID:      req.UserID,
		UserType:    req.UserType,
		Tier:        req.Tier,
		Amount:      code.Credits(),
		Type:        "bonus",
		Description: code.Description(),
		Metadata:    map[string]string{"promo_code": req.Code},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.metrics.RecordError(ctx, "redeem_failed")
		return nil, fmt.Errorf("failed to add bonus credits: %w", err)
	}

	// 引き換え履歴を保存
	redemption := promocode.NewRedemption(s.generateRedemptionID(), req.Code, req.UserID, addResp.TransactionID)
	if err := s.promoCodeRepo.SaveRedemption(ctx, redemption); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to save redemption: %w", err)
	}

	s.logger.Info(ctx, "Promo code redeemed", map[string]interface{}{
		"code":           req.Code,
		"user_id":        req.UserID,
		"transaction_id": addResp.TransactionID,
		"balance_after":  addResp.BalanceAfter,
	})

	return &RedeemCodeResponse{
		Code:          req.Code,
		TransactionID: addResp.TransactionID,
		CreditsAdded:  code.Credits(),
		BalanceAfter:  addResp.BalanceAfter,
	}, nil
}

// generateRedemptionID 引き換えIDを生成
func (s *PromotionApplicationService) generateRedemptionID() string {
	return fmt.Sprintf("red_%s", uuid.NewString())
}
