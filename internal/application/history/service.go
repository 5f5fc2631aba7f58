package history

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aisle-server/internal/domain/credit"
	"aisle-server/internal/domain/transaction"
	otelinfra "aisle-server/internal/infrastructure/observability/otel"
)

// HistoryApplicationService 履歴アプリケーションサービス
type HistoryApplicationService struct {
	transactionRepo transaction.TransactionRepository
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
}

// NewHistoryApplicationService 新しいHistoryApplicationServiceを作成
func NewHistoryApplicationService(
	transactionRepo transaction.TransactionRepository,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *HistoryApplicationService {
	return &HistoryApplicationService{
		transactionRepo: transactionRepo,
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("history-service"),
	}
}

// GetTransactionHistory トランザクション履歴を取得
//
// 新しい順に返す。履歴は追記専用のレコードであり、ここから残高を
// 再計算することはない。
func (s *HistoryApplicationService) GetTransactionHistory(ctx context.Context, req *GetTransactionHistoryRequest) (*GetTransactionHistoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.GetTransactionHistory")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.Int("limit", req.Limit),
		attribute.Int("offset", req.Offset),
	)

	s.logger.Info(ctx, "Getting transaction history", map[string]interface{}{
		"user_id":          req.UserID,
		"limit":            req.Limit,
		"offset":           req.Offset,
		"feature":          req.Feature,
		"transaction_type": req.TransactionType,
	})

	// バリデーション
	if req.Limit <= 0 {
		req.Limit = 50 // デフォルト値
	}
	if req.Limit > 100 {
		req.Limit = 100 // 最大値
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	// 絞り込み条件はWHERE句で適用する（検証できない値は無視）
	var filter transaction.Filter
	if req.Feature != "" {
		if feature, err := credit.NewFeature(req.Feature); err == nil {
			filter.Feature = feature.String()
		}
	}
	if req.TransactionType != "" {
		if transactionType, err := transaction.NewTransactionType(req.TransactionType); err == nil {
			filter.TransactionType = transactionType.String()
		}
	}

	// トランザクション履歴を取得
	transactions, err := s.transactionRepo.FindByUserID(ctx, req.UserID, filter, req.Limit, req.Offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to get transaction history", err, map[string]interface{}{
			"user_id": req.UserID,
		})
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}

	// メトリクス記録
	s.metrics.RecordRequest(ctx, "GET", "/api/v1/me/credits/history")

	return &GetTransactionHistoryResponse{
		Transactions: transactions,
		Total:        len(transactions), // 簡易的な実装（実際には総件数を取得する必要がある）
		Limit:        req.Limit,
		Offset:       req.Offset,
	}, nil
}
