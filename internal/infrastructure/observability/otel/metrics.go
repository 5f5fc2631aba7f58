package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// クレジット消費数
	DeductionCount metric.Int64Counter

	// 消費されたクレジット量
	CreditsSpent metric.Int64Counter

	// クレジット残高の分布
	CreditBalance metric.Int64Gauge

	// 残高不足による拒否件数
	InsufficientCount metric.Int64Counter

	// ティア外機能による拒否件数
	FeatureDeniedCount metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	deductionCount, err := meter.Int64Counter(
		"credit_deductions_total",
		metric.WithDescription("Total number of credit deductions"),
	)
	if err != nil {
		return nil, err
	}

	creditsSpent, err := meter.Int64Counter(
		"credits_spent_total",
		metric.WithDescription("Total credits spent"),
	)
	if err != nil {
		return nil, err
	}

	creditBalance, err := meter.Int64Gauge(
		"credit_balance",
		metric.WithDescription("Credit balance"),
	)
	if err != nil {
		return nil, err
	}

	insufficientCount, err := meter.Int64Counter(
		"insufficient_credits_total",
		metric.WithDescription("Total number of requests rejected for insufficient credits"),
	)
	if err != nil {
		return nil, err
	}

	featureDeniedCount, err := meter.Int64Counter(
		"feature_denied_total",
		metric.WithDescription("Total number of requests rejected for tier feature access"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		DeductionCount:     deductionCount,
		CreditsSpent:       creditsSpent,
		CreditBalance:      creditBalance,
		InsufficientCount:  insufficientCount,
		FeatureDeniedCount: featureDeniedCount,
		RequestCount:       requestCount,
		ResponseTime:       responseTime,
		ErrorCount:         errorCount,
	}, nil
}

// RecordDeduction クレジット消費を記録
func (m *Metrics) RecordDeduction(ctx context.Context, userType, feature string, cost int64) {
	attrs := metric.WithAttributes(
		attribute.String("user_type", userType),
		attribute.String("feature", feature),
	)
	m.DeductionCount.Add(ctx, 1, attrs)
	m.CreditsSpent.Add(ctx, cost, attrs)
}

// RecordCreditBalance クレジット残高を記録
func (m *Metrics) RecordCreditBalance(ctx context.Context, userType, tier string, balance int64) {
	m.CreditBalance.Record(ctx, balance,
		metric.WithAttributes(
			attribute.String("user_type", userType),
			attribute.String("tier", tier),
		),
	)
}

// RecordInsufficientCredits 残高不足による拒否を記録
func (m *Metrics) RecordInsufficientCredits(ctx context.Context, userType, feature string) {
	m.InsufficientCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("user_type", userType),
			attribute.String("feature", feature),
		),
	)
}

// RecordFeatureDenied ティア外機能による拒否を記録
func (m *Metrics) RecordFeatureDenied(ctx context.Context, userType, tier, feature string) {
	m.FeatureDeniedCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("user_type", userType),
			attribute.String("tier", tier),
			attribute.String("feature", feature),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
