package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	appcredit "aisle-server/internal/application/credit"
	"aisle-server/internal/domain/credit"
	otelinfra "aisle-server/internal/infrastructure/observability/otel"
)

// creditGateDeductedKey 同一リクエスト内での二重消費を防ぐマーカー
const creditGateDeductedKey = "credit_gate_deducted"

// creditGateValidatedKey 同一リクエスト内での二重検証を防ぐマーカー
const creditGateValidatedKey = "credit_gate_validated"

// CreditGateService クレジットゲートが必要とする操作のインターフェース
type CreditGateService interface {
	Validate(ctx context.Context, req *appcredit.ValidateRequest) (*appcredit.ValidateResponse, error)
	Deduct(ctx context.Context, req *appcredit.DeductRequest) (*appcredit.DeductResponse, error)
}

// InsufficientCreditsResponse 残高不足レスポンス（402）
type InsufficientCreditsResponse struct {
	Error           string        `json:"error"`
	Message         string        `json:"message"`
	Credits         CreditDetails `json:"credits"`
	Feature         string        `json:"feature"`
	UpgradeRequired bool          `json:"upgrade_required"`
}

// FeatureNotAvailableResponse ティア外機能レスポンス（403）
type FeatureNotAvailableResponse struct {
	Error           string `json:"error"`
	Message         string `json:"message"`
	Feature         string `json:"feature"`
	UpgradeRequired bool   `json:"upgrade_required"`
}

// CreditDetails 残高詳細
type CreditDetails struct {
	Required  int64 `json:"required"`
	Current   int64 `json:"current"`
	Remaining int64 `json:"remaining"`
}

// CreditGateMiddleware 機能単位のクレジットゲートミドルウェア
//
// ハンドラーの実行前に機能アクセスと残高を検証し、ハンドラーが
// 成功レスポンスを返した後にのみクレジットを消費する。
// 消費の失敗でレスポンスを壊すことはない（配信済みのため記録して流す）。
func CreditGateMiddleware(
	feature credit.Feature,
	creditSvc CreditGateService,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			// 認証済みコンテキストから利用者情報を取得
			userID, _ := c.Get("user_id").(string)
			userType, _ := c.Get("user_type").(string)
			tier, _ := c.Get("tier").(string)
			if userID == "" || userType == "" || tier == "" {
				logger.Warn(ctx, "Incomplete identity for credit gate", map[string]interface{}{
					"user_id":   userID,
					"user_type": userType,
					"tier":      tier,
				})
				return c.JSON(http.StatusBadRequest, ErrorResponse{
					Error:   "invalid_identity",
					Message: "user_type and tier are required",
				})
			}

			// 事前チェック（アクセス → 残高の順）。二重適用時の再検証はしない
			if validated, _ := c.Get(creditGateValidatedKey).(bool); !validated {
				validation, err := creditSvc.Validate(ctx, &appcredit.ValidateRequest{
					UserID:   userID,
					UserType: userType,
					Tier:     tier,
					Feature:  feature.String(),
				})
				if err != nil {
					return err
				}

				if !validation.Allowed {
					metrics.RecordFeatureDenied(ctx, userType, tier, feature.String())
					return c.JSON(http.StatusForbidden, FeatureNotAvailableResponse{
						Error:           "feature_not_available",
						Message:         "This feature is not available on your current plan",
						Feature:         feature.String(),
						UpgradeRequired: true,
					})
				}

				if !validation.Sufficient {
					metrics.RecordInsufficientCredits(ctx, userType, feature.String())
					return c.JSON(http.StatusPaymentRequired, InsufficientCreditsResponse{
						Error:   "insufficient_credits",
						Message: "Not enough credits to use this feature",
						Credits: CreditDetails{
							Required:  validation.RequiredCredits,
							Current:   validation.CurrentCredits,
							Remaining: validation.RemainingCredits,
						},
						Feature:         feature.String(),
						UpgradeRequired: true,
					})
				}

				c.Set(creditGateValidatedKey, true)
			}

			// ハンドラーを実行
			if err := next(c); err != nil {
				return err
			}

			// 失敗レスポンスには課金しない
			if c.Response().Status >= http.StatusBadRequest {
				return nil
			}

			// 同一リクエスト内での二重消費を防ぐ
			if deducted, _ := c.Get(creditGateDeductedKey).(bool); deducted {
				return nil
			}
			c.Set(creditGateDeductedKey, true)

			// 配信成功後に消費する。検証と消費の間に残高が変わり失敗しても
			// レスポンスは配信済みなので記録するだけに留める。
			result, err := creditSvc.Deduct(ctx, &appcredit.DeductRequest{
				UserID:   userID,
				UserType: userType,
				Tier:     tier,
				Feature:  feature.String(),
				Metadata: map[string]string{"path": c.Request().URL.Path},
			})
			if err != nil {
				logger.Error(ctx, "Failed to deduct credits after delivery", err, map[string]interface{}{
					"user_id": userID,
					"feature": feature.String(),
				})
				metrics.RecordError(ctx, "post_delivery_deduct_failed")
				return nil
			}
			if !result.Success {
				logger.Warn(ctx, "Balance changed between validation and deduction", map[string]interface{}{
					"user_id":  userID,
					"feature":  feature.String(),
					"required": result.Required,
					"current":  result.Current,
				})
				return nil
			}

			logger.Debug(ctx, "Credits deducted for request", map[string]interface{}{
				"user_id":        userID,
				"feature":        feature.String(),
				"transaction_id": result.TransactionID,
				"balance_after":  result.BalanceAfter,
			})
			return nil
		}
	}
}
