package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	otelinfra "aisle-server/internal/infrastructure/observability/otel"

	"aisle-server/internal/domain/credit"
	"aisle-server/internal/domain/promocode"
	"aisle-server/internal/domain/purchase"
	"aisle-server/internal/domain/transaction"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// エラーハンドリング
			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	// ドメインエラーの判定と処理
	if errors.Is(err, credit.ErrInsufficientCredits) {
		logger.Warn(ctx, "Insufficient credits", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusPaymentRequired, ErrorResponse{
			Error:   "insufficient_credits",
			Message: err.Error(),
		})
	}

	if errors.Is(err, credit.ErrFeatureNotAvailable) {
		logger.Warn(ctx, "Feature not available", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "feature_not_available",
			Message: err.Error(),
		})
	}

	if errors.Is(err, credit.ErrInvalidAmount) || errors.Is(err, credit.ErrAmountTooLarge) {
		logger.Warn(ctx, "Invalid amount", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_amount",
			Message: err.Error(),
		})
	}

	if errors.Is(err, credit.ErrInvalidUserType) || errors.Is(err, credit.ErrInvalidTier) {
		logger.Warn(ctx, "Invalid identity", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_identity",
			Message: err.Error(),
		})
	}

	if errors.Is(err, credit.ErrLedgerNotFound) {
		logger.Warn(ctx, "Ledger not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "ledger_not_found",
			Message: err.Error(),
		})
	}

	if errors.Is(err, transaction.ErrTransactionNotFound) {
		logger.Warn(ctx, "Transaction not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "transaction_not_found",
			Message: err.Error(),
		})
	}

	if errors.Is(err, purchase.ErrPurchaseNotFound) {
		logger.Warn(ctx, "Purchase not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "purchase_not_found",
			Message: err.Error(),
		})
	}

	if errors.Is(err, purchase.ErrPurchaseAlreadyCompleted) {
		logger.Warn(ctx, "Purchase already completed", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "purchase_already_completed",
			Message: err.Error(),
		})
	}

	if errors.Is(err, promocode.ErrCodeNotFound) {
		logger.Warn(ctx, "Code not found", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "code_not_found",
			Message: err.Error(),
		})
	}

	if errors.Is(err, promocode.ErrCodeNotRedeemable) {
		logger.Warn(ctx, "Code not redeemable", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "code_not_redeemable",
			Message: err.Error(),
		})
	}

	if errors.Is(err, promocode.ErrCodeAlreadyRedeemed) {
		logger.Warn(ctx, "Code already redeemed", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "code_already_redeemed",
			Message: err.Error(),
		})
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
