package handler

import (
	"net/http"
	"strconv"

	purchaseapp "aisle-server/internal/application/purchase"

	"github.com/labstack/echo/v4"
)

// PurchaseHandler クレジットパック購入関連ハンドラー
type PurchaseHandler struct {
	purchaseService *purchaseapp.PurchaseApplicationService
}

// NewPurchaseHandler 新しいPurchaseHandlerを作成
func NewPurchaseHandler(purchaseService *purchaseapp.PurchaseApplicationService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// ProcessPurchase クレジットパック購入処理ハンドラー
// @Summary クレジットパック購入を処理
// @Description 決済済みのクレジットパック購入を処理し、ボーナスクレジットを付与します。同じpurchase_idでの再実行は既存の結果を返します
// @Tags purchase
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ProcessPurchaseRequest true "購入処理リクエスト"
// @Success 200 {object} ProcessPurchaseResponse "購入処理成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /purchases/process [post]
func (h *PurchaseHandler) ProcessPurchase(c echo.Context) error {
	// トークンからuser_idを取得
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	var reqBody ProcessPurchaseRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if reqBody.PurchaseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "purchase_id is required")
	}

	// クレジット数をint64に変換
	credits, err := strconv.ParseInt(reqBody.Credits, 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid credits format")
	}

	// 決済金額をint64に変換
	amount, err := strconv.ParseInt(reqBody.Amount, 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid amount format")
	}

	userType, _ := c.Get("user_type").(string)
	tier, _ := c.Get("tier").(string)

	req := &purchaseapp.ProcessPurchaseRequest{
		PurchaseID:  reqBody.PurchaseID,
		UserID:      userID,
		UserType:    userType,
		Tier:        tier,
		Credits:     credits,
		Amount:      amount,
		Currency:    reqBody.Currency,
		Description: reqBody.Description,
	}

	resp, err := h.purchaseService.ProcessPurchase(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ProcessPurchaseResponse{
		PurchaseID:    resp.PurchaseID,
		TransactionID: resp.TransactionID,
		CreditsAdded:  strconv.FormatInt(resp.CreditsAdded, 10),
		BalanceAfter:  strconv.FormatInt(resp.BalanceAfter, 10),
		Status:        resp.Status,
	})
}
