package handler

import (
	"net/http"
	"strconv"

	promotionapp "aisle-server/internal/application/promotion"

	"github.com/labstack/echo/v4"
)

// PromoHandler プロモーションコード関連ハンドラー
type PromoHandler struct {
	promotionService *promotionapp.PromotionApplicationService
}

// NewPromoHandler 新しいPromoHandlerを作成
func NewPromoHandler(promotionService *promotionapp.PromotionApplicationService) *PromoHandler {
	return &PromoHandler{
		promotionService: promotionService,
	}
}

// RedeemCode プロモーションコード引き換えハンドラー
// @Summary プロモーションコードを引き換え
// @Description プロモーションコードを引き換えてボーナスクレジットを受け取ります。同じコードは1ユーザーにつき1回まで
// @Tags promotion
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body RedeemCodeRequest true "コード引き換えリクエスト"
// @Success 200 {object} RedeemCodeResponse "引き換え成功"
// @Failure 400 {object} ErrorResponse "不正なリクエストまたは引き換え不能なコード"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 404 {object} ErrorResponse "コードが見つからない"
// @Router /codes/redeem [post]
func (h *PromoHandler) RedeemCode(c echo.Context) error {
	// トークンからuser_idを取得
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	var reqBody RedeemCodeRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if reqBody.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	userType, _ := c.Get("user_type").(string)
	tier, _ := c.Get("tier").(string)

	req := &promotionapp.RedeemCodeRequest{
		Code:     reqBody.Code,
		UserID:   userID,
		UserType: userType,
		Tier:     tier,
	}

	resp, err := h.promotionService.RedeemCode(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, RedeemCodeResponse{
		Code:          resp.Code,
		TransactionID: resp.TransactionID,
		CreditsAdded:  strconv.FormatInt(resp.CreditsAdded, 10),
		BalanceAfter:  strconv.FormatInt(resp.BalanceAfter, 10),
	})
}
