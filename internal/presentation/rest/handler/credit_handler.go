package handler

import (
	"net/http"
	"strconv"
	"time"

	creditapp "aisle-server/internal/application/credit"

	"github.com/labstack/echo/v4"
)

// CreditHandler クレジット関連ハンドラー
type CreditHandler struct {
	creditService *creditapp.CreditApplicationService
}

// NewCreditHandler 新しいCreditHandlerを作成
func NewCreditHandler(creditService *creditapp.CreditApplicationService) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
	}
}

// identity 認証済みコンテキストから利用者情報を取り出す
func identity(c echo.Context) (userID, userType, tier string, err error) {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}
	userType, _ = c.Get("user_type").(string)
	tier, _ = c.Get("tier").(string)
	return userID, userType, tier, nil
}

// toCreditsResponse アプリケーション層のレスポンスをAPI表現に変換
func toCreditsResponse(resp *creditapp.GetCreditsResponse) CreditsResponse {
	return CreditsResponse{
		UserID:   resp.UserID,
		UserType: resp.UserType,
		Tier:     resp.Tier,
		Credits: CreditBalanceItem{
			Allotment: strconv.FormatInt(resp.Allotment, 10),
			Bonus:     strconv.FormatInt(resp.Bonus, 10),
			Total:     strconv.FormatInt(resp.Total, 10),
		},
		TotalUsed:   strconv.FormatInt(resp.TotalUsed, 10),
		LastRefresh: resp.LastRefresh.UTC().Format(time.RFC3339),
		Features:    resp.Features,
	}
}

// GetCredits クレジット残高取得ハンドラー（ユーザーAPI用）
// @Summary クレジット残高を取得
// @Description 自分のクレジット残高と利用可能機能を取得します
// @Tags credits
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} CreditsResponse "残高取得成功"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /me/credits [get]
func (h *CreditHandler) GetCredits(c echo.Context) error {
	userID, userType, tier, err := identity(c)
	if err != nil {
		return err
	}

	resp, err := h.creditService.GetCredits(c.Request().Context(), &creditapp.GetCreditsRequest{
		UserID:   userID,
		UserType: userType,
		Tier:     tier,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCreditsResponse(resp))
}

// ValidateCredits 消費可否チェックハンドラー（ユーザーAPI用）
// @Summary 機能利用の可否をチェック
// @Description 指定された機能の利用可否と残高の充足を消費せずにチェックします
// @Tags credits
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ValidateCreditsRequest true "チェック対象の機能"
// @Success 200 {object} ValidateCreditsResponse "チェック成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /me/credits/validate [post]
func (h *CreditHandler) ValidateCredits(c echo.Context) error {
	userID, userType, tier, err := identity(c)
	if err != nil {
		return err
	}

	var reqBody ValidateCreditsRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.Feature == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "feature is required")
	}

	resp, err := h.creditService.Validate(c.Request().Context(), &creditapp.ValidateRequest{
		UserID:   userID,
		UserType: userType,
		Tier:     tier,
		Feature:  reqBody.Feature,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ValidateCreditsResponse{
		Allowed:    resp.Allowed,
		Sufficient: resp.Sufficient,
		Required:   strconv.FormatInt(resp.RequiredCredits, 10),
		Current:    strconv.FormatInt(resp.CurrentCredits, 10),
		Remaining:  strconv.FormatInt(resp.RemainingCredits, 10),
	})
}

// GetFeatureAccess 機能アクセスチェックハンドラー（ユーザーAPI用）
// @Summary 機能アクセスをチェック
// @Description 指定された機能が現在のティアで利用できるかをチェックします（残高は見ません）
// @Tags credits
// @Accept json
// @Produce json
// @Security Bearer
// @Param feature path string true "機能名" example(seating_planner)
// @Success 200 {object} FeatureAccessResponse "チェック成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /me/features/{feature} [get]
func (h *CreditHandler) GetFeatureAccess(c echo.Context) error {
	userID, userType, tier, err := identity(c)
	if err != nil {
		return err
	}

	feature := c.Param("feature")
	if feature == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "feature is required")
	}

	resp, err := h.creditService.HasFeatureAccess(c.Request().Context(), &creditapp.FeatureAccessRequest{
		UserID:   userID,
		UserType: userType,
		Tier:     tier,
		Feature:  feature,
	})
	if err != nil {
		return err
	}

	result := FeatureAccessResponse{
		Feature: resp.Feature,
		Allowed: resp.Allowed,
	}
	if resp.Allowed {
		result.Cost = strconv.FormatInt(resp.Cost, 10)
	}
	return c.JSON(http.StatusOK, result)
}

// GetCreditsAdmin クレジット残高取得ハンドラー（管理API用）
// @Summary クレジット残高を取得（管理API）
// @Description 指定されたユーザーのクレジット残高を取得します
// @Tags admin
// @Accept json
// @Produce json
// @Param user_id path string true "ユーザーID" example(user123)
// @Param X-API-Key header string true "APIキー"
// @Success 200 {object} CreditsResponse "残高取得成功"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 404 {object} ErrorResponse "台帳が存在しない"
// @Router /admin/users/{user_id}/credits [get]
func (h *CreditHandler) GetCreditsAdmin(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	resp, err := h.creditService.GetCredits(c.Request().Context(), &creditapp.GetCreditsRequest{
		UserID:   userID,
		UserType: c.QueryParam("user_type"),
		Tier:     c.QueryParam("tier"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCreditsResponse(resp))
}

// InitializeCredits 台帳初期化ハンドラー（管理API用）
// @Summary 台帳を初期化（管理API）
// @Description 指定されたユーザーのクレジット台帳をプランに従って初期化します。既存の場合は何もしません
// @Tags admin
// @Accept json
// @Produce json
// @Param user_id path string true "ユーザーID" example(user123)
// @Param X-API-Key header string true "APIキー"
// @Param request body InitializeCreditsRequest true "台帳初期化リクエスト"
// @Success 200 {object} CreditsResponse "初期化成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /admin/users/{user_id}/credits/initialize [post]
func (h *CreditHandler) InitializeCredits(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var reqBody InitializeCreditsRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.creditService.Initialize(c.Request().Context(), &creditapp.InitializeRequest{
		UserID:   userID,
		UserType: reqBody.UserType,
		Tier:     reqBody.Tier,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCreditsResponse(resp))
}

// AddCredits クレジット付与ハンドラー（管理API用）
// @Summary クレジットを付与（管理API）
// @Description 指定されたユーザーのボーナスバケットにクレジットを追加します
// @Tags admin
// @Accept json
// @Produce json
// @Param user_id path string true "ユーザーID" example(user123)
// @Param X-API-Key header string true "APIキー"
// @Param request body AddCreditsRequest true "クレジット付与リクエスト"
// @Success 200 {object} AddCreditsResponse "付与成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /admin/users/{user_id}/credits/add [post]
func (h *CreditHandler) AddCredits(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var reqBody AddCreditsRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	amount, err := strconv.ParseInt(reqBody.Amount, 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid amount format")
	}

	addType := reqBody.Type
	if addType == "" {
		addType = "bonus"
	}

	resp, err := h.creditService.Add(c.Request().Context(), &creditapp.AddRequest{
		UserID:      userID,
		UserType:    reqBody.UserType,
		Tier:        reqBody.Tier,
		Amount:      amount,
		Type:        addType,
		Description: reqBody.Description,
		Metadata:    reqBody.Metadata,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AddCreditsResponse{
		TransactionID: resp.TransactionID,
		Added:         strconv.FormatInt(resp.Added, 10),
		BalanceAfter:  strconv.FormatInt(resp.BalanceAfter, 10),
	})
}

// DeductCredits クレジット消費ハンドラー（管理API用）
// @Summary クレジットを消費（管理API）
// @Description 指定されたユーザーのクレジットを機能コスト分消費します
// @Tags admin
// @Accept json
// @Produce json
// @Param user_id path string true "ユーザーID" example(user123)
// @Param X-API-Key header string true "APIキー"
// @Param request body DeductCreditsRequest true "クレジット消費リクエスト"
// @Success 200 {object} DeductCreditsResponse "消費成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 402 {object} DeductCreditsResponse "残高不足"
// @Failure 403 {object} ErrorResponse "ティア外機能"
// @Router /admin/users/{user_id}/credits/deduct [post]
func (h *CreditHandler) DeductCredits(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var reqBody DeductCreditsRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if reqBody.Feature == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "feature is required")
	}

	resp, err := h.creditService.Deduct(c.Request().Context(), &creditapp.DeductRequest{
		UserID:      userID,
		UserType:    reqBody.UserType,
		Tier:        reqBody.Tier,
		Feature:     reqBody.Feature,
		Description: reqBody.Description,
		Metadata:    reqBody.Metadata,
	})
	if err != nil {
		return err
	}

	if !resp.Success {
		return c.JSON(http.StatusPaymentRequired, DeductCreditsResponse{
			Success:  false,
			Required: strconv.FormatInt(resp.Required, 10),
			Current:  strconv.FormatInt(resp.Current, 10),
		})
	}

	return c.JSON(http.StatusOK, DeductCreditsResponse{
		Success:       true,
		TransactionID: resp.TransactionID,
		Deducted:      strconv.FormatInt(resp.Deducted, 10),
		FromAllotment: strconv.FormatInt(resp.FromAllotment, 10),
		FromBonus:     strconv.FormatInt(resp.FromBonus, 10),
		BalanceAfter:  strconv.FormatInt(resp.BalanceAfter, 10),
	})
}
