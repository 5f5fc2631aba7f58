package handler

import (
	"fmt"
	"net/http"

	"aisle-server/internal/infrastructure/ai"

	"github.com/labstack/echo/v4"
)

// AIHandler AI支援機能ハンドラー
//
// クレジット消費はルーター側のクレジットゲートミドルウェアが行う。
// ハンドラー自体は生成処理のみに専念する。
type AIHandler struct {
	generator ai.Generator
}

// NewAIHandler 新しいAIHandlerを作成
func NewAIHandler(generator ai.Generator) *AIHandler {
	return &AIHandler{
		generator: generator,
	}
}

// DraftMessage メッセージ下書き生成ハンドラー
// @Summary ベンダー宛メッセージの下書きを生成
// @Description 指定された宛先と状況からメッセージの下書きを生成します。1クレジットを消費します
// @Tags ai
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body DraftMessageRequest true "下書き生成リクエスト"
// @Success 200 {object} DraftMessageResponse "生成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 402 {object} ErrorResponse "クレジット残高不足"
// @Failure 403 {object} ErrorResponse "ティア外の機能"
// @Router /ai/draft-message [post]
func (h *AIHandler) DraftMessage(c echo.Context) error {
	var reqBody DraftMessageRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if reqBody.Recipient == "" || reqBody.Context == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recipient and context are required")
	}

	tone := reqBody.Tone
	if tone == "" {
		tone = "polite"
	}

	systemPrompt := "You are an assistant helping wedding couples and planners communicate with vendors. Write a concise, ready-to-send message."
	userPrompt := fmt.Sprintf("Recipient: %s\nTone: %s\nSituation: %s", reqBody.Recipient, tone, reqBody.Context)

	draft, err := h.generator.Generate(c.Request().Context(), systemPrompt, userPrompt)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, DraftMessageResponse{
		Draft: draft,
	})
}

// TodoSuggestions ToDo提案生成ハンドラー
// @Summary 結婚式準備のToDo提案を生成
// @Description 挙式日と完了済みタスクから次にやるべきToDoを提案します。1クレジットを消費します
// @Tags ai
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body TodoSuggestionsRequest true "ToDo提案リクエスト"
// @Success 200 {object} TodoSuggestionsResponse "生成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 402 {object} ErrorResponse "クレジット残高不足"
// @Failure 403 {object} ErrorResponse "ティア外の機能"
// @Router /ai/todo-suggestions [post]
func (h *AIHandler) TodoSuggestions(c echo.Context) error {
	var reqBody TodoSuggestionsRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if reqBody.WeddingDate == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "wedding_date is required")
	}

	systemPrompt := "You are a wedding planning assistant. Suggest the next actionable preparation tasks as a short prioritized list."
	userPrompt := fmt.Sprintf("Wedding date: %s\nAlready completed: %s", reqBody.WeddingDate, reqBody.Completed)

	suggestions, err := h.generator.Generate(c.Request().Context(), systemPrompt, userPrompt)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TodoSuggestionsResponse{
		Suggestions: suggestions,
	})
}

// VendorSuggestions ベンダー提案生成ハンドラー
// @Summary 条件に合うベンダーの提案を生成
// @Description カテゴリ・地域・予算からベンダー候補を提案します。プランに応じたクレジットを消費します
// @Tags ai
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body VendorSuggestionsRequest true "ベンダー提案リクエスト"
// @Success 200 {object} VendorSuggestionsResponse "生成成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 402 {object} ErrorResponse "クレジット残高不足"
// @Failure 403 {object} ErrorResponse "ティア外の機能"
// @Router /ai/vendor-suggestions [post]
func (h *AIHandler) VendorSuggestions(c echo.Context) error {
	var reqBody VendorSuggestionsRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if reqBody.Category == "" || reqBody.Region == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "category and region are required")
	}

	systemPrompt := "You are a wedding vendor concierge. Suggest vendor types and selection criteria matching the given conditions."
	userPrompt := fmt.Sprintf("Category: %s\nRegion: %s\nBudget: %s", reqBody.Category, reqBody.Region, reqBody.Budget)

	suggestions, err := h.generator.Generate(c.Request().Context(), systemPrompt, userPrompt)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, VendorSuggestionsResponse{
		Suggestions: suggestions,
	})
}
