package handler

// DraftMessageRequest メッセージ下書き生成リクエスト
// @Description メッセージ下書き生成リクエスト
type DraftMessageRequest struct {
	Recipient string `json:"recipient" example:"florist"`
	Context   string `json:"context" example:"見積もりの返信が1週間ない"`
	Tone      string `json:"tone,omitempty" example:"polite"`
}

// DraftMessageResponse メッセージ下書き生成レスポンス
// @Description メッセージ下書き生成レスポンス
type DraftMessageResponse struct {
	Draft string `json:"draft"`
}

// TodoSuggestionsRequest ToDo提案生成リクエスト
// @Description ToDo提案生成リクエスト
type TodoSuggestionsRequest struct {
	WeddingDate string `json:"wedding_date" example:"2026-11-15"`
	Completed   string `json:"completed,omitempty" example:"会場予約, 招待状発送"`
}

// TodoSuggestionsResponse ToDo提案生成レスポンス
// @Description ToDo提案生成レスポンス
type TodoSuggestionsResponse struct {
	Suggestions string `json:"suggestions"`
}

// VendorSuggestionsRequest ベンダー提案生成リクエスト
// @Description ベンダー提案生成リクエスト
type VendorSuggestionsRequest struct {
	Category string `json:"category" example:"photographer"`
	Region   string `json:"region" example:"Tokyo"`
	Budget   string `json:"budget,omitempty" example:"300000"`
}

// VendorSuggestionsResponse ベンダー提案生成レスポンス
// @Description ベンダー提案生成レスポンス
type VendorSuggestionsResponse struct {
	Suggestions string `json:"suggestions"`
}
