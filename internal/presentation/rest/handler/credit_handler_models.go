package handler

// CreditBalanceItem クレジット残高の内訳
// @Description クレジット残高の内訳
type CreditBalanceItem struct {
	Allotment string `json:"allotment" example:"15"`
	Bonus     string `json:"bonus" example:"50"`
	Total     string `json:"total" example:"65"`
}

// CreditsResponse クレジット残高レスポンス
// @Description クレジット残高レスポンス
type CreditsResponse struct {
	UserID      string            `json:"user_id" example:"user123"`
	UserType    string            `json:"user_type" example:"couple"`
	Tier        string            `json:"tier" example:"free"`
	Credits     CreditBalanceItem `json:"credits"`
	TotalUsed   string            `json:"total_used" example:"120"`
	LastRefresh string            `json:"last_refresh" example:"2026-01-15T10:00:00Z"`
	Features    []string          `json:"features"`
}

// ValidateCreditsRequest 消費可否チェックリクエスト
// @Description 消費可否チェックリクエスト
type ValidateCreditsRequest struct {
	Feature string `json:"feature" example:"draft_messaging"`
}

// ValidateCreditsResponse 消費可否チェックレスポンス
// @Description 消費可否チェックレスポンス
type ValidateCreditsResponse struct {
	Allowed    bool   `json:"allowed" example:"true"`
	Sufficient bool   `json:"sufficient" example:"true"`
	Required   string `json:"required" example:"1"`
	Current    string `json:"current" example:"15"`
	Remaining  string `json:"remaining" example:"14"`
}

// FeatureAccessResponse 機能アクセスチェックレスポンス
// @Description 機能アクセスチェックレスポンス
type FeatureAccessResponse struct {
	Feature string `json:"feature" example:"seating_planner"`
	Allowed bool   `json:"allowed" example:"true"`
	Cost    string `json:"cost,omitempty" example:"5"`
}

// InitializeCreditsRequest 台帳初期化リクエスト（管理API用）
// @Description 台帳初期化リクエスト
type InitializeCreditsRequest struct {
	UserType string `json:"user_type" example:"couple" enums:"couple,planner"`
	Tier     string `json:"tier" example:"free"`
}

// AddCreditsRequest クレジット付与リクエスト（管理API用）
// @Description クレジット付与リクエスト
type AddCreditsRequest struct {
	UserType    string            `json:"user_type" example:"couple" enums:"couple,planner"`
	Tier        string            `json:"tier" example:"free"`
	Amount      string            `json:"amount" example:"100"`
	Type        string            `json:"type" example:"bonus" enums:"purchased,bonus"`
	Description string            `json:"description" example:"サポート補填"`
	Metadata    map[string]string `json:"metadata"`
}

// AddCreditsResponse クレジット付与レスポンス
// @Description クレジット付与レスポンス
type AddCreditsResponse struct {
	TransactionID string `json:"transaction_id" example:"txn_123"`
	Added         string `json:"added" example:"100"`
	BalanceAfter  string `json:"balance_after" example:"165"`
}

// DeductCreditsRequest クレジット消費リクエスト（管理API用）
// @Description クレジット消費リクエスト
type DeductCreditsRequest struct {
	UserType    string            `json:"user_type" example:"couple" enums:"couple,planner"`
	Tier        string            `json:"tier" example:"free"`
	Feature     string            `json:"feature" example:"draft_messaging"`
	Description string            `json:"description" example:"手動調整"`
	Metadata    map[string]string `json:"metadata"`
}

// DeductCreditsResponse クレジット消費レスポンス
// @Description クレジット消費レスポンス
type DeductCreditsResponse struct {
	Success       bool   `json:"success" example:"true"`
	TransactionID string `json:"transaction_id,omitempty" example:"txn_123"`
	Deducted      string `json:"deducted,omitempty" example:"1"`
	FromAllotment string `json:"from_allotment,omitempty" example:"1"`
	FromBonus     string `json:"from_bonus,omitempty" example:"0"`
	BalanceAfter  string `json:"balance_after,omitempty" example:"14"`
	Required      string `json:"required,omitempty" example:"1"`
	Current       string `json:"current,omitempty" example:"0"`
}
