package credit

import "time"

// InitializeRequest 台帳初期化リクエスト
type InitializeRequest struct {
	UserID   string
	UserType string
	Tier     string
}

// GetCreditsRequest 残高取得リクエスト
type GetCreditsRequest struct {
	UserID   string
	UserType string
	Tier     string
}

// GetCreditsResponse 残高取得レスポンス
type GetCreditsResponse struct {
	UserID      string
	UserType    string
	Tier        string
	Allotment   int64
	Bonus       int64
	Total       int64
	TotalUsed   int64
	LastRefresh time.Time
	Features    []string
}

// ValidateRequest 消費可否チェックリクエスト
type ValidateRequest struct {
	UserID   string
	UserType string
	Tier     string
	Feature  string
}

// ValidateResponse 消費可否チェックレスポンス
type ValidateResponse struct {
	Allowed          bool   // ティアで機能が利用できるか
	Sufficient       bool   // 残高が足りるか
	RequiredCredits  int64
	CurrentCredits   int64
	RemainingCredits int64 // 消費した場合の残高
}

// DeductRequest クレジット消費リクエスト
type DeductRequest struct {
	UserID      string
	UserType    string
	Tier        string
	Feature     string
	Description string
	Metadata    map[string]string
}

// DeductResponse クレジット消費レスポンス
type DeductResponse struct {
	Success       bool // 残高不足の場合false（エラーではなく通常の結果）
	TransactionID string
	Deducted      int64
	FromAllotment int64
	FromBonus     int64
	BalanceAfter  int64
	Required      int64 // 残高不足時に不足額の提示に使う
	Current       int64
}

// AddRequest クレジット追加リクエスト
type AddRequest struct {
	UserID      string
	UserType    string
	Tier        string
	Amount      int64
	Type        string // "purchased" or "bonus"
	Description string
	Metadata    map[string]string
}

// AddResponse クレジット追加レスポンス
type AddResponse struct {
	TransactionID string
	Added         int64
	BalanceAfter  int64
}

// FeatureAccessRequest 機能アクセスチェックリクエスト
type FeatureAccessRequest struct {
	UserID   string
	UserType string
	Tier     string
	Feature  string
}

// FeatureAccessResponse 機能アクセスチェックレスポンス
type FeatureAccessResponse struct {
	Feature string
	Allowed bool
	Cost    int64
}
