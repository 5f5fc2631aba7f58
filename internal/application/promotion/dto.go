package promotion

// RedeemCodeRequest プロモーションコード引き換えリクエスト
type RedeemCodeRequest struct {
	Code     string
	UserID   string
	UserType string
	Tier     string
}

// RedeemCodeResponse プロモーションコード引き換えレスポンス
type RedeemCodeResponse struct {
	Code          string
	TransactionID string
	CreditsAdded  int64
	BalanceAfter  int64
}
