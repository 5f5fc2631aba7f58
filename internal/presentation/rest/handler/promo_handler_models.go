package handler

// RedeemCodeRequest プロモーションコード引き換えリクエスト
// @Description プロモーションコード引き換えリクエスト
type RedeemCodeRequest struct {
	Code string `json:"code" example:"WELCOME2026"`
}

// RedeemCodeResponse プロモーションコード引き換えレスポンス
// @Description プロモーションコード引き換えレスポンス
type RedeemCodeResponse struct {
	Code          string `json:"code" example:"WELCOME2026"`
	TransactionID string `json:"transaction_id" example:"txn_456"`
	CreditsAdded  string `json:"credits_added" example:"25"`
	BalanceAfter  string `json:"balance_after" example:"40"`
}
