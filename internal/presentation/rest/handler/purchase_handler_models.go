package handler

// ProcessPurchaseRequest クレジットパック購入処理リクエスト
// @Description クレジットパック購入処理リクエスト
type ProcessPurchaseRequest struct {
	PurchaseID  string `json:"purchase_id" example:"pur_123"`
	Credits     string `json:"credits" example:"100"`
	Amount      string `json:"amount" example:"980"`
	Currency    string `json:"currency" example:"JPY"`
	Description string `json:"description" example:"クレジットパック100"`
}

// ProcessPurchaseResponse クレジットパック購入処理レスポンス
// @Description クレジットパック購入処理レスポンス
type ProcessPurchaseResponse struct {
	PurchaseID    string `json:"purchase_id" example:"pur_123"`
	TransactionID string `json:"transaction_id" example:"txn_789"`
	CreditsAdded  string `json:"credits_added" example:"100"`
	BalanceAfter  string `json:"balance_after" example:"115"`
	Status        string `json:"status" example:"completed"`
}
