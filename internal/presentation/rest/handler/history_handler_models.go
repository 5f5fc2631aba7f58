package handler

// TransactionItem トランザクションアイテム
// @Description トランザクションアイテム
type TransactionItem struct {
	TransactionID   string `json:"transaction_id" example:"txn_123"`
	TransactionType string `json:"transaction_type" example:"spent"`
	Feature         string `json:"feature" example:"draft_messaging"`
	Amount          string `json:"amount" example:"1"`
	FromAllotment   string `json:"from_allotment" example:"1"`
	FromBonus       string `json:"from_bonus" example:"0"`
	BalanceAfter    string `json:"balance_after" example:"14"`
	Description     string `json:"description,omitempty" example:"AIメッセージ下書き"`
	CreatedAt       string `json:"created_at" example:"2026-01-01T12:00:00Z"`
}

// TransactionHistoryResponse トランザクション履歴レスポンス
// @Description トランザクション履歴レスポンス
type TransactionHistoryResponse struct {
	Transactions []TransactionItem `json:"transactions"`
	Total        int               `json:"total" example:"1"`
	Limit        int               `json:"limit" example:"50"`
	Offset       int               `json:"offset" example:"0"`
}
