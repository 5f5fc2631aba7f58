package history

import "aisle-server/internal/domain/transaction"

// GetTransactionHistoryRequest トランザクション履歴取得リクエスト
type GetTransactionHistoryRequest struct {
	UserID          string
	Limit           int
	Offset          int
	Feature         string // optional: "draft_messaging"など
	TransactionType string // optional: "spent", "purchased", "bonus"
}

// GetTransactionHistoryResponse トランザクション履歴取得レスポンス
type GetTransactionHistoryResponse struct {
	Transactions []*transaction.Transaction
	Total        int
	Limit        int
	Offset       int
}
