package transaction

import (
	"fmt"
)

// TransactionType クレジットトランザクションのタイプを表す値オブジェクト
type TransactionType string

const (
	TransactionTypeSpent     TransactionType = "spent"     // AI機能の利用による消費
	TransactionTypePurchased TransactionType = "purchased" // 購入による追加
	TransactionTypeBonus     TransactionType = "bonus"     // プロモーション等による追加
)

// NewTransactionType 新しいTransactionTypeを作成
func NewTransactionType(s string) (TransactionType, error) {
	switch s {
	case "spent", "purchased", "bonus":
		return TransactionType(s), nil
	default:
		return "", fmt.Errorf("invalid transaction type: %s", s)
	}
}

// String 文字列表現を返す
func (tt TransactionType) String() string {
	return string(tt)
}

// Valid 有効なトランザクションタイプかどうかを返す
func (tt TransactionType) Valid() bool {
	switch tt {
	case TransactionTypeSpent, TransactionTypePurchased, TransactionTypeBonus:
		return true
	default:
		return false
	}
}

// IsSpend 消費トランザクションかどうかを返す
func (tt TransactionType) IsSpend() bool {
	return tt == TransactionTypeSpent
}
