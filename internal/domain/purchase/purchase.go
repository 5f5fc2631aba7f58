package purchase

import (
	"errors"
	"time"
)

// Purchase クレジット購入エンティティ
//
// 外部決済プロバイダでの決済1件に対応する。purchaseIDは
// プロバイダ側のIDをそのまま使い、二重付与の冪等性キーとなる。
type Purchase struct {
	purchaseID    string
	userID        string
	credits       int64  // 付与されるボーナスクレジット数
	amount        int64  // 支払金額（最小通貨単位の整数）
	currency      string // 通貨コード（例: "USD"）
	status        PurchaseStatus
	transactionID string // 付与時のクレジットトランザクションID
	createdAt     time.Time
	updatedAt     time.Time
}

// PurchaseStatus 購入のステータス
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"   // 処理中
	PurchaseStatusCompleted PurchaseStatus = "completed" // 完了
	PurchaseStatusFailed    PurchaseStatus = "failed"    // 失敗
)

// String 文字列表現を返す
func (ps PurchaseStatus) String() string {
	return string(ps)
}

// NewPurchase 新しいPurchaseエンティティを作成
func NewPurchase(
	purchaseID string,
	userID string,
	credits int64,
	amount int64,
	currency string,
) (*Purchase, error) {
	if purchaseID == "" {
		return nil, errors.New("invalid purchase id")
	}
	if userID == "" {
		return nil, errors.New("invalid user id")
	}
	if credits <= 0 {
		return nil, errors.New("invalid credits")
	}
	if amount < 0 {
		return nil, errors.New("invalid amount")
	}

	now := time.Now()
	return &Purchase{
		purchaseID: purchaseID,
		userID:     userID,
		credits:    credits,
		amount:     amount,
		currency:   currency,
		status:     PurchaseStatusPending,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// PurchaseID 購入IDを返す
func (p *Purchase) PurchaseID() string {
	return p.purchaseID
}

// UserID ユーザーIDを返す
func (p *Purchase) UserID() string {
	return p.userID
}

// Credits 付与されるクレジット数を返す
func (p *Purchase) Credits() int64 {
	return p.credits
}

// Amount 支払金額を返す
func (p *Purchase) Amount() int64 {
	return p.amount
}

// Currency 通貨コードを返す
func (p *Purchase) Currency() string {
	return p.currency
}

// Status ステータスを返す
func (p *Purchase) Status() PurchaseStatus {
	return p.status
}

// TransactionID 付与トランザクションIDを返す
func (p *Purchase) TransactionID() string {
	return p.transactionID
}

// CreatedAt 作成日時を返す
func (p *Purchase) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt 更新日時を返す
func (p *Purchase) UpdatedAt() time.Time {
	return p.updatedAt
}

// Complete 購入を完了状態にし、付与トランザクションIDを記録する
func (p *Purchase) Complete(transactionID string) {
	p.status = PurchaseStatusCompleted
	p.transactionID = transactionID
	p.updatedAt = time.Now()
}

// Fail 購入を失敗状態にする
func (p *Purchase) Fail() {
	p.status = PurchaseStatusFailed
	p.updatedAt = time.Now()
}

// IsCompleted 完了状態かどうかを返す
func (p *Purchase) IsCompleted() bool {
	return p.status == PurchaseStatusCompleted
}

// IsPending 処理中状態かどうかを返す
func (p *Purchase) IsPending() bool {
	return p.status == PurchaseStatusPending
}

// SetStatus ステータスを設定（リポジトリから読み込んだ際に使用）
func (p *Purchase) SetStatus(status PurchaseStatus) {
	p.status = status
}

// SetTransactionID 付与トランザクションIDを設定（リポジトリから読み込んだ際に使用）
func (p *Purchase) SetTransactionID(transactionID string) {
	p.transactionID = transactionID
}

// MustNewPurchase テスト用ヘルパー: NewPurchaseを呼び出し、エラーが発生した場合はpanicする
func MustNewPurchase(
	purchaseID string,
	userID string,
	credits int64,
	amount int64,
	currency string,
) *Purchase {
	p, err := NewPurchase(purchaseID, userID, credits, amount, currency)
	if err != nil {
		panic(err)
	}
	return p
}
