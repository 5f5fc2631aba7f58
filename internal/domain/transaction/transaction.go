package transaction

import (
	"errors"
	"regexp"
	"time"

	"aisle-server/internal/domain/credit"
)

var (
	// ErrInvalidTransactionID トランザクションIDが無効
	ErrInvalidTransactionID = errors.New("invalid transaction id")
	// ErrInvalidUserID ユーザーIDが無効
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrInvalidAmount クレジット数が無効
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidFeature 機能が無効
	ErrInvalidFeature = errors.New("invalid feature")
)

var (
	idRegex     = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)
	userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)
)

// Transaction クレジットトランザクションエンティティ
//
// 一度追記された後は変更も削除もされない（監査ログ）。
// metadataは台帳ロジックからは解釈されない監査用の注釈
// （リクエストID、User-Agent、機能固有のコンテキストなど）。
type Transaction struct {
	transactionID   string
	userID          string
	transactionType TransactionType
	feature         credit.Feature
	amount          int64 // 移動したクレジット数（常に正、符号はtypeが示す）
	fromAllotment   int64 // 消費時のallotmentバケット内訳
	fromBonus       int64 // 消費時のbonusバケット内訳
	balanceAfter    int64 // 処理後の合計残高
	description     string
	metadata        map[string]string
	createdAt       time.Time
}

// NewTransaction 新しいTransactionエンティティを作成
func NewTransaction(
	transactionID string,
	userID string,
	transactionType TransactionType,
	feature credit.Feature,
	amount int64,
	fromAllotment int64,
	fromBonus int64,
	balanceAfter int64,
	description string,
	metadata map[string]string,
) (*Transaction, error) {
	if !idRegex.MatchString(transactionID) {
		return nil, ErrInvalidTransactionID
	}
	if !userIDRegex.MatchString(userID) {
		return nil, ErrInvalidUserID
	}
	if !transactionType.Valid() {
		return nil, ErrInvalidTransaction
	}
	if amount <= 0 || amount > credit.MaxAmount {
		return nil, ErrInvalidAmount
	}
	// 消費トランザクションは課金対象の機能、それ以外は擬似機能bonusに紐付く
	if transactionType.IsSpend() {
		if !feature.Valid() {
			return nil, ErrInvalidFeature
		}
	} else if feature != credit.FeatureBonus {
		return nil, ErrInvalidFeature
	}
	if balanceAfter < 0 || balanceAfter > credit.MaxAmount {
		return nil, ErrInvalidAmount
	}

	return &Transaction{
		transactionID:   transactionID,
		userID:          userID,
		transactionType: transactionType,
		feature:         feature,
		amount:          amount,
		fromAllotment:   fromAllotment,
		fromBonus:       fromBonus,
		balanceAfter:    balanceAfter,
		description:     description,
		metadata:        metadata,
		createdAt:       time.Now(),
	}, nil
}

// TransactionID トランザクションIDを返す
func (t *Transaction) TransactionID() string {
	return t.transactionID
}

// UserID ユーザーIDを返す
func (t *Transaction) UserID() string {
	return t.userID
}

// TransactionType トランザクションタイプを返す
func (t *Transaction) TransactionType() TransactionType {
	return t.transactionType
}

// Feature 紐付くAI機能を返す
func (t *Transaction) Feature() credit.Feature {
	return t.feature
}

// Amount 移動したクレジット数を返す
func (t *Transaction) Amount() int64 {
	return t.amount
}

// FromAllotment allotmentバケットからの消費数を返す
func (t *Transaction) FromAllotment() int64 {
	return t.fromAllotment
}

// FromBonus bonusバケットからの消費数を返す
func (t *Transaction) FromBonus() int64 {
	return t.fromBonus
}

// BalanceAfter 処理後の合計残高を返す
func (t *Transaction) BalanceAfter() int64 {
	return t.balanceAfter
}

// Description 説明を返す
func (t *Transaction) Description() string {
	return t.description
}

// Metadata メタデータを返す
func (t *Transaction) Metadata() map[string]string {
	return t.metadata
}

// CreatedAt 作成日時を返す
func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

// SetCreatedAt 作成日時を設定（リポジトリから読み込んだ際に使用）
func (t *Transaction) SetCreatedAt(at time.Time) {
	t.createdAt = at
}

// MustNewTransaction テスト用ヘルパー: NewTransactionを呼び出し、エラーが発生した場合はpanicする
func MustNewTransaction(
	transactionID string,
	userID string,
	transactionType TransactionType,
	feature credit.Feature,
	amount int64,
	fromAllotment int64,
	fromBonus int64,
	balanceAfter int64,
	description string,
	metadata map[string]string,
) *Transaction {
	txn, err := NewTransaction(transactionID, userID, transactionType, feature, amount, fromAllotment, fromBonus, balanceAfter, description, metadata)
	if err != nil {
		panic(err)
	}
	return txn
}
