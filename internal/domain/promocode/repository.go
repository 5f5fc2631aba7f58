package promocode

import (
	"context"
	"time"
)

// Redemption コード引き換え履歴エンティティ
type Redemption struct {
	redemptionID  string
	code          string
	userID        string
	transactionID string
	redeemedAt    time.Time
}

// NewRedemption 新しいRedemptionエンティティを作成
func NewRedemption(redemptionID, code, userID, transactionID string) *Redemption {
	return &Redemption{
		redemptionID:  redemptionID,
		code:          code,
		userID:        userID,
		transactionID: transactionID,
		redeemedAt:    time.Now(),
	}
}

// RedemptionID 引き換えIDを返す
func (r *Redemption) RedemptionID() string {
	return r.redemptionID
}

// Code コードを返す
func (r *Redemption) Code() string {
	return r.code
}

// UserID ユーザーIDを返す
func (r *Redemption) UserID() string {
	return r.userID
}

// TransactionID トランザクションIDを返す
func (r *Redemption) TransactionID() string {
	return r.transactionID
}

// RedeemedAt 引き換え日時を返す
func (r *Redemption) RedeemedAt() time.Time {
	return r.redeemedAt
}

// PromoCodeRepository プロモーションコードリポジトリインターフェース
type PromoCodeRepository interface {
	// FindByCode コードでプロモーションコードを取得
	FindByCode(ctx context.Context, code string) (*PromoCode, error)

	// Update プロモーションコードを更新
	Update(ctx context.Context, code *PromoCode) error

	// HasUserRedeemed ユーザーが既にこのコードを引き換え済みかチェック
	HasUserRedeemed(ctx context.Context, code string, userID string) (bool, error)

	// SaveRedemption 引き換え履歴を保存
	SaveRedemption(ctx context.Context, redemption *Redemption) error
}
