package promocode

import (
	"errors"
	"time"
)

// PromoCode プロモーションコードエンティティ
//
// 引き換えるとボーナスクレジットが付与される。1ユーザーにつき1回まで。
type PromoCode struct {
	code        string
	credits     int64 // 付与されるボーナスクレジット数
	maxUses     int   // 0 = 無制限
	currentUses int
	validFrom   time.Time
	validUntil  time.Time
	status      CodeStatus
	description string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewPromoCode 新しいPromoCodeエンティティを作成
func NewPromoCode(
	code string,
	credits int64,
	maxUses int,
	validFrom time.Time,
	validUntil time.Time,
	description string,
) (*PromoCode, error) {
	if code == "" {
		return nil, errors.New("invalid code")
	}
	if credits <= 0 {
		return nil, errors.New("invalid credits")
	}

	now := time.Now()
	return &PromoCode{
		code:        code,
		credits:     credits,
		maxUses:     maxUses,
		currentUses: 0,
		validFrom:   validFrom,
		validUntil:  validUntil,
		status:      CodeStatusActive,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Code コードを返す
func (pc *PromoCode) Code() string {
	return pc.code
}

// Credits 付与されるクレジット数を返す
func (pc *PromoCode) Credits() int64 {
	return pc.credits
}

// MaxUses 最大使用回数を返す
func (pc *PromoCode) MaxUses() int {
	return pc.maxUses
}

// CurrentUses 現在の使用回数を返す
func (pc *PromoCode) CurrentUses() int {
	return pc.currentUses
}

// ValidFrom 有効開始日時を返す
func (pc *PromoCode) ValidFrom() time.Time {
	return pc.validFrom
}

// ValidUntil 有効期限を返す
func (pc *PromoCode) ValidUntil() time.Time {
	return pc.validUntil
}

// Status ステータスを返す
func (pc *PromoCode) Status() CodeStatus {
	return pc.status
}

// Description 説明を返す
func (pc *PromoCode) Description() string {
	return pc.description
}

// CreatedAt 作成日時を返す
func (pc *PromoCode) CreatedAt() time.Time {
	return pc.createdAt
}

// UpdatedAt 更新日時を返す
func (pc *PromoCode) UpdatedAt() time.Time {
	return pc.updatedAt
}

// IsValid 有効性をチェック（有効期限、使用回数、ステータス）
func (pc *PromoCode) IsValid() bool {
	now := time.Now()

	if !pc.status.IsActive() {
		return false
	}

	if now.Before(pc.validFrom) || now.After(pc.validUntil) {
		return false
	}

	if pc.maxUses > 0 && pc.currentUses >= pc.maxUses {
		return false
	}

	return true
}

// Redeem 引き換え処理（使用回数を増やす）
func (pc *PromoCode) Redeem() error {
	if !pc.IsValid() {
		return ErrCodeNotRedeemable
	}
	pc.currentUses++
	pc.updatedAt = time.Now()
	return nil
}

// Disable コードを無効化
func (pc *PromoCode) Disable() {
	pc.status = CodeStatusDisabled
	pc.updatedAt = time.Now()
}

// Expire コードを期限切れにする
func (pc *PromoCode) Expire() {
	pc.status = CodeStatusExpired
	pc.updatedAt = time.Now()
}

// SetCurrentUses 現在の使用回数を設定（リポジトリから読み込んだ際に使用）
func (pc *PromoCode) SetCurrentUses(uses int) {
	pc.currentUses = uses
}

// SetStatus ステータスを設定（リポジトリから読み込んだ際に使用）
func (pc *PromoCode) SetStatus(status CodeStatus) {
	pc.status = status
}

// MustNewPromoCode テスト用ヘルパー: NewPromoCodeを呼び出し、エラーが発生した場合はpanicする
func MustNewPromoCode(
	code string,
	credits int64,
	maxUses int,
	validFrom time.Time,
	validUntil time.Time,
	description string,
) *PromoCode {
	pc, err := NewPromoCode(code, credits, maxUses, validFrom, validUntil, description)
	if err != nil {
		panic(err)
	}
	return pc
}
