package promocode

import "errors"

var (
	// ErrCodeNotFound コードが見つからないエラー
	ErrCodeNotFound = errors.New("promo code not found")
	// ErrCodeNotRedeemable コードが引き換え不可能エラー
	ErrCodeNotRedeemable = errors.New("promo code not redeemable")
	// ErrCodeAlreadyRedeemed ユーザーが既にコードを引き換え済みエラー
	ErrCodeAlreadyRedeemed = errors.New("promo code already redeemed by user")
)
