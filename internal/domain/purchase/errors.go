package purchase

import "errors"

var (
	// ErrPurchaseNotFound 購入が見つからないエラー
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrPurchaseAlreadyCompleted 購入が既に完了しているエラー
	ErrPurchaseAlreadyCompleted = errors.New("purchase already completed")
)
