package credit

import "errors"

var (
	// ErrInsufficientCredits クレジット残高不足エラー
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrInvalidAmount 無効なクレジット数エラー
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountTooLarge クレジット数が大きすぎるエラー
	ErrAmountTooLarge = errors.New("amount too large")
	// ErrBalanceOutOfRange 残高が範囲外エラー
	ErrBalanceOutOfRange = errors.New("balance out of range")
	// ErrInvalidUserID ユーザーIDが無効
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrInvalidUserType 利用者タイプが無効
	ErrInvalidUserType = errors.New("invalid user type")
	// ErrInvalidTier ティアが無効
	ErrInvalidTier = errors.New("invalid tier")
	// ErrLedgerNotFound 台帳が見つからないエラー
	ErrLedgerNotFound = errors.New("credit ledger not found")
	// ErrFeatureNotAvailable ティアで利用できない機能エラー
	ErrFeatureNotAvailable = errors.New("feature not available for tier")
)
