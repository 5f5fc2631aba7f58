package credit

import (
	"context"
)

// LedgerRepository クレジット台帳リポジトリインターフェース
type LedgerRepository interface {
	// FindByUserID ユーザーIDで台帳を取得
	FindByUserID(ctx context.Context, userID string) (*Ledger, error)

	// Save 台帳を保存（更新、楽観的ロック対応）
	Save(ctx context.Context, ledger *Ledger) error

	// Create 新しい台帳を作成
	Create(ctx context.Context, ledger *Ledger) error
}
