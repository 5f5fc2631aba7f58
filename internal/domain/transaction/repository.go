package transaction

import (
	"context"
	"database/sql"
)

// Filter 履歴検索の絞り込み条件（ゼロ値は絞り込みなし）
//
// 絞り込みはLIMIT/OFFSETの適用前に行われる。検証済みの値のみを
// 渡すこと（未知の値は0件にマッチするだけで、エラーにはならない）。
type Filter struct {
	TransactionType string
	Feature         string
}

// TransactionRepository クレジットトランザクションリポジトリインターフェース
//
// トランザクションは追記専用であり、更新・削除のメソッドは提供しない。
type TransactionRepository interface {
	// Save トランザクションを追記
	Save(ctx context.Context, transaction *Transaction) error

	// FindByTransactionID トランザクションIDでトランザクションを取得
	FindByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)

	// FindByUserID ユーザーIDでトランザクション一覧を取得（作成日時の降順、ページネーション対応）
	FindByUserID(ctx context.Context, userID string, filter Filter, limit, offset int) ([]*Transaction, error)
}

// TransactionManager トランザクション管理インターフェース
type TransactionManager interface {
	// WithTransaction トランザクション内で関数を実行
	WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error
}
