package purchase

import (
	"context"
)

// PurchaseRepository クレジット購入リポジトリインターフェース
type PurchaseRepository interface {
	// Save 購入を保存
	Save(ctx context.Context, purchase *Purchase) error

	// FindByPurchaseID 購入IDで購入を取得
	FindByPurchaseID(ctx context.Context, purchaseID string) (*Purchase, error)

	// Update 購入を更新
	Update(ctx context.Context, purchase *Purchase) error
}
