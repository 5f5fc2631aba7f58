package purchase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPurchase(t *testing.T) {
	tests := []struct {
		name       string
		purchaseID string
		userID     string
		credits    int64
		amount     int64
		wantError  bool
	}{
		{name: "正常系: 購入の作成", purchaseID: "pay_abc123", userID: "user123", credits: 100, amount: 499},
		{name: "異常系: 空の購入ID", purchaseID: "", userID: "user123", credits: 100, amount: 499, wantError: true},
		{name: "異常系: 空のユーザーID", purchaseID: "pay_abc123", userID: "", credits: 100, amount: 499, wantError: true},
		{name: "異常系: クレジット数0", purchaseID: "pay_abc123", userID: "user123", credits: 0, amount: 499, wantError: true},
		{name: "異常系: マイナスの支払金額", purchaseID: "pay_abc123", userID: "user123", credits: 100, amount: -1, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPurchase(tt.purchaseID, tt.userID, tt.credits, tt.amount, "USD")
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.purchaseID, got.PurchaseID())
				assert.Equal(t, tt.userID, got.UserID())
				assert.Equal(t, tt.credits, got.Credits())
				assert.Equal(t, tt.amount, got.Amount())
				assert.Equal(t, "USD", got.Currency())
				assert.Equal(t, PurchaseStatusPending, got.Status())
				assert.True(t, got.IsPending())
			}
		})
	}
}

func TestPurchase_StatusTransitions(t *testing.T) {
	t.Run("正常系: 完了で付与トランザクションIDが記録される", func(t *testing.T) {
		p := MustNewPurchase("pay_abc123", "user123", 100, 499, "USD")
		p.Complete("txn_1700000000_abcd1234")
		assert.True(t, p.IsCompleted())
		assert.False(t, p.IsPending())
		assert.Equal(t, "txn_1700000000_abcd1234", p.TransactionID())
	})

	t.Run("正常系: 失敗状態への遷移", func(t *testing.T) {
		p := MustNewPurchase("pay_abc123", "user123", 100, 499, "USD")
		p.Fail()
		assert.Equal(t, PurchaseStatusFailed, p.Status())
		assert.False(t, p.IsCompleted())
		assert.False(t, p.IsPending())
	})
}
