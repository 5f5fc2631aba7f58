package purchase

// ProcessPurchaseRequest クレジットパック購入処理リクエスト
//
// PurchaseIDは決済プロバイダ側の識別子で、冪等性キーとして扱う。
type ProcessPurchaseRequest struct {
	PurchaseID  string
	UserID      string
	UserType    string
	Tier        string
	Credits     int64
	Amount      int64 // 決済金額（最小通貨単位）
	Currency    string
	Description string
}

// ProcessPurchaseResponse クレジットパック購入処理レスポンス
type ProcessPurchaseResponse struct {
	PurchaseID    string
	TransactionID string
	CreditsAdded  int64
	BalanceAfter  int64
	Status        string
}
