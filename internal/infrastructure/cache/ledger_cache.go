package cache

import (
	gocache "github.com/patrickmn/go-cache"

	"aisle-server/internal/domain/credit"
	"aisle-server/internal/infrastructure/config"
)

// LedgerCache 台帳の読み取り専用インメモリキャッシュ
//
// 残高表示の読み取りパスだけで使う短期キャッシュ。消費・追加などの
// 書き込みパスは常にDBを読み、書き込み後はInvalidateで破棄する。
type LedgerCache struct {
	cache   *gocache.Cache
	enabled bool
}

// NewLedgerCache 新しいLedgerCacheを作成
func NewLedgerCache(cfg *config.CacheConfig) *LedgerCache {
	return &LedgerCache{
		cache:   gocache.New(cfg.TTL, cfg.CleanupInterval),
		enabled: cfg.Enabled,
	}
}

// Get ユーザーIDで台帳を取得
func (c *LedgerCache) Get(userID string) (*credit.Ledger, bool) {
	if !c.enabled {
		return nil, false
	}
	v, ok := c.cache.Get(userID)
	if !ok {
		return nil, false
	}
	ledger, ok := v.(*credit.Ledger)
	return ledger, ok
}

// Set 台帳をキャッシュに保存（デフォルトTTL）
func (c *LedgerCache) Set(userID string, ledger *credit.Ledger) {
	if !c.enabled {
		return
	}
	c.cache.SetDefault(userID, ledger)
}

// Invalidate ユーザーIDのキャッシュを破棄
func (c *LedgerCache) Invalidate(userID string) {
	if !c.enabled {
		return
	}
	c.cache.Delete(userID)
}
