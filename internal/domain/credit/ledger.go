package credit

import (
	"regexp"
	"time"
)

const (
	// MaxAmount 最大クレジット数 (10億)
	MaxAmount = 1_000_000_000
)

var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)

// Ledger ユーザーごとのクレジット台帳エンティティ
//
// allotmentはポリシーのリフレッシュ周期でリセットされる定期配布バケット、
// bonusは購入・プロモーションで追加され失効しないバケット。
// 消費は必ずallotment→bonusの順で行われる。
type Ledger struct {
	userID      string
	userType    UserType
	tier        Tier
	allotment   int64 // 定期配布クレジット（リフレッシュでリセット、繰り越しなし）
	bonus       int64 // ボーナスクレジット（失効なし、リフレッシュ対象外）
	totalUsed   int64 // 累計消費数（単調増加）
	lastRefresh time.Time
	version     int // 楽観的ロック用
	createdAt   time.Time
	updatedAt   time.Time
}

// DeductionBreakdown 消費のバケット内訳
type DeductionBreakdown struct {
	FromAllotment int64
	FromBonus     int64
}

// NewLedger 新しいLedgerエンティティを作成
func NewLedger(
	userID string,
	userType UserType,
	tier Tier,
	allotment int64,
	bonus int64,
	totalUsed int64,
	lastRefresh time.Time,
	version int,
) (*Ledger, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, ErrInvalidUserID
	}
	if !userType.Valid() {
		return nil, ErrInvalidUserType
	}
	if !tier.ValidFor(userType) {
		return nil, ErrInvalidTier
	}
	if allotment < 0 || allotment > MaxAmount || bonus < 0 || bonus > MaxAmount {
		return nil, ErrBalanceOutOfRange
	}
	if totalUsed < 0 {
		return nil, ErrBalanceOutOfRange
	}

	now := time.Now()
	return &Ledger{
		userID:      userID,
		userType:    userType,
		tier:        tier,
		allotment:   allotment,
		bonus:       bonus,
		totalUsed:   totalUsed,
		lastRefresh: lastRefresh,
		version:     version,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// UserID ユーザーIDを返す
func (l *Ledger) UserID() string {
	return l.userID
}

// UserType 利用者タイプを返す
func (l *Ledger) UserType() UserType {
	return l.userType
}

// Tier サブスクリプションティアを返す
func (l *Ledger) Tier() Tier {
	return l.tier
}

// Allotment 定期配布クレジット残高を返す
func (l *Ledger) Allotment() int64 {
	return l.allotment
}

// Bonus ボーナスクレジット残高を返す
func (l *Ledger) Bonus() int64 {
	return l.bonus
}

// Available 消費可能な合計残高を返す
func (l *Ledger) Available() int64 {
	return l.allotment + l.bonus
}

// TotalUsed 累計消費数を返す
func (l *Ledger) TotalUsed() int64 {
	return l.totalUsed
}

// LastRefresh 最後にリフレッシュした日時を返す
func (l *Ledger) LastRefresh() time.Time {
	return l.lastRefresh
}

// Version バージョンを返す（楽観的ロック用）
func (l *Ledger) Version() int {
	return l.version
}

// CreatedAt 作成日時を返す
func (l *Ledger) CreatedAt() time.Time {
	return l.createdAt
}

// UpdatedAt 更新日時を返す
func (l *Ledger) UpdatedAt() time.Time {
	return l.updatedAt
}

// Deduct クレジットを消費する
//
// allotmentから先に消費し、不足分をbonusから消費する。
// 合計残高が不足する場合は一切残高を変更せずErrInsufficientCreditsを返す。
func (l *Ledger) Deduct(cost int64) (DeductionBreakdown, error) {
	if cost <= 0 {
		return DeductionBreakdown{}, ErrInvalidAmount
	}
	if cost > MaxAmount {
		return DeductionBreakdown{}, ErrAmountTooLarge
	}
	if l.Available() < cost {
		return DeductionBreakdown{}, ErrInsufficientCredits
	}

	fromAllotment := cost
	if fromAllotment > l.allotment {
		fromAllotment = l.allotment
	}
	fromBonus := cost - fromAllotment

	l.allotment -= fromAllotment
	l.bonus -= fromBonus
	l.totalUsed += cost
	l.version++
	l.updatedAt = time.Now()

	return DeductionBreakdown{
		FromAllotment: fromAllotment,
		FromBonus:     fromBonus,
	}, nil
}

// AddBonus ボーナスクレジットを追加する（allotmentとtotalUsedには触れない）
func (l *Ledger) AddBonus(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxAmount {
		return ErrAmountTooLarge
	}
	// オーバーフローチェック
	if l.bonus > MaxAmount-amount {
		return ErrBalanceOutOfRange
	}
	l.bonus += amount
	l.version++
	l.updatedAt = time.Now()
	return nil
}

// Refresh 定期配布クレジットをリセットする
//
// 加算ではなくリセット（未使用分は破棄、繰り越しなし）。bonusには触れない。
func (l *Ledger) Refresh(amount int64, now time.Time) error {
	if amount < 0 || amount > MaxAmount {
		return ErrInvalidAmount
	}
	l.allotment = amount
	l.lastRefresh = now
	l.version++
	l.updatedAt = now
	return nil
}

// IncrementVersion バージョンをインクリメント（楽観的ロック用）
func (l *Ledger) IncrementVersion() {
	l.version++
}

// MustNewLedger テスト用ヘルパー: NewLedgerを呼び出し、エラーが発生した場合はpanicする
func MustNewLedger(
	userID string,
	userType UserType,
	tier Tier,
	allotment int64,
	bonus int64,
	totalUsed int64,
	lastRefresh time.Time,
	version int,
) *Ledger {
	l, err := NewLedger(userID, userType, tier, allotment, bonus, totalUsed, lastRefresh, version)
	if err != nil {
		panic(err)
	}
	return l
}
