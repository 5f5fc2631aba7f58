package policy

import (
	"fmt"
	"time"
)

// Cadence 定期配布クレジットのリフレッシュ周期を表す値オブジェクト
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceMonthly Cadence = "monthly"
	CadenceYearly  Cadence = "yearly"
)

// NewCadence 新しいCadenceを作成
func NewCadence(s string) (Cadence, error) {
	switch s {
	case "daily", "monthly", "yearly":
		return Cadence(s), nil
	default:
		return "", fmt.Errorf("invalid refresh cadence: %s", s)
	}
}

// String 文字列表現を返す
func (c Cadence) String() string {
	return string(c)
}

// Valid 有効な周期かどうかを返す
func (c Cadence) Valid() bool {
	switch c {
	case CadenceDaily, CadenceMonthly, CadenceYearly:
		return true
	default:
		return false
	}
}

// Due リフレッシュ期限が到来しているかどうかを返す
//
// daily: 前回リフレッシュから24時間を厳密に超えた場合のみ
// （「暦日が変わったか」ではない。クロックずれやタイムゾーン境界での
// 二重リフレッシュを避けるための保守的な判定）。
// monthly/yearly: 暦上の1ヶ月/1年を前回リフレッシュに加算した時刻を
// 現在時刻が超えている場合（経過時間ではなく暦計算）。
func (c Cadence) Due(lastRefresh, now time.Time) bool {
	switch c {
	case CadenceDaily:
		return now.Sub(lastRefresh) > 24*time.Hour
	case CadenceMonthly:
		return now.After(lastRefresh.AddDate(0, 1, 0))
	case CadenceYearly:
		return now.After(lastRefresh.AddDate(1, 0, 0))
	default:
		return false
	}
}
