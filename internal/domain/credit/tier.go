package credit

import (
	"fmt"
)

// Tier サブスクリプションティアを表す値オブジェクト
// 利用者タイプごとに有効なティアが異なる（couple: free/premium/top、
// planner: free/starter/professional/top）
type Tier string

const (
	TierFree         Tier = "free"
	TierPremium      Tier = "premium"      // couple専用
	TierStarter      Tier = "starter"      // planner専用
	TierProfessional Tier = "professional" // planner専用
	TierTop          Tier = "top"
)

// tiersByUserType 利用者タイプごとの有効なティア一覧
var tiersByUserType = map[UserType][]Tier{
	UserTypeCouple:  {TierFree, TierPremium, TierTop},
	UserTypePlanner: {TierFree, TierStarter, TierProfessional, TierTop},
}

// NewTier 新しいTierを作成（利用者タイプに対する有効性も検証する）
func NewTier(userType UserType, s string) (Tier, error) {
	t := Tier(s)
	if !t.ValidFor(userType) {
		return "", fmt.Errorf("invalid tier %q for user type %q", s, userType)
	}
	return t, nil
}

// String 文字列表現を返す
func (t Tier) String() string {
	return string(t)
}

// ValidFor 指定された利用者タイプに対して有効なティアかどうかを返す
func (t Tier) ValidFor(userType UserType) bool {
	for _, valid := range tiersByUserType[userType] {
		if t == valid {
			return true
		}
	}
	return false
}

// TiersFor 利用者タイプに対する有効なティア一覧を返す
func TiersFor(userType UserType) []Tier {
	tiers := make([]Tier, len(tiersByUserType[userType]))
	copy(tiers, tiersByUserType[userType])
	return tiers
}
