package policy

import (
	"fmt"

	"aisle-server/internal/domain/credit"
)

// Plan ティアごとのクレジットポリシー
type Plan struct {
	MonthlyCredits int64            // リフレッシュ時に配布されるクレジット数
	Refresh        Cadence          // リフレッシュ周期
	Features       []credit.Feature // このティアで利用できるAI機能
}

// plans (利用者タイプ × ティア) → プランの静的テーブル
//
// デプロイ時に確定する設定であり、実行時には変更されない。
// 上位ティアは下位ティアの機能を包含する（ポリシー上の選択であり、
// テーブル構造としては強制しない）。
var plans = map[credit.UserType]map[credit.Tier]Plan{
	credit.UserTypeCouple: {
		credit.TierFree: {
			MonthlyCredits: 15,
			Refresh:        CadenceDaily,
			Features: []credit.Feature{
				credit.FeatureDraftMessaging,
				credit.FeatureTodoGeneration,
			},
		},
		credit.TierPremium: {
			MonthlyCredits: 150,
			Refresh:        CadenceMonthly,
			Features: []credit.Feature{
				credit.FeatureDraftMessaging,
				credit.FeatureTodoGeneration,
				credit.FeatureVendorSuggestions,
				credit.FeatureBudgetInsights,
			},
		},
		credit.TierTop: {
			MonthlyCredits: 500,
			Refresh:        CadenceMonthly,
			Features: []credit.Feature{
				credit.FeatureDraftMessaging,
				credit.FeatureTodoGeneration,
				credit.FeatureVendorSuggestions,
				credit.FeatureBudgetInsights,
				credit.FeatureSeatingPlanner,
			},
		},
	},
	credit.UserTypePlanner: {
		credit.TierFree: {
			MonthlyCredits: 10,
			Refresh:        CadenceDaily,
			Features: []credit.Feature{
				credit.FeatureDraftMessaging,
			},
		},
		credit.TierStarter: {
			MonthlyCredits: 200,
			Refresh:        CadenceMonthly,
			Features: []credit.Feature{
				credit.FeatureDraftMessaging,
				credit.FeatureTodoGeneration,
				credit.FeatureVendorSuggestions,
			},
		},
		credit.TierProfessional: {
			MonthlyCredits: 1000,
			Refresh:        CadenceMonthly,
			Features: []credit.Feature{
				credit.FeatureDraftMessaging,
				credit.FeatureTodoGeneration,
				credit.FeatureVendorSuggestions,
				credit.FeatureBudgetInsights,
				credit.FeatureClientReport,
			},
		},
		credit.TierTop: {
			MonthlyCredits: 12000,
			Refresh:        CadenceYearly,
			Features: []credit.Feature{
				credit.FeatureDraftMessaging,
				credit.FeatureTodoGeneration,
				credit.FeatureVendorSuggestions,
				credit.FeatureBudgetInsights,
				credit.FeatureSeatingPlanner,
				credit.FeatureClientReport,
			},
		},
	},
}

// featureCosts 利用者タイプごとの機能別コスト
//
// テーブルにない機能のコストは1クレジット。
// 同じ機能でもcoupleとplannerでコストが異なる場合がある。
var featureCosts = map[credit.UserType]map[credit.Feature]int64{
	credit.UserTypeCouple: {
		credit.FeatureVendorSuggestions: 2,
		credit.FeatureBudgetInsights:    2,
		credit.FeatureSeatingPlanner:    5,
	},
	credit.UserTypePlanner: {
		credit.FeatureVendorSuggestions: 3,
		credit.FeatureBudgetInsights:    3,
		credit.FeatureClientReport:      5,
	},
}

// DefaultCost コストテーブルにない機能のデフォルトコスト
const DefaultCost int64 = 1

// PlanFor 利用者タイプとティアに対するプランを取得
func PlanFor(userType credit.UserType, tier credit.Tier) (Plan, error) {
	tierPlans, ok := plans[userType]
	if !ok {
		return Plan{}, fmt.Errorf("no plans for user type %q", userType)
	}
	plan, ok := tierPlans[tier]
	if !ok {
		return Plan{}, fmt.Errorf("no plan for user type %q tier %q", userType, tier)
	}
	return plan, nil
}

// Cost 機能のコストを取得（テーブルにない場合は1）
func Cost(userType credit.UserType, feature credit.Feature) int64 {
	if costs, ok := featureCosts[userType]; ok {
		if cost, ok := costs[feature]; ok {
			return cost
		}
	}
	return DefaultCost
}

// Allows 指定されたティアで機能が利用できるかどうかを返す
func Allows(userType credit.UserType, tier credit.Tier, feature credit.Feature) bool {
	plan, err := PlanFor(userType, tier)
	if err != nil {
		return false
	}
	for _, f := range plan.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// Validate ポリシーテーブルの網羅性を検証する
//
// 起動時にmainから呼び出す。有効な(利用者タイプ, ティア)の全組み合わせに
// プランが定義されていない場合はエラー（暗黙のデフォルトで誤魔化さない）。
func Validate() error {
	for _, userType := range []credit.UserType{credit.UserTypeCouple, credit.UserTypePlanner} {
		for _, tier := range credit.TiersFor(userType) {
			plan, err := PlanFor(userType, tier)
			if err != nil {
				return err
			}
			if plan.MonthlyCredits <= 0 {
				return fmt.Errorf("plan %s/%s has non-positive monthly credits", userType, tier)
			}
			if !plan.Refresh.Valid() {
				return fmt.Errorf("plan %s/%s has invalid refresh cadence %q", userType, tier, plan.Refresh)
			}
			if len(plan.Features) == 0 {
				return fmt.Errorf("plan %s/%s has no features", userType, tier)
			}
			for _, f := range plan.Features {
				if !f.Valid() {
					return fmt.Errorf("plan %s/%s lists invalid feature %q", userType, tier, f)
				}
			}
		}
	}
	for userType, costs := range featureCosts {
		if !userType.Valid() {
			return fmt.Errorf("cost table keyed by invalid user type %q", userType)
		}
		for f, cost := range costs {
			if !f.Valid() {
				return fmt.Errorf("cost table lists invalid feature %q", f)
			}
			if cost <= 0 {
				return fmt.Errorf("cost for %s/%s is non-positive", userType, f)
			}
		}
	}
	return nil
}
