package credit

import (
	"fmt"
)

// Feature AI機能を表す値オブジェクト
type Feature string

const (
	FeatureDraftMessaging    Feature = "draft_messaging"    // ゲスト・業者向けメッセージの下書き生成
	FeatureTodoGeneration    Feature = "todo_generation"    // 準備タスクの自動生成
	FeatureVendorSuggestions Feature = "vendor_suggestions" // 業者のレコメンド
	FeatureBudgetInsights    Feature = "budget_insights"    // 予算分析
	FeatureSeatingPlanner    Feature = "seating_planner"    // 席次表の自動作成
	FeatureClientReport      Feature = "client_report"      // プランナー向けクライアントレポート

	// FeatureBonus 消費以外のトランザクション（購入・プロモーション）に
	// 紐付ける擬似機能
	FeatureBonus Feature = "bonus"
)

// allFeatures 課金対象のAI機能一覧（擬似機能は含まない）
var allFeatures = []Feature{
	FeatureDraftMessaging,
	FeatureTodoGeneration,
	FeatureVendorSuggestions,
	FeatureBudgetInsights,
	FeatureSeatingPlanner,
	FeatureClientReport,
}

// NewFeature 新しいFeatureを作成（擬似機能bonusは受け付けない）
func NewFeature(s string) (Feature, error) {
	f := Feature(s)
	for _, valid := range allFeatures {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid feature: %s", s)
}

// String 文字列表現を返す
func (f Feature) String() string {
	return string(f)
}

// Valid 課金対象のAI機能かどうかを返す
func (f Feature) Valid() bool {
	for _, valid := range allFeatures {
		if f == valid {
			return true
		}
	}
	return false
}

// AllFeatures 課金対象のAI機能一覧を返す
func AllFeatures() []Feature {
	features := make([]Feature, len(allFeatures))
	copy(features, allFeatures)
	return features
}
