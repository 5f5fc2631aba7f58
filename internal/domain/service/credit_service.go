package service

import (
	"context"
	"time"

	"aisle-server/internal/domain/credit"
	"aisle-server/internal/domain/policy"
)

// CreditService クレジット関連のドメインサービス
type CreditService struct {
	ledgerRepo credit.LedgerRepository
}

// NewCreditService 新しいCreditServiceを作成
func NewCreditService(ledgerRepo credit.LedgerRepository) *CreditService {
	return &CreditService{
		ledgerRepo: ledgerRepo,
	}
}

// Quote 機能利用の見積もりを返す
//
// 機能がティアで利用できない場合はErrFeatureNotAvailable。
// アクセス判定はコスト計算より先に行う（残高ゼロでも、まず
// 「そのティアで使えるか」を答える）。
func (s *CreditService) Quote(userType credit.UserType, tier credit.Tier, feature credit.Feature) (int64, error) {
	if !policy.Allows(userType, tier, feature) {
		return 0, credit.ErrFeatureNotAvailable
	}
	return policy.Cost(userType, feature), nil
}

// HasSufficientBalance 指定されたコストを支払える残高があるかチェック
func (s *CreditService) HasSufficientBalance(ctx context.Context, userID string, cost int64) (bool, error) {
	ledger, err := s.ledgerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return ledger.Available() >= cost, nil
}

// RefreshIfDue リフレッシュ周期が到来していればallotmentをリセットする
//
// 台帳を変更した場合はtrueを返す（呼び出し側が保存する）。
// bonusは影響を受けず、未使用のallotmentは繰り越されない。
func (s *CreditService) RefreshIfDue(ledger *credit.Ledger, now time.Time) (bool, error) {
	plan, err := policy.PlanFor(ledger.UserType(), ledger.Tier())
	if err != nil {
		return false, err
	}
	if !plan.Refresh.Due(ledger.LastRefresh(), now) {
		return false, nil
	}
	if err := ledger.Refresh(plan.MonthlyCredits, now); err != nil {
		return false, err
	}
	return true, nil
}
