package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aisle-server/internal/domain/promocode"
)

// PromoCodeRepository MySQL実装のPromoCodeRepository
type PromoCodeRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewPromoCodeRepository 新しいPromoCodeRepositoryを作成
func NewPromoCodeRepository(db *DB) *PromoCodeRepository {
	return &PromoCodeRepository{
		db:     db,
		tracer: otel.Tracer("promo-code-repository"),
	}
}

// FindByCode コードでプロモーションコードを取得
func (r *PromoCodeRepository) FindByCode(ctx context.Context, code string) (*promocode.PromoCode, error) {
	ctx, span := r.tracer.Start(ctx, "PromoCodeRepository.FindByCode")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "promo_codes"),
	)

	query := `
		SELECT
			code, credits, max_uses, current_uses,
			valid_from, valid_until, status, description,
			created_at, updated_at
		FROM promo_codes
		WHERE code = ?
	`

	var dbCode, dbStatus string
	var credits int64
	var maxUses, currentUses int
	var validFrom, validUntil time.Time
	var description sql.NullString
	var createdAt, updatedAt time.Time

	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&dbCode,
		&credits,
		&maxUses,
		&currentUses,
		&validFrom,
		&validUntil,
		&dbStatus,
		&description,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "promo code not found")
		return nil, promocode.ErrCodeNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find promo code: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("db.credits", credits),
		attribute.String("db.status", dbStatus),
	)
	span.SetStatus(otelcodes.Ok, "promo code found")

	status, err := promocode.NewCodeStatus(dbStatus)
	if err != nil {
		return nil, fmt.Errorf("invalid code status: %w", err)
	}

	pc, err := promocode.NewPromoCode(dbCode, credits, maxUses, validFrom, validUntil, description.String)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct promo code entity: %w", err)
	}

	// current_usesとstatusを設定
	pc.SetCurrentUses(currentUses)
	pc.SetStatus(status)

	return pc, nil
}

// Update プロモーションコードを更新
func (r *PromoCodeRepository) Update(ctx context.Context, code *promocode.PromoCode) error {
	ctx, span := r.tracer.Start(ctx, "PromoCodeRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code.Code()),
		attribute.Int("db.current_uses", code.CurrentUses()),
		attribute.String("db.status", code.Status().String()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "promo_codes"),
	)

	query := `
		UPDATE promo_codes
		SET
			current_uses = ?,
			status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE code = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		code.CurrentUses(),
		code.Status().String(),
		code.Code(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to update promo code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	span.SetStatus(otelcodes.Ok, "promo code updated")
	return nil
}

// HasUserRedeemed ユーザーが既にこのコードを引き換え済みかチェック
func (r *PromoCodeRepository) HasUserRedeemed(ctx context.Context, code string, userID string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "PromoCodeRepository.HasUserRedeemed")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.code", code),
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "code_redemptions"),
	)

	query := `
		SELECT COUNT(*)
		FROM code_redemptions
		WHERE code = ? AND user_id = ?
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, code, userID).Scan(&count)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to check redemption: %w", err)
	}

	span.SetAttributes(attribute.Int("db.count", count))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("user redeemed: %v", count > 0))
	return count > 0, nil
}

// SaveRedemption 引き換え履歴を保存
func (r *PromoCodeRepository) SaveRedemption(ctx context.Context, redemption *promocode.Redemption) error {
	ctx, span := r.tracer.Start(ctx, "PromoCodeRepository.SaveRedemption")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.redemption_id", redemption.RedemptionID()),
		attribute.String("db.code", redemption.Code()),
		attribute.String("db.user_id", redemption.UserID()),
		attribute.String("db.transaction_id", redemption.TransactionID()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "code_redemptions"),
	)

	query := `
		INSERT INTO code_redemptions (
			redemption_id, code, user_id, transaction_id, redeemed_at
		) VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		redemption.RedemptionID(),
		redemption.Code(),
		redemption.UserID(),
		redemption.TransactionID(),
		redemption.RedeemedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save redemption: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "redemption saved")
	return nil
}
