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

	"aisle-server/internal/domain/credit"
)

// LedgerRepository MySQL実装のLedgerRepository
type LedgerRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewLedgerRepository 新しいLedgerRepositoryを作成
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{
		db:     db,
		tracer: otel.Tracer("ledger-repository"),
	}
}

// FindByUserID ユーザーIDで台帳を取得
func (r *LedgerRepository) FindByUserID(ctx context.Context, userID string) (*credit.Ledger, error) {
	ctx, span := r.tracer.Start(ctx, "LedgerRepository.FindByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "user_credits"),
	)

	query := `
		SELECT user_id, user_type, tier, allotment, bonus, total_used, last_refresh, version
		FROM user_credits
		WHERE user_id = ?
	`

	var dbUserID string
	var dbUserType string
	var dbTier string
	var allotment, bonus, totalUsed int64
	var lastRefresh time.Time
	var version int

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&dbUserID,
		&dbUserType,
		&dbTier,
		&allotment,
		&bonus,
		&totalUsed,
		&lastRefresh,
		&version,
	)

	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "ledger not found")
		return nil, credit.ErrLedgerNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find ledger: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("db.allotment", allotment),
		attribute.Int64("db.bonus", bonus),
		attribute.Int("db.version", version),
	)
	span.SetStatus(otelcodes.Ok, "ledger found")

	userType, err := credit.NewUserType(dbUserType)
	if err != nil {
		return nil, fmt.Errorf("invalid user type: %w", err)
	}

	tier, err := credit.NewTier(userType, dbTier)
	if err != nil {
		return nil, fmt.Errorf("invalid tier: %w", err)
	}

	ledger, err := credit.NewLedger(dbUserID, userType, tier, allotment, bonus, totalUsed, lastRefresh, version)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct ledger entity: %w", err)
	}

	return ledger, nil
}

// Save 台帳を保存（更新、楽観的ロック対応）
//
// ドメイン側で変更時にversionをインクリメント済みのため、
// WHERE句では変更前のversion（version - 1）と比較する。
func (r *LedgerRepository) Save(ctx context.Context, ledger *credit.Ledger) error {
	ctx, span := r.tracer.Start(ctx, "LedgerRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", ledger.UserID()),
		attribute.Int64("db.allotment", ledger.Allotment()),
		attribute.Int64("db.bonus", ledger.Bonus()),
		attribute.Int("db.version", ledger.Version()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "user_credits"),
	)

	query := `
		UPDATE user_credits
		SET user_type = ?, tier = ?, allotment = ?, bonus = ?, total_used = ?,
			last_refresh = ?, version = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		ledger.UserType().String(),
		ledger.Tier().String(),
		ledger.Allotment(),
		ledger.Bonus(),
		ledger.TotalUsed(),
		ledger.LastRefresh(),
		ledger.Version(),
		ledger.UserID(),
		ledger.Version()-1,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save ledger: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err := fmt.Errorf("optimistic lock failed: version mismatch or ledger not found")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	span.SetStatus(otelcodes.Ok, "ledger saved")
	return nil
}

// Create 新しい台帳を作成
func (r *LedgerRepository) Create(ctx context.Context, ledger *credit.Ledger) error {
	ctx, span := r.tracer.Start(ctx, "LedgerRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", ledger.UserID()),
		attribute.String("db.user_type", ledger.UserType().String()),
		attribute.String("db.tier", ledger.Tier().String()),
		attribute.Int64("db.allotment", ledger.Allotment()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "user_credits"),
	)

	// ユーザーが存在するか確認（存在しない場合は作成）
	if err := r.ensureUserExists(ctx, ledger.UserID()); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to ensure user exists: %w", err)
	}

	query := `
		INSERT INTO user_credits (user_id, user_type, tier, allotment, bonus, total_used, last_refresh, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			tier = VALUES(tier),
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query,
		ledger.UserID(),
		ledger.UserType().String(),
		ledger.Tier().String(),
		ledger.Allotment(),
		ledger.Bonus(),
		ledger.TotalUsed(),
		ledger.LastRefresh(),
		ledger.Version(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create ledger: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "ledger created")
	return nil
}

// ensureUserExists ユーザーが存在することを確認（存在しない場合は作成）
func (r *LedgerRepository) ensureUserExists(ctx context.Context, userID string) error {
	query := `
		INSERT INTO users (user_id)
		VALUES (?)
		ON DUPLICATE KEY UPDATE updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to ensure user exists: %w", err)
	}

	return nil
}
