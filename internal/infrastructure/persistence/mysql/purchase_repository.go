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

	"aisle-server/internal/domain/purchase"
)

// PurchaseRepository MySQL実装のPurchaseRepository
type PurchaseRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewPurchaseRepository 新しいPurchaseRepositoryを作成
func NewPurchaseRepository(db *DB) *PurchaseRepository {
	return &PurchaseRepository{
		db:     db,
		tracer: otel.Tracer("purchase-repository"),
	}
}

// Save 購入を保存
func (r *PurchaseRepository) Save(ctx context.Context, p *purchase.Purchase) error {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.purchase_id", p.PurchaseID()),
		attribute.String("db.user_id", p.UserID()),
		attribute.Int64("db.credits", p.Credits()),
		attribute.String("db.status", p.Status().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "credit_purchases"),
	)

	query := `
		INSERT INTO credit_purchases (
			purchase_id, user_id, credits, amount, currency,
			status, transaction_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var transactionID interface{}
	if p.TransactionID() != "" {
		transactionID = p.TransactionID()
	}

	_, err := r.db.ExecContext(ctx, query,
		p.PurchaseID(),
		p.UserID(),
		p.Credits(),
		p.Amount(),
		p.Currency(),
		p.Status().String(),
		transactionID,
		p.CreatedAt(),
		p.UpdatedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save purchase: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "purchase saved")
	return nil
}

// FindByPurchaseID 購入IDで購入を取得
func (r *PurchaseRepository) FindByPurchaseID(ctx context.Context, purchaseID string) (*purchase.Purchase, error) {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.FindByPurchaseID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.purchase_id", purchaseID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "credit_purchases"),
	)

	query := `
		SELECT
			purchase_id, user_id, credits, amount, currency,
			status, transaction_id, created_at, updated_at
		FROM credit_purchases
		WHERE purchase_id = ?
	`

	var dbPurchaseID, dbUserID, dbCurrency, dbStatus string
	var credits, amount int64
	var transactionID sql.NullString
	var createdAt, updatedAt time.Time

	err := r.db.QueryRowContext(ctx, query, purchaseID).Scan(
		&dbPurchaseID,
		&dbUserID,
		&credits,
		&amount,
		&dbCurrency,
		&dbStatus,
		&transactionID,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "purchase not found")
		return nil, purchase.ErrPurchaseNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}

	span.SetAttributes(
		attribute.String("db.user_id", dbUserID),
		attribute.String("db.status", dbStatus),
	)
	span.SetStatus(otelcodes.Ok, "purchase found")

	p, err := purchase.NewPurchase(dbPurchaseID, dbUserID, credits, amount, dbCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct purchase entity: %w", err)
	}

	// statusとtransaction_idを設定
	p.SetStatus(purchase.PurchaseStatus(dbStatus))
	if transactionID.Valid {
		p.SetTransactionID(transactionID.String)
	}

	return p, nil
}

// Update 購入を更新
func (r *PurchaseRepository) Update(ctx context.Context, p *purchase.Purchase) error {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.purchase_id", p.PurchaseID()),
		attribute.String("db.status", p.Status().String()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "credit_purchases"),
	)

	query := `
		UPDATE credit_purchases
		SET status = ?, transaction_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE purchase_id = ?
	`

	var transactionID interface{}
	if p.TransactionID() != "" {
		transactionID = p.TransactionID()
	}

	result, err := r.db.ExecContext(ctx, query,
		p.Status().String(),
		transactionID,
		p.PurchaseID(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to update purchase: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err := purchase.ErrPurchaseNotFound
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	span.SetStatus(otelcodes.Ok, "purchase updated")
	return nil
}
