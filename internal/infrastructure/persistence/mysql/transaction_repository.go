package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aisle-server/internal/domain/credit"
	"aisle-server/internal/domain/transaction"
)

// TransactionRepository MySQL実装のTransactionRepository
type TransactionRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewTransactionRepository 新しいTransactionRepositoryを作成
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		tracer: otel.Tracer("transaction-repository"),
	}
}

// Save トランザクションを追記
func (r *TransactionRepository) Save(ctx context.Context, t *transaction.Transaction) error {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.transaction_id", t.TransactionID()),
		attribute.String("db.user_id", t.UserID()),
		attribute.String("db.transaction_type", t.TransactionType().String()),
		attribute.String("db.feature", t.Feature().String()),
		attribute.Int64("db.amount", t.Amount()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "credit_transactions"),
	)

	query := `
		INSERT INTO credit_transactions (
			transaction_id, user_id, transaction_type, feature,
			amount, from_allotment, from_bonus, balance_after,
			description, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var metadataJSON []byte
	var err error
	if t.Metadata() != nil {
		metadataJSON, err = json.Marshal(t.Metadata())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		t.TransactionID(),
		t.UserID(),
		t.TransactionType().String(),
		t.Feature().String(),
		t.Amount(),
		t.FromAllotment(),
		t.FromBonus(),
		t.BalanceAfter(),
		t.Description(),
		string(metadataJSON),
		t.CreatedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		var mysqlErr *gomysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return transaction.ErrDuplicateTransactionID
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "transaction saved")
	return nil
}

// FindByTransactionID トランザクションIDでトランザクションを取得
func (r *TransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.FindByTransactionID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.transaction_id", transactionID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "credit_transactions"),
	)

	query := `
		SELECT
			transaction_id, user_id, transaction_type, feature,
			amount, from_allotment, from_bonus, balance_after,
			description, metadata, created_at
		FROM credit_transactions
		WHERE transaction_id = ?
	`

	t, err := r.scanTransaction(r.db.QueryRowContext(ctx, query, transactionID))
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "transaction not found")
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("db.user_id", t.UserID()),
		attribute.String("db.transaction_type", t.TransactionType().String()),
	)
	span.SetStatus(otelcodes.Ok, "transaction found")
	return t, nil
}

// FindByUserID ユーザーIDでトランザクション一覧を取得（作成日時の降順、ページネーション対応）
//
// 絞り込み条件はWHERE句で適用されるため、ページは常に条件に合致する
// レコードだけで埋まる。
func (r *TransactionRepository) FindByUserID(ctx context.Context, userID string, filter transaction.Filter, limit, offset int) ([]*transaction.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.FindByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.String("db.filter.transaction_type", filter.TransactionType),
		attribute.String("db.filter.feature", filter.Feature),
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "credit_transactions"),
	)

	query := `
		SELECT
			transaction_id, user_id, transaction_type, feature,
			amount, from_allotment, from_bonus, balance_after,
			description, metadata, created_at
		FROM credit_transactions
		WHERE user_id = ?
	`
	args := []interface{}{userID}

	if filter.TransactionType != "" {
		query += ` AND transaction_type = ?`
		args = append(args, filter.TransactionType)
	}
	if filter.Feature != "" {
		query += ` AND feature = ?`
		args = append(args, filter.Feature)
	}

	query += `
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		t, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	span.SetAttributes(attribute.Int("db.result_count", len(transactions)))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("found %d transactions", len(transactions)))
	return transactions, nil
}

// rowScanner sql.Rowとsql.Rowsの共通スキャンインターフェース
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTransaction 1行からトランザクションエンティティを復元する
func (r *TransactionRepository) scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var dbTransactionID, dbUserID, dbTransactionType, dbFeature string
	var amount, fromAllotment, fromBonus, balanceAfter int64
	var description sql.NullString
	var metadataJSON sql.NullString
	var createdAt time.Time

	if err := row.Scan(
		&dbTransactionID,
		&dbUserID,
		&dbTransactionType,
		&dbFeature,
		&amount,
		&fromAllotment,
		&fromBonus,
		&balanceAfter,
		&description,
		&metadataJSON,
		&createdAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tt, err := transaction.NewTransactionType(dbTransactionType)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type: %w", err)
	}

	var metadata map[string]string
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	t, err := transaction.NewTransaction(
		dbTransactionID,
		dbUserID,
		tt,
		credit.Feature(dbFeature),
		amount,
		fromAllotment,
		fromBonus,
		balanceAfter,
		description.String,
		metadata,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct transaction entity: %w", err)
	}
	t.SetCreatedAt(createdAt)

	return t, nil
}
