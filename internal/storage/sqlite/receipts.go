package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

// CreateReceipt persists a new receipt and its items.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, user_id, store_name, date, image_url, subtotal, tax, total, subtotal_mismatch, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.UserID, receipt.StoreName, receipt.Date, receipt.ImageURL,
		receipt.Subtotal.String(), receipt.Tax.String(), receipt.Total.String(),
		receipt.SubtotalMismatch, receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	for i := range receipt.Items {
		item := &receipt.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO receipt_items (id, receipt_id, name, unit_price, quantity, position) VALUES (?, ?, ?, ?, ?, ?)",
			item.ID, receipt.ID, item.Name, item.UnitPrice.String(), item.Quantity, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert receipt item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReceipt retrieves a receipt by ID, including its items in stored order.
func (s *SQLiteStore) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	var subtotal, tax, total string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, store_name, date, image_url, subtotal, tax, total, subtotal_mismatch, created_at
		 FROM receipts WHERE id = ?`,
		receiptID,
	).Scan(&receipt.ID, &receipt.UserID, &receipt.StoreName, &receipt.Date, &receipt.ImageURL,
		&subtotal, &tax, &total, &receipt.SubtotalMismatch, &receipt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if receipt.Subtotal, err = parseDecimal("subtotal", subtotal); err != nil {
		return nil, err
	}
	if receipt.Tax, err = parseDecimal("tax", tax); err != nil {
		return nil, err
	}
	if receipt.Total, err = parseDecimal("total", total); err != nil {
		return nil, err
	}

	receipt.Items, err = s.getReceiptItems(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *SQLiteStore) getReceiptItems(ctx context.Context, receiptID string) ([]models.LineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, unit_price, quantity FROM receipt_items WHERE receipt_id = ? ORDER BY position",
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var item models.LineItem
		var unitPrice string
		if err := rows.Scan(&item.ID, &item.Name, &unitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan receipt item: %w", err)
		}
		if item.UnitPrice, err = parseDecimal("unit_price", unitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipt items: %w", err)
	}
	return items, nil
}

// ListReceiptsByUser retrieves a user's receipts, newest first.
func (s *SQLiteStore) ListReceiptsByUser(ctx context.Context, userID string) ([]models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM receipts WHERE user_id = ? ORDER BY created_at DESC, id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan receipt id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	receipts := make([]models.Receipt, 0, len(ids))
	for _, id := range ids {
		receipt, err := s.GetReceipt(ctx, id)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *receipt)
	}
	return receipts, nil
}
