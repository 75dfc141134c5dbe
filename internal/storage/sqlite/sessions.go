package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

// CreateSession persists a new split session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.SplitSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt == 0 {
		session.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO split_sessions (id, receipt_id, user_id, tax_rate, tip_kind, tip_rate, tip_amount, finalized, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		session.ID, session.ReceiptID, session.UserID,
		session.TaxRate.String(), string(session.Tip.Kind),
		session.Tip.Rate.String(), session.Tip.Amount.String(),
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := insertSessionState(ctx, tx, session); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSession retrieves a split session with its people and assignments.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.SplitSession, error) {
	session := &models.SplitSession{}
	var taxRate, tipKind, tipRate, tipAmount string
	var resultJSON sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, receipt_id, user_id, tax_rate, tip_kind, tip_rate, tip_amount, finalized, result_json, created_at
		 FROM split_sessions WHERE id = ?`,
		sessionID,
	).Scan(&session.ID, &session.ReceiptID, &session.UserID,
		&taxRate, &tipKind, &tipRate, &tipAmount,
		&session.Finalized, &resultJSON, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.TaxRate, err = parseDecimal("tax_rate", taxRate); err != nil {
		return nil, err
	}
	session.Tip.Kind = models.TipKind(tipKind)
	if session.Tip.Rate, err = parseDecimal("tip_rate", tipRate); err != nil {
		return nil, err
	}
	if session.Tip.Amount, err = parseDecimal("tip_amount", tipAmount); err != nil {
		return nil, err
	}
	if resultJSON.Valid && resultJSON.String != "" {
		var result models.Allocation
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("corrupt finalized result: %w", err)
		}
		session.Result = &result
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM split_people WHERE session_id = ? ORDER BY position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var person models.Person
		if err := rows.Scan(&person.ID, &person.Name); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		session.People = append(session.People, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	assignRows, err := s.db.QueryContext(ctx,
		"SELECT item_id, person_id FROM split_assignments WHERE session_id = ?",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	defer assignRows.Close()

	session.Assignments = make(map[string]string)
	for assignRows.Next() {
		var itemID, personID string
		if err := assignRows.Scan(&itemID, &personID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		session.Assignments[itemID] = personID
	}
	if err := assignRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return session, nil
}

// SaveSession replaces a session's mutable state. Saving a finalized
// session is rejected.
func (s *SQLiteStore) SaveSession(ctx context.Context, session *models.SplitSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE split_sessions SET tax_rate = ?, tip_kind = ?, tip_rate = ?, tip_amount = ?
		 WHERE id = ? AND finalized = 0`,
		session.TaxRate.String(), string(session.Tip.Kind),
		session.Tip.Rate.String(), session.Tip.Amount.String(),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM split_people WHERE session_id = ?", session.ID); err != nil {
		return fmt.Errorf("failed to clear people: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM split_assignments WHERE session_id = ?", session.ID); err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}
	if err := insertSessionState(ctx, tx, session); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FinalizeSession marks a session finalized and stores its result.
func (s *SQLiteStore) FinalizeSession(ctx context.Context, sessionID string, result *models.Allocation) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE split_sessions SET finalized = 1, result_json = ? WHERE id = ? AND finalized = 0",
		string(payload), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check finalize: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func insertSessionState(ctx context.Context, tx *sql.Tx, session *models.SplitSession) error {
	for i, person := range session.People {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO split_people (session_id, id, name, position) VALUES (?, ?, ?, ?)",
			session.ID, person.ID, person.Name, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}
	for itemID, personID := range session.Assignments {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO split_assignments (session_id, item_id, person_id) VALUES (?, ?, ?)",
			session.ID, itemID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}
	return nil
}
