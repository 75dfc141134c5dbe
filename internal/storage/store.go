// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitr/splitr/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for Splitr's storage operations. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound when
	// no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateReceipt persists a new receipt with its items. The receipt's
	// ID and CreatedAt fields are populated by the store when unset.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error

	// GetReceipt retrieves a receipt by ID, items included, in stored
	// order.
	GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error)

	// ListReceiptsByUser retrieves a user's receipts, newest first.
	ListReceiptsByUser(ctx context.Context, userID string) ([]models.Receipt, error)

	// CreateSession persists a new split session. ID and CreatedAt are
	// populated by the store when unset.
	CreateSession(ctx context.Context, session *models.SplitSession) error

	// GetSession retrieves a split session with its people and
	// assignments.
	GetSession(ctx context.Context, sessionID string) (*models.SplitSession, error)

	// SaveSession replaces a session's mutable state (tax rate, tip,
	// people, assignments) transactionally.
	SaveSession(ctx context.Context, session *models.SplitSession) error

	// FinalizeSession marks a session finalized and stores its reconciled
	// result. A finalized session cannot be saved again.
	FinalizeSession(ctx context.Context, sessionID string, result *models.Allocation) error

	// Close releases any resources held by the store.
	Close() error
}
