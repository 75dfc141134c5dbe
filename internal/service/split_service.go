package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/splitr/splitr/internal/calculator"
	"github.com/splitr/splitr/internal/metrics"
	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

var (
	maxTaxRate = decimal.NewFromInt(15)
	maxTipRate = decimal.NewFromInt(100)
)

// SessionView is what every split-session operation returns: the session,
// its receipt, and the allocation derived from the current state (rounded
// for display, or the stored reconciled result once finalized).
type SessionView struct {
	Session    *models.SplitSession `json:"session"`
	Receipt    *models.Receipt      `json:"receipt"`
	Allocation models.Allocation    `json:"allocation"`
}

// SplitService manages split sessions: people, item assignments, tax/tip
// configuration, and finalization.
type SplitService struct {
	store storage.Store
}

// NewSplitService creates a SplitService.
func NewSplitService(store storage.Store) *SplitService {
	return &SplitService{store: store}
}

func validateTotals(taxRate decimal.Decimal, tip models.TipPolicy) error {
	if taxRate.IsNegative() || taxRate.GreaterThan(maxTaxRate) {
		return fmt.Errorf("%w: tax rate must be between 0 and %s percent", ErrValidation, maxTaxRate)
	}
	switch tip.Kind {
	case models.TipPercentage:
		if tip.Rate.IsNegative() || tip.Rate.GreaterThan(maxTipRate) {
			return fmt.Errorf("%w: tip rate must be between 0 and %s percent", ErrValidation, maxTipRate)
		}
	case models.TipFixed:
		if tip.Amount.IsNegative() {
			return fmt.Errorf("%w: tip amount cannot be negative", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown tip kind %q", ErrValidation, tip.Kind)
	}
	return nil
}

// CreateSession starts a split session for a receipt the user owns. The
// session begins with a single unnamed person, mirroring the edit flow
// where names are typed in as people are dealt items.
func (s *SplitService) CreateSession(ctx context.Context, userID, receiptID string, taxRate decimal.Decimal, tip models.TipPolicy) (*SessionView, error) {
	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt.UserID != userID {
		return nil, ErrForbidden
	}
	if err := validateTotals(taxRate, tip); err != nil {
		return nil, err
	}

	part := calculator.NewPartition(receipt.Items, taxRate, tip)
	part.AddPerson("")

	session := &models.SplitSession{
		ReceiptID:   receiptID,
		UserID:      userID,
		TaxRate:     taxRate,
		Tip:         tip,
		People:      part.People(),
		Assignments: part.Assignments(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	slog.Info("Split session created", "session_id", session.ID, "receipt_id", receiptID)
	return s.view(session, receipt, part), nil
}

// GetSession retrieves a session with its current allocation.
func (s *SplitService) GetSession(ctx context.Context, userID, sessionID string) (*SessionView, error) {
	session, receipt, part, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(session, receipt, part), nil
}

// AddPerson adds a participant. The name may be empty while editing.
func (s *SplitService) AddPerson(ctx context.Context, userID, sessionID, name string) (*SessionView, *models.Person, error) {
	session, receipt, part, err := s.loadForEdit(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	person := part.AddPerson(name)
	if err := s.save(ctx, session, part); err != nil {
		return nil, nil, err
	}
	return s.view(session, receipt, part), &person, nil
}

// RenamePerson updates a participant's name.
func (s *SplitService) RenamePerson(ctx context.Context, userID, sessionID, personID, name string) (*SessionView, error) {
	return s.edit(ctx, userID, sessionID, func(part *calculator.Partition) error {
		return part.RenamePerson(personID, name)
	})
}

// RemovePerson removes a participant, transferring their items to the
// first-created remaining person. Removing the last person fails with
// calculator.ErrLastPerson.
func (s *SplitService) RemovePerson(ctx context.Context, userID, sessionID, personID string) (*SessionView, error) {
	return s.edit(ctx, userID, sessionID, func(part *calculator.Partition) error {
		return part.RemovePerson(personID)
	})
}

// AssignItem gives an item to a person, removing it from any previous
// holder.
func (s *SplitService) AssignItem(ctx context.Context, userID, sessionID, itemID, personID string) (*SessionView, error) {
	return s.edit(ctx, userID, sessionID, func(part *calculator.Partition) error {
		return part.Assign(itemID, personID)
	})
}

// UnassignItem removes an item from whoever holds it.
func (s *SplitService) UnassignItem(ctx context.Context, userID, sessionID, itemID string) (*SessionView, error) {
	return s.edit(ctx, userID, sessionID, func(part *calculator.Partition) error {
		return part.Unassign(itemID)
	})
}

// UpdateTotals changes the session's tax rate and tip policy.
func (s *SplitService) UpdateTotals(ctx context.Context, userID, sessionID string, taxRate decimal.Decimal, tip models.TipPolicy) (*SessionView, error) {
	if err := validateTotals(taxRate, tip); err != nil {
		return nil, err
	}
	return s.edit(ctx, userID, sessionID, func(part *calculator.Partition) error {
		part.SetTotals(taxRate, tip)
		return nil
	})
}

// Finalize runs the validation gate and, on success, stores the
// reconciled allocation and closes the session to edits.
func (s *SplitService) Finalize(ctx context.Context, userID, sessionID string) (*SessionView, error) {
	session, receipt, part, err := s.loadForEdit(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	alloc, err := part.Finalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.store.FinalizeSession(ctx, sessionID, &alloc); err != nil {
		return nil, fmt.Errorf("failed to store finalized session: %w", err)
	}
	session.Finalized = true
	session.Result = &alloc

	metrics.SplitsFinalized.Inc()
	slog.Info("Split finalized",
		"session_id", sessionID,
		"people", len(alloc.Shares),
		"grand_total", alloc.GrandTotal,
	)
	return &SessionView{Session: session, Receipt: receipt, Allocation: alloc}, nil
}

// edit applies one mutation to a session's partition and persists the
// result.
func (s *SplitService) edit(ctx context.Context, userID, sessionID string, mutate func(*calculator.Partition) error) (*SessionView, error) {
	session, receipt, part, err := s.loadForEdit(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := mutate(part); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session, part); err != nil {
		return nil, err
	}
	return s.view(session, receipt, part), nil
}

func (s *SplitService) load(ctx context.Context, userID, sessionID string) (*models.SplitSession, *models.Receipt, *calculator.Partition, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	if session.UserID != userID {
		return nil, nil, nil, ErrForbidden
	}
	receipt, err := s.store.GetReceipt(ctx, session.ReceiptID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load session receipt: %w", err)
	}

	part := calculator.NewPartition(receipt.Items, session.TaxRate, session.Tip)
	part.Restore(session.People, session.Assignments)
	return session, receipt, part, nil
}

func (s *SplitService) loadForEdit(ctx context.Context, userID, sessionID string) (*models.SplitSession, *models.Receipt, *calculator.Partition, error) {
	session, receipt, part, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	if session.Finalized {
		return nil, nil, nil, ErrFinalized
	}
	return session, receipt, part, nil
}

func (s *SplitService) save(ctx context.Context, session *models.SplitSession, part *calculator.Partition) error {
	session.TaxRate, session.Tip = part.Totals()
	session.People = part.People()
	session.Assignments = part.Assignments()
	if err := s.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SplitService) view(session *models.SplitSession, receipt *models.Receipt, part *calculator.Partition) *SessionView {
	if session.Finalized && session.Result != nil {
		return &SessionView{Session: session, Receipt: receipt, Allocation: *session.Result}
	}
	return &SessionView{Session: session, Receipt: receipt, Allocation: part.Shares().Rounded()}
}
