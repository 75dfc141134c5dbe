package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitr/splitr/internal/calculator"
	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func noTip() models.TipPolicy {
	return models.TipPolicy{Kind: models.TipPercentage, Rate: decimal.Zero}
}

func createTestReceipt(t *testing.T, store storage.Store, userID string) *models.Receipt {
	t.Helper()
	receipt := &models.Receipt{
		UserID:    userID,
		StoreName: "Diner",
		Date:      "2023-04-05",
		Items: []models.LineItem{
			{ID: "item-burger", Name: "Burger", UnitPrice: d("8.99"), Quantity: 1},
			{ID: "item-fries", Name: "Fries", UnitPrice: d("3.49"), Quantity: 1},
		},
		Subtotal: d("12.48"),
		Tax:      d("1.00"),
		Total:    d("13.48"),
	}
	require.NoError(t, store.CreateReceipt(context.Background(), receipt))
	return receipt
}

func TestSplitServiceFlow(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice@example.com")
	receipt := createTestReceipt(t, store, user.ID)
	svc := NewSplitService(store)
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, user.ID, receipt.ID, d("8"), noTip())
	require.NoError(t, err)
	sessionID := view.Session.ID
	require.Len(t, view.Session.People, 1, "a new session starts with one unnamed person")
	first := view.Session.People[0]

	_, err = svc.RenamePerson(ctx, user.ID, sessionID, first.ID, "Alice")
	require.NoError(t, err)
	_, bob, err := svc.AddPerson(ctx, user.ID, sessionID, "Bob")
	require.NoError(t, err)

	_, err = svc.AssignItem(ctx, user.ID, sessionID, "item-burger", first.ID)
	require.NoError(t, err)
	view, err = svc.AssignItem(ctx, user.ID, sessionID, "item-fries", bob.ID)
	require.NoError(t, err)

	require.Len(t, view.Allocation.Shares, 2)
	assert.True(t, view.Allocation.Shares[0].Total.Equal(d("9.71")), "alice total = %s", view.Allocation.Shares[0].Total)
	assert.True(t, view.Allocation.Shares[1].Total.Equal(d("3.77")), "bob total = %s", view.Allocation.Shares[1].Total)
	assert.True(t, view.Allocation.GrandTotal.Equal(d("13.48")))

	view, err = svc.Finalize(ctx, user.ID, sessionID)
	require.NoError(t, err)
	assert.True(t, view.Session.Finalized)

	// The stored result is served back on later reads.
	got, err := svc.GetSession(ctx, user.ID, sessionID)
	require.NoError(t, err)
	assert.True(t, got.Session.Finalized)
	require.Len(t, got.Allocation.Shares, 2)
	assert.True(t, got.Allocation.Shares[0].Total.Equal(d("9.71")))
}

func TestSplitServiceValidatesTotals(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice@example.com")
	receipt := createTestReceipt(t, store, user.ID)
	svc := NewSplitService(store)
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, user.ID, receipt.ID, d("20"), noTip())
	assert.ErrorIs(t, err, ErrValidation, "tax rate above the cap")

	view, err := svc.CreateSession(ctx, user.ID, receipt.ID, d("8"), noTip())
	require.NoError(t, err)

	_, err = svc.UpdateTotals(ctx, user.ID, view.Session.ID, d("8"), models.TipPolicy{Kind: models.TipPercentage, Rate: d("150")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateTotals(ctx, user.ID, view.Session.ID, d("8"), models.TipPolicy{Kind: models.TipFixed, Amount: d("-1")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSplitServiceUpdateTotalsPersists(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice@example.com")
	receipt := createTestReceipt(t, store, user.ID)
	svc := NewSplitService(store)
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, user.ID, receipt.ID, d("8"), noTip())
	require.NoError(t, err)
	sessionID := view.Session.ID

	fixedTip := models.TipPolicy{Kind: models.TipFixed, Amount: d("5")}
	view, err = svc.UpdateTotals(ctx, user.ID, sessionID, d("10"), fixedTip)
	require.NoError(t, err)
	assert.True(t, view.Session.TaxRate.Equal(d("10")), "response tax rate = %s", view.Session.TaxRate)
	assert.Equal(t, models.TipFixed, view.Session.Tip.Kind)
	assert.True(t, view.Session.Tip.Amount.Equal(d("5")))

	// The new totals survive a fresh read.
	got, err := svc.GetSession(ctx, user.ID, sessionID)
	require.NoError(t, err)
	assert.True(t, got.Session.TaxRate.Equal(d("10")), "persisted tax rate = %s", got.Session.TaxRate)
	assert.Equal(t, models.TipFixed, got.Session.Tip.Kind)
	assert.True(t, got.Session.Tip.Amount.Equal(d("5")))
	assert.True(t, got.Allocation.Tax.Equal(d("1.25")), "allocation tax = %s", got.Allocation.Tax)
	assert.True(t, got.Allocation.Tip.Equal(d("5")))
}

func TestSplitServiceOwnership(t *testing.T) {
	store := newTestStore(t)
	alice := createTestUser(t, store, "alice@example.com")
	mallory := createTestUser(t, store, "mallory@example.com")
	receipt := createTestReceipt(t, store, alice.ID)
	svc := NewSplitService(store)
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, mallory.ID, receipt.ID, d("8"), noTip())
	assert.ErrorIs(t, err, ErrForbidden)

	view, err := svc.CreateSession(ctx, alice.ID, receipt.ID, d("8"), noTip())
	require.NoError(t, err)

	_, err = svc.GetSession(ctx, mallory.ID, view.Session.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = svc.AddPerson(ctx, mallory.ID, view.Session.ID, "Eve")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSplitServiceFinalizeGate(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice@example.com")
	receipt := createTestReceipt(t, store, user.ID)
	svc := NewSplitService(store)
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, user.ID, receipt.ID, d("8"), noTip())
	require.NoError(t, err)
	sessionID := view.Session.ID
	personID := view.Session.People[0].ID

	// The initial person has no name yet.
	_, err = svc.Finalize(ctx, user.ID, sessionID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RenamePerson(ctx, user.ID, sessionID, personID, "Alice")
	require.NoError(t, err)

	// Items are still unassigned.
	_, err = svc.Finalize(ctx, user.ID, sessionID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AssignItem(ctx, user.ID, sessionID, "item-burger", personID)
	require.NoError(t, err)
	_, err = svc.AssignItem(ctx, user.ID, sessionID, "item-fries", personID)
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, user.ID, sessionID)
	require.NoError(t, err)

	// Finalized sessions reject edits and a second finalize.
	_, _, err = svc.AddPerson(ctx, user.ID, sessionID, "Bob")
	assert.ErrorIs(t, err, ErrFinalized)
	_, err = svc.Finalize(ctx, user.ID, sessionID)
	assert.ErrorIs(t, err, ErrFinalized)
}

func TestSplitServiceRemovePerson(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice@example.com")
	receipt := createTestReceipt(t, store, user.ID)
	svc := NewSplitService(store)
	ctx := context.Background()

	view, err := svc.CreateSession(ctx, user.ID, receipt.ID, d("8"), noTip())
	require.NoError(t, err)
	sessionID := view.Session.ID
	first := view.Session.People[0]

	_, err = svc.RemovePerson(ctx, user.ID, sessionID, first.ID)
	assert.ErrorIs(t, err, calculator.ErrLastPerson)

	_, bob, err := svc.AddPerson(ctx, user.ID, sessionID, "Bob")
	require.NoError(t, err)
	_, err = svc.AssignItem(ctx, user.ID, sessionID, "item-burger", bob.ID)
	require.NoError(t, err)

	// Bob's items move to the remaining person.
	view, err = svc.RemovePerson(ctx, user.ID, sessionID, bob.ID)
	require.NoError(t, err)
	require.Len(t, view.Session.People, 1)
	assert.Equal(t, first.ID, view.Session.Assignments["item-burger"])
}
