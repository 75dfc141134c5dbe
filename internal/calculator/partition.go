package calculator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitr/splitr/internal/models"
)

var (
	// ErrLastPerson is returned when removing the only remaining person.
	ErrLastPerson = errors.New("cannot remove the last remaining person")
	// ErrUnknownPerson is returned for operations on a person ID that is
	// not part of the partition.
	ErrUnknownPerson = errors.New("unknown person")
	// ErrUnknownItem is returned for operations on an item ID that is not
	// part of the receipt.
	ErrUnknownItem = errors.New("unknown item")

	// Finalization gate failures, reported one at a time in check order.
	ErrNoPeople        = errors.New("at least one person is required")
	ErrUnnamedPerson   = errors.New("every person needs a name")
	ErrUnassignedItems = errors.New("every item must be assigned to someone")
)

// Partition maintains the mapping from line items to people for one split
// session. Ownership lives in a single item-to-person map, so an item
// belongs to at most one person by construction; assigning an item to a
// new person atomically removes it from the previous holder.
//
// All operations are synchronous and the derived allocation is recomputed
// on every read. A Partition is not safe for concurrent use.
type Partition struct {
	items   []models.LineItem
	itemIdx map[string]int
	people  []models.Person
	owner   map[string]string // item ID -> person ID
	taxRate decimal.Decimal
	tip     models.TipPolicy
}

// NewPartition creates an empty partition over the given items.
func NewPartition(items []models.LineItem, taxRate decimal.Decimal, tip models.TipPolicy) *Partition {
	idx := make(map[string]int, len(items))
	for i, item := range items {
		idx[item.ID] = i
	}
	return &Partition{
		items:   items,
		itemIdx: idx,
		owner:   make(map[string]string),
		taxRate: taxRate,
		tip:     tip,
	}
}

// Restore loads previously persisted people and assignments. Assignments
// referencing items no longer on the receipt, or people not in the list,
// are dropped.
func (p *Partition) Restore(people []models.Person, assignments map[string]string) {
	p.people = append([]models.Person(nil), people...)
	p.owner = make(map[string]string, len(assignments))
	known := make(map[string]bool, len(people))
	for _, person := range people {
		known[person.ID] = true
	}
	for itemID, personID := range assignments {
		if _, ok := p.itemIdx[itemID]; !ok {
			continue
		}
		if !known[personID] {
			continue
		}
		p.owner[itemID] = personID
	}
}

// AddPerson creates a new person with an empty assignment. An empty name
// is allowed while the session is being edited; Finalize rejects it.
func (p *Partition) AddPerson(name string) models.Person {
	person := models.Person{ID: uuid.New().String(), Name: name}
	p.people = append(p.people, person)
	return person
}

// RenamePerson updates a person's name.
func (p *Partition) RenamePerson(personID, name string) error {
	for i := range p.people {
		if p.people[i].ID == personID {
			p.people[i].Name = name
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownPerson, personID)
}

// RemovePerson removes a person and transfers their items to the
// first-created remaining person, so every previously assigned item stays
// assigned. Removing the last person is rejected and leaves the partition
// unchanged.
func (p *Partition) RemovePerson(personID string) error {
	if len(p.people) == 1 && p.people[0].ID == personID {
		return ErrLastPerson
	}

	found := -1
	for i := range p.people {
		if p.people[i].ID == personID {
			found = i
			break
		}
	}
	if found == -1 {
		return fmt.Errorf("%w: %s", ErrUnknownPerson, personID)
	}

	p.people = append(p.people[:found], p.people[found+1:]...)

	fallback := p.people[0].ID
	for itemID, owner := range p.owner {
		if owner == personID {
			p.owner[itemID] = fallback
		}
	}
	return nil
}

// Assign gives an item to a person, removing it from any previous holder.
func (p *Partition) Assign(itemID, personID string) error {
	if _, ok := p.itemIdx[itemID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	if !p.hasPerson(personID) {
		return fmt.Errorf("%w: %s", ErrUnknownPerson, personID)
	}
	p.owner[itemID] = personID
	return nil
}

// Unassign removes an item from whoever holds it. Unassigning an item
// nobody holds is a no-op.
func (p *Partition) Unassign(itemID string) error {
	if _, ok := p.itemIdx[itemID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	delete(p.owner, itemID)
	return nil
}

// SetTotals updates the tax rate and tip policy.
func (p *Partition) SetTotals(taxRate decimal.Decimal, tip models.TipPolicy) {
	p.taxRate = taxRate
	p.tip = tip
}

// Totals returns the current tax rate and tip policy.
func (p *Partition) Totals() (decimal.Decimal, models.TipPolicy) {
	return p.taxRate, p.tip
}

// People returns the participants in creation order.
func (p *Partition) People() []models.Person {
	return append([]models.Person(nil), p.people...)
}

// Assignments returns a copy of the item-to-person ownership map.
func (p *Partition) Assignments() map[string]string {
	out := make(map[string]string, len(p.owner))
	for k, v := range p.owner {
		out[k] = v
	}
	return out
}

// UnassignedCount returns how many items have no owner.
func (p *Partition) UnassignedCount() int {
	return len(p.items) - len(p.owner)
}

func (p *Partition) hasPerson(personID string) bool {
	for _, person := range p.people {
		if person.ID == personID {
			return true
		}
	}
	return false
}

// Shares computes the current allocation at full precision. It is a pure
// function of the partition state: calling it repeatedly without a
// mutation in between yields identical results. Unassigned items
// contribute to the receipt subtotal but to nobody's share.
func (p *Partition) Shares() models.Allocation {
	receiptSubtotal := ItemsSubtotal(p.items)

	alloc := models.Allocation{
		Shares:   make([]models.PersonShare, 0, len(p.people)),
		Subtotal: receiptSubtotal,
		Tax:      TaxTotal(receiptSubtotal, p.taxRate),
		Tip:      TipTotal(receiptSubtotal, p.tip),
	}
	alloc.GrandTotal = alloc.Subtotal.Add(alloc.Tax).Add(alloc.Tip)

	for _, person := range p.people {
		var personItems []models.LineItem
		subtotal := decimal.Zero
		for _, item := range p.items {
			if p.owner[item.ID] != person.ID {
				continue
			}
			personItems = append(personItems, item)
			subtotal = subtotal.Add(item.LineTotal())
		}

		share := ComputeShare(subtotal, receiptSubtotal, p.taxRate, p.tip)
		alloc.Shares = append(alloc.Shares, models.PersonShare{
			PersonID: person.ID,
			Name:     person.Name,
			Items:    personItems,
			Subtotal: share.Subtotal,
			TaxShare: share.Tax,
			TipShare: share.Tip,
			Total:    share.Total,
		})
	}

	return alloc
}

// Finalize validates the partition and returns the reconciled allocation.
//
// The gate checks, in order: at least one person exists, every person has
// a non-empty trimmed name, and every item is assigned. The first unmet
// condition is returned as the error and the partition is left untouched.
//
// On success every amount is rounded to cents, and the remainder between
// the rounded grand total and the sum of rounded per-person totals is
// added to the first person so the shares reconcile exactly.
func (p *Partition) Finalize() (models.Allocation, error) {
	if len(p.people) == 0 {
		return models.Allocation{}, ErrNoPeople
	}
	for _, person := range p.people {
		if strings.TrimSpace(person.Name) == "" {
			return models.Allocation{}, ErrUnnamedPerson
		}
	}
	if n := p.UnassignedCount(); n > 0 {
		return models.Allocation{}, fmt.Errorf("%w: %d unassigned", ErrUnassignedItems, n)
	}

	alloc := p.Shares().Rounded()

	sum := decimal.Zero
	for _, share := range alloc.Shares {
		sum = sum.Add(share.Total)
	}
	if remainder := alloc.GrandTotal.Sub(sum); !remainder.IsZero() {
		alloc.Shares[0].Total = alloc.Shares[0].Total.Add(remainder)
	}

	return alloc, nil
}
