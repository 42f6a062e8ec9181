// Package session holds the bill being edited and applies user edits to it.
package session

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/mmynk/patungan/internal/calculator"
	"github.com/mmynk/patungan/internal/models"
)

// ErrInvalidInput is returned for edits rejected before any state changes.
var ErrInvalidInput = errors.New("invalid input")

// Syncer receives every new state of the bill.
type Syncer interface {
	Changed(bill *models.Bill) bool
}

// BillSession owns one bill. Every successful edit recomputes the breakdown
// and hands the new state to the syncer.
type BillSession struct {
	mu        sync.Mutex
	bill      *models.Bill
	breakdown calculator.Breakdown
	sync      Syncer
}

// New starts a session on a loaded bill. sync may be nil.
func New(bill *models.Bill, sync Syncer) *BillSession {
	s := &BillSession{bill: bill.Clone(), sync: sync}
	s.breakdown = calculator.CalculateBill(s.bill)
	return s
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// apply runs a validated mutation and publishes the result.
func (s *BillSession) apply(mutate func(b *models.Bill) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := mutate(s.bill); err != nil {
		return err
	}
	s.breakdown = calculator.CalculateBill(s.bill)
	if s.sync != nil {
		s.sync.Changed(s.bill)
	}
	return nil
}

func requireItemized(b *models.Bill) error {
	if b.Kind == models.KindEven {
		return invalid("even bills have no items")
	}
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name must not be empty")
	}
	return name, nil
}

func checkAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return invalid("amount must be a non-negative number")
	}
	return nil
}

// AddParticipant adds a person to the bill.
func (s *BillSession) AddParticipant(name string) (models.Participant, error) {
	var p models.Participant
	err := s.apply(func(b *models.Bill) error {
		n, err := cleanName(name)
		if err != nil {
			return err
		}
		p = b.AddParticipant(n)
		return nil
	})
	return p, err
}

// RemoveParticipant removes a person. Their items stay on the bill,
// unassigned from them.
func (s *BillSession) RemoveParticipant(id string) error {
	return s.apply(func(b *models.Bill) error {
		if !b.RemoveParticipant(id) {
			return invalid("unknown participant %q", id)
		}
		return nil
	})
}

// RenameBill changes the display name. The title, which identifies the bill,
// is unchanged.
func (s *BillSession) RenameBill(name string) error {
	return s.apply(func(b *models.Bill) error {
		n, err := cleanName(name)
		if err != nil {
			return err
		}
		b.Name = n
		return nil
	})
}

// SetTotal sets the amount of an even bill.
func (s *BillSession) SetTotal(total float64) error {
	return s.apply(func(b *models.Bill) error {
		if b.Kind != models.KindEven {
			return invalid("only even bills have a total")
		}
		if err := checkAmount(total); err != nil {
			return err
		}
		b.Total = total
		return nil
	})
}

// AddItem adds an item shared by the given participants. The price must be
// positive.
func (s *BillSession) AddItem(name string, price float64, assignedTo []string) (models.LineItem, error) {
	var item models.LineItem
	err := s.apply(func(b *models.Bill) error {
		if err := requireItemized(b); err != nil {
			return err
		}
		if b.Kind == models.KindPerPerson && len(assignedTo) != 1 {
			return invalid("per-person items belong to exactly one participant")
		}
		n, err := cleanName(name)
		if err != nil {
			return err
		}
		if err := checkAmount(price); err != nil {
			return err
		}
		if price == 0 {
			return invalid("price must be greater than zero")
		}
		for _, pid := range assignedTo {
			if _, ok := b.Participant(pid); !ok {
				return invalid("unknown participant %q", pid)
			}
		}
		item = b.AddItem(n, price, assignedTo)
		return nil
	})
	return item, err
}

// AddItemFor adds an item owned by a single participant, as per-person bills
// require.
func (s *BillSession) AddItemFor(participantID, name string, price float64) (models.LineItem, error) {
	return s.AddItem(name, price, []string{participantID})
}

// RemoveItem deletes an item.
func (s *BillSession) RemoveItem(id string) error {
	return s.apply(func(b *models.Bill) error {
		if !b.RemoveItem(id) {
			return invalid("unknown item %q", id)
		}
		return nil
	})
}

// ToggleAssignment adds or removes a participant from an item.
func (s *BillSession) ToggleAssignment(itemID, participantID string) error {
	return s.apply(func(b *models.Bill) error {
		if b.Kind == models.KindPerPerson {
			return invalid("per-person items belong to exactly one participant")
		}
		if _, ok := b.Participant(participantID); !ok {
			return invalid("unknown participant %q", participantID)
		}
		if !b.ToggleAssignment(itemID, participantID) {
			return invalid("unknown item %q", itemID)
		}
		return nil
	})
}

// AssignAll shares an item among every participant.
func (s *BillSession) AssignAll(itemID string) error {
	return s.apply(func(b *models.Bill) error {
		if b.Kind == models.KindPerPerson {
			return invalid("per-person items belong to exactly one participant")
		}
		if !b.AssignAll(itemID) {
			return invalid("unknown item %q", itemID)
		}
		return nil
	})
}

// SetSurcharge updates the surcharge configuration from raw user input.
// Override strings that are not non-negative numbers are ignored.
func (s *BillSession) SetSurcharge(serviceEnabled, taxEnabled bool, customService, customTax string) error {
	return s.apply(func(b *models.Bill) error {
		b.Surcharge = models.ParseSurchargeConfig(serviceEnabled, taxEnabled, customService, customTax)
		return nil
	})
}

// Reset clears participants, items, total and surcharges, keeping the key.
func (s *BillSession) Reset() error {
	return s.apply(func(b *models.Bill) error {
		fresh := models.NewBill(b.Key())
		fresh.ID = b.ID
		fresh.CreatedAt = b.CreatedAt
		*b = *fresh
		return nil
	})
}

// Breakdown returns the split computed after the last edit.
func (s *BillSession) Breakdown() calculator.Breakdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.breakdown
}

// Snapshot returns a copy of the current bill.
func (s *BillSession) Snapshot() *models.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bill.Clone()
}
