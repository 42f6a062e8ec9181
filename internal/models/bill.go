package models

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// BillKind distinguishes the three bill shapes.
type BillKind string

const (
	// KindEven splits a single total equally among participants.
	KindEven BillKind = "even"
	// KindItemized splits shared items; surcharges follow consumption.
	KindItemized BillKind = "itemized"
	// KindPerPerson splits items owned by one participant each; surcharges are
	// shared equally per head.
	KindPerPerson BillKind = "per_person"
)

// ParseBillKind validates a kind string.
func ParseBillKind(s string) (BillKind, error) {
	switch k := BillKind(s); k {
	case KindEven, KindItemized, KindPerPerson:
		return k, nil
	default:
		return "", fmt.Errorf("unknown bill kind %q", s)
	}
}

// Mode returns the surcharge distribution used by itemized kinds.
func (k BillKind) Mode() DistributionMode {
	if k == KindPerPerson {
		return EqualPerHead
	}
	return Proportional
}

// BillKey identifies a bill: the title is unique per owner and kind.
type BillKey struct {
	Owner string   `json:"owner"`
	Kind  BillKind `json:"kind"`
	Title string   `json:"title"`
}

func (k BillKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Owner, k.Kind, k.Title)
}

// Participant is a person splitting a bill.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string `json:"id"`

	// Name is the display name. Never empty.
	Name string `json:"name"`
}

// LineItem is a priced item on an itemized bill.
type LineItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// Name is the item description (e.g., "Nasi Goreng").
	Name string `json:"name"`

	// Price is the pre-surcharge price of the item.
	Price float64 `json:"price"`

	// AssignedTo lists the participant IDs sharing this item. The price is
	// split equally among them. Empty means the item is unassigned.
	// For per_person bills it holds exactly the owner.
	AssignedTo []string `json:"assignedTo"`
}

// IsAssignedTo reports whether the participant shares this item.
func (i LineItem) IsAssignedTo(participantID string) bool {
	return slices.Contains(i.AssignedTo, participantID)
}

// Bill is the bill aggregate. It exclusively owns its participants and items.
type Bill struct {
	// ID is the remote row identifier (UUID format). Empty until first saved.
	ID string `json:"id,omitempty"`

	// Owner is the email of the identity that owns the bill.
	Owner string `json:"owner"`

	Kind BillKind `json:"kind"`

	// Title acts as the primary key together with Owner and Kind.
	Title string `json:"title"`

	// Name is the display name; defaults to Title.
	Name string `json:"name,omitempty"`

	// Total is the amount to split for even bills. Unused by itemized kinds.
	Total float64 `json:"total,omitempty"`

	Participants []Participant   `json:"participants"`
	Items        []LineItem      `json:"items"`
	Surcharge    SurchargeConfig `json:"surcharge"`

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// NewBill returns an empty bill with default surcharges.
func NewBill(key BillKey) *Bill {
	return &Bill{
		Owner:        key.Owner,
		Kind:         key.Kind,
		Title:        key.Title,
		Name:         key.Title,
		Participants: []Participant{},
		Items:        []LineItem{},
		Surcharge:    DefaultSurcharge(),
	}
}

// Key returns the identifying key of the bill.
func (b *Bill) Key() BillKey {
	return BillKey{Owner: b.Owner, Kind: b.Kind, Title: b.Title}
}

// DisplayName returns Name, falling back to Title.
func (b *Bill) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	return b.Title
}

// Participant looks up a participant by ID.
func (b *Bill) Participant(id string) (Participant, bool) {
	for _, p := range b.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// ParticipantByName looks up the first participant with the given name.
func (b *Bill) ParticipantByName(name string) (Participant, bool) {
	for _, p := range b.Participants {
		if p.Name == name {
			return p, true
		}
	}
	return Participant{}, false
}

// AddParticipant appends a participant with a fresh ID.
func (b *Bill) AddParticipant(name string) Participant {
	p := Participant{ID: uuid.New().String(), Name: name}
	b.Participants = append(b.Participants, p)
	return p
}

// RemoveParticipant removes a participant and erases it from every item's
// assignment set. Items are never deleted. Reports whether it existed.
func (b *Bill) RemoveParticipant(id string) bool {
	idx := slices.IndexFunc(b.Participants, func(p Participant) bool { return p.ID == id })
	if idx < 0 {
		return false
	}
	b.Participants = slices.Delete(b.Participants, idx, idx+1)
	for i := range b.Items {
		b.Items[i].AssignedTo = slices.DeleteFunc(b.Items[i].AssignedTo, func(pid string) bool {
			return pid == id
		})
	}
	return true
}

// Item looks up an item by ID.
func (b *Bill) Item(id string) (LineItem, bool) {
	for _, it := range b.Items {
		if it.ID == id {
			return it, true
		}
	}
	return LineItem{}, false
}

// AddItem appends an item with a fresh ID.
func (b *Bill) AddItem(name string, price float64, assignedTo []string) LineItem {
	item := LineItem{
		ID:         uuid.New().String(),
		Name:       name,
		Price:      price,
		AssignedTo: slices.Clone(assignedTo),
	}
	if item.AssignedTo == nil {
		item.AssignedTo = []string{}
	}
	b.Items = append(b.Items, item)
	return item
}

// RemoveItem deletes an item. Reports whether it existed.
func (b *Bill) RemoveItem(id string) bool {
	before := len(b.Items)
	b.Items = slices.DeleteFunc(b.Items, func(it LineItem) bool { return it.ID == id })
	return len(b.Items) != before
}

// ToggleAssignment adds the participant to the item, or removes it when
// already assigned. Reports whether the item exists.
func (b *Bill) ToggleAssignment(itemID, participantID string) bool {
	for i := range b.Items {
		if b.Items[i].ID != itemID {
			continue
		}
		if b.Items[i].IsAssignedTo(participantID) {
			b.Items[i].AssignedTo = slices.DeleteFunc(b.Items[i].AssignedTo, func(pid string) bool {
				return pid == participantID
			})
		} else {
			b.Items[i].AssignedTo = append(b.Items[i].AssignedTo, participantID)
		}
		return true
	}
	return false
}

// AssignAll assigns the item to every current participant.
func (b *Bill) AssignAll(itemID string) bool {
	for i := range b.Items {
		if b.Items[i].ID != itemID {
			continue
		}
		ids := make([]string, len(b.Participants))
		for j, p := range b.Participants {
			ids[j] = p.ID
		}
		b.Items[i].AssignedTo = ids
		return true
	}
	return false
}

// Clone returns a deep copy safe to hand to another goroutine.
func (b *Bill) Clone() *Bill {
	if b == nil {
		return nil
	}
	c := *b
	c.Participants = slices.Clone(b.Participants)
	c.Items = make([]LineItem, len(b.Items))
	for i, it := range b.Items {
		it.AssignedTo = slices.Clone(it.AssignedTo)
		c.Items[i] = it
	}
	if b.Surcharge.ServiceOverride != nil {
		v := *b.Surcharge.ServiceOverride
		c.Surcharge.ServiceOverride = &v
	}
	if b.Surcharge.TaxOverride != nil {
		v := *b.Surcharge.TaxOverride
		c.Surcharge.TaxOverride = &v
	}
	return &c
}

// BillHeader is the list-view projection of a bill.
type BillHeader struct {
	Kind             BillKind `json:"kind"`
	Title            string   `json:"title"`
	Name             string   `json:"name,omitempty"`
	Total            float64  `json:"total"`
	ParticipantCount int      `json:"participantCount"`
	CreatedAt        int64    `json:"createdAt"`
	UpdatedAt        int64    `json:"updatedAt"`
}

// Header projects the bill into a list row. Total is the raw amount for even
// bills and the sum of item prices otherwise.
func (b *Bill) Header() BillHeader {
	total := b.Total
	if b.Kind != KindEven {
		total = 0
		for _, it := range b.Items {
			total += it.Price
		}
	}
	return BillHeader{
		Kind:             b.Kind,
		Title:            b.Title,
		Name:             b.DisplayName(),
		Total:            total,
		ParticipantCount: len(b.Participants),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}
