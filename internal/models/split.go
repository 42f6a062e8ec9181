package models

// PersonItem represents an item's share for one person.
type PersonItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"` // This person's share of the item
}

// PersonSummary represents one person's calculated share of a bill.
// This is the output of the split calculation and is never persisted.
type PersonSummary struct {
	// PersonID is the participant ID.
	PersonID string `json:"personId"`

	// PersonName is the participant's display name at calculation time.
	PersonName string `json:"personName"`

	// Items are the item shares assigned to this person.
	Items []PersonItem `json:"items"`

	// Subtotal is the sum of this person's item shares (pre-surcharge).
	Subtotal float64 `json:"subtotal"`

	// ServiceCharge is this person's share of the service charge.
	ServiceCharge float64 `json:"serviceCharge"`

	// Tax is this person's share of the tax.
	Tax float64 `json:"tax"`

	// Total is Subtotal + ServiceCharge + Tax.
	Total float64 `json:"total"`
}
