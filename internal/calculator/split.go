package calculator

import (
	"github.com/mmynk/patungan/internal/models"
)

const (
	// ServiceRate is the automatic service charge applied to the subtotal.
	ServiceRate = 0.05
	// TaxRate is the automatic tax, applied to subtotal + service charge.
	TaxRate = 0.10
)

// EvenSplit is the result of splitting a single total equally.
type EvenSplit struct {
	Subtotal  float64
	Service   float64
	Tax       float64
	Total     float64
	PerPerson float64
}

// Result is the outcome of an itemized split.
type Result struct {
	// Summaries holds one entry per participant, in participant order.
	Summaries []models.PersonSummary

	// Subtotal is the sum of assigned item shares.
	Subtotal float64
	Service  float64
	Tax      float64

	// Total is the sum of person totals.
	Total float64

	// Unassigned lists items that no known participant shares. They are not
	// part of any total.
	Unassigned []models.LineItem
}

// surcharges computes service and tax on a base amount.
// Tax compounds on top of the service charge: tax = (base + service) × TaxRate.
func surcharges(base float64, s models.Surcharges) (service, tax float64) {
	switch s.Service.Kind {
	case models.SurchargeOverride:
		service = s.Service.Amount
	case models.SurchargeAuto:
		service = base * ServiceRate
	}
	switch s.Tax.Kind {
	case models.SurchargeOverride:
		tax = s.Tax.Amount
	case models.SurchargeAuto:
		tax = (base + service) * TaxRate
	}
	return service, tax
}

// CalculateEvenSplit divides total plus surcharges equally. PerPerson is 0
// when there are no participants. Nothing is rounded here.
func CalculateEvenSplit(total float64, participants int, s models.Surcharges) EvenSplit {
	service, tax := surcharges(total, s)
	split := EvenSplit{
		Subtotal: total,
		Service:  service,
		Tax:      tax,
		Total:    total + service + tax,
	}
	if participants > 0 {
		split.PerPerson = split.Total / float64(participants)
	}
	return split
}

// CalculateItemizedSplit computes how much each participant owes for the
// items they share, plus their share of service and tax.
//
// An item's price is split equally among its assignees that are still
// participants. Surcharges are computed once on the combined subtotal and then
// distributed according to mode.
func CalculateItemizedSplit(participants []models.Participant, items []models.LineItem, s models.Surcharges, mode models.DistributionMode) Result {
	res := Result{
		Summaries:  make([]models.PersonSummary, len(participants)),
		Unassigned: []models.LineItem{},
	}

	// Initialize summaries for all participants
	index := make(map[string]int, len(participants))
	for i, p := range participants {
		index[p.ID] = i
		res.Summaries[i] = models.PersonSummary{
			PersonID:   p.ID,
			PersonName: p.Name,
			Items:      []models.PersonItem{},
		}
	}

	// Calculate each person's subtotal based on assigned items
	for _, item := range items {
		assignees := effectiveAssignees(item, index)
		if len(assignees) == 0 {
			res.Unassigned = append(res.Unassigned, item)
			continue
		}

		share := item.Price / float64(len(assignees))
		for _, i := range assignees {
			sum := &res.Summaries[i]
			sum.Subtotal += share
			sum.Items = append(sum.Items, models.PersonItem{Name: item.Name, Amount: share})
		}
	}

	for _, sum := range res.Summaries {
		res.Subtotal += sum.Subtotal
	}
	if len(participants) == 0 {
		return res
	}

	res.Service, res.Tax = surcharges(res.Subtotal, s)

	heads := float64(len(participants))
	for i := range res.Summaries {
		sum := &res.Summaries[i]
		if mode == models.EqualPerHead || res.Subtotal == 0 {
			// With no spend to weigh by, an override is still shared per head
			sum.ServiceCharge = res.Service / heads
			sum.Tax = res.Tax / heads
		} else {
			weight := sum.Subtotal / res.Subtotal
			sum.ServiceCharge = res.Service * weight
			sum.Tax = res.Tax * weight
		}
		sum.Total = sum.Subtotal + sum.ServiceCharge + sum.Tax
		res.Total += sum.Total
	}

	return res
}

// effectiveAssignees returns the summary indexes of the item's assignees that
// are known participants, without duplicates.
func effectiveAssignees(item models.LineItem, index map[string]int) []int {
	var out []int
	seen := make(map[string]bool, len(item.AssignedTo))
	for _, pid := range item.AssignedTo {
		i, ok := index[pid]
		if !ok || seen[pid] {
			continue
		}
		seen[pid] = true
		out = append(out, i)
	}
	return out
}

// Breakdown is the resolved split of a whole bill, whatever its kind.
type Breakdown struct {
	Kind models.BillKind
	Result

	// PerPerson is the equal share of an even bill. Zero for itemized kinds.
	PerPerson float64
}

// CalculateBill dispatches on the bill kind. Even bills also get one summary
// per participant carrying the equal share.
func CalculateBill(bill *models.Bill) Breakdown {
	s := bill.Surcharge.Surcharges()
	if bill.Kind != models.KindEven {
		return Breakdown{
			Kind:   bill.Kind,
			Result: CalculateItemizedSplit(bill.Participants, bill.Items, s, bill.Kind.Mode()),
		}
	}

	even := CalculateEvenSplit(bill.Total, len(bill.Participants), s)
	b := Breakdown{
		Kind:      bill.Kind,
		PerPerson: even.PerPerson,
		Result: Result{
			Summaries:  make([]models.PersonSummary, len(bill.Participants)),
			Subtotal:   even.Subtotal,
			Service:    even.Service,
			Tax:        even.Tax,
			Unassigned: []models.LineItem{},
		},
	}
	heads := float64(len(bill.Participants))
	for i, p := range bill.Participants {
		b.Summaries[i] = models.PersonSummary{
			PersonID:      p.ID,
			PersonName:    p.Name,
			Items:         []models.PersonItem{},
			Subtotal:      even.Subtotal / heads,
			ServiceCharge: even.Service / heads,
			Tax:           even.Tax / heads,
			Total:         even.PerPerson,
		}
	}
	if len(bill.Participants) > 0 {
		b.Total = even.Total
	}
	return b
}
