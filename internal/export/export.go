// Package export renders a computed bill for sharing outside the app.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mmynk/patungan/internal/calculator"
	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/money"
)

// Footer closes every shared summary.
const Footer = "Patungan by Nexteam"

// Document holds everything a renderer prints. Amounts are already resolved;
// renderers never recompute them.
type Document struct {
	Kind      models.BillKind
	Title     string
	Total     float64
	PerPerson float64
	Summaries []models.PersonSummary

	// ServiceLabel and TaxLabel name the surcharges in per-person receipts.
	// Empty means the surcharge is disabled.
	ServiceLabel string
	TaxLabel     string
}

// NewDocument resolves a bill and its breakdown into a document.
func NewDocument(bill *models.Bill, b calculator.Breakdown) Document {
	s := bill.Surcharge.Surcharges()
	return Document{
		Kind:         bill.Kind,
		Title:        bill.DisplayName(),
		Total:        b.Total,
		PerPerson:    b.PerPerson,
		Summaries:    b.Summaries,
		ServiceLabel: label("Service", calculator.ServiceRate, s.Service),
		TaxLabel:     label("PB1", calculator.TaxRate, s.Tax),
	}
}

func label(name string, rate float64, s models.Surcharge) string {
	switch s.Kind {
	case models.SurchargeAuto:
		return fmt.Sprintf("%s (%.0f%%)", name, rate*100)
	case models.SurchargeOverride:
		return name
	default:
		return ""
	}
}

// Renderer writes a document in some output format.
type Renderer interface {
	Render(w io.Writer, doc Document) error
}

// TextRenderer produces the plain-text summary pasted into chats.
type TextRenderer struct{}

var _ Renderer = TextRenderer{}

func (TextRenderer) Render(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	if doc.Kind == models.KindEven {
		writeEven(bw, doc)
	} else {
		writeItemized(bw, doc)
	}
	return bw.Flush()
}

func writeEven(w *bufio.Writer, doc Document) {
	title := doc.Title
	if title == "" {
		title = "Split Bill"
	}
	fmt.Fprintf(w, "🧾 %s\n", title)
	fmt.Fprintf(w, "Total: %s\n", money.Format(doc.Total))
	fmt.Fprintf(w, "Per orang (%d): %s\n", len(doc.Summaries), money.Format(doc.PerPerson))
	fmt.Fprintln(w)
	for _, s := range doc.Summaries {
		fmt.Fprintf(w, "• %s: %s\n", s.PersonName, money.Format(s.Total))
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, Footer)
}

// writeItemized leaves out blank lines, as the shared text always has.
func writeItemized(w *bufio.Writer, doc Document) {
	fmt.Fprintln(w, "🧾 Custom Split Bill")
	if doc.Title != "" {
		fmt.Fprintf(w, "Judul: %s\n", doc.Title)
	}
	fmt.Fprintf(w, "Total: %s\n", money.Format(doc.Total))
	for _, s := range doc.Summaries {
		fmt.Fprintf(w, "• %s: %s\n", s.PersonName, money.Format(s.Total))
		for _, it := range s.Items {
			fmt.Fprintf(w, "  - %s: %s\n", it.Name, money.Format(it.Amount))
		}
	}
	fmt.Fprint(w, Footer)
}

// RenderPerson writes the receipt of one participant.
func RenderPerson(w io.Writer, doc Document, s models.PersonSummary) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "🧾 %s\n", s.PersonName)
	for _, it := range s.Items {
		fmt.Fprintf(bw, "• %s: %s\n", it.Name, money.Format(it.Amount))
	}
	fmt.Fprintf(bw, "Subtotal: %s\n", money.Format(s.Subtotal))
	if doc.ServiceLabel != "" {
		fmt.Fprintf(bw, "%s: %s\n", doc.ServiceLabel, money.Format(s.ServiceCharge))
	}
	if doc.TaxLabel != "" {
		fmt.Fprintf(bw, "%s: %s\n", doc.TaxLabel, money.Format(s.Tax))
	}
	fmt.Fprintf(bw, "Total: %s", money.Format(s.Total))
	return bw.Flush()
}
