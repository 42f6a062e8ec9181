package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/patungan/internal/calculator"
	"github.com/mmynk/patungan/internal/export"
	"github.com/mmynk/patungan/internal/models"
	"github.com/mmynk/patungan/internal/money"
	"github.com/mmynk/patungan/internal/repository"
	"github.com/mmynk/patungan/internal/session"
	"github.com/mmynk/patungan/pkg/api"
)

func billCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Create and split bills",
		Long: `Bills are named by KIND and TITLE. KIND is one of even, itemized or
per_person. A bill is created on its first change.`,
	}
	cmd.AddCommand(
		billNewCmd(opts),
		billShowCmd(opts),
		billListCmd(opts),
		billDeleteCmd(opts),
		billRenameCmd(opts),
		billTotalCmd(opts),
		billAddPersonCmd(opts),
		billRemovePersonCmd(opts),
		billAddItemCmd(opts),
		billRemoveItemCmd(opts),
		billAssignCmd(opts),
		billAssignAllCmd(opts),
		billSurchargeCmd(opts),
		billResetCmd(opts),
		billExportCmd(opts),
		billShareCmd(opts),
		billSharedCmd(opts),
	)
	return cmd
}

func (a *app) billKey(kind, title string) (models.BillKey, error) {
	owner, err := a.owner()
	if err != nil {
		return models.BillKey{}, err
	}
	k, err := models.ParseBillKind(kind)
	if err != nil {
		return models.BillKey{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return models.BillKey{}, errors.New("title is required")
	}
	return models.BillKey{Owner: owner, Kind: k, Title: title}, nil
}

// openBill loads the bill named by the first two args into a session wired to
// the sync client.
func (a *app) openBill(ctx context.Context, args []string) (*session.BillSession, repository.Source, error) {
	key, err := a.billKey(args[0], args[1])
	if err != nil {
		return nil, repository.SourceNone, err
	}
	bill, src := a.sync.Load(ctx, key)
	return session.New(bill, a.sync), src, nil
}

// editBill runs an edit on the bill named by args[0:2] and prints the result.
func editBill(opts *options, edit func(s *session.BillSession, args []string) error) func(*cobra.Command, []string) error {
	return withApp(opts, func(ctx context.Context, a *app, args []string) error {
		s, _, err := a.openBill(ctx, args)
		if err != nil {
			return err
		}
		if err := edit(s, args[2:]); err != nil {
			return err
		}
		a.printBill(s.Snapshot(), s.Breakdown())
		return nil
	})
}

func findItem(bill *models.Bill, name string) (models.LineItem, error) {
	for _, it := range bill.Items {
		if strings.EqualFold(it.Name, name) {
			return it, nil
		}
	}
	return models.LineItem{}, fmt.Errorf("no item named %q", name)
}

func findPerson(bill *models.Bill, name string) (models.Participant, error) {
	p, ok := bill.ParticipantByName(name)
	if !ok {
		return models.Participant{}, fmt.Errorf("no participant named %q", name)
	}
	return p, nil
}

func (a *app) printBill(bill *models.Bill, b calculator.Breakdown) {
	a.printf("%s [%s]\n", bill.DisplayName(), bill.Kind)
	if bill.Kind == models.KindEven {
		a.printf("Total:      %s\n", money.Format(bill.Total))
		a.printf("Grand total: %s\n", money.Format(b.Total))
		a.printf("Per person: %s (%d)\n", money.Format(b.PerPerson), len(bill.Participants))
		for _, p := range bill.Participants {
			a.printf("  • %s\n", p.Name)
		}
		return
	}

	for _, it := range bill.Items {
		names := make([]string, 0, len(it.AssignedTo))
		for _, id := range it.AssignedTo {
			if p, ok := bill.Participant(id); ok {
				names = append(names, p.Name)
			}
		}
		a.printf("  %-20s %12s  %s\n", it.Name, money.Format(it.Price), strings.Join(names, ", "))
	}
	for _, s := range b.Summaries {
		a.printf("• %s: %s\n", s.PersonName, money.Format(s.Total))
	}
	if len(b.Unassigned) > 0 {
		a.printf("Unassigned items: %d\n", len(b.Unassigned))
	}
	a.printf("Subtotal %s, service %s, tax %s, total %s\n",
		money.Format(b.Subtotal), money.Format(b.Service), money.Format(b.Tax), money.Format(b.Total))
}

func billNewCmd(opts *options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "new KIND TITLE",
		Short: "Create a bill, or open an existing one",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			s, src, err := a.openBill(ctx, args)
			if err != nil {
				return err
			}
			switch {
			case name != "":
				err = s.RenameBill(name)
			case src == repository.SourceNone:
				// Persist the empty bill so it shows up in the list.
				a.sync.Changed(s.Snapshot())
			}
			if err != nil {
				return err
			}
			a.printBill(s.Snapshot(), s.Breakdown())
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func billShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show KIND TITLE",
		Short: "Show a bill and its split",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			s, src, err := a.openBill(ctx, args)
			if err != nil {
				return err
			}
			if src == repository.SourceNone {
				return fmt.Errorf("no %s bill titled %q", args[0], args[1])
			}
			if src == repository.SourceDraft && a.repo.Online() {
				a.printf("(local draft)\n")
			}
			a.printBill(s.Snapshot(), s.Breakdown())
			return nil
		}),
	}
}

func billListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your bills, most recent first",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			owner, err := a.owner()
			if err != nil {
				return err
			}
			headers, _ := a.repo.ListBills(ctx, owner)
			if len(headers) == 0 {
				a.printf("No bills yet.\n")
				return nil
			}
			for _, h := range headers {
				updated := time.Unix(h.UpdatedAt, 0).Format("2006-01-02 15:04")
				a.printf("%-10s %-30s %s\n", h.Kind, h.Title, updated)
			}
			return nil
		}),
	}
}

func billDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KIND TITLE",
		Short: "Delete a bill",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			key, err := a.billKey(args[0], args[1])
			if err != nil {
				return err
			}
			switch a.sync.Delete(ctx, key) {
			case repository.Deleted:
				a.printf("Deleted %q\n", key.Title)
			case repository.NotFound:
				a.printf("Nothing to delete on the server; local draft cleared\n")
			default:
				a.printf("Local draft deleted\n")
			}
			return nil
		}),
	}
}

func billRenameCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rename KIND TITLE NAME",
		Short: "Change the display name of a bill",
		Args:  cobra.MinimumNArgs(3),
		RunE: editBill(opts, func(s *session.BillSession, args []string) error {
			return s.RenameBill(joinArgs(args))
		}),
	}
}

func billTotalCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "total KIND TITLE AMOUNT",
		Short: "Set the total of an even bill",
		Args:  cobra.ExactArgs(3),
		RunE: editBill(opts, func(s *session.BillSession, args []string) error {
			amount, err := money.ParseAmount(args[0])
			if err != nil {
				return err
			}
			return s.SetTotal(amount)
		}),
	}
}

func billAddPersonCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add-person KIND TITLE NAME...",
		Short: "Add one or more participants",
		Args:  cobra.MinimumNArgs(3),
		RunE: editBill(opts, func(s *session.BillSession, args []string) error {
			for _, name := range args {
				if _, err := s.AddParticipant(name); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func billRemovePersonCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-person KIND TITLE NAME",
		Short: "Remove a participant and their assignments",
		Args:  cobra.ExactArgs(3),
		RunE: editBill(opts, func(s *session.BillSession, args []string) error {
			p, err := findPerson(s.Snapshot(), args[0])
			if err != nil {
				return err
			}
			return s.RemoveParticipant(p.ID)
		}),
	}
}

func billAddItemCmd(opts *options) *cobra.Command {
	var to []string
	var owner string

	cmd := &cobra.Command{
		Use:   "add-item KIND TITLE ITEM PRICE",
		Short: "Add an item to an itemized or per_person bill",
		Args:  cobra.ExactArgs(4),
		RunE: editBill(opts, func(s *session.BillSession, args []string) error {
			price, err := money.ParseAmount(args[1])
			if err != nil {
				return err
			}
			bill := s.Snapshot()

			if bill.Kind == models.KindPerPerson {
				if owner == "" {
					return errors.New("--for is required on per_person bills")
				}
				p, err := findPerson(bill, owner)
				if err != nil {
					return err
				}
				_, err = s.AddItemFor(p.ID, args[0], price)
				return err
			}

			ids := make([]string, 0, len(to))
			for _, name := range to {
				p, err := findPerson(bill, name)
				if err != nil {
					return err
				}
				ids = append(ids, p.ID)
			}
			_, err = s.AddItem(args[0], price, ids)
			return err
		}),
	}

	cmd.Flags().StringSliceVar(&to, "to", nil, "participants sharing the item")
	cmd.Flags().StringVar(&owner, "for", "", "owner of the item on per_person bills")
	return cmd
}

func billRemoveItemCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-item KIND TITLE ITEM",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(3),
		RunE: editBill(opts, func(s *session.BillSession, args []string) error {
			it, err := findItem(s.Snapshot(), args[0])
			if err != nil {
				return err
			}
			return s.RemoveItem(it.ID)
		}),
	}
}

func billAssignCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "assign KIND TITLE ITEM NAME",
		Short: "Toggle whether a participant shares an item",
		Args:  cobra.ExactArgs(4),
		RunE: editBill(opts, func(s *session.BillSession, args []string) error {
			bill := s.Snapshot()
			it, err := findItem(bill, args[0])
			if err != nil {
				return err
			}
			p, err := findPerson(bill, args[1])
			if err != nil {
				return err
			}
			return s.ToggleAssignment(it.ID, p.ID)
		}),
	}
}

func billAssignAllCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "assign-all KIND TITLE ITEM",
		Short: "Share an item among every participant",
		Args:  cobra.ExactArgs(3),
		RunE: editBill(opts, func(s *session.BillSession, args []string) error {
			it, err := findItem(s.Snapshot(), args[0])
			if err != nil {
				return err
			}
			return s.AssignAll(it.ID)
		}),
	}
}

func formatOverride(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func billSurchargeCmd(opts *options) *cobra.Command {
	var service, tax bool
	var serviceAmount, taxAmount string

	cmd := &cobra.Command{
		Use:   "surcharge KIND TITLE",
		Short: "Configure service charge and tax",
		Long: `Flags that are not given keep their current value. An empty or
non-numeric amount falls back to the percentage rate.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editBill(opts, func(s *session.BillSession, _ []string) error {
				cur := s.Snapshot().Surcharge
				svcOn, taxOn := cur.ServiceEnabled, cur.TaxEnabled
				svcAmt, taxAmt := formatOverride(cur.ServiceOverride), formatOverride(cur.TaxOverride)

				flags := cmd.Flags()
				if flags.Changed("service") {
					svcOn = service
				}
				if flags.Changed("tax") {
					taxOn = tax
				}
				if flags.Changed("service-amount") {
					svcAmt = serviceAmount
				}
				if flags.Changed("tax-amount") {
					taxAmt = taxAmount
				}
				return s.SetSurcharge(svcOn, taxOn, svcAmt, taxAmt)
			})(cmd, args)
		},
	}

	cmd.Flags().BoolVar(&service, "service", true, "apply the service charge")
	cmd.Flags().BoolVar(&tax, "tax", true, "apply tax")
	cmd.Flags().StringVar(&serviceAmount, "service-amount", "", "fixed service charge instead of the rate")
	cmd.Flags().StringVar(&taxAmount, "tax-amount", "", "fixed tax instead of the rate")
	return cmd
}

func billResetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset KIND TITLE",
		Short: "Clear participants, items and surcharges",
		Args:  cobra.ExactArgs(2),
		RunE: editBill(opts, func(s *session.BillSession, args []string) error {
			return s.Reset()
		}),
	}
}

func billExportCmd(opts *options) *cobra.Command {
	var person string

	cmd := &cobra.Command{
		Use:   "export KIND TITLE",
		Short: "Print the bill as shareable text",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			s, src, err := a.openBill(ctx, args)
			if err != nil {
				return err
			}
			if src == repository.SourceNone {
				return fmt.Errorf("no %s bill titled %q", args[0], args[1])
			}
			doc := export.NewDocument(s.Snapshot(), s.Breakdown())

			if person == "" {
				err = export.TextRenderer{}.Render(a.out, doc)
			} else {
				err = renderPerson(a, doc, person)
			}
			if err != nil {
				return err
			}
			a.printf("\n")
			return nil
		}),
	}

	cmd.Flags().StringVar(&person, "person", "", "print only this participant's receipt")
	return cmd
}

func renderPerson(a *app, doc export.Document, name string) error {
	for _, s := range doc.Summaries {
		if strings.EqualFold(s.PersonName, name) {
			return export.RenderPerson(a.out, doc, s)
		}
	}
	return fmt.Errorf("no participant named %q", name)
}

func billShareCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "share KIND TITLE",
		Short: "Create a read-only share token for a saved bill",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			key, err := a.billKey(args[0], args[1])
			if err != nil {
				return err
			}
			if a.remote == nil {
				return errors.New("sharing needs a server connection")
			}

			req := connect.NewRequest(&api.ShareBillRequest{BillRef: api.BillRef{Kind: key.Kind, Title: key.Title}})
			api.SetIdentity(req.Header(), key.Owner, a.profile.Identity.Name)
			resp, err := a.remote.Bills().ShareBill(ctx, req)
			if err != nil {
				return err
			}

			a.printf("%s\n", resp.Msg.Token)
			a.printf("Expires %s\n", time.Unix(resp.Msg.ExpiresAt, 0).Format(time.RFC3339))
			return nil
		}),
	}
}

func billSharedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shared TOKEN",
		Short: "Open a bill someone shared with you",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, a *app, args []string) error {
			if a.remote == nil {
				return errors.New("opening a shared bill needs a server connection")
			}
			resp, err := a.remote.Bills().GetSharedBill(ctx, connect.NewRequest(&api.GetSharedBillRequest{Token: args[0]}))
			if err != nil {
				return err
			}
			bill := resp.Msg.Bill
			if err := (export.TextRenderer{}).Render(a.out, export.NewDocument(bill, calculator.CalculateBill(bill))); err != nil {
				return err
			}
			a.printf("\n")
			return nil
		}),
	}
}
