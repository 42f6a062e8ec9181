package models

import (
	"testing"
)

func TestRemoveParticipantCascades(t *testing.T) {
	bill := NewBill(BillKey{Owner: "a@example.com", Kind: KindItemized, Title: "Dinner"})
	alice := bill.AddParticipant("Alice")
	bob := bill.AddParticipant("Bob")

	shared := bill.AddItem("Pizza", 30000, []string{alice.ID, bob.ID})
	solo := bill.AddItem("Salad", 10000, []string{bob.ID})

	if !bill.RemoveParticipant(bob.ID) {
		t.Fatal("RemoveParticipant returned false for existing participant")
	}

	if len(bill.Items) != 2 {
		t.Fatalf("items must survive participant removal, got %d", len(bill.Items))
	}
	for _, it := range bill.Items {
		if it.IsAssignedTo(bob.ID) {
			t.Errorf("item %q still assigned to removed participant", it.Name)
		}
	}

	got, _ := bill.Item(shared.ID)
	if len(got.AssignedTo) != 1 || got.AssignedTo[0] != alice.ID {
		t.Errorf("shared item assignees = %v, want [%s]", got.AssignedTo, alice.ID)
	}
	got, _ = bill.Item(solo.ID)
	if len(got.AssignedTo) != 0 {
		t.Errorf("solo item should be unassigned, got %v", got.AssignedTo)
	}

	if bill.RemoveParticipant(bob.ID) {
		t.Error("removing an absent participant should report false")
	}
}

func TestToggleAssignment(t *testing.T) {
	bill := NewBill(BillKey{Owner: "a@example.com", Kind: KindItemized, Title: "Lunch"})
	alice := bill.AddParticipant("Alice")
	item := bill.AddItem("Tea", 5000, nil)

	if !bill.ToggleAssignment(item.ID, alice.ID) {
		t.Fatal("ToggleAssignment on existing item returned false")
	}
	got, _ := bill.Item(item.ID)
	if !got.IsAssignedTo(alice.ID) {
		t.Error("expected Alice to be assigned after first toggle")
	}

	bill.ToggleAssignment(item.ID, alice.ID)
	got, _ = bill.Item(item.ID)
	if got.IsAssignedTo(alice.ID) {
		t.Error("expected Alice to be unassigned after second toggle")
	}

	if bill.ToggleAssignment("missing", alice.ID) {
		t.Error("ToggleAssignment on missing item should return false")
	}
}

func TestAssignAll(t *testing.T) {
	bill := NewBill(BillKey{Owner: "a@example.com", Kind: KindItemized, Title: "Lunch"})
	bill.AddParticipant("Alice")
	bill.AddParticipant("Bob")
	item := bill.AddItem("Rice", 8000, nil)

	bill.AssignAll(item.ID)
	got, _ := bill.Item(item.ID)
	if len(got.AssignedTo) != 2 {
		t.Errorf("AssignAll assigned %d participants, want 2", len(got.AssignedTo))
	}
}

func TestCloneIsDeep(t *testing.T) {
	bill := NewBill(BillKey{Owner: "a@example.com", Kind: KindItemized, Title: "Trip"})
	alice := bill.AddParticipant("Alice")
	item := bill.AddItem("Fuel", 100000, []string{alice.ID})
	override := 2000.0
	bill.Surcharge.ServiceOverride = &override

	clone := bill.Clone()
	clone.Participants[0].Name = "Changed"
	clone.Items[0].AssignedTo[0] = "someone-else"
	*clone.Surcharge.ServiceOverride = 1

	if bill.Participants[0].Name != "Alice" {
		t.Error("clone shares participants with original")
	}
	got, _ := bill.Item(item.ID)
	if got.AssignedTo[0] != alice.ID {
		t.Error("clone shares assignment slices with original")
	}
	if *bill.Surcharge.ServiceOverride != 2000 {
		t.Error("clone shares override pointer with original")
	}
}

func TestHeader(t *testing.T) {
	even := NewBill(BillKey{Owner: "a@example.com", Kind: KindEven, Title: "Karaoke"})
	even.Total = 250000
	even.AddParticipant("Alice")
	if h := even.Header(); h.Total != 250000 || h.ParticipantCount != 1 || h.Name != "Karaoke" {
		t.Errorf("unexpected even header: %+v", h)
	}

	itemized := NewBill(BillKey{Owner: "a@example.com", Kind: KindItemized, Title: "Dinner"})
	itemized.AddItem("A", 10000, nil)
	itemized.AddItem("B", 15000, nil)
	if h := itemized.Header(); h.Total != 25000 {
		t.Errorf("itemized header total = %v, want 25000", h.Total)
	}
}

func TestParseBillKind(t *testing.T) {
	for _, s := range []string{"even", "itemized", "per_person"} {
		if _, err := ParseBillKind(s); err != nil {
			t.Errorf("ParseBillKind(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := ParseBillKind("custom"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if KindPerPerson.Mode() != EqualPerHead || KindItemized.Mode() != Proportional {
		t.Error("unexpected distribution mode mapping")
	}
}
