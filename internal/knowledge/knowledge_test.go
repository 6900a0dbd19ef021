package knowledge

import "testing"

func TestFindSolutionMatchesByNameWords(t *testing.T) {
	b := NewBase()
	solution, found := b.FindSolution("у меня розетка не работает на кухне", "electrical")
	if !found {
		t.Fatal("expected a match")
	}
	if solution.ID != "elec_outlet_not_working" {
		t.Fatalf("expected elec_outlet_not_working, got %s", solution.ID)
	}
}

func TestFindSolutionRespectsCategory(t *testing.T) {
	b := NewBase()
	solution, found := b.FindSolution("течет кран в ванной", "plumbing")
	if !found || solution.ID != "plumb_faucet_leak" {
		t.Fatalf("expected plumb_faucet_leak, got %+v found=%v", solution.ID, found)
	}

	if s, found := b.FindSolution("течет кран в ванной", "electrical"); found && s.Category != "electrical" {
		t.Fatalf("category filter leaked: got %s", s.ID)
	}
}

func TestFindSolutionNoMatch(t *testing.T) {
	b := NewBase()
	if _, found := b.FindSolution("qwertyuiop", ""); found {
		t.Fatal("expected no match for gibberish")
	}
}

func TestByCategory(t *testing.T) {
	b := NewBase()
	plumbing := b.ByCategory("plumbing")
	if len(plumbing) != 3 {
		t.Fatalf("expected 3 plumbing solutions, got %d", len(plumbing))
	}
	for _, s := range plumbing {
		if s.Category != "plumbing" {
			t.Fatalf("unexpected category %s", s.Category)
		}
	}

	all := b.ByCategory("")
	if len(all) != 8 {
		t.Fatalf("expected full catalog of 8, got %d", len(all))
	}
}

func TestByID(t *testing.T) {
	b := NewBase()
	s, ok := b.ByID("appl_washer_not_drain")
	if !ok || s.Category != "appliances" {
		t.Fatalf("lookup failed: %+v ok=%v", s, ok)
	}
	if _, ok := b.ByID("missing"); ok {
		t.Fatal("expected miss for unknown id")
	}
}

func TestGenerateInstructions(t *testing.T) {
	b := NewBase()
	s, _ := b.ByID("elec_outlet_not_working")
	instr := b.GenerateInstructions(s, ClientSpecifics{Notes: "розетка на кухне", Urgency: "urgent"})
	if instr.JobTitle != s.Name {
		t.Fatalf("expected title %q, got %q", s.Name, instr.JobTitle)
	}
	if instr.Urgency != "urgent" || instr.ClientNotes != "розетка на кухне" {
		t.Fatalf("client specifics not merged: %+v", instr)
	}
	if len(instr.StepByStep) != len(s.Steps) {
		t.Fatalf("steps not carried over")
	}

	instr = b.GenerateInstructions(s, ClientSpecifics{})
	if instr.Urgency != "normal" {
		t.Fatalf("expected default urgency normal, got %s", instr.Urgency)
	}
}
