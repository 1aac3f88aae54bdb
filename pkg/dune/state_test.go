package dune

import "testing"

func TestSnapshot_Clone_Independent(t *testing.T) {
	s := NewSnapshotBuilder().WithSpice(Atreides, 10).Build()
	c := s.clone()

	fs := c.Factions[Atreides]
	fs.Spice = 999
	c.Factions[Atreides] = fs

	if s.Factions[Atreides].Spice != 10 {
		t.Errorf("mutating clone's faction map must not affect original, got %d", s.Factions[Atreides].Spice)
	}

	c.ActionLog = append(c.ActionLog, ActionLogEntry{Type: "X"})
	if len(s.ActionLog) != 0 {
		t.Error("appending to clone's action log must not affect original")
	}
}

func TestForcePool_Total_ConservesAcrossBuckets(t *testing.T) {
	fp := ForcePool{
		ReservesRegular: 10,
		OnBoard:         []Stack{{TerritoryID: "arrakeen", Regular: 5}, {TerritoryID: "carthag", Regular: 3}},
		TanksRegular:    2,
	}
	if got := fp.Total(false); got != 20 {
		t.Errorf("expected total 20, got %d", got)
	}
}

func TestLogAction_AssignsIncrementingIDs(t *testing.T) {
	s := NewSnapshotBuilder().Build()
	s = s.logAction(Atreides, "TEST_ONE", nil, 100)
	s = s.logAction(Harkonnen, "TEST_TWO", nil, 101)

	if len(s.ActionLog) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(s.ActionLog))
	}
	if s.ActionLog[0].ID != 0 || s.ActionLog[1].ID != 1 {
		t.Errorf("expected incrementing ids 0,1, got %d,%d", s.ActionLog[0].ID, s.ActionLog[1].ID)
	}
}

func TestNextPhaseName_WrapsToStorm(t *testing.T) {
	if NextPhaseName(PhaseMentatPause) != PhaseStorm {
		t.Errorf("expected mentat pause to wrap to storm")
	}
	if NextPhaseName(PhaseStorm) != PhaseSpiceBlow {
		t.Errorf("expected storm to lead to spice blow")
	}
}
