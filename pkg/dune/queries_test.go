package dune

import "testing"

func TestForcesInTerritory_ZeroWhenAbsent(t *testing.T) {
	s := NewSnapshotBuilder().Build()
	st := ForcesInTerritory(s, Atreides, "arrakeen")
	if st.Regular != 0 || st.Elite != 0 {
		t.Errorf("expected zero stack, got %+v", st)
	}
}

func TestValidateStrongholdOccupancy_BlocksThirdFaction(t *testing.T) {
	s := NewSnapshotBuilder().
		WithForcesOnBoard(Atreides, "arrakeen", 5, 0).
		WithForcesOnBoard(Harkonnen, "arrakeen", 5, 0).
		Build()

	if re := ValidateStrongholdOccupancy(s, "arrakeen", Emperor); re == nil {
		t.Error("expected occupancy error for a third faction entering a full stronghold")
	}
	if re := ValidateStrongholdOccupancy(s, "arrakeen", Atreides); re != nil {
		t.Error("a faction already present should not be blocked by its own occupancy")
	}
}

func TestMovementRangeFor_GuildAndOrnithopter(t *testing.T) {
	s := NewSnapshotBuilder().Build()
	if got := MovementRangeFor(s, Guild); got != 3 {
		t.Errorf("expected Guild range 3, got %d", got)
	}

	s2 := NewSnapshotBuilder().WithForcesOnBoard(Atreides, "arrakeen", 1, 0).Build()
	if got := MovementRangeFor(s2, Atreides); got != 2 {
		t.Errorf("expected ornithopter range 2, got %d", got)
	}
}

func TestFindPath_RespectsStormBlocking(t *testing.T) {
	s := NewSnapshotBuilder().WithStormSector(1).Build() // arrakeen sits at sector 1
	path := FindPath(s, "sietch_tabr", "imperial_basin", 1)
	if path != nil {
		t.Errorf("expected nil path around a stormed territory at 1 step, got %v", path)
	}
	path = FindPath(s, "sietch_tabr", "imperial_basin", 3)
	if path == nil {
		t.Error("expected a path to exist via Polar Sink with enough steps")
	}
}

func TestStormOrderFrom_ClosestForcesSeatFirst(t *testing.T) {
	s := NewSnapshotBuilder().WithForcesOnBoard(Atreides, "arrakeen", 1, 0).Build()
	order := StormOrderFrom(s, 0)
	if len(order) != 6 {
		t.Fatalf("expected 6 seats, got %d", len(order))
	}
	if order[0] != Atreides {
		t.Errorf("expected Atreides (only faction with forces on board) to seat first, got %s", order[0])
	}
}
