package dune

// TerritoryID identifies a territory by its static, stable string id.
type TerritoryID string

// StormSectorCount is the number of sectors the storm track is divided into.
const StormSectorCount = 18

// Territory is static board data: never mutated at runtime.
type Territory struct {
	ID   TerritoryID
	Name string

	// Sectors lists every storm sector this territory occupies. Polar Sink
	// has none (it sits outside the storm track entirely).
	Sectors []int

	IsStronghold bool

	// ProtectedFromStorm is true only for Polar Sink: the storm can never
	// cover it, and forces there are never destroyed by storm passage.
	ProtectedFromStorm bool

	// HasSpiceSlot marks a territory as a possible spice-blow location.
	// SpiceAmount is the amount placed there the most recent time a spice
	// card named it; it is authoritative board data (board.spiceOnBoard),
	// not part of this static table, but the slot's existence is static.
	HasSpiceSlot bool

	// GrantsOrnithopter is true for Arrakeen and Carthag: fighters (not BG
	// advisors) present there grant their faction ornithopter movement range.
	GrantsOrnithopter bool

	// Adjacent lists directly reachable neighbor territory ids for
	// non-Polar-Sink territories. Polar Sink is adjacent to every
	// territory and every territory is adjacent to Polar Sink; that
	// special case is handled in AdjacentTerritories rather than stored
	// redundantly in every entry.
	Adjacent []TerritoryID
}

// PolarSink is the one territory that is never covered by storm and that
// every other territory can ship/move to or from regardless of distance
// (it is the universal hub of the board).
const PolarSink TerritoryID = "polar_sink"

// TerritoryByID returns the static territory record for id.
// Unknown ids are a programming error (fail fast per §4.A contract).
func TerritoryByID(id TerritoryID) Territory {
	t, ok := territories[id]
	if !ok {
		panic("dune: unknown territory " + string(id))
	}
	return t
}

// AllTerritories returns every territory in stable table order (by sector,
// Polar Sink last).
func AllTerritories() []Territory {
	out := make([]Territory, 0, len(territoryOrder))
	for _, id := range territoryOrder {
		out = append(out, territories[id])
	}
	return out
}

// TerritoryAtSector returns the territory occupying the given storm sector,
// or false if no territory occupies it (should not happen for 0..17).
func TerritoryAtSector(sector int) (Territory, bool) {
	for _, t := range territories {
		for _, s := range t.Sectors {
			if s == sector {
				return t, true
			}
		}
	}
	return Territory{}, false
}

// AdjacentTerritories returns every territory directly reachable from id in
// one step, folding in the Polar Sink universal-hub special case.
func AdjacentTerritories(id TerritoryID) []TerritoryID {
	if id == PolarSink {
		out := make([]TerritoryID, 0, len(territoryOrder)-1)
		for _, other := range territoryOrder {
			if other != PolarSink {
				out = append(out, other)
			}
		}
		return out
	}
	t := TerritoryByID(id)
	out := make([]TerritoryID, 0, len(t.Adjacent)+1)
	out = append(out, t.Adjacent...)
	out = append(out, PolarSink)
	return out
}

// IsAdjacent reports whether b is directly reachable from a in one step.
func IsAdjacent(a, b TerritoryID) bool {
	for _, n := range AdjacentTerritories(a) {
		if n == b {
			return true
		}
	}
	return false
}
