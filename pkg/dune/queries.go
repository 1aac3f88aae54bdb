package dune

// Component C: pure, side-effect-free reads over a Snapshot. None of these
// ever mutate s; every one takes a Snapshot by value.

// ForcesInTerritory returns the Stack faction f has at territoryID, or the
// zero Stack (Regular==0 && Elite==0) if it has none there.
func ForcesInTerritory(s Snapshot, f Faction, territoryID TerritoryID) Stack {
	fs, ok := s.Factions[f]
	if !ok {
		return Stack{}
	}
	for _, st := range fs.Pool.OnBoard {
		if st.TerritoryID == territoryID {
			return st
		}
	}
	return Stack{TerritoryID: territoryID}
}

// OccupantsOfTerritory returns every faction with at least one force (or
// BG advisor) present in territoryID.
func OccupantsOfTerritory(s Snapshot, territoryID TerritoryID) []Faction {
	var out []Faction
	for _, f := range s.Config.Factions {
		st := ForcesInTerritory(s, f, territoryID)
		if st.Regular > 0 || st.Elite > 0 || st.Advisors > 0 {
			out = append(out, f)
		}
	}
	return out
}

// FactionsInSector returns every faction occupying the given storm sector,
// across whichever territory(ies) include it.
func FactionsInSector(s Snapshot, sector int) []Faction {
	seen := map[Faction]bool{}
	var out []Faction
	for _, t := range AllTerritories() {
		inSector := false
		for _, sec := range t.Sectors {
			if sec == sector {
				inSector = true
				break
			}
		}
		if !inSector {
			continue
		}
		for _, f := range OccupantsOfTerritory(s, t.ID) {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// BGAdvisorsInTerritory reports whether Bene Gesserit forces in
// territoryID are currently flipped to their non-combatant advisor side.
func BGAdvisorsInTerritory(s Snapshot, territoryID TerritoryID) bool {
	st := ForcesInTerritory(s, BeneGesserit, territoryID)
	return st.Advisors > 0
}

// BGFightersInSector reports whether Bene Gesserit has any fighting
// (non-advisor) forces anywhere in the given sector.
func BGFightersInSector(s Snapshot, sector int) bool {
	fs, ok := s.Factions[BeneGesserit]
	if !ok {
		return false
	}
	for _, st := range fs.Pool.OnBoard {
		t := TerritoryByID(st.TerritoryID)
		for _, sec := range t.Sectors {
			if sec == sector && st.Regular-st.Advisors > 0 {
				return true
			}
		}
	}
	return false
}

// SpiceOf returns faction f's current spice total.
func SpiceOf(s Snapshot, f Faction) int {
	return s.Factions[f].Spice
}

// HandOf returns faction f's current treachery hand.
func HandOf(s Snapshot, f Faction) []TreacheryCard {
	return s.Factions[f].Hand
}

// ReserveForceCount returns the forces faction f has left in reserves.
func ReserveForceCount(s Snapshot, f Faction, elite bool) int {
	fs := s.Factions[f]
	if elite {
		return fs.Pool.ReservesElite
	}
	return fs.Pool.ReservesRegular
}

// IsInStorm reports whether sector is currently under the storm.
func IsInStorm(s Snapshot, sector int) bool {
	return sector == s.StormSector
}

// IsTerritoryInStorm reports whether every sector of territoryID is
// currently stormed (a territory spanning multiple sectors is only fully
// blocked when the storm covers all of them; this engine's territories
// each occupy exactly one sector, Polar Sink none).
func IsTerritoryInStorm(s Snapshot, territoryID TerritoryID) bool {
	t := TerritoryByID(territoryID)
	if t.ProtectedFromStorm || len(t.Sectors) == 0 {
		return false
	}
	for _, sec := range t.Sectors {
		if sec != s.StormSector {
			return false
		}
	}
	return true
}

// CheckOrnithopterAccess reports whether faction f currently holds
// ornithopter-granting fighting forces (Arrakeen or Carthag).
func CheckOrnithopterAccess(s Snapshot, f Faction) bool {
	for _, t := range AllTerritories() {
		if !t.GrantsOrnithopter {
			continue
		}
		st := ForcesInTerritory(s, f, t.ID)
		if st.Regular-st.Advisors > 0 || st.Elite > 0 {
			return true
		}
	}
	return false
}

// MovementRangeFor returns the number of territory-steps faction f may
// move in one movement action this turn: 1 normally, 2 with ornithopter
// access, 3 for Guild (independent of ornithopters, per §4.E.5).
func MovementRangeFor(s Snapshot, f Faction) int {
	if f == Guild {
		return 3
	}
	if CheckOrnithopterAccess(s, f) {
		return 2
	}
	return 1
}

// FindPath returns a shortest sequence of territory ids from `from` to
// `to` (inclusive of both ends) of at most maxSteps steps, skipping
// stormed territories other than the endpoints; nil if no such path
// exists. Grounded on the teacher's BFS convoy-path search.
func FindPath(s Snapshot, from, to TerritoryID, maxSteps int) []TerritoryID {
	if from == to {
		return []TerritoryID{from}
	}

	type node struct {
		id   TerritoryID
		path []TerritoryID
	}
	visited := map[TerritoryID]bool{from: true}
	queue := []node{{id: from, path: []TerritoryID{from}}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if len(cur.path)-1 >= maxSteps {
			continue
		}
		for _, next := range AdjacentTerritories(cur.id) {
			if visited[next] {
				continue
			}
			if next != to && IsTerritoryInStorm(s, next) {
				continue
			}
			nextPath := append(append([]TerritoryID(nil), cur.path...), next)
			if next == to {
				return nextPath
			}
			visited[next] = true
			queue = append(queue, node{id: next, path: nextPath})
		}
	}
	return nil
}

// ReachableTerritories returns every territory faction f can move to from
// `from` in one movement action this turn (within MovementRangeFor steps,
// never through/into a stormed territory unless it's the final Fremen
// exception handled by the movement kernel itself).
func ReachableTerritories(s Snapshot, f Faction, from TerritoryID) []TerritoryID {
	maxSteps := MovementRangeFor(s, f)
	var out []TerritoryID
	for _, t := range AllTerritories() {
		if t.ID == from {
			continue
		}
		if IsTerritoryInStorm(s, t.ID) {
			continue
		}
		if path := FindPath(s, from, t.ID, maxSteps); path != nil {
			out = append(out, t.ID)
		}
	}
	return out
}

// IsBattleCapable reports whether faction f has any fighting forces
// (non-advisor) present in territoryID.
func IsBattleCapable(s Snapshot, f Faction, territoryID TerritoryID) bool {
	st := ForcesInTerritory(s, f, territoryID)
	return st.Regular-st.Advisors > 0 || st.Elite > 0
}

// IsEligibleToBid reports whether faction f may currently participate in
// bidding: it must have room in hand (spice is not checked here), and a
// faction with a full hand is skipped entirely rather than erroring.
func IsEligibleToBid(s Snapshot, f Faction) bool {
	fs := s.Factions[f]
	return len(fs.Hand) < MaxHandSize(f)
}

// ShouldTriggerPrisonBreak reports whether f is eligible for the
// Harkonnen-specific prison-break check: f is Harkonnen and holds at
// least one captured leader belonging to another faction.
func ShouldTriggerPrisonBreak(s Snapshot, f Faction) bool {
	if f != Harkonnen {
		return false
	}
	return len(s.Factions[f].HarkonnenCaptures) > 0
}

// ValidateStrongholdOccupancy reports whether adding an occupant to
// territoryID would violate the two-faction stronghold cap (§3 invariant
// 3). Only strongholds are checked; a faction already present may always
// add forces.
func ValidateStrongholdOccupancy(s Snapshot, territoryID TerritoryID, enteringFaction Faction) *RuleError {
	t := TerritoryByID(territoryID)
	if !t.IsStronghold {
		return nil
	}
	occupants := OccupantsOfTerritory(s, territoryID)
	already := false
	count := 0
	for _, f := range occupants {
		if f == enteringFaction {
			already = true
			continue
		}
		count++
	}
	if already || count < 2 {
		return nil
	}
	return newRuleError(ErrOccupancyLimitExceeded, "territoryId",
		"stronghold already holds two other factions")
}

// AlliedWith returns f's current ally, or "" if f has none.
func AlliedWith(s Snapshot, f Faction) Faction {
	return s.Factions[f].AllyID
}

// IsAllied reports whether a and b are currently allied.
func IsAllied(s Snapshot, a, b Faction) bool {
	for _, al := range s.Alliances {
		if (al.A == a && al.B == b) || (al.A == b && al.B == a) {
			return true
		}
	}
	return false
}

// StormOrderFrom returns the faction turn order for shipment/movement and
// bidding, starting just clockwise of the storm (§4.E.1): factions are
// ordered by the sector of their on-board forces lying nearest clockwise
// from startSector, wrapping; factions with nothing on board come last.
func StormOrderFrom(s Snapshot, startSector int) []Faction {
	type seated struct {
		f      Faction
		sector int
	}
	var seats []seated
	for _, f := range s.Config.Factions {
		fs := s.Factions[f]
		best := -1
		for _, st := range fs.Pool.OnBoard {
			t := TerritoryByID(st.TerritoryID)
			for _, sec := range t.Sectors {
				d := (sec - startSector + StormSectorCount) % StormSectorCount
				if best == -1 || d < best {
					best = d
				}
			}
		}
		if best == -1 {
			best = StormSectorCount // factions with nothing on board seat last
		}
		seats = append(seats, seated{f, best})
	}
	for i := 1; i < len(seats); i++ {
		for j := i; j > 0 && seats[j].sector < seats[j-1].sector; j-- {
			seats[j], seats[j-1] = seats[j-1], seats[j]
		}
	}
	out := make([]Faction, len(seats))
	for i, st := range seats {
		out[i] = st.f
	}
	return out
}
