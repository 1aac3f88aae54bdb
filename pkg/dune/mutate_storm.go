package dune

// MoveStorm advances the storm by delta sectors (wrapping mod
// StormSectorCount), destroying exposed forces and spice in its path
// (§4.E.1). Polar Sink is never affected. The caller (storm kernel)
// computes delta from the dialed/drawn amount before calling this.
func MoveStorm(s Snapshot, delta int, timestamp int64) Snapshot {
	out := s.clone()
	start := out.StormSector
	for i := 1; i <= delta; i++ {
		sector := (start + i) % StormSectorCount
		out = destroyInSector(out, sector, timestamp)
	}
	out.StormSector = (start + delta) % StormSectorCount
	return out.logAction("", "STORM_MOVED", map[string]any{"delta": delta, "newSector": out.StormSector}, timestamp)
}

func destroyInSector(s Snapshot, sector int, timestamp int64) Snapshot {
	out := s
	for _, t := range AllTerritories() {
		if t.ProtectedFromStorm {
			continue
		}
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
		for _, f := range out.Config.Factions {
			st := ForcesInTerritory(out, f, t.ID)
			// Fremen forces in any stronghold are never destroyed by
			// storm (§4.E.1 Fremen storm immunity); Fremen elsewhere take
			// normal losses.
			if f == Fremen && st.Regular+st.Elite > 0 {
				protectedStronghold := t.IsStronghold
				if !protectedStronghold {
					out = KillForces(out, f, t.ID, st.Regular, st.Elite, timestamp)
				}
				continue
			}
			if st.Regular+st.Elite > 0 {
				out = KillForces(out, f, t.ID, st.Regular, st.Elite, timestamp)
			}
		}
		newDeposits := out.SpiceOnBoard[:0]
		for _, d := range out.SpiceOnBoard {
			if d.TerritoryID == t.ID {
				continue
			}
			newDeposits = append(newDeposits, d)
		}
		out.SpiceOnBoard = newDeposits
	}
	return out
}

// SetStormOrder records the faction turn order derived from the current
// storm sector, computed once per turn at the start of shipment/movement
// and bidding (§4.E.1, §4.E.2).
func SetStormOrder(s Snapshot, order []Faction, timestamp int64) Snapshot {
	out := s.clone()
	out.StormOrder = append([]Faction(nil), order...)
	return out.logAction("", "STORM_ORDER_SET", nil, timestamp)
}
