package dune

// Component D: every mutation is a pure (Snapshot, args) -> Snapshot
// function, cloning rather than aliasing its input, and logging a
// structured ActionLogEntry (§4.D contract c).

// AddSpice credits faction f with amount spice (e.g. CHOAM charity, spice
// collection). amount must be >= 0; use SpendSpice to remove.
func AddSpice(s Snapshot, f Faction, amount int, reason string, timestamp int64) Snapshot {
	if amount < 0 {
		panicInvariant("spice-conservation", "AddSpice called with negative amount")
	}
	out := s.clone()
	fs := out.Factions[f]
	fs.Spice += amount
	out.Factions[f] = fs
	return out.logAction(f, "SPICE_ADDED", map[string]any{"amount": amount, "reason": reason}, timestamp)
}

// SpendSpice debits faction f by amount. Returns a RuleError rather than
// mutating if f lacks sufficient spice.
func SpendSpice(s Snapshot, f Faction, amount int, reason string, timestamp int64) (Snapshot, *RuleError) {
	fs := s.Factions[f]
	if fs.Spice < amount {
		return s, newRuleError(ErrInsufficientSpice, "amount",
			"faction has insufficient spice for this action")
	}
	out := s.clone()
	fs = out.Factions[f]
	fs.Spice -= amount
	out.Factions[f] = fs
	return out.logAction(f, "SPICE_SPENT", map[string]any{"amount": amount, "reason": reason}, timestamp), nil
}

// TransferSpice moves spice directly between two factions' treasuries
// (e.g. a Guild shipment fee, a treachery-card sale payment).
func TransferSpice(s Snapshot, from, to Faction, amount int, reason string, timestamp int64) (Snapshot, *RuleError) {
	if s.Factions[from].Spice < amount {
		return s, newRuleError(ErrInsufficientSpice, "amount", "payer has insufficient spice")
	}
	out := s.clone()
	ff := out.Factions[from]
	ff.Spice -= amount
	out.Factions[from] = ff
	ft := out.Factions[to]
	ft.Spice += amount
	out.Factions[to] = ft
	return out.logAction(from, "SPICE_TRANSFERRED",
		map[string]any{"to": string(to), "amount": amount, "reason": reason}, timestamp), nil
}

// PlaceSpiceOnBoard deposits a spice blow (or a remaining deposit) at a
// territory/sector.
func PlaceSpiceOnBoard(s Snapshot, territoryID TerritoryID, sector, amount int, timestamp int64) Snapshot {
	out := s.clone()
	out.SpiceOnBoard = append(out.SpiceOnBoard, SpiceOnBoard{
		TerritoryID: territoryID, Sector: sector, Amount: amount,
	})
	return out.logAction("", "SPICE_PLACED",
		map[string]any{"territoryId": string(territoryID), "sector": sector, "amount": amount}, timestamp)
}

// CollectSpice removes up to amount spice from a board deposit at
// territoryID and credits faction f, following the "collect from the
// largest deposit first" rule only insofar as the caller chooses which
// deposit to target; this function operates on the single deposit given.
func CollectSpice(s Snapshot, f Faction, territoryID TerritoryID, amount int, timestamp int64) Snapshot {
	out := s.clone()
	remaining := amount
	newDeposits := make([]SpiceOnBoard, 0, len(out.SpiceOnBoard))
	for _, d := range out.SpiceOnBoard {
		if d.TerritoryID != territoryID || remaining <= 0 {
			newDeposits = append(newDeposits, d)
			continue
		}
		take := d.Amount
		if take > remaining {
			take = remaining
		}
		d.Amount -= take
		remaining -= take
		if d.Amount > 0 {
			newDeposits = append(newDeposits, d)
		}
	}
	out.SpiceOnBoard = newDeposits
	collected := amount - remaining
	fs := out.Factions[f]
	fs.Spice += collected
	out.Factions[f] = fs
	return out.logAction(f, "SPICE_COLLECTED",
		map[string]any{"territoryId": string(territoryID), "amount": collected}, timestamp)
}
