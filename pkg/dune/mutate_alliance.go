package dune

// FormAlliance records a and b as allies (§3 invariant 5: a faction has at
// most one ally at a time). Returns a RuleError if either already has a
// different ally.
func FormAlliance(s Snapshot, a, b Faction, timestamp int64) (Snapshot, *RuleError) {
	if s.Factions[a].AllyID != "" || s.Factions[b].AllyID != "" {
		return s, newRuleError(ErrNotEligible, "ally", "a faction may have only one ally at a time")
	}
	out := s.clone()
	fa := out.Factions[a]
	fa.AllyID = b
	out.Factions[a] = fa
	fb := out.Factions[b]
	fb.AllyID = a
	out.Factions[b] = fb
	out.Alliances = append(out.Alliances, Alliance{A: a, B: b})
	return out.logAction(a, "ALLIANCE_FORMED", map[string]any{"with": string(b)}, timestamp), nil
}

// BreakAlliance dissolves the alliance between a and b, if one exists.
func BreakAlliance(s Snapshot, a, b Faction, timestamp int64) Snapshot {
	out := s.clone()
	fa := out.Factions[a]
	fa.AllyID = ""
	out.Factions[a] = fa
	fb := out.Factions[b]
	fb.AllyID = ""
	out.Factions[b] = fb
	newAlliances := out.Alliances[:0]
	for _, al := range out.Alliances {
		if (al.A == a && al.B == b) || (al.A == b && al.B == a) {
			continue
		}
		newAlliances = append(newAlliances, al)
	}
	out.Alliances = newAlliances
	return out.logAction(a, "ALLIANCE_BROKEN", map[string]any{"with": string(b)}, timestamp)
}

// ProposeDeal records a new pending deal between factions (§ SUPPLEMENTED
// FEATURES, Deals). The engine tracks only structured terms/status, never
// validates deal content.
func ProposeDeal(s Snapshot, proposer, recipient Faction, terms string, timestamp int64) Snapshot {
	out := s.clone()
	id := out.NextDealID
	out.NextDealID++
	deal := Deal{ID: id, Proposer: proposer, Recipient: recipient, Turn: out.Turn, Terms: terms, Status: DealPending}
	out.PendingDeals = append(out.PendingDeals, deal)
	return out.logAction(proposer, "DEAL_PROPOSED",
		map[string]any{"dealId": id, "recipient": string(recipient)}, timestamp)
}

// ResolveDeal moves a pending deal to accepted/rejected/withdrawn and into
// history.
func ResolveDeal(s Snapshot, dealID int, status DealStatus, timestamp int64) Snapshot {
	out := s.clone()
	var resolved *Deal
	newPending := out.PendingDeals[:0]
	for _, d := range out.PendingDeals {
		if d.ID == dealID {
			d.Status = status
			resolved = &d
			continue
		}
		newPending = append(newPending, d)
	}
	out.PendingDeals = newPending
	if resolved != nil {
		out.DealHistory = append(out.DealHistory, *resolved)
	}
	return out.logAction("", "DEAL_RESOLVED", map[string]any{"dealId": dealID, "status": string(status)}, timestamp)
}

// TriggerNexus marks the current turn as a NEXUS (alliance renegotiation
// window), opened after the first spice blow reveals Shai-Hulud and
// closing alliances are locked for the rest of the turn (§ SUPPLEMENTED
// FEATURES, original base-game NEXUS mechanic the distilled spec omitted).
func TriggerNexus(s Snapshot, timestamp int64) Snapshot {
	out := s.clone()
	out.NexusOccurring = true
	return out.logAction("", "NEXUS_TRIGGERED", nil, timestamp)
}

// CloseNexus ends the alliance renegotiation window at the end of Mentat
// Pause.
func CloseNexus(s Snapshot, timestamp int64) Snapshot {
	out := s.clone()
	out.NexusOccurring = false
	return out.logAction("", "NEXUS_CLOSED", nil, timestamp)
}
