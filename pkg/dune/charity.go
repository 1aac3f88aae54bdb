package dune

// RunChoamCharityPhase tops every faction with fewer than 2 spice up to 2
// spice (base-game CHOAM charity rule), and pays Bene Gesserit's flat 2-spice
// stipend regardless of treasury size.
func RunChoamCharityPhase(s Snapshot, timestamp int64) (Snapshot, []Event) {
	var events []Event
	out := s.logAction("", "PHASE_STARTED", map[string]any{"phase": string(PhaseChoamCharity)}, timestamp)

	for _, f := range out.Config.Factions {
		fs := out.Factions[f]
		switch {
		case f == BeneGesserit:
			out = AddSpice(out, f, 2, "choam_charity_bg", timestamp)
			events = append(events, newEvent(EventSpiceBlown, "choam charity paid", map[string]any{"faction": string(f), "amount": 2}))
		case fs.Spice < 2:
			amount := 2 - fs.Spice
			out = AddSpice(out, f, amount, "choam_charity", timestamp)
			events = append(events, newEvent(EventSpiceBlown, "choam charity paid", map[string]any{"faction": string(f), "amount": amount}))
		}
	}

	out = out.logAction("", "PHASE_ENDED", map[string]any{"phase": string(PhaseChoamCharity)}, timestamp)
	return out, events
}
