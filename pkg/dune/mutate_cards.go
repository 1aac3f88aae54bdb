package dune

// DrawTreacheryCard moves the top card of the treachery deck into f's
// hand. Returns a RuleError if f's hand is already at cap (§3 invariant
// 6) or the deck is empty (reshuffle-from-discard is the caller's
// responsibility, mirroring the teacher's explicit-reshuffle pattern).
func DrawTreacheryCard(s Snapshot, f Faction, timestamp int64) (Snapshot, *RuleError) {
	fs := s.Factions[f]
	if len(fs.Hand) >= MaxHandSize(f) {
		return s, newRuleError(ErrHandSizeExceeded, "hand", "hand is already at capacity")
	}
	if len(s.TreacheryDeck) == 0 {
		return s, newRuleError(ErrNotEligible, "deck", "treachery deck is empty")
	}
	out := s.clone()
	card := out.TreacheryDeck[0]
	out.TreacheryDeck = out.TreacheryDeck[1:]
	card.Location = CardInHand
	card.OwnerID = f
	fs = out.Factions[f]
	fs.Hand = append(fs.Hand, card)
	out.Factions[f] = fs
	return out.logAction(f, "CARD_DRAWN", map[string]any{"cardInstanceId": card.InstanceID}, timestamp), nil
}

// DiscardTreacheryCard moves a card from f's hand to the discard pile
// (used after a one-shot weapon/defense is played, or a hand-size trim).
func DiscardTreacheryCard(s Snapshot, f Faction, instanceID int, timestamp int64) Snapshot {
	out := s.clone()
	fs := out.Factions[f]
	var card TreacheryCard
	newHand := fs.Hand[:0]
	for _, c := range fs.Hand {
		if c.InstanceID == instanceID {
			card = c
			continue
		}
		newHand = append(newHand, c)
	}
	fs.Hand = newHand
	out.Factions[f] = fs
	card.Location = CardInDiscard
	card.OwnerID = ""
	out.TreacheryDiscard = append(out.TreacheryDiscard, card)
	return out.logAction(f, "CARD_DISCARDED", map[string]any{"cardInstanceId": instanceID}, timestamp)
}

// TransferTreacheryCard moves a card directly between two hands (Karama
// trade, alliance gift), bypassing the deck/discard.
func TransferTreacheryCard(s Snapshot, from, to Faction, instanceID int, timestamp int64) (Snapshot, *RuleError) {
	toFs := s.Factions[to]
	if len(toFs.Hand) >= MaxHandSize(to) {
		return s, newRuleError(ErrHandSizeExceeded, "hand", "recipient hand is already at capacity")
	}
	out := s.clone()
	fromFs := out.Factions[from]
	var card TreacheryCard
	newHand := fromFs.Hand[:0]
	found := false
	for _, c := range fromFs.Hand {
		if c.InstanceID == instanceID {
			card = c
			found = true
			continue
		}
		newHand = append(newHand, c)
	}
	if !found {
		return s, newRuleError(ErrNotEligible, "cardInstanceId", "card not in sender's hand")
	}
	fromFs.Hand = newHand
	out.Factions[from] = fromFs
	card.OwnerID = to
	toFs = out.Factions[to]
	toFs.Hand = append(toFs.Hand, card)
	out.Factions[to] = toFs
	return out.logAction(from, "CARD_TRANSFERRED",
		map[string]any{"to": string(to), "cardInstanceId": instanceID}, timestamp), nil
}

// ReshuffleTreacheryDiscard shuffles the discard pile back into the deck
// when the deck runs out (order supplied by the caller; this package
// never draws randomness itself, per §9).
func ReshuffleTreacheryDiscard(s Snapshot, newOrder []int, timestamp int64) Snapshot {
	out := s.clone()
	byID := make(map[int]TreacheryCard, len(out.TreacheryDiscard))
	for _, c := range out.TreacheryDiscard {
		byID[c.InstanceID] = c
	}
	deck := make([]TreacheryCard, 0, len(newOrder))
	for _, id := range newOrder {
		c := byID[id]
		c.Location = CardInDeck
		deck = append(deck, c)
	}
	out.TreacheryDeck = append(out.TreacheryDeck, deck...)
	out.TreacheryDiscard = nil
	return out.logAction("", "TREACHERY_DECK_RESHUFFLED", map[string]any{"count": len(newOrder)}, timestamp)
}

// DrawSpiceCard moves the top card of the spice deck to discard pile A
// (or B), returning the revealed card for the phase engine to act on.
func DrawSpiceCard(s Snapshot, discardToB bool, timestamp int64) (Snapshot, SpiceCard, *RuleError) {
	if len(s.SpiceDeck) == 0 {
		return s, SpiceCard{}, newRuleError(ErrNotEligible, "deck", "spice deck is empty")
	}
	out := s.clone()
	card := out.SpiceDeck[0]
	out.SpiceDeck = out.SpiceDeck[1:]
	card.Location = CardInDiscard
	if discardToB {
		out.SpiceDiscardB = append(out.SpiceDiscardB, card)
	} else {
		out.SpiceDiscardA = append(out.SpiceDiscardA, card)
	}
	return out.logAction("", "SPICE_CARD_DRAWN",
		map[string]any{"kind": string(card.Kind), "territoryId": string(card.TerritoryID)}, timestamp), card, nil
}
