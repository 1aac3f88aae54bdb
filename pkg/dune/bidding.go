package dune

import "context"

// RunBiddingPhase runs the treachery-card bidding market (§4.E.2): one
// card at a time, offered first to the first eligible faction in storm
// order, bids going around until everyone passes or the high bidder's
// offer stands. There is no Guild purchase at the end of the round.
func RunBiddingPhase(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, cardsUp int, timestamp int64) (Snapshot, []Event, error) {
	var events []Event
	out := s.logAction("", "PHASE_STARTED", map[string]any{"phase": string(PhaseBidding)}, timestamp)

	bCtx := &BiddingContext{}
	out.PhaseContext = PhaseContext{Bidding: bCtx}

	for i := 0; i < cardsUp && len(out.TreacheryDeck) > 0; i++ {
		card := out.TreacheryDeck[0]
		out2 := out.clone()
		out2.TreacheryDeck = out2.TreacheryDeck[1:]
		out = out2

		bidders := eligibleBidders(out)
		if len(bidders) == 0 {
			out.TreacheryDiscard = append(out.TreacheryDiscard, card)
			continue
		}

		winner, price, ev := runOneCardAuction(ctx, out, providers, card, bidders, timestamp)
		events = append(events, ev...)

		if winner == "" {
			out.TreacheryDiscard = append(out.TreacheryDiscard, card)
			continue
		}

		if payee := payeeFor(out); payee == "" {
			out, _ = SpendSpice(out, winner, price, "card_purchase", timestamp)
		} else {
			out, _ = TransferSpice(out, winner, payee, price, "card_purchase", timestamp)
		}
		fs := out.Factions[winner]
		card.Location = CardInHand
		card.OwnerID = winner
		fs.Hand = append(fs.Hand, card)
		out.Factions[winner] = fs
		events = append(events, newEvent(EventCardBought, "card bought", map[string]any{
			"faction": string(winner), "price": price,
		}))
	}

	out = out.logAction("", "PHASE_ENDED", map[string]any{"phase": string(PhaseBidding)}, timestamp)
	return out, events, nil
}

// payeeFor returns who is paid for a bought card: the Guild bank if Guild
// is in the game (base-game rule), otherwise CHOAM (modeled as simply
// removing the spice, since no CHOAM faction state exists).
func payeeFor(s Snapshot) Faction {
	if _, ok := s.Factions[Guild]; ok {
		return Guild
	}
	return ""
}

func eligibleBidders(s Snapshot) []Faction {
	var out []Faction
	for _, f := range s.StormOrder {
		if IsEligibleToBid(s, f) {
			out = append(out, f)
		}
	}
	return out
}

// runOneCardAuction asks each eligible bidder in turn for a bid (0 = pass)
// until either every remaining bidder has passed in a row or the last
// remaining bidder stands unopposed.
func runOneCardAuction(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, card TreacheryCard, bidders []Faction, timestamp int64) (Faction, int, []Event) {
	var events []Event
	active := append([]Faction(nil), bidders...)
	highBid := 0
	highBidder := Faction("")
	passedInARow := 0

	for len(active) > 0 && passedInARow < len(active) {
		f := active[0]
		active = append(active[1:], f)

		fs := s.Factions[f]
		cap := fs.Spice
		provider, ok := providers[f]
		if !ok {
			passedInARow++
			continue
		}
		resp, err := provider.Answer(ctx, AgentRequest{
			Kind: RequestBid, Faction: f, Snapshot: s,
			Data: map[string]any{"cardInstanceId": card.InstanceID, "highBid": highBid},
		})
		if err != nil || resp.Missing || resp.Int <= highBid || resp.Int > cap {
			passedInARow++
			continue
		}
		highBid = resp.Int
		highBidder = f
		passedInARow = 1
	}

	return highBidder, highBid, events
}
