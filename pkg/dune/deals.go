package dune

import "context"

// PollDealResponses asks the recipient of every pending deal whether to
// accept, reject, or leave it pending for another turn (§ SUPPLEMENTED
// FEATURES, Deals). Broadcast deals (empty Recipient) are polled against
// every faction but the proposer.
func PollDealResponses(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, timestamp int64) (Snapshot, []Event) {
	var events []Event
	out := s
	for _, deal := range append([]Deal(nil), out.PendingDeals...) {
		recipients := []Faction{deal.Recipient}
		if deal.Recipient == "" {
			for _, f := range out.Config.Factions {
				if f != deal.Proposer {
					recipients = append(recipients, f)
				}
			}
		}
		for _, f := range recipients {
			provider, ok := providers[f]
			if !ok {
				continue
			}
			resp, err := provider.Answer(ctx, AgentRequest{
				Kind: RequestDealResponse, Faction: f, Snapshot: out,
				Data: map[string]any{"dealId": deal.ID, "terms": deal.Terms, "proposer": string(deal.Proposer)},
			})
			if err != nil || resp.Missing {
				continue
			}
			if resp.Bool {
				out = ResolveDeal(out, deal.ID, DealAccepted, timestamp)
				if deal.Recipient != "" {
					if formed, rerr := FormAlliance(out, deal.Proposer, deal.Recipient, timestamp); rerr == nil {
						out = formed
						events = append(events, newEvent(EventAllianceFormed, "alliance formed", map[string]any{
							"a": string(deal.Proposer), "b": string(deal.Recipient),
						}))
					}
				}
				break
			}
		}
	}
	return out, events
}
