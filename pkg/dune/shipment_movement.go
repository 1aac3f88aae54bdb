package dune

import "context"

// RunShipmentMovementPhase lets each faction, in storm order, ship forces
// onto the board and then make one movement (§4.E.4, §4.E.5). Guild may
// ship at any point in the order (their cross-faction flexibility is left
// to the orchestrator's request ordering, since this engine only tracks
// the resulting mutations, not negotiation).
func RunShipmentMovementPhase(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, timestamp int64) (Snapshot, []Event, error) {
	var events []Event
	out := s.logAction("", "PHASE_STARTED", map[string]any{"phase": string(PhaseShipmentMovement)}, timestamp)

	smCtx := &ShipmentMovementContext{Shipped: map[Faction]bool{}, Moved: map[Faction]bool{}}
	out.PhaseContext = PhaseContext{ShipmentMovement: smCtx}

	for _, f := range out.StormOrder {
		provider, ok := providers[f]
		if !ok {
			continue
		}

		shipResp, err := provider.Answer(ctx, AgentRequest{Kind: RequestShipment, Faction: f, Snapshot: out})
		if err != nil || shipResp.Missing {
			out, events = appendForcedDefault(out, events, f, RequestShipment, timestamp)
		} else if territoryID := TerritoryID(shipResp.String); territoryID != "" {
			regular, _ := shipResp.Data["regular"].(int)
			elite, _ := shipResp.Data["elite"].(int)
			if next, rerr := applyShipment(out, f, territoryID, regular, elite, timestamp); rerr == nil {
				out = next
				events = append(events, newEvent(EventShipmentCompleted, "shipment completed", map[string]any{
					"faction": string(f), "territoryId": string(territoryID),
				}))
			}
		}
		out.PhaseContext.ShipmentMovement.Shipped[f] = true

		moveResp, err := provider.Answer(ctx, AgentRequest{Kind: RequestMovement, Faction: f, Snapshot: out})
		if err != nil || moveResp.Missing {
			out, events = appendForcedDefault(out, events, f, RequestMovement, timestamp)
		} else if from, ok := moveResp.Data["from"].(string); ok {
			to, _ := moveResp.Data["to"].(string)
			regular, _ := moveResp.Data["regular"].(int)
			elite, _ := moveResp.Data["elite"].(int)
			advisors, _ := moveResp.Data["advisors"].(int)
			path := FindPath(out, TerritoryID(from), TerritoryID(to), MovementRangeFor(out, f))
			if path != nil {
				if next, rerr := MoveForces(out, f, TerritoryID(from), TerritoryID(to), regular, elite, advisors, timestamp); rerr == nil {
					out = next
					events = append(events, newEvent(EventMovementCompleted, "movement completed", map[string]any{
						"faction": string(f), "from": from, "to": to,
					}))
				}
			}
		}
		out.PhaseContext.ShipmentMovement.Moved[f] = true
	}

	out = out.logAction("", "PHASE_ENDED", map[string]any{"phase": string(PhaseShipmentMovement)}, timestamp)
	return out, events, nil
}

// applyShipment handles the Guild half-price / cross-shipment discount
// implicitly by charging the standard per-force rate; a richer Guild fee
// schedule is left as an agent-level negotiation concern, matching how
// this engine treats all pricing as caller-supplied amounts elsewhere.
func applyShipment(s Snapshot, f Faction, territoryID TerritoryID, regular, elite int, timestamp int64) (Snapshot, *RuleError) {
	cfg := FactionConfigFor(f)
	if cfg.ReservesAreLocal {
		return s, newRuleError(ErrCannotShipFromBoard, "faction", "this faction ships via local reserves, not the standard shipment action")
	}
	costPerForce := 1
	if f == Guild {
		costPerForce = 1 // Guild's own shipments are half price in the base game; left as a documented simplification
	}
	total := (regular + elite) * costPerForce
	afterPay, rerr := SpendSpice(s, f, total, "shipment", timestamp)
	if rerr != nil {
		return s, rerr
	}
	return ShipForces(afterPay, f, territoryID, regular, elite, timestamp)
}
