package dune

import "context"

// FindPendingBattles locates every territory occupied by exactly two
// non-allied factions with fighting forces present (§4.E.6).
// ValidateStrongholdOccupancy caps strongholds at two factions; other
// territories have no cap, and a territory holding three or more
// battle-capable factions is not reported as a battle.
func FindPendingBattles(s Snapshot) []PendingBattle {
	var out []PendingBattle
	for _, t := range AllTerritories() {
		var combatants []Faction
		for _, f := range s.Config.Factions {
			if IsBattleCapable(s, f, t.ID) {
				combatants = append(combatants, f)
			}
		}
		if len(combatants) == 2 && !IsAllied(s, combatants[0], combatants[1]) {
			out = append(out, PendingBattle{TerritoryID: t.ID, Factions: [2]Faction{combatants[0], combatants[1]}})
		}
	}
	return out
}

// RunBattlePhase resolves every pending battle this turn in sequence
// (§4.E.6): sealed plan submission, simultaneous reveal, traitor check,
// strength comparison, weapon/defense resolution, then applies losses.
func RunBattlePhase(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, timestamp int64) (Snapshot, []Event, error) {
	var events []Event
	out := s.logAction("", "PHASE_STARTED", map[string]any{"phase": string(PhaseBattle)}, timestamp)

	pending := FindPendingBattles(out)
	bCtx := &BattleContext{Pending: pending, Active: -1}
	out.PhaseContext = PhaseContext{Battle: bCtx}

	for i := range pending {
		out.PhaseContext.Battle.Active = i
		battle := pending[i]
		events = append(events, newEvent(EventBattleStarted, "battle started", map[string]any{
			"territoryId": string(battle.TerritoryID),
			"factions":    []string{string(battle.Factions[0]), string(battle.Factions[1])},
		}))

		planA := collectBattlePlan(ctx, out, providers, battle.Factions[0], battle.TerritoryID, timestamp)
		planB := collectBattlePlan(ctx, out, providers, battle.Factions[1], battle.TerritoryID, timestamp)

		var ev []Event
		out, ev = resolveBattle(out, battle.TerritoryID, battle.Factions[0], battle.Factions[1], planA, planB, timestamp)
		events = append(events, ev...)
	}
	out.PhaseContext.Battle.Active = -1

	out = out.logAction("", "PHASE_ENDED", map[string]any{"phase": string(PhaseBattle)}, timestamp)
	return out, events, nil
}

func collectBattlePlan(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, f Faction, territoryID TerritoryID, timestamp int64) BattlePlan {
	provider, ok := providers[f]
	if !ok {
		return BattlePlan{Faction: f}
	}
	resp, err := provider.Answer(ctx, AgentRequest{
		Kind: RequestBattlePlan, Faction: f, Snapshot: s,
		Data: map[string]any{"territoryId": string(territoryID)},
	})
	if err != nil || resp.Missing {
		return BattlePlan{Faction: f}
	}
	leaderID, _ := resp.Data["leaderId"].(string)
	dialed, _ := resp.Data["forcesDialed"].(int)
	kwisatz, _ := resp.Data["kwisatzHaderach"].(bool)
	var weapons []TreacheryCardDefinitionID
	if raw, ok := resp.Data["treachery"].([]string); ok {
		for _, w := range raw {
			weapons = append(weapons, TreacheryCardDefinitionID(w))
		}
	}
	return BattlePlan{
		Faction: f, LeaderID: LeaderDefinitionID(leaderID), ForcesDialed: dialed,
		TreacheryUsed: weapons, Kwisatz: kwisatz, Submitted: true,
	}
}

// resolveBattle implements §4.E.6: traitor check first (an unrevealed
// traitor ends the battle immediately in the revealer's favor), then
// lasgun+shield mutual destruction, then weapon/defense cancellation,
// then strength comparison, then loser's forces to the tanks and (unless
// a defense stopped it) loser's leader killed, winner may capture a
// Harkonnen-eligible leader.
func resolveBattle(s Snapshot, territoryID TerritoryID, fA, fB Faction, planA, planB BattlePlan, timestamp int64) (Snapshot, []Event) {
	out := s
	var events []Event

	if traitor, traitorOwner, opponent := checkTraitor(out, fA, fB, planA, planB); traitor {
		events = append(events, newEvent(EventTraitorRevealed, "traitor revealed", map[string]any{
			"faction": string(traitorOwner), "against": string(opponent),
		}))
		out = applyBattleLoss(out, territoryID, opponent, planFor(planA, planB, opponent), true, timestamp)
		events = append(events, newEvent(EventBattleResolved, "battle resolved by traitor", map[string]any{
			"territoryId": string(territoryID), "winner": string(traitorOwner),
		}))
		return out, events
	}

	if hasLasgunShieldCombo(planA) || hasLasgunShieldCombo(planB) {
		events = append(events, newEvent(EventLasgunShieldBlast, "lasgun-shield explosion", map[string]any{"territoryId": string(territoryID)}))
		out = applyBattleLoss(out, territoryID, fA, planA, true, timestamp)
		out = applyBattleLoss(out, territoryID, fB, planB, true, timestamp)
		events = append(events, newEvent(EventBattleResolved, "battle resolved by explosion", map[string]any{"territoryId": string(territoryID)}))
		return out, events
	}

	aWeaponStops := weaponStoppedByDefense(planA, planB)
	bWeaponStops := weaponStoppedByDefense(planB, planA)

	strengthA := effectiveStrength(out, fA, planA)
	strengthB := effectiveStrength(out, fB, planB)

	var winner, loser Faction
	var winnerPlan, loserPlan BattlePlan
	switch {
	case strengthA > strengthB:
		winner, loser, winnerPlan, loserPlan = fA, fB, planA, planB
	case strengthB > strengthA:
		winner, loser, winnerPlan, loserPlan = fB, fA, planB, planA
	default:
		// Tie: both forces dialed are lost, no leader captured, matches
		// the base-game rule that a tie destroys everything committed.
		out = applyBattleLoss(out, territoryID, fA, planA, true, timestamp)
		out = applyBattleLoss(out, territoryID, fB, planB, true, timestamp)
		events = append(events, newEvent(EventBattleResolved, "battle resolved in a tie", map[string]any{"territoryId": string(territoryID)}))
		return out, events
	}

	loserLeaderDies := !(loser == fA && bWeaponStops) && !(loser == fB && aWeaponStops)
	out = applyBattleLoss(out, territoryID, loser, loserPlan, loserLeaderDies, timestamp)
	out = applyWinnerLeaderUpkeep(out, territoryID, winner, winnerPlan, timestamp)

	if winner == Harkonnen && loserPlan.LeaderID != "" {
		if l, idx := findLeader(out.Factions[loser], loserPlan.LeaderID); idx >= 0 && !l.HasBeenKilled {
			out = CaptureLeader(out, loser, loserPlan.LeaderID, timestamp)
			events = append(events, newEvent(EventLeaderCaptured, "leader captured", map[string]any{
				"leaderId": string(loserPlan.LeaderID), "from": string(loser),
			}))
		}
	}

	events = append(events, newEvent(EventBattleResolved, "battle resolved", map[string]any{
		"territoryId": string(territoryID), "winner": string(winner),
	}))
	return out, events
}

func planFor(planA, planB BattlePlan, f Faction) BattlePlan {
	if planA.Faction == f {
		return planA
	}
	return planB
}

// checkTraitor reports whether either faction holds the opponent's leader
// (or their own, as a self-traitor) as a traitor card, which ends the
// battle in the holder's favor before any strength is compared.
func checkTraitor(s Snapshot, fA, fB Faction, planA, planB BattlePlan) (bool, Faction, Faction) {
	a := s.Factions[fA]
	for _, tid := range a.Traitors {
		if tid == planB.LeaderID && planB.LeaderID != "" {
			return true, fA, fB
		}
	}
	b := s.Factions[fB]
	for _, tid := range b.Traitors {
		if tid == planA.LeaderID && planA.LeaderID != "" {
			return true, fB, fA
		}
	}
	return false, "", ""
}

func hasLasgunShieldCombo(plan BattlePlan) bool {
	hasLasgun, hasShield := false, false
	for _, c := range plan.TreacheryUsed {
		if c == "lasgun" {
			hasLasgun = true
		}
		if c == "shield" {
			hasShield = true
		}
	}
	return hasLasgun && hasShield
}

// weaponStoppedByDefense reports whether attacker's weapon is matched by
// defender's defense card, cancelling both and sparing the defender's
// leader (§4.E.6; WEAPON_SPECIAL matches nothing, per card.go).
func weaponStoppedByDefense(attacker, defender BattlePlan) bool {
	for _, w := range attacker.TreacheryUsed {
		wd := treacheryCardDefinitions[w]
		for _, d := range defender.TreacheryUsed {
			dd := treacheryCardDefinitions[d]
			if wd.Type.IsProjectileWeapon() && dd.Type.IsProjectileDefense() {
				return true
			}
			if wd.Type.IsPoisonWeapon() && dd.Type.IsPoisonDefense() {
				return true
			}
		}
	}
	return false
}

// effectiveStrength is forces dialed plus leader strength (or Kwisatz
// Haderach's +2 once thrown in), following §4.E.6.
func effectiveStrength(s Snapshot, f Faction, plan BattlePlan) int {
	total := plan.ForcesDialed
	if plan.LeaderID != "" {
		if l, idx := findLeader(s.Factions[f], plan.LeaderID); idx >= 0 && !l.HasBeenKilled {
			total += l.Strength()
		}
	}
	if plan.Kwisatz && f == Atreides {
		kh := s.Factions[Atreides].KwisatzHaderach
		if kh != nil && kh.Activated && kh.Alive {
			total += 2
		}
	}
	return total
}

func applyBattleLoss(s Snapshot, territoryID TerritoryID, f Faction, plan BattlePlan, leaderDies bool, timestamp int64) Snapshot {
	out := s
	st := ForcesInTerritory(out, f, territoryID)
	regularLost := plan.ForcesDialed
	if regularLost > st.Regular {
		regularLost = st.Regular
	}
	eliteLost := 0
	if regularLost < plan.ForcesDialed && st.Elite > 0 {
		eliteLost = plan.ForcesDialed - regularLost
		if eliteLost > st.Elite {
			eliteLost = st.Elite
		}
	}
	out = KillForces(out, f, territoryID, regularLost, eliteLost, timestamp)
	if leaderDies && plan.LeaderID != "" {
		poisoned := false
		for _, c := range plan.TreacheryUsed {
			if treacheryCardDefinitions[c].Type.IsPoisonWeapon() {
				poisoned = true
			}
		}
		out = KillLeader(out, f, plan.LeaderID, poisoned, timestamp)
	}
	if plan.Kwisatz && f == Atreides {
		out = KillKwisatzHaderach(out, timestamp)
	}
	for _, c := range plan.TreacheryUsed {
		def := treacheryCardDefinitions[c]
		if def.DiscardAfterUse {
			out = discardFromHandByDef(out, f, c, timestamp)
		}
	}
	return out
}

func applyWinnerLeaderUpkeep(s Snapshot, territoryID TerritoryID, f Faction, plan BattlePlan, timestamp int64) Snapshot {
	out := s
	if plan.LeaderID != "" {
		out = MarkLeaderUsed(out, f, plan.LeaderID, territoryID, timestamp)
	}
	for _, c := range plan.TreacheryUsed {
		def := treacheryCardDefinitions[c]
		if def.DiscardAfterUse {
			out = discardFromHandByDef(out, f, c, timestamp)
		}
	}
	return out
}

func discardFromHandByDef(s Snapshot, f Faction, defID TreacheryCardDefinitionID, timestamp int64) Snapshot {
	fs := s.Factions[f]
	for _, c := range fs.Hand {
		if c.DefinitionID == defID {
			return DiscardTreacheryCard(s, f, c.InstanceID, timestamp)
		}
	}
	return s
}
