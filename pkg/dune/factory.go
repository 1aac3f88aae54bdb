package dune

// NewInitialState builds the Snapshot a game starts from: every faction
// seeded to its Factory values, decks shuffled into the order the caller
// supplies (callers pass a pre-shuffled order; this package never calls a
// random source directly, keeping state construction deterministic and
// testable per §9).
func NewInitialState(cfg Config, shuffledTreacheryDeck []TreacheryCardDefinitionID, shuffledSpiceDeck []SpiceCard) Snapshot {
	s := Snapshot{
		Turn:        1,
		Phase:       PhaseSetup,
		Factions:    map[Faction]FactionState{},
		WinAttempts: map[Faction]int{},
		Config:      cfg,
		StormSector: 0,
	}

	for _, f := range cfg.Factions {
		s.Factions[f] = newFactionState(f)
	}

	nextID := 1
	for _, defID := range shuffledTreacheryDeck {
		s.TreacheryDeck = append(s.TreacheryDeck, TreacheryCard{
			InstanceID:   nextID,
			DefinitionID: defID,
			Location:     CardInDeck,
		})
		nextID++
	}
	s.NextCardInstanceID = nextID

	for i, card := range shuffledSpiceDeck {
		card.InstanceID = i + 1
		card.Location = CardInDeck
		s.SpiceDeck = append(s.SpiceDeck, card)
	}

	s = placeStartingForces(s)
	s = dealStartingHands(s)

	s.SetupComplete = true
	s.Phase = PhaseStorm
	return s
}

func newFactionState(f Faction) FactionState {
	cfg := FactionConfigFor(f)

	fs := FactionState{
		Faction: f,
		Spice:   cfg.StartingSpice,
		Pool: ForcePool{
			ReservesRegular: cfg.TotalRegularForces,
			ReservesElite:   cfg.TotalEliteForces,
		},
	}

	for _, def := range LeadersOfFaction(f) {
		fs.Leaders = append(fs.Leaders, Leader{
			DefinitionID: def.ID,
			Faction:      f,
			Location:     LeaderInPool,
			OriginalFaction: f,
		})
	}

	if f == Atreides {
		fs.KwisatzHaderach = &KwisatzHaderachState{}
	}

	return fs
}

// startingPlacement is one faction's initial on-board deployment.
type startingPlacement struct {
	faction     Faction
	territoryID TerritoryID
	regular     int
}

// placeStartingForces moves each faction's opening on-board deployment out
// of reserves, following the classic asymmetric setup: Fremen begin
// entrenched at their home sietch, Atreides and Harkonnen begin holding
// their home strongholds, the other three factions begin entirely in
// reserve and ship in during their first shipment phase.
func placeStartingForces(s Snapshot) Snapshot {
	placements := []startingPlacement{
		{Fremen, "sietch_tabr", 10},
		{Atreides, "arrakeen", 10},
		{Harkonnen, "carthag", 10},
	}

	for _, p := range placements {
		fs, ok := s.Factions[p.faction]
		if !ok {
			continue
		}
		if fs.Pool.ReservesRegular < p.regular {
			panicInvariant("force-conservation", "starting placement exceeds reserves for "+string(p.faction))
		}
		fs.Pool.ReservesRegular -= p.regular
		fs.Pool.OnBoard = append(fs.Pool.OnBoard, Stack{
			TerritoryID: p.territoryID,
			Sector:      territorySector(p.territoryID),
			Regular:     p.regular,
		})
		s.Factions[p.faction] = fs
	}
	return s
}

func territorySector(id TerritoryID) int {
	t := TerritoryByID(id)
	if len(t.Sectors) == 0 {
		return -1
	}
	return t.Sectors[0]
}

// dealStartingHands draws each faction's opening treachery hand (§4.A) off
// the top of the already-shuffled deck, Fremen/Harkonnen extra-card rules
// aside (this engine follows the base-game deal of StartingTreacheryCards
// per faction; Harkonnen's larger hand size only raises their cap, per
// factionConfigs).
func dealStartingHands(s Snapshot) Snapshot {
	deck := s.TreacheryDeck
	for _, f := range s.Config.Factions {
		cfg := FactionConfigFor(f)
		fs := s.Factions[f]
		for i := 0; i < cfg.StartingTreacheryCards && len(deck) > 0; i++ {
			card := deck[0]
			deck = deck[1:]
			card.Location = CardInHand
			card.OwnerID = f
			fs.Hand = append(fs.Hand, card)
		}
		s.Factions[f] = fs
	}
	s.TreacheryDeck = deck
	return s
}
