package dune

// Faction is the closed enum of the six asymmetric factions.
type Faction string

const (
	Atreides     Faction = "atreides"
	Harkonnen    Faction = "harkonnen"
	Emperor      Faction = "emperor"
	Guild        Faction = "guild"
	BeneGesserit Faction = "bene_gesserit"
	Fremen       Faction = "fremen"
)

// AllFactions returns the six factions in their canonical turn-order seat list.
// This is the seating order, not the storm order; storm order is derived at
// runtime from stormSector (see StormOrder).
func AllFactions() []Faction {
	return []Faction{Atreides, Harkonnen, Emperor, Guild, BeneGesserit, Fremen}
}

// IsValid reports whether f is one of the six closed faction tags.
func (f Faction) IsValid() bool {
	switch f {
	case Atreides, Harkonnen, Emperor, Guild, BeneGesserit, Fremen:
		return true
	}
	return false
}

// FactionConfig is the static, read-only configuration for one faction.
// Contract: total function of Faction; an unknown faction is a programming
// error (fail fast via panic in FactionConfigFor), never a silent default.
type FactionConfig struct {
	Faction Faction

	StartingSpice int

	TotalRegularForces int
	TotalEliteForces   int // 0 for factions without elite units
	EliteName          string

	FreeRevivalCap int // forces revived for free each turn before spice cost applies
	EliteRevivalCap int // per-turn cap on elite forces revived, 0 = no elite units

	MaxHandSize int

	StartingTreacheryCards int
	TraitorCardsKept       int // traitor cards drawn and kept during setup

	// ReservesAreLocal is true only for Fremen: their "reserves" never ship
	// normally, they enter play via the sietch send-forces ability instead.
	ReservesAreLocal bool
}

var factionConfigs = map[Faction]FactionConfig{
	Atreides: {
		Faction:                Atreides,
		StartingSpice:          10,
		TotalRegularForces:     20,
		FreeRevivalCap:         1,
		MaxHandSize:            4,
		StartingTreacheryCards: 2,
		TraitorCardsKept:       1,
	},
	Harkonnen: {
		Faction:                Harkonnen,
		StartingSpice:          10,
		TotalRegularForces:     20,
		FreeRevivalCap:         1,
		MaxHandSize:            8,
		StartingTreacheryCards: 2,
		TraitorCardsKept:       1,
	},
	Emperor: {
		Faction:                Emperor,
		StartingSpice:          10,
		TotalRegularForces:     15,
		TotalEliteForces:       5,
		EliteName:              "sardaukar",
		FreeRevivalCap:         1,
		EliteRevivalCap:        1,
		MaxHandSize:            4,
		StartingTreacheryCards: 2,
		TraitorCardsKept:       1,
	},
	Guild: {
		Faction:                Guild,
		StartingSpice:          5,
		TotalRegularForces:     20,
		FreeRevivalCap:         1,
		MaxHandSize:            4,
		StartingTreacheryCards: 2,
		TraitorCardsKept:       1,
	},
	BeneGesserit: {
		Faction:                BeneGesserit,
		StartingSpice:          5,
		TotalRegularForces:     20,
		FreeRevivalCap:         1,
		MaxHandSize:            4,
		StartingTreacheryCards: 2,
		TraitorCardsKept:       1,
	},
	Fremen: {
		Faction:                Fremen,
		StartingSpice:          3,
		TotalRegularForces:     17,
		TotalEliteForces:       3,
		EliteName:              "fedaykin",
		FreeRevivalCap:         3,
		EliteRevivalCap:        1,
		MaxHandSize:            4,
		StartingTreacheryCards: 2,
		TraitorCardsKept:       1,
		ReservesAreLocal:       true,
	},
}

// FactionConfigFor returns the static configuration for f.
// Unknown factions are a programming error and panic rather than silently
// returning a zero-value config (§4.A contract: fail fast).
func FactionConfigFor(f Faction) FactionConfig {
	cfg, ok := factionConfigs[f]
	if !ok {
		panic("dune: unknown faction " + string(f))
	}
	return cfg
}

// MaxHandSize returns the hand-size cap for f (4 for all but Harkonnen's 8).
func MaxHandSize(f Faction) int {
	return FactionConfigFor(f).MaxHandSize
}
