package dune

// TreacheryCardType is the closed set of treachery card kinds.
type TreacheryCardType string

const (
	WeaponProjectile TreacheryCardType = "weapon_projectile"
	WeaponPoison     TreacheryCardType = "weapon_poison"
	WeaponSpecial    TreacheryCardType = "weapon_special"
	DefenseProjectile TreacheryCardType = "defense_projectile"
	DefensePoison    TreacheryCardType = "defense_poison"
	SpecialCard      TreacheryCardType = "special"
	WorthlessCard    TreacheryCardType = "worthless"
)

// CardLocation is the closed set of places a card can be.
type CardLocation string

const (
	CardInDeck    CardLocation = "deck"
	CardInHand    CardLocation = "hand"
	CardInDiscard CardLocation = "discard"
)

// TreacheryCardDefinitionID identifies a treachery card's static definition.
type TreacheryCardDefinitionID string

// TreacheryCardDefinition is static per-card-type data.
type TreacheryCardDefinition struct {
	ID              TreacheryCardDefinitionID
	Name            string
	Type            TreacheryCardType
	DiscardAfterUse bool
	CopiesInDeck    int
}

// TreacheryCard is a single physical card instance in a Snapshot.
// Invariant: every card is in exactly one of {deck, some hand, discard}.
type TreacheryCard struct {
	InstanceID   int // stable per-instance id, unique within the game
	DefinitionID TreacheryCardDefinitionID
	Location     CardLocation
	OwnerID      Faction // valid only when Location == CardInHand
}

func (c TreacheryCard) Def() TreacheryCardDefinition {
	return treacheryCardDefinitions[c.DefinitionID]
}

var treacheryCardDefOrder = []string{
	"lasgun", "shield", "chaumas", "chaumurky", "stunner", "slip_tip",
	"snooper", "maula_pistol", "crysknife", "la_la_wood", "weirding_way",
	"hunter_seeker", "poison_tooth", "tleilaxu_ghola", "truthtrance", "karama",
	"baliset", "jubba_cloak", "kulon", "trip_to_gamont",
}

var treacheryCardDefinitions = buildTreacheryCardDefinitions()

func buildTreacheryCardDefinitions() map[TreacheryCardDefinitionID]TreacheryCardDefinition {
	type def struct {
		id       string
		name     string
		kind     TreacheryCardType
		discard  bool
		copies   int
	}
	defs := []def{
		{"lasgun", "Lasgun", WeaponSpecial, true, 1},
		{"shield", "Shield", DefenseProjectile, false, 1},
		{"chaumas", "Chaumas", WeaponPoison, true, 1},
		{"chaumurky", "Chaumurky", WeaponPoison, true, 2},
		{"stunner", "Stunner", WeaponProjectile, true, 2},
		{"slip_tip", "Slip Tip", WeaponPoison, true, 1},
		{"snooper", "Snooper", DefensePoison, false, 3},
		{"maula_pistol", "Maula Pistol", WeaponProjectile, true, 3},
		{"crysknife", "Crysknife", WeaponProjectile, true, 1},
		{"la_la_wood", "La La Wood", SpecialCard, true, 1},
		{"weirding_way", "Weirding Way", WeaponProjectile, true, 1},
		{"hunter_seeker", "Hunter-Seeker", WeaponSpecial, true, 1},
		{"poison_tooth", "Poison Tooth", WeaponPoison, true, 1},
		{"tleilaxu_ghola", "Tleilaxu Ghola", SpecialCard, true, 1},
		{"truthtrance", "Truthtrance", SpecialCard, true, 1},
		{"karama", "Karama", SpecialCard, true, 2},
		{"baliset", "Baliset", WorthlessCard, false, 1},
		{"jubba_cloak", "Jubba Cloak", WorthlessCard, false, 1},
		{"kulon", "Kulon", WorthlessCard, false, 1},
		{"trip_to_gamont", "Trip to Gamont", WorthlessCard, false, 1},
	}
	out := make(map[TreacheryCardDefinitionID]TreacheryCardDefinition, len(defs))
	for _, d := range defs {
		out[TreacheryCardDefinitionID(d.id)] = TreacheryCardDefinition{
			ID:              TreacheryCardDefinitionID(d.id),
			Name:            d.name,
			Type:            d.kind,
			DiscardAfterUse: d.discard,
			CopiesInDeck:    d.copies,
		}
	}
	return out
}

// IsProjectileWeapon, IsPoisonWeapon, IsProjectileDefense and
// IsPoisonDefense report the matching-weapon-to-defense category,
// following §4.E.3's rule that WEAPON_SPECIAL is unstoppable (matches
// neither category) and worthless/special cards never participate.
func (t TreacheryCardType) IsProjectileWeapon() bool { return t == WeaponProjectile }
func (t TreacheryCardType) IsPoisonWeapon() bool      { return t == WeaponPoison }
func (t TreacheryCardType) IsProjectileDefense() bool { return t == DefenseProjectile }
func (t TreacheryCardType) IsPoisonDefense() bool     { return t == DefensePoison }
func (t TreacheryCardType) IsWeapon() bool {
	return t == WeaponProjectile || t == WeaponPoison || t == WeaponSpecial
}
func (t TreacheryCardType) IsDefense() bool {
	return t == DefenseProjectile || t == DefensePoison
}

// SpiceCardKind distinguishes a territory spice blow from a sandworm card.
type SpiceCardKind string

const (
	SpiceCardTerritory  SpiceCardKind = "territory"
	SpiceCardShaiHulud  SpiceCardKind = "shai_hulud"
)

// SpiceCard is a single physical spice-deck card instance.
type SpiceCard struct {
	InstanceID int
	Kind       SpiceCardKind
	Location   CardLocation // deck or discard only; spice cards never enter a hand

	TerritoryID TerritoryID // valid only when Kind == SpiceCardTerritory
	Sector      int
	Amount      int
}
