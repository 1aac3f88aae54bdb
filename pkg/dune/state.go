package dune

// PhaseName is the closed set of phases a turn passes through, in order.
type PhaseName string

const (
	PhaseSetup             PhaseName = "setup"
	PhaseStorm             PhaseName = "storm"
	PhaseSpiceBlow         PhaseName = "spice_blow"
	PhaseChoamCharity      PhaseName = "choam_charity"
	PhaseBidding           PhaseName = "bidding"
	PhaseRevival           PhaseName = "revival"
	PhaseShipmentMovement  PhaseName = "shipment_movement"
	PhaseBattle            PhaseName = "battle"
	PhaseCollection        PhaseName = "collection"
	PhaseMentatPause       PhaseName = "mentat_pause"
	PhaseGameOver          PhaseName = "game_over"
)

// phaseSequence is the fixed order phases advance through within a turn
// (§4.E.9); PhaseSetup precedes it once at game start.
var phaseSequence = []PhaseName{
	PhaseStorm, PhaseSpiceBlow, PhaseChoamCharity, PhaseBidding, PhaseRevival,
	PhaseShipmentMovement, PhaseBattle, PhaseCollection, PhaseMentatPause,
}

// NextPhaseName returns the phase that follows p within a turn, or
// PhaseStorm of the next turn after PhaseMentatPause.
func NextPhaseName(p PhaseName) PhaseName {
	for i, cur := range phaseSequence {
		if cur == p {
			if i+1 < len(phaseSequence) {
				return phaseSequence[i+1]
			}
			return PhaseStorm
		}
	}
	return PhaseStorm
}

// Stack is the set of forces one faction has at one (territory, sector).
type Stack struct {
	TerritoryID TerritoryID
	Sector      int
	Regular     int
	Elite       int
	Advisors    int // Bene Gesserit only; invariant Advisors <= Regular of this stack
}

// ForcePool is the three-bucket force-accounting record for one faction.
type ForcePool struct {
	ReservesRegular int
	ReservesElite   int

	OnBoard []Stack

	TanksRegular int
	TanksElite   int
}

// Total returns the conserved quantity for §3 invariant 1: every force of
// this type the faction owns, wherever it currently sits.
func (fp ForcePool) Total(elite bool) int {
	total := fp.ReservesRegular
	tanks := fp.TanksRegular
	if elite {
		total = fp.ReservesElite
		tanks = fp.TanksElite
	}
	total += tanks
	for _, s := range fp.OnBoard {
		if elite {
			total += s.Elite
		} else {
			total += s.Regular
		}
	}
	return total
}

// KwisatzHaderachState tracks the Atreides-only special leader record.
type KwisatzHaderachState struct {
	CumulativeForcesLost int
	Activated            bool
	Alive                bool // false once killed; revivable for 2 spice
	UsedThisTurn         bool
	UsedInTerritoryID    TerritoryID
}

// HarkonnenCapture records one leader Harkonnen is holding captive.
type HarkonnenCapture struct {
	LeaderDefinitionID LeaderDefinitionID
	OriginalFaction    Faction
}

// FactionState is one faction's mutable game-state record.
type FactionState struct {
	Faction Faction

	Spice int
	Pool  ForcePool

	Leaders []Leader
	Hand    []TreacheryCard
	Traitors []LeaderDefinitionID // secret traitor cards this faction holds

	AllyID Faction // empty if not allied

	// Per-turn counters, reset by resetFactionTurnState at PhaseMentatPause.
	EliteRevivedThisTurn int
	BidsPassedThisTurn   bool

	// Faction-specific extensions.
	KwisatzHaderach    *KwisatzHaderachState // non-nil only for Atreides
	HarkonnenCaptures  []HarkonnenCapture    // non-nil only relevant for Harkonnen
}

// SpiceOnBoard is one deposit of spice sitting in a territory/sector.
type SpiceOnBoard struct {
	TerritoryID TerritoryID
	Sector      int
	Amount      int
}

// Alliance is one symmetric pairing (§3 invariant 5).
type Alliance struct {
	A, B Faction
}

// DealStatus is the closed set of states a proposed deal passes through.
type DealStatus string

const (
	DealPending  DealStatus = "pending"
	DealAccepted DealStatus = "accepted"
	DealRejected DealStatus = "rejected"
	DealWithdrawn DealStatus = "withdrawn"
)

// Deal is a proposed or resolved agreement between factions. The engine
// only tracks structured terms and status; content/negotiation is an agent
// concern (§ SUPPLEMENTED FEATURES, Deals).
type Deal struct {
	ID        int
	Proposer  Faction
	Recipient Faction // empty = broadcast to all
	Turn      int
	Terms     string
	Status    DealStatus
}

// KaramaInterruptKind is the closed set of Karama interrupt effects.
type KaramaInterruptKind string

const (
	KaramaCancel  KaramaInterruptKind = "cancel"
	KaramaPrevent KaramaInterruptKind = "prevent"
)

// KaramaState describes an open Karama interrupt opportunity (§4.E.8).
type KaramaState struct {
	Kind       KaramaInterruptKind
	Target     Faction
	Ability    string
	Context    map[string]any
	PlayedBy   Faction // empty while still open
	Discarded  bool
}

// Variants are gameplay-impact flags outside this engine's scope (§6);
// carried as data only.
type Variants struct {
	ShieldWallStronghold bool
	LeaderSkillCards     bool
	Homeworlds           bool
}

// Config is engine-construction configuration (§6, §9: replaces an ambient
// global-constants map with a typed record).
type Config struct {
	Factions      []Faction
	MaxTurns      int
	AdvancedRules bool
	Variants      Variants
}

// DefaultConfig returns the standard 6-player, base-rules configuration
// with the default 10-turn cap.
func DefaultConfig() Config {
	return Config{
		Factions: AllFactions(),
		MaxTurns: 10,
	}
}

// Snapshot is the complete, immutable game-state value (§3). Every
// mutation returns a new Snapshot; nothing in a Snapshot returned to a
// caller is ever mutated in place again by this package.
type Snapshot struct {
	Turn  int
	Phase PhaseName

	Factions map[Faction]FactionState

	SpiceOnBoard []SpiceOnBoard

	StormSector int
	StormOrder  []Faction

	TreacheryDeck    []TreacheryCard
	TreacheryDiscard []TreacheryCard

	SpiceDeck     []SpiceCard
	SpiceDiscardA []SpiceCard
	SpiceDiscardB []SpiceCard

	Alliances   []Alliance
	PendingDeals []Deal
	DealHistory  []Deal
	NextDealID   int

	WinAttempts map[Faction]int

	PhaseContext PhaseContext

	Karama *KaramaState

	NexusOccurring bool
	SetupComplete  bool

	Config Config

	ActionLog []ActionLogEntry
	NextActionLogID int

	NextCardInstanceID int

	Winner Faction // empty until the game ends
	GameOver bool
}

// clone produces a deep, non-aliasing copy of the snapshot so every
// mutation can hand back a fresh value without any hidden sharing (§9).
func (s Snapshot) clone() Snapshot {
	out := s

	out.Factions = make(map[Faction]FactionState, len(s.Factions))
	for f, fs := range s.Factions {
		out.Factions[f] = fs.clone()
	}

	out.SpiceOnBoard = append([]SpiceOnBoard(nil), s.SpiceOnBoard...)
	out.StormOrder = append([]Faction(nil), s.StormOrder...)
	out.TreacheryDeck = append([]TreacheryCard(nil), s.TreacheryDeck...)
	out.TreacheryDiscard = append([]TreacheryCard(nil), s.TreacheryDiscard...)
	out.SpiceDeck = append([]SpiceCard(nil), s.SpiceDeck...)
	out.SpiceDiscardA = append([]SpiceCard(nil), s.SpiceDiscardA...)
	out.SpiceDiscardB = append([]SpiceCard(nil), s.SpiceDiscardB...)
	out.Alliances = append([]Alliance(nil), s.Alliances...)
	out.PendingDeals = append([]Deal(nil), s.PendingDeals...)
	out.DealHistory = append([]Deal(nil), s.DealHistory...)

	out.WinAttempts = make(map[Faction]int, len(s.WinAttempts))
	for k, v := range s.WinAttempts {
		out.WinAttempts[k] = v
	}

	out.PhaseContext = s.PhaseContext.clone()

	if s.Karama != nil {
		k := *s.Karama
		k.Context = make(map[string]any, len(s.Karama.Context))
		for kk, vv := range s.Karama.Context {
			k.Context[kk] = vv
		}
		out.Karama = &k
	}

	out.ActionLog = append([]ActionLogEntry(nil), s.ActionLog...)

	return out
}

func (fs FactionState) clone() FactionState {
	out := fs
	out.Pool.OnBoard = append([]Stack(nil), fs.Pool.OnBoard...)
	out.Leaders = append([]Leader(nil), fs.Leaders...)
	out.Hand = append([]TreacheryCard(nil), fs.Hand...)
	out.Traitors = append([]LeaderDefinitionID(nil), fs.Traitors...)
	out.HarkonnenCaptures = append([]HarkonnenCapture(nil), fs.HarkonnenCaptures...)
	if fs.KwisatzHaderach != nil {
		kh := *fs.KwisatzHaderach
		out.KwisatzHaderach = &kh
	}
	return out
}

// logAction appends a structured action-log entry (§4.D contract c) and
// returns the updated snapshot. timestamp is supplied by the caller (e.g.
// from the orchestrator) since this package never reads the wall clock.
func (s Snapshot) logAction(factionID Faction, actionType string, data map[string]any, timestamp int64) Snapshot {
	out := s
	id := out.NextActionLogID
	out.NextActionLogID++
	entry := ActionLogEntry{
		ID:        id,
		Turn:      out.Turn,
		Phase:     out.Phase,
		FactionID: factionID,
		Type:      actionType,
		Data:      data,
		Timestamp: timestamp,
	}
	out.ActionLog = append(append([]ActionLogEntry(nil), out.ActionLog...), entry)
	return out
}
