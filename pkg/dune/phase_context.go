package dune

// BattlePlan is one faction's sealed submission for a single battle,
// revealed simultaneously with the opponent's (§4.E.6).
type BattlePlan struct {
	Faction        Faction
	LeaderID       LeaderDefinitionID // empty if fighting leaderless
	ForcesDialed   int
	TreacheryUsed  []TreacheryCardDefinitionID // instance ids resolved by the caller before storing
	Kwisatz        bool                        // Atreides: Kwisatz Haderach thrown in
	Submitted      bool
}

// PendingBattle is one territory/sector contested by exactly two factions,
// queued for resolution in the battle phase.
type PendingBattle struct {
	TerritoryID TerritoryID
	Factions    [2]Faction
	PlanA       BattlePlan
	PlanB       BattlePlan
	Resolved    bool
}

// BattleContext is the battle phase's working state: the ordered list of
// contested territories this turn and which one is currently active.
type BattleContext struct {
	Pending []PendingBattle
	Active  int // index into Pending; -1 when none active
}

func (c *BattleContext) clone() *BattleContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Pending = append([]PendingBattle(nil), c.Pending...)
	return &out
}

// BidCard is one treachery card offered up for bid this phase.
type BidCard struct {
	Card        TreacheryCard
	HighBid     int
	HighBidder  Faction
	EligibleBidders []Faction // in bid order starting from first eligible
	CurrentBidderIdx int
	Closed      bool
}

// BiddingContext is the bidding phase's working state.
type BiddingContext struct {
	Cards        []BidCard
	CurrentIndex int
}

func (c *BiddingContext) clone() *BiddingContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Cards = make([]BidCard, len(c.Cards))
	for i, bc := range c.Cards {
		bc.EligibleBidders = append([]Faction(nil), bc.EligibleBidders...)
		out.Cards[i] = bc
	}
	return &out
}

// SpiceBlowContext is the spice blow phase's working state: the spice
// cards turned this phase, in reveal order.
type SpiceBlowContext struct {
	RevealedA []SpiceCard
	RevealedB []SpiceCard
	ShaiHuludTerritoryID TerritoryID // last territory a worm appeared in, for Fremen-ride eligibility
}

func (c *SpiceBlowContext) clone() *SpiceBlowContext {
	if c == nil {
		return nil
	}
	out := *c
	out.RevealedA = append([]SpiceCard(nil), c.RevealedA...)
	out.RevealedB = append([]SpiceCard(nil), c.RevealedB...)
	return &out
}

// ShipmentMovementContext tracks which faction, in storm order, currently
// holds the shipment-and-movement action.
type ShipmentMovementContext struct {
	OrderIndex int
	Shipped    map[Faction]bool
	Moved      map[Faction]bool
}

func (c *ShipmentMovementContext) clone() *ShipmentMovementContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Shipped = make(map[Faction]bool, len(c.Shipped))
	for k, v := range c.Shipped {
		out.Shipped[k] = v
	}
	out.Moved = make(map[Faction]bool, len(c.Moved))
	for k, v := range c.Moved {
		out.Moved[k] = v
	}
	return &out
}

// RevivalContext tracks revival requests collected this phase, keyed by
// faction.
type RevivalContext struct {
	Requested map[Faction]bool
}

func (c *RevivalContext) clone() *RevivalContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Requested = make(map[Faction]bool, len(c.Requested))
	for k, v := range c.Requested {
		out.Requested[k] = v
	}
	return &out
}

// StormContext tracks the dial submissions for the storm phase's first
// turn (factions dial a combined movement amount; later turns use the
// storm deck instead, see §4.E.1).
type StormContext struct {
	Dials map[Faction]int
}

func (c *StormContext) clone() *StormContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Dials = make(map[Faction]int, len(c.Dials))
	for k, v := range c.Dials {
		out.Dials[k] = v
	}
	return &out
}

// PhaseContext is a tagged union of phase-specific working state: at most
// one field is non-nil, matching the current Snapshot.Phase. Replaces
// runtime type tagging with a closed set of named, typed slots (§9).
type PhaseContext struct {
	Storm             *StormContext
	SpiceBlow         *SpiceBlowContext
	Bidding           *BiddingContext
	ShipmentMovement  *ShipmentMovementContext
	Battle            *BattleContext
	Revival           *RevivalContext
}

func (c PhaseContext) clone() PhaseContext {
	return PhaseContext{
		Storm:            c.Storm.clone(),
		SpiceBlow:        c.SpiceBlow.clone(),
		Bidding:          c.Bidding.clone(),
		ShipmentMovement: c.ShipmentMovement.clone(),
		Battle:           c.Battle.clone(),
		Revival:          c.Revival.clone(),
	}
}
