package dune

// SnapshotBuilder assembles a Snapshot for tests without going through
// full Factory setup or a real shuffle, mirroring the teacher's pattern
// of small fixture builders alongside the state machine they exercise.
type SnapshotBuilder struct {
	s Snapshot
}

// NewSnapshotBuilder starts from DefaultConfig with empty faction states
// for every configured faction, turn 1, phase storm.
func NewSnapshotBuilder() *SnapshotBuilder {
	cfg := DefaultConfig()
	s := Snapshot{
		Turn:        1,
		Phase:       PhaseStorm,
		Factions:    map[Faction]FactionState{},
		WinAttempts: map[Faction]int{},
		Config:      cfg,
	}
	for _, f := range cfg.Factions {
		s.Factions[f] = newFactionState(f)
	}
	return &SnapshotBuilder{s: s}
}

func (b *SnapshotBuilder) WithTurn(turn int) *SnapshotBuilder {
	b.s.Turn = turn
	return b
}

func (b *SnapshotBuilder) WithPhase(phase PhaseName) *SnapshotBuilder {
	b.s.Phase = phase
	return b
}

func (b *SnapshotBuilder) WithStormSector(sector int) *SnapshotBuilder {
	b.s.StormSector = sector
	return b
}

func (b *SnapshotBuilder) WithSpice(f Faction, amount int) *SnapshotBuilder {
	fs := b.s.Factions[f]
	fs.Spice = amount
	b.s.Factions[f] = fs
	return b
}

func (b *SnapshotBuilder) WithForcesOnBoard(f Faction, territoryID TerritoryID, regular, elite int) *SnapshotBuilder {
	fs := b.s.Factions[f]
	fs.Pool.ReservesRegular -= regular
	fs.Pool.ReservesElite -= elite
	fs.Pool.OnBoard = append(fs.Pool.OnBoard, Stack{
		TerritoryID: territoryID, Sector: territorySector(territoryID), Regular: regular, Elite: elite,
	})
	b.s.Factions[f] = fs
	return b
}

func (b *SnapshotBuilder) WithHand(f Faction, defIDs ...TreacheryCardDefinitionID) *SnapshotBuilder {
	fs := b.s.Factions[f]
	for _, id := range defIDs {
		b.s.NextCardInstanceID++
		fs.Hand = append(fs.Hand, TreacheryCard{
			InstanceID: b.s.NextCardInstanceID, DefinitionID: id, Location: CardInHand, OwnerID: f,
		})
	}
	b.s.Factions[f] = fs
	return b
}

func (b *SnapshotBuilder) WithStormOrder(order ...Faction) *SnapshotBuilder {
	b.s.StormOrder = order
	return b
}

func (b *SnapshotBuilder) Build() Snapshot {
	return b.s
}
