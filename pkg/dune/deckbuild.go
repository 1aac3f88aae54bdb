package dune

// AllTreacheryCardDefinitionIDs returns one entry per physical treachery
// card the base deck contains (CopiesInDeck repeats of each definition),
// in the table's definition order. Callers shuffle this slice themselves
// before passing it to NewInitialState, keeping randomness out of this
// package (§9).
func AllTreacheryCardDefinitionIDs() []TreacheryCardDefinitionID {
	var out []TreacheryCardDefinitionID
	for _, id := range treacheryCardDefOrder {
		def := treacheryCardDefinitions[TreacheryCardDefinitionID(id)]
		for i := 0; i < def.CopiesInDeck; i++ {
			out = append(out, def.ID)
		}
	}
	return out
}

// spiceBlowAmounts cycles through the classic low/high progression so
// deck construction doesn't need a second static table per territory.
var spiceBlowAmounts = []int{6, 8, 10, 4, 6, 8, 10, 4, 6}

// shaiHuludCount is the number of sandworm cards mixed into the base
// spice deck (§4.E.2 spice blow, base two-track game).
const shaiHuludCount = 4

// NewSpiceDeck returns one SpiceCard per spice-slot territory plus the
// Shai-Hulud cards, unshuffled and without InstanceID/Location populated
// (NewInitialState assigns both when building the deck). Callers shuffle
// the returned slice before passing it on.
func NewSpiceDeck() []SpiceCard {
	var out []SpiceCard
	for i, id := range SpiceSlotIDs() {
		out = append(out, SpiceCard{
			Kind:        SpiceCardTerritory,
			TerritoryID: id,
			Sector:      territorySector(id),
			Amount:      spiceBlowAmounts[i%len(spiceBlowAmounts)],
		})
	}
	for i := 0; i < shaiHuludCount; i++ {
		out = append(out, SpiceCard{Kind: SpiceCardShaiHulud})
	}
	return out
}
