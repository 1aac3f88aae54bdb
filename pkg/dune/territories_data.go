package dune

// territoryOrder is the stable enumeration order for the board: by storm
// sector, with Polar Sink last since it carries no sector.
var territoryOrder = []TerritoryID{
	"sietch_tabr", "arrakeen", "imperial_basin", "carthag", "red_chasm",
	"south_mesa", "pasty_mesa", "plastic_basin", "sihaya_ridge",
	"rock_outcroppings", "habbanya_ridge_flat", "habbanya_sietch",
	"habbanya_erg", "wind_pass", "great_flat", "tuek_sietch",
	"cielago_north", "cielago_south",
	PolarSink,
}

// territories is the static board table. The ring (sector i adjacent to
// sector i+1 mod 18) plus Polar Sink as a universal hub gives every
// territory a short path to every other, matching the real board's
// property that nothing is ever more than a few steps from the pole.
var territories = buildTerritories()

func buildTerritories() map[TerritoryID]Territory {
	type def struct {
		id                TerritoryID
		name              string
		sector            int
		stronghold        bool
		spice             bool
		ornithopter       bool
	}
	defs := []def{
		{"sietch_tabr", "Sietch Tabr", 0, true, false, false},
		{"arrakeen", "Arrakeen", 1, true, false, true},
		{"imperial_basin", "Imperial Basin", 2, false, false, false},
		{"carthag", "Carthag", 3, true, false, true},
		{"red_chasm", "Red Chasm", 4, false, false, false},
		{"south_mesa", "South Mesa", 5, false, true, false},
		{"pasty_mesa", "Pasty Mesa", 6, false, true, false},
		{"plastic_basin", "Plastic Basin", 7, false, false, false},
		{"sihaya_ridge", "Sihaya Ridge", 8, false, false, false},
		{"rock_outcroppings", "Rock Outcroppings", 9, false, false, false},
		{"habbanya_ridge_flat", "Habbanya Ridge Flat", 10, false, false, false},
		{"habbanya_sietch", "Habbanya Sietch", 11, true, false, false},
		{"habbanya_erg", "Habbanya Erg", 12, false, true, false},
		{"wind_pass", "Wind Pass", 13, false, true, false},
		{"great_flat", "The Great Flat", 14, false, true, false},
		{"tuek_sietch", "Tuek's Sietch", 15, true, false, false},
		{"cielago_north", "Cielago North", 16, false, true, false},
		{"cielago_south", "Cielago South", 17, false, true, false},
	}

	out := make(map[TerritoryID]Territory, len(defs)+1)
	n := len(defs)
	for i, d := range defs {
		prev := defs[(i-1+n)%n].id
		next := defs[(i+1)%n].id
		out[d.id] = Territory{
			ID:                d.id,
			Name:              d.name,
			Sectors:           []int{d.sector},
			IsStronghold:      d.stronghold,
			HasSpiceSlot:      d.spice,
			GrantsOrnithopter: d.ornithopter,
			Adjacent:          []TerritoryID{prev, next},
		}
	}
	out[PolarSink] = Territory{
		ID:                 PolarSink,
		Name:               "Polar Sink",
		Sectors:            nil,
		IsStronghold:       false,
		ProtectedFromStorm: true,
		HasSpiceSlot:       false,
		GrantsOrnithopter:  false,
	}
	return out
}

// StrongholdIDs returns every stronghold territory id in table order.
func StrongholdIDs() []TerritoryID {
	var out []TerritoryID
	for _, id := range territoryOrder {
		if t := territories[id]; t.IsStronghold {
			out = append(out, id)
		}
	}
	return out
}

// SpiceSlotIDs returns every territory id that can hold a spice blow.
func SpiceSlotIDs() []TerritoryID {
	var out []TerritoryID
	for _, id := range territoryOrder {
		if t := territories[id]; t.HasSpiceSlot {
			out = append(out, id)
		}
	}
	return out
}
