package dune

// LeaderDefinitionID identifies a leader's static definition.
type LeaderDefinitionID string

// LeaderLocation is the closed set of places a leader can be.
type LeaderLocation string

const (
	LeaderInPool          LeaderLocation = "pool"
	LeaderOnBoard         LeaderLocation = "on_board"
	LeaderTanksFaceUp     LeaderLocation = "tanks_face_up"
	LeaderTanksFaceDown   LeaderLocation = "tanks_face_down"
)

// LeaderDefinition is static per-leader data: never mutated at runtime.
type LeaderDefinition struct {
	ID       LeaderDefinitionID
	Faction  Faction
	Name     string
	Strength int
}

// Leader is the runtime record for one leader instance in a Snapshot.
// Invariant: exactly one location; OnBoard implies UsedThisTurn.
type Leader struct {
	DefinitionID LeaderDefinitionID
	Faction      Faction // current owner; differs from the definition's home faction once captured
	Location     LeaderLocation

	UsedThisTurn      bool
	UsedInTerritoryID TerritoryID // valid only when UsedThisTurn

	HasBeenKilled bool

	// CapturedBy is set while a Harkonnen-captured leader sits in Harkonnen's
	// pool; OriginalFaction records who it must be returned to.
	CapturedBy      Faction
	OriginalFaction Faction
}

// Strength returns the leader's combat strength from its static definition.
func (l Leader) Strength() int {
	return LeaderDefinitionByID(l.DefinitionID).Strength
}

// IsCaptured reports whether this leader currently sits in a captor's pool.
func (l Leader) IsCaptured() bool {
	return l.CapturedBy != "" && l.CapturedBy != l.OriginalFaction
}

var leaderDefinitions = buildLeaderDefinitions()

func buildLeaderDefinitions() map[LeaderDefinitionID]LeaderDefinition {
	type def struct {
		id       string
		faction  Faction
		name     string
		strength int
	}
	defs := []def{
		// Atreides
		{"atr_duncan", Atreides, "Duncan Idaho", 2},
		{"atr_gurney", Atreides, "Gurney Halleck", 3},
		{"atr_thufir", Atreides, "Thufir Hawat", 4},
		{"atr_alia", Atreides, "Alia", 5},
		{"atr_lady_jessica", Atreides, "Lady Jessica", 6},
		// Harkonnen
		{"hrk_rabban", Harkonnen, "Beast Rabban", 4},
		{"hrk_feyd", Harkonnen, "Feyd-Rautha", 6},
		{"hrk_piter", Harkonnen, "Piter de Vries", 3},
		{"hrk_umman", Harkonnen, "Umman Kudu", 2},
		{"hrk_zoal", Harkonnen, "Captain Zoal", 1},
		// Emperor
		{"emp_burseg", Emperor, "Burseg", 4},
		{"emp_bashar", Emperor, "Bashar", 5},
		{"emp_caid", Emperor, "Caid", 2},
		{"emp_captain_aramsham", Emperor, "Captain Aramsham", 1},
		{"emp_hasimir_fenring", Emperor, "Hasimir Fenring", 6},
		// Guild
		{"gld_master_bewt", Guild, "Master Bewt", 3},
		{"gld_esmar_tuek", Guild, "Esmar Tuek", 5},
		{"gld_staban_tuek", Guild, "Staban Tuek", 2},
		{"gld_soo_soo_sook", Guild, "Soo-Soo Sook", 1},
		{"gld_guild_rep", Guild, "Guild Representative", 4},
		// Bene Gesserit
		{"bg_the_rev_mother", BeneGesserit, "The Reverend Mother", 5},
		{"bg_princess_irulan", BeneGesserit, "Princess Irulan", 3},
		{"bg_margot_fenring", BeneGesserit, "Margot Lady Fenring", 2},
		{"bg_mother_ramallo", BeneGesserit, "Mother Ramallo", 1},
		{"bg_wanna_marcus", BeneGesserit, "Wanna Marcus", 4},
		// Fremen
		{"frm_stilgar", Fremen, "Stilgar", 4},
		{"frm_chani", Fremen, "Chani", 3},
		{"frm_otheym", Fremen, "Otheym", 2},
		{"frm_shadout_mapes", Fremen, "Shadout Mapes", 1},
		{"frm_jamis", Fremen, "Jamis", 5},
	}
	out := make(map[LeaderDefinitionID]LeaderDefinition, len(defs))
	for _, d := range defs {
		out[LeaderDefinitionID(d.id)] = LeaderDefinition{
			ID:       LeaderDefinitionID(d.id),
			Faction:  d.faction,
			Name:     d.name,
			Strength: d.strength,
		}
	}
	return out
}

// LeaderDefinitionByID returns the static definition for id.
// Unknown ids are a programming error (fail fast).
func LeaderDefinitionByID(id LeaderDefinitionID) LeaderDefinition {
	d, ok := leaderDefinitions[id]
	if !ok {
		panic("dune: unknown leader definition " + string(id))
	}
	return d
}

// LeadersOfFaction returns the home roster (definitions) for f, in a stable
// order, used by the Factory to seed starting rosters.
func LeadersOfFaction(f Faction) []LeaderDefinition {
	var out []LeaderDefinition
	for _, id := range []string{
		"atr_duncan", "atr_gurney", "atr_thufir", "atr_alia", "atr_lady_jessica",
		"hrk_rabban", "hrk_feyd", "hrk_piter", "hrk_umman", "hrk_zoal",
		"emp_burseg", "emp_bashar", "emp_caid", "emp_captain_aramsham", "emp_hasimir_fenring",
		"gld_master_bewt", "gld_esmar_tuek", "gld_staban_tuek", "gld_soo_soo_sook", "gld_guild_rep",
		"bg_the_rev_mother", "bg_princess_irulan", "bg_margot_fenring", "bg_mother_ramallo", "bg_wanna_marcus",
		"frm_stilgar", "frm_chani", "frm_otheym", "frm_shadout_mapes", "frm_jamis",
	} {
		d := leaderDefinitions[LeaderDefinitionID(id)]
		if d.Faction == f {
			out = append(out, d)
		}
	}
	return out
}
