package dune

import "testing"

func sampleTreacheryOrder() []TreacheryCardDefinitionID {
	var out []TreacheryCardDefinitionID
	for id, def := range treacheryCardDefinitions {
		for i := 0; i < def.CopiesInDeck; i++ {
			out = append(out, id)
		}
	}
	return out
}

func TestNewInitialState_SeedsForcesSpiceAndHands(t *testing.T) {
	cfg := DefaultConfig()
	s := NewInitialState(cfg, sampleTreacheryOrder(), nil)

	if s.Phase != PhaseStorm {
		t.Errorf("expected setup to leave phase at storm, got %s", s.Phase)
	}
	if !s.SetupComplete {
		t.Error("expected SetupComplete true")
	}

	for _, f := range cfg.Factions {
		fs := s.Factions[f]
		fcfg := FactionConfigFor(f)
		if len(fs.Hand) != fcfg.StartingTreacheryCards {
			t.Errorf("%s: expected %d starting cards, got %d", f, fcfg.StartingTreacheryCards, len(fs.Hand))
		}
		if fs.Spice != fcfg.StartingSpice {
			t.Errorf("%s: expected %d starting spice, got %d", f, fcfg.StartingSpice, fs.Spice)
		}
		if len(fs.Leaders) != 5 {
			t.Errorf("%s: expected 5 leaders, got %d", f, len(fs.Leaders))
		}
	}

	fremenStack := ForcesInTerritory(s, Fremen, "sietch_tabr")
	if fremenStack.Regular != 10 {
		t.Errorf("expected Fremen to start with 10 forces at Sietch Tabr, got %d", fremenStack.Regular)
	}
}

func TestNewInitialState_ForceConservation(t *testing.T) {
	cfg := DefaultConfig()
	s := NewInitialState(cfg, sampleTreacheryOrder(), nil)

	for _, f := range cfg.Factions {
		fcfg := FactionConfigFor(f)
		if got := s.Factions[f].Pool.Total(false); got != fcfg.TotalRegularForces {
			t.Errorf("%s: expected total regular %d, got %d", f, fcfg.TotalRegularForces, got)
		}
		if got := s.Factions[f].Pool.Total(true); got != fcfg.TotalEliteForces {
			t.Errorf("%s: expected total elite %d, got %d", f, fcfg.TotalEliteForces, got)
		}
	}
}
