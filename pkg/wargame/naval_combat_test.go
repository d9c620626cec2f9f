package wargame

import (
	"context"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

func TestResolveNavalCombatDisbandsOutmatchedSide(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutWar(ctx, &model.War{GuildID: testGuild, WarID: "war-1", Status: model.WarActive}); err != nil {
		t.Fatalf("PutWar: %v", err)
	}
	if err := s.PutWarParticipant(ctx, &model.WarParticipant{GuildID: testGuild, WarID: "war-1", FactionID: "fac-a", Side: model.WarSideA}); err != nil {
		t.Fatalf("PutWarParticipant: %v", err)
	}
	if err := s.PutWarParticipant(ctx, &model.WarParticipant{GuildID: testGuild, WarID: "war-1", FactionID: "fac-b", Side: model.WarSideB}); err != nil {
		t.Fatalf("PutWarParticipant: %v", err)
	}
	strong := &model.Unit{GuildID: testGuild, UnitID: "ship-strong", OwnerFactionID: "fac-a", Status: model.UnitActive, CurrentTerritoryID: "sea-1", Attack: 10, Defense: 10, Organization: 10, Keywords: []string{"naval"}}
	weak := &model.Unit{GuildID: testGuild, UnitID: "ship-weak", OwnerFactionID: "fac-b", Status: model.UnitActive, CurrentTerritoryID: "sea-1", Attack: 1, Defense: 1, Organization: 1, Keywords: []string{"naval"}}
	if err := s.PutUnit(ctx, strong); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}
	if err := s.PutUnit(ctx, weak); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}

	if err := resolveNavalCombat(ctx, s, testGuild, 1, s); err != nil {
		t.Fatalf("resolveNavalCombat: %v", err)
	}

	gotWeak, err := s.GetUnit(ctx, testGuild, "ship-weak")
	if err != nil {
		t.Fatalf("GetUnit(weak): %v", err)
	}
	if gotWeak.Status != model.UnitDisbanded {
		t.Errorf("weak ship status = %v, want UnitDisbanded", gotWeak.Status)
	}
	gotStrong, err := s.GetUnit(ctx, testGuild, "ship-strong")
	if err != nil {
		t.Fatalf("GetUnit(strong): %v", err)
	}
	if gotStrong.Status != model.UnitActive {
		t.Errorf("strong ship status = %v, want UnitActive (outmatching side survives naval combat)", gotStrong.Status)
	}
}

func TestEngagingUnitsHidesNonEngagingSubmarine(t *testing.T) {
	sub := &model.Unit{UnitID: "sub-1", Status: model.UnitActive, Attack: 1, Defense: 1, Keywords: []string{"naval", "submarine"}}
	side := &combatSide{id: "fac-a", units: []*model.Unit{sub}}
	hidden := map[string]bool{}

	engaged := engagingUnits(side, hidden, 5) // side's total attack (1) <= enemy defense (5): stays hidden
	if len(engaged) != 0 {
		t.Errorf("len(engaged) = %d, want 0", len(engaged))
	}
	if !hidden["sub-1"] {
		t.Error("expected the non-engaging submarine to be marked hidden")
	}
}

func TestEngagingUnitsSurfacesSubmarineThatCanDealDamage(t *testing.T) {
	sub := &model.Unit{UnitID: "sub-1", Status: model.UnitActive, Attack: 10, Defense: 1, Keywords: []string{"naval", "submarine"}}
	side := &combatSide{id: "fac-a", units: []*model.Unit{sub}}
	hidden := map[string]bool{}

	engaged := engagingUnits(side, hidden, 5) // attack (10) > enemy defense (5): engages
	if len(engaged) != 1 {
		t.Errorf("len(engaged) = %d, want 1", len(engaged))
	}
	if hidden["sub-1"] {
		t.Error("an engaging submarine must not be marked hidden")
	}
}

func TestDestroyTransportCargoDisbandsLandUnitsOnly(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	transport := &model.Unit{GuildID: testGuild, UnitID: "transport-1", CurrentTerritoryID: "sea-1", Capacity: 4, Keywords: []string{"naval"}}
	cargo := &model.Unit{GuildID: testGuild, UnitID: "cargo-1", CurrentTerritoryID: "sea-1", Status: model.UnitActive}
	escortShip := &model.Unit{GuildID: testGuild, UnitID: "escort-1", CurrentTerritoryID: "sea-1", Status: model.UnitActive, Keywords: []string{"naval"}}
	for _, u := range []*model.Unit{cargo, escortShip} {
		if err := s.PutUnit(ctx, u); err != nil {
			t.Fatalf("PutUnit: %v", err)
		}
	}

	if err := destroyTransportCargo(ctx, s, testGuild, 1, s, transport); err != nil {
		t.Fatalf("destroyTransportCargo: %v", err)
	}

	gotCargo, err := s.GetUnit(ctx, testGuild, "cargo-1")
	if err != nil {
		t.Fatalf("GetUnit(cargo): %v", err)
	}
	if gotCargo.Status != model.UnitDisbanded {
		t.Errorf("land cargo status = %v, want UnitDisbanded", gotCargo.Status)
	}
	gotEscort, err := s.GetUnit(ctx, testGuild, "escort-1")
	if err != nil {
		t.Fatalf("GetUnit(escort): %v", err)
	}
	if gotEscort.Status != model.UnitActive {
		t.Errorf("naval escort status = %v, want UnitActive (only land cargo is lost with the transport)", gotEscort.Status)
	}
}
