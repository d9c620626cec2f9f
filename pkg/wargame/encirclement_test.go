package wargame

import (
	"context"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

func TestResolveEncirclementPhaseMarksUnitWithNoFriendlyEscape(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "home", TerrainType: TerrainPlains, ControllerFactionID: "fac-a"}); err != nil {
		t.Fatalf("PutTerritory(home): %v", err)
	}
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "ring", TerrainType: TerrainPlains, ControllerFactionID: "fac-b"}); err != nil {
		t.Fatalf("PutTerritory(ring): %v", err)
	}
	if err := s.PutAdjacency(ctx, &model.TerritoryAdjacency{GuildID: testGuild, TerritoryAID: "home", TerritoryBID: "ring"}); err != nil {
		t.Fatalf("PutAdjacency: %v", err)
	}
	if err := s.PutWar(ctx, &model.War{GuildID: testGuild, WarID: "war-1", Status: model.WarActive}); err != nil {
		t.Fatalf("PutWar: %v", err)
	}
	if err := s.PutWarParticipant(ctx, &model.WarParticipant{GuildID: testGuild, WarID: "war-1", FactionID: "fac-a", Side: model.WarSideA}); err != nil {
		t.Fatalf("PutWarParticipant: %v", err)
	}
	if err := s.PutWarParticipant(ctx, &model.WarParticipant{GuildID: testGuild, WarID: "war-1", FactionID: "fac-b", Side: model.WarSideB}); err != nil {
		t.Fatalf("PutWarParticipant: %v", err)
	}
	// The unit sits in its own ("home") territory, its only neighbor is
	// enemy-controlled "ring", so it cannot BFS to any friendly land.
	u := &model.Unit{GuildID: testGuild, UnitID: "unit-1", OwnerFactionID: "fac-a", Status: model.UnitActive, CurrentTerritoryID: "home"}
	if err := s.PutUnit(ctx, u); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}
	// Flip "home" to be enemy-hostile-adjacent only: reassign it to be
	// neutral so only path out is through hostile "ring".
	home, err := s.GetTerritory(ctx, testGuild, "home")
	if err != nil {
		t.Fatalf("GetTerritory: %v", err)
	}
	home.ControllerFactionID = ""
	if err := s.PutTerritory(ctx, home); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}

	if err := resolveEncirclementPhase(ctx, s, testGuild, 1, s); err != nil {
		t.Fatalf("resolveEncirclementPhase: %v", err)
	}

	got, err := s.GetUnit(ctx, testGuild, "unit-1")
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	if !got.Encircled {
		t.Error("expected unit to be encircled with no reachable friendly territory")
	}
}

func TestResolveEncirclementPhaseSkipsAerialUnits(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "home", TerrainType: TerrainPlains}); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}
	u := &model.Unit{GuildID: testGuild, UnitID: "unit-air", OwnerFactionID: "fac-a", Status: model.UnitActive, CurrentTerritoryID: "home", Keywords: []string{"aerial"}}
	if err := s.PutUnit(ctx, u); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}

	if err := resolveEncirclementPhase(ctx, s, testGuild, 1, s); err != nil {
		t.Fatalf("resolveEncirclementPhase: %v", err)
	}

	got, err := s.GetUnit(ctx, testGuild, "unit-air")
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	if got.Encircled {
		t.Error("aerial units are exempt from encirclement")
	}
}

func TestIsFriendlyControlledNeutralIsNotAnEscape(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	neutral := &model.Territory{GuildID: testGuild, TerritoryID: "neutral"}
	if isFriendlyControlled(neutral, "char-1", "fac-1", ctx, s, testGuild) {
		t.Error("an uncontrolled territory must not count as a friendly escape")
	}
}
