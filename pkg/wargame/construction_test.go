package wargame

import (
	"context"
	"errors"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

func TestExecuteMobilizationSpendsResourcesAndCreatesUnit(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutUnitType(ctx, &model.UnitType{GuildID: testGuild, TypeName: "infantry", Movement: 2, Attack: 3, Defense: 3, MaxOrganization: 10, CostOre: 5}); err != nil {
		t.Fatalf("PutUnitType: %v", err)
	}
	if err := s.PutPlayerResources(ctx, &model.PlayerResources{GuildID: testGuild, CharacterID: "char-1", Ore: 10}); err != nil {
		t.Fatalf("PutPlayerResources: %v", err)
	}
	if err := s.PutCharacter(ctx, &model.Character{GuildID: testGuild, Identifier: "char-1", RepresentedFactionID: "fac-1"}); err != nil {
		t.Fatalf("PutCharacter: %v", err)
	}

	o := &model.Order{OrderID: "o1", OrderType: string(OrderMobilization), SubmittedByID: "char-1", BuildTypeName: "infantry", TargetTerritory: "terr-1"}
	if err := executeMobilization(ctx, s, testGuild, 1, s, o); err != nil {
		t.Fatalf("executeMobilization: %v", err)
	}

	r, err := s.GetPlayerResources(ctx, testGuild, "char-1")
	if err != nil {
		t.Fatalf("GetPlayerResources: %v", err)
	}
	if r.Ore != 5 {
		t.Errorf("Ore = %d, want 5 (10-5)", r.Ore)
	}
	units, err := s.ListUnits(ctx, testGuild)
	if err != nil {
		t.Fatalf("ListUnits: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("len(units) = %d, want 1", len(units))
	}
	if units[0].OwnerFactionID != "fac-1" || units[0].CurrentTerritoryID != "terr-1" {
		t.Errorf("unit = %+v, want owner faction fac-1 at terr-1", units[0])
	}
}

func TestExecuteMobilizationFailsOnInsufficientResources(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutUnitType(ctx, &model.UnitType{GuildID: testGuild, TypeName: "infantry", CostOre: 5}); err != nil {
		t.Fatalf("PutUnitType: %v", err)
	}
	if err := s.PutPlayerResources(ctx, &model.PlayerResources{GuildID: testGuild, CharacterID: "char-1", Ore: 1}); err != nil {
		t.Fatalf("PutPlayerResources: %v", err)
	}
	if err := s.PutCharacter(ctx, &model.Character{GuildID: testGuild, Identifier: "char-1"}); err != nil {
		t.Fatalf("PutCharacter: %v", err)
	}

	o := &model.Order{OrderID: "o1", OrderType: string(OrderMobilization), SubmittedByID: "char-1", BuildTypeName: "infantry", TargetTerritory: "terr-1"}
	err := executeMobilization(ctx, s, testGuild, 1, s, o)
	if err == nil {
		t.Fatal("expected ExecutionFailure for insufficient resources")
	}
	var ef *ExecutionFailure
	if !errors.As(err, &ef) {
		t.Fatalf("expected *ExecutionFailure, got %T: %v", err, err)
	}

	units, err := s.ListUnits(ctx, testGuild)
	if err != nil {
		t.Fatalf("ListUnits: %v", err)
	}
	if len(units) != 0 {
		t.Errorf("len(units) = %d, want 0 (no partial mobilization on insufficient funds)", len(units))
	}
}

func TestExecuteConstructionTriggersNexusMutation(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutBuildingType(ctx, &model.BuildingType{GuildID: testGuild, TypeName: "foundry", MaxDurability: 10, Keywords: []string{"industrial"}}); err != nil {
		t.Fatalf("PutBuildingType: %v", err)
	}
	if err := s.PutPlayerResources(ctx, &model.PlayerResources{GuildID: testGuild, CharacterID: "char-1"}); err != nil {
		t.Fatalf("PutPlayerResources: %v", err)
	}
	if err := s.PutSpiritNexus(ctx, &model.SpiritNexus{GuildID: testGuild, TerritoryID: "terr-1", RestoreAmount: 5}); err != nil {
		t.Fatalf("PutSpiritNexus: %v", err)
	}

	o := &model.Order{OrderID: "o1", OrderType: string(OrderConstruction), SubmittedByID: "char-1", BuildTypeName: "foundry", TargetTerritory: "terr-1"}
	if err := executeConstruction(ctx, s, testGuild, 1, s, o); err != nil {
		t.Fatalf("executeConstruction: %v", err)
	}

	nexuses, err := s.ListSpiritNexuses(ctx, testGuild)
	if err != nil {
		t.Fatalf("ListSpiritNexuses: %v", err)
	}
	if len(nexuses) != 1 || nexuses[0].RestoreAmount != 4 {
		t.Errorf("nexuses = %+v, want RestoreAmount 4 after an industrial building damages it by 1", nexuses)
	}
}

func TestResolveVictoryPhaseAwardsTerritoryPoints(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "terr-1", ControllerCharacterID: "char-1", VictoryPoints: 3}); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}
	if err := s.PutCharacter(ctx, &model.Character{GuildID: testGuild, Identifier: "char-1", VictoryPoints: 1}); err != nil {
		t.Fatalf("PutCharacter: %v", err)
	}

	if err := resolveVictoryPhase(ctx, s, testGuild, 1, s, nil); err != nil {
		t.Fatalf("resolveVictoryPhase: %v", err)
	}

	c, err := s.GetCharacter(ctx, testGuild, "char-1")
	if err != nil {
		t.Fatalf("GetCharacter: %v", err)
	}
	if c.VictoryPoints != 4 {
		t.Errorf("VictoryPoints = %d, want 4 (1+3)", c.VictoryPoints)
	}
}

