package wargame

import (
	"context"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

func TestExecuteResourceTransferMovesResourcesBetweenCharacters(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutPlayerResources(ctx, &model.PlayerResources{GuildID: testGuild, CharacterID: "char-sender", Ore: 10}); err != nil {
		t.Fatalf("PutPlayerResources: %v", err)
	}

	o := &model.Order{OrderID: "o1", OrderType: string(OrderResourceTransfer), SubmittedByID: "char-sender", TargetCharacter: "char-recipient", ResourceType: string(model.ResourceOre), ResourceAmount: 4}
	if err := executeResourceTransfer(ctx, s, testGuild, 1, s, o); err != nil {
		t.Fatalf("executeResourceTransfer: %v", err)
	}

	sender, err := s.GetPlayerResources(ctx, testGuild, "char-sender")
	if err != nil {
		t.Fatalf("GetPlayerResources(sender): %v", err)
	}
	if sender.Ore != 6 {
		t.Errorf("sender Ore = %d, want 6", sender.Ore)
	}
	recipient, err := s.GetPlayerResources(ctx, testGuild, "char-recipient")
	if err != nil {
		t.Fatalf("GetPlayerResources(recipient): %v", err)
	}
	if recipient.Ore != 4 {
		t.Errorf("recipient Ore = %d, want 4", recipient.Ore)
	}
}

func TestExecuteResourceTransferPartialOnDeficit(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutPlayerResources(ctx, &model.PlayerResources{GuildID: testGuild, CharacterID: "char-sender", Ore: 2}); err != nil {
		t.Fatalf("PutPlayerResources: %v", err)
	}

	o := &model.Order{OrderID: "o1", OrderType: string(OrderResourceTransfer), SubmittedByID: "char-sender", TargetCharacter: "char-recipient", ResourceType: string(model.ResourceOre), ResourceAmount: 9}
	if err := executeResourceTransfer(ctx, s, testGuild, 1, s, o); err != nil {
		t.Fatalf("executeResourceTransfer: %v", err)
	}

	sender, err := s.GetPlayerResources(ctx, testGuild, "char-sender")
	if err != nil {
		t.Fatalf("GetPlayerResources(sender): %v", err)
	}
	if sender.Ore != 0 {
		t.Errorf("sender Ore = %d, want 0 after paying out what it had", sender.Ore)
	}
	recipient, err := s.GetPlayerResources(ctx, testGuild, "char-recipient")
	if err != nil {
		t.Fatalf("GetPlayerResources(recipient): %v", err)
	}
	if recipient.Ore != 2 {
		t.Errorf("recipient Ore = %d, want 2 (only what was available)", recipient.Ore)
	}
}

func TestResolveResourceTransferPhaseCancelBeforeTransfer(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutPlayerResources(ctx, &model.PlayerResources{GuildID: testGuild, CharacterID: "char-sender", Ore: 10}); err != nil {
		t.Fatalf("PutPlayerResources: %v", err)
	}
	transfer := model.Order{OrderID: "transfer-1", OrderType: string(OrderResourceTransfer), SubmittedByID: "char-sender", TargetCharacter: "char-recipient", ResourceType: string(model.ResourceOre), ResourceAmount: 5, Status: model.OrderPending}
	if err := s.PutOrder(ctx, &transfer); err != nil {
		t.Fatalf("PutOrder: %v", err)
	}
	cancel := model.Order{OrderID: "cancel-1", OrderType: string(OrderCancelTransfer), SubmittedByID: "char-sender", TargetUnitID: "transfer-1"}

	if err := resolveResourceTransferPhase(ctx, s, testGuild, 1, s, []model.Order{transfer, cancel}); err != nil {
		t.Fatalf("resolveResourceTransferPhase: %v", err)
	}

	got, err := s.GetOrder(ctx, testGuild, "transfer-1")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Status != model.OrderCancelled {
		t.Errorf("transfer status = %v, want OrderCancelled", got.Status)
	}
	sender, err := s.GetPlayerResources(ctx, testGuild, "char-sender")
	if err != nil {
		t.Fatalf("GetPlayerResources: %v", err)
	}
	if sender.Ore != 10 {
		t.Errorf("sender Ore = %d, want unchanged 10 since the transfer was cancelled before executing", sender.Ore)
	}
}

func TestTerritoryProductionIndustrialAndConditionalBonus(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	terr := &model.Territory{GuildID: testGuild, TerritoryID: "terr-1", OreProduction: 1}
	// b-industrial carries both "industrial" and "ore": +2 ore unconditionally.
	if err := s.PutBuilding(ctx, &model.Building{GuildID: testGuild, BuildingID: "b-industrial", TerritoryID: "terr-1", Status: model.BuildingActive, Keywords: []string{"industrial", "ore"}}); err != nil {
		t.Fatalf("PutBuilding: %v", err)
	}
	// b-ore-refinery carries only "ore": +2 ore, gated on ore already being > 0.
	if err := s.PutBuilding(ctx, &model.Building{GuildID: testGuild, BuildingID: "b-ore-refinery", TerritoryID: "terr-1", Status: model.BuildingActive, Keywords: []string{"ore"}}); err != nil {
		t.Fatalf("PutBuilding: %v", err)
	}
	// b-housing carries no resource keyword: contributes no bonus to any resource.
	if err := s.PutBuilding(ctx, &model.Building{GuildID: testGuild, BuildingID: "b-housing", TerritoryID: "terr-1", Status: model.BuildingActive, Keywords: []string{"housing"}}); err != nil {
		t.Fatalf("PutBuilding: %v", err)
	}
	// b-lumber-mill carries only "lumber", and lumber's natural production is
	// 0 with no industrial building to seed it: its conditional bonus must
	// not apply.
	if err := s.PutBuilding(ctx, &model.Building{GuildID: testGuild, BuildingID: "b-lumber-mill", TerritoryID: "terr-1", Status: model.BuildingActive, Keywords: []string{"lumber"}}); err != nil {
		t.Fatalf("PutBuilding: %v", err)
	}

	production, err := territoryProduction(ctx, s, testGuild, terr)
	if err != nil {
		t.Fatalf("territoryProduction: %v", err)
	}
	// ore: base 1 + industrial 2 + (base+industrial>0) refinery 2 = 5
	if production[0] != 5 {
		t.Errorf("ore production = %d, want 5", production[0])
	}
	// lumber: base 0, no industrial building carries "lumber", so the
	// lumber mill's conditional bonus never triggers.
	if production[1] != 0 {
		t.Errorf("lumber production = %d, want 0 (no building seeded lumber with an industrial bonus)", production[1])
	}
}

// TestTerritoryProductionKeywordGatesToItsOwnResource confirms a building
// with a resource keyword boosts only that resource, never the others —
// a housing/hospital/fortification/shrine building with no resource
// keyword at all must grant no bonus anywhere.
func TestTerritoryProductionKeywordGatesToItsOwnResource(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	terr := &model.Territory{GuildID: testGuild, TerritoryID: "terr-1", OreProduction: 1, RationsProduction: 1}
	if err := s.PutBuilding(ctx, &model.Building{GuildID: testGuild, BuildingID: "b-granary", TerritoryID: "terr-1", Status: model.BuildingActive, Keywords: []string{"rations"}}); err != nil {
		t.Fatalf("PutBuilding(granary): %v", err)
	}
	if err := s.PutBuilding(ctx, &model.Building{GuildID: testGuild, BuildingID: "b-fortification", TerritoryID: "terr-1", Status: model.BuildingActive, Keywords: []string{"fortification"}}); err != nil {
		t.Fatalf("PutBuilding(fortification): %v", err)
	}

	production, err := territoryProduction(ctx, s, testGuild, terr)
	if err != nil {
		t.Fatalf("territoryProduction: %v", err)
	}
	if production[0] != 1 {
		t.Errorf("ore production = %d, want 1 (unchanged — granary only carries rations, fortification carries no resource keyword)", production[0])
	}
	if production[3] != 3 {
		t.Errorf("rations production = %d, want 3 (base 1 + granary 2)", production[3])
	}
}

func TestPayUpkeepNoControllerIsFullDeficit(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	short, err := payUpkeep(ctx, s, testGuild, "", "", [6]int{1, 0, 0, 1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("payUpkeep: %v", err)
	}
	if short != 2 {
		t.Errorf("short = %d, want 2 (ore and rations both required with no controller)", short)
	}
}

func TestPayUpkeepDeductsAvailableAndReportsShortfall(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutFactionResources(ctx, &model.FactionResources{GuildID: testGuild, FactionID: "fac-1", Ore: 3, Lumber: 0}); err != nil {
		t.Fatalf("PutFactionResources: %v", err)
	}
	short, err := payUpkeep(ctx, s, testGuild, "", "fac-1", [6]int{2, 2, 0, 0, 0, 0}, 1)
	if err != nil {
		t.Fatalf("payUpkeep: %v", err)
	}
	if short != 1 {
		t.Errorf("short = %d, want 1 (lumber unaffordable, ore affordable)", short)
	}
	r, err := s.GetFactionResources(ctx, testGuild, "fac-1")
	if err != nil {
		t.Fatalf("GetFactionResources: %v", err)
	}
	if r.Ore != 1 {
		t.Errorf("Ore = %d, want 1 (3-2)", r.Ore)
	}
	if r.Lumber != 0 {
		t.Errorf("Lumber = %d, want 0 (floored, could not afford 2)", r.Lumber)
	}
}

func TestResolveUpkeepPhaseDestroysDepletedBuildingAndDisbandsUnit(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	terr := &model.Territory{GuildID: testGuild, TerritoryID: "terr-1"}
	if err := s.PutTerritory(ctx, terr); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}
	b := &model.Building{GuildID: testGuild, BuildingID: "b-1", TerritoryID: "terr-1", Status: model.BuildingActive, Durability: 1, UpkeepOre: 5}
	if err := s.PutBuilding(ctx, b); err != nil {
		t.Fatalf("PutBuilding: %v", err)
	}
	u := &model.Unit{GuildID: testGuild, UnitID: "u-1", Status: model.UnitActive, Organization: 1, UpkeepOre: 5}
	if err := s.PutUnit(ctx, u); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}

	if err := resolveUpkeepPhase(ctx, s, testGuild, 1, s, nil); err != nil {
		t.Fatalf("resolveUpkeepPhase: %v", err)
	}

	gotB, err := s.GetBuilding(ctx, testGuild, "b-1")
	if err != nil {
		t.Fatalf("GetBuilding: %v", err)
	}
	if gotB.Status != model.BuildingDestroyed {
		t.Errorf("building status = %v, want BuildingDestroyed after upkeep deficit drained its durability", gotB.Status)
	}
	gotU, err := s.GetUnit(ctx, testGuild, "u-1")
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	if gotU.Status != model.UnitDisbanded {
		t.Errorf("unit status = %v, want UnitDisbanded after upkeep deficit drained its organization", gotU.Status)
	}
}

func TestResolveResourceCollectionPhaseAggregatesTerritoryAndCharacterProduction(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "terr-1", ControllerCharacterID: "char-1", OreProduction: 3}); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}
	if err := s.PutCharacter(ctx, &model.Character{GuildID: testGuild, Identifier: "char-1", OreProduction: 2}); err != nil {
		t.Fatalf("PutCharacter: %v", err)
	}

	if err := resolveResourceCollectionPhase(ctx, s, testGuild, 1, s); err != nil {
		t.Fatalf("resolveResourceCollectionPhase: %v", err)
	}

	r, err := s.GetPlayerResources(ctx, testGuild, "char-1")
	if err != nil {
		t.Fatalf("GetPlayerResources: %v", err)
	}
	if r.Ore != 5 {
		t.Errorf("Ore = %d, want 5 (3 territory + 2 personal)", r.Ore)
	}
}
