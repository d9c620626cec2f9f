package wargame

import (
	"context"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

func putPlainTerritory(t *testing.T, s *memstore.Store, id string) {
	t.Helper()
	if err := s.PutTerritory(context.Background(), &model.Territory{GuildID: testGuild, TerritoryID: id, TerrainType: TerrainPlains}); err != nil {
		t.Fatalf("PutTerritory(%s): %v", id, err)
	}
}

func TestStepMovementOrderCompletesPath(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	putPlainTerritory(t, s, "a")
	putPlainTerritory(t, s, "b")
	putPlainTerritory(t, s, "c")
	u := &model.Unit{GuildID: testGuild, UnitID: "unit-1", OwnerFactionID: "fac-a", Status: model.UnitActive, Movement: 5, CurrentTerritoryID: "a"}
	if err := s.PutUnit(ctx, u); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}
	o := &model.Order{OrderID: "o1", OrderType: string(OrderTransit), SubmittedByID: "char-1", UnitID: "unit-1", Path: []string{"a", "b", "c"}}

	if err := stepMovementOrder(ctx, s, testGuild, 1, s, o, false); err != nil {
		t.Fatalf("stepMovementOrder: %v", err)
	}
	if o.Status != model.OrderSuccess {
		t.Errorf("status = %v, want OrderSuccess", o.Status)
	}
	if o.MovementStatus != string(MovementPathComplete) {
		t.Errorf("MovementStatus = %v, want PATH_COMPLETE", o.MovementStatus)
	}
	got, err := s.GetUnit(ctx, testGuild, "unit-1")
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	if got.CurrentTerritoryID != "c" {
		t.Errorf("CurrentTerritoryID = %q, want c", got.CurrentTerritoryID)
	}
}

func TestStepMovementOrderStopsOutOfMP(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	putPlainTerritory(t, s, "a")
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "b", TerrainType: TerrainMountain}); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}
	putPlainTerritory(t, s, "c")
	u := &model.Unit{GuildID: testGuild, UnitID: "unit-1", OwnerFactionID: "fac-a", Status: model.UnitActive, Movement: 1, CurrentTerritoryID: "a"}
	if err := s.PutUnit(ctx, u); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}
	// mountain costs 3, but transit gives totalMP = movement(1)+1 = 2, so it can't afford the hop.
	o := &model.Order{OrderID: "o1", OrderType: string(OrderTransit), SubmittedByID: "char-1", UnitID: "unit-1", Path: []string{"a", "b", "c"}}

	if err := stepMovementOrder(ctx, s, testGuild, 1, s, o, false); err != nil {
		t.Fatalf("stepMovementOrder: %v", err)
	}
	if o.MovementStatus != string(MovementOutOfMP) {
		t.Errorf("MovementStatus = %v, want OUT_OF_MP", o.MovementStatus)
	}
	if o.Status != model.OrderOngoing {
		t.Errorf("status = %v, want OrderOngoing (still mid-path)", o.Status)
	}
	got, err := s.GetUnit(ctx, testGuild, "unit-1")
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	if got.CurrentTerritoryID != "a" {
		t.Errorf("CurrentTerritoryID = %q, want unchanged a", got.CurrentTerritoryID)
	}
}

func TestStepMovementOrderBlockedByHostileUnits(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	putPlainTerritory(t, s, "a")
	putPlainTerritory(t, s, "b")
	if err := s.PutWar(ctx, &model.War{GuildID: testGuild, WarID: "war-1", Status: model.WarActive}); err != nil {
		t.Fatalf("PutWar: %v", err)
	}
	if err := s.PutWarParticipant(ctx, &model.WarParticipant{GuildID: testGuild, WarID: "war-1", FactionID: "fac-a", Side: model.WarSideA}); err != nil {
		t.Fatalf("PutWarParticipant: %v", err)
	}
	if err := s.PutWarParticipant(ctx, &model.WarParticipant{GuildID: testGuild, WarID: "war-1", FactionID: "fac-b", Side: model.WarSideB}); err != nil {
		t.Fatalf("PutWarParticipant: %v", err)
	}
	mover := &model.Unit{GuildID: testGuild, UnitID: "unit-mover", OwnerFactionID: "fac-a", Status: model.UnitActive, Movement: 5, CurrentTerritoryID: "a"}
	blocker := &model.Unit{GuildID: testGuild, UnitID: "unit-blocker", OwnerFactionID: "fac-b", Status: model.UnitActive, CurrentTerritoryID: "b"}
	if err := s.PutUnit(ctx, mover); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}
	if err := s.PutUnit(ctx, blocker); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}
	o := &model.Order{OrderID: "o1", OrderType: string(OrderTransit), SubmittedByID: "char-1", UnitID: "unit-mover", Path: []string{"a", "b"}}

	if err := stepMovementOrder(ctx, s, testGuild, 1, s, o, false); err != nil {
		t.Fatalf("stepMovementOrder: %v", err)
	}
	if o.MovementStatus != string(MovementEngaged) {
		t.Errorf("MovementStatus = %v, want ENGAGED", o.MovementStatus)
	}
	if o.BlockedAt != "b" {
		t.Errorf("BlockedAt = %q, want b", o.BlockedAt)
	}
	if o.Status != model.OrderOngoing {
		t.Errorf("status = %v, want OrderOngoing", o.Status)
	}
}

func TestIsHostileFactionAlliedNeverHostile(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutAlliance(ctx, &model.Alliance{GuildID: testGuild, FactionAID: "fac-a", FactionBID: "fac-b", Status: model.AllianceActive}); err != nil {
		t.Fatalf("PutAlliance: %v", err)
	}
	if isHostileFaction(ctx, s, testGuild, "fac-a", "fac-b", true) {
		t.Error("allied factions must never be hostile even with a hostile-keyword unit present")
	}
}
