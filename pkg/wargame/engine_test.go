package wargame

import (
	"context"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

// TestAdvanceTurnAdvancesCurrentTurnWithNoOrders exercises the orchestrator
// across every phase with nothing to do: it must still commit each phase
// and move the tenant to the next turn.
func TestAdvanceTurnAdvancesCurrentTurnWithNoOrders(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	e := NewEngine(s, nil)

	if err := e.AdvanceTurn(ctx, testGuild); err != nil {
		t.Fatalf("AdvanceTurn: %v", err)
	}

	cfg, err := s.GetConfig(ctx, testGuild)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.CurrentTurn != 1 {
		t.Errorf("CurrentTurn = %d, want 1", cfg.CurrentTurn)
	}
}

// TestAdvanceTurnNoopWhenResolutionDisabled confirms a tenant with
// turn_resolution_enabled=false never runs a phase or advances current_turn.
func TestAdvanceTurnNoopWhenResolutionDisabled(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutConfig(ctx, &model.WargameConfig{GuildID: testGuild, CurrentTurn: 3, MaxMovementStat: 8, TurnResolutionEnabled: false}); err != nil {
		t.Fatalf("PutConfig: %v", err)
	}
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-1", LeaderID: "char-leader"})
	e := NewEngine(s, nil)

	result, err := e.SubmitOrder(ctx, testGuild, "char-1", OrderRequest{OrderType: OrderJoinFaction, TargetFactionID: "fac-1"})
	if err != nil || result.Rejected {
		t.Fatalf("SubmitOrder: result=%+v err=%v", result, err)
	}

	if err := e.AdvanceTurn(ctx, testGuild); err != nil {
		t.Fatalf("AdvanceTurn: %v", err)
	}

	cfg, err := s.GetConfig(ctx, testGuild)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.CurrentTurn != 3 {
		t.Errorf("CurrentTurn = %d, want unchanged at 3 when turn_resolution_enabled=false", cfg.CurrentTurn)
	}

	order, err := s.GetOrder(ctx, testGuild, result.OrderID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if order.Status != model.OrderPending {
		t.Errorf("order status = %v, want still OrderPending since no phase ran", order.Status)
	}
}

// TestAdvanceTurnCompletesFactionJoinHandshake walks a faction-join
// handshake (two complementary JOIN_FACTION orders, one from the leader,
// one from the joining character) all the way through SubmitOrder and a
// full AdvanceTurn, and confirms the membership side effect lands.
func TestAdvanceTurnCompletesFactionJoinHandshake(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-1", LeaderID: "char-leader"})
	if err := s.PutCharacter(ctx, &model.Character{GuildID: testGuild, Identifier: "char-1"}); err != nil {
		t.Fatalf("PutCharacter: %v", err)
	}
	e := NewEngine(s, nil)

	joinerResult, err := e.SubmitOrder(ctx, testGuild, "char-1", OrderRequest{OrderType: OrderJoinFaction, TargetFactionID: "fac-1"})
	if err != nil || joinerResult.Rejected {
		t.Fatalf("SubmitOrder(joiner): result=%+v err=%v", joinerResult, err)
	}
	leaderResult, err := e.SubmitOrder(ctx, testGuild, "char-leader", OrderRequest{OrderType: OrderJoinFaction, TargetFactionID: "fac-1"})
	if err != nil || leaderResult.Rejected {
		t.Fatalf("SubmitOrder(leader): result=%+v err=%v", leaderResult, err)
	}

	if err := e.AdvanceTurn(ctx, testGuild); err != nil {
		t.Fatalf("AdvanceTurn: %v", err)
	}

	members, err := s.ListFactionMembers(ctx, testGuild, "fac-1")
	if err != nil {
		t.Fatalf("ListFactionMembers: %v", err)
	}
	found := false
	for _, m := range members {
		if m.CharacterID == "char-1" {
			found = true
		}
	}
	if !found {
		t.Errorf("members = %+v, want char-1 present after the handshake completes", members)
	}

	gotJoiner, err := s.GetOrder(ctx, testGuild, joinerResult.OrderID)
	if err != nil {
		t.Fatalf("GetOrder(joiner): %v", err)
	}
	if gotJoiner.Status != model.OrderSuccess {
		t.Errorf("joiner order status = %v, want OrderSuccess", gotJoiner.Status)
	}
	gotLeader, err := s.GetOrder(ctx, testGuild, leaderResult.OrderID)
	if err != nil {
		t.Fatalf("GetOrder(leader): %v", err)
	}
	if gotLeader.Status != model.OrderSuccess {
		t.Errorf("leader order status = %v, want OrderSuccess", gotLeader.Status)
	}
}

// TestAdvanceTurnMobilizesUnitAndSpendsResources drives a MOBILIZATION
// order through the construction phase end to end, confirming resources
// are deducted, a unit is created, and the order reaches a terminal state.
func TestAdvanceTurnMobilizesUnitAndSpendsResources(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-1", LeaderID: "char-1"})
	if err := s.PutCharacter(ctx, &model.Character{GuildID: testGuild, Identifier: "char-1", RepresentedFactionID: "fac-1"}); err != nil {
		t.Fatalf("PutCharacter: %v", err)
	}
	if err := s.PutUnitType(ctx, &model.UnitType{GuildID: testGuild, TypeName: "infantry", Movement: 2, Attack: 3, Defense: 3, MaxOrganization: 10, CostOre: 5}); err != nil {
		t.Fatalf("PutUnitType: %v", err)
	}
	if err := s.PutPlayerResources(ctx, &model.PlayerResources{GuildID: testGuild, CharacterID: "char-1", Ore: 10}); err != nil {
		t.Fatalf("PutPlayerResources: %v", err)
	}
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "terr-1", TerrainType: TerrainPlains}); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}
	e := NewEngine(s, nil)

	result, err := e.SubmitOrder(ctx, testGuild, "char-1", OrderRequest{OrderType: OrderMobilization, BuildTypeName: "infantry", TargetTerritory: "terr-1"})
	if err != nil || result.Rejected {
		t.Fatalf("SubmitOrder: result=%+v err=%v", result, err)
	}

	if err := e.AdvanceTurn(ctx, testGuild); err != nil {
		t.Fatalf("AdvanceTurn: %v", err)
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

	got, err := s.GetOrder(ctx, testGuild, result.OrderID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Status != model.OrderSuccess {
		t.Errorf("order status = %v, want OrderSuccess", got.Status)
	}
	if got.Phase != string(PhaseConstruction) {
		t.Errorf("order phase = %q, want %q (SubmitOrder must stamp the schedule phase)", got.Phase, PhaseConstruction)
	}

	cfg, err := s.GetConfig(ctx, testGuild)
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.CurrentTurn != 1 {
		t.Errorf("CurrentTurn = %d, want 1", cfg.CurrentTurn)
	}
}

// TestAdvanceTurnMovesUnitAlongPath drives a TRANSIT order through the
// movement phase and confirms the unit's territory and the order's
// terminal status both reflect path completion.
func TestAdvanceTurnMovesUnitAlongPath(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	for _, id := range []string{"terr-a", "terr-b"} {
		if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: id, TerrainType: TerrainPlains}); err != nil {
			t.Fatalf("PutTerritory(%s): %v", id, err)
		}
	}
	if err := s.PutAdjacency(ctx, &model.TerritoryAdjacency{GuildID: testGuild, TerritoryAID: "terr-a", TerritoryBID: "terr-b"}); err != nil {
		t.Fatalf("PutAdjacency: %v", err)
	}
	u := &model.Unit{GuildID: testGuild, UnitID: "unit-1", OwnerCharacterID: "char-1", Status: model.UnitActive, CurrentTerritoryID: "terr-a", Movement: 1}
	if err := s.PutUnit(ctx, u); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}
	e := NewEngine(s, nil)

	result, err := e.SubmitOrder(ctx, testGuild, "char-1", OrderRequest{OrderType: OrderTransit, UnitIDs: []string{"unit-1"}, Path: []string{"terr-a", "terr-b"}})
	if err != nil || result.Rejected {
		t.Fatalf("SubmitOrder: result=%+v err=%v", result, err)
	}

	if err := e.AdvanceTurn(ctx, testGuild); err != nil {
		t.Fatalf("AdvanceTurn: %v", err)
	}

	got, err := s.GetUnit(ctx, testGuild, "unit-1")
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	if got.CurrentTerritoryID != "terr-b" {
		t.Errorf("CurrentTerritoryID = %q, want terr-b", got.CurrentTerritoryID)
	}

	order, err := s.GetOrder(ctx, testGuild, result.OrderID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if order.MovementStatus != string(MovementPathComplete) {
		t.Errorf("MovementStatus = %q, want %q", order.MovementStatus, MovementPathComplete)
	}
}
