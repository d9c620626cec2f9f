package wargame

import (
	"context"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

func TestResolveTerritoryCombatDisbandsLoserAndCaptures(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "terr-1", TerrainType: TerrainPlains}); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}
	attacker := &model.Unit{GuildID: testGuild, UnitID: "unit-attacker", OwnerFactionID: "fac-a", OwnerCharacterID: "char-a", CurrentTerritoryID: "terr-1", Status: model.UnitActive, Attack: 10, Defense: 10, Organization: 10, MaxOrganization: 10}
	defender := &model.Unit{GuildID: testGuild, UnitID: "unit-defender", OwnerFactionID: "fac-b", OwnerCharacterID: "char-b", CurrentTerritoryID: "terr-1", Status: model.UnitActive, Attack: 1, Defense: 1, Organization: 1, MaxOrganization: 1}
	if err := s.PutUnit(ctx, attacker); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}
	if err := s.PutUnit(ctx, defender); err != nil {
		t.Fatalf("PutUnit: %v", err)
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

	actions := map[string]string{"fac-a": "capture"}
	if err := resolveTerritoryCombat(ctx, s, testGuild, 1, s, "terr-1", []*model.Unit{attacker, defender}, actions); err != nil {
		t.Fatalf("resolveTerritoryCombat: %v", err)
	}

	gotDefender, err := s.GetUnit(ctx, testGuild, "unit-defender")
	if err != nil {
		t.Fatalf("GetUnit(defender): %v", err)
	}
	if gotDefender.Status != model.UnitDisbanded {
		t.Errorf("defender status = %v, want UnitDisbanded (outmatched 10atk vs 1def)", gotDefender.Status)
	}

	terr, err := s.GetTerritory(ctx, testGuild, "terr-1")
	if err != nil {
		t.Fatalf("GetTerritory: %v", err)
	}
	if terr.ControllerCharacterID != "char-a" {
		t.Errorf("ControllerCharacterID = %q, want char-a (the capturing unit's owning character) after capture action won the territory", terr.ControllerCharacterID)
	}
}

func TestResolveCaptureSkipsCityTerrain(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "terr-city", TerrainType: TerrainCity}); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}
	u := &model.Unit{GuildID: testGuild, UnitID: "unit-1", OwnerFactionID: "fac-a", Status: model.UnitActive, Attack: 5, Defense: 5}
	side := &combatSide{id: "fac-a", units: []*model.Unit{u}, actions: map[string]bool{"capture": true}}

	if err := resolveCapture(ctx, s, testGuild, 1, s, "terr-city", []*combatSide{side}); err != nil {
		t.Fatalf("resolveCapture: %v", err)
	}

	terr, err := s.GetTerritory(ctx, testGuild, "terr-city")
	if err != nil {
		t.Fatalf("GetTerritory: %v", err)
	}
	if terr.ControllerFactionID != "" {
		t.Errorf("city terrain must never change hands via capture, got controller %q", terr.ControllerFactionID)
	}
}

func TestSidesHostileAlliedFactionsNeverFight(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutAlliance(ctx, &model.Alliance{GuildID: testGuild, FactionAID: "fac-a", FactionBID: "fac-b", Status: model.AllianceActive}); err != nil {
		t.Fatalf("PutAlliance: %v", err)
	}
	a := &combatSide{id: "fac-a", units: []*model.Unit{{OwnerFactionID: "fac-a", Status: model.UnitActive}}, actions: map[string]bool{}}
	b := &combatSide{id: "fac-b", units: []*model.Unit{{OwnerFactionID: "fac-b", Status: model.UnitActive}}, actions: map[string]bool{}}

	if sidesHostile(ctx, s, testGuild, a, b) {
		t.Error("actively allied factions should never be hostile")
	}
}

func TestSidesHostileMutuallyExclusiveActions(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	a := &combatSide{id: "fac-a", units: []*model.Unit{{OwnerFactionID: "fac-a", Status: model.UnitActive}}, actions: map[string]bool{"capture": true}}
	b := &combatSide{id: "fac-b", units: []*model.Unit{{OwnerFactionID: "fac-b", Status: model.UnitActive}}, actions: map[string]bool{"raid": true}}

	if !sidesHostile(ctx, s, testGuild, a, b) {
		t.Error("two sides both holding mutually exclusive actions here should be hostile")
	}
}

// fakeEventSink records emitted events in order, for tests that need to
// assert on event types rather than just state mutations.
type fakeEventSink struct {
	events []*model.Event
}

func (f *fakeEventSink) Emit(ctx context.Context, e *model.Event) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEventSink) hasEventType(eventType string) bool {
	for _, e := range f.events {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

// TestResolveTerritoryCombatActionConflictEmitsEvent covers hostility cause
// (c) of §4.5: two sides holding mutually exclusive actions (capture vs
// raid) on the same territory must emit COMBAT_ACTION_CONFLICT.
func TestResolveTerritoryCombatActionConflictEmitsEvent(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "terr-1", TerrainType: TerrainPlains}); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}
	a := &model.Unit{GuildID: testGuild, UnitID: "unit-a", OwnerFactionID: "fac-a", OwnerCharacterID: "char-a", CurrentTerritoryID: "terr-1", Status: model.UnitActive, Attack: 1, Defense: 1, Organization: 10, MaxOrganization: 10}
	b := &model.Unit{GuildID: testGuild, UnitID: "unit-b", OwnerFactionID: "fac-b", OwnerCharacterID: "char-b", CurrentTerritoryID: "terr-1", Status: model.UnitActive, Attack: 1, Defense: 1, Organization: 10, MaxOrganization: 10}
	if err := s.PutUnit(ctx, a); err != nil {
		t.Fatalf("PutUnit(a): %v", err)
	}
	if err := s.PutUnit(ctx, b); err != nil {
		t.Fatalf("PutUnit(b): %v", err)
	}

	sink := &fakeEventSink{}
	actions := map[string]string{"fac-a": "capture", "fac-b": "raid"}
	if err := resolveTerritoryCombat(ctx, s, testGuild, 1, sink, "terr-1", []*model.Unit{a, b}, actions); err != nil {
		t.Fatalf("resolveTerritoryCombat: %v", err)
	}

	if !sink.hasEventType("COMBAT_ACTION_CONFLICT") {
		t.Error("want COMBAT_ACTION_CONFLICT emitted for a capture/raid conflict")
	}
}

// TestResolveTerritoryCombatEndsAfterStalemateRound mirrors scenario S3
// (spec §8): two at-war units with equal attack and defense deal no
// damage to each other, so combat concludes after a single round with
// COMBAT_ENDED and both units surviving at full organization.
func TestResolveTerritoryCombatEndsAfterStalemateRound(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "terr-1", TerrainType: TerrainPlains}); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}
	a := &model.Unit{GuildID: testGuild, UnitID: "unit-a", OwnerFactionID: "fac-a", OwnerCharacterID: "char-a", CurrentTerritoryID: "terr-1", Status: model.UnitActive, Attack: 5, Defense: 5, Organization: 10, MaxOrganization: 10}
	b := &model.Unit{GuildID: testGuild, UnitID: "unit-b", OwnerFactionID: "fac-b", OwnerCharacterID: "char-b", CurrentTerritoryID: "terr-1", Status: model.UnitActive, Attack: 5, Defense: 5, Organization: 10, MaxOrganization: 10}
	if err := s.PutUnit(ctx, a); err != nil {
		t.Fatalf("PutUnit(a): %v", err)
	}
	if err := s.PutUnit(ctx, b); err != nil {
		t.Fatalf("PutUnit(b): %v", err)
	}
	if err := s.PutWar(ctx, &model.War{GuildID: testGuild, WarID: "war-1", Status: model.WarActive}); err != nil {
		t.Fatalf("PutWar: %v", err)
	}
	if err := s.PutWarParticipant(ctx, &model.WarParticipant{GuildID: testGuild, WarID: "war-1", FactionID: "fac-a", Side: model.WarSideA}); err != nil {
		t.Fatalf("PutWarParticipant(a): %v", err)
	}
	if err := s.PutWarParticipant(ctx, &model.WarParticipant{GuildID: testGuild, WarID: "war-1", FactionID: "fac-b", Side: model.WarSideB}); err != nil {
		t.Fatalf("PutWarParticipant(b): %v", err)
	}

	sink := &fakeEventSink{}
	if err := resolveTerritoryCombat(ctx, s, testGuild, 1, sink, "terr-1", []*model.Unit{a, b}, map[string]string{}); err != nil {
		t.Fatalf("resolveTerritoryCombat: %v", err)
	}

	if !sink.hasEventType("COMBAT_ENDED") {
		t.Error("want COMBAT_ENDED after a single damage-free round")
	}
	if sink.hasEventType("COMBAT_MAX_ROUNDS") {
		t.Error("a stalemate round must not run to the round cap")
	}

	gotA, err := s.GetUnit(ctx, testGuild, "unit-a")
	if err != nil {
		t.Fatalf("GetUnit(a): %v", err)
	}
	gotB, err := s.GetUnit(ctx, testGuild, "unit-b")
	if err != nil {
		t.Fatalf("GetUnit(b): %v", err)
	}
	if gotA.Organization != 10 || gotB.Organization != 10 {
		t.Errorf("organization = %d/%d, want both to survive at 10", gotA.Organization, gotB.Organization)
	}
}
