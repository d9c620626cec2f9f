package wargame

import (
	"context"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

func TestValidateMakeAllianceRejectsSelfAndDuplicate(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-a", LeaderID: "leader-a"})
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-b", LeaderID: "leader-b"})

	if _, err := validateMakeAlliance(ctx, s, testGuild, 1, "leader-a", OrderRequest{TargetFactionID: "fac-a"}); err == nil {
		t.Error("expected error allying with self")
	}

	if _, err := validateMakeAlliance(ctx, s, testGuild, 1, "leader-a", OrderRequest{TargetFactionID: "fac-b"}); err != nil {
		t.Fatalf("first proposal should validate: %v", err)
	}
	if err := s.PutAlliance(ctx, &model.Alliance{GuildID: testGuild, FactionAID: "fac-a", FactionBID: "fac-b", InitiatedByFaction: "fac-a", Status: model.AlliancePendingB}); err != nil {
		t.Fatalf("PutAlliance: %v", err)
	}

	if _, err := validateMakeAlliance(ctx, s, testGuild, 1, "leader-a", OrderRequest{TargetFactionID: "fac-b"}); err == nil {
		t.Error("expected error on duplicate proposal from the same side")
	}
	if _, err := validateMakeAlliance(ctx, s, testGuild, 1, "leader-b", OrderRequest{TargetFactionID: "fac-a"}); err != nil {
		t.Errorf("complementary proposal from the waited-on side should validate: %v", err)
	}
}

func TestMakeAllianceHandshakeActivatesOnComplement(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-a", LeaderID: "leader-a"})
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-b", LeaderID: "leader-b"})

	o1 := &model.Order{OrderID: "o1", OrderType: string(OrderMakeAlliance), SubmittedByID: "leader-a", ActingFactionID: "fac-a", TargetFactionID: "fac-b"}
	if err := resolveMakeAlliance(ctx, s, testGuild, 1, s, o1); err != nil {
		t.Fatalf("resolveMakeAlliance (first half): %v", err)
	}
	if o1.Status != model.OrderSuccess {
		t.Errorf("first half status = %v, want OrderSuccess", o1.Status)
	}
	all, err := s.GetAlliance(ctx, testGuild, "fac-a", "fac-b")
	if err != nil {
		t.Fatalf("GetAlliance: %v", err)
	}
	if all.Status == model.AllianceActive {
		t.Error("alliance should still be pending after only one half")
	}

	o2 := &model.Order{OrderID: "o2", OrderType: string(OrderMakeAlliance), SubmittedByID: "leader-b", ActingFactionID: "fac-b", TargetFactionID: "fac-a"}
	if err := resolveMakeAlliance(ctx, s, testGuild, 1, s, o2); err != nil {
		t.Fatalf("resolveMakeAlliance (second half): %v", err)
	}
	all, err = s.GetAlliance(ctx, testGuild, "fac-a", "fac-b")
	if err != nil {
		t.Fatalf("GetAlliance: %v", err)
	}
	if all.Status != model.AllianceActive {
		t.Errorf("alliance status = %v, want AllianceActive after both halves", all.Status)
	}
	if all.ActivatedTurn != 2 {
		t.Errorf("ActivatedTurn = %d, want 2 (turn+1)", all.ActivatedTurn)
	}
}

func TestValidateDissolveAllianceRequiresMinimumAge(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-a", LeaderID: "leader-a"})
	if err := s.PutAlliance(ctx, &model.Alliance{GuildID: testGuild, FactionAID: "fac-a", FactionBID: "fac-b", Status: model.AllianceActive, ActivatedTurn: 5}); err != nil {
		t.Fatalf("PutAlliance: %v", err)
	}

	if _, err := validateDissolveAlliance(ctx, s, testGuild, 6, "leader-a", OrderRequest{TargetFactionID: "fac-b"}); err == nil {
		t.Error("expected error dissolving an alliance younger than 4 turns")
	}
	if _, err := validateDissolveAlliance(ctx, s, testGuild, 9, "leader-a", OrderRequest{TargetFactionID: "fac-b"}); err != nil {
		t.Errorf("alliance at minimum age should validate: %v", err)
	}
}

func TestDeclareWarCreatesWarAndDragsInAllies(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	for _, id := range []string{"fac-a", "fac-b", "fac-c"} {
		mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: id, LeaderID: "leader-" + id})
	}
	// fac-c is allied with both fac-a and fac-b, so declaring fac-a vs fac-b should drag fac-c in on the targets' side.
	if err := s.PutAlliance(ctx, &model.Alliance{GuildID: testGuild, FactionAID: "fac-a", FactionBID: "fac-c", Status: model.AllianceActive, ActivatedTurn: 1}); err != nil {
		t.Fatalf("PutAlliance: %v", err)
	}
	if err := s.PutAlliance(ctx, &model.Alliance{GuildID: testGuild, FactionAID: "fac-b", FactionBID: "fac-c", Status: model.AllianceActive, ActivatedTurn: 1}); err != nil {
		t.Fatalf("PutAlliance: %v", err)
	}

	o := &model.Order{OrderID: "o1", OrderType: string(OrderDeclareWar), SubmittedByID: "leader-fac-a", ActingFactionID: "fac-a", TargetFactionID: "fac-b", ResourceType: "territory-x"}
	if err := resolveDeclareWar(ctx, s, testGuild, 1, s, o); err != nil {
		t.Fatalf("resolveDeclareWar: %v", err)
	}
	if o.Status != model.OrderSuccess {
		t.Errorf("status = %v, want OrderSuccess", o.Status)
	}

	wars, err := s.ListWars(ctx, testGuild)
	if err != nil {
		t.Fatalf("ListWars: %v", err)
	}
	if len(wars) != 1 {
		t.Fatalf("len(wars) = %d, want 1", len(wars))
	}
	parts, err := s.ListWarParticipants(ctx, testGuild, wars[0].WarID)
	if err != nil {
		t.Fatalf("ListWarParticipants: %v", err)
	}
	var sideOfA, sideOfC model.WarSide
	found := map[string]bool{}
	for _, p := range parts {
		found[p.FactionID] = true
		if p.FactionID == "fac-a" {
			sideOfA = p.Side
		}
		if p.FactionID == "fac-c" {
			sideOfC = p.Side
		}
	}
	if !found["fac-a"] || !found["fac-b"] || !found["fac-c"] {
		t.Fatalf("expected all three factions in the war, got %v", parts)
	}
	if sideOfC == sideOfA || sideOfC != model.WarSideB {
		t.Errorf("fac-c should be dragged in on the targets' side (WarSideB): a=%v c=%v", sideOfA, sideOfC)
	}

	f, err := s.GetFaction(ctx, testGuild, "fac-a")
	if err != nil {
		t.Fatalf("GetFaction: %v", err)
	}
	if !f.HasDeclaredWar {
		t.Error("declarer should have HasDeclaredWar set after first declaration")
	}
}

func TestFactionsAtWar(t *testing.T) {
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

	atWar, err := factionsAtWar(ctx, s, testGuild, "fac-a", "fac-b")
	if err != nil {
		t.Fatalf("factionsAtWar: %v", err)
	}
	if !atWar {
		t.Error("fac-a and fac-b are on opposing sides, expected true")
	}

	atWar, err = factionsAtWar(ctx, s, testGuild, "fac-a", "fac-c")
	if err != nil {
		t.Fatalf("factionsAtWar: %v", err)
	}
	if atWar {
		t.Error("fac-c is not in the war, expected false")
	}
}

func TestValidateKickFromFactionEnforcesCooldownsAndPermission(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-1", LeaderID: "char-leader", CreatedTurn: 1})
	if err := s.PutFactionMember(ctx, &model.FactionMember{GuildID: testGuild, FactionID: "fac-1", CharacterID: "char-member", JoinedTurn: 1}); err != nil {
		t.Fatalf("PutFactionMember: %v", err)
	}

	if _, err := validateKickFromFaction(ctx, s, testGuild, 4, "char-leader", OrderRequest{TargetFactionID: "fac-1", TargetCharacter: "char-leader"}); err == nil {
		t.Error("expected error kicking the leader")
	}
	if _, err := validateKickFromFaction(ctx, s, testGuild, 4, "char-stranger", OrderRequest{TargetFactionID: "fac-1", TargetCharacter: "char-member"}); err == nil {
		t.Error("expected error when submitter lacks MEMBERSHIP permission and is not the leader")
	}
	if _, err := validateKickFromFaction(ctx, s, testGuild, 2, "char-leader", OrderRequest{TargetFactionID: "fac-1", TargetCharacter: "char-member"}); err == nil {
		t.Error("expected error when faction is younger than 3 turns")
	}
	if _, err := validateKickFromFaction(ctx, s, testGuild, 4, "char-leader", OrderRequest{TargetFactionID: "fac-1", TargetCharacter: "char-member"}); err != nil {
		t.Errorf("leader kicking an established member past cooldown should validate: %v", err)
	}
}

func TestResolveLeaveFactionReconcilesRepresentation(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-1", LeaderID: "char-leader"})
	if err := s.PutCharacter(ctx, &model.Character{GuildID: testGuild, Identifier: "char-member", RepresentedFactionID: "fac-1"}); err != nil {
		t.Fatalf("PutCharacter: %v", err)
	}
	if err := s.PutFactionMember(ctx, &model.FactionMember{GuildID: testGuild, FactionID: "fac-1", CharacterID: "char-member", JoinedTurn: 1}); err != nil {
		t.Fatalf("PutFactionMember: %v", err)
	}
	if err := s.PutUnit(ctx, &model.Unit{GuildID: testGuild, UnitID: "unit-1", OwnerCharacterID: "char-member", OwnerFactionID: "fac-1"}); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}

	o := &model.Order{OrderID: "o1", OrderType: string(OrderLeaveFaction), SubmittedByID: "char-member", TargetFactionID: "fac-1"}
	if err := resolveLeaveFaction(ctx, s, testGuild, 1, s, o); err != nil {
		t.Fatalf("resolveLeaveFaction: %v", err)
	}

	c, err := s.GetCharacter(ctx, testGuild, "char-member")
	if err != nil {
		t.Fatalf("GetCharacter: %v", err)
	}
	if c.RepresentedFactionID != "" {
		t.Errorf("RepresentedFactionID = %q, want empty after leaving with no other membership", c.RepresentedFactionID)
	}

	u, err := s.GetUnit(ctx, testGuild, "unit-1")
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	if u.OwnerFactionID != "" {
		t.Errorf("unit OwnerFactionID = %q, want empty after owner's faction representation cleared", u.OwnerFactionID)
	}
}
