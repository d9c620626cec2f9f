package wargame

import (
	"context"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

const testGuild = int64(100)

func TestCharacterHasPermissionLeaderImplicit(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-1", LeaderID: "char-leader"})

	ok, err := characterHasPermission(ctx, s, testGuild, "fac-1", "char-leader", model.PermissionFinancial)
	if err != nil {
		t.Fatalf("characterHasPermission: %v", err)
	}
	if !ok {
		t.Error("faction leader should implicitly hold every permission")
	}
}

func TestCharacterHasPermissionExplicitGrantOnly(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-1", LeaderID: "char-leader"})
	if err := s.PutFactionPermission(ctx, &model.FactionPermission{
		GuildID: testGuild, FactionID: "fac-1", CharacterID: "char-member", PermissionType: model.PermissionConstruction,
	}); err != nil {
		t.Fatalf("PutFactionPermission: %v", err)
	}

	ok, err := characterHasPermission(ctx, s, testGuild, "fac-1", "char-member", model.PermissionConstruction)
	if err != nil {
		t.Fatalf("characterHasPermission: %v", err)
	}
	if !ok {
		t.Error("expected granted permission to be recognized")
	}

	ok, err = characterHasPermission(ctx, s, testGuild, "fac-1", "char-member", model.PermissionFinancial)
	if err != nil {
		t.Fatalf("characterHasPermission: %v", err)
	}
	if ok {
		t.Error("member was not granted FINANCIAL, want false")
	}
}

func TestCanCommandUnit(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-1", LeaderID: "char-leader"})

	u := &model.Unit{GuildID: testGuild, UnitID: "unit-1", OwnerCharacterID: "char-owner", OwnerFactionID: "fac-1"}

	for _, tc := range []struct {
		name   string
		caller string
		want   bool
	}{
		{"owner may command", "char-owner", true},
		{"faction leader may command", "char-leader", true},
		{"unrelated character may not command", "char-stranger", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := canCommandUnit(ctx, s, testGuild, u, tc.caller)
			if err != nil {
				t.Fatalf("canCommandUnit: %v", err)
			}
			if ok != tc.want {
				t.Errorf("canCommandUnit(%s) = %v, want %v", tc.caller, ok, tc.want)
			}
		})
	}
}

func mustPutFaction(t *testing.T, s *memstore.Store, f *model.Faction) {
	t.Helper()
	if err := s.PutFaction(context.Background(), f); err != nil {
		t.Fatalf("PutFaction: %v", err)
	}
}
