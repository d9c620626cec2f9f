package wargame

import (
	"context"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

func TestNearestSpiritNexusBreaksTiesAlphabetically(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	for _, id := range []string{"home", "zed", "alpha"} {
		if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: id}); err != nil {
			t.Fatalf("PutTerritory(%s): %v", id, err)
		}
	}
	if err := s.PutAdjacency(ctx, &model.TerritoryAdjacency{GuildID: testGuild, TerritoryAID: "home", TerritoryBID: "alpha"}); err != nil {
		t.Fatalf("PutAdjacency(home,alpha): %v", err)
	}
	if err := s.PutAdjacency(ctx, &model.TerritoryAdjacency{GuildID: testGuild, TerritoryAID: "home", TerritoryBID: "zed"}); err != nil {
		t.Fatalf("PutAdjacency(home,zed): %v", err)
	}
	if err := s.PutSpiritNexus(ctx, &model.SpiritNexus{GuildID: testGuild, TerritoryID: "zed", RestoreAmount: 1}); err != nil {
		t.Fatalf("PutSpiritNexus(zed): %v", err)
	}
	if err := s.PutSpiritNexus(ctx, &model.SpiritNexus{GuildID: testGuild, TerritoryID: "alpha", RestoreAmount: 1}); err != nil {
		t.Fatalf("PutSpiritNexus(alpha): %v", err)
	}

	got, err := nearestSpiritNexus(ctx, s, testGuild, "home")
	if err != nil {
		t.Fatalf("nearestSpiritNexus: %v", err)
	}
	if got == nil || got.TerritoryID != "alpha" {
		t.Errorf("nearestSpiritNexus = %+v, want the equidistant nexus at alpha (alphabetically first)", got)
	}
}

func TestApplyNexusMutationRedirectsBetweenPoles(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := s.PutSpiritNexus(ctx, &model.SpiritNexus{GuildID: testGuild, TerritoryID: "north-pole", RestoreAmount: 5}); err != nil {
		t.Fatalf("PutSpiritNexus(north-pole): %v", err)
	}
	if err := s.PutSpiritNexus(ctx, &model.SpiritNexus{GuildID: testGuild, TerritoryID: "south-pole", RestoreAmount: 5}); err != nil {
		t.Fatalf("PutSpiritNexus(south-pole): %v", err)
	}
	north := findNexus(t, ctx, s, "north-pole")

	if err := applyNexusMutation(ctx, s, testGuild, 1, PhaseConstruction, s, north, -2, "NEXUS_DAMAGED"); err != nil {
		t.Fatalf("applyNexusMutation: %v", err)
	}

	gotNorth := findNexus(t, ctx, s, "north-pole")
	if gotNorth.RestoreAmount != 5 {
		t.Errorf("north-pole RestoreAmount = %d, want unchanged at 5 (mutation redirects to the other pole)", gotNorth.RestoreAmount)
	}
	gotSouth := findNexus(t, ctx, s, "south-pole")
	if gotSouth.RestoreAmount != 3 {
		t.Errorf("south-pole RestoreAmount = %d, want 3 (5-2, mutation redirected here)", gotSouth.RestoreAmount)
	}
}

func findNexus(t *testing.T, ctx context.Context, s *memstore.Store, territoryID string) *model.SpiritNexus {
	t.Helper()
	nexuses, err := s.ListSpiritNexuses(ctx, testGuild)
	if err != nil {
		t.Fatalf("ListSpiritNexuses: %v", err)
	}
	for i := range nexuses {
		if nexuses[i].TerritoryID == territoryID {
			return &nexuses[i]
		}
	}
	t.Fatalf("no spirit nexus found at %s", territoryID)
	return nil
}

func TestApplyNexusMutationNilNexusIsNoop(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	if err := applyNexusMutation(ctx, s, testGuild, 1, PhaseConstruction, s, nil, -2, "NEXUS_DAMAGED"); err != nil {
		t.Fatalf("applyNexusMutation(nil): %v", err)
	}
}
