package wargame

import (
	"context"
	"reflect"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

func TestAdjacencyGraphAdjacentAndNeighbors(t *testing.T) {
	g := &AdjacencyGraph{neighbors: make(map[string]map[string]bool)}
	g.addEdge("a", "b")
	g.addEdge("b", "c")

	if !g.Adjacent("a", "b") || !g.Adjacent("b", "a") {
		t.Error("addEdge should be symmetric")
	}
	if g.Adjacent("a", "c") {
		t.Error("a and c are not directly adjacent")
	}
	if got, want := g.Neighbors("b"), []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors(b) = %v, want %v", got, want)
	}
	if got := g.Neighbors("nonexistent"); len(got) != 0 {
		t.Errorf("Neighbors of unknown territory = %v, want empty", got)
	}
}

func TestValidPath(t *testing.T) {
	g := &AdjacencyGraph{neighbors: make(map[string]map[string]bool)}
	g.addEdge("a", "b")
	g.addEdge("b", "c")

	tests := []struct {
		name string
		path []string
		want bool
	}{
		{"empty path is invalid", nil, false},
		{"single territory is valid", []string{"a"}, true},
		{"connected path is valid", []string{"a", "b", "c"}, true},
		{"non-adjacent hop is invalid", []string{"a", "c"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ValidPath(tt.path); got != tt.want {
				t.Errorf("ValidPath(%v) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestBFSReachableRespectsBlocked(t *testing.T) {
	g := &AdjacencyGraph{neighbors: make(map[string]map[string]bool)}
	g.addEdge("a", "b")
	g.addEdge("b", "c")
	g.addEdge("c", "d")

	reachable := g.BFSReachable("a", map[string]bool{"c": true})
	if !reachable["a"] || !reachable["b"] {
		t.Errorf("expected a and b reachable, got %v", reachable)
	}
	if reachable["c"] || reachable["d"] {
		t.Errorf("c is blocked so d must be unreachable too, got %v", reachable)
	}
}

func TestLoadAdjacencyGraphFromStore(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	const guildID = int64(1)
	if err := s.PutAdjacency(ctx, &model.TerritoryAdjacency{GuildID: guildID, TerritoryAID: "terr-a", TerritoryBID: "terr-b"}); err != nil {
		t.Fatalf("PutAdjacency: %v", err)
	}

	g, err := LoadAdjacencyGraph(ctx, s, guildID)
	if err != nil {
		t.Fatalf("LoadAdjacencyGraph: %v", err)
	}
	if !g.Adjacent("terr-a", "terr-b") {
		t.Error("expected terr-a and terr-b to be adjacent after load")
	}
}
