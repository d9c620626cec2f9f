package wargame

import (
	"context"
	"sort"

	"github.com/example/wargame/internal/store"
)

// AdjacencyGraph is the undirected movement graph for one tenant,
// indexed both ways for O(1) neighbor lookups. It mirrors the teacher's
// dense province-index technique (pkg/diplomacy/resolve.go) generalized
// to a tenant-sized map instead of a fixed [ProvinceCount]int16 array,
// since territory counts vary per tenant/config import.
type AdjacencyGraph struct {
	neighbors map[string]map[string]bool
}

// LoadAdjacencyGraph builds the graph from the tenant's adjacency rows.
func LoadAdjacencyGraph(ctx context.Context, tx store.Store, guildID int64) (*AdjacencyGraph, error) {
	rows, err := tx.ListAdjacencies(ctx, guildID)
	if err != nil {
		return nil, err
	}
	g := &AdjacencyGraph{neighbors: make(map[string]map[string]bool)}
	for _, r := range rows {
		g.addEdge(r.TerritoryAID, r.TerritoryBID)
	}
	return g, nil
}

func (g *AdjacencyGraph) addEdge(a, b string) {
	if g.neighbors[a] == nil {
		g.neighbors[a] = make(map[string]bool)
	}
	if g.neighbors[b] == nil {
		g.neighbors[b] = make(map[string]bool)
	}
	g.neighbors[a][b] = true
	g.neighbors[b][a] = true
}

// Adjacent reports whether a and b share an edge.
func (g *AdjacencyGraph) Adjacent(a, b string) bool {
	return g.neighbors[a] != nil && g.neighbors[a][b]
}

// Neighbors returns the sorted neighbor ids of t.
func (g *AdjacencyGraph) Neighbors(t string) []string {
	m := g.neighbors[t]
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidPath reports whether path is a sequence of pairwise-adjacent
// territories (length ≥ 1).
func (g *AdjacencyGraph) ValidPath(path []string) bool {
	if len(path) == 0 {
		return false
	}
	for i := 1; i < len(path); i++ {
		if !g.Adjacent(path[i-1], path[i]) {
			return false
		}
	}
	return true
}

// BFSReachable returns the set of territories reachable from start
// without stepping into any territory in blocked. No terrain predicate
// is applied; every non-blocked neighbour is traversed.
func (g *AdjacencyGraph) BFSReachable(start string, blocked map[string]bool) map[string]bool {
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(cur) {
			if visited[n] || blocked[n] {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return visited
}
