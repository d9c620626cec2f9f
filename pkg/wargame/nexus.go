package wargame

import (
	"context"
	"sort"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

// nearestSpiritNexus returns the BFS-nearest SpiritNexus to territoryID,
// traversing adjacency regardless of terrain, ties broken alphabetically
// by nexus territory id (§4.6 Spirit Nexus proximity).
func nearestSpiritNexus(ctx context.Context, tx store.Store, guildID int64, territoryID string) (*model.SpiritNexus, error) {
	nexuses, err := tx.ListSpiritNexuses(ctx, guildID)
	if err != nil || len(nexuses) == 0 {
		return nil, err
	}
	byTerritory := make(map[string]*model.SpiritNexus, len(nexuses))
	for i := range nexuses {
		byTerritory[nexuses[i].TerritoryID] = &nexuses[i]
	}
	g, err := LoadAdjacencyGraph(ctx, tx, guildID)
	if err != nil {
		return nil, err
	}
	if n, ok := byTerritory[territoryID]; ok {
		return n, nil
	}

	visited := map[string]bool{territoryID: true}
	frontier := []string{territoryID}
	for len(frontier) > 0 {
		var found []string
		var next []string
		for _, cur := range frontier {
			for _, n := range g.Neighbors(cur) {
				if visited[n] {
					continue
				}
				visited[n] = true
				next = append(next, n)
				if _, ok := byTerritory[n]; ok {
					found = append(found, n)
				}
			}
		}
		if len(found) > 0 {
			sort.Strings(found)
			return byTerritory[found[0]], nil
		}
		frontier = next
	}
	return nil, nil
}

// applyNexusMutation adjusts nexus's RestoreAmount by delta, honoring the
// south-pole/north-pole redirect: if the nearest nexus is one of that
// pair, the mutation lands on the other pole instead, unless the swap
// target does not exist.
func applyNexusMutation(ctx context.Context, tx store.Store, guildID int64, turn int, phase Phase, sink store.EventSink, nexus *model.SpiritNexus, delta int, eventType string) error {
	if nexus == nil {
		return nil
	}
	target := nexus
	var redirectTo string
	switch nexus.TerritoryID {
	case "south-pole":
		redirectTo = "north-pole"
	case "north-pole":
		redirectTo = "south-pole"
	}
	if redirectTo != "" {
		nexuses, err := tx.ListSpiritNexuses(ctx, guildID)
		if err != nil {
			return err
		}
		for i := range nexuses {
			if nexuses[i].TerritoryID == redirectTo {
				target = &nexuses[i]
				break
			}
		}
	}
	target.RestoreAmount += delta
	if err := tx.PutSpiritNexus(ctx, target); err != nil {
		return err
	}
	// GM-only: no affected_character_ids audience.
	return emitEvent(ctx, sink, guildID, turn+1, phase, eventType, "spirit_nexus", target.TerritoryID, nil)
}
