package wargame

import (
	"context"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

// resolveEncirclementPhase runs between Movement and Combat: any active
// land unit (not infiltrator/aerial) that cannot BFS a path to friendly
// land over friendly-or-neutral territory (enemy-controlled territory
// impassable, friendly convoy coverage traversable) is marked encircled,
// a flag the Upkeep phase consults (§4.4).
func resolveEncirclementPhase(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink) error {
	units, err := tx.ListUnits(ctx, guildID)
	if err != nil {
		return err
	}
	territories, err := tx.ListTerritories(ctx, guildID)
	if err != nil {
		return err
	}
	territoryByID := make(map[string]*model.Territory, len(territories))
	for i := range territories {
		territoryByID[territories[i].TerritoryID] = &territories[i]
	}
	graph, err := LoadAdjacencyGraph(ctx, tx, guildID)
	if err != nil {
		return err
	}
	convoyCovered, err := convoyWindowSet(ctx, tx, guildID)
	if err != nil {
		return err
	}

	for i := range units {
		u := &units[i]
		wasEncircled := u.Encircled
		if u.Status != model.UnitActive || u.CurrentTerritoryID == "" {
			if wasEncircled {
				u.Encircled = false
				if err := tx.PutUnit(ctx, u); err != nil {
					return err
				}
			}
			continue
		}
		if hasKeyword(u.Keywords, "infiltrator") || hasKeyword(u.Keywords, "aerial") || hasKeyword(u.Keywords, "naval") {
			continue
		}
		t := territoryByID[u.CurrentTerritoryID]
		if t == nil || IsWaterTerrain(t.TerrainType) {
			continue
		}

		blocked := map[string]bool{}
		for _, other := range territories {
			if isEnemyControlled(&other, u.OwnerFactionID, ctx, tx, guildID) && !convoyCovered[other.TerritoryID] {
				blocked[other.TerritoryID] = true
			}
		}
		reachable := graph.BFSReachable(u.CurrentTerritoryID, blocked)
		encircled := true
		for id := range reachable {
			t2 := territoryByID[id]
			if t2 == nil || IsWaterTerrain(t2.TerrainType) {
				continue
			}
			if isFriendlyControlled(t2, u.OwnerCharacterID, u.OwnerFactionID, ctx, tx, guildID) {
				encircled = false
				break
			}
		}
		if encircled != wasEncircled {
			u.Encircled = encircled
			if err := tx.PutUnit(ctx, u); err != nil {
				return err
			}
			if encircled {
				if err := emitEvent(ctx, sink, guildID, turn+1, PhaseEncirclement, "UNIT_ENCIRCLED", "unit", u.UnitID, []string{u.OwnerCharacterID}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func isEnemyControlled(t *model.Territory, actorFactionID string, ctx context.Context, tx store.Store, guildID int64) bool {
	if t.ControllerFactionID == "" || t.ControllerFactionID == actorFactionID {
		return false
	}
	return isHostileFaction(ctx, tx, guildID, actorFactionID, t.ControllerFactionID, false) ||
		func() bool { at, _ := factionsAtWar(ctx, tx, guildID, actorFactionID, t.ControllerFactionID); return at }()
}

func isFriendlyControlled(t *model.Territory, characterID, factionID string, ctx context.Context, tx store.Store, guildID int64) bool {
	if t.ControllerCharacterID == "" && t.ControllerFactionID == "" {
		return false // neutral territory is traversable but not an escape
	}
	if t.ControllerCharacterID == characterID || t.ControllerFactionID == factionID {
		return true
	}
	if t.ControllerFactionID != "" && factionID != "" {
		return alliedActive(ctx, tx, guildID, t.ControllerFactionID, factionID)
	}
	return false
}

// convoyWindowSet returns the union of every territory any active
// naval_convoy or aerial_convoy order currently covers.
func convoyWindowSet(ctx context.Context, tx store.Store, guildID int64) (map[string]bool, error) {
	units, err := tx.ListUnits(ctx, guildID)
	if err != nil {
		return nil, err
	}
	covered := map[string]bool{}
	for _, u := range units {
		positions, err := tx.ListNavalPositions(ctx, guildID, u.UnitID)
		if err != nil {
			return nil, err
		}
		for _, p := range positions {
			covered[p.TerritoryID] = true
		}
	}
	return covered, nil
}
