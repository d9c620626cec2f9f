package wargame

import (
	"context"
	"sort"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

// resolveNavalCombat triggers per water territory holding at least two
// hostile naval sides, computing all damage across all territories
// first, then applying it: naval combat is single-round and
// simultaneous, and naval units never retreat (§4.5).
func resolveNavalCombat(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink) error {
	units, err := tx.ListUnits(ctx, guildID)
	if err != nil {
		return err
	}
	byTerritory := map[string][]*model.Unit{}
	for i := range units {
		u := &units[i]
		if u.Status != model.UnitActive || !hasKeyword(u.Keywords, "naval") {
			continue
		}
		positions, err := tx.ListNavalPositions(ctx, guildID, u.UnitID)
		if err != nil {
			return err
		}
		territories := map[string]bool{}
		if u.CurrentTerritoryID != "" {
			territories[u.CurrentTerritoryID] = true
		}
		for _, p := range positions {
			territories[p.TerritoryID] = true
		}
		for t := range territories {
			byTerritory[t] = append(byTerritory[t], u)
		}
	}

	territoryIDs := make([]string, 0, len(byTerritory))
	for id := range byTerritory {
		territoryIDs = append(territoryIDs, id)
	}
	sort.Strings(territoryIDs)

	type pendingDamage struct {
		unitID string
		amount int
	}
	var allDamage []pendingDamage
	var hiddenSubmarines = map[string]bool{}

	for _, territoryID := range territoryIDs {
		sides := buildSides(ctx, tx, guildID, byTerritory[territoryID], nil)
		var hostilePairs [][2]*combatSide
		for i, a := range sides {
			for _, b := range sides[i+1:] {
				if sidesHostile(ctx, tx, guildID, a, b) {
					hostilePairs = append(hostilePairs, [2]*combatSide{a, b})
				}
			}
		}
		if len(hostilePairs) == 0 {
			continue
		}
		for _, pair := range hostilePairs {
			a, b := pair[0], pair[1]
			aEngage, bEngage := engagingUnits(a, hiddenSubmarines, b.totalDefense()), engagingUnits(b, hiddenSubmarines, a.totalDefense())
			aAtk := sumAttack(aEngage)
			bAtk := sumAttack(bEngage)
			aDef := sumDefense(aEngage)
			bDef := sumDefense(bEngage)
			if aAtk > bDef {
				for _, u := range bEngage {
					allDamage = append(allDamage, pendingDamage{u.UnitID, 2})
				}
			}
			if bAtk > aDef {
				for _, u := range aEngage {
					allDamage = append(allDamage, pendingDamage{u.UnitID, 2})
				}
			}
		}
	}

	damageByUnit := map[string]int{}
	for _, d := range allDamage {
		damageByUnit[d.unitID] += d.amount
	}
	destroyed := map[string]bool{}
	for i := range units {
		u := &units[i]
		d := damageByUnit[u.UnitID]
		if d == 0 || u.Status != model.UnitActive {
			continue
		}
		u.Organization -= d
		if u.Organization <= 0 {
			u.Status = model.UnitDisbanded
			destroyed[u.UnitID] = true
			if err := emitEvent(ctx, sink, guildID, turn+1, PhaseNavalCombat, "UNIT_DISBANDED", "unit", u.UnitID, []string{u.OwnerCharacterID}); err != nil {
				return err
			}
		}
		if err := tx.PutUnit(ctx, u); err != nil {
			return err
		}
	}

	for i := range units {
		u := &units[i]
		if !destroyed[u.UnitID] || u.Capacity <= 0 {
			continue
		}
		if err := destroyTransportCargo(ctx, tx, guildID, turn, sink, u); err != nil {
			return err
		}
	}
	return nil
}

// engagingUnits applies the submarine hidden-engagement rule: a
// submarine only joins the pairing if it would deal damage, i.e. the
// side's total attack (including it) exceeds the enemy's total defense;
// a non-engaging submarine is excluded and remains hidden.
func engagingUnits(side *combatSide, hidden map[string]bool, enemyDefense int) []*model.Unit {
	var out []*model.Unit
	for _, u := range side.units {
		if u.Status != model.UnitActive {
			continue
		}
		if hasKeyword(u.Keywords, "submarine") {
			if side.totalAttack() <= enemyDefense {
				hidden[u.UnitID] = true
				continue
			}
		}
		out = append(out, u)
	}
	return out
}

func sumAttack(units []*model.Unit) int {
	total := 0
	for _, u := range units {
		total += u.Attack
	}
	return total
}

func sumDefense(units []*model.Unit) int {
	total := 0
	for _, u := range units {
		total += u.Defense
	}
	return total
}

// destroyTransportCargo disbands every land unit riding the same
// territory as a destroyed transport, approximating "carrying_units"
// tracking for the engine's simplified transport-coupling model.
func destroyTransportCargo(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, transport *model.Unit) error {
	cargo, err := tx.ListUnitsByTerritory(ctx, guildID, transport.CurrentTerritoryID)
	if err != nil {
		return err
	}
	any := false
	for i := range cargo {
		c := &cargo[i]
		if c.Status != model.UnitActive || hasKeyword(c.Keywords, "naval") || hasKeyword(c.Keywords, "aerial") {
			continue
		}
		c.Status = model.UnitDisbanded
		if err := tx.PutUnit(ctx, c); err != nil {
			return err
		}
		any = true
		if err := emitEvent(ctx, sink, guildID, turn+1, PhaseNavalCombat, "UNIT_DISBANDED", "unit", c.UnitID, []string{c.OwnerCharacterID}); err != nil {
			return err
		}
	}
	if any {
		return emitEvent(ctx, sink, guildID, turn+1, PhaseNavalCombat, "TRANSPORT_CARGO_DESTROYED", "unit", transport.UnitID, nil)
	}
	return nil
}
