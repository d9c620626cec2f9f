package wargame

import (
	"context"
	"sort"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

const maxCombatRounds = 10

// combatSide is a transitive-alliance grouping of units sharing a
// territory for the purpose of one combat resolution (§4.5).
type combatSide struct {
	id      string
	units   []*model.Unit
	actions map[string]bool // capture/raid actions this side holds here this turn
}

func (s *combatSide) totalAttack() int {
	total := 0
	for _, u := range s.units {
		if u.Status == model.UnitActive {
			total += u.Attack
		}
	}
	return total
}

func (s *combatSide) totalDefense() int {
	total := 0
	for _, u := range s.units {
		if u.Status == model.UnitActive {
			total += u.Defense
		}
	}
	return total
}

func (s *combatSide) hasKeyword(kw string) bool {
	for _, u := range s.units {
		if u.Status == model.UnitActive && hasKeyword(u.Keywords, kw) {
			return true
		}
	}
	return false
}

func (s *combatSide) activeCount() int {
	n := 0
	for _, u := range s.units {
		if u.Status == model.UnitActive {
			n++
		}
	}
	return n
}

func (s *combatSide) factionID() string {
	for _, u := range s.units {
		if u.OwnerFactionID != "" {
			return u.OwnerFactionID
		}
	}
	return ""
}

// resolveCombatPhase dispatches to the land or naval combat algorithm.
// orders are not consulted directly (combat operates on persisted unit
// and territory state); capture/raid action classification is read off
// this turn's completed Movement orders.
func resolveCombatPhase(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, isNaval bool) error {
	if isNaval {
		return resolveNavalCombat(ctx, tx, guildID, turn, sink)
	}
	return resolveLandCombat(ctx, tx, guildID, turn, sink)
}

func resolveLandCombat(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink) error {
	units, err := tx.ListUnits(ctx, guildID)
	if err != nil {
		return err
	}
	territoryActions, err := territoryActionMap(ctx, tx, guildID, turn)
	if err != nil {
		return err
	}

	byTerritory := map[string][]*model.Unit{}
	for i := range units {
		u := &units[i]
		if u.Status != model.UnitActive || u.CurrentTerritoryID == "" {
			continue
		}
		if hasKeyword(u.Keywords, "aerial") || hasKeyword(u.Keywords, "naval") || hasKeyword(u.Keywords, "infiltrator") {
			continue
		}
		byTerritory[u.CurrentTerritoryID] = append(byTerritory[u.CurrentTerritoryID], u)
	}

	territoryIDs := make([]string, 0, len(byTerritory))
	for id := range byTerritory {
		territoryIDs = append(territoryIDs, id)
	}
	sort.Strings(territoryIDs)

	for _, territoryID := range territoryIDs {
		if err := resolveTerritoryCombat(ctx, tx, guildID, turn, sink, territoryID, byTerritory[territoryID], territoryActions[territoryID]); err != nil {
			return err
		}
	}
	return nil
}

// territoryActionMap returns, per territory, the set of owning faction
// ids that hold a capture/raid action there this turn (from SUCCESS
// Movement orders), used to classify mutually-exclusive-action hostility.
func territoryActionMap(ctx context.Context, tx store.Store, guildID int64, turn int) (map[string]map[string]string, error) {
	orders, err := tx.ListOrdersByTurn(ctx, guildID, turn)
	if err != nil {
		return nil, err
	}
	out := map[string]map[string]string{}
	for _, o := range orders {
		if o.Status != model.OrderSuccess {
			continue
		}
		var action string
		switch OrderType(o.OrderType) {
		case OrderCapture:
			action = "capture"
		case OrderRaid:
			action = "raid"
		default:
			continue
		}
		if out[o.TargetTerritory] == nil {
			out[o.TargetTerritory] = map[string]string{}
		}
		out[o.TargetTerritory][o.ActingFactionID] = action
	}
	return out, nil
}

func buildSides(ctx context.Context, tx store.Store, guildID int64, units []*model.Unit, actions map[string]string) []*combatSide {
	byFaction := map[string][]*model.Unit{}
	var unaffiliated []*model.Unit
	for _, u := range units {
		if u.OwnerFactionID == "" {
			unaffiliated = append(unaffiliated, u)
			continue
		}
		byFaction[u.OwnerFactionID] = append(byFaction[u.OwnerFactionID], u)
	}
	factionIDs := make([]string, 0, len(byFaction))
	for f := range byFaction {
		factionIDs = append(factionIDs, f)
	}
	sort.Strings(factionIDs)

	parent := map[string]string{}
	var find func(string) string
	find = func(x string) string {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for _, f := range factionIDs {
		parent[f] = f
	}
	for i, a := range factionIDs {
		for _, b := range factionIDs[i+1:] {
			if alliedActive(ctx, tx, guildID, a, b) {
				union(a, b)
			}
		}
	}

	groups := map[string][]*model.Unit{}
	for _, f := range factionIDs {
		root := find(f)
		groups[root] = append(groups[root], byFaction[f]...)
	}
	rootIDs := make([]string, 0, len(groups))
	for r := range groups {
		rootIDs = append(rootIDs, r)
	}
	sort.Strings(rootIDs)

	var sides []*combatSide
	for _, r := range rootIDs {
		side := &combatSide{id: r, units: groups[r], actions: map[string]bool{}}
		for f := range byFaction {
			if find(f) == r {
				if a, ok := actions[f]; ok {
					side.actions[a] = true
				}
			}
		}
		sides = append(sides, side)
	}
	for _, u := range unaffiliated {
		sides = append(sides, &combatSide{id: "unit:" + u.UnitID, units: []*model.Unit{u}, actions: map[string]bool{}})
	}
	return sides
}

var exclusiveCombatActions = map[string]bool{"capture": true, "raid": true}

func sidesHostile(ctx context.Context, tx store.Store, guildID int64, a, b *combatSide) bool {
	fa, fb := a.factionID(), b.factionID()
	if fa != "" && fb != "" {
		if alliedActive(ctx, tx, guildID, fa, fb) {
			return false
		}
		if atWar, _ := factionsAtWar(ctx, tx, guildID, fa, fb); atWar {
			return true
		}
	}
	if (a.hasKeyword("hostile") || b.hasKeyword("hostile")) && fa != fb {
		return true
	}
	return actionConflict(a, b)
}

// actionConflict reports whether a and b hold mutually exclusive actions
// on the same territory (capture/capture, capture/raid, raid/raid), the
// third hostility cause of §4.5 and the one that triggers
// COMBAT_ACTION_CONFLICT.
func actionConflict(a, b *combatSide) bool {
	for act1 := range a.actions {
		for act2 := range b.actions {
			if exclusiveCombatActions[act1] && exclusiveCombatActions[act2] {
				return true
			}
		}
	}
	return false
}

func resolveTerritoryCombat(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, territoryID string, units []*model.Unit, actions map[string]string) error {
	sides := buildSides(ctx, tx, guildID, units, actions)
	if len(sides) < 2 {
		return nil
	}

	for round := 0; round < maxCombatRounds; round++ {
		var hostilePairs [][2]*combatSide
		liveSides := map[string]bool{}
		for _, s := range sides {
			if s.activeCount() > 0 {
				liveSides[s.id] = true
			}
		}
		for i, a := range sides {
			if !liveSides[a.id] {
				continue
			}
			for _, b := range sides[i+1:] {
				if !liveSides[b.id] {
					continue
				}
				if !sidesHostile(ctx, tx, guildID, a, b) {
					continue
				}
				hostilePairs = append(hostilePairs, [2]*combatSide{a, b})
				if actionConflict(a, b) {
					if err := emitEvent(ctx, sink, guildID, turn+1, PhaseCombat, "COMBAT_ACTION_CONFLICT", "territory", territoryID, nil); err != nil {
						return err
					}
				}
			}
		}
		if len(hostilePairs) == 0 {
			if err := emitEvent(ctx, sink, guildID, turn+1, PhaseCombat, "COMBAT_ENDED", "territory", territoryID, nil); err != nil {
				return err
			}
			break
		}
		if round == maxCombatRounds-1 {
			if err := emitEvent(ctx, sink, guildID, turn+1, PhaseCombat, "COMBAT_MAX_ROUNDS", "territory", territoryID, nil); err != nil {
				return err
			}
			break
		}

		damage := map[string]int{} // unit id -> organization lost this round
		for _, pair := range hostilePairs {
			a, b := pair[0], pair[1]
			aAtk, bAtk := a.totalAttack(), b.totalAttack()
			aDef, bDef := a.totalDefense(), b.totalDefense()
			if aAtk > bDef {
				bonus := 0
				if a.hasKeyword("spirit") {
					bonus = 1
				}
				for _, u := range b.units {
					if u.Status == model.UnitActive {
						damage[u.UnitID] += 2 + bonus
					}
				}
			}
			if bAtk > aDef {
				bonus := 0
				if b.hasKeyword("spirit") {
					bonus = 1
				}
				for _, u := range a.units {
					if u.Status == model.UnitActive {
						damage[u.UnitID] += 2 + bonus
					}
				}
			}
		}
		if len(damage) == 0 {
			// Every hostile pair stalemated this round (attack not > defense
			// on either side) — no further round can change the outcome, so
			// combat concludes here instead of grinding to the round cap.
			if err := emitEvent(ctx, sink, guildID, turn+1, PhaseCombat, "COMBAT_ENDED", "territory", territoryID, nil); err != nil {
				return err
			}
			break
		}
		for _, s := range sides {
			for _, u := range s.units {
				d := damage[u.UnitID]
				if d == 0 || u.Status != model.UnitActive {
					continue
				}
				u.Organization -= d
				if u.Organization <= 0 {
					u.Status = model.UnitDisbanded
					if err := emitEvent(ctx, sink, guildID, turn+1, PhaseCombat, "UNIT_DISBANDED", "unit", u.UnitID, []string{u.OwnerCharacterID}); err != nil {
						return err
					}
				}
				if err := tx.PutUnit(ctx, u); err != nil {
					return err
				}
			}
		}

		if err := resolveRetreats(ctx, tx, guildID, turn, sink, territoryID, sides, hostilePairs); err != nil {
			return err
		}
	}

	return resolveCapture(ctx, tx, guildID, turn, sink, territoryID, sides)
}

func resolveRetreats(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, territoryID string, sides []*combatSide, hostilePairs [][2]*combatSide) error {
	graph, err := LoadAdjacencyGraph(ctx, tx, guildID)
	if err != nil {
		return err
	}
	for _, pair := range hostilePairs {
		a, b := pair[0], pair[1]
		if a.activeCount() == 0 || b.activeCount() == 0 {
			continue
		}
		if a.hasKeyword("immobile") || b.hasKeyword("immobile") {
			continue
		}
		var loser *combatSide
		if a.totalAttack() < b.totalAttack() {
			loser = a
		} else if b.totalAttack() < a.totalAttack() {
			loser = b
		} else {
			continue // tie: controller (or neither) stays
		}
		dest := pickRetreatDestination(ctx, tx, guildID, graph, territoryID, loser)
		if dest == "" {
			continue // no destination found, retreat refused
		}
		for _, u := range loser.units {
			if u.Status != model.UnitActive {
				continue
			}
			u.CurrentTerritoryID = dest
			if err := tx.PutUnit(ctx, u); err != nil {
				return err
			}
		}
		loser.units = nil
		if err := emitEvent(ctx, sink, guildID, turn+1, PhaseCombat, "UNIT_RETREATED", "territory", territoryID, nil); err != nil {
			return err
		}
	}
	return nil
}

func pickRetreatDestination(ctx context.Context, tx store.Store, guildID int64, graph *AdjacencyGraph, territoryID string, loser *combatSide) string {
	factionID := loser.factionID()
	var ownerChar string
	for _, u := range loser.units {
		if u.OwnerCharacterID != "" {
			ownerChar = u.OwnerCharacterID
			break
		}
	}
	neighbors := graph.Neighbors(territoryID)

	hostileAt := func(t string) bool {
		others, err := tx.ListUnitsByTerritory(ctx, guildID, t)
		if err != nil {
			return false
		}
		for _, u := range others {
			if u.Status != model.UnitActive {
				continue
			}
			if isHostileFaction(ctx, tx, guildID, factionID, u.OwnerFactionID, hasKeyword(u.Keywords, "hostile")) {
				return true
			}
		}
		return false
	}

	var friendlyOptions, anyOptions []string
	for _, n := range neighbors {
		t, err := tx.GetTerritory(ctx, guildID, n)
		if err != nil || IsWaterTerrain(t.TerrainType) {
			continue
		}
		if hostileAt(n) {
			continue
		}
		anyOptions = append(anyOptions, n)
		if t.ControllerCharacterID == ownerChar || t.ControllerFactionID == factionID ||
			(t.ControllerFactionID != "" && factionID != "" && alliedActive(ctx, tx, guildID, t.ControllerFactionID, factionID)) {
			friendlyOptions = append(friendlyOptions, n)
		}
	}
	if len(friendlyOptions) > 0 {
		sort.Strings(friendlyOptions)
		return friendlyOptions[0]
	}
	if len(anyOptions) > 0 {
		sort.Strings(anyOptions)
		return anyOptions[0]
	}
	return ""
}

func resolveCapture(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, territoryID string, sides []*combatSide) error {
	t, err := tx.GetTerritory(ctx, guildID, territoryID)
	if err != nil {
		return err
	}
	if t.TerrainType == TerrainCity {
		return nil
	}
	var candidates []*combatSide
	for _, s := range sides {
		if s.activeCount() > 0 && s.actions["capture"] {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.totalAttack() != b.totalAttack() {
			return a.totalAttack() > b.totalAttack()
		}
		if a.activeCount() != b.activeCount() {
			return a.activeCount() > b.activeCount()
		}
		if a.totalDefense() != b.totalDefense() {
			return a.totalDefense() > b.totalDefense()
		}
		return smallestUnitID(a) < smallestUnitID(b)
	})
	winner := candidates[0]

	var representative *model.Unit
	for _, u := range winner.units {
		if u.Status == model.UnitActive {
			representative = u
			break
		}
	}
	if representative == nil {
		return nil
	}
	if representative.OwnerCharacterID != "" {
		t.ControllerCharacterID = representative.OwnerCharacterID
		t.ControllerFactionID = ""
	} else {
		t.ControllerFactionID = representative.OwnerFactionID
		t.ControllerCharacterID = ""
	}
	if err := tx.PutTerritory(ctx, t); err != nil {
		return err
	}

	buildings, err := tx.ListBuildingsByTerritory(ctx, guildID, territoryID)
	if err != nil {
		return err
	}
	for i := range buildings {
		b := &buildings[i]
		if b.Status == model.BuildingActive {
			b.Durability--
			if err := tx.PutBuilding(ctx, b); err != nil {
				return err
			}
		}
	}
	return emitEvent(ctx, sink, guildID, turn+1, PhaseCombat, "TERRITORY_CAPTURED", "territory", territoryID, nil)
}

func smallestUnitID(s *combatSide) string {
	smallest := ""
	for _, u := range s.units {
		if smallest == "" || u.UnitID < smallest {
			smallest = u.UnitID
		}
	}
	return smallest
}
