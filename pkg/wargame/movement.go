package wargame

import (
	"context"
	"strings"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

// MovementStatus mirrors order_data.movement_status (§4.4).
type MovementStatus string

const (
	MovementMoving             MovementStatus = "MOVING"
	MovementEngaged            MovementStatus = "ENGAGED"
	MovementPathComplete       MovementStatus = "PATH_COMPLETE"
	MovementOutOfMP            MovementStatus = "OUT_OF_MP"
	MovementWaitingForTransport MovementStatus = "WAITING_FOR_TRANSPORT"
	MovementWaitingForCargo    MovementStatus = "WAITING_FOR_CARGO"
	MovementTransported        MovementStatus = "TRANSPORTED"
)

// completionEvent maps an action order_type to its action-specific
// PATH_COMPLETE event (§4.4).
var completionEvent = map[OrderType]string{
	OrderTransit:        "TRANSIT_COMPLETE",
	OrderTransport:      "TRANSPORT_COMPLETE",
	OrderRaid:           "RAID_ARRIVED",
	OrderCapture:        "CAPTURE_ARRIVED",
	OrderSiege:          "SIEGE_ARRIVED",
	OrderAerialConvoy:   "AERIAL_CONVOY_COMPLETE",
	OrderAerialScout:    "AERIAL_SCOUT_COMPLETE",
	OrderNavalTransit:   "NAVAL_TRANSIT_COMPLETE",
	OrderNavalConvoy:    "NAVAL_CONVOY_COMPLETE",
	OrderNavalTransport: "NAVAL_TRANSPORT_COMPLETE",
}

// resolveMovementPhase drives every active movement order's tick for one
// phase slot: isNaval selects the Naval Movement phase (pure naval
// orders) vs. the Movement phase (land orders, including land-transport
// coupling at coasts). Each order is walked to completion-or-blockage in
// one pass rather than interleaved tick-by-tick with its phase-mates;
// since no order can observe another mid-step, the end-of-phase state is
// the same either way.
func resolveMovementPhase(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, orders []model.Order, isNaval bool) error {
	for i := range orders {
		o := &orders[i]
		if !movementActions[OrderType(o.OrderType)] {
			continue
		}
		err := stepMovementOrder(ctx, tx, guildID, turn, sink, o, isNaval)
		if ferr := failOrderOnError(ctx, tx, o, err); ferr != nil {
			return ferr
		}
	}
	return nil
}

func stepMovementOrder(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order, isNaval bool) error {
	unitIDs := strings.Split(o.UnitID, ",")
	units, err := loadUnits(ctx, tx, guildID, unitIDs)
	if err != nil {
		return &ExecutionFailure{Reason: "a unit in this order no longer exists"}
	}
	var active []*model.Unit
	for i := range units {
		if units[i].Status == model.UnitActive {
			active = append(active, &units[i])
		}
	}
	if len(active) == 0 {
		return &ExecutionFailure{Reason: "no active units remain in this group"}
	}

	exempt := true
	for _, u := range active {
		if !hasKeyword(u.Keywords, "infiltrator") && !hasKeyword(u.Keywords, "aerial") {
			exempt = false
			break
		}
	}

	minMove := active[0].Movement
	for _, u := range active {
		if u.Movement < minMove {
			minMove = u.Movement
		}
	}
	totalMP := minMove
	if OrderType(o.OrderType) == OrderTransit || OrderType(o.OrderType) == OrderTransport {
		totalMP++
	}

	ot := OrderType(o.OrderType)
	patrol := ot == OrderPatrol || ot == OrderNavalPatrol
	mp := totalMP
	spent := 0
	idx := o.PathIndex
	path := o.Path
	blocked := false

	for {
		if idx >= len(path)-1 {
			if patrol && len(path) >= 2 {
				idx = 0
				continue
			}
			break
		}
		next := path[idx+1]
		terr, err := tx.GetTerritory(ctx, guildID, next)
		if err != nil {
			return &ExecutionFailure{Reason: "path territory no longer exists"}
		}
		cost := terrainEntryCost(terr.TerrainType, isNaval)
		if mp < cost {
			o.MovementStatus = string(MovementOutOfMP)
			break
		}
		if patrol && o.Speed > 0 && spent+cost > o.Speed {
			o.MovementStatus = string(MovementOutOfMP)
			break
		}
		if !exempt {
			hostile, err := territoryHasHostileUnits(ctx, tx, guildID, active[0].OwnerFactionID, next)
			if err != nil {
				return err
			}
			if hostile {
				o.BlockedAt = next
				o.MovementStatus = string(MovementEngaged)
				blocked = true
				break
			}
		}
		idx++
		mp -= cost
		spent += cost
		for _, u := range active {
			u.CurrentTerritoryID = next
			if err := tx.PutUnit(ctx, u); err != nil {
				return err
			}
		}
	}

	o.PathIndex = idx
	o.TurnsActive++

	if blocked {
		o.Status = model.OrderOngoing
		return emitEvent(ctx, sink, guildID, turn+1, phaseForMovement(isNaval), "ENGAGEMENT_DETECTED", "order", o.OrderID, []string{o.SubmittedByID})
	}

	if isNaval {
		if err := updateNavalPositions(ctx, tx, guildID, active, path, idx); err != nil {
			return err
		}
	}

	if patrol {
		o.MovementStatus = string(MovementMoving)
		o.Status = model.OrderOngoing
		return nil
	}
	if idx >= len(path)-1 {
		o.MovementStatus = string(MovementPathComplete)
		o.Status = model.OrderSuccess
		evt := completionEvent[ot]
		if evt == "" {
			evt = "MOVEMENT_COMPLETE"
		}
		return emitEvent(ctx, sink, guildID, turn+1, phaseForMovement(isNaval), evt, "order", o.OrderID, []string{o.SubmittedByID})
	}
	o.Status = model.OrderOngoing
	return nil
}

func phaseForMovement(isNaval bool) Phase {
	if isNaval {
		return PhaseNavalMovement
	}
	return PhaseMovement
}

// territoryHasHostileUnits reports whether territoryID holds any active
// unit owned by a faction hostile to actorFactionID (war, or a hostile
// unit present and the two are not allied).
func territoryHasHostileUnits(ctx context.Context, tx store.Store, guildID int64, actorFactionID, territoryID string) (bool, error) {
	units, err := tx.ListUnitsByTerritory(ctx, guildID, territoryID)
	if err != nil {
		return false, err
	}
	for _, u := range units {
		if u.Status != model.UnitActive || u.OwnerFactionID == actorFactionID {
			continue
		}
		if isHostileFaction(ctx, tx, guildID, actorFactionID, u.OwnerFactionID, hasKeyword(u.Keywords, "hostile")) {
			return true, nil
		}
	}
	return false, nil
}

// isHostileFaction applies the hostility rule components that make
// sense outside full side-grouping combat (§4.5 parts a, b): war, or a
// hostile-keyword unit present and the parties not allied.
func isHostileFaction(ctx context.Context, tx store.Store, guildID int64, a, b string, hostileKeywordPresent bool) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	if alliedActive(ctx, tx, guildID, a, b) {
		return false
	}
	if atWar, _ := factionsAtWar(ctx, tx, guildID, a, b); atWar {
		return true
	}
	return hostileKeywordPresent
}

// updateNavalPositions rebuilds a naval group's occupied-territory set
// as the path prefix up to and including the current step
// (path[:idx+1]). The set is the same for every naval order type; it is
// not limited to the territories stepped through this phase.
func updateNavalPositions(ctx context.Context, tx store.Store, guildID int64, active []*model.Unit, path []string, idx int) error {
	window := path[:idx+1]
	for _, u := range active {
		if err := tx.ClearNavalPositions(ctx, guildID, u.UnitID); err != nil {
			return err
		}
		for _, t := range window {
			if err := tx.PutNavalPosition(ctx, &model.NavalUnitPosition{GuildID: guildID, UnitID: u.UnitID, TerritoryID: t}); err != nil {
				return err
			}
		}
	}
	return nil
}
