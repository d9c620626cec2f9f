package wargame

import (
	"context"
	"strings"
	"time"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

// validatorFunc validates a submission and returns the Order to persist,
// or an error (*ValidationError / *ConflictRequiresConfirmation).
type validatorFunc func(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error)

// validators is the OrderType → handler dispatch table (Design Notes
// §9): a map of functions instead of inheritance/mixins.
var validators map[OrderType]validatorFunc

func init() {
	validators = map[OrderType]validatorFunc{
		OrderJoinFaction:         validateJoinFaction,
		OrderKickFromFaction:     validateKickFromFaction,
		OrderLeaveFaction:        validateLeaveFaction,
		OrderMakeAlliance:        validateMakeAlliance,
		OrderDissolveAlliance:    validateDissolveAlliance,
		OrderDeclareWar:          validateDeclareWar,
		OrderAssignCommander:     validateAssignCommander,
		OrderAssignVictoryPoints: validateAssignVictoryPoints,
		OrderResourceTransfer:    validateResourceTransfer,
		OrderCancelTransfer:      validateCancelTransfer,
		OrderMobilization:        validateMobilization,
		OrderConstruction:        validateConstruction,

		OrderTransit:      validateUnitPathOrder,
		OrderTransport:    validateUnitPathOrder,
		OrderPatrol:       validateUnitPathOrder,
		OrderRaid:         validateUnitPathOrder,
		OrderCapture:      validateUnitPathOrder,
		OrderSiege:        validateUnitPathOrder,
		OrderAerialConvoy: validateUnitPathOrder,
		OrderAerialScout:  validateUnitPathOrder,

		OrderNavalTransit:   validateUnitPathOrder,
		OrderNavalConvoy:    validateUnitPathOrder,
		OrderNavalPatrol:    validateUnitPathOrder,
		OrderNavalTransport: validateUnitPathOrder,
	}
}

// SubmitOrder validates req, persists an Order row (possibly a pending
// half-handshake), and returns a result per §6.
func (e *Engine) SubmitOrder(ctx context.Context, guildID int64, submitterID string, req OrderRequest) (*OrderResult, error) {
	tx, err := e.store.Begin(ctx, guildID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer tx.Rollback()

	cfg, err := tx.GetConfig(ctx, guildID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	validate, ok := validators[req.OrderType]
	if !ok {
		return &OrderResult{Rejected: true, RejectionReason: "unrecognized order_type"}, nil
	}

	if len(req.UnitIDs) > 0 && !req.Override {
		if conflicts, cerr := findConflicts(ctx, tx, guildID, cfg.CurrentTurn, req.UnitIDs); cerr != nil {
			return nil, wrapStoreErr(cerr)
		} else if len(conflicts) > 0 {
			return &OrderResult{ConfirmationNeeded: true, ExistingOrders: conflicts}, nil
		}
	}
	if req.Override {
		if err := supersedeConflicts(ctx, tx, guildID, cfg.CurrentTurn, req.UnitIDs); err != nil {
			return nil, wrapStoreErr(err)
		}
	}

	order, err := validate(ctx, tx, guildID, cfg.CurrentTurn, submitterID, req)
	if err != nil {
		if ve, ok := err.(*ValidationError); ok {
			return &OrderResult{Rejected: true, RejectionReason: ve.Reason}, nil
		}
		if ce, ok := err.(*ConflictRequiresConfirmation); ok {
			return &OrderResult{ConfirmationNeeded: true, ExistingOrders: ce.Existing}, nil
		}
		return nil, err
	}

	sched, ok := OrderSchedule[req.OrderType]
	if !ok {
		return &OrderResult{Rejected: true, RejectionReason: "order_type has no schedule entry"}, nil
	}
	order.GuildID = guildID
	order.TurnNumber = turnForOrder(order.OrderType, cfg.CurrentTurn)
	order.Status = model.OrderPending
	order.SubmittedAt = currentTime()
	order.Phase = string(sched.Phase)
	order.Priority = sched.Priority

	if err := tx.PutOrder(ctx, order); err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := tx.(store.Txn).Commit(); err != nil {
		return nil, wrapStoreErr(err)
	}
	return &OrderResult{OrderID: order.OrderID}, nil
}

// turnForOrder is the turn an order first takes effect: the tenant's
// current turn, since orders submitted mid-turn-window execute next
// advance.
func turnForOrder(_ OrderType, currentTurn int) int { return currentTurn }

// CancelOrder flips a PENDING/ONGOING order to CANCELLED. Cancelling an
// already-CANCELLED order is a no-op success (§8 property 10).
func (e *Engine) CancelOrder(ctx context.Context, guildID int64, submitterID, orderID string) error {
	tx, err := e.store.Begin(ctx, guildID)
	if err != nil {
		return wrapStoreErr(err)
	}
	defer tx.Rollback()

	order, err := tx.GetOrder(ctx, guildID, orderID)
	if err != nil {
		return wrapStoreErr(err)
	}
	if order.Status == model.OrderCancelled {
		return tx.(store.Txn).Commit()
	}
	if order.Status == model.OrderSuccess || order.Status == model.OrderFailed {
		return &ValidationError{Reason: "order already terminal"}
	}
	if order.SubmittedByID != submitterID {
		return &ValidationError{Reason: "only the submitter may cancel this order"}
	}
	if order.OrderType == string(OrderAssignVictoryPoints) && order.Status == model.OrderOngoing {
		// turns_active counts the cancelling turn itself (§4.2).
		if order.TurnsActive+1 < 3 {
			return &ValidationError{Reason: "ASSIGN_VICTORY_POINTS may not be cancelled until ongoing for 3 turns"}
		}
	}
	order.Status = model.OrderCancelled
	if err := tx.PutOrder(ctx, order); err != nil {
		return wrapStoreErr(err)
	}
	return tx.(store.Txn).Commit()
}

func findConflicts(ctx context.Context, tx store.Store, guildID int64, turn int, unitIDs []string) ([]ConflictingOrder, error) {
	orders, err := tx.ListOrdersByTurn(ctx, guildID, turn)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(unitIDs))
	for _, id := range unitIDs {
		wanted[id] = true
	}
	var out []ConflictingOrder
	for _, o := range orders {
		if o.Status != model.OrderPending && o.Status != model.OrderOngoing {
			continue
		}
		if wanted[o.UnitID] {
			out = append(out, ConflictingOrder{OrderID: o.OrderID, OrderType: o.OrderType})
		}
	}
	return out, nil
}

func supersedeConflicts(ctx context.Context, tx store.Store, guildID int64, turn int, unitIDs []string) error {
	conflicts, err := findConflicts(ctx, tx, guildID, turn, unitIDs)
	if err != nil {
		return err
	}
	for _, c := range conflicts {
		o, err := tx.GetOrder(ctx, guildID, c.OrderID)
		if err != nil {
			return err
		}
		o.Status = model.OrderCancelled
		o.RejectionReason = "overridden_by_new_order"
		if err := tx.PutOrder(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

// validateUnitPathOrder covers transit/transport/patrol/raid/capture/
// siege/aerial_*/naval_* (§4.2's per-action constraint table).
func validateUnitPathOrder(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	if len(req.UnitIDs) == 0 {
		return nil, &ValidationError{Reason: "at least one unit is required"}
	}
	units, err := loadUnits(ctx, tx, guildID, req.UnitIDs)
	if err != nil {
		return nil, &ValidationError{Reason: "unknown unit in group"}
	}
	for i := range units {
		ok, err := canCommandUnit(ctx, tx, guildID, &units[i], submitterID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ValidationError{Reason: "submitter does not control unit " + units[i].UnitID}
		}
	}
	origin := units[0].CurrentTerritoryID
	for _, u := range units[1:] {
		if u.CurrentTerritoryID != origin {
			return nil, &ValidationError{Reason: "group units must be co-located"}
		}
	}

	graph, err := LoadAdjacencyGraph(ctx, tx, guildID)
	if err != nil {
		return nil, err
	}
	path := req.Path
	if len(path) == 0 || path[0] != origin {
		path = append([]string{origin}, path...)
	}
	if req.OrderType == OrderPatrol {
		if len(path) < 2 {
			return nil, &ValidationError{Reason: "patrol path must cover at least two distinct territories"}
		}
		if req.Speed < 0 {
			return nil, &ValidationError{Reason: "speed must be ≥ 1 when set"}
		}
		if req.Speed != 0 && req.Speed < 1 {
			return nil, &ValidationError{Reason: "speed must be ≥ 1 when set"}
		}
	}
	if !graph.ValidPath(path) {
		return nil, &ValidationError{Reason: "path is not a contiguous adjacency chain"}
	}

	if waterActions[req.OrderType] {
		for i := range units {
			if !hasKeyword(units[i].Keywords, "naval") {
				return nil, &ValidationError{Reason: "all units must be naval for this action"}
			}
		}
		for _, t := range path {
			terr, err := tx.GetTerritory(ctx, guildID, t)
			if err != nil {
				return nil, &ValidationError{Reason: "path territory not found"}
			}
			if !IsWaterTerrain(terr.TerrainType) {
				return nil, &ValidationError{Reason: "every territory in a naval path must be water"}
			}
		}
	}

	switch req.OrderType {
	case OrderRaid, OrderCapture:
		for i := range units {
			if hasKeyword(units[i].Keywords, "infiltrator") || hasKeyword(units[i].Keywords, "aerial") || hasKeyword(units[i].Keywords, "aerial-transport") {
				return nil, &ValidationError{Reason: "infiltrator/aerial units cannot raid or capture"}
			}
		}
	case OrderSiege:
		dest := path[len(path)-1]
		terr, err := tx.GetTerritory(ctx, guildID, dest)
		if err != nil || terr.TerrainType != TerrainCity {
			return nil, &ValidationError{Reason: "siege's final territory must be a city"}
		}
	case OrderAerialConvoy:
		for i := range units {
			if !hasKeyword(units[i].Keywords, "aerial-transport") {
				return nil, &ValidationError{Reason: "aerial_convoy requires all units to carry aerial-transport"}
			}
		}
		terr, err := tx.GetTerritory(ctx, guildID, origin)
		if err == nil && terr.ControllerFactionID != "" && units[0].OwnerFactionID != "" && terr.ControllerFactionID != units[0].OwnerFactionID {
			atWar, werr := factionsAtWar(ctx, tx, guildID, units[0].OwnerFactionID, terr.ControllerFactionID)
			if werr == nil && atWar {
				return nil, &ValidationError{Reason: "origin territory is enemy-held"}
			}
		}
	case OrderAerialScout:
		minMove := units[0].Movement
		for _, u := range units {
			if !hasKeyword(u.Keywords, "aerial") && !hasKeyword(u.Keywords, "aerial-transport") {
				return nil, &ValidationError{Reason: "aerial_scout requires aerial or aerial-transport units"}
			}
			if u.Movement < minMove {
				minMove = u.Movement
			}
		}
		if len(path)-1 > minMove {
			return nil, &ValidationError{Reason: "scout path exceeds minimum unit movement"}
		}
	}

	o := &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(req.OrderType),
		SubmittedByID:   submitterID,
		UnitID:          strings.Join(req.UnitIDs, ","),
		SourceTerritory: origin,
		TargetTerritory: path[len(path)-1],
		Path:            path,
		Speed:           req.Speed,
		MovementStatus:  string(MovementMoving),
	}
	return o, nil
}

func validateMobilization(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	if req.BuildTypeName == "" || req.TargetTerritory == "" {
		return nil, &ValidationError{Reason: "mobilization requires a unit type and territory"}
	}
	if _, err := tx.GetUnitType(ctx, guildID, req.BuildTypeName); err != nil {
		return nil, &ValidationError{Reason: "unknown unit type"}
	}
	return &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(OrderMobilization),
		SubmittedByID:   submitterID,
		BuildTypeName:   req.BuildTypeName,
		TargetTerritory: req.TargetTerritory,
	}, nil
}

func validateConstruction(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	if req.BuildTypeName == "" || req.TargetTerritory == "" {
		return nil, &ValidationError{Reason: "construction requires a building type and territory"}
	}
	bt, err := tx.GetBuildingType(ctx, guildID, req.BuildTypeName)
	if err != nil {
		return nil, &ValidationError{Reason: "unknown building type"}
	}
	terr, err := tx.GetTerritory(ctx, guildID, req.TargetTerritory)
	if err != nil {
		return nil, &ValidationError{Reason: "unknown territory"}
	}
	if hasKeyword(bt.Keywords, "fortification") && terr.TerrainType != TerrainCity {
		return nil, &ValidationError{Reason: "fortification may only be built in a city"}
	}
	existing, err := tx.ListBuildingsByTerritory(ctx, guildID, req.TargetTerritory)
	if err != nil {
		return nil, err
	}
	for _, b := range existing {
		if b.TypeName == req.BuildTypeName && b.Status == model.BuildingActive {
			return nil, &ValidationError{Reason: "an active building of this type already exists here"}
		}
	}
	return &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(OrderConstruction),
		SubmittedByID:   submitterID,
		BuildTypeName:   req.BuildTypeName,
		TargetTerritory: req.TargetTerritory,
	}, nil
}

func currentTime() time.Time { return time.Now().UTC() }
