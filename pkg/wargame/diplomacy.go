package wargame

import (
	"context"
	"strings"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

func normalizePair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// factionsAtWar reports whether a and b are on opposing sides of any
// active war.
func factionsAtWar(ctx context.Context, tx store.Store, guildID int64, a, b string) (bool, error) {
	wars, err := tx.ListActiveWarsForFaction(ctx, guildID, a)
	if err != nil {
		return false, err
	}
	for _, w := range wars {
		parts, err := tx.ListWarParticipants(ctx, guildID, w.WarID)
		if err != nil {
			return false, err
		}
		var sideA model.WarSide
		foundA := false
		for _, p := range parts {
			if p.FactionID == a {
				sideA = p.Side
				foundA = true
			}
		}
		if !foundA {
			continue
		}
		for _, p := range parts {
			if p.FactionID == b && p.Side != sideA {
				return true, nil
			}
		}
	}
	return false, nil
}

func alliedActive(ctx context.Context, tx store.Store, guildID int64, a, b string) bool {
	lo, hi := normalizePair(a, b)
	all, err := tx.GetAlliance(ctx, guildID, lo, hi)
	if err != nil {
		return false
	}
	return all.Status == model.AllianceActive
}

func leaderFaction(ctx context.Context, tx store.Store, guildID int64, characterID string) (string, error) {
	factions, err := tx.ListFactions(ctx, guildID)
	if err != nil {
		return "", err
	}
	for _, f := range factions {
		if f.LeaderID == characterID {
			return f.FactionID, nil
		}
	}
	return "", nil
}

// validateJoinFaction records the submitter's half of a join handshake;
// resolveJoinFaction pairs it with the complementary half.
func validateJoinFaction(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	if req.TargetFactionID == "" {
		return nil, &ValidationError{Reason: "join_faction requires a target faction"}
	}
	if _, err := tx.GetFaction(ctx, guildID, req.TargetFactionID); err != nil {
		return nil, &ValidationError{Reason: "unknown faction"}
	}
	return &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(OrderJoinFaction),
		SubmittedByID:   submitterID,
		TargetFactionID: req.TargetFactionID,
	}, nil
}

func validateLeaveFaction(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	if req.TargetFactionID == "" {
		return nil, &ValidationError{Reason: "leave_faction requires a faction id"}
	}
	f, err := tx.GetFaction(ctx, guildID, req.TargetFactionID)
	if err != nil {
		return nil, &ValidationError{Reason: "unknown faction"}
	}
	if f.LeaderID == submitterID {
		return nil, &ValidationError{Reason: "the leader cannot leave their own faction"}
	}
	return &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(OrderLeaveFaction),
		SubmittedByID:   submitterID,
		TargetFactionID: req.TargetFactionID,
	}, nil
}

func validateKickFromFaction(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	if req.TargetFactionID == "" || req.TargetCharacter == "" {
		return nil, &ValidationError{Reason: "kick_from_faction requires a faction and a target character"}
	}
	f, err := tx.GetFaction(ctx, guildID, req.TargetFactionID)
	if err != nil {
		return nil, &ValidationError{Reason: "unknown faction"}
	}
	if req.TargetCharacter == f.LeaderID {
		return nil, &ValidationError{Reason: "the leader cannot be kicked"}
	}
	if req.TargetCharacter == submitterID {
		return nil, &ValidationError{Reason: "cannot kick yourself; use leave_faction"}
	}
	if submitterID != f.LeaderID {
		ok, err := characterHasPermission(ctx, tx, guildID, req.TargetFactionID, submitterID, model.PermissionMembership)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ValidationError{Reason: "MEMBERSHIP permission required to kick"}
		}
	}
	if turn < 3 || turn-f.CreatedTurn < 3 {
		return nil, &ValidationError{Reason: "faction is too young for kicks"}
	}
	members, err := tx.ListFactionMembers(ctx, guildID, req.TargetFactionID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.CharacterID == req.TargetCharacter && turn-m.JoinedTurn < 3 {
			return nil, &ValidationError{Reason: "target joined too recently to be kicked"}
		}
	}
	return &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(OrderKickFromFaction),
		SubmittedByID:   submitterID,
		TargetFactionID: req.TargetFactionID,
		TargetCharacter: req.TargetCharacter,
	}, nil
}

// validateMakeAlliance requires the submitter to be a faction leader and
// rejects a duplicate proposal or a proposal against an already-ACTIVE
// alliance (§4.3). ActingFactionID carries the proposer's faction.
func validateMakeAlliance(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	if req.TargetFactionID == "" {
		return nil, &ValidationError{Reason: "make_alliance requires a target faction"}
	}
	ownFaction, err := leaderFaction(ctx, tx, guildID, submitterID)
	if err != nil || ownFaction == "" {
		return nil, &ValidationError{Reason: "only a faction leader may propose an alliance"}
	}
	if ownFaction == req.TargetFactionID {
		return nil, &ValidationError{Reason: "a faction cannot ally with itself"}
	}
	lo, hi := normalizePair(ownFaction, req.TargetFactionID)
	existing, err := tx.GetAlliance(ctx, guildID, lo, hi)
	if err == nil {
		if existing.Status == model.AllianceActive {
			return nil, &ValidationError{Reason: "already allied"}
		}
		waitingOn := hi
		if existing.Status == model.AlliancePendingA {
			waitingOn = lo
		}
		if waitingOn != ownFaction {
			return nil, &ValidationError{Reason: "duplicate alliance proposal"}
		}
	}
	return &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(OrderMakeAlliance),
		SubmittedByID:   submitterID,
		ActingFactionID: ownFaction,
		TargetFactionID: req.TargetFactionID,
	}, nil
}

func validateDissolveAlliance(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	ownFaction, err := leaderFaction(ctx, tx, guildID, submitterID)
	if err != nil || ownFaction == "" {
		return nil, &ValidationError{Reason: "only a faction leader may dissolve an alliance"}
	}
	if turn < 4 {
		return nil, &ValidationError{Reason: "alliances cannot be dissolved before turn 4"}
	}
	lo, hi := normalizePair(ownFaction, req.TargetFactionID)
	all, err := tx.GetAlliance(ctx, guildID, lo, hi)
	if err != nil || all.Status != model.AllianceActive {
		return nil, &ValidationError{Reason: "no active alliance with that faction"}
	}
	if turn-all.ActivatedTurn < 4 {
		return nil, &ValidationError{Reason: "alliance must be at least 4 turns old to dissolve"}
	}
	return &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(OrderDissolveAlliance),
		SubmittedByID:   submitterID,
		ActingFactionID: ownFaction,
		TargetFactionID: req.TargetFactionID,
	}, nil
}

func validateDeclareWar(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	ownFaction, err := leaderFaction(ctx, tx, guildID, submitterID)
	if err != nil || ownFaction == "" {
		return nil, &ValidationError{Reason: "only a faction leader may declare war"}
	}
	if req.TargetFactionID == "" {
		return nil, &ValidationError{Reason: "declare_war requires a target faction"}
	}
	if strings.TrimSpace(req.Objective) == "" {
		return nil, &ValidationError{Reason: "declare_war requires an objective"}
	}
	return &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(OrderDeclareWar),
		SubmittedByID:   submitterID,
		ActingFactionID: ownFaction,
		TargetFactionID: req.TargetFactionID,
		ResourceType:    req.Objective,
	}, nil
}

func validateAssignCommander(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	if req.TargetUnitID == "" || req.TargetCharacter == "" {
		return nil, &ValidationError{Reason: "assign_commander requires a unit and a new commander"}
	}
	u, err := tx.GetUnit(ctx, guildID, req.TargetUnitID)
	if err != nil {
		return nil, &ValidationError{Reason: "unknown unit"}
	}
	ok, err := canCommandUnit(ctx, tx, guildID, u, submitterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ValidationError{Reason: "submitter does not control this unit"}
	}
	return &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(OrderAssignCommander),
		SubmittedByID:   submitterID,
		TargetUnitID:    req.TargetUnitID,
		TargetCharacter: req.TargetCharacter,
	}, nil
}

func validateAssignVictoryPoints(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	if req.TargetCharacter == "" && req.TargetFactionID == "" {
		return nil, &ValidationError{Reason: "assign_victory_points requires a target character or faction"}
	}
	if req.ResourceAmount <= 0 {
		return nil, &ValidationError{Reason: "victory point amount must be positive"}
	}
	return &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(OrderAssignVictoryPoints),
		SubmittedByID:   submitterID,
		TargetCharacter: req.TargetCharacter,
		TargetFactionID: req.TargetFactionID,
		ResourceAmount:  req.ResourceAmount,
	}, nil
}

// resolveBeginningPhase executes every PENDING/ONGOING order routed to
// the Beginning phase: faction membership, alliances, wars, commander
// assignment.
func resolveBeginningPhase(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, orders []model.Order) error {
	for i := range orders {
		o := &orders[i]
		var err error
		switch OrderType(o.OrderType) {
		case OrderJoinFaction:
			err = resolveJoinFaction(ctx, tx, guildID, turn, sink, o)
		case OrderLeaveFaction:
			err = resolveLeaveFaction(ctx, tx, guildID, turn, sink, o)
		case OrderKickFromFaction:
			err = resolveKickFromFaction(ctx, tx, guildID, turn, sink, o)
		case OrderMakeAlliance:
			err = resolveMakeAlliance(ctx, tx, guildID, turn, sink, o)
		case OrderDissolveAlliance:
			err = resolveDissolveAlliance(ctx, tx, guildID, turn, sink, o)
		case OrderDeclareWar:
			err = resolveDeclareWar(ctx, tx, guildID, turn, sink, o)
		case OrderAssignCommander:
			err = resolveAssignCommander(ctx, tx, guildID, turn, sink, o)
		case OrderAssignVictoryPoints:
			err = resolveAssignVictoryPoints(ctx, tx, guildID, turn, sink, o)
		default:
			continue
		}
		if err := failOrderOnError(ctx, tx, o, err); err != nil {
			return err
		}
	}
	return nil
}

func resolveJoinFaction(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order) error {
	// An earlier order in this phase may already have completed this one
	// as its complement; keep that stored result.
	if cur, err := tx.GetOrder(ctx, guildID, o.OrderID); err == nil && cur.Status == model.OrderSuccess {
		*o = *cur
		return nil
	}
	pending, err := tx.ListOrdersByTurn(ctx, guildID, o.TurnNumber)
	if err != nil {
		return err
	}
	f, err := tx.GetFaction(ctx, guildID, o.TargetFactionID)
	if err != nil {
		return err
	}
	var complement *model.Order
	for i := range pending {
		p := &pending[i]
		if p.OrderID == o.OrderID || OrderType(p.OrderType) != OrderJoinFaction {
			continue
		}
		if p.TargetFactionID != o.TargetFactionID {
			continue
		}
		samePairOppositeSubmitter := (p.SubmittedByID == f.LeaderID && o.SubmittedByID != f.LeaderID) ||
			(o.SubmittedByID == f.LeaderID && p.SubmittedByID != f.LeaderID)
		if samePairOppositeSubmitter && (p.Status == model.OrderPending || p.Status == model.OrderOngoing) {
			complement = p
			break
		}
	}
	if complement == nil {
		o.Status = model.OrderOngoing
		return tx.PutOrder(ctx, o)
	}
	joiningChar := o.SubmittedByID
	if o.SubmittedByID == f.LeaderID {
		joiningChar = complement.SubmittedByID
	}
	if err := tx.PutFactionMember(ctx, &model.FactionMember{GuildID: guildID, FactionID: f.FactionID, CharacterID: joiningChar, JoinedTurn: turn + 1}); err != nil {
		return err
	}
	c, err := tx.GetCharacter(ctx, guildID, joiningChar)
	if err == nil && c.RepresentedFactionID == "" {
		c.RepresentedFactionID = f.FactionID
		if err := tx.PutCharacter(ctx, c); err != nil {
			return err
		}
		if err := migrateUnitFaction(ctx, tx, guildID, joiningChar, f.FactionID); err != nil {
			return err
		}
	}
	o.Status = model.OrderSuccess
	complement.Status = model.OrderSuccess
	if err := tx.PutOrder(ctx, complement); err != nil {
		return err
	}
	return emitEvent(ctx, sink, guildID, turn+1, PhaseBeginning, "FACTION_JOINED", "faction", f.FactionID, []string{joiningChar})
}

func resolveLeaveFaction(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order) error {
	if err := tx.DeleteFactionMember(ctx, guildID, o.TargetFactionID, o.SubmittedByID); err != nil {
		return err
	}
	if err := reconcileRepresentation(ctx, tx, guildID, turn, o.SubmittedByID, o.TargetFactionID, false); err != nil {
		return err
	}
	o.Status = model.OrderSuccess
	return emitEvent(ctx, sink, guildID, turn+1, PhaseBeginning, "FACTION_LEFT", "character", o.SubmittedByID, []string{o.SubmittedByID})
}

func resolveKickFromFaction(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order) error {
	if err := tx.DeleteFactionMember(ctx, guildID, o.TargetFactionID, o.TargetCharacter); err != nil {
		return err
	}
	if err := reconcileRepresentation(ctx, tx, guildID, turn, o.TargetCharacter, o.TargetFactionID, true); err != nil {
		return err
	}
	o.Status = model.OrderSuccess
	return emitEvent(ctx, sink, guildID, turn+1, PhaseBeginning, "FACTION_MEMBER_KICKED", "character", o.TargetCharacter, []string{o.TargetCharacter})
}

// reconcileRepresentation re-derives represented_faction_id after a
// membership is removed, auto-promoting the highest joined_turn
// remaining membership. Kicking resets the cooldown clock; leaving (and
// auto-promotion itself) does not (§4.3).
func reconcileRepresentation(ctx context.Context, tx store.Store, guildID int64, turn int, characterID, removedFactionID string, kicked bool) error {
	c, err := tx.GetCharacter(ctx, guildID, characterID)
	if err != nil {
		return err
	}
	if kicked {
		c.RepresentationChangedTurn = turn + 1
	}
	if c.RepresentedFactionID != removedFactionID {
		return tx.PutCharacter(ctx, c)
	}
	factions, err := tx.ListFactions(ctx, guildID)
	if err != nil {
		return err
	}
	var best *model.FactionMember
	for _, f := range factions {
		members, err := tx.ListFactionMembers(ctx, guildID, f.FactionID)
		if err != nil {
			return err
		}
		for i := range members {
			if members[i].CharacterID != characterID {
				continue
			}
			if best == nil || members[i].JoinedTurn > best.JoinedTurn {
				m := members[i]
				best = &m
			}
		}
	}
	if best == nil {
		c.RepresentedFactionID = ""
		if err := tx.PutCharacter(ctx, c); err != nil {
			return err
		}
		return migrateUnitFaction(ctx, tx, guildID, characterID, "")
	}
	c.RepresentedFactionID = best.FactionID
	if err := tx.PutCharacter(ctx, c); err != nil {
		return err
	}
	return migrateUnitFaction(ctx, tx, guildID, characterID, best.FactionID)
}

func migrateUnitFaction(ctx context.Context, tx store.Store, guildID int64, characterID, newFactionID string) error {
	units, err := tx.ListUnits(ctx, guildID)
	if err != nil {
		return err
	}
	for i := range units {
		if units[i].OwnerCharacterID == characterID {
			units[i].OwnerFactionID = newFactionID
			if err := tx.PutUnit(ctx, &units[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveMakeAlliance completes the two-phase handshake: the first
// MAKE_ALLIANCE order from a faction leader inserts a pending row
// naming the other side as the one it is waiting on; the complementary
// order from that side activates it.
func resolveMakeAlliance(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order) error {
	lo, hi := normalizePair(o.ActingFactionID, o.TargetFactionID)
	existing, err := tx.GetAlliance(ctx, guildID, lo, hi)
	if err == nil && existing.Status != model.AllianceActive {
		waitingOn := hi
		if existing.Status == model.AlliancePendingA {
			waitingOn = lo
		}
		if waitingOn == o.ActingFactionID {
			existing.Status = model.AllianceActive
			existing.ActivatedTurn = turn + 1
			if err := tx.PutAlliance(ctx, existing); err != nil {
				return err
			}
			o.Status = model.OrderSuccess
			return emitEvent(ctx, sink, guildID, turn+1, PhaseBeginning, "ALLIANCE_FORMED", "alliance", lo+"/"+hi, nil)
		}
	}
	status := model.AlliancePendingB
	if o.ActingFactionID == hi {
		status = model.AlliancePendingA
	}
	if err := tx.PutAlliance(ctx, &model.Alliance{GuildID: guildID, FactionAID: lo, FactionBID: hi, InitiatedByFaction: o.ActingFactionID, Status: status}); err != nil {
		return err
	}
	o.Status = model.OrderSuccess
	return emitEvent(ctx, sink, guildID, turn+1, PhaseBeginning, "ALLIANCE_PENDING", "alliance", lo+"/"+hi, nil)
}

func resolveDissolveAlliance(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order) error {
	lo, hi := normalizePair(o.ActingFactionID, o.TargetFactionID)
	if err := tx.DeleteAlliance(ctx, guildID, lo, hi); err != nil {
		return err
	}
	o.Status = model.OrderSuccess
	return emitEvent(ctx, sink, guildID, turn+1, PhaseBeginning, "ALLIANCE_DISSOLVED", "alliance", lo+"/"+hi, nil)
}

// resolveDeclareWar implements the join-existing-or-create, ally
// drag-in, and first-declaration production bonus rules of §4.3.
func resolveDeclareWar(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order) error {
	objective := strings.TrimSpace(o.ResourceType)
	declarer, target := o.ActingFactionID, o.TargetFactionID

	wars, err := tx.ListWars(ctx, guildID)
	if err != nil {
		return err
	}
	var w *model.War
	for i := range wars {
		if strings.EqualFold(wars[i].Objective, objective) {
			w = &wars[i]
			break
		}
	}

	if w == nil {
		w = &model.War{GuildID: guildID, WarID: newID("war"), Objective: objective, Status: model.WarActive, DeclaredTurn: turn + 1}
		if err := tx.PutWar(ctx, w); err != nil {
			return err
		}
		if err := tx.PutWarParticipant(ctx, &model.WarParticipant{GuildID: guildID, WarID: w.WarID, FactionID: declarer, Side: model.WarSideA, JoinedTurn: turn + 1, IsOriginalDeclarer: true}); err != nil {
			return err
		}
		if err := tx.PutWarParticipant(ctx, &model.WarParticipant{GuildID: guildID, WarID: w.WarID, FactionID: target, Side: model.WarSideB, JoinedTurn: turn + 1, IsOriginalDeclarer: true}); err != nil {
			return err
		}
	} else {
		parts, err := tx.ListWarParticipants(ctx, guildID, w.WarID)
		if err != nil {
			return err
		}
		targetSide := model.WarSideB
		targetPresent := false
		for _, p := range parts {
			if p.FactionID == target {
				targetSide = p.Side
				targetPresent = true
			}
		}
		joinSide := model.WarSideA
		if targetSide == model.WarSideA {
			joinSide = model.WarSideB
		}
		declarerPresent := false
		for _, p := range parts {
			if p.FactionID == declarer {
				declarerPresent = true
			}
		}
		if !declarerPresent {
			if err := tx.PutWarParticipant(ctx, &model.WarParticipant{GuildID: guildID, WarID: w.WarID, FactionID: declarer, Side: joinSide, JoinedTurn: turn + 1}); err != nil {
				return err
			}
		}
		if !targetPresent {
			if err := tx.PutWarParticipant(ctx, &model.WarParticipant{GuildID: guildID, WarID: w.WarID, FactionID: target, Side: targetSide, JoinedTurn: turn + 1}); err != nil {
				return err
			}
		}
	}

	if err := dragInAllies(ctx, tx, guildID, turn, sink, w, declarer); err != nil {
		return err
	}

	f, err := tx.GetFaction(ctx, guildID, declarer)
	if err == nil && !f.HasDeclaredWar {
		f.HasDeclaredWar = true
		if err := tx.PutFaction(ctx, f); err != nil {
			return err
		}
		if err := emitEvent(ctx, sink, guildID, turn+1, PhaseBeginning, "WAR_PRODUCTION_BONUS", "faction", f.FactionID, nil); err != nil {
			return err
		}
	}
	o.Status = model.OrderSuccess
	return emitEvent(ctx, sink, guildID, turn+1, PhaseBeginning, "WAR_DECLARED", "war", w.WarID, nil)
}

// dragInAllies adds factions simultaneously active-allied with declarer
// and with at least one faction already on the opposing side (§4.3).
func dragInAllies(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, w *model.War, declarer string) error {
	parts, err := tx.ListWarParticipants(ctx, guildID, w.WarID)
	if err != nil {
		return err
	}
	var declarerSide model.WarSide
	already := map[string]bool{}
	var opposing []string
	for _, p := range parts {
		already[p.FactionID] = true
		if p.FactionID == declarer {
			declarerSide = p.Side
		}
	}
	for _, p := range parts {
		if p.Side != declarerSide {
			opposing = append(opposing, p.FactionID)
		}
	}
	allFactions, err := tx.ListFactions(ctx, guildID)
	if err != nil {
		return err
	}
	joinSide := model.WarSideB
	if declarerSide == model.WarSideB {
		joinSide = model.WarSideA
	}
	for _, cand := range allFactions {
		if already[cand.FactionID] || cand.FactionID == declarer {
			continue
		}
		if !alliedActive(ctx, tx, guildID, declarer, cand.FactionID) {
			continue
		}
		draggedIn := false
		for _, opp := range opposing {
			if alliedActive(ctx, tx, guildID, cand.FactionID, opp) {
				draggedIn = true
				break
			}
		}
		if !draggedIn {
			continue
		}
		if err := tx.PutWarParticipant(ctx, &model.WarParticipant{GuildID: guildID, WarID: w.WarID, FactionID: cand.FactionID, Side: joinSide, JoinedTurn: turn + 1}); err != nil {
			return err
		}
		already[cand.FactionID] = true
		if err := emitEvent(ctx, sink, guildID, turn+1, PhaseBeginning, "WAR_ALLY_DRAGGED_IN", "war", w.WarID, nil); err != nil {
			return err
		}
	}
	return nil
}

func resolveAssignCommander(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order) error {
	u, err := tx.GetUnit(ctx, guildID, o.TargetUnitID)
	if err != nil {
		return err
	}
	ownerFaction := u.OwnerFactionID
	newCommander, err := tx.GetCharacter(ctx, guildID, o.TargetCharacter)
	if err != nil {
		return err
	}
	if newCommander.RepresentedFactionID != ownerFaction {
		return &ExecutionFailure{Reason: "new commander is not in the unit's faction"}
	}
	previous := u.CommanderCharacterID
	u.CommanderCharacterID = o.TargetCharacter
	u.CommanderAssignedTurn = turn + 1
	if err := tx.PutUnit(ctx, u); err != nil {
		return err
	}
	o.Status = model.OrderSuccess
	audience := []string{u.OwnerCharacterID, o.TargetCharacter}
	if previous != "" {
		audience = append(audience, previous)
	}
	return emitEvent(ctx, sink, guildID, turn+1, PhaseBeginning, "COMMANDER_ASSIGNED", "unit", u.UnitID, audience)
}

// resolveAssignVictoryPoints grants its amount every Beginning phase it
// runs, standing as an ongoing per-turn award rather than a one-shot
// transfer: the cancellation cooldown in CancelOrder only makes sense if
// the order keeps doing something worth protecting for those three
// turns.
func resolveAssignVictoryPoints(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order) error {
	var audience []string
	if o.TargetCharacter != "" {
		c, err := tx.GetCharacter(ctx, guildID, o.TargetCharacter)
		if err != nil {
			return err
		}
		c.VictoryPoints += o.ResourceAmount
		if err := tx.PutCharacter(ctx, c); err != nil {
			return err
		}
		audience = []string{o.TargetCharacter}
	} else {
		members, err := tx.ListFactionMembers(ctx, guildID, o.TargetFactionID)
		if err != nil {
			return err
		}
		for _, m := range members {
			c, err := tx.GetCharacter(ctx, guildID, m.CharacterID)
			if err != nil {
				continue
			}
			c.VictoryPoints += o.ResourceAmount
			if err := tx.PutCharacter(ctx, c); err != nil {
				return err
			}
			audience = append(audience, m.CharacterID)
		}
	}
	o.Status = model.OrderOngoing
	o.TurnsExecuted++
	o.TurnsActive++
	return emitEvent(ctx, sink, guildID, turn+1, PhaseBeginning, "VICTORY_POINTS_ASSIGNED", "order", o.OrderID, audience)
}
