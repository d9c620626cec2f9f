package wargame

import (
	"context"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

// resolveConstructionPhase handles both MOBILIZATION (new units) and
// CONSTRUCTION (new buildings) orders, which share this phase (§2, §3).
// Costs are drawn from the submitting character's own stockpile; an
// order whose submitter cannot afford the full cost fails rather than
// partially paying, unlike upkeep's partial-payment accounting.
func resolveConstructionPhase(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, orders []model.Order) error {
	for i := range orders {
		o := &orders[i]
		var err error
		switch OrderType(o.OrderType) {
		case OrderMobilization:
			err = executeMobilization(ctx, tx, guildID, turn, sink, o)
		case OrderConstruction:
			err = executeConstruction(ctx, tx, guildID, turn, sink, o)
		default:
			continue
		}
		if ferr := failOrderOnError(ctx, tx, o, err); ferr != nil {
			return ferr
		}
	}
	return nil
}

func executeMobilization(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order) error {
	ut, err := tx.GetUnitType(ctx, guildID, o.BuildTypeName)
	if err != nil {
		return wrapStoreErr(err)
	}
	costs := [6]int{ut.CostOre, ut.CostLumber, ut.CostCoal, ut.CostRations, ut.CostCloth, ut.CostPlatinum}
	if err := spendCharacterResources(ctx, tx, guildID, o.SubmittedByID, costs); err != nil {
		return err
	}
	character, err := tx.GetCharacter(ctx, guildID, o.SubmittedByID)
	if err != nil {
		return wrapStoreErr(err)
	}
	u := &model.Unit{
		GuildID:            guildID,
		UnitID:             newID("unit"),
		UnitType:           ut.TypeName,
		CurrentTerritoryID: o.TargetTerritory,
		OwnerCharacterID:   o.SubmittedByID,
		OwnerFactionID:     character.RepresentedFactionID,
		Movement:           ut.Movement,
		Attack:             ut.Attack,
		Defense:            ut.Defense,
		SiegeAttack:        ut.SiegeAttack,
		SiegeDefense:       ut.SiegeDefense,
		Size:               ut.Size,
		Capacity:           ut.Capacity,
		Organization:       ut.MaxOrganization,
		MaxOrganization:    ut.MaxOrganization,
		Status:             model.UnitActive,
		UpkeepOre:          ut.UpkeepOre,
		UpkeepLumber:       ut.UpkeepLumber,
		UpkeepCoal:         ut.UpkeepCoal,
		UpkeepRations:      ut.UpkeepRations,
		UpkeepCloth:        ut.UpkeepCloth,
		UpkeepPlatinum:     ut.UpkeepPlatinum,
		Keywords:           ut.Keywords,
	}
	if err := tx.PutUnit(ctx, u); err != nil {
		return wrapStoreErr(err)
	}
	o.Status = model.OrderSuccess
	return emitEvent(ctx, sink, guildID, turn+1, PhaseConstruction, "UNIT_MOBILIZED", "unit", u.UnitID, []string{o.SubmittedByID})
}

func executeConstruction(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order) error {
	bt, err := tx.GetBuildingType(ctx, guildID, o.BuildTypeName)
	if err != nil {
		return wrapStoreErr(err)
	}
	costs := [6]int{bt.CostOre, bt.CostLumber, bt.CostCoal, bt.CostRations, bt.CostCloth, bt.CostPlatinum}
	if err := spendCharacterResources(ctx, tx, guildID, o.SubmittedByID, costs); err != nil {
		return err
	}
	b := &model.Building{
		GuildID:        guildID,
		BuildingID:     newID("building"),
		TypeName:       bt.TypeName,
		TerritoryID:    o.TargetTerritory,
		Durability:     bt.MaxDurability,
		Status:         model.BuildingActive,
		Age:            0,
		UpkeepOre:      bt.UpkeepOre,
		UpkeepLumber:   bt.UpkeepLumber,
		UpkeepCoal:     bt.UpkeepCoal,
		UpkeepRations:  bt.UpkeepRations,
		UpkeepCloth:    bt.UpkeepCloth,
		UpkeepPlatinum: bt.UpkeepPlatinum,
		Keywords:       bt.Keywords,
	}
	if err := tx.PutBuilding(ctx, b); err != nil {
		return wrapStoreErr(err)
	}
	if err := emitEvent(ctx, sink, guildID, turn+1, PhaseConstruction, "BUILDING_CONSTRUCTED", "building", b.BuildingID, []string{o.SubmittedByID}); err != nil {
		return err
	}
	if hasKeyword(bt.Keywords, "industrial") || hasKeyword(bt.Keywords, "spiritual") {
		nexus, err := nearestSpiritNexus(ctx, tx, guildID, o.TargetTerritory)
		if err != nil {
			return wrapStoreErr(err)
		}
		if hasKeyword(bt.Keywords, "industrial") {
			if err := applyNexusMutation(ctx, tx, guildID, turn, PhaseConstruction, sink, nexus, -1, "NEXUS_DAMAGED"); err != nil {
				return err
			}
		}
		if hasKeyword(bt.Keywords, "spiritual") {
			if err := applyNexusMutation(ctx, tx, guildID, turn, PhaseConstruction, sink, nexus, 1, "NEXUS_REPAIRED"); err != nil {
				return err
			}
		}
	}
	o.Status = model.OrderSuccess
	return nil
}

func spendCharacterResources(ctx context.Context, tx store.Store, guildID int64, characterID string, costs [6]int) error {
	r, err := tx.GetPlayerResources(ctx, guildID, characterID)
	if err != nil {
		r = &model.PlayerResources{GuildID: guildID, CharacterID: characterID}
	}
	for i, kind := range allResources {
		if resourceFieldPlayer(r, kind) < costs[i] {
			return &ExecutionFailure{Reason: "insufficient resources"}
		}
	}
	for i, kind := range allResources {
		setResourceFieldPlayer(r, kind, resourceFieldPlayer(r, kind)-costs[i])
	}
	return tx.PutPlayerResources(ctx, r)
}

// resolveVictoryPhase awards each territory's victory points to its
// controlling character for the turn, the engine's scoring tally (§3).
// No order type is scheduled to this phase.
func resolveVictoryPhase(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, orders []model.Order) error {
	territories, err := tx.ListTerritories(ctx, guildID)
	if err != nil {
		return err
	}
	for _, t := range territories {
		if t.VictoryPoints == 0 || t.ControllerCharacterID == "" {
			continue
		}
		c, err := tx.GetCharacter(ctx, guildID, t.ControllerCharacterID)
		if err != nil {
			continue
		}
		c.VictoryPoints += t.VictoryPoints
		if err := tx.PutCharacter(ctx, c); err != nil {
			return err
		}
		if err := emitEvent(ctx, sink, guildID, turn+1, PhaseVictory, "VICTORY_POINTS_AWARDED", "character", c.Identifier, []string{c.Identifier}); err != nil {
			return err
		}
	}
	return nil
}
