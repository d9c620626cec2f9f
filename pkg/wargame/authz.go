package wargame

import (
	"context"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

// characterHasPermission reports whether characterID holds perm on
// factionID, either directly granted or implicitly as leader.
func characterHasPermission(ctx context.Context, tx store.Store, guildID int64, factionID, characterID string, perm model.PermissionType) (bool, error) {
	f, err := tx.GetFaction(ctx, guildID, factionID)
	if err != nil {
		return false, err
	}
	if f.LeaderID == characterID {
		return true, nil
	}
	grants, err := tx.ListFactionPermissions(ctx, guildID, factionID)
	if err != nil {
		return false, err
	}
	for _, g := range grants {
		if g.CharacterID == characterID && g.PermissionType == perm {
			return true, nil
		}
	}
	return false, nil
}

// canCommandUnit reports whether submitterID may issue movement/combat
// orders for unit u: owner, commander, or (for faction-owned units)
// COMMAND permission holder.
func canCommandUnit(ctx context.Context, tx store.Store, guildID int64, u *model.Unit, submitterID string) (bool, error) {
	if u.OwnerCharacterID == submitterID {
		return true, nil
	}
	if u.CommanderCharacterID == submitterID {
		return true, nil
	}
	if u.OwnerFactionID != "" {
		return characterHasPermission(ctx, tx, guildID, u.OwnerFactionID, submitterID, model.PermissionCommand)
	}
	return false, nil
}

func loadUnits(ctx context.Context, tx store.Store, guildID int64, unitIDs []string) ([]model.Unit, error) {
	units := make([]model.Unit, 0, len(unitIDs))
	for _, id := range unitIDs {
		u, err := tx.GetUnit(ctx, guildID, id)
		if err != nil {
			return nil, err
		}
		units = append(units, *u)
	}
	return units, nil
}
