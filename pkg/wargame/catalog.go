package wargame

import "github.com/example/wargame/internal/model"

// DefaultUnitTypes is a minimal package-level unit-type catalog, matching
// the teacher's StandardMap() package-level provinces table in
// pkg/diplomacy/map_data.go. The engine does not load it on its own: it
// reads unit types only through the Store, so these rows take effect
// only once a caller writes them there.
func DefaultUnitTypes(guildID int64) []model.UnitType {
	return []model.UnitType{
		{GuildID: guildID, TypeName: "infantry", Movement: 2, Attack: 3, Defense: 3, Size: 1, MaxOrganization: 10,
			UpkeepRations: 1, CostOre: 2, CostRations: 1, Keywords: []string{"infantry"}},
		{GuildID: guildID, TypeName: "cavalry", Movement: 4, Attack: 4, Defense: 2, Size: 1, MaxOrganization: 10,
			UpkeepRations: 2, CostOre: 2, CostRations: 2, Keywords: []string{"cavalry"}},
		{GuildID: guildID, TypeName: "ship", Movement: 3, Attack: 3, Defense: 3, Capacity: 4, MaxOrganization: 10,
			UpkeepLumber: 2, UpkeepCoal: 1, CostLumber: 4, CostCoal: 2, Keywords: []string{"naval"}},
		{GuildID: guildID, TypeName: "submarine", Movement: 3, Attack: 5, Defense: 1, MaxOrganization: 8,
			UpkeepCoal: 2, CostCoal: 4, CostPlatinum: 2, Keywords: []string{"naval", "submarine"}},
		{GuildID: guildID, TypeName: "transport", Movement: 2, Attack: 0, Defense: 2, Capacity: 6, MaxOrganization: 10,
			UpkeepLumber: 2, CostLumber: 5, Keywords: []string{"naval"}},
		{GuildID: guildID, TypeName: "aerial_scout", Movement: 6, Attack: 1, Defense: 1, MaxOrganization: 6,
			UpkeepCoal: 1, CostPlatinum: 3, Keywords: []string{"aerial"}},
		{GuildID: guildID, TypeName: "aerial_transport", Movement: 5, Attack: 0, Defense: 1, Capacity: 3, MaxOrganization: 6,
			UpkeepCoal: 2, CostPlatinum: 4, Keywords: []string{"aerial", "aerial-transport"}},
	}
}

// DefaultBuildingTypes is the minimal seed building catalog.
func DefaultBuildingTypes(guildID int64) []model.BuildingType {
	return []model.BuildingType{
		{GuildID: guildID, TypeName: "granary", MaxDurability: 5, UpkeepLumber: 1,
			CostLumber: 4, CostRations: 2, Keywords: []string{"rations"}},
		{GuildID: guildID, TypeName: "foundry", MaxDurability: 6, UpkeepCoal: 2,
			CostOre: 6, CostCoal: 3, Keywords: []string{"industrial", "ore"}},
		{GuildID: guildID, TypeName: "fortification", MaxDurability: 10, UpkeepOre: 2,
			CostOre: 8, CostLumber: 4, Keywords: []string{"fortification"}},
		{GuildID: guildID, TypeName: "hospital", MaxDurability: 4, UpkeepCloth: 1,
			CostCloth: 4, CostPlatinum: 2, Keywords: []string{"hospital"}},
		{GuildID: guildID, TypeName: "shrine", MaxDurability: 3, UpkeepPlatinum: 1,
			CostPlatinum: 5, Keywords: []string{"spiritual", "shrine"}},
	}
}

func hasKeyword(keywords []string, want string) bool {
	for _, k := range keywords {
		if k == want {
			return true
		}
	}
	return false
}
