package model

// UnitStatus is the lifecycle status of a Unit.
type UnitStatus string

const (
	UnitActive    UnitStatus = "ACTIVE"
	UnitDisbanded UnitStatus = "DISBANDED"
)

// Unit is a single military unit row.
type Unit struct {
	GuildID              int64    `json:"guild_id"`
	UnitID               string   `json:"unit_id"`
	UnitType             string   `json:"unit_type"`
	CurrentTerritoryID   string   `json:"current_territory_id,omitempty"`
	OwnerCharacterID     string   `json:"owner_character_id,omitempty"`
	OwnerFactionID       string   `json:"owner_faction_id,omitempty"`
	CommanderCharacterID string   `json:"commander_character_id,omitempty"`
	CommanderAssignedTurn int     `json:"commander_assigned_turn,omitempty"`
	Movement             int      `json:"movement"`
	Attack               int      `json:"attack"`
	Defense              int      `json:"defense"`
	SiegeAttack          int      `json:"siege_attack"`
	SiegeDefense         int      `json:"siege_defense"`
	Size                 int      `json:"size"`
	Capacity             int      `json:"capacity"`
	Organization         int      `json:"organization"`
	MaxOrganization      int      `json:"max_organization"`
	Status               UnitStatus `json:"status"`
	Encircled            bool     `json:"encircled,omitempty"`
	UpkeepOre            int      `json:"upkeep_ore"`
	UpkeepLumber         int      `json:"upkeep_lumber"`
	UpkeepCoal           int      `json:"upkeep_coal"`
	UpkeepRations        int      `json:"upkeep_rations"`
	UpkeepCloth          int      `json:"upkeep_cloth"`
	UpkeepPlatinum       int      `json:"upkeep_platinum"`
	Keywords             []string `json:"keywords,omitempty"`
}

// NavalUnitPosition is a (unit, territory) occupancy row for naval units
// currently patrolling, convoying, or transporting across several
// water territories at once.
type NavalUnitPosition struct {
	GuildID     int64  `json:"guild_id"`
	UnitID      string `json:"unit_id"`
	TerritoryID string `json:"territory_id"`
}

// UnitType is a globally-immutable (per turn) unit template.
type UnitType struct {
	GuildID          int64    `json:"guild_id"`
	TypeName         string   `json:"type_name"`
	Movement         int      `json:"movement"`
	Attack           int      `json:"attack"`
	Defense          int      `json:"defense"`
	SiegeAttack      int      `json:"siege_attack"`
	SiegeDefense     int      `json:"siege_defense"`
	Size             int      `json:"size"`
	Capacity         int      `json:"capacity"`
	MaxOrganization  int      `json:"max_organization"`
	UpkeepOre        int      `json:"upkeep_ore"`
	UpkeepLumber     int      `json:"upkeep_lumber"`
	UpkeepCoal       int      `json:"upkeep_coal"`
	UpkeepRations    int      `json:"upkeep_rations"`
	UpkeepCloth      int      `json:"upkeep_cloth"`
	UpkeepPlatinum   int      `json:"upkeep_platinum"`
	CostOre          int      `json:"cost_ore"`
	CostLumber       int      `json:"cost_lumber"`
	CostCoal         int      `json:"cost_coal"`
	CostRations      int      `json:"cost_rations"`
	CostCloth        int      `json:"cost_cloth"`
	CostPlatinum     int      `json:"cost_platinum"`
	Keywords         []string `json:"keywords,omitempty"`
	NationRestriction string  `json:"nation_restriction,omitempty"`
}

// BuildingStatus is the lifecycle status of a Building.
type BuildingStatus string

const (
	BuildingActive    BuildingStatus = "ACTIVE"
	BuildingDestroyed BuildingStatus = "DESTROYED"
)

// BuildingType is a globally-immutable (per turn) building template.
type BuildingType struct {
	GuildID           int64    `json:"guild_id"`
	TypeName          string   `json:"type_name"`
	MaxDurability     int      `json:"max_durability"`
	UpkeepOre         int      `json:"upkeep_ore"`
	UpkeepLumber      int      `json:"upkeep_lumber"`
	UpkeepCoal        int      `json:"upkeep_coal"`
	UpkeepRations     int      `json:"upkeep_rations"`
	UpkeepCloth       int      `json:"upkeep_cloth"`
	UpkeepPlatinum    int      `json:"upkeep_platinum"`
	CostOre           int      `json:"cost_ore"`
	CostLumber        int      `json:"cost_lumber"`
	CostCoal          int      `json:"cost_coal"`
	CostRations       int      `json:"cost_rations"`
	CostCloth         int      `json:"cost_cloth"`
	CostPlatinum      int      `json:"cost_platinum"`
	Keywords          []string `json:"keywords,omitempty"`
	NationRestriction string   `json:"nation_restriction,omitempty"`
}

// Building is a single constructed building row.
type Building struct {
	GuildID     int64          `json:"guild_id"`
	BuildingID  string         `json:"building_id"`
	TypeName    string         `json:"type_name"`
	TerritoryID string         `json:"territory_id"`
	Durability  int            `json:"durability"`
	Status      BuildingStatus `json:"status"`
	Age         int            `json:"age"`
	UpkeepOre       int      `json:"upkeep_ore"`
	UpkeepLumber    int      `json:"upkeep_lumber"`
	UpkeepCoal      int      `json:"upkeep_coal"`
	UpkeepRations   int      `json:"upkeep_rations"`
	UpkeepCloth     int      `json:"upkeep_cloth"`
	UpkeepPlatinum  int      `json:"upkeep_platinum"`
	Keywords        []string `json:"keywords,omitempty"`
}
