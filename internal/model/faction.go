package model

// Faction is a player-organized group owning units, territory, and resources.
type Faction struct {
	GuildID        int64  `json:"guild_id"`
	FactionID      string `json:"faction_id"`
	Name           string `json:"name"`
	NationTag      string `json:"nation_tag,omitempty"`
	LeaderID       string `json:"leader_character_id,omitempty"`
	HasDeclaredWar bool   `json:"has_declared_war"`
	CreatedTurn    int    `json:"created_turn"`

	// Per-turn spending counters; informational only (§3).
	OreSpent      int `json:"ore_spent"`
	LumberSpent   int `json:"lumber_spent"`
	CoalSpent     int `json:"coal_spent"`
	RationsSpent  int `json:"rations_spent"`
	ClothSpent    int `json:"cloth_spent"`
	PlatinumSpent int `json:"platinum_spent"`
}

// FactionMember is a (faction, character) membership row.
type FactionMember struct {
	GuildID     int64  `json:"guild_id"`
	FactionID   string `json:"faction_id"`
	CharacterID string `json:"character_id"`
	JoinedTurn  int    `json:"joined_turn"`
}

// PermissionType enumerates the four faction permission grants.
type PermissionType string

const (
	PermissionCommand      PermissionType = "COMMAND"
	PermissionFinancial    PermissionType = "FINANCIAL"
	PermissionMembership   PermissionType = "MEMBERSHIP"
	PermissionConstruction PermissionType = "CONSTRUCTION"
)

// FactionPermission is a (faction, character, permission) grant row.
type FactionPermission struct {
	GuildID        int64          `json:"guild_id"`
	FactionID      string         `json:"faction_id"`
	CharacterID    string         `json:"character_id"`
	PermissionType PermissionType `json:"permission_type"`
}

// Character is a player-controlled persona within a tenant.
type Character struct {
	GuildID                   int64  `json:"guild_id"`
	Identifier                string `json:"identifier"`
	DisplayName               string `json:"display_name"`
	OwningUserID              string `json:"owning_user_id,omitempty"`
	OreProduction             int    `json:"ore_production"`
	LumberProduction          int    `json:"lumber_production"`
	CoalProduction            int    `json:"coal_production"`
	RationsProduction         int    `json:"rations_production"`
	ClothProduction           int    `json:"cloth_production"`
	PlatinumProduction        int    `json:"platinum_production"`
	VictoryPoints             int    `json:"victory_points"`
	RepresentedFactionID      string `json:"represented_faction_id,omitempty"`
	RepresentationChangedTurn int    `json:"representation_changed_turn"`
}
