package model

// ResourceKind enumerates the six tradeable resources (§6).
type ResourceKind string

const (
	ResourceOre      ResourceKind = "ORE"
	ResourceLumber   ResourceKind = "LUMBER"
	ResourceCoal     ResourceKind = "COAL"
	ResourceRations  ResourceKind = "RATIONS"
	ResourceCloth    ResourceKind = "CLOTH"
	ResourcePlatinum ResourceKind = "PLATINUM"
)

// PlayerResources is a character's banked resource stockpile row.
type PlayerResources struct {
	GuildID     int64 `json:"guild_id"`
	CharacterID string `json:"character_id"`
	Ore         int   `json:"ore"`
	Lumber      int   `json:"lumber"`
	Coal        int   `json:"coal"`
	Rations     int   `json:"rations"`
	Cloth       int   `json:"cloth"`
	Platinum    int   `json:"platinum"`
}

// FactionResources is a faction's shared resource stockpile row, separate
// from its members' personal PlayerResources (§6).
type FactionResources struct {
	GuildID   int64 `json:"guild_id"`
	FactionID string `json:"faction_id"`
	Ore       int   `json:"ore"`
	Lumber    int   `json:"lumber"`
	Coal      int   `json:"coal"`
	Rations   int   `json:"rations"`
	Cloth     int   `json:"cloth"`
	Platinum  int   `json:"platinum"`
}

// PendingTransfer is an outstanding resource transfer row, keyed by
// TransferID. Writing a row with an existing TransferID replaces it;
// rows from the same source with different TransferIDs are not merged.
type PendingTransfer struct {
	GuildID        int64        `json:"guild_id"`
	TransferID     string       `json:"transfer_id"`
	TurnNumber     int          `json:"turn_number"`
	FromCharacter  string       `json:"from_character_id,omitempty"`
	FromFaction    string       `json:"from_faction_id,omitempty"`
	ToCharacter    string       `json:"to_character_id,omitempty"`
	ToFaction      string       `json:"to_faction_id,omitempty"`
	Resource       ResourceKind `json:"resource"`
	Amount         int          `json:"amount"`
}

// SpiritNexus is a special territory keyword-holder whose RestoreAmount
// is raised or lowered when spiritual buildings near it are constructed
// or destroyed. Organization recovery does not read it; recovery depends
// on hospitals only.
type SpiritNexus struct {
	GuildID        int64 `json:"guild_id"`
	TerritoryID    string `json:"territory_id"`
	RestoreAmount  int   `json:"restore_amount"`
	PoleSwapTurn   int   `json:"pole_swap_turn,omitempty"`
}
