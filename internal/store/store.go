// Package store defines the tenant-scoped persistence contract the
// engine and CLI are built against. Every method is guild-scoped: the
// guildID parameter pins all reads and writes to one tenant, mirroring
// how the teacher's repository layer scopes everything by gameID.
//
// Concrete adapters (postgres, sqlite, memstore) satisfy Store without
// the engine ever importing database/sql or a driver package directly.
package store

import (
	"context"

	"github.com/example/wargame/internal/model"
)

// TerritoryStore covers Territory rows and the adjacency graph.
type TerritoryStore interface {
	GetTerritory(ctx context.Context, guildID int64, territoryID string) (*model.Territory, error)
	ListTerritories(ctx context.Context, guildID int64) ([]model.Territory, error)
	PutTerritory(ctx context.Context, t *model.Territory) error
	ListAdjacencies(ctx context.Context, guildID int64) ([]model.TerritoryAdjacency, error)
	PutAdjacency(ctx context.Context, a *model.TerritoryAdjacency) error
}

// UnitStore covers Unit, UnitType, Building, BuildingType rows.
type UnitStore interface {
	GetUnit(ctx context.Context, guildID int64, unitID string) (*model.Unit, error)
	ListUnits(ctx context.Context, guildID int64) ([]model.Unit, error)
	ListUnitsByTerritory(ctx context.Context, guildID int64, territoryID string) ([]model.Unit, error)
	PutUnit(ctx context.Context, u *model.Unit) error
	DeleteUnit(ctx context.Context, guildID int64, unitID string) error

	ListNavalPositions(ctx context.Context, guildID int64, unitID string) ([]model.NavalUnitPosition, error)
	PutNavalPosition(ctx context.Context, p *model.NavalUnitPosition) error
	ClearNavalPositions(ctx context.Context, guildID int64, unitID string) error

	GetUnitType(ctx context.Context, guildID int64, typeName string) (*model.UnitType, error)
	ListUnitTypes(ctx context.Context, guildID int64) ([]model.UnitType, error)
	PutUnitType(ctx context.Context, t *model.UnitType) error

	GetBuilding(ctx context.Context, guildID int64, buildingID string) (*model.Building, error)
	ListBuildings(ctx context.Context, guildID int64) ([]model.Building, error)
	ListBuildingsByTerritory(ctx context.Context, guildID int64, territoryID string) ([]model.Building, error)
	PutBuilding(ctx context.Context, b *model.Building) error

	GetBuildingType(ctx context.Context, guildID int64, typeName string) (*model.BuildingType, error)
	ListBuildingTypes(ctx context.Context, guildID int64) ([]model.BuildingType, error)
	PutBuildingType(ctx context.Context, t *model.BuildingType) error
}

// FactionStore covers Faction, FactionMember, FactionPermission, Character rows.
type FactionStore interface {
	GetFaction(ctx context.Context, guildID int64, factionID string) (*model.Faction, error)
	ListFactions(ctx context.Context, guildID int64) ([]model.Faction, error)
	PutFaction(ctx context.Context, f *model.Faction) error
	DeleteFaction(ctx context.Context, guildID int64, factionID string) error

	ListFactionMembers(ctx context.Context, guildID int64, factionID string) ([]model.FactionMember, error)
	PutFactionMember(ctx context.Context, m *model.FactionMember) error
	DeleteFactionMember(ctx context.Context, guildID int64, factionID, characterID string) error

	ListFactionPermissions(ctx context.Context, guildID int64, factionID string) ([]model.FactionPermission, error)
	PutFactionPermission(ctx context.Context, p *model.FactionPermission) error
	DeleteFactionPermission(ctx context.Context, guildID int64, factionID, characterID string, perm model.PermissionType) error

	GetCharacter(ctx context.Context, guildID int64, characterID string) (*model.Character, error)
	ListCharacters(ctx context.Context, guildID int64) ([]model.Character, error)
	PutCharacter(ctx context.Context, c *model.Character) error
}

// OrderStore covers submitted Order rows for a turn.
type OrderStore interface {
	GetOrder(ctx context.Context, guildID int64, orderID string) (*model.Order, error)
	ListOrdersByTurn(ctx context.Context, guildID int64, turnNumber int) ([]model.Order, error)
	PutOrder(ctx context.Context, o *model.Order) error
}

// DiplomacyStore covers Alliance, War, WarParticipant rows.
type DiplomacyStore interface {
	GetAlliance(ctx context.Context, guildID int64, factionAID, factionBID string) (*model.Alliance, error)
	ListAlliances(ctx context.Context, guildID int64) ([]model.Alliance, error)
	PutAlliance(ctx context.Context, a *model.Alliance) error
	DeleteAlliance(ctx context.Context, guildID int64, factionAID, factionBID string) error

	GetWar(ctx context.Context, guildID int64, warID string) (*model.War, error)
	ListWars(ctx context.Context, guildID int64) ([]model.War, error)
	ListActiveWarsForFaction(ctx context.Context, guildID int64, factionID string) ([]model.War, error)
	PutWar(ctx context.Context, w *model.War) error

	ListWarParticipants(ctx context.Context, guildID int64, warID string) ([]model.WarParticipant, error)
	PutWarParticipant(ctx context.Context, p *model.WarParticipant) error
}

// EconomyStore covers PlayerResources, FactionResources, PendingTransfer,
// SpiritNexus rows.
type EconomyStore interface {
	GetPlayerResources(ctx context.Context, guildID int64, characterID string) (*model.PlayerResources, error)
	PutPlayerResources(ctx context.Context, r *model.PlayerResources) error

	GetFactionResources(ctx context.Context, guildID int64, factionID string) (*model.FactionResources, error)
	PutFactionResources(ctx context.Context, r *model.FactionResources) error

	ListPendingTransfers(ctx context.Context, guildID int64, turnNumber int) ([]model.PendingTransfer, error)
	PutPendingTransfer(ctx context.Context, t *model.PendingTransfer) error
	DeletePendingTransfer(ctx context.Context, guildID int64, transferID string) error

	ListSpiritNexuses(ctx context.Context, guildID int64) ([]model.SpiritNexus, error)
	PutSpiritNexus(ctx context.Context, n *model.SpiritNexus) error
}

// EventSink appends turn-log entries. Resolvers take an EventSink
// parameter rather than a package-level logger so the same resolver
// code can run against a real Store-backed sink in production and an
// in-memory slice sink in tests.
type EventSink interface {
	Emit(ctx context.Context, e *model.Event) error
}

// ConfigStore covers the tenant's singleton WargameConfig row.
type ConfigStore interface {
	GetConfig(ctx context.Context, guildID int64) (*model.WargameConfig, error)
	PutConfig(ctx context.Context, c *model.WargameConfig) error
}

// Store is the full tenant-scoped persistence contract. A Txn additionally
// implements Store so resolvers can be written against the interface and
// run identically inside or outside a transaction.
type Store interface {
	TerritoryStore
	UnitStore
	FactionStore
	OrderStore
	DiplomacyStore
	EconomyStore
	EventSink
	ConfigStore

	// Begin starts a transaction scoped to guildID. The returned Txn
	// must be committed or rolled back by the caller.
	Begin(ctx context.Context, guildID int64) (Txn, error)
}

// Txn is a Store bound to a single transaction.
type Txn interface {
	Store
	Commit() error
	Rollback() error
}
