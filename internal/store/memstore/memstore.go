// Package memstore is an in-memory store.Store used by the engine's own
// tests and by the CLI's --store=memory mode. It mirrors the shape of
// the postgres and sqlite adapters but keeps rows in guild-keyed maps
// protected by a single mutex, trading throughput for zero setup cost.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

type tenant struct {
	territories   map[string]model.Territory
	adjacencies   map[[2]string]model.TerritoryAdjacency
	units         map[string]model.Unit
	navalPos      map[string]map[string]model.NavalUnitPosition
	unitTypes     map[string]model.UnitType
	buildings     map[string]model.Building
	buildingTypes map[string]model.BuildingType
	factions      map[string]model.Faction
	members       map[string]map[string]model.FactionMember
	permissions   map[string]map[string]model.FactionPermission
	characters    map[string]model.Character
	orders        map[string]model.Order
	alliances     map[[2]string]model.Alliance
	wars          map[string]model.War
	participants  map[string]map[string]model.WarParticipant
	playerRes     map[string]model.PlayerResources
	factionRes    map[string]model.FactionResources
	transfers     map[string]model.PendingTransfer
	nexuses       map[string]model.SpiritNexus
	events        []model.Event
	config        *model.WargameConfig
}

func newTenant() *tenant {
	return &tenant{
		territories:   make(map[string]model.Territory),
		adjacencies:   make(map[[2]string]model.TerritoryAdjacency),
		units:         make(map[string]model.Unit),
		navalPos:      make(map[string]map[string]model.NavalUnitPosition),
		unitTypes:     make(map[string]model.UnitType),
		buildings:     make(map[string]model.Building),
		buildingTypes: make(map[string]model.BuildingType),
		factions:      make(map[string]model.Faction),
		members:       make(map[string]map[string]model.FactionMember),
		permissions:   make(map[string]map[string]model.FactionPermission),
		characters:    make(map[string]model.Character),
		orders:        make(map[string]model.Order),
		alliances:     make(map[[2]string]model.Alliance),
		wars:          make(map[string]model.War),
		participants:  make(map[string]map[string]model.WarParticipant),
		playerRes:     make(map[string]model.PlayerResources),
		factionRes:    make(map[string]model.FactionResources),
		transfers:     make(map[string]model.PendingTransfer),
		nexuses:       make(map[string]model.SpiritNexus),
	}
}

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu      sync.Mutex
	tenants map[int64]*tenant
}

// New returns an empty Store.
func New() *Store {
	return &Store{tenants: make(map[int64]*tenant)}
}

func (s *Store) tenantFor(guildID int64) *tenant {
	t, ok := s.tenants[guildID]
	if !ok {
		t = newTenant()
		s.tenants[guildID] = t
	}
	return t
}

func pairKey(a, b string) [2]string {
	if a <= b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

// Begin returns a txn wrapping the same Store; memstore writes take
// effect immediately and Commit/Rollback are no-ops, since a single
// in-process mutex already serializes access per call.
func (s *Store) Begin(ctx context.Context, guildID int64) (store.Txn, error) {
	return &txn{s: s}, nil
}

type txn struct{ s *Store }

func (t *txn) Commit() error   { return nil }
func (t *txn) Rollback() error { return nil }

func (t *txn) Begin(ctx context.Context, guildID int64) (store.Txn, error) {
	return t, nil
}

// The remaining Store methods are implemented once on *Store and
// reused by *txn through the forwarding methods below.
func (t *txn) GetTerritory(ctx context.Context, g int64, id string) (*model.Territory, error) {
	return t.s.GetTerritory(ctx, g, id)
}
func (t *txn) ListTerritories(ctx context.Context, g int64) ([]model.Territory, error) {
	return t.s.ListTerritories(ctx, g)
}
func (t *txn) PutTerritory(ctx context.Context, v *model.Territory) error {
	return t.s.PutTerritory(ctx, v)
}
func (t *txn) ListAdjacencies(ctx context.Context, g int64) ([]model.TerritoryAdjacency, error) {
	return t.s.ListAdjacencies(ctx, g)
}
func (t *txn) PutAdjacency(ctx context.Context, v *model.TerritoryAdjacency) error {
	return t.s.PutAdjacency(ctx, v)
}
func (t *txn) GetUnit(ctx context.Context, g int64, id string) (*model.Unit, error) {
	return t.s.GetUnit(ctx, g, id)
}
func (t *txn) ListUnits(ctx context.Context, g int64) ([]model.Unit, error) {
	return t.s.ListUnits(ctx, g)
}
func (t *txn) ListUnitsByTerritory(ctx context.Context, g int64, terr string) ([]model.Unit, error) {
	return t.s.ListUnitsByTerritory(ctx, g, terr)
}
func (t *txn) PutUnit(ctx context.Context, v *model.Unit) error { return t.s.PutUnit(ctx, v) }
func (t *txn) DeleteUnit(ctx context.Context, g int64, id string) error {
	return t.s.DeleteUnit(ctx, g, id)
}
func (t *txn) ListNavalPositions(ctx context.Context, g int64, id string) ([]model.NavalUnitPosition, error) {
	return t.s.ListNavalPositions(ctx, g, id)
}
func (t *txn) PutNavalPosition(ctx context.Context, v *model.NavalUnitPosition) error {
	return t.s.PutNavalPosition(ctx, v)
}
func (t *txn) ClearNavalPositions(ctx context.Context, g int64, id string) error {
	return t.s.ClearNavalPositions(ctx, g, id)
}
func (t *txn) GetUnitType(ctx context.Context, g int64, name string) (*model.UnitType, error) {
	return t.s.GetUnitType(ctx, g, name)
}
func (t *txn) ListUnitTypes(ctx context.Context, g int64) ([]model.UnitType, error) {
	return t.s.ListUnitTypes(ctx, g)
}
func (t *txn) PutUnitType(ctx context.Context, v *model.UnitType) error {
	return t.s.PutUnitType(ctx, v)
}
func (t *txn) GetBuilding(ctx context.Context, g int64, id string) (*model.Building, error) {
	return t.s.GetBuilding(ctx, g, id)
}
func (t *txn) ListBuildings(ctx context.Context, g int64) ([]model.Building, error) {
	return t.s.ListBuildings(ctx, g)
}
func (t *txn) ListBuildingsByTerritory(ctx context.Context, g int64, terr string) ([]model.Building, error) {
	return t.s.ListBuildingsByTerritory(ctx, g, terr)
}
func (t *txn) PutBuilding(ctx context.Context, v *model.Building) error {
	return t.s.PutBuilding(ctx, v)
}
func (t *txn) GetBuildingType(ctx context.Context, g int64, name string) (*model.BuildingType, error) {
	return t.s.GetBuildingType(ctx, g, name)
}
func (t *txn) ListBuildingTypes(ctx context.Context, g int64) ([]model.BuildingType, error) {
	return t.s.ListBuildingTypes(ctx, g)
}
func (t *txn) PutBuildingType(ctx context.Context, v *model.BuildingType) error {
	return t.s.PutBuildingType(ctx, v)
}
func (t *txn) GetFaction(ctx context.Context, g int64, id string) (*model.Faction, error) {
	return t.s.GetFaction(ctx, g, id)
}
func (t *txn) ListFactions(ctx context.Context, g int64) ([]model.Faction, error) {
	return t.s.ListFactions(ctx, g)
}
func (t *txn) PutFaction(ctx context.Context, v *model.Faction) error { return t.s.PutFaction(ctx, v) }
func (t *txn) DeleteFaction(ctx context.Context, g int64, id string) error {
	return t.s.DeleteFaction(ctx, g, id)
}
func (t *txn) ListFactionMembers(ctx context.Context, g int64, id string) ([]model.FactionMember, error) {
	return t.s.ListFactionMembers(ctx, g, id)
}
func (t *txn) PutFactionMember(ctx context.Context, v *model.FactionMember) error {
	return t.s.PutFactionMember(ctx, v)
}
func (t *txn) DeleteFactionMember(ctx context.Context, g int64, factionID, charID string) error {
	return t.s.DeleteFactionMember(ctx, g, factionID, charID)
}
func (t *txn) ListFactionPermissions(ctx context.Context, g int64, id string) ([]model.FactionPermission, error) {
	return t.s.ListFactionPermissions(ctx, g, id)
}
func (t *txn) PutFactionPermission(ctx context.Context, v *model.FactionPermission) error {
	return t.s.PutFactionPermission(ctx, v)
}
func (t *txn) DeleteFactionPermission(ctx context.Context, g int64, factionID, charID string, perm model.PermissionType) error {
	return t.s.DeleteFactionPermission(ctx, g, factionID, charID, perm)
}
func (t *txn) GetCharacter(ctx context.Context, g int64, id string) (*model.Character, error) {
	return t.s.GetCharacter(ctx, g, id)
}
func (t *txn) ListCharacters(ctx context.Context, g int64) ([]model.Character, error) {
	return t.s.ListCharacters(ctx, g)
}
func (t *txn) PutCharacter(ctx context.Context, v *model.Character) error {
	return t.s.PutCharacter(ctx, v)
}
func (t *txn) GetOrder(ctx context.Context, g int64, id string) (*model.Order, error) {
	return t.s.GetOrder(ctx, g, id)
}
func (t *txn) ListOrdersByTurn(ctx context.Context, g int64, turn int) ([]model.Order, error) {
	return t.s.ListOrdersByTurn(ctx, g, turn)
}
func (t *txn) PutOrder(ctx context.Context, v *model.Order) error { return t.s.PutOrder(ctx, v) }
func (t *txn) GetAlliance(ctx context.Context, g int64, a, b string) (*model.Alliance, error) {
	return t.s.GetAlliance(ctx, g, a, b)
}
func (t *txn) ListAlliances(ctx context.Context, g int64) ([]model.Alliance, error) {
	return t.s.ListAlliances(ctx, g)
}
func (t *txn) PutAlliance(ctx context.Context, v *model.Alliance) error {
	return t.s.PutAlliance(ctx, v)
}
func (t *txn) DeleteAlliance(ctx context.Context, g int64, a, b string) error {
	return t.s.DeleteAlliance(ctx, g, a, b)
}
func (t *txn) GetWar(ctx context.Context, g int64, id string) (*model.War, error) {
	return t.s.GetWar(ctx, g, id)
}
func (t *txn) ListWars(ctx context.Context, g int64) ([]model.War, error) {
	return t.s.ListWars(ctx, g)
}
func (t *txn) ListActiveWarsForFaction(ctx context.Context, g int64, id string) ([]model.War, error) {
	return t.s.ListActiveWarsForFaction(ctx, g, id)
}
func (t *txn) PutWar(ctx context.Context, v *model.War) error { return t.s.PutWar(ctx, v) }
func (t *txn) ListWarParticipants(ctx context.Context, g int64, id string) ([]model.WarParticipant, error) {
	return t.s.ListWarParticipants(ctx, g, id)
}
func (t *txn) PutWarParticipant(ctx context.Context, v *model.WarParticipant) error {
	return t.s.PutWarParticipant(ctx, v)
}
func (t *txn) GetPlayerResources(ctx context.Context, g int64, id string) (*model.PlayerResources, error) {
	return t.s.GetPlayerResources(ctx, g, id)
}
func (t *txn) PutPlayerResources(ctx context.Context, v *model.PlayerResources) error {
	return t.s.PutPlayerResources(ctx, v)
}
func (t *txn) GetFactionResources(ctx context.Context, g int64, id string) (*model.FactionResources, error) {
	return t.s.GetFactionResources(ctx, g, id)
}
func (t *txn) PutFactionResources(ctx context.Context, v *model.FactionResources) error {
	return t.s.PutFactionResources(ctx, v)
}
func (t *txn) ListPendingTransfers(ctx context.Context, g int64, turn int) ([]model.PendingTransfer, error) {
	return t.s.ListPendingTransfers(ctx, g, turn)
}
func (t *txn) PutPendingTransfer(ctx context.Context, v *model.PendingTransfer) error {
	return t.s.PutPendingTransfer(ctx, v)
}
func (t *txn) DeletePendingTransfer(ctx context.Context, g int64, id string) error {
	return t.s.DeletePendingTransfer(ctx, g, id)
}
func (t *txn) ListSpiritNexuses(ctx context.Context, g int64) ([]model.SpiritNexus, error) {
	return t.s.ListSpiritNexuses(ctx, g)
}
func (t *txn) PutSpiritNexus(ctx context.Context, v *model.SpiritNexus) error {
	return t.s.PutSpiritNexus(ctx, v)
}
func (t *txn) Emit(ctx context.Context, e *model.Event) error { return t.s.Emit(ctx, e) }
func (t *txn) GetConfig(ctx context.Context, g int64) (*model.WargameConfig, error) {
	return t.s.GetConfig(ctx, g)
}
func (t *txn) PutConfig(ctx context.Context, c *model.WargameConfig) error {
	return t.s.PutConfig(ctx, c)
}

func (s *Store) GetTerritory(ctx context.Context, guildID int64, id string) (*model.Territory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).territories[id]
	if !ok {
		return nil, &store.NotFoundError{Entity: "territory", Key: id}
	}
	return &row, nil
}

func (s *Store) ListTerritories(ctx context.Context, guildID int64) ([]model.Territory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.Territory, 0, len(t.territories))
	for _, v := range t.territories {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TerritoryID < out[j].TerritoryID })
	return out, nil
}

func (s *Store) PutTerritory(ctx context.Context, v *model.Territory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).territories[v.TerritoryID] = *v
	return nil
}

func (s *Store) ListAdjacencies(ctx context.Context, guildID int64) ([]model.TerritoryAdjacency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.TerritoryAdjacency, 0, len(t.adjacencies))
	for _, v := range t.adjacencies {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TerritoryAID != out[j].TerritoryAID {
			return out[i].TerritoryAID < out[j].TerritoryAID
		}
		return out[i].TerritoryBID < out[j].TerritoryBID
	})
	return out, nil
}

func (s *Store) PutAdjacency(ctx context.Context, v *model.TerritoryAdjacency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, b := v.TerritoryAID, v.TerritoryBID
	if a > b {
		a, b = b, a
	}
	v.TerritoryAID, v.TerritoryBID = a, b
	s.tenantFor(v.GuildID).adjacencies[pairKey(a, b)] = *v
	return nil
}

func (s *Store) GetUnit(ctx context.Context, guildID int64, id string) (*model.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).units[id]
	if !ok {
		return nil, &store.NotFoundError{Entity: "unit", Key: id}
	}
	return &row, nil
}

func (s *Store) ListUnits(ctx context.Context, guildID int64) ([]model.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.Unit, 0, len(t.units))
	for _, v := range t.units {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitID < out[j].UnitID })
	return out, nil
}

func (s *Store) ListUnitsByTerritory(ctx context.Context, guildID int64, territoryID string) ([]model.Unit, error) {
	all, err := s.ListUnits(ctx, guildID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Unit, 0)
	for _, u := range all {
		if u.CurrentTerritoryID == territoryID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) PutUnit(ctx context.Context, v *model.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).units[v.UnitID] = *v
	return nil
}

func (s *Store) DeleteUnit(ctx context.Context, guildID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	delete(t.units, id)
	delete(t.navalPos, id)
	return nil
}

func (s *Store) ListNavalPositions(ctx context.Context, guildID int64, unitID string) ([]model.NavalUnitPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	m := t.navalPos[unitID]
	out := make([]model.NavalUnitPosition, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TerritoryID < out[j].TerritoryID })
	return out, nil
}

func (s *Store) PutNavalPosition(ctx context.Context, v *model.NavalUnitPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(v.GuildID)
	if t.navalPos[v.UnitID] == nil {
		t.navalPos[v.UnitID] = make(map[string]model.NavalUnitPosition)
	}
	t.navalPos[v.UnitID][v.TerritoryID] = *v
	return nil
}

func (s *Store) ClearNavalPositions(ctx context.Context, guildID int64, unitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tenantFor(guildID).navalPos, unitID)
	return nil
}

func (s *Store) GetUnitType(ctx context.Context, guildID int64, name string) (*model.UnitType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).unitTypes[name]
	if !ok {
		return nil, &store.NotFoundError{Entity: "unit_type", Key: name}
	}
	return &row, nil
}

func (s *Store) ListUnitTypes(ctx context.Context, guildID int64) ([]model.UnitType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.UnitType, 0, len(t.unitTypes))
	for _, v := range t.unitTypes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeName < out[j].TypeName })
	return out, nil
}

func (s *Store) PutUnitType(ctx context.Context, v *model.UnitType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).unitTypes[v.TypeName] = *v
	return nil
}

func (s *Store) GetBuilding(ctx context.Context, guildID int64, id string) (*model.Building, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).buildings[id]
	if !ok {
		return nil, &store.NotFoundError{Entity: "building", Key: id}
	}
	return &row, nil
}

func (s *Store) ListBuildings(ctx context.Context, guildID int64) ([]model.Building, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.Building, 0, len(t.buildings))
	for _, v := range t.buildings {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BuildingID < out[j].BuildingID })
	return out, nil
}

func (s *Store) ListBuildingsByTerritory(ctx context.Context, guildID int64, territoryID string) ([]model.Building, error) {
	all, err := s.ListBuildings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Building, 0)
	for _, b := range all {
		if b.TerritoryID == territoryID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) PutBuilding(ctx context.Context, v *model.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).buildings[v.BuildingID] = *v
	return nil
}

func (s *Store) GetBuildingType(ctx context.Context, guildID int64, name string) (*model.BuildingType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).buildingTypes[name]
	if !ok {
		return nil, &store.NotFoundError{Entity: "building_type", Key: name}
	}
	return &row, nil
}

func (s *Store) ListBuildingTypes(ctx context.Context, guildID int64) ([]model.BuildingType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.BuildingType, 0, len(t.buildingTypes))
	for _, v := range t.buildingTypes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeName < out[j].TypeName })
	return out, nil
}

func (s *Store) PutBuildingType(ctx context.Context, v *model.BuildingType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).buildingTypes[v.TypeName] = *v
	return nil
}

func (s *Store) GetFaction(ctx context.Context, guildID int64, id string) (*model.Faction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).factions[id]
	if !ok {
		return nil, &store.NotFoundError{Entity: "faction", Key: id}
	}
	return &row, nil
}

func (s *Store) ListFactions(ctx context.Context, guildID int64) ([]model.Faction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.Faction, 0, len(t.factions))
	for _, v := range t.factions {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FactionID < out[j].FactionID })
	return out, nil
}

func (s *Store) PutFaction(ctx context.Context, v *model.Faction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).factions[v.FactionID] = *v
	return nil
}

func (s *Store) DeleteFaction(ctx context.Context, guildID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	delete(t.factions, id)
	delete(t.members, id)
	delete(t.permissions, id)
	return nil
}

func (s *Store) ListFactionMembers(ctx context.Context, guildID int64, factionID string) ([]model.FactionMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	m := t.members[factionID]
	out := make([]model.FactionMember, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CharacterID < out[j].CharacterID })
	return out, nil
}

func (s *Store) PutFactionMember(ctx context.Context, v *model.FactionMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(v.GuildID)
	if t.members[v.FactionID] == nil {
		t.members[v.FactionID] = make(map[string]model.FactionMember)
	}
	t.members[v.FactionID][v.CharacterID] = *v
	return nil
}

func (s *Store) DeleteFactionMember(ctx context.Context, guildID int64, factionID, characterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	delete(t.members[factionID], characterID)
	return nil
}

func permKey(characterID string, perm model.PermissionType) string {
	return characterID + "|" + string(perm)
}

func (s *Store) ListFactionPermissions(ctx context.Context, guildID int64, factionID string) ([]model.FactionPermission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	m := t.permissions[factionID]
	out := make([]model.FactionPermission, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CharacterID != out[j].CharacterID {
			return out[i].CharacterID < out[j].CharacterID
		}
		return out[i].PermissionType < out[j].PermissionType
	})
	return out, nil
}

func (s *Store) PutFactionPermission(ctx context.Context, v *model.FactionPermission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(v.GuildID)
	if t.permissions[v.FactionID] == nil {
		t.permissions[v.FactionID] = make(map[string]model.FactionPermission)
	}
	t.permissions[v.FactionID][permKey(v.CharacterID, v.PermissionType)] = *v
	return nil
}

func (s *Store) DeleteFactionPermission(ctx context.Context, guildID int64, factionID, characterID string, perm model.PermissionType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	delete(t.permissions[factionID], permKey(characterID, perm))
	return nil
}

func (s *Store) GetCharacter(ctx context.Context, guildID int64, id string) (*model.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).characters[id]
	if !ok {
		return nil, &store.NotFoundError{Entity: "character", Key: id}
	}
	return &row, nil
}

func (s *Store) ListCharacters(ctx context.Context, guildID int64) ([]model.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.Character, 0, len(t.characters))
	for _, v := range t.characters {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

func (s *Store) PutCharacter(ctx context.Context, v *model.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).characters[v.Identifier] = *v
	return nil
}

func (s *Store) GetOrder(ctx context.Context, guildID int64, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).orders[id]
	if !ok {
		return nil, &store.NotFoundError{Entity: "order", Key: id}
	}
	return &row, nil
}

func (s *Store) ListOrdersByTurn(ctx context.Context, guildID int64, turnNumber int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.Order, 0)
	for _, v := range t.orders {
		if v.TurnNumber == turnNumber {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

func (s *Store) PutOrder(ctx context.Context, v *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).orders[v.OrderID] = *v
	return nil
}

func (s *Store) GetAlliance(ctx context.Context, guildID int64, a, b string) (*model.Alliance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).alliances[pairKey(a, b)]
	if !ok {
		return nil, &store.NotFoundError{Entity: "alliance", Key: a + "/" + b}
	}
	return &row, nil
}

func (s *Store) ListAlliances(ctx context.Context, guildID int64) ([]model.Alliance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.Alliance, 0, len(t.alliances))
	for _, v := range t.alliances {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FactionAID != out[j].FactionAID {
			return out[i].FactionAID < out[j].FactionAID
		}
		return out[i].FactionBID < out[j].FactionBID
	})
	return out, nil
}

func (s *Store) PutAlliance(ctx context.Context, v *model.Alliance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, b := v.FactionAID, v.FactionBID
	if a > b {
		a, b = b, a
	}
	v.FactionAID, v.FactionBID = a, b
	s.tenantFor(v.GuildID).alliances[pairKey(a, b)] = *v
	return nil
}

func (s *Store) DeleteAlliance(ctx context.Context, guildID int64, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tenantFor(guildID).alliances, pairKey(a, b))
	return nil
}

func (s *Store) GetWar(ctx context.Context, guildID int64, id string) (*model.War, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).wars[id]
	if !ok {
		return nil, &store.NotFoundError{Entity: "war", Key: id}
	}
	return &row, nil
}

func (s *Store) ListWars(ctx context.Context, guildID int64) ([]model.War, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.War, 0, len(t.wars))
	for _, v := range t.wars {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarID < out[j].WarID })
	return out, nil
}

func (s *Store) ListActiveWarsForFaction(ctx context.Context, guildID int64, factionID string) ([]model.War, error) {
	s.mu.Lock()
	t := s.tenantFor(guildID)
	parts := t.participants
	s.mu.Unlock()

	var warIDs []string
	for warID, m := range parts {
		if _, ok := m[factionID]; ok {
			warIDs = append(warIDs, warID)
		}
	}
	all, err := s.ListWars(ctx, guildID)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(warIDs))
	for _, id := range warIDs {
		want[id] = true
	}
	out := make([]model.War, 0)
	for _, w := range all {
		if w.Status == model.WarActive && want[w.WarID] {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *Store) PutWar(ctx context.Context, v *model.War) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).wars[v.WarID] = *v
	return nil
}

func (s *Store) ListWarParticipants(ctx context.Context, guildID int64, warID string) ([]model.WarParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	m := t.participants[warID]
	out := make([]model.WarParticipant, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FactionID < out[j].FactionID })
	return out, nil
}

func (s *Store) PutWarParticipant(ctx context.Context, v *model.WarParticipant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(v.GuildID)
	if t.participants[v.WarID] == nil {
		t.participants[v.WarID] = make(map[string]model.WarParticipant)
	}
	t.participants[v.WarID][v.FactionID] = *v
	return nil
}

func (s *Store) GetPlayerResources(ctx context.Context, guildID int64, characterID string) (*model.PlayerResources, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).playerRes[characterID]
	if !ok {
		return &model.PlayerResources{GuildID: guildID, CharacterID: characterID}, nil
	}
	return &row, nil
}

func (s *Store) PutPlayerResources(ctx context.Context, v *model.PlayerResources) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).playerRes[v.CharacterID] = *v
	return nil
}

func (s *Store) GetFactionResources(ctx context.Context, guildID int64, factionID string) (*model.FactionResources, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.tenantFor(guildID).factionRes[factionID]
	if !ok {
		return &model.FactionResources{GuildID: guildID, FactionID: factionID}, nil
	}
	return &row, nil
}

func (s *Store) PutFactionResources(ctx context.Context, v *model.FactionResources) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).factionRes[v.FactionID] = *v
	return nil
}

func (s *Store) ListPendingTransfers(ctx context.Context, guildID int64, turnNumber int) ([]model.PendingTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.PendingTransfer, 0)
	for _, v := range t.transfers {
		if v.TurnNumber == turnNumber {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransferID < out[j].TransferID })
	return out, nil
}

func (s *Store) PutPendingTransfer(ctx context.Context, v *model.PendingTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).transfers[v.TransferID] = *v
	return nil
}

func (s *Store) DeletePendingTransfer(ctx context.Context, guildID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tenantFor(guildID).transfers, id)
	return nil
}

func (s *Store) ListSpiritNexuses(ctx context.Context, guildID int64) ([]model.SpiritNexus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	out := make([]model.SpiritNexus, 0, len(t.nexuses))
	for _, v := range t.nexuses {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TerritoryID < out[j].TerritoryID })
	return out, nil
}

func (s *Store) PutSpiritNexus(ctx context.Context, v *model.SpiritNexus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantFor(v.GuildID).nexuses[v.TerritoryID] = *v
	return nil
}

func (s *Store) Emit(ctx context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(e.GuildID)
	e.ID = int64(len(t.events) + 1)
	t.events = append(t.events, *e)
	return nil
}

func (s *Store) GetConfig(ctx context.Context, guildID int64) (*model.WargameConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tenantFor(guildID)
	if t.config == nil {
		return &model.WargameConfig{GuildID: guildID, MaxMovementStat: 8, TurnResolutionEnabled: true}, nil
	}
	cp := *t.config
	return &cp, nil
}

func (s *Store) PutConfig(ctx context.Context, c *model.WargameConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.tenantFor(c.GuildID).config = &cp
	return nil
}

var _ store.Store = (*Store)(nil)
var _ store.Txn = (*txn)(nil)
