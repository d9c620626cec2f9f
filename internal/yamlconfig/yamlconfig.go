// Package yamlconfig implements the guild config import/export contract
// of spec §6: a YAML document with one top-level key per entity
// collection, keyed by natural identifier rather than surrogate row id.
// Import validates every cross-reference before writing anything;
// export walks the Store and serializes back to the same document
// shape with every collection sorted by its natural identifier, so a
// round trip is exact modulo ordering (§8 property 8).
package yamlconfig

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

// Document is the full top-level shape of a guild config YAML file.
type Document struct {
	Wargame            WargameDoc             `yaml:"wargame"`
	Factions           []FactionDoc           `yaml:"factions,omitempty"`
	PlayerResources    []PlayerResourcesDoc   `yaml:"player_resources,omitempty"`
	Characters         []CharacterDoc         `yaml:"characters,omitempty"`
	Territories        []TerritoryDoc         `yaml:"territories,omitempty"`
	UnitTypes          []UnitTypeDoc          `yaml:"unit_types,omitempty"`
	BuildingTypes      []BuildingTypeDoc      `yaml:"building_types,omitempty"`
	Buildings          []BuildingDoc          `yaml:"buildings,omitempty"`
	Units              []UnitDoc              `yaml:"units,omitempty"`
	FactionResources   []FactionResourcesDoc  `yaml:"faction_resources,omitempty"`
	FactionPermissions []FactionPermissionDoc `yaml:"faction_permissions,omitempty"`
	SpiritNexuses      []SpiritNexusDoc       `yaml:"spirit_nexuses,omitempty"`
}

// WargameDoc mirrors model.WargameConfig.
type WargameDoc struct {
	CurrentTurn           int    `yaml:"current_turn"`
	TurnResolutionEnabled bool   `yaml:"turn_resolution_enabled"`
	MaxMovementStat       int    `yaml:"max_movement_stat"`
	GMReportsChannelID    string `yaml:"gm_reports_channel_id,omitempty"`
}

// FactionDoc mirrors model.Faction. Spend counters are runtime state,
// not config, and are intentionally omitted from the document.
type FactionDoc struct {
	FactionID      string `yaml:"faction_id"`
	Name           string `yaml:"name"`
	NationTag      string `yaml:"nation_tag,omitempty"`
	LeaderID       string `yaml:"leader_character_id,omitempty"`
	HasDeclaredWar bool   `yaml:"has_declared_war,omitempty"`
	CreatedTurn    int    `yaml:"created_turn,omitempty"`
}

// PlayerResourcesDoc mirrors model.PlayerResources, keyed by character.
type PlayerResourcesDoc struct {
	CharacterID string `yaml:"character_id"`
	Ore         int    `yaml:"ore,omitempty"`
	Lumber      int    `yaml:"lumber,omitempty"`
	Coal        int    `yaml:"coal,omitempty"`
	Rations     int    `yaml:"rations,omitempty"`
	Cloth       int    `yaml:"cloth,omitempty"`
	Platinum    int    `yaml:"platinum,omitempty"`
}

// CharacterDoc mirrors model.Character.
type CharacterDoc struct {
	Identifier           string `yaml:"identifier"`
	DisplayName          string `yaml:"display_name"`
	OwningUserID         string `yaml:"owning_user_id,omitempty"`
	OreProduction        int    `yaml:"ore_production,omitempty"`
	LumberProduction     int    `yaml:"lumber_production,omitempty"`
	CoalProduction       int    `yaml:"coal_production,omitempty"`
	RationsProduction    int    `yaml:"rations_production,omitempty"`
	ClothProduction      int    `yaml:"cloth_production,omitempty"`
	PlatinumProduction   int    `yaml:"platinum_production,omitempty"`
	RepresentedFactionID string `yaml:"represented_faction_id,omitempty"`
}

// TerritoryDoc mirrors model.Territory plus its adjacency list, folded
// in here so the document reads as a single graph rather than a
// separate edge list the importer has to cross-reference twice.
type TerritoryDoc struct {
	TerritoryID           string   `yaml:"territory_id"`
	TerrainType           string   `yaml:"terrain_type"`
	OreProduction         int      `yaml:"ore_production,omitempty"`
	LumberProduction      int      `yaml:"lumber_production,omitempty"`
	CoalProduction        int      `yaml:"coal_production,omitempty"`
	RationsProduction     int      `yaml:"rations_production,omitempty"`
	ClothProduction       int      `yaml:"cloth_production,omitempty"`
	PlatinumProduction    int      `yaml:"platinum_production,omitempty"`
	ControllerCharacterID string   `yaml:"controller_character_id,omitempty"`
	ControllerFactionID   string   `yaml:"controller_faction_id,omitempty"`
	OriginalNation        string   `yaml:"original_nation,omitempty"`
	VictoryPoints         int      `yaml:"victory_points,omitempty"`
	SiegeDefense          int      `yaml:"siege_defense,omitempty"`
	Keywords              []string `yaml:"keywords,omitempty"`
	AdjacentTo            []string `yaml:"adjacent_to,omitempty"`
}

// UnitTypeDoc mirrors model.UnitType.
type UnitTypeDoc struct {
	TypeName          string   `yaml:"type_name"`
	Movement          int      `yaml:"movement"`
	Attack            int      `yaml:"attack,omitempty"`
	Defense           int      `yaml:"defense,omitempty"`
	SiegeAttack       int      `yaml:"siege_attack,omitempty"`
	SiegeDefense      int      `yaml:"siege_defense,omitempty"`
	Size              int      `yaml:"size,omitempty"`
	Capacity          int      `yaml:"capacity,omitempty"`
	MaxOrganization   int      `yaml:"max_organization,omitempty"`
	UpkeepOre         int      `yaml:"upkeep_ore,omitempty"`
	UpkeepLumber      int      `yaml:"upkeep_lumber,omitempty"`
	UpkeepCoal        int      `yaml:"upkeep_coal,omitempty"`
	UpkeepRations     int      `yaml:"upkeep_rations,omitempty"`
	UpkeepCloth       int      `yaml:"upkeep_cloth,omitempty"`
	UpkeepPlatinum    int      `yaml:"upkeep_platinum,omitempty"`
	CostOre           int      `yaml:"cost_ore,omitempty"`
	CostLumber        int      `yaml:"cost_lumber,omitempty"`
	CostCoal          int      `yaml:"cost_coal,omitempty"`
	CostRations       int      `yaml:"cost_rations,omitempty"`
	CostCloth         int      `yaml:"cost_cloth,omitempty"`
	CostPlatinum      int      `yaml:"cost_platinum,omitempty"`
	Keywords          []string `yaml:"keywords,omitempty"`
	NationRestriction string   `yaml:"nation_restriction,omitempty"`
}

// BuildingTypeDoc mirrors model.BuildingType.
type BuildingTypeDoc struct {
	TypeName          string   `yaml:"type_name"`
	MaxDurability     int      `yaml:"max_durability"`
	UpkeepOre         int      `yaml:"upkeep_ore,omitempty"`
	UpkeepLumber      int      `yaml:"upkeep_lumber,omitempty"`
	UpkeepCoal        int      `yaml:"upkeep_coal,omitempty"`
	UpkeepRations     int      `yaml:"upkeep_rations,omitempty"`
	UpkeepCloth       int      `yaml:"upkeep_cloth,omitempty"`
	UpkeepPlatinum    int      `yaml:"upkeep_platinum,omitempty"`
	CostOre           int      `yaml:"cost_ore,omitempty"`
	CostLumber        int      `yaml:"cost_lumber,omitempty"`
	CostCoal          int      `yaml:"cost_coal,omitempty"`
	CostRations       int      `yaml:"cost_rations,omitempty"`
	CostCloth         int      `yaml:"cost_cloth,omitempty"`
	CostPlatinum      int      `yaml:"cost_platinum,omitempty"`
	Keywords          []string `yaml:"keywords,omitempty"`
	NationRestriction string   `yaml:"nation_restriction,omitempty"`
}

// BuildingDoc mirrors model.Building.
type BuildingDoc struct {
	BuildingID  string   `yaml:"building_id"`
	TypeName    string   `yaml:"type_name"`
	TerritoryID string   `yaml:"territory_id"`
	Durability  int      `yaml:"durability,omitempty"`
	Status      string   `yaml:"status,omitempty"`
	Age         int      `yaml:"age,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
}

// UnitDoc mirrors model.Unit.
type UnitDoc struct {
	UnitID               string   `yaml:"unit_id"`
	UnitType             string   `yaml:"unit_type"`
	CurrentTerritoryID   string   `yaml:"current_territory_id,omitempty"`
	OwnerCharacterID     string   `yaml:"owner_character_id,omitempty"`
	OwnerFactionID       string   `yaml:"owner_faction_id,omitempty"`
	CommanderCharacterID string   `yaml:"commander_character_id,omitempty"`
	Organization         int      `yaml:"organization,omitempty"`
	Status               string   `yaml:"status,omitempty"`
	Keywords             []string `yaml:"keywords,omitempty"`
}

// FactionResourcesDoc mirrors model.FactionResources.
type FactionResourcesDoc struct {
	FactionID string `yaml:"faction_id"`
	Ore       int    `yaml:"ore,omitempty"`
	Lumber    int    `yaml:"lumber,omitempty"`
	Coal      int    `yaml:"coal,omitempty"`
	Rations   int    `yaml:"rations,omitempty"`
	Cloth     int    `yaml:"cloth,omitempty"`
	Platinum  int    `yaml:"platinum,omitempty"`
}

// FactionPermissionDoc mirrors model.FactionPermission.
type FactionPermissionDoc struct {
	FactionID      string `yaml:"faction_id"`
	CharacterID    string `yaml:"character_id"`
	PermissionType string `yaml:"permission_type"`
}

// SpiritNexusDoc mirrors model.SpiritNexus.
type SpiritNexusDoc struct {
	TerritoryID   string `yaml:"territory_id"`
	RestoreAmount int    `yaml:"restore_amount"`
	PoleSwapTurn  int    `yaml:"pole_swap_turn,omitempty"`
}

// ValidationError reports every referential-integrity problem found
// during Import's first pass, so a config author sees the whole list
// at once instead of fixing one reference per re-run.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("yamlconfig: %d referential integrity problem(s), first: %s", len(e.Problems), e.Problems[0])
}

// Parse unmarshals raw YAML bytes into a Document.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("yamlconfig: parse: %w", err)
	}
	return &doc, nil
}

// Marshal serializes doc back to YAML bytes.
func Marshal(doc *Document) ([]byte, error) {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("yamlconfig: marshal: %w", err)
	}
	return b, nil
}

// identifierSets collects every natural identifier declared in doc, for
// the second validation pass to check references against.
type identifierSets struct {
	factions   map[string]bool
	characters map[string]bool
	territories map[string]bool
	unitTypes  map[string]bool
	buildingTypes map[string]bool
}

func collectIdentifiers(doc *Document) identifierSets {
	s := identifierSets{
		factions:      make(map[string]bool, len(doc.Factions)),
		characters:    make(map[string]bool, len(doc.Characters)),
		territories:   make(map[string]bool, len(doc.Territories)),
		unitTypes:     make(map[string]bool, len(doc.UnitTypes)),
		buildingTypes: make(map[string]bool, len(doc.BuildingTypes)),
	}
	for _, f := range doc.Factions {
		s.factions[f.FactionID] = true
	}
	for _, c := range doc.Characters {
		s.characters[c.Identifier] = true
	}
	for _, t := range doc.Territories {
		s.territories[t.TerritoryID] = true
	}
	for _, ut := range doc.UnitTypes {
		s.unitTypes[ut.TypeName] = true
	}
	for _, bt := range doc.BuildingTypes {
		s.buildingTypes[bt.TypeName] = true
	}
	return s
}

// Validate runs the two-pass referential integrity check described in
// spec §6: every reference to a faction, character, territory, unit
// type, or building type must resolve to a declared entity.
func Validate(doc *Document) error {
	s := collectIdentifiers(doc)
	var problems []string

	need := func(ok bool, format string, args ...interface{}) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	for _, t := range doc.Territories {
		if t.ControllerFactionID != "" {
			need(s.factions[t.ControllerFactionID], "territory %q references unknown faction %q", t.TerritoryID, t.ControllerFactionID)
		}
		if t.ControllerCharacterID != "" {
			need(s.characters[t.ControllerCharacterID], "territory %q references unknown character %q", t.TerritoryID, t.ControllerCharacterID)
		}
		for _, adj := range t.AdjacentTo {
			need(s.territories[adj], "territory %q adjacency references unknown territory %q", t.TerritoryID, adj)
		}
	}
	for _, c := range doc.Characters {
		if c.RepresentedFactionID != "" {
			need(s.factions[c.RepresentedFactionID], "character %q references unknown faction %q", c.Identifier, c.RepresentedFactionID)
		}
	}
	for _, f := range doc.Factions {
		if f.LeaderID != "" {
			need(s.characters[f.LeaderID], "faction %q references unknown leader character %q", f.FactionID, f.LeaderID)
		}
	}
	for _, r := range doc.PlayerResources {
		need(s.characters[r.CharacterID], "player_resources entry references unknown character %q", r.CharacterID)
	}
	for _, r := range doc.FactionResources {
		need(s.factions[r.FactionID], "faction_resources entry references unknown faction %q", r.FactionID)
	}
	for _, p := range doc.FactionPermissions {
		need(s.factions[p.FactionID], "faction_permission references unknown faction %q", p.FactionID)
		need(s.characters[p.CharacterID], "faction_permission references unknown character %q", p.CharacterID)
	}
	for _, b := range doc.Buildings {
		need(s.buildingTypes[b.TypeName], "building %q references unknown building type %q", b.BuildingID, b.TypeName)
		need(s.territories[b.TerritoryID], "building %q references unknown territory %q", b.BuildingID, b.TerritoryID)
	}
	for _, u := range doc.Units {
		need(s.unitTypes[u.UnitType], "unit %q references unknown unit type %q", u.UnitID, u.UnitType)
		if u.CurrentTerritoryID != "" {
			need(s.territories[u.CurrentTerritoryID], "unit %q references unknown territory %q", u.UnitID, u.CurrentTerritoryID)
		}
		if u.OwnerFactionID != "" {
			need(s.factions[u.OwnerFactionID], "unit %q references unknown faction %q", u.UnitID, u.OwnerFactionID)
		}
		if u.OwnerCharacterID != "" {
			need(s.characters[u.OwnerCharacterID], "unit %q references unknown character %q", u.UnitID, u.OwnerCharacterID)
		}
	}
	for _, n := range doc.SpiritNexuses {
		need(s.territories[n.TerritoryID], "spirit_nexus references unknown territory %q", n.TerritoryID)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Import validates doc, then writes every entity to s inside one
// transaction scoped to guildID. Writes are upserts keyed by natural
// identifier, matching spec §6's "idempotent" requirement.
func Import(ctx context.Context, s store.Store, guildID int64, doc *Document) error {
	if err := Validate(doc); err != nil {
		return err
	}

	tx, err := s.Begin(ctx, guildID)
	if err != nil {
		return fmt.Errorf("yamlconfig: begin: %w", err)
	}
	defer tx.Rollback()

	cfg := &model.WargameConfig{
		GuildID:               guildID,
		CurrentTurn:           doc.Wargame.CurrentTurn,
		TurnResolutionEnabled: doc.Wargame.TurnResolutionEnabled,
		MaxMovementStat:       doc.Wargame.MaxMovementStat,
		GMReportsChannelID:    doc.Wargame.GMReportsChannelID,
	}
	if err := tx.PutConfig(ctx, cfg); err != nil {
		return fmt.Errorf("yamlconfig: config: %w", err)
	}

	for _, t := range doc.Territories {
		row := &model.Territory{
			GuildID: guildID, TerritoryID: t.TerritoryID, TerrainType: t.TerrainType,
			OreProduction: t.OreProduction, LumberProduction: t.LumberProduction,
			CoalProduction: t.CoalProduction, RationsProduction: t.RationsProduction,
			ClothProduction: t.ClothProduction, PlatinumProduction: t.PlatinumProduction,
			ControllerCharacterID: t.ControllerCharacterID, ControllerFactionID: t.ControllerFactionID,
			OriginalNation: t.OriginalNation, VictoryPoints: t.VictoryPoints,
			SiegeDefense: t.SiegeDefense, Keywords: t.Keywords,
		}
		if err := tx.PutTerritory(ctx, row); err != nil {
			return fmt.Errorf("yamlconfig: territory %s: %w", t.TerritoryID, err)
		}
	}
	for _, t := range doc.Territories {
		for _, adj := range t.AdjacentTo {
			a, b := t.TerritoryID, adj
			if a > b {
				a, b = b, a
			}
			if err := tx.PutAdjacency(ctx, &model.TerritoryAdjacency{GuildID: guildID, TerritoryAID: a, TerritoryBID: b}); err != nil {
				return fmt.Errorf("yamlconfig: adjacency %s-%s: %w", a, b, err)
			}
		}
	}
	for _, ut := range doc.UnitTypes {
		row := &model.UnitType{
			GuildID: guildID, TypeName: ut.TypeName, Movement: ut.Movement, Attack: ut.Attack,
			Defense: ut.Defense, SiegeAttack: ut.SiegeAttack, SiegeDefense: ut.SiegeDefense,
			Size: ut.Size, Capacity: ut.Capacity, MaxOrganization: ut.MaxOrganization,
			UpkeepOre: ut.UpkeepOre, UpkeepLumber: ut.UpkeepLumber, UpkeepCoal: ut.UpkeepCoal,
			UpkeepRations: ut.UpkeepRations, UpkeepCloth: ut.UpkeepCloth, UpkeepPlatinum: ut.UpkeepPlatinum,
			CostOre: ut.CostOre, CostLumber: ut.CostLumber, CostCoal: ut.CostCoal,
			CostRations: ut.CostRations, CostCloth: ut.CostCloth, CostPlatinum: ut.CostPlatinum,
			Keywords: ut.Keywords, NationRestriction: ut.NationRestriction,
		}
		if err := tx.PutUnitType(ctx, row); err != nil {
			return fmt.Errorf("yamlconfig: unit_type %s: %w", ut.TypeName, err)
		}
	}
	for _, bt := range doc.BuildingTypes {
		row := &model.BuildingType{
			GuildID: guildID, TypeName: bt.TypeName, MaxDurability: bt.MaxDurability,
			UpkeepOre: bt.UpkeepOre, UpkeepLumber: bt.UpkeepLumber, UpkeepCoal: bt.UpkeepCoal,
			UpkeepRations: bt.UpkeepRations, UpkeepCloth: bt.UpkeepCloth, UpkeepPlatinum: bt.UpkeepPlatinum,
			CostOre: bt.CostOre, CostLumber: bt.CostLumber, CostCoal: bt.CostCoal,
			CostRations: bt.CostRations, CostCloth: bt.CostCloth, CostPlatinum: bt.CostPlatinum,
			Keywords: bt.Keywords, NationRestriction: bt.NationRestriction,
		}
		if err := tx.PutBuildingType(ctx, row); err != nil {
			return fmt.Errorf("yamlconfig: building_type %s: %w", bt.TypeName, err)
		}
	}
	for _, f := range doc.Factions {
		row := &model.Faction{
			GuildID: guildID, FactionID: f.FactionID, Name: f.Name, NationTag: f.NationTag,
			LeaderID: f.LeaderID, HasDeclaredWar: f.HasDeclaredWar, CreatedTurn: f.CreatedTurn,
		}
		if err := tx.PutFaction(ctx, row); err != nil {
			return fmt.Errorf("yamlconfig: faction %s: %w", f.FactionID, err)
		}
	}
	for _, c := range doc.Characters {
		row := &model.Character{
			GuildID: guildID, Identifier: c.Identifier, DisplayName: c.DisplayName,
			OwningUserID: c.OwningUserID, OreProduction: c.OreProduction, LumberProduction: c.LumberProduction,
			CoalProduction: c.CoalProduction, RationsProduction: c.RationsProduction,
			ClothProduction: c.ClothProduction, PlatinumProduction: c.PlatinumProduction,
			RepresentedFactionID: c.RepresentedFactionID,
		}
		if err := tx.PutCharacter(ctx, row); err != nil {
			return fmt.Errorf("yamlconfig: character %s: %w", c.Identifier, err)
		}
	}
	for _, b := range doc.Buildings {
		row := &model.Building{
			GuildID: guildID, BuildingID: b.BuildingID, TypeName: b.TypeName, TerritoryID: b.TerritoryID,
			Durability: b.Durability, Status: model.BuildingStatus(orDefault(b.Status, string(model.BuildingActive))),
			Age: b.Age, Keywords: b.Keywords,
		}
		if err := tx.PutBuilding(ctx, row); err != nil {
			return fmt.Errorf("yamlconfig: building %s: %w", b.BuildingID, err)
		}
	}
	for _, u := range doc.Units {
		row := &model.Unit{
			GuildID: guildID, UnitID: u.UnitID, UnitType: u.UnitType,
			CurrentTerritoryID: u.CurrentTerritoryID, OwnerCharacterID: u.OwnerCharacterID,
			OwnerFactionID: u.OwnerFactionID, CommanderCharacterID: u.CommanderCharacterID,
			Organization: u.Organization, Status: model.UnitStatus(orDefault(u.Status, string(model.UnitActive))),
			Keywords: u.Keywords,
		}
		if err := tx.PutUnit(ctx, row); err != nil {
			return fmt.Errorf("yamlconfig: unit %s: %w", u.UnitID, err)
		}
	}
	for _, r := range doc.PlayerResources {
		row := &model.PlayerResources{
			GuildID: guildID, CharacterID: r.CharacterID, Ore: r.Ore, Lumber: r.Lumber,
			Coal: r.Coal, Rations: r.Rations, Cloth: r.Cloth, Platinum: r.Platinum,
		}
		if err := tx.PutPlayerResources(ctx, row); err != nil {
			return fmt.Errorf("yamlconfig: player_resources %s: %w", r.CharacterID, err)
		}
	}
	for _, r := range doc.FactionResources {
		row := &model.FactionResources{
			GuildID: guildID, FactionID: r.FactionID, Ore: r.Ore, Lumber: r.Lumber,
			Coal: r.Coal, Rations: r.Rations, Cloth: r.Cloth, Platinum: r.Platinum,
		}
		if err := tx.PutFactionResources(ctx, row); err != nil {
			return fmt.Errorf("yamlconfig: faction_resources %s: %w", r.FactionID, err)
		}
	}
	for _, p := range doc.FactionPermissions {
		row := &model.FactionPermission{
			GuildID: guildID, FactionID: p.FactionID, CharacterID: p.CharacterID,
			PermissionType: model.PermissionType(p.PermissionType),
		}
		if err := tx.PutFactionPermission(ctx, row); err != nil {
			return fmt.Errorf("yamlconfig: faction_permission %s/%s: %w", p.FactionID, p.CharacterID, err)
		}
	}
	for _, n := range doc.SpiritNexuses {
		row := &model.SpiritNexus{
			GuildID: guildID, TerritoryID: n.TerritoryID, RestoreAmount: n.RestoreAmount,
			PoleSwapTurn: n.PoleSwapTurn,
		}
		if err := tx.PutSpiritNexus(ctx, row); err != nil {
			return fmt.Errorf("yamlconfig: spirit_nexus %s: %w", n.TerritoryID, err)
		}
	}

	if err := tx.(store.Txn).Commit(); err != nil {
		return fmt.Errorf("yamlconfig: commit: %w", err)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Export walks every collection in s for guildID and serializes it back
// to a Document, sorting each collection by natural identifier so a
// round trip through Import produces a byte-identical Marshal output.
func Export(ctx context.Context, s store.Store, guildID int64) (*Document, error) {
	cfg, err := s.GetConfig(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("yamlconfig: config: %w", err)
	}
	doc := &Document{
		Wargame: WargameDoc{
			CurrentTurn:           cfg.CurrentTurn,
			TurnResolutionEnabled: cfg.TurnResolutionEnabled,
			MaxMovementStat:       cfg.MaxMovementStat,
			GMReportsChannelID:    cfg.GMReportsChannelID,
		},
	}

	territories, err := s.ListTerritories(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("yamlconfig: territories: %w", err)
	}
	adjacencies, err := s.ListAdjacencies(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("yamlconfig: adjacencies: %w", err)
	}
	adjBy := make(map[string][]string, len(territories))
	for _, a := range adjacencies {
		adjBy[a.TerritoryAID] = append(adjBy[a.TerritoryAID], a.TerritoryBID)
		adjBy[a.TerritoryBID] = append(adjBy[a.TerritoryBID], a.TerritoryAID)
	}
	for _, t := range territories {
		adj := adjBy[t.TerritoryID]
		sort.Strings(adj)
		doc.Territories = append(doc.Territories, TerritoryDoc{
			TerritoryID: t.TerritoryID, TerrainType: t.TerrainType, OreProduction: t.OreProduction,
			LumberProduction: t.LumberProduction, CoalProduction: t.CoalProduction,
			RationsProduction: t.RationsProduction, ClothProduction: t.ClothProduction,
			PlatinumProduction: t.PlatinumProduction, ControllerCharacterID: t.ControllerCharacterID,
			ControllerFactionID: t.ControllerFactionID, OriginalNation: t.OriginalNation,
			VictoryPoints: t.VictoryPoints, SiegeDefense: t.SiegeDefense, Keywords: t.Keywords,
			AdjacentTo: adj,
		})
	}
	sort.Slice(doc.Territories, func(i, j int) bool { return doc.Territories[i].TerritoryID < doc.Territories[j].TerritoryID })

	unitTypes, err := s.ListUnitTypes(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("yamlconfig: unit_types: %w", err)
	}
	for _, ut := range unitTypes {
		doc.UnitTypes = append(doc.UnitTypes, UnitTypeDoc{
			TypeName: ut.TypeName, Movement: ut.Movement, Attack: ut.Attack, Defense: ut.Defense,
			SiegeAttack: ut.SiegeAttack, SiegeDefense: ut.SiegeDefense, Size: ut.Size,
			Capacity: ut.Capacity, MaxOrganization: ut.MaxOrganization, UpkeepOre: ut.UpkeepOre,
			UpkeepLumber: ut.UpkeepLumber, UpkeepCoal: ut.UpkeepCoal, UpkeepRations: ut.UpkeepRations,
			UpkeepCloth: ut.UpkeepCloth, UpkeepPlatinum: ut.UpkeepPlatinum, CostOre: ut.CostOre,
			CostLumber: ut.CostLumber, CostCoal: ut.CostCoal, CostRations: ut.CostRations,
			CostCloth: ut.CostCloth, CostPlatinum: ut.CostPlatinum, Keywords: ut.Keywords,
			NationRestriction: ut.NationRestriction,
		})
	}
	sort.Slice(doc.UnitTypes, func(i, j int) bool { return doc.UnitTypes[i].TypeName < doc.UnitTypes[j].TypeName })

	buildingTypes, err := s.ListBuildingTypes(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("yamlconfig: building_types: %w", err)
	}
	for _, bt := range buildingTypes {
		doc.BuildingTypes = append(doc.BuildingTypes, BuildingTypeDoc{
			TypeName: bt.TypeName, MaxDurability: bt.MaxDurability, UpkeepOre: bt.UpkeepOre,
			UpkeepLumber: bt.UpkeepLumber, UpkeepCoal: bt.UpkeepCoal, UpkeepRations: bt.UpkeepRations,
			UpkeepCloth: bt.UpkeepCloth, UpkeepPlatinum: bt.UpkeepPlatinum, CostOre: bt.CostOre,
			CostLumber: bt.CostLumber, CostCoal: bt.CostCoal, CostRations: bt.CostRations,
			CostCloth: bt.CostCloth, CostPlatinum: bt.CostPlatinum, Keywords: bt.Keywords,
			NationRestriction: bt.NationRestriction,
		})
	}
	sort.Slice(doc.BuildingTypes, func(i, j int) bool { return doc.BuildingTypes[i].TypeName < doc.BuildingTypes[j].TypeName })

	factions, err := s.ListFactions(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("yamlconfig: factions: %w", err)
	}
	for _, f := range factions {
		doc.Factions = append(doc.Factions, FactionDoc{
			FactionID: f.FactionID, Name: f.Name, NationTag: f.NationTag, LeaderID: f.LeaderID,
			HasDeclaredWar: f.HasDeclaredWar, CreatedTurn: f.CreatedTurn,
		})
		res, err := s.GetFactionResources(ctx, guildID, f.FactionID)
		if err != nil {
			return nil, fmt.Errorf("yamlconfig: faction_resources %s: %w", f.FactionID, err)
		}
		doc.FactionResources = append(doc.FactionResources, FactionResourcesDoc{
			FactionID: f.FactionID, Ore: res.Ore, Lumber: res.Lumber, Coal: res.Coal,
			Rations: res.Rations, Cloth: res.Cloth, Platinum: res.Platinum,
		})
		perms, err := s.ListFactionPermissions(ctx, guildID, f.FactionID)
		if err != nil {
			return nil, fmt.Errorf("yamlconfig: faction_permissions %s: %w", f.FactionID, err)
		}
		for _, p := range perms {
			doc.FactionPermissions = append(doc.FactionPermissions, FactionPermissionDoc{
				FactionID: p.FactionID, CharacterID: p.CharacterID, PermissionType: string(p.PermissionType),
			})
		}
	}
	sort.Slice(doc.Factions, func(i, j int) bool { return doc.Factions[i].FactionID < doc.Factions[j].FactionID })
	sort.Slice(doc.FactionResources, func(i, j int) bool { return doc.FactionResources[i].FactionID < doc.FactionResources[j].FactionID })
	sort.Slice(doc.FactionPermissions, func(i, j int) bool {
		if doc.FactionPermissions[i].FactionID != doc.FactionPermissions[j].FactionID {
			return doc.FactionPermissions[i].FactionID < doc.FactionPermissions[j].FactionID
		}
		if doc.FactionPermissions[i].CharacterID != doc.FactionPermissions[j].CharacterID {
			return doc.FactionPermissions[i].CharacterID < doc.FactionPermissions[j].CharacterID
		}
		return doc.FactionPermissions[i].PermissionType < doc.FactionPermissions[j].PermissionType
	})

	characters, err := s.ListCharacters(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("yamlconfig: characters: %w", err)
	}
	for _, c := range characters {
		doc.Characters = append(doc.Characters, CharacterDoc{
			Identifier: c.Identifier, DisplayName: c.DisplayName, OwningUserID: c.OwningUserID,
			OreProduction: c.OreProduction, LumberProduction: c.LumberProduction,
			CoalProduction: c.CoalProduction, RationsProduction: c.RationsProduction,
			ClothProduction: c.ClothProduction, PlatinumProduction: c.PlatinumProduction,
			RepresentedFactionID: c.RepresentedFactionID,
		})
		res, err := s.GetPlayerResources(ctx, guildID, c.Identifier)
		if err != nil {
			return nil, fmt.Errorf("yamlconfig: player_resources %s: %w", c.Identifier, err)
		}
		doc.PlayerResources = append(doc.PlayerResources, PlayerResourcesDoc{
			CharacterID: c.Identifier, Ore: res.Ore, Lumber: res.Lumber, Coal: res.Coal,
			Rations: res.Rations, Cloth: res.Cloth, Platinum: res.Platinum,
		})
	}
	sort.Slice(doc.Characters, func(i, j int) bool { return doc.Characters[i].Identifier < doc.Characters[j].Identifier })
	sort.Slice(doc.PlayerResources, func(i, j int) bool { return doc.PlayerResources[i].CharacterID < doc.PlayerResources[j].CharacterID })

	for _, t := range territories {
		buildings, err := s.ListBuildingsByTerritory(ctx, guildID, t.TerritoryID)
		if err != nil {
			return nil, fmt.Errorf("yamlconfig: buildings in %s: %w", t.TerritoryID, err)
		}
		for _, b := range buildings {
			doc.Buildings = append(doc.Buildings, BuildingDoc{
				BuildingID: b.BuildingID, TypeName: b.TypeName, TerritoryID: b.TerritoryID,
				Durability: b.Durability, Status: string(b.Status), Age: b.Age, Keywords: b.Keywords,
			})
		}
	}
	sort.Slice(doc.Buildings, func(i, j int) bool { return doc.Buildings[i].BuildingID < doc.Buildings[j].BuildingID })

	units, err := s.ListUnits(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("yamlconfig: units: %w", err)
	}
	for _, u := range units {
		doc.Units = append(doc.Units, UnitDoc{
			UnitID: u.UnitID, UnitType: u.UnitType, CurrentTerritoryID: u.CurrentTerritoryID,
			OwnerCharacterID: u.OwnerCharacterID, OwnerFactionID: u.OwnerFactionID,
			CommanderCharacterID: u.CommanderCharacterID, Organization: u.Organization,
			Status: string(u.Status), Keywords: u.Keywords,
		})
	}
	sort.Slice(doc.Units, func(i, j int) bool { return doc.Units[i].UnitID < doc.Units[j].UnitID })

	nexuses, err := s.ListSpiritNexuses(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("yamlconfig: spirit_nexuses: %w", err)
	}
	for _, n := range nexuses {
		doc.SpiritNexuses = append(doc.SpiritNexuses, SpiritNexusDoc{
			TerritoryID: n.TerritoryID, RestoreAmount: n.RestoreAmount, PoleSwapTurn: n.PoleSwapTurn,
		})
	}
	sort.Slice(doc.SpiritNexuses, func(i, j int) bool { return doc.SpiritNexuses[i].TerritoryID < doc.SpiritNexuses[j].TerritoryID })

	return doc, nil
}
