// Package sqlite is a store.Store adapter over github.com/mattn/go-sqlite3,
// used by wargamectl's --store=sqlite local/dev mode and by tests that
// want real SQL semantics without a Postgres instance. It mirrors
// internal/store/postgres table-for-table; the one structural
// difference is that SQLite has no array column type, so keyword/path
// slices are stored as a JSON-encoded TEXT column instead of postgres
// TEXT[].
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type core struct{ db dbtx }

// Store is the sqlite-backed store.Store implementation.
type Store struct {
	core
	raw *sql.DB
}

// Open opens (creating if absent) a SQLite database file at path. It
// does not apply schema.sql; the tables must already exist in the file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=off&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1) // go-sqlite3 + WAL: one writer at a time, matches §5's single-writer invariant
	return &Store{core: core{db: db}, raw: db}, nil
}

func (s *Store) Begin(ctx context.Context, guildID int64) (store.Txn, error) {
	tx, err := s.raw.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	return &txn{core: core{db: tx}, tx: tx}, nil
}

type txn struct {
	core
	tx *sql.Tx
}

func (t *txn) Commit() error                                               { return classify(t.tx.Commit()) }
func (t *txn) Rollback() error                                             { return classify(t.tx.Rollback()) }
func (t *txn) Begin(ctx context.Context, guildID int64) (store.Txn, error) { return t, nil }

func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &store.NotFoundError{Entity: "row", Key: ""}
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return &store.TransientError{Op: "sqlite", Err: err}
	}
	// mattn/go-sqlite3's Error carries a numeric Code; SQLITE_BUSY/LOCKED are
	// the retry-eligible cases under the single-writer WAL setup above.
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return &store.TransientError{Op: "sqlite", Err: err}
		case sqlite3.ErrConstraint:
			return &store.ConflictError{Reason: se.Error()}
		}
	}
	return fmt.Errorf("sqlite: %w", err)
}

func jsonArr(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func parseArr(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func scanTime(ns sql.NullTime) time.Time {
	if ns.Valid {
		return ns.Time
	}
	return time.Time{}
}

// --- Territory ---

func (c *core) GetTerritory(ctx context.Context, guildID int64, id string) (*model.Territory, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT territory_id, terrain_type, ore_production, lumber_production,
		       coal_production, rations_production, cloth_production,
		       platinum_production, controller_character_id, controller_faction_id,
		       original_nation, victory_points, siege_defense, keywords
		FROM territories WHERE guild_id = ? AND territory_id = ?`, guildID, id)
	t := &model.Territory{GuildID: guildID}
	var kw string
	err := row.Scan(&t.TerritoryID, &t.TerrainType, &t.OreProduction, &t.LumberProduction,
		&t.CoalProduction, &t.RationsProduction, &t.ClothProduction, &t.PlatinumProduction,
		&t.ControllerCharacterID, &t.ControllerFactionID, &t.OriginalNation, &t.VictoryPoints,
		&t.SiegeDefense, &kw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Entity: "territory", Key: id}
	}
	if err != nil {
		return nil, classify(err)
	}
	t.Keywords = parseArr(kw)
	return t, nil
}

func (c *core) ListTerritories(ctx context.Context, guildID int64) ([]model.Territory, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT territory_id, terrain_type, ore_production, lumber_production,
		       coal_production, rations_production, cloth_production,
		       platinum_production, controller_character_id, controller_faction_id,
		       original_nation, victory_points, siege_defense, keywords
		FROM territories WHERE guild_id = ? ORDER BY territory_id`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.Territory
	for rows.Next() {
		t := model.Territory{GuildID: guildID}
		var kw string
		if err := rows.Scan(&t.TerritoryID, &t.TerrainType, &t.OreProduction, &t.LumberProduction,
			&t.CoalProduction, &t.RationsProduction, &t.ClothProduction, &t.PlatinumProduction,
			&t.ControllerCharacterID, &t.ControllerFactionID, &t.OriginalNation, &t.VictoryPoints,
			&t.SiegeDefense, &kw); err != nil {
			return nil, classify(err)
		}
		t.Keywords = parseArr(kw)
		out = append(out, t)
	}
	return out, classify(rows.Err())
}

func (c *core) PutTerritory(ctx context.Context, t *model.Territory) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO territories (guild_id, territory_id, terrain_type, ore_production,
			lumber_production, coal_production, rations_production, cloth_production,
			platinum_production, controller_character_id, controller_faction_id,
			original_nation, victory_points, siege_defense, keywords)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (guild_id, territory_id) DO UPDATE SET
			terrain_type=excluded.terrain_type, ore_production=excluded.ore_production,
			lumber_production=excluded.lumber_production, coal_production=excluded.coal_production,
			rations_production=excluded.rations_production, cloth_production=excluded.cloth_production,
			platinum_production=excluded.platinum_production,
			controller_character_id=excluded.controller_character_id,
			controller_faction_id=excluded.controller_faction_id,
			original_nation=excluded.original_nation, victory_points=excluded.victory_points,
			siege_defense=excluded.siege_defense, keywords=excluded.keywords`,
		t.GuildID, t.TerritoryID, t.TerrainType, t.OreProduction, t.LumberProduction,
		t.CoalProduction, t.RationsProduction, t.ClothProduction, t.PlatinumProduction,
		t.ControllerCharacterID, t.ControllerFactionID, t.OriginalNation, t.VictoryPoints,
		t.SiegeDefense, jsonArr(t.Keywords))
	return classify(err)
}

func (c *core) ListAdjacencies(ctx context.Context, guildID int64) ([]model.TerritoryAdjacency, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT territory_a_id, territory_b_id FROM territory_adjacencies
		WHERE guild_id = ? ORDER BY territory_a_id, territory_b_id`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.TerritoryAdjacency
	for rows.Next() {
		a := model.TerritoryAdjacency{GuildID: guildID}
		if err := rows.Scan(&a.TerritoryAID, &a.TerritoryBID); err != nil {
			return nil, classify(err)
		}
		out = append(out, a)
	}
	return out, classify(rows.Err())
}

func (c *core) PutAdjacency(ctx context.Context, a *model.TerritoryAdjacency) error {
	x, y := a.TerritoryAID, a.TerritoryBID
	if x > y {
		x, y = y, x
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO territory_adjacencies (guild_id, territory_a_id, territory_b_id) VALUES (?,?,?)
		ON CONFLICT (guild_id, territory_a_id, territory_b_id) DO NOTHING`, a.GuildID, x, y)
	return classify(err)
}

// --- Unit ---

const unitSelect = `unit_id, unit_type, current_territory_id, owner_character_id,
	owner_faction_id, commander_character_id, commander_assigned_turn, movement, attack,
	defense, siege_attack, siege_defense, size, capacity, organization, max_organization,
	status, encircled, upkeep_ore, upkeep_lumber, upkeep_coal, upkeep_rations, upkeep_cloth,
	upkeep_platinum, keywords`

func scanUnit(row interface{ Scan(...interface{}) error }, guildID int64) (*model.Unit, error) {
	u := &model.Unit{GuildID: guildID}
	var kw string
	err := row.Scan(&u.UnitID, &u.UnitType, &u.CurrentTerritoryID, &u.OwnerCharacterID,
		&u.OwnerFactionID, &u.CommanderCharacterID, &u.CommanderAssignedTurn, &u.Movement,
		&u.Attack, &u.Defense, &u.SiegeAttack, &u.SiegeDefense, &u.Size, &u.Capacity,
		&u.Organization, &u.MaxOrganization, &u.Status, &u.Encircled, &u.UpkeepOre,
		&u.UpkeepLumber, &u.UpkeepCoal, &u.UpkeepRations, &u.UpkeepCloth, &u.UpkeepPlatinum, &kw)
	if err == nil {
		u.Keywords = parseArr(kw)
	}
	return u, err
}

func (c *core) GetUnit(ctx context.Context, guildID int64, id string) (*model.Unit, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+unitSelect+` FROM units WHERE guild_id=? AND unit_id=?`, guildID, id)
	u, err := scanUnit(row, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Entity: "unit", Key: id}
	}
	if err != nil {
		return nil, classify(err)
	}
	return u, nil
}

func (c *core) ListUnits(ctx context.Context, guildID int64) ([]model.Unit, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+unitSelect+` FROM units WHERE guild_id=? ORDER BY unit_id`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.Unit
	for rows.Next() {
		u, err := scanUnit(rows, guildID)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *u)
	}
	return out, classify(rows.Err())
}

func (c *core) ListUnitsByTerritory(ctx context.Context, guildID int64, territoryID string) ([]model.Unit, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+unitSelect+` FROM units
		WHERE guild_id=? AND current_territory_id=? ORDER BY unit_id`, guildID, territoryID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.Unit
	for rows.Next() {
		u, err := scanUnit(rows, guildID)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *u)
	}
	return out, classify(rows.Err())
}

func (c *core) PutUnit(ctx context.Context, u *model.Unit) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO units (guild_id, `+unitSelect+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (guild_id, unit_id) DO UPDATE SET
			unit_type=excluded.unit_type, current_territory_id=excluded.current_territory_id,
			owner_character_id=excluded.owner_character_id, owner_faction_id=excluded.owner_faction_id,
			commander_character_id=excluded.commander_character_id,
			commander_assigned_turn=excluded.commander_assigned_turn, movement=excluded.movement,
			attack=excluded.attack, defense=excluded.defense, siege_attack=excluded.siege_attack,
			siege_defense=excluded.siege_defense, size=excluded.size, capacity=excluded.capacity,
			organization=excluded.organization, max_organization=excluded.max_organization,
			status=excluded.status, encircled=excluded.encircled, upkeep_ore=excluded.upkeep_ore,
			upkeep_lumber=excluded.upkeep_lumber, upkeep_coal=excluded.upkeep_coal,
			upkeep_rations=excluded.upkeep_rations, upkeep_cloth=excluded.upkeep_cloth,
			upkeep_platinum=excluded.upkeep_platinum, keywords=excluded.keywords`,
		u.GuildID, u.UnitID, u.UnitType, u.CurrentTerritoryID, u.OwnerCharacterID,
		u.OwnerFactionID, u.CommanderCharacterID, u.CommanderAssignedTurn, u.Movement, u.Attack,
		u.Defense, u.SiegeAttack, u.SiegeDefense, u.Size, u.Capacity, u.Organization,
		u.MaxOrganization, u.Status, u.Encircled, u.UpkeepOre, u.UpkeepLumber, u.UpkeepCoal,
		u.UpkeepRations, u.UpkeepCloth, u.UpkeepPlatinum, jsonArr(u.Keywords))
	return classify(err)
}

func (c *core) DeleteUnit(ctx context.Context, guildID int64, id string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM naval_unit_positions WHERE guild_id=? AND unit_id=?`, guildID, id); err != nil {
		return classify(err)
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM units WHERE guild_id=? AND unit_id=?`, guildID, id)
	return classify(err)
}

func (c *core) ListNavalPositions(ctx context.Context, guildID int64, unitID string) ([]model.NavalUnitPosition, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT territory_id FROM naval_unit_positions WHERE guild_id=? AND unit_id=? ORDER BY territory_id`,
		guildID, unitID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.NavalUnitPosition
	for rows.Next() {
		p := model.NavalUnitPosition{GuildID: guildID, UnitID: unitID}
		if err := rows.Scan(&p.TerritoryID); err != nil {
			return nil, classify(err)
		}
		out = append(out, p)
	}
	return out, classify(rows.Err())
}

func (c *core) PutNavalPosition(ctx context.Context, p *model.NavalUnitPosition) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO naval_unit_positions (guild_id, unit_id, territory_id) VALUES (?,?,?)
		ON CONFLICT (guild_id, unit_id, territory_id) DO NOTHING`, p.GuildID, p.UnitID, p.TerritoryID)
	return classify(err)
}

func (c *core) ClearNavalPositions(ctx context.Context, guildID int64, unitID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM naval_unit_positions WHERE guild_id=? AND unit_id=?`, guildID, unitID)
	return classify(err)
}

const unitTypeSelect = `type_name, movement, attack, defense, siege_attack, siege_defense,
	size, capacity, max_organization, upkeep_ore, upkeep_lumber, upkeep_coal, upkeep_rations,
	upkeep_cloth, upkeep_platinum, cost_ore, cost_lumber, cost_coal, cost_rations, cost_cloth,
	cost_platinum, keywords, nation_restriction`

func scanUnitType(row interface{ Scan(...interface{}) error }, guildID int64) (*model.UnitType, error) {
	t := &model.UnitType{GuildID: guildID}
	var kw string
	err := row.Scan(&t.TypeName, &t.Movement, &t.Attack, &t.Defense, &t.SiegeAttack, &t.SiegeDefense,
		&t.Size, &t.Capacity, &t.MaxOrganization, &t.UpkeepOre, &t.UpkeepLumber, &t.UpkeepCoal,
		&t.UpkeepRations, &t.UpkeepCloth, &t.UpkeepPlatinum, &t.CostOre, &t.CostLumber, &t.CostCoal,
		&t.CostRations, &t.CostCloth, &t.CostPlatinum, &kw, &t.NationRestriction)
	if err == nil {
		t.Keywords = parseArr(kw)
	}
	return t, err
}

func (c *core) GetUnitType(ctx context.Context, guildID int64, name string) (*model.UnitType, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+unitTypeSelect+` FROM unit_types WHERE guild_id=? AND type_name=?`, guildID, name)
	t, err := scanUnitType(row, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Entity: "unit_type", Key: name}
	}
	if err != nil {
		return nil, classify(err)
	}
	return t, nil
}

func (c *core) ListUnitTypes(ctx context.Context, guildID int64) ([]model.UnitType, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+unitTypeSelect+` FROM unit_types WHERE guild_id=? ORDER BY type_name`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.UnitType
	for rows.Next() {
		t, err := scanUnitType(rows, guildID)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *t)
	}
	return out, classify(rows.Err())
}

func (c *core) PutUnitType(ctx context.Context, t *model.UnitType) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO unit_types (guild_id, `+unitTypeSelect+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (guild_id, type_name) DO UPDATE SET
			movement=excluded.movement, attack=excluded.attack, defense=excluded.defense,
			siege_attack=excluded.siege_attack, siege_defense=excluded.siege_defense,
			size=excluded.size, capacity=excluded.capacity, max_organization=excluded.max_organization,
			upkeep_ore=excluded.upkeep_ore, upkeep_lumber=excluded.upkeep_lumber,
			upkeep_coal=excluded.upkeep_coal, upkeep_rations=excluded.upkeep_rations,
			upkeep_cloth=excluded.upkeep_cloth, upkeep_platinum=excluded.upkeep_platinum,
			cost_ore=excluded.cost_ore, cost_lumber=excluded.cost_lumber, cost_coal=excluded.cost_coal,
			cost_rations=excluded.cost_rations, cost_cloth=excluded.cost_cloth,
			cost_platinum=excluded.cost_platinum, keywords=excluded.keywords,
			nation_restriction=excluded.nation_restriction`,
		t.GuildID, t.TypeName, t.Movement, t.Attack, t.Defense, t.SiegeAttack, t.SiegeDefense,
		t.Size, t.Capacity, t.MaxOrganization, t.UpkeepOre, t.UpkeepLumber, t.UpkeepCoal,
		t.UpkeepRations, t.UpkeepCloth, t.UpkeepPlatinum, t.CostOre, t.CostLumber, t.CostCoal,
		t.CostRations, t.CostCloth, t.CostPlatinum, jsonArr(t.Keywords), t.NationRestriction)
	return classify(err)
}

const buildingSelect = `building_id, type_name, territory_id, durability, status, age,
	upkeep_ore, upkeep_lumber, upkeep_coal, upkeep_rations, upkeep_cloth, upkeep_platinum, keywords`

func scanBuilding(row interface{ Scan(...interface{}) error }, guildID int64) (*model.Building, error) {
	b := &model.Building{GuildID: guildID}
	var kw string
	err := row.Scan(&b.BuildingID, &b.TypeName, &b.TerritoryID, &b.Durability, &b.Status, &b.Age,
		&b.UpkeepOre, &b.UpkeepLumber, &b.UpkeepCoal, &b.UpkeepRations, &b.UpkeepCloth,
		&b.UpkeepPlatinum, &kw)
	if err == nil {
		b.Keywords = parseArr(kw)
	}
	return b, err
}

func (c *core) GetBuilding(ctx context.Context, guildID int64, id string) (*model.Building, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+buildingSelect+` FROM buildings WHERE guild_id=? AND building_id=?`, guildID, id)
	b, err := scanBuilding(row, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Entity: "building", Key: id}
	}
	if err != nil {
		return nil, classify(err)
	}
	return b, nil
}

func (c *core) ListBuildings(ctx context.Context, guildID int64) ([]model.Building, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+buildingSelect+` FROM buildings WHERE guild_id=? ORDER BY building_id`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.Building
	for rows.Next() {
		b, err := scanBuilding(rows, guildID)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *b)
	}
	return out, classify(rows.Err())
}

func (c *core) ListBuildingsByTerritory(ctx context.Context, guildID int64, territoryID string) ([]model.Building, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+buildingSelect+` FROM buildings
		WHERE guild_id=? AND territory_id=? ORDER BY building_id`, guildID, territoryID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.Building
	for rows.Next() {
		b, err := scanBuilding(rows, guildID)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *b)
	}
	return out, classify(rows.Err())
}

func (c *core) PutBuilding(ctx context.Context, b *model.Building) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO buildings (guild_id, `+buildingSelect+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (guild_id, building_id) DO UPDATE SET
			type_name=excluded.type_name, territory_id=excluded.territory_id,
			durability=excluded.durability, status=excluded.status, age=excluded.age,
			upkeep_ore=excluded.upkeep_ore, upkeep_lumber=excluded.upkeep_lumber,
			upkeep_coal=excluded.upkeep_coal, upkeep_rations=excluded.upkeep_rations,
			upkeep_cloth=excluded.upkeep_cloth, upkeep_platinum=excluded.upkeep_platinum,
			keywords=excluded.keywords`,
		b.GuildID, b.BuildingID, b.TypeName, b.TerritoryID, b.Durability, b.Status, b.Age,
		b.UpkeepOre, b.UpkeepLumber, b.UpkeepCoal, b.UpkeepRations, b.UpkeepCloth,
		b.UpkeepPlatinum, jsonArr(b.Keywords))
	return classify(err)
}

const buildingTypeSelect = `type_name, max_durability, upkeep_ore, upkeep_lumber, upkeep_coal,
	upkeep_rations, upkeep_cloth, upkeep_platinum, cost_ore, cost_lumber, cost_coal, cost_rations,
	cost_cloth, cost_platinum, keywords, nation_restriction`

func scanBuildingType(row interface{ Scan(...interface{}) error }, guildID int64) (*model.BuildingType, error) {
	t := &model.BuildingType{GuildID: guildID}
	var kw string
	err := row.Scan(&t.TypeName, &t.MaxDurability, &t.UpkeepOre, &t.UpkeepLumber, &t.UpkeepCoal,
		&t.UpkeepRations, &t.UpkeepCloth, &t.UpkeepPlatinum, &t.CostOre, &t.CostLumber, &t.CostCoal,
		&t.CostRations, &t.CostCloth, &t.CostPlatinum, &kw, &t.NationRestriction)
	if err == nil {
		t.Keywords = parseArr(kw)
	}
	return t, err
}

func (c *core) GetBuildingType(ctx context.Context, guildID int64, name string) (*model.BuildingType, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+buildingTypeSelect+` FROM building_types WHERE guild_id=? AND type_name=?`, guildID, name)
	t, err := scanBuildingType(row, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Entity: "building_type", Key: name}
	}
	if err != nil {
		return nil, classify(err)
	}
	return t, nil
}

func (c *core) ListBuildingTypes(ctx context.Context, guildID int64) ([]model.BuildingType, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+buildingTypeSelect+` FROM building_types WHERE guild_id=? ORDER BY type_name`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.BuildingType
	for rows.Next() {
		t, err := scanBuildingType(rows, guildID)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *t)
	}
	return out, classify(rows.Err())
}

func (c *core) PutBuildingType(ctx context.Context, t *model.BuildingType) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO building_types (guild_id, `+buildingTypeSelect+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (guild_id, type_name) DO UPDATE SET
			max_durability=excluded.max_durability, upkeep_ore=excluded.upkeep_ore,
			upkeep_lumber=excluded.upkeep_lumber, upkeep_coal=excluded.upkeep_coal,
			upkeep_rations=excluded.upkeep_rations, upkeep_cloth=excluded.upkeep_cloth,
			upkeep_platinum=excluded.upkeep_platinum, cost_ore=excluded.cost_ore,
			cost_lumber=excluded.cost_lumber, cost_coal=excluded.cost_coal,
			cost_rations=excluded.cost_rations, cost_cloth=excluded.cost_cloth,
			cost_platinum=excluded.cost_platinum, keywords=excluded.keywords,
			nation_restriction=excluded.nation_restriction`,
		t.GuildID, t.TypeName, t.MaxDurability, t.UpkeepOre, t.UpkeepLumber, t.UpkeepCoal,
		t.UpkeepRations, t.UpkeepCloth, t.UpkeepPlatinum, t.CostOre, t.CostLumber, t.CostCoal,
		t.CostRations, t.CostCloth, t.CostPlatinum, jsonArr(t.Keywords), t.NationRestriction)
	return classify(err)
}

// --- Faction ---

func (c *core) GetFaction(ctx context.Context, guildID int64, id string) (*model.Faction, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT faction_id, name, nation_tag, leader_character_id, has_declared_war, created_turn,
		       ore_spent, lumber_spent, coal_spent, rations_spent, cloth_spent, platinum_spent
		FROM factions WHERE guild_id=? AND faction_id=?`, guildID, id)
	f := &model.Faction{GuildID: guildID}
	err := row.Scan(&f.FactionID, &f.Name, &f.NationTag, &f.LeaderID, &f.HasDeclaredWar, &f.CreatedTurn,
		&f.OreSpent, &f.LumberSpent, &f.CoalSpent, &f.RationsSpent, &f.ClothSpent, &f.PlatinumSpent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Entity: "faction", Key: id}
	}
	if err != nil {
		return nil, classify(err)
	}
	return f, nil
}

func (c *core) ListFactions(ctx context.Context, guildID int64) ([]model.Faction, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT faction_id, name, nation_tag, leader_character_id, has_declared_war, created_turn,
		       ore_spent, lumber_spent, coal_spent, rations_spent, cloth_spent, platinum_spent
		FROM factions WHERE guild_id=? ORDER BY faction_id`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.Faction
	for rows.Next() {
		f := model.Faction{GuildID: guildID}
		if err := rows.Scan(&f.FactionID, &f.Name, &f.NationTag, &f.LeaderID, &f.HasDeclaredWar, &f.CreatedTurn,
			&f.OreSpent, &f.LumberSpent, &f.CoalSpent, &f.RationsSpent, &f.ClothSpent, &f.PlatinumSpent); err != nil {
			return nil, classify(err)
		}
		out = append(out, f)
	}
	return out, classify(rows.Err())
}

func (c *core) PutFaction(ctx context.Context, f *model.Faction) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO factions (guild_id, faction_id, name, nation_tag, leader_character_id,
			has_declared_war, created_turn, ore_spent, lumber_spent, coal_spent, rations_spent,
			cloth_spent, platinum_spent)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (guild_id, faction_id) DO UPDATE SET
			name=excluded.name, nation_tag=excluded.nation_tag,
			leader_character_id=excluded.leader_character_id,
			has_declared_war=excluded.has_declared_war, created_turn=excluded.created_turn,
			ore_spent=excluded.ore_spent, lumber_spent=excluded.lumber_spent,
			coal_spent=excluded.coal_spent, rations_spent=excluded.rations_spent,
			cloth_spent=excluded.cloth_spent, platinum_spent=excluded.platinum_spent`,
		f.GuildID, f.FactionID, f.Name, f.NationTag, f.LeaderID, f.HasDeclaredWar, f.CreatedTurn,
		f.OreSpent, f.LumberSpent, f.CoalSpent, f.RationsSpent, f.ClothSpent, f.PlatinumSpent)
	return classify(err)
}

func (c *core) DeleteFaction(ctx context.Context, guildID int64, id string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM faction_members WHERE guild_id=? AND faction_id=?`, guildID, id); err != nil {
		return classify(err)
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM faction_permissions WHERE guild_id=? AND faction_id=?`, guildID, id); err != nil {
		return classify(err)
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM factions WHERE guild_id=? AND faction_id=?`, guildID, id)
	return classify(err)
}

func (c *core) ListFactionMembers(ctx context.Context, guildID int64, factionID string) ([]model.FactionMember, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT character_id, joined_turn FROM faction_members
		WHERE guild_id=? AND faction_id=? ORDER BY character_id`, guildID, factionID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.FactionMember
	for rows.Next() {
		m := model.FactionMember{GuildID: guildID, FactionID: factionID}
		if err := rows.Scan(&m.CharacterID, &m.JoinedTurn); err != nil {
			return nil, classify(err)
		}
		out = append(out, m)
	}
	return out, classify(rows.Err())
}

func (c *core) PutFactionMember(ctx context.Context, m *model.FactionMember) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO faction_members (guild_id, faction_id, character_id, joined_turn) VALUES (?,?,?,?)
		ON CONFLICT (guild_id, faction_id, character_id) DO UPDATE SET joined_turn=excluded.joined_turn`,
		m.GuildID, m.FactionID, m.CharacterID, m.JoinedTurn)
	return classify(err)
}

func (c *core) DeleteFactionMember(ctx context.Context, guildID int64, factionID, characterID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM faction_members WHERE guild_id=? AND faction_id=? AND character_id=?`,
		guildID, factionID, characterID)
	return classify(err)
}

func (c *core) ListFactionPermissions(ctx context.Context, guildID int64, factionID string) ([]model.FactionPermission, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT character_id, permission_type FROM faction_permissions
		WHERE guild_id=? AND faction_id=? ORDER BY character_id, permission_type`, guildID, factionID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.FactionPermission
	for rows.Next() {
		p := model.FactionPermission{GuildID: guildID, FactionID: factionID}
		if err := rows.Scan(&p.CharacterID, &p.PermissionType); err != nil {
			return nil, classify(err)
		}
		out = append(out, p)
	}
	return out, classify(rows.Err())
}

func (c *core) PutFactionPermission(ctx context.Context, p *model.FactionPermission) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO faction_permissions (guild_id, faction_id, character_id, permission_type)
		VALUES (?,?,?,?) ON CONFLICT (guild_id, faction_id, character_id, permission_type) DO NOTHING`,
		p.GuildID, p.FactionID, p.CharacterID, p.PermissionType)
	return classify(err)
}

func (c *core) DeleteFactionPermission(ctx context.Context, guildID int64, factionID, characterID string, perm model.PermissionType) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM faction_permissions WHERE guild_id=? AND faction_id=? AND character_id=? AND permission_type=?`,
		guildID, factionID, characterID, perm)
	return classify(err)
}

func (c *core) GetCharacter(ctx context.Context, guildID int64, id string) (*model.Character, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT identifier, display_name, owning_user_id, ore_production, lumber_production,
		       coal_production, rations_production, cloth_production, platinum_production,
		       victory_points, represented_faction_id, representation_changed_turn
		FROM characters WHERE guild_id=? AND identifier=?`, guildID, id)
	ch := &model.Character{GuildID: guildID}
	err := row.Scan(&ch.Identifier, &ch.DisplayName, &ch.OwningUserID, &ch.OreProduction,
		&ch.LumberProduction, &ch.CoalProduction, &ch.RationsProduction, &ch.ClothProduction,
		&ch.PlatinumProduction, &ch.VictoryPoints, &ch.RepresentedFactionID, &ch.RepresentationChangedTurn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Entity: "character", Key: id}
	}
	if err != nil {
		return nil, classify(err)
	}
	return ch, nil
}

func (c *core) ListCharacters(ctx context.Context, guildID int64) ([]model.Character, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT identifier, display_name, owning_user_id, ore_production, lumber_production,
		       coal_production, rations_production, cloth_production, platinum_production,
		       victory_points, represented_faction_id, representation_changed_turn
		FROM characters WHERE guild_id=? ORDER BY identifier`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.Character
	for rows.Next() {
		ch := model.Character{GuildID: guildID}
		if err := rows.Scan(&ch.Identifier, &ch.DisplayName, &ch.OwningUserID, &ch.OreProduction,
			&ch.LumberProduction, &ch.CoalProduction, &ch.RationsProduction, &ch.ClothProduction,
			&ch.PlatinumProduction, &ch.VictoryPoints, &ch.RepresentedFactionID, &ch.RepresentationChangedTurn); err != nil {
			return nil, classify(err)
		}
		out = append(out, ch)
	}
	return out, classify(rows.Err())
}

func (c *core) PutCharacter(ctx context.Context, ch *model.Character) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO characters (guild_id, identifier, display_name, owning_user_id, ore_production,
			lumber_production, coal_production, rations_production, cloth_production,
			platinum_production, victory_points, represented_faction_id, representation_changed_turn)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (guild_id, identifier) DO UPDATE SET
			display_name=excluded.display_name, owning_user_id=excluded.owning_user_id,
			ore_production=excluded.ore_production, lumber_production=excluded.lumber_production,
			coal_production=excluded.coal_production, rations_production=excluded.rations_production,
			cloth_production=excluded.cloth_production, platinum_production=excluded.platinum_production,
			victory_points=excluded.victory_points, represented_faction_id=excluded.represented_faction_id,
			representation_changed_turn=excluded.representation_changed_turn`,
		ch.GuildID, ch.Identifier, ch.DisplayName, ch.OwningUserID, ch.OreProduction,
		ch.LumberProduction, ch.CoalProduction, ch.RationsProduction, ch.ClothProduction,
		ch.PlatinumProduction, ch.VictoryPoints, ch.RepresentedFactionID, ch.RepresentationChangedTurn)
	return classify(err)
}

// --- Order ---

const orderSelect = `order_id, turn_number, phase, priority, order_type,
	submitted_by_character_id, acting_faction_id, unit_id, source_territory_id,
	target_territory_id, target_character_id, target_faction_id, target_unit_id, resource_type,
	resource_amount, term, turns_executed, build_type_name, path, path_index, speed, blocked_at,
	movement_status, turns_active, status, requires_confirmation, rejection_reason, submitted_at,
	updated_at, updated_turn, resolved_at`

func scanOrder(row interface{ Scan(...interface{}) error }, guildID int64) (*model.Order, error) {
	o := &model.Order{GuildID: guildID}
	var path string
	var updatedAt, resolvedAt sql.NullTime
	err := row.Scan(&o.OrderID, &o.TurnNumber, &o.Phase, &o.Priority, &o.OrderType,
		&o.SubmittedByID, &o.ActingFactionID, &o.UnitID, &o.SourceTerritory, &o.TargetTerritory,
		&o.TargetCharacter, &o.TargetFactionID, &o.TargetUnitID, &o.ResourceType, &o.ResourceAmount,
		&o.Term, &o.TurnsExecuted, &o.BuildTypeName, &path, &o.PathIndex, &o.Speed,
		&o.BlockedAt, &o.MovementStatus, &o.TurnsActive, &o.Status, &o.RequiresConfirm,
		&o.RejectionReason, &o.SubmittedAt, &updatedAt, &o.UpdatedTurn, &resolvedAt)
	if err == nil {
		o.Path = parseArr(path)
		o.UpdatedAt = scanTime(updatedAt)
		o.ResolvedAt = scanTime(resolvedAt)
	}
	return o, err
}

func (c *core) GetOrder(ctx context.Context, guildID int64, id string) (*model.Order, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+orderSelect+` FROM orders WHERE guild_id=? AND order_id=?`, guildID, id)
	o, err := scanOrder(row, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Entity: "order", Key: id}
	}
	if err != nil {
		return nil, classify(err)
	}
	return o, nil
}

func (c *core) ListOrdersByTurn(ctx context.Context, guildID int64, turnNumber int) ([]model.Order, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+orderSelect+` FROM orders
		WHERE guild_id=? AND turn_number=? ORDER BY order_id`, guildID, turnNumber)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows, guildID)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *o)
	}
	return out, classify(rows.Err())
}

func (c *core) PutOrder(ctx context.Context, o *model.Order) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO orders (guild_id, `+orderSelect+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (guild_id, order_id) DO UPDATE SET
			turn_number=excluded.turn_number, phase=excluded.phase, priority=excluded.priority,
			order_type=excluded.order_type, submitted_by_character_id=excluded.submitted_by_character_id,
			acting_faction_id=excluded.acting_faction_id, unit_id=excluded.unit_id,
			source_territory_id=excluded.source_territory_id,
			target_territory_id=excluded.target_territory_id,
			target_character_id=excluded.target_character_id,
			target_faction_id=excluded.target_faction_id, target_unit_id=excluded.target_unit_id,
			resource_type=excluded.resource_type, resource_amount=excluded.resource_amount,
			term=excluded.term, turns_executed=excluded.turns_executed,
			build_type_name=excluded.build_type_name, path=excluded.path,
			path_index=excluded.path_index, speed=excluded.speed, blocked_at=excluded.blocked_at,
			movement_status=excluded.movement_status, turns_active=excluded.turns_active,
			status=excluded.status, requires_confirmation=excluded.requires_confirmation,
			rejection_reason=excluded.rejection_reason, updated_at=excluded.updated_at,
			updated_turn=excluded.updated_turn, resolved_at=excluded.resolved_at`,
		o.GuildID, o.OrderID, o.TurnNumber, o.Phase, o.Priority, o.OrderType, o.SubmittedByID,
		o.ActingFactionID, o.UnitID, o.SourceTerritory, o.TargetTerritory, o.TargetCharacter,
		o.TargetFactionID, o.TargetUnitID, o.ResourceType, o.ResourceAmount, o.Term, o.TurnsExecuted,
		o.BuildTypeName, jsonArr(o.Path), o.PathIndex, o.Speed, o.BlockedAt, o.MovementStatus,
		o.TurnsActive, o.Status, o.RequiresConfirm, o.RejectionReason, nullableTime(o.UpdatedAt),
		o.UpdatedTurn, nullableTime(o.ResolvedAt))
	return classify(err)
}

// --- Diplomacy ---

func (c *core) GetAlliance(ctx context.Context, guildID int64, a, b string) (*model.Alliance, error) {
	if a > b {
		a, b = b, a
	}
	row := c.db.QueryRowContext(ctx, `
		SELECT faction_a_id, faction_b_id, initiated_by_faction_id, status, activated_turn
		FROM alliances WHERE guild_id=? AND faction_a_id=? AND faction_b_id=?`, guildID, a, b)
	al := &model.Alliance{GuildID: guildID}
	err := row.Scan(&al.FactionAID, &al.FactionBID, &al.InitiatedByFaction, &al.Status, &al.ActivatedTurn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Entity: "alliance", Key: a + "/" + b}
	}
	if err != nil {
		return nil, classify(err)
	}
	return al, nil
}

func (c *core) ListAlliances(ctx context.Context, guildID int64) ([]model.Alliance, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT faction_a_id, faction_b_id, initiated_by_faction_id, status, activated_turn
		FROM alliances WHERE guild_id=? ORDER BY faction_a_id, faction_b_id`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.Alliance
	for rows.Next() {
		al := model.Alliance{GuildID: guildID}
		if err := rows.Scan(&al.FactionAID, &al.FactionBID, &al.InitiatedByFaction, &al.Status, &al.ActivatedTurn); err != nil {
			return nil, classify(err)
		}
		out = append(out, al)
	}
	return out, classify(rows.Err())
}

func (c *core) PutAlliance(ctx context.Context, a *model.Alliance) error {
	x, y := a.FactionAID, a.FactionBID
	if x > y {
		x, y = y, x
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO alliances (guild_id, faction_a_id, faction_b_id, initiated_by_faction_id, status, activated_turn)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT (guild_id, faction_a_id, faction_b_id) DO UPDATE SET
			initiated_by_faction_id=excluded.initiated_by_faction_id, status=excluded.status,
			activated_turn=excluded.activated_turn`,
		a.GuildID, x, y, a.InitiatedByFaction, a.Status, a.ActivatedTurn)
	return classify(err)
}

func (c *core) DeleteAlliance(ctx context.Context, guildID int64, a, b string) error {
	if a > b {
		a, b = b, a
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM alliances WHERE guild_id=? AND faction_a_id=? AND faction_b_id=?`, guildID, a, b)
	return classify(err)
}

func (c *core) GetWar(ctx context.Context, guildID int64, id string) (*model.War, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT war_id, objective, status, declared_turn FROM wars WHERE guild_id=? AND war_id=?`, guildID, id)
	w := &model.War{GuildID: guildID}
	err := row.Scan(&w.WarID, &w.Objective, &w.Status, &w.DeclaredTurn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Entity: "war", Key: id}
	}
	if err != nil {
		return nil, classify(err)
	}
	return w, nil
}

func (c *core) ListWars(ctx context.Context, guildID int64) ([]model.War, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT war_id, objective, status, declared_turn FROM wars WHERE guild_id=? ORDER BY war_id`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.War
	for rows.Next() {
		w := model.War{GuildID: guildID}
		if err := rows.Scan(&w.WarID, &w.Objective, &w.Status, &w.DeclaredTurn); err != nil {
			return nil, classify(err)
		}
		out = append(out, w)
	}
	return out, classify(rows.Err())
}

func (c *core) ListActiveWarsForFaction(ctx context.Context, guildID int64, factionID string) ([]model.War, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT w.war_id, w.objective, w.status, w.declared_turn
		FROM wars w JOIN war_participants p ON p.guild_id = w.guild_id AND p.war_id = w.war_id
		WHERE w.guild_id=? AND p.faction_id=? AND w.status='ACTIVE' ORDER BY w.war_id`, guildID, factionID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.War
	for rows.Next() {
		w := model.War{GuildID: guildID}
		if err := rows.Scan(&w.WarID, &w.Objective, &w.Status, &w.DeclaredTurn); err != nil {
			return nil, classify(err)
		}
		out = append(out, w)
	}
	return out, classify(rows.Err())
}

func (c *core) PutWar(ctx context.Context, w *model.War) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO wars (guild_id, war_id, objective, status, declared_turn) VALUES (?,?,?,?,?)
		ON CONFLICT (guild_id, war_id) DO UPDATE SET
			objective=excluded.objective, status=excluded.status, declared_turn=excluded.declared_turn`,
		w.GuildID, w.WarID, w.Objective, w.Status, w.DeclaredTurn)
	return classify(err)
}

func (c *core) ListWarParticipants(ctx context.Context, guildID int64, warID string) ([]model.WarParticipant, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT faction_id, side, joined_turn, is_original_declarer FROM war_participants
		WHERE guild_id=? AND war_id=? ORDER BY faction_id`, guildID, warID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.WarParticipant
	for rows.Next() {
		p := model.WarParticipant{GuildID: guildID, WarID: warID}
		if err := rows.Scan(&p.FactionID, &p.Side, &p.JoinedTurn, &p.IsOriginalDeclarer); err != nil {
			return nil, classify(err)
		}
		out = append(out, p)
	}
	return out, classify(rows.Err())
}

func (c *core) PutWarParticipant(ctx context.Context, p *model.WarParticipant) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO war_participants (guild_id, war_id, faction_id, side, joined_turn, is_original_declarer)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT (guild_id, war_id, faction_id) DO UPDATE SET
			side=excluded.side, joined_turn=excluded.joined_turn,
			is_original_declarer=excluded.is_original_declarer`,
		p.GuildID, p.WarID, p.FactionID, p.Side, p.JoinedTurn, p.IsOriginalDeclarer)
	return classify(err)
}

// --- Economy ---

func (c *core) GetPlayerResources(ctx context.Context, guildID int64, characterID string) (*model.PlayerResources, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT ore, lumber, coal, rations, cloth, platinum FROM player_resources
		WHERE guild_id=? AND character_id=?`, guildID, characterID)
	r := &model.PlayerResources{GuildID: guildID, CharacterID: characterID}
	err := row.Scan(&r.Ore, &r.Lumber, &r.Coal, &r.Rations, &r.Cloth, &r.Platinum)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.PlayerResources{GuildID: guildID, CharacterID: characterID}, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return r, nil
}

func (c *core) PutPlayerResources(ctx context.Context, r *model.PlayerResources) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO player_resources (guild_id, character_id, ore, lumber, coal, rations, cloth, platinum)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT (guild_id, character_id) DO UPDATE SET
			ore=excluded.ore, lumber=excluded.lumber, coal=excluded.coal, rations=excluded.rations,
			cloth=excluded.cloth, platinum=excluded.platinum`,
		r.GuildID, r.CharacterID, r.Ore, r.Lumber, r.Coal, r.Rations, r.Cloth, r.Platinum)
	return classify(err)
}

func (c *core) GetFactionResources(ctx context.Context, guildID int64, factionID string) (*model.FactionResources, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT ore, lumber, coal, rations, cloth, platinum FROM faction_resources
		WHERE guild_id=? AND faction_id=?`, guildID, factionID)
	r := &model.FactionResources{GuildID: guildID, FactionID: factionID}
	err := row.Scan(&r.Ore, &r.Lumber, &r.Coal, &r.Rations, &r.Cloth, &r.Platinum)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.FactionResources{GuildID: guildID, FactionID: factionID}, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return r, nil
}

func (c *core) PutFactionResources(ctx context.Context, r *model.FactionResources) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO faction_resources (guild_id, faction_id, ore, lumber, coal, rations, cloth, platinum)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT (guild_id, faction_id) DO UPDATE SET
			ore=excluded.ore, lumber=excluded.lumber, coal=excluded.coal, rations=excluded.rations,
			cloth=excluded.cloth, platinum=excluded.platinum`,
		r.GuildID, r.FactionID, r.Ore, r.Lumber, r.Coal, r.Rations, r.Cloth, r.Platinum)
	return classify(err)
}

func (c *core) ListPendingTransfers(ctx context.Context, guildID int64, turnNumber int) ([]model.PendingTransfer, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT transfer_id, from_character_id, from_faction_id, to_character_id, to_faction_id,
		       resource, amount
		FROM pending_transfers WHERE guild_id=? AND turn_number=? ORDER BY transfer_id`, guildID, turnNumber)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.PendingTransfer
	for rows.Next() {
		t := model.PendingTransfer{GuildID: guildID, TurnNumber: turnNumber}
		if err := rows.Scan(&t.TransferID, &t.FromCharacter, &t.FromFaction, &t.ToCharacter,
			&t.ToFaction, &t.Resource, &t.Amount); err != nil {
			return nil, classify(err)
		}
		out = append(out, t)
	}
	return out, classify(rows.Err())
}

func (c *core) PutPendingTransfer(ctx context.Context, t *model.PendingTransfer) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO pending_transfers (guild_id, transfer_id, turn_number, from_character_id,
			from_faction_id, to_character_id, to_faction_id, resource, amount)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT (guild_id, transfer_id) DO UPDATE SET
			turn_number=excluded.turn_number, from_character_id=excluded.from_character_id,
			from_faction_id=excluded.from_faction_id, to_character_id=excluded.to_character_id,
			to_faction_id=excluded.to_faction_id, resource=excluded.resource, amount=excluded.amount`,
		t.GuildID, t.TransferID, t.TurnNumber, t.FromCharacter, t.FromFaction, t.ToCharacter,
		t.ToFaction, t.Resource, t.Amount)
	return classify(err)
}

func (c *core) DeletePendingTransfer(ctx context.Context, guildID int64, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM pending_transfers WHERE guild_id=? AND transfer_id=?`, guildID, id)
	return classify(err)
}

func (c *core) ListSpiritNexuses(ctx context.Context, guildID int64) ([]model.SpiritNexus, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT territory_id, restore_amount, pole_swap_turn FROM spirit_nexuses
		WHERE guild_id=? ORDER BY territory_id`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.SpiritNexus
	for rows.Next() {
		n := model.SpiritNexus{GuildID: guildID}
		if err := rows.Scan(&n.TerritoryID, &n.RestoreAmount, &n.PoleSwapTurn); err != nil {
			return nil, classify(err)
		}
		out = append(out, n)
	}
	return out, classify(rows.Err())
}

func (c *core) PutSpiritNexus(ctx context.Context, n *model.SpiritNexus) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO spirit_nexuses (guild_id, territory_id, restore_amount, pole_swap_turn) VALUES (?,?,?,?)
		ON CONFLICT (guild_id, territory_id) DO UPDATE SET
			restore_amount=excluded.restore_amount, pole_swap_turn=excluded.pole_swap_turn`,
		n.GuildID, n.TerritoryID, n.RestoreAmount, n.PoleSwapTurn)
	return classify(err)
}

// --- Events & config ---

func (c *core) Emit(ctx context.Context, e *model.Event) error {
	var nextID int64
	row := c.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM events WHERE guild_id=?`, e.GuildID)
	if err := row.Scan(&nextID); err != nil {
		return classify(err)
	}
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO events (guild_id, id, turn_number, phase, event_type, entity_type, entity_id,
			event_data, affected_character_ids, timestamp)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		e.GuildID, nextID, e.TurnNumber, e.Phase, e.EventType, e.EntityType, e.EntityID,
		e.EventData, jsonArr(e.AffectedCharacterIDs), ts)
	if err != nil {
		return classify(err)
	}
	e.ID = nextID
	e.Timestamp = ts
	return nil
}

func (c *core) GetConfig(ctx context.Context, guildID int64) (*model.WargameConfig, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT current_turn, turn_resolution_enabled, max_movement_stat, gm_reports_channel_id
		FROM wargame_configs WHERE guild_id=?`, guildID)
	cfg := &model.WargameConfig{GuildID: guildID}
	err := row.Scan(&cfg.CurrentTurn, &cfg.TurnResolutionEnabled, &cfg.MaxMovementStat, &cfg.GMReportsChannelID)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.WargameConfig{GuildID: guildID, MaxMovementStat: 8, TurnResolutionEnabled: true}, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return cfg, nil
}

func (c *core) PutConfig(ctx context.Context, cfg *model.WargameConfig) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO wargame_configs (guild_id, current_turn, turn_resolution_enabled, max_movement_stat, gm_reports_channel_id)
		VALUES (?,?,?,?,?)
		ON CONFLICT (guild_id) DO UPDATE SET
			current_turn=excluded.current_turn, turn_resolution_enabled=excluded.turn_resolution_enabled,
			max_movement_stat=excluded.max_movement_stat, gm_reports_channel_id=excluded.gm_reports_channel_id`,
		cfg.GuildID, cfg.CurrentTurn, cfg.TurnResolutionEnabled, cfg.MaxMovementStat, cfg.GMReportsChannelID)
	return classify(err)
}

var _ store.Store = (*Store)(nil)
var _ store.Txn = (*txn)(nil)
