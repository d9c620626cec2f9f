// Package postgres is the canonical production store.Store adapter,
// driven by database/sql and github.com/lib/pq. It issues hand-written
// SQL against the tables in schema.sql, matching the teacher's
// internal/repository/postgres style (no ORM, no query builder).
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, letting every query
// method below run unmodified whether or not it is inside a Txn.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// core implements every store.Store method except Begin/Commit/Rollback
// against whatever dbtx it's handed, so Store and txn can share one
// implementation instead of two copies of the same SQL.
type core struct{ db dbtx }

// Store is the postgres-backed store.Store implementation.
type Store struct {
	core
	raw *sql.DB
}

// Open wraps an already-connected *sql.DB. Callers own the DB's
// lifecycle (including pool sizing and Close).
func Open(db *sql.DB) *Store {
	return &Store{core: core{db: db}, raw: db}
}

// Begin starts a new SQL transaction scoped to guildID. guildID isn't
// otherwise used by Begin itself; every query already carries its own
// guild_id predicate, same as the teacher's per-request game_id scoping.
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

func (t *txn) Commit() error   { return classify(t.tx.Commit()) }
func (t *txn) Rollback() error { return classify(t.tx.Rollback()) }

func (t *txn) Begin(ctx context.Context, guildID int64) (store.Txn, error) { return t, nil }

// classify maps a raw database/sql or lib/pq error onto the store error
// taxonomy (§4.1): unique-key violations become Conflict, connection and
// serialization failures become Transient, everything else is returned
// with a "postgres:" prefix for the caller to treat as Fatal.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &store.NotFoundError{Entity: "row", Key: ""}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23": // integrity constraint violation
			return &store.ConflictError{Reason: pqErr.Message}
		case "08", "40", "57": // connection, transaction rollback, operator intervention
			return &store.TransientError{Op: "postgres", Err: err}
		}
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return &store.TransientError{Op: "postgres", Err: err}
	}
	return fmt.Errorf("postgres: %w", err)
}

func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// --- Territory ---

func (c *core) GetTerritory(ctx context.Context, guildID int64, id string) (*model.Territory, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT territory_id, terrain_type, ore_production, lumber_production,
		       coal_production, rations_production, cloth_production,
		       platinum_production, controller_character_id, controller_faction_id,
		       original_nation, victory_points, siege_defense, keywords
		FROM territories WHERE guild_id = $1 AND territory_id = $2`, guildID, id)
	t := &model.Territory{GuildID: guildID}
	err := row.Scan(&t.TerritoryID, &t.TerrainType, &t.OreProduction, &t.LumberProduction,
		&t.CoalProduction, &t.RationsProduction, &t.ClothProduction, &t.PlatinumProduction,
		&t.ControllerCharacterID, &t.ControllerFactionID, &t.OriginalNation, &t.VictoryPoints,
		&t.SiegeDefense, pq.Array(&t.Keywords))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &store.NotFoundError{Entity: "territory", Key: id}
	}
	if err != nil {
		return nil, classify(err)
	}
	return t, nil
}

func (c *core) ListTerritories(ctx context.Context, guildID int64) ([]model.Territory, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT territory_id, terrain_type, ore_production, lumber_production,
		       coal_production, rations_production, cloth_production,
		       platinum_production, controller_character_id, controller_faction_id,
		       original_nation, victory_points, siege_defense, keywords
		FROM territories WHERE guild_id = $1 ORDER BY territory_id`, guildID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	var out []model.Territory
	for rows.Next() {
		t := model.Territory{GuildID: guildID}
		if err := rows.Scan(&t.TerritoryID, &t.TerrainType, &t.OreProduction, &t.LumberProduction,
			&t.CoalProduction, &t.RationsProduction, &t.ClothProduction, &t.PlatinumProduction,
			&t.ControllerCharacterID, &t.ControllerFactionID, &t.OriginalNation, &t.VictoryPoints,
			&t.SiegeDefense, pq.Array(&t.Keywords)); err != nil {
			return nil, classify(err)
		}
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
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (guild_id, territory_id) DO UPDATE SET
			terrain_type=$3, ore_production=$4, lumber_production=$5, coal_production=$6,
			rations_production=$7, cloth_production=$8, platinum_production=$9,
			controller_character_id=$10, controller_faction_id=$11, original_nation=$12,
			victory_points=$13, siege_defense=$14, keywords=$15`,
		t.GuildID, t.TerritoryID, t.TerrainType, t.OreProduction, t.LumberProduction,
		t.CoalProduction, t.RationsProduction, t.ClothProduction, t.PlatinumProduction,
		t.ControllerCharacterID, t.ControllerFactionID, t.OriginalNation, t.VictoryPoints,
		t.SiegeDefense, pq.Array(t.Keywords))
	return classify(err)
}

func (c *core) ListAdjacencies(ctx context.Context, guildID int64) ([]model.TerritoryAdjacency, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT territory_a_id, territory_b_id FROM territory_adjacencies
		WHERE guild_id = $1 ORDER BY territory_a_id, territory_b_id`, guildID)
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
		INSERT INTO territory_adjacencies (guild_id, territory_a_id, territory_b_id)
		VALUES ($1,$2,$3) ON CONFLICT (guild_id, territory_a_id, territory_b_id) DO NOTHING`,
		a.GuildID, x, y)
	return classify(err)
}

// --- Unit ---

const unitColumns = `unit_id, unit_type, current_territory_id, owner_character_id,
	owner_faction_id, commander_character_id, commander_assigned_turn, movement, attack,
	defense, siege_attack, siege_defense, size, capacity, organization, max_organization,
	status, encircled, upkeep_ore, upkeep_lumber, upkeep_coal, upkeep_rations, upkeep_cloth,
	upkeep_platinum, keywords`

func scanUnit(row interface{ Scan(...interface{}) error }, guildID int64) (*model.Unit, error) {
	u := &model.Unit{GuildID: guildID}
	err := row.Scan(&u.UnitID, &u.UnitType, &u.CurrentTerritoryID, &u.OwnerCharacterID,
		&u.OwnerFactionID, &u.CommanderCharacterID, &u.CommanderAssignedTurn, &u.Movement,
		&u.Attack, &u.Defense, &u.SiegeAttack, &u.SiegeDefense, &u.Size, &u.Capacity,
		&u.Organization, &u.MaxOrganization, &u.Status, &u.Encircled, &u.UpkeepOre,
		&u.UpkeepLumber, &u.UpkeepCoal, &u.UpkeepRations, &u.UpkeepCloth, &u.UpkeepPlatinum,
		pq.Array(&u.Keywords))
	return u, err
}

func (c *core) GetUnit(ctx context.Context, guildID int64, id string) (*model.Unit, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE guild_id=$1 AND unit_id=$2`, guildID, id)
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
	rows, err := c.db.QueryContext(ctx, `SELECT `+unitColumns+` FROM units WHERE guild_id=$1 ORDER BY unit_id`, guildID)
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
	rows, err := c.db.QueryContext(ctx, `SELECT `+unitColumns+` FROM units
		WHERE guild_id=$1 AND current_territory_id=$2 ORDER BY unit_id`, guildID, territoryID)
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
		INSERT INTO units (guild_id, `+unitColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
		ON CONFLICT (guild_id, unit_id) DO UPDATE SET
			unit_type=$3, current_territory_id=$4, owner_character_id=$5, owner_faction_id=$6,
			commander_character_id=$7, commander_assigned_turn=$8, movement=$9, attack=$10,
			defense=$11, siege_attack=$12, siege_defense=$13, size=$14, capacity=$15,
			organization=$16, max_organization=$17, status=$18, encircled=$19, upkeep_ore=$20,
			upkeep_lumber=$21, upkeep_coal=$22, upkeep_rations=$23, upkeep_cloth=$24,
			upkeep_platinum=$25, keywords=$26`,
		u.GuildID, u.UnitID, u.UnitType, u.CurrentTerritoryID, u.OwnerCharacterID,
		u.OwnerFactionID, u.CommanderCharacterID, u.CommanderAssignedTurn, u.Movement, u.Attack,
		u.Defense, u.SiegeAttack, u.SiegeDefense, u.Size, u.Capacity, u.Organization,
		u.MaxOrganization, u.Status, u.Encircled, u.UpkeepOre, u.UpkeepLumber, u.UpkeepCoal,
		u.UpkeepRations, u.UpkeepCloth, u.UpkeepPlatinum, pq.Array(u.Keywords))
	return classify(err)
}

func (c *core) DeleteUnit(ctx context.Context, guildID int64, id string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM naval_unit_positions WHERE guild_id=$1 AND unit_id=$2`, guildID, id); err != nil {
		return classify(err)
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM units WHERE guild_id=$1 AND unit_id=$2`, guildID, id)
	return classify(err)
}

func (c *core) ListNavalPositions(ctx context.Context, guildID int64, unitID string) ([]model.NavalUnitPosition, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT territory_id FROM naval_unit_positions WHERE guild_id=$1 AND unit_id=$2 ORDER BY territory_id`,
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
		INSERT INTO naval_unit_positions (guild_id, unit_id, territory_id) VALUES ($1,$2,$3)
		ON CONFLICT (guild_id, unit_id, territory_id) DO NOTHING`, p.GuildID, p.UnitID, p.TerritoryID)
	return classify(err)
}

func (c *core) ClearNavalPositions(ctx context.Context, guildID int64, unitID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM naval_unit_positions WHERE guild_id=$1 AND unit_id=$2`, guildID, unitID)
	return classify(err)
}

const unitTypeColumns = `type_name, movement, attack, defense, siege_attack, siege_defense,
	size, capacity, max_organization, upkeep_ore, upkeep_lumber, upkeep_coal, upkeep_rations,
	upkeep_cloth, upkeep_platinum, cost_ore, cost_lumber, cost_coal, cost_rations, cost_cloth,
	cost_platinum, keywords, nation_restriction`

func scanUnitType(row interface{ Scan(...interface{}) error }, guildID int64) (*model.UnitType, error) {
	t := &model.UnitType{GuildID: guildID}
	err := row.Scan(&t.TypeName, &t.Movement, &t.Attack, &t.Defense, &t.SiegeAttack, &t.SiegeDefense,
		&t.Size, &t.Capacity, &t.MaxOrganization, &t.UpkeepOre, &t.UpkeepLumber, &t.UpkeepCoal,
		&t.UpkeepRations, &t.UpkeepCloth, &t.UpkeepPlatinum, &t.CostOre, &t.CostLumber, &t.CostCoal,
		&t.CostRations, &t.CostCloth, &t.CostPlatinum, pq.Array(&t.Keywords), &t.NationRestriction)
	return t, err
}

func (c *core) GetUnitType(ctx context.Context, guildID int64, name string) (*model.UnitType, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+unitTypeColumns+` FROM unit_types WHERE guild_id=$1 AND type_name=$2`, guildID, name)
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
	rows, err := c.db.QueryContext(ctx, `SELECT `+unitTypeColumns+` FROM unit_types WHERE guild_id=$1 ORDER BY type_name`, guildID)
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
		INSERT INTO unit_types (guild_id, `+unitTypeColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
		ON CONFLICT (guild_id, type_name) DO UPDATE SET
			movement=$3, attack=$4, defense=$5, siege_attack=$6, siege_defense=$7, size=$8,
			capacity=$9, max_organization=$10, upkeep_ore=$11, upkeep_lumber=$12, upkeep_coal=$13,
			upkeep_rations=$14, upkeep_cloth=$15, upkeep_platinum=$16, cost_ore=$17,
			cost_lumber=$18, cost_coal=$19, cost_rations=$20, cost_cloth=$21, cost_platinum=$22,
			keywords=$23`,
		t.GuildID, t.TypeName, t.Movement, t.Attack, t.Defense, t.SiegeAttack, t.SiegeDefense,
		t.Size, t.Capacity, t.MaxOrganization, t.UpkeepOre, t.UpkeepLumber, t.UpkeepCoal,
		t.UpkeepRations, t.UpkeepCloth, t.UpkeepPlatinum, t.CostOre, t.CostLumber, t.CostCoal,
		t.CostRations, t.CostCloth, t.CostPlatinum, pq.Array(t.Keywords))
	if err != nil {
		return classify(err)
	}
	_, err = c.db.ExecContext(ctx, `UPDATE unit_types SET nation_restriction=$3 WHERE guild_id=$1 AND type_name=$2`,
		t.GuildID, t.TypeName, t.NationRestriction)
	return classify(err)
}

const buildingColumns = `building_id, type_name, territory_id, durability, status, age,
	upkeep_ore, upkeep_lumber, upkeep_coal, upkeep_rations, upkeep_cloth, upkeep_platinum, keywords`

func scanBuilding(row interface{ Scan(...interface{}) error }, guildID int64) (*model.Building, error) {
	b := &model.Building{GuildID: guildID}
	err := row.Scan(&b.BuildingID, &b.TypeName, &b.TerritoryID, &b.Durability, &b.Status, &b.Age,
		&b.UpkeepOre, &b.UpkeepLumber, &b.UpkeepCoal, &b.UpkeepRations, &b.UpkeepCloth,
		&b.UpkeepPlatinum, pq.Array(&b.Keywords))
	return b, err
}

func (c *core) GetBuilding(ctx context.Context, guildID int64, id string) (*model.Building, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+buildingColumns+` FROM buildings WHERE guild_id=$1 AND building_id=$2`, guildID, id)
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
	rows, err := c.db.QueryContext(ctx, `SELECT `+buildingColumns+` FROM buildings WHERE guild_id=$1 ORDER BY building_id`, guildID)
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
	rows, err := c.db.QueryContext(ctx, `SELECT `+buildingColumns+` FROM buildings
		WHERE guild_id=$1 AND territory_id=$2 ORDER BY building_id`, guildID, territoryID)
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
		INSERT INTO buildings (guild_id, `+buildingColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (guild_id, building_id) DO UPDATE SET
			type_name=$3, territory_id=$4, durability=$5, status=$6, age=$7, upkeep_ore=$8,
			upkeep_lumber=$9, upkeep_coal=$10, upkeep_rations=$11, upkeep_cloth=$12,
			upkeep_platinum=$13, keywords=$14`,
		b.GuildID, b.BuildingID, b.TypeName, b.TerritoryID, b.Durability, b.Status, b.Age,
		b.UpkeepOre, b.UpkeepLumber, b.UpkeepCoal, b.UpkeepRations, b.UpkeepCloth,
		b.UpkeepPlatinum, pq.Array(b.Keywords))
	return classify(err)
}

const buildingTypeColumns = `type_name, max_durability, upkeep_ore, upkeep_lumber, upkeep_coal,
	upkeep_rations, upkeep_cloth, upkeep_platinum, cost_ore, cost_lumber, cost_coal, cost_rations,
	cost_cloth, cost_platinum, keywords, nation_restriction`

func scanBuildingType(row interface{ Scan(...interface{}) error }, guildID int64) (*model.BuildingType, error) {
	t := &model.BuildingType{GuildID: guildID}
	err := row.Scan(&t.TypeName, &t.MaxDurability, &t.UpkeepOre, &t.UpkeepLumber, &t.UpkeepCoal,
		&t.UpkeepRations, &t.UpkeepCloth, &t.UpkeepPlatinum, &t.CostOre, &t.CostLumber, &t.CostCoal,
		&t.CostRations, &t.CostCloth, &t.CostPlatinum, pq.Array(&t.Keywords), &t.NationRestriction)
	return t, err
}

func (c *core) GetBuildingType(ctx context.Context, guildID int64, name string) (*model.BuildingType, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+buildingTypeColumns+` FROM building_types WHERE guild_id=$1 AND type_name=$2`, guildID, name)
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
	rows, err := c.db.QueryContext(ctx, `SELECT `+buildingTypeColumns+` FROM building_types WHERE guild_id=$1 ORDER BY type_name`, guildID)
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
		INSERT INTO building_types (guild_id, `+buildingTypeColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (guild_id, type_name) DO UPDATE SET
			max_durability=$3, upkeep_ore=$4, upkeep_lumber=$5, upkeep_coal=$6, upkeep_rations=$7,
			upkeep_cloth=$8, upkeep_platinum=$9, cost_ore=$10, cost_lumber=$11, cost_coal=$12,
			cost_rations=$13, cost_cloth=$14, cost_platinum=$15, keywords=$16`,
		t.GuildID, t.TypeName, t.MaxDurability, t.UpkeepOre, t.UpkeepLumber, t.UpkeepCoal,
		t.UpkeepRations, t.UpkeepCloth, t.UpkeepPlatinum, t.CostOre, t.CostLumber, t.CostCoal,
		t.CostRations, t.CostCloth, t.CostPlatinum, pq.Array(t.Keywords))
	if err != nil {
		return classify(err)
	}
	_, err = c.db.ExecContext(ctx, `UPDATE building_types SET nation_restriction=$3 WHERE guild_id=$1 AND type_name=$2`,
		t.GuildID, t.TypeName, t.NationRestriction)
	return classify(err)
}

// --- Faction ---

func (c *core) GetFaction(ctx context.Context, guildID int64, id string) (*model.Faction, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT faction_id, name, nation_tag, leader_character_id, has_declared_war, created_turn,
		       ore_spent, lumber_spent, coal_spent, rations_spent, cloth_spent, platinum_spent
		FROM factions WHERE guild_id=$1 AND faction_id=$2`, guildID, id)
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
		FROM factions WHERE guild_id=$1 ORDER BY faction_id`, guildID)
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
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (guild_id, faction_id) DO UPDATE SET
			name=$3, nation_tag=$4, leader_character_id=$5, has_declared_war=$6, created_turn=$7,
			ore_spent=$8, lumber_spent=$9, coal_spent=$10, rations_spent=$11, cloth_spent=$12,
			platinum_spent=$13`,
		f.GuildID, f.FactionID, f.Name, f.NationTag, f.LeaderID, f.HasDeclaredWar, f.CreatedTurn,
		f.OreSpent, f.LumberSpent, f.CoalSpent, f.RationsSpent, f.ClothSpent, f.PlatinumSpent)
	return classify(err)
}

func (c *core) DeleteFaction(ctx context.Context, guildID int64, id string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM faction_members WHERE guild_id=$1 AND faction_id=$2`, guildID, id); err != nil {
		return classify(err)
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM faction_permissions WHERE guild_id=$1 AND faction_id=$2`, guildID, id); err != nil {
		return classify(err)
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM factions WHERE guild_id=$1 AND faction_id=$2`, guildID, id)
	return classify(err)
}

func (c *core) ListFactionMembers(ctx context.Context, guildID int64, factionID string) ([]model.FactionMember, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT character_id, joined_turn FROM faction_members
		WHERE guild_id=$1 AND faction_id=$2 ORDER BY character_id`, guildID, factionID)
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
		INSERT INTO faction_members (guild_id, faction_id, character_id, joined_turn)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (guild_id, faction_id, character_id) DO UPDATE SET joined_turn=$4`,
		m.GuildID, m.FactionID, m.CharacterID, m.JoinedTurn)
	return classify(err)
}

func (c *core) DeleteFactionMember(ctx context.Context, guildID int64, factionID, characterID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM faction_members WHERE guild_id=$1 AND faction_id=$2 AND character_id=$3`,
		guildID, factionID, characterID)
	return classify(err)
}

func (c *core) ListFactionPermissions(ctx context.Context, guildID int64, factionID string) ([]model.FactionPermission, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT character_id, permission_type FROM faction_permissions
		WHERE guild_id=$1 AND faction_id=$2 ORDER BY character_id, permission_type`, guildID, factionID)
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
		VALUES ($1,$2,$3,$4) ON CONFLICT (guild_id, faction_id, character_id, permission_type) DO NOTHING`,
		p.GuildID, p.FactionID, p.CharacterID, p.PermissionType)
	return classify(err)
}

func (c *core) DeleteFactionPermission(ctx context.Context, guildID int64, factionID, characterID string, perm model.PermissionType) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM faction_permissions WHERE guild_id=$1 AND faction_id=$2 AND character_id=$3 AND permission_type=$4`,
		guildID, factionID, characterID, perm)
	return classify(err)
}

func (c *core) GetCharacter(ctx context.Context, guildID int64, id string) (*model.Character, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT identifier, display_name, owning_user_id, ore_production, lumber_production,
		       coal_production, rations_production, cloth_production, platinum_production,
		       victory_points, represented_faction_id, representation_changed_turn
		FROM characters WHERE guild_id=$1 AND identifier=$2`, guildID, id)
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
		FROM characters WHERE guild_id=$1 ORDER BY identifier`, guildID)
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
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (guild_id, identifier) DO UPDATE SET
			display_name=$3, owning_user_id=$4, ore_production=$5, lumber_production=$6,
			coal_production=$7, rations_production=$8, cloth_production=$9, platinum_production=$10,
			victory_points=$11, represented_faction_id=$12, representation_changed_turn=$13`,
		ch.GuildID, ch.Identifier, ch.DisplayName, ch.OwningUserID, ch.OreProduction,
		ch.LumberProduction, ch.CoalProduction, ch.RationsProduction, ch.ClothProduction,
		ch.PlatinumProduction, ch.VictoryPoints, ch.RepresentedFactionID, ch.RepresentationChangedTurn)
	return classify(err)
}

// --- Order ---

const orderColumns = `order_id, turn_number, phase, priority, order_type,
	submitted_by_character_id, acting_faction_id, unit_id, source_territory_id,
	target_territory_id, target_character_id, target_faction_id, target_unit_id, resource_type,
	resource_amount, term, turns_executed, build_type_name, path, path_index, speed, blocked_at,
	movement_status, turns_active, status, requires_confirmation, rejection_reason, submitted_at,
	updated_at, updated_turn, resolved_at`

func scanOrder(row interface{ Scan(...interface{}) error }, guildID int64) (*model.Order, error) {
	o := &model.Order{GuildID: guildID}
	var updatedAt, resolvedAt sql.NullTime
	err := row.Scan(&o.OrderID, &o.TurnNumber, &o.Phase, &o.Priority, &o.OrderType,
		&o.SubmittedByID, &o.ActingFactionID, &o.UnitID, &o.SourceTerritory, &o.TargetTerritory,
		&o.TargetCharacter, &o.TargetFactionID, &o.TargetUnitID, &o.ResourceType, &o.ResourceAmount,
		&o.Term, &o.TurnsExecuted, &o.BuildTypeName, pq.Array(&o.Path), &o.PathIndex, &o.Speed,
		&o.BlockedAt, &o.MovementStatus, &o.TurnsActive, &o.Status, &o.RequiresConfirm,
		&o.RejectionReason, &o.SubmittedAt, &updatedAt, &o.UpdatedTurn, &resolvedAt)
	if err == nil {
		if updatedAt.Valid {
			o.UpdatedAt = updatedAt.Time
		}
		if resolvedAt.Valid {
			o.ResolvedAt = resolvedAt.Time
		}
	}
	return o, err
}

func (c *core) GetOrder(ctx context.Context, guildID int64, id string) (*model.Order, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE guild_id=$1 AND order_id=$2`, guildID, id)
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
	rows, err := c.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE guild_id=$1 AND turn_number=$2 ORDER BY order_id`, guildID, turnNumber)
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
		INSERT INTO orders (guild_id, `+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)
		ON CONFLICT (guild_id, order_id) DO UPDATE SET
			turn_number=$3, phase=$4, priority=$5, order_type=$6, submitted_by_character_id=$7,
			acting_faction_id=$8, unit_id=$9, source_territory_id=$10, target_territory_id=$11,
			target_character_id=$12, target_faction_id=$13, target_unit_id=$14, resource_type=$15,
			resource_amount=$16, term=$17, turns_executed=$18, build_type_name=$19, path=$20,
			path_index=$21, speed=$22, blocked_at=$23, movement_status=$24, turns_active=$25,
			status=$26, requires_confirmation=$27, rejection_reason=$28, updated_at=$29,
			updated_turn=$30, resolved_at=$31`,
		o.GuildID, o.OrderID, o.TurnNumber, o.Phase, o.Priority, o.OrderType, o.SubmittedByID,
		o.ActingFactionID, o.UnitID, o.SourceTerritory, o.TargetTerritory, o.TargetCharacter,
		o.TargetFactionID, o.TargetUnitID, o.ResourceType, o.ResourceAmount, o.Term, o.TurnsExecuted,
		o.BuildTypeName, pq.Array(o.Path), o.PathIndex, o.Speed, o.BlockedAt, o.MovementStatus,
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
		FROM alliances WHERE guild_id=$1 AND faction_a_id=$2 AND faction_b_id=$3`, guildID, a, b)
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
		FROM alliances WHERE guild_id=$1 ORDER BY faction_a_id, faction_b_id`, guildID)
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
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (guild_id, faction_a_id, faction_b_id) DO UPDATE SET
			initiated_by_faction_id=$4, status=$5, activated_turn=$6`,
		a.GuildID, x, y, a.InitiatedByFaction, a.Status, a.ActivatedTurn)
	return classify(err)
}

func (c *core) DeleteAlliance(ctx context.Context, guildID int64, a, b string) error {
	if a > b {
		a, b = b, a
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM alliances WHERE guild_id=$1 AND faction_a_id=$2 AND faction_b_id=$3`, guildID, a, b)
	return classify(err)
}

func (c *core) GetWar(ctx context.Context, guildID int64, id string) (*model.War, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT war_id, objective, status, declared_turn FROM wars WHERE guild_id=$1 AND war_id=$2`, guildID, id)
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
		SELECT war_id, objective, status, declared_turn FROM wars WHERE guild_id=$1 ORDER BY war_id`, guildID)
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
		WHERE w.guild_id=$1 AND p.faction_id=$2 AND w.status='ACTIVE' ORDER BY w.war_id`, guildID, factionID)
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
		INSERT INTO wars (guild_id, war_id, objective, status, declared_turn)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (guild_id, war_id) DO UPDATE SET objective=$3, status=$4, declared_turn=$5`,
		w.GuildID, w.WarID, w.Objective, w.Status, w.DeclaredTurn)
	return classify(err)
}

func (c *core) ListWarParticipants(ctx context.Context, guildID int64, warID string) ([]model.WarParticipant, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT faction_id, side, joined_turn, is_original_declarer FROM war_participants
		WHERE guild_id=$1 AND war_id=$2 ORDER BY faction_id`, guildID, warID)
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
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (guild_id, war_id, faction_id) DO UPDATE SET side=$4, joined_turn=$5, is_original_declarer=$6`,
		p.GuildID, p.WarID, p.FactionID, p.Side, p.JoinedTurn, p.IsOriginalDeclarer)
	return classify(err)
}

// --- Economy ---

func (c *core) GetPlayerResources(ctx context.Context, guildID int64, characterID string) (*model.PlayerResources, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT ore, lumber, coal, rations, cloth, platinum FROM player_resources
		WHERE guild_id=$1 AND character_id=$2`, guildID, characterID)
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
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (guild_id, character_id) DO UPDATE SET
			ore=$3, lumber=$4, coal=$5, rations=$6, cloth=$7, platinum=$8`,
		r.GuildID, r.CharacterID, r.Ore, r.Lumber, r.Coal, r.Rations, r.Cloth, r.Platinum)
	return classify(err)
}

func (c *core) GetFactionResources(ctx context.Context, guildID int64, factionID string) (*model.FactionResources, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT ore, lumber, coal, rations, cloth, platinum FROM faction_resources
		WHERE guild_id=$1 AND faction_id=$2`, guildID, factionID)
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
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (guild_id, faction_id) DO UPDATE SET
			ore=$3, lumber=$4, coal=$5, rations=$6, cloth=$7, platinum=$8`,
		r.GuildID, r.FactionID, r.Ore, r.Lumber, r.Coal, r.Rations, r.Cloth, r.Platinum)
	return classify(err)
}

func (c *core) ListPendingTransfers(ctx context.Context, guildID int64, turnNumber int) ([]model.PendingTransfer, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT transfer_id, from_character_id, from_faction_id, to_character_id, to_faction_id,
		       resource, amount
		FROM pending_transfers WHERE guild_id=$1 AND turn_number=$2 ORDER BY transfer_id`, guildID, turnNumber)
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
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (guild_id, transfer_id) DO UPDATE SET
			turn_number=$3, from_character_id=$4, from_faction_id=$5, to_character_id=$6,
			to_faction_id=$7, resource=$8, amount=$9`,
		t.GuildID, t.TransferID, t.TurnNumber, t.FromCharacter, t.FromFaction, t.ToCharacter,
		t.ToFaction, t.Resource, t.Amount)
	return classify(err)
}

func (c *core) DeletePendingTransfer(ctx context.Context, guildID int64, id string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM pending_transfers WHERE guild_id=$1 AND transfer_id=$2`, guildID, id)
	return classify(err)
}

func (c *core) ListSpiritNexuses(ctx context.Context, guildID int64) ([]model.SpiritNexus, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT territory_id, restore_amount, pole_swap_turn FROM spirit_nexuses
		WHERE guild_id=$1 ORDER BY territory_id`, guildID)
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
		INSERT INTO spirit_nexuses (guild_id, territory_id, restore_amount, pole_swap_turn)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (guild_id, territory_id) DO UPDATE SET restore_amount=$3, pole_swap_turn=$4`,
		n.GuildID, n.TerritoryID, n.RestoreAmount, n.PoleSwapTurn)
	return classify(err)
}

// --- Events & config ---

func (c *core) Emit(ctx context.Context, e *model.Event) error {
	row := c.db.QueryRowContext(ctx, `
		INSERT INTO events (guild_id, turn_number, phase, event_type, entity_type, entity_id,
			event_data, affected_character_ids, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, COALESCE($9, now()))
		RETURNING id`,
		e.GuildID, e.TurnNumber, e.Phase, e.EventType, e.EntityType, e.EntityID, e.EventData,
		pq.Array(e.AffectedCharacterIDs), nullableTime(e.Timestamp))
	return classify(row.Scan(&e.ID))
}

func (c *core) GetConfig(ctx context.Context, guildID int64) (*model.WargameConfig, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT current_turn, turn_resolution_enabled, max_movement_stat, gm_reports_channel_id
		FROM wargame_configs WHERE guild_id=$1`, guildID)
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
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (guild_id) DO UPDATE SET
			current_turn=$2, turn_resolution_enabled=$3, max_movement_stat=$4, gm_reports_channel_id=$5`,
		cfg.GuildID, cfg.CurrentTurn, cfg.TurnResolutionEnabled, cfg.MaxMovementStat, cfg.GMReportsChannelID)
	return classify(err)
}

var _ store.Store = (*Store)(nil)
var _ store.Txn = (*txn)(nil)
