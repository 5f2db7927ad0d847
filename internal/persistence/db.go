// Package persistence provides SQLite-based world state storage.
// Tier records serialize as flat per-good JSON arrays plus scalar columns;
// array lengths always equal the good-count constant.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/world"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS counties (
		id INTEGER PRIMARY KEY,
		province_id INTEGER NOT NULL,
		population REAL NOT NULL,
		basic_satisfaction REAL NOT NULL,
		births_month REAL NOT NULL,
		deaths_month REAL NOT NULL,
		migration_month REAL NOT NULL,
		facility_workers REAL NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS provinces (
		id INTEGER PRIMARY KEY,
		realm_id INTEGER NOT NULL,
		treasury REAL NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS realms (
		id INTEGER PRIMARY KEY,
		treasury REAL NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS facilities (
		id INTEGER PRIMARY KEY,
		type_id INTEGER NOT NULL,
		cell INTEGER NOT NULL,
		county_id INTEGER NOT NULL,
		assigned_workers REAL NOT NULL,
		input_buffer REAL NOT NULL,
		output_buffer REAL NOT NULL,
		is_active INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		day INTEGER PRIMARY KEY,
		snapshot_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS prices (
		good INTEGER PRIMARY KEY,
		price REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_facilities_county ON facilities(county_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveState writes the full tier arena to the database (full replace).
func (db *DB) SaveState(st *economy.State, m *world.MapData) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"counties", "provinces", "realms", "facilities", "prices"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	for i := range st.Counties {
		c := &st.Counties[i]
		stateJSON, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal county %d: %w", c.ID, err)
		}
		_, err = tx.Exec(`INSERT INTO counties
			(id, province_id, population, basic_satisfaction, births_month,
			 deaths_month, migration_month, facility_workers, state_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, m.ProvinceOf(c.ID), c.Population, c.BasicSatisfaction,
			c.BirthsThisMonth, c.DeathsThisMonth, c.NetMigrationThisMonth,
			c.FacilityWorkers, string(stateJSON),
		)
		if err != nil {
			return fmt.Errorf("insert county %d: %w", c.ID, err)
		}
	}

	for i := range st.Provinces {
		p := &st.Provinces[i]
		stateJSON, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal province %d: %w", p.ID, err)
		}
		_, err = tx.Exec(
			"INSERT INTO provinces (id, realm_id, treasury, state_json) VALUES (?, ?, ?, ?)",
			p.ID, m.ProvinceRealm[p.ID], p.Treasury, string(stateJSON),
		)
		if err != nil {
			return fmt.Errorf("insert province %d: %w", p.ID, err)
		}
	}

	for i := range st.Realms {
		r := &st.Realms[i]
		stateJSON, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal realm %d: %w", r.ID, err)
		}
		_, err = tx.Exec(
			"INSERT INTO realms (id, treasury, state_json) VALUES (?, ?, ?)",
			r.ID, r.Treasury, string(stateJSON),
		)
		if err != nil {
			return fmt.Errorf("insert realm %d: %w", r.ID, err)
		}
	}

	for i := range st.Facilities {
		f := &st.Facilities[i]
		active := 0
		if f.IsActive {
			active = 1
		}
		_, err = tx.Exec(`INSERT INTO facilities
			(id, type_id, cell, county_id, assigned_workers, input_buffer, output_buffer, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.TypeID, f.Cell, f.CountyID,
			f.AssignedWorkers, f.InputBuffer, f.OutputBuffer, active,
		)
		if err != nil {
			return fmt.Errorf("insert facility %d: %w", f.ID, err)
		}
	}

	for g := 0; g < economy.GoodCount; g++ {
		if _, err := tx.Exec("INSERT INTO prices (good, price) VALUES (?, ?)", g, st.Prices[g]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadState restores the tier arena into a state allocated from the catalog.
// Topology sizes must match the saved world.
func (db *DB) LoadState(st *economy.State) error {
	type row struct {
		ID        int    `db:"id"`
		StateJSON string `db:"state_json"`
	}

	var countyRows []row
	if err := db.conn.Select(&countyRows, "SELECT id, state_json FROM counties ORDER BY id"); err != nil {
		return fmt.Errorf("load counties: %w", err)
	}
	if len(countyRows) != len(st.Counties) {
		return fmt.Errorf("saved world has %d counties, state has %d", len(countyRows), len(st.Counties))
	}
	for _, r := range countyRows {
		if err := json.Unmarshal([]byte(r.StateJSON), &st.Counties[r.ID]); err != nil {
			return fmt.Errorf("unmarshal county %d: %w", r.ID, err)
		}
	}

	var provinceRows []row
	if err := db.conn.Select(&provinceRows, "SELECT id, state_json FROM provinces ORDER BY id"); err != nil {
		return fmt.Errorf("load provinces: %w", err)
	}
	if len(provinceRows) != len(st.Provinces) {
		return fmt.Errorf("saved world has %d provinces, state has %d", len(provinceRows), len(st.Provinces))
	}
	for _, r := range provinceRows {
		if err := json.Unmarshal([]byte(r.StateJSON), &st.Provinces[r.ID]); err != nil {
			return fmt.Errorf("unmarshal province %d: %w", r.ID, err)
		}
	}

	var realmRows []row
	if err := db.conn.Select(&realmRows, "SELECT id, state_json FROM realms ORDER BY id"); err != nil {
		return fmt.Errorf("load realms: %w", err)
	}
	if len(realmRows) != len(st.Realms) {
		return fmt.Errorf("saved world has %d realms, state has %d", len(realmRows), len(st.Realms))
	}
	for _, r := range realmRows {
		if err := json.Unmarshal([]byte(r.StateJSON), &st.Realms[r.ID]); err != nil {
			return fmt.Errorf("unmarshal realm %d: %w", r.ID, err)
		}
	}

	type facRow struct {
		ID              int     `db:"id"`
		TypeID          int     `db:"type_id"`
		Cell            int     `db:"cell"`
		CountyID        int     `db:"county_id"`
		AssignedWorkers float64 `db:"assigned_workers"`
		InputBuffer     float64 `db:"input_buffer"`
		OutputBuffer    float64 `db:"output_buffer"`
		IsActive        int     `db:"is_active"`
	}
	var facRows []facRow
	if err := db.conn.Select(&facRows, "SELECT * FROM facilities ORDER BY id"); err != nil {
		return fmt.Errorf("load facilities: %w", err)
	}
	st.Facilities = st.Facilities[:0]
	for _, r := range facRows {
		if r.TypeID < 0 || r.TypeID >= len(st.Defs) {
			return fmt.Errorf("facility %d references undefined type %d", r.ID, r.TypeID)
		}
		st.Facilities = append(st.Facilities, economy.Facility{
			ID:              r.ID,
			TypeID:          r.TypeID,
			Cell:            r.Cell,
			CountyID:        r.CountyID,
			AssignedWorkers: r.AssignedWorkers,
			InputBuffer:     r.InputBuffer,
			OutputBuffer:    r.OutputBuffer,
			IsActive:        r.IsActive == 1,
		})
	}

	type priceRow struct {
		Good  int     `db:"good"`
		Price float64 `db:"price"`
	}
	var priceRows []priceRow
	if err := db.conn.Select(&priceRows, "SELECT good, price FROM prices"); err != nil {
		return fmt.Errorf("load prices: %w", err)
	}
	for _, r := range priceRows {
		if r.Good >= 0 && r.Good < economy.GoodCount {
			st.Prices[r.Good] = r.Price
		}
	}

	return nil
}

// SaveSnapshot appends one day's snapshot to the time series.
func (db *DB) SaveSnapshot(snap economy.EconomySnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = db.conn.Exec(
		"INSERT OR REPLACE INTO snapshots (day, snapshot_json) VALUES (?, ?)",
		snap.Day, string(raw),
	)
	return err
}

// RecentSnapshots returns the most recent N snapshots, oldest first.
func (db *DB) RecentSnapshots(limit int) ([]economy.EconomySnapshot, error) {
	var rows []struct {
		Day  int    `db:"day"`
		JSON string `db:"snapshot_json"`
	}
	err := db.conn.Select(&rows,
		"SELECT day, snapshot_json FROM snapshots ORDER BY day DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	out := make([]economy.EconomySnapshot, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		var snap economy.EconomySnapshot
		if err := json.Unmarshal([]byte(rows[i].JSON), &snap); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot day %d: %w", rows[i].Day, err)
		}
		out = append(out, snap)
	}
	return out, nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// HasWorldState reports whether a saved world exists.
func (db *DB) HasWorldState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM counties"); err != nil {
		return false
	}
	return count > 0
}

// EnsureRunID returns the persisted run identity, minting one on first use.
func (db *DB) EnsureRunID() (uuid.UUID, error) {
	if val, err := db.GetMeta("run_id"); err == nil {
		if id, err := uuid.Parse(val); err == nil {
			return id, nil
		}
	}
	id := uuid.New()
	if err := db.SaveMeta("run_id", id.String()); err != nil {
		return uuid.Nil, err
	}
	slog.Info("new run identity", "run_id", id)
	return id, nil
}
