package repo

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"Aquaquote/internal/catalog"
)

type Repository interface {
	LoadCatalog(ctx context.Context, base catalog.Definition) (catalog.Definition, error)
	SaveCatalog(ctx context.Context, def catalog.Definition) error
}

const schema = `
CREATE TABLE IF NOT EXISTS catalog_settings (
	key   TEXT PRIMARY KEY,
	value DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS equipment_catalog (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	type              TEXT NOT NULL DEFAULT '',
	fixed             BOOLEAN NOT NULL DEFAULT FALSE,
	fixed_price       DOUBLE PRECISION NOT NULL DEFAULT 0,
	cost_per_capacity DOUBLE PRECISION NOT NULL DEFAULT 0,
	cost_per_diameter DOUBLE PRECISION NOT NULL DEFAULT 0,
	cost_per_volume   DOUBLE PRECISION NOT NULL DEFAULT 0,
	cost_per_flow     DOUBLE PRECISION NOT NULL DEFAULT 0,
	cost_per_piece    DOUBLE PRECISION NOT NULL DEFAULT 0,
	sizing            TEXT NOT NULL DEFAULT ''
)`

// NormalizeDSN adds sslmode=require when the connection string names no
// sslmode, in either URL or key=value form.
func NormalizeDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if strings.Contains(dsn, "?") {
			return dsn + "&sslmode=require"
		}
		return dsn + "?sslmode=require"
	}
	return dsn + " sslmode=require"
}

func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", NormalizeDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("catalog db config: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog db ping: %w", err)
	}
	return db, nil
}

type PostgresCatalogRepository struct {
	db *sql.DB
}

func NewPostgresCatalogDB(db *sql.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

func (r *PostgresCatalogRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// LoadCatalog overlays the stored settings on base and replaces its
// equipment with the stored rows. An empty equipment table is an error.
func (r *PostgresCatalogRepository) LoadCatalog(ctx context.Context, base catalog.Definition) (catalog.Definition, error) {
	def := base
	def.Equipment = nil

	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM catalog_settings")
	if err != nil {
		return catalog.Definition{}, fmt.Errorf("query settings: %w", err)
	}
	for rows.Next() {
		var key string
		var v float64
		if err := rows.Scan(&key, &v); err != nil {
			rows.Close()
			return catalog.Definition{}, err
		}
		if err := def.SetSetting(key, v); err != nil {
			rows.Close()
			return catalog.Definition{}, err
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return catalog.Definition{}, err
	}
	rows.Close()

	query := `SELECT id, name, type, fixed, fixed_price,
		cost_per_capacity, cost_per_diameter, cost_per_volume, cost_per_flow, cost_per_piece, sizing
		FROM equipment_catalog ORDER BY id`
	rows, err = r.db.QueryContext(ctx, query)
	if err != nil {
		return catalog.Definition{}, fmt.Errorf("query equipment: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it catalog.Item
		var sizing string
		err := rows.Scan(&it.ID, &it.Name, &it.Type, &it.Fixed, &it.FixedPrice,
			&it.Costs.CostPerCapacity, &it.Costs.CostPerDiameter, &it.Costs.CostPerVolume,
			&it.Costs.CostPerFlow, &it.Costs.CostPerPiece, &sizing)
		if err != nil {
			return catalog.Definition{}, err
		}
		if it.Sizing, err = catalog.ParseRules(sizing); err != nil {
			return catalog.Definition{}, fmt.Errorf("equipment %s: %w", it.ID, err)
		}
		def.Equipment = append(def.Equipment, it)
	}
	if err := rows.Err(); err != nil {
		return catalog.Definition{}, err
	}
	if len(def.Equipment) == 0 {
		return catalog.Definition{}, fmt.Errorf("equipment_catalog is empty")
	}
	return def, nil
}

// SaveCatalog replaces the stored catalog with def in one transaction.
func (r *PostgresCatalogRepository) SaveCatalog(ctx context.Context, def catalog.Definition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_settings"); err != nil {
		return err
	}
	settings := def.Settings()
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, "INSERT INTO catalog_settings (key, value) VALUES ($1, $2)", k, settings[k]); err != nil {
			return fmt.Errorf("insert setting %s: %w", k, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM equipment_catalog"); err != nil {
		return err
	}
	query := `INSERT INTO equipment_catalog (id, name, type, fixed, fixed_price,
		cost_per_capacity, cost_per_diameter, cost_per_volume, cost_per_flow, cost_per_piece, sizing)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for _, it := range def.Equipment {
		_, err := tx.ExecContext(ctx, query, it.ID, it.Name, it.Type, it.Fixed, it.FixedPrice,
			it.Costs.CostPerCapacity, it.Costs.CostPerDiameter, it.Costs.CostPerVolume,
			it.Costs.CostPerFlow, it.Costs.CostPerPiece, catalog.FormatRules(it.Sizing))
		if err != nil {
			return fmt.Errorf("insert equipment %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}
