package source

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the Postgres source needs.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// Postgres reads the operations, expenses and users tables from a Postgres
// database, typically a read replica.
type Postgres struct {
	pool Pool
}

// NewPostgres creates a Postgres source with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*Postgres, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return NewPostgresFromPool(pool), nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Load implements Source.
func (p *Postgres) Load(ctx context.Context) (*Snapshot, error) {
	byTable := make(map[string][]record, len(tables))
	for _, tbl := range tables {
		recs, err := p.queryTable(ctx, tbl.name, tbl.columns)
		if err != nil {
			return nil, err
		}
		byTable[tbl.name] = recs
	}

	snap, err := snapshotFromRecords(byTable)
	if err != nil {
		return nil, err
	}
	logLoaded("postgres", snap)
	return snap, nil
}

func (p *Postgres) queryTable(ctx context.Context, table string, columns []string) ([]record, error) {
	query := selectText(table, columns, func(col string) string {
		return "COALESCE(" + col + "::text, '')"
	})
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", table)
	}
	defer rows.Close()

	recs, err := scanRecords(columns, rows.Next, rows.Scan)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: scan %s", table)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "postgres: iterate %s", table)
	}
	return recs, nil
}

// Close implements Source.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
