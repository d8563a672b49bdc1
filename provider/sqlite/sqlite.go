// Package sqlite is a persistent Provider on a single SQLite table, the
// localStorage analog. It uses the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "modernc.org/sqlite"

	pr "github.com/unkn0wn-root/kvcell/provider"
)

const defaultTable = "kvcell"

var (
	ErrNoSource = errors.New("sqlite provider: Path or DB required")
	ErrBadTable = errors.New("sqlite provider: invalid table name")
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

type Config struct {
	// Path opens a database file (":memory:" for a private in-memory db).
	// Ignored when DB is set.
	Path string
	// DB is an already opened handle. It is not closed by Close unless
	// CloseDB is set.
	DB      *sql.DB
	CloseDB bool
	// Table defaults to "kvcell".
	Table string
}

type Provider struct {
	db      *sql.DB
	closeDB bool
	now     func() time.Time

	getQ, setQ, delQ string
}

var _ pr.Provider = (*Provider)(nil)

// Open opens or adopts the database and ensures the table exists.
func Open(ctx context.Context, cfg Config) (*Provider, error) {
	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrBadTable, table)
	}

	db, owned := cfg.DB, cfg.CloseDB
	if db == nil {
		if cfg.Path == "" {
			return nil, ErrNoSource
		}
		var err error
		db, err = sql.Open("sqlite", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		owned = true
		if cfg.Path == ":memory:" {
			// each connection would otherwise get its own empty database
			db.SetMaxOpenConns(1)
		}
	}

	ddl := `CREATE TABLE IF NOT EXISTS ` + table + ` (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		if owned {
			_ = db.Close()
		}
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	return &Provider{
		db:      db,
		closeDB: owned,
		now:     time.Now,
		getQ:    `SELECT value, expires_at FROM ` + table + ` WHERE key = ?`,
		setQ: `INSERT INTO ` + table + ` (key, value, expires_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		delQ: `DELETE FROM ` + table + ` WHERE key = ?`,
	}, nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		b   []byte
		exp int64
	)
	err := p.db.QueryRowContext(ctx, p.getQ, key).Scan(&b, &exp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if exp != 0 && p.now().UnixMilli() >= exp {
		// lazily expire; a failed delete only leaves a stale row behind
		_, _ = p.db.ExecContext(ctx, p.delQ+` AND expires_at = ?`, key, exp)
		return nil, false, nil
	}
	if b == nil {
		b = []byte{}
	}
	return b, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	var exp int64
	if ttl > 0 {
		exp = p.now().Add(ttl).UnixMilli()
	}
	if value == nil {
		value = []byte{}
	}
	if _, err := p.db.ExecContext(ctx, p.setQ, key, value, exp); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, p.delQ, key)
	return err
}

// Close closes the database only when this provider opened or owns it.
func (p *Provider) Close(context.Context) error {
	if p.closeDB {
		return p.db.Close()
	}
	return nil
}
