// Package sqlitestore persists offline caches and the worker registration in SQLite.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/matheus3301/chinopark/internal/offline"
	"github.com/matheus3301/chinopark/internal/offline/sqlitestore/migrations"
)

// DB is a cache.db connection. It implements offline.CacheStorage and
// offline.RegistrationStore.
type DB struct {
	*sql.DB
}

var (
	_ offline.CacheStorage      = (*DB)(nil)
	_ offline.RegistrationStore = (*DB)(nil)
)

// Open opens cache.db with WAL mode and foreign keys on.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}
	return &DB{db}, nil
}

// Migrate applies pending schema migrations.
func (db *DB) Migrate() error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}

func (db *DB) Open(ctx context.Context, name string) (offline.Cache, error) {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO cache_stores (name, seq, created_at)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM cache_stores), ?)`,
		name, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", name, err)
	}
	return &cache{db: db, name: name}, nil
}

func (db *DB) Lookup(ctx context.Context, name string) (offline.Cache, bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM cache_stores WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup cache %s: %w", name, err)
	}
	return &cache{db: db, name: name}, true, nil
}

func (db *DB) Keys(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM cache_stores ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (db *DB) Delete(ctx context.Context, name string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM cache_stores WHERE name = ?`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (db *DB) ActiveVersion(ctx context.Context) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT active_version FROM registration WHERE id = 1`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", offline.ErrNoRegistration
	}
	return v, err
}

func (db *DB) SetActiveVersion(ctx context.Context, version string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO registration (id, active_version, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET active_version = excluded.active_version, updated_at = excluded.updated_at`,
		version, time.Now().Unix())
	return err
}

type cache struct {
	db   *DB
	name string
}

func (c *cache) Match(ctx context.Context, key string) (*offline.Response, error) {
	var (
		resp   offline.Response
		header string
		typ    string
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT url, status, header, body, type FROM cache_entries WHERE cache_name = ? AND key = ?`,
		c.name, key,
	).Scan(&resp.URL, &resp.Status, &header, &resp.Body, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(header), &resp.Header); err != nil {
		return nil, fmt.Errorf("decode header of %s: %w", key, err)
	}
	resp.Type = offline.ResponseType(typ)
	return &resp, nil
}

func (c *cache) Put(ctx context.Context, key string, resp *offline.Response) error {
	return c.PutAll(ctx, []offline.Entry{{Key: key, Response: resp}})
}

func (c *cache) PutAll(ctx context.Context, entries []offline.Entry) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	for _, e := range entries {
		header := e.Response.Header
		if header == nil {
			header = http.Header{}
		}
		hb, err := json.Marshal(header)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cache_entries (cache_name, key, seq, url, status, header, body, type, stored_at)
			 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM cache_entries WHERE cache_name = ?), ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(cache_name, key) DO UPDATE SET
			   url = excluded.url, status = excluded.status, header = excluded.header,
			   body = excluded.body, type = excluded.type, stored_at = excluded.stored_at`,
			c.name, e.Key, c.name, e.Response.URL, e.Response.Status, string(hb), e.Response.Body, string(e.Response.Type), now)
		if err != nil {
			return fmt.Errorf("put %s: %w", e.Key, err)
		}
	}
	return tx.Commit()
}

func (c *cache) Keys(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT key FROM cache_entries WHERE cache_name = ? ORDER BY seq`, c.name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
