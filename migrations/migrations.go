// Package migrations holds the versioned SQL schema changes applied by
// cmd/migrate on top of the models' AutoMigrate.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Direction selects the up or down script of a migration
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migration is one versioned script
type Migration struct {
	Version string
	SQL     string
}

// List returns the scripts for dir ordered by version, oldest first
func List(dir Direction) ([]Migration, error) {
	suffix := "." + string(dir) + ".sql"
	names, err := fs.Glob(files, "*"+suffix)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		out = append(out, Migration{
			Version: strings.TrimSuffix(name, suffix),
			SQL:     string(body),
		})
	}
	return out, nil
}

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version VARCHAR(255) PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT NOW()
)`

// Runner applies migrations against a PostgreSQL database and records
// applied versions in schema_migrations.
type Runner struct {
	db *sql.DB
}

func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) applied(ctx context.Context) (map[string]bool, error) {
	if _, err := r.db.ExecContext(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}

// Up applies every pending migration and returns the versions applied
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	all, err := List(Up)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, m := range all {
		if done[m.Version] {
			continue
		}
		if err := r.exec(ctx, m, `INSERT INTO schema_migrations (version) VALUES ($1)`); err != nil {
			return ran, err
		}
		ran = append(ran, m.Version)
	}
	return ran, nil
}

// Down reverts up to steps applied migrations, newest first
func (r *Runner) Down(ctx context.Context, steps int) ([]string, error) {
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	all, err := List(Down)
	if err != nil {
		return nil, err
	}

	var ran []string
	for i := len(all) - 1; i >= 0 && len(ran) < steps; i-- {
		m := all[i]
		if !done[m.Version] {
			continue
		}
		if err := r.exec(ctx, m, `DELETE FROM schema_migrations WHERE version = $1`); err != nil {
			return ran, err
		}
		ran = append(ran, m.Version)
	}
	return ran, nil
}

// exec runs a script and its bookkeeping statement in one transaction
func (r *Runner) exec(ctx context.Context, m Migration, record string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("migration %s: %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx, record, m.Version); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Version, err)
	}
	return tx.Commit()
}
