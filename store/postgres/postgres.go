// Package postgres is a store.Store backed by PostgreSQL.
//
// Each project is one row holding the whole document as jsonb. The unique
// generation_id column makes creation idempotent: a second Create for the
// same generation hits the constraint and returns the stored project.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/store"
)

// Schema creates the projects table.
const Schema = `
create table if not exists artboard_projects (
    id            text primary key,
    generation_id text not null unique,
    document      jsonb not null,
    created_at    timestamptz not null default now(),
    updated_at    timestamptz not null default now()
);
`

const uniqueViolation = "23505"

// Store is a PostgreSQL project store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New returns a Store using db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn through the pgx driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("store/postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store/postgres: ping: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return New(db), nil
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("store/postgres: migrate: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (*artboard.Project, error) {
	const q = `
select document
from artboard_projects
where id = $1 or generation_id = $1
order by (id = $1) desc
limit 1;
`
	return scanProject(id, s.db.QueryRowContext(ctx, q, id))
}

// Create implements store.Store.
func (s *Store) Create(ctx context.Context, generationID string, initial *artboard.Project) (*artboard.Project, error) {
	p, err := store.Prepare(generationID, initial)
	if err != nil {
		return nil, err
	}

	const q = `
insert into artboard_projects (id, generation_id, document)
values ($1, $2, $3)
returning document;
`
	for range 5 {
		doc, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("store/postgres: encode %s: %w", p.ID, err)
		}
		created, err := scanProject(p.ID, s.db.QueryRowContext(ctx, q, p.ID, generationID, string(doc)))
		if err == nil {
			artboard.Logger().Info("store: project created", "project", created.ID, "generation", generationID)
			return created, nil
		}

		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
			return nil, fmt.Errorf("store/postgres: create %s: %w", generationID, err)
		}
		// The generation already has a project.
		if pgErr.ConstraintName == "artboard_projects_generation_id_key" {
			return s.getByGeneration(ctx, generationID)
		}
		// The id collided with another generation's project; pick a new one.
		p.ID = ""
		if p, err = store.Prepare(generationID, p); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("store/postgres: create %s: failed to generate unique project id", generationID)
}

func (s *Store) getByGeneration(ctx context.Context, generationID string) (*artboard.Project, error) {
	const q = `select document from artboard_projects where generation_id = $1;`
	return scanProject(generationID, s.db.QueryRowContext(ctx, q, generationID))
}

// Update implements store.Store. The row is locked for the
// read-modify-write so concurrent patches apply in sequence.
func (s *Store) Update(ctx context.Context, id string, patch artboard.Patch) (*artboard.Project, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store/postgres: begin: %w", err)
	}
	defer tx.Rollback()

	const sel = `select document from artboard_projects where id = $1 for update;`
	cur, err := scanProject(id, tx.QueryRowContext(ctx, sel, id))
	if err != nil {
		return nil, err
	}
	next, err := cur.WithPatch(patch)
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("store/postgres: encode %s: %w", id, err)
	}

	const upd = `update artboard_projects set document = $2, updated_at = now() where id = $1;`
	if _, err := tx.ExecContext(ctx, upd, id, string(doc)); err != nil {
		return nil, fmt.Errorf("store/postgres: update %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store/postgres: commit %s: %w", id, err)
	}
	return next, nil
}

func scanProject(id string, row *sql.Row) (*artboard.Project, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound(id)
		}
		return nil, fmt.Errorf("store/postgres: query %s: %w", id, err)
	}
	var p artboard.Project
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("store/postgres: decode %s: %w", id, err)
	}
	return &p, nil
}
