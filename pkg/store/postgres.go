package store

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/finanvoice/voz/pkg/core/finance"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres is the PostgreSQL-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database at dsn and runs pending migrations.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}
	if err := migrate(pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func migrate(pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("postgres store: set dialect: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("postgres store: migrate: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) SaveTransaction(ctx context.Context, t finance.Transaction) (finance.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO transactions (id, amount, date, description, type, category)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Amount, t.Date, t.Description, string(t.Type), t.Category)
	if err != nil {
		return finance.Transaction{}, fmt.Errorf("postgres store: save transaction: %w", err)
	}
	return t, nil
}

func (p *Postgres) ListTransactions(ctx context.Context) ([]finance.Transaction, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, amount, date, description, type, category
		FROM transactions
		ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list transactions: %w", err)
	}
	defer rows.Close()

	var out []finance.Transaction
	for rows.Next() {
		var t finance.Transaction
		var typ string
		if err := rows.Scan(&t.ID, &t.Amount, &t.Date, &t.Description, &typ, &t.Category); err != nil {
			return nil, fmt.Errorf("postgres store: scan transaction: %w", err)
		}
		t.Type = finance.TransactionType(typ)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: list transactions: %w", err)
	}
	return out, nil
}

func (p *Postgres) DeleteTransaction(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres store: delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveGoal(ctx context.Context, g finance.Goal) (finance.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	// Single-user model: one goal row.
	_, err := p.pool.Exec(ctx, `
		INSERT INTO goals (singleton, id, title, target_amount, current_amount)
		VALUES (TRUE, $1, $2, $3, $4)
		ON CONFLICT (singleton) DO UPDATE
		SET id = EXCLUDED.id,
		    title = EXCLUDED.title,
		    target_amount = EXCLUDED.target_amount,
		    current_amount = EXCLUDED.current_amount`,
		g.ID, g.Title, g.TargetAmount, g.CurrentAmount)
	if err != nil {
		return finance.Goal{}, fmt.Errorf("postgres store: save goal: %w", err)
	}
	return g, nil
}

func (p *Postgres) Goal(ctx context.Context) (finance.Goal, error) {
	var g finance.Goal
	err := p.pool.QueryRow(ctx, `
		SELECT id, title, target_amount, current_amount FROM goals WHERE singleton`).
		Scan(&g.ID, &g.Title, &g.TargetAmount, &g.CurrentAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return finance.Goal{}, ErrNotFound
	}
	if err != nil {
		return finance.Goal{}, fmt.Errorf("postgres store: load goal: %w", err)
	}
	return g, nil
}
