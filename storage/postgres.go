package storage

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStore keeps scores and history in Postgres, one row per
// (channel, player) and (channel, clue id).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := migrate(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (ps *PostgresStore) Close() {
	ps.pool.Close()
}

func migrate(pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return goose.Up(db, "migrations")
}

func (ps *PostgresStore) LoadScores(channel string) (map[string]int, error) {
	ctx := context.Background()
	rows, err := ps.pool.Query(ctx,
		"SELECT player, score FROM scores WHERE channel = $1", channel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[string]int)
	for rows.Next() {
		var player string
		var score int
		if err := rows.Scan(&player, &score); err != nil {
			return nil, err
		}
		scores[player] = score
	}
	return scores, rows.Err()
}

func (ps *PostgresStore) SaveScores(channel string, scores map[string]int) error {
	ctx := context.Background()
	batch := &pgx.Batch{}
	for player, score := range scores {
		batch.Queue(`INSERT INTO scores (channel, player, score) VALUES ($1, $2, $3)
			ON CONFLICT (channel, player) DO UPDATE SET score = EXCLUDED.score`,
			channel, player, score)
	}
	return ps.pool.SendBatch(ctx, batch).Close()
}

func (ps *PostgresStore) LoadHistory(channel string) ([]int, error) {
	ctx := context.Background()
	rows, err := ps.pool.Query(ctx,
		"SELECT clue_id FROM history WHERE channel = $1 ORDER BY clue_id", channel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		history = append(history, id)
	}
	return history, rows.Err()
}

func (ps *PostgresStore) SaveHistory(channel string, clueIDs []int) error {
	ctx := context.Background()
	batch := &pgx.Batch{}
	for _, id := range clueIDs {
		batch.Queue(`INSERT INTO history (channel, clue_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, channel, id)
	}
	return ps.pool.SendBatch(ctx, batch).Close()
}
