package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the Compass tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// --- Countries ---

const countryColumns = `id, name, criteria, created_at, updated_at`

// queryRower is satisfied by both the pool and a transaction.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertCountry(ctx context.Context, q queryRower, c *Country) error {
	valuesJSON, err := json.Marshal(c.Values)
	if err != nil {
		return fmt.Errorf("encode criteria: %w", err)
	}
	err = q.QueryRow(ctx, `
		INSERT INTO compass_countries (name, criteria)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`,
		c.Name, valuesJSON,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapWriteError(err)
}

func (s *PostgresStore) CreateCountry(ctx context.Context, c *Country) error {
	return insertCountry(ctx, s.pool, c)
}

// CreateCountries inserts every country in one transaction. On error no row
// is written.
func (s *PostgresStore) CreateCountries(ctx context.Context, countries []*Country) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, c := range countries {
		if err := insertCountry(ctx, tx, c); err != nil {
			return fmt.Errorf("insert %s: %w", c.Name, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCountry(ctx context.Context, id uuid.UUID) (*Country, error) {
	c, err := scanCountry(s.pool.QueryRow(ctx, `
		SELECT `+countryColumns+` FROM compass_countries WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *PostgresStore) GetCountryByName(ctx context.Context, name string) (*Country, error) {
	c, err := scanCountry(s.pool.QueryRow(ctx, `
		SELECT `+countryColumns+` FROM compass_countries WHERE lower(name) = lower($1)`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *PostgresStore) ListCountries(ctx context.Context) ([]*Country, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+countryColumns+` FROM compass_countries ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Country
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateCountry(ctx context.Context, c *Country) error {
	valuesJSON, err := json.Marshal(c.Values)
	if err != nil {
		return fmt.Errorf("encode criteria: %w", err)
	}
	err = s.pool.QueryRow(ctx, `
		UPDATE compass_countries SET name = $2, criteria = $3, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		c.ID, c.Name, valuesJSON,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return mapWriteError(err)
}

func (s *PostgresStore) DeleteCountry(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM compass_countries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCountry(row pgx.Row) (*Country, error) {
	c := &Country{}
	var valuesJSON []byte
	if err := row.Scan(&c.ID, &c.Name, &valuesJSON, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(valuesJSON, &c.Values); err != nil {
		return nil, fmt.Errorf("decode criteria for %s: %w", c.Name, err)
	}
	return c, nil
}

// --- Preferences ---

func (s *PostgresStore) SavePreferences(ctx context.Context, p *Preferences) error {
	weightsJSON, err := json.Marshal(p.Weights)
	if err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO compass_preferences (session_id, weights)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		p.SessionID, weightsJSON,
	).Scan(&p.ID, &p.CreatedAt)
}

func (s *PostgresStore) GetLatestPreferences(ctx context.Context, sessionID string) (*Preferences, error) {
	p := &Preferences{}
	var weightsJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, session_id, weights, created_at
		FROM compass_preferences
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, sessionID,
	).Scan(&p.ID, &p.SessionID, &weightsJSON, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(weightsJSON, &p.Weights); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}
	return p, nil
}

// --- History ---

func (s *PostgresStore) CreateAnalysisRecord(ctx context.Context, r *AnalysisRecord) error {
	weightsJSON, err := json.Marshal(r.Weights)
	if err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO compass_analyses (session_id, kind, top_country, weights, result)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		r.SessionID, r.Kind, r.TopCountry, weightsJSON, []byte(r.Result),
	).Scan(&r.ID, &r.CreatedAt)
}

func (s *PostgresStore) GetAnalysisHistory(ctx context.Context, sessionID string, limit int) ([]*AnalysisRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, kind, top_country, weights, result, created_at
		FROM compass_analyses
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*AnalysisRecord
	for rows.Next() {
		r := &AnalysisRecord{}
		var weightsJSON, resultJSON []byte
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Kind, &r.TopCountry, &weightsJSON, &resultJSON, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(weightsJSON, &r.Weights); err != nil {
			return nil, fmt.Errorf("decode weights: %w", err)
		}
		r.Result = json.RawMessage(resultJSON)
		out = append(out, r)
	}
	return out, rows.Err()
}

// --- Stats ---

func (s *PostgresStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM compass_countries),
			(SELECT COUNT(*) FROM compass_preferences),
			(SELECT COUNT(*) FROM compass_analyses),
			(SELECT COUNT(*) FROM compass_analyses WHERE kind = 'ranking'),
			(SELECT COUNT(*) FROM compass_analyses WHERE kind = 'sensitivity'),
			(SELECT COUNT(DISTINCT session_id) FROM compass_analyses)`,
	).Scan(&stats.Countries, &stats.Preferences, &stats.Analyses,
		&stats.RankingAnalyses, &stats.SensitivityRuns, &stats.Sessions)
	if err != nil {
		return nil, err
	}

	err = s.pool.QueryRow(ctx, `
		SELECT top_country, COUNT(*) AS n
		FROM compass_analyses
		WHERE top_country <> ''
		GROUP BY top_country
		ORDER BY n DESC, top_country ASC
		LIMIT 1`,
	).Scan(&stats.MostFrequentTop, &stats.MostFrequentTopCnt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return stats, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.Detail)
	}
	return err
}
