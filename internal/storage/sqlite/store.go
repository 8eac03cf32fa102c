// Package sqlite is a SQLite-backed implementation of storage.Store,
// adapted from the teacher's internal/storage/sqlite.Store: WAL mode,
// database/sql with the pure-Go modernc.org/sqlite driver, one init-schema
// pass of idempotent CREATE TABLE IF NOT EXISTS statements.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SPAN-LLC/langfuse/internal/domain"
	"github.com/SPAN-LLC/langfuse/internal/storage"
)

// Store is a SQLite implementation of storage.Store.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// New opens (creating if necessary) the SQLite database at path and
// initializes its schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS traces (
			project_id TEXT NOT NULL,
			id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (project_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS observations (
			project_id TEXT NOT NULL,
			id TEXT NOT NULL,
			type TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (project_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			project_id TEXT NOT NULL,
			id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (project_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS sdk_logs (
			project_id TEXT NOT NULL,
			id TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (project_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS raw_events (
			project_id TEXT NOT NULL,
			id TEXT NOT NULL,
			type TEXT NOT NULL,
			body TEXT NOT NULL,
			metadata TEXT,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (project_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS job_executions (
			id TEXT NOT NULL,
			project_id TEXT NOT NULL,
			status TEXT NOT NULL,
			end_time TIMESTAMP,
			error TEXT,
			PRIMARY KEY (id, project_id)
		)`,
		`CREATE TABLE IF NOT EXISTS org_api_keys (
			public_key TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			project_id TEXT NOT NULL,
			secret_hash TEXT NOT NULL,
			plan TEXT NOT NULL,
			access_level TEXT NOT NULL DEFAULT 'all',
			rate_limits TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_observations_project ON observations(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_project ON scores(project_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) UpsertTrace(ctx context.Context, projectID, id string, body []byte) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO traces (project_id, id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (project_id, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		projectID, id, string(body), now, now)
	if err != nil {
		return fmt.Errorf("upsert trace: %w", err)
	}
	return nil
}

func (s *Store) UpsertObservation(ctx context.Context, projectID, id, observationType string, body []byte) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO observations (project_id, id, type, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, id) DO UPDATE SET type = excluded.type, body = excluded.body, updated_at = excluded.updated_at`,
		projectID, id, observationType, string(body), now, now)
	if err != nil {
		return fmt.Errorf("upsert observation: %w", err)
	}
	return nil
}

func (s *Store) UpsertScore(ctx context.Context, projectID, id string, body []byte) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scores (project_id, id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (project_id, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		projectID, id, string(body), now, now)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

func (s *Store) InsertSdkLog(ctx context.Context, projectID, id string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sdk_logs (project_id, id, body, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (project_id, id) DO UPDATE SET body = excluded.body`,
		projectID, id, string(body), time.Now())
	if err != nil {
		return fmt.Errorf("insert sdk log: %w", err)
	}
	return nil
}

func (s *Store) PersistRawEvent(ctx context.Context, projectID string, event *domain.Event, metadata []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO raw_events (project_id, id, type, body, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, id) DO UPDATE SET body = excluded.body, metadata = excluded.metadata`,
		projectID, event.ID, string(event.Type), string(event.Body), string(metadata), time.Now())
	if err != nil {
		return fmt.Errorf("persist raw event: %w", err)
	}
	return nil
}

func (s *Store) MarkError(ctx context.Context, id, projectID, displayError string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_executions (id, project_id, status, end_time, error)
		VALUES (?, ?, 'ERROR', ?, ?)
		ON CONFLICT (id, project_id) DO UPDATE SET
			status = CASE WHEN job_executions.status IN ('COMPLETED','ERROR') THEN job_executions.status ELSE 'ERROR' END,
			end_time = CASE WHEN job_executions.status IN ('COMPLETED','ERROR') THEN job_executions.end_time ELSE excluded.end_time END,
			error = CASE WHEN job_executions.status IN ('COMPLETED','ERROR') THEN job_executions.error ELSE excluded.error END`,
		id, projectID, now, displayError)
	if err != nil {
		return fmt.Errorf("mark job execution error: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id, projectID string) (*domain.JobExecution, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, status, end_time, error FROM job_executions WHERE id = ? AND project_id = ?`,
		id, projectID)

	var je domain.JobExecution
	var endTime sql.NullTime
	var errMsg sql.NullString
	if err := row.Scan(&je.ID, &je.ProjectID, &je.Status, &endTime, &errMsg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job execution: %w", err)
	}
	if endTime.Valid {
		je.EndTime = &endTime.Time
	}
	if errMsg.Valid {
		je.Error = &errMsg.String
	}
	return &je, nil
}

func (s *Store) Lookup(ctx context.Context, publicKey string) (*domain.OrgEnrichedApiKey, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT public_key, org_id, project_id, secret_hash, plan, access_level, rate_limits FROM org_api_keys WHERE public_key = ?`,
		publicKey)

	var key domain.OrgEnrichedApiKey
	var rateLimitsJSON sql.NullString
	if err := row.Scan(&key.PublicKey, &key.OrgID, &key.ProjectID, &key.SecretHash, &key.Plan, &key.AccessLevel, &rateLimitsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup org api key: %w", err)
	}
	if rateLimitsJSON.Valid && rateLimitsJSON.String != "" {
		if err := json.Unmarshal([]byte(rateLimitsJSON.String), &key.RateLimits); err != nil {
			return nil, fmt.Errorf("unmarshal rate limits: %w", err)
		}
	}
	return &key, nil
}

func (s *Store) Put(ctx context.Context, key *domain.OrgEnrichedApiKey) error {
	rateLimitsJSON, err := json.Marshal(key.RateLimits)
	if err != nil {
		return fmt.Errorf("marshal rate limits: %w", err)
	}
	accessLevel := key.AccessLevel
	if accessLevel == "" {
		accessLevel = domain.AccessLevelAll
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO org_api_keys (public_key, org_id, project_id, secret_hash, plan, access_level, rate_limits)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (public_key) DO UPDATE SET
			org_id = excluded.org_id, project_id = excluded.project_id, secret_hash = excluded.secret_hash,
			plan = excluded.plan, access_level = excluded.access_level, rate_limits = excluded.rate_limits`,
		key.PublicKey, key.OrgID, key.ProjectID, key.SecretHash, string(key.Plan), string(accessLevel), string(rateLimitsJSON))
	if err != nil {
		return fmt.Errorf("put org api key: %w", err)
	}
	return nil
}
