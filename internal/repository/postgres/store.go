package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/patient-api/internal/model"
	"github.com/jwalitptl/patient-api/internal/repository"
)

// Config holds the connection parameters for the postgres-backed store.
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

const schema = `
CREATE TABLE IF NOT EXISTS patients (
	id       TEXT PRIMARY KEY,
	document JSONB NOT NULL
)`

type store struct {
	db *sqlx.DB
}

func NewDB(cfg Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewStore returns a RecordStore keeping each record as a JSONB
// document keyed by patient id. It preserves the flat-file contract:
// Load reads the whole mapping, Save replaces it wholesale.
func NewStore(db *sqlx.DB) (repository.RecordStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to ensure patients table: %w", err)
	}
	return &store{db: db}, nil
}

type row struct {
	ID       string `db:"id"`
	Document []byte `db:"document"`
}

func (s *store) Load(ctx context.Context) (map[string]*model.Patient, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, document FROM patients`); err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	records := make(map[string]*model.Patient, len(rows))
	for _, r := range rows {
		var p model.Patient
		if err := json.Unmarshal(r.Document, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", r.ID, err)
		}
		records[r.ID] = &p
	}
	return records, nil
}

// Save replaces the stored mapping inside a transaction so a failed
// overwrite cannot leave the table half-emptied. There is still no
// isolation between concurrent load/save pairs.
func (s *store) Save(ctx context.Context, records map[string]*model.Patient) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM patients`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	for id, p := range records {
		document, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal record %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO patients (id, document) VALUES ($1, $2)`,
			id, document,
		); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}
