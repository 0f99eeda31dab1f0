package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ria-board/src/domain"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// PostgresConfig represents database configuration
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PostgresStore implements domain.Store on a single JSONB document table.
type PostgresStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewPostgresStore opens the database connection and ensures the document table exists.
func NewPostgresStore(config *PostgresConfig, logger *logrus.Logger) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 接続をテスト
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 接続プールの設定
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS board_documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       JSONB NOT NULL,
			PRIMARY KEY (collection, id)
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create document table: %w", err)
	}

	logger.Info("データベースに接続しました")

	return &PostgresStore{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	s.logger.Info("データベース接続を閉じます")
	return s.db.Close()
}

// GetAll returns every record in a named collection.
func (s *PostgresStore) GetAll(ctx context.Context, collection string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM board_documents WHERE collection = $1 ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ID, &rec.Data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Set upserts a full record.
func (s *PostgresStore) Set(ctx context.Context, collection, id string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO board_documents (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`,
		collection, id, data)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update merges fields into an existing record; fails if absent.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields []byte) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE board_documents SET data = data || $3::jsonb
		WHERE collection = $1 AND id = $2`,
		collection, id, fields)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, domain.ErrRecordNotFound)
	}
	return nil
}

// Delete removes a record; idempotent.
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM board_documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// BatchWrite applies a list of set/update/delete operations atomically.
func (s *PostgresStore) BatchWrite(ctx context.Context, collection string, ops []domain.BatchOp) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer tx.Rollback()

	for _, op := range ops {
		switch op.Kind {
		case domain.BatchSet:
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO board_documents (collection, id, data) VALUES ($1, $2, $3)
				ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`,
				collection, op.ID, op.Payload); err != nil {
				return fmt.Errorf("batch set %s/%s: %w", collection, op.ID, err)
			}
		case domain.BatchUpdate:
			res, err := tx.ExecContext(ctx, `
				UPDATE board_documents SET data = data || $3::jsonb
				WHERE collection = $1 AND id = $2`,
				collection, op.ID, op.Payload)
			if err != nil {
				return fmt.Errorf("batch update %s/%s: %w", collection, op.ID, err)
			}
			if affected, err := res.RowsAffected(); err != nil {
				return err
			} else if affected == 0 {
				return fmt.Errorf("batch update %s/%s: %w", collection, op.ID, domain.ErrRecordNotFound)
			}
		case domain.BatchDelete:
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM board_documents WHERE collection = $1 AND id = $2`,
				collection, op.ID); err != nil {
				return fmt.Errorf("batch delete %s/%s: %w", collection, op.ID, err)
			}
		default:
			return fmt.Errorf("unknown batch op kind: %s", op.Kind)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}
