// Package store persists the prediction log and model evaluation metrics in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"koiserve/internal/common/fsutil"
	"koiserve/pkg/types"
)

// Store is a SQLite-backed prediction log. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path with WAL journaling.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: empty path")
	}
	if err := fsutil.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            request_id TEXT,
            model_version TEXT NOT NULL,
            label TEXT NOT NULL,
            confidence REAL,
            features TEXT NOT NULL,
            created_at INTEGER NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS model_metrics (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            model_version TEXT NOT NULL UNIQUE,
            accuracy REAL NOT NULL,
            precision REAL NOT NULL,
            recall REAL NOT NULL,
            f1_score REAL NOT NULL,
            training_data_size INTEGER NOT NULL,
            validation_data_size INTEGER NOT NULL,
            feature_importance TEXT,
            recorded_at INTEGER NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_label ON predictions(label)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at)`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// RecordPredictions appends records in one transaction. Zero CreatedAt is set to now.
func (s *Store) RecordPredictions(ctx context.Context, recs []types.PredictionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO predictions
        (request_id, model_version, label, confidence, features, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, r := range recs {
		feats, err := json.Marshal(r.Features)
		if err != nil {
			return fmt.Errorf("encode features: %w", err)
		}
		created := r.CreatedAt
		if created == 0 {
			created = now
		}
		var conf sql.NullFloat64
		if r.Confidence != nil {
			conf = sql.NullFloat64{Float64: *r.Confidence, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, r.RequestID, r.ModelVersion, r.Label, conf, string(feats), created); err != nil {
			return fmt.Errorf("insert prediction: %w", err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit predictions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, request_id, model_version, label, confidence, features, created_at
        FROM predictions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []types.PredictionRecord{}
	for rows.Next() {
		var (
			r     types.PredictionRecord
			reqID sql.NullString
			conf  sql.NullFloat64
			feats string
		)
		if err := rows.Scan(&r.ID, &reqID, &r.ModelVersion, &r.Label, &conf, &feats, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.RequestID = reqID.String
		if conf.Valid {
			c := conf.Float64
			r.Confidence = &c
		}
		if err := json.Unmarshal([]byte(feats), &r.Features); err != nil {
			return nil, fmt.Errorf("decode features of prediction %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats aggregates the prediction log. AverageConfidence covers only
// predictions that carried a confidence.
func (s *Store) Stats(ctx context.Context) (types.PredictionStats, error) {
	st := types.PredictionStats{ByLabel: map[string]int{}}
	rows, err := s.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM predictions GROUP BY label`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			label string
			n     int
		)
		if err := rows.Scan(&label, &n); err != nil {
			return st, err
		}
		st.ByLabel[label] = n
		st.Total += n
	}
	if err := rows.Err(); err != nil {
		return st, err
	}
	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT AVG(confidence) FROM predictions WHERE confidence IS NOT NULL`).Scan(&avg); err != nil {
		return st, err
	}
	st.AverageConfidence = avg.Float64
	return st, nil
}

// RecordMetrics inserts or replaces the metrics of m.ModelVersion.
func (s *Store) RecordMetrics(ctx context.Context, m types.ModelMetrics) error {
	if m.ModelVersion == "" {
		return errors.New("record metrics: empty model version")
	}
	fi, err := json.Marshal(m.FeatureImportance)
	if err != nil {
		return err
	}
	if m.RecordedAt == 0 {
		m.RecordedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO model_metrics
        (model_version, accuracy, precision, recall, f1_score, training_data_size, validation_data_size, feature_importance, recorded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(model_version) DO UPDATE SET
            accuracy = excluded.accuracy,
            precision = excluded.precision,
            recall = excluded.recall,
            f1_score = excluded.f1_score,
            training_data_size = excluded.training_data_size,
            validation_data_size = excluded.validation_data_size,
            feature_importance = excluded.feature_importance,
            recorded_at = excluded.recorded_at`,
		m.ModelVersion, m.Accuracy, m.Precision, m.Recall, m.F1Score,
		m.TrainingDataSize, m.ValidationDataSize, string(fi), m.RecordedAt)
	return err
}

const metricsColumns = `model_version, accuracy, precision, recall, f1_score,
    training_data_size, validation_data_size, feature_importance, recorded_at`

// LatestMetrics returns the most recently recorded metrics.
func (s *Store) LatestMetrics(ctx context.Context) (types.ModelMetrics, bool, error) {
	list, err := s.queryMetrics(ctx, `SELECT `+metricsColumns+` FROM model_metrics ORDER BY recorded_at DESC, id DESC LIMIT 1`)
	if err != nil || len(list) == 0 {
		return types.ModelMetrics{}, false, err
	}
	return list[0], true, nil
}

// MetricsHistory returns every recorded metrics row, newest first.
func (s *Store) MetricsHistory(ctx context.Context) ([]types.ModelMetrics, error) {
	return s.queryMetrics(ctx, `SELECT `+metricsColumns+` FROM model_metrics ORDER BY recorded_at DESC, id DESC`)
}

func (s *Store) queryMetrics(ctx context.Context, q string) ([]types.ModelMetrics, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []types.ModelMetrics{}
	for rows.Next() {
		var (
			m  types.ModelMetrics
			fi sql.NullString
		)
		if err := rows.Scan(&m.ModelVersion, &m.Accuracy, &m.Precision, &m.Recall, &m.F1Score,
			&m.TrainingDataSize, &m.ValidationDataSize, &fi, &m.RecordedAt); err != nil {
			return nil, err
		}
		if fi.Valid && fi.String != "" && fi.String != "null" {
			if err := json.Unmarshal([]byte(fi.String), &m.FeatureImportance); err != nil {
				return nil, fmt.Errorf("decode feature importance: %w", err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }
