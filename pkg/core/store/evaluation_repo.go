package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pv_eval/pkg/core/cashflow"
	"pv_eval/pkg/core/metrics"
	"pv_eval/pkg/core/params"
)

// EvaluationRepo stores completed evaluation runs.
type EvaluationRepo struct{}

// NewEvaluationRepo creates a new repository instance.
func NewEvaluationRepo() *EvaluationRepo {
	return &EvaluationRepo{}
}

// EvaluationRecord bundles everything worth persisting about one run.
type EvaluationRecord struct {
	RunID       uuid.UUID                `json:"run_id"`
	Name        string                   `json:"name"`
	Params      params.ProjectParameters `json:"params"`
	Table       *cashflow.Table          `json:"table"`
	Metrics     metrics.Metrics          `json:"metrics"`
	EvaluatedAt time.Time                `json:"evaluated_at"`
}

// Save persists an evaluation run, upserting on the project name so
// re-evaluations replace the previous result.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS pv_evaluations (
//   name TEXT PRIMARY KEY,
//   run_id UUID,
//   evaluation_json JSONB,
//   updated_at TIMESTAMPTZ
// );
func (r *EvaluationRepo) Save(ctx context.Context, rec *EvaluationRecord) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	if rec.RunID == uuid.Nil {
		rec.RunID = uuid.New()
	}
	if rec.EvaluatedAt.IsZero() {
		rec.EvaluatedAt = time.Now()
	}

	jsonData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	query := `
		INSERT INTO pv_evaluations (name, run_id, evaluation_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name)
		DO UPDATE SET
			run_id = EXCLUDED.run_id,
			evaluation_json = EXCLUDED.evaluation_json,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = pool.Exec(ctx, query, rec.Name, rec.RunID, jsonData, rec.EvaluatedAt)
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}

	return nil
}

// Load retrieves the stored run for a project name.
func (r *EvaluationRepo) Load(ctx context.Context, name string) (*EvaluationRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT evaluation_json FROM pv_evaluations WHERE name = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, name).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no evaluation found for project %s", name)
		}
		return nil, fmt.Errorf("failed to load evaluation: %w", err)
	}

	var rec EvaluationRecord
	if err := json.Unmarshal(jsonData, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
	}
	return &rec, nil
}
