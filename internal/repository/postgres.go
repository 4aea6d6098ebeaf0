package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tongue-analyzer/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository stores the optional assessment history. The pipeline
// itself never reads from it; history exists for the operator/product
// surface only, and writes are best-effort.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// SaveAssessment records one completed analysis. The symptom probabilities
// are stored as a vector in model.SymptomKeys order.
func (r *PostgresRepository) SaveAssessment(ctx context.Context, res *model.AssessmentResult, source string) error {
	query := `
		INSERT INTO assessment_history (constitution, score, source, issues, symptoms)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		string(res.Constitution),
		res.Score,
		source,
		model.JSONArray(res.Issues),
		symptomVector(res.Symptoms),
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}
	return nil
}

// RecentAssessments returns the newest history rows, newest first.
func (r *PostgresRepository) RecentAssessments(ctx context.Context, limit int) ([]model.AssessmentRecord, error) {
	query := `
		SELECT id, constitution, score, source, issues, symptoms, created_at
		FROM assessment_history
		ORDER BY created_at DESC
		LIMIT $1
	`
	var records []model.AssessmentRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch recent assessments: %w", err)
	}
	return records, nil
}

// SimilarAssessments returns the history rows whose symptom profiles are
// closest (cosine distance) to the given profile.
func (r *PostgresRepository) SimilarAssessments(ctx context.Context, symptoms map[string]float64, limit int) ([]model.AssessmentRecord, error) {
	query := `
		SELECT id, constitution, score, source, issues, symptoms, created_at,
			symptoms <=> $1 AS distance
		FROM assessment_history
		ORDER BY symptoms <=> $1
		LIMIT $2
	`
	var records []model.AssessmentRecord
	if err := r.db.SelectContext(ctx, &records, query, symptomVector(symptoms), limit); err != nil {
		return nil, fmt.Errorf("failed to fetch similar assessments: %w", err)
	}
	return records, nil
}

// symptomVector flattens a symptom map into pgvector form using the fixed
// key order, so stored vectors stay comparable.
func symptomVector(symptoms map[string]float64) pgvector.Vector {
	values := make([]float32, len(model.SymptomKeys))
	for i, key := range model.SymptomKeys {
		values[i] = float32(symptoms[key])
	}
	return pgvector.NewVector(values)
}
