package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// CreateCase inserts a new case record.
func (r *PostgresRepository) CreateCase(ctx context.Context, c *models.Case) error {
	query := `
		INSERT INTO cases (id, patient_name, species, complaint, triage_level, status,
			created_at, assigned_vet_id, consultation_start, consultation_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.PatientName, c.Species, c.Complaint, c.TriageLevel, c.Status,
		c.CreatedAt, c.AssignedVetID, c.ConsultationStart, c.ConsultationEnd,
	)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	return nil
}

// GetCase retrieves a case by ID.
func (r *PostgresRepository) GetCase(ctx context.Context, id string) (*models.Case, error) {
	query := `
		SELECT id, patient_name, species, complaint, triage_level, status,
			created_at, assigned_vet_id, consultation_start, consultation_end, updated_at
		FROM cases
		WHERE id = $1
	`

	c := &models.Case{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.PatientName, &c.Species, &c.Complaint, &c.TriageLevel, &c.Status,
		&c.CreatedAt, &c.AssignedVetID, &c.ConsultationStart, &c.ConsultationEnd, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	return c, nil
}

// UpdateCase writes the mutable fields of a case record.
func (r *PostgresRepository) UpdateCase(ctx context.Context, c *models.Case) error {
	query := `
		UPDATE cases
		SET status = $2, assigned_vet_id = $3, consultation_start = $4,
			consultation_end = $5, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		c.ID, c.Status, c.AssignedVetID, c.ConsultationStart, c.ConsultationEnd,
	)
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCaseNotFound
	}

	return nil
}

// ListActiveCases retrieves all cases whose status is not terminal.
func (r *PostgresRepository) ListActiveCases(ctx context.Context) ([]*models.Case, error) {
	query := `
		SELECT id, patient_name, species, complaint, triage_level, status,
			created_at, assigned_vet_id, consultation_start, consultation_end, updated_at
		FROM cases
		WHERE status NOT IN ('complete', 'cancelled')
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active cases: %w", err)
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		c := &models.Case{}
		if err := rows.Scan(
			&c.ID, &c.PatientName, &c.Species, &c.Complaint, &c.TriageLevel, &c.Status,
			&c.CreatedAt, &c.AssignedVetID, &c.ConsultationStart, &c.ConsultationEnd, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cases: %w", err)
	}

	return cases, nil
}

// CreateInstance inserts a new alert instance record.
func (r *PostgresRepository) CreateInstance(ctx context.Context, a *models.AlertInstance) error {
	query := `
		INSERT INTO alert_instances (id, rule_id, rule_name, severity, metric, value,
			triggered_at, acknowledged_at, acknowledged_by, resolved_at, current_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.RuleID, a.RuleName, a.Severity, a.Metric, a.Value,
		a.TriggeredAt, a.AcknowledgedAt, a.AcknowledgedBy, a.ResolvedAt, a.CurrentLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert instance: %w", err)
	}

	return nil
}

// GetInstance retrieves an alert instance by ID.
func (r *PostgresRepository) GetInstance(ctx context.Context, id string) (*models.AlertInstance, error) {
	query := `
		SELECT id, rule_id, rule_name, severity, metric, value,
			triggered_at, acknowledged_at, acknowledged_by, resolved_at, current_level
		FROM alert_instances
		WHERE id = $1
	`

	a := &models.AlertInstance{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.RuleID, &a.RuleName, &a.Severity, &a.Metric, &a.Value,
		&a.TriggeredAt, &a.AcknowledgedAt, &a.AcknowledgedBy, &a.ResolvedAt, &a.CurrentLevel,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to get alert instance: %w", err)
	}

	return a, nil
}

// UpdateInstance writes the mutable fields of an alert instance record.
func (r *PostgresRepository) UpdateInstance(ctx context.Context, a *models.AlertInstance) error {
	query := `
		UPDATE alert_instances
		SET acknowledged_at = $2, acknowledged_by = $3, resolved_at = $4, current_level = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		a.ID, a.AcknowledgedAt, a.AcknowledgedBy, a.ResolvedAt, a.CurrentLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert instance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInstanceNotFound
	}

	return nil
}

// ListOpenInstances retrieves all unresolved alert instances.
func (r *PostgresRepository) ListOpenInstances(ctx context.Context) ([]*models.AlertInstance, error) {
	query := `
		SELECT id, rule_id, rule_name, severity, metric, value,
			triggered_at, acknowledged_at, acknowledged_by, resolved_at, current_level
		FROM alert_instances
		WHERE resolved_at IS NULL
		ORDER BY triggered_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open instances: %w", err)
	}
	defer rows.Close()

	var instances []*models.AlertInstance
	for rows.Next() {
		a := &models.AlertInstance{}
		if err := rows.Scan(
			&a.ID, &a.RuleID, &a.RuleName, &a.Severity, &a.Metric, &a.Value,
			&a.TriggeredAt, &a.AcknowledgedAt, &a.AcknowledgedBy, &a.ResolvedAt, &a.CurrentLevel,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert instance: %w", err)
		}
		instances = append(instances, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert instances: %w", err)
	}

	return instances, nil
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
