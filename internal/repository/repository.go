package repository

import (
	"context"
	"errors"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

var (
	ErrCaseNotFound     = errors.New("case not found")
	ErrInstanceNotFound = errors.New("alert instance not found")
)

// CaseRepository persists case records. Cases are never physically deleted;
// terminal statuses soft-close them for audit.
type CaseRepository interface {
	CreateCase(ctx context.Context, c *models.Case) error
	GetCase(ctx context.Context, id string) (*models.Case, error)
	UpdateCase(ctx context.Context, c *models.Case) error
	ListActiveCases(ctx context.Context) ([]*models.Case, error)
}

// AlertRepository persists alert instance records, including resolved history.
type AlertRepository interface {
	CreateInstance(ctx context.Context, a *models.AlertInstance) error
	GetInstance(ctx context.Context, id string) (*models.AlertInstance, error)
	UpdateInstance(ctx context.Context, a *models.AlertInstance) error
	ListOpenInstances(ctx context.Context) ([]*models.AlertInstance, error)
}

// Repository is the combined persistence interface for the triage service.
type Repository interface {
	CaseRepository
	AlertRepository
	Close() error
}
