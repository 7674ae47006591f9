package repositories

import (
	"context"
	"errors"

	"airdrop-go/internal/model"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidColumn = errors.New("invalid search column")
	ErrStore         = errors.New("store failure")
)

type ProjectRepository interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, input model.ProjectCreate) (model.Project, error)
	ReplaceAll(ctx context.Context, inputs []model.ProjectCreate) error

	ListNames(ctx context.Context) ([]string, error)
	GetByName(ctx context.Context, name string) (model.Project, error)
	ListRequirements(ctx context.Context, projectName string) ([]model.Requirement, error)
	Search(ctx context.Context, column model.SearchColumn, value string) ([]model.Project, error)
	ListByStatus(ctx context.Context, status string) ([]model.Project, error)
	ListStatuses(ctx context.Context) ([]string, error)
}
