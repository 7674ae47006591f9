package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"airdrop-go/internal/model"
	"airdrop-go/internal/repositories"
)

// Service is the read side of the project store. Every method returns an
// empty, non-nil result with a nil error when there is simply no data;
// failures are logged and returned.
type Service struct {
	repo repositories.ProjectRepository
	log  *slog.Logger
}

func NewService(repo repositories.ProjectRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) ListProjectNames(ctx context.Context) ([]string, error) {
	names, err := s.repo.ListNames(ctx)
	if err != nil {
		s.log.Error("list project names", "error", err)
		return []string{}, err
	}
	return names, nil
}

// GetProjectInfo returns the first project whose name matches exactly.
func (s *Service) GetProjectInfo(ctx context.Context, name string) (model.Project, error) {
	project, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			s.log.Error("get project info", "project", name, "error", err)
		}
		return model.Project{}, err
	}
	return project, nil
}

func (s *Service) GetRequirements(ctx context.Context, name string) ([]model.Requirement, error) {
	reqs, err := s.repo.ListRequirements(ctx, name)
	if err != nil {
		s.log.Error("get requirements", "project", name, "error", err)
		return []model.Requirement{}, err
	}
	return reqs, nil
}

// Search matches value as a substring of column. column must name one of
// model.SearchColumns; anything else fails before the store is queried.
func (s *Service) Search(ctx context.Context, column, value string) ([]model.Project, error) {
	col, err := model.ParseSearchColumn(column)
	if err != nil {
		s.log.Warn("search rejected", "column", column, "error", err)
		return []model.Project{}, fmt.Errorf("%w: %w", repositories.ErrInvalidColumn, err)
	}

	projects, err := s.repo.Search(ctx, col, value)
	if err != nil {
		s.log.Error("search projects", "column", column, "value", value, "error", err)
		return []model.Project{}, err
	}
	return projects, nil
}

func (s *Service) FilterByStatus(ctx context.Context, status string) ([]model.Project, error) {
	projects, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		s.log.Error("filter by status", "status", status, "error", err)
		return []model.Project{}, err
	}
	return projects, nil
}

// Statuses returns the distinct status values in sorted order.
func (s *Service) Statuses(ctx context.Context) ([]string, error) {
	statuses, err := s.repo.ListStatuses(ctx)
	if err != nil {
		s.log.Error("list statuses", "error", err)
		return []string{}, err
	}
	return statuses, nil
}

// GroupByStatus runs one FilterByStatus per distinct status.
func (s *Service) GroupByStatus(ctx context.Context) (map[string][]model.Project, error) {
	statuses, err := s.Statuses(ctx)
	if err != nil {
		return map[string][]model.Project{}, err
	}

	groups := make(map[string][]model.Project, len(statuses))
	for _, status := range statuses {
		projects, err := s.FilterByStatus(ctx, status)
		if err != nil {
			return map[string][]model.Project{}, err
		}
		groups[status] = projects
	}
	return groups, nil
}
