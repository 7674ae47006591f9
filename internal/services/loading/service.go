package loading

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"airdrop-go/internal/model"
	"airdrop-go/internal/repositories"
)

type Summary struct {
	Projects     int
	Requirements int
}

// Service imports the JSON project source into the store.
type Service struct {
	repo repositories.ProjectRepository
	log  *slog.Logger
	path string

	mu         sync.Mutex
	running    bool
	lastLoaded time.Time
}

func NewService(repo repositories.ProjectRepository, log *slog.Logger, path string) *Service {
	return &Service{repo: repo, log: log, path: path}
}

func (s *Service) Path() string {
	return s.path
}

// Load appends every project in the file at path to the store, one
// transaction per project, in document order. The first bad record stops
// the import; projects committed before it stay in the store.
func (s *Service) Load(ctx context.Context, path string) (Summary, error) {
	var summary Summary

	items, err := readSource(path)
	if err != nil {
		s.log.Error("cannot read project source", "path", path, "error", err)
		return summary, err
	}
	modTime := sourceModTime(path)

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		project, err := decodeProject(i, item)
		if err != nil {
			s.log.Error("import aborted", "path", path, "imported", summary.Projects, "error", err)
			return summary, err
		}
		s.warnDuplicate(seen, project.ProjectName)

		if _, err := s.repo.Create(ctx, project); err != nil {
			s.log.Error("import aborted", "path", path, "imported", summary.Projects, "error", err)
			return summary, fmt.Errorf("insert project %q: %w", project.ProjectName, err)
		}
		summary.Projects++
		summary.Requirements += len(project.Requirements)
	}

	s.markLoaded(modTime)
	s.log.Info("projects imported", "path", path, "projects", summary.Projects, "requirements", summary.Requirements)
	return summary, nil
}

// Reload validates the whole file and then replaces the store contents
// with it atomically. On any error the store is left untouched.
func (s *Service) Reload(ctx context.Context, path string) (Summary, error) {
	var summary Summary

	items, err := readSource(path)
	if err != nil {
		s.log.Error("cannot read project source", "path", path, "error", err)
		return summary, err
	}
	modTime := sourceModTime(path)

	projects := make([]model.ProjectCreate, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		project, err := decodeProject(i, item)
		if err != nil {
			s.log.Error("reload rejected", "path", path, "error", err)
			return summary, err
		}
		s.warnDuplicate(seen, project.ProjectName)
		projects = append(projects, project)
		summary.Requirements += len(project.Requirements)
	}

	if err := s.repo.ReplaceAll(ctx, projects); err != nil {
		s.log.Error("reload failed", "path", path, "error", err)
		return Summary{}, fmt.Errorf("replace projects: %w", err)
	}
	summary.Projects = len(projects)

	s.markLoaded(modTime)
	s.log.Info("projects reloaded", "path", path, "projects", summary.Projects, "requirements", summary.Requirements)
	return summary, nil
}

// LoadIfEmpty imports the configured source only when the store holds no
// projects, so repeated starts do not duplicate rows.
func (s *Service) LoadIfEmpty(ctx context.Context) (Summary, bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return Summary{}, false, err
	}
	if n > 0 {
		s.log.Debug("store already populated; skipping import", "projects", n)
		return Summary{}, false, nil
	}
	summary, err := s.Load(ctx, s.path)
	return summary, true, err
}

// Refresh reloads the configured source when its modification time has
// changed since the last successful load. Concurrent calls are dropped.
func (s *Service) Refresh(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Info("refresh already running; skipping")
		return
	}
	s.running = true
	last := s.lastLoaded
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	info, err := os.Stat(s.path)
	if err != nil {
		s.log.Error("refresh: cannot stat source", "path", s.path, "error", err)
		return
	}
	if !last.IsZero() && info.ModTime().Equal(last) {
		s.log.Debug("refresh: source unchanged", "path", s.path)
		return
	}

	if _, err := s.Reload(ctx, s.path); err != nil {
		s.log.Error("refresh failed", "error", err)
	}
}

func (s *Service) warnDuplicate(seen map[string]struct{}, name string) {
	if _, dup := seen[name]; dup {
		s.log.Warn("duplicate project name; lookups return the first one", "project", name)
		return
	}
	seen[name] = struct{}{}
}

func (s *Service) markLoaded(modTime time.Time) {
	if modTime.IsZero() {
		return
	}
	s.mu.Lock()
	s.lastLoaded = modTime
	s.mu.Unlock()
}

func sourceModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
