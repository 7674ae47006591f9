package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"airdrop-go/internal/config"
	"airdrop-go/internal/model"
	"airdrop-go/internal/repositories"
)

const projectColumns = `id, project_name, description_short, description_full,
	rewards_amount, rewards_approximate_amount, rewards_distribution_date,
	links_website, links_twitter, links_telegram, links_discord,
	status, last_updated`

type ProjectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

var _ repositories.ProjectRepository = (*ProjectRepository)(nil)

func (r *ProjectRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM projects`); err != nil {
		return 0, storeErr("count projects", err)
	}
	return n, nil
}

// Create inserts the project and its requirements in one transaction.
func (r *ProjectRepository) Create(ctx context.Context, input model.ProjectCreate) (model.Project, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Project{}, storeErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	project, err := insertProject(ctx, tx, input)
	if err != nil {
		return model.Project{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Project{}, storeErr("commit", err)
	}
	return project, nil
}

// ReplaceAll drops every stored project and inserts inputs, atomically.
func (r *ProjectRepository) ReplaceAll(ctx context.Context, inputs []model.ProjectCreate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	// requirements first: the cascade is declared but not relied on
	if _, err := tx.ExecContext(ctx, `DELETE FROM requirements`); err != nil {
		return storeErr("delete requirements", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects`); err != nil {
		return storeErr("delete projects", err)
	}

	for _, input := range inputs {
		if _, err := insertProject(ctx, tx, input); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	return nil
}

func (r *ProjectRepository) ListNames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := r.db.SelectContext(ctx, &names, `SELECT project_name FROM projects ORDER BY id`); err != nil {
		return nil, storeErr("list project names", err)
	}
	return names, nil
}

// GetByName returns the earliest inserted project with exactly this name.
func (r *ProjectRepository) GetByName(ctx context.Context, name string) (model.Project, error) {
	q := r.db.Rebind(`SELECT ` + projectColumns + ` FROM projects WHERE project_name = ? ORDER BY id LIMIT 1`)

	var project model.Project
	if err := r.db.GetContext(ctx, &project, q, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Project{}, repositories.ErrNotFound
		}
		return model.Project{}, storeErr("get project", err)
	}
	return project, nil
}

func (r *ProjectRepository) ListRequirements(ctx context.Context, projectName string) ([]model.Requirement, error) {
	q := r.db.Rebind(`
		SELECT r.task, r.difficulty, r.deadline
		FROM requirements r
		JOIN projects p ON r.project_id = p.id
		WHERE p.project_name = ?
		ORDER BY r.id`)

	reqs := []model.Requirement{}
	if err := r.db.SelectContext(ctx, &reqs, q, projectName); err != nil {
		return nil, storeErr("list requirements", err)
	}
	return reqs, nil
}

// Search runs a substring match on column. The column is checked against
// the allow-list again here because its name is written into the SQL text.
func (r *ProjectRepository) Search(ctx context.Context, column model.SearchColumn, value string) ([]model.Project, error) {
	if !column.Valid() {
		return nil, fmt.Errorf("%w: %q", repositories.ErrInvalidColumn, string(column))
	}

	q := r.db.Rebind(`SELECT ` + projectColumns + ` FROM projects WHERE ` +
		string(column) + ` ` + r.likeOperator() + ` ? ORDER BY id`)

	projects := []model.Project{}
	if err := r.db.SelectContext(ctx, &projects, q, "%"+value+"%"); err != nil {
		return nil, storeErr("search projects", err)
	}
	return projects, nil
}

func (r *ProjectRepository) ListByStatus(ctx context.Context, status string) ([]model.Project, error) {
	q := r.db.Rebind(`SELECT ` + projectColumns + ` FROM projects WHERE status = ? ORDER BY id`)

	projects := []model.Project{}
	if err := r.db.SelectContext(ctx, &projects, q, status); err != nil {
		return nil, storeErr("filter projects by status", err)
	}
	return projects, nil
}

func (r *ProjectRepository) ListStatuses(ctx context.Context) ([]string, error) {
	statuses := []string{}
	if err := r.db.SelectContext(ctx, &statuses, `SELECT DISTINCT status FROM projects ORDER BY status`); err != nil {
		return nil, storeErr("list statuses", err)
	}
	return statuses, nil
}

// sqlite's LIKE already ignores ASCII case; postgres needs ILIKE to match.
func (r *ProjectRepository) likeOperator() string {
	if r.db.DriverName() == config.DriverPostgres {
		return "ILIKE"
	}
	return "LIKE"
}

func insertProject(ctx context.Context, tx *sqlx.Tx, input model.ProjectCreate) (model.Project, error) {
	const insertProjectSQL = `
		INSERT INTO projects (
			project_name, description_short, description_full,
			rewards_amount, rewards_approximate_amount, rewards_distribution_date,
			links_website, links_twitter, links_telegram, links_discord,
			status, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	const insertRequirementSQL = `
		INSERT INTO requirements (project_id, task, difficulty, deadline)
		VALUES (?, ?, ?, ?)`

	project := model.Project{
		ProjectName:              input.ProjectName,
		DescriptionShort:         input.DescriptionShort,
		DescriptionFull:          input.DescriptionFull,
		RewardsAmount:            input.RewardsAmount,
		RewardsApproximateAmount: input.RewardsApproximateAmount,
		RewardsDistributionDate:  input.RewardsDistributionDate,
		LinksWebsite:             input.LinksWebsite,
		LinksTwitter:             input.LinksTwitter,
		LinksTelegram:            input.LinksTelegram,
		LinksDiscord:             input.LinksDiscord,
		Status:                   input.Status,
		LastUpdated:              input.LastUpdated,
	}

	err := tx.QueryRowxContext(ctx, tx.Rebind(insertProjectSQL),
		project.ProjectName, project.DescriptionShort, project.DescriptionFull,
		project.RewardsAmount, project.RewardsApproximateAmount, project.RewardsDistributionDate,
		project.LinksWebsite, project.LinksTwitter, project.LinksTelegram, project.LinksDiscord,
		project.Status, project.LastUpdated,
	).Scan(&project.ID)
	if err != nil {
		return model.Project{}, storeErr("insert project", err)
	}

	reqSQL := tx.Rebind(insertRequirementSQL)
	for _, req := range input.Requirements {
		if _, err := tx.ExecContext(ctx, reqSQL, project.ID, req.Task, req.Difficulty, req.Deadline); err != nil {
			return model.Project{}, storeErr("insert requirement", err)
		}
	}

	return project, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", repositories.ErrStore, op, err)
}
