package loading

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airdrop-go/internal/config"
	"airdrop-go/internal/db"
	"airdrop-go/internal/model"
	"airdrop-go/internal/repositories/sqlrepo"
)

func newTestService(t *testing.T, path string) (*Service, *sqlrepo.ProjectRepository) {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "projects.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.EnsureSchema(ctx, conn))

	repo := sqlrepo.NewProjectRepository(conn)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, log, path), repo
}

// record renders one source element; reqs are pre-rendered requirement objects.
func record(name, status string, reqs ...string) string {
	return fmt.Sprintf(`{
		"project_name": %q,
		"description": {"short": "%s short", "full": "%s full"},
		"rewards": {"amount": "100", "approximate_amount": "$50", "distribution_date": "2024-06-01"},
		"links": {"website": "https://x.xyz", "social": {"twitter": "@x", "telegram": "t.me/x", "discord": "d/x"}},
		"status": %q,
		"last_updated": "2024-01-15",
		"requirements": [%s]
	}`, name, name, name, status, strings.Join(reqs, ","))
}

func req(task string) string {
	return fmt.Sprintf(`{"task": %q, "difficulty": "easy", "deadline": "2024-01-01"}`, task)
}

func document(records ...string) string {
	return "[" + strings.Join(records, ",") + "]"
}

func TestLoadImportsProjectsAndRequirements(t *testing.T) {
	ctx := context.Background()
	path := writeSource(t, document(record("Foo", "active", req("A"), req("B")), record("Bar", "ended")))
	svc, repo := newTestService(t, path)

	summary, err := svc.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, Summary{Projects: 2, Requirements: 2}, summary)

	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo", "Bar"}, names)

	foo, err := repo.GetByName(ctx, "Foo")
	require.NoError(t, err)
	assert.Equal(t, "Foo short", foo.DescriptionShort)
	assert.Equal(t, "t.me/x", foo.LinksTelegram)

	reqs, err := repo.ListRequirements(ctx, "Foo")
	require.NoError(t, err)
	assert.Equal(t, []model.Requirement{
		{Task: "A", Difficulty: "easy", Deadline: "2024-01-01"},
		{Task: "B", Difficulty: "easy", Deadline: "2024-01-01"},
	}, reqs)

	reqs, err = repo.ListRequirements(ctx, "Bar")
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestLoadEmptyArray(t *testing.T) {
	path := writeSource(t, `[]`)
	svc, repo := newTestService(t, path)

	summary, err := svc.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, summary.Projects)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadMissingFileLeavesStoreEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	svc, repo := newTestService(t, path)

	_, err := svc.Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadMalformedJSONInsertsNothing(t *testing.T) {
	path := writeSource(t, `[`+record("Foo", "active")+`,`)
	svc, repo := newTestService(t, path)

	_, err := svc.Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrSourceParse)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadSchemaErrorKeepsEarlierProjects(t *testing.T) {
	ctx := context.Background()
	path := writeSource(t, document(record("Foo", "active", req("A")), `{"project_name": "Broken"}`, record("Bar", "active")))
	svc, repo := newTestService(t, path)

	summary, err := svc.Load(ctx, path)
	assert.ErrorIs(t, err, ErrSourceSchema)
	assert.Equal(t, 1, summary.Projects)

	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo"}, names)
}

func TestLoadDuplicateNamesFirstWins(t *testing.T) {
	ctx := context.Background()
	first := record("Foo", "active")
	second := strings.Replace(record("Foo", "ended"), `"Foo short"`, `"second"`, 1)
	path := writeSource(t, document(first, second))
	svc, repo := newTestService(t, path)

	summary, err := svc.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Projects)

	got, err := repo.GetByName(ctx, "Foo")
	require.NoError(t, err)
	assert.Equal(t, "active", got.Status)
}

func TestLoadIfEmpty(t *testing.T) {
	ctx := context.Background()
	path := writeSource(t, document(record("Foo", "active")))
	svc, repo := newTestService(t, path)

	_, loaded, err := svc.LoadIfEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, loaded)

	_, loaded, err = svc.LoadIfEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, loaded)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReloadReplacesContents(t *testing.T) {
	ctx := context.Background()
	path := writeSource(t, document(record("Foo", "active", req("A"))))
	svc, repo := newTestService(t, path)

	_, err := svc.Load(ctx, path)
	require.NoError(t, err)

	next := writeSource(t, document(record("Bar", "ended", req("B"), req("C"))))
	summary, err := svc.Reload(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, Summary{Projects: 1, Requirements: 2}, summary)

	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bar"}, names)

	reqs, err := repo.ListRequirements(ctx, "Foo")
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestReloadInvalidSourceKeepsStore(t *testing.T) {
	ctx := context.Background()
	path := writeSource(t, document(record("Foo", "active")))
	svc, repo := newTestService(t, path)

	_, err := svc.Load(ctx, path)
	require.NoError(t, err)

	bad := writeSource(t, document(record("Bar", "active"), `{"project_name": "Broken"}`))
	_, err = svc.Reload(ctx, bad)
	assert.ErrorIs(t, err, ErrSourceSchema)

	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo"}, names)
}

func TestRefreshReloadsOnlyWhenSourceChanges(t *testing.T) {
	ctx := context.Background()
	path := writeSource(t, document(record("Foo", "active")))
	svc, repo := newTestService(t, path)

	_, err := svc.Load(ctx, path)
	require.NoError(t, err)

	// Same mtime: nothing happens even if a row was added out of band.
	_, err = repo.Create(ctx, model.ProjectCreate{ProjectName: "Manual"})
	require.NoError(t, err)
	svc.Refresh(ctx)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, os.WriteFile(path, []byte(document(record("Bar", "active"), record("Baz", "ended"))), 0o600))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	svc.Refresh(ctx)
	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bar", "Baz"}, names)
}
