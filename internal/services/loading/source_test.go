package loading

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airdrop-go/internal/model"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadSourceErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{"malformed", `[{"project_name": `, ErrSourceParse},
		{"trailing data", `[] []`, ErrSourceParse},
		{"object at top level", `{"project_name": "Foo"}`, ErrSourceSchema},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readSource(writeSource(t, tc.content))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := readSource(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestDecodeProjectScalars(t *testing.T) {
	items, err := readSource(writeSource(t, `[{
		"project_name": "Foo",
		"description": {"short": "s", "full": null},
		"rewards": {"amount": 1500, "approximate_amount": 12.50, "distribution_date": "TBA"},
		"links": {"website": "w", "social": {"twitter": "t", "telegram": "g", "discord": true}},
		"status": "active",
		"last_updated": "2024-01-15"
	}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)

	p, err := decodeProject(0, items[0])
	require.NoError(t, err)
	assert.Equal(t, "Foo", p.ProjectName)
	assert.Equal(t, "", p.DescriptionFull)
	assert.Equal(t, "1500", p.RewardsAmount)
	assert.Equal(t, "12.50", p.RewardsApproximateAmount)
	assert.Equal(t, "true", p.LinksDiscord)
	assert.Nil(t, p.Requirements)
}

func TestDecodeProjectRequirements(t *testing.T) {
	items, err := readSource(writeSource(t, `[{
		"project_name": "Foo",
		"description": {"short": "", "full": ""},
		"rewards": {"amount": "", "approximate_amount": "", "distribution_date": ""},
		"links": {"website": "", "social": {"twitter": "", "telegram": "", "discord": ""}},
		"status": "", "last_updated": "",
		"requirements": [
			{"task": "A", "difficulty": "easy", "deadline": "2024-01-01"},
			{"task": "B", "difficulty": "hard", "deadline": null}
		]
	}]`))
	require.NoError(t, err)

	p, err := decodeProject(0, items[0])
	require.NoError(t, err)
	assert.Equal(t, []model.Requirement{
		{Task: "A", Difficulty: "easy", Deadline: "2024-01-01"},
		{Task: "B", Difficulty: "hard", Deadline: ""},
	}, p.Requirements)
}

func TestDecodeProjectMissingKeys(t *testing.T) {
	cases := []struct {
		name    string
		content string
		path    string
	}{
		{"project name", `{"status": "x"}`, "project_name"},
		{"nested parent", `{"project_name": "Foo"}`, "description.short"},
		{
			"social link",
			`{"project_name": "Foo", "description": {"short": "", "full": ""},
			  "rewards": {"amount": "", "approximate_amount": "", "distribution_date": ""},
			  "links": {"website": "", "social": {"twitter": "", "telegram": ""}},
			  "status": "", "last_updated": ""}`,
			"links.social.discord",
		},
		{
			"requirement field",
			`{"project_name": "Foo", "description": {"short": "", "full": ""},
			  "rewards": {"amount": "", "approximate_amount": "", "distribution_date": ""},
			  "links": {"website": "", "social": {"twitter": "", "telegram": "", "discord": ""}},
			  "status": "", "last_updated": "",
			  "requirements": [{"task": "A", "difficulty": "easy"}]}`,
			"requirements[0].deadline",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := readSource(writeSource(t, "["+tc.content+"]"))
			require.NoError(t, err)

			_, err = decodeProject(0, items[0])
			assert.ErrorIs(t, err, ErrSourceSchema)
			assert.ErrorContains(t, err, tc.path)
		})
	}
}

func TestDecodeProjectRejectsNonObjects(t *testing.T) {
	_, err := decodeProject(3, "Foo")
	assert.ErrorIs(t, err, ErrSourceSchema)
	assert.ErrorContains(t, err, "element 3")
}
