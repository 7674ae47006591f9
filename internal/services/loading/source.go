package loading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"airdrop-go/internal/model"
)

var (
	ErrSourceNotFound = errors.New("source file not found")
	ErrSourceParse    = errors.New("source is not valid JSON")
	ErrSourceSchema   = errors.New("source record is missing a required key")
)

// readSource decodes the whole document before anything is inserted, so a
// parse failure never leaves a partial import behind.
func readSource(path string) ([]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("read source %s: %w", path, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceParse, path, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: trailing data after top-level value", ErrSourceParse, path)
	}

	items, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value must be an array", ErrSourceSchema)
	}
	return items, nil
}

// decodeProject maps one source element onto a ProjectCreate. index is the
// element position, used only in error messages.
func decodeProject(index int, item any) (model.ProjectCreate, error) {
	p, ok := item.(map[string]any)
	if !ok {
		return model.ProjectCreate{}, fmt.Errorf("%w: element %d is not an object", ErrSourceSchema, index)
	}

	d := fieldReader{index: index, root: p}
	project := model.ProjectCreate{
		ProjectName:              d.text("project_name"),
		DescriptionShort:         d.text("description", "short"),
		DescriptionFull:          d.text("description", "full"),
		RewardsAmount:            d.text("rewards", "amount"),
		RewardsApproximateAmount: d.text("rewards", "approximate_amount"),
		RewardsDistributionDate:  d.text("rewards", "distribution_date"),
		LinksWebsite:             d.text("links", "website"),
		LinksTwitter:             d.text("links", "social", "twitter"),
		LinksTelegram:            d.text("links", "social", "telegram"),
		LinksDiscord:             d.text("links", "social", "discord"),
		Status:                   d.text("status"),
		LastUpdated:              d.text("last_updated"),
	}
	if d.err != nil {
		return model.ProjectCreate{}, d.err
	}

	raw, present := p["requirements"]
	if !present || raw == nil {
		return project, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return model.ProjectCreate{}, fmt.Errorf("%w: element %d: requirements is not an array", ErrSourceSchema, index)
	}

	project.Requirements = make([]model.Requirement, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return model.ProjectCreate{}, fmt.Errorf("%w: element %d: requirements[%d] is not an object", ErrSourceSchema, index, i)
		}
		r := fieldReader{index: index, prefix: fmt.Sprintf("requirements[%d].", i), root: m}
		req := model.Requirement{
			Task:       r.text("task"),
			Difficulty: r.text("difficulty"),
			Deadline:   r.text("deadline"),
		}
		if r.err != nil {
			return model.ProjectCreate{}, r.err
		}
		project.Requirements = append(project.Requirements, req)
	}

	return project, nil
}

// fieldReader keeps the first missing-key error so a record can be read
// field by field without checking after every call.
type fieldReader struct {
	index  int
	prefix string
	root   map[string]any
	err    error
}

func (f *fieldReader) text(path ...string) string {
	if f.err != nil {
		return ""
	}

	parent := nestedMap(f.root, path[:len(path)-1]...)
	key := path[len(path)-1]
	var (
		value   any
		present bool
	)
	if parent != nil {
		value, present = parent[key]
	}
	if !present {
		f.err = fmt.Errorf("%w: element %d: %s%s", ErrSourceSchema, f.index, f.prefix, strings.Join(path, "."))
		return ""
	}
	return toText(value)
}

func nestedMap(root map[string]any, keys ...string) map[string]any {
	current := root
	for _, key := range keys {
		value, ok := current[key]
		if !ok {
			return nil
		}
		child, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		current = child
	}
	return current
}

// toText stores every scalar as opaque text; null becomes empty.
func toText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(out)
	}
}
