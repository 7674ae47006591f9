package assistant

import (
	"context"
	"fmt"
	"strings"

	"airdrop-go/internal/model"
)

const (
	contextHeader = "Available projects data: \n\n"

	instructions = "You are an assistant who gives recommendations on crypto projects and airdrops. " +
		"You should give relatively concise but informative answers in a conversational format." +
		"Depending on the user's question, you have to provide information about a specific project, " +
		"compare projects, evaluate the potential reward from the project, and make recommendations " +
		"based on the complexity of the requirements. You should only refer to the projects data provided here." +
		"You cannot write about other projects except those specified in the system prompt." +
		"When generating an answer, you should use only available data.\n"

	userTemplate = "Give the correct and understandable answer for the user based on the context:\n"
)

type ContextBuilder struct {
	catalog Catalog
}

func NewContextBuilder(catalog Catalog) *ContextBuilder {
	return &ContextBuilder{catalog: catalog}
}

// Build renders every stored project, in store order, as one text block.
// It reads the store on every call.
func (b *ContextBuilder) Build(ctx context.Context) (string, error) {
	names, err := b.catalog.ListProjectNames(ctx)
	if err != nil {
		return "", fmt.Errorf("list projects: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(contextHeader)
	for _, name := range names {
		info, err := b.catalog.GetProjectInfo(ctx, name)
		if err != nil {
			return "", fmt.Errorf("project %q: %w", name, err)
		}
		reqs, err := b.catalog.GetRequirements(ctx, name)
		if err != nil {
			return "", fmt.Errorf("requirements of %q: %w", name, err)
		}
		writeProject(&sb, name, info, reqs)
	}
	return sb.String(), nil
}

func writeProject(sb *strings.Builder, name string, p model.Project, reqs []model.Requirement) {
	tasks := make([]string, 0, len(reqs))
	for _, r := range reqs {
		tasks = append(tasks, r.Task+" | "+r.Difficulty+" | "+r.Deadline)
	}

	fmt.Fprintf(sb, "Project name: '%s':\n", name)
	fmt.Fprintf(sb, "Short description: %s\n", p.DescriptionShort)
	fmt.Fprintf(sb, "Full description: %s\n", p.DescriptionFull)
	fmt.Fprintf(sb, "Project status: %s\n", p.Status)
	fmt.Fprintf(sb, "Last update: %s\n", p.LastUpdated)
	fmt.Fprintf(sb, "Reward amount: %s. Approximately %s\n", p.RewardsAmount, p.RewardsApproximateAmount)
	fmt.Fprintf(sb, "Reward distribution date: %s\n", p.RewardsDistributionDate)
	fmt.Fprintf(sb, "Project links: Website %s, Twitter %s, Telegram %s, Discord %s\n",
		p.LinksWebsite, p.LinksTwitter, p.LinksTelegram, p.LinksDiscord)
	fmt.Fprintf(sb, "Requirements with task title, difficulty, and deadline: %s\n\n", strings.Join(tasks, "; "))
}

func SystemPrompt(projects string) model.ChatMessage {
	return model.ChatMessage{Role: model.RoleSystem, Content: instructions + projects}
}

func UserPrompt(text string) model.ChatMessage {
	return model.ChatMessage{Role: model.RoleUser, Content: userTemplate + text}
}
