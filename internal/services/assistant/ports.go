package assistant

import (
	"context"

	"airdrop-go/internal/model"
)

// Catalog is the subset of the query side the context builder reads.
type Catalog interface {
	ListProjectNames(ctx context.Context) ([]string, error)
	GetProjectInfo(ctx context.Context, name string) (model.Project, error)
	GetRequirements(ctx context.Context, name string) ([]model.Requirement, error)
}

// ChatModel sends an ordered list of messages to a remote model and returns
// its text reply.
type ChatModel interface {
	Complete(ctx context.Context, messages []model.ChatMessage) (string, error)
}
