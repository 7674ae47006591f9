package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"airdrop-go/internal/model"
)

const (
	FailureReply    = "Unable to answer."
	NoProjectsReply = "Unable to fetch project data."
)

// Dispatcher answers one user question against the current store contents.
// It is safe for concurrent use when its ChatModel and Catalog are.
type Dispatcher struct {
	builder *ContextBuilder
	model   ChatModel
	log     *slog.Logger
	timeout time.Duration
}

func NewDispatcher(builder *ContextBuilder, chat ChatModel, log *slog.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{builder: builder, model: chat, log: log, timeout: timeout}
}

// Answer never fails: remote errors are logged and turned into FailureReply.
func (d *Dispatcher) Answer(ctx context.Context, text string) string {
	projects, err := d.builder.Build(ctx)
	if err != nil {
		d.log.Error("error fetching project data", "error", err)
		projects = NoProjectsReply
	}

	messages := []model.ChatMessage{SystemPrompt(projects), UserPrompt(text)}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	started := time.Now()
	reply, err := d.model.Complete(ctx, messages)
	if err != nil {
		d.log.Error("response generation error", "error", err, "elapsed", time.Since(started))
		return FailureReply
	}
	d.log.Debug("answered", "elapsed", time.Since(started), "chars", len(reply))
	return strings.TrimSpace(reply)
}
