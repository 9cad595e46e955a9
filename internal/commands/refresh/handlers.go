package refreshcmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-gitcontent/internal/commands"
	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

const (
	refreshOperation        = "content.refresh"
	loadCollectionOperation = "content.load_collection"
)

// Refresher is the loader surface the handlers drive.
type Refresher interface {
	Refresh(ctx context.Context) error
	RefreshCollection(ctx context.Context, name string) error
}

var (
	_ command.Commander[RefreshCommand]        = (*RefreshHandler)(nil)
	_ command.Commander[LoadCollectionCommand] = (*LoadCollectionHandler)(nil)
)

// RefreshHandler runs a manual refresh of every collection.
type RefreshHandler struct {
	inner *commands.Handler[RefreshCommand]
}

// NewRefreshHandler builds a handler bound to refresher.
func NewRefreshHandler(refresher Refresher, logger interfaces.Logger, opts ...commands.HandlerOption[RefreshCommand]) *RefreshHandler {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, _ RefreshCommand) error {
		if refresher == nil {
			return errors.New("refresh command: refresher is nil")
		}
		return refresher.Refresh(ctx)
	}
	handlerOpts := []commands.HandlerOption[RefreshCommand]{
		commands.WithLogger[RefreshCommand](logger),
		commands.WithOperation[RefreshCommand](refreshOperation),
		commands.WithMessageFields[RefreshCommand](func(msg RefreshCommand) map[string]any {
			reason := msg.Reason
			if reason == "" {
				reason = ReasonManual
			}
			return map[string]any{"reason": reason}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RefreshCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &RefreshHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *RefreshHandler) Execute(ctx context.Context, msg RefreshCommand) error {
	return h.inner.Execute(ctx, msg)
}

// LoadCollectionHandler reloads a single collection.
type LoadCollectionHandler struct {
	inner *commands.Handler[LoadCollectionCommand]
}

// NewLoadCollectionHandler builds a handler bound to refresher.
func NewLoadCollectionHandler(refresher Refresher, logger interfaces.Logger, opts ...commands.HandlerOption[LoadCollectionCommand]) *LoadCollectionHandler {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg LoadCollectionCommand) error {
		if refresher == nil {
			return errors.New("load collection command: refresher is nil")
		}
		return refresher.RefreshCollection(ctx, msg.Collection)
	}
	handlerOpts := []commands.HandlerOption[LoadCollectionCommand]{
		commands.WithLogger[LoadCollectionCommand](logger),
		commands.WithOperation[LoadCollectionCommand](loadCollectionOperation),
		commands.WithMessageFields[LoadCollectionCommand](func(msg LoadCollectionCommand) map[string]any {
			return map[string]any{"collection": msg.Collection}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &LoadCollectionHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *LoadCollectionHandler) Execute(ctx context.Context, msg LoadCollectionCommand) error {
	return h.inner.Execute(ctx, msg)
}
