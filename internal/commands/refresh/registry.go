package refreshcmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-gitcontent/internal/commands"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// CommandRegistry is the registration contract for command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the handlers built by RegisterRefreshCommands.
type HandlerSet struct {
	Refresh        *RefreshHandler
	LoadCollection *LoadCollectionHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	refreshOpts []commands.HandlerOption[RefreshCommand]
	loadOpts    []commands.HandlerOption[LoadCollectionCommand]
}

// WithRefreshHandlerOptions forwards options to the RefreshHandler.
func WithRefreshHandlerOptions(opts ...commands.HandlerOption[RefreshCommand]) Option {
	return func(cfg *options) {
		cfg.refreshOpts = append(cfg.refreshOpts, opts...)
	}
}

// WithLoadCollectionHandlerOptions forwards options to the LoadCollectionHandler.
func WithLoadCollectionHandlerOptions(opts ...commands.HandlerOption[LoadCollectionCommand]) Option {
	return func(cfg *options) {
		cfg.loadOpts = append(cfg.loadOpts, opts...)
	}
}

// RegisterRefreshCommands builds the refresh handlers and registers them
// with reg when it is not nil.
func RegisterRefreshCommands(reg CommandRegistry, refresher Refresher, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if refresher == nil {
		return nil, errors.New("refresh command registration: refresher is nil")
	}
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "refresh")
	set := &HandlerSet{
		Refresh:        NewRefreshHandler(refresher, logger, cfg.refreshOpts...),
		LoadCollection: NewLoadCollectionHandler(refresher, logger, cfg.loadOpts...),
	}
	if reg != nil {
		if err := reg.RegisterCommand(set.Refresh); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.LoadCollection); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// RegisterRefreshCron schedules handler on a cron registrar. Runs use a
// background context and the cron reason.
func RegisterRefreshCron(reg CronRegistrar, handler *RefreshHandler, cfg command.HandlerConfig) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), RefreshCommand{Reason: ReasonCron})
	})
}
