package refreshcmd_test

import (
	"context"
	"errors"
	"testing"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-gitcontent/internal/commands"
	"github.com/goliatone/go-gitcontent/internal/commands/fixtures"
	refreshcmd "github.com/goliatone/go-gitcontent/internal/commands/refresh"
	"github.com/goliatone/go-gitcontent/internal/logging"
)

type stubRefresher struct {
	refreshes   int
	collections []string
	err         error
}

func (s *stubRefresher) Refresh(context.Context) error {
	s.refreshes++
	return s.err
}

func (s *stubRefresher) RefreshCollection(_ context.Context, name string) error {
	s.collections = append(s.collections, name)
	return s.err
}

func TestRefreshCommandValidate(t *testing.T) {
	cases := []struct {
		name    string
		msg     refreshcmd.RefreshCommand
		wantErr bool
	}{
		{name: "empty reason", msg: refreshcmd.RefreshCommand{}},
		{name: "manual", msg: refreshcmd.RefreshCommand{Reason: refreshcmd.ReasonManual}},
		{name: "api", msg: refreshcmd.RefreshCommand{Reason: refreshcmd.ReasonAPI}},
		{name: "unknown", msg: refreshcmd.RefreshCommand{Reason: "bogus"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadCollectionCommandRequiresCollection(t *testing.T) {
	if err := (refreshcmd.LoadCollectionCommand{Collection: "  "}).Validate(); err == nil {
		t.Fatal("expected blank collection to fail validation")
	}
	if err := (refreshcmd.LoadCollectionCommand{Collection: "posts"}).Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestRefreshHandlerDelegates(t *testing.T) {
	refresher := &stubRefresher{}
	handler := refreshcmd.NewRefreshHandler(refresher, logging.NoOp())

	if err := handler.Execute(context.Background(), refreshcmd.RefreshCommand{Reason: refreshcmd.ReasonAPI}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if refresher.refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", refresher.refreshes)
	}
}

func TestRefreshHandlerWrapsFailure(t *testing.T) {
	refresher := &stubRefresher{err: errors.New("content API error: 500")}
	handler := refreshcmd.NewRefreshHandler(refresher, nil)

	err := handler.Execute(context.Background(), refreshcmd.RefreshCommand{})
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestLoadCollectionHandlerRejectsInvalidMessage(t *testing.T) {
	refresher := &stubRefresher{}
	handler := refreshcmd.NewLoadCollectionHandler(refresher, nil)

	err := handler.Execute(context.Background(), refreshcmd.LoadCollectionCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(refresher.collections) != 0 {
		t.Fatalf("handler must not run for invalid message")
	}

	if err := handler.Execute(context.Background(), refreshcmd.LoadCollectionCommand{Collection: "images"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(refresher.collections) != 1 || refresher.collections[0] != "images" {
		t.Fatalf("unexpected collections %v", refresher.collections)
	}
}

func TestRegisterRefreshCommandsRegistersHandlers(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	applied := false

	set, err := refreshcmd.RegisterRefreshCommands(reg, &stubRefresher{}, nil,
		refreshcmd.WithRefreshHandlerOptions(func(*commands.Handler[refreshcmd.RefreshCommand]) {
			applied = true
		}),
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(reg.Handlers) != 2 || reg.Handlers[0] != set.Refresh || reg.Handlers[1] != set.LoadCollection {
		t.Fatalf("unexpected registrations %#v", reg.Handlers)
	}
	if !applied {
		t.Fatal("expected refresh handler options applied")
	}
}

func TestRegisterRefreshCommandsNilRefresher(t *testing.T) {
	if _, err := refreshcmd.RegisterRefreshCommands(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil refresher")
	}
}

func TestRegisterRefreshCron(t *testing.T) {
	refresher := &stubRefresher{}
	handler := refreshcmd.NewRefreshHandler(refresher, nil)
	recorder := fixtures.NewCronRecorder()
	cfg := command.HandlerConfig{Expression: "@every 30s"}

	if err := refreshcmd.RegisterRefreshCron(recorder.Registrar(), handler, cfg); err != nil {
		t.Fatalf("register cron: %v", err)
	}
	if len(recorder.Registrations) != 1 {
		t.Fatalf("expected one registration, got %d", len(recorder.Registrations))
	}
	registration := recorder.Registrations[0]
	if registration.Config.Expression != cfg.Expression {
		t.Fatalf("expected expression %q, got %q", cfg.Expression, registration.Config.Expression)
	}
	if err := registration.Handler(); err != nil {
		t.Fatalf("run cron handler: %v", err)
	}
	if refresher.refreshes != 1 {
		t.Fatalf("expected cron run to refresh, got %d", refresher.refreshes)
	}

	if err := refreshcmd.RegisterRefreshCron(nil, handler, cfg); err != nil {
		t.Fatalf("nil registrar should be a no-op, got %v", err)
	}
}
