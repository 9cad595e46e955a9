package commands

import (
	"strings"

	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// CommandLogger returns a logger scoped to a command module with the
// component fields every handler log line carries.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, "gitcontent.commands."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
