package commands

import (
	"strings"

	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

// CommandLogger returns the invites.commands.<group> logger.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		group = "core"
	}
	return logging.WithFields(logging.ModuleLogger(provider, "invites.commands."+group), map[string]any{
		"command_group": group,
	})
}
