package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-invites/pkg/interfaces"
)

const (
	rootModule     = "invites"
	pipelineModule = "invites.pipeline"
	statusModule   = "invites.status"
	storeModule    = "invites.store"
	adapterModule  = "invites.adapters"
)

const (
	fieldModule     = "module"
	fieldTaskID     = "task_id"
	fieldTaskStatus = "task_status"
	fieldAdapter    = "adapter"
)

// ModuleLogger returns the provider's logger for module tagged with a
// module field, or a no-op logger when provider is nil.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module = strings.TrimSpace(module); module == "" {
		module = rootModule
	}
	var logger interfaces.Logger = noopLogger{}
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{fieldModule: module})
}

// PipelineLogger returns the logger namespace reserved for the generation orchestrator.
func PipelineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pipelineModule)
}

// StatusLogger returns the logger namespace reserved for the status publisher.
func StatusLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, statusModule)
}

// StoreLogger returns the logger namespace reserved for site persistence.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// AdapterLogger returns a logger for an external service adapter (llm, geocoder).
func AdapterLogger(provider interfaces.LoggerProvider, name string) interfaces.Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return ModuleLogger(provider, adapterModule)
	}
	return WithFields(ModuleLogger(provider, adapterModule+"."+name), map[string]any{
		fieldAdapter: name,
	})
}

// WithTaskContext enriches the logger with the task identifier and current status.
// Empty values are ignored.
func WithTaskContext(logger interfaces.Logger, taskID, status string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(taskID); trimmed != "" {
		fields[fieldTaskID] = trimmed
	}
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		fields[fieldTaskStatus] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
